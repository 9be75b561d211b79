// Package sema implements the semantic analyzer (component C7): the
// parser-facing actions driving the ast/decl/types tables of one
// tu.TranslationUnit as source is parsed, one token ahead, with no
// backtracking.
package sema

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-set/v3"

	"github.com/CodethinkLabs/flang/ast"
	"github.com/CodethinkLabs/flang/decl"
	"github.com/CodethinkLabs/flang/internal/diag"
	"github.com/CodethinkLabs/flang/internal/ident"
	"github.com/CodethinkLabs/flang/tu"
	"github.com/CodethinkLabs/flang/types"
)

var (
	errRedeclared     = errors.New("sema: name already declared in this scope")
	errNotEvaluable   = errors.New("sema: PARAMETER value is not a constant expression")
	errBadFormatLabel = errors.New("sema: label does not name a FORMAT statement")
)

type savedBind struct {
	id    ident.ID
	prior ident.Token
}

type pendingCandidate struct {
	stmt  ast.StmtID
	index int
	label int32
}

type pendingFormatLabel struct {
	loc   decl.Loc
	label int32
}

// scope is one program unit's worth of analyzer state: its declaration
// context, its own IMPLICIT letter map (IMPLICIT does not nest across
// program units), its own label table, and the identifier bindings made
// while inside it (unwound on exit via the Bind/Restore discipline of
// internal/ident).
type scope struct {
	ctx         decl.ID
	implicit    [26]types.ID
	hasImplicit [26]bool
	implicitNone bool

	labels *ast.LabelTable

	saved       []savedBind
	pendingCand []pendingCandidate
	pendingFmt  []pendingFormatLabel

	// activeNames is the set of names bound directly in this scope, kept
	// alongside decl.Table's own member list as an O(1) "already declared
	// here" pre-check before the redeclaration diagnostic path looks up
	// the prior declaration for its note.
	activeNames *set.Set[ident.ID]
	// pendingLabels is every label this scope is still waiting to see
	// defined, tracked for end-of-scope trace logging independent of
	// ast.LabelTable's own resolution bookkeeping.
	pendingLabels *set.Set[int32]
}

// Sema drives one TranslationUnit's tables from parser actions.
type Sema struct {
	tu     *tu.TranslationUnit
	scopes []*scope
}

// New creates an analyzer over an already-constructed translation unit.
func New(u *tu.TranslationUnit) *Sema {
	return &Sema{tu: u}
}

func (s *Sema) top() *scope { return s.scopes[len(s.scopes)-1] }

func (s *Sema) report(level diag.Level, loc decl.Loc, message string, args ...any) {
	s.tu.Diags.Report(level, diag.Loc{File: loc.File, Line: loc.Line, Col: loc.Col}, message, args...)
}

func letterIndex(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	c := name[0]
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c - 'A'), true
	case c >= 'a' && c <= 'z':
		return int(c - 'a'), true
	default:
		return 0, false
	}
}

// defaultImplicitKind is Fortran's standard implicit-typing rule: I
// through N default to INTEGER, everything else defaults to REAL.
func defaultImplicitKind(letterIdx int) types.BaseKind {
	// 'I'-'A' = 8, 'N'-'A' = 13.
	if letterIdx >= 8 && letterIdx <= 13 {
		return types.Integer
	}
	return types.Real
}

// implicitTypeFor returns name's IMPLICIT type and true, or false if the
// current scope is under IMPLICIT NONE and has no type to offer.
func (s *Sema) implicitTypeFor(name ident.ID) (types.ID, bool) {
	top := s.top()
	if top.implicitNone {
		return 0, false
	}
	idx, ok := letterIndex(s.tu.Idents.Name(name))
	if !ok {
		return s.tu.Types.Base(types.Integer), true
	}
	if top.hasImplicit[idx] {
		return top.implicit[idx], true
	}
	return s.tu.Types.Base(defaultImplicitKind(idx)), true
}

func (s *Sema) bind(name ident.ID, id decl.ID) {
	top := s.top()
	prior := s.tu.Idents.Bind(name, ident.Ref(id))
	top.saved = append(top.saved, savedBind{id: name, prior: prior})
	top.activeNames.Insert(name)
}

// pushScope opens a new program-unit context as a child of the
// currently active context (or of the translation-unit root, for the
// very first push), with a fresh IMPLICIT map and label table. The new
// scope's IMPLICIT NONE state starts at the translation unit's
// configured default (IMPLICIT does not carry over between program
// units, but the default-is-NONE tunable applies freshly to each one).
func (s *Sema) pushScope(ctx decl.ID) {
	s.scopes = append(s.scopes, &scope{
		ctx:           ctx,
		labels:        ast.NewLabelTable(),
		implicitNone:  s.tu.ImplicitNoneDefault,
		activeNames:   set.New[ident.ID](0),
		pendingLabels: set.New[int32](0),
	})
}

// popScope closes the current program unit: it reports any label still
// referenced but never defined (batched into one diagnostic), then
// unwinds every identifier binding made inside the scope in reverse
// order (the Bind/Restore stack discipline of internal/ident).
func (s *Sema) popScope() {
	top := s.top()

	if !top.pendingLabels.Empty() {
		s.tu.Log.Debug("labels still pending at scope end", "labels", top.pendingLabels.Slice())
	}

	for _, pc := range top.pendingCand {
		if target, ok := top.labels.Resolved(pc.label); ok {
			s.tu.Stmts.SetCandidateTarget(pc.stmt, pc.index, target)
		} else {
			s.report(diag.Error, decl.Loc{}, "label %0 is never defined", pc.label)
		}
	}
	for _, pf := range top.pendingFmt {
		target, ok := top.labels.Resolved(pf.label)
		if !ok || s.tu.Stmts.Kind(target) != ast.FormatStmt {
			s.report(diag.Error, pf.loc, "label %0 does not name a FORMAT statement", pf.label)
		}
	}

	pending := top.labels.Finish()
	if len(pending) > 0 {
		var messages []string
		for label, referrers := range pending {
			messages = append(messages, fmt.Sprintf("label %d referenced by %d statement(s) is never defined", label, len(referrers)))
		}
		if err := diag.Batch(messages); err != nil {
			s.report(diag.Error, decl.Loc{}, "%0", err.Error())
		}
	}

	for i := len(top.saved) - 1; i >= 0; i-- {
		b := top.saved[i]
		s.tu.Idents.Restore(b.id, b.prior)
	}

	s.scopes = s.scopes[:len(s.scopes)-1]
}

// BeginUnit opens the translation-unit-wide scope, the initial state
// before any program unit is entered. It must be the first action and
// EndUnit the last.
func (s *Sema) BeginUnit() {
	s.pushScope(s.tu.Decls.Root())
}

// EndUnit closes the translation unit.
func (s *Sema) EndUnit() {
	s.popScope()
}

// BeginMainProgram opens a PROGRAM unit's declaration context and
// executable scope.
func (s *Sema) BeginMainProgram(name ident.ID, loc decl.Loc) decl.ID {
	ctx := s.tu.Decls.NewContext(decl.KindMainProgram, s.top().ctx, name, loc)
	s.pushScope(ctx)
	return ctx
}

func (s *Sema) EndMainProgram() {
	s.popScope()
}

// BeginFunction/BeginSubroutine open a subprogram's declaration and
// executable scope. BeginFunction additionally registers a synthetic
// result variable so `F = expr` inside the body is an ordinary
// assignment to an ordinary Var.
func (s *Sema) BeginFunction(name ident.ID, resultType types.ID, loc decl.Loc) decl.ID {
	outer := s.top().ctx
	fn := s.tu.Decls.NewContext(decl.KindFunction, outer, name, loc)
	result := s.tu.Decls.NewVariable(decl.KindVariable, fn, name, loc, resultType, 0)
	s.tu.Decls.SetResult(fn, result)
	// Bind the function's own name to fn in the *outer* scope, so callers
	// elsewhere in the translation unit resolve it via OnCall, then shadow
	// it with the result variable for the duration of the body (an
	// assignment to the function's own name).
	s.bind(name, fn)
	s.pushScope(fn)
	s.bind(name, result)
	return fn
}

func (s *Sema) EndFunction() { s.popScope() }

func (s *Sema) BeginSubroutine(name ident.ID, loc decl.Loc) decl.ID {
	outer := s.top().ctx
	sub := s.tu.Decls.NewContext(decl.KindSubroutine, outer, name, loc)
	s.bind(name, sub)
	s.pushScope(sub)
	return sub
}

func (s *Sema) EndSubroutine() { s.popScope() }

// OnTypeName builds the types.ID for a scalar or CHARACTER type-spec
// (component of a declaration statement's leading type name).
func (s *Sema) OnTypeName(base types.BaseKind, kindSel ast.ExprID, hasKindSel bool, lengthSel ast.ExprID, hasLengthSel bool) types.ID {
	tys := s.tu.Types
	if base == types.Character {
		return tys.MakeCharacter(lengthSel, hasLengthSel, kindSel, hasKindSel)
	}
	t := tys.Base(base)
	if hasKindSel {
		t = tys.MakeQualified(t, kindSel, true, 0, false, 0)
	}
	return t
}

// OnRecordTypeName builds the types.ID for a TYPE(name) reference to an
// already-declared derived type.
func (s *Sema) OnRecordTypeName(record decl.ID) types.ID {
	return s.tu.Types.MakeRecord(record)
}

func (s *Sema) reportRedeclared(name ident.ID, loc decl.Loc, prior decl.ID) {
	s.report(diag.Error, loc, "%0 is already declared in this scope", s.tu.Idents.Name(name))
	s.report(diag.Note, s.tu.Decls.Loc(prior), "previous declaration of %0 is here", s.tu.Idents.Name(name))
}

// OnEntityDecl declares one entity of a type-declaration statement,
// optionally as an array. A name already declared in this scope is an
// error reported at the new site with a note at the prior site.
func (s *Sema) OnEntityDecl(name ident.ID, typ types.ID, dims []types.Dim, hasDims bool, loc decl.Loc) (decl.ID, error) {
	ctx := s.top().ctx
	if hasDims {
		typ = s.tu.Types.MakeArray(typ, dims)
	}
	if s.top().activeNames.Contains(name) {
		if prior, ok := s.tu.Decls.FindInContext(ctx, name); ok {
			s.reportRedeclared(name, loc, prior)
			return prior, errRedeclared
		}
	}
	id := s.tu.Decls.NewVariable(decl.KindVariable, ctx, name, loc, typ, 0)
	s.bind(name, id)
	return id, nil
}

// OnImplicitEntityDecl declares name with its scope's current IMPLICIT
// type, the first time name is referenced without an explicit
// type-declaration statement. Under IMPLICIT NONE there is no type to
// offer: the reference is an error (error category 3), and a synthetic
// default-REAL declaration is created anyway so downstream checks can
// keep proceeding against a coherent tree.
func (s *Sema) OnImplicitEntityDecl(name ident.ID, loc decl.Loc) decl.ID {
	ctx := s.top().ctx
	typ, ok := s.implicitTypeFor(name)
	if !ok {
		s.report(diag.Error, loc, "%0 has no IMPLICIT type: IMPLICIT NONE is in effect", s.tu.Idents.Name(name))
		typ = s.tu.Types.Base(types.Real)
	}
	id := s.tu.Decls.NewVariable(decl.KindVariable, ctx, name, loc, typ, 0)
	s.bind(name, id)
	return id
}

// OnImplicitRange installs typ as the default type for every letter in
// [from, to] (inclusive, case-insensitive) for the remainder of the
// current program unit. It is the per-clause helper behind OnImplicit,
// the way OnParameterPair is the per-pair helper behind OnParameter.
func (s *Sema) OnImplicitRange(from, to byte, typ types.ID) {
	lo, okLo := letterIndex(string(from))
	hi, okHi := letterIndex(string(to))
	if !okLo || !okHi {
		return
	}
	top := s.top()
	for i := lo; i <= hi; i++ {
		top.implicit[i] = typ
		top.hasImplicit[i] = true
	}
}

// OnImplicit installs every letter-range clause of an IMPLICIT statement
// into the scope's letter map (one OnImplicitRange call per clause) and
// returns the statement node wrapping them.
func (s *Sema) OnImplicit(ranges []ast.ImplicitRange, loc decl.Loc) ast.StmtID {
	for _, r := range ranges {
		s.OnImplicitRange(r.From, r.To, r.Type)
	}
	return s.tu.Stmts.NewImplicit(loc, ranges)
}

// OnImplicitNone disables the current scope's IMPLICIT letter map: any
// later reference to an undeclared name is an error instead of an
// implicit declaration.
func (s *Sema) OnImplicitNone(loc decl.Loc) ast.StmtID {
	s.top().implicitNone = true
	return s.tu.Stmts.NewImplicitNone(loc)
}

// OnParameterPair declares name as a PARAMETER typed by value, requiring
// value to be a constant (foldable) expression. The declaration records
// value's type and the parameter attribute; the value expression itself
// is not stored on it.
func (s *Sema) OnParameterPair(name ident.ID, value ast.ExprID, loc decl.Loc) (decl.ID, error) {
	if !s.tu.Exprs.IsEvaluable(value) {
		s.report(diag.Error, loc, "PARAMETER value for %0 is not a constant expression", s.tu.Idents.Name(name))
		return 0, errNotEvaluable
	}
	ctx := s.top().ctx
	id := s.tu.Decls.NewVariable(decl.KindVariable, ctx, name, loc, s.tu.Exprs.Type(value), decl.AttrParameter)
	s.bind(name, id)
	return id, nil
}

// OnParameter wraps the declarations created by one or more
// OnParameterPair calls (all pairs of a single PARAMETER statement)
// into the statement node.
func (s *Sema) OnParameter(pairs []decl.ID, loc decl.Loc) ast.StmtID {
	return s.tu.Stmts.NewParameter(loc, pairs)
}

func (s *Sema) resolveOrDeclare(name ident.ID, loc decl.Loc) decl.ID {
	ctx := s.top().ctx
	if id, ok := s.tu.Decls.FindInContext(ctx, name); ok {
		return id
	}
	return s.OnImplicitEntityDecl(name, loc)
}

// OnDimension attaches an array shape to name, implicitly declaring it
// first if it has no prior declaration.
func (s *Sema) OnDimension(name ident.ID, dims []types.Dim, loc decl.Loc) decl.ID {
	id := s.resolveOrDeclare(name, loc)
	base, _ := s.tu.Decls.Type(id)
	s.tu.Decls.SetType(id, s.tu.Types.MakeArray(base, dims))
	return id
}

func (s *Sema) addAttr(name ident.ID, loc decl.Loc, attr decl.Attr) decl.ID {
	id := s.resolveOrDeclare(name, loc)
	s.tu.Decls.AddAttrs(id, attr)
	return id
}

func (s *Sema) OnExternal(name ident.ID, loc decl.Loc) decl.ID {
	return s.addAttr(name, loc, decl.AttrExternal)
}

func (s *Sema) OnIntrinsic(name ident.ID, loc decl.Loc) decl.ID {
	return s.addAttr(name, loc, decl.AttrIntrinsic)
}

func (s *Sema) OnAsynchronous(name ident.ID, loc decl.Loc) decl.ID {
	return s.addAttr(name, loc, decl.AttrAsynchronous)
}

// OnUse records a USE of moduleName. Module bodies are out of scope for
// a single-translation-unit front-end; the action exists so the parser
// has somewhere to send the statement, and is logged for traceability.
func (s *Sema) OnUse(moduleName ident.ID, loc decl.Loc) {
	s.tu.Log.Debug("USE statement ignored (no module resolution in this front-end)", "module", s.tu.Idents.Name(moduleName))
}

// OnImport binds name from the lexically enclosing program unit's scope
// into the current (inner) one, for a host-associated name inside an
// internal procedure.
func (s *Sema) OnImport(name ident.ID, loc decl.Loc) (decl.ID, error) {
	if len(s.scopes) < 2 {
		s.report(diag.Error, loc, "IMPORT of %0 has no enclosing host scope", s.tu.Idents.Name(name))
		return 0, errors.New("sema: IMPORT with no host scope")
	}
	host := s.scopes[len(s.scopes)-2]
	id, ok := s.tu.Decls.FindInContext(host.ctx, name)
	if !ok {
		s.report(diag.Error, loc, "%0 is not declared in the host scope", s.tu.Idents.Name(name))
		return 0, errors.New("sema: IMPORT of undeclared host name")
	}
	s.bind(name, id)
	return id, nil
}
