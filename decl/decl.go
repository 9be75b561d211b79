// Package decl implements the declaration tree (component C4): nested
// declaration contexts (translation unit -> program/subprogram ->
// derived type) and the declaration variants they contain.
//
// Declarations are nominal, not structural: each is a distinct entity
// even if two variables happen to share a name and type in different
// scopes, so unlike types.Table this package does not intern — every
// New* call allocates a fresh node. What it shares with types is the
// arena-and-handle storage discipline.
package decl

import (
	"github.com/CodethinkLabs/flang/internal/arena"
	"github.com/CodethinkLabs/flang/internal/ident"
	"github.com/CodethinkLabs/flang/types"
)

// ID is a declaration handle. It is defined as an alias of
// types.DeclRef so a variable's Record base type (which stores a
// types.DeclRef) and a declaration's own identity are the same number
// space without either package importing the other.
type ID = types.DeclRef

// Kind discriminates the declaration variants.
type Kind int

const (
	KindTranslationUnit Kind = iota
	KindMainProgram
	KindFunction
	KindSubroutine
	KindVariable
	KindField
	KindRecord
)

func (k Kind) IsContext() bool {
	switch k {
	case KindTranslationUnit, KindMainProgram, KindFunction, KindSubroutine, KindRecord:
		return true
	default:
		return false
	}
}

// Attr is the variable-attribute bitset: parameter-ness, argument-ness,
// intent, asynchronous, external, intrinsic.
type Attr uint16

const (
	AttrParameter Attr = 1 << iota
	AttrArgument
	AttrIntentIn
	AttrIntentOut
	AttrIntentInOut
	AttrAsynchronous
	AttrExternal
	AttrIntrinsic
)

func (a Attr) Has(want Attr) bool { return a&want == want }

// Loc is a source location, carried through from the parser (out of
// scope for this core) onto every declaration and node that needs one.
type Loc struct {
	File string
	Line int
	Col  int
}

// Decl is the tagged-union representation of one declaration or
// declaration context.
type Decl struct {
	kind Kind
	name ident.ID
	loc  Loc
	ctx  ID // owning declaration context; zero for the translation-unit root

	typ    types.ID
	hasTyp bool
	attrs  Attr

	// Context-bearing kinds (TranslationUnit, MainProgram, Function,
	// Subroutine, Record) additionally own an ordered member list and a
	// parent link for the scope tree.
	parent  ID
	members []ID

	// Function only: the synthetic result variable, so that `F = expr`
	// inside F's body is an ordinary assignment to an ordinary VarExpr
	// typed by F's declared return type.
	result ID

	// Function/Subroutine only: parameter variable decls, in declared
	// order.
	params []ID

	// Record only: field decls, in declared order.
	fields []ID
}

// Table owns every declaration and declaration context for one
// translation unit.
type Table struct {
	arena *arena.Arena[Decl]
	root  ID
}

// NewTable creates a declaration table whose root is an empty
// translation-unit context, owning every declaration and declaration
// context reachable from it.
func NewTable() *Table {
	t := &Table{arena: arena.New[Decl](256)}
	t.root = ID(t.arena.Alloc(Decl{kind: KindTranslationUnit}))
	return t
}

// Root returns the translation-unit declaration context. Popping it is
// forbidden; it has no enclosing scope to return to.
func (t *Table) Root() ID { return t.root }

func (t *Table) at(id ID) *Decl { return t.arena.At(arena.Handle(id)) }

// Kind, Name, Loc, Parent, Members and Attrs expose the declaration's
// fields through read-only accessors, matching the style of types.Table (a stable, pointer-free API over
// arena-backed storage).
func (t *Table) Kind(id ID) Kind     { return t.at(id).kind }
func (t *Table) Name(id ID) ident.ID { return t.at(id).name }
func (t *Table) Loc(id ID) Loc       { return t.at(id).loc }
func (t *Table) Parent(id ID) ID     { return t.at(id).parent }
func (t *Table) Members(id ID) []ID  { return t.at(id).members }
func (t *Table) Attrs(id ID) Attr    { return t.at(id).attrs }

// Type returns id's declared type and whether it has one (declaration
// contexts have none; a function's type is on its result variable).
func (t *Table) Type(id ID) (types.ID, bool) {
	n := t.at(id)
	return n.typ, n.hasTyp
}

// Result returns a function's synthetic result-variable declaration.
func (t *Table) Result(id ID) ID {
	n := t.at(id)
	if n.kind != KindFunction {
		panic("decl: Result of a non-function declaration")
	}
	return n.result
}

// Params returns a function's or subroutine's parameter declarations,
// in declared order.
func (t *Table) Params(id ID) []ID { return t.at(id).params }

// Fields returns a record's field declarations, in declared order.
func (t *Table) Fields(id ID) []ID { return t.at(id).fields }

func (t *Table) addMember(parent, child ID) {
	p := t.at(parent)
	p.members = append(p.members, child)
}

// NewContext pushes a new declaration context (main program, function,
// subroutine, or derived type) as a child of parent and registers it as
// one of parent's members.
func (t *Table) NewContext(kind Kind, parent ID, name ident.ID, loc Loc) ID {
	if !kind.IsContext() {
		panic("decl: NewContext on a non-context kind")
	}
	id := ID(t.arena.Alloc(Decl{kind: kind, ctx: parent, parent: parent, name: name, loc: loc}))
	t.addMember(parent, id)
	return id
}

// NewVariable declares a variable (or, inside a KindRecord context, a
// field — callers pass KindField explicitly) in parent.
func (t *Table) NewVariable(kind Kind, parent ID, name ident.ID, loc Loc, typ types.ID, attrs Attr) ID {
	if kind != KindVariable && kind != KindField {
		panic("decl: NewVariable requires KindVariable or KindField")
	}
	id := ID(t.arena.Alloc(Decl{
		kind: kind, ctx: parent, parent: parent, name: name, loc: loc,
		typ: typ, hasTyp: true, attrs: attrs,
	}))
	t.addMember(parent, id)
	if kind == KindField {
		rec := t.at(parent)
		rec.fields = append(rec.fields, id)
	}
	return id
}

// AddParam records id (already created via NewVariable) as the next
// positional parameter of the function/subroutine context fn.
func (t *Table) AddParam(fn, id ID) {
	n := t.at(fn)
	n.params = append(n.params, id)
}

// SetResult installs the synthetic result-variable declaration for a
// function context.
func (t *Table) SetResult(fn, result ID) {
	n := t.at(fn)
	if n.kind != KindFunction {
		panic("decl: SetResult on a non-function declaration")
	}
	n.result = result
}

// SetType backfills a declaration's type (used when implicit typing or
// a later type-declaration statement determines the type of a name that
// was referenced, but not yet typed, earlier in the scope).
func (t *Table) SetType(id ID, typ types.ID) {
	n := t.at(id)
	n.typ = typ
	n.hasTyp = true
}

// AddAttrs ORs extra attribute bits onto an existing declaration.
func (t *Table) AddAttrs(id ID, extra Attr) {
	n := t.at(id)
	n.attrs |= extra
}

// FindInContext looks for a member of ctx named name, used by the
// redeclaration check to report a diagnostic at the new site with a
// note at the prior one. It is a linear scan: declaration contexts
// in this subset of the language are small (a program unit's
// specification part), so this trades asymptotic elegance for the
// simplicity of needing no secondary index.
func (t *Table) FindInContext(ctx ID, name ident.ID) (ID, bool) {
	for _, m := range t.Members(ctx) {
		if t.Name(m) == name {
			return m, true
		}
	}
	return 0, false
}
