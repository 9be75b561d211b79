package ast

import (
	"github.com/CodethinkLabs/flang/decl"
	"github.com/CodethinkLabs/flang/internal/arena"
	"github.com/CodethinkLabs/flang/types"
)

// StmtID is a statement handle, scoped to one StmtTable (one translation
// unit's statements).
type StmtID uint32

// StmtKind discriminates the executable-statement variants reachable
// from the parser's actions, plus a FORMAT statement for list-directed
// and formatted I/O, and the two specification statements (PARAMETER,
// IMPLICIT) that the analyzer also returns as statement nodes.
type StmtKind int

const (
	AssignmentStmt StmtKind = iota
	IfStmt
	ContinueStmt
	StopStmt
	GotoStmt
	AssignStmt
	AssignedGotoStmt
	PrintStmt
	FormatStmt
	BlockStmt
	ParameterStmt
	ImplicitStmt
)

// ImplicitRange is one letter-range clause of an IMPLICIT statement
// (e.g. the "(A-H)" of "IMPLICIT DOUBLE PRECISION (A-H)"), paired with
// the type that range of first letters now defaults to.
type ImplicitRange struct {
	From, To byte
	Type     types.ID
}

// Stmt is the tagged-union representation of one executable statement.
type Stmt struct {
	kind     StmtKind
	loc      Loc
	label    int32
	hasLabel bool

	// AssignmentStmt
	lhs, rhs ExprID

	// IfStmt
	cond     ExprID
	thenBody []StmtID
	elseBody []StmtID
	hasElse  bool

	// StopStmt
	code    ExprID
	hasCode bool

	// GotoStmt / AssignStmt's label operand
	targetLabel int32
	target      StmtID
	hasTarget   bool

	// AssignStmt / AssignedGotoStmt
	variable         decl.ID
	candidates       []int32
	candidateTargets []StmtID

	// PrintStmt: formatSel is '*' when hasFormatSel is false and items
	// carries the output list; a label or character-expression format
	// selector is recorded in formatSel when present.
	formatSel    ExprID
	hasFormatSel bool
	items        []ExprID

	// FormatStmt: the format's edit-descriptor text, unparsed —
	// interpreting edit descriptors is an I/O-runtime concern out of this
	// front-end's scope.
	formatSpec string

	// BlockStmt
	body []StmtID

	// ParameterStmt: the declarations created from each (name, const-expr)
	// pair, in declared order.
	paramDecls []decl.ID

	// ImplicitStmt: isNone selects IMPLICIT NONE, which carries no ranges;
	// otherwise ranges holds the letter-range/type clauses.
	implicitRanges []ImplicitRange
	implicitNone   bool
}

// StmtTable owns every statement of one translation unit, across all of
// its program units.
type StmtTable struct {
	arena *arena.Arena[Stmt]
}

func NewStmtTable() *StmtTable {
	return &StmtTable{arena: arena.New[Stmt](512)}
}

func (t *StmtTable) alloc(s Stmt) StmtID { return StmtID(t.arena.Alloc(s)) }
func (t *StmtTable) at(id StmtID) *Stmt  { return t.arena.At(arena.Handle(id)) }

func (t *StmtTable) Valid(id StmtID) bool { return t.arena.Valid(arena.Handle(id)) }
func (t *StmtTable) Kind(id StmtID) StmtKind { return t.at(id).kind }
func (t *StmtTable) Loc(id StmtID) Loc       { return t.at(id).loc }

// Label returns a statement's source label, if it has one.
func (t *StmtTable) Label(id StmtID) (int32, bool) {
	n := t.at(id)
	return n.label, n.hasLabel
}

// SetLabel attaches a source label to an already-built statement (the
// grammar produces the label before the statement body in some forms,
// and after it in others, so labeling is a separate step from
// construction).
func (t *StmtTable) SetLabel(id StmtID, label int32) {
	n := t.at(id)
	n.label = label
	n.hasLabel = true
}

// SetTarget fixes up a Goto/Assign statement's resolved branch target,
// called by the analyzer once LabelTable.Register or .Request resolves
// targetLabel to an actual statement.
func (t *StmtTable) SetTarget(id StmtID, target StmtID) {
	n := t.at(id)
	n.target = target
	n.hasTarget = true
}

// SetCandidateTarget fixes up one entry of an assigned-GOTO's candidate
// list, by index into Candidates.
func (t *StmtTable) SetCandidateTarget(id StmtID, index int, target StmtID) {
	n := t.at(id)
	for len(n.candidateTargets) <= index {
		n.candidateTargets = append(n.candidateTargets, 0)
	}
	n.candidateTargets[index] = target
}

func (t *StmtTable) NewAssignment(loc Loc, lhs, rhs ExprID) StmtID {
	return t.alloc(Stmt{kind: AssignmentStmt, loc: loc, lhs: lhs, rhs: rhs})
}

func (t *StmtTable) Assignment(id StmtID) (lhs, rhs ExprID) {
	n := t.at(id)
	return n.lhs, n.rhs
}

// NewIf builds a block IF/ELSE/END IF (or, with elseBody nil, a single
// logical IF with no else branch).
func (t *StmtTable) NewIf(loc Loc, cond ExprID, thenBody, elseBody []StmtID, hasElse bool) StmtID {
	return t.alloc(Stmt{kind: IfStmt, loc: loc, cond: cond, thenBody: thenBody, elseBody: elseBody, hasElse: hasElse})
}

func (t *StmtTable) If(id StmtID) (cond ExprID, thenBody, elseBody []StmtID, hasElse bool) {
	n := t.at(id)
	return n.cond, n.thenBody, n.elseBody, n.hasElse
}

// NewContinue builds a CONTINUE, most often only meaningful as a GOTO's
// labeled target.
func (t *StmtTable) NewContinue(loc Loc) StmtID {
	return t.alloc(Stmt{kind: ContinueStmt, loc: loc})
}

func (t *StmtTable) NewStop(loc Loc, code ExprID, hasCode bool) StmtID {
	return t.alloc(Stmt{kind: StopStmt, loc: loc, code: code, hasCode: hasCode})
}

func (t *StmtTable) Stop(id StmtID) (code ExprID, hasCode bool) {
	n := t.at(id)
	return n.code, n.hasCode
}

// NewGoto builds an unconditional GOTO to targetLabel. Its target is
// unresolved (hasTarget false) until the analyzer calls SetTarget.
func (t *StmtTable) NewGoto(loc Loc, targetLabel int32) StmtID {
	return t.alloc(Stmt{kind: GotoStmt, loc: loc, targetLabel: targetLabel})
}

// NewAssign builds ASSIGN label TO variable, which binds variable to a
// branch target for a later assigned GOTO.
func (t *StmtTable) NewAssign(loc Loc, targetLabel int32, variable decl.ID) StmtID {
	return t.alloc(Stmt{kind: AssignStmt, loc: loc, targetLabel: targetLabel, variable: variable})
}

// NewAssignedGoto builds GOTO variable [, (candidates...)]. An empty
// candidates list means any label previously ASSIGNed to variable is
// accepted.
func (t *StmtTable) NewAssignedGoto(loc Loc, variable decl.ID, candidates []int32) StmtID {
	return t.alloc(Stmt{kind: AssignedGotoStmt, loc: loc, variable: variable, candidates: candidates})
}

func (t *StmtTable) GotoTarget(id StmtID) (targetLabel int32, target StmtID, hasTarget bool) {
	n := t.at(id)
	return n.targetLabel, n.target, n.hasTarget
}

func (t *StmtTable) Variable(id StmtID) decl.ID { return t.at(id).variable }

func (t *StmtTable) Candidates(id StmtID) ([]int32, []StmtID) {
	n := t.at(id)
	return n.candidates, n.candidateTargets
}

// NewPrint builds PRINT fmt, items.... hasFormatSel false means fmt was
// "*" (list-directed); otherwise formatSel names a label (as an
// IntegerConst) or a character expression, built via the star /
// default-char-expr / label format-specifier helpers.
func (t *StmtTable) NewPrint(loc Loc, formatSel ExprID, hasFormatSel bool, items []ExprID) StmtID {
	return t.alloc(Stmt{kind: PrintStmt, loc: loc, formatSel: formatSel, hasFormatSel: hasFormatSel, items: items})
}

func (t *StmtTable) Print(id StmtID) (formatSel ExprID, hasFormatSel bool, items []ExprID) {
	n := t.at(id)
	return n.formatSel, n.hasFormatSel, n.items
}

// NewFormat builds a FORMAT statement. spec is the descriptor text
// verbatim; it is not parsed here.
func (t *StmtTable) NewFormat(loc Loc, spec string) StmtID {
	return t.alloc(Stmt{kind: FormatStmt, loc: loc, formatSpec: spec})
}

func (t *StmtTable) FormatSpec(id StmtID) string { return t.at(id).formatSpec }

func (t *StmtTable) NewBlock(loc Loc, body []StmtID) StmtID {
	return t.alloc(Stmt{kind: BlockStmt, loc: loc, body: body})
}

func (t *StmtTable) Block(id StmtID) []StmtID { return t.at(id).body }

// NewParameter builds a PARAMETER statement wrapping the declarations
// already created (one per name) by the per-pair declaration action.
func (t *StmtTable) NewParameter(loc Loc, decls []decl.ID) StmtID {
	return t.alloc(Stmt{kind: ParameterStmt, loc: loc, paramDecls: decls})
}

func (t *StmtTable) ParameterDecls(id StmtID) []decl.ID { return t.at(id).paramDecls }

// NewImplicit builds an IMPLICIT statement over one or more letter-range
// clauses.
func (t *StmtTable) NewImplicit(loc Loc, ranges []ImplicitRange) StmtID {
	return t.alloc(Stmt{kind: ImplicitStmt, loc: loc, implicitRanges: ranges})
}

// NewImplicitNone builds an IMPLICIT NONE statement.
func (t *StmtTable) NewImplicitNone(loc Loc) StmtID {
	return t.alloc(Stmt{kind: ImplicitStmt, loc: loc, implicitNone: true})
}

// Implicit returns an IMPLICIT statement's letter-range clauses and
// whether it is the NONE form (in which case ranges is empty).
func (t *StmtTable) Implicit(id StmtID) (ranges []ImplicitRange, isNone bool) {
	n := t.at(id)
	return n.implicitRanges, n.implicitNone
}
