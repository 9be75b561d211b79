// Package ast implements the expression and statement trees (components
// C5 and C6): a closed tagged variant per node family, arena-backed,
// immutable once constructed, in place of an interface-based node
// hierarchy.
//
// An interface-based ast.Node implemented by many concrete struct types,
// each embedding a shared NodeBase for Loc/Type/context, fights arena
// storage (an arena holds one concrete T, not a family of
// pointer-receiver types), so this package instead uses one Expr struct
// with an ExprKind tag and payload fields used according to the tag, the
// same discipline already applied to types.Table and decl.Table. The
// vocabulary carried forward almost unchanged: an ASTType-style Kind
// tag, and enum-with-String()-via-lookup-table operator types (BinaryOp
// together with its bopStrings table).
package ast

import (
	"math/big"

	"github.com/CodethinkLabs/flang/decl"
	"github.com/CodethinkLabs/flang/internal/arena"
	"github.com/CodethinkLabs/flang/internal/ident"
	"github.com/CodethinkLabs/flang/types"
)

// ExprID is an expression handle. Defined as an alias of types.ExprRef
// so types.Table can store "the kind-selector expression of this type"
// without importing ast.
type ExprID = types.ExprRef

// ExprKind discriminates the expression variants.
type ExprKind int

const (
	IntegerConst ExprKind = iota
	RealConst
	ComplexConst
	CharacterConst
	BOZConst
	LogicalConst
	RepeatedConst
	Var
	Substring
	ArrayElement
	UnaryExpr
	BinaryExpr
	Cast
	Call
	IntrinsicCall
	ImpliedDo
	ArrayConstructor
	UnresolvedIdent
)

// UnaryOp enumerates the unary operators.
type UnaryOp int

const (
	UopNot UnaryOp = iota
	UopPlus
	UopMinus
	UopDefined
)

var uopStrings = [...]string{
	UopNot:     ".NOT.",
	UopPlus:    "+",
	UopMinus:   "-",
	UopDefined: ".USER.",
}

func (u UnaryOp) String() string { return uopStrings[u] }

// BinaryOp enumerates the binary operators, in precedence order
// (highest first): Pow, then Mul/Div, then Add/Sub, then Concat, then
// the relational operators, then the logical operators, then
// user-defined.
type BinaryOp int

const (
	BopPow BinaryOp = iota
	BopMul
	BopDiv
	BopAdd
	BopSub
	BopConcat
	BopEq
	BopNe
	BopLt
	BopLe
	BopGt
	BopGe
	BopAnd
	BopOr
	BopEqv
	BopNeqv
	BopDefined
)

var bopStrings = [...]string{
	BopPow: "**", BopMul: "*", BopDiv: "/",
	BopAdd: "+", BopSub: "-", BopConcat: "//",
	BopEq: "==", BopNe: "/=", BopLt: "<", BopLe: "<=", BopGt: ">", BopGe: ">=",
	BopAnd: ".AND.", BopOr: ".OR.", BopEqv: ".EQV.", BopNeqv: ".NEQV.",
	BopDefined: ".USER.",
}

func (b BinaryOp) String() string { return bopStrings[b] }

// IsRelational reports whether b is one of the nonassociative comparison
// operators.
func (b BinaryOp) IsRelational() bool {
	switch b {
	case BopEq, BopNe, BopLt, BopLe, BopGt, BopGe:
		return true
	default:
		return false
	}
}

// IsLogical reports whether b is one of the logical connectives.
func (b BinaryOp) IsLogical() bool {
	switch b {
	case BopAnd, BopOr, BopEqv, BopNeqv:
		return true
	default:
		return false
	}
}

// Loc mirrors decl.Loc; expressions carry their own copy rather than
// importing decl's type alias chain just for a value type.
type Loc = decl.Loc

// NamedArg is one named (keyword) call argument.
type NamedArg struct {
	Name ident.ID
	Arg  ExprID
}

// Expr is the tagged-union representation of one expression node.
type Expr struct {
	kind ExprKind
	typ  types.ID
	loc  Loc
	end  Loc
	hasEnd bool

	// Numeric/character/logical constant payloads. Only one of these is
	// meaningful per Kind. Arbitrary-precision storage uses math/big,
	// the one standard-library choice in the repo where no third-party
	// bignum library was available (see DESIGN.md).
	intVal     *big.Int
	floatVal   *big.Float
	realPart   *big.Float // ComplexConst
	imagPart   *big.Float // ComplexConst
	charVal    []byte
	logicalVal bool
	bozDigits  string // raw digits without the radix letter (kept in bozRadix); untyped until a context applies a conversion
	bozRadix   byte

	kindSel    ExprID // optional kind-selector attached to a numeric/logical constant
	hasKindSel bool

	// RepeatedConst
	repeatCount *big.Int
	repeatElem  ExprID

	// Var / UnresolvedIdent
	varDecl decl.ID
	name    ident.ID

	// Substring / ArrayElement
	target      ExprID
	subStart    ExprID
	hasSubStart bool
	subEnd      ExprID
	hasSubEnd   bool
	subscripts  []ExprID

	// UnaryExpr / BinaryExpr
	unaryOp   UnaryOp
	binaryOp  BinaryOp
	operandL  ExprID
	operandR  ExprID
	definedOp ident.ID
	isDefined bool

	// Cast
	castFrom ExprID

	// Call / IntrinsicCall
	callee     decl.ID
	intrinsic  IntrinsicKind
	positional []ExprID
	named      []NamedArg

	// ImpliedDo
	loopVar    decl.ID
	body       []ExprID
	initExpr   ExprID
	termExpr   ExprID
	strideExpr ExprID
	hasStride  bool

	// ArrayConstructor
	items []ExprID
}

// ExprTable owns every expression node for one translation unit. It
// keeps a reference to the owning translation unit's type table because
// nearly every constructor needs to consult or build a types.ID.
type ExprTable struct {
	arena *arena.Arena[Expr]
	tys   *types.Table
}

// NewExprTable creates an empty expression table over tys.
func NewExprTable(tys *types.Table) *ExprTable {
	return &ExprTable{arena: arena.New[Expr](1024), tys: tys}
}

func (t *ExprTable) alloc(e Expr) ExprID {
	return ExprID(t.arena.Alloc(e))
}

func (t *ExprTable) at(id ExprID) *Expr { return t.arena.At(arena.Handle(id)) }

// Valid reports whether id names a constructed expression. The "empty
// result" sentinel is the zero ExprID.
func (t *ExprTable) Valid(id ExprID) bool { return t.arena.Valid(arena.Handle(id)) }

// Kind, Type, and Loc are the universal accessors every expression has.
func (t *ExprTable) Kind(id ExprID) ExprKind { return t.at(id).kind }
func (t *ExprTable) Type(id ExprID) types.ID { return t.at(id).typ }
func (t *ExprTable) Loc(id ExprID) Loc       { return t.at(id).loc }

// EndLoc returns a constant expression's closing source location, if
// set. Constant expressions additionally carry a closing source
// location alongside their starting one.
func (t *ExprTable) EndLoc(id ExprID) (Loc, bool) {
	n := t.at(id)
	return n.end, n.hasEnd
}

// SetType backfills id's result type, for a caller that determines a
// node's type only after its operands are already constructed.
func (t *ExprTable) SetType(id ExprID, typ types.ID) { t.at(id).typ = typ }
