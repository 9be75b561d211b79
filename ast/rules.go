package ast

import (
	"errors"

	"github.com/CodethinkLabs/flang/internal/ident"
	"github.com/CodethinkLabs/flang/types"
)

// Errors returned by the type-rule helpers below. The analyzer (sema)
// is responsible for turning these into diag.Diagnostic reports with a
// location and a category; this package stays free of the diagnostic
// engine so the expression layer's rules can be unit tested in
// isolation, keeping type rules independent of how errors get reported.
var (
	ErrTypeMismatch       = errors.New("ast: operand type incompatible with operator")
	ErrConcatNonCharacter = errors.New("ast: // requires both operands to be CHARACTER")
	ErrLogicalOperand     = errors.New("ast: operand of a logical operator must be LOGICAL")
	ErrSubstringNonChar   = errors.New("ast: substring target must be CHARACTER")
	ErrSubscriptNonArray  = errors.New("ast: subscripted target must be an array")
	ErrRankMismatch       = errors.New("ast: subscript count does not match array rank")
)

func promoteRank(bk types.BaseKind) int {
	switch bk {
	case types.Integer:
		return 0
	case types.Real:
		return 1
	case types.DoublePrecision:
		return 2
	case types.Complex:
		return 3
	default:
		return -1
	}
}

// castTo wraps expr in an ImplicitCast targeting dest, unless expr is
// already exactly of type dest, in which case no cast node is needed:
// exactly one ImplicitCast is produced when the two types differ, none
// when they're already equal.
func (t *ExprTable) castTo(expr ExprID, dest types.ID) ExprID {
	if t.Type(expr) == dest {
		return expr
	}
	return t.alloc(Expr{kind: Cast, typ: dest, loc: t.Loc(expr), castFrom: expr})
}

// kindWidth returns the byte width named by typ's kind selector, or the
// base kind's default width if typ has no kind selector. A selector
// that cannot be folded yields (0, false).
func (t *ExprTable) kindWidth(typ types.ID) (int64, bool) {
	tys := t.tys
	sel, has := tys.KindSelector(typ)
	if !has {
		if tys.BaseKind(typ) == types.DoublePrecision {
			return 8, true
		}
		return 4, true
	}
	return t.EvaluateAsInteger(sel)
}

// promoteNumeric implements the numeric promotion ladder: Integer ->
// Real -> Double -> Complex, wider kind wins, an ImplicitCast wraps the
// narrower operand. Returns the (possibly cast-wrapped) operands, the
// resulting type, and a non-nil error if the two types differ and either
// operand is not numeric (the result type then defaults to whichever
// side *is* numeric, or the left side if neither is). Operands of one
// identical type are returned unchanged with a nil error, whatever that
// type is.
func (t *ExprTable) promoteNumeric(l, r ExprID) (ExprID, ExprID, types.ID, error) {
	tys := t.tys
	tl, tr := t.Type(l), t.Type(r)
	if tl == tr {
		return l, r, tl, nil
	}
	if !tys.IsNumeric(tl) || !tys.IsNumeric(tr) {
		wider := tl
		if !tys.IsNumeric(tl) && tys.IsNumeric(tr) {
			wider = tr
		}
		return l, r, wider, ErrTypeMismatch
	}
	bl, br := tys.BaseKind(tl), tys.BaseKind(tr)
	rl, rr := promoteRank(bl), promoteRank(br)
	switch {
	case rl > rr:
		return l, t.castTo(r, tl), tl, nil
	case rr > rl:
		return t.castTo(l, tr), r, tr, nil
	default:
		// Same base-kind rank, different kind parameter (e.g. REAL(4) vs
		// REAL(8)). Fold both kind widths where possible and let the
		// wider one win; when a width can't be folded, keep the left
		// operand's type and cast the right into it, a deterministic
		// tie-break.
		wl, okl := t.kindWidth(tl)
		wr, okr := t.kindWidth(tr)
		if okl && okr && wr > wl {
			return t.castTo(l, tr), r, tr, nil
		}
		return l, t.castTo(r, tl), tl, nil
	}
}

// concatType computes the result type of character concatenation: same
// kind, length equal to the sum of the operand lengths when both are
// foldable, otherwise an unspecified (backend-resolved) length.
func (t *ExprTable) concatType(tl, tr types.ID) types.ID {
	tys := t.tys
	nl, lok := t.characterLen(tl)
	nr, rok := t.characterLen(tr)
	kindSel, hasKind := tys.KindSelector(tl)
	if lok && rok {
		lenExpr := t.alloc(Expr{kind: IntegerConst, typ: tys.Base(types.Integer), intVal: bigFromInt64(nl + nr)})
		return tys.MakeCharacter(lenExpr, true, kindSel, hasKind)
	}
	return tys.MakeCharacter(0, false, kindSel, hasKind)
}

func (t *ExprTable) characterLen(typ types.ID) (int64, bool) {
	sel, has := t.tys.LengthSelector(typ)
	if !has {
		return 0, false
	}
	return t.EvaluateAsInteger(sel)
}

// NewUnary applies the unary operator type rules to the built-in unary
// operators (Not/Plus/Minus). Use NewDefinedUnary for a user-defined
// unary operator.
func (t *ExprTable) NewUnary(loc Loc, op UnaryOp, operand ExprID) (ExprID, error) {
	tys := t.tys
	to := t.Type(operand)
	switch op {
	case UopNot:
		if !tys.IsLogical(to) {
			return t.alloc(Expr{kind: UnaryExpr, typ: tys.Base(types.Logical), loc: loc, unaryOp: op, operandL: operand}), ErrLogicalOperand
		}
		return t.alloc(Expr{kind: UnaryExpr, typ: to, loc: loc, unaryOp: op, operandL: operand}), nil
	case UopPlus, UopMinus:
		if !tys.IsNumeric(to) {
			return t.alloc(Expr{kind: UnaryExpr, typ: to, loc: loc, unaryOp: op, operandL: operand}), ErrTypeMismatch
		}
		return t.alloc(Expr{kind: UnaryExpr, typ: to, loc: loc, unaryOp: op, operandL: operand}), nil
	default:
		panic("ast: NewUnary does not accept UopDefined; use NewDefinedUnary")
	}
}

// NewDefinedUnary builds a user-defined unary operator application. Its
// result type is whatever the bound operator function's declared return
// type is (sema looks up the bound function and takes the type of its
// result variable before invoking this constructor).
func (t *ExprTable) NewDefinedUnary(loc Loc, name ident.ID, operand ExprID, result types.ID) ExprID {
	return t.alloc(Expr{
		kind: UnaryExpr, typ: result, loc: loc,
		unaryOp: UopDefined, operandL: operand, definedOp: name, isDefined: true,
	})
}

// NewBinary applies the binary operator type rules to the built-in
// operators. Use NewDefinedBinary for a user-defined (defined) operator.
func (t *ExprTable) NewBinary(loc Loc, op BinaryOp, l, r ExprID) (ExprID, error) {
	tys := t.tys
	tl, tr := t.Type(l), t.Type(r)
	switch {
	case op == BopConcat:
		if !tys.IsCharacter(tl) || !tys.IsCharacter(tr) {
			return t.alloc(Expr{kind: BinaryExpr, typ: tys.MakeCharacter(0, false, 0, false), loc: loc, binaryOp: op, operandL: l, operandR: r}), ErrConcatNonCharacter
		}
		return t.alloc(Expr{kind: BinaryExpr, typ: t.concatType(tl, tr), loc: loc, binaryOp: op, operandL: l, operandR: r}), nil

	case op.IsRelational():
		if tys.IsCharacter(tl) && tys.IsCharacter(tr) {
			return t.alloc(Expr{kind: BinaryExpr, typ: tys.Base(types.Logical), loc: loc, binaryOp: op, operandL: l, operandR: r}), nil
		}
		nl, nr, _, err := t.promoteNumeric(l, r)
		return t.alloc(Expr{kind: BinaryExpr, typ: tys.Base(types.Logical), loc: loc, binaryOp: op, operandL: nl, operandR: nr}), err

	case op.IsLogical():
		if !tys.IsLogical(tl) || !tys.IsLogical(tr) {
			return t.alloc(Expr{kind: BinaryExpr, typ: tys.Base(types.Logical), loc: loc, binaryOp: op, operandL: l, operandR: r}), ErrLogicalOperand
		}
		return t.alloc(Expr{kind: BinaryExpr, typ: tys.Base(types.Logical), loc: loc, binaryOp: op, operandL: l, operandR: r}), nil

	default: // Pow, Mul, Div, Add, Sub
		nl, nr, result, err := t.promoteNumeric(l, r)
		return t.alloc(Expr{kind: BinaryExpr, typ: result, loc: loc, binaryOp: op, operandL: nl, operandR: nr}), err
	}
}

// NewDefinedBinary builds a user-defined binary operator application.
func (t *ExprTable) NewDefinedBinary(loc Loc, name ident.ID, l, r ExprID, result types.ID) ExprID {
	return t.alloc(Expr{
		kind: BinaryExpr, typ: result, loc: loc,
		binaryOp: BopDefined, operandL: l, operandR: r, definedOp: name, isDefined: true,
	})
}
