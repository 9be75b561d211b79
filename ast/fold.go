package ast

import (
	"math/big"

	"github.com/CodethinkLabs/flang/types"
)

// IsEvaluable reports whether id's value is known at compile time: a
// constant, or a composition of constants through the folded operator
// set (arithmetic, logical, comparison, concatenation, kind coercion).
func (t *ExprTable) IsEvaluable(id ExprID) bool {
	if !t.Valid(id) {
		return false
	}
	n := t.at(id)
	switch n.kind {
	case IntegerConst, RealConst, ComplexConst, CharacterConst, LogicalConst, BOZConst:
		return true
	case RepeatedConst:
		return t.IsEvaluable(n.repeatElem)
	case UnaryExpr:
		return !n.isDefined && t.IsEvaluable(n.operandL)
	case BinaryExpr:
		return !n.isDefined && t.IsEvaluable(n.operandL) && t.IsEvaluable(n.operandR)
	case Cast:
		return t.IsEvaluable(n.castFrom)
	case IntrinsicCall:
		for _, a := range n.positional {
			if !t.IsEvaluable(a) {
				return false
			}
		}
		return true
	default:
		// Var, UnresolvedIdent, Substring, ArrayElement, Call, ImpliedDo,
		// ArrayConstructor: none of these are constant expressions.
		return false
	}
}

// GatherNonEvaluableChildren walks id's subtree and returns the leaf
// expressions responsible for it not being evaluable, for the analyzer
// to cite in a diagnostic's context.
func (t *ExprTable) GatherNonEvaluableChildren(id ExprID) []ExprID {
	if !t.Valid(id) || t.IsEvaluable(id) {
		return nil
	}
	n := t.at(id)
	var kids []ExprID
	switch n.kind {
	case RepeatedConst:
		kids = []ExprID{n.repeatElem}
	case UnaryExpr:
		kids = []ExprID{n.operandL}
	case BinaryExpr:
		kids = []ExprID{n.operandL, n.operandR}
	case Cast:
		kids = []ExprID{n.castFrom}
	case IntrinsicCall:
		kids = n.positional
	default:
		return []ExprID{id}
	}
	var out []ExprID
	for _, k := range kids {
		if t.IsEvaluable(k) {
			continue
		}
		if sub := t.GatherNonEvaluableChildren(k); len(sub) > 0 {
			out = append(out, sub...)
		} else {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		out = append(out, id)
	}
	return out
}

// EvaluateAsInteger folds id to a host int64 when its folded value is
// integer-typed, wrapping to id's declared kind width with two's
// complement semantics on overflow.
func (t *ExprTable) EvaluateAsInteger(id ExprID) (int64, bool) {
	if !t.Valid(id) {
		return 0, false
	}
	n := t.at(id)
	switch n.kind {
	case IntegerConst:
		width, _ := t.kindWidth(n.typ)
		return wrapToKindWidth(n.intVal, width), true

	case BOZConst:
		v, ok := parseBOZ(n.bozRadix, n.bozDigits)
		if !ok {
			return 0, false
		}
		return v.Int64(), true

	case UnaryExpr:
		if n.isDefined {
			return 0, false
		}
		v, ok := t.EvaluateAsInteger(n.operandL)
		if !ok {
			return 0, false
		}
		if n.unaryOp == UopMinus {
			width, _ := t.kindWidth(n.typ)
			return wrapToKindWidth(new(big.Int).Neg(big.NewInt(v)), width), true
		}
		return v, true

	case BinaryExpr:
		if n.isDefined || !isIntegerType(t.tys, n.typ) {
			return 0, false
		}
		l, lok := t.EvaluateAsInteger(n.operandL)
		r, rok := t.EvaluateAsInteger(n.operandR)
		if !lok || !rok {
			return 0, false
		}
		lb, rb := big.NewInt(l), big.NewInt(r)
		var res *big.Int
		switch n.binaryOp {
		case BopAdd:
			res = new(big.Int).Add(lb, rb)
		case BopSub:
			res = new(big.Int).Sub(lb, rb)
		case BopMul:
			res = new(big.Int).Mul(lb, rb)
		case BopDiv:
			if rb.Sign() == 0 {
				return 0, false
			}
			res = new(big.Int).Quo(lb, rb) // truncates toward zero
		case BopPow:
			if rb.Sign() < 0 {
				return 0, false
			}
			res = new(big.Int).Exp(lb, rb, nil)
		default:
			return 0, false
		}
		width, _ := t.kindWidth(n.typ)
		return wrapToKindWidth(res, width), true

	case Cast:
		if !isIntegerType(t.tys, n.typ) {
			return 0, false
		}
		width, _ := t.kindWidth(n.typ)
		if isIntegerType(t.tys, t.Type(n.castFrom)) {
			v, ok := t.EvaluateAsInteger(n.castFrom)
			if !ok {
				return 0, false
			}
			return wrapToKindWidth(big.NewInt(v), width), true
		}
		f, ok := t.evalReal(n.castFrom)
		if !ok {
			return 0, false
		}
		iv, _ := f.Int(nil)
		return wrapToKindWidth(iv, width), true

	case IntrinsicCall:
		return t.evalIntegerIntrinsic(n)

	default:
		return 0, false
	}
}

func (t *ExprTable) evalIntegerIntrinsic(n *Expr) (int64, bool) {
	args := n.positional
	width, _ := t.kindWidth(n.typ)
	switch n.intrinsic {
	case IntInt:
		if len(args) != 1 {
			return 0, false
		}
		if isIntegerType(t.tys, t.Type(args[0])) {
			v, ok := t.EvaluateAsInteger(args[0])
			if !ok {
				return 0, false
			}
			return wrapToKindWidth(big.NewInt(v), width), true
		}
		f, ok := t.evalReal(args[0])
		if !ok {
			return 0, false
		}
		iv, _ := f.Int(nil)
		return wrapToKindWidth(iv, width), true

	case IntAbs:
		if len(args) != 1 {
			return 0, false
		}
		v, ok := t.EvaluateAsInteger(args[0])
		if !ok {
			return 0, false
		}
		if v < 0 {
			v = -v
		}
		return wrapToKindWidth(big.NewInt(v), width), true

	case IntMod:
		if len(args) != 2 {
			return 0, false
		}
		a, aok := t.EvaluateAsInteger(args[0])
		b, bok := t.EvaluateAsInteger(args[1])
		if !aok || !bok || b == 0 {
			return 0, false
		}
		return wrapToKindWidth(big.NewInt(a%b), width), true

	case IntMin, IntMax:
		if len(args) == 0 {
			return 0, false
		}
		best, ok := t.EvaluateAsInteger(args[0])
		if !ok {
			return 0, false
		}
		for _, a := range args[1:] {
			v, ok := t.EvaluateAsInteger(a)
			if !ok {
				return 0, false
			}
			switch {
			case n.intrinsic == IntMin && v < best:
				best = v
			case n.intrinsic == IntMax && v > best:
				best = v
			}
		}
		return wrapToKindWidth(big.NewInt(best), width), true

	case IntLen:
		if len(args) != 1 {
			return 0, false
		}
		return t.characterLen(t.Type(args[0]))

	case IntIchar:
		if len(args) != 1 {
			return 0, false
		}
		a := t.at(args[0])
		if a.kind != CharacterConst || len(a.charVal) != 1 {
			return 0, false
		}
		return int64(a.charVal[0]), true

	default:
		return 0, false
	}
}

// evalReal folds id to an arbitrary-precision real, used internally by
// Cast and INT() when folding through a real-valued subexpression.
// Unlike EvaluateAsInteger this is not exposed outside the package: only
// integer-valued folding is a public entry point, not its real
// counterpart.
func (t *ExprTable) evalReal(id ExprID) (*big.Float, bool) {
	if !t.Valid(id) {
		return nil, false
	}
	n := t.at(id)
	switch n.kind {
	case RealConst:
		return n.floatVal, true
	case IntegerConst:
		v, ok := t.EvaluateAsInteger(id)
		if !ok {
			return nil, false
		}
		return new(big.Float).SetInt64(v), true
	case UnaryExpr:
		if n.isDefined {
			return nil, false
		}
		v, ok := t.evalReal(n.operandL)
		if !ok {
			return nil, false
		}
		if n.unaryOp == UopMinus {
			return new(big.Float).Neg(v), true
		}
		return v, true
	case BinaryExpr:
		if n.isDefined {
			return nil, false
		}
		l, lok := t.evalReal(n.operandL)
		r, rok := t.evalReal(n.operandR)
		if !lok || !rok {
			return nil, false
		}
		switch n.binaryOp {
		case BopAdd:
			return new(big.Float).Add(l, r), true
		case BopSub:
			return new(big.Float).Sub(l, r), true
		case BopMul:
			return new(big.Float).Mul(l, r), true
		case BopDiv:
			if r.Sign() == 0 {
				return nil, false
			}
			return new(big.Float).Quo(l, r), true
		default:
			return nil, false
		}
	case Cast:
		return t.evalReal(n.castFrom)
	default:
		return nil, false
	}
}

func isIntegerType(tys *types.Table, typ types.ID) bool {
	return tys.IsNumeric(typ) && tys.BaseKind(typ) == types.Integer
}

func parseBOZ(radix byte, digits string) (*big.Int, bool) {
	var base int
	switch radix {
	case 'B':
		base = 2
	case 'O':
		base = 8
	case 'Z', 'X':
		base = 16
	default:
		return nil, false
	}
	return new(big.Int).SetString(digits, base)
}

// wrapToKindWidth reduces v to the two's-complement range representable
// in widthBytes bytes: integer overflow wraps per the declared kind's
// width. Real-valued folding (evalReal) is not bounded by any kind
// width: it never overflows to a signed infinity.
func wrapToKindWidth(v *big.Int, widthBytes int64) int64 {
	if widthBytes <= 0 || widthBytes > 8 {
		widthBytes = 4
	}
	bits := uint(widthBytes * 8)
	mod := new(big.Int).Lsh(big.NewInt(1), bits)
	m := new(big.Int).Mod(v, mod)
	half := new(big.Int).Rsh(mod, 1)
	if m.Cmp(half) >= 0 {
		m.Sub(m, mod)
	}
	return m.Int64()
}
