package ast

import (
	"math/big"
	"testing"

	"github.com/CodethinkLabs/flang/types"
)

func TestConstantFoldingArithmetic(t *testing.T) {
	tys := types.NewTable()
	exprs := NewExprTable(tys)

	two := exprs.NewIntegerConst(Loc{}, big.NewInt(2), 0, false)
	three := exprs.NewIntegerConst(Loc{}, big.NewInt(3), 0, false)
	four := exprs.NewIntegerConst(Loc{}, big.NewInt(4), 0, false)

	mul, err := exprs.NewBinary(Loc{}, BopMul, three, four)
	if err != nil {
		t.Fatalf("3*4: %v", err)
	}
	sum, err := exprs.NewBinary(Loc{}, BopAdd, two, mul)
	if err != nil {
		t.Fatalf("2+3*4: %v", err)
	}

	if !exprs.IsEvaluable(sum) {
		t.Fatal("2+3*4 should be evaluable")
	}
	v, ok := exprs.EvaluateAsInteger(sum)
	if !ok || v != 14 {
		t.Fatalf("EvaluateAsInteger(2+3*4) = %v, %v; want 14, true", v, ok)
	}
}

func TestConstantFoldingStopsAtNonConstant(t *testing.T) {
	tys := types.NewTable()
	exprs := NewExprTable(tys)

	one := exprs.NewIntegerConst(Loc{}, big.NewInt(1), 0, false)
	n := exprs.alloc(Expr{kind: UnresolvedIdent, typ: tys.Base(types.Integer), name: 7})

	sum, err := exprs.NewBinary(Loc{}, BopAdd, one, n)
	if err != nil {
		t.Fatalf("unexpected type error: %v", err)
	}
	if exprs.IsEvaluable(sum) {
		t.Fatal("1+n should not be evaluable")
	}
	children := exprs.GatherNonEvaluableChildren(sum)
	if len(children) != 1 || children[0] != n {
		t.Fatalf("GatherNonEvaluableChildren = %v, want [%v]", children, n)
	}
}

func TestIntegerOverflowWrapsToKindWidth(t *testing.T) {
	tys := types.NewTable()
	exprs := NewExprTable(tys)

	// A default (4-byte) INTEGER wraps at 2^31.
	maxInt32 := exprs.NewIntegerConst(Loc{}, big.NewInt(1<<31-1), 0, false)
	one := exprs.NewIntegerConst(Loc{}, big.NewInt(1), 0, false)
	sum, err := exprs.NewBinary(Loc{}, BopAdd, maxInt32, one)
	if err != nil {
		t.Fatal(err)
	}
	v, ok := exprs.EvaluateAsInteger(sum)
	if !ok {
		t.Fatal("expected an evaluable sum")
	}
	if v != -(1 << 31) {
		t.Fatalf("overflow wraparound = %d, want %d", v, -(1 << 31))
	}
}

func TestImplicitCastInsertedExactlyOnce(t *testing.T) {
	tys := types.NewTable()
	exprs := NewExprTable(tys)

	i := exprs.NewIntegerConst(Loc{}, big.NewInt(1), 0, false)
	r := exprs.NewRealConst(Loc{}, big.NewFloat(2.5), false, 0, false)

	sum, err := exprs.NewBinary(Loc{}, BopAdd, i, r)
	if err != nil {
		t.Fatal(err)
	}
	if exprs.Type(sum) != tys.Base(types.Real) {
		t.Fatalf("result type = %v, want Real", exprs.Type(sum))
	}
	l, rr := exprs.OperandL(sum), exprs.OperandR(sum)
	if exprs.Kind(l) != Cast {
		t.Fatalf("left (integer) operand should have been cast to Real, got kind %v", exprs.Kind(l))
	}
	if exprs.Kind(rr) != RealConst {
		t.Fatalf("right (already Real) operand should not be wrapped, got kind %v", exprs.Kind(rr))
	}
	if exprs.CastFrom(l) != i {
		t.Fatal("cast should wrap the original integer constant")
	}

	// Same-type operands get no cast node at all.
	r2 := exprs.NewRealConst(Loc{}, big.NewFloat(1.0), false, 0, false)
	same, err := exprs.NewBinary(Loc{}, BopAdd, r, r2)
	if err != nil {
		t.Fatal(err)
	}
	if exprs.Kind(exprs.OperandL(same)) == Cast || exprs.Kind(exprs.OperandR(same)) == Cast {
		t.Fatal("equal operand types must not be wrapped in a Cast")
	}
}

func TestConcatenationRequiresCharacterOperands(t *testing.T) {
	tys := types.NewTable()
	exprs := NewExprTable(tys)

	a := exprs.NewCharacterConst(Loc{}, []byte("ab"), 0, false)
	b := exprs.NewCharacterConst(Loc{}, []byte("cde"), 0, false)
	cat, err := exprs.NewBinary(Loc{}, BopConcat, a, b)
	if err != nil {
		t.Fatal(err)
	}
	n, ok := exprs.characterLen(exprs.Type(cat))
	if !ok || n != 5 {
		t.Fatalf("concatenated length = %v, %v; want 5, true", n, ok)
	}

	i := exprs.NewIntegerConst(Loc{}, big.NewInt(1), 0, false)
	if _, err := exprs.NewBinary(Loc{}, BopConcat, a, i); err != ErrConcatNonCharacter {
		t.Fatalf("concat with a non-character operand: err = %v, want ErrConcatNonCharacter", err)
	}
}

func TestComparisonYieldsLogical(t *testing.T) {
	tys := types.NewTable()
	exprs := NewExprTable(tys)

	i := exprs.NewIntegerConst(Loc{}, big.NewInt(1), 0, false)
	r := exprs.NewRealConst(Loc{}, big.NewFloat(1.0), false, 0, false)
	cmp, err := exprs.NewBinary(Loc{}, BopLt, i, r)
	if err != nil {
		t.Fatal(err)
	}
	if exprs.Type(cmp) != tys.Base(types.Logical) {
		t.Fatal("relational operator must yield LOGICAL")
	}
}
