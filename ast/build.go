package ast

import (
	"math/big"

	"github.com/CodethinkLabs/flang/decl"
	"github.com/CodethinkLabs/flang/internal/ident"
	"github.com/CodethinkLabs/flang/types"
)

func bigFromInt64(v int64) *big.Int { return big.NewInt(v) }

// NewIntegerConst builds an integer literal, optionally kind-selected
// (e.g. 1_8).
func (t *ExprTable) NewIntegerConst(loc Loc, val *big.Int, kindSel ExprID, hasKindSel bool) ExprID {
	tys := t.tys
	typ := tys.Base(types.Integer)
	if hasKindSel {
		typ = tys.MakeQualified(typ, kindSel, true, 0, false, 0)
	}
	return t.alloc(Expr{kind: IntegerConst, typ: typ, loc: loc, intVal: val, kindSel: kindSel, hasKindSel: hasKindSel})
}

// NewRealConst builds a real literal. isDouble selects DoublePrecision
// as the base kind (the source's "D exponent" form) over Real.
func (t *ExprTable) NewRealConst(loc Loc, val *big.Float, isDouble bool, kindSel ExprID, hasKindSel bool) ExprID {
	tys := t.tys
	bk := types.Real
	if isDouble {
		bk = types.DoublePrecision
	}
	typ := tys.Base(bk)
	if hasKindSel {
		typ = tys.MakeQualified(typ, kindSel, true, 0, false, 0)
	}
	return t.alloc(Expr{kind: RealConst, typ: typ, loc: loc, floatVal: val, kindSel: kindSel, hasKindSel: hasKindSel})
}

func (t *ExprTable) NewComplexConst(loc Loc, re, im *big.Float, kindSel ExprID, hasKindSel bool) ExprID {
	tys := t.tys
	typ := tys.Base(types.Complex)
	if hasKindSel {
		typ = tys.MakeQualified(typ, kindSel, true, 0, false, 0)
	}
	return t.alloc(Expr{kind: ComplexConst, typ: typ, loc: loc, realPart: re, imagPart: im, kindSel: kindSel, hasKindSel: hasKindSel})
}

// NewCharacterConst builds a character literal. Its length selector is
// always foldable: it's synthesized here from len(val), so CHARACTER
// constants never hit the "unknown length" fallback of concatType.
func (t *ExprTable) NewCharacterConst(loc Loc, val []byte, kindSel ExprID, hasKindSel bool) ExprID {
	tys := t.tys
	lenExpr := t.alloc(Expr{kind: IntegerConst, typ: tys.Base(types.Integer), loc: loc, intVal: bigFromInt64(int64(len(val)))})
	typ := tys.MakeCharacter(lenExpr, true, kindSel, hasKindSel)
	return t.alloc(Expr{kind: CharacterConst, typ: typ, loc: loc, charVal: val, kindSel: kindSel, hasKindSel: hasKindSel})
}

// NewBOZConst builds a binary/octal/hex literal. Its type is left
// invalid: a BOZ literal is untyped until the context it appears in
// (an assignment, an argument, an intrinsic) assigns it one.
func (t *ExprTable) NewBOZConst(loc Loc, radix byte, digits string) ExprID {
	return t.alloc(Expr{kind: BOZConst, loc: loc, bozRadix: radix, bozDigits: digits})
}

func (t *ExprTable) NewLogicalConst(loc Loc, val bool, kindSel ExprID, hasKindSel bool) ExprID {
	tys := t.tys
	typ := tys.Base(types.Logical)
	if hasKindSel {
		typ = tys.MakeQualified(typ, kindSel, true, 0, false, 0)
	}
	return t.alloc(Expr{kind: LogicalConst, typ: typ, loc: loc, logicalVal: val, kindSel: kindSel, hasKindSel: hasKindSel})
}

// NewRepeatedConst builds an r*c DATA-statement repeat item; it has no
// meaning outside a DATA initializer list.
func (t *ExprTable) NewRepeatedConst(loc Loc, count *big.Int, elem ExprID) ExprID {
	return t.alloc(Expr{kind: RepeatedConst, typ: t.Type(elem), loc: loc, repeatCount: count, repeatElem: elem})
}

// NewVar builds a reference to an already-resolved declaration.
func (t *ExprTable) NewVar(loc Loc, vd decl.ID, typ types.ID) ExprID {
	return t.alloc(Expr{kind: Var, typ: typ, loc: loc, varDecl: vd})
}

// NewUnresolvedIdent builds a placeholder for a name the analyzer has
// not yet bound to a declaration (a pending-reference state).
func (t *ExprTable) NewUnresolvedIdent(loc Loc, name ident.ID) ExprID {
	return t.alloc(Expr{kind: UnresolvedIdent, loc: loc, name: name})
}

// NewSubstring builds target(start:end). Only start or end may be
// omitted, never both's absence checked here — that's a parser-grammar
// constraint, not a type rule.
func (t *ExprTable) NewSubstring(loc Loc, target, start ExprID, hasStart bool, end ExprID, hasEnd bool) (ExprID, error) {
	tys := t.tys
	tt := t.Type(target)
	if !tys.IsCharacter(tt) {
		return t.alloc(Expr{kind: Substring, typ: tt, loc: loc, target: target, subStart: start, hasSubStart: hasStart, subEnd: end, hasSubEnd: hasEnd}), ErrSubstringNonChar
	}
	kindSel, hasKind := tys.KindSelector(tt)
	typ := tys.MakeCharacter(0, false, kindSel, hasKind)
	return t.alloc(Expr{kind: Substring, typ: typ, loc: loc, target: target, subStart: start, hasSubStart: hasStart, subEnd: end, hasSubEnd: hasEnd}), nil
}

// NewArrayElement builds target(subscripts...), checking that target is
// an array of the right rank (a "rank mismatch" otherwise).
func (t *ExprTable) NewArrayElement(loc Loc, target ExprID, subscripts []ExprID) (ExprID, error) {
	tys := t.tys
	tt := t.Type(target)
	if !tys.IsArray(tt) {
		return t.alloc(Expr{kind: ArrayElement, typ: tt, loc: loc, target: target, subscripts: subscripts}), ErrSubscriptNonArray
	}
	if tys.Rank(tt) != len(subscripts) {
		return t.alloc(Expr{kind: ArrayElement, typ: tys.Elem(tt), loc: loc, target: target, subscripts: subscripts}), ErrRankMismatch
	}
	return t.alloc(Expr{kind: ArrayElement, typ: tys.Elem(tt), loc: loc, target: target, subscripts: subscripts}), nil
}

// NewCast builds a conversion of from to dest. The analyzer uses it for
// assignment conversion (OnAssignment); binary-operator promotion builds
// its casts through promoteNumeric/castTo instead, and the kind-changing
// intrinsics build IntrinsicCall nodes.
func (t *ExprTable) NewCast(loc Loc, from ExprID, dest types.ID) ExprID {
	return t.alloc(Expr{kind: Cast, typ: dest, loc: loc, castFrom: from})
}

func (t *ExprTable) NewCall(loc Loc, callee decl.ID, result types.ID, positional []ExprID, named []NamedArg) ExprID {
	return t.alloc(Expr{kind: Call, typ: result, loc: loc, callee: callee, positional: positional, named: named})
}

func (t *ExprTable) NewIntrinsicCall(loc Loc, kind IntrinsicKind, result types.ID, positional []ExprID) ExprID {
	return t.alloc(Expr{kind: IntrinsicCall, typ: result, loc: loc, intrinsic: kind, positional: positional})
}

// NewImpliedDo builds an (body, var = init, term[, stride]) implied-do,
// legal inside a DATA statement or an array constructor.
func (t *ExprTable) NewImpliedDo(loc Loc, loopVar decl.ID, body []ExprID, init, term, stride ExprID, hasStride bool) ExprID {
	return t.alloc(Expr{
		kind: ImpliedDo, loc: loc, loopVar: loopVar, body: body,
		initExpr: init, termExpr: term, strideExpr: stride, hasStride: hasStride,
	})
}

// NewArrayConstructor builds [items...] / (/items.../), typed as an
// implied-shape array of elemType.
func (t *ExprTable) NewArrayConstructor(loc Loc, elemType types.ID, items []ExprID) ExprID {
	typ := t.tys.MakeArray(elemType, []types.Dim{{Kind: types.DimImpliedShape}})
	return t.alloc(Expr{kind: ArrayConstructor, typ: typ, loc: loc, items: items})
}

// --- kind-specific accessors ---

func (t *ExprTable) IntVal(id ExprID) *big.Int       { return t.at(id).intVal }
func (t *ExprTable) FloatVal(id ExprID) *big.Float   { return t.at(id).floatVal }
func (t *ExprTable) RealPart(id ExprID) *big.Float   { return t.at(id).realPart }
func (t *ExprTable) ImagPart(id ExprID) *big.Float   { return t.at(id).imagPart }
func (t *ExprTable) CharVal(id ExprID) []byte        { return t.at(id).charVal }
func (t *ExprTable) LogicalVal(id ExprID) bool       { return t.at(id).logicalVal }
func (t *ExprTable) BozDigits(id ExprID) string      { return t.at(id).bozDigits }
func (t *ExprTable) BozRadix(id ExprID) byte         { return t.at(id).bozRadix }

// KindSelector returns a constant's attached kind-selector expression,
// if any.
func (t *ExprTable) KindSelector(id ExprID) (ExprID, bool) {
	n := t.at(id)
	return n.kindSel, n.hasKindSel
}

func (t *ExprTable) RepeatCount(id ExprID) *big.Int { return t.at(id).repeatCount }
func (t *ExprTable) RepeatElem(id ExprID) ExprID    { return t.at(id).repeatElem }

func (t *ExprTable) VarDecl(id ExprID) decl.ID { return t.at(id).varDecl }
func (t *ExprTable) Name(id ExprID) ident.ID   { return t.at(id).name }

func (t *ExprTable) Target(id ExprID) ExprID { return t.at(id).target }

// SubStart and SubEnd return a substring's bounds and whether each was
// given explicitly (an omitted bound defaults to 1 or the string's
// length, resolved by the analyzer, not stored here).
func (t *ExprTable) SubStart(id ExprID) (ExprID, bool) {
	n := t.at(id)
	return n.subStart, n.hasSubStart
}

func (t *ExprTable) SubEnd(id ExprID) (ExprID, bool) {
	n := t.at(id)
	return n.subEnd, n.hasSubEnd
}

func (t *ExprTable) Subscripts(id ExprID) []ExprID { return t.at(id).subscripts }

func (t *ExprTable) UnaryOp(id ExprID) UnaryOp    { return t.at(id).unaryOp }
func (t *ExprTable) BinaryOp(id ExprID) BinaryOp  { return t.at(id).binaryOp }
func (t *ExprTable) OperandL(id ExprID) ExprID    { return t.at(id).operandL }
func (t *ExprTable) OperandR(id ExprID) ExprID    { return t.at(id).operandR }

// DefinedOp returns the user-defined operator name bound to a
// UnaryExpr/BinaryExpr node, and whether the node is a defined
// (user-operator) application at all.
func (t *ExprTable) DefinedOp(id ExprID) (ident.ID, bool) {
	n := t.at(id)
	return n.definedOp, n.isDefined
}

func (t *ExprTable) CastFrom(id ExprID) ExprID { return t.at(id).castFrom }

func (t *ExprTable) Callee(id ExprID) decl.ID         { return t.at(id).callee }
func (t *ExprTable) Intrinsic(id ExprID) IntrinsicKind { return t.at(id).intrinsic }
func (t *ExprTable) Positional(id ExprID) []ExprID    { return t.at(id).positional }
func (t *ExprTable) Named(id ExprID) []NamedArg       { return t.at(id).named }

func (t *ExprTable) LoopVar(id ExprID) decl.ID { return t.at(id).loopVar }
func (t *ExprTable) Body(id ExprID) []ExprID   { return t.at(id).body }
func (t *ExprTable) InitExpr(id ExprID) ExprID { return t.at(id).initExpr }
func (t *ExprTable) TermExpr(id ExprID) ExprID { return t.at(id).termExpr }

func (t *ExprTable) StrideExpr(id ExprID) (ExprID, bool) {
	n := t.at(id)
	return n.strideExpr, n.hasStride
}

func (t *ExprTable) Items(id ExprID) []ExprID { return t.at(id).items }
