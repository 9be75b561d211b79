package sema

import (
	"math/big"

	"github.com/CodethinkLabs/flang/ast"
	"github.com/CodethinkLabs/flang/decl"
	"github.com/CodethinkLabs/flang/internal/diag"
	"github.com/CodethinkLabs/flang/internal/ident"
	"github.com/CodethinkLabs/flang/types"
)

// OnIdent resolves name against the currently visible binding,
// implicitly declaring it (IMPLICIT typing) on first reference.
func (s *Sema) OnIdent(name ident.ID, loc decl.Loc) ast.ExprID {
	tok := s.tu.Idents.Lookup(name)
	var id decl.ID
	if tok.Present {
		id = decl.ID(tok.Ref)
	} else {
		id = s.OnImplicitEntityDecl(name, loc)
	}
	typ, _ := s.tu.Decls.Type(id)
	return s.tu.Exprs.NewVar(loc, id, typ)
}

func (s *Sema) reportExprErr(err error, loc decl.Loc) {
	switch err {
	case ast.ErrTypeMismatch:
		s.report(diag.Error, loc, "operand type is incompatible with this operator")
	case ast.ErrConcatNonCharacter:
		s.report(diag.Error, loc, "// requires both operands to be CHARACTER")
	case ast.ErrLogicalOperand:
		s.report(diag.Error, loc, "operand of a logical operator must be LOGICAL")
	case ast.ErrSubstringNonChar:
		s.report(diag.Error, loc, "substring target must be CHARACTER")
	case ast.ErrSubscriptNonArray:
		s.report(diag.Error, loc, "subscripted name is not an array")
	case ast.ErrRankMismatch:
		s.report(diag.Error, loc, "subscript count does not match the array's rank")
	}
}

func (s *Sema) OnUnary(op ast.UnaryOp, operand ast.ExprID, loc decl.Loc) ast.ExprID {
	id, err := s.tu.Exprs.NewUnary(loc, op, operand)
	if err != nil {
		s.reportExprErr(err, loc)
	}
	return id
}

func (s *Sema) OnBinary(op ast.BinaryOp, l, r ast.ExprID, loc decl.Loc) ast.ExprID {
	id, err := s.tu.Exprs.NewBinary(loc, op, l, r)
	if err != nil {
		s.reportExprErr(err, loc)
	}
	return id
}

// resultTypeOfCallee returns the declared return type of a function
// declaration, for defined-operator and ordinary call resolution.
func (s *Sema) resultTypeOfCallee(fn decl.ID) (types.ID, bool) {
	if s.tu.Decls.Kind(fn) != decl.KindFunction {
		return 0, false
	}
	result := s.tu.Decls.Result(fn)
	typ, _ := s.tu.Decls.Type(result)
	return typ, true
}

func (s *Sema) OnDefinedUnary(name ident.ID, operand ast.ExprID, loc decl.Loc) ast.ExprID {
	tok := s.tu.Idents.Lookup(name)
	if !tok.Present {
		s.report(diag.Error, loc, "operator function %0 is not declared", s.tu.Idents.Name(name))
		return s.tu.Exprs.NewDefinedUnary(loc, name, operand, s.tu.Exprs.Type(operand))
	}
	result, ok := s.resultTypeOfCallee(decl.ID(tok.Ref))
	if !ok {
		s.report(diag.Error, loc, "%0 is not a function", s.tu.Idents.Name(name))
		result = s.tu.Exprs.Type(operand)
	}
	return s.tu.Exprs.NewDefinedUnary(loc, name, operand, result)
}

func (s *Sema) OnDefinedBinary(name ident.ID, l, r ast.ExprID, loc decl.Loc) ast.ExprID {
	tok := s.tu.Idents.Lookup(name)
	if !tok.Present {
		s.report(diag.Error, loc, "operator function %0 is not declared", s.tu.Idents.Name(name))
		return s.tu.Exprs.NewDefinedBinary(loc, name, l, r, s.tu.Exprs.Type(l))
	}
	result, ok := s.resultTypeOfCallee(decl.ID(tok.Ref))
	if !ok {
		s.report(diag.Error, loc, "%0 is not a function", s.tu.Idents.Name(name))
		result = s.tu.Exprs.Type(l)
	}
	return s.tu.Exprs.NewDefinedBinary(loc, name, l, r, result)
}

func (s *Sema) OnSubstring(target, start ast.ExprID, hasStart bool, end ast.ExprID, hasEnd bool, loc decl.Loc) ast.ExprID {
	id, err := s.tu.Exprs.NewSubstring(loc, target, start, hasStart, end, hasEnd)
	if err != nil {
		s.reportExprErr(err, loc)
	}
	return id
}

func (s *Sema) OnArrayElement(target ast.ExprID, subscripts []ast.ExprID, loc decl.Loc) ast.ExprID {
	id, err := s.tu.Exprs.NewArrayElement(loc, target, subscripts)
	if err != nil {
		s.reportExprErr(err, loc)
	}
	return id
}

// OnCall resolves name as either a catalogued intrinsic or an ordinary
// function call.
func (s *Sema) OnCall(name ident.ID, positional []ast.ExprID, named []ast.NamedArg, loc decl.Loc) ast.ExprID {
	if kind, ok := ast.LookupIntrinsic(s.tu.Idents.Name(name)); ok {
		return s.onIntrinsicCall(kind, positional, named, loc)
	}
	tok := s.tu.Idents.Lookup(name)
	if !tok.Present {
		s.report(diag.Error, loc, "%0 is not declared", s.tu.Idents.Name(name))
		return s.tu.Exprs.NewCall(loc, 0, 0, positional, named)
	}
	fn := decl.ID(tok.Ref)
	result, ok := s.resultTypeOfCallee(fn)
	if !ok {
		s.report(diag.Error, loc, "%0 is not a function", s.tu.Idents.Name(name))
	}
	return s.tu.Exprs.NewCall(loc, fn, result, positional, named)
}

func (s *Sema) onIntrinsicCall(kind ast.IntrinsicKind, positional []ast.ExprID, named []ast.NamedArg, loc decl.Loc) ast.ExprID {
	tys := s.tu.Types
	var result types.ID
	switch kind {
	case ast.IntInt:
		result = s.withIntrinsicKind(tys.Base(types.Integer), positional, named, 1)
	case ast.IntReal:
		result = s.withIntrinsicKind(tys.Base(types.Real), positional, named, 1)
	case ast.IntDble:
		result = tys.Base(types.DoublePrecision)
	case ast.IntCmplx:
		result = s.withIntrinsicKind(tys.Base(types.Complex), positional, named, 2)
	case ast.IntAbs, ast.IntMod, ast.IntMin, ast.IntMax:
		if len(positional) > 0 {
			result = s.tu.Exprs.Type(positional[0])
		} else {
			result = tys.Base(types.Integer)
		}
	case ast.IntLen, ast.IntIchar:
		result = tys.Base(types.Integer)
	case ast.IntAchar:
		one := s.tu.Exprs.NewIntegerConst(loc, big.NewInt(1), 0, false)
		result = tys.MakeCharacter(one, true, 0, false)
	default:
		result = tys.Base(types.Integer)
	}
	return s.tu.Exprs.NewIntrinsicCall(loc, kind, result, positional)
}

// withIntrinsicKind folds a kind-changing intrinsic's optional KIND
// argument into base: INT(x, k) yields an integer of kind k, and
// likewise for REAL/CMPLX. The argument is taken from a named KIND=
// actual argument if present, otherwise from the trailing positional
// argument once the call has more arguments than the intrinsic's
// required arity (requiredArity is 1 for INT/REAL's single required
// operand, 2 for CMPLX's real-and-imaginary-part pair — CMPLX(x, y)
// with exactly two unnamed arguments is the real/imaginary form, not a
// kind selector).
func (s *Sema) withIntrinsicKind(base types.ID, positional []ast.ExprID, named []ast.NamedArg, requiredArity int) types.ID {
	tys := s.tu.Types
	if k, ok := s.namedArg(named, "KIND"); ok {
		return tys.MakeQualified(base, k, true, 0, false, 0)
	}
	if len(positional) > requiredArity {
		return tys.MakeQualified(base, positional[requiredArity], true, 0, false, 0)
	}
	return base
}

func (s *Sema) namedArg(named []ast.NamedArg, want string) (ast.ExprID, bool) {
	for _, n := range named {
		if s.tu.Idents.Name(n.Name) == want {
			return n.Arg, true
		}
	}
	return 0, false
}

func (s *Sema) OnImpliedDo(loopVar decl.ID, body []ast.ExprID, init, term, stride ast.ExprID, hasStride bool, loc decl.Loc) ast.ExprID {
	return s.tu.Exprs.NewImpliedDo(loc, loopVar, body, init, term, stride, hasStride)
}

func (s *Sema) OnArrayConstructor(elemType types.ID, items []ast.ExprID, loc decl.Loc) ast.ExprID {
	return s.tu.Exprs.NewArrayConstructor(loc, elemType, items)
}
