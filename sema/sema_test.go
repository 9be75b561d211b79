package sema

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/CodethinkLabs/flang/ast"
	"github.com/CodethinkLabs/flang/decl"
	"github.com/CodethinkLabs/flang/internal/diag"
	"github.com/CodethinkLabs/flang/internal/flog"
	"github.com/CodethinkLabs/flang/tu"
	"github.com/CodethinkLabs/flang/types"
)

func newTestUnit() *tu.TranslationUnit {
	return tu.New(tu.Options{Logger: flog.Null()})
}

func TestImplicitTypingDefaultRule(t *testing.T) {
	u := newTestUnit()
	s := New(u)
	s.BeginUnit()
	s.BeginMainProgram(u.Idents.Intern("MAIN"), decl.Loc{Line: 1})

	// I..N default to INTEGER, everything else to REAL, absent an
	// IMPLICIT statement.
	countExpr := s.OnIdent(u.Idents.Intern("ICOUNT"), decl.Loc{Line: 2})
	xExpr := s.OnIdent(u.Idents.Intern("X"), decl.Loc{Line: 3})

	require.Equal(t, u.Types.Base(types.Integer), u.Exprs.Type(countExpr))
	require.Equal(t, u.Types.Base(types.Real), u.Exprs.Type(xExpr))

	s.EndMainProgram()
	s.EndUnit()
	require.False(t, u.HadErrors())
}

func TestImplicitStatementOverridesDefault(t *testing.T) {
	u := newTestUnit()
	s := New(u)
	s.BeginUnit()
	s.BeginMainProgram(u.Idents.Intern("MAIN"), decl.Loc{})

	s.OnImplicitRange('A', 'H', u.Types.Base(types.DoublePrecision))
	hExpr := s.OnIdent(u.Idents.Intern("H"), decl.Loc{})
	require.Equal(t, u.Types.Base(types.DoublePrecision), u.Exprs.Type(hExpr))

	s.EndMainProgram()
	s.EndUnit()
}

func TestImplicitNoneDiagnosesUndeclaredReference(t *testing.T) {
	u := tu.New(tu.Options{Logger: flog.Null(), ImplicitNoneDefault: true})
	s := New(u)
	s.BeginUnit()
	s.BeginMainProgram(u.Idents.Intern("MAIN"), decl.Loc{})

	// With IMPLICIT NONE in effect, an undeclared reference is a
	// diagnosed error, but a synthetic REAL declaration is still
	// created so later checks on the same name have a type to work
	// with.
	xExpr := s.OnIdent(u.Idents.Intern("X"), decl.Loc{Line: 4})
	require.Equal(t, u.Types.Base(types.Real), u.Exprs.Type(xExpr))

	s.EndMainProgram()
	s.EndUnit()
	require.True(t, u.HadErrors())
}

func TestExplicitImplicitNoneStatementAlsoDisablesDefaulting(t *testing.T) {
	u := newTestUnit()
	s := New(u)
	s.BeginUnit()
	s.BeginMainProgram(u.Idents.Intern("MAIN"), decl.Loc{})

	s.OnImplicitNone(decl.Loc{Line: 1})
	s.OnIdent(u.Idents.Intern("Y"), decl.Loc{Line: 2})

	s.EndMainProgram()
	s.EndUnit()
	require.True(t, u.HadErrors())
}

// stmtShape is a structural summary of a statement tree, used to
// compare PARAMETER/IMPLICIT statements against an expected shape via
// cmp.Diff instead of asserting on raw IDs, which are arena-allocation
// order and not meaningful on their own.
type stmtShape struct {
	Kind       ast.StmtKind
	ParamNames []string
	Implicit   []implicitRangeShape
	Default    bool
}

type implicitRangeShape struct {
	From, To byte
	Type     types.BaseKind
}

func shapeOfStmt(u *tu.TranslationUnit, id ast.StmtID) stmtShape {
	shape := stmtShape{Kind: u.Stmts.Kind(id)}
	switch shape.Kind {
	case ast.ParameterStmt:
		for _, d := range u.Stmts.ParameterDecls(id) {
			shape.ParamNames = append(shape.ParamNames, u.Idents.Name(u.Decls.Name(d)))
		}
	case ast.ImplicitStmt:
		ranges, isNone := u.Stmts.Implicit(id)
		shape.Default = isNone
		for _, r := range ranges {
			shape.Implicit = append(shape.Implicit, implicitRangeShape{From: r.From, To: r.To, Type: u.Types.BaseKind(r.Type)})
		}
	}
	return shape
}

func TestParameterStatementBuildsExpectedShape(t *testing.T) {
	u := newTestUnit()
	s := New(u)
	s.BeginUnit()
	s.BeginMainProgram(u.Idents.Intern("MAIN"), decl.Loc{})

	one := u.Exprs.NewIntegerConst(decl.Loc{}, big.NewInt(1), 0, false)
	two := u.Exprs.NewIntegerConst(decl.Loc{}, big.NewInt(2), 0, false)

	a, err := s.OnParameterPair(u.Idents.Intern("A"), one, decl.Loc{})
	require.NoError(t, err)
	b, err := s.OnParameterPair(u.Idents.Intern("B"), two, decl.Loc{})
	require.NoError(t, err)

	stmt := s.OnParameter([]decl.ID{a, b}, decl.Loc{})

	want := stmtShape{Kind: ast.ParameterStmt, ParamNames: []string{"A", "B"}}
	if diff := cmp.Diff(want, shapeOfStmt(u, stmt)); diff != "" {
		t.Errorf("PARAMETER statement shape mismatch (-want +got):\n%s", diff)
	}

	s.EndMainProgram()
	s.EndUnit()
	require.False(t, u.HadErrors())
}

func TestImplicitStatementBuildsExpectedShape(t *testing.T) {
	u := newTestUnit()
	s := New(u)
	s.BeginUnit()
	s.BeginMainProgram(u.Idents.Intern("MAIN"), decl.Loc{})

	stmt := s.OnImplicit([]ast.ImplicitRange{
		{From: 'A', To: 'H', Type: u.Types.Base(types.DoublePrecision)},
	}, decl.Loc{})

	want := stmtShape{
		Kind:     ast.ImplicitStmt,
		Implicit: []implicitRangeShape{{From: 'A', To: 'H', Type: types.DoublePrecision}},
	}
	if diff := cmp.Diff(want, shapeOfStmt(u, stmt)); diff != "" {
		t.Errorf("IMPLICIT statement shape mismatch (-want +got):\n%s", diff)
	}

	noneStmt := s.OnImplicitNone(decl.Loc{})
	wantNone := stmtShape{Kind: ast.ImplicitStmt, Default: true}
	if diff := cmp.Diff(wantNone, shapeOfStmt(u, noneStmt)); diff != "" {
		t.Errorf("IMPLICIT NONE statement shape mismatch (-want +got):\n%s", diff)
	}

	s.EndMainProgram()
	s.EndUnit()
}

func TestRedeclarationIsDiagnosed(t *testing.T) {
	u := newTestUnit()
	s := New(u)
	s.BeginUnit()
	s.BeginMainProgram(u.Idents.Intern("MAIN"), decl.Loc{})

	name := u.Idents.Intern("N")
	_, err := s.OnEntityDecl(name, u.Types.Base(types.Integer), nil, false, decl.Loc{Line: 5})
	require.NoError(t, err)

	_, err = s.OnEntityDecl(name, u.Types.Base(types.Real), nil, false, decl.Loc{Line: 6})
	require.Error(t, err)

	require.True(t, u.HadErrors())
	diags := u.Diags.Diagnostics()
	require.GreaterOrEqual(t, len(diags), 2)
	require.Equal(t, diag.Error, diags[0].Level)
	require.Equal(t, diag.Note, diags[1].Level)
	require.Equal(t, 6, diags[0].Loc.Line)
	require.Equal(t, 5, diags[1].Loc.Line)

	s.EndMainProgram()
	s.EndUnit()
}

func TestGotoForwardAndBackwardResolution(t *testing.T) {
	u := newTestUnit()
	s := New(u)
	s.BeginUnit()
	s.BeginMainProgram(u.Idents.Intern("MAIN"), decl.Loc{})

	fwdGoto := s.OnGoto(10, decl.Loc{Line: 1})
	target := s.OnContinue(decl.Loc{Line: 2})
	s.OnLabel(target, 10, decl.Loc{Line: 2})

	_, got, has := u.Stmts.GotoTarget(fwdGoto)
	require.True(t, has)
	require.Equal(t, target, got)

	backGoto := s.OnGoto(10, decl.Loc{Line: 3})
	_, got2, has2 := u.Stmts.GotoTarget(backGoto)
	require.True(t, has2)
	require.Equal(t, target, got2)

	s.EndMainProgram()
	s.EndUnit()
	require.False(t, u.HadErrors())
}

func TestUnresolvedLabelIsDiagnosedAtUnitEnd(t *testing.T) {
	u := newTestUnit()
	s := New(u)
	s.BeginUnit()
	s.BeginMainProgram(u.Idents.Intern("MAIN"), decl.Loc{})

	s.OnGoto(99, decl.Loc{})

	s.EndMainProgram()
	s.EndUnit()
	require.True(t, u.HadErrors())
}

func TestFunctionResultAssignment(t *testing.T) {
	u := newTestUnit()
	s := New(u)
	s.BeginUnit()

	fname := u.Idents.Intern("F")
	fn := s.BeginFunction(fname, u.Types.Base(types.Real), decl.Loc{})

	// Inside the body, F resolves to the synthetic result variable.
	lhs := s.OnIdent(fname, decl.Loc{})
	require.Equal(t, u.Decls.Result(fn), u.Exprs.VarDecl(lhs))

	one := u.Exprs.NewRealConst(decl.Loc{}, big.NewFloat(1.0), false, 0, false)
	s.OnAssignment(lhs, one, decl.Loc{})

	s.EndFunction()

	// Outside the body, F resolves back to the function declaration
	// itself (callable).
	call := s.OnCall(fname, nil, nil, decl.Loc{})
	require.Equal(t, fn, u.Exprs.Callee(call))

	s.EndUnit()
	require.False(t, u.HadErrors())
}

func TestIntrinsicCallTypeRules(t *testing.T) {
	u := newTestUnit()
	s := New(u)
	s.BeginUnit()
	s.BeginMainProgram(u.Idents.Intern("MAIN"), decl.Loc{})

	x := s.OnIdent(u.Idents.Intern("X"), decl.Loc{}) // implicit REAL
	call := s.OnCall(u.Idents.Intern("INT"), []ast.ExprID{x}, nil, decl.Loc{})
	require.Equal(t, u.Types.Base(types.Integer), u.Exprs.Type(call))
	require.Equal(t, ast.IntInt, u.Exprs.Intrinsic(call))

	s.EndMainProgram()
	s.EndUnit()
}

func TestFormatLabelMustNameAFormatStatement(t *testing.T) {
	u := newTestUnit()
	s := New(u)
	s.BeginUnit()
	s.BeginMainProgram(u.Idents.Intern("MAIN"), decl.Loc{})

	sel, has := s.Label(100, decl.Loc{})
	require.True(t, has)
	s.OnPrint(sel, true, nil, decl.Loc{})

	s.EndMainProgram()
	s.EndUnit()
	require.True(t, u.HadErrors(), "label 100 never names a FORMAT statement")
}

func TestFormatLabelResolvesToFormatStatement(t *testing.T) {
	u := newTestUnit()
	s := New(u)
	s.BeginUnit()
	s.BeginMainProgram(u.Idents.Intern("MAIN"), decl.Loc{})

	sel, _ := s.Label(200, decl.Loc{})
	s.OnPrint(sel, true, nil, decl.Loc{})
	s.OnFormat(200, "(I5)", decl.Loc{})

	s.EndMainProgram()
	s.EndUnit()
	require.False(t, u.HadErrors())
}
