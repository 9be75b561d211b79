package sema

import (
	"math/big"

	"github.com/CodethinkLabs/flang/ast"
	"github.com/CodethinkLabs/flang/decl"
	"github.com/CodethinkLabs/flang/internal/diag"
)

// OnAssignment builds lhs = rhs, inserting an implicit cast around rhs
// when both sides are numeric and rhs's type differs from lhs's; other
// type differences are left as they are. Assignment conversion always
// follows the target's type, unlike the wider-operand rule for binary
// operators.
func (s *Sema) OnAssignment(lhs, rhs ast.ExprID, loc decl.Loc) ast.StmtID {
	lt, rt := s.tu.Exprs.Type(lhs), s.tu.Exprs.Type(rhs)
	if lt != rt && s.tu.Types.IsNumeric(lt) && s.tu.Types.IsNumeric(rt) {
		rhs = s.tu.Exprs.NewCast(loc, rhs, lt)
	}
	return s.tu.Stmts.NewAssignment(loc, lhs, rhs)
}

// OnIf builds a (block or logical) IF, requiring the condition to be
// LOGICAL.
func (s *Sema) OnIf(cond ast.ExprID, thenBody, elseBody []ast.StmtID, hasElse bool, loc decl.Loc) ast.StmtID {
	if !s.tu.Types.IsLogical(s.tu.Exprs.Type(cond)) {
		s.report(diag.Error, loc, "IF condition must be LOGICAL")
	}
	return s.tu.Stmts.NewIf(loc, cond, thenBody, elseBody, hasElse)
}

func (s *Sema) OnContinue(loc decl.Loc) ast.StmtID {
	return s.tu.Stmts.NewContinue(loc)
}

func (s *Sema) OnStop(code ast.ExprID, hasCode bool, loc decl.Loc) ast.StmtID {
	return s.tu.Stmts.NewStop(loc, code, hasCode)
}

// OnLabel attaches label to stmt, registering it in the current scope's
// label table and fixing up any earlier forward references that were
// waiting on it.
func (s *Sema) OnLabel(stmt ast.StmtID, label int32, loc decl.Loc) {
	s.tu.Stmts.SetLabel(stmt, label)
	top := s.top()
	prior, duplicate, referrers := top.labels.Register(label, stmt)
	if duplicate {
		s.report(diag.Error, loc, "label %0 is already defined", label)
		s.report(diag.Note, s.tu.Stmts.Loc(prior), "previous definition of label %0 is here", label)
		return
	}
	top.pendingLabels.Remove(label)
	for _, r := range referrers {
		s.tu.Stmts.SetTarget(r, stmt)
	}
}

// OnGoto builds an unconditional GOTO, resolving targetLabel immediately
// if it is already defined (a backward reference) or registering a
// pending forward reference otherwise.
func (s *Sema) OnGoto(targetLabel int32, loc decl.Loc) ast.StmtID {
	stmt := s.tu.Stmts.NewGoto(loc, targetLabel)
	top := s.top()
	if target, ok := top.labels.Request(targetLabel, stmt); ok {
		s.tu.Stmts.SetTarget(stmt, target)
	} else {
		top.pendingLabels.Insert(targetLabel)
	}
	return stmt
}

// OnAssign builds ASSIGN label TO variable.
func (s *Sema) OnAssign(targetLabel int32, variable decl.ID, loc decl.Loc) ast.StmtID {
	stmt := s.tu.Stmts.NewAssign(loc, targetLabel, variable)
	top := s.top()
	if target, ok := top.labels.Request(targetLabel, stmt); ok {
		s.tu.Stmts.SetTarget(stmt, target)
	} else {
		top.pendingLabels.Insert(targetLabel)
	}
	return stmt
}

// OnAssignedGoto builds GOTO variable [, (candidates...)]. Each
// candidate label is resolved immediately if possible; any still
// unresolved at scope end is treated as an undefined-label error, not a
// silent no-op (see popScope).
func (s *Sema) OnAssignedGoto(variable decl.ID, candidates []int32, loc decl.Loc) ast.StmtID {
	stmt := s.tu.Stmts.NewAssignedGoto(loc, variable, candidates)
	top := s.top()
	for i, label := range candidates {
		if target, ok := top.labels.Request(label, stmt); ok {
			s.tu.Stmts.SetCandidateTarget(stmt, i, target)
		} else {
			top.pendingCand = append(top.pendingCand, pendingCandidate{stmt: stmt, index: i, label: label})
			top.pendingLabels.Insert(label)
		}
	}
	return stmt
}

// OnPrint builds PRINT fmt, items.... Use Star/DefaultCharExpr/Label to
// build formatSel.
func (s *Sema) OnPrint(formatSel ast.ExprID, hasFormatSel bool, items []ast.ExprID, loc decl.Loc) ast.StmtID {
	return s.tu.Stmts.NewPrint(loc, formatSel, hasFormatSel, items)
}

func (s *Sema) OnBlock(body []ast.StmtID, loc decl.Loc) ast.StmtID {
	return s.tu.Stmts.NewBlock(loc, body)
}



// Star builds the list-directed ("*") format selector.
func (s *Sema) Star() (ast.ExprID, bool) { return 0, false }

// DefaultCharExpr builds a format selector that is a character
// expression evaluated at run time.
func (s *Sema) DefaultCharExpr(expr ast.ExprID) (ast.ExprID, bool) {
	return expr, true
}

// Label builds a format selector that names a FORMAT statement by
// label, deferring the "does this label actually name a FORMAT
// statement" check to scope end.
func (s *Sema) Label(label int32, loc decl.Loc) (ast.ExprID, bool) {
	top := s.top()
	top.pendingFmt = append(top.pendingFmt, pendingFormatLabel{loc: loc, label: label})
	sel := s.tu.Exprs.NewIntegerConst(loc, big.NewInt(int64(label)), 0, false)
	return sel, true
}

// OnFormat builds a FORMAT statement and registers its label, the same
// way OnLabel registers any other statement's label — a FORMAT
// statement is unreachable without one.
func (s *Sema) OnFormat(label int32, spec string, loc decl.Loc) ast.StmtID {
	stmt := s.tu.Stmts.NewFormat(loc, spec)
	s.OnLabel(stmt, label, loc)
	return stmt
}
