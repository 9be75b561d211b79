// Package tu bundles the per-translation-unit state: the four owning
// tables (identifiers, types, declarations, expressions/statements),
// the diagnostic engine, and the trace logger, constructed together
// because nothing in this front-end outlives one translation unit.
package tu

import (
	"github.com/hashicorp/go-hclog"

	"github.com/CodethinkLabs/flang/ast"
	"github.com/CodethinkLabs/flang/decl"
	"github.com/CodethinkLabs/flang/internal/diag"
	"github.com/CodethinkLabs/flang/internal/flog"
	"github.com/CodethinkLabs/flang/internal/ident"
	"github.com/CodethinkLabs/flang/types"
)

// Options configures a TranslationUnit. The zero value is usable: no
// diagnostic sink (diagnostics are only buffered), no fatal threshold,
// a quiet default logger.
type Options struct {
	// Sink receives each diagnostic as it is reported. Nil means
	// diagnostics are only buffered in Diags.Diagnostics().
	Sink diag.Sink
	// FatalThreshold is the number of Fatal diagnostics at which
	// Diags.FatalThresholdExceeded starts reporting true. <= 0 means no
	// threshold. Construction itself does not stop when it is reached.
	FatalThreshold int
	// Logger receives structured trace output. Nil uses flog.New("flang").
	Logger hclog.Logger
	// ImplicitNoneDefault makes every program unit start as if it opened
	// with IMPLICIT NONE, instead of the standard I-N-integer/else-real
	// letter map. IMPLICIT statements in such a unit still record their
	// letter ranges, but do not re-enable implicit typing.
	ImplicitNoneDefault bool
}

// TranslationUnit owns every arena-backed table for one compilation of
// one Fortran-subset source file: all arenas, interning tables, and the
// top-level declaration context.
type TranslationUnit struct {
	Idents *ident.Table
	Types  *types.Table
	Decls  *decl.Table
	Exprs  *ast.ExprTable
	Stmts  *ast.StmtTable
	Diags  *diag.Engine
	Log    hclog.Logger

	// ImplicitNoneDefault is read by sema when it opens each new program
	// unit's scope; see Options.ImplicitNoneDefault.
	ImplicitNoneDefault bool
}

// New constructs an empty TranslationUnit ready for a sema.Sema to
// drive through a parse.
func New(opts Options) *TranslationUnit {
	logger := opts.Logger
	if logger == nil {
		logger = flog.New("flang")
	}
	types_ := types.NewTable()
	return &TranslationUnit{
		Idents:              ident.NewTable(),
		Types:               types_,
		Decls:               decl.NewTable(),
		Exprs:               ast.NewExprTable(types_),
		Stmts:               ast.NewStmtTable(),
		Diags:               diag.NewEngine(opts.Sink, opts.FatalThreshold),
		Log:                 logger,
		ImplicitNoneDefault: opts.ImplicitNoneDefault,
	}
}

// HadErrors reports whether any Error or Fatal diagnostic was reported
// during construction. Callers check this before invoking a backend on
// the result.
func (u *TranslationUnit) HadErrors() bool { return u.Diags.HadErrors() }
