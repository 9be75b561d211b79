package decl

import (
	"testing"

	"github.com/CodethinkLabs/flang/internal/ident"
	"github.com/CodethinkLabs/flang/types"
)

func TestContextTreeAndMembers(t *testing.T) {
	names := ident.NewTable()
	tab := NewTable()
	tys := types.NewTable()

	root := tab.Root()
	prog := tab.NewContext(KindMainProgram, root, names.Intern("p"), Loc{Line: 1})
	if tab.Parent(prog) != root {
		t.Fatal("NewContext did not set the parent link")
	}

	members := tab.Members(root)
	if len(members) != 1 || members[0] != prog {
		t.Fatalf("root members = %v, want [%v]", members, prog)
	}

	i := tab.NewVariable(KindVariable, prog, names.Intern("i"), Loc{Line: 2}, tys.Base(types.Integer), 0)
	if typ, ok := tab.Type(i); !ok || typ != tys.Base(types.Integer) {
		t.Fatal("NewVariable did not record the declared type")
	}

	found, ok := tab.FindInContext(prog, names.Intern("i"))
	if !ok || found != i {
		t.Fatal("FindInContext did not find the just-declared variable")
	}
	if _, ok := tab.FindInContext(prog, names.Intern("missing")); ok {
		t.Fatal("FindInContext found a name that was never declared")
	}
}

func TestFunctionResultAndParams(t *testing.T) {
	names := ident.NewTable()
	tab := NewTable()
	tys := types.NewTable()

	root := tab.Root()
	fn := tab.NewContext(KindFunction, root, names.Intern("f"), Loc{})
	result := tab.NewVariable(KindVariable, fn, names.Intern("f"), Loc{}, tys.Base(types.Real), 0)
	tab.SetResult(fn, result)
	if tab.Result(fn) != result {
		t.Fatal("SetResult/Result did not round-trip")
	}

	p := tab.NewVariable(KindVariable, fn, names.Intern("x"), Loc{}, tys.Base(types.Real), AttrArgument|AttrIntentIn)
	tab.AddParam(fn, p)
	if params := tab.Params(fn); len(params) != 1 || params[0] != p {
		t.Fatalf("Params = %v, want [%v]", params, p)
	}
	if !tab.Attrs(p).Has(AttrIntentIn) {
		t.Fatal("argument attribute did not survive NewVariable")
	}
}

func TestRecordFields(t *testing.T) {
	names := ident.NewTable()
	tab := NewTable()
	tys := types.NewTable()

	root := tab.Root()
	rec := tab.NewContext(KindRecord, root, names.Intern("point"), Loc{})
	x := tab.NewVariable(KindField, rec, names.Intern("x"), Loc{}, tys.Base(types.Real), 0)
	y := tab.NewVariable(KindField, rec, names.Intern("y"), Loc{}, tys.Base(types.Real), 0)

	fields := tab.Fields(rec)
	if len(fields) != 2 || fields[0] != x || fields[1] != y {
		t.Fatalf("Fields = %v, want [%v %v]", fields, x, y)
	}
}
