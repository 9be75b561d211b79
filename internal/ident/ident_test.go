package ident

import "testing"

func TestInternIsCanonical(t *testing.T) {
	tab := NewTable()
	a := tab.Intern("foo")
	b := tab.Intern("foo")
	if a != b {
		t.Fatalf("two interns of the same spelling produced different IDs: %d != %d", a, b)
	}
	c := tab.Intern("bar")
	if c == a {
		t.Fatal("distinct spellings must produce distinct IDs")
	}
	if tab.Name(a) != "foo" || tab.Name(c) != "bar" {
		t.Fatal("Name did not round-trip the original spelling")
	}
}

func TestBindRestoreStackDiscipline(t *testing.T) {
	tab := NewTable()
	x := tab.Intern("x")

	if tok := tab.Lookup(x); tok.Present {
		t.Fatal("a never-bound identifier must have no front-end token")
	}

	outer := tab.Bind(x, 100)
	if !outer.Present {
		// outer is the token that existed *before* this Bind (none).
	}
	if got := tab.Lookup(x); !got.Present || got.Ref != 100 {
		t.Fatalf("Lookup after Bind = %+v, want Ref=100 Present=true", got)
	}

	// Enter a nested scope unit that shadows x, then leave it.
	saved := tab.Bind(x, 200)
	if got := tab.Lookup(x); got.Ref != 200 {
		t.Fatalf("nested Bind did not take effect: %+v", got)
	}
	tab.Restore(x, saved)

	if got := tab.Lookup(x); !got.Present || got.Ref != 100 {
		t.Fatalf("Restore did not bring back the outer binding: %+v", got)
	}
}
