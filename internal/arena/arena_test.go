package arena

import "testing"

func TestArenaStableHandles(t *testing.T) {
	a := New[int](4) // tiny block size to exercise the block-growth path
	var handles []Handle
	for i := 0; i < 10; i++ {
		handles = append(handles, a.Alloc(i))
	}
	for i, h := range handles {
		if got := *a.At(h); got != i {
			t.Fatalf("handle %d: got %d, want %d", h, got, i)
		}
	}
}

func TestArenaZeroHandleInvalid(t *testing.T) {
	a := New[int](4)
	if a.Valid(0) {
		t.Fatal("handle 0 must never be valid")
	}
	h := a.Alloc(42)
	if h == 0 {
		t.Fatal("first real allocation must not reuse the sentinel handle")
	}
}

func TestInternTableIdentity(t *testing.T) {
	a := New[string](4)
	tab := NewInternTable[Handle]()

	factoryCalls := 0
	makeFoo := func() Handle {
		factoryCalls++
		return a.Alloc("foo")
	}

	p1 := NewProfile(1).Bytes([]byte("foo"))
	p2 := NewProfile(1).Bytes([]byte("foo"))
	h1 := tab.InsertOrFind(p1, makeFoo)
	h2 := tab.InsertOrFind(p2, makeFoo)
	if h1 != h2 {
		t.Fatalf("equal profiles produced distinct handles: %d != %d", h1, h2)
	}
	if factoryCalls != 1 {
		t.Fatalf("factory called %d times, want 1", factoryCalls)
	}

	p3 := NewProfile(1).Bytes([]byte("bar"))
	h3 := tab.InsertOrFind(p3, func() Handle { return a.Alloc("bar") })
	if h3 == h1 {
		t.Fatal("differing profiles must produce distinct handles")
	}

	p4 := NewProfile(2).Bytes([]byte("foo"))
	h4 := tab.InsertOrFind(p4, func() Handle { return a.Alloc("foo-other-tag") })
	if h4 == h1 {
		t.Fatal("differing tags must not alias even with identical bytes")
	}
}

func TestOptRefDistinguishesAbsence(t *testing.T) {
	present := NewProfile(9).OptRef(5, true)
	absent := NewProfile(9).OptRef(5, false)
	if present.equal(absent) {
		t.Fatal("a present ref must not equal an absent one")
	}
}
