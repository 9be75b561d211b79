package types

import "testing"

func TestBaseTypesAreSingletons(t *testing.T) {
	tab := NewTable()
	if tab.Base(Integer) != tab.Base(Integer) {
		t.Fatal("Base(Integer) must be stable across calls")
	}
	if tab.Base(Integer) == tab.Base(Real) {
		t.Fatal("distinct base kinds must not alias")
	}
	if tab.BaseKind(tab.Base(Real)) != Real {
		t.Fatalf("BaseKind(Base(Real)) = %v, want Real", tab.BaseKind(tab.Base(Real)))
	}
}

func TestQualifiedReducesToBase(t *testing.T) {
	tab := NewTable()
	i := tab.Base(Integer)
	q := tab.MakeQualified(i, 0, false, 0, false, 0)
	if q != i {
		t.Fatalf("a qualifier bundle with nothing to say must reduce to its base type, got %d want %d", q, i)
	}
	withAttr := tab.MakeQualified(i, 0, false, 0, false, AttrParameter)
	if withAttr == i {
		t.Fatal("a qualifier bundle with attributes must not reduce to the bare base type")
	}
	if !tab.Attrs(withAttr).Has(AttrParameter) {
		t.Fatal("AttrParameter did not survive MakeQualified")
	}
}

func TestQualifiedIdentityByProfile(t *testing.T) {
	tab := NewTable()
	i := tab.Base(Integer)
	a := tab.MakeQualified(i, 7, true, 0, false, AttrParameter)
	b := tab.MakeQualified(i, 7, true, 0, false, AttrParameter)
	if a != b {
		t.Fatal("two MakeQualified calls with identical profiles must return the same handle")
	}
	c := tab.MakeQualified(i, 8, true, 0, false, AttrParameter)
	if a == c {
		t.Fatal("differing kind-selector refs must produce distinct types")
	}
}

func TestCharacterLengthParticipatesInIdentity(t *testing.T) {
	tab := NewTable()
	withLen := tab.MakeCharacter(10, true, 0, false)
	withoutLen := tab.MakeCharacter(0, false, 0, false)
	sameLen := tab.MakeCharacter(10, true, 0, false)
	if withLen == withoutLen {
		t.Fatal("a length selector must participate in CHARACTER type identity")
	}
	if withLen != sameLen {
		t.Fatal("equal length selectors must produce the same CHARACTER type")
	}
}

func TestArrayAndPointerWrappers(t *testing.T) {
	tab := NewTable()
	elem := tab.Base(Real)
	dims := []Dim{{Kind: DimExplicit, Lower: 1, HasLower: true, Upper: 10, HasUpper: true}}
	arr := tab.MakeArray(elem, dims)
	if !tab.IsArray(arr) {
		t.Fatal("MakeArray result must report IsArray")
	}
	if tab.Elem(arr) != elem {
		t.Fatal("Elem must return the wrapped element type")
	}
	if tab.Rank(arr) != 1 {
		t.Fatalf("Rank = %d, want 1", tab.Rank(arr))
	}

	arr2 := tab.MakeArray(elem, dims)
	if arr != arr2 {
		t.Fatal("identical array profiles must intern to the same handle")
	}

	ptr := tab.MakePointer(elem, 2)
	if !tab.IsPointer(ptr) {
		t.Fatal("MakePointer result must report IsPointer")
	}
	if tab.Pointee(ptr) != elem || tab.PointerRank(ptr) != 2 {
		t.Fatal("Pointee/PointerRank did not round-trip")
	}
}

func TestRecordTypesAreNominal(t *testing.T) {
	tab := NewTable()
	r1 := tab.MakeRecord(DeclRef(5))
	r2 := tab.MakeRecord(DeclRef(5))
	r3 := tab.MakeRecord(DeclRef(6))
	if r1 != r2 {
		t.Fatal("the same record declaration must always intern to the same type")
	}
	if r1 == r3 {
		t.Fatal("different record declarations must never alias")
	}
}

func TestIsNumericIsCharacterIsLogical(t *testing.T) {
	tab := NewTable()
	if !tab.IsNumeric(tab.Base(Integer)) || !tab.IsNumeric(tab.Base(Complex)) {
		t.Fatal("Integer and Complex must be numeric")
	}
	if tab.IsNumeric(tab.Base(Character)) {
		t.Fatal("Character must not be numeric")
	}
	if !tab.IsCharacter(tab.Base(Character)) {
		t.Fatal("Character must report IsCharacter")
	}
	if !tab.IsLogical(tab.Base(Logical)) {
		t.Fatal("Logical must report IsLogical")
	}
}
