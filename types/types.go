// Package types implements the front-end's type system (component C3):
// base kinds, qualifier bundles, kind/length selectors, array and
// pointer wrappers, all interned so that type equality reduces to
// handle (==) comparison.
//
// Kind-selector and length-selector expressions, and the declaration a
// Record type names, live in the ast and decl packages — but those
// packages import types (an expression's Type is a types.ID, and a
// variable's declared type is a types.ID), so types cannot import them
// back. ExprRef and DeclRef are the two halves of that knot: opaque
// uint32 handles that types stores and compares but never dereferences.
// ast.ExprID and decl.ID are defined as aliases of these two types, so
// no conversion is needed at the few call sites that cross the
// boundary.
package types

import "github.com/CodethinkLabs/flang/internal/arena"

// ExprRef is an opaque reference to an expression (ast.ExprID aliases
// this). The zero value means "no expression" / "not an expression
// reference".
type ExprRef uint32

// DeclRef is an opaque reference to a declaration (decl.ID aliases
// this). The zero value means "no declaration".
type DeclRef uint32

// ID is an interned type handle. Two IDs are the same type iff they
// compare equal.
type ID uint32

// Kind discriminates the four type node shapes.
type Kind int

const (
	KindBase Kind = iota
	KindQualified
	KindArray
	KindPointer
)

// BaseKind enumerates the base types.
type BaseKind int

const (
	Integer BaseKind = iota
	Real
	DoublePrecision
	Complex
	Character
	Logical
	Record
	numBaseKinds
)

func (b BaseKind) String() string {
	switch b {
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	case DoublePrecision:
		return "DOUBLE PRECISION"
	case Complex:
		return "COMPLEX"
	case Character:
		return "CHARACTER"
	case Logical:
		return "LOGICAL"
	case Record:
		return "TYPE"
	default:
		return "?"
	}
}

// Attr is the qualifier-bundle attribute bitset.
type Attr uint16

const (
	AttrParameter Attr = 1 << iota
	AttrIntentIn
	AttrIntentOut
	AttrIntentInOut
	AttrPublic
	AttrPrivate
	AttrDimension
	AttrAsynchronous
	AttrExternal
	AttrVolatile
)

// Has reports whether all bits in want are set in a.
func (a Attr) Has(want Attr) bool { return a&want == want }

// DimKind discriminates the dimension-specification forms.
type DimKind int

const (
	DimExplicit DimKind = iota
	DimAssumedShape
	DimDeferred
	DimAssumedSize
	DimImpliedShape
)

// Dim is one dimension specification of an array type.
type Dim struct {
	Kind     DimKind
	Lower    ExprRef
	HasLower bool
	Upper    ExprRef
	HasUpper bool
}

// node is the tagged-union representation of a type, stored by value in
// the arena: a sum type in place of a class hierarchy.
type node struct {
	kind Kind

	// KindBase / KindQualified
	base       BaseKind
	record     DeclRef
	under      ID // KindQualified only: the base type this bundle wraps
	kindSel    ExprRef
	hasKindSel bool
	length     ExprRef
	hasLength  bool
	attrs      Attr

	// KindArray
	elem ID
	dims []Dim

	// KindPointer
	pointee ID
	ndims   int
}

// Table owns every interned type for one translation unit.
type Table struct {
	arena  *arena.Arena[node]
	intern *arena.InternTable[arena.Handle]
	bases  [numBaseKinds]ID
}

// NewTable creates a type table with the six scalar base types already
// interned, created once during translation-unit initialization. The
// same loop also interns a Record base for DeclRef 0, which Base never
// returns.
func NewTable() *Table {
	t := &Table{
		arena:  arena.New[node](256),
		intern: arena.NewInternTable[arena.Handle](),
	}
	for bk := Integer; bk < numBaseKinds; bk++ {
		t.bases[bk] = t.internBase(bk, 0)
	}
	return t
}

const (
	tagBase uint32 = iota
	tagQualified
	tagArray
	tagPointer
)

func (t *Table) internBase(bk BaseKind, record DeclRef) ID {
	p := arena.NewProfile(tagBase).Byte(byte(bk)).Uint64(uint64(record))
	h := t.intern.InsertOrFind(p, func() arena.Handle {
		return t.arena.Alloc(node{kind: KindBase, base: bk, record: record})
	})
	return ID(h)
}

// Base returns the singleton handle for one of the six non-record base
// types.
func (t *Table) Base(bk BaseKind) ID {
	if bk == Record {
		panic("types: Record has no singleton; use MakeRecord")
	}
	return t.bases[bk]
}

// MakeRecord interns (or finds) the base type naming a user derived
// type. Distinct record declarations always yield distinct types, even
// if structurally similar, because the profile includes the owning
// DeclRef: declarations are nominal, not structural.
func (t *Table) MakeRecord(record DeclRef) ID {
	return t.internBase(Record, record)
}

// MakeQualified wraps base in a qualifier bundle. A bundle with no
// kind-selector, no length-selector, and no attributes reduces to base
// itself.
func (t *Table) MakeQualified(base ID, kindSel ExprRef, hasKindSel bool, length ExprRef, hasLength bool, attrs Attr) ID {
	if !hasKindSel && !hasLength && attrs == 0 {
		return base
	}
	p := arena.NewProfile(tagQualified).
		Ref(arena.Handle(base)).
		OptRef(arena.Handle(kindSel), hasKindSel).
		OptRef(arena.Handle(length), hasLength).
		Uint64(uint64(attrs))
	h := t.intern.InsertOrFind(p, func() arena.Handle {
		return t.arena.Alloc(node{
			kind: KindQualified, under: base,
			kindSel: kindSel, hasKindSel: hasKindSel,
			length: length, hasLength: hasLength,
			attrs: attrs,
		})
	})
	return ID(h)
}

// MakeCharacter is a convenience entry point over MakeQualified for the
// common case of a possibly-lengthed, possibly-kinded CHARACTER type.
// MakeQualified includes the length selector in the qualifier profile,
// so two CHARACTER types with different length selectors never intern
// as equal.
func (t *Table) MakeCharacter(length ExprRef, hasLength bool, kindSel ExprRef, hasKindSel bool) ID {
	return t.MakeQualified(t.Base(Character), kindSel, hasKindSel, length, hasLength, 0)
}

// MakeArray wraps elem in an array type over the given dimensions.
func (t *Table) MakeArray(elem ID, dims []Dim) ID {
	p := arena.NewProfile(tagArray).Ref(arena.Handle(elem)).Uint64(uint64(len(dims)))
	for _, d := range dims {
		p.Byte(byte(d.Kind)).
			OptRef(arena.Handle(d.Lower), d.HasLower).
			OptRef(arena.Handle(d.Upper), d.HasUpper)
	}
	dimsCopy := append([]Dim(nil), dims...)
	h := t.intern.InsertOrFind(p, func() arena.Handle {
		return t.arena.Alloc(node{kind: KindArray, elem: elem, dims: dimsCopy})
	})
	return ID(h)
}

// MakePointer wraps pointee in a pointer type of the given rank.
func (t *Table) MakePointer(pointee ID, ndims int) ID {
	p := arena.NewProfile(tagPointer).Ref(arena.Handle(pointee)).Uint64(uint64(ndims))
	h := t.intern.InsertOrFind(p, func() arena.Handle {
		return t.arena.Alloc(node{kind: KindPointer, pointee: pointee, ndims: ndims})
	})
	return ID(h)
}

func (t *Table) at(id ID) *node { return t.arena.At(arena.Handle(id)) }

// Kind returns id's structural kind.
func (t *Table) Kind(id ID) Kind { return t.at(id).kind }

// IsArray reports whether id is an array type.
func (t *Table) IsArray(id ID) bool { return t.Kind(id) == KindArray }

// IsPointer reports whether id is a pointer type.
func (t *Table) IsPointer(id ID) bool { return t.Kind(id) == KindPointer }

// Elem returns the element type of an array type. Panics if id is not
// an array type.
func (t *Table) Elem(id ID) ID {
	n := t.at(id)
	if n.kind != KindArray {
		panic("types: Elem of a non-array type")
	}
	return n.elem
}

// Dims returns the dimension specifications of an array type.
func (t *Table) Dims(id ID) []Dim {
	n := t.at(id)
	if n.kind != KindArray {
		panic("types: Dims of a non-array type")
	}
	return n.dims
}

// Rank returns the number of dimensions of an array type.
func (t *Table) Rank(id ID) int { return len(t.Dims(id)) }

// Pointee returns the pointee type of a pointer type.
func (t *Table) Pointee(id ID) ID {
	n := t.at(id)
	if n.kind != KindPointer {
		panic("types: Pointee of a non-pointer type")
	}
	return n.pointee
}

// PointerRank returns the dimension count of a pointer type.
func (t *Table) PointerRank(id ID) int {
	n := t.at(id)
	if n.kind != KindPointer {
		panic("types: PointerRank of a non-pointer type")
	}
	return n.ndims
}

// unwrapToBase walks through KindQualified wrapping to the underlying
// KindBase node. Array/pointer types have no "base" in this sense.
func (t *Table) unwrapToBase(id ID) *node {
	n := t.at(id)
	for n.kind == KindQualified {
		n = t.at(n.under)
	}
	return n
}

// BaseKind returns the scalar base kind of id, unwrapping any qualifier
// bundle. Panics if id is an array or pointer type.
func (t *Table) BaseKind(id ID) BaseKind {
	n := t.unwrapToBase(id)
	if n.kind != KindBase {
		panic("types: BaseKind of a non-scalar type")
	}
	return n.base
}

// IsNumeric reports whether id's base kind is one of the arithmetic
// kinds (Integer, Real, DoublePrecision, Complex).
func (t *Table) IsNumeric(id ID) bool {
	if t.IsArray(id) || t.IsPointer(id) {
		return false
	}
	switch t.BaseKind(id) {
	case Integer, Real, DoublePrecision, Complex:
		return true
	default:
		return false
	}
}

// IsCharacter reports whether id's base kind is Character.
func (t *Table) IsCharacter(id ID) bool {
	return !t.IsArray(id) && !t.IsPointer(id) && t.BaseKind(id) == Character
}

// IsLogical reports whether id's base kind is Logical.
func (t *Table) IsLogical(id ID) bool {
	return !t.IsArray(id) && !t.IsPointer(id) && t.BaseKind(id) == Logical
}

// Record returns the declaration handle a Record base type names.
// Panics if id's base kind is not Record.
func (t *Table) Record(id ID) DeclRef {
	n := t.unwrapToBase(id)
	if n.kind != KindBase || n.base != Record {
		panic("types: Record of a non-record type")
	}
	return n.record
}

// KindSelector returns the kind-selector expression of a qualified
// type, if any.
func (t *Table) KindSelector(id ID) (ExprRef, bool) {
	n := t.at(id)
	if n.kind != KindQualified {
		return 0, false
	}
	return n.kindSel, n.hasKindSel
}

// LengthSelector returns the length-selector expression of a qualified
// (CHARACTER) type, if any.
func (t *Table) LengthSelector(id ID) (ExprRef, bool) {
	n := t.at(id)
	if n.kind != KindQualified {
		return 0, false
	}
	return n.length, n.hasLength
}

// Attrs returns the qualifier-bundle attribute bitset of id (zero for
// an unqualified base/array/pointer type).
func (t *Table) Attrs(id ID) Attr {
	n := t.at(id)
	if n.kind != KindQualified {
		return 0
	}
	return n.attrs
}

// WithAttrs returns a type identical to id but with extra attribute
// bits set, reusing id's base/kind/length selectors.
func (t *Table) WithAttrs(id ID, extra Attr) ID {
	n := t.at(id)
	switch n.kind {
	case KindBase:
		return t.MakeQualified(id, 0, false, 0, false, extra)
	case KindQualified:
		return t.MakeQualified(n.under, n.kindSel, n.hasKindSel, n.length, n.hasLength, n.attrs|extra)
	default:
		panic("types: WithAttrs on an array/pointer type")
	}
}
