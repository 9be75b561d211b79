// Package ident implements the canonical, pointer-comparable name table
// (component C2 of the front-end): every spelling of an identifier maps
// to exactly one ID, and two lookups of equal spellings always return
// the same ID.
//
// A bare Go string identifier with no interning leaves every comparison
// a string compare and every lookup a map hit on the full spelling; this
// package is that interning, plus a "front-end token" back-pointer: a
// mutable, per-ID slot naming the declaration currently visible under
// that name, threaded as a plain uint32 so this package never needs to
// import decl.
package ident

// ID is a canonical identifier handle. Equal spellings always intern to
// the same ID, so identity comparison (==) is name comparison.
type ID uint32

// Ref is an opaque reference to whatever the analyzer considers "the
// declaration this name currently denotes". The decl package's IDs
// convert to and from Ref; this package never interprets the value.
type Ref uint32

// Token is the front-end token: the mutable binding currently attached
// to a name, plus whether a binding is present at all (a name that has
// never been declared has no token).
type Token struct {
	Ref     Ref
	Present bool
}

// Table is the canonical name table.
type Table struct {
	byName map[string]ID
	names  []string
	tokens []Token
}

// NewTable creates an empty identifier table.
func NewTable() *Table {
	return &Table{byName: make(map[string]ID)}
}

// Intern returns the canonical ID for name, creating one on first sight.
func (t *Table) Intern(name string) ID {
	if id, ok := t.byName[name]; ok {
		return id
	}
	id := ID(len(t.names))
	t.names = append(t.names, name)
	t.tokens = append(t.tokens, Token{})
	t.byName[name] = id
	return id
}

// Name returns the spelling an ID was interned from.
func (t *Table) Name(id ID) string {
	return t.names[id]
}

// Lookup returns the front-end token currently bound to id.
func (t *Table) Lookup(id ID) Token {
	return t.tokens[id]
}

// Bind installs a new front-end token for id and returns the token that
// was displaced, so the caller can restore it later (on scope exit).
func (t *Table) Bind(id ID, ref Ref) Token {
	prior := t.tokens[id]
	t.tokens[id] = Token{Ref: ref, Present: true}
	return prior
}

// Restore reinstates a previously displaced token, undoing a Bind. This
// is how the analyzer implements "no shadowing within a scope unit, but
// names become visible again once the scope that shadowed them ends".
func (t *Table) Restore(id ID, prior Token) {
	t.tokens[id] = prior
}
