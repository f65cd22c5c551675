// Package symbols implements the dense-ID interner the grammar package uses
// for symbol names: each name gets canonicalized to a small int through a
// Table, and the ID type is shared by the automaton, lalr, lex and parse
// packages, so the rest of the generator can compare symbols with ==
// instead of carrying strings around.
package symbols

// ID is a dense integer assigned by a Table. Equal values intern to the
// same ID; IDs are never reused across a Table's lifetime, and a Table
// never evicts an entry once interned.
type ID int

// None is the sentinel ID returned when a lookup misses.
const None ID = -1

// Table canonicalizes values of type V into dense IDs. V must be
// comparable so it can key the reverse map directly.
type Table[V comparable] struct {
	ids    map[V]ID
	values []V
}

// New returns an empty Table.
func New[V comparable]() *Table[V] {
	return &Table[V]{ids: make(map[V]ID)}
}

// Intern returns the ID for v, assigning a new one if v has not been seen
// before. The second return value reports whether a new ID was assigned.
func (t *Table[V]) Intern(v V) (ID, bool) {
	if id, ok := t.ids[v]; ok {
		return id, false
	}
	id := ID(len(t.values))
	t.ids[v] = id
	t.values = append(t.values, v)
	return id, true
}

// Lookup returns the ID already assigned to v without interning it, or
// None if v has never been interned.
func (t *Table[V]) Lookup(v V) ID {
	if id, ok := t.ids[v]; ok {
		return id
	}
	return None
}

// Get returns the value interned under id, or the zero value of V and
// false if id is out of range.
func (t *Table[V]) Get(id ID) (V, bool) {
	var zero V
	if id < 0 || int(id) >= len(t.values) {
		return zero, false
	}
	return t.values[id], true
}

// Len returns the number of distinct values interned so far.
func (t *Table[V]) Len() int {
	return len(t.values)
}

// Values returns every interned value in ID order (index i is ID i).
func (t *Table[V]) Values() []V {
	out := make([]V, len(t.values))
	copy(out, t.values)
	return out
}
