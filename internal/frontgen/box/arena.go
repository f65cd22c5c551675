// Package box implements handle-indexed object arenas: a direct arena for
// plain owned storage (the automaton package keeps its NFA states in one),
// and an alias arena layered on top of it for nodes that may need to be
// merged while external references to them stay valid.
package box

// Handle is an opaque dense integer identifying an object inside an Arena.
// Remove puts a vacated slot's Handle on the free-list and the next Insert
// hands that same Handle out again; until then it does not resolve.
type Handle int32

// Invalid is the distinguished sentinel handle. It never resolves: Get and
// the alias-arena lookups return nil for it, as for any other handle that
// isn't present, instead of panicking.
const Invalid Handle = -1

// Arena owns a growable collection of T, addressed by Handle. Vacated
// slots are tracked on a LIFO free-list and reused by the next Insert.
type Arena[T any] struct {
	slots     []*T
	free      []Handle
	mergeable []bool
}

// NewArena returns an empty Arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Insert stores v in the arena and returns its Handle. A vacated slot is
// reused if one is available.
func (a *Arena[T]) Insert(v T) Handle {
	return a.insert(v, false)
}

// InsertMergeable is like Insert but marks the new slot as eligible to
// participate in Merge.
func (a *Arena[T]) InsertMergeable(v T) Handle {
	return a.insert(v, true)
}

func (a *Arena[T]) insert(v T, mergeable bool) Handle {
	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[h] = &v
		a.mergeable[h] = mergeable
		return h
	}

	a.slots = append(a.slots, &v)
	a.mergeable = append(a.mergeable, mergeable)
	return Handle(len(a.slots) - 1)
}

// Remove vacates the slot at h. It is a no-op if h is already vacant or
// out of range.
func (a *Arena[T]) Remove(h Handle) {
	if !a.valid(h) || a.slots[h] == nil {
		return
	}
	a.slots[h] = nil
	a.mergeable[h] = false
	a.free = append(a.free, h)
}

// Get returns a pointer to the value stored at h, or nil if h does not
// resolve to a live slot. Bounds checks use >= against len(a.slots), fixing
// the off-by-one noted in spec.md §9(c).
func (a *Arena[T]) Get(h Handle) *T {
	if !a.valid(h) {
		return nil
	}
	return a.slots[h]
}

func (a *Arena[T]) valid(h Handle) bool {
	return h >= 0 && int(h) < len(a.slots)
}

// Len returns the number of live (non-vacated) slots.
func (a *Arena[T]) Len() int {
	n := 0
	for _, s := range a.slots {
		if s != nil {
			n++
		}
	}
	return n
}

// Handles returns every live handle, in ascending order.
func (a *Arena[T]) Handles() []Handle {
	hs := make([]Handle, 0, len(a.slots))
	for i, s := range a.slots {
		if s != nil {
			hs = append(hs, Handle(i))
		}
	}
	return hs
}

// Merge combines src into dst by calling combine(dst-value, src-value) and
// then removing src. Both slots must have been inserted with
// InsertMergeable; Merge panics otherwise, since merging non-mergeable
// storage would silently invalidate handles callers assume are stable.
func (a *Arena[T]) Merge(dst, src Handle, combine func(dst, src *T)) {
	dv, sv := a.Get(dst), a.Get(src)
	if dv == nil || sv == nil {
		panic("box: merge of invalid handle")
	}
	if !a.mergeable[dst] || !a.mergeable[src] {
		panic("box: merge of non-mergeable slot")
	}
	combine(dv, sv)
	a.Remove(src)
}
