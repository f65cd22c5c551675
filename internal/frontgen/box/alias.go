package box

// AliasArena wraps an Arena[T] with a second, independent Handle space:
// "external" handles, any number of which may resolve to the same internal
// slot. Merge collapses two physical nodes into one while every external
// handle a caller is already holding keeps resolving.
//
// External handles are never reused (unlike the inner Arena's slot
// handles), matching spec.md §4.1's "external handles are independent dense
// integers (never reused)".
type AliasArena[T any] struct {
	inner *Arena[T]

	extToInt map[Handle]Handle   // external -> inner slot
	intToExt map[Handle][]Handle // inner slot -> external aliases
	nextExt  Handle
}

// NewAliasArena returns an empty AliasArena.
func NewAliasArena[T any]() *AliasArena[T] {
	return &AliasArena[T]{
		inner:    NewArena[T](),
		extToInt: make(map[Handle]Handle),
		intToExt: make(map[Handle][]Handle),
	}
}

// Insert stores v and returns a fresh external handle aliasing it.
func (a *AliasArena[T]) Insert(v T) Handle {
	internal := a.inner.InsertMergeable(v)
	ext := a.nextExt
	a.nextExt++

	a.extToInt[ext] = internal
	a.intToExt[internal] = append(a.intToExt[internal], ext)
	return ext
}

// Get resolves an external handle to its value, or nil if the handle does
// not alias a live slot.
func (a *AliasArena[T]) Get(ext Handle) *T {
	internal, ok := a.extToInt[ext]
	if !ok {
		return nil
	}
	return a.inner.Get(internal)
}

// Remove drops the alias ext. If that was the last alias of its inner
// slot, the slot itself is removed too.
func (a *AliasArena[T]) Remove(ext Handle) {
	internal, ok := a.extToInt[ext]
	if !ok {
		return
	}
	delete(a.extToInt, ext)

	remaining := a.intToExt[internal][:0]
	for _, e := range a.intToExt[internal] {
		if e != ext {
			remaining = append(remaining, e)
		}
	}
	if len(remaining) == 0 {
		delete(a.intToExt, internal)
		a.inner.Remove(internal)
	} else {
		a.intToExt[internal] = remaining
	}
}

// Merge retargets every external alias of src onto dst's inner slot,
// invoking combine to fold src's value into dst's, then discards src's
// now-empty slot.
// dst and src may be equal, or may already alias the same slot, in which
// case Merge is a no-op.
func (a *AliasArena[T]) Merge(dst, src Handle, combine func(dst, src *T)) {
	dstInt, ok := a.extToInt[dst]
	if !ok {
		panic("box: merge of invalid external handle")
	}
	srcInt, ok := a.extToInt[src]
	if !ok {
		panic("box: merge of invalid external handle")
	}
	if dstInt == srcInt {
		return
	}

	combine(a.inner.Get(dstInt), a.inner.Get(srcInt))

	for _, ext := range a.intToExt[srcInt] {
		a.extToInt[ext] = dstInt
	}
	a.intToExt[dstInt] = append(a.intToExt[dstInt], a.intToExt[srcInt]...)
	delete(a.intToExt, srcInt)
	a.inner.Remove(srcInt)
}

// Aliases returns every external handle currently resolving to the same
// slot as ext (including ext itself), or nil if ext is not live.
func (a *AliasArena[T]) Aliases(ext Handle) []Handle {
	internal, ok := a.extToInt[ext]
	if !ok {
		return nil
	}
	out := make([]Handle, len(a.intToExt[internal]))
	copy(out, a.intToExt[internal])
	return out
}

// Len returns the number of distinct inner slots (physical nodes), which
// may be fewer than the number of external handles ever issued.
func (a *AliasArena[T]) Len() int {
	return a.inner.Len()
}
