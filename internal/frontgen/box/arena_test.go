package box

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Arena_InsertGetRemove(t *testing.T) {
	assert := assert.New(t)

	a := NewArena[string]()
	h1 := a.Insert("one")
	h2 := a.Insert("two")

	assert.Equal("one", *a.Get(h1))
	assert.Equal("two", *a.Get(h2))
	assert.Equal(2, a.Len())

	a.Remove(h1)
	assert.Nil(a.Get(h1))
	assert.Equal(1, a.Len())
}

func Test_Arena_FreeListReusesSlot(t *testing.T) {
	assert := assert.New(t)

	a := NewArena[int]()
	h1 := a.Insert(1)
	a.Remove(h1)
	h2 := a.Insert(2)

	assert.Equal(h1, h2, "vacated slot should be reused LIFO")
	assert.Equal(2, *a.Get(h2))
}

func Test_Arena_GetInvalidHandle(t *testing.T) {
	assert := assert.New(t)

	a := NewArena[int]()
	assert.Nil(a.Get(Invalid))
	assert.Nil(a.Get(Handle(99)))
}

func Test_Arena_Merge(t *testing.T) {
	assert := assert.New(t)

	a := NewArena[[]string]()
	h1 := a.InsertMergeable([]string{"a"})
	h2 := a.InsertMergeable([]string{"b"})

	a.Merge(h1, h2, func(dst, src *[]string) {
		*dst = append(*dst, *src...)
	})

	assert.Equal([]string{"a", "b"}, *a.Get(h1))
	assert.Nil(a.Get(h2))
}

func Test_Arena_MergeNonMergeablePanics(t *testing.T) {
	a := NewArena[int]()
	h1 := a.Insert(1)
	h2 := a.Insert(2)

	assert.Panics(t, func() {
		a.Merge(h1, h2, func(dst, src *int) { *dst += *src })
	})
}

func Test_AliasArena_MergeRetargetsAliases(t *testing.T) {
	assert := assert.New(t)

	aa := NewAliasArena[int]()
	a := aa.Insert(1)
	b := aa.Insert(2)

	aa.Merge(a, b, func(dst, src *int) { *dst += *src })

	assert.Equal(3, *aa.Get(a))
	assert.Equal(3, *aa.Get(b), "alias of merged-away handle must still resolve")
	assert.Equal(1, aa.Len())
}

func Test_AliasArena_RemoveCollapsesSlotWhenEmpty(t *testing.T) {
	assert := assert.New(t)

	aa := NewAliasArena[int]()
	a := aa.Insert(1)
	b := aa.Insert(2)
	aa.Merge(a, b, func(dst, src *int) { *dst += *src })

	aa.Remove(a)
	assert.NotNil(aa.Get(b), "b is still an alias, should survive a's removal")

	aa.Remove(b)
	assert.Nil(aa.Get(b))
	assert.Equal(0, aa.Len())
}
