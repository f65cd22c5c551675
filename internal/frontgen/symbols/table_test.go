package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Table_InternReturnsStableIDs(t *testing.T) {
	assert := assert.New(t)

	tbl := New[string]()
	id1, inserted1 := tbl.Intern("NUM")
	id2, inserted2 := tbl.Intern("ID")
	id1Again, insertedAgain := tbl.Intern("NUM")

	assert.True(inserted1)
	assert.True(inserted2)
	assert.False(insertedAgain)
	assert.Equal(id1, id1Again)
	assert.NotEqual(id1, id2)
}

func Test_Table_GetAndLookup(t *testing.T) {
	assert := assert.New(t)

	tbl := New[string]()
	id, _ := tbl.Intern("PLUS")

	v, ok := tbl.Get(id)
	assert.True(ok)
	assert.Equal("PLUS", v)

	assert.Equal(id, tbl.Lookup("PLUS"))
	assert.Equal(None, tbl.Lookup("MISSING"))

	_, ok = tbl.Get(ID(99))
	assert.False(ok)
}

func Test_Table_Values(t *testing.T) {
	assert := assert.New(t)

	tbl := New[string]()
	tbl.Intern("a")
	tbl.Intern("b")

	assert.Equal([]string{"a", "b"}, tbl.Values())
	assert.Equal(2, tbl.Len())
}
