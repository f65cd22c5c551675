package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func runDFA(t *testing.T, tbl Table, input string) (AcceptTag, bool, int) {
	t.Helper()
	row := tbl.Start
	consumed := 0
	var lastTag AcceptTag
	var lastOK bool
	for i := 0; i < len(input); i++ {
		next := tbl.Rows[row].Next[input[i]]
		if next == InvalidRow {
			break
		}
		row = next
		consumed++
		if tbl.Rows[row].HasTag {
			lastTag, lastOK = tbl.Rows[row].Tag, true
		}
	}
	return lastTag, lastOK, consumed
}

func Test_NFAtoDFA_LiteralAndClass(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder()
	assert.NoError(b.AddPattern(`[a-zA-Z]+`, AcceptTag{TokenID: 1, Priority: 0}))
	assert.NoError(b.AddPattern(`[0-9]+`, AcceptTag{TokenID: 2, Priority: 0}))

	inter, err := BuildDFA(b)
	assert.NoError(err)
	tbl := Minimize(inter)

	tag, ok, n := runDFA(t, tbl, "abc123")
	assert.True(ok)
	assert.Equal(1, int(tag.TokenID))
	assert.Equal(3, n)

	tag, ok, n = runDFA(t, tbl, "123abc")
	assert.True(ok)
	assert.Equal(2, int(tag.TokenID))
	assert.Equal(3, n)
}

func Test_DFA_Determinism(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder()
	assert.NoError(b.AddPattern(`[a-z]+`, AcceptTag{TokenID: 1}))
	inter, err := BuildDFA(b)
	assert.NoError(err)
	tbl := Minimize(inter)

	// invariant 1: for every (row, byte) at most one successor (structural
	// by construction — Next is an array, not a multimap) and every row is
	// reachable from root.
	reachable := map[RowID]bool{tbl.Start: true}
	work := []RowID{tbl.Start}
	for len(work) > 0 {
		r := work[len(work)-1]
		work = work[:len(work)-1]
		for _, n := range tbl.Rows[r].Next {
			if n != InvalidRow && !reachable[n] {
				reachable[n] = true
				work = append(work, n)
			}
		}
	}
	assert.Equal(len(tbl.Rows), len(reachable), "every row must be reachable from root")
}

func Test_Priority_Dominance(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder()
	assert.NoError(b.AddLiteral("if", AcceptTag{TokenID: 10, Priority: 1}))
	assert.NoError(b.AddPattern(`[a-z]+`, AcceptTag{TokenID: 20, Priority: 0}))

	inter, err := BuildDFA(b)
	assert.NoError(err)
	tbl := Minimize(inter)

	tag, ok, _ := runDFA(t, tbl, "if")
	assert.True(ok)
	assert.Equal(10, int(tag.TokenID), "higher-priority keyword must win over identifier")
}

func Test_Priority_TieDistinctTokensIsError(t *testing.T) {
	b := NewBuilder()
	assert.NoError(t, b.AddLiteral("x", AcceptTag{TokenID: 1, Priority: 5}))
	assert.NoError(t, b.AddLiteral("x", AcceptTag{TokenID: 2, Priority: 5}))

	_, err := BuildDFA(b)
	assert.Error(t, err)
}

func Test_Priority_TieSameTokenIsFine(t *testing.T) {
	b := NewBuilder()
	assert.NoError(t, b.AddLiteral("x", AcceptTag{TokenID: 1, Priority: 5}))
	assert.NoError(t, b.AddLiteral("x", AcceptTag{TokenID: 1, Priority: 5}))

	_, err := BuildDFA(b)
	assert.NoError(t, err)
}

func Test_Regex_PostfixOperators(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder()
	assert.NoError(b.AddPattern(`ab?c+d*`, AcceptTag{TokenID: 1}))
	inter, err := BuildDFA(b)
	assert.NoError(err)
	tbl := Minimize(inter)

	for _, in := range []string{"ac", "abc", "acc", "abccc", "abcccddd"} {
		_, ok, n := runDFA(t, tbl, in)
		assert.True(ok, "expected %q to match", in)
		assert.Equal(len(in), n)
	}

	_, ok, _ := runDFA(t, tbl, "b")
	assert.False(ok)
}

func Test_Regex_Grouping(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder()
	assert.NoError(b.AddPattern(`(ab)+`, AcceptTag{TokenID: 1}))
	inter, err := BuildDFA(b)
	assert.NoError(err)
	tbl := Minimize(inter)

	_, ok, n := runDFA(t, tbl, "ababab")
	assert.True(ok)
	assert.Equal(6, n)
}

func Test_Regex_Escape(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder()
	assert.NoError(b.AddPattern(`a\+b`, AcceptTag{TokenID: 1}))
	inter, err := BuildDFA(b)
	assert.NoError(err)
	tbl := Minimize(inter)

	_, ok, n := runDFA(t, tbl, "a+b")
	assert.True(ok)
	assert.Equal(3, n)
}

func Test_Minimize_SoundnessAgainstIntermediate(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder()
	assert.NoError(b.AddPattern(`[a-z]+`, AcceptTag{TokenID: 1}))
	assert.NoError(b.AddPattern(`[0-9]+`, AcceptTag{TokenID: 2}))
	inter, err := BuildDFA(b)
	assert.NoError(err)
	tbl := Minimize(inter)

	// invariant 4: minimized DFA has no more rows than the intermediate one.
	assert.LessOrEqual(len(tbl.Rows), len(inter.Nodes))

	for _, in := range []string{"abc", "123", "a1"} {
		tag, ok, n := runDFA(t, tbl, in)
		t.Logf("input=%q tag=%+v ok=%v n=%d", in, tag, ok, n)
	}
}
