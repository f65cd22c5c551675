package lex

import (
	"io"
	"testing"

	"github.com/corvid-lang/frontgen/internal/frontgen/automaton"
	"github.com/corvid-lang/frontgen/internal/frontgen/symbols"
	"github.com/stretchr/testify/assert"
)

type fakeNames map[symbols.ID]string

func (f fakeNames) SymbolName(id symbols.ID) string { return f[id] }

func buildTestTable(t *testing.T) (automaton.Table, fakeNames) {
	t.Helper()
	b := automaton.NewBuilder()
	assert.NoError(t, b.AddPattern(`[a-zA-Z]+`, automaton.AcceptTag{TokenID: 1, Priority: 0}))
	assert.NoError(t, b.AddPattern(`[0-9]+`, automaton.AcceptTag{TokenID: 2, Priority: 0}))
	assert.NoError(t, b.AddLiteral("+", automaton.AcceptTag{TokenID: 3, Priority: 1}))

	inter, err := automaton.BuildDFA(b)
	assert.NoError(t, err)

	names := fakeNames{1: "ID", 2: "NUM", 3: "PLUS"}
	return automaton.Minimize(inter), names
}

func Test_Machine_ScansAndSkipsWhitespace(t *testing.T) {
	assert := assert.New(t)
	tbl, names := buildTestTable(t)
	m := New(tbl, names, []byte("abc 123 + def"))

	var got []string
	for {
		tok, err := m.Next()
		if err == io.EOF {
			break
		}
		assert.NoError(err)
		got = append(got, tok.ClassName+":"+tok.Lexeme)
	}

	assert.Equal([]string{"ID:abc", "NUM:123", "PLUS:+", "ID:def"}, got)
}

func Test_Machine_Putback(t *testing.T) {
	assert := assert.New(t)
	tbl, names := buildTestTable(t)
	m := New(tbl, names, []byte("abc 123"))

	first, err := m.Next()
	assert.NoError(err)
	m.Putback(first)

	again, err := m.Next()
	assert.NoError(err)
	assert.Equal(first, again)

	second, err := m.Next()
	assert.NoError(err)
	assert.Equal("123", second.Lexeme)
}

func Test_Machine_LexicalErrorOnUnmatchedByte(t *testing.T) {
	assert := assert.New(t)
	tbl, names := buildTestTable(t)
	m := New(tbl, names, []byte("abc $$$"))

	_, err := m.Next()
	assert.NoError(err)

	_, err = m.Next()
	assert.Error(err)
}

func Test_Machine_LineColTracking(t *testing.T) {
	assert := assert.New(t)
	tbl, names := buildTestTable(t)
	m := New(tbl, names, []byte("abc\n123"))

	tok1, err := m.Next()
	assert.NoError(err)
	assert.Equal(1, tok1.Line)

	tok2, err := m.Next()
	assert.NoError(err)
	assert.Equal(2, tok2.Line)
	assert.Equal(1, tok2.Col)
}
