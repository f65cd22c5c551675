package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvid-lang/frontgen/internal/frontgen/automaton"
	"github.com/corvid-lang/frontgen/internal/frontgen/lalr"
	"github.com/corvid-lang/frontgen/internal/frontgen/symbols"
)

func Test_EncodeDecode_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	b := automaton.NewBuilder()
	assert.NoError(b.AddPattern(`[a-z]+`, automaton.AcceptTag{TokenID: 1}))
	inter, err := automaton.BuildDFA(b)
	assert.NoError(err)
	dfa := automaton.Minimize(inter)

	art := Artifact{
		RunID: NewRunID(),
		DFA:   dfa,
		Parse: lalr.Table{Rows: []lalr.Row{{Actions: map[symbols.ID]lalr.Action{}, Goto: map[symbols.ID]int{}}}},
	}

	data, err := Encode(art)
	assert.NoError(err)

	got, err := Decode(data)
	assert.NoError(err)
	assert.Equal(art.RunID, got.RunID)
	assert.Equal(len(art.DFA.Rows), len(got.DFA.Rows))
}

func Test_Decode_RejectsBadMagic(t *testing.T) {
	_, err := Decode([]byte("not-a-frontgen-artifact"))
	assert.Error(t, err)
}
