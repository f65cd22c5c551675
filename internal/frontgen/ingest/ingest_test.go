package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvid-lang/frontgen/internal/frontgen/grammar"
)

const sampleGrammar = `
@ section 1: keywords
"if"
"else"
@@
@ section 2: terminal definitions
ID -> [a-zA-Z]+
NUM -> [0-9]+
@@
@ section 3: operators
+ @ 1 @ L { AddCallback } { }
* @ 2 @ L { MulCallback } { }
unary - @ 3 @ R { NegCallback } { }
@@
@ section 4: non-terminal productions
E -> E "+" E | E "*" E => { BinOpCallback } { }
E -> ID | NUM => { LeafCallback } { }
L -> @ | L ID => { ListCallback } { }
`

func Test_Ingest_FullGrammar(t *testing.T) {
	assert := assert.New(t)
	g := grammar.New()
	reg := NewCallbackRegistry()

	err := Ingest(sampleGrammar, g, reg)
	assert.NoError(err)

	assert.NotEqual(grammar.Production{}.Symbol, g.SymbolByName("if"))
	ifRule := g.Rule(g.SymbolByName("if"))
	assert.Equal(grammar.Terminal, ifRule.Kind)
	assert.Equal(1, ifRule.Priority)

	idRule := g.Rule(g.SymbolByName("ID"))
	assert.Equal(`[a-zA-Z]+`, idRule.Pattern)

	minusID := g.SymbolByName("-")
	minusRule := g.Rule(minusID)
	assert.NotNil(minusRule.Unary)
	assert.Nil(minusRule.Binary)
	assert.Equal(3, minusRule.Unary.Priority)
	assert.Equal(grammar.RightAssoc, minusRule.Unary.Assoc)

	eRule := g.Rule(g.SymbolByName("E"))
	assert.Len(eRule.Bodies, 4)

	lRule := g.Rule(g.SymbolByName("L"))
	assert.Len(lRule.Bodies, 2)
	assert.True(lRule.Bodies[0].Nullable)
}

func Test_Ingest_AnonymousTerminalsShared(t *testing.T) {
	assert := assert.New(t)
	g := grammar.New()
	reg := NewCallbackRegistry()
	assert.NoError(Ingest(sampleGrammar, g, reg))

	plusName := anonymousTerminalName("+")
	plusID := g.SymbolByName(plusName)
	assert.NotEqual(-1, int(plusID))

	eRule := g.Rule(g.SymbolByName("E"))
	plusCount := 0
	for _, b := range eRule.Bodies {
		for _, sym := range b.Symbols {
			if sym == plusID {
				plusCount++
			}
		}
	}
	assert.Equal(1, plusCount, "the anonymous \"+\" terminal must be reused, not redefined, across bodies")
}

func Test_Ingest_RejectsWrongSectionCount(t *testing.T) {
	g := grammar.New()
	reg := NewCallbackRegistry()
	err := Ingest("only one section, no @@ delimiters", g, reg)
	assert.Error(t, err)
}
