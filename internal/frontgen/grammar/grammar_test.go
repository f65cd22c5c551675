package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildExprGrammar(t *testing.T) *Grammar {
	g := New()
	_, err := g.AddTerminal("ID", `[a-zA-Z]+`, 0)
	assert.NoError(t, err)
	_, err = g.AddTerminal("NUM", `[0-9]+`, 0)
	assert.NoError(t, err)

	_, err = g.AddOperator("+", OpInfo{Assoc: LeftAssoc, Priority: 1}, false)
	assert.NoError(t, err)
	_, err = g.AddOperator("*", OpInfo{Assoc: LeftAssoc, Priority: 2}, false)
	assert.NoError(t, err)

	assert.NoError(t, g.AddNonTerminal("E", []string{"E", "+", "E"}, CallbackID(1), false))
	assert.NoError(t, g.AddNonTerminal("E", []string{"E", "*", "E"}, CallbackID(2), false))
	assert.NoError(t, g.AddNonTerminal("E", []string{"ID"}, CallbackID(3), false))
	assert.NoError(t, g.AddNonTerminal("E", []string{"NUM"}, CallbackID(4), false))

	assert.NoError(t, g.SetStart("E"))
	return g
}

func Test_Grammar_BasicConstruction(t *testing.T) {
	assert := assert.New(t)
	g := buildExprGrammar(t)
	assert.NoError(g.Validate())

	eID := g.SymbolByName("E")
	rule := g.Rule(eID)
	assert.Equal(NonTerminal, rule.Kind)
	assert.Len(rule.Bodies, 4)
}

func Test_Grammar_DuplicateTerminalIsError(t *testing.T) {
	g := New()
	_, err := g.AddTerminal("ID", `[a-z]+`, 0)
	assert.NoError(t, err)
	_, err = g.AddTerminal("ID", `[0-9]+`, 0)
	assert.Error(t, err)
}

func Test_Grammar_OperatorCanCarryBothBinaryAndUnary(t *testing.T) {
	assert := assert.New(t)
	g := New()
	_, err := g.AddOperator("-", OpInfo{Assoc: LeftAssoc, Priority: 1}, false)
	assert.NoError(err)
	_, err = g.AddOperator("-", OpInfo{Assoc: RightAssoc, Priority: 3}, true)
	assert.NoError(err)

	id := g.SymbolByName("-")
	rule := g.Rule(id)
	assert.NotNil(rule.Binary)
	assert.NotNil(rule.Unary)
	assert.Equal(1, rule.Binary.Priority)
	assert.Equal(3, rule.Unary.Priority)

	// redefining the same half again is an error
	_, err = g.AddOperator("-", OpInfo{Assoc: LeftAssoc, Priority: 9}, false)
	assert.Error(err)
}

func Test_Grammar_ForwardReferenceResolved(t *testing.T) {
	assert := assert.New(t)
	g := New()
	// L references item before item is declared
	assert.NoError(g.AddNonTerminal("L", []string{"item"}, CallbackID(1), false))
	assert.NoError(g.AddNonTerminal("L", nil, CallbackID(2), true))

	// the forward ref should still be pending
	assert.Error(g.Validate())

	_, err := g.AddTerminal("item", `item`, 1)
	assert.NoError(err)
	assert.NoError(g.SetStart("L"))
	assert.NoError(g.Validate())

	rule := g.Rule(g.SymbolByName("L"))
	assert.Len(rule.Bodies, 2)
}

func Test_Grammar_Nullable(t *testing.T) {
	assert := assert.New(t)
	g := New()
	assert.NoError(g.AddNonTerminal("L", nil, CallbackID(1), true))
	_, err := g.AddTerminal("item", "item", 1)
	assert.NoError(err)
	assert.NoError(g.AddNonTerminal("L", []string{"L", "item"}, CallbackID(2), false))
	assert.NoError(g.SetStart("L"))

	assert.True(g.Nullable(g.SymbolByName("L")))
}

func Test_Grammar_Augmented(t *testing.T) {
	assert := assert.New(t)
	g := buildExprGrammar(t)
	aug := g.Augmented()

	assert.NotEqual(g.StartSymbol(), aug.StartSymbol())
	rule := aug.Rule(aug.StartSymbol())
	assert.Equal(NonTerminal, rule.Kind)
	assert.Len(rule.Bodies, 1)
	assert.Equal([]string{"E"}, []string{aug.SymbolName(rule.Bodies[0].Symbols[0])})
}
