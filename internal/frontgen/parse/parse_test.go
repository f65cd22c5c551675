package parse

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvid-lang/frontgen/internal/frontgen/automaton"
	"github.com/corvid-lang/frontgen/internal/frontgen/grammar"
	"github.com/corvid-lang/frontgen/internal/frontgen/lalr"
	"github.com/corvid-lang/frontgen/internal/frontgen/lex"
)

const (
	cbAdd grammar.CallbackID = iota + 1
	cbMul
	cbNum
)

func buildArithGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g := grammar.New()

	_, err := g.AddTerminal("num", `[0-9]+`, 0)
	assert.NoError(t, err)
	_, err = g.AddOperator("+", grammar.OpInfo{Assoc: grammar.LeftAssoc, Priority: 1}, false)
	assert.NoError(t, err)
	_, err = g.AddOperator("*", grammar.OpInfo{Assoc: grammar.LeftAssoc, Priority: 2}, false)
	assert.NoError(t, err)

	assert.NoError(t, g.AddNonTerminal("E", []string{"E", "+", "E"}, cbAdd, false))
	assert.NoError(t, g.AddNonTerminal("E", []string{"E", "*", "E"}, cbMul, false))
	assert.NoError(t, g.AddNonTerminal("E", []string{"num"}, cbNum, false))
	assert.NoError(t, g.SetStart("E"))
	assert.NoError(t, g.Validate())
	return g
}

func buildDFA(t *testing.T, g *grammar.Grammar) automaton.Table {
	t.Helper()
	b := automaton.NewBuilder()
	for _, id := range g.Terminals() {
		rule := g.Rule(id)
		tag := automaton.AcceptTag{TokenID: id, Priority: rule.Priority}
		var err error
		if rule.Kind == grammar.Operator {
			err = b.AddLiteral(g.SymbolName(id), tag)
		} else {
			err = b.AddPattern(rule.Pattern, tag)
		}
		assert.NoError(t, err)
	}
	inter, err := automaton.BuildDFA(b)
	assert.NoError(t, err)
	return automaton.Minimize(inter)
}

func Test_EndToEnd_OperatorPrecedence(t *testing.T) {
	assert := assert.New(t)
	g := buildArithGrammar(t)

	tbl, err := lalr.Generate(g)
	assert.NoError(err)

	dfa := buildDFA(t, g)

	m := New(tbl, g)
	m.RegisterCallback(cbNum, func(children []interface{}) (interface{}, error) {
		return strconv.Atoi(children[0].(string))
	})
	m.RegisterCallback(cbAdd, func(children []interface{}) (interface{}, error) {
		return children[0].(int) + children[2].(int), nil
	})
	m.RegisterCallback(cbMul, func(children []interface{}) (interface{}, error) {
		return children[0].(int) * children[2].(int), nil
	})

	lx := lex.New(dfa, g, []byte("2+3*4"))
	result, err := m.Parse(lx)
	assert.NoError(err)
	assert.Equal(14, result, "precedence must bind * tighter than +")
}

const (
	cbNeg grammar.CallbackID = iota + 100
	cbSub
	cbID
)

// buildUnaryBinaryMinusGrammar gives "-" both halves of an operator: a
// tight-binding right-assoc unary reading and a looser left-assoc binary
// reading, so a ShiftReduce cell arises wherever the two could apply.
func buildUnaryBinaryMinusGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g := grammar.New()

	_, err := g.AddTerminal("id", `[a-z]`, 0)
	assert.NoError(t, err)
	_, err = g.AddOperator("-", grammar.OpInfo{Assoc: grammar.LeftAssoc, Priority: 1}, false)
	assert.NoError(t, err)
	_, err = g.AddOperator("-", grammar.OpInfo{Assoc: grammar.RightAssoc, Priority: 3}, true)
	assert.NoError(t, err)

	assert.NoError(t, g.AddNonTerminal("E", []string{"E", "-", "E"}, cbSub, false))
	assert.NoError(t, g.AddNonTerminal("E", []string{"-", "E"}, cbNeg, false))
	assert.NoError(t, g.AddNonTerminal("E", []string{"id"}, cbID, false))
	assert.NoError(t, g.SetStart("E"))
	assert.NoError(t, g.Validate())
	return g
}

func Test_EndToEnd_UnaryBinaryOperatorDispatch(t *testing.T) {
	assert := assert.New(t)
	g := buildUnaryBinaryMinusGrammar(t)

	tbl, err := lalr.Generate(g)
	assert.NoError(err)
	dfa := buildDFA(t, g)

	m := New(tbl, g)
	m.RegisterCallback(cbID, func(children []interface{}) (interface{}, error) {
		return children[0].(string), nil
	})
	m.RegisterCallback(cbNeg, func(children []interface{}) (interface{}, error) {
		return "-(" + children[1].(string) + ")", nil
	})
	m.RegisterCallback(cbSub, func(children []interface{}) (interface{}, error) {
		return "(" + children[0].(string) + "-" + children[2].(string) + ")", nil
	})

	lx := lex.New(dfa, g, []byte("-a-b"))
	result, err := m.Parse(lx)
	assert.NoError(err)
	assert.Equal("(-(a)-b)", result, "the leading - must bind tightly as unary while the second reads as binary")
}

const (
	cbEmptyList grammar.CallbackID = iota + 200
	cbAppendItem
)

// buildNullableListGrammar is L -> @ | L item: the empty alternative is
// reached only through the nullable dot-skip closure rule, never its own
// reduce action, so every reduce(L -> L item) call must come from the
// recursive body alone.
func buildNullableListGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g := grammar.New()

	_, err := g.AddTerminal("item", `item`, 0)
	assert.NoError(t, err)
	assert.NoError(t, g.AddNonTerminal("L", nil, cbEmptyList, true))
	assert.NoError(t, g.AddNonTerminal("L", []string{"L", "item"}, cbAppendItem, false))
	assert.NoError(t, g.SetStart("L"))
	assert.NoError(t, g.Validate())
	return g
}

func Test_EndToEnd_NullableBodyFillsNoneForAbsentSlot(t *testing.T) {
	assert := assert.New(t)
	g := buildNullableListGrammar(t)

	tbl, err := lalr.Generate(g)
	assert.NoError(err)
	dfa := buildDFA(t, g)

	var calls [][]interface{}
	m := New(tbl, g)
	m.RegisterCallback(cbAppendItem, func(children []interface{}) (interface{}, error) {
		calls = append(calls, children)
		return len(calls), nil
	})

	lx := lex.New(dfa, g, []byte("item item item"))
	_, err = m.Parse(lx)
	assert.NoError(err)

	assert.Len(calls, 3, "three item tokens must drive exactly three reduce(L -> L item) calls")
	assert.Equal(None, calls[0][0], "the first call's L slot derived empty and must be filled with None")
	assert.NotEqual(None, calls[1][0], "later calls have a real L child, not a gap")
	assert.NotEqual(None, calls[2][0])
}

func Test_EndToEnd_SyntaxErrorOnMalformedInput(t *testing.T) {
	assert := assert.New(t)
	g := buildArithGrammar(t)

	tbl, err := lalr.Generate(g)
	assert.NoError(err)
	dfa := buildDFA(t, g)

	m := New(tbl, g)
	m.RegisterCallback(cbNum, func(children []interface{}) (interface{}, error) {
		return strconv.Atoi(children[0].(string))
	})
	m.RegisterCallback(cbAdd, func(children []interface{}) (interface{}, error) {
		return children[0].(int) + children[2].(int), nil
	})
	m.RegisterCallback(cbMul, func(children []interface{}) (interface{}, error) {
		return children[0].(int) * children[2].(int), nil
	})

	lx := lex.New(dfa, g, []byte("2+*4"))
	_, err = m.Parse(lx)
	assert.Error(err)
}
