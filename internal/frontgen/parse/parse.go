// Package parse implements C9 of spec.md: the LALR(1) table-driven parser
// runtime — a state/value stack over a sentinel bottom frame, the
// shift/reduce main loop (purple-dragon-book Algorithm 4.44, as the
// teacher's parse/lr.go Parse implements it), nullable-body reduction, and
// ShiftReduce dispatch for operators carrying both unary and binary
// semantics.
package parse

import (
	"errors"
	"io"

	"github.com/corvid-lang/frontgen/internal/frontgen/grammar"
	"github.com/corvid-lang/frontgen/internal/frontgen/icerr"
	"github.com/corvid-lang/frontgen/internal/frontgen/lalr"
	"github.com/corvid-lang/frontgen/internal/frontgen/lex"
	"github.com/corvid-lang/frontgen/internal/frontgen/symbols"
)

// None is the placeholder Parse passes to a callback for a body slot that
// derived empty through a nullable body (spec.md §4.9), and the value
// reduce produces for a body with no registered callback.
var None interface{} = struct{}{}

// Callback is a user reduction action: given the child values collected
// for one production body (in left-to-right order), it produces the value
// for the reduced non-terminal.
type Callback func(children []interface{}) (interface{}, error)

// Frame is one entry of the parser's combined state/value stack.
type Frame struct {
	State int
	Value interface{}

	// Shifted is the grammar symbol this frame represents: the terminal
	// that was shifted, or the non-terminal a Reduce pushed after running
	// its callback. Reduce matches it against each body position in turn
	// to implement the nullable-body "skip and None-fill" contract of
	// spec.md §4.9 — see Parse's Reduce case.
	Shifted symbols.ID

	// OpPriority is the operator priority that applies at this stack
	// position: the shifted operator's own (unary- or binary-selected)
	// priority if Shifted is an operator, otherwise inherited from the
	// frame beneath it, per spec.md §4.9's Shift case.
	OpPriority int
}

// Machine is a ready-to-run instance of one generated parser: a parse
// table, the grammar it was built from (for symbol names and production
// shapes), and the registered reduction callbacks.
type Machine struct {
	table     lalr.Table
	grammar   *grammar.Grammar
	callbacks map[grammar.CallbackID]Callback
}

// New returns a Machine driving tbl over g, with no callbacks registered.
func New(tbl lalr.Table, g *grammar.Grammar) *Machine {
	return &Machine{table: tbl, grammar: g, callbacks: map[grammar.CallbackID]Callback{}}
}

// RegisterCallback binds fn as the reduction action for id. Call once per
// CallbackID assigned during grammar ingestion.
func (m *Machine) RegisterCallback(id grammar.CallbackID, fn Callback) {
	m.callbacks[id] = fn
}

// Parse drives the table over tokens read from lx until accept or error,
// returning the value produced by reducing the grammar's start symbol.
func (m *Machine) Parse(lx *lex.Machine) (interface{}, error) {
	stack := []Frame{{State: m.table.Start, Shifted: symbols.None}}

	tok, err := lx.Next()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	eof := err != nil
	var lookahead symbols.ID
	if eof {
		lookahead = m.grammar.EndSymbol()
	} else {
		lookahead = tok.Class
	}

	// Initial value per spec.md §4.9: with no action executed yet there is
	// no preceding reduce, but the flag starts true regardless. No
	// ShiftReduce cell can be reached before any phrase has been built, but
	// shiftPriority also reads the flag, so an operator shifted first from
	// the start state is tagged with its binary-half priority (its unary
	// half only when it has no binary half).
	lastWasReduce := true

	for {
		state := stack[len(stack)-1].State
		act, ok := m.table.Rows[state].Actions[lookahead]
		if !ok {
			return nil, icerr.Syntax(icerr.Position{Line: tok.Line, Column: tok.Col}, m.grammar.SymbolName(lookahead))
		}

		if act.Kind == lalr.ShiftReduce {
			act = m.resolveShiftReduce(stack, act, lookahead, lastWasReduce)
		}

		switch act.Kind {
		case lalr.Shift:
			stack = append(stack, Frame{
				State:      act.State,
				Value:      tok.Lexeme,
				Shifted:    lookahead,
				OpPriority: m.shiftPriority(stack, lookahead, lastWasReduce),
			})
			lastWasReduce = false

			tok, err = lx.Next()
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, err
			}
			eof = err != nil
			if eof {
				lookahead = m.grammar.EndSymbol()
			} else {
				lookahead = tok.Class
			}

		case lalr.Reduce:
			body := m.grammar.Rule(act.LHS).Bodies[act.BodyIndex]

			children := make([]interface{}, len(body.Symbols))
			for i := len(body.Symbols) - 1; i >= 0; i-- {
				top := stack[len(stack)-1]
				if top.Shifted == body.Symbols[i] {
					children[i] = top.Value
					stack = stack[:len(stack)-1]
				} else {
					// The expected symbol at this body position was never
					// shifted or reduced onto the stack — it derived empty
					// via a nullable body that contributes no frame of its
					// own (lalr.Closure's dot-skip rule, spec.md §4.6.2/
					// §4.9 scenario S4). Pass None without popping.
					children[i] = None
				}
			}

			value, err := m.reduce(body.Callback, children)
			if err != nil {
				return nil, icerr.Callback(icerr.Position{Line: tok.Line, Column: tok.Col}, err)
			}

			top := stack[len(stack)-1].State
			gotoState, ok := m.table.Rows[top].Goto[act.LHS]
			if !ok {
				return nil, icerr.Syntax(icerr.Position{Line: tok.Line, Column: tok.Col}, m.grammar.SymbolName(act.LHS))
			}
			stack = append(stack, Frame{
				State:      gotoState,
				Value:      value,
				Shifted:    act.LHS,
				OpPriority: stack[len(stack)-1].OpPriority,
			})
			lastWasReduce = true

		case lalr.Accept:
			return stack[len(stack)-1].Value, nil

		default:
			return nil, icerr.Syntax(icerr.Position{Line: tok.Line, Column: tok.Col}, m.grammar.SymbolName(lookahead))
		}
	}
}

// resolveShiftReduce picks between the shift and reduce halves of a
// ShiftReduce cell, per spec.md §4.9: the lookahead operator's (assoc,
// priority) is read from its unary half iff lastWasReduce is false, else
// its binary half, then compared against the top frame's OpPriority.
func (m *Machine) resolveShiftReduce(stack []Frame, act lalr.Action, lookahead symbols.ID, lastWasReduce bool) lalr.Action {
	info := chosenOpInfo(m.grammar.Rule(lookahead), lastWasReduce)
	stackPrio := stack[len(stack)-1].OpPriority

	reduceAct := lalr.Action{Kind: lalr.Reduce, LHS: act.LHS, BodyIndex: act.BodyIndex}
	shiftAct := lalr.Action{Kind: lalr.Shift, State: act.State}

	if info == nil {
		return shiftAct
	}

	switch {
	case stackPrio > info.Priority:
		return reduceAct
	case stackPrio == info.Priority && info.Assoc == grammar.LeftAssoc:
		return reduceAct
	default:
		return shiftAct
	}
}

// shiftPriority computes the OpPriority a newly shifted frame should carry:
// the shifted symbol's own (unary- or binary-selected) priority if it is an
// operator, otherwise the priority inherited from the frame beneath it, per
// spec.md §4.9's Shift case.
func (m *Machine) shiftPriority(stack []Frame, shifted symbols.ID, lastWasReduce bool) int {
	if info := chosenOpInfo(m.grammar.Rule(shifted), lastWasReduce); info != nil {
		return info.Priority
	}
	return stack[len(stack)-1].OpPriority
}

// chosenOpInfo picks which semantic half of an operator production
// applies: unary iff lastWasReduce is false (no completed phrase precedes
// the operator, so it has no left operand to be binary about), else
// binary, falling back to whichever half is actually populated for
// operators that carry only one.
func chosenOpInfo(p *grammar.Production, lastWasReduce bool) *grammar.OpInfo {
	if p == nil || p.Kind != grammar.Operator {
		return nil
	}
	if !lastWasReduce && p.Unary != nil {
		return p.Unary
	}
	if p.Binary != nil {
		return p.Binary
	}
	return p.Unary
}

// reduce applies the registered callback for id to children. A NoCallback
// body with exactly one child (the dummy augmenting production) passes that
// child through; any other body without a registered callback yields None.
func (m *Machine) reduce(id grammar.CallbackID, children []interface{}) (interface{}, error) {
	if id == grammar.NoCallback {
		if len(children) == 1 {
			return children[0], nil
		}
		return None, nil
	}
	fn, ok := m.callbacks[id]
	if !ok {
		return None, nil
	}
	return fn(children)
}
