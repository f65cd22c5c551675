package lalr

import (
	"fmt"

	"github.com/corvid-lang/frontgen/internal/frontgen/grammar"
	"github.com/corvid-lang/frontgen/internal/frontgen/symbols"
)

// Kind is the tagged-union discriminant for Action, generalized from the
// teacher's LRActionType: this repo adds ShiftReduce alongside
// Shift/Reduce/Accept/Error (spec.md §4.6.4/§4.9).
type Kind int

const (
	Error Kind = iota
	Shift
	Reduce
	// ShiftReduce marks a shift/reduce cell whose lookahead is an operator
	// carrying both unary and binary semantics: both halves are recorded,
	// and the parse runtime chooses between them from the operator half its
	// last action selects and the priority on its top stack frame.
	ShiftReduce
	Accept
)

func (k Kind) String() string {
	switch k {
	case Shift:
		return "shift"
	case Reduce:
		return "reduce"
	case ShiftReduce:
		return "shift/reduce"
	case Accept:
		return "accept"
	default:
		return "error"
	}
}

// Action is one parse-table cell, per spec.md §3/§4.6.4.
type Action struct {
	Kind Kind

	// State is the target state for Shift (and the shift half of
	// ShiftReduce).
	State int

	// LHS/BodyIndex identify the production to reduce for Reduce (and the
	// reduce half of ShiftReduce).
	LHS       symbols.ID
	BodyIndex int
}

func (a Action) String() string {
	switch a.Kind {
	case Shift:
		return fmt.Sprintf("s%d", a.State)
	case Reduce:
		return fmt.Sprintf("r%d,%d", a.LHS, a.BodyIndex)
	case ShiftReduce:
		return fmt.Sprintf("sr%d/%d,%d", a.State, a.LHS, a.BodyIndex)
	case Accept:
		return "acc"
	default:
		return ""
	}
}

// resolveConflict decides a shift/reduce collision on terminal shiftSym,
// per spec.md §4.6.4: operator priority breaks the tie, equal priority
// falls back to the operator's associativity, and an operator able to act
// as both unary and binary (e.g. unary "-" vs. binary "-") is left for the
// runtime to decide via ShiftReduce, since that distinction depends on
// what is already on the parse stack, not on static precedence.
func resolveConflict(g *grammar.Grammar, shiftSym symbols.ID, shiftTarget int, reduceLHS symbols.ID, reduceBody int) Action {
	shiftOp := g.Rule(shiftSym)

	if shiftOp != nil && shiftOp.Kind == grammar.Operator && shiftOp.Unary != nil && shiftOp.Binary != nil {
		return Action{Kind: ShiftReduce, State: shiftTarget, LHS: reduceLHS, BodyIndex: reduceBody}
	}

	shiftInfo := operatorInfo(shiftOp)
	reduceInfo := operatorInfo(trailingOperator(g, reduceLHS, reduceBody))

	if shiftInfo == nil || reduceInfo == nil {
		// no precedence information on one side of the conflict: default
		// to shift, matching the traditional yacc default.
		return Action{Kind: Shift, State: shiftTarget}
	}

	switch {
	case shiftInfo.Priority > reduceInfo.Priority:
		return Action{Kind: Shift, State: shiftTarget}
	case shiftInfo.Priority < reduceInfo.Priority:
		return Action{Kind: Reduce, LHS: reduceLHS, BodyIndex: reduceBody}
	default:
		if reduceInfo.Assoc == grammar.LeftAssoc {
			return Action{Kind: Reduce, LHS: reduceLHS, BodyIndex: reduceBody}
		}
		return Action{Kind: Shift, State: shiftTarget}
	}
}

// trailingOperator returns the production of the rightmost terminal or
// operator symbol of a reduce body (nil if the body has none) — in the
// classic "E -> E op E" precedence-climbing shape that is op, the operator
// whose priority/associativity governs a shift/reduce decision against this
// reduction.
func trailingOperator(g *grammar.Grammar, lhs symbols.ID, bodyIdx int) *grammar.Production {
	syms := ruleBody(g, lhs, bodyIdx)
	for i := len(syms) - 1; i >= 0; i-- {
		if p := g.Rule(syms[i]); p != nil && p.Kind != grammar.NonTerminal {
			return p
		}
	}
	return nil
}

func operatorInfo(p *grammar.Production) *grammar.OpInfo {
	if p == nil || p.Kind != grammar.Operator {
		return nil
	}
	if p.Binary != nil {
		return p.Binary
	}
	return p.Unary
}
