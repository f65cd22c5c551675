package lalr

import (
	"github.com/corvid-lang/frontgen/internal/frontgen/grammar"
	"github.com/corvid-lang/frontgen/internal/frontgen/symbols"
)

// Closure computes the closure of an LR(1) item set, per spec.md §4.6.2:
// for every item A -> α·Bβ, a already in the set, and every production
// B -> γ, add B -> ·γ, b for every b in FIRST(βa). Repeats until no item is
// added.
//
// A body declared with the "@" nullable marker (grammar.Body.Nullable)
// never gets its own item here — spec.md §4.6.2's second closure bullet
// ("if X is nullable: also add (P,b,i+1,L)") is how an empty derivation of
// X is represented instead: by advancing straight past X in whatever item
// already has it after the dot. This is what lets the parser runtime reach
// a real Shift of the symbol following X without ever reducing X's empty
// body first, and is the table-construction half of the nullable-body
// "skip and pass None" contract that the Reduce case of parse.Machine.Parse
// implements at runtime
// (spec.md §4.9, scenario S4): since X's empty body contributes no item
// and so no Reduce action anywhere, no frame for X is ever pushed on that
// path, and the later reduce that expected X in that slot fills it with
// None instead of popping a frame for it.
func Closure(g *grammar.Grammar, first FirstSets, items map[Item]bool) map[Item]bool {
	closed := make(map[Item]bool, len(items))
	var worklist []Item
	for it := range items {
		closed[it] = true
		worklist = append(worklist, it)
	}

	add := func(cand Item) {
		if !closed[cand] {
			closed[cand] = true
			worklist = append(worklist, cand)
		}
	}

	for len(worklist) > 0 {
		it := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		sym, ok := it.dotSymbol(g)
		if !ok {
			continue
		}
		rule := g.Rule(sym)
		if rule == nil || rule.Kind != grammar.NonTerminal {
			continue
		}

		rest := ruleBody(g, it.LHS, it.BodyIndex)[it.Dot+1:]
		las := FirstOfSequence(g, first, rest, it.Lookahead)

		for bi, body := range rule.Bodies {
			if body.Nullable {
				continue
			}
			for la := range las {
				add(Item{LHS: sym, BodyIndex: bi, Dot: 0, Lookahead: la})
			}
		}

		if g.Nullable(sym) {
			add(it.advance())
		}
	}

	return closed
}

// Goto advances every item in items whose dot-symbol is sym, then closes
// the result, per spec.md §4.6.3. Returns nil if no item in items has sym
// after its dot.
func Goto(g *grammar.Grammar, first FirstSets, items map[Item]bool, sym symbols.ID) map[Item]bool {
	moved := map[Item]bool{}
	for it := range items {
		s, ok := it.dotSymbol(g)
		if ok && s == sym {
			moved[it.advance()] = true
		}
	}
	if len(moved) == 0 {
		return nil
	}
	return Closure(g, first, moved)
}
