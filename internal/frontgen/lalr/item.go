// Package lalr implements C6 of spec.md: FIRST-set computation, canonical
// LR(1) item-set construction, LALR(1) state merging by core equality,
// operator-precedence conflict resolution, and row-merging table
// minimization.
package lalr

import (
	"sort"

	"github.com/corvid-lang/frontgen/internal/frontgen/grammar"
	"github.com/corvid-lang/frontgen/internal/frontgen/symbols"
)

// Item is one LR(1) item: a production body together with a dot position
// and a single lookahead terminal, per spec.md §4.6.2.
type Item struct {
	LHS       symbols.ID
	BodyIndex int
	Dot       int
	Lookahead symbols.ID
}

// itemCore is an Item stripped of its lookahead — two items with the same
// core but different lookaheads belong to the same LALR(1) state once
// merged (spec.md §4.6.3).
type itemCore struct {
	LHS       symbols.ID
	BodyIndex int
	Dot       int
}

func (it Item) core() itemCore { return itemCore{it.LHS, it.BodyIndex, it.Dot} }

func ruleBody(g *grammar.Grammar, lhs symbols.ID, idx int) []symbols.ID {
	return g.Rule(lhs).Bodies[idx].Symbols
}

// dotSymbol returns the symbol immediately after the dot, if the dot is
// not already at the end of the body.
func (it Item) dotSymbol(g *grammar.Grammar) (symbols.ID, bool) {
	b := ruleBody(g, it.LHS, it.BodyIndex)
	if it.Dot >= len(b) {
		return symbols.None, false
	}
	return b[it.Dot], true
}

// atEnd reports whether the dot has reached the end of the body — a
// reduce item.
func (it Item) atEnd(g *grammar.Grammar) bool {
	return it.Dot >= len(ruleBody(g, it.LHS, it.BodyIndex))
}

func (it Item) advance() Item {
	it.Dot++
	return it
}

// sortedItems returns a deterministic ordering of an item set, used for
// both hashing and stable iteration (e.g. Table.Dump).
func sortedItems(set map[Item]bool) []Item {
	out := make([]Item, 0, len(set))
	for it := range set {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.LHS != b.LHS {
			return a.LHS < b.LHS
		}
		if a.BodyIndex != b.BodyIndex {
			return a.BodyIndex < b.BodyIndex
		}
		if a.Dot != b.Dot {
			return a.Dot < b.Dot
		}
		return a.Lookahead < b.Lookahead
	})
	return out
}

func sortedCores(set map[Item]bool) []itemCore {
	seen := map[itemCore]bool{}
	var out []itemCore
	for it := range set {
		c := it.core()
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.LHS != b.LHS {
			return a.LHS < b.LHS
		}
		if a.BodyIndex != b.BodyIndex {
			return a.BodyIndex < b.BodyIndex
		}
		return a.Dot < b.Dot
	})
	return out
}
