package lalr

import (
	"github.com/corvid-lang/frontgen/internal/frontgen/grammar"
	"github.com/corvid-lang/frontgen/internal/frontgen/symbols"
)

// FirstSets maps every symbol X in a grammar to FIRST(X), per spec.md
// §4.6.1.
type FirstSets map[symbols.ID]map[symbols.ID]bool

// ComputeFirst computes FIRST(X) for every terminal, operator, and
// non-terminal in g by fixed-point iteration. A terminal's FIRST set is
// itself; a non-terminal's FIRST set is the union, over each of its
// bodies, of FIRST over the nullable prefix of that body.
func ComputeFirst(g *grammar.Grammar) FirstSets {
	first := make(FirstSets)
	for _, t := range g.Terminals() {
		first[t] = map[symbols.ID]bool{t: true}
	}
	for _, nt := range g.NonTerminals() {
		first[nt] = map[symbols.ID]bool{}
	}

	changed := true
	for changed {
		changed = false
		for _, nt := range g.NonTerminals() {
			for _, b := range g.Rule(nt).Bodies {
				if mergeFirstOfSequence(g, first, first[nt], b.Symbols) {
					changed = true
				}
			}
		}
	}
	return first
}

func mergeFirstOfSequence(g *grammar.Grammar, first FirstSets, dst map[symbols.ID]bool, seq []symbols.ID) bool {
	changed := false
	for _, sym := range seq {
		for t := range first[sym] {
			if !dst[t] {
				dst[t] = true
				changed = true
			}
		}
		if !isNullableSymbol(g, sym) {
			break
		}
	}
	return changed
}

func isNullableSymbol(g *grammar.Grammar, sym symbols.ID) bool {
	p := g.Rule(sym)
	return p != nil && p.Kind == grammar.NonTerminal && g.Nullable(sym)
}

// FirstOfSequence computes FIRST(seq · lookahead): FIRST of seq, plus
// lookahead itself when seq is empty or every symbol in it is nullable.
// This is the lookahead rule spec.md §4.6.2 attaches to items produced by
// Closure.
func FirstOfSequence(g *grammar.Grammar, first FirstSets, seq []symbols.ID, lookahead symbols.ID) map[symbols.ID]bool {
	out := map[symbols.ID]bool{}
	allNullable := true
	for _, sym := range seq {
		for t := range first[sym] {
			out[t] = true
		}
		if !isNullableSymbol(g, sym) {
			allNullable = false
			break
		}
	}
	if allNullable {
		out[lookahead] = true
	}
	return out
}
