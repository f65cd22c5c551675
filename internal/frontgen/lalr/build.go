package lalr

import (
	"fmt"

	"github.com/cnf/structhash"
	"github.com/corvid-lang/frontgen/internal/frontgen/grammar"
	"github.com/corvid-lang/frontgen/internal/frontgen/icerr"
	"github.com/corvid-lang/frontgen/internal/frontgen/symbols"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// collection is the canonical LR(1) automaton before LALR(1) merging: one
// item set and one symbol->state transition map per state.
type collection struct {
	states []map[Item]bool
	trans  []map[symbols.ID]int
	start  int
}

// buildCanonical runs the standard subset-construction-style BFS over
// item sets (spec.md §4.6.2/§4.6.3): starting from the closure of the
// augmented start item, repeatedly computing Goto for every grammar
// symbol against every known state, hash-indexing item sets so each
// distinct set materializes exactly once.
//
// g must already be augmented (grammar.Augmented()) so its start
// production is the dummy S' -> S spec.md §4.6.3 requires.
func buildCanonical(g *grammar.Grammar, first FirstSets) (collection, error) {
	start := g.StartSymbol()
	rule := g.Rule(start)
	if rule == nil || len(rule.Bodies) != 1 {
		return collection{}, icerr.GrammarIngestion(icerr.Position{}, "augmented start symbol %q must have exactly one body", g.SymbolName(start))
	}

	startItem := Item{LHS: start, BodyIndex: 0, Dot: 0, Lookahead: g.EndSymbol()}
	startSet := Closure(g, first, map[Item]bool{startItem: true})

	col := collection{start: 0}
	index := map[string]int{}

	key := hashItemSet(startSet)
	col.states = append(col.states, startSet)
	col.trans = append(col.trans, map[symbols.ID]int{})
	index[key] = 0

	alphabet := append(append([]symbols.ID{}, g.Terminals()...), g.NonTerminals()...)

	queue := linkedlistqueue.New()
	queue.Enqueue(0)

	for !queue.Empty() {
		v, _ := queue.Dequeue()
		si := v.(int)

		for _, sym := range alphabet {
			target := Goto(g, first, col.states[si], sym)
			if target == nil {
				continue
			}
			tkey := hashItemSet(target)
			ti, ok := index[tkey]
			if !ok {
				ti = len(col.states)
				col.states = append(col.states, target)
				col.trans = append(col.trans, map[symbols.ID]int{})
				index[tkey] = ti
				queue.Enqueue(ti)
			}
			col.trans[si][sym] = ti
		}
	}

	return col, nil
}

// mergeLALR merges canonical LR(1) states sharing an identical core (the
// item set with lookaheads stripped) into single LALR(1) states, unioning
// lookaheads across merged states for matching cores, per spec.md
// §4.6.3's kernel/core equality.
func mergeLALR(col collection) collection {
	groupKeyOf := make([]string, len(col.states))
	groupOf := make(map[string]int)
	var order []string

	for i, set := range col.states {
		k := hashCoreSet(set)
		groupKeyOf[i] = k
		if _, ok := groupOf[k]; !ok {
			groupOf[k] = len(order)
			order = append(order, k)
		}
	}

	merged := make([]map[Item]bool, len(order))
	for i, set := range col.states {
		gi := groupOf[groupKeyOf[i]]
		if merged[gi] == nil {
			merged[gi] = map[Item]bool{}
		}
		for it := range set {
			merged[gi][it] = true
		}
	}

	mergedTrans := make([]map[symbols.ID]int, len(order))
	for i := range mergedTrans {
		mergedTrans[i] = map[symbols.ID]int{}
	}
	for i, t := range col.trans {
		gi := groupOf[groupKeyOf[i]]
		for sym, target := range t {
			mergedTrans[gi][sym] = groupOf[groupKeyOf[target]]
		}
	}

	return collection{
		states: merged,
		trans:  mergedTrans,
		start:  groupOf[groupKeyOf[col.start]],
	}
}

func hashItemSet(set map[Item]bool) string {
	hash, err := structhash.Hash(sortedItems(set), 1)
	if err != nil {
		// structhash only fails on unhashable types; a []Item of plain
		// int-valued fields is always hashable.
		panic(fmt.Sprintf("lalr: hashing item set: %v", err))
	}
	return hash
}

func hashCoreSet(set map[Item]bool) string {
	hash, err := structhash.Hash(sortedCores(set), 1)
	if err != nil {
		panic(fmt.Sprintf("lalr: hashing item core set: %v", err))
	}
	return hash
}
