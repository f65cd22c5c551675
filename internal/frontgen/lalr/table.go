package lalr

import (
	"fmt"
	"sort"

	"github.com/cnf/structhash"
	"github.com/corvid-lang/frontgen/internal/frontgen/grammar"
	"github.com/corvid-lang/frontgen/internal/frontgen/icerr"
	"github.com/corvid-lang/frontgen/internal/frontgen/symbols"
	"github.com/dekarrin/rosed"
)

// Row is one parse-table state: the terminal-indexed action cells plus
// the non-terminal-indexed goto cells, per spec.md §3.
type Row struct {
	Actions map[symbols.ID]Action
	Goto    map[symbols.ID]int
}

// Table is the finished LALR(1) parse table spec.md §4.6 builds and §4.7
// serializes.
type Table struct {
	Rows  []Row
	Start int
}

// Generate builds the LALR(1) parse table for g, per spec.md §4.6: augment
// the grammar, compute FIRST, build the canonical LR(1) collection, merge
// it down to LALR(1) states by core equality, and fill in actions/gotos with
// operator-precedence conflict resolution. The table is returned
// unminimized; Table.Minimize merges rows with identical behavior.
func Generate(g *grammar.Grammar) (Table, error) {
	aug := g.Augmented()
	first := ComputeFirst(aug)

	canon, err := buildCanonical(aug, first)
	if err != nil {
		return Table{}, err
	}
	merged := mergeLALR(canon)

	rows := make([]Row, len(merged.states))
	for i, set := range merged.states {
		row := Row{Actions: map[symbols.ID]Action{}, Goto: map[symbols.ID]int{}}

		for it := range set {
			if !it.atEnd(aug) {
				continue
			}
			var cand Action
			if it.LHS == aug.StartSymbol() && it.Lookahead == aug.EndSymbol() {
				cand = Action{Kind: Accept}
			} else {
				cand = Action{Kind: Reduce, LHS: it.LHS, BodyIndex: it.BodyIndex}
			}
			if err := setAction(aug, &row, it.Lookahead, cand); err != nil {
				return Table{}, err
			}
		}

		for sym, target := range merged.trans[i] {
			rule := aug.Rule(sym)
			if rule != nil && rule.Kind == grammar.NonTerminal {
				row.Goto[sym] = target
				continue
			}
			cand := Action{Kind: Shift, State: target}
			if err := setAction(aug, &row, sym, cand); err != nil {
				return Table{}, err
			}
		}

		rows[i] = row
	}

	return Table{Rows: rows, Start: merged.start}, nil
}

// setAction installs cand into row.Actions[term], resolving a collision
// with any action already present via combineActions.
func setAction(g *grammar.Grammar, row *Row, term symbols.ID, cand Action) error {
	existing, ok := row.Actions[term]
	if !ok {
		row.Actions[term] = cand
		return nil
	}
	resolved, err := combineActions(g, existing, cand, term)
	if err != nil {
		return err
	}
	row.Actions[term] = resolved
	return nil
}

// combineActions resolves a collision between two action proposals for
// the same terminal, per spec.md §4.6.4 and §7: a shift/reduce collision on
// an operator terminal is settled by resolveConflict; a shift/reduce
// collision on any other terminal, and any differing accept, reduce/reduce
// or shift/shift collision, is ErrAmbiguousGrammar. A collision with a cell
// that already holds ShiftReduce keeps the existing cell.
func combineActions(g *grammar.Grammar, a, b Action, term symbols.ID) (Action, error) {
	if a.Kind == Accept || b.Kind == Accept {
		if a.Kind == b.Kind {
			return a, nil
		}
		return Action{}, icerr.AmbiguousGrammar("accept conflicts with another action on terminal %q", g.SymbolName(term))
	}

	if (a.Kind == Shift && b.Kind == Reduce) || (a.Kind == Reduce && b.Kind == Shift) {
		if p := g.Rule(term); p == nil || p.Kind != grammar.Operator {
			return Action{}, icerr.AmbiguousGrammar("shift/reduce conflict on non-operator terminal %q", g.SymbolName(term))
		}
	}

	switch {
	case a.Kind == Shift && b.Kind == Reduce:
		return resolveConflict(g, term, a.State, b.LHS, b.BodyIndex), nil
	case a.Kind == Reduce && b.Kind == Shift:
		return resolveConflict(g, term, b.State, a.LHS, a.BodyIndex), nil
	case a.Kind == Reduce && b.Kind == Reduce:
		if a.LHS == b.LHS && a.BodyIndex == b.BodyIndex {
			return a, nil
		}
		return Action{}, icerr.AmbiguousGrammar(
			"reduce/reduce conflict on terminal %q between %s (body %d) and %s (body %d)",
			g.SymbolName(term), g.SymbolName(a.LHS), a.BodyIndex, g.SymbolName(b.LHS), b.BodyIndex)
	case a.Kind == Shift && b.Kind == Shift:
		if a.State == b.State {
			return a, nil
		}
		return Action{}, icerr.AmbiguousGrammar("shift/shift conflict on terminal %q", g.SymbolName(term))
	default:
		return a, nil
	}
}

// Minimize merges rows that behave identically — same action/goto shape
// and, transitively, equivalent successor rows — the same partition-
// refinement idea automaton.Minimize applies to DFA rows (spec.md §4.6.5
// "row-merging minimization").
func (t Table) Minimize() Table {
	bucketOf := make([]int, len(t.Rows))
	seen := map[string]int{}
	next := 0
	for i, r := range t.Rows {
		k := rowShapeKey(r)
		id, ok := seen[k]
		if !ok {
			id = next
			next++
			seen[k] = id
		}
		bucketOf[i] = id
	}

	changed := true
	for changed {
		changed = false
		newBucketOf := make([]int, len(t.Rows))
		keyToID := map[string]int{}
		nextID := 0
		for i, r := range t.Rows {
			key := rowRefinementKey(r, bucketOf, bucketOf[i])
			id, ok := keyToID[key]
			if !ok {
				id = nextID
				nextID++
				keyToID[key] = id
			}
			newBucketOf[i] = id
		}
		if nextID > next {
			changed = true
		}
		bucketOf = newBucketOf
		next = nextID
	}

	finalID := map[int]int{}
	var owner []int
	for i, b := range bucketOf {
		if _, ok := finalID[b]; !ok {
			finalID[b] = len(owner)
			owner = append(owner, i)
		}
	}

	rows := make([]Row, len(owner))
	for newID, nodeIdx := range owner {
		src := t.Rows[nodeIdx]
		dst := Row{Actions: map[symbols.ID]Action{}, Goto: map[symbols.ID]int{}}
		for term, act := range src.Actions {
			a := act
			if a.Kind == Shift || a.Kind == ShiftReduce {
				a.State = finalID[bucketOf[a.State]]
			}
			dst.Actions[term] = a
		}
		for sym, target := range src.Goto {
			dst.Goto[sym] = finalID[bucketOf[target]]
		}
		rows[newID] = dst
	}

	return Table{Rows: rows, Start: finalID[bucketOf[t.Start]]}
}

// rowShapeKey is the initial partition key: everything about a row except
// the specific target state indices its actions/gotos point to.
func rowShapeKey(r Row) string {
	type actKey struct {
		Term int
		Kind Kind
		LHS  int
		Body int
	}
	var acts []actKey
	for term, a := range r.Actions {
		acts = append(acts, actKey{int(term), a.Kind, int(a.LHS), a.BodyIndex})
	}
	sort.Slice(acts, func(i, j int) bool {
		if acts[i].Term != acts[j].Term {
			return acts[i].Term < acts[j].Term
		}
		return acts[i].Kind < acts[j].Kind
	})

	gotoTerms := make([]int, 0, len(r.Goto))
	for sym := range r.Goto {
		gotoTerms = append(gotoTerms, int(sym))
	}
	sort.Ints(gotoTerms)

	h, err := structhash.Hash(struct {
		Acts      []actKey
		GotoTerms []int
	}{acts, gotoTerms}, 1)
	if err != nil {
		panic(fmt.Sprintf("lalr: hashing row shape: %v", err))
	}
	return h
}

// rowRefinementKey extends rowShapeKey with, for every action/goto target,
// the target's *current* bucket id — this is what lets the fixed-point
// loop in Minimize split a bucket once two of its rows turn out to lead
// to behaviorally distinct successors.
func rowRefinementKey(r Row, bucketOf []int, ownBucket int) string {
	type actKey struct {
		Term   int
		Kind   Kind
		LHS    int
		Body   int
		Target int
	}
	var acts []actKey
	for term, a := range r.Actions {
		target := -1
		if a.Kind == Shift || a.Kind == ShiftReduce {
			target = bucketOf[a.State]
		}
		acts = append(acts, actKey{int(term), a.Kind, int(a.LHS), a.BodyIndex, target})
	}
	sort.Slice(acts, func(i, j int) bool {
		if acts[i].Term != acts[j].Term {
			return acts[i].Term < acts[j].Term
		}
		return acts[i].Kind < acts[j].Kind
	})

	type gotoKey struct {
		Sym    int
		Target int
	}
	var gotos []gotoKey
	for sym, target := range r.Goto {
		gotos = append(gotos, gotoKey{int(sym), bucketOf[target]})
	}
	sort.Slice(gotos, func(i, j int) bool { return gotos[i].Sym < gotos[j].Sym })

	h, err := structhash.Hash(struct {
		Own   int
		Acts  []actKey
		Gotos []gotoKey
	}{ownBucket, acts, gotos}, 1)
	if err != nil {
		panic(fmt.Sprintf("lalr: hashing row refinement: %v", err))
	}
	return h
}

// Dump renders the table as a human-readable grid, grounded on the
// teacher's parse/lalr.go String() method and its use of rosed for
// fixed-width table layout.
func (t Table) Dump(g *grammar.Grammar) string {
	terms := g.Terminals()
	nts := g.NonTerminals()

	header := []string{"state"}
	for _, term := range terms {
		header = append(header, g.SymbolName(term))
	}
	header = append(header, "|")
	for _, nt := range nts {
		header = append(header, g.SymbolName(nt))
	}

	data := [][]string{header}
	for i, row := range t.Rows {
		line := []string{fmt.Sprintf("%d", i)}
		for _, term := range terms {
			cell := ""
			if a, ok := row.Actions[term]; ok {
				cell = a.String()
			}
			line = append(line, cell)
		}
		line = append(line, "|")
		for _, nt := range nts {
			cell := ""
			if target, ok := row.Goto[nt]; ok {
				cell = fmt.Sprintf("%d", target)
			}
			line = append(line, cell)
		}
		data = append(data, line)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}
