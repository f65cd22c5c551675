// Package automaton implements C3/C4 of spec.md: a byte-alphabet Thompson
// NFA builder with a restricted regex surface (concatenation, character
// classes, grouping, `* + ?`, single-char escapes — no top-level `|`, per
// spec.md §4.3 and §9 Open Question (a)), and a subset-construction +
// partition-refinement DFA builder.
//
// This completes the Thompson-construction helpers the teacher's own
// lex/regex.go left as a "TODO: fill this all in when we want to return to
// DFA-based impl" stub (createSingleSymbolFA, createJuxtapositionFA,
// createKleeneStarFA, createAlternationFA), generalized from the teacher's
// string-keyed, single-accept-state NFA fragments to a shared box.Arena of
// byte-transition states carrying (token-id, priority) accept tags.
package automaton

import (
	"fmt"
	"sort"

	"github.com/cnf/structhash"
	"github.com/corvid-lang/frontgen/internal/frontgen/box"
	"github.com/corvid-lang/frontgen/internal/frontgen/icerr"
	"github.com/corvid-lang/frontgen/internal/frontgen/symbols"
)

// AcceptTag is the (token-id, priority) pair spec.md §3 attaches to an
// accepting NFA/DFA state.
type AcceptTag struct {
	TokenID  symbols.ID
	Priority int
}

type nfaState struct {
	trans  map[byte]box.Handle
	eps    []box.Handle
	accept bool
	tag    AcceptTag
}

// Builder owns the single shared NFA arena that every registered token
// pattern is woven into, epsilon-connected from one global Start state, per
// spec.md §4.3.
type Builder struct {
	arena *box.Arena[nfaState]
	Start box.Handle
}

// NewBuilder returns a Builder with a fresh, empty global start state.
func NewBuilder() *Builder {
	arena := box.NewArena[nfaState]()
	start := arena.Insert(nfaState{trans: map[byte]box.Handle{}})
	return &Builder{arena: arena, Start: start}
}

type frag struct {
	start, accept box.Handle
}

func (b *Builder) newState() box.Handle {
	return b.arena.Insert(nfaState{trans: map[byte]box.Handle{}})
}

func (b *Builder) addEps(from, to box.Handle) {
	s := b.arena.Get(from)
	s.eps = append(s.eps, to)
}

func (b *Builder) byteRange(lo, hi byte) frag {
	s0, s1 := b.newState(), b.newState()
	st := b.arena.Get(s0)
	for c := int(lo); c <= int(hi); c++ {
		st.trans[byte(c)] = s1
	}
	return frag{s0, s1}
}

func (b *Builder) concat(a, c frag) frag {
	b.addEps(a.accept, c.start)
	return frag{a.start, c.accept}
}

func (b *Builder) alt(a, c frag) frag {
	s0, s1 := b.newState(), b.newState()
	b.addEps(s0, a.start)
	b.addEps(s0, c.start)
	b.addEps(a.accept, s1)
	b.addEps(c.accept, s1)
	return frag{s0, s1}
}

func (b *Builder) star(a frag) frag {
	s0, s1 := b.newState(), b.newState()
	b.addEps(s0, a.start)
	b.addEps(s0, s1)
	b.addEps(a.accept, a.start)
	b.addEps(a.accept, s1)
	return frag{s0, s1}
}

func (b *Builder) plus(a frag) frag {
	s1 := b.newState()
	b.addEps(a.accept, a.start)
	b.addEps(a.accept, s1)
	return frag{a.start, s1}
}

func (b *Builder) opt(a frag) frag {
	s0, s1 := b.newState(), b.newState()
	b.addEps(s0, a.start)
	b.addEps(s0, s1)
	b.addEps(a.accept, s1)
	return frag{s0, s1}
}

func (b *Builder) empty() frag {
	s0, s1 := b.newState(), b.newState()
	b.addEps(s0, s1)
	return frag{s0, s1}
}

// AddLiteral weaves a linear byte chain matching the exact literal s into
// the shared NFA and tags its tail as accepting with tag. cmd/frontgen uses
// it for operator lexemes; keyword and other terminal bodies go through
// AddPattern there.
func (b *Builder) AddLiteral(s string, tag AcceptTag) error {
	var cur frag
	if len(s) == 0 {
		cur = b.empty()
	} else {
		cur = b.byteRange(s[0], s[0])
		for i := 1; i < len(s); i++ {
			cur = b.concat(cur, b.byteRange(s[i], s[i]))
		}
	}
	b.addEps(b.Start, cur.start)
	st := b.arena.Get(cur.accept)
	st.accept = true
	st.tag = tag
	return nil
}

// AddPattern parses pattern under the regex surface described above and
// weaves the resulting fragment into the shared NFA, tagging its tail
// accepting with tag.
func (b *Builder) AddPattern(pattern string, tag AcceptTag) error {
	p := &regexParser{b: b, s: pattern}
	f, err := p.parseConcat()
	if err != nil {
		return err
	}
	if p.i != len(p.s) {
		return icerr.GrammarIngestion(icerr.Position{}, "illegal regex %q: unexpected %q at position %d", pattern, p.s[p.i], p.i)
	}
	b.addEps(b.Start, f.start)
	st := b.arena.Get(f.accept)
	st.accept = true
	st.tag = tag
	return nil
}

// closureOfSet returns the epsilon-closure of every state reachable from
// any handle in seeds, sorted ascending for determinism.
func (b *Builder) closureOfSet(seeds []box.Handle) []box.Handle {
	seen := map[box.Handle]bool{}
	var stack []box.Handle
	stack = append(stack, seeds...)

	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[h] {
			continue
		}
		seen[h] = true
		st := b.arena.Get(h)
		if st == nil {
			continue
		}
		for _, e := range st.eps {
			if !seen[e] {
				stack = append(stack, e)
			}
		}
	}

	out := make([]box.Handle, 0, len(seen))
	for h := range seen {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Closure returns the epsilon-closure of the single state h, together with
// the highest-priority accept tag found in that closure (if any). Per
// spec.md §4.3, a tie in priority between two accepting states tagged with
// distinct token IDs is a fatal ambiguity; a tie with the same token ID is
// fine.
func (b *Builder) Closure(h box.Handle) (subset []box.Handle, tag AcceptTag, ok bool, err error) {
	subset = b.closureOfSet([]box.Handle{h})
	tag, ok, err = b.combinedTag(subset)
	return subset, tag, ok, err
}

func (b *Builder) combinedTag(subset []box.Handle) (tag AcceptTag, ok bool, err error) {
	found := false
	for _, h := range subset {
		st := b.arena.Get(h)
		if st == nil || !st.accept {
			continue
		}
		if !found {
			tag, found = st.tag, true
			continue
		}
		if st.tag.Priority > tag.Priority {
			tag = st.tag
		} else if st.tag.Priority == tag.Priority && st.tag.TokenID != tag.TokenID {
			return AcceptTag{}, false, icerr.AmbiguousGrammar(
				"tokens %d and %d both accept with priority %d", tag.TokenID, st.tag.TokenID, tag.Priority)
		}
	}
	return tag, found, nil
}

func subsetKey(subset []box.Handle) string {
	hash, err := structhash.Hash(subset, 1)
	if err != nil {
		// structhash only fails on unhashable types; []box.Handle of a
		// defined int type is always hashable.
		panic(fmt.Sprintf("automaton: hashing NFA subset: %v", err))
	}
	return hash
}
