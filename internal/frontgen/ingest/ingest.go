// Package ingest implements spec.md §6's grammar-ingestion format: four
// `@@`-delimited sections (keywords, terminal definitions, operator
// definitions, non-terminal productions) feeding directly into
// grammar.Grammar's Add* calls.
//
// Grounded on the shape of the teacher's own fishi.go ingestion front end
// (line-oriented directives accumulating into a grammar builder) but not
// its markdown-embedded-code-block convention — spec.md §6's format is
// raw line-oriented text, not markdown, so github.com/gomarkdown/markdown
// is deliberately not used here.
package ingest

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/corvid-lang/frontgen/internal/frontgen/grammar"
	"github.com/corvid-lang/frontgen/internal/frontgen/icerr"
)

// CallbackRegistry assigns a stable grammar.CallbackID to each
// callback_class name encountered during ingestion, in first-seen order.
type CallbackRegistry struct {
	ids   map[string]grammar.CallbackID
	names []string
}

// NewCallbackRegistry returns an empty registry.
func NewCallbackRegistry() *CallbackRegistry {
	return &CallbackRegistry{ids: map[string]grammar.CallbackID{}}
}

// IDFor returns the stable CallbackID for name, assigning a fresh one on
// first use. An empty name means "no callback" (grammar.NoCallback).
func (r *CallbackRegistry) IDFor(name string) grammar.CallbackID {
	if name == "" {
		return grammar.NoCallback
	}
	if id, ok := r.ids[name]; ok {
		return id
	}
	id := grammar.CallbackID(len(r.names))
	r.ids[name] = id
	r.names = append(r.names, name)
	return id
}

// Name returns the callback_class name registered under id, or "".
func (r *CallbackRegistry) Name(id grammar.CallbackID) string {
	if id == grammar.NoCallback || int(id) >= len(r.names) {
		return ""
	}
	return r.names[id]
}

// Ingest parses src into g, registering every declared terminal,
// operator, and non-terminal, and populating reg with every callback_class
// name referenced in sections 3 and 4.
func Ingest(src string, g *grammar.Grammar, reg *CallbackRegistry) error {
	sections := strings.Split(src, "@@")
	if len(sections) != 4 {
		return icerr.GrammarIngestion(icerr.Position{}, "expected 4 @@-delimited sections, found %d", len(sections))
	}

	if err := ingestKeywords(sections[0], g); err != nil {
		return err
	}
	if err := ingestTerminals(sections[1], g); err != nil {
		return err
	}
	if err := ingestOperators(sections[2], g, reg); err != nil {
		return err
	}
	if err := ingestNonTerminals(sections[3], g, reg); err != nil {
		return err
	}

	return nil
}

// isCommentOrBlank reports whether line should be skipped outright: blank,
// or its first non-space character is '@' (spec.md §6's comment marker).
// Interior '@' characters — the operator section's field separator, or
// the non-terminal section's nullable-body marker — never trigger this,
// since both only ever appear after other tokens on the line.
func isCommentOrBlank(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || strings.HasPrefix(t, "@")
}

func eachLine(section string, fn func(line string) error) error {
	scanner := bufio.NewScanner(strings.NewReader(section))
	for scanner.Scan() {
		line := scanner.Text()
		if isCommentOrBlank(line) {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return nil
}

// ingestKeywords parses section 1: one `"keyword"` literal per line,
// registered as a terminal with priority 1 (spec.md §6.1).
func ingestKeywords(section string, g *grammar.Grammar) error {
	return eachLine(section, func(line string) error {
		lit, ok := unquote(strings.TrimSpace(line))
		if !ok {
			return icerr.GrammarIngestion(icerr.Position{}, "malformed keyword line %q: expected a quoted literal", line)
		}
		_, err := g.AddTerminal(lit, lit, 1)
		return err
	})
}

// ingestTerminals parses section 2: `NAME -> REGEX` lines, priority 0
// (spec.md §6.2).
func ingestTerminals(section string, g *grammar.Grammar) error {
	return eachLine(section, func(line string) error {
		name, rest, ok := strings.Cut(line, "->")
		if !ok {
			return icerr.GrammarIngestion(icerr.Position{}, "malformed terminal definition %q: expected NAME -> REGEX", line)
		}
		_, err := g.AddTerminal(strings.TrimSpace(name), strings.TrimSpace(rest), 0)
		return err
	})
}

// ingestOperators parses section 3: `SYMBOL @ PRIORITY @ ASSOC { callback }
// { includes }`, per spec.md §6.3. An optional leading `unary` keyword
// declares the unary half of SYMBOL instead of its binary half (this
// repo's resolution of spec.md's silence on how a grammar text
// distinguishes the two halves of one lexeme — see DESIGN.md).
func ingestOperators(section string, g *grammar.Grammar, reg *CallbackRegistry) error {
	return eachLine(section, func(line string) error {
		fields := strings.Split(line, "@")
		if len(fields) < 3 {
			return icerr.GrammarIngestion(icerr.Position{}, "malformed operator definition %q: expected SYMBOL @ PRIORITY @ ASSOC", line)
		}

		head := strings.Fields(strings.TrimSpace(fields[0]))
		unary := false
		if len(head) == 2 && head[0] == "unary" {
			unary = true
			head = head[1:]
		}
		if len(head) != 1 {
			return icerr.GrammarIngestion(icerr.Position{}, "malformed operator definition %q: expected a single symbol", line)
		}
		symbol := head[0]

		priority, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return icerr.GrammarIngestion(icerr.Position{}, "malformed operator priority in %q: %v", line, err)
		}

		assocField, rest := fields[2], ""
		if braceIdx := strings.IndexAny(assocField, "{"); braceIdx >= 0 {
			rest = assocField[braceIdx:]
			assocField = assocField[:braceIdx]
		}
		assoc, err := parseAssoc(strings.TrimSpace(assocField))
		if err != nil {
			return icerr.GrammarIngestion(icerr.Position{}, "in operator definition %q: %v", line, err)
		}

		callbackClass, _ := braceGroups(rest)

		_, err = g.AddOperator(symbol, grammar.OpInfo{Assoc: assoc, Priority: priority}, unary)
		if err != nil {
			return err
		}
		reg.IDFor(callbackClass)
		return nil
	})
}

func parseAssoc(s string) (grammar.Assoc, error) {
	switch s {
	case "L":
		return grammar.LeftAssoc, nil
	case "R":
		return grammar.RightAssoc, nil
	default:
		return 0, fmt.Errorf("unknown associativity %q: expected L or R", s)
	}
}

// ingestNonTerminals parses section 4: `LHS -> rhs1 rhs2 ... => { callback
// } { includes }`, with `|`-separated alternative bodies sharing one
// callback class, per spec.md §6.4. A bare `@` token in the RHS list
// marks that body nullable; `"..."` RHS tokens are anonymous terminals,
// auto-registered as literals on first use.
func ingestNonTerminals(section string, g *grammar.Grammar, reg *CallbackRegistry) error {
	return eachLine(section, func(line string) error {
		lhs, rest, ok := strings.Cut(line, "->")
		if !ok {
			return icerr.GrammarIngestion(icerr.Position{}, "malformed production %q: expected LHS -> rhs...", line)
		}
		lhsName := strings.TrimSpace(lhs)

		body, tail, _ := strings.Cut(rest, "=>")
		callbackClass, _ := braceGroups(tail)
		callbackID := reg.IDFor(callbackClass)

		for _, alt := range strings.Split(body, "|") {
			tokens := strings.Fields(alt)
			nullable := false
			var rhs []string

			for _, tok := range tokens {
				if tok == "@" {
					nullable = true
					continue
				}
				if lit, ok := unquote(tok); ok {
					name := anonymousTerminalName(lit)
					if g.SymbolByName(name) == -1 {
						if _, err := g.AddTerminal(name, lit, 1); err != nil {
							return err
						}
					}
					rhs = append(rhs, name)
					continue
				}
				rhs = append(rhs, tok)
			}

			if err := g.AddNonTerminal(lhsName, rhs, callbackID, nullable); err != nil {
				return err
			}
		}
		return nil
	})
}

// anonymousTerminalName derives a stable symbol name for an inline quoted
// literal so repeated uses of "+" (say) across productions all resolve
// to the same terminal instead of redefining it.
func anonymousTerminalName(lit string) string {
	return fmt.Sprintf("ANON<%s>", lit)
}

func unquote(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1], true
	}
	return "", false
}

// braceGroups extracts the contents of up to two `{ ... }` groups from s
// — the callback_class and include_files clauses spec.md §6 sections 3/4
// both end with. Either may be absent.
func braceGroups(s string) (first, second string) {
	groups := []string{}
	for {
		start := strings.Index(s, "{")
		if start < 0 {
			break
		}
		end := strings.Index(s[start:], "}")
		if end < 0 {
			break
		}
		groups = append(groups, strings.TrimSpace(s[start+1:start+end]))
		s = s[start+end+1:]
		if len(groups) == 2 {
			break
		}
	}
	switch len(groups) {
	case 0:
		return "", ""
	case 1:
		return groups[0], ""
	default:
		return groups[0], groups[1]
	}
}
