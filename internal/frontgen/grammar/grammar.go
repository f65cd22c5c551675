// Package grammar implements the production model spec.md §3/§4.5
// describes: terminals, operators (which may carry both binary and unary
// semantics under one lexeme), and non-terminals with ordered bodies,
// nullable tracking, and a forward-reference queue for names used before
// they are declared.
package grammar

import (
	"fmt"
	"sort"

	"github.com/corvid-lang/frontgen/internal/frontgen/icerr"
	"github.com/corvid-lang/frontgen/internal/frontgen/symbols"
)

// Kind tags the union of things a Production can be, per spec.md §3.
type Kind int

const (
	Terminal Kind = iota
	Operator
	NonTerminal
	End
)

func (k Kind) String() string {
	switch k {
	case Terminal:
		return "terminal"
	case Operator:
		return "operator"
	case NonTerminal:
		return "non-terminal"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// Assoc is operator associativity, per the grammar-ingestion ASSOC ∈ {L, R}
// alphabet of spec.md §6.
type Assoc int

const (
	LeftAssoc Assoc = iota
	RightAssoc
)

// OpInfo is the (associativity, priority) pair attached to one semantic
// half (binary or unary) of an Operator production.
type OpInfo struct {
	Assoc    Assoc
	Priority int
}

// CallbackID is the opaque handle identifying a user reduction callback,
// resolved to an actual callable only at runtime load time (spec.md §4.7).
type CallbackID int

// NoCallback is the zero value meaning "no callback registered" — valid
// only for the dummy augmenting production.
const NoCallback CallbackID = -1

// Body is one right-hand side of a non-terminal production.
type Body struct {
	Symbols  []symbols.ID
	Callback CallbackID

	// Nullable marks a body introduced with the "@" marker in grammar
	// ingestion (spec.md §6) — an explicitly empty alternative.
	Nullable bool

	// ItemSets is the per-dot-position list of item-set ids from spec.md
	// §3's production-node data model. lalr.Generate does not fill it in;
	// it stays nil.
	ItemSets [][]int
}

// Production is the tagged union described by spec.md §3.
type Production struct {
	Kind   Kind
	Symbol symbols.ID

	// Terminal fields.
	Pattern  string // the literal or regex body
	Priority int

	// Operator fields. A single operator symbol may carry both; the
	// runtime picks which applies (spec.md §4.9's ShiftReduce handling).
	Binary *OpInfo
	Unary  *OpInfo

	// NonTerminal fields.
	Bodies []Body
}

// IsNullable reports whether any body of a non-terminal production is
// itself marked nullable; full fixed-point nullability of a symbol
// (accounting for chains of nullable non-terminals) is computed by
// Grammar.Nullable, not this method.
func (p *Production) IsNullable() bool {
	for _, b := range p.Bodies {
		if b.Nullable {
			return true
		}
	}
	return false
}

type pendingRef struct {
	lhsName  string
	rhs      []string
	callback CallbackID
	nullable bool
}

// Grammar is the full production set being built up by grammar ingestion
// (or directly, by tests and the LALR engine's own Augmented()).
type Grammar struct {
	names *symbols.Table[string]
	prods map[symbols.ID]*Production
	start symbols.ID

	// pending holds RHS symbol names referenced before being declared,
	// keyed by the undeclared name, so AddTerminal/AddOperator/
	// AddNonTerminal can resolve them as soon as a matching declaration
	// completes. Residual entries after ingestion are reported by
	// Validate.
	pending map[string][]pendingRef

	endSym symbols.ID
}

// New returns an empty Grammar. A distinguished End-of-input production is
// pre-registered under the name "$".
func New() *Grammar {
	g := &Grammar{
		names:   symbols.New[string](),
		prods:   make(map[symbols.ID]*Production),
		pending: make(map[string][]pendingRef),
		start:   symbols.None,
	}
	g.endSym, _ = g.names.Intern("$")
	g.prods[g.endSym] = &Production{Kind: End, Symbol: g.endSym}
	return g
}

// EndSymbol returns the symbol ID of the distinguished end-of-input marker.
func (g *Grammar) EndSymbol() symbols.ID { return g.endSym }

// SymbolName returns the declared name for id, or "" if unknown.
func (g *Grammar) SymbolName(id symbols.ID) string {
	name, _ := g.names.Get(id)
	return name
}

// SymbolByName returns the ID registered for name, or symbols.None.
func (g *Grammar) SymbolByName(name string) symbols.ID {
	return g.names.Lookup(name)
}

// Rule returns the Production for id, or nil if id is not known.
func (g *Grammar) Rule(id symbols.ID) *Production {
	return g.prods[id]
}

// StartSymbol returns the symbol ID of the grammar's start (goal) symbol,
// as set by SetStart.
func (g *Grammar) StartSymbol() symbols.ID { return g.start }

// SetStart designates name as the grammar's start symbol. name must
// already be declared as a non-terminal.
func (g *Grammar) SetStart(name string) error {
	id := g.names.Lookup(name)
	if id == symbols.None {
		return icerr.GrammarIngestion(icerr.Position{}, "start symbol %q is not declared", name)
	}
	g.start = id
	return nil
}

// AddTerminal registers a token with the given literal/regex body and
// lexical priority. Redefining an existing name is an error, per spec.md
// §4.5 and §7.
func (g *Grammar) AddTerminal(name, pattern string, priority int) (symbols.ID, error) {
	if existing := g.names.Lookup(name); existing != symbols.None {
		return symbols.None, icerr.GrammarIngestion(icerr.Position{}, "redefinition of terminal %q", name)
	}
	id, _ := g.names.Intern(name)
	g.prods[id] = &Production{Kind: Terminal, Symbol: id, Pattern: pattern, Priority: priority}
	g.resolvePending(name)
	return id, nil
}

// AddOperator registers (or extends) an operator symbol. If name already
// names an operator, this call fills in whichever of Binary/Unary is still
// nil, letting one lexeme carry both meanings (spec.md §4.5); an attempt
// to set an already-populated half is a redefinition error.
func (g *Grammar) AddOperator(name string, info OpInfo, unary bool) (symbols.ID, error) {
	id := g.names.Lookup(name)
	if id == symbols.None {
		id, _ = g.names.Intern(name)
		g.prods[id] = &Production{Kind: Operator, Symbol: id}
		g.resolvePending(name)
	}

	p := g.prods[id]
	if p.Kind != Operator {
		return symbols.None, icerr.GrammarIngestion(icerr.Position{}, "%q is already declared as a %s, not an operator", name, p.Kind)
	}

	infoCopy := info
	if unary {
		if p.Unary != nil {
			return symbols.None, icerr.GrammarIngestion(icerr.Position{}, "redefinition of unary semantics for operator %q", name)
		}
		p.Unary = &infoCopy
	} else {
		if p.Binary != nil {
			return symbols.None, icerr.GrammarIngestion(icerr.Position{}, "redefinition of binary semantics for operator %q", name)
		}
		p.Binary = &infoCopy
	}
	return id, nil
}

// AddNonTerminal appends a body to lhs's production list, creating lhs if
// it does not already exist. rhs symbols reference terminal, operator, or
// non-terminal names; non-terminal forward references are allowed and
// queued until the referenced name is declared. nullable marks the body as
// the explicit "@" empty alternative.
func (g *Grammar) AddNonTerminal(lhs string, rhs []string, callback CallbackID, nullable bool) error {
	id := g.names.Lookup(lhs)
	if id == symbols.None {
		id, _ = g.names.Intern(lhs)
		g.prods[id] = &Production{Kind: NonTerminal, Symbol: id}
		g.resolvePending(lhs)
	}
	p := g.prods[id]
	if p.Kind != NonTerminal {
		return icerr.GrammarIngestion(icerr.Position{}, "%q is already declared as a %s, not a non-terminal", lhs, p.Kind)
	}

	body := Body{Callback: callback, Nullable: nullable}
	for _, sym := range rhs {
		symID := g.names.Lookup(sym)
		if symID == symbols.None {
			// forward reference: queue the whole body's construction under
			// the missing name instead of keeping a partial body, so only
			// fully-resolved bodies ever enter p.Bodies.
			g.pending[sym] = append(g.pending[sym], pendingRef{lhsName: lhs, rhs: rhs, callback: callback, nullable: nullable})
			return nil
		}
		body.Symbols = append(body.Symbols, symID)
	}

	p.Bodies = append(p.Bodies, body)
	return nil
}

// resolvePending retries every non-terminal body that was blocked on name
// not yet existing. Because AddNonTerminal re-queues (rather than
// partially resolving) a body with any unresolved symbol, this is safe to
// call repeatedly as more names become available.
func (g *Grammar) resolvePending(name string) {
	refs := g.pending[name]
	if len(refs) == 0 {
		return
	}
	delete(g.pending, name)
	for _, ref := range refs {
		// AddNonTerminal may re-queue against a still-missing symbol; that
		// is fine, it'll be picked up again when that symbol arrives.
		_ = g.AddNonTerminal(ref.lhsName, ref.rhs, ref.callback, ref.nullable)
	}
}

// Validate reports any residual forward-reference queue (an RHS symbol
// that was never declared) and checks that a start symbol has been set.
func (g *Grammar) Validate() error {
	if len(g.pending) > 0 {
		names := make([]string, 0, len(g.pending))
		for name := range g.pending {
			names = append(names, name)
		}
		sort.Strings(names)
		return icerr.GrammarIngestion(icerr.Position{}, "undefined symbol(s) referenced: %v", names)
	}
	if g.start == symbols.None {
		return icerr.GrammarIngestion(icerr.Position{}, "no start symbol set")
	}
	return nil
}

// Terminals returns the IDs of every Terminal and Operator production
// (both are "terminal" from the parser's point of view), in ID order.
func (g *Grammar) Terminals() []symbols.ID {
	var out []symbols.ID
	for id, p := range g.prods {
		if p.Kind == Terminal || p.Kind == Operator {
			out = append(out, id)
		}
	}
	sortIDs(out)
	return out
}

// NonTerminals returns the IDs of every NonTerminal production, in ID
// order.
func (g *Grammar) NonTerminals() []symbols.ID {
	var out []symbols.ID
	for id, p := range g.prods {
		if p.Kind == NonTerminal {
			out = append(out, id)
		}
	}
	sortIDs(out)
	return out
}

func sortIDs(ids []symbols.ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// Augmented returns a copy of g with a new start production S' -> S added,
// where S is g's current start symbol, per spec.md §4.6.3. The returned
// grammar's StartSymbol is S'.
func (g *Grammar) Augmented() *Grammar {
	cp := g.Copy()
	primeName := g.uniqueName(g.SymbolName(g.start) + "'")
	primeID, _ := cp.names.Intern(primeName)
	cp.prods[primeID] = &Production{
		Kind:   NonTerminal,
		Symbol: primeID,
		Bodies: []Body{{Symbols: []symbols.ID{g.start}, Callback: NoCallback}},
	}
	cp.start = primeID
	return cp
}

// uniqueName returns base if it is not already in use, or base with an
// increasing numeric suffix otherwise (mirrors the teacher's
// GenerateUniqueName / GenerateUniqueTerminal helpers referenced from
// parse/lalr.go).
func (g *Grammar) uniqueName(base string) string {
	name := base
	suffix := 0
	for g.names.Lookup(name) != symbols.None {
		suffix++
		name = fmt.Sprintf("%s%d", base, suffix)
	}
	return name
}

// Copy returns a deep-enough copy of g: new Production objects, but
// sharing the underlying symbols.Table (symbol IDs remain valid against
// both).
func (g *Grammar) Copy() *Grammar {
	cp := &Grammar{
		names:   g.names,
		prods:   make(map[symbols.ID]*Production, len(g.prods)),
		pending: make(map[string][]pendingRef),
		start:   g.start,
		endSym:  g.endSym,
	}
	for id, p := range g.prods {
		pc := *p
		pc.Bodies = append([]Body(nil), p.Bodies...)
		cp.prods[id] = &pc
	}
	return cp
}
