package grammar

import "github.com/corvid-lang/frontgen/internal/frontgen/symbols"

// Nullable reports whether the non-terminal id could derive the empty
// string, per spec.md §4.5's could_be_empty. The result is computed by
// fixed-point iteration over every non-terminal's bodies: a body is
// nullable if it was declared with the "@" marker, if it has no symbols,
// or if every symbol in it is itself a nullable non-terminal.
func (g *Grammar) Nullable(id symbols.ID) bool {
	return g.nullableSet()[id]
}

func (g *Grammar) nullableSet() map[symbols.ID]bool {
	nullable := make(map[symbols.ID]bool)

	changed := true
	for changed {
		changed = false
		for id, p := range g.prods {
			if p.Kind != NonTerminal || nullable[id] {
				continue
			}
			for _, body := range p.Bodies {
				if body.Nullable {
					nullable[id] = true
					changed = true
					break
				}
				if len(body.Symbols) == 0 {
					nullable[id] = true
					changed = true
					break
				}
				allNullable := true
				for _, sym := range body.Symbols {
					sp := g.prods[sym]
					if sp == nil || sp.Kind != NonTerminal || !nullable[sym] {
						allNullable = false
						break
					}
				}
				if allNullable {
					nullable[id] = true
					changed = true
					break
				}
			}
		}
	}

	return nullable
}
