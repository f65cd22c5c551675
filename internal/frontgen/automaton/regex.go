package automaton

import "github.com/corvid-lang/frontgen/internal/frontgen/icerr"

// regexParser is a recursive-descent parser over the restricted surface
// spec.md §4.3 describes: concatenation by juxtaposition, alternation only
// through a character class, grouping, postfix * + ?, and \c single-char
// escapes. There is deliberately no top-level "|" operator — spec.md §9
// Open Question (a) notes the source project never had one either; this
// implementation keeps the restriction rather than silently extending the
// surface.
type regexParser struct {
	b *Builder
	s string
	i int
}

func (p *regexParser) peek() (byte, bool) {
	if p.i >= len(p.s) {
		return 0, false
	}
	return p.s[p.i], true
}

// parseConcat parses a sequence of postfixed atoms until end of input or a
// closing ')' that belongs to an enclosing group.
func (p *regexParser) parseConcat() (frag, error) {
	var cur frag
	have := false

	for {
		c, ok := p.peek()
		if !ok || c == ')' {
			break
		}
		atom, err := p.parseAtom()
		if err != nil {
			return frag{}, err
		}
		atom, err = p.parsePostfix(atom)
		if err != nil {
			return frag{}, err
		}
		if !have {
			cur, have = atom, true
		} else {
			cur = p.b.concat(cur, atom)
		}
	}

	if !have {
		cur = p.b.empty()
	}
	return cur, nil
}

func (p *regexParser) parseAtom() (frag, error) {
	c, ok := p.peek()
	if !ok {
		return frag{}, icerr.GrammarIngestion(icerr.Position{}, "illegal regex %q: unexpected end of pattern", p.s)
	}

	switch c {
	case '(':
		p.i++
		inner, err := p.parseConcat()
		if err != nil {
			return frag{}, err
		}
		c, ok = p.peek()
		if !ok || c != ')' {
			return frag{}, icerr.GrammarIngestion(icerr.Position{}, "illegal regex %q: unterminated group", p.s)
		}
		p.i++
		return inner, nil
	case '[':
		return p.parseClass()
	case '\\':
		p.i++
		lit, ok := p.peek()
		if !ok {
			return frag{}, icerr.GrammarIngestion(icerr.Position{}, "illegal regex %q: dangling escape", p.s)
		}
		p.i++
		return p.b.byteRange(lit, lit), nil
	case ')', '*', '+', '?':
		return frag{}, icerr.GrammarIngestion(icerr.Position{}, "illegal regex %q: unexpected %q at position %d", p.s, c, p.i)
	default:
		p.i++
		return p.b.byteRange(c, c), nil
	}
}

func (p *regexParser) parsePostfix(f frag) (frag, error) {
	for {
		c, ok := p.peek()
		if !ok {
			return f, nil
		}
		switch c {
		case '*':
			p.i++
			f = p.b.star(f)
		case '+':
			p.i++
			f = p.b.plus(f)
		case '?':
			p.i++
			f = p.b.opt(f)
		default:
			return f, nil
		}
	}
}

// parseClass parses a "[...]" character class: ranges "a-z" and "\c"
// escapes are supported, no negation (not part of the spec.md §4.3
// surface).
func (p *regexParser) parseClass() (frag, error) {
	p.i++ // consume '['

	var combined frag
	have := false

	for {
		c, ok := p.peek()
		if !ok {
			return frag{}, icerr.GrammarIngestion(icerr.Position{}, "illegal regex %q: unterminated character class", p.s)
		}
		if c == ']' {
			p.i++
			break
		}

		lo, err := p.classChar()
		if err != nil {
			return frag{}, err
		}

		hi := lo
		if c2, ok2 := p.peek(); ok2 && c2 == '-' {
			// lookahead: is this a range, or a literal trailing '-'?
			savedI := p.i
			p.i++
			if c3, ok3 := p.peek(); ok3 && c3 != ']' {
				hi, err = p.classChar()
				if err != nil {
					return frag{}, err
				}
			} else {
				p.i = savedI
			}
		}

		if hi < lo {
			return frag{}, icerr.GrammarIngestion(icerr.Position{}, "illegal regex %q: character range %q-%q out of order", p.s, lo, hi)
		}

		rangeFrag := p.b.byteRange(lo, hi)
		if !have {
			combined, have = rangeFrag, true
		} else {
			combined = p.b.alt(combined, rangeFrag)
		}
	}

	if !have {
		return frag{}, icerr.GrammarIngestion(icerr.Position{}, "illegal regex %q: empty character class", p.s)
	}
	return combined, nil
}

func (p *regexParser) classChar() (byte, error) {
	c, ok := p.peek()
	if !ok {
		return 0, icerr.GrammarIngestion(icerr.Position{}, "illegal regex %q: unterminated character class", p.s)
	}
	if c == '\\' {
		p.i++
		c, ok = p.peek()
		if !ok {
			return 0, icerr.GrammarIngestion(icerr.Position{}, "illegal regex %q: dangling escape in character class", p.s)
		}
	}
	p.i++
	return c, nil
}
