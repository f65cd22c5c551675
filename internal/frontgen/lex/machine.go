package lex

import (
	"io"

	"github.com/corvid-lang/frontgen/internal/frontgen/automaton"
	"github.com/corvid-lang/frontgen/internal/frontgen/icerr"
	"github.com/corvid-lang/frontgen/internal/frontgen/symbols"
)

// ClassNamer resolves a terminal symbol.ID to its declared name, for
// diagnostics. *grammar.Grammar satisfies this via SymbolName.
type ClassNamer interface {
	SymbolName(id symbols.ID) string
}

// Machine drives a minimized automaton.Table over an input buffer,
// maintaining the current scan position, a LIFO token pushback stack (not
// limited to one token), and line/column counters, per spec.md §4.8.
type Machine struct {
	table automaton.Table
	names ClassNamer

	src []byte
	pos int

	line int
	col  int

	pushed []Token
}

// New returns a Machine ready to scan src against tbl. names resolves
// matched terminal IDs to their declared names for Token.ClassName.
func New(tbl automaton.Table, names ClassNamer, src []byte) *Machine {
	return &Machine{table: tbl, names: names, src: src, line: 1, col: 1}
}

// Putback pushes tok back onto the Machine so the next Next() call
// returns it again, without re-scanning. Mirrors the teacher's reader
// Mark/Restore pushback, generalized to whole tokens instead of bytes.
func (m *Machine) Putback(tok Token) {
	m.pushed = append(m.pushed, tok)
}

// Next scans and returns the next token, or an error wrapping
// icerr.ErrLexical if no terminal pattern matches at the current
// position. Returns (Token{}, io.EOF) at end of input — callers compare
// with errors.Is(err, io.EOF).
func (m *Machine) Next() (Token, error) {
	if n := len(m.pushed); n > 0 {
		tok := m.pushed[n-1]
		m.pushed = m.pushed[:n-1]
		return tok, nil
	}

	m.skipWhitespace()
	if m.pos >= len(m.src) {
		return Token{}, io.EOF
	}

	startLine, startCol := m.line, m.col

	row := m.table.Start
	lastAccept := -1
	lastAcceptPos := m.pos
	lastAcceptLine, lastAcceptCol := m.line, m.col
	i := m.pos
	line, col := m.line, m.col

	for i < len(m.src) {
		next := m.table.Rows[row].Next[m.src[i]]
		if next == automaton.InvalidRow {
			break
		}
		row = next
		advanceLineCol(&line, &col, m.src[i])
		i++
		if m.table.Rows[row].HasTag {
			lastAccept = int(m.table.Rows[row].Tag.TokenID)
			lastAcceptPos = i
			lastAcceptLine, lastAcceptCol = line, col
		}
	}

	if lastAccept < 0 {
		pos := icerr.Position{Line: startLine, Column: startCol}
		return Token{}, icerr.Lexical(pos, m.src[m.pos])
	}

	lexeme := string(m.src[m.pos:lastAcceptPos])
	m.pos = lastAcceptPos
	m.line, m.col = lastAcceptLine, lastAcceptCol

	classID := symbols.ID(lastAccept)
	name := ""
	if m.names != nil {
		name = m.names.SymbolName(classID)
	}

	return Token{Class: classID, ClassName: name, Lexeme: lexeme, Line: startLine, Col: startCol}, nil
}

func (m *Machine) skipWhitespace() {
	for m.pos < len(m.src) {
		c := m.src[m.pos]
		if c != ' ' && c != '\t' && c != '\r' && c != '\n' {
			return
		}
		advanceLineCol(&m.line, &m.col, c)
		m.pos++
	}
}

func advanceLineCol(line, col *int, c byte) {
	if c == '\n' {
		*line++
		*col = 1
		return
	}
	*col++
}
