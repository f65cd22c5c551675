// Package lex implements C8 of spec.md: the generated DFA's runtime —
// scanning an input byte stream against a minimized automaton.Table with
// maximal-munch matching, LIFO token pushback, and line/column tracking.
//
// Grounded on the teacher's lex/reader.go (buffered reader with Mark/
// Restore, reused here as the basis for pushback) and lex/token.go (the
// token/class shape), adapted from a regexp-per-pattern scanner to a
// single compiled DFA table scan.
package lex

import (
	"fmt"

	"github.com/corvid-lang/frontgen/internal/frontgen/symbols"
)

// Token is one scanned lexeme, tagged with the terminal symbol it matched
// and its source position, mirroring the teacher's lexerToken shape.
type Token struct {
	Class     symbols.ID
	ClassName string
	Lexeme    string
	Line      int
	Col       int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.ClassName, t.Lexeme, t.Line, t.Col)
}
