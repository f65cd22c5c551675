// Package icerr defines the error kinds spec.md §7 names, each as a
// distinct wrapped sentinel so callers can errors.Is/errors.As against the
// kind without parsing message text.
package icerr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Every error returned by the generator or the runtime
// wraps exactly one of these via errors.Is.
var (
	// ErrGrammarIngestion covers malformed productions, unknown RHS symbols
	// left unresolved at end of input, duplicate terminal/operator names,
	// and illegal regexes.
	ErrGrammarIngestion = errors.New("grammar ingestion error")

	// ErrAmbiguousGrammar covers two accepting tokens sharing a priority,
	// and every LALR conflict other than a shift/reduce collision on an
	// operator terminal.
	ErrAmbiguousGrammar = errors.New("grammar ambiguous")

	// ErrUnreachableProduction is the kind UnreachableProduction builds.
	// Table construction (lalr.Generate) does not check for unreachable
	// productions and never returns it.
	ErrUnreachableProduction = errors.New("unreachable production")

	// ErrSerialization covers I/O failures and version mismatches while
	// reading or writing a serialized artifact.
	ErrSerialization = errors.New("serialization error")

	// ErrLexical is raised when no DFA row accepts the current prefix.
	ErrLexical = errors.New("lexical error")

	// ErrSyntax is raised when the parse table has no action for the
	// current (entry, lookahead) pair.
	ErrSyntax = errors.New("syntax error")

	// ErrCallback wraps any error a reduction callback returns.
	ErrCallback = errors.New("reduce callback error")
)

// Position is a (line, column) location in source text, 1-indexed, plus
// the file it came from. Zero value means "no position known".
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.Line == 0 {
		return ""
	}
	if p.File == "" {
		return fmt.Sprintf("line %d column %d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// icError is the concrete error type every constructor in this package
// returns. It carries a human-facing message, an optional source position,
// and the sentinel kind it wraps.
type icError struct {
	kind error
	msg  string
	pos  Position
	wrap error
}

func (e *icError) Error() string {
	if pos := e.pos.String(); pos != "" {
		return fmt.Sprintf("%s: %s", pos, e.msg)
	}
	return e.msg
}

func (e *icError) Unwrap() error {
	if e.wrap != nil {
		return e.wrap
	}
	return e.kind
}

// Is reports whether target is this error's sentinel kind, so
// errors.Is(err, icerr.ErrLexical) works without an explicit Unwrap chain
// through e.wrap when a wrap is also present.
func (e *icError) Is(target error) bool {
	return target == e.kind
}

func newError(kind error, pos Position, format string, a ...interface{}) error {
	return &icError{kind: kind, msg: fmt.Sprintf(format, a...), pos: pos}
}

// GrammarIngestion builds an ErrGrammarIngestion-kind error at pos.
func GrammarIngestion(pos Position, format string, a ...interface{}) error {
	return newError(ErrGrammarIngestion, pos, format, a...)
}

// AmbiguousGrammar builds an ErrAmbiguousGrammar-kind error.
func AmbiguousGrammar(format string, a ...interface{}) error {
	return newError(ErrAmbiguousGrammar, Position{}, format, a...)
}

// UnreachableProduction builds an ErrUnreachableProduction-kind error.
func UnreachableProduction(format string, a ...interface{}) error {
	return newError(ErrUnreachableProduction, Position{}, format, a...)
}

// Serialization builds an ErrSerialization-kind error, optionally wrapping
// an underlying I/O error.
func Serialization(wrapped error, format string, a ...interface{}) error {
	return &icError{kind: ErrSerialization, msg: fmt.Sprintf(format, a...), wrap: wrapped}
}

// Lexical builds an ErrLexical-kind error at pos, per spec.md §8 invariant
// 2's "reports a lexical error with a position".
func Lexical(pos Position, offending byte) error {
	return newError(ErrLexical, pos, "unexpected byte %q", offending)
}

// Syntax builds an ErrSyntax-kind error at pos.
func Syntax(pos Position, lookahead string) error {
	return newError(ErrSyntax, pos, "unexpected token %s", lookahead)
}

// Callback wraps an error raised by a reduction callback, preserving it
// verbatim per spec.md §7 ("any exception/failure raised by a callback
// aborts parsing with its diagnostic verbatim").
func Callback(pos Position, wrapped error) error {
	return &icError{kind: ErrCallback, msg: wrapped.Error(), pos: pos, wrap: wrapped}
}

// Report formats err the way spec.md §6 requires: one line, prefixed with
// "Generator:" or "Parser:" depending on which phase produced it.
func Report(phase string, err error) string {
	return fmt.Sprintf("%s: %s", phase, err.Error())
}
