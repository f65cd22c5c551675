// Package serialize implements C7 of spec.md: encoding and decoding the
// generated DFA table and LALR(1) parse table to and from a single binary
// artifact, versioned so a runtime never silently misreads a table built
// by an incompatible generator.
//
// Grounded on server/dao/sqlite/sessions.go's `rezi.EncBinary(s.State)`
// call, the teacher's only concrete use of github.com/dekarrin/rezi —
// repurposed here from encoding save-game state to encoding generator
// artifacts, using rezi's general-purpose reflective Enc/Dec instead of
// the BinaryMarshaler-based helper the teacher called.
package serialize

import (
	"github.com/Masterminds/semver/v3"
	"github.com/dekarrin/rezi"
	"github.com/google/uuid"

	"github.com/corvid-lang/frontgen/internal/frontgen/automaton"
	"github.com/corvid-lang/frontgen/internal/frontgen/icerr"
	"github.com/corvid-lang/frontgen/internal/frontgen/lalr"
)

const magic = "FRONTGEN"

// FormatVersion is the semver of the on-disk artifact format this build
// writes, and the version any compatibility constraint is built against.
var FormatVersion = semver.MustParse("1.0.0")

// Artifact bundles everything a generated lexer/parser pair needs at
// runtime: the minimized DFA, the minimized LALR(1) table, and the run-id
// stamped at generation time, per spec.md §4.7/§6.
type Artifact struct {
	RunID string
	DFA   automaton.Table
	Parse lalr.Table
}

// NewRunID returns a fresh run-id to stamp into a freshly generated
// Artifact.
func NewRunID() string {
	return uuid.NewString()
}

// Encode serializes art as: an 8-byte magic, a rezi-encoded format
// version string, a rezi-encoded run-id, then the rezi-encoded DFA and
// parse tables in turn.
func Encode(art Artifact) ([]byte, error) {
	out := []byte(magic)

	verBytes, err := rezi.Enc(FormatVersion.String())
	if err != nil {
		return nil, icerr.Serialization(err, "encoding format version")
	}
	out = append(out, verBytes...)

	runIDBytes, err := rezi.Enc(art.RunID)
	if err != nil {
		return nil, icerr.Serialization(err, "encoding run id")
	}
	out = append(out, runIDBytes...)

	dfaBytes, err := rezi.Enc(art.DFA)
	if err != nil {
		return nil, icerr.Serialization(err, "encoding DFA table")
	}
	out = append(out, dfaBytes...)

	parseBytes, err := rezi.Enc(art.Parse)
	if err != nil {
		return nil, icerr.Serialization(err, "encoding parse table")
	}
	out = append(out, parseBytes...)

	return out, nil
}

// Decode parses the wire format Encode produces. An artifact whose format
// version does not satisfy the ^FormatVersion constraint this build
// understands is rejected rather than partially decoded.
func Decode(data []byte) (Artifact, error) {
	if len(data) < len(magic) || string(data[:len(magic)]) != magic {
		return Artifact{}, icerr.Serialization(nil, "not a frontgen artifact: bad magic bytes")
	}
	data = data[len(magic):]

	var verStr string
	n, err := rezi.Dec(data, &verStr)
	if err != nil {
		return Artifact{}, icerr.Serialization(err, "decoding format version")
	}
	data = data[n:]

	ver, err := semver.NewVersion(verStr)
	if err != nil {
		return Artifact{}, icerr.Serialization(err, "parsing format version %q", verStr)
	}
	constraint, err := semver.NewConstraint("^" + FormatVersion.String())
	if err != nil {
		return Artifact{}, icerr.Serialization(err, "building format compatibility constraint")
	}
	if !constraint.Check(ver) {
		return Artifact{}, icerr.Serialization(nil, "artifact format %s is not compatible with this build (wants %s)", ver, FormatVersion)
	}

	var runID string
	n, err = rezi.Dec(data, &runID)
	if err != nil {
		return Artifact{}, icerr.Serialization(err, "decoding run id")
	}
	data = data[n:]

	var dfa automaton.Table
	n, err = rezi.Dec(data, &dfa)
	if err != nil {
		return Artifact{}, icerr.Serialization(err, "decoding DFA table")
	}
	data = data[n:]

	var tbl lalr.Table
	if _, err = rezi.Dec(data, &tbl); err != nil {
		return Artifact{}, icerr.Serialization(err, "decoding parse table")
	}

	return Artifact{RunID: runID, DFA: dfa, Parse: tbl}, nil
}

const dfaMagic = "FGDFA1"
const tableMagic = "FGTBL1"

// EncodeDFA serializes just the DFA table, for writing to the "DFA file"
// spec.md §6 describes separately from the parse-table file.
func EncodeDFA(tbl automaton.Table) ([]byte, error) {
	body, err := rezi.Enc(tbl)
	if err != nil {
		return nil, icerr.Serialization(err, "encoding DFA table")
	}
	return append([]byte(dfaMagic), body...), nil
}

// DecodeDFA parses the bytes EncodeDFA produces.
func DecodeDFA(data []byte) (automaton.Table, error) {
	if len(data) < len(dfaMagic) || string(data[:len(dfaMagic)]) != dfaMagic {
		return automaton.Table{}, icerr.Serialization(nil, "not a frontgen DFA file: bad magic bytes")
	}
	var tbl automaton.Table
	if _, err := rezi.Dec(data[len(dfaMagic):], &tbl); err != nil {
		return automaton.Table{}, icerr.Serialization(err, "decoding DFA table")
	}
	return tbl, nil
}

// EncodeParseTable serializes the LALR(1) table plus run-id, for writing
// to the "parse-table file" spec.md §6 describes separately from the DFA
// file. Per spec.md §6, the parse-table file also carries the callback
// registry (callback-id -> type tag); callbackNames supplies that mapping
// (e.g. ingest.CallbackRegistry.Name).
func EncodeParseTable(tbl lalr.Table, runID string, callbackNames []string) ([]byte, error) {
	out := []byte(tableMagic)

	runIDBytes, err := rezi.Enc(runID)
	if err != nil {
		return nil, icerr.Serialization(err, "encoding run id")
	}
	out = append(out, runIDBytes...)

	tblBytes, err := rezi.Enc(tbl)
	if err != nil {
		return nil, icerr.Serialization(err, "encoding parse table")
	}
	out = append(out, tblBytes...)

	namesBytes, err := rezi.Enc(callbackNames)
	if err != nil {
		return nil, icerr.Serialization(err, "encoding callback registry")
	}
	out = append(out, namesBytes...)

	return out, nil
}

// DecodeParseTable parses the bytes EncodeParseTable produces.
func DecodeParseTable(data []byte) (tbl lalr.Table, runID string, callbackNames []string, err error) {
	if len(data) < len(tableMagic) || string(data[:len(tableMagic)]) != tableMagic {
		return lalr.Table{}, "", nil, icerr.Serialization(nil, "not a frontgen parse-table file: bad magic bytes")
	}
	data = data[len(tableMagic):]

	n, err := rezi.Dec(data, &runID)
	if err != nil {
		return lalr.Table{}, "", nil, icerr.Serialization(err, "decoding run id")
	}
	data = data[n:]

	n, err = rezi.Dec(data, &tbl)
	if err != nil {
		return lalr.Table{}, "", nil, icerr.Serialization(err, "decoding parse table")
	}
	data = data[n:]

	if _, err = rezi.Dec(data, &callbackNames); err != nil {
		return lalr.Table{}, "", nil, icerr.Serialization(err, "decoding callback registry")
	}

	return tbl, runID, callbackNames, nil
}
