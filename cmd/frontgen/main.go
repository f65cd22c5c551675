// Command frontgen is the generator/runtime CLI spec.md §6 describes:
// given a grammar-ingestion text file, build the DFA and LALR(1) tables
// and write them out; given --run, load a previously generated pair back
// and drive them over a source file. The run mode registers no reduction
// callbacks and prints no reduction trace; it reports only an error.
//
// Flag handling follows the teacher's cmd/tqi convention of reaching for
// github.com/spf13/pflag instead of the stdlib flag package.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/corvid-lang/frontgen/internal/frontgen/automaton"
	"github.com/corvid-lang/frontgen/internal/frontgen/grammar"
	"github.com/corvid-lang/frontgen/internal/frontgen/icerr"
	"github.com/corvid-lang/frontgen/internal/frontgen/ingest"
	"github.com/corvid-lang/frontgen/internal/frontgen/lalr"
	"github.com/corvid-lang/frontgen/internal/frontgen/lex"
	"github.com/corvid-lang/frontgen/internal/frontgen/parse"
	"github.com/corvid-lang/frontgen/internal/frontgen/serialize"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("frontgen", pflag.ContinueOnError)
	grammarPath := flags.String("grammar", "", "path to a grammar-ingestion text file")
	dfaOut := flags.String("dfa-out", "", "path to write the generated DFA table")
	tableOut := flags.String("table-out", "", "path to write the generated parse table")
	runSource := flags.String("run", "", "path to a source file to parse against an already-generated DFA/table pair")
	startState := flags.String("start-state", "", "non-terminal to treat as the grammar's start symbol (overrides any prior SetStart)")
	dumpYAML := flags.Bool("dump-yaml", false, "also print the generated parse table as YAML")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *runSource != "" {
		if err := runParse(*dfaOut, *tableOut, *runSource); err != nil {
			fmt.Fprintln(os.Stderr, icerr.Report("Parser", err))
			return 1
		}
		return 0
	}

	if *grammarPath == "" {
		fmt.Fprintln(os.Stderr, "Generator: --grammar is required unless --run is given")
		return 2
	}

	if err := generate(*grammarPath, *startState, *dfaOut, *tableOut, *dumpYAML); err != nil {
		fmt.Fprintln(os.Stderr, icerr.Report("Generator", err))
		return 1
	}
	return 0
}

func generate(grammarPath, startState, dfaOut, tableOut string, dumpYAML bool) error {
	src, err := os.ReadFile(grammarPath)
	if err != nil {
		return icerr.GrammarIngestion(icerr.Position{}, "reading grammar file: %v", err)
	}

	g := grammar.New()
	reg := ingest.NewCallbackRegistry()
	if err := ingest.Ingest(string(src), g, reg); err != nil {
		return err
	}

	if startState != "" {
		if err := g.SetStart(startState); err != nil {
			return err
		}
	}
	if err := g.Validate(); err != nil {
		return err
	}

	dfa, err := buildDFATable(g)
	if err != nil {
		return err
	}

	tbl, err := lalr.Generate(g)
	if err != nil {
		return err
	}
	tbl = tbl.Minimize()

	if dfaOut != "" {
		data, err := serialize.EncodeDFA(dfa)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dfaOut, data, 0o644); err != nil {
			return icerr.Serialization(err, "writing %s", dfaOut)
		}
	}

	runID := serialize.NewRunID()
	if tableOut != "" {
		data, err := serialize.EncodeParseTable(tbl, runID, callbackNames(reg))
		if err != nil {
			return err
		}
		if err := os.WriteFile(tableOut, data, 0o644); err != nil {
			return icerr.Serialization(err, "writing %s", tableOut)
		}
	}

	if dumpYAML {
		out, err := yaml.Marshal(tbl)
		if err != nil {
			return icerr.Serialization(err, "marshaling parse table to YAML")
		}
		fmt.Println(string(out))
	}

	fmt.Println(tbl.Dump(g))
	return nil
}

func runParse(dfaPath, tablePath, sourcePath string) error {
	if dfaPath == "" || tablePath == "" {
		return icerr.Serialization(nil, "--run requires both --dfa-out and --table-out to point at existing generated files")
	}

	dfaBytes, err := os.ReadFile(dfaPath)
	if err != nil {
		return icerr.Serialization(err, "reading %s", dfaPath)
	}
	dfa, err := serialize.DecodeDFA(dfaBytes)
	if err != nil {
		return err
	}

	tableBytes, err := os.ReadFile(tablePath)
	if err != nil {
		return icerr.Serialization(err, "reading %s", tablePath)
	}
	tbl, _, _, err := serialize.DecodeParseTable(tableBytes)
	if err != nil {
		return err
	}

	srcBytes, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", sourcePath, err)
	}

	g := grammar.New()
	lx := lex.New(dfa, g, srcBytes)
	m := parse.New(tbl, g)

	_, err = m.Parse(lx)
	return err
}

func buildDFATable(g *grammar.Grammar) (automaton.Table, error) {
	b := automaton.NewBuilder()
	for _, id := range g.Terminals() {
		rule := g.Rule(id)
		tag := automaton.AcceptTag{TokenID: id, Priority: rule.Priority}
		var err error
		if rule.Kind == grammar.Operator {
			err = b.AddLiteral(g.SymbolName(id), tag)
		} else {
			err = b.AddPattern(rule.Pattern, tag)
		}
		if err != nil {
			return automaton.Table{}, err
		}
	}

	inter, err := automaton.BuildDFA(b)
	if err != nil {
		return automaton.Table{}, err
	}
	return automaton.Minimize(inter), nil
}

func callbackNames(reg *ingest.CallbackRegistry) []string {
	var names []string
	for i := 0; ; i++ {
		name := reg.Name(grammar.CallbackID(i))
		if name == "" {
			break
		}
		names = append(names, name)
	}
	return names
}
