package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/arfaoui/lalrgen/emit"
	"github.com/arfaoui/lalrgen/grammar"
	"github.com/spf13/cobra"
)

var generateFlags = struct {
	output *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "generate",
		Short:   "Compile a grammar into a parsing table",
		Example: `  pgen generate grammar.json -o table.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runGenerate,
	}
	generateFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default: <output.dir>/<name>.table.json when the config sets output.dir, else stdout)")
	rootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	var grmPath string
	if len(args) > 0 {
		grmPath = args[0]
	}

	cfg, err := loadConfig(*rootFlags.config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	g, err := readGrammarFile(grmPath)
	if err != nil {
		return err
	}

	res, err := grammar.Compile(g)
	if err != nil {
		return err
	}

	out := *generateFlags.output
	if out == "" && cfg.Output.Dir != "" && grmPath != "" {
		base := filepath.Base(grmPath)
		ext := filepath.Ext(base)
		out = filepath.Join(cfg.Output.Dir, base[:len(base)-len(ext)]+".table.json")
	}

	var w io.Writer = os.Stdout
	if out != "" {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	e := emit.JSON{Indent: "  "}
	if err := e.Emit(w, res); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}

	if cfg.Cache.Enabled {
		if err := os.MkdirAll(cfg.Cache.Dir, 0o755); err != nil {
			return fmt.Errorf("creating cache dir: %w", err)
		}
		cachePath := filepath.Join(cfg.Cache.Dir, res.Report.RunID+".cache")
		if err := os.WriteFile(cachePath, grammar.EncodeCache(res), 0o644); err != nil {
			return fmt.Errorf("writing cache: %w", err)
		}
	}

	if out != "" {
		fmt.Fprintf(os.Stdout, "%d states, %d productions, run %s\n", res.Report.NumStates, res.Report.NumProds, res.Report.RunID)
	}

	return nil
}

func readGrammarFile(path string) (*grammar.Grammar, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading grammar: %w", err)
	}

	var doc grammarJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing grammar JSON: %w", err)
	}
	return buildGrammarFromJSON(doc)
}
