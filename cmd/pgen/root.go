package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootFlags = struct {
	config *string
}{}

var rootCmd = &cobra.Command{
	Use:   "pgen",
	Short: "Generate an LALR(1) parsing table from a grammar",
	Long: `pgen builds an LALR(1) parsing table from a grammar described with
optional symbols, lookahead restrictions, and parameterized nonterminals.
It reads the grammar as JSON, validates it, and writes a compiled table
(and a build report) for a driver to load.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootFlags.config = rootCmd.PersistentFlags().String("config", ".pgen.toml", "path to the config file")
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
