package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/arfaoui/lalrgen/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "describe",
		Short:   "Print a human-readable summary of a compiled grammar",
		Example: `  pgen describe grammar.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runDescribe,
	}
	rootCmd.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	var grmPath string
	if len(args) > 0 {
		grmPath = args[0]
	}

	g, err := readGrammarFile(grmPath)
	if err != nil {
		return err
	}

	res, err := grammar.Compile(g)
	if err != nil {
		pterm.Error.Printfln("compile failed: %v", err)
		return err
	}

	pterm.DefaultSection.Println("Grammar summary")
	data := pterm.TableData{
		{"run", res.Report.RunID},
		{"goals", fmt.Sprint(res.Report.Goals)},
		{"nonterminals", fmt.Sprint(len(g.Names()))},
		{"flat productions", fmt.Sprint(res.Report.NumProds)},
		{"states", fmt.Sprint(res.Report.NumStates)},
	}
	if err := pterm.DefaultTable.WithData(data).Render(); err != nil {
		return err
	}

	pterm.DefaultSection.Println("States and their expected terminals")
	ids := make([]int, 0, len(res.Report.ExpectedTerminals))
	for id := range res.Report.ExpectedTerminals {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	rows := pterm.TableData{{"state", "expected terminals"}}
	for _, id := range ids {
		b, _ := json.Marshal(res.Report.ExpectedTerminals[id])
		rows = append(rows, []string{fmt.Sprint(id), string(b)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
