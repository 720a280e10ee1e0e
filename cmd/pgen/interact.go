package main

import (
	"fmt"
	"strings"

	"github.com/arfaoui/lalrgen/grammar"
	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "interact",
		Short:   "Step a compiled table through tokens you type, for debugging a grammar",
		Example: `  pgen interact grammar.json Program`,
		Args:    cobra.ExactArgs(2),
		RunE:    runInteract,
	}
	rootCmd.AddCommand(cmd)
}

// runInteract walks the LALR automaton one terminal name at a time,
// printing the shift/reduce/accept/error decision at each step. It moves
// the state stack the way a real driver would but builds no parse tree
// and runs no reduction action — table execution is the caller's
// concern (see token.Source), this is a debugging aid only, in the
// spirit of vartan's own "tokenizes ... aimed at debugging the grammar."
func runInteract(cmd *cobra.Command, args []string) error {
	grmPath, goal := args[0], args[1]

	g, err := readGrammarFile(grmPath)
	if err != nil {
		return err
	}
	res, err := grammar.Compile(g)
	if err != nil {
		return err
	}

	start, ok := res.Tables.Starts[goal]
	if !ok {
		return fmt.Errorf("no such goal %q", goal)
	}

	rl, err := readline.NewEx(&readline.Config{Prompt: fmt.Sprintf("state %d> ", start)})
	if err != nil {
		return fmt.Errorf("create readline config: %w", err)
	}
	defer rl.Close()

	pterm.Info.Printfln("enter a terminal name per line (%s for end of input); Ctrl-D to quit", grammar.EndMarker)

	stack := []int{start}
	for {
		line, rerr := rl.Readline()
		if rerr != nil {
			return nil
		}
		terminal := strings.TrimSpace(line)
		if terminal == "" {
			continue
		}

		for {
			top := stack[len(stack)-1]
			action, hasAction := res.Tables.Actions[top][terminal]
			if !hasAction {
				pterm.Error.Printfln("no action for %q in state %d", terminal, top)
				break
			}
			switch action.Kind {
			case grammar.ActionShift:
				stack = append(stack, action.Target)
				pterm.Success.Printfln("shift -> state %d", action.Target)
			case grammar.ActionAccept:
				pterm.Success.Println("accept")
			case grammar.ActionReduce:
				prod := res.Prods.Prods[action.Prod]
				stack = stack[:len(stack)-len(prod.RHS)]
				gotoTarget, hasGoto := res.Tables.Gotos[stack[len(stack)-1]][prod.NT]
				if !hasGoto {
					pterm.Error.Printfln("internal: no goto for %s from state %d", prod.NT, stack[len(stack)-1])
					break
				}
				stack = append(stack, gotoTarget)
				pterm.Info.Printfln("reduce by %s -> goto state %d",
					g.ProductionToString(grammar.Production{NT: prod.NT, Body: prod.RHS}), gotoTarget)
				continue
			}
			break
		}
		rl.SetPrompt(fmt.Sprintf("state %d> ", stack[len(stack)-1]))
	}
}
