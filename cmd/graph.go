package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/seedkit-dev/seedkit/internal/graph"
	"github.com/seedkit-dev/seedkit/internal/introspect"
)

var graphDOT bool

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build the insertion plan and print its order, or a Graphviz DOT document",
	RunE: func(c *cobra.Command, args []string) error {
		dsn := resolveDBURL(c)
		ins, err := introspect.New(dialectFromURL(dsn), dsn)
		if err != nil {
			return err
		}
		s, err := ins.Introspect(context.Background())
		if err != nil {
			return err
		}

		breakAt := cfg.Graph.BreakCycleAt
		plan, err := graph.Plan(s, breakAt)
		if err != nil {
			return err
		}

		if graphDOT {
			fmt.Print(graph.Visualize(s, plan, breakAt))
			return nil
		}

		color.Green("insertion plan (%d steps):", len(plan.Steps))
		for i, step := range plan.Steps {
			if step.Kind == graph.EmitStep {
				fmt.Printf("  %2d. emit    %s\n", i+1, step.Table)
			} else {
				fmt.Printf("  %2d. deferred %s.%v -> %s (%s)\n", i+1, step.Table, step.Columns, step.RefTable, step.SelectorStrategy)
			}
		}
		return nil
	},
}

func init() {
	graphCmd.Flags().BoolVar(&graphDOT, "dot", false, "print a Graphviz DOT document instead of the step list")
}
