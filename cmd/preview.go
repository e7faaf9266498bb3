package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/seedkit-dev/seedkit/internal/classify"
	"github.com/seedkit-dev/seedkit/internal/generate"
	"github.com/seedkit-dev/seedkit/internal/graph"
	"github.com/seedkit-dev/seedkit/internal/introspect"
)

var previewRows int

// previewCmd runs the full pipeline in memory and prints a small sample,
// without touching the lock file or a real sink — a dry run before
// committing to `generate`, grounded on
// original_source/crates/seedkit-cli/src/commands/preview.rs, dropped by
// the spec.md distillation but useful enough to carry forward.
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Generate a small in-memory sample and print it, without writing anything",
	RunE: func(c *cobra.Command, args []string) error {
		ctx := context.Background()
		dsn := resolveDBURL(c)

		ins, err := introspect.New(dialectFromURL(dsn), dsn)
		if err != nil {
			return err
		}
		s, err := ins.Introspect(ctx)
		if err != nil {
			return err
		}

		classification := classify.Classify(s, nil, nil)
		plan, err := graph.Plan(s, cfg.Graph.BreakCycleAt)
		if err != nil {
			return err
		}

		params := generate.DefaultParams(uint64(effectiveSeed()))
		params.RowsDefault = previewRows

		engine := generate.NewEngine(s, plan, classification, params)
		batches, errs := engine.Generate(ctx)

		for batch := range batches {
			if batch.Kind != generate.TableBatch {
				continue
			}
			color.Cyan("\n%s (%d rows)", batch.Table, len(batch.Rows))
			w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, joinHeader(batch.Columns))
			for _, row := range batch.Rows {
				fmt.Fprintln(w, joinRow(row))
			}
			w.Flush()
		}

		return <-errs
	},
}

func init() {
	previewCmd.Flags().IntVar(&previewRows, "rows", 5, "number of rows to preview per table")
}

func joinHeader(cols []string) string {
	s := ""
	for i, c := range cols {
		if i > 0 {
			s += "\t"
		}
		s += c
	}
	return s
}

func joinRow(row []generate.Value) string {
	s := ""
	for i, v := range row {
		if i > 0 {
			s += "\t"
		}
		s += fmt.Sprintf("%v", v)
	}
	return s
}
