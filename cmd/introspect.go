package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/seedkit-dev/seedkit/internal/introspect"
)

var introspectJSON bool

var introspectCmd = &cobra.Command{
	Use:   "introspect",
	Short: "Introspect the target database schema and print it",
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

		if introspectJSON {
			data, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal schema: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		color.Green("introspected %d tables (fingerprint %s)", len(s.Tables), s.Fingerprint[:12])
		for _, t := range s.SortedTables() {
			fmt.Printf("  %s (%d columns, %d FKs, %d unique, %d checks)\n",
				t.Name, len(t.Columns), len(t.ForeignKeys), len(t.Unique), len(t.Checks))
		}
		return nil
	},
}

func init() {
	introspectCmd.Flags().BoolVar(&introspectJSON, "json", false, "dump the normalized schema as JSON")
}
