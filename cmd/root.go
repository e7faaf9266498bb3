package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/seedkit-dev/seedkit/internal/config"
	"github.com/seedkit-dev/seedkit/internal/seedkiterr"
)

// Version follows the teacher's cmd/root.go convention of a hardcoded
// release string rather than a build-time ldflag injection.
const Version = "0.4.0"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "seedkit",
	Short: "Generate realistic, constraint-satisfying seed data for relational databases",
	Long: color.CyanString(`
   _________________  __ __ __
  / ___/ __/ __/ _  \/ //_/ //_/
 _\__ \/ _// _// // / ,<  / ,<
/____/___/___/____/_/|_|/_/|_|  seedkit v` + Version + `
`),
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		loaded, err := config.Load(".")
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(seedkiterr.ExitCode(err))
	}
}

func printError(err error) {
	color.Red("error: %v", err)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "database connection URL (overrides database.url)")
	rootCmd.AddCommand(introspectCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(previewCmd)
}

// resolveDBURL honors the CLI flag over the resolved config value, per
// spec.md §6's resolution order (flag outranks everything else).
func resolveDBURL(c *cobra.Command) string {
	flagVal, _ := c.Flags().GetString("db")
	if flagVal != "" {
		return flagVal
	}
	if cfg != nil {
		return cfg.Database.URL
	}
	return ""
}

func dialectFromURL(url string) string {
	switch {
	case len(url) >= 8 && url[:8] == "postgres":
		return "postgres"
	case len(url) >= 5 && url[:5] == "mysql":
		return "mysql"
	default:
		return "sqlite"
	}
}
