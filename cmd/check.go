package cmd

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/seedkit-dev/seedkit/internal/introspect"
	"github.com/seedkit-dev/seedkit/internal/lockfile"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the live schema against seedkit.lock, exiting 1 on drift",
	RunE: func(c *cobra.Command, args []string) error {
		lf, err := lockfile.Read(lockfile.DefaultFilename)
		if err != nil {
			return err
		}

		dsn := resolveDBURL(c)
		ins, err := introspect.New(dialectFromURL(dsn), dsn)
		if err != nil {
			return err
		}
		s, err := ins.Introspect(context.Background())
		if err != nil {
			return err
		}

		if err := lockfile.Check(s, lf); err != nil {
			return err
		}

		color.Green("no drift: live schema matches %s", lockfile.DefaultFilename)
		return nil
	},
}
