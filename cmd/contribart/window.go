package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greg-hellings/contribart/pkg/calendar"
)

// newWindowCmd creates the 'window' subcommand.
func newWindowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "window",
		Short: "Show the date window and grid size for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil, nil)
			if err != nil {
				return err
			}
			resolver, err := cfg.Resolver()
			if err != nil {
				return err
			}

			w := resolver.Resolve(now())
			g := calendar.Dimension(w)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Window: %s\n", w)
			fmt.Fprintf(out, "Days:   %d\n", w.Days())
			fmt.Fprintf(out, "Weeks:  %s to %s\n", resolver.WeekStart, resolver.WeekEnd)
			fmt.Fprintf(out, "Grid:   %d rows x %d columns (%d cells)\n", g.Rows, g.Cols, g.Cells())
			return nil
		},
	}
}
