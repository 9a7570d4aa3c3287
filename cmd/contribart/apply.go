package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/greg-hellings/contribart/pkg/canvas"
	"github.com/greg-hellings/contribart/pkg/report"
	consolefmt "github.com/greg-hellings/contribart/pkg/report/format"
	"github.com/greg-hellings/contribart/pkg/services"
)

type applyFlags struct {
	emitter emitterFlags
	noColor bool
	timeout time.Duration
}

// newApplyCmd creates the 'apply' subcommand.
func newApplyCmd() *cobra.Command {
	flags := &applyFlags{}
	c := &cobra.Command{
		Use:   "apply <drawing>",
		Short: "Emit a saved drawing without opening the paint surface",
		Long: strings.TrimSpace(`
Read a drawing saved by 'paint' (7 lines, '#' for a painted day) and emit
one event per painted day of the current window, in ascending date order.
The drawing must have exactly the current grid's shape.

Examples:
  contribart apply drawing.txt --dry-run
  contribart apply drawing.txt --repo ~/art
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, args[0], flags)
		},
	}

	flags.emitter.register(c)
	c.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable ANSI colors")
	c.Flags().DurationVar(&flags.timeout, "timeout", 0, "Abort emission after this long (0 = no limit)")

	return c
}

func runApply(cmd *cobra.Command, path string, flags *applyFlags) error {
	cfg, err := loadConfig(cmd, nil, &flags.emitter)
	if err != nil {
		return err
	}
	resolver, err := cfg.Resolver()
	if err != nil {
		return err
	}
	emitter, err := buildEmitter(cfg)
	if err != nil {
		return err
	}

	svc, err := services.NewPaintService(services.Options{
		Resolver: resolver,
		Emitter:  emitter,
		Now:      now,
		Logger:   slog.Default(),
	})
	if err != nil {
		return err
	}

	plan := svc.Plan()
	m, err := canvas.LoadDrawing(path, plan.Grid)
	if err != nil {
		return err
	}
	dates, err := services.Schedule(plan.Window, m)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	slog.Info("Applying drawing", "path", path, "window", plan.Window.String(), "events", len(dates))
	progressCh, handle := svc.StartEmission(ctx, dates)
	for p := range progressCh {
		logProgress(p)
	}
	emitted, emitErr := handle.Result()

	rpt := &report.Report{
		Window:   plan.Window,
		Grid:     plan.Grid,
		Schedule: dates,
		Emitted:  emitted,
		Error:    emitErr,
	}
	formatter := consolefmt.NewConsoleFormatter()
	formatter.EnableColors = !flags.noColor
	formatter.ShowGaps = false
	if err := formatter.Render(rpt, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("failed to render console output: %w", err)
	}
	return emitErr
}
