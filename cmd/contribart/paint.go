package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/greg-hellings/contribart/pkg/activity"
	"github.com/greg-hellings/contribart/pkg/calendar"
	"github.com/greg-hellings/contribart/pkg/canvas"
	"github.com/greg-hellings/contribart/pkg/report"
	consolefmt "github.com/greg-hellings/contribart/pkg/report/format"
	"github.com/greg-hellings/contribart/pkg/services"
	"github.com/greg-hellings/contribart/pkg/tui"
)

// newDrawer opens the interactive surface; tests swap in a scripted drawer.
var newDrawer = func(noColor bool) services.Drawer {
	return tui.NewSession(noColor)
}

// isInteractive reports whether stdin and stdout are terminals.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

type paintFlags struct {
	remote   remoteFlags
	emitter  emitterFlags
	from     string
	drawing  string
	skipGaps bool
	noColor  bool
	timeout  time.Duration
}

// newPaintCmd creates the 'paint' subcommand.
func newPaintCmd() *cobra.Command {
	flags := &paintFlags{}
	c := &cobra.Command{
		Use:   "paint",
		Short: "Paint the contribution grid interactively and record the result",
		Long: strings.TrimSpace(`
Open the paint surface for the current window. Drag with the left mouse
button to paint; a stroke that starts on a filled day erases instead. Arrow
keys move the cursor, space toggles the day under it, enter finishes and
q or esc aborts without recording anything.

Days without recorded activity are fetched first and shaded on the grid.
Once finished, the drawing is saved and every painted day is emitted in
ascending date order.

Examples:
  contribart paint --identity octocat --dry-run
  contribart paint --repo ~/art --from drawing.txt
  contribart paint --skip-gaps --no-color
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaint(cmd, flags)
		},
	}

	flags.remote.register(c)
	flags.emitter.register(c)
	c.Flags().StringVar(&flags.from, "from", "", "Pre-fill the surface with a saved drawing")
	c.Flags().StringVar(&flags.drawing, "drawing", "", "Where to save the finished drawing (default from config)")
	c.Flags().BoolVar(&flags.skipGaps, "skip-gaps", false, "Do not query the activity provider")
	c.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable colors")
	c.Flags().DurationVar(&flags.timeout, "timeout", 30*time.Second, "Timeout for the activity query")

	return c
}

func runPaint(cmd *cobra.Command, flags *paintFlags) error {
	if !isInteractive() {
		return errors.New("paint needs an interactive terminal; use 'apply' to emit a saved drawing")
	}

	cfg, err := loadConfig(cmd, &flags.remote, &flags.emitter)
	if err != nil {
		return err
	}
	if flags.drawing != "" {
		cfg.Drawing = flags.drawing
	}

	resolver, err := cfg.Resolver()
	if err != nil {
		return err
	}

	var finder activity.GapFinder
	if !flags.skipGaps {
		finder, err = buildGapFinder(cfg)
		if err != nil {
			return err
		}
		finder = activity.WithTimeout(finder, flags.timeout)
	}

	emitter, err := buildEmitter(cfg)
	if err != nil {
		return err
	}

	svc, err := services.NewPaintService(services.Options{
		Resolver: resolver,
		Gaps:     finder,
		Emitter:  emitter,
		Now:      now,
		Logger:   slog.Default(),
	})
	if err != nil {
		return err
	}

	var initial *canvas.Matrix
	if flags.from != "" {
		initial, err = canvas.LoadDrawing(flags.from, svc.Plan().Grid)
		if err != nil {
			return err
		}
		slog.Info("Loaded drawing", "path", flags.from, "cells", initial.Count())
	}

	res, runErr := svc.Run(context.Background(), newDrawer(flags.noColor), services.RunOptions{
		Identity:    cfg.Identity,
		Initial:     initial,
		DrawingPath: cfg.Drawing,
		Progress:    logProgress,
	})
	if res == nil {
		return runErr
	}

	rpt := &report.Report{
		Identity: cfg.Identity,
		Provider: cfg.Provider,
		Window:   res.Plan.Window,
		Grid:     res.Plan.Grid,
		Gaps:     res.Gaps,
		Schedule: res.Dates,
		Emitted:  res.Emitted,
		Error:    runErr,
	}
	formatter := consolefmt.NewConsoleFormatter()
	formatter.EnableColors = !flags.noColor
	formatter.ShowGaps = finder != nil
	if err := formatter.Render(rpt, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("failed to render console output: %w", err)
	}
	return runErr
}

// logProgress reports each emission step through the default logger.
func logProgress(p services.EmitProgress) {
	date := p.Date.Format(calendar.DateLayout)
	switch p.Phase {
	case services.PhaseComplete:
		slog.Info("Emitted event", "date", date, "progress", fmt.Sprintf("%d/%d", p.Index+1, p.Total))
	case services.PhaseError:
		slog.Error("Emission failed", "date", date, "error", p.Error)
	default:
		slog.Debug("Emitting event", "date", date)
	}
}
