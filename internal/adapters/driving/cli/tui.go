package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/gridview/internal/adapters/driving/tui"
	"github.com/custodia-labs/gridview/internal/logger"
)

var (
	tuiWatch    bool
	tuiSchedule bool
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui [dataset|location...]",
	Short: "Browse datasets in the interactive terminal UI",
	Long: `Loads the given datasets (or every dataset in the [datasets] table of
config.toml) and opens them in a scrollable grid. Sorting, filtering,
selection and expansion all act on the live view.

Controls:
  ↑/k, ↓/j   Move between rows      ←/h, →/l  Move between columns
  s / S / x  Sort, add sort, unsort the column
  /          Filter the column (text, or /regex/flags)
  f          Pick filter values     c / C     Clear column / all filters
  enter      Select row             space     Toggle row selection
  J / K      Step selection         a / u     Select all / none
  e          Expand row             r         Reload dataset
  esc        Back                   ?         Help
  q          Quit`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().BoolVarP(&tuiWatch, "watch", "w", false, "reload file-backed datasets when they change")
	tuiCmd.Flags().BoolVar(&tuiSchedule, "schedule", true, "run scheduled reloads while the UI is open")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	if datasetService == nil || loaderService == nil {
		return errNotConfigured
	}

	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	locations := datasetLocations(args)
	infos, err := loaderService.LoadAll(ctx, locations)
	if err != nil {
		return err
	}

	// The TUI is long-running, so background reloads stay active while it is open.
	if tuiSchedule && scheduler != nil {
		go func() {
			if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("scheduler stopped: %v", err)
			}
		}()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				logger.Error("scheduler stop error: %v", err)
			}
		}()
	}
	if tuiWatch {
		go func() {
			if err := loaderService.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("watch stopped: %v", err)
			}
		}()
	}

	app, err := tui.NewApp(tui.NewPorts(datasetService, loaderService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)
	if len(infos) == 1 {
		app.WithDataset(infos[0].Name)
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
