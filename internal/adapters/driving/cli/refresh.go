package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	refreshName   string
	refreshCron   string
	refreshLimit  int
	errNoSchedule = errors.New("refresh scheduler not configured")
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Manage scheduled dataset reloads",
	Long: `Datasets can be reloaded from their location on a cron schedule. Tasks
and their run history are kept in the local store and resumed when the
scheduler starts (here, or inside "gridview tui").`,
}

var refreshAddCmd = &cobra.Command{
	Use:   "add <dataset|location>",
	Short: "Schedule reloads of a dataset",
	Long: `Schedules a dataset for periodic reload. Without --cron the schedule comes
from refresh.schedules.<name> or refresh.cron in config.toml, defaulting to
hourly. Standard five-field cron expressions and descriptors such as @daily
are accepted.`,
	Args: cobra.ExactArgs(1),
	RunE: runRefreshAdd,
}

var refreshListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled reloads",
	RunE:  runRefreshList,
}

var refreshRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Stop reloading a dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefreshRemove,
}

var refreshRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Reload a scheduled dataset now",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefreshRun,
}

var refreshHistoryCmd = &cobra.Command{
	Use:   "history <name>",
	Short: "Show recent reloads of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefreshHistory,
}

var refreshStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the scheduler in the foreground",
	RunE:  runRefreshStart,
}

func init() {
	refreshAddCmd.Flags().StringVar(&refreshName, "name", "", "dataset name (default: derived from the location)")
	refreshAddCmd.Flags().StringVar(&refreshCron, "cron", "", "cron expression (default: from config)")
	refreshHistoryCmd.Flags().IntVarP(&refreshLimit, "limit", "n", 10, "number of runs to show (0 = all)")
	refreshCmd.AddCommand(refreshAddCmd, refreshListCmd, refreshRemoveCmd, refreshRunCmd,
		refreshHistoryCmd, refreshStartCmd)
	rootCmd.AddCommand(refreshCmd)
}

func runRefreshAdd(cmd *cobra.Command, args []string) error {
	if scheduler == nil {
		return errNoSchedule
	}
	name, location := resolveDataset(args[0], refreshName)
	if err := scheduler.Schedule(commandContext(cmd), name, location, refreshCron); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	cmd.Printf("Scheduled %s from %s\n", name, location)
	return nil
}

func runRefreshList(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errNoSchedule
	}
	tasks, err := scheduler.Tasks(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	if len(tasks) == 0 {
		cmd.Println("No scheduled reloads.")
		return nil
	}
	for _, t := range tasks {
		status := "ok"
		switch {
		case !t.Enabled:
			status = "disabled"
		case t.LastError != "":
			status = "failing: " + t.LastError
		case t.LastRun.IsZero():
			status = "pending"
		}
		cmd.Printf("  %-20s %-14s next %s  %s\n", t.Dataset, t.Schedule, formatTime(t.NextRun), status)
		cmd.Printf("  %-20s %s\n", "", t.Location)
	}
	return nil
}

func runRefreshRemove(cmd *cobra.Command, args []string) error {
	if scheduler == nil {
		return errNoSchedule
	}
	if err := scheduler.Unschedule(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to unschedule %s: %w", args[0], err)
	}
	cmd.Printf("Removed scheduled reload of %s\n", args[0])
	return nil
}

func runRefreshRun(cmd *cobra.Command, args []string) error {
	if scheduler == nil {
		return errNoSchedule
	}
	result := scheduler.Run(commandContext(cmd), args[0])
	if !result.Success {
		return fmt.Errorf("reload of %s failed: %s", args[0], result.Error)
	}
	cmd.Printf("Reloaded %s: %d rows in %s\n", args[0], result.Rows,
		result.EndedAt.Sub(result.StartedAt).Round(time.Millisecond))
	return nil
}

func runRefreshHistory(cmd *cobra.Command, args []string) error {
	if scheduler == nil {
		return errNoSchedule
	}
	results, err := scheduler.History(commandContext(cmd), args[0], refreshLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(results) == 0 {
		cmd.Printf("No reloads of %s recorded.\n", args[0])
		return nil
	}
	for _, r := range results {
		outcome := fmt.Sprintf("%d rows", r.Rows)
		if !r.Success {
			outcome = "error: " + r.Error
		}
		cmd.Printf("  %s  %8s  %s\n", formatTime(r.StartedAt),
			r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond), outcome)
	}
	return nil
}

func runRefreshStart(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errNoSchedule
	}
	cmd.Println("Scheduler running; press Ctrl+C to stop.")
	ctx := commandContext(cmd)
	err := scheduler.Start(ctx)
	if err != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
