package domain

import "time"

// DefaultRefreshSchedule reloads datasets at the top of every hour.
const DefaultRefreshSchedule = "0 * * * *"

// RefreshTask is a recurring reload of one dataset from its source.
type RefreshTask struct {
	// Dataset names the dataset to reload.
	Dataset string

	// Location is the source reference reloaded on each run.
	Location string

	// Schedule is a five-field cron expression.
	Schedule string

	// LastRun is when the task last ran.
	LastRun time.Time

	// NextRun is when the task should run next.
	NextRun time.Time

	// LastError contains the last error message, if any.
	LastError string

	// LastSuccess is when the task last completed successfully.
	LastSuccess time.Time

	// Enabled indicates whether the task is active.
	Enabled bool
}

// RefreshResult is the outcome of one reload.
type RefreshResult struct {
	// Dataset identifies which dataset was reloaded.
	Dataset string

	// StartedAt is when the reload started.
	StartedAt time.Time

	// EndedAt is when the reload completed.
	EndedAt time.Time

	// Success indicates whether the reload completed without error.
	Success bool

	// Error contains the error message if Success is false.
	Error string

	// Rows is the number of records loaded.
	Rows int
}

// RefreshConfig holds scheduler configuration.
type RefreshConfig struct {
	// Enabled is the master switch for scheduled reloads.
	Enabled bool

	// Schedule is the cron expression used when a dataset has none.
	Schedule string

	// Schedules overrides the schedule per dataset.
	Schedules map[string]string
}

// ScheduleFor returns the cron expression for dataset.
func (c *RefreshConfig) ScheduleFor(dataset string) string {
	if expr, ok := c.Schedules[dataset]; ok && expr != "" {
		return expr
	}
	if c.Schedule != "" {
		return c.Schedule
	}
	return DefaultRefreshSchedule
}

// DefaultRefreshConfig returns the hourly refresh defaults.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Enabled:  true,
		Schedule: DefaultRefreshSchedule,
	}
}
