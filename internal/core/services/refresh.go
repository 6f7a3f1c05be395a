package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
	"github.com/custodia-labs/gridview/internal/core/ports/driving"
	"github.com/custodia-labs/gridview/internal/logger"
)

// Ensure RefreshScheduler implements the interface.
var _ driving.Scheduler = (*RefreshScheduler)(nil)

// historyKeep is the number of results retained per dataset.
const historyKeep = 100

// RefreshScheduler reloads datasets from their sources on cron schedules.
// Task state and run history are persisted so schedules survive restarts.
type RefreshScheduler struct {
	config domain.RefreshConfig
	store  driven.RefreshStore
	loader driving.Loader
	cron   gocron.Scheduler

	mu      sync.Mutex
	jobs    map[string]gocron.Job
	running bool
	stopCh  chan struct{}
	ctx     context.Context
	now     func() time.Time
}

// RefreshConfigFrom reads the [refresh] table of the configuration. Missing
// keys keep the hourly defaults; refresh.enabled = false turns reloads off.
func RefreshConfigFrom(config driven.ConfigStore) domain.RefreshConfig {
	cfg := domain.DefaultRefreshConfig()
	if config == nil {
		return cfg
	}
	if v, ok := config.Get(driven.ConfigRefreshEnabled); ok {
		if enabled, isBool := v.(bool); isBool {
			cfg.Enabled = enabled
		}
	}
	if expr := config.GetString(driven.ConfigRefreshCron); expr != "" {
		cfg.Schedule = expr
	}
	cfg.Schedules = config.GetStringMap(driven.ConfigRefreshSchedules)
	return cfg
}

// NewRefreshScheduler creates a scheduler. Jobs do not run until Start.
func NewRefreshScheduler(
	config domain.RefreshConfig,
	store driven.RefreshStore,
	loader driving.Loader,
) (*RefreshScheduler, error) {
	if store == nil || loader == nil {
		return nil, fmt.Errorf("%w: refresh scheduler needs a store and a loader", domain.ErrInvalidInput)
	}
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create cron scheduler: %w", err)
	}
	return &RefreshScheduler{
		config: config,
		store:  store,
		loader: loader,
		cron:   cron,
		jobs:   make(map[string]gocron.Job),
		ctx:    context.Background(),
		now:    time.Now,
	}, nil
}

// Start restores persisted tasks and runs them until ctx is cancelled or
// Stop is called.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logger.Info("scheduled refresh disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.ctx = ctx
	stopCh := s.stopCh
	s.mu.Unlock()

	if err := s.restore(ctx); err != nil {
		logger.Error("refresh: failed to restore tasks: %v", err)
	}
	s.cron.Start()
	logger.Info("refresh scheduler started with %d tasks", len(s.cron.Jobs()))

	select {
	case <-ctx.Done():
		_ = s.Stop()
		return ctx.Err()
	case <-stopCh:
		return nil
	}
}

// Stop halts scheduled reloads and waits for running ones to finish.
func (s *RefreshScheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	return s.cron.StopJobs()
}

// Close releases the underlying cron scheduler. The scheduler cannot be
// restarted afterwards.
func (s *RefreshScheduler) Close() error {
	_ = s.Stop()
	return s.cron.Shutdown()
}

// restore re-creates jobs for every enabled task in the store.
func (s *RefreshScheduler) restore(ctx context.Context) error {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return err
	}
	for i := range tasks {
		task := tasks[i]
		if !task.Enabled {
			continue
		}
		if err := s.addJob(task.Dataset, task.Schedule); err != nil {
			logger.Warn("refresh: skipping %s: %v", task.Dataset, err)
		}
	}
	return nil
}

// addJob creates or replaces the cron job of dataset.
func (s *RefreshScheduler) addJob(dataset, expr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.jobs[dataset]; ok {
		if err := s.cron.RemoveJob(old.ID()); err != nil {
			logger.Warn("refresh: failed to remove job %s: %v", dataset, err)
		}
		delete(s.jobs, dataset)
	}

	job, err := s.cron.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(func() {
			s.Run(s.jobContext(), dataset)
		}),
		gocron.WithName(dataset),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("%w: schedule %q for %s: %v", domain.ErrInvalidInput, expr, dataset, err)
	}
	s.jobs[dataset] = job
	return nil
}

func (s *RefreshScheduler) jobContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *RefreshScheduler) nextRun(dataset string) time.Time {
	s.mu.Lock()
	job, ok := s.jobs[dataset]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	next, err := job.NextRun()
	if err != nil {
		return time.Time{}
	}
	return next
}

// Schedule adds or replaces the reload task of dataset. An empty expr uses
// the configured schedule for the dataset.
func (s *RefreshScheduler) Schedule(ctx context.Context, dataset, location, expr string) error {
	if dataset == "" || location == "" {
		return fmt.Errorf("%w: dataset and location are required", domain.ErrInvalidInput)
	}
	if expr == "" {
		expr = s.config.ScheduleFor(dataset)
	}
	if err := s.addJob(dataset, expr); err != nil {
		return err
	}

	task, err := s.store.GetTask(ctx, dataset)
	if err != nil {
		return err
	}
	if task == nil {
		task = &domain.RefreshTask{Dataset: dataset}
	}
	task.Location = location
	task.Schedule = expr
	task.Enabled = true
	task.NextRun = s.nextRun(dataset)

	logger.Debug("refresh: scheduled %s (%s) from %s", dataset, expr, location)
	return s.store.SaveTask(ctx, task)
}

// Unschedule removes the reload task of dataset.
func (s *RefreshScheduler) Unschedule(ctx context.Context, dataset string) error {
	s.mu.Lock()
	if job, ok := s.jobs[dataset]; ok {
		if err := s.cron.RemoveJob(job.ID()); err != nil {
			logger.Warn("refresh: failed to remove job %s: %v", dataset, err)
		}
		delete(s.jobs, dataset)
	}
	s.mu.Unlock()
	return s.store.DeleteTask(ctx, dataset)
}

// Tasks returns the persisted reload tasks.
func (s *RefreshScheduler) Tasks(ctx context.Context) ([]domain.RefreshTask, error) {
	return s.store.ListTasks(ctx)
}

// History returns the most recent results of dataset.
func (s *RefreshScheduler) History(ctx context.Context, dataset string, limit int) ([]domain.RefreshResult, error) {
	return s.store.GetHistory(ctx, dataset, limit)
}

// Run reloads dataset immediately and records the outcome.
func (s *RefreshScheduler) Run(ctx context.Context, dataset string) domain.RefreshResult {
	result := domain.RefreshResult{
		Dataset:   dataset,
		StartedAt: s.now(),
	}

	task, err := s.store.GetTask(ctx, dataset)
	if err == nil && task == nil {
		err = fmt.Errorf("refresh task %s: %w", dataset, domain.ErrNotFound)
	}
	if err == nil {
		var info domain.DatasetInfo
		info, err = s.loader.Load(ctx, dataset, task.Location)
		result.Rows = info.Rows
	}

	result.EndedAt = s.now()
	if err != nil {
		result.Error = err.Error()
		logger.Error("refresh %s: %v", dataset, err)
	} else {
		result.Success = true
		logger.Info("refreshed %s: %d rows", dataset, result.Rows)
	}

	if task != nil {
		task.LastRun = result.StartedAt
		task.NextRun = s.nextRun(dataset)
		task.LastError = result.Error
		if result.Success {
			task.LastSuccess = result.EndedAt
		}
		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			logger.Error("refresh: failed to save task %s: %v", dataset, saveErr)
		}
	}
	if recordErr := s.store.RecordResult(ctx, &result); recordErr != nil {
		logger.Error("refresh: failed to record result for %s: %v", dataset, recordErr)
	}
	if pruneErr := s.store.PruneHistory(ctx, historyKeep); pruneErr != nil {
		logger.Error("refresh: failed to prune history: %v", pruneErr)
	}
	return result
}
