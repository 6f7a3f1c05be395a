// Command gridview views, sorts and filters tabular data from files, object
// storage, GitHub and Google Sheets.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/gridview/internal/adapters/driven/config/file"
	"github.com/custodia-labs/gridview/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/gridview/internal/adapters/driven/watch"
	"github.com/custodia-labs/gridview/internal/adapters/driving/cli"
	"github.com/custodia-labs/gridview/internal/connectors/filesystem"
	"github.com/custodia-labs/gridview/internal/connectors/github"
	"github.com/custodia-labs/gridview/internal/connectors/google"
	"github.com/custodia-labs/gridview/internal/connectors/s3"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
	"github.com/custodia-labs/gridview/internal/core/services"
	"github.com/custodia-labs/gridview/internal/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanup, err := wire(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gridview: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	cli.SetVersion(version)
	if err := cli.Execute(ctx); err != nil {
		cleanup()
		os.Exit(1)
	}
}

// wire builds the stores, sources and services and hands them to the CLI.
// The returned function releases what wire opened.
func wire(ctx context.Context) (func(), error) {
	config, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	schemas, err := file.NewSchemaStore("")
	if err != nil {
		return nil, fmt.Errorf("opening schema store: %w", err)
	}
	store, err := sqlite.NewStore("")
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	sources := []driven.RecordSource{
		filesystem.NewSource(),
		filesystem.NewGlobSource(),
		store.RecordSource(),
		github.NewSource(github.NewClient(ctx, githubToken(config))),
	}
	if src, err := s3.NewSource(ctx, s3.Config{
		Region:   config.GetString(driven.ConfigS3Region),
		Endpoint: config.GetString(driven.ConfigS3Endpoint),
	}); err != nil {
		logger.Warn("s3 locations unavailable: %v", err)
	} else {
		sources = append(sources, src)
	}
	creds := google.Credentials{
		CredentialsFile: config.GetString(driven.ConfigGoogleCredentials),
		APIKey:          config.GetString(driven.ConfigGoogleAPIKey),
	}
	if src, err := google.NewSheetsSource(ctx, creds.ClientOptions()...); err != nil {
		logger.Debug("sheets locations unavailable: %v", err)
	} else {
		sources = append(sources, src)
	}

	datasets := services.NewDatasetService(services.NewViewCache())
	loader := services.NewLoaderService(
		datasets,
		schemas,
		store.DatasetStore(),
		watch.NewNotifier(watch.DefaultDebounce),
		sources...,
	)
	scheduler, err := services.NewRefreshScheduler(services.RefreshConfigFrom(config), store.RefreshStore(), loader)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	cli.SetServices(cli.Services{
		Datasets:  datasets,
		Loader:    loader,
		Scheduler: scheduler,
		Schemas:   schemas,
		Stored:    store.DatasetStore(),
		Config:    config,
	})

	var closed bool
	return func() {
		if closed {
			return
		}
		closed = true
		if err := scheduler.Close(); err != nil {
			logger.Warn("stopping scheduler: %v", err)
		}
		if err := store.Close(); err != nil {
			logger.Warn("closing store: %v", err)
		}
	}, nil
}

// githubToken prefers the configured token over GITHUB_TOKEN.
func githubToken(config driven.ConfigStore) string {
	if token := config.GetString(driven.ConfigGitHubToken); token != "" {
		return token
	}
	return os.Getenv("GITHUB_TOKEN")
}
