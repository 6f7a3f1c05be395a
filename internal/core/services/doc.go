// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// DatasetService owns the per-dataset state and serializes intents;
// ViewCache memoizes derived views; LoaderService and RefreshScheduler move
// records from sources into datasets.
package services
