package store

import (
	"context"

	"github.com/linecrew/makeready-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// RunResult carries the outcome of a finished report run.
type RunResult struct {
	PoleCount  int
	ErrorCount int
}

// Store defines the persistence interface for report run history.
type Store interface {
	CreateRun(ctx context.Context, surveyFile, engineeringFile string) (*model.Run, error)
	UpdateRunResult(ctx context.Context, runID string, result RunResult) error
	FailRun(ctx context.Context, runID string, cause string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
