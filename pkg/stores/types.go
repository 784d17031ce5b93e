package stores

import (
	"context"
	"time"
)

// RunStatus represents the outcome of a lint run
type RunStatus string

const (
	// RunStatusPassed means the engine exited zero.
	RunStatusPassed RunStatus = "passed"

	// RunStatusFailed means the engine reported lint failures.
	RunStatusFailed RunStatus = "failed"

	// RunStatusError means the run stopped before or while invoking the engine.
	RunStatusError RunStatus = "error"
)

// Run represents one recorded lint run
type Run struct {
	ID           string        `json:"id"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
	Status       RunStatus     `json:"status"`
	FileCount    int           `json:"file_count"`
	ConfigDigest string        `json:"config_digest"`
	Error        string        `json:"error,omitempty"`
}

// Store defines the run history operations
type Store interface {
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*Run, error)
	DeleteRun(ctx context.Context, id string) error
	PruneRuns(ctx context.Context, keep int) (int64, error)
	HealthCheck(ctx context.Context) error
	Close() error
}
