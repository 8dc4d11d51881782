package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pricehunt-engine/internal/domain"
)

// RecoveryStore finds jobs left behind by a previous process.
type RecoveryStore interface {
	UnfinishedJobs(ctx context.Context) ([]string, error)
	TransitionJob(ctx context.Context, id string, to domain.JobStatus) error
	AppendLog(ctx context.Context, jobID string, e domain.LogEntry) error
}

// FailInterrupted marks every PENDING or RUNNING job FAILED. Call it before
// the dispatcher accepts work.
func FailInterrupted(ctx context.Context, st RecoveryStore) (int, error) {
	ids, err := st.UnfinishedJobs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list unfinished jobs: %w", err)
	}
	n := 0
	for _, id := range ids {
		if err := st.TransitionJob(ctx, id, domain.JobFailed); err != nil {
			zap.L().Warn("fail interrupted job", zap.String("job_id", id), zap.Error(err))
			continue
		}
		entry := domain.LogEntry{Timestamp: time.Now().UTC(), Message: "Failed: interrupted by engine restart", Progress: 0}
		if err := st.AppendLog(ctx, id, entry); err != nil {
			zap.L().Warn("log interrupted job", zap.String("job_id", id), zap.Error(err))
		}
		n++
	}
	return n, nil
}
