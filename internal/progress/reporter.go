// Package progress records a job's human-readable progress log.
package progress

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"pricehunt-engine/internal/domain"
	"pricehunt-engine/internal/events"
)

// LogAppender persists one log entry and the job's progress field.
type LogAppender interface {
	AppendLog(ctx context.Context, jobID string, e domain.LogEntry) error
}

// Reporter belongs to one job. Writes are limited to one per interval;
// 100% and 0% always go through. Progress never moves backwards except for
// the 0% failure marker.
type Reporter struct {
	jobID string
	store LogAppender
	pub   events.Publisher
	lim   *rate.Limiter
	now   func() time.Time

	mu   sync.Mutex
	last int
}

func NewReporter(jobID string, store LogAppender, pub events.Publisher, every time.Duration) *Reporter {
	if every <= 0 {
		every = 2 * time.Second
	}
	return &Reporter{
		jobID: jobID,
		store: store,
		pub:   pub,
		lim:   rate.NewLimiter(rate.Every(every), 1),
		now:   time.Now,
	}
}

// WithClock replaces time.Now; tests drive the limiter with it.
func (r *Reporter) WithClock(now func() time.Time) *Reporter {
	r.now = now
	return r
}

// Report writes {now, message, progress} unless rate-limited. It returns the
// store error, if any; a dropped message is not an error.
func (r *Reporter) Report(ctx context.Context, progress int, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	progress = min(max(progress, 0), 100)
	terminal := progress == 0 || progress == 100
	if progress != 0 && progress < r.last {
		progress = r.last
	}

	now := r.now()
	if !terminal && !r.lim.AllowN(now, 1) {
		zap.L().Debug("progress message rate-limited",
			zap.String("job_id", r.jobID),
			zap.Int("progress", progress),
			zap.String("message", message))
		return nil
	}

	entry := domain.LogEntry{Timestamp: now.UTC(), Message: message, Progress: progress}
	if err := r.store.AppendLog(ctx, r.jobID, entry); err != nil {
		zap.L().Warn("progress write failed", zap.String("job_id", r.jobID), zap.Error(err))
		return err
	}
	if progress != 0 {
		r.last = progress
	}
	zap.L().Info("job progress",
		zap.String("job_id", r.jobID),
		zap.Int("progress", progress),
		zap.String("message", message))

	if r.pub != nil {
		r.pub.Publish(r.jobID, events.MakeEvent("", events.TypeJobProgress, 1, events.JobProgress{
			JobID:    r.jobID,
			Progress: progress,
			Message:  message,
		}))
	}
	return nil
}

// Fail writes the 0% failure marker.
func (r *Reporter) Fail(ctx context.Context, message string) error {
	return r.Report(ctx, 0, message)
}

// Last is the highest progress written so far.
func (r *Reporter) Last() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}
