// Package domain holds the engine's shared data types.
//
// SearchJob status graph:
//
//	PENDING ──► RUNNING ──► COMPLETED
//	   │           │
//	   └───────────┴──────► FAILED
//
// COMPLETED and FAILED are terminal.
package domain

import (
	"fmt"
	"time"
)

type JobStatus string

const (
	JobPending   JobStatus = "PENDING"
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
)

// PENDING may fail directly when the job never gets a worker.
var validTransitions = map[JobStatus][]JobStatus{
	JobPending: {JobRunning, JobFailed},
	JobRunning: {JobCompleted, JobFailed},
}

func ParseJobStatus(s string) (JobStatus, error) {
	st := JobStatus(s)
	switch st {
	case JobPending, JobRunning, JobCompleted, JobFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// IsTransitionAllowed reports whether from → to follows the status graph.
func IsTransitionAllowed(from, to JobStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Predecessors lists the states that may move into to.
func Predecessors(to JobStatus) []JobStatus {
	var out []JobStatus
	for _, from := range []JobStatus{JobPending, JobRunning, JobCompleted, JobFailed} {
		if IsTransitionAllowed(from, to) {
			out = append(out, from)
		}
	}
	return out
}

func (s JobStatus) Terminal() bool { return s == JobCompleted || s == JobFailed }

type SearchJob struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Status    JobStatus `json:"status"`
	Progress  int       `json:"progress"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type LogEntry struct {
	Seq       int       `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Progress  int       `json:"progress"`
}

// SearchOptions are the caller-supplied knobs for one job.
type SearchOptions struct {
	Instructions string   `json:"instructions,omitempty"`
	Marketplaces []string `json:"marketplaces,omitempty"`
	Category     string   `json:"category,omitempty"`
}
