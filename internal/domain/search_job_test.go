package domain_test

import (
	"testing"

	"pricehunt-engine/internal/domain"
)

func TestParseJobStatus(t *testing.T) {
	for _, s := range []string{"PENDING", "RUNNING", "COMPLETED", "FAILED"} {
		got, err := domain.ParseJobStatus(s)
		if err != nil {
			t.Errorf("ParseJobStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseJobStatus(%q) = %q", s, got)
		}
	}
	if _, err := domain.ParseJobStatus("DONE"); err == nil {
		t.Error("ParseJobStatus(\"DONE\") expected error, got nil")
	}
}

func TestIsTransitionAllowed_Forward(t *testing.T) {
	cases := []struct{ from, to domain.JobStatus }{
		{domain.JobPending, domain.JobRunning},
		{domain.JobPending, domain.JobFailed},
		{domain.JobRunning, domain.JobCompleted},
		{domain.JobRunning, domain.JobFailed},
	}
	for _, c := range cases {
		if !domain.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be true", c.from, c.to)
		}
	}
}

func TestIsTransitionAllowed_NeverReverts(t *testing.T) {
	cases := []struct{ from, to domain.JobStatus }{
		{domain.JobRunning, domain.JobPending},
		{domain.JobCompleted, domain.JobRunning},
		{domain.JobFailed, domain.JobRunning},
		{domain.JobCompleted, domain.JobFailed},
		{domain.JobFailed, domain.JobCompleted},
		{domain.JobPending, domain.JobCompleted}, // skips RUNNING
		{domain.JobRunning, domain.JobRunning},
	}
	for _, c := range cases {
		if domain.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false", c.from, c.to)
		}
	}
}

func TestPredecessors(t *testing.T) {
	got := domain.Predecessors(domain.JobFailed)
	if len(got) != 2 || got[0] != domain.JobPending || got[1] != domain.JobRunning {
		t.Errorf("Predecessors(FAILED) = %v", got)
	}
	if got := domain.Predecessors(domain.JobPending); len(got) != 0 {
		t.Errorf("Predecessors(PENDING) = %v, want none", got)
	}
}
