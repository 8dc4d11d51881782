package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"

	"pricehunt-engine/internal/config"
	"pricehunt-engine/internal/domain"
	"pricehunt-engine/internal/events"
)

// Store is the read side of persistence.
type Store interface {
	GetJob(ctx context.Context, id string) (domain.SearchJob, error)
	ListLogs(ctx context.Context, jobID string) ([]domain.LogEntry, error)
	ListResults(ctx context.Context, jobID string) ([]domain.SearchResult, error)

	GetProduct(ctx context.Context, id string) (domain.Product, error)

	Checkpoint(ctx context.Context) error
}

// JobStarter queues a search job; jobs.Dispatcher implements it.
type JobStarter interface {
	StartJob(ctx context.Context, productID string, opts domain.SearchOptions) (string, error)
	Queued() int
}

type Deps struct {
	Store Store
	Jobs  JobStarter
	Hub   *events.Hub

	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// SetLLMKey stores the completion API key; defaults to secrets.SetLLMKey.
	SetLLMKey func(account, key string) error

	// Shutdown, when set, is served at /shutdown.
	Shutdown http.HandlerFunc
}
