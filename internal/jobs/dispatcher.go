package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"pricehunt-engine/internal/domain"
)

var (
	ErrQueueFull       = errors.New("job queue is full")
	ErrProductInactive = errors.New("product is inactive")
	ErrClosed          = errors.New("dispatcher is closed")
)

// JobStore adds the lookups StartJob needs to the controller's Store.
type JobStore interface {
	Store
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	CreateJob(ctx context.Context, productID string) (domain.SearchJob, error)
}

// Dispatcher accepts jobs into a bounded queue drained by a fixed-size ants
// pool. Jobs run under a context owned by the dispatcher, not the caller.
type Dispatcher struct {
	ctl   *Controller
	store JobStore
	pool  *ants.Pool
	queue chan Task

	base   context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	closed  bool
	running sync.WaitGroup
	feeder  chan struct{}
}

func NewDispatcher(ctl *Controller, store JobStore, workers, queueSize int) (*Dispatcher, error) {
	if workers < 1 {
		workers = 2
	}
	if queueSize < 1 {
		queueSize = 16
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p interface{}) {
		zap.L().Error("worker panic", zap.Any("panic", p))
	}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	base, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		ctl:    ctl,
		store:  store,
		pool:   pool,
		queue:  make(chan Task, queueSize),
		base:   base,
		cancel: cancel,
		feeder: make(chan struct{}),
	}
	go d.feed()
	return d, nil
}

// feed moves queued tasks into the pool. Submit blocks while every worker is
// busy, so at most queueSize tasks wait in the channel.
func (d *Dispatcher) feed() {
	defer close(d.feeder)
	for t := range d.queue {
		d.running.Add(1)
		task := t
		err := d.pool.Submit(func() {
			defer d.running.Done()
			d.ctl.RunJob(d.base, task)
		})
		if err != nil {
			d.running.Done()
			zap.L().Error("submit job", zap.String("job_id", task.JobID), zap.Error(err))
			d.reject(task.JobID, "could not schedule: "+err.Error())
		}
	}
}

// StartJob validates the product, creates a PENDING job and queues it. On a
// full queue the job is marked FAILED and ErrQueueFull is returned with its id.
func (d *Dispatcher) StartJob(ctx context.Context, productID string, opts domain.SearchOptions) (string, error) {
	p, err := d.store.GetProduct(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("get product %s: %w", productID, err)
	}
	if !p.Active {
		return "", fmt.Errorf("product %s: %w", productID, ErrProductInactive)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return "", ErrClosed
	}

	job, err := d.store.CreateJob(ctx, productID)
	if err != nil {
		return "", err
	}
	task := Task{JobID: job.ID, ProductID: p.ID, Target: p.Name, Options: opts}

	select {
	case d.queue <- task:
		zap.L().Info("job queued", zap.String("job_id", job.ID), zap.String("product_id", p.ID))
		return job.ID, nil
	default:
		d.reject(job.ID, "job queue is full, try again later")
		return job.ID, ErrQueueFull
	}
}

func (d *Dispatcher) reject(jobID, reason string) {
	ctx := context.WithoutCancel(d.base)
	if err := d.store.TransitionJob(ctx, jobID, domain.JobFailed); err != nil {
		zap.L().Error("mark rejected job failed", zap.String("job_id", jobID), zap.Error(err))
	}
	entry := domain.LogEntry{Timestamp: time.Now().UTC(), Message: "Failed: " + reason, Progress: 0}
	if err := d.store.AppendLog(ctx, jobID, entry); err != nil {
		zap.L().Error("log rejected job", zap.String("job_id", jobID), zap.Error(err))
	}
}

// Queued is the number of jobs waiting for a worker.
func (d *Dispatcher) Queued() int { return len(d.queue) }

// Close stops accepting jobs and waits for queued and running jobs until ctx
// is done, then cancels whatever is still running.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		<-d.feeder
		d.running.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
		d.cancel()
		<-done
	}
	d.cancel()
	d.pool.Release()
	return err
}
