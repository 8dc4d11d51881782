package events

import (
	"sync"
	"sync/atomic"
)

// Publisher is the write side of Hub. jobID scopes the event; subscribers
// watching a single job only see that job's events.
type Publisher interface {
	Publish(jobID, evt string)
}

// Hub fans job events out to SSE subscribers. Slow subscribers miss events
// rather than block publishers.
type Hub struct {
	mu      sync.Mutex
	clients map[chan string]string // channel -> job filter, "" for all
	closed  bool
	dropped atomic.Int64
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan string]string)}
}

// Subscribe returns a channel receiving events for jobID, or for every job
// when jobID is empty. The channel is closed by Unsubscribe or Close.
func (h *Hub) Subscribe(jobID string) chan string {
	ch := make(chan string, 32)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.clients[ch] = jobID
	return ch
}

func (h *Hub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

func (h *Hub) Publish(jobID, evt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch, filter := range h.clients {
		if filter != "" && filter != jobID {
			continue
		}
		select {
		case ch <- evt:
		default:
			h.dropped.Add(1)
		}
	}
}

// Close ends every subscription; later subscribers get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped counts events not delivered to a full subscriber.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }
