package services

import (
	"context"
	"sync"
	"time"

	"biodb-backend-go/internal/models"
)

// FeedClient is a subscriber of new samples; *websocket.Conn satisfies it.
type FeedClient interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

const feedWriteTimeout = 5 * time.Second

type SampleEvent struct {
	Type   string                  `json:"type"`
	Sample models.BiologicalSample `json:"sample"`
}

// SampleFeed fans newly stored samples out to connected viewers.
type SampleFeed struct {
	mu      sync.Mutex
	clients map[FeedClient]bool
	ch      chan models.BiologicalSample
}

func NewSampleFeed() *SampleFeed {
	return &SampleFeed{
		clients: map[FeedClient]bool{},
		ch:      make(chan models.BiologicalSample, 16),
	}
}

func (f *SampleFeed) Run(ctx context.Context) {
	for {
		select {
		case sample := <-f.ch:
			f.deliver(SampleEvent{Type: "sample.added", Sample: sample})
		case <-ctx.Done():
			return
		}
	}
}

// deliver writes outside the lock so a slow viewer cannot hold up Add and
// Remove. Clients whose write fails are dropped and closed.
func (f *SampleFeed) deliver(event SampleEvent) {
	f.mu.Lock()
	clients := make([]FeedClient, 0, len(f.clients))
	for client := range f.clients {
		clients = append(clients, client)
	}
	f.mu.Unlock()

	for _, client := range clients {
		_ = client.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
		if err := client.WriteJSON(event); err != nil {
			f.Remove(client)
			_ = client.Close()
		}
	}
}

// Broadcast queues a sample for delivery and drops it when the queue is full.
func (f *SampleFeed) Broadcast(sample models.BiologicalSample) {
	select {
	case f.ch <- sample:
	default:
	}
}

func (f *SampleFeed) Add(client FeedClient) {
	f.mu.Lock()
	f.clients[client] = true
	f.mu.Unlock()
}

func (f *SampleFeed) Remove(client FeedClient) {
	f.mu.Lock()
	delete(f.clients, client)
	f.mu.Unlock()
}

func (f *SampleFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}
