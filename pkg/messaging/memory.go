package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const subscriberBuffer = 100

// MemoryBroker fans messages out to in-process subscribers. It backs
// single-instance deployments without Redis and the tests.
// A subscriber whose buffer is full misses the message; the drop is logged
// and counted.
type MemoryBroker struct {
	mu      sync.RWMutex
	subs    map[string]map[chan []byte]struct{}
	closed  bool
	log     zerolog.Logger
	dropped prometheus.Counter
}

type MemoryOption func(*MemoryBroker)

func WithLogger(log zerolog.Logger) MemoryOption {
	return func(b *MemoryBroker) { b.log = log }
}

// WithDropCounter counts messages a slow subscriber missed.
func WithDropCounter(c prometheus.Counter) MemoryOption {
	return func(b *MemoryBroker) { b.dropped = c }
}

func NewMemoryBroker(opts ...MemoryOption) *MemoryBroker {
	b := &MemoryBroker{
		subs: make(map[string]map[chan []byte]struct{}),
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *MemoryBroker) Publish(_ context.Context, channel string, message interface{}) error {
	payload, ok := message.([]byte)
	if !ok {
		var err error
		payload, err = json.Marshal(message)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("broker closed")
	}
	for ch := range b.subs[channel] {
		select {
		case ch <- payload:
		default:
			if b.dropped != nil {
				b.dropped.Inc()
			}
			b.log.Warn().Str("channel", channel).Msg("Subscriber buffer full, message dropped")
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("broker closed")
	}

	ch := make(chan []byte, subscriberBuffer)
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[chan []byte]struct{})
	}
	b.subs[channel][ch] = struct{}{}

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[channel][ch]; ok {
			delete(b.subs[channel], ch)
			close(ch)
		}
	}()

	return ch, nil
}

func (b *MemoryBroker) Ping(context.Context) error {
	return nil
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for channel, set := range b.subs {
		for ch := range set {
			close(ch)
		}
		delete(b.subs, channel)
	}
	return nil
}
