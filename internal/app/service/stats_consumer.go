package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/linkmint/linkmint/internal/app/model"
	"github.com/linkmint/linkmint/internal/app/repository"
	infraprom "github.com/linkmint/linkmint/internal/infra/prometheus"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const statsFlushInterval = 10 * time.Second

type linkDelta struct {
	clicks      int64
	conversions int64
}

// StatsConsumer consumes tracking events from NATS JetStream, feeds the
// prometheus counters and batches per-link click/conversion counts which a
// ticker flushes into the links table. Counters are advisory; the click and
// conversion rows stay authoritative.
type StatsConsumer struct {
	js     nats.JetStreamContext
	logger *zap.Logger
	links  repository.LinkRepository

	mu      sync.Mutex
	pending map[string]*linkDelta

	stopChan chan struct{}
}

// NewStatsConsumer creates a new tracking event consumer.
func NewStatsConsumer(js nats.JetStreamContext, logger *zap.Logger, links repository.LinkRepository) *StatsConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsConsumer{
		js:       js,
		logger:   logger,
		links:    links,
		pending:  make(map[string]*linkDelta),
		stopChan: make(chan struct{}),
	}
}

// Start ensures the stream and durable consumer exist and begins consuming.
func (c *StatsConsumer) Start() error {
	_, err := c.js.StreamInfo(model.TrackingStreamName)
	if err != nil {
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     model.TrackingStreamName,
			Subjects: []string{model.TrackingStreamSubject},
			MaxBytes: model.TrackingStreamMaxBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	_, err = c.js.ConsumerInfo(model.TrackingStreamName, model.TrackingConsumerName)
	if err != nil {
		_, err = c.js.AddConsumer(model.TrackingStreamName, &nats.ConsumerConfig{
			Durable:   model.TrackingConsumerName,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := c.js.PullSubscribe(model.TrackingStreamSubject, model.TrackingConsumerName)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go c.consume(sub)
	go c.flushLoop()
	return nil
}

// Stop terminates the consume and flush loops after a final flush.
func (c *StatsConsumer) Stop() {
	close(c.stopChan)
	c.flush()
}

func (c *StatsConsumer) consume(sub *nats.Subscription) {
	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil && err != nats.ErrTimeout {
			c.logger.Error("failed to fetch tracking events", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			var event model.TrackingEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				c.logger.Error("failed to unmarshal tracking event", zap.Error(err))
				msg.Nak()
				continue
			}

			c.apply(event)
			msg.Ack()
		}
	}
}

func (c *StatsConsumer) apply(event model.TrackingEvent) {
	switch event.Kind {
	case model.TrackingEventClick:
		infraprom.IncClick(event.Unique)
	case model.TrackingEventConversion:
		infraprom.IncConversion(event.ClickToken != "")
	default:
		c.logger.Warn("unknown tracking event kind", zap.String("kind", event.Kind))
		return
	}

	if event.LinkID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delta, ok := c.pending[event.LinkID]
	if !ok {
		delta = &linkDelta{}
		c.pending[event.LinkID] = delta
	}
	if event.Kind == model.TrackingEventClick {
		delta.clicks++
	} else {
		delta.conversions++
	}
}

func (c *StatsConsumer) flushLoop() {
	ticker := time.NewTicker(statsFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-c.stopChan:
			c.logger.Info("stats consumer stopped")
			return
		}
	}
}

func (c *StatsConsumer) flush() {
	c.mu.Lock()
	batch := c.pending
	c.pending = make(map[string]*linkDelta)
	c.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	ctx := context.Background()
	for linkID, delta := range batch {
		if err := c.links.AddCounts(ctx, linkID, delta.clicks, delta.conversions); err != nil {
			c.logger.Error("failed to flush link counters",
				zap.String("link_id", linkID),
				zap.Int64("clicks", delta.clicks),
				zap.Int64("conversions", delta.conversions),
				zap.Error(err))
		}
	}
}
