package analytics

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/kafka"
)

// Publisher writes a batch of messages; *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, msgs ...kafka.Message) error
}

// Collector buffers events in a channel and publishes them in batches of up
// to batchSize, or every flushInterval, whichever comes first. Track never
// blocks: when the buffer is full the event is dropped and counted.
type Collector struct {
	publisher     Publisher
	events        chan MatchEvent
	batchSize     int
	flushInterval time.Duration
	dropped       atomic.Int64
	published     atomic.Int64
	logger        *slog.Logger
	done          chan struct{}
}

// NewCollector returns a Collector; call Start before tracking events.
func NewCollector(publisher Publisher, bufferSize, batchSize int, flushInterval time.Duration) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 2 * time.Second
	}
	return &Collector{
		publisher:     publisher,
		events:        make(chan MatchEvent, bufferSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
}

// Start runs the publish loop until ctx is cancelled, then drains whatever
// is still buffered with a short deadline.
func (c *Collector) Start(ctx context.Context) {
	go c.loop(ctx)
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.events),
		"batch_size", c.batchSize,
		"flush_interval", c.flushInterval,
	)
}

// Track enqueues event.
func (c *Collector) Track(event MatchEvent) {
	select {
	case c.events <- event:
	default:
		if c.dropped.Add(1)%100 == 1 {
			c.logger.Warn("analytics buffer full, dropping events", "dropped_total", c.dropped.Load())
		}
	}
}

// Wait blocks until the publish loop has exited.
func (c *Collector) Wait() {
	<-c.done
}

// Dropped reports events discarded because the buffer was full.
func (c *Collector) Dropped() int64 { return c.dropped.Load() }

// Published reports events handed to Kafka successfully.
func (c *Collector) Published() int64 { return c.published.Load() }

func (c *Collector) loop(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	batch := make([]kafka.Message, 0, c.batchSize)
	for {
		select {
		case ev := <-c.events:
			batch = append(batch, toMessage(ev))
			if len(batch) >= c.batchSize {
				batch = c.flush(ctx, batch)
			}
		case <-ticker.C:
			batch = c.flush(ctx, batch)
		case <-ctx.Done():
			for {
				select {
				case ev := <-c.events:
					batch = append(batch, toMessage(ev))
					continue
				default:
				}
				break
			}
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			c.flush(flushCtx, batch)
			cancel()
			return
		}
	}
}

// flush publishes batch and returns an empty slice to reuse. Failed batches
// are logged and dropped; analytics never backs up into scoring.
func (c *Collector) flush(ctx context.Context, batch []kafka.Message) []kafka.Message {
	if len(batch) == 0 {
		return batch
	}
	if err := c.publisher.Publish(ctx, batch...); err != nil {
		c.dropped.Add(int64(len(batch)))
		c.logger.Error("publishing match events failed", "events", len(batch), "error", err)
	} else {
		c.published.Add(int64(len(batch)))
	}
	return batch[:0]
}

// toMessage keys events by verdict so each verdict stays ordered within its
// partition.
func toMessage(ev MatchEvent) kafka.Message {
	return kafka.Message{Key: ev.Verdict, Value: ev}
}
