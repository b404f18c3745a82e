package stream

import (
	"context"
	"io"
	"time"

	"github.com/nerrad567/huelink-core/internal/infrastructure/logging"
)

// Opener establishes one stream connection and reports the wire
// framing via the response content type.
type Opener interface {
	OpenStream(ctx context.Context) (io.ReadCloser, string, error)
}

// Mutator is the registry surface the consumer drives. Unknown ids and
// kinds are handled inside the registry; the consumer only routes.
type Mutator interface {
	Add(payload map[string]any) error
	Modify(id string, delta map[string]any) error
	Delete(id string) error
}

// Batch event types the bridge emits.
const (
	eventUpdate = "update"
	eventAdd    = "add"
	eventDelete = "delete"
)

// Consumer maintains the long-lived event feed and routes decoded
// batches into the registry.
//
// The loop is self-healing: any transport condition, timeout, or hard
// error schedules a reconnect after a fixed delay. Only context
// cancellation stops it.
//
// Thread Safety:
//   - Run must be called from the single registry-writer goroutine.
//   - SetPreMutationHook must be called before Run.
type Consumer struct {
	opener     Opener
	registry   Mutator
	retryDelay time.Duration
	log        *logging.Logger

	// preMutation fires before add and delete batches are applied,
	// letting attached layers invalidate caches built over the graph.
	preMutation func(eventType string)
}

// New creates a stream consumer.
//
// Parameters:
//   - opener: Stream transport (the bridge client)
//   - registry: Mutation target for decoded deltas
//   - retryDelay: Fixed delay between reconnect attempts
//   - log: Logger for skipped payloads and reconnects
func New(opener Opener, registry Mutator, retryDelay time.Duration, log *logging.Logger) *Consumer {
	return &Consumer{
		opener:     opener,
		registry:   registry,
		retryDelay: retryDelay,
		log:        log.WithComponent("stream"),
	}
}

// SetPreMutationHook installs the callback fired before add and delete
// batches mutate the registry.
func (c *Consumer) SetPreMutationHook(hook func(eventType string)) {
	c.preMutation = hook
}

// Run consumes the event feed until the context is cancelled. Each
// connection attempt that ends, for whatever reason, is followed by a
// fixed-delay reconnect; there is no backoff growth and no retry
// ceiling. Connectivity loss is therefore silent apart from log output.
func (c *Consumer) Run(ctx context.Context) {
	for {
		if err := c.consumeOnce(ctx); err != nil {
			c.log.Warn("event stream interrupted", "error", err)
		}

		select {
		case <-ctx.Done():
			c.log.Info("event stream stopped")
			return
		case <-time.After(c.retryDelay):
		}
	}
}

// consumeOnce opens one connection and dispatches payloads until the
// connection ends.
func (c *Consumer) consumeOnce(ctx context.Context) error {
	body, contentType, err := c.opener.OpenStream(ctx)
	if err != nil {
		return err
	}
	defer body.Close()

	c.log.Info("event stream connected", "content_type", contentType)
	dec := newFrameDecoder(body, contentType, c.log)

	for {
		batches, err := dec.next()
		if err != nil {
			return err
		}
		c.dispatch(batches)
	}
}

// dispatch routes one decoded payload into the registry, in order.
// Unrecognized batch-event types are logged and ignored; a bad entry
// never blocks its siblings.
func (c *Consumer) dispatch(batches []batchEvent) {
	for _, batch := range batches {
		switch batch.Type {
		case eventUpdate:
			for _, delta := range batch.Data {
				id, _ := delta["id"].(string)
				if id == "" {
					c.log.Warn("update delta missing id, skipped")
					continue
				}
				// Unknown ids degrade to a logged no-op inside the registry.
				_ = c.registry.Modify(id, delta)
			}

		case eventAdd:
			c.fireHook(eventAdd)
			for _, payload := range batch.Data {
				// Unknown kinds are logged inside Add; siblings continue.
				_ = c.registry.Add(payload)
			}

		case eventDelete:
			c.fireHook(eventDelete)
			for _, payload := range batch.Data {
				id, _ := payload["id"].(string)
				if id == "" {
					c.log.Warn("delete entry missing id, skipped")
					continue
				}
				_ = c.registry.Delete(id)
			}

		default:
			c.log.Debug("ignoring batch event of unknown type", "type", batch.Type)
		}
	}
}

func (c *Consumer) fireHook(eventType string) {
	if c.preMutation != nil {
		c.preMutation(eventType)
	}
}
