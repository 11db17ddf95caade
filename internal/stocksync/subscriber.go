package stocksync

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// changeChannel carries inventory change notifications. Every mutation of the
// inventory table publishes here; payloads are not differentiated, any event
// means "refetch".
const changeChannel = "vitrin:inventory:changed"

// defaultDebounce coalesces notification bursts into one refresh.
const defaultDebounce = 250 * time.Millisecond

// PublishChange notifies subscribers that the inventory table changed.
func PublishChange(ctx context.Context, client *redis.Client, reason string) error {
	return client.Publish(ctx, changeChannel, reason).Err()
}

// Publisher is the writer-side counterpart of Subscriber, for callers that
// should not hold a raw redis client.
type Publisher struct {
	client *redis.Client
}

// NewPublisher constructs a Publisher.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishChange announces an inventory mutation on the change channel.
func (p *Publisher) PublishChange(ctx context.Context, reason string) error {
	return PublishChange(ctx, p.client, reason)
}

// Subscriber consumes change notifications and triggers store refreshes. Its
// subscription lives exactly as long as the context passed to Run, so a
// leaked open channel is structurally impossible.
type Subscriber struct {
	client   *redis.Client
	store    *Store
	logger   *slog.Logger
	debounce time.Duration
}

// NewSubscriber constructs a Subscriber.
func NewSubscriber(client *redis.Client, store *Store, logger *slog.Logger) *Subscriber {
	return &Subscriber{client: client, store: store, logger: logger, debounce: defaultDebounce}
}

// Run blocks consuming notifications until ctx is cancelled. Bursts of events
// within the debounce window collapse into a single refresh; a refresh error
// is logged and already recorded on the store, so consumption continues.
func (s *Subscriber) Run(ctx context.Context) error {
	pubsub := s.client.Subscribe(ctx, changeChannel)
	defer func() { _ = pubsub.Close() }()

	ch := pubsub.Channel()
	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if s.logger != nil {
				s.logger.Debug("inventory change notification", slog.String("reason", msg.Payload))
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
				pending = timer.C
			}
		case <-pending:
			timer = nil
			pending = nil
			if err := s.store.Refresh(ctx); err != nil && s.logger != nil {
				s.logger.Warn("refresh after change notification", slog.Any("error", err))
			}
		}
	}
}
