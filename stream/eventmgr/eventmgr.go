// Package eventmgr fans label stream events out to websocket subscribers,
// replaying persisted backlog ahead of live delivery when a cursor is
// supplied.
package eventmgr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bluesky-social/labeld/stream"
)

// ErrFutureCursor indicates a subscription cursor past the current head of
// the stream.
var ErrFutureCursor = errors.New("requested cursor is ahead of stream head")

var ErrPlaybackShutdown = errors.New("playback shutting down")

// PlaybackSource provides persisted events for cursor-based catch-up.
type PlaybackSource interface {
	// Playback invokes cb for every persisted event with sequence greater
	// than since, in ascending order, until exhaustion or error.
	Playback(ctx context.Context, since int64, cb func(*stream.LabelStreamEvent) error) error
	// HeadSequence returns the highest sequence persisted so far (zero for
	// an empty log).
	HeadSequence(ctx context.Context) (int64, error)
}

type EventManager struct {
	mu   sync.Mutex
	subs []*Subscriber

	source     PlaybackSource
	bufferSize int
	log        *slog.Logger
}

func NewEventManager(source PlaybackSource, logger *slog.Logger) *EventManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventManager{
		source:     source,
		bufferSize: 1024,
		log:        logger.With("system", "eventmgr"),
	}
}

// Publish delivers evt to every connected subscriber. Delivery never
// blocks: a subscriber whose buffer is full is terminated so that it can
// reconnect with its cursor instead of silently losing events.
func (em *EventManager) Publish(ctx context.Context, evt *stream.LabelStreamEvent) error {
	if err := evt.Preserialize(); err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	eventsPublished.Inc()

	em.mu.Lock()
	var dead []*Subscriber
	for _, sub := range em.subs {
		select {
		case sub.live <- evt:
		default:
			dead = append(dead, sub)
		}
	}
	em.mu.Unlock()

	for _, sub := range dead {
		em.log.Warn("subscriber buffer overflow, terminating", "ident", sub.ident)
		subscribersKilled.Inc()
		em.removeSubscriber(sub)
	}
	return nil
}

// Subscribe registers a new consumer on the label stream. If since is
// non-nil, persisted events after that sequence are replayed before live
// events; live events arriving during replay are buffered and delivered
// afterwards without gaps or duplicates. The returned cleanup function
// must be called when the consumer goes away.
func (em *EventManager) Subscribe(ctx context.Context, ident string, since *int64) (<-chan *stream.LabelStreamEvent, func(), error) {
	if since != nil {
		head, err := em.source.HeadSequence(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("checking stream head: %w", err)
		}
		if *since > head {
			return nil, nil, ErrFutureCursor
		}
	}

	sub := newSubscriber(ident, em.bufferSize)

	// register before playback so that concurrent appends land in the live
	// buffer instead of being missed
	em.mu.Lock()
	em.subs = append(em.subs, sub)
	em.mu.Unlock()
	subscribersConnected.Inc()

	go em.deliver(ctx, sub, since)

	cleanup := func() {
		em.removeSubscriber(sub)
	}
	return sub.outgoing, cleanup, nil
}

// deliver runs the per-subscriber pump: replay persisted backlog first,
// then drain the live buffer, dropping anything already replayed.
func (em *EventManager) deliver(ctx context.Context, sub *Subscriber, since *int64) {
	defer close(sub.outgoing)

	var lastSeq int64
	if since != nil {
		lastSeq = *since
		err := em.source.Playback(ctx, *since, func(evt *stream.LabelStreamEvent) error {
			select {
			case sub.outgoing <- evt:
				if seq, ok := evt.GetSequence(); ok {
					lastSeq = seq
				}
				sub.countEvent()
				eventsReplayed.Inc()
				return nil
			case <-sub.done:
				return ErrPlaybackShutdown
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			if !errors.Is(err, ErrPlaybackShutdown) && !errors.Is(err, context.Canceled) {
				em.log.Error("events playback failed", "ident", sub.ident, "err", err)
				frame := &stream.LabelStreamEvent{
					Error: &stream.ErrorFrame{Error: "InternalFailure", Message: "event playback failed"},
				}
				select {
				case sub.outgoing <- frame:
				case <-sub.done:
				case <-ctx.Done():
				}
			}
			em.removeSubscriber(sub)
			return
		}
	}

	for {
		select {
		case evt := <-sub.live:
			// skip events already delivered during playback
			if seq, ok := evt.GetSequence(); ok && seq <= lastSeq {
				continue
			}
			select {
			case sub.outgoing <- evt:
				sub.countEvent()
			case <-sub.done:
				return
			case <-ctx.Done():
				return
			}
		case <-sub.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (em *EventManager) removeSubscriber(sub *Subscriber) {
	em.mu.Lock()
	for i, s := range em.subs {
		if s == sub {
			em.subs[i] = em.subs[len(em.subs)-1]
			em.subs = em.subs[:len(em.subs)-1]
			subscribersConnected.Dec()
			break
		}
	}
	em.mu.Unlock()
	sub.close()
}
