package eventmgr

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bluesky-social/labeld/stream"
)

type Subscriber struct {
	ident string

	// hub writes here; the per-subscriber pump drains it
	live chan *stream.LabelStreamEvent
	// caller reads here
	outgoing chan *stream.LabelStreamEvent

	done      chan struct{}
	closeOnce sync.Once

	connectedAt time.Time
	eventsSent  atomic.Int64
}

func newSubscriber(ident string, bufferSize int) *Subscriber {
	return &Subscriber{
		ident:       ident,
		live:        make(chan *stream.LabelStreamEvent, bufferSize),
		outgoing:    make(chan *stream.LabelStreamEvent, bufferSize),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
	}
}

func (sub *Subscriber) countEvent() {
	sub.eventsSent.Add(1)
}

func (sub *Subscriber) close() {
	sub.closeOnce.Do(func() {
		close(sub.done)
	})
}

// ConsumerInfo is a point-in-time snapshot of a connected subscriber, for
// the admin listing endpoint.
type ConsumerInfo struct {
	Ident       string    `json:"ident"`
	ConnectedAt time.Time `json:"connected_at"`
	EventsSent  int64     `json:"events_sent"`
}

// Consumers returns a snapshot of all currently connected subscribers.
func (em *EventManager) Consumers() []ConsumerInfo {
	em.mu.Lock()
	defer em.mu.Unlock()

	out := make([]ConsumerInfo, 0, len(em.subs))
	for _, sub := range em.subs {
		out = append(out, ConsumerInfo{
			Ident:       sub.ident,
			ConnectedAt: sub.connectedAt,
			EventsSent:  sub.eventsSent.Load(),
		})
	}
	return out
}
