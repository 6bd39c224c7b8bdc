// Package sse implements a Server-Sent Events broker that tells connected
// front ends when recipe files change.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Recipe change kinds accepted by Publish.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// EventRecipesChanged tells clients to refetch the recipe list.
const EventRecipesChanged = "recipes.changed"

// Change describes one recipe file change. It is sent as the data of a
// recipe.<kind> event.
type Change struct {
	Kind  string `json:"kind"`
	Slug  string `json:"slug"`
	Path  string `json:"path"`
	Title string `json:"title,omitempty"`
}

// EventType returns the SSE event name for c.
func (c Change) EventType() string {
	return "recipe." + c.Kind
}

func (c Change) valid() bool {
	switch c.Kind {
	case KindCreated, KindUpdated, KindDeleted:
		return c.Slug != ""
	}
	return false
}

// listRefresh is the data of a recipes.changed event.
type listRefresh struct {
	Slug string `json:"slug"`
}

// Broker fans recipe changes out to SSE clients.
//
// A single goroutine owns the client set, the event id counter and the
// list-refresh throttle. Public methods talk to it over channels.
type Broker struct {
	listMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	changeCh      chan Change

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker. listThrottle is the minimum interval between
// two recipes.changed events.
func NewBroker(listThrottle time.Duration) *Broker {
	if listThrottle <= 0 {
		listThrottle = 2 * time.Second
	}

	b := &Broker{
		listMin:       listThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		changeCh:      make(chan Change, 256),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		lastList time.Time
		nextID   uint64
	)

	send := func(event string, data any) {
		payload, err := json.Marshal(data)
		if err != nil {
			return
		}
		nextID++
		msg := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", nextID, event, payload))
		for ch := range clients {
			select {
			case ch <- msg:
			default:
				// Slow client, drop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case c := <-b.changeCh:
			if !c.valid() {
				continue
			}
			send(c.EventType(), c)

			if now := time.Now(); now.Sub(lastList) >= b.listMin {
				lastList = now
				send(EventRecipesChanged, listRefresh{Slug: c.Slug})
			}
		}
	}
}

// Close stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel. The channel is
// already closed when the broker is.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// Publish sends c to every client as recipe.<kind>, followed by a
// throttled recipes.changed. Changes with an unknown kind or no slug are
// dropped.
func (b *Broker) Publish(c Change) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- c:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). CORS headers
// come from the API router.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Subscribed before the headers go out, so a client that has seen
	// the response start cannot miss an event.
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
