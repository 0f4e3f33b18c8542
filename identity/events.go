package identity

import (
	"context"
	"sync"
)

type EventKind uint8

const (
	SignedIn EventKind = iota + 1
	SignedOut
)

func (k EventKind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	default:
		return "unknown"
	}
}

// Event is published after every sign-in and sign-out.
type Event struct {
	Kind     EventKind
	Identity *Identity
	ctx      context.Context
}

// Context returns the context of the request that caused the event.
func (e Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// Events is a synchronous fan-out of identity events to subscribers.
type Events struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Event)
}

func NewEvents() *Events {
	return &Events{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a function that removes it.
func (e *Events) Subscribe(fn func(Event)) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
		})
	}
}

// Publish delivers ev to every current subscriber in the caller's goroutine.
func (e *Events) Publish(ctx context.Context, kind EventKind, id *Identity) {
	ev := Event{Kind: kind, Identity: id, ctx: ctx}

	e.mu.RLock()
	subs := make([]func(Event), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}
