// Package events carries domain events from task and membership mutations to
// the listeners that react to them. Delivery is best effort: a listener
// failure is logged and never reaches the publisher.
package events

import (
	"context"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/yukikurage/ems-api/internal/models"
)

type Kind string

const (
	TaskAssigned      Kind = "task.assigned"
	TaskStatusChanged Kind = "task.status_changed"
	TaskOverdue       Kind = "task.overdue"
	MemberAdded       Kind = "member.added"
	MemberRemoved     Kind = "member.removed"
)

// Event describes something that already happened and was committed.
// Task is set for task events, Member for membership events.
type Event struct {
	Kind       Kind
	ActorID    string
	Task       *models.Task
	Member     *models.User
	OccurredAt time.Time
}

// Publisher is what mutating services depend on. Publish never fails.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Handler reacts to one event
type Handler func(ctx context.Context, e Event) error

// Bus is a synchronous in-process Publisher
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h for every event published after the call
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish runs every handler in registration order
func (b *Bus) Publish(ctx context.Context, e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers...)
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(ctx, h, e)
	}
}

func (b *Bus) dispatch(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("event handler panicked on %s: %v\n%s", e.Kind, r, debug.Stack())
		}
	}()

	if err := h(ctx, e); err != nil {
		log.Printf("event handler failed on %s: %v", e.Kind, err)
	}
}
