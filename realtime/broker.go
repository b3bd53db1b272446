// Package realtime fans committed state changes out to subscribed
// dashboards so rosters and pending-request lists stay current without
// polling. Delivery is at-least-once while a subscriber is connected and
// unordered across tables; events carry identifiers only, consumers
// re-fetch authoritative state.
package realtime

import (
	"sync"

	"github.com/google/uuid"
)

type Event struct {
	Table  string `json:"table"`
	Action string `json:"action"`
	UserID uint   `json:"user_id"`
	TeamID *uint  `json:"team_id,omitempty"`
}

// Scope filters which events a subscriber receives. Zero values match
// everything (used by super admin dashboards).
type Scope struct {
	UserID uint
	TeamID uint
}

func (s Scope) matches(e Event) bool {
	if s.UserID != 0 && e.UserID != s.UserID {
		return false
	}
	if s.TeamID != 0 && (e.TeamID == nil || *e.TeamID != s.TeamID) {
		return false
	}
	return true
}

type subscriber struct {
	scope Scope
	ch    chan Event
}

type Broker struct {
	mu          sync.RWMutex
	subscribers map[string]subscriber
}

func NewBroker() *Broker {
	return &Broker{subscribers: make(map[string]subscriber)}
}

// Subscribe registers a scoped listener and returns its id and channel.
// The caller must Unsubscribe when done.
func (b *Broker) Subscribe(scope Scope) (string, <-chan Event) {
	id := uuid.NewString()
	ch := make(chan Event, 16)

	b.mu.Lock()
	b.subscribers[id] = subscriber{scope: scope, ch: ch}
	b.mu.Unlock()

	return id, ch
}

func (b *Broker) Unsubscribe(id string) {
	b.mu.Lock()
	sub, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
	}
	b.mu.Unlock()

	if ok {
		close(sub.ch)
	}
}

// Publish fans the event out to every matching subscriber. A subscriber
// that cannot keep up loses events rather than blocking writers; that is
// acceptable because consumers re-fetch on any notification.
func (b *Broker) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		if !sub.scope.matches(e) {
			continue
		}
		select {
		case sub.ch <- e:
		default:
		}
	}
}

// NotifyChange implements services.ChangeNotifier.
func (b *Broker) NotifyChange(table, action string, userID uint, teamID *uint) {
	b.Publish(Event{Table: table, Action: action, UserID: userID, TeamID: teamID})
}
