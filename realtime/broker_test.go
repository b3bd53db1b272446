package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teamRef(id uint) *uint { return &id }

func TestBrokerScopedDelivery(t *testing.T) {
	broker := NewBroker()

	userID, userCh := broker.Subscribe(Scope{UserID: 7})
	teamID, teamCh := broker.Subscribe(Scope{TeamID: 3})
	allID, allCh := broker.Subscribe(Scope{})
	defer broker.Unsubscribe(userID)
	defer broker.Unsubscribe(teamID)
	defer broker.Unsubscribe(allID)

	broker.Publish(Event{Table: "break_requests", Action: "update", UserID: 7, TeamID: teamRef(3)})

	for name, ch := range map[string]<-chan Event{"user": userCh, "team": teamCh, "all": allCh} {
		select {
		case e := <-ch:
			assert.Equal(t, uint(7), e.UserID, name)
		default:
			t.Errorf("%s subscriber did not receive the event", name)
		}
	}
}

func TestBrokerFiltersMismatchedScopes(t *testing.T) {
	broker := NewBroker()

	userID, userCh := broker.Subscribe(Scope{UserID: 7})
	teamID, teamCh := broker.Subscribe(Scope{TeamID: 3})
	defer broker.Unsubscribe(userID)
	defer broker.Unsubscribe(teamID)

	// Different user, no team: matches neither subscriber.
	broker.Publish(Event{Table: "attendance_intervals", Action: "insert", UserID: 9})

	assert.Empty(t, userCh)
	assert.Empty(t, teamCh)
}

func TestBrokerUnsubscribeClosesChannel(t *testing.T) {
	broker := NewBroker()

	id, ch := broker.Subscribe(Scope{UserID: 1})
	broker.Unsubscribe(id)

	_, open := <-ch
	require.False(t, open, "channel must be closed after unsubscribe")

	// Publishing after unsubscribe must not panic.
	broker.Publish(Event{Table: "break_requests", Action: "update", UserID: 1})
}

func TestBrokerDropsWhenSubscriberIsFull(t *testing.T) {
	broker := NewBroker()

	id, ch := broker.Subscribe(Scope{UserID: 1})
	defer broker.Unsubscribe(id)

	// Overfill the buffer; Publish must never block the writer.
	for i := 0; i < 50; i++ {
		broker.Publish(Event{Table: "break_requests", Action: "update", UserID: 1})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	require.Equal(t, 16, received, "buffer size bounds delivery")
}
