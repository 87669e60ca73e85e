package hub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesOnlyRecipientStreams(t *testing.T) {
	h := NewHub()

	recipient := make(Client, 1)
	bystander := make(Client, 1)
	h.Subscribe(1, recipient)
	h.Subscribe(2, bystander)

	h.Broadcast(1, Event{Type: "notification", Payload: "hello"})

	select {
	case msg := <-recipient:
		var event Event
		require.NoError(t, json.Unmarshal(msg, &event))
		assert.Equal(t, "notification", event.Type)
		assert.Equal(t, "hello", event.Payload)
	default:
		t.Fatal("recipient stream received nothing")
	}

	select {
	case <-bystander:
		t.Fatal("bystander stream received a message")
	default:
	}
}

func TestUnsubscribeClosesStream(t *testing.T) {
	h := NewHub()

	client := make(Client, 1)
	h.Subscribe(7, client)
	h.Unsubscribe(7, client)

	_, open := <-client
	assert.False(t, open)

	// Broadcasting to a user with no open streams is a no-op.
	h.Broadcast(7, Event{Type: "notification"})
}

func TestBroadcastSkipsFullStream(t *testing.T) {
	h := NewHub()

	full := make(Client, 1)
	full <- []byte("stale")
	h.Subscribe(3, full)

	// Must not block even though the channel has no free capacity.
	h.Broadcast(3, Event{Type: "notification"})

	assert.Equal(t, []byte("stale"), <-full)
}
