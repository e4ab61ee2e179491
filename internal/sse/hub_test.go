package sse

import (
	"testing"

	"github.com/wavebreaker/wavebreaker/internal/logger"
)

func newHub(t *testing.T) *Hub {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return NewHub(log)
}

func TestPublishReachesSubscriber(t *testing.T) {
	hub := newHub(t)

	client := hub.Subscribe(7)
	defer hub.Unsubscribe(client)

	hub.Publish(Message{Channel: PlayerChannel(7), Event: EventDethroned, Data: "payload"})

	select {
	case msg := <-client.Outbound:
		if msg.Event != EventDethroned {
			t.Errorf("event = %q, want %q", msg.Event, EventDethroned)
		}
	default:
		t.Fatal("message not delivered")
	}
}

func TestPublishSkipsOtherChannels(t *testing.T) {
	hub := newHub(t)

	client := hub.Subscribe(7)
	defer hub.Unsubscribe(client)

	hub.Publish(Message{Channel: PlayerChannel(8), Event: EventRivalAdded})

	select {
	case msg := <-client.Outbound:
		t.Fatalf("unexpected message: %+v", msg)
	default:
	}
}

func TestUnsubscribeClosesClient(t *testing.T) {
	hub := newHub(t)

	client := hub.Subscribe(7)
	hub.Unsubscribe(client)

	select {
	case <-client.Done():
	default:
		t.Fatal("client not closed on unsubscribe")
	}

	// Publishing after unsubscribe must not panic or deliver.
	hub.Publish(Message{Channel: PlayerChannel(7), Event: EventDethroned})
	select {
	case msg, open := <-client.Outbound:
		if open {
			t.Fatalf("message after unsubscribe: %+v", msg)
		}
	default:
	}
}

func TestSlowClientDoesNotBlockPublish(t *testing.T) {
	hub := newHub(t)

	client := hub.Subscribe(7)
	defer hub.Unsubscribe(client)

	// Overfill the outbound buffer; extra messages get dropped instead
	// of wedging the publisher.
	for i := 0; i < 100; i++ {
		hub.Publish(Message{Channel: PlayerChannel(7), Event: EventDethroned, Data: i})
	}

	if got := len(client.Outbound); got == 0 || got > cap(client.Outbound) {
		t.Errorf("outbound len = %d, want within (0, %d]", got, cap(client.Outbound))
	}
}
