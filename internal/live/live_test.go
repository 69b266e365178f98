package live

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/hospital-receptionist/pkg/logging"
)

func TestHubFiltersByCall(t *testing.T) {
	hub := NewHub(logging.Discard())
	all := hub.Subscribe("")
	one := hub.Subscribe("CA1")
	defer hub.Unsubscribe(all)
	defer hub.Unsubscribe(one)

	hub.Publish(Event{Type: EventCallIncoming, CallID: "CA2"})
	hub.Publish(Event{Type: EventConversationMessage, CallID: "CA1"})

	got := <-all.Events()
	assert.Equal(t, "CA2", got.CallID)
	assert.False(t, got.Timestamp.IsZero())
	got = <-all.Events()
	assert.Equal(t, "CA1", got.CallID)

	got = <-one.Events()
	assert.Equal(t, EventConversationMessage, got.Type)
	select {
	case evt := <-one.Events():
		t.Fatalf("unexpected event %+v", evt)
	default:
	}
}

func TestHubDropsWhenFull(t *testing.T) {
	hub := NewHub(logging.Discard())
	sub := hub.Subscribe("")
	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Publish(Event{Type: EventCallStatus, CallID: "CA1"})
	}
	assert.Len(t, sub.Events(), subscriberBuffer)
	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)
	assert.Equal(t, 0, hub.Subscribers())
}

func TestNilHubPublish(t *testing.T) {
	var hub *Hub
	hub.Publish(Event{Type: EventCallEnded})
	assert.Equal(t, 0, hub.Subscribers())
}

func TestHandlerStreamsEvents(t *testing.T) {
	hub := NewHub(logging.Discard())
	srv := httptest.NewServer(NewHandler(hub, nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?call=CA9"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	hub.Publish(Event{Type: EventCallEnded, CallID: "CA9", Data: map[string]any{"reason": "completed"}})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt Event
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, EventCallEnded, evt.Type)
	assert.Equal(t, "completed", evt.Data["reason"])

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandlerRejectsForeignOrigin(t *testing.T) {
	hub := NewHub(logging.Discard())
	srv := httptest.NewServer(NewHandler(hub, []string{"https://dashboard.example"}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := map[string][]string{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
}
