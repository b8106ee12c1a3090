package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		topicID, _ := strconv.ParseInt(r.URL.Query().Get("topic"), 10, 64)
		_ = hub.Serve(w, r, topicID, 7)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, topicID int64, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?topic=" + strconv.FormatInt(topicID, 10)
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var e Event
	require.NoError(t, json.Unmarshal(raw, &e))
	return e
}

func TestHub_PublishReachesTopicSubscribersOnly(t *testing.T) {
	hub := NewHub(nil, zerolog.Nop())
	srv := newTestServer(t, hub)

	first := dial(t, srv, 1, nil)
	other := dial(t, srv, 2, nil)
	require.Eventually(t, func() bool { return hub.ClientCount(1) == 1 && hub.ClientCount(2) == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(Event{Type: EventReplyCreated, TopicID: 1, Data: map[string]string{"comment_id": "r1"}})

	e := readEvent(t, first)
	assert.Equal(t, EventReplyCreated, e.Type)
	assert.EqualValues(t, 1, e.TopicID)
	assert.Equal(t, map[string]interface{}{"comment_id": "r1"}, e.Data)
	assert.False(t, e.Timestamp.IsZero())

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "topic 2 must not receive topic 1 events")
}

func TestHub_TopicDeletedClosesSubscribers(t *testing.T) {
	hub := NewHub(nil, zerolog.Nop())
	srv := newTestServer(t, hub)

	conn := dial(t, srv, 3, nil)
	require.Eventually(t, func() bool { return hub.ClientCount(3) == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(Event{Type: EventTopicDeleted, TopicID: 3})
	assert.Equal(t, EventTopicDeleted, readEvent(t, conn).Type)
	assert.Zero(t, hub.ClientCount(3))

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	hub := NewHub(nil, zerolog.Nop())
	srv := newTestServer(t, hub)

	conn := dial(t, srv, 4, nil)
	require.Eventually(t, func() bool { return hub.ClientCount(4) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.Eventually(t, func() bool { return hub.ClientCount(4) == 0 }, time.Second, 10*time.Millisecond)

	// publishing to an empty topic is a no-op
	hub.Publish(Event{Type: EventReplyCreated, TopicID: 4})
}

func TestHub_CheckOrigin(t *testing.T) {
	hub := NewHub([]string{"http://localhost:3000"}, zerolog.Nop())
	srv := newTestServer(t, hub)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?topic=5"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	dial(t, srv, 5, http.Header{"Origin": {"http://localhost:3000"}})
	require.Eventually(t, func() bool { return hub.ClientCount(5) == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Zero(t, hub.ClientCount(5))
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard.Publish(Event{Type: EventTopicUpdated}) })
}
