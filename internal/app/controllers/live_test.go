package controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/coursehub/internal/app/models/dto"
)

func TestTopicLiveFeed(t *testing.T) {
	api := newTestAPI(t)
	alice := api.login("alice@example.com", "password123")

	bob := api.client()
	_, env := bob.do(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: "bob@example.com", Password: "password123"})
	var login dto.LoginResponse
	decodeData(t, env, &login)

	rec, _ := alice.do(http.MethodGet, "/api/v1/topics/missing/live", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = alice.do(http.MethodPost, "/api/v1/topics", map[string]string{
		"topic_id": "topic_live",
		"subject":  "Office hours",
		"message":  "Are office hours moved this week?",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var topic dto.TopicResponse
	decodeData(t, env, &topic)

	srv := httptest.NewServer(api.router)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/topics/topic_live/live"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": {"Bearer " + login.AccessToken}})
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return api.deps.Hub.ClientCount(topic.ID) == 1 }, time.Second, 10*time.Millisecond)

	rec, _ = alice.do(http.MethodPost, "/api/v1/topics/topic_live/replies", map[string]string{
		"reply_id": "reply_live",
		"text":     "Yes, Thursday instead.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Type  string              `json:"type"`
		Topic int64               `json:"topic"`
		Data  dto.CommentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, "reply.created", event.Type)
	assert.Equal(t, topic.ID, event.Topic)
	assert.Equal(t, "reply_live", event.Data.CommentID)
	assert.Equal(t, "Alice", event.Data.AuthorName)
}
