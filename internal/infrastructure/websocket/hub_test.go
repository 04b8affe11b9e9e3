package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/encuestaia/backend/internal/domain/events"
	"github.com/encuestaia/backend/internal/infrastructure/config"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestHub_BroadcastToSession(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	a := NewConnection("s-1")
	b := NewConnection("s-2")
	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))
	require.Eventually(t, func() bool { return hub.Count("s-1") == 1 && hub.Count("s-2") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.BroadcastToSession("s-1", map[string]string{"hello": "world"}))

	select {
	case msg := <-a.Send:
		assert.JSONEq(t, `{"hello":"world"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
	select {
	case <-b.Send:
		t.Fatal("other session must not receive the message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesConnection(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	conn := NewConnection("s-1")
	hub.Register(conn)
	hub.Unregister(conn)

	_, ok := <-conn.Send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Count("s-1"))

	// 重复注销不应 panic
	hub.Unregister(conn)
}

func TestHub_StopClosesAll(t *testing.T) {
	hub := NewHub()
	hub.Start()

	conn := NewConnection("s-1")
	hub.Register(conn)
	hub.Stop()

	_, ok := <-conn.Send
	assert.False(t, ok)
	assert.False(t, hub.Register(NewConnection("s-2")))
	hub.Stop()
}

func TestHub_HandleEvent(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	conn := NewConnection("s-1")
	hub.Register(conn)
	require.Eventually(t, func() bool { return hub.Count("s-1") == 1 }, time.Second, 10*time.Millisecond)

	now := time.UnixMilli(1700000000000)
	err := hub.HandleEvent(&events.SurveyEvent{
		EventType: events.SurveyFinished,
		SessionID: "s-1",
		Stage:     "report",
		Progress:  100,
		EventTime: now,
	})
	require.NoError(t, err)

	msg := <-conn.Send
	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	assert.Equal(t, events.SurveyFinished, env.Type)
	assert.Equal(t, "report", env.Stage)
	assert.Equal(t, 100, env.Progress)
	assert.Equal(t, now.UnixMilli(), env.Timestamp)

	// 其他事件类型被忽略
	assert.NoError(t, hub.HandleEvent(&events.CatalogFileEvent{EventType: events.CatalogFileChanged}))
}

func TestServer_ServeSession(t *testing.T) {
	hub := NewHub()
	hub.Start()
	defer hub.Stop()

	srv := NewServer(hub, &config.WebSocketConfig{ReadBufferSize: 1024, WriteBufferSize: 1024})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = srv.ServeSession(w, r, r.URL.Query().Get("session"))
	}))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "?session=s-9"
	client, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool { return hub.Count("s-9") == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, hub.BroadcastToSession("s-9", map[string]int{"progress": 50}))

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"progress":50}`, string(data))

	require.NoError(t, client.Close())
	require.Eventually(t, func() bool { return hub.Count("s-9") == 0 }, time.Second, 10*time.Millisecond)
}
