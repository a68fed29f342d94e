package server_test

import (
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmesh/maestro/internal/server"
	"github.com/workmesh/maestro/pkg/api"
)

type testWebSocketEnv struct {
	*testServerEnv
	HTTP *httptest.Server
	Conn *websocket.Conn
}

const wsReadTimeout = 500 * time.Millisecond

// Subscribe requests are applied by the client goroutine; give it a beat
// before publishing so the filter is in place
const wsSettle = 50 * time.Millisecond

func testWebSocket(t *testing.T) *testWebSocketEnv {
	t.Helper()

	env := testServer(t)
	ts := httptest.NewServer(env.Server.SetupRoutes())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/engine/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &testWebSocketEnv{
		testServerEnv: env,
		HTTP:          ts,
		Conn:          conn,
	}
}

func TestSocketIdle(t *testing.T) {
	env := testWebSocket(t)

	_ = env.Conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := env.Conn.ReadMessage()
	assert.Error(t, err)
}

func TestClientReceivesEvent(t *testing.T) {
	env := testWebSocket(t)
	time.Sleep(wsSettle)

	env.Hub.Publish(
		api.EventTypeRunStarted, "run-1", "plan-1",
		&api.RunStartedEvent{Category: "notify-team", Steps: 1},
	)

	_ = env.Conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	var ev api.Event
	require.NoError(t, env.Conn.ReadJSON(&ev))

	assert.Equal(t, api.EventTypeRunStarted, ev.Type)
	assert.Equal(t, api.RunID("run-1"), ev.RunID)
	assert.Equal(t, api.PlanID("plan-1"), ev.PlanID)
}

func TestSubscribeFiltersByRunID(t *testing.T) {
	env := testWebSocket(t)

	require.NoError(t, env.Conn.WriteJSON(server.SubscribeRequest{
		Type:  "subscribe",
		RunID: "run-wanted",
	}))
	time.Sleep(wsSettle)

	env.Hub.Publish(api.EventTypeRunStarted, "run-other", "plan-1", nil)
	env.Hub.Publish(api.EventTypeRunStarted, "run-wanted", "plan-2", nil)

	_ = env.Conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	var ev api.Event
	require.NoError(t, env.Conn.ReadJSON(&ev))
	assert.Equal(t, api.RunID("run-wanted"), ev.RunID)
}

func TestClientGoroutinesExitOnClose(t *testing.T) {
	env := testServer(t)
	ts := httptest.NewServer(env.Server.SetupRoutes())
	t.Cleanup(ts.Close)

	baseline := runtime.NumGoroutine()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/engine/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	// Flood more frames than the incoming buffer holds, then shut the
	// server side down while some may still be queued; the reader must
	// not stay parked on the channel send
	for range 64 {
		require.NoError(t, conn.WriteMessage(
			websocket.TextMessage, []byte(`{"type":"subscribe"}`),
		))
	}
	env.Server.CloseWebSockets()

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= baseline+2
	}, 2*time.Second, 20*time.Millisecond)
}

func TestMessageInvalid(t *testing.T) {
	env := testWebSocket(t)

	err := env.Conn.WriteMessage(websocket.TextMessage, []byte("invalid json"))
	require.NoError(t, err)
	time.Sleep(wsSettle)

	// A bad message never kills the connection
	env.Hub.Publish(api.EventTypeRunFinished, "run-1", "plan-1", nil)

	_ = env.Conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	var ev api.Event
	require.NoError(t, env.Conn.ReadJSON(&ev))
	assert.Equal(t, api.EventTypeRunFinished, ev.Type)
}
