package websocket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/pairchat/internal/pairing"
	"github.com/nfrund/pairchat/internal/pubsub"
	"github.com/nfrund/pairchat/internal/topicmgr"
	ws "github.com/nfrund/pairchat/internal/websocket"
)

// mockPublisher records published messages.
type mockPublisher struct {
	mu       sync.Mutex
	messages []pubsub.Message
}

func (m *mockPublisher) Publish(_ context.Context, msg pubsub.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		out = append(out, msg.Topic)
	}
	return out
}

type testFixture struct {
	engine  *pairing.Engine
	handler *ws.Handler
	pub     *mockPublisher
	server  *httptest.Server
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	pub := &mockPublisher{}
	engine := pairing.NewEngine()
	handler := ws.NewHandler(engine, pub, ws.DefaultOptions())

	e := echo.New()
	e.GET("/ws/chat/:problem_id", handler.Chat)
	server := httptest.NewServer(e)

	t.Cleanup(func() {
		handler.Close()
		server.Close()
	})
	return &testFixture{engine: engine, handler: handler, pub: pub, server: server}
}

func dial(t *testing.T, server *httptest.Server, problemID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat/" + problemID
	conn, resp, err := websocket.Dial(context.Background(), wsURL, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() {
		conn.CloseNow()
	})
	return conn
}

// readUntil reads frames until one satisfies match or the timeout passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(map[string]any) bool) map[string]any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var frame map[string]any
		require.NoError(t, json.Unmarshal(data, &frame))
		if match(frame) {
			return frame
		}
	}
}

func chatFrom(username, message string) func(map[string]any) bool {
	return func(f map[string]any) bool {
		return f["username"] == username && f["message"] == message
	}
}

func countOf(n float64) func(map[string]any) bool {
	return func(f map[string]any) bool {
		return f["type"] == pairing.CountUpdateType && f["count"] == n
	}
}

func send(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(payload)))
}

func TestHandler_PairAndRelay(t *testing.T) {
	f := setupTestFixture(t)

	a := dial(t, f.server, "two-sum")
	readUntil(t, a, chatFrom(pairing.SystemUsername, pairing.NoticeSearching))

	b := dial(t, f.server, "two-sum")
	readUntil(t, a, chatFrom(pairing.SystemUsername, pairing.NoticeMatched))
	readUntil(t, b, chatFrom(pairing.SystemUsername, pairing.NoticeMatched))
	readUntil(t, b, countOf(2))

	send(t, a, `{"message":"hello"}`)
	readUntil(t, b, chatFrom(string(pairing.RoleInitiator), "hello"))
	readUntil(t, a, chatFrom(string(pairing.RoleInitiator), "hello"))

	send(t, b, `{"message":"hi"}`)
	readUntil(t, a, chatFrom(string(pairing.RoleResponder), "hi"))
}

func TestHandler_MalformedFrameKeepsConnection(t *testing.T) {
	f := setupTestFixture(t)

	a := dial(t, f.server, "p1")
	readUntil(t, a, chatFrom(pairing.SystemUsername, pairing.NoticeSearching))

	send(t, a, `not json`)
	send(t, a, `{"message":"still here"}`)
	readUntil(t, a, chatFrom(string(pairing.RoleInitiator), "still here"))
}

func TestHandler_DisconnectNotifiesPartner(t *testing.T) {
	f := setupTestFixture(t)

	a := dial(t, f.server, "p1")
	readUntil(t, a, chatFrom(pairing.SystemUsername, pairing.NoticeSearching))
	b := dial(t, f.server, "p1")
	readUntil(t, a, chatFrom(pairing.SystemUsername, pairing.NoticeMatched))
	readUntil(t, b, chatFrom(pairing.SystemUsername, pairing.NoticeMatched))

	require.NoError(t, b.Close(websocket.StatusNormalClosure, "bye"))

	readUntil(t, a, chatFrom(pairing.SystemUsername, pairing.NoticePartnerLeft))
	readUntil(t, a, countOf(1))

	assert.Eventually(t, func() bool {
		return f.engine.Snapshot("p1").Active == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{
			ws.TopicClientReady.Name(),
			ws.TopicClientReady.Name(),
			ws.TopicClientDisconnected.Name(),
		}, f.pub.topics())
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_CloseEndsConnections(t *testing.T) {
	f := setupTestFixture(t)

	a := dial(t, f.server, "p1")
	readUntil(t, a, chatFrom(pairing.SystemUsername, pairing.NoticeSearching))

	f.handler.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for {
		if _, _, err := a.Read(ctx); err != nil {
			break
		}
	}
	assert.Eventually(t, func() bool {
		return !f.engine.Snapshot("p1").HasCount
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_RejectsForeignOrigin(t *testing.T) {
	engine := pairing.NewEngine()
	handler := ws.NewHandler(engine, nil, ws.Options{AllowedOrigins: []string{"chat.example.com"}})
	e := echo.New()
	e.GET("/ws/chat/:problem_id", handler.Chat)
	server := httptest.NewServer(e)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat/p1"
	_, resp, err := websocket.Dial(context.Background(), wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"https://evil.example.org"}},
	})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, engine.Snapshot("p1").HasCount)
}

func TestRegisterTopicsWithManager_Idempotent(t *testing.T) {
	manager := topicmgr.NewManager()

	require.NoError(t, ws.RegisterTopicsWithManager(manager))
	require.NoError(t, ws.RegisterTopicsWithManager(manager))

	framework := manager.ListByScope(topicmgr.ScopeFramework)
	require.Len(t, framework, 2)
	for _, topic := range framework {
		assert.Empty(t, topic.Module(), "framework topics carry no module")
	}
}
