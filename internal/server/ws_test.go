package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/ayusman/mapreader/internal/app"
	"github.com/ayusman/mapreader/internal/locator"
	"github.com/ayusman/mapreader/internal/store"
)

// dialLive connects a websocket client to the handler at path and waits until
// it is registered.
func dialLive(t *testing.T, ts *httptest.Server, path string, registered func() int) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for registered() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was not registered")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return conn
}

func readLive(t *testing.T, conn *websocket.Conn) LiveMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}

	var msg LiveMessage
	if err := sonic.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	return msg
}

func TestLiveHandler_Broadcast(t *testing.T) {
	h := NewLiveHandler()
	ts := httptest.NewServer(h)
	defer ts.Close()

	conn := dialLive(t, ts, "/", h.Count)

	h.Broadcast(&store.Reading{ID: "r-1", Source: "a.png", Status: store.StatusOK, Bearing: 45})

	msg := readLive(t, conn)
	if msg.Type != "ok" {
		t.Errorf("expected type 'ok', got %q", msg.Type)
	}
	if msg.Reading == nil || msg.Reading.ID != "r-1" || msg.Reading.Bearing != 45 {
		t.Errorf("unexpected reading %+v", msg.Reading)
	}
	if msg.Timestamp == 0 {
		t.Error("expected timestamp")
	}
}

func TestLiveHandler_Unregisters(t *testing.T) {
	h := NewLiveHandler()
	ts := httptest.NewServer(h)
	defer ts.Close()

	conn := dialLive(t, ts, "/", h.Count)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 0 clients after close, got %d", h.Count())
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Broadcasting with no clients is a no-op.
	h.Broadcast(&store.Reading{ID: "r-2", Status: store.StatusFailed})
}

func TestServer_LiveReadings(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mock := locator.NewMockLocator()
	a := app.New(app.Config{
		Pipeline:   locator.DefaultConfig(),
		NewLocator: func(locator.Config) locator.Locator { return mock },
	})
	srv := New(Config{App: a})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.Close()

	conn := dialLive(t, ts, "/api/live", srv.live.Count)

	img := gocv.NewMat()
	defer img.Close()
	if _, err := a.Process(context.Background(), "north.png", img); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	msg := readLive(t, conn)
	if msg.Reading == nil || msg.Reading.Source != "north.png" || msg.Type != "ok" {
		t.Errorf("unexpected live message %+v", msg)
	}
}
