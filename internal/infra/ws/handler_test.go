//go:build !integration

package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"docustream/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func newWSTestServer(t *testing.T, grace time.Duration) (*httptest.Server, *Registry) {
	t.Helper()
	logger := zerolog.Nop()
	registry := NewRegistry(grace, &logger)
	t.Cleanup(registry.Shutdown)

	r := chi.NewRouter()
	r.Get("/status/{fileId}", NewHandler(registry, &logger).ServeHTTP)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, registry
}

func dialStatus(t *testing.T, srv *httptest.Server, fileID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/status/" + fileID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) model.StatusFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f model.StatusFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func TestUpgradeSendsConnectedFirst(t *testing.T) {
	srv, _ := newWSTestServer(t, time.Minute)
	conn := dialStatus(t, srv, "abc-123")

	f := readFrame(t, conn)
	if f.Type != model.FrameTypeStatusUpdate || f.Status != model.StatusConnected || f.FileID != "abc-123" {
		t.Fatalf("unexpected first frame: %+v", f)
	}
}

func TestDeliverReachesLiveSocket(t *testing.T) {
	srv, registry := newWSTestServer(t, time.Minute)
	connJ := dialStatus(t, srv, "J")
	connK := dialStatus(t, srv, "K")
	readFrame(t, connJ) // connected
	readFrame(t, connK) // connected

	if err := registry.Deliver("J", model.StatusProcessing, map[string]any{"stage": "chunking"}); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	f := readFrame(t, connJ)
	if f.Status != model.StatusProcessing || f.FileID != "J" {
		t.Fatalf("unexpected frame: %+v", f)
	}
	if f.Metadata["stage"] != "chunking" {
		t.Errorf("metadata = %v", f.Metadata)
	}

	// K must not have received anything beyond its connected frame.
	_ = connK.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var extra model.StatusFrame
	if err := connK.ReadJSON(&extra); err == nil {
		t.Fatalf("K received an unexpected frame: %+v", extra)
	}
}

func TestClientFramesAreIgnored(t *testing.T) {
	srv, registry := newWSTestServer(t, time.Minute)
	conn := dialStatus(t, srv, "job-1")
	readFrame(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("hello?")); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The connection stays registered and usable.
	time.Sleep(50 * time.Millisecond)
	if err := registry.Deliver("job-1", model.StatusPending, nil); err != nil {
		t.Fatalf("Deliver after client frame: %v", err)
	}
	f := readFrame(t, conn)
	if f.Status != model.StatusPending {
		t.Fatalf("unexpected frame: %+v", f)
	}
}

func TestCloseEntersGraceThenRemoval(t *testing.T) {
	srv, registry := newWSTestServer(t, 100*time.Millisecond)
	conn := dialStatus(t, srv, "job-1")
	readFrame(t, conn)

	_ = conn.Close()

	// Within the grace period the record is retained.
	deadline := time.Now().Add(time.Second)
	for registry.Len() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("record disappeared before grace period")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// After it the record is gone.
	deadline = time.Now().Add(2 * time.Second)
	for registry.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("record not removed after grace period")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestReconnectReceivesOnlyConnectedFrame(t *testing.T) {
	srv, registry := newWSTestServer(t, time.Minute)
	first := dialStatus(t, srv, "job-1")
	readFrame(t, first)
	_ = first.Close()

	// Update pushed during the gap is lost by design.
	time.Sleep(50 * time.Millisecond)
	_ = registry.Deliver("job-1", model.StatusProcessing, nil)

	second := dialStatus(t, srv, "job-1")
	f := readFrame(t, second)
	if f.Status != model.StatusConnected {
		t.Fatalf("first frame after reconnect = %q, want connected", f.Status)
	}
	_ = second.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var replay model.StatusFrame
	if err := second.ReadJSON(&replay); err == nil {
		t.Fatalf("gap update was replayed: %+v", replay)
	}
}
