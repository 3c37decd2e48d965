package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/smoroz/ledfluid/internal/config"
	"github.com/smoroz/ledfluid/internal/fluid"
	"github.com/smoroz/ledfluid/internal/render"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	sim, err := fluid.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	r := render.NewRenderer(cfg.DisplayWidth, cfg.DisplayHeight, render.ModeOccupancy)
	log := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	return NewServer(sim, r, 100, log)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func TestServerBroadcastsFrames(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}

	var msg FrameMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("frame payload not json: %v", err)
	}
	if msg.Width != 5 || msg.Height != 5 || len(msg.Levels) != 5 {
		t.Errorf("frame dimensions %dx%d with %d rows, want 5x5", msg.Width, msg.Height, len(msg.Levels))
	}
	if msg.Tick == 0 {
		t.Error("frame carries tick 0, want a ticked simulation")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("tick loop did not stop on cancel")
	}
}

func TestServerAppliesClientTilt(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(tiltMessage{TX: 1, TY: 0}); err != nil {
		t.Fatal(err)
	}

	// The loop applies the tilt between ticks; watch the stream until the
	// fluid visibly drifts right or we run out of frames.
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	start := frameCenterX(t, conn)
	for i := 0; i < 200; i++ {
		if frameCenterX(t, conn) > start {
			return
		}
	}
	t.Error("fluid never drifted toward the tilt")
}

func frameCenterX(t *testing.T, conn *websocket.Conn) float64 {
	t.Helper()
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var msg FrameMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatal(err)
	}
	var sum, weight float64
	for _, row := range msg.Levels {
		for col, level := range row {
			if level > 0 {
				sum += float64(col)
				weight++
			}
		}
	}
	if weight == 0 {
		return 0
	}
	return sum / weight
}
