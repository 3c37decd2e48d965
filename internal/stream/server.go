package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/smoroz/ledfluid/internal/fluid"
	"github.com/smoroz/ledfluid/internal/render"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers connect from a page served elsewhere during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// FrameMessage is one rendered frame pushed to every connected client.
// Levels are ints, not bytes, so rows marshal as json arrays rather than
// base64 strings.
type FrameMessage struct {
	Tick   uint64  `json:"tick"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Levels [][]int `json:"levels"`
	Energy float64 `json:"energy"`
}

// tiltMessage is what clients send to steer the force vector.
type tiltMessage struct {
	TX float64 `json:"tx"`
	TY float64 `json:"ty"`
}

// Server ticks the simulation on its own loop and broadcasts rendered
// frames over websockets. The loop goroutine is the only owner of the
// simulation; client tilt input reaches it through a channel, never by
// touching the simulation directly.
type Server struct {
	sim      *fluid.Simulation
	renderer *render.Renderer
	interval time.Duration
	log      *slog.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}

	tilt chan tiltMessage
}

func NewServer(sim *fluid.Simulation, renderer *render.Renderer, fps int, log *slog.Logger) *Server {
	if fps <= 0 {
		fps = 30
	}
	return &Server{
		sim:      sim,
		renderer: renderer,
		interval: time.Second / time.Duration(fps),
		log:      log,
		conns:    make(map[*websocket.Conn]struct{}),
		tilt:     make(chan tiltMessage, 16),
	}
}

// Handler returns the websocket upgrade endpoint.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Error("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
			return
		}
		s.addConn(conn)
		s.log.Info("client connected", "remote", r.RemoteAddr)
		go s.readLoop(conn)
	})
}

func (s *Server) addConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) dropConn(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}

// readLoop receives tilt messages from one client until it disconnects.
func (s *Server) readLoop(conn *websocket.Conn) {
	defer s.dropConn(conn)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Error("client read failed", "err", err)
			}
			return
		}
		var t tiltMessage
		if err := json.Unmarshal(msg, &t); err != nil {
			s.log.Warn("ignoring malformed tilt message", "err", err)
			continue
		}
		select {
		case s.tilt <- t:
		default:
			// A stale tilt is worthless; drop it rather than block the reader.
		}
	}
}

// Run ticks and broadcasts until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return ctx.Err()
		case t := <-s.tilt:
			s.sim.SetTilt(t.TX, t.TY)
		case <-ticker.C:
			if err := s.sim.Tick(); err != nil {
				return err
			}
			s.broadcast()
		}
	}
}

func (s *Server) broadcast() {
	frame := s.renderer.Render(s.sim)
	msg := FrameMessage{
		Tick:   s.sim.TickCount(),
		Width:  frame.Width,
		Height: frame.Height,
		Levels: make([][]int, frame.Height),
		Energy: s.sim.KineticEnergy(),
	}
	for row := 0; row < frame.Height; row++ {
		msg.Levels[row] = make([]int, frame.Width)
		for col := 0; col < frame.Width; col++ {
			msg.Levels[row][col] = int(frame.At(col, row))
		}
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("marshaling frame", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.log.Warn("dropping client", "err", err)
			delete(s.conns, conn)
			conn.Close()
		}
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
		delete(s.conns, conn)
	}
}

// ListenAndServe runs the tick loop and serves the websocket endpoint on
// addr until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", s.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("streaming frames", "addr", addr, "interval", s.interval)
	if err := s.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	err := <-errc
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
