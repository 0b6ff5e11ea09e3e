package dashboard

// server.go — the operator dashboard: a small HTTP API plus a websocket
// fan-out. Implements both sides of the engine's control surface:
// ports.ControlPlane (toggles, stop, cancel-all) and ports.Broadcaster
// (stats and log frames to connected clients).
//
// This is the only component that mutates control state concurrently with
// the engine; all shared state here sits behind one mutex and the engine
// reads it through the ControlPlane methods only.

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jfortea/floorbot/internal/domain"
	"github.com/jfortea/floorbot/internal/ports"
)

// Server hosts the dashboard API and websocket hub.
type Server struct {
	mu      sync.Mutex
	toggles domain.Toggles
	stop    bool
	cancel  bool

	ledger ports.Ledger

	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader

	httpSrv *http.Server
}

// NewServer creates the dashboard bound to addr. Harvest starts disabled;
// the other features start enabled.
func NewServer(addr string, ledger ports.Ledger) *Server {
	s := &Server{
		toggles: domain.Toggles{Bidding: true, Sniper: true, Volume: true},
		ledger:  ledger,
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves the dashboard in the background.
func (s *Server) Start() {
	go func() {
		slog.Info("dashboard listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("dashboard server failed", "err", err)
		}
	}()
}

// Shutdown stops the HTTP server and closes all websocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for c := range s.clients {
		c.Close()
	}
	s.clients = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()
	return s.httpSrv.Shutdown(ctx)
}

// Routes returns the dashboard's HTTP handler.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/stop", s.handleStop)
	mux.HandleFunc("POST /api/cancel-offers", s.handleCancelOffers)
	mux.HandleFunc("POST /api/toggle-offers", s.toggleHandler("Place offers", func(t *domain.Toggles, v bool) { t.Bidding = v }))
	mux.HandleFunc("POST /api/toggle-harvest", s.toggleHandler("Harvest listing", func(t *domain.Toggles, v bool) { t.Harvest = v }))
	mux.HandleFunc("POST /api/toggle-sniper", s.toggleHandler("Sniper", func(t *domain.Toggles, v bool) { t.Sniper = v }))
	mux.HandleFunc("POST /api/toggle-volume", s.toggleHandler("Volume trading", func(t *domain.Toggles, v bool) { t.Volume = v }))
	mux.HandleFunc("GET /api/trades", s.handleTrades)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

// --- ports.ControlPlane ---

// Toggles returns the current feature-toggle state.
func (s *Server) Toggles() domain.Toggles {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toggles
}

// StopRequested reports whether an operator asked the bot to stop.
func (s *Server) StopRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop
}

// TakeCancelRequest consumes the one-shot cancel-all request.
func (s *Server) TakeCancelRequest() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel {
		s.cancel = false
		return true
	}
	return false
}

// --- ports.Broadcaster ---

type statsFrame struct {
	Type           string  `json:"type"`
	Floor          float64 `json:"floor"`
	BestOffer      float64 `json:"best_offer"`
	YourOffer      float64 `json:"your_offer"`
	OurBest        bool    `json:"our_best"`
	WrappedBalance float64 `json:"wrapped_balance"`
	NativeSymbol   string  `json:"native_symbol"`
	WrappedSymbol  string  `json:"wrapped_symbol"`
}

type logFrame struct {
	Type    string `json:"type"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Stats broadcasts the cycle snapshot to all connected clients.
func (s *Server) Stats(st domain.Stats) {
	s.broadcast(statsFrame{
		Type:           "stats",
		Floor:          st.Floor,
		BestOffer:      st.BestOffer,
		YourOffer:      st.YourOffer,
		OurBest:        st.OurBest,
		WrappedBalance: st.WrappedBalance,
		NativeSymbol:   st.NativeSymbol,
		WrappedSymbol:  st.WrappedSymbol,
	})
}

// Log broadcasts a discrete action log line.
func (s *Server) Log(level, message string) {
	s.broadcast(logFrame{Type: "log", Level: level, Message: message})
}

func (s *Server) broadcast(frame any) {
	msg, err := json.Marshal(frame)
	if err != nil {
		slog.Warn("dashboard: marshal frame failed", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.Close()
			delete(s.clients, c)
		}
	}
}

// --- HTTP handlers ---

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.stop = true
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "Bot stopping..."})
}

func (s *Server) handleCancelOffers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.cancel = true
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "Canceling all offers..."})
	s.Log("info", "Cancel request received")
}

type toggleRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) toggleHandler(name string, apply func(*domain.Toggles, bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req toggleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, apiResponse{Error: "invalid body"})
			return
		}

		s.mu.Lock()
		apply(&s.toggles, req.Enabled)
		s.mu.Unlock()

		state := "disabled"
		if req.Enabled {
			state = "enabled"
		}
		slog.Info("toggle changed", "feature", name, "enabled", req.Enabled)
		writeJSON(w, http.StatusOK, apiResponse{
			Success: true,
			Enabled: &req.Enabled,
			Message: name + " " + state,
		})
	}
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	positions, err := s.ledger.All(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiResponse{Error: "failed to fetch trades"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"trades":  positions,
	})
}

// handleWS upgrades the connection and serves it until the client leaves.
// Inbound frames may flip toggles, mirroring the HTTP endpoints.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("dashboard: websocket upgrade failed", "err", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()
	slog.Info("dashboard client connected", "remote", conn.RemoteAddr())

	go s.readLoop(conn)
}

type inboundFrame struct {
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
}

func (s *Server) readLoop(conn *websocket.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
		slog.Info("dashboard client disconnected", "remote", conn.RemoteAddr())
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(msg, &frame); err != nil {
			continue // ignore invalid frames
		}

		s.mu.Lock()
		switch frame.Type {
		case "toggle-offers":
			s.toggles.Bidding = frame.Enabled
		case "toggle-harvest":
			s.toggles.Harvest = frame.Enabled
		case "toggle-sniper":
			s.toggles.Sniper = frame.Enabled
		case "toggle-volume":
			s.toggles.Volume = frame.Enabled
		}
		s.mu.Unlock()
	}
}
