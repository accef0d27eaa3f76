package web

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/coder/websocket"

	"github.com/peterkuimelis/vortex/internal/game"
	gamelog "github.com/peterkuimelis/vortex/internal/log"
	"github.com/peterkuimelis/vortex/internal/match"
	vnet "github.com/peterkuimelis/vortex/internal/net"
)

// Server is the Vortex web server. Every websocket gets its own match against
// the AI, spoken over the same JSON protocol as the TCP server.
type Server struct {
	engine game.Config
	roster []game.Character
	mux    *http.ServeMux
}

// NewServer creates a new web server. cfg is the template for every match;
// its Logger is ignored and each match logs to memory.
func NewServer(cfg game.Config) *Server {
	roster := cfg.Roster
	if roster == nil {
		roster = game.DefaultRoster
	}
	s := &Server{
		engine: cfg,
		roster: roster,
		mux:    http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(indexHTML))
	})

	// API endpoints
	s.mux.HandleFunc("GET /api/characters", s.handleCharacters)
	s.mux.HandleFunc("GET /api/abilities", s.handleAbilities)

	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Handler exposes the routes, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func (s *Server) handleCharacters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, vnet.CharacterViews(s.roster))
}

func (s *Server) handleAbilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, abilityCatalog())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		log.Printf("WebSocket accept error: %v", err)
		return
	}
	defer wsConn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	cfg := s.engine
	cfg.Roster = s.roster
	cfg.Logger = gamelog.NewMemoryLogger()
	sess := match.NewSession(game.NewEngine(cfg))
	go sess.Run(ctx)

	conn := websocket.NetConn(ctx, wsConn, websocket.MessageText)
	err = vnet.NewNetworkController(conn, sess).Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, match.ErrClosed) {
		log.Printf("WebSocket session: %v", err)
		wsConn.Close(websocket.StatusInternalError, "session failed")
		return
	}
	wsConn.Close(websocket.StatusNormalClosure, "match ended")
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

// indexHTML is a bare console: it shows server messages and sends intents as JSON.
const indexHTML = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>Vortex</title>
<style>body{font-family:monospace;margin:1em}#log{white-space:pre-wrap;height:70vh;overflow:auto;border:1px solid #999;padding:.5em}</style>
</head>
<body>
<div id="log"></div>
<form id="f"><input id="cmd" size="80" placeholder='{"type":"intent","intent":"start_game"}'> <button>send</button></form>
<script>
const log = document.getElementById("log");
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.onmessage = (m) => {
  const msg = JSON.parse(m.data);
  const line = msg.type === "event" ? msg.event.details : msg.type + " " + JSON.stringify(msg.state || msg.roster || msg.error);
  log.textContent += line + "\n";
  log.scrollTop = log.scrollHeight;
};
document.getElementById("f").onsubmit = (e) => {
  e.preventDefault();
  const cmd = document.getElementById("cmd");
  ws.send(cmd.value);
  cmd.value = "";
};
</script>
</body>
</html>
`
