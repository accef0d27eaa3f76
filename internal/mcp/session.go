package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/peterkuimelis/vortex/internal/game"
	"github.com/peterkuimelis/vortex/internal/log"
	"github.com/peterkuimelis/vortex/internal/match"
	vnet "github.com/peterkuimelis/vortex/internal/net"
)

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Events   []*vnet.EventView    `json:"events"`
	State    *vnet.StateView      `json:"state,omitempty"`
	Roster   []vnet.CharacterView `json:"roster,omitempty"`
	Status   string               `json:"status"`
	Waiting  bool                 `json:"waiting_for_you"`
	Error    string               `json:"error,omitempty"`
	GameOver bool                 `json:"game_over"`
	Winner   string               `json:"winner,omitempty"`
}

// GameSession holds the state of a single MCP game session. The caller plays
// the human side; the engine's AI plays the other.
type GameSession struct {
	match  *match.Session
	cancel context.CancelFunc
	done   chan struct{}
}

// NewGameSession creates an engine from cfg and starts its session loop.
func NewGameSession(cfg game.Config) *GameSession {
	if cfg.Logger == nil {
		cfg.Logger = log.NewMemoryLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	gs := &GameSession{
		match:  match.NewSession(game.NewEngine(cfg)),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(gs.done)
		gs.match.Run(ctx)
	}()
	return gs
}

// Close stops the session loop.
func (s *GameSession) Close() {
	s.cancel()
	<-s.done
}

// play submits an intent, waits for the AI and timers to settle, and reports
// what happened. Rejected intents come back in the Error field.
func (s *GameSession) play(ctx context.Context, in game.Intent) (*ToolResponse, error) {
	u, err := s.match.Play(ctx, in)
	if err != nil {
		var re *game.RuleError
		if errors.Is(err, game.ErrIllegalTransition) || errors.As(err, &re) {
			resp := s.snapshot()
			resp.Error = fmt.Sprintf("%s rejected: %v", in, err)
			return resp, nil
		}
		return nil, err
	}
	return buildResponse(u), nil
}

// snapshot reports the latest state without events.
func (s *GameSession) snapshot() *ToolResponse {
	u := s.match.Snapshot()
	u.Events = nil
	return buildResponse(u)
}

func buildResponse(u match.Update) *ToolResponse {
	resp := &ToolResponse{
		Events:  make([]*vnet.EventView, 0, len(u.Events)),
		State:   vnet.BuildStateView(u.State, game.PlayerHuman, u.Status),
		Status:  u.Status,
		Waiting: u.Idle,
	}
	for _, ev := range u.Events {
		resp.Events = append(resp.Events, vnet.NewEventView(ev))
	}
	if u.State.Phase == game.PhaseGameOver {
		resp.GameOver = true
		resp.Winner = resp.State.Winner
	}
	return resp
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
