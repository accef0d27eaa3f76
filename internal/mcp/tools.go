package mcp

import (
	"context"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/vortex/internal/game"
	vnet "github.com/peterkuimelis/vortex/internal/net"
)

// Tools serves one game at a time to an MCP client.
type Tools struct {
	cfg game.Config

	mu     sync.Mutex
	active *GameSession
}

// NewTools creates the tool set. cfg is the template for every new match.
func NewTools(cfg game.Config) *Tools {
	return &Tools{cfg: cfg}
}

// RegisterTools adds all game tools to the MCP server.
func (t *Tools) RegisterTools(s *server.MCPServer) {
	s.AddTool(startGameTool(), t.handleStartGame)
	s.AddTool(selectCharacterTool(), t.handleSelectCharacter)
	s.AddTool(sendIntentTool(), t.handleSendIntent)
	s.AddTool(getGameStateTool(), t.handleGetGameState)
}

// Close ends the running game, if any.
func (t *Tools) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active != nil {
		t.active.Close()
		t.active = nil
	}
}

// --- Tool definitions ---

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Start a new Vortex match against the AI. Ends any match in progress. "+
			"Returns the character roster; pick one with select_character."),
	)
}

func selectCharacterTool() mcp.Tool {
	return mcp.NewTool("select_character",
		mcp.WithDescription("Choose your character. The AI gets a random character with a different starting ability. "+
			"Returns the state at the start of your first turn."),
		mcp.WithString("character_id", mcp.Required(), mcp.Description("Character id from the roster, e.g. 'sable'")),
	)
}

func sendIntentTool() mcp.Tool {
	intents := make([]string, 0, int(game.IntentStartNextRound)+1)
	for it := game.IntentStartGame; it <= game.IntentStartNextRound; it++ {
		intents = append(intents, it.String())
	}
	return mcp.NewTool("send_intent",
		mcp.WithDescription("Send one intent to the engine, then wait until the AI and any timed steps have finished. "+
			"Rejected intents leave the game unchanged and are reported in the 'error' field. "+
			"Valid intents: "+strings.Join(intents, ", ")+"."),
		mcp.WithString("intent", mcp.Required(), mcp.Description("Intent name, e.g. 'select_attack_card'")),
		mcp.WithNumber("card_id", mcp.Description("Power card id for attack, defense, discard and control target")),
		mcp.WithString("card_ids", mcp.Description("Space-separated power card ids for select_cards_for_level_up")),
		mcp.WithNumber("ability_id", mcp.Description("Ability id for activate_ability and play_ability_from_hand")),
		mcp.WithNumber("slot", mcp.Description("Vortex slot 1-4 for choose_vortex_slot")),
		mcp.WithBoolean("for_defense", mcp.Description("With choose_vortex_slot: defend through the slot instead of attacking")),
		mcp.WithString("character_id", mcp.Description("Character id for select_character")),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current game state from your side of the table without changing it. Read-only."),
	)
}

// --- Tool handlers ---

func (t *Tools) session() *GameSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Tools) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.Close()
	sess := NewGameSession(t.cfg)
	t.mu.Lock()
	t.active = sess
	t.mu.Unlock()

	resp, err := sess.play(ctx, game.Intent{Type: game.IntentStartGame})
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}
	resp.Roster = vnet.CharacterViews(sess.match.Roster())
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleSelectCharacter(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := t.session()
	if sess == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	id := request.GetString("character_id", "")
	if id == "" {
		return mcp.NewToolResultError("character_id is required"), nil
	}
	resp, err := sess.play(ctx, game.Intent{Type: game.IntentSelectCharacter, CharacterID: id})
	if err != nil {
		return mcp.NewToolResultErrorf("Error selecting character: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleSendIntent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := t.session()
	if sess == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	in, err := intentFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resp, err := sess.play(ctx, in)
	if err != nil {
		return mcp.NewToolResultErrorf("Error sending intent: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := t.session()
	if sess == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	return mcp.NewToolResultText(respondJSON(sess.snapshot())), nil
}
