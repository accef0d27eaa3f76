package mcp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/peterkuimelis/vortex/internal/game"
)

// intentFromRequest builds an engine intent from send_intent arguments.
func intentFromRequest(request mcp.CallToolRequest) (game.Intent, error) {
	name := request.GetString("intent", "")
	t, ok := game.ParseIntentType(name)
	if !ok {
		return game.Intent{}, fmt.Errorf("unknown intent %q", name)
	}
	in := game.Intent{
		Type:        t,
		CardID:      request.GetInt("card_id", 0),
		AbilityID:   request.GetInt("ability_id", 0),
		ForDefense:  request.GetBool("for_defense", false),
		CharacterID: request.GetString("character_id", ""),
	}

	slot := request.GetInt("slot", 0)
	if t == game.IntentChooseVortexSlot {
		if slot < 1 || slot > game.VortexSlots {
			return game.Intent{}, fmt.Errorf("slot must be between 1 and %d", game.VortexSlots)
		}
		in.Slot = slot - 1
	}

	ids, err := parseIDs(request.GetString("card_ids", ""))
	if err != nil {
		return game.Intent{}, err
	}
	in.CardIDs = ids
	return in, nil
}

// parseIDs reads space or comma separated card IDs.
func parseIDs(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) == 0 {
		return nil, nil
	}
	ids := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid card id '%s': must be an integer", f)
		}
		ids = append(ids, n)
	}
	return ids, nil
}
