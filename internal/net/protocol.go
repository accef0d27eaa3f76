package net

import (
	"fmt"

	"github.com/peterkuimelis/vortex/internal/game"
)

// Message types for the JSON protocol over TCP. Each message is one JSON value;
// the stream is newline separated.

// --- Server → Client messages ---

const (
	MsgRoster   = "roster"
	MsgState    = "state"
	MsgEvent    = "event"
	MsgError    = "error"
	MsgGameOver = "game_over"
)

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "event"
	Event *EventView `json:"event,omitempty"`

	// For "state" and "game_over"
	State *StateView `json:"state,omitempty"`

	// For "roster"
	Roster []CharacterView `json:"roster,omitempty"`

	// For "error": the rejected intent and why
	Intent string `json:"intent,omitempty"`
	Error  string `json:"error,omitempty"`

	// For "game_over"
	Winner string `json:"winner,omitempty"`
	Result string `json:"result,omitempty"`
}

// EventView is a simplified game event for the client.
type EventView struct {
	Seq     int    `json:"seq"`
	Round   int    `json:"round"`
	Turn    int    `json:"turn"`
	Phase   string `json:"phase"`
	Player  int    `json:"player"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Amount  int    `json:"amount,omitempty"`
	Details string `json:"details"`
}

// CardView describes a power card.
type CardView struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	Color string `json:"color"`
	Value int    `json:"value"`
}

// AbilityView describes an ability card.
type AbilityView struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Effect   string `json:"effect"`
	Level    int    `json:"level"`
	Affinity string `json:"affinity"`
	Active   bool   `json:"active"`
}

// CharacterView is one roster entry.
type CharacterView struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Affinity        string `json:"affinity"`
	StartingAbility string `json:"starting_ability"`
}

// PendingView is the exchange in flight, as far as the viewer may see it.
type PendingView struct {
	Kind        string    `json:"kind"`
	Attacker    string    `json:"attacker"`
	AttackCard  *CardView `json:"attack_card,omitempty"`
	DefenseCard *CardView `json:"defense_card,omitempty"`
	VortexSlot  *int      `json:"vortex_slot,omitempty"`
	Ability     string    `json:"ability,omitempty"`
	Damage      *int      `json:"damage,omitempty"`
	Target      string    `json:"target,omitempty"`
	Recoil      bool      `json:"recoil,omitempty"`
}

// StateView is the game state from one player's perspective.
type StateView struct {
	MatchID    string       `json:"match_id"`
	You        *PlayerView  `json:"you,omitempty"`
	Opponent   *PlayerView  `json:"opponent,omitempty"`
	Round      int          `json:"round"`
	RoundWins  [2]int       `json:"round_wins"`
	Turn       int          `json:"turn"`
	Phase      string       `json:"phase"`
	Status     string       `json:"status"`
	IsYourTurn bool         `json:"is_your_turn"`
	Vortex     []*CardView  `json:"vortex"`
	DeckCount  int          `json:"deck_count"`
	Discard    int          `json:"discard_count"`
	Abilities  int          `json:"ability_deck_count"`
	Pending    *PendingView `json:"pending,omitempty"`
	Winner     string       `json:"winner,omitempty"`
}

// PlayerView shows one side of the table.
type PlayerView struct {
	Character       CharacterView `json:"character"`
	Life            int           `json:"life"`
	MaxLife         int           `json:"max_life"`
	Level           int           `json:"level"`
	Shield          int           `json:"shield,omitempty"`
	HandCount       int           `json:"hand_count"`
	Hand            []CardView    `json:"hand,omitempty"` // only the viewer's own, unless revealed
	HandSize        int           `json:"max_hand_size"`
	AbilityHand     []AbilityView `json:"ability_hand,omitempty"`
	AbilityCount    int           `json:"ability_hand_count"`
	ActiveAbilities []AbilityView `json:"active_abilities"`
	AttacksLeft     int           `json:"attacks_left"`
}

// --- Client → Server messages ---

const (
	MsgIntent = "intent"
	MsgHello  = "hello"
)

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "intent": the wire name of the intent and its arguments
	Intent      string `json:"intent,omitempty"`
	CardID      int    `json:"card_id,omitempty"`
	CardIDs     []int  `json:"card_ids,omitempty"`
	AbilityID   int    `json:"ability_id,omitempty"`
	Slot        int    `json:"slot,omitempty"`
	ForDefense  bool   `json:"for_defense,omitempty"`
	CharacterID string `json:"character_id,omitempty"`
}

// IntentMessage wraps an engine intent for the wire.
func IntentMessage(in game.Intent) ClientMessage {
	return ClientMessage{
		Type:        MsgIntent,
		Intent:      in.Type.String(),
		CardID:      in.CardID,
		CardIDs:     in.CardIDs,
		AbilityID:   in.AbilityID,
		Slot:        in.Slot,
		ForDefense:  in.ForDefense,
		CharacterID: in.CharacterID,
	}
}

// ToIntent decodes an intent message.
func (m ClientMessage) ToIntent() (game.Intent, error) {
	if m.Type != MsgIntent {
		return game.Intent{}, fmt.Errorf("message type %q is not an intent", m.Type)
	}
	t, ok := game.ParseIntentType(m.Intent)
	if !ok {
		return game.Intent{}, fmt.Errorf("unknown intent %q", m.Intent)
	}
	return game.Intent{
		Type:        t,
		CardID:      m.CardID,
		CardIDs:     m.CardIDs,
		AbilityID:   m.AbilityID,
		Slot:        m.Slot,
		ForDefense:  m.ForDefense,
		CharacterID: m.CharacterID,
	}, nil
}
