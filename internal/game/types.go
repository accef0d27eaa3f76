package game

import "fmt"

// --- Enums ---

type Phase int

const (
	PhaseInit Phase = iota
	PhaseCharacterSelect
	PhaseStartGame
	PhaseStartTurn
	PhaseDraw
	PhaseAiTurn
	PhaseMain
	PhaseSelectAttackCard
	PhaseSelectDiscardForAbility
	PhaseSelectDiscardForDraw
	PhaseSelectControlTarget
	PhaseSelectCardsForLevelUp
	PhaseAwaitingAiDefense
	PhaseAwaitingPlayerDefense
	PhaseResolveDirectCombat
	PhaseResolveVortexCombat
	PhaseShowdown
	PhaseRoundTransition
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "Init"
	case PhaseCharacterSelect:
		return "Character Select"
	case PhaseStartGame:
		return "Start Game"
	case PhaseStartTurn:
		return "Start Turn"
	case PhaseDraw:
		return "Draw Phase"
	case PhaseAiTurn:
		return "AI Turn"
	case PhaseMain:
		return "Main Phase"
	case PhaseSelectAttackCard:
		return "Select Attack"
	case PhaseSelectDiscardForAbility:
		return "Pay Ability Cost"
	case PhaseSelectDiscardForDraw:
		return "Pay Ability Draw"
	case PhaseSelectControlTarget:
		return "Select Control Target"
	case PhaseSelectCardsForLevelUp:
		return "Select Level Up"
	case PhaseAwaitingAiDefense:
		return "AI Defending"
	case PhaseAwaitingPlayerDefense:
		return "Your Defense"
	case PhaseResolveDirectCombat:
		return "Direct Combat"
	case PhaseResolveVortexCombat:
		return "Vortex Combat"
	case PhaseShowdown:
		return "Showdown"
	case PhaseRoundTransition:
		return "Round Transition"
	case PhaseGameOver:
		return "Game Over"
	default:
		return "Unknown"
	}
}

// selecting reports whether the phase is one of the cancellable selection phases.
func (p Phase) selecting() bool {
	switch p {
	case PhaseSelectAttackCard, PhaseSelectDiscardForAbility, PhaseSelectDiscardForDraw,
		PhaseSelectControlTarget, PhaseSelectCardsForLevelUp:
		return true
	}
	return false
}

type Status int

const (
	StatusSetup Status = iota
	StatusPlaying
	StatusRoundOver
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusSetup:
		return "setup"
	case StatusPlaying:
		return "playing"
	case StatusRoundOver:
		return "round_over"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

type PlayerID int

const (
	PlayerHuman PlayerID = iota
	PlayerAI
)

func (id PlayerID) String() string {
	if id == PlayerHuman {
		return "PLAYER"
	}
	return "AI"
}

// Other returns the opposing side.
func (id PlayerID) Other() PlayerID {
	return 1 - id
}

type CardType int

const (
	CardATK CardType = iota
	CardDEF
)

func (ct CardType) String() string {
	if ct == CardATK {
		return "ATK"
	}
	return "DEF"
}

type Color int

const (
	ColorBlack Color = iota
	ColorWhite
)

func (c Color) String() string {
	if c == ColorBlack {
		return "BLACK"
	}
	return "WHITE"
}

type Affinity int

const (
	AffinityNeutral Affinity = iota
	AffinityWhite
	AffinityBlack
)

func (a Affinity) String() string {
	switch a {
	case AffinityWhite:
		return "WHITE"
	case AffinityBlack:
		return "BLACK"
	default:
		return "NEUTRAL"
	}
}

// ParseAffinity maps the upper-case name back to an Affinity.
func ParseAffinity(s string) (Affinity, error) {
	switch s {
	case "NEUTRAL":
		return AffinityNeutral, nil
	case "WHITE":
		return AffinityWhite, nil
	case "BLACK":
		return AffinityBlack, nil
	}
	return AffinityNeutral, fmt.Errorf("unknown affinity %q", s)
}

// --- Cards ---

// Card is a power card. Cards are values; mutations replace the card keeping its ID.
type Card struct {
	ID    int
	Type  CardType
	Color Color
	Value int
}

func (c Card) String() string {
	return fmt.Sprintf("%s %s %d", c.Color, c.Type, c.Value)
}

// AbilityCard is a single ability. Effect is the only dispatch key.
type AbilityCard struct {
	ID       int
	Name     string
	Level    int
	Affinity Affinity
	Effect   EffectTag
}

func (a AbilityCard) String() string {
	return a.Name
}

// Character is a roster entry chosen once per match.
type Character struct {
	ID              string
	Name            string
	Affinity        Affinity
	StartingAbility EffectTag
}

func (c Character) String() string {
	return c.Name
}

// --- Pending actions ---

type PendingKind int

const (
	PendingAttack PendingKind = iota
	PendingVortexAttack
	PendingAbilityPayment
	PendingAbilityDraw
	PendingControlTarget
	PendingLevelUp
)

func (k PendingKind) String() string {
	switch k {
	case PendingAttack:
		return "attack"
	case PendingVortexAttack:
		return "vortex_attack"
	case PendingAbilityPayment:
		return "ability_payment"
	case PendingAbilityDraw:
		return "ability_draw"
	case PendingControlTarget:
		return "control_target"
	case PendingLevelUp:
		return "level_up"
	default:
		return "unknown"
	}
}

// PendingAction is the in-flight record between an initiating intent and the
// transition that resolves it.
type PendingAction struct {
	Kind     PendingKind
	Attacker PlayerID
	Target   PlayerID

	// AttackCard has left the attacker's hand once InFlight is set.
	AttackCard  *Card
	DefenseCard *Card
	InFlight    bool

	VortexAttackSlot  *int
	VortexDefenseSlot *int

	Ability      *AbilityCard
	LevelUpCards []int

	// PaidCard has left the owner's hand to pay for a targeted ability but is
	// not discarded until the target is chosen.
	PaidCard *Card

	Result *CombatResult
}

// --- Intents ---

type IntentType int

const (
	IntentStartGame IntentType = iota
	IntentSelectCharacter
	IntentDrawTick
	IntentSelectAttackCard
	IntentConfirmDirectAttack
	IntentChooseDefenseCard
	IntentNoDefense
	IntentChooseVortexSlot
	IntentActivateAbility
	IntentPlayAbilityFromHand
	IntentSelectCardsForLevelUp
	IntentConfirmLevelUp
	IntentDiscardCard
	IntentChooseTargetCard
	IntentDrawAbility
	IntentEndTurn
	IntentCancel
	IntentStartNextRound
)

var intentNames = map[IntentType]string{
	IntentStartGame:             "start_game",
	IntentSelectCharacter:       "select_character",
	IntentDrawTick:              "draw_tick",
	IntentSelectAttackCard:      "select_attack_card",
	IntentConfirmDirectAttack:   "confirm_direct_attack",
	IntentChooseDefenseCard:     "choose_defense_card",
	IntentNoDefense:             "no_defense",
	IntentChooseVortexSlot:      "choose_vortex_slot",
	IntentActivateAbility:       "activate_ability",
	IntentPlayAbilityFromHand:   "play_ability_from_hand",
	IntentSelectCardsForLevelUp: "select_cards_for_level_up",
	IntentConfirmLevelUp:        "confirm_level_up",
	IntentDiscardCard:           "discard_card",
	IntentChooseTargetCard:      "choose_target_card",
	IntentDrawAbility:           "draw_ability",
	IntentEndTurn:               "end_turn",
	IntentCancel:                "cancel",
	IntentStartNextRound:        "start_next_round",
}

func (t IntentType) String() string {
	if s, ok := intentNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseIntentType maps a wire name back to an IntentType.
func ParseIntentType(s string) (IntentType, bool) {
	for t, name := range intentNames {
		if name == s {
			return t, true
		}
	}
	return 0, false
}

// Intent is a user request forwarded by the presentation layer.
type Intent struct {
	Type        IntentType
	CardID      int    // attack/defense/discard/control target card
	CardIDs     []int  // level-up selection
	AbilityID   int    // ability to play or activate
	Slot        int    // vortex slot index (0-3)
	ForDefense  bool   // vortex slot chosen to defend rather than attack
	CharacterID string // character select
}

func (in Intent) String() string {
	return in.Type.String()
}
