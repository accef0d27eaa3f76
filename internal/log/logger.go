package log

import (
	"fmt"
	"io"
	"strings"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Since returns the events with a sequence number greater than seq.
func (l *MemoryLogger) Since(seq int) []GameEvent {
	for i, e := range l.events {
		if e.Seq > seq {
			return l.events[i:]
		}
	}
	return nil
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- Formatting ---

// PlayerName returns the display label for a player index.
func PlayerName(p int) string {
	switch p {
	case 0:
		return "You"
	case 1:
		return "AI"
	default:
		return "--"
	}
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	if phase == "" {
		phase = "          "
	}
	// Pad phase to 22 chars for alignment
	for len(phase) < 22 {
		phase += " "
	}

	return fmt.Sprintf("R%d T%-2d %s| %s", e.Round, e.Turn, phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

// Stamp carries the positional context shared by every event.
type Stamp struct {
	Round int
	Turn  int
	Phase string
}

func (s Stamp) event(player int, t EventType) GameEvent {
	return GameEvent{Round: s.Round, Turn: s.Turn, Phase: s.Phase, Player: player, Type: t}
}

func NewPhaseChangeEvent(at Stamp) GameEvent {
	e := at.event(NoPlayer, EventPhaseChange)
	e.Details = fmt.Sprintf("Phase → %s", at.Phase)
	return e
}

func NewCharacterAssignedEvent(at Stamp, player int, character string) GameEvent {
	e := at.event(player, EventCharacterAssigned)
	e.Card = character
	e.Details = fmt.Sprintf("%s plays as %s", PlayerName(player), character)
	return e
}

func NewRoundStartEvent(at Stamp) GameEvent {
	e := at.event(NoPlayer, EventRoundStart)
	e.Amount = at.Round
	e.Details = fmt.Sprintf("=== Round %d ===", at.Round)
	return e
}

func NewTurnEvent(at Stamp, player int) GameEvent {
	e := at.event(player, EventNewTurn)
	e.Amount = at.Turn
	e.Details = fmt.Sprintf("--- Turn %d (%s) ---", at.Turn, PlayerName(player))
	return e
}

func NewDealEvent(at Stamp, player int, count int) GameEvent {
	e := at.event(player, EventDeal)
	e.Amount = count
	e.Details = fmt.Sprintf("%s is dealt %d cards", PlayerName(player), count)
	return e
}

func NewDrawEvent(at Stamp, player int, count int) GameEvent {
	e := at.event(player, EventDraw)
	e.Amount = count
	e.Details = fmt.Sprintf("%s draws %d card(s)", PlayerName(player), count)
	return e
}

func NewReshuffleEvent(at Stamp, count int) GameEvent {
	e := at.event(NoPlayer, EventReshuffle)
	e.Amount = count
	e.Details = fmt.Sprintf("Discard pile (%d cards) shuffled back into the deck", count)
	return e
}

func NewVortexFillEvent(at Stamp, slot int, card string) GameEvent {
	e := at.event(NoPlayer, EventVortexFill)
	e.Card = card
	e.Amount = slot
	e.Details = fmt.Sprintf("Vortex slot %d ← %s", slot+1, card)
	return e
}

func NewAttackDeclareEvent(at Stamp, player int, card string) GameEvent {
	e := at.event(player, EventAttackDeclare)
	e.Card = card
	e.Details = fmt.Sprintf("%s attacks with %s", PlayerName(player), card)
	return e
}

func NewVortexAttackDeclareEvent(at Stamp, player int, card string, slot int, vortexCard string) GameEvent {
	e := at.event(player, EventVortexAttackDeclare)
	e.Card = card
	e.Amount = slot
	e.Details = fmt.Sprintf("%s attacks with %s through Vortex slot %d (%s)", PlayerName(player), card, slot+1, vortexCard)
	return e
}

func NewDefendEvent(at Stamp, player int, card string) GameEvent {
	e := at.event(player, EventDefend)
	e.Card = card
	e.Details = fmt.Sprintf("%s defends with %s", PlayerName(player), card)
	return e
}

func NewVortexDefendEvent(at Stamp, player int, slot int, card string) GameEvent {
	e := at.event(player, EventVortexDefend)
	e.Card = card
	e.Amount = slot
	e.Details = fmt.Sprintf("%s defends through Vortex slot %d (%s)", PlayerName(player), slot+1, card)
	return e
}

func NewNoDefenseEvent(at Stamp, player int) GameEvent {
	e := at.event(player, EventNoDefense)
	e.Details = fmt.Sprintf("%s does not defend", PlayerName(player))
	return e
}

func NewDamageCalcEvent(at Stamp, player int, raw int, details string) GameEvent {
	e := at.event(player, EventDamageCalc)
	e.Amount = raw
	e.Details = details
	return e
}

func NewDamageEvent(at Stamp, target int, amount, oldLife, newLife int) GameEvent {
	e := at.event(target, EventDamage)
	e.Amount = amount
	e.Details = fmt.Sprintf("%s takes %d damage (life %d → %d)", PlayerName(target), amount, oldLife, newLife)
	return e
}

func NewRecoilEvent(at Stamp, attacker int, amount, oldLife, newLife int) GameEvent {
	e := at.event(attacker, EventRecoil)
	e.Amount = amount
	e.Details = fmt.Sprintf("Instability! %s takes %d recoil (life %d → %d)", PlayerName(attacker), amount, oldLife, newLife)
	return e
}

func NewBlockedEvent(at Stamp, defender int) GameEvent {
	e := at.event(defender, EventBlocked)
	e.Details = fmt.Sprintf("%s blocks the attack exactly", PlayerName(defender))
	return e
}

func NewShieldAbsorbEvent(at Stamp, player int, absorbed, remaining int) GameEvent {
	e := at.event(player, EventShieldAbsorb)
	e.Amount = absorbed
	e.Details = fmt.Sprintf("%s's shield absorbs %d (%d left)", PlayerName(player), absorbed, remaining)
	return e
}

func NewShieldBrokenEvent(at Stamp, player int) GameEvent {
	e := at.event(player, EventShieldBroken)
	e.Details = fmt.Sprintf("%s's shield breaks", PlayerName(player))
	return e
}

func NewShieldCastEvent(at Stamp, player int, value int) GameEvent {
	e := at.event(player, EventShieldCast)
	e.Amount = value
	e.Details = fmt.Sprintf("%s raises a shield of %d", PlayerName(player), value)
	return e
}

func NewHealEvent(at Stamp, player int, amount, oldLife, newLife int, source string) GameEvent {
	e := at.event(player, EventHeal)
	e.Card = source
	e.Amount = amount
	e.Details = fmt.Sprintf("%s heals %d via %s (life %d → %d)", PlayerName(player), amount, source, oldLife, newLife)
	return e
}

func NewDiscardEvent(at Stamp, player int, card string, reason string) GameEvent {
	e := at.event(player, EventDiscard)
	e.Card = card
	e.Details = fmt.Sprintf("%s discards %s (%s)", PlayerName(player), card, reason)
	return e
}

func NewLevelUpEvent(at Stamp, player int, level int, cards []string) GameEvent {
	e := at.event(player, EventLevelUp)
	e.Amount = level
	e.Details = fmt.Sprintf("%s reaches level %d (spent: %s)", PlayerName(player), level, strings.Join(cards, ", "))
	return e
}

func NewAbilityDrawEvent(at Stamp, player int, ability string) GameEvent {
	e := at.event(player, EventAbilityDraw)
	e.Card = ability
	e.Details = fmt.Sprintf("%s draws ability %s", PlayerName(player), ability)
	return e
}

func NewAbilityPlayEvent(at Stamp, player int, ability string) GameEvent {
	e := at.event(player, EventAbilityPlay)
	e.Card = ability
	e.Details = fmt.Sprintf("%s puts %s into play", PlayerName(player), ability)
	return e
}

func NewAbilityActivateEvent(at Stamp, player int, ability string, paid string) GameEvent {
	e := at.event(player, EventAbilityActivate)
	e.Card = ability
	e.Details = fmt.Sprintf("%s activates %s (paid %s)", PlayerName(player), ability, paid)
	return e
}

func NewHandRevealEvent(at Stamp, player int) GameEvent {
	e := at.event(player, EventHandReveal)
	e.Details = fmt.Sprintf("%s sees the opponent's hand", PlayerName(player))
	return e
}

func NewForcedDiscardEvent(at Stamp, player int, card string) GameEvent {
	e := at.event(player, EventForcedDiscard)
	e.Card = card
	e.Details = fmt.Sprintf("%s is forced to discard %s", PlayerName(player), card)
	return e
}

func NewCardMutateEvent(at Stamp, player int, from, to string) GameEvent {
	e := at.event(player, EventCardMutate)
	e.Card = to
	e.Details = fmt.Sprintf("%s transforms %s into %s", PlayerName(player), from, to)
	return e
}

func NewRoundWinEvent(at Stamp, winner int) GameEvent {
	e := at.event(winner, EventRoundWin)
	e.Amount = at.Round
	e.Details = fmt.Sprintf("%s wins round %d", PlayerName(winner), at.Round)
	return e
}

func NewWinEvent(at Stamp, winner int, reason string) GameEvent {
	e := at.event(winner, EventWin)
	e.Details = fmt.Sprintf("%s wins the match! (%s)", PlayerName(winner), reason)
	return e
}

func NewRecoveredEvent(at Stamp, reason string) GameEvent {
	e := at.event(NoPlayer, EventRecovered)
	e.Details = fmt.Sprintf("Aborted pending action (%s)", reason)
	return e
}
