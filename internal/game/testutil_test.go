package game

import (
	"errors"
	"testing"

	"github.com/peterkuimelis/vortex/internal/log"
)

const testSeed = 42

// newTestEngine creates an engine with a fixed seed and an in-memory log.
func newTestEngine(t *testing.T) (*Engine, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	e := NewEngine(Config{Seed: testSeed, Logger: logger})
	return e, logger
}

// startMatch runs start and character select and settles into the human's
// first main phase.
func startMatch(t *testing.T, e *Engine, characterID string) {
	t.Helper()
	mustDispatch(t, e, Intent{Type: IntentStartGame})
	mustDispatch(t, e, Intent{Type: IntentSelectCharacter, CharacterID: characterID})
	settleEngine(t, e)
	if e.Phase() != PhaseMain {
		t.Fatalf("expected Main Phase after setup, got %s", e.Phase())
	}
}

func mustDispatch(t *testing.T, e *Engine, in Intent) {
	t.Helper()
	if err := e.Dispatch(in); err != nil {
		t.Fatalf("dispatch %s in %s: %v", in, e.Phase(), err)
	}
}

// settleEngine fires pending continuations until the engine waits on an intent.
func settleEngine(t *testing.T, e *Engine) {
	t.Helper()
	for i := 0; i < 500; i++ {
		c, ok := e.Pending()
		if !ok {
			return
		}
		if !e.Fire(c) {
			t.Fatalf("pending continuation %s was rejected", c.Step)
		}
	}
	t.Fatalf("engine did not settle (phase %s)", e.Phase())
}

// fireUntil fires continuations until the engine reaches phase.
func fireUntil(t *testing.T, e *Engine, phase Phase) {
	t.Helper()
	for i := 0; i < 500 && e.Phase() != phase; i++ {
		c, ok := e.Pending()
		if !ok {
			t.Fatalf("engine stopped in %s before reaching %s", e.Phase(), phase)
		}
		e.Fire(c)
	}
	if e.Phase() != phase {
		t.Fatalf("engine never reached %s", phase)
	}
}

// rigged tracks hands a test has set up, so later rigging never steals from them.
var rigged = map[*Engine]map[PlayerID]bool{}

// rigHand replaces the player's hand with cards matching specs and returns the
// chosen cards. The old hand goes back to the deck; card conservation is
// preserved. IDs in specs are ignored.
func rigHand(t *testing.T, e *Engine, id PlayerID, specs ...Card) []Card {
	t.Helper()
	gs := e.gs
	p := gs.Player(id)
	gs.PowerDeck = append(gs.PowerDeck, p.PowerHand...)
	p.PowerHand = nil
	if rigged[e] == nil {
		rigged[e] = make(map[PlayerID]bool)
	}
	rigged[e][id] = true
	for _, spec := range specs {
		p.PowerHand = append(p.PowerHand, takeFree(t, e, spec))
	}
	return append([]Card(nil), p.PowerHand...)
}

// rigVortex swaps the card in a Vortex slot for one matching spec.
func rigVortex(t *testing.T, e *Engine, slot int, spec Card) Card {
	t.Helper()
	gs := e.gs
	if old := gs.Vortex[slot]; old != nil {
		gs.PowerDeck = append(gs.PowerDeck, *old)
		gs.Vortex[slot] = nil
	}
	c := takeFree(t, e, spec)
	gs.Vortex[slot] = &c
	return c
}

// takeFree removes a card matching spec from the deck, the discard pile, the
// Vortex or an unrigged hand. Cards taken from the Vortex or a hand are
// replaced from the deck.
func takeFree(t *testing.T, e *Engine, spec Card) Card {
	t.Helper()
	gs := e.gs
	if c, ok := takeMatching(&gs.PowerDeck, spec); ok {
		return c
	}
	if c, ok := takeMatching(&gs.Discard, spec); ok {
		return c
	}
	for i, v := range gs.Vortex {
		if v != nil && matches(*v, spec) {
			c := *v
			r, _ := gs.popDeck()
			gs.Vortex[i] = &r
			return c
		}
	}
	for _, p := range gs.Players {
		if rigged[e][p.ID] {
			continue
		}
		for i, c := range p.PowerHand {
			if matches(c, spec) {
				r, _ := gs.popDeck()
				p.PowerHand[i] = r
				return c
			}
		}
	}
	t.Fatalf("no free card matching %s", spec)
	return Card{}
}

func matches(c, spec Card) bool {
	return c.Type == spec.Type && c.Color == spec.Color && c.Value == spec.Value
}

func takeMatching(pile *[]Card, spec Card) (Card, bool) {
	for i, c := range *pile {
		if matches(c, spec) {
			*pile = append((*pile)[:i:i], (*pile)[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}

// grant puts an ability into play for the player, pulling it from the deck if
// it is there.
func grant(e *Engine, id PlayerID, tag EffectTag) AbilityCard {
	gs := e.gs
	p := gs.Player(id)
	a := newAbility(int(tag)+1, tag)
	for i, d := range gs.AbilityDeck {
		if d.Effect == tag {
			a = d
			gs.AbilityDeck = append(gs.AbilityDeck[:i:i], gs.AbilityDeck[i+1:]...)
			break
		}
	}
	p.ActiveAbilities = append(p.ActiveAbilities, a)
	p.recalculatePassives()
	return a
}

func atk(col Color, v int) Card { return Card{Type: CardATK, Color: col, Value: v} }
func def(col Color, v int) Card { return Card{Type: CardDEF, Color: col, Value: v} }

// testPlayer builds a bare player for resolver and AI tests.
func testPlayer(id PlayerID, level int, aff Affinity, tags ...EffectTag) *Player {
	p := &Player{
		ID:        id,
		Character: Character{ID: "test", Name: "Test", Affinity: aff},
		Life:      BaseLife,
		Level:     level,
	}
	for i, tag := range tags {
		p.ActiveAbilities = append(p.ActiveAbilities, newAbility(100+i, tag))
	}
	p.ResetTurn()
	p.recalculatePassives()
	return p
}

// hand assigns sequential IDs to cards.
func hand(cards ...Card) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		c.ID = i + 1
		out[i] = c
	}
	return out
}

func isIllegal(err error) bool {
	return errors.Is(err, ErrIllegalTransition)
}

func logEvents(t *testing.T, logger *log.MemoryLogger) {
	t.Helper()
	t.Logf("event log:\n%s", log.FormatAll(logger.Events()))
}
