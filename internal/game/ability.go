package game

import (
	"fmt"

	"github.com/peterkuimelis/vortex/internal/log"
)

// affinityAllows reports whether a character of affinity character may hold an
// ability of affinity ability.
func affinityAllows(character, ability Affinity) bool {
	return character == AffinityNeutral || ability == AffinityNeutral || ability == character
}

// canAcquire checks the level and affinity gates shared by drawing an ability
// and playing one from hand.
func canAcquire(p *Player, a AbilityCard) error {
	if p.Level < a.Level {
		return ruleErr(fmt.Sprintf("%s requires level %d", a.Name, a.Level))
	}
	if !affinityAllows(p.Character.Affinity, a.Affinity) {
		return ruleErr(fmt.Sprintf("%s cannot hold %s abilities", p.Character.Name, a.Affinity))
	}
	return nil
}

// canDraw is canAcquire plus the rule that a tag may only be held once.
func canDraw(p *Player, a AbilityCard) error {
	if p.Holds(a.Effect) {
		return ruleErr(fmt.Sprintf("%s is already held", a.Name))
	}
	return canAcquire(p, a)
}

// canPlayFromHand checks whether a held ability may move into play.
func canPlayFromHand(p *Player, a AbilityCard) error {
	if p.HasActive(a.Effect) {
		return ruleErr(fmt.Sprintf("%s is already active", a.Name))
	}
	if err := canAcquire(p, a); err != nil {
		return err
	}
	if len(p.ActiveAbilities) >= p.ActiveCapacity() {
		return ruleErr(fmt.Sprintf("no room for another ability (capacity %d)", p.ActiveCapacity()))
	}
	return nil
}

// canActivate checks an ability in play before its cost is paid.
func canActivate(p *Player, a AbilityCard) error {
	h := a.Effect.Handler()
	if h.Kind != EffectActive {
		return ruleErr(fmt.Sprintf("%s is passive", a.Name))
	}
	if p.Turn.UsedAbilities[a.ID] {
		return ruleErr(fmt.Sprintf("%s was already used this turn", a.Name))
	}
	if h.CanActivate != nil {
		if err := h.CanActivate(p); err != nil {
			return err
		}
	}
	if len(p.PowerHand) == 0 {
		return ruleErr("no card in hand to pay the cost")
	}
	return nil
}

// eligibleAbilities returns the indices into deck the player could draw.
func eligibleAbilities(p *Player, deck []AbilityCard) []int {
	var idx []int
	for i, a := range deck {
		if canDraw(p, a) == nil {
			idx = append(idx, i)
		}
	}
	return idx
}

// drawAbility moves a uniformly chosen eligible ability from the deck into the
// player's ability hand.
func (e *Engine) drawAbility(gs *GameState, p *Player) (AbilityCard, bool) {
	idx := eligibleAbilities(p, gs.AbilityDeck)
	if len(idx) == 0 {
		return AbilityCard{}, false
	}
	i := idx[e.rng.Intn(len(idx))]
	a := gs.AbilityDeck[i]
	gs.AbilityDeck = append(gs.AbilityDeck[:i:i], gs.AbilityDeck[i+1:]...)
	p.AbilityHand = append(p.AbilityHand, a)
	p.Turn.AbilitiesDrawn++
	e.log(log.NewAbilityDrawEvent(gs.stamp(), int(p.ID), a.Name))
	return a, true
}

// playFromHand moves a held ability into play. The gate must already have passed.
func (e *Engine) playFromHand(gs *GameState, p *Player, idx int) {
	a := p.AbilityHand[idx]
	p.AbilityHand = append(p.AbilityHand[:idx:idx], p.AbilityHand[idx+1:]...)
	p.ActiveAbilities = append(p.ActiveAbilities, a)
	p.recalculatePassives()
	e.log(log.NewAbilityPlayEvent(gs.stamp(), int(p.ID), a.Name))
}

// --- Active effect resolution ---

func applyMagicWall(e *Engine, gs *GameState, owner PlayerID, _ AbilityCard, paid Card) {
	p := gs.Player(owner)
	if paid.Value <= 0 {
		return
	}
	p.Shield = &Shield{Value: paid.Value}
	e.log(log.NewShieldCastEvent(gs.stamp(), int(owner), paid.Value))
}

func applyAffinityHeal(e *Engine, gs *GameState, owner PlayerID, ab AbilityCard, paid Card) {
	p := gs.Player(owner)
	e.heal(gs, p, paid.Value/2+p.Level, ab.Name)
}

func applyMasterHeal(e *Engine, gs *GameState, owner PlayerID, ab AbilityCard, paid Card) {
	e.heal(gs, gs.Player(owner), paid.Value, ab.Name)
}

func applyMagicVision(e *Engine, gs *GameState, owner PlayerID, _ AbilityCard, _ Card) {
	gs.Player(owner).Turn.HandRevealed = true
	e.log(log.NewHandRevealEvent(gs.stamp(), int(owner.Other())))
}

func applyMindControl(e *Engine, gs *GameState, owner PlayerID, _ AbilityCard, _ Card) {
	level := gs.Player(owner).Level
	opp := gs.Player(owner.Other())
	for i := 0; i < level && len(opp.PowerHand) > 0; i++ {
		j := e.rng.Intn(len(opp.PowerHand))
		c := opp.PowerHand[j]
		opp.PowerHand = append(opp.PowerHand[:j:j], opp.PowerHand[j+1:]...)
		gs.discard(c)
		e.log(log.NewForcedDiscardEvent(gs.stamp(), int(opp.ID), c.String()))
	}
}

// heal restores life up to the player's cap.
func (e *Engine) heal(gs *GameState, p *Player, amount int, source string) {
	old := p.Life
	p.Life = min(p.Life+amount, p.MaxLife())
	e.log(log.NewHealEvent(gs.stamp(), int(p.ID), p.Life-old, old, p.Life, source))
}
