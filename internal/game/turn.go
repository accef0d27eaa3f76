package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/peterkuimelis/vortex/internal/log"
)

func newMatchID() string {
	return uuid.NewString()
}

// enterStartGame deals both hands, fills the Vortex and hands the first turn to
// the human.
func (e *Engine) enterStartGame(gs *GameState) {
	e.setPhase(gs, PhaseStartGame)
	gs.Status = StatusPlaying
	e.log(log.NewRoundStartEvent(gs.stamp()))
	for _, p := range gs.Players {
		n := gs.drawUpTo(p)
		e.log(log.NewDealEvent(gs.stamp(), int(p.ID), n))
	}
	for slot := range gs.Vortex {
		e.fillVortex(gs, slot)
	}
	e.startTurn(gs, PlayerHuman)
}

// startTurn passes the turn to id and runs the turn-start bookkeeping.
func (e *Engine) startTurn(gs *GameState, id PlayerID) {
	gs.Players[gs.CurrentPlayer].Turn.HandRevealed = false
	gs.CurrentPlayer = id
	gs.Turn++
	gs.Pending = nil
	p := gs.Current()
	p.ResetTurn()
	e.setPhase(gs, PhaseStartTurn)
	e.log(log.NewTurnEvent(gs.stamp(), int(id)))
	if id == PlayerHuman {
		e.setPhase(gs, PhaseDraw)
	} else {
		e.setPhase(gs, PhaseAiTurn)
	}
}

// drawStep is the human's draw phase.
func (e *Engine) drawStep(gs *GameState) {
	e.draw(gs, gs.Current())
	e.setPhase(gs, PhaseMain)
}

// draw refills p's hand, reshuffling the discard pile into a short deck first.
func (e *Engine) draw(gs *GameState, p *Player) {
	p.Turn.Drew = true
	if len(p.PowerHand) >= p.MaxHandSize {
		return
	}
	if len(gs.PowerDeck) < p.MaxHandSize {
		if n := gs.refillDeck(e.rng); n > 0 {
			e.log(log.NewReshuffleEvent(gs.stamp(), n))
		}
	}
	n := gs.drawUpTo(p)
	e.log(log.NewDrawEvent(gs.stamp(), int(p.ID), n))
}

// fillVortex deals the top of the deck into an empty Vortex slot.
func (e *Engine) fillVortex(gs *GameState, slot int) {
	if len(gs.PowerDeck) == 0 {
		if n := gs.refillDeck(e.rng); n > 0 {
			e.log(log.NewReshuffleEvent(gs.stamp(), n))
		}
	}
	c, ok := gs.popDeck()
	if !ok {
		return
	}
	gs.Vortex[slot] = &c
	e.log(log.NewVortexFillEvent(gs.stamp(), slot, c.String()))
}

// --- AI ---

// aiTurn runs one AI decision burst: draw, level up, draw and play an ability,
// then either attack or pass the turn.
func (e *Engine) aiTurn(gs *GameState) {
	ai := gs.Player(PlayerAI)
	if gs.CurrentPlayer != PlayerAI {
		e.recover(gs, "AI burst outside the AI's turn")
		return
	}
	if !ai.Turn.Drew {
		e.draw(gs, ai)
	}

	if canLevelUp(ai) == nil {
		if cards := AiLevelUpCards(ai.PowerHand, gs.Round); cards != nil {
			e.levelUp(gs, ai, cards)
		}
	}

	if gs.Round >= FinalRound && ai.Turn.AbilitiesDrawn == 0 && len(eligibleAbilities(ai, gs.AbilityDeck)) > 0 {
		if c, ok := AiAbilityDrawDiscard(ai.PowerHand); ok {
			ai.RemoveFromHand(c.ID)
			gs.discard(c)
			e.log(log.NewDiscardEvent(gs.stamp(), int(ai.ID), c.String(), "ability draw"))
			e.drawAbility(gs, ai)
		}
	}

	if idx, ok := AiPlayableAbility(ai); ok {
		e.playFromHand(gs, ai, idx)
	}

	c, ok := AiAttackCard(ai.PowerHand, gs.Round, ai.AttacksRemaining())
	if !ok {
		e.startTurn(gs, PlayerHuman)
		return
	}
	ai.RemoveFromHand(c.ID)
	ai.Turn.Attacks++
	gs.Pending = &PendingAction{
		Kind:       PendingAttack,
		Attacker:   PlayerAI,
		Target:     PlayerHuman,
		AttackCard: &c,
		InFlight:   true,
	}
	e.log(log.NewAttackDeclareEvent(gs.stamp(), int(PlayerAI), c.String()))
	e.setPhase(gs, PhaseAwaitingPlayerDefense)
}

// aiDefense answers the human's direct attack.
func (e *Engine) aiDefense(gs *GameState) {
	pa := gs.Pending
	if pa == nil || pa.AttackCard == nil || !pa.InFlight {
		e.recover(gs, "AI defense without an attack in flight")
		return
	}
	ai := gs.Player(PlayerAI)
	d, ok := AiDefenseCard(ai.PowerHand, *pa.AttackCard, gs.Player(pa.Attacker), ai, gs.Round)
	if ok {
		ai.RemoveFromHand(d.ID)
		pa.DefenseCard = &d
		e.log(log.NewDefendEvent(gs.stamp(), int(PlayerAI), d.String()))
	} else {
		e.log(log.NewNoDefenseEvent(gs.stamp(), int(PlayerAI)))
	}
	e.setPhase(gs, PhaseResolveDirectCombat)
}

// --- Combat ---

// resolveCombat runs the resolver on the pending exchange and applies the result.
func (e *Engine) resolveCombat(gs *GameState) {
	pa := gs.Pending
	if pa == nil || pa.AttackCard == nil || !pa.InFlight {
		e.recover(gs, "combat without an attack in flight")
		return
	}
	attacker, defender := gs.Player(pa.Attacker), gs.Player(pa.Target)

	var r CombatResult
	var other *Card
	switch {
	case pa.Kind == PendingVortexAttack:
		if pa.VortexAttackSlot == nil || gs.Vortex[*pa.VortexAttackSlot] == nil {
			e.recover(gs, "vortex attack slot is empty")
			return
		}
		other = gs.Vortex[*pa.VortexAttackSlot]
		r = ResolveVortex(*pa.AttackCard, *other, attacker, defender)
	case pa.VortexDefenseSlot != nil:
		v := gs.Vortex[*pa.VortexDefenseSlot]
		if v == nil {
			e.recover(gs, "vortex defense slot is empty")
			return
		}
		other = v
		r = ResolveDirect(*pa.AttackCard, v, attacker, defender)
	default:
		other = pa.DefenseCard
		r = ResolveDirect(*pa.AttackCard, pa.DefenseCard, attacker, defender)
	}

	e.applyResult(gs, r, *pa.AttackCard, other, attacker, defender)
	pa.Result = &r
	e.setPhase(gs, PhaseShowdown)
}

func (e *Engine) applyResult(gs *GameState, r CombatResult, attack Card, other *Card, attacker, defender *Player) {
	e.log(log.NewDamageCalcEvent(gs.stamp(), int(attacker.ID), r.Raw, r.Describe(attack, other)))
	if !r.HasTarget {
		e.log(log.NewBlockedEvent(gs.stamp(), int(defender.ID)))
		return
	}
	t := gs.Player(r.Target)
	if r.Absorbed > 0 {
		e.log(log.NewShieldAbsorbEvent(gs.stamp(), int(t.ID), r.Absorbed, r.ShieldAfter))
		if r.ShieldAfter == 0 {
			t.Shield = nil
			e.log(log.NewShieldBrokenEvent(gs.stamp(), int(t.ID)))
		} else {
			t.Shield.Value = r.ShieldAfter
		}
	}
	if r.Damage == 0 {
		return
	}
	old := t.Life
	t.Life = max(0, t.Life-r.Damage)
	if r.Recoil {
		e.log(log.NewRecoilEvent(gs.stamp(), int(t.ID), r.Damage, old, t.Life))
	} else {
		e.log(log.NewDamageEvent(gs.stamp(), int(t.ID), r.Damage, old, t.Life))
	}
}

// finalize cleans up after the showdown and decides who acts next.
func (e *Engine) finalize(gs *GameState) {
	pa := gs.Pending
	if pa == nil {
		e.recover(gs, "showdown without a pending exchange")
		return
	}
	if pa.InFlight && pa.AttackCard != nil {
		gs.discard(*pa.AttackCard)
	}
	if pa.DefenseCard != nil && pa.VortexDefenseSlot == nil {
		gs.discard(*pa.DefenseCard)
	}
	for _, slot := range []*int{pa.VortexAttackSlot, pa.VortexDefenseSlot} {
		if slot == nil {
			continue
		}
		if v := gs.Vortex[*slot]; v != nil {
			gs.discard(*v)
			gs.Vortex[*slot] = nil
		}
		e.fillVortex(gs, *slot)
	}
	gs.Pending = nil

	if e.checkKnockout(gs) {
		return
	}

	human := gs.Player(PlayerHuman)
	switch {
	case pa.Attacker == PlayerAI:
		e.setPhase(gs, PhaseAiTurn)
	case pa.Kind == PendingVortexAttack && !human.HasActive(EffectMasterVortex):
		e.startTurn(gs, PlayerAI)
	case len(human.PowerHand) == 0:
		e.startTurn(gs, PlayerAI)
	default:
		e.setPhase(gs, PhaseMain)
	}
}

// checkKnockout ends the round if either side is out of life.
func (e *Engine) checkKnockout(gs *GameState) bool {
	var loser *Player
	for _, p := range gs.Players {
		if p.Life <= 0 {
			loser = p
		}
	}
	if loser == nil {
		return false
	}
	w := loser.ID.Other()
	gs.RoundWins[w]++
	gs.Winner = &w
	e.log(log.NewRoundWinEvent(gs.stamp(), int(w)))

	if gs.Round < FinalRound {
		gs.Status = StatusRoundOver
		e.setPhase(gs, PhaseRoundTransition)
		return true
	}

	overall := PlayerHuman
	if gs.RoundWins[PlayerAI] > gs.RoundWins[PlayerHuman] {
		overall = PlayerAI
	}
	gs.Winner = &overall
	gs.Status = StatusFinished
	e.setPhase(gs, PhaseGameOver)
	e.log(log.NewWinEvent(gs.stamp(), int(overall),
		fmt.Sprintf("round wins %d-%d", gs.RoundWins[PlayerHuman], gs.RoundWins[PlayerAI])))
	return true
}

// startNextRound replaces the state with a fresh round, keeping the characters
// and round wins.
func (e *Engine) startNextRound(gs *GameState) {
	human := gs.Player(PlayerHuman).Character
	ai := gs.Player(PlayerAI).Character
	round := NewRoundState(gs.MatchID, gs.Round+1, human, ai, gs.RoundWins, e.rng)
	round.Phase = PhaseRoundTransition
	round.Token = gs.Token
	*gs = *round
	e.enterStartGame(gs)
}

// recover aborts an exchange whose references went missing. In-flight cards go
// to the discard pile and the active side gets control back.
func (e *Engine) recover(gs *GameState, reason string) {
	if pa := gs.Pending; pa != nil {
		if pa.InFlight && pa.AttackCard != nil {
			gs.discard(*pa.AttackCard)
		}
		if pa.DefenseCard != nil && pa.VortexDefenseSlot == nil {
			gs.discard(*pa.DefenseCard)
		}
		if pa.PaidCard != nil {
			gs.discard(*pa.PaidCard)
		}
	}
	gs.Pending = nil
	e.log(log.NewRecoveredEvent(gs.stamp(), reason))
	if gs.CurrentPlayer == PlayerAI {
		e.setPhase(gs, PhaseAiTurn)
	} else {
		e.setPhase(gs, PhaseMain)
	}
}
