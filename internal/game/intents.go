package game

import (
	"fmt"

	"github.com/peterkuimelis/vortex/internal/log"
)

// apply routes an intent to its handler. Handlers mutate gs, which is a clone
// owned by the transition in progress.
func (e *Engine) apply(gs *GameState, in Intent) error {
	switch in.Type {
	case IntentStartGame:
		return e.startGame(gs)
	case IntentSelectCharacter:
		return e.selectCharacter(gs, in.CharacterID)
	case IntentDrawTick:
		if gs.Phase != PhaseDraw {
			return ErrIllegalTransition
		}
		e.drawStep(gs)
		return nil
	case IntentSelectAttackCard:
		return e.selectAttackCard(gs, in.CardID)
	case IntentConfirmDirectAttack:
		return e.confirmDirectAttack(gs)
	case IntentChooseDefenseCard:
		return e.chooseDefenseCard(gs, in.CardID)
	case IntentNoDefense:
		return e.noDefense(gs)
	case IntentChooseVortexSlot:
		if in.ForDefense {
			return e.vortexDefend(gs, in.Slot)
		}
		return e.vortexAttack(gs, in.Slot)
	case IntentActivateAbility:
		return e.activateAbility(gs, in.AbilityID)
	case IntentPlayAbilityFromHand:
		return e.playAbilityFromHand(gs, in.AbilityID)
	case IntentSelectCardsForLevelUp:
		return e.selectLevelUpCards(gs, in.CardIDs)
	case IntentConfirmLevelUp:
		return e.confirmLevelUp(gs)
	case IntentDiscardCard:
		return e.discardCard(gs, in.CardID)
	case IntentChooseTargetCard:
		return e.chooseTargetCard(gs, in.CardID)
	case IntentDrawAbility:
		return e.requestAbilityDraw(gs)
	case IntentEndTurn:
		if gs.Phase != PhaseMain {
			return ErrIllegalTransition
		}
		e.startTurn(gs, PlayerAI)
		return nil
	case IntentCancel:
		return e.cancel(gs)
	case IntentStartNextRound:
		if gs.Phase != PhaseRoundTransition {
			return ErrIllegalTransition
		}
		e.startNextRound(gs)
		return nil
	}
	return ErrIllegalTransition
}

// humanTurn reports whether it is the human's turn and gs is in one of phases.
func humanTurn(gs *GameState, phases ...Phase) bool {
	if gs.CurrentPlayer != PlayerHuman || gs.Players[PlayerHuman] == nil {
		return false
	}
	for _, p := range phases {
		if gs.Phase == p {
			return true
		}
	}
	return false
}

func (e *Engine) startGame(gs *GameState) error {
	if gs.Phase != PhaseInit && gs.Phase != PhaseGameOver {
		return ErrIllegalTransition
	}
	matchID := gs.MatchID
	if gs.Phase == PhaseGameOver {
		matchID = newMatchID()
	}
	*gs = GameState{MatchID: matchID, Status: StatusSetup, Phase: PhaseInit, Token: gs.Token}
	e.setPhase(gs, PhaseCharacterSelect)
	return nil
}

func (e *Engine) selectCharacter(gs *GameState, id string) error {
	if gs.Phase != PhaseCharacterSelect {
		return ErrIllegalTransition
	}
	human, err := LookupCharacter(e.roster, id)
	if err != nil {
		return ruleErr(err.Error())
	}

	var pool []Character
	for _, c := range e.roster {
		if c.ID != human.ID && c.StartingAbility != human.StartingAbility {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		return ruleErr("no opponent available for " + human.Name)
	}
	ai := pool[e.rng.Intn(len(pool))]

	round := NewRoundState(gs.MatchID, 1, human, ai, [2]int{}, e.rng)
	round.Phase = PhaseCharacterSelect
	round.Token = gs.Token
	*gs = *round
	e.log(log.NewCharacterAssignedEvent(gs.stamp(), int(PlayerHuman), human.Name))
	e.log(log.NewCharacterAssignedEvent(gs.stamp(), int(PlayerAI), ai.Name))
	e.enterStartGame(gs)
	return nil
}

// --- Attacks ---

func (e *Engine) selectAttackCard(gs *GameState, cardID int) error {
	if !humanTurn(gs, PhaseMain, PhaseSelectAttackCard) {
		return ErrIllegalTransition
	}
	p := gs.Current()
	c, ok := p.HandCard(cardID)
	if !ok {
		return ruleErr("that card is not in your hand")
	}
	if c.Type != CardATK {
		return ruleErr("only ATK cards can attack")
	}
	if p.AttacksRemaining() == 0 {
		return ruleErr(fmt.Sprintf("no attacks left this turn (%d/%d)", p.Turn.Attacks, p.AttackBudget()))
	}
	gs.Pending = &PendingAction{Kind: PendingAttack, Attacker: p.ID, Target: p.ID.Other(), AttackCard: &c}
	e.setPhase(gs, PhaseSelectAttackCard)
	return nil
}

func (e *Engine) confirmDirectAttack(gs *GameState) error {
	if !humanTurn(gs, PhaseSelectAttackCard) {
		return ErrIllegalTransition
	}
	pa := gs.Pending
	p := gs.Current()
	if pa == nil || pa.AttackCard == nil {
		e.recover(gs, "attack confirmed without a selected card")
		return nil
	}
	c, ok := p.RemoveFromHand(pa.AttackCard.ID)
	if !ok {
		e.recover(gs, "selected attack card left the hand")
		return nil
	}
	pa.AttackCard = &c
	pa.InFlight = true
	p.Turn.Attacks++
	e.log(log.NewAttackDeclareEvent(gs.stamp(), int(p.ID), c.String()))
	e.setPhase(gs, PhaseAwaitingAiDefense)
	return nil
}

func (e *Engine) vortexAttack(gs *GameState, slot int) error {
	if !humanTurn(gs, PhaseSelectAttackCard) {
		return ErrIllegalTransition
	}
	if slot < 0 || slot >= VortexSlots {
		return ruleErr(fmt.Sprintf("no such Vortex slot %d", slot))
	}
	p := gs.Current()
	if !p.CanVortexAttack() {
		return ruleErr("the Vortex was already used this turn")
	}
	v := gs.Vortex[slot]
	if v == nil {
		return ruleErr("that Vortex slot is empty")
	}
	pa := gs.Pending
	if pa == nil || pa.AttackCard == nil {
		e.recover(gs, "vortex attack without a selected card")
		return nil
	}
	c, ok := p.RemoveFromHand(pa.AttackCard.ID)
	if !ok {
		e.recover(gs, "selected attack card left the hand")
		return nil
	}
	pa.Kind = PendingVortexAttack
	pa.AttackCard = &c
	pa.InFlight = true
	pa.VortexAttackSlot = &slot
	p.Turn.Attacks++
	p.Turn.VortexAttacks++
	e.log(log.NewVortexAttackDeclareEvent(gs.stamp(), int(p.ID), c.String(), slot, v.String()))
	e.setPhase(gs, PhaseResolveVortexCombat)
	return nil
}

// --- Defense ---

func (e *Engine) chooseDefenseCard(gs *GameState, cardID int) error {
	if gs.Phase != PhaseAwaitingPlayerDefense {
		return ErrIllegalTransition
	}
	p := gs.Player(PlayerHuman)
	c, ok := p.HandCard(cardID)
	if !ok {
		return ruleErr("that card is not in your hand")
	}
	if c.Type != CardDEF {
		return ruleErr("only DEF cards can defend")
	}
	if gs.Pending == nil {
		e.recover(gs, "defense without a pending attack")
		return nil
	}
	p.RemoveFromHand(cardID)
	gs.Pending.DefenseCard = &c
	e.log(log.NewDefendEvent(gs.stamp(), int(p.ID), c.String()))
	e.setPhase(gs, PhaseResolveDirectCombat)
	return nil
}

func (e *Engine) noDefense(gs *GameState) error {
	if gs.Phase != PhaseAwaitingPlayerDefense {
		return ErrIllegalTransition
	}
	e.log(log.NewNoDefenseEvent(gs.stamp(), int(PlayerHuman)))
	e.setPhase(gs, PhaseResolveDirectCombat)
	return nil
}

func (e *Engine) vortexDefend(gs *GameState, slot int) error {
	if gs.Phase != PhaseAwaitingPlayerDefense {
		return ErrIllegalTransition
	}
	p := gs.Player(PlayerHuman)
	if !p.HasActive(EffectVortexGuard) {
		return ruleErr("defending through the Vortex requires Vortex Guard")
	}
	if !p.CanVortexDefend() {
		return ruleErr("the Vortex defense was already used this turn")
	}
	if slot < 0 || slot >= VortexSlots {
		return ruleErr(fmt.Sprintf("no such Vortex slot %d", slot))
	}
	v := gs.Vortex[slot]
	if v == nil {
		return ruleErr("that Vortex slot is empty")
	}
	if gs.Pending == nil {
		e.recover(gs, "defense without a pending attack")
		return nil
	}
	c := *v
	p.Turn.VortexDefenses++
	gs.Pending.DefenseCard = &c
	gs.Pending.VortexDefenseSlot = &slot
	e.log(log.NewVortexDefendEvent(gs.stamp(), int(p.ID), slot, c.String()))
	e.setPhase(gs, PhaseResolveDirectCombat)
	return nil
}

// --- Abilities ---

func (e *Engine) activateAbility(gs *GameState, abilityID int) error {
	if !humanTurn(gs, PhaseMain) {
		return ErrIllegalTransition
	}
	p := gs.Current()
	a, ok := p.ActiveAbility(abilityID)
	if !ok {
		return ruleErr("that ability is not in play")
	}
	if err := canActivate(p, a); err != nil {
		return err
	}
	gs.Pending = &PendingAction{Kind: PendingAbilityPayment, Attacker: p.ID, Target: p.ID.Other(), Ability: &a}
	e.setPhase(gs, PhaseSelectDiscardForAbility)
	return nil
}

func (e *Engine) playAbilityFromHand(gs *GameState, abilityID int) error {
	if !humanTurn(gs, PhaseMain) {
		return ErrIllegalTransition
	}
	p := gs.Current()
	a, idx, ok := p.AbilityInHand(abilityID)
	if !ok {
		return ruleErr("that ability is not in your hand")
	}
	if err := canPlayFromHand(p, a); err != nil {
		return err
	}
	e.playFromHand(gs, p, idx)
	return nil
}

func (e *Engine) requestAbilityDraw(gs *GameState) error {
	if !humanTurn(gs, PhaseMain) {
		return ErrIllegalTransition
	}
	p := gs.Current()
	if p.Turn.AbilitiesDrawn > 0 {
		return ruleErr("you already drew an ability this turn")
	}
	if len(eligibleAbilities(p, gs.AbilityDeck)) == 0 {
		return ruleErr("no ability you can hold is left in the deck")
	}
	if len(p.PowerHand) == 0 {
		return ruleErr("no card in hand to pay for the draw")
	}
	gs.Pending = &PendingAction{Kind: PendingAbilityDraw, Attacker: p.ID, Target: p.ID}
	e.setPhase(gs, PhaseSelectDiscardForDraw)
	return nil
}

// discardCard pays a pending cost, or discards outright from the main phase.
func (e *Engine) discardCard(gs *GameState, cardID int) error {
	if !humanTurn(gs, PhaseMain, PhaseSelectDiscardForAbility, PhaseSelectDiscardForDraw) {
		return ErrIllegalTransition
	}
	p := gs.Current()
	c, ok := p.HandCard(cardID)
	if !ok {
		return ruleErr("that card is not in your hand")
	}

	switch gs.Phase {
	case PhaseMain:
		p.RemoveFromHand(cardID)
		gs.discard(c)
		e.log(log.NewDiscardEvent(gs.stamp(), int(p.ID), c.String(), "discarded"))
		return nil

	case PhaseSelectDiscardForDraw:
		p.RemoveFromHand(cardID)
		gs.discard(c)
		e.log(log.NewDiscardEvent(gs.stamp(), int(p.ID), c.String(), "ability draw"))
		gs.Pending = nil
		if _, ok := e.drawAbility(gs, p); !ok {
			e.log(log.NewRecoveredEvent(gs.stamp(), "no eligible ability left to draw"))
		}
		e.setPhase(gs, PhaseMain)
		return nil
	}

	pa := gs.Pending
	if pa == nil || pa.Ability == nil {
		e.recover(gs, "ability payment without a pending ability")
		return nil
	}
	ab := *pa.Ability
	h := ab.Effect.Handler()
	if err := costAccepts(h.Cost, c); err != nil {
		return err
	}
	if h.NeedsTarget {
		if len(p.PowerHand) < 2 {
			return ruleErr("no card would be left to target")
		}
		// the payment is held until a target is chosen
		p.RemoveFromHand(cardID)
		pa.PaidCard = &c
		pa.Kind = PendingControlTarget
		e.setPhase(gs, PhaseSelectControlTarget)
		return nil
	}
	p.RemoveFromHand(cardID)
	gs.discard(c)
	p.Turn.UsedAbilities[ab.ID] = true
	e.log(log.NewAbilityActivateEvent(gs.stamp(), int(p.ID), ab.Name, c.String()))
	h.Apply(e, gs, p.ID, ab, c)
	gs.Pending = nil
	e.setPhase(gs, PhaseMain)
	return nil
}

func (e *Engine) chooseTargetCard(gs *GameState, cardID int) error {
	if !humanTurn(gs, PhaseSelectControlTarget) {
		return ErrIllegalTransition
	}
	p := gs.Current()
	c, ok := p.HandCard(cardID)
	if !ok {
		return ruleErr("that card is not in your hand")
	}
	pa := gs.Pending
	if pa == nil || pa.Ability == nil || pa.PaidCard == nil {
		e.recover(gs, "control target without a paid ability")
		return nil
	}
	ab, paid := *pa.Ability, *pa.PaidCard
	gs.discard(paid)
	pa.PaidCard = nil
	p.Turn.UsedAbilities[ab.ID] = true
	e.log(log.NewAbilityActivateEvent(gs.stamp(), int(p.ID), ab.Name, paid.String()))
	changed := ab.Effect.Handler().ApplyTarget(e, gs, p.ID, c)
	p.replaceInHand(changed)
	e.log(log.NewCardMutateEvent(gs.stamp(), int(p.ID), c.String(), changed.String()))
	gs.Pending = nil
	e.setPhase(gs, PhaseMain)
	return nil
}

// --- Level up ---

func (e *Engine) selectLevelUpCards(gs *GameState, ids []int) error {
	if !humanTurn(gs, PhaseMain, PhaseSelectCardsForLevelUp) {
		return ErrIllegalTransition
	}
	p := gs.Current()
	if err := canLevelUp(p); err != nil {
		return err
	}
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return ruleErr("a card was selected twice")
		}
		seen[id] = true
		if _, ok := p.HandCard(id); !ok {
			return ruleErr("that card is not in your hand")
		}
	}
	gs.Pending = &PendingAction{Kind: PendingLevelUp, Attacker: p.ID, Target: p.ID, LevelUpCards: append([]int(nil), ids...)}
	e.setPhase(gs, PhaseSelectCardsForLevelUp)
	return nil
}

func (e *Engine) confirmLevelUp(gs *GameState) error {
	if !humanTurn(gs, PhaseSelectCardsForLevelUp) {
		return ErrIllegalTransition
	}
	p := gs.Current()
	if err := canLevelUp(p); err != nil {
		return err
	}
	pa := gs.Pending
	if pa == nil {
		e.recover(gs, "level up without earmarked cards")
		return nil
	}
	var cards []Card
	sum := 0
	for _, id := range pa.LevelUpCards {
		c, ok := p.HandCard(id)
		if !ok {
			e.recover(gs, "an earmarked card left the hand")
			return nil
		}
		cards = append(cards, c)
		sum += c.Value
	}
	if sum < LevelUpThreshold {
		return ruleErr(fmt.Sprintf("selected cards total %d, need %d", sum, LevelUpThreshold))
	}
	e.levelUp(gs, p, cards)
	gs.Pending = nil
	e.setPhase(gs, PhaseMain)
	return nil
}

func canLevelUp(p *Player) error {
	if p.Level >= MaxLevel {
		return ruleErr("already at the maximum level")
	}
	if p.Turn.LevelUps > 0 {
		return ruleErr("you already leveled up this turn")
	}
	return nil
}

// levelUp discards the cards and raises the player's level.
func (e *Engine) levelUp(gs *GameState, p *Player, cards []Card) {
	names := make([]string, 0, len(cards))
	for _, c := range cards {
		p.RemoveFromHand(c.ID)
		gs.discard(c)
		names = append(names, c.String())
	}
	p.Level++
	p.Turn.LevelUps++
	p.recalculatePassives()
	e.log(log.NewLevelUpEvent(gs.stamp(), int(p.ID), p.Level, names))
}

// --- Cancel ---

func (e *Engine) cancel(gs *GameState) error {
	if gs.Phase == PhaseAwaitingPlayerDefense {
		return e.noDefense(gs)
	}
	if !gs.Phase.selecting() || gs.CurrentPlayer != PlayerHuman {
		return ErrIllegalTransition
	}
	if pa := gs.Pending; pa != nil && pa.PaidCard != nil {
		p := gs.Current()
		p.PowerHand = append(p.PowerHand, *pa.PaidCard)
	}
	gs.Pending = nil
	e.setPhase(gs, PhaseMain)
	return nil
}
