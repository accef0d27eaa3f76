package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/vortex/internal/log"
)

// rigDefenseless gives the AI a hand with no DEF cards.
func rigDefenseless(t *testing.T, e *Engine) {
	t.Helper()
	rigHand(t, e, PlayerAI, atk(ColorWhite, 1), atk(ColorWhite, 2), atk(ColorBlack, 1), atk(ColorBlack, 2), atk(ColorWhite, 3))
}

func attackDirect(t *testing.T, e *Engine, c Card) {
	t.Helper()
	mustDispatch(t, e, Intent{Type: IntentSelectAttackCard, CardID: c.ID})
	mustDispatch(t, e, Intent{Type: IntentConfirmDirectAttack})
}

func TestStartMatchDealsAndFills(t *testing.T) {
	e, logger := newTestEngine(t)
	assert.Equal(t, PhaseInit, e.Phase())

	startMatch(t, e, "caelum")
	gs := e.State()

	assert.Equal(t, 1, gs.Round)
	assert.Equal(t, 1, gs.Turn)
	assert.Equal(t, PlayerHuman, gs.CurrentPlayer)
	assert.Equal(t, StatusPlaying, gs.Status)
	assert.NotEmpty(t, gs.MatchID)
	for _, p := range gs.Players {
		assert.Len(t, p.PowerHand, BaseHandSize)
		assert.Equal(t, BaseLife, p.Life)
		assert.Equal(t, 1, p.Level)
		require.Len(t, p.ActiveAbilities, 1)
		assert.Equal(t, p.Character.StartingAbility, p.ActiveAbilities[0].Effect)
	}
	assert.Equal(t, "caelum", gs.Players[PlayerHuman].Character.ID)
	assert.NotEqual(t, gs.Players[PlayerHuman].Character.StartingAbility, gs.Players[PlayerAI].Character.StartingAbility)
	for slot, v := range gs.Vortex {
		assert.NotNil(t, v, "vortex slot %d", slot)
	}
	assert.Equal(t, PowerDeckSize, gs.PowerCardCount())
	assert.Len(t, gs.AbilityDeck, len(AllEffects())-2)

	assert.Len(t, logger.EventsOfType(log.EventCharacterAssigned), 2)
	assert.Len(t, logger.EventsOfType(log.EventDeal), 2)
	assert.Len(t, logger.EventsOfType(log.EventVortexFill), VortexSlots)
	logEvents(t, logger)
}

func TestUnknownCharacterIsRuleError(t *testing.T) {
	e, _ := newTestEngine(t)
	mustDispatch(t, e, Intent{Type: IntentStartGame})

	err := e.Dispatch(Intent{Type: IntentSelectCharacter, CharacterID: "nobody"})

	assert.True(t, IsRuleError(err))
	assert.Equal(t, PhaseCharacterSelect, e.Phase())
	assert.Equal(t, err.Error(), e.Status())
}

func TestIllegalTransitionIgnored(t *testing.T) {
	e, logger := newTestEngine(t)
	startMatch(t, e, "sable")
	before := e.State()
	events := len(logger.Events())
	status := e.Status()

	for _, in := range []Intent{
		{Type: IntentNoDefense},
		{Type: IntentConfirmDirectAttack},
		{Type: IntentConfirmLevelUp},
		{Type: IntentChooseTargetCard, CardID: before.Players[PlayerHuman].PowerHand[0].ID},
		{Type: IntentStartNextRound},
		{Type: IntentStartGame},
		{Type: IntentDrawTick},
		{Type: IntentCancel},
		{Type: IntentChooseVortexSlot, Slot: 0, ForDefense: true},
	} {
		err := e.Dispatch(in)
		assert.True(t, isIllegal(err), "%s: %v", in, err)
	}

	assert.Equal(t, before, e.State())
	assert.Len(t, logger.Events(), events)
	assert.Equal(t, status, e.Status())
}

func TestRuleErrorLeavesStateUnchanged(t *testing.T) {
	e, logger := newTestEngine(t)
	startMatch(t, e, "sable")
	cards := rigHand(t, e, PlayerHuman, def(ColorWhite, 5), atk(ColorBlack, 5), atk(ColorBlack, 6), def(ColorBlack, 6), atk(ColorWhite, 6))
	before := e.State()
	events := len(logger.Events())

	err := e.Dispatch(Intent{Type: IntentSelectAttackCard, CardID: cards[0].ID})

	require.Error(t, err)
	assert.True(t, IsRuleError(err))
	assert.Equal(t, "only ATK cards can attack", e.Status())
	assert.Equal(t, before, e.State())
	assert.Len(t, logger.Events(), events)
}

func TestDirectAttackFlow(t *testing.T) {
	e, logger := newTestEngine(t)
	startMatch(t, e, "sable")
	cards := rigHand(t, e, PlayerHuman, atk(ColorBlack, 7), atk(ColorBlack, 8), def(ColorWhite, 3), def(ColorWhite, 4), atk(ColorWhite, 6))
	rigDefenseless(t, e)

	attackDirect(t, e, cards[0])
	assert.Equal(t, PhaseAwaitingAiDefense, e.Phase())
	gs := e.State()
	assert.Len(t, gs.Players[PlayerHuman].PowerHand, 4)
	assert.Equal(t, 1, gs.Players[PlayerHuman].Turn.Attacks)
	assert.Equal(t, PowerDeckSize, gs.PowerCardCount(), "in-flight card is counted")

	c, ok := e.Pending()
	require.True(t, ok)
	assert.Equal(t, StepAiDefense, c.Step)
	require.True(t, e.Fire(c))
	assert.Equal(t, PhaseResolveDirectCombat, e.Phase())
	assert.Len(t, logger.EventsOfType(log.EventNoDefense), 1)

	fireUntil(t, e, PhaseShowdown)
	assert.Equal(t, 33, e.State().Players[PlayerAI].Life)

	settleEngine(t, e)
	gs = e.State()
	assert.Equal(t, PhaseMain, gs.Phase)
	assert.Nil(t, gs.Pending)
	assert.Contains(t, gs.Discard, cards[0])
	assert.Equal(t, PowerDeckSize, gs.PowerCardCount())

	dmg := logger.EventsOfType(log.EventDamage)
	require.Len(t, dmg, 1)
	assert.Equal(t, int(PlayerAI), dmg[0].Player)
	assert.Equal(t, 7, dmg[0].Amount)
	logEvents(t, logger)
}

func TestStaleContinuationDropped(t *testing.T) {
	e, _ := newTestEngine(t)
	startMatch(t, e, "sable")
	cards := rigHand(t, e, PlayerHuman, atk(ColorBlack, 7), atk(ColorBlack, 8), def(ColorWhite, 3), def(ColorWhite, 4), atk(ColorWhite, 6))
	rigDefenseless(t, e)
	attackDirect(t, e, cards[0])

	c, ok := e.Pending()
	require.True(t, ok)
	require.True(t, e.Fire(c))

	assert.False(t, e.Fire(c), "a fired continuation cannot run twice")

	next, ok := e.Pending()
	require.True(t, ok)
	forged := next
	forged.Token--
	assert.False(t, e.Fire(forged))
	forged = next
	forged.Phase = PhaseShowdown
	assert.False(t, e.Fire(forged))
	assert.True(t, e.Fire(next))
}

func TestAttackBudget(t *testing.T) {
	e, _ := newTestEngine(t)
	startMatch(t, e, "sable")
	cards := rigHand(t, e, PlayerHuman, atk(ColorBlack, 7), atk(ColorBlack, 8), atk(ColorWhite, 5), def(ColorWhite, 4), atk(ColorWhite, 6))
	rigDefenseless(t, e)

	for _, c := range cards[:2] {
		attackDirect(t, e, c)
		settleEngine(t, e)
		require.Equal(t, PhaseMain, e.Phase())
	}

	p := e.State().Players[PlayerHuman]
	assert.Equal(t, p.AttackBudget(), p.Turn.Attacks)
	err := e.Dispatch(Intent{Type: IntentSelectAttackCard, CardID: cards[2].ID})
	assert.True(t, IsRuleError(err))
	assert.Equal(t, 40-7-8, e.State().Players[PlayerAI].Life)
}

func TestVortexAttackEndsTurn(t *testing.T) {
	e, logger := newTestEngine(t)
	startMatch(t, e, "sable")
	cards := rigHand(t, e, PlayerHuman, atk(ColorWhite, 6), atk(ColorBlack, 8), def(ColorWhite, 3), def(ColorBlack, 4), atk(ColorBlack, 6))
	v := rigVortex(t, e, 2, def(ColorWhite, 4))

	mustDispatch(t, e, Intent{Type: IntentSelectAttackCard, CardID: cards[0].ID})
	mustDispatch(t, e, Intent{Type: IntentChooseVortexSlot, Slot: 2})
	assert.Equal(t, PhaseResolveVortexCombat, e.Phase())

	fireUntil(t, e, PhaseShowdown)
	gs := e.State()
	assert.Equal(t, 30, gs.Players[PlayerAI].Life)
	require.NotNil(t, gs.Pending.Result)
	assert.Equal(t, 10, gs.Pending.Result.Raw)

	c, _ := e.Pending()
	require.True(t, e.Fire(c))
	gs = e.State()
	assert.Equal(t, PhaseAiTurn, gs.Phase)
	assert.Equal(t, PlayerAI, gs.CurrentPlayer)
	assert.Contains(t, gs.Discard, v)
	require.NotNil(t, gs.Vortex[2])
	assert.NotEqual(t, v.ID, gs.Vortex[2].ID)
	assert.Equal(t, 1, gs.Players[PlayerHuman].Turn.VortexAttacks)
	assert.Equal(t, PowerDeckSize, gs.PowerCardCount())
	assert.Len(t, logger.EventsOfType(log.EventVortexAttackDeclare), 1)
}

func TestMasterVortexKeepsTurn(t *testing.T) {
	e, _ := newTestEngine(t)
	startMatch(t, e, "sable")
	e.gs.Player(PlayerHuman).Level = 3
	grant(e, PlayerHuman, EffectMasterVortex)
	cards := rigHand(t, e, PlayerHuman, atk(ColorWhite, 6), atk(ColorBlack, 8), def(ColorWhite, 3), def(ColorBlack, 4), atk(ColorBlack, 6))
	rigVortex(t, e, 0, def(ColorWhite, 4))
	rigVortex(t, e, 1, def(ColorBlack, 2))

	mustDispatch(t, e, Intent{Type: IntentSelectAttackCard, CardID: cards[0].ID})
	mustDispatch(t, e, Intent{Type: IntentChooseVortexSlot, Slot: 0})
	settleEngine(t, e)
	require.Equal(t, PhaseMain, e.Phase())

	mustDispatch(t, e, Intent{Type: IntentSelectAttackCard, CardID: cards[1].ID})
	mustDispatch(t, e, Intent{Type: IntentChooseVortexSlot, Slot: 1})
	settleEngine(t, e)

	gs := e.State()
	assert.Equal(t, PhaseMain, gs.Phase)
	assert.Equal(t, 2, gs.Players[PlayerHuman].Turn.VortexAttacks)
	assert.Equal(t, 40-10-10, gs.Players[PlayerAI].Life)
}

func TestVortexAttackRejectsEmptySlot(t *testing.T) {
	e, _ := newTestEngine(t)
	startMatch(t, e, "sable")
	cards := rigHand(t, e, PlayerHuman, atk(ColorWhite, 6), atk(ColorBlack, 8), def(ColorWhite, 3), def(ColorBlack, 4), atk(ColorBlack, 6))
	gs := e.gs
	gs.Discard = append(gs.Discard, *gs.Vortex[3])
	gs.Vortex[3] = nil

	mustDispatch(t, e, Intent{Type: IntentSelectAttackCard, CardID: cards[0].ID})
	err := e.Dispatch(Intent{Type: IntentChooseVortexSlot, Slot: 3})
	assert.True(t, IsRuleError(err))
	err = e.Dispatch(Intent{Type: IntentChooseVortexSlot, Slot: 7})
	assert.True(t, IsRuleError(err))
	assert.Equal(t, PhaseSelectAttackCard, e.Phase())
}

func TestRecoveryWhenVortexSlotEmptied(t *testing.T) {
	e, logger := newTestEngine(t)
	startMatch(t, e, "sable")
	cards := rigHand(t, e, PlayerHuman, atk(ColorWhite, 6), atk(ColorBlack, 8), def(ColorWhite, 3), def(ColorBlack, 4), atk(ColorBlack, 6))
	mustDispatch(t, e, Intent{Type: IntentSelectAttackCard, CardID: cards[0].ID})
	mustDispatch(t, e, Intent{Type: IntentChooseVortexSlot, Slot: 1})

	// the slot empties between scheduling and resolution
	gs := e.gs
	gs.Discard = append(gs.Discard, *gs.Vortex[1])
	gs.Vortex[1] = nil

	c, ok := e.Pending()
	require.True(t, ok)
	require.True(t, e.Fire(c))

	gs = e.State()
	assert.Equal(t, PhaseMain, gs.Phase)
	assert.Nil(t, gs.Pending)
	assert.Contains(t, gs.Discard, cards[0])
	assert.Equal(t, PowerDeckSize, gs.PowerCardCount())
	assert.Equal(t, BaseLife, gs.Players[PlayerAI].Life)
	assert.Len(t, logger.EventsOfType(log.EventRecovered), 1)
}

func TestPlayerDefenseFlow(t *testing.T) {
	e, logger := newTestEngine(t)
	startMatch(t, e, "sable")
	cards := rigHand(t, e, PlayerHuman, def(ColorWhite, 3), atk(ColorBlack, 8), def(ColorWhite, 9), def(ColorBlack, 4), atk(ColorBlack, 6))
	rigHand(t, e, PlayerAI, atk(ColorBlack, 7), def(ColorBlack, 1), def(ColorBlack, 2), def(ColorWhite, 1), def(ColorWhite, 2))

	mustDispatch(t, e, Intent{Type: IntentEndTurn})
	assert.Equal(t, PhaseAiTurn, e.Phase())
	fireUntil(t, e, PhaseAwaitingPlayerDefense)

	gs := e.State()
	require.NotNil(t, gs.Pending)
	assert.Equal(t, PlayerAI, gs.Pending.Attacker)
	assert.Equal(t, 7, gs.Pending.AttackCard.Value)

	err := e.Dispatch(Intent{Type: IntentChooseDefenseCard, CardID: cards[1].ID})
	assert.True(t, IsRuleError(err), "ATK cards cannot defend")
	mustDispatch(t, e, Intent{Type: IntentChooseDefenseCard, CardID: cards[0].ID})
	assert.Equal(t, PhaseResolveDirectCombat, e.Phase())

	settleEngine(t, e)
	gs = e.State()
	assert.Equal(t, 36, gs.Players[PlayerHuman].Life)
	assert.Equal(t, PhaseMain, gs.Phase)
	assert.Equal(t, PlayerHuman, gs.CurrentPlayer)
	assert.Equal(t, 3, gs.Turn)
	assert.Len(t, gs.Players[PlayerHuman].PowerHand, BaseHandSize)
	assert.Equal(t, PowerDeckSize, gs.PowerCardCount())
	logEvents(t, logger)
}

func TestCancelDuringDefenseTakesTheHit(t *testing.T) {
	e, logger := newTestEngine(t)
	startMatch(t, e, "sable")
	rigHand(t, e, PlayerAI, atk(ColorBlack, 7), def(ColorBlack, 1), def(ColorBlack, 2), def(ColorWhite, 1), def(ColorWhite, 2))
	mustDispatch(t, e, Intent{Type: IntentEndTurn})
	fireUntil(t, e, PhaseAwaitingPlayerDefense)

	mustDispatch(t, e, Intent{Type: IntentCancel})

	assert.Equal(t, PhaseResolveDirectCombat, e.Phase())
	assert.Len(t, logger.EventsOfType(log.EventNoDefense), 1)
	fireUntil(t, e, PhaseShowdown)
	assert.Equal(t, 33, e.State().Players[PlayerHuman].Life)
}

func TestVortexDefenseNeedsGuard(t *testing.T) {
	e, _ := newTestEngine(t)
	startMatch(t, e, "sable")
	rigHand(t, e, PlayerAI, atk(ColorBlack, 7), def(ColorBlack, 1), def(ColorBlack, 2), def(ColorWhite, 1), def(ColorWhite, 2))
	v := rigVortex(t, e, 0, def(ColorWhite, 9))
	mustDispatch(t, e, Intent{Type: IntentEndTurn})
	fireUntil(t, e, PhaseAwaitingPlayerDefense)

	err := e.Dispatch(Intent{Type: IntentChooseVortexSlot, Slot: 0, ForDefense: true})
	assert.True(t, IsRuleError(err))

	e.gs.Player(PlayerHuman).Level = 2
	grant(e, PlayerHuman, EffectVortexGuard)
	mustDispatch(t, e, Intent{Type: IntentChooseVortexSlot, Slot: 0, ForDefense: true})
	fireUntil(t, e, PhaseShowdown)

	gs := e.State()
	// 7 - 9 recoils 2 onto the AI
	assert.Equal(t, 38, gs.Players[PlayerAI].Life)
	assert.Equal(t, BaseLife, gs.Players[PlayerHuman].Life)
	assert.Equal(t, PowerDeckSize, gs.PowerCardCount())

	c, _ := e.Pending()
	e.Fire(c)
	gs = e.State()
	assert.Contains(t, gs.Discard, v)
	require.NotNil(t, gs.Vortex[0])
	assert.NotEqual(t, v.ID, gs.Vortex[0].ID)
	assert.Equal(t, 1, gs.Players[PlayerHuman].Turn.VortexDefenses)
	assert.False(t, gs.Players[PlayerHuman].CanVortexDefend())
}

func TestLevelUpFlow(t *testing.T) {
	e, logger := newTestEngine(t)
	startMatch(t, e, "sable")
	cards := rigHand(t, e, PlayerHuman, atk(ColorWhite, 6), def(ColorBlack, 4), def(ColorWhite, 1), atk(ColorBlack, 2), atk(ColorBlack, 3))

	mustDispatch(t, e, Intent{Type: IntentSelectCardsForLevelUp, CardIDs: []int{cards[2].ID, cards[3].ID}})
	err := e.Dispatch(Intent{Type: IntentConfirmLevelUp})
	assert.True(t, IsRuleError(err), "1+2 is short of 10")
	assert.Equal(t, PhaseSelectCardsForLevelUp, e.Phase())

	mustDispatch(t, e, Intent{Type: IntentSelectCardsForLevelUp, CardIDs: []int{cards[0].ID, cards[1].ID}})
	mustDispatch(t, e, Intent{Type: IntentConfirmLevelUp})

	gs := e.State()
	p := gs.Players[PlayerHuman]
	assert.Equal(t, PhaseMain, gs.Phase)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 3, p.AttackBudget())
	assert.Len(t, p.PowerHand, 3)
	assert.Contains(t, gs.Discard, cards[0])
	assert.Contains(t, gs.Discard, cards[1])
	assert.Len(t, logger.EventsOfType(log.EventLevelUp), 1)

	err = e.Dispatch(Intent{Type: IntentSelectCardsForLevelUp, CardIDs: []int{cards[2].ID}})
	assert.True(t, IsRuleError(err), "one level up per turn")
}

func TestCancelRestoresSelection(t *testing.T) {
	e, _ := newTestEngine(t)
	startMatch(t, e, "sable")
	cards := rigHand(t, e, PlayerHuman, atk(ColorWhite, 6), def(ColorBlack, 4), def(ColorWhite, 1), atk(ColorBlack, 2), atk(ColorBlack, 3))
	before := e.State()

	mustDispatch(t, e, Intent{Type: IntentSelectAttackCard, CardID: cards[0].ID})
	mustDispatch(t, e, Intent{Type: IntentCancel})
	mustDispatch(t, e, Intent{Type: IntentSelectCardsForLevelUp, CardIDs: []int{cards[0].ID, cards[1].ID}})
	mustDispatch(t, e, Intent{Type: IntentCancel})

	gs := e.State()
	assert.Equal(t, PhaseMain, gs.Phase)
	assert.Nil(t, gs.Pending)
	assert.Equal(t, before.Players[PlayerHuman].PowerHand, gs.Players[PlayerHuman].PowerHand)
	assert.Zero(t, gs.Players[PlayerHuman].Turn.Attacks)
}

func TestMagicWallActivation(t *testing.T) {
	e, logger := newTestEngine(t)
	startMatch(t, e, "sable")
	cards := rigHand(t, e, PlayerHuman, atk(ColorWhite, 6), def(ColorBlack, 4), def(ColorWhite, 1), atk(ColorBlack, 2), atk(ColorBlack, 3))
	wall := e.gs.Player(PlayerHuman).ActiveAbilities[0]
	require.Equal(t, EffectMagicWall, wall.Effect)

	mustDispatch(t, e, Intent{Type: IntentActivateAbility, AbilityID: wall.ID})
	assert.Equal(t, PhaseSelectDiscardForAbility, e.Phase())
	mustDispatch(t, e, Intent{Type: IntentDiscardCard, CardID: cards[0].ID})

	gs := e.State()
	p := gs.Players[PlayerHuman]
	assert.Equal(t, PhaseMain, gs.Phase)
	require.NotNil(t, p.Shield)
	assert.Equal(t, 6, p.Shield.Value)
	assert.True(t, p.Turn.UsedAbilities[wall.ID])
	assert.Contains(t, gs.Discard, cards[0])
	assert.Len(t, logger.EventsOfType(log.EventShieldCast), 1)

	err := e.Dispatch(Intent{Type: IntentActivateAbility, AbilityID: wall.ID})
	assert.True(t, IsRuleError(err))
}

func TestShieldBreaksAndCanBeRecast(t *testing.T) {
	e, logger := newTestEngine(t)
	startMatch(t, e, "sable")
	e.gs.Player(PlayerHuman).Shield = &Shield{Value: 3}
	rigHand(t, e, PlayerAI, atk(ColorBlack, 5), def(ColorBlack, 1), def(ColorBlack, 2), def(ColorWhite, 1), def(ColorWhite, 2))
	mustDispatch(t, e, Intent{Type: IntentEndTurn})
	fireUntil(t, e, PhaseAwaitingPlayerDefense)
	mustDispatch(t, e, Intent{Type: IntentNoDefense})
	fireUntil(t, e, PhaseShowdown)

	gs := e.State()
	p := gs.Players[PlayerHuman]
	assert.Nil(t, p.Shield, "a spent shield is cleared, not zero")
	assert.Equal(t, 38, p.Life)
	assert.Len(t, logger.EventsOfType(log.EventShieldBroken), 1)

	settleEngine(t, e)
	require.Equal(t, PhaseMain, e.Phase())
	cards := e.State().Players[PlayerHuman].PowerHand
	mustDispatch(t, e, Intent{Type: IntentActivateAbility, AbilityID: p.ActiveAbilities[0].ID})
	mustDispatch(t, e, Intent{Type: IntentDiscardCard, CardID: cards[0].ID})
	require.NotNil(t, e.State().Players[PlayerHuman].Shield)
	assert.Equal(t, cards[0].Value, e.State().Players[PlayerHuman].Shield.Value)
}

func TestAffinityHealRequiresMatchingColor(t *testing.T) {
	e, _ := newTestEngine(t)
	startMatch(t, e, "aurelia")
	cards := rigHand(t, e, PlayerHuman, atk(ColorBlack, 8), atk(ColorWhite, 8), def(ColorWhite, 1), atk(ColorBlack, 2), atk(ColorBlack, 3))
	e.gs.Player(PlayerHuman).Life = 30
	heal := e.gs.Player(PlayerHuman).ActiveAbilities[0]
	require.Equal(t, EffectLightAffinity, heal.Effect)

	mustDispatch(t, e, Intent{Type: IntentActivateAbility, AbilityID: heal.ID})
	err := e.Dispatch(Intent{Type: IntentDiscardCard, CardID: cards[0].ID})
	assert.True(t, IsRuleError(err))
	assert.Equal(t, PhaseSelectDiscardForAbility, e.Phase())
	assert.Len(t, e.State().Players[PlayerHuman].PowerHand, 5)

	mustDispatch(t, e, Intent{Type: IntentDiscardCard, CardID: cards[1].ID})
	gs := e.State()
	assert.Equal(t, 30+4+1, gs.Players[PlayerHuman].Life)
	assert.Equal(t, PhaseMain, gs.Phase)
}

func TestElementalControlTogglesColor(t *testing.T) {
	e, logger := newTestEngine(t)
	startMatch(t, e, "sable")
	e.gs.Player(PlayerHuman).Level = 2
	ctl := grant(e, PlayerHuman, EffectElementalControl)
	cards := rigHand(t, e, PlayerHuman, atk(ColorBlack, 5), atk(ColorWhite, 8), def(ColorWhite, 1), atk(ColorBlack, 2), atk(ColorBlack, 3))

	mustDispatch(t, e, Intent{Type: IntentActivateAbility, AbilityID: ctl.ID})
	mustDispatch(t, e, Intent{Type: IntentDiscardCard, CardID: cards[2].ID})
	assert.Equal(t, PhaseSelectControlTarget, e.Phase())
	mustDispatch(t, e, Intent{Type: IntentChooseTargetCard, CardID: cards[0].ID})

	gs := e.State()
	c, ok := gs.Players[PlayerHuman].HandCard(cards[0].ID)
	require.True(t, ok)
	assert.Equal(t, ColorWhite, c.Color)
	assert.Equal(t, CardATK, c.Type)
	assert.Equal(t, 5, c.Value)
	assert.Equal(t, PhaseMain, gs.Phase)
	assert.Len(t, logger.EventsOfType(log.EventCardMutate), 1)
	assert.Equal(t, PowerDeckSize, gs.PowerCardCount())
}

func TestMagicControlTogglesType(t *testing.T) {
	e, _ := newTestEngine(t)
	startMatch(t, e, "sable")
	e.gs.Player(PlayerHuman).Level = 3
	ctl := grant(e, PlayerHuman, EffectMagicControl)
	cards := rigHand(t, e, PlayerHuman, def(ColorBlack, 9), atk(ColorWhite, 8), def(ColorWhite, 1), atk(ColorBlack, 2), atk(ColorBlack, 3))

	mustDispatch(t, e, Intent{Type: IntentActivateAbility, AbilityID: ctl.ID})
	mustDispatch(t, e, Intent{Type: IntentDiscardCard, CardID: cards[2].ID})
	mustDispatch(t, e, Intent{Type: IntentChooseTargetCard, CardID: cards[0].ID})

	c, ok := e.State().Players[PlayerHuman].HandCard(cards[0].ID)
	require.True(t, ok)
	assert.Equal(t, CardATK, c.Type)
	assert.Equal(t, ColorBlack, c.Color)
}

func TestCancelControlTargetReturnsPayment(t *testing.T) {
	e, _ := newTestEngine(t)
	startMatch(t, e, "sable")
	e.gs.Player(PlayerHuman).Level = 2
	ctl := grant(e, PlayerHuman, EffectElementalControl)
	cards := rigHand(t, e, PlayerHuman, atk(ColorBlack, 5), atk(ColorWhite, 8), def(ColorWhite, 1), atk(ColorBlack, 2))
	discards := len(e.gs.Discard)

	mustDispatch(t, e, Intent{Type: IntentActivateAbility, AbilityID: ctl.ID})
	mustDispatch(t, e, Intent{Type: IntentDiscardCard, CardID: cards[2].ID})
	require.Equal(t, PhaseSelectControlTarget, e.Phase())
	assert.Equal(t, PowerDeckSize, e.State().PowerCardCount(), "the held payment is still counted")
	mustDispatch(t, e, Intent{Type: IntentCancel})

	gs := e.State()
	p := gs.Players[PlayerHuman]
	assert.Equal(t, PhaseMain, gs.Phase)
	assert.Nil(t, gs.Pending)
	assert.ElementsMatch(t, cards, p.PowerHand)
	assert.Len(t, gs.Discard, discards)
	assert.False(t, p.Turn.UsedAbilities[ctl.ID])
	assert.Equal(t, PowerDeckSize, gs.PowerCardCount())

	// the ability is still available this turn
	mustDispatch(t, e, Intent{Type: IntentActivateAbility, AbilityID: ctl.ID})
	mustDispatch(t, e, Intent{Type: IntentDiscardCard, CardID: cards[2].ID})
	mustDispatch(t, e, Intent{Type: IntentChooseTargetCard, CardID: cards[0].ID})
	gs = e.State()
	assert.True(t, gs.Players[PlayerHuman].Turn.UsedAbilities[ctl.ID])
	assert.Len(t, gs.Discard, discards+1)
	assert.Len(t, gs.Players[PlayerHuman].PowerHand, 3)
}

func TestControlPaymentNeedsATarget(t *testing.T) {
	e, _ := newTestEngine(t)
	startMatch(t, e, "sable")
	e.gs.Player(PlayerHuman).Level = 2
	ctl := grant(e, PlayerHuman, EffectElementalControl)
	cards := rigHand(t, e, PlayerHuman, def(ColorWhite, 1))

	mustDispatch(t, e, Intent{Type: IntentActivateAbility, AbilityID: ctl.ID})
	err := e.Dispatch(Intent{Type: IntentDiscardCard, CardID: cards[0].ID})

	require.True(t, IsRuleError(err), "%v", err)
	assert.Equal(t, PhaseSelectDiscardForAbility, e.Phase())
	assert.Equal(t, cards, e.State().Players[PlayerHuman].PowerHand)
}

func TestPacingDelays(t *testing.T) {
	fast := NewEngine(Config{Seed: testSeed, AiDelay: -1})
	startMatch(t, fast, "sable")
	mustDispatch(t, fast, Intent{Type: IntentEndTurn})
	c, ok := fast.Pending()
	require.True(t, ok)
	assert.Equal(t, StepAiTurn, c.Step)
	assert.Zero(t, c.Delay, "a negative delay turns pacing off")

	paced := NewEngine(Config{Seed: testSeed})
	startMatch(t, paced, "sable")
	mustDispatch(t, paced, Intent{Type: IntentEndTurn})
	c, ok = paced.Pending()
	require.True(t, ok)
	assert.Equal(t, DefaultAiDelay, c.Delay)
}

func TestMagicVisionLastsOneTurn(t *testing.T) {
	e, _ := newTestEngine(t)
	startMatch(t, e, "orin")
	vision := e.gs.Player(PlayerHuman).ActiveAbilities[0]
	require.Equal(t, EffectMagicVision, vision.Effect)
	cards := e.State().Players[PlayerHuman].PowerHand

	mustDispatch(t, e, Intent{Type: IntentActivateAbility, AbilityID: vision.ID})
	mustDispatch(t, e, Intent{Type: IntentDiscardCard, CardID: cards[0].ID})
	assert.True(t, e.State().Players[PlayerHuman].Turn.HandRevealed)

	mustDispatch(t, e, Intent{Type: IntentEndTurn})
	assert.False(t, e.State().Players[PlayerHuman].Turn.HandRevealed)
}

func TestDrawAbilityFlow(t *testing.T) {
	e, logger := newTestEngine(t)
	startMatch(t, e, "aurelia")
	cards := e.State().Players[PlayerHuman].PowerHand

	mustDispatch(t, e, Intent{Type: IntentDrawAbility})
	assert.Equal(t, PhaseSelectDiscardForDraw, e.Phase())
	mustDispatch(t, e, Intent{Type: IntentDiscardCard, CardID: cards[0].ID})

	gs := e.State()
	p := gs.Players[PlayerHuman]
	require.Len(t, p.AbilityHand, 1)
	drawn := p.AbilityHand[0]
	assert.NoError(t, canAcquire(p, drawn))
	assert.False(t, p.HasActive(drawn.Effect))
	for _, a := range gs.AbilityDeck {
		assert.NotEqual(t, drawn.ID, a.ID)
	}
	assert.Len(t, logger.EventsOfType(log.EventAbilityDraw), 1)

	err := e.Dispatch(Intent{Type: IntentDrawAbility})
	assert.True(t, IsRuleError(err), "one draw per turn")

	mustDispatch(t, e, Intent{Type: IntentPlayAbilityFromHand, AbilityID: drawn.ID})
	p = e.State().Players[PlayerHuman]
	assert.Empty(t, p.AbilityHand)
	assert.Len(t, p.ActiveAbilities, 2)
}

func TestPlayAbilityBeyondCapacity(t *testing.T) {
	e, _ := newTestEngine(t)
	startMatch(t, e, "sable")
	p := e.gs.Player(PlayerHuman)
	vision := newAbility(int(EffectMagicVision)+1, EffectMagicVision)
	p.AbilityHand = append(p.AbilityHand, vision)

	err := e.Dispatch(Intent{Type: IntentPlayAbilityFromHand, AbilityID: vision.ID})

	assert.True(t, IsRuleError(err))
	assert.Len(t, e.State().Players[PlayerHuman].ActiveAbilities, 1)
}

func TestDiscardFromMain(t *testing.T) {
	e, logger := newTestEngine(t)
	startMatch(t, e, "sable")
	cards := e.State().Players[PlayerHuman].PowerHand

	mustDispatch(t, e, Intent{Type: IntentDiscardCard, CardID: cards[0].ID})

	gs := e.State()
	assert.Len(t, gs.Players[PlayerHuman].PowerHand, BaseHandSize-1)
	assert.Contains(t, gs.Discard, cards[0])
	assert.Len(t, logger.EventsOfType(log.EventDiscard), 1)
}

func TestRoundTransitionAndNextRound(t *testing.T) {
	e, logger := newTestEngine(t)
	startMatch(t, e, "kesh")
	aiChar := e.State().Players[PlayerAI].Character
	cards := rigHand(t, e, PlayerHuman, atk(ColorBlack, 7), atk(ColorBlack, 8), def(ColorWhite, 3), def(ColorWhite, 4), atk(ColorWhite, 6))
	rigDefenseless(t, e)
	e.gs.Player(PlayerAI).Life = 5

	attackDirect(t, e, cards[0])
	settleEngine(t, e)

	gs := e.State()
	assert.Equal(t, PhaseRoundTransition, gs.Phase)
	assert.Equal(t, StatusRoundOver, gs.Status)
	assert.Equal(t, [2]int{1, 0}, gs.RoundWins)
	require.NotNil(t, gs.Winner)
	assert.Equal(t, PlayerHuman, *gs.Winner)
	assert.Zero(t, gs.Players[PlayerAI].Life)
	assert.Len(t, logger.EventsOfType(log.EventRoundWin), 1)

	mustDispatch(t, e, Intent{Type: IntentStartNextRound})
	settleEngine(t, e)

	gs = e.State()
	assert.Equal(t, 2, gs.Round)
	assert.Equal(t, PhaseMain, gs.Phase)
	assert.Equal(t, StatusPlaying, gs.Status)
	assert.Equal(t, [2]int{1, 0}, gs.RoundWins)
	assert.Nil(t, gs.Winner)
	assert.Equal(t, "kesh", gs.Players[PlayerHuman].Character.ID)
	assert.Equal(t, aiChar, gs.Players[PlayerAI].Character)
	for _, p := range gs.Players {
		assert.Equal(t, BaseLife, p.Life)
		assert.Equal(t, 1, p.Level)
	}
	assert.Equal(t, PowerDeckSize, gs.PowerCardCount())
}

func TestFinalRoundEndsMatch(t *testing.T) {
	e, logger := newTestEngine(t)
	startMatch(t, e, "kesh")
	firstMatch := e.State().MatchID
	cards := rigHand(t, e, PlayerHuman, atk(ColorBlack, 7), atk(ColorBlack, 8), def(ColorWhite, 3), def(ColorWhite, 4), atk(ColorWhite, 6))
	rigDefenseless(t, e)
	e.gs.Round = FinalRound
	e.gs.RoundWins = [2]int{1, 1}
	e.gs.Player(PlayerAI).Life = 2

	attackDirect(t, e, cards[0])
	settleEngine(t, e)

	gs := e.State()
	assert.Equal(t, PhaseGameOver, gs.Phase)
	assert.Equal(t, StatusFinished, gs.Status)
	require.NotNil(t, gs.Winner)
	assert.Equal(t, PlayerHuman, *gs.Winner)
	assert.Equal(t, [2]int{2, 1}, gs.RoundWins)
	assert.Len(t, logger.EventsOfType(log.EventWin), 1)
	assert.Equal(t, "PLAYER wins the match", e.Status())

	mustDispatch(t, e, Intent{Type: IntentStartGame})
	gs = e.State()
	assert.Equal(t, PhaseCharacterSelect, gs.Phase)
	assert.Equal(t, [2]int{}, gs.RoundWins)
	assert.NotEqual(t, firstMatch, gs.MatchID)
	assert.Nil(t, gs.Players[PlayerHuman])
}

func TestRecoilKnockoutFavoursDefender(t *testing.T) {
	e, _ := newTestEngine(t)
	startMatch(t, e, "sable")
	cards := rigHand(t, e, PlayerHuman, atk(ColorBlack, 1), atk(ColorBlack, 8), def(ColorWhite, 3), def(ColorWhite, 4), atk(ColorWhite, 6))
	rigHand(t, e, PlayerAI, def(ColorWhite, 10), atk(ColorWhite, 2), atk(ColorBlack, 3), atk(ColorBlack, 2), atk(ColorWhite, 3))
	e.gs.Player(PlayerHuman).Life = 3

	attackDirect(t, e, cards[0])
	settleEngine(t, e)

	gs := e.State()
	assert.Equal(t, PhaseRoundTransition, gs.Phase)
	require.NotNil(t, gs.Winner)
	assert.Equal(t, PlayerAI, *gs.Winner)
	assert.Equal(t, [2]int{0, 1}, gs.RoundWins)
}
