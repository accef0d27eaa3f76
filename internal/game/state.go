package game

import (
	"math/rand"

	"github.com/peterkuimelis/vortex/internal/log"
)

const (
	BaseLife          = 40
	ResistanceLifeBon = 10 // max life per level while Magic Resistance is active
	BaseHandSize      = 5
	LevelUpThreshold  = 10
	MaxLevel          = 3
	FinalRound        = 3
)

// Shield is a permanent shield. A player without a shield has a nil *Shield;
// a shield never holds zero.
type Shield struct {
	Value int
}

// TurnCounters are per-turn limits, reset at the start of the owner's turn.
type TurnCounters struct {
	Attacks        int
	VortexAttacks  int
	VortexDefenses int
	LevelUps       int
	AbilitiesDrawn int
	UsedAbilities  map[int]bool // ability IDs triggered this turn
	HandRevealed   bool
	Drew           bool
}

// Player represents one side's entire state.
type Player struct {
	ID          PlayerID
	Character   Character
	Life        int
	Level       int
	MaxHandSize int

	PowerHand       []Card
	AbilityHand     []AbilityCard
	ActiveAbilities []AbilityCard

	Shield *Shield
	Turn   TurnCounters
}

// NewPlayer creates a level 1 player with the character's starting ability in play.
func NewPlayer(id PlayerID, ch Character, startingAbilityID int) *Player {
	p := &Player{
		ID:        id,
		Character: ch,
		Life:      BaseLife,
		Level:     1,
		ActiveAbilities: []AbilityCard{
			newAbility(startingAbilityID, ch.StartingAbility),
		},
	}
	p.ResetTurn()
	p.recalculatePassives()
	return p
}

// HasActive reports whether an ability with the tag is in play.
func (p *Player) HasActive(tag EffectTag) bool {
	for _, a := range p.ActiveAbilities {
		if a.Effect == tag {
			return true
		}
	}
	return false
}

// Holds reports whether the tag is in play or waiting in the ability hand.
func (p *Player) Holds(tag EffectTag) bool {
	if p.HasActive(tag) {
		return true
	}
	for _, a := range p.AbilityHand {
		if a.Effect == tag {
			return true
		}
	}
	return false
}

// MaxLife returns the current life cap.
func (p *Player) MaxLife() int {
	if p.HasActive(EffectMagicResistance) {
		return BaseLife + ResistanceLifeBon*p.Level
	}
	return BaseLife
}

// ActiveCapacity returns how many abilities may be in play at once.
func (p *Player) ActiveCapacity() int {
	if p.Character.Affinity == AffinityNeutral {
		return p.Level
	}
	return p.Level + 1
}

// AttackBudget returns the number of attacks allowed per turn.
func (p *Player) AttackBudget() int {
	return 1 + p.Level
}

// AttacksRemaining returns the unused part of the attack budget.
func (p *Player) AttacksRemaining() int {
	n := p.AttackBudget() - p.Turn.Attacks
	if n < 0 {
		return 0
	}
	return n
}

// CanVortexAttack reports whether this turn's Vortex attack allowance is left.
func (p *Player) CanVortexAttack() bool {
	return p.HasActive(EffectMasterVortex) || p.Turn.VortexAttacks < 1
}

// CanVortexDefend reports whether the player may defend through a Vortex slot.
func (p *Player) CanVortexDefend() bool {
	return p.HasActive(EffectVortexGuard) && p.Turn.VortexDefenses < 1
}

// HandCard looks up a card in hand by ID.
func (p *Player) HandCard(id int) (Card, bool) {
	for _, c := range p.PowerHand {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// RemoveFromHand removes a card from the hand by ID.
func (p *Player) RemoveFromHand(id int) (Card, bool) {
	for i, c := range p.PowerHand {
		if c.ID == id {
			p.PowerHand = append(p.PowerHand[:i:i], p.PowerHand[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}

// replaceInHand swaps the card with the same ID for c.
func (p *Player) replaceInHand(c Card) bool {
	for i := range p.PowerHand {
		if p.PowerHand[i].ID == c.ID {
			p.PowerHand[i] = c
			return true
		}
	}
	return false
}

// AbilityInHand looks up an unplayed ability by ID.
func (p *Player) AbilityInHand(id int) (AbilityCard, int, bool) {
	for i, a := range p.AbilityHand {
		if a.ID == id {
			return a, i, true
		}
	}
	return AbilityCard{}, -1, false
}

// ActiveAbility looks up an ability in play by ID.
func (p *Player) ActiveAbility(id int) (AbilityCard, bool) {
	for _, a := range p.ActiveAbilities {
		if a.ID == id {
			return a, true
		}
	}
	return AbilityCard{}, false
}

// HandOfType returns the hand cards of the given type.
func (p *Player) HandOfType(ct CardType) []Card {
	var out []Card
	for _, c := range p.PowerHand {
		if c.Type == ct {
			out = append(out, c)
		}
	}
	return out
}

// ResetTurn clears the per-turn counters.
func (p *Player) ResetTurn() {
	p.Turn = TurnCounters{UsedAbilities: make(map[int]bool)}
}

// recalculatePassives reapplies hand-size and life caps after the ability set or
// level changes.
func (p *Player) recalculatePassives() {
	p.MaxHandSize = BaseHandSize
	if p.HasActive(EffectArcaneMemory) {
		p.MaxHandSize++
	}
	if max := p.MaxLife(); p.Life > max {
		p.Life = max
	}
}

func (p *Player) clone() *Player {
	cp := *p
	cp.PowerHand = append([]Card(nil), p.PowerHand...)
	cp.AbilityHand = append([]AbilityCard(nil), p.AbilityHand...)
	cp.ActiveAbilities = append([]AbilityCard(nil), p.ActiveAbilities...)
	if p.Shield != nil {
		s := *p.Shield
		cp.Shield = &s
	}
	cp.Turn.UsedAbilities = make(map[int]bool, len(p.Turn.UsedAbilities))
	for k, v := range p.Turn.UsedAbilities {
		cp.Turn.UsedAbilities[k] = v
	}
	return &cp
}

// --- GameState ---

// GameState holds the complete state of one round of a match.
type GameState struct {
	MatchID       string
	Status        Status
	Phase         Phase
	CurrentPlayer PlayerID
	Winner        *PlayerID
	Round         int
	RoundWins     [2]int
	Turn          int // 1-based turn counter within the round

	Players [2]*Player

	PowerDeck   []Card // top of deck is last element (pop from end)
	AbilityDeck []AbilityCard
	Discard     []Card
	Vortex      [VortexSlots]*Card

	Pending *PendingAction

	// Token increases on every committed transition; scheduled continuations
	// carry the token they were armed with.
	Token uint64
}

// NewRoundState creates a fresh round: shuffled decks, starting abilities in
// play, empty hands. Dealing happens on entry to the Start Game phase.
func NewRoundState(matchID string, round int, human, ai Character, wins [2]int, rng *rand.Rand) *GameState {
	gs := &GameState{
		MatchID:     matchID,
		Status:      StatusPlaying,
		Phase:       PhaseStartGame,
		Round:       round,
		RoundWins:   wins,
		PowerDeck:   NewPowerDeck(),
		AbilityDeck: NewAbilityDeck(human.StartingAbility, ai.StartingAbility),
	}
	shuffleCards(rng, gs.PowerDeck)

	// Starting abilities take the IDs their catalog entry would have had in the deck.
	gs.Players[PlayerHuman] = NewPlayer(PlayerHuman, human, int(human.StartingAbility)+1)
	gs.Players[PlayerAI] = NewPlayer(PlayerAI, ai, int(ai.StartingAbility)+1)
	return gs
}

// Player returns the side with the given ID.
func (gs *GameState) Player(id PlayerID) *Player {
	return gs.Players[id]
}

// Current returns the active player.
func (gs *GameState) Current() *Player {
	return gs.Players[gs.CurrentPlayer]
}

// Opponent returns the non-active player.
func (gs *GameState) Opponent() *Player {
	return gs.Players[gs.CurrentPlayer.Other()]
}

// PowerCardCount counts every power card wherever it currently is. It equals
// PowerDeckSize in every reachable state once the round is dealt.
func (gs *GameState) PowerCardCount() int {
	n := len(gs.PowerDeck) + len(gs.Discard)
	for _, p := range gs.Players {
		if p != nil {
			n += len(p.PowerHand)
		}
	}
	for _, v := range gs.Vortex {
		if v != nil {
			n++
		}
	}
	if pa := gs.Pending; pa != nil {
		if pa.InFlight && pa.AttackCard != nil {
			n++
		}
		if pa.DefenseCard != nil && pa.VortexDefenseSlot == nil {
			n++
		}
		if pa.PaidCard != nil {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (gs *GameState) Clone() *GameState {
	cp := *gs
	for i, p := range gs.Players {
		if p != nil {
			cp.Players[i] = p.clone()
		}
	}
	cp.PowerDeck = append([]Card(nil), gs.PowerDeck...)
	cp.AbilityDeck = append([]AbilityCard(nil), gs.AbilityDeck...)
	cp.Discard = append([]Card(nil), gs.Discard...)
	for i, v := range gs.Vortex {
		if v != nil {
			c := *v
			cp.Vortex[i] = &c
		}
	}
	if gs.Winner != nil {
		w := *gs.Winner
		cp.Winner = &w
	}
	if gs.Pending != nil {
		cp.Pending = gs.Pending.clone()
	}
	return &cp
}

func (pa *PendingAction) clone() *PendingAction {
	cp := *pa
	if pa.AttackCard != nil {
		c := *pa.AttackCard
		cp.AttackCard = &c
	}
	if pa.DefenseCard != nil {
		c := *pa.DefenseCard
		cp.DefenseCard = &c
	}
	if pa.PaidCard != nil {
		c := *pa.PaidCard
		cp.PaidCard = &c
	}
	if pa.VortexAttackSlot != nil {
		s := *pa.VortexAttackSlot
		cp.VortexAttackSlot = &s
	}
	if pa.VortexDefenseSlot != nil {
		s := *pa.VortexDefenseSlot
		cp.VortexDefenseSlot = &s
	}
	if pa.Ability != nil {
		a := *pa.Ability
		cp.Ability = &a
	}
	cp.LevelUpCards = append([]int(nil), pa.LevelUpCards...)
	if pa.Result != nil {
		r := *pa.Result
		cp.Result = &r
	}
	return &cp
}

// stamp returns the log context for the current state.
func (gs *GameState) stamp() log.Stamp {
	return log.Stamp{Round: gs.Round, Turn: gs.Turn, Phase: gs.Phase.String()}
}

// refillDeck shuffles the discard pile back into the deck. Returns the number
// of cards moved.
func (gs *GameState) refillDeck(rng *rand.Rand) int {
	n := len(gs.Discard)
	if n == 0 {
		return 0
	}
	gs.PowerDeck = append(gs.PowerDeck, gs.Discard...)
	gs.Discard = nil
	shuffleCards(rng, gs.PowerDeck)
	return n
}

// popDeck removes the top card of the power deck.
func (gs *GameState) popDeck() (Card, bool) {
	if len(gs.PowerDeck) == 0 {
		return Card{}, false
	}
	c := gs.PowerDeck[len(gs.PowerDeck)-1]
	gs.PowerDeck = gs.PowerDeck[:len(gs.PowerDeck)-1]
	return c, true
}

// drawUpTo moves cards from the deck into the player's hand until the hand is
// full or the deck is empty. Returns the number drawn.
func (gs *GameState) drawUpTo(p *Player) int {
	drawn := 0
	for len(p.PowerHand) < p.MaxHandSize {
		c, ok := gs.popDeck()
		if !ok {
			break
		}
		p.PowerHand = append(p.PowerHand, c)
		drawn++
	}
	return drawn
}

// discard moves a card to the discard pile.
func (gs *GameState) discard(c Card) {
	gs.Discard = append(gs.Discard, c)
}
