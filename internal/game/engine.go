package game

import (
	"errors"
	"math/rand"
	"time"

	"github.com/peterkuimelis/vortex/internal/log"
)

// Default pacing for delayed continuations.
const (
	DefaultShowdownDelay = 1500 * time.Millisecond
	DefaultCombatDelay   = 800 * time.Millisecond
	DefaultAiDelay       = 1000 * time.Millisecond
)

// Config holds configuration for creating an engine.
type Config struct {
	Roster []Character // nil uses DefaultRoster
	Logger log.EventLogger
	Seed   int64 // RNG seed (0 for random)

	ShowdownDelay time.Duration
	CombatDelay   time.Duration
	AiDelay       time.Duration
}

// Step names a delayed continuation.
type Step int

const (
	StepDraw Step = iota
	StepAiTurn
	StepAiDefense
	StepResolveCombat
	StepFinalize
)

func (s Step) String() string {
	switch s {
	case StepDraw:
		return "draw"
	case StepAiTurn:
		return "ai_turn"
	case StepAiDefense:
		return "ai_defense"
	case StepResolveCombat:
		return "resolve_combat"
	case StepFinalize:
		return "finalize"
	default:
		return "unknown"
	}
}

// Continuation is a transition the engine wants run after Delay. It is bound to
// the state it was armed against; Fire drops it once the state has moved on.
type Continuation struct {
	Step  Step
	Token uint64
	Phase Phase
	Delay time.Duration
}

// Engine owns one match. It applies intents and continuations as whole-state
// transitions: each runs against a clone that is committed only on success.
// An Engine is not safe for concurrent use.
type Engine struct {
	gs     *GameState
	roster []Character
	logger log.EventLogger
	rng    *rand.Rand
	status string

	showdownDelay time.Duration
	combatDelay   time.Duration
	aiDelay       time.Duration

	// events raised by the transition in progress; flushed on commit.
	buf []log.GameEvent
}

// NewEngine creates an engine in the Init phase.
func NewEngine(cfg Config) *Engine {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	roster := cfg.Roster
	if roster == nil {
		roster = DefaultRoster
	}
	e := &Engine{
		gs:            &GameState{MatchID: newMatchID(), Phase: PhaseInit, Status: StatusSetup},
		roster:        roster,
		logger:        logger,
		rng:           rand.New(rand.NewSource(seed)),
		showdownDelay: orDefault(cfg.ShowdownDelay, DefaultShowdownDelay),
		combatDelay:   orDefault(cfg.CombatDelay, DefaultCombatDelay),
		aiDelay:       orDefault(cfg.AiDelay, DefaultAiDelay),
	}
	e.status = hint(e.gs)
	return e
}

func orDefault(d, def time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d == 0 {
		return def
	}
	return d
}

// State returns a deep snapshot of the committed state.
func (e *Engine) State() *GameState {
	return e.gs.Clone()
}

// Phase returns the committed phase.
func (e *Engine) Phase() Phase {
	return e.gs.Phase
}

// Status returns the current status hint.
func (e *Engine) Status() string {
	return e.status
}

// Logger returns the engine's event logger.
func (e *Engine) Logger() log.EventLogger {
	return e.logger
}

// Roster returns the characters available at character select.
func (e *Engine) Roster() []Character {
	return e.roster
}

// Dispatch applies an intent. An intent that does not fit the phase returns
// ErrIllegalTransition and changes nothing. A rule violation returns a
// *RuleError and only updates the status hint.
func (e *Engine) Dispatch(in Intent) error {
	next := e.gs.Clone()
	e.buf = e.buf[:0]
	if err := e.apply(next, in); err != nil {
		e.buf = e.buf[:0]
		var re *RuleError
		if errors.As(err, &re) {
			e.status = re.Reason
		}
		return err
	}
	e.commit(next)
	return nil
}

// Pending returns the continuation the committed state is waiting on, if any.
func (e *Engine) Pending() (Continuation, bool) {
	c := Continuation{Token: e.gs.Token, Phase: e.gs.Phase}
	switch e.gs.Phase {
	case PhaseDraw:
		c.Step = StepDraw
	case PhaseAiTurn:
		c.Step, c.Delay = StepAiTurn, e.aiDelay
	case PhaseAwaitingAiDefense:
		c.Step, c.Delay = StepAiDefense, e.aiDelay
	case PhaseResolveDirectCombat, PhaseResolveVortexCombat:
		c.Step, c.Delay = StepResolveCombat, e.combatDelay
	case PhaseShowdown:
		c.Step, c.Delay = StepFinalize, e.showdownDelay
	default:
		return Continuation{}, false
	}
	return c, true
}

// Fire runs a continuation if it still matches the committed state. Stale
// continuations are dropped and Fire returns false.
func (e *Engine) Fire(c Continuation) bool {
	cur, ok := e.Pending()
	if !ok || cur.Token != c.Token || cur.Phase != c.Phase || cur.Step != c.Step {
		return false
	}
	next := e.gs.Clone()
	e.buf = e.buf[:0]
	switch c.Step {
	case StepDraw:
		e.drawStep(next)
	case StepAiTurn:
		e.aiTurn(next)
	case StepAiDefense:
		e.aiDefense(next)
	case StepResolveCombat:
		e.resolveCombat(next)
	case StepFinalize:
		e.finalize(next)
	}
	e.commit(next)
	return true
}

func (e *Engine) commit(next *GameState) {
	next.Token = e.gs.Token + 1
	e.gs = next
	for _, ev := range e.buf {
		e.logger.Log(ev)
	}
	e.buf = e.buf[:0]
	e.status = hint(next)
}

// log queues an event for the transition in progress.
func (e *Engine) log(event log.GameEvent) {
	e.buf = append(e.buf, event)
}

// setPhase moves to p and records the change.
func (e *Engine) setPhase(gs *GameState, p Phase) {
	if gs.Phase == p {
		return
	}
	gs.Phase = p
	e.log(log.NewPhaseChangeEvent(gs.stamp()))
}

// hint is the default status line for a phase.
func hint(gs *GameState) string {
	switch gs.Phase {
	case PhaseInit:
		return "Start a new game"
	case PhaseCharacterSelect:
		return "Choose your character"
	case PhaseDraw:
		return "Drawing cards"
	case PhaseAiTurn:
		return "AI is thinking"
	case PhaseMain:
		return "Your turn: attack, use abilities, or end the turn"
	case PhaseSelectAttackCard:
		return "Attack directly or choose a Vortex slot"
	case PhaseSelectDiscardForAbility:
		return "Discard a card to pay for the ability"
	case PhaseSelectDiscardForDraw:
		return "Discard a card to draw an ability"
	case PhaseSelectControlTarget:
		return "Choose one of your cards to transform"
	case PhaseSelectCardsForLevelUp:
		return "Select cards worth 10 or more to level up"
	case PhaseAwaitingAiDefense:
		return "AI is choosing a defense"
	case PhaseAwaitingPlayerDefense:
		return "Defend with a card, a Vortex slot, or take the hit"
	case PhaseResolveDirectCombat, PhaseResolveVortexCombat:
		return "Resolving combat"
	case PhaseShowdown:
		return "Showdown"
	case PhaseRoundTransition:
		if gs.Winner != nil {
			return gs.Winner.String() + " wins the round"
		}
		return "Round over"
	case PhaseGameOver:
		if gs.Winner != nil {
			return gs.Winner.String() + " wins the match"
		}
		return "Game over"
	default:
		return ""
	}
}
