package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/peterkuimelis/vortex/internal/game"
	"github.com/peterkuimelis/vortex/internal/log"
	"github.com/peterkuimelis/vortex/internal/match"
)

// NetworkController bridges one client connection to a match session: intents
// read from the connection are submitted, published updates are written back.
type NetworkController struct {
	conn    net.Conn
	enc     *json.Encoder
	dec     *json.Decoder
	session *match.Session
	viewer  game.PlayerID
	mu      sync.Mutex
}

// NewNetworkController creates a controller for the given connection.
func NewNetworkController(conn net.Conn, session *match.Session) *NetworkController {
	return &NetworkController{
		conn:    conn,
		enc:     json.NewEncoder(conn),
		dec:     json.NewDecoder(conn),
		session: session,
		viewer:  game.PlayerHuman,
	}
}

// Serve runs until the client disconnects or ctx is cancelled.
func (nc *NetworkController) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates, unsubscribe := nc.session.Subscribe()
	defer unsubscribe()

	if err := nc.send(ServerMessage{Type: MsgRoster, Roster: CharacterViews(nc.session.Roster())}); err != nil {
		return fmt.Errorf("send roster: %w", err)
	}
	snap := nc.session.Snapshot()
	if err := nc.send(ServerMessage{Type: MsgState, State: BuildStateView(snap.State, nc.viewer, snap.Status)}); err != nil {
		return fmt.Errorf("send state: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- nc.forward(ctx, updates) }()

	go func() {
		<-ctx.Done()
		nc.conn.Close()
	}()

	for {
		msg, err := nc.recv()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return ctx.Err()
			}
			if fwd := drain(errCh); fwd != nil {
				return fwd
			}
			return fmt.Errorf("recv intent: %w", err)
		}
		if msg.Type == MsgHello {
			continue
		}
		in, err := msg.ToIntent()
		if err != nil {
			if err := nc.send(ServerMessage{Type: MsgError, Intent: msg.Intent, Error: err.Error()}); err != nil {
				return fmt.Errorf("send error: %w", err)
			}
			continue
		}
		if err := nc.session.Submit(ctx, in); err != nil {
			if errors.Is(err, match.ErrClosed) || ctx.Err() != nil {
				return err
			}
			if err := nc.send(ServerMessage{Type: MsgError, Intent: msg.Intent, Error: err.Error()}); err != nil {
				return fmt.Errorf("send error: %w", err)
			}
		}
	}
}

func drain(ch <-chan error) error {
	select {
	case err := <-ch:
		return err
	default:
		return nil
	}
}

// forward writes every published update to the client: events first, then the
// resulting state, and a game_over message when the match ends.
func (nc *NetworkController) forward(ctx context.Context, updates <-chan match.Update) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case u := <-updates:
			for _, ev := range u.Events {
				if err := nc.send(ServerMessage{Type: MsgEvent, Event: NewEventView(ev)}); err != nil {
					return fmt.Errorf("send event: %w", err)
				}
			}
			sv := BuildStateView(u.State, nc.viewer, u.Status)
			msg := ServerMessage{Type: MsgState, State: sv}
			if u.State.Phase == game.PhaseGameOver {
				msg.Type = MsgGameOver
				msg.Winner = sv.Winner
				msg.Result = u.Status
			}
			if err := nc.send(msg); err != nil {
				return fmt.Errorf("send state: %w", err)
			}
		}
	}
}

// send serializes writes from the reader and forwarder goroutines.
func (nc *NetworkController) send(msg ServerMessage) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.enc.Encode(msg)
}

func (nc *NetworkController) recv() (ClientMessage, error) {
	var msg ClientMessage
	err := nc.dec.Decode(&msg)
	return msg, err
}

// --- Views ---

// BuildStateView creates a StateView from the perspective of the given player.
// The opponent's hand is hidden unless the viewer revealed it this turn.
func BuildStateView(state *game.GameState, viewer game.PlayerID, status string) *StateView {
	sv := &StateView{
		MatchID:    state.MatchID,
		Round:      state.Round,
		RoundWins:  state.RoundWins,
		Turn:       state.Turn,
		Phase:      state.Phase.String(),
		Status:     status,
		IsYourTurn: state.CurrentPlayer == viewer,
		Vortex:     make([]*CardView, 0, game.VortexSlots),
		DeckCount:  len(state.PowerDeck),
		Discard:    len(state.Discard),
		Abilities:  len(state.AbilityDeck),
	}
	for _, v := range state.Vortex {
		if v == nil {
			sv.Vortex = append(sv.Vortex, nil)
			continue
		}
		cv := NewCardView(*v)
		sv.Vortex = append(sv.Vortex, &cv)
	}
	if state.Winner != nil {
		sv.Winner = state.Winner.String()
	}

	me, opp := state.Players[viewer], state.Players[viewer.Other()]
	if me == nil || opp == nil {
		return sv
	}
	sv.You = playerView(me, true)
	sv.Opponent = playerView(opp, me.Turn.HandRevealed)
	sv.Pending = pendingView(state.Pending, viewer)
	return sv
}

func playerView(p *game.Player, showHand bool) *PlayerView {
	pv := &PlayerView{
		Character:    NewCharacterView(p.Character),
		Life:         p.Life,
		MaxLife:      p.MaxLife(),
		Level:        p.Level,
		HandCount:    len(p.PowerHand),
		HandSize:     p.MaxHandSize,
		AbilityCount: len(p.AbilityHand),
		AttacksLeft:  p.AttacksRemaining(),
	}
	if p.Shield != nil {
		pv.Shield = p.Shield.Value
	}
	for _, a := range p.ActiveAbilities {
		pv.ActiveAbilities = append(pv.ActiveAbilities, NewAbilityView(a))
	}
	if showHand {
		for _, c := range p.PowerHand {
			pv.Hand = append(pv.Hand, NewCardView(c))
		}
		for _, a := range p.AbilityHand {
			pv.AbilityHand = append(pv.AbilityHand, NewAbilityView(a))
		}
	}
	return pv
}

// pendingView hides the attacker's card from its target until it is in flight.
func pendingView(pa *game.PendingAction, viewer game.PlayerID) *PendingView {
	if pa == nil {
		return nil
	}
	pv := &PendingView{Kind: pa.Kind.String(), Attacker: pa.Attacker.String()}
	if pa.AttackCard != nil && (pa.InFlight || pa.Attacker == viewer) {
		cv := NewCardView(*pa.AttackCard)
		pv.AttackCard = &cv
	}
	if pa.DefenseCard != nil {
		cv := NewCardView(*pa.DefenseCard)
		pv.DefenseCard = &cv
	}
	if pa.VortexAttackSlot != nil {
		pv.VortexSlot = pa.VortexAttackSlot
	} else if pa.VortexDefenseSlot != nil {
		pv.VortexSlot = pa.VortexDefenseSlot
	}
	if pa.Ability != nil {
		pv.Ability = pa.Ability.Name
	}
	if r := pa.Result; r != nil {
		d := r.Damage
		pv.Damage = &d
		pv.Recoil = r.Recoil
		if r.HasTarget {
			pv.Target = r.Target.String()
		}
	}
	return pv
}

// NewCardView converts a power card.
func NewCardView(c game.Card) CardView {
	return CardView{ID: c.ID, Type: c.Type.String(), Color: c.Color.String(), Value: c.Value}
}

// NewAbilityView converts an ability card.
func NewAbilityView(a game.AbilityCard) AbilityView {
	return AbilityView{
		ID:       a.ID,
		Name:     a.Name,
		Effect:   a.Effect.String(),
		Level:    a.Level,
		Affinity: a.Affinity.String(),
		Active:   a.Effect.Active(),
	}
}

// NewCharacterView converts a roster entry.
func NewCharacterView(c game.Character) CharacterView {
	return CharacterView{
		ID:              c.ID,
		Name:            c.Name,
		Affinity:        c.Affinity.String(),
		StartingAbility: c.StartingAbility.String(),
	}
}

// CharacterViews converts a roster.
func CharacterViews(roster []game.Character) []CharacterView {
	out := make([]CharacterView, len(roster))
	for i, c := range roster {
		out[i] = NewCharacterView(c)
	}
	return out
}

// NewEventView converts a log event.
func NewEventView(ev log.GameEvent) *EventView {
	return &EventView{
		Seq:     ev.Seq,
		Round:   ev.Round,
		Turn:    ev.Turn,
		Phase:   ev.Phase,
		Player:  ev.Player,
		Type:    ev.Type.String(),
		Card:    ev.Card,
		Amount:  ev.Amount,
		Details: ev.Details,
	}
}
