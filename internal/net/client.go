package net

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/peterkuimelis/vortex/internal/game"
)

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn net.Conn
	in   io.Reader
	out  io.Writer
	mu   sync.Mutex // guards out
}

// Connect dials a server and runs the REPL on in and out.
func Connect(ctx context.Context, addr string, in io.Reader, out io.Writer) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(ClientMessage{Type: MsgHello}); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}
	fmt.Fprintln(out, "Connected! Type 'help' for commands.")

	client := &Client{conn: conn, in: in, out: out}
	return client.RunREPL(ctx)
}

// errQuit ends the REPL at the user's request.
var errQuit = errors.New("quit")

// RunREPL renders server messages while reading commands from the input.
func (c *Client) RunREPL(ctx context.Context) error {
	errCh := make(chan error, 2)
	go func() { errCh <- c.readServer() }()
	go func() { errCh <- c.readInput() }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, errQuit) {
			return nil
		}
		return err
	}
}

func (c *Client) readServer() error {
	dec := json.NewDecoder(c.conn)
	for {
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}
		c.render(msg)
	}
}

func (c *Client) readInput() error {
	enc := json.NewEncoder(c.conn)
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit":
			return errQuit
		case "help", "?":
			c.printf("%s", helpText)
			continue
		}
		msg, err := ParseCommand(line)
		if err != nil {
			c.printf("%v\n", err)
			continue
		}
		if err := enc.Encode(msg); err != nil {
			return fmt.Errorf("send intent: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return errQuit
}

func (c *Client) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

const helpText = `Commands:
  start                 start a new match
  char <id>             choose your character
  attack <card>         select an ATK card
  direct                attack directly with the selected card
  vortex <slot>         attack through a Vortex slot (1-4)
  defend <card>         defend with a DEF card
  nodef                 take the hit
  vdefend <slot>        defend with a Vortex slot (needs Vortex Guard)
  activate <ability>    activate an ability in play
  play <ability>        put an ability from your hand into play
  levelup <card>...     earmark cards for a level up
  confirm               confirm the level up
  discard <card>        discard, or pay a pending cost
  target <card>         choose the card to transform
  draw                  pay a card to draw an ability
  end                   end your turn
  cancel                back out of a selection
  next                  start the next round
  quit                  leave
`

// ParseCommand turns a REPL line into an intent message. Card and ability
// arguments are IDs; Vortex slots are numbered from 1.
func ParseCommand(line string) (ClientMessage, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ClientMessage{}, errors.New("empty command")
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	in := game.Intent{}
	needs := 0
	switch cmd {
	case "start":
		in.Type = game.IntentStartGame
	case "char", "character":
		if len(args) != 1 {
			return ClientMessage{}, errors.New("usage: char <id>")
		}
		in.Type = game.IntentSelectCharacter
		in.CharacterID = args[0]
	case "attack":
		in.Type, needs = game.IntentSelectAttackCard, 1
	case "direct":
		in.Type = game.IntentConfirmDirectAttack
	case "vortex":
		in.Type, needs = game.IntentChooseVortexSlot, 1
	case "defend":
		in.Type, needs = game.IntentChooseDefenseCard, 1
	case "nodef":
		in.Type = game.IntentNoDefense
	case "vdefend":
		in.Type, needs = game.IntentChooseVortexSlot, 1
		in.ForDefense = true
	case "activate":
		in.Type, needs = game.IntentActivateAbility, 1
	case "play":
		in.Type, needs = game.IntentPlayAbilityFromHand, 1
	case "levelup":
		in.Type, needs = game.IntentSelectCardsForLevelUp, -1
	case "confirm":
		in.Type = game.IntentConfirmLevelUp
	case "discard":
		in.Type, needs = game.IntentDiscardCard, 1
	case "target":
		in.Type, needs = game.IntentChooseTargetCard, 1
	case "draw":
		in.Type = game.IntentDrawAbility
	case "end":
		in.Type = game.IntentEndTurn
	case "cancel":
		in.Type = game.IntentCancel
	case "next":
		in.Type = game.IntentStartNextRound
	default:
		return ClientMessage{}, fmt.Errorf("unknown command %q (try 'help')", cmd)
	}

	nums := make([]int, 0, len(args))
	if needs != 0 {
		for _, a := range args {
			n, err := strconv.Atoi(a)
			if err != nil {
				return ClientMessage{}, fmt.Errorf("%s: %q is not a number", cmd, a)
			}
			nums = append(nums, n)
		}
		if needs > 0 && len(nums) != needs {
			return ClientMessage{}, fmt.Errorf("%s takes %d argument(s)", cmd, needs)
		}
		if needs < 0 && len(nums) == 0 {
			return ClientMessage{}, fmt.Errorf("%s needs at least one card", cmd)
		}
	}

	switch in.Type {
	case game.IntentChooseVortexSlot:
		if nums[0] < 1 || nums[0] > game.VortexSlots {
			return ClientMessage{}, fmt.Errorf("slot must be between 1 and %d", game.VortexSlots)
		}
		in.Slot = nums[0] - 1
	case game.IntentActivateAbility, game.IntentPlayAbilityFromHand:
		in.AbilityID = nums[0]
	case game.IntentSelectCardsForLevelUp:
		in.CardIDs = nums
	default:
		if needs == 1 {
			in.CardID = nums[0]
		}
	}
	return IntentMessage(in), nil
}

// --- Rendering ---

func (c *Client) render(msg ServerMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := c.out

	switch msg.Type {
	case MsgEvent:
		renderEvent(w, msg.Event)
	case MsgRoster:
		fmt.Fprintln(w, "\nCharacters:")
		for _, ch := range msg.Roster {
			fmt.Fprintf(w, "  %-8s %-22s %-7s %s\n", ch.ID, ch.Name, ch.Affinity, ch.StartingAbility)
		}
	case MsgState:
		renderState(w, msg.State)
	case MsgError:
		fmt.Fprintf(w, "! %s: %s\n", msg.Intent, msg.Error)
	case MsgGameOver:
		renderState(w, msg.State)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "═══════════════════════════════════")
		fmt.Fprintln(w, "          GAME OVER")
		fmt.Fprintln(w, "═══════════════════════════════════")
		fmt.Fprintln(w, msg.Result)
		fmt.Fprintln(w, "═══════════════════════════════════")
		fmt.Fprintln(w, "Type 'start' to play again.")
	}
}

func renderEvent(w io.Writer, ev *EventView) {
	if ev == nil {
		return
	}
	// Format like the TextLogger
	phase := ev.Phase
	for len(phase) < 22 {
		phase += " "
	}
	fmt.Fprintf(w, "R%d T%-2d %s| %s\n", ev.Round, ev.Turn, phase, ev.Details)
}

func renderState(w io.Writer, sv *StateView) {
	if sv == nil {
		return
	}
	fmt.Fprintln(w)
	if sv.You == nil {
		fmt.Fprintf(w, "%s | %s\n", sv.Phase, sv.Status)
		return
	}

	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════╗")
	renderPlayer(w, "OPPONENT", sv.Opponent)
	fmt.Fprintln(w, "║──────────────────────────────────────────────────────")
	fmt.Fprintf(w, "║  Vortex: ")
	for i, v := range sv.Vortex {
		fmt.Fprintf(w, "%d:%s  ", i+1, formatCard(v))
	}
	fmt.Fprintf(w, "\n║  Deck: %d  Discard: %d  Abilities: %d\n", sv.DeckCount, sv.Discard, sv.Abilities)
	fmt.Fprintln(w, "║──────────────────────────────────────────────────────")
	renderPlayer(w, "YOU", sv.You)
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════╝")

	turnInfo := fmt.Sprintf("Round %d (%d-%d) | Turn %d | %s", sv.Round, sv.RoundWins[0], sv.RoundWins[1], sv.Turn, sv.Phase)
	if sv.IsYourTurn {
		turnInfo += " | Your turn"
	} else {
		turnInfo += " | Opponent's turn"
	}
	fmt.Fprintln(w, turnInfo)
	if p := sv.Pending; p != nil && p.AttackCard != nil {
		fmt.Fprintf(w, "In play: %s attacks with %s\n", p.Attacker, formatCard(p.AttackCard))
	}
	fmt.Fprintln(w, sv.Status)
}

func renderPlayer(w io.Writer, label string, pv *PlayerView) {
	if pv == nil {
		return
	}
	shield := ""
	if pv.Shield > 0 {
		shield = fmt.Sprintf("  Shield: %d", pv.Shield)
	}
	fmt.Fprintf(w, "║  %s %s (%s)  Life: %d/%d  Level: %d%s  Attacks left: %d\n",
		label, pv.Character.Name, pv.Character.Affinity, pv.Life, pv.MaxLife, pv.Level, shield, pv.AttacksLeft)
	fmt.Fprintf(w, "║  Abilities:")
	for _, a := range pv.ActiveAbilities {
		fmt.Fprintf(w, " [%d %s]", a.ID, a.Name)
	}
	fmt.Fprintln(w)
	if len(pv.AbilityHand) > 0 {
		fmt.Fprintf(w, "║  Held:")
		for _, a := range pv.AbilityHand {
			fmt.Fprintf(w, " [%d %s]", a.ID, a.Name)
		}
		fmt.Fprintln(w)
	}
	if len(pv.Hand) > 0 {
		fmt.Fprintf(w, "║  Hand:")
		for i := range pv.Hand {
			fmt.Fprintf(w, " %s", formatCard(&pv.Hand[i]))
		}
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "║  Hand: %d card(s)\n", pv.HandCount)
	}
}

func formatCard(cv *CardView) string {
	if cv == nil {
		return "[ ]"
	}
	return fmt.Sprintf("[#%d %s %s %d]", cv.ID, cv.Color, cv.Type, cv.Value)
}
