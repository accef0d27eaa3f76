// Package match runs one engine on its own goroutine, serializing intents with
// the timers that drive delayed continuations.
package match

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/peterkuimelis/vortex/internal/game"
	"github.com/peterkuimelis/vortex/internal/log"
)

// ErrClosed is returned by Submit once the session has stopped.
var ErrClosed = errors.New("match session closed")

// Update is published after every committed transition.
type Update struct {
	State  *game.GameState
	Status string
	Events []log.GameEvent // events committed by this transition
	Token  uint64

	// Idle is set when nothing is scheduled: the engine waits on an intent.
	Idle bool
}

type request struct {
	in    game.Intent
	reply chan result
}

type result struct {
	err   error
	token uint64
}

// Session owns an Engine. All engine access happens on the Run goroutine.
type Session struct {
	engine *game.Engine

	requests chan request
	fires    chan game.Continuation
	done     chan struct{}
	timer    *time.Timer
	seen     int

	mu      sync.Mutex
	last    Update
	subs    map[int]chan Update
	nextSub int
}

// NewSession wraps an engine. The engine must not be used elsewhere once Run starts.
func NewSession(e *game.Engine) *Session {
	s := &Session{
		engine:   e,
		requests: make(chan request),
		fires:    make(chan game.Continuation, 1),
		done:     make(chan struct{}),
		subs:     make(map[int]chan Update),
	}
	s.seen = len(e.Logger().Events())
	s.last = s.snapshot(nil)
	return s
}

// Roster returns the characters the engine offers. It is safe to call at any time.
func (s *Session) Roster() []game.Character {
	return s.engine.Roster()
}

// Run serves intents and timers until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	defer s.stopTimer()
	s.arm()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case req := <-s.requests:
			err := s.engine.Dispatch(req.in)
			if err == nil {
				s.publish()
				s.arm()
			} else {
				s.publishStatus()
			}
			req.reply <- result{err: err, token: s.engine.State().Token}

		case c := <-s.fires:
			if s.engine.Fire(c) {
				s.publish()
				s.arm()
			}
		}
	}
}

// Submit forwards an intent and waits for the engine's verdict.
func (s *Session) Submit(ctx context.Context, in game.Intent) error {
	_, err := s.submit(ctx, in)
	return err
}

func (s *Session) submit(ctx context.Context, in game.Intent) (uint64, error) {
	req := request{in: in, reply: make(chan result, 1)}
	select {
	case s.requests <- req:
	case <-s.done:
		return 0, ErrClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	r := <-req.reply
	return r.token, r.err
}

// Play submits an intent and waits until the engine has run every continuation
// it triggered, returning the first idle update. Events across all the
// transitions are merged into the returned update.
func (s *Session) Play(ctx context.Context, in game.Intent) (Update, error) {
	ch, cancel := s.Subscribe()
	defer cancel()

	token, err := s.submit(ctx, in)
	if err != nil {
		return s.Snapshot(), err
	}
	var events []log.GameEvent
	for {
		select {
		case u, ok := <-ch:
			if !ok {
				return s.Snapshot(), ErrClosed
			}
			if u.Token < token {
				continue
			}
			events = append(events, u.Events...)
			if u.Idle {
				u.Events = events
				return u, nil
			}
		case <-s.done:
			return s.Snapshot(), ErrClosed
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		}
	}
}

// Snapshot returns the latest published update.
func (s *Session) Snapshot() Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Subscribe returns a channel of updates and a function that ends the
// subscription. A subscriber that falls behind loses its oldest updates.
func (s *Session) Subscribe() (<-chan Update, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Update, 64)
	s.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// arm schedules the engine's pending continuation, replacing any earlier timer.
func (s *Session) arm() {
	s.stopTimer()
	c, ok := s.engine.Pending()
	if !ok {
		return
	}
	s.timer = time.AfterFunc(c.Delay, func() {
		select {
		case s.fires <- c:
		case <-s.done:
		}
	})
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) snapshot(events []log.GameEvent) Update {
	st := s.engine.State()
	_, pending := s.engine.Pending()
	return Update{
		State:  st,
		Status: s.engine.Status(),
		Events: events,
		Token:  st.Token,
		Idle:   !pending,
	}
}

// publish sends the committed state and its new events to every subscriber.
func (s *Session) publish() {
	all := s.engine.Logger().Events()
	events := append([]log.GameEvent(nil), all[s.seen:]...)
	s.seen = len(all)
	s.broadcast(s.snapshot(events))
}

// publishStatus refreshes the status line after a rejected intent.
func (s *Session) publishStatus() {
	s.mu.Lock()
	s.last.Status = s.engine.Status()
	s.mu.Unlock()
}

func (s *Session) broadcast(u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = u
	for _, ch := range s.subs {
		select {
		case ch <- u:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- u
		}
	}
}
