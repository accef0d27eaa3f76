package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/peterkuimelis/vortex/internal/game"
	"github.com/peterkuimelis/vortex/internal/log"
	"github.com/peterkuimelis/vortex/internal/match"
)

// Server hosts a match for one TCP client. The AI plays the other side.
type Server struct {
	Port   string
	Engine game.Config

	// Log receives the text event log; nil means stdout.
	Log io.Writer
}

func (s *Server) newSession() *match.Session {
	cfg := s.Engine
	w := s.Log
	if w == nil {
		w = os.Stdout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewTextLogger(w)
	}
	return match.NewSession(game.NewEngine(cfg))
}

// Run starts the server, waits for a client to join, then runs the match until
// the client leaves or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()

	fmt.Printf("Waiting for a player on port %s...\n", s.Port)

	// Accept exactly one connection
	conn, err := ln.Accept()
	if err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()

	fmt.Printf("Player connected from %s\n", conn.RemoteAddr())
	return s.serve(ctx, conn)
}

// RunLocal plays a match in this process: the REPL talks to the server side
// over an in-memory pipe.
func (s *Server) RunLocal(ctx context.Context, in io.Reader, out io.Writer) error {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- s.serve(ctx, serverConn)
	}()
	go func() {
		client := &Client{conn: clientConn, in: in, out: out}
		errCh <- client.RunREPL(ctx)
	}()

	// Wait for either the match or the REPL to finish
	err := <-errCh
	cancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) serve(ctx context.Context, conn net.Conn) error {
	defer conn.Close()
	sess := s.newSession()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go sess.Run(ctx)

	err := NewNetworkController(conn, sess).Serve(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, match.ErrClosed) {
		return nil
	}
	return err
}
