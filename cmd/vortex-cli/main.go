package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/peterkuimelis/vortex/internal/config"
	vnet "github.com/peterkuimelis/vortex/internal/net"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "host":
		err = runHost(ctx, os.Args[2:])
	case "join":
		err = runJoin(ctx, os.Args[2:])
	case "local":
		err = runLocal(ctx, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  vortex host  [--port P] [--config FILE]")
	fmt.Println("  vortex join  [--addr ADDR]")
	fmt.Println("  vortex local [--config FILE]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  host    Start a match server; one player joins and plays the AI")
	fmt.Println("  join    Connect to a match server and play")
	fmt.Println("  local   Play the AI in this terminal")
}

func loadServer(path string) (*vnet.Server, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	engine, err := cfg.EngineConfig(nil)
	if err != nil {
		return nil, err
	}
	return &vnet.Server{Engine: engine}, nil
}

func runHost(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	port := fs.String("port", "9000", "TCP port to listen on")
	cfgFile := fs.String("config", "", "path to a YAML config file")
	fs.Parse(args)

	srv, err := loadServer(*cfgFile)
	if err != nil {
		return err
	}
	srv.Port = *port
	return srv.Run(ctx)
}

func runJoin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	addr := fs.String("addr", "localhost:9000", "server address to connect to")
	fs.Parse(args)

	return vnet.Connect(ctx, *addr, os.Stdin, os.Stdout)
}

func runLocal(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("local", flag.ExitOnError)
	cfgFile := fs.String("config", "", "path to a YAML config file")
	fs.Parse(args)

	srv, err := loadServer(*cfgFile)
	if err != nil {
		return err
	}
	// keep the event log out of the REPL's way
	srv.Log = os.Stderr
	return srv.RunLocal(ctx, os.Stdin, os.Stdout)
}
