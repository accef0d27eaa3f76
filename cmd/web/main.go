package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/peterkuimelis/vortex/internal/config"
	"github.com/peterkuimelis/vortex/internal/web"
)

func main() {
	cfgFile := flag.String("config", "", "path to a YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	engine, err := cfg.EngineConfig(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	srv := web.NewServer(engine)
	log.Printf("vortex web UI listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(cfg.Addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
