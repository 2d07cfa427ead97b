package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"daybook/config"
	"daybook/pkg/otel"
	"daybook/pkg/server"
)

var version = "0.0.1"

func main() {
	configFlag := flag.String("config", "config.yaml", "configuration path")
	addressFlag := flag.String("address", "", "listen address")
	portFlag := flag.Int("port", 0, "listen port")
	mcpFlag := flag.Bool("mcp", false, "serve Model Context Protocol tools over stdio")

	flag.Parse()

	if err := otel.Setup("daybook", version); err != nil {
		log.Errorf("otel setup: %v", err)
	}

	cfg, err := config.Parse(*configFlag)

	if err != nil {
		log.Fatalf("parse config: %v", err)
	}

	if *portFlag > 0 {
		cfg.Address = fmt.Sprintf("%s:%d", *addressFlag, *portFlag)
	} else if *addressFlag != "" {
		cfg.Address = *addressFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Watcher != nil {
		go func() {
			if err := cfg.Watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("vault watcher: %v", err)
			}
		}()
	}

	if *mcpFlag {
		if err := server.NewMCP(cfg, version).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("mcp server: %v", err)
		}

		return
	}

	s := server.New(cfg)

	log.Infof("listening on %s", cfg.Address)

	if err := s.ListenAndServe(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
