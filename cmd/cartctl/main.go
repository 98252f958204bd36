// cmd/cartctl/main.go
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"primepicks/internal/adapters/in/cli"
	"primepicks/internal/infra/config"
	"primepicks/internal/platform/di"
)

func main() {
	identity := flag.String("identity", "", "cart owner for this session (required; switch later with: use <identity>)")
	flag.Parse()

	log.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[boot] config: %v", err)
	}

	// ─────────────────────────────────────────────────────────────
	// Log output: stderr (+ CART_LOG_FILE). stdout は JSON 応答専用
	// ─────────────────────────────────────────────────────────────
	if path := strings.TrimSpace(cfg.LogFile); path != "" {
		if f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644); err == nil {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, f))
			log.Printf("[boot] log output = stderr + %s", path)
		} else {
			log.Printf("[boot] WARN: could not open %s: %v", path, err)
		}
	}

	if strings.TrimSpace(*identity) == "" {
		log.Printf("[boot] -identity is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cont, err := di.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("[boot] di init failed: %v", err)
	}
	defer cont.Close()

	log.Printf("[boot] cartctl ready catalog=%s", cont.Config.CatalogBackend)

	sh := cli.NewShell(cont.Store, cont.Query, cont.Registry, os.Stdout, *identity)
	if err := sh.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		log.Printf("[boot] shell stopped: %v", err)
	}
	log.Printf("[boot] bye carts=%d", cont.Store.CartCount())
}
