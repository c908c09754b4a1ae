package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hailam/latrones/internal/config"
	"github.com/hailam/latrones/internal/engine"
	"github.com/hailam/latrones/internal/server"
	"github.com/hailam/latrones/internal/storage"
)

var (
	configPath = flag.String("config", "latrones.json", "settings file (JSON); a missing file means defaults")
	addr       = flag.String("addr", "", "listen address (overrides the settings file)")
	dataDir    = flag.String("data", "", "data directory (overrides the settings file)")
	noStorage  = flag.Bool("no-storage", false, "run without preferences and search book")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[server] %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("[server] environment: %v", err)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[server] invalid configuration: %v", err)
	}

	eng := engine.NewEngine(cfg.SearchConfig(), cfg.TTSizeMB)

	var prefs server.PreferenceStore
	if !*noStorage {
		store, err := storage.Open(cfg.DataDir)
		if err != nil {
			log.Fatalf("[server] %v", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("[server] closing storage: %v", err)
			}
		}()

		first, err := store.IsFirstLaunch()
		if err != nil {
			log.Printf("[server] %v", err)
		} else if first {
			log.Printf("[server] first launch")
			if err := store.MarkFirstLaunchComplete(); err != nil {
				log.Printf("[server] %v", err)
			}
		}
		if n, err := store.BookSize(); err == nil {
			log.Printf("[server] search book holds %d positions", n)
		}

		eng.SetBook(store)
		prefs = store
	}

	srv := server.New(eng, config.NewStore(cfg), prefs)
	srv.Apply(cfg)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.Listen(cfg.ListenAddr); err != nil {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	select {
	case <-sigCtx.Done():
		log.Printf("[server] shutdown signal received: %v", sigCtx.Err())
	case err, ok := <-serverErrCh:
		if ok {
			log.Printf("[server] server error: %v", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Close(shutdownCtx); err != nil {
		log.Printf("[server] graceful shutdown failed: %v", err)
	}
}
