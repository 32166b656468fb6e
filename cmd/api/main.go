package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrussa/orderhook/internal/config"
	"github.com/mrussa/orderhook/internal/db"
	"github.com/mrussa/orderhook/internal/events"
	"github.com/mrussa/orderhook/internal/httpapi"
	"github.com/mrussa/orderhook/internal/ingest"
	"github.com/mrussa/orderhook/internal/repo"
	"github.com/mrussa/orderhook/internal/supabase"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[CFG] %v", err)
	}
	log.Printf("[CFG] http=%s backend=%s kafka=%t max_body=%d",
		cfg.HTTPAddr, cfg.Backend, cfg.KafkaBrokers != "", cfg.MaxBodyBytes)

	startCtx := context.Background()
	settings := httpapi.Settings{
		Secret:       cfg.ShopifySecret,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Backend:      cfg.Backend,
		Version:      version,
	}

	var store ingest.Store
	switch cfg.Backend {
	case config.BackendPostgres:
		pool, err := db.Connect(startCtx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("[DB] %v", err)
		}
		defer pool.Close()
		log.Println("[DB] connected")

		rpo := repo.NewOrdersRepo(pool)
		store = rpo
		settings.Ping = rpo.Ping
	default:
		client := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, &http.Client{}, log.Printf)
		store = supabase.NewStore(client)
		log.Printf("[SUPABASE] writing to %s", cfg.SupabaseURL)
	}

	var pub ingest.Publisher
	if cfg.KafkaBrokers != "" {
		p := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log.Printf)
		defer func() {
			if err := p.Close(); err != nil {
				log.Printf("[KAFKA] close: %v", err)
			}
		}()
		pub = p
		log.Printf("[KAFKA] publishing to %s via %v", cfg.KafkaTopic, p.Brokers)
	}

	api := httpapi.New(ingest.New(store, pub, log.Printf), settings, log.Printf)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("[HTTP] listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[HTTP] %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[HTTP] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[HTTP] shutdown error: %v", err)
	}
	log.Printf("[HTTP] bye")
}
