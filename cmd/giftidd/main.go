// Command giftidd runs the gift identifier generation daemon: one
// process, one workshop ID, an HTTP surface for generate/decode/health.
//
// Usage:
//
//	giftidd --workshop-id=42 --port=8080
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/giftworks/giftid"
	"github.com/giftworks/giftid/httpapi"
)

func main() {
	var (
		workshopID       = flag.Int("workshop-id", 1, "workshop id for this generator instance (0-1023)")
		host             = flag.String("host", "0.0.0.0", "address to listen on")
		port             = flag.Int("port", 8080, "port to listen on")
		logFormat        = flag.String("log-format", "json", "log output format: json or console")
		ledgerDSN        = flag.String("ledger-dsn", "", "optional SQLite DSN for the audit ledger (e.g. giftid.db)")
		registryAddr     = flag.String("registry-redis-addr", "", "optional Redis address for the advisory workshop-id registry")
		registryPrefix   = flag.String("registry-key-prefix", "giftid:", "key prefix used by the Redis registry")
		shutdownGraceDur = flag.Duration("shutdown-grace", 10*time.Second, "how long to wait for in-flight requests during shutdown")
	)
	flag.Usage = printUsage
	flag.Parse()

	if *workshopID < 0 || *workshopID > giftid.MaxWorkshopID {
		fmt.Fprintf(os.Stderr, "giftidd: --workshop-id must be between 0 and %d\n", giftid.MaxWorkshopID)
		os.Exit(1)
	}

	log := giftid.NewLogger(*logFormat, uint16(*workshopID))

	gen, err := giftid.New(uint16(*workshopID))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct generator")
	}

	var ledger giftid.Ledger = giftid.NoopLedger{}
	if *ledgerDSN != "" {
		sqliteLedger, err := giftid.NewSQLiteLedger(*ledgerDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open ledger")
		}
		defer sqliteLedger.Close()
		ledger = sqliteLedger
		log.Info().Str("dsn", *ledgerDSN).Msg("audit ledger enabled")
	}

	var registry giftid.Registry = giftid.NoopRegistry{}
	if *registryAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: *registryAddr})
		defer client.Close()
		registry = giftid.NewRedisRegistry(client, *registryPrefix, 0, 0)
		log.Info().Str("addr", *registryAddr).Msg("redis registry enabled")
	}

	leaseCtx, leaseCancel := context.WithTimeout(context.Background(), 5*time.Second)
	lease, err := registry.Lease(leaseCtx, uint16(*workshopID))
	leaseCancel()
	if err != nil {
		log.Warn().Err(err).Msg("workshop id registry lease failed; continuing without coordination")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = lease.Release(ctx)
		}()
	}

	server := httpapi.NewServer(gen, ledger, log)

	addr := fmt.Sprintf("%s:%d", *host, *port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Handler(),
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), *shutdownGraceDur)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().Str("addr", addr).Int("workshop_id", *workshopID).Msg("giftidd listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server error")
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `giftidd - gift identifier generation daemon

Usage:
  giftidd [flags]

Flags:
`)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Endpoints:
  POST /api/v1/gift-id/generate       generate a new identifier
  GET  /api/v1/gift-id/{id}/decode    decode an identifier's fields
  GET  /api/v1/gift-id/{id}/encodings render an identifier in every supported encoding
  GET  /health                        liveness/readiness check
  GET  /metrics                       Prometheus text exposition
`)
}
