/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the amortization API server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Build the zap logger
  3. Initialize SQLite store
  4. Connect the Redis cache (or fall back to in-process)
  5. Create API handler and router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port         HTTP server port (default: 8080)
  -db           SQLite database path (default: amortization.db)
                Use ":memory:" for in-memory database
  -redis        Redis address for the result cache (default: none)
  -cache-ttl    Redis entry lifetime, 0 for no expiry (default: 24h)
  -max-periods  Period budget per loan, 0 for unbounded (default: 10000)
  -amortize-timeout
                Deadline per amortization, 0 for none (default: 10s)
  -log-level    debug, info, warn or error (default: info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close cache and database connections
  4. Exit

EXAMPLES:
  ./server -db="./data/loans.db" -redis=localhost:6379
  ./server -db=":memory:" -log-level=debug

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
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

	"go.uber.org/zap"

	"github.com/warp/amortization-engine/amortization"
	"github.com/warp/amortization-engine/api"
	"github.com/warp/amortization-engine/cache"
	"github.com/warp/amortization-engine/logging"
	"github.com/warp/amortization-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "amortization.db", "SQLite database path")
	redisAddr := flag.String("redis", "", "Redis address for the result cache (empty: in-process cache)")
	cacheTTL := flag.Duration("cache-ttl", 24*time.Hour, "Redis entry lifetime (0: no expiry)")
	maxPeriods := flag.Int("max-periods", amortization.DefaultMaxPeriods, "Period budget per loan (0: unbounded)")
	amortizeTimeout := flag.Duration("amortize-timeout", api.DefaultAmortizeTimeout, "Deadline per amortization (0: none)")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	logger, err := logging.New(*logLevel, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.String("db", *dbPath), zap.Error(err))
	}
	defer store.Close()

	// Initialize cache
	var resultCache cache.Cache = cache.NewMemory()
	if *redisAddr != "" {
		rc := cache.NewRedis(*redisAddr, *cacheTTL)
		defer rc.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable, cache reads will miss", zap.String("addr", *redisAddr), zap.Error(err))
		}
		cancel()
		resultCache = rc
	}

	handler := api.NewHandler(store, resultCache, *maxPeriods, logger)
	handler.AmortizeTimeout = *amortizeTimeout
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", zap.Int("port", *port), zap.Int("max_periods", *maxPeriods))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server stopped")
}
