/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the SMS balance gateway. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from the environment
  2. Create the router device client (session is lazy; no traffic yet)
  3. Open the balance state and history stores
  4. Build the tracker, handler, and HTTP router
  5. Start the server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Exit (the device session is deliberately never logged out; the
     router expires it on its own)

ENVIRONMENT:
  See config/config.go for the full variable list. ROUTER_URL is the
  only required setting.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/balance-gateway/api"
	"github.com/warp/balance-gateway/balance"
	"github.com/warp/balance-gateway/config"
	"github.com/warp/balance-gateway/router"
	"github.com/warp/balance-gateway/store/file"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Device client and stores
	client := router.NewHuaweiClient(cfg.RouterURL, cfg.RouterUsername, cfg.RouterPassword)
	states := file.NewStateStore(cfg.StateFile)
	history := file.NewHistoryStore(cfg.HistoryFile)

	// Workflow
	poller := balance.NewPoller(client)
	tracker, err := balance.NewTracker(client, poller, states, history)
	if err != nil {
		log.Fatalf("Failed to load balance state: %v", err)
	}
	if prev := tracker.PreviousBalance(); prev != nil {
		log.Printf("Restored previous balance: %s €", prev.StringFixed(2))
	}

	// HTTP surface
	handler := api.NewHandler(client, tracker, history)
	handler.Trigger = api.Trigger{Number: cfg.TriggerNumber, Message: cfg.TriggerMessage}
	handler.BaselineBudget = api.PollBudget{Attempts: cfg.PollAttempts, Delay: cfg.BaselineDelay}
	handler.BalanceBudget = api.PollBudget{Attempts: cfg.PollAttempts, Delay: cfg.BalanceDelay}

	mux := api.NewRouter(handler, cfg.StaticDir)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // balance-info can poll for tens of seconds
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
