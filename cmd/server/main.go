/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Nova payroll engine server. Handles
  configuration, dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Open the SQLite run journal
  3. Create the API handler with its data directory
  4. Configure the HTTP router
  5. Start the server with graceful shutdown

CONFIGURATION:
  Flags take precedence; each falls back to an environment variable, which
  a .env file in the working directory may supply.

  -port / PORT         HTTP server port (default: 8080)
  -db   / DB_PATH      Run journal database path (default: payroll.db)
                       Use ":memory:" for an in-memory journal
  -data / DATA_DIR     Directory for staged workbooks and artifacts
                       (default: ./data)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the journal
  4. Exit

EXAMPLES:
  # Default layout under ./data
  ./server

  # Everything under a mounted volume
  ./server -db=/srv/payroll/journal.db -data=/srv/payroll

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Run journal
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nova-hs/payroll-engine/api"
	"github.com/nova-hs/payroll-engine/store/sqlite"
)

func main() {
	// .env is optional; flags still win over anything it sets.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DB_PATH", "payroll.db"), "run journal database path")
	dataDir := flag.String("data", envStr("DATA_DIR", "./data"), "directory for workbooks and artifacts")
	flag.Parse()

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	journal, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open run journal: %v", err)
	}
	defer journal.Close()

	handler := api.NewHandler(journal, *dataDir)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // artifact downloads and processing runs
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Payroll engine listening on http://localhost:%d", *port)
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

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
