/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the lab engine server: storage, content catalog,
  engine, router, graceful shutdown.

COMMAND-LINE FLAGS:
  -port     HTTP server port (default: 8080)
  -db       SQLite database path (default: lab.db, ":memory:" for in-memory)
  -content  Content catalog YAML file (default: built-in catalog)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for active
  requests, close the database, exit.

EXAMPLES:
  ./server -db=./data/lab.db -content=./content/catalog.yaml
  ./server -db=:memory:

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
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
	"syscall"
	"time"

	"github.com/warp/lab-engine/api"
	"github.com/warp/lab-engine/content"
	"github.com/warp/lab-engine/lab"
	"github.com/warp/lab-engine/store/sqlite"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "lab.db", "SQLite database path")
	contentPath := flag.String("content", "", "content catalog YAML file (empty = built-in)")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	var catalog content.Repository
	var reloader api.Reloader
	if *contentPath != "" {
		fileRepo, err := content.NewFileRepository(*contentPath)
		if err != nil {
			log.Fatalf("Failed to load content catalog: %v", err)
		}
		catalog = fileRepo
		reloader = fileRepo
		log.Printf("Loaded content catalog from %s", *contentPath)
	} else {
		catalog = content.DefaultCatalog()
		log.Printf("Using built-in content catalog")
	}

	engine := lab.NewEngine(catalog, store, store, store)
	handler := api.NewHandler(engine, store, store, reloader)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Lab engine listening on http://localhost:%d/api", *port)
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
