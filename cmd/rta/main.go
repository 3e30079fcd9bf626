// File path: cmd/rta/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/nicodishanthj/Reciplan_phase1/internal/api"
	"github.com/nicodishanthj/Reciplan_phase1/internal/catalog"
	"github.com/nicodishanthj/Reciplan_phase1/internal/common"
	"github.com/nicodishanthj/Reciplan_phase1/internal/llm"
	"github.com/nicodishanthj/Reciplan_phase1/internal/vector"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("reciplan: .env file not loaded", "error", err)
	} else {
		logger.Info("reciplan: environment loaded from .env")
	}

	addr := flag.String("addr", ":8082", "listen address")
	catalogPath := flag.String("catalog", defaultCatalogPath(), "path to the SQLite tool catalog database")
	snapshotPath := flag.String("snapshot", "", "path to a JSONL tool snapshot served from memory instead of SQLite")
	flag.Parse()

	logger.Info("reciplan: startup initiated", "addr", *addr)

	store, err := openStore(*catalogPath, *snapshotPath)
	if err != nil {
		logger.Error("reciplan: catalog store unavailable", "error", err)
		fmt.Println("catalog error:", err)
		os.Exit(1)
	}
	defer store.Close()

	provider := llm.NewProvider()
	logger.Info("reciplan: llm provider ready", "provider", provider.Name())

	searcher := buildSearcher(ctx, store)

	server, err := api.NewServer(store, searcher, provider)
	if err != nil {
		logger.Error("reciplan: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("reciplan: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	reachable := *addr
	if strings.HasPrefix(reachable, ":") {
		reachable = "localhost" + reachable
	}
	logger.Info("reciplan: verify reachability", "suggestion", fmt.Sprintf("curl http://%s/healthz", reachable))
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("reciplan: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

func openStore(catalogPath, snapshotPath string) (catalog.Store, error) {
	if trimmed := strings.TrimSpace(snapshotPath); trimmed != "" {
		return catalog.LoadSnapshot(trimmed)
	}
	cfg, err := catalog.LoadConfig()
	if err != nil {
		return nil, err
	}
	if trimmed := strings.TrimSpace(catalogPath); trimmed != "" {
		cfg.Path = trimmed
	}
	return catalog.OpenSQLiteWithConfig(cfg)
}

// buildSearcher prefers the remote similarity service and falls back to
// the local index over the catalog when the service is unreachable.
func buildSearcher(ctx context.Context, store catalog.Store) vector.Searcher {
	logger := common.Logger()
	client, err := vector.NewFromEnv(ctx)
	if err == nil && client.Available() {
		logger.Info("reciplan: similarity service available", "collection", client.Collection())
		return client
	}
	if err != nil {
		logger.Warn("reciplan: similarity service client failed", "error", err)
	} else {
		logger.Warn("reciplan: similarity service unreachable, using local index")
	}
	records, listErr := store.ListTools(ctx)
	if listErr != nil {
		logger.Error("reciplan: could not load tools for local index", "error", listErr)
		records = nil
	}
	return vector.NewLocalIndex(records)
}

func defaultCatalogPath() string {
	return filepath.Join("data", "catalog.db")
}
