package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/danielpatrickdp/viewspace/internal/api"
	"github.com/danielpatrickdp/viewspace/internal/associate"
	"github.com/danielpatrickdp/viewspace/internal/cluster"
	"github.com/danielpatrickdp/viewspace/internal/config"
	"github.com/danielpatrickdp/viewspace/internal/explore"
	"github.com/danielpatrickdp/viewspace/internal/ingest"
	"github.com/danielpatrickdp/viewspace/internal/mcp"
	"github.com/danielpatrickdp/viewspace/internal/remote"
	"github.com/danielpatrickdp/viewspace/internal/similarity"
	"github.com/danielpatrickdp/viewspace/internal/store"
)

var version = "dev"

// #region main
func main() {
	configPath := flag.String("config", "", "path to viewspace.yaml (default: $VIEWSPACE_CONFIG)")
	bundlePath := flag.String("bundle", "", "path to an ingestion bundle (.json, .yaml)")
	mcpMode := flag.Bool("mcp", false, "serve MCP tools over stdio instead of HTTP")
	resume := flag.String("resume", "", "restore likes saved under this session ID")
	flag.Parse()

	if *bundlePath == "" {
		fmt.Fprintln(os.Stderr, "usage: explorer --bundle path/to/bundle.json [--config viewspace.yaml] [--mcp] [--resume session-id]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	bundle, err := ingest.Load(*bundlePath)
	if err != nil {
		log.Fatalf("failed to load bundle: %v", err)
	}

	// Initialize persistence
	db, err := store.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer db.Close()

	// Connect to the clustering service when configured
	var rc cluster.Remote
	if cfg.RemoteAddr != "" {
		client, err := remote.NewClient(cfg.RemoteAddr)
		if err != nil {
			log.Fatalf("failed to connect to cluster service at %s: %v", cfg.RemoteAddr, err)
		}
		defer client.Close()
		rc = client
	}

	scorer, err := similarity.NewScorer(cfg.Weights)
	if err != nil {
		log.Fatalf("invalid weights: %v", err)
	}
	engine := cluster.NewEngine(scorer, rc, cfg.Cluster)
	ranker := associate.NewRanker(scorer, cfg.Association)

	st := explore.NewStore(engine, ranker, explore.Options{
		Sessions: db,
		Likes:    db,
		Runs:     db,
	})
	sessionID := st.Init(bundle, bundle.Catalog(), bundle.Subspaces)
	log.Printf("[EXPLORER] session %s: %s with %d candidates, %d subspaces",
		sessionID, bundle.Label(), len(bundle.Views), len(bundle.Subspaces))

	if *resume != "" {
		entries, err := db.LoadLikes(*resume)
		if err != nil {
			log.Fatalf("failed to load likes for session %s: %v", *resume, err)
		}
		st.RestoreLikes(entries)
		log.Printf("[EXPLORER] restored %d likes from session %s", len(entries), *resume)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initial clustering; a failure leaves every candidate navigable
	if report, err := st.ClusterMeasures(ctx, cfg.MaxGroups, cfg.UseRemote); err != nil {
		log.Printf("[EXPLORER] initial clustering failed: %v", err)
	} else {
		log.Printf("[EXPLORER] initial clustering: mode=%s groups=%d", report.Mode, report.Groups)
	}

	if *mcpMode {
		srv := mcp.NewServer(mcp.ServerConfig{
			Store:     st,
			Version:   version,
			MaxGroups: cfg.MaxGroups,
			UseRemote: cfg.UseRemote,
		})
		if err := server.ServeStdio(srv); err != nil {
			log.Fatalf("mcp server: %v", err)
		}
		return
	}

	if err := serveHTTP(ctx, cfg, st); err != nil {
		log.Fatalf("http server: %v", err)
	}
}

// #endregion main

// #region http
func serveHTTP(ctx context.Context, cfg config.Config, st *explore.Store) error {
	router := api.NewRouter(api.NewHandler(st, cfg.MaxGroups, cfg.UseRemote), cfg.CORSOrigins)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[EXPLORER] listening on %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Println("[EXPLORER] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// #endregion http
