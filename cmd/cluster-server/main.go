package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/danielpatrickdp/viewspace/internal/config"
	"github.com/danielpatrickdp/viewspace/internal/field"
	"github.com/danielpatrickdp/viewspace/internal/ingest"
	"github.com/danielpatrickdp/viewspace/internal/remote"
	"github.com/danielpatrickdp/viewspace/internal/similarity"
)

// #region main
func main() {
	addr := flag.String("addr", "localhost:50051", "listen address")
	configPath := flag.String("config", "", "path to viewspace.yaml (default: $VIEWSPACE_CONFIG)")
	bundlePath := flag.String("bundle", "", "bundle whose field profiles feed the similarity score (the explorer's bundle)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	scorer, err := similarity.NewScorer(cfg.Weights)
	if err != nil {
		log.Fatalf("invalid weights: %v", err)
	}

	fields, err := loadCatalog(*bundlePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\nusage: cluster-server --bundle path/to/bundle.json [--addr host:port] [--config viewspace.yaml]\n", err)
		os.Exit(2)
	}

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "listen %s: %v\n", *addr, err)
		os.Exit(1)
	}

	srv := grpc.NewServer()
	remote.RegisterClusterServiceServer(srv, remote.NewLocalServer(fields, scorer, cfg.Cluster.Threshold))

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Println("[REMOTE] stopping")
		srv.GracefulStop()
	}()

	log.Printf("[REMOTE] %s listening on %s (threshold=%.2f)", remote.ServiceName, *addr, cfg.Cluster.Threshold)
	if err := srv.Serve(lis); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// #endregion main

// #region catalog
// loadCatalog reads the field profiles the server scores with. They must
// be the explorer's, or remote and local groupings of the same candidates
// can disagree.
func loadCatalog(path string) (field.Catalog, error) {
	if path == "" {
		return field.Catalog{}, fmt.Errorf("--bundle is required")
	}
	bundle, err := ingest.Load(path)
	if err != nil {
		return field.Catalog{}, fmt.Errorf("load bundle: %w", err)
	}
	log.Printf("[REMOTE] scoring with %d field profiles from %s", bundle.Catalog().Len(), path)
	return bundle.Catalog(), nil
}

// #endregion catalog
