// Package main provides the map import tool. It loads a YAML map file
// and stores it in PostgreSQL as a named snapshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mume/mapcore/internal/config"
	"github.com/mume/mapcore/internal/mapio"
	"github.com/mume/mapcore/internal/observability"
	"github.com/mume/mapcore/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	mapPath := flag.String("map", "", "map file to import (overrides map.file from config)")
	name := flag.String("name", "", "snapshot name")
	list := flag.Bool("list", false, "list stored snapshots instead of importing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	pool, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()
	repo := postgres.NewMapRepository(pool)

	if *list {
		snaps, err := repo.ListSnapshots(ctx)
		if err != nil {
			logger.Fatal("listing snapshots", zap.Error(err))
		}
		for _, s := range snaps {
			fmt.Printf("%s  %-24s %6d rooms  %s\n",
				s.ID, s.Name, s.RoomCount, s.CreatedAt.Format(time.RFC3339))
		}
		return
	}

	if *name == "" {
		fmt.Fprintln(os.Stderr, "usage: import-map -name <snapshot> [-map <file>] [-config <file>]")
		os.Exit(1)
	}

	path := cfg.Map.File
	if *mapPath != "" {
		path = *mapPath
	}

	loadStart := time.Now()
	m, err := mapio.LoadMapFromFile(path)
	if err != nil {
		logger.Fatal("loading map", zap.String("path", path), zap.Error(err))
	}
	logger.Info("map loaded",
		zap.String("path", path),
		zap.Int("rooms", m.RoomCount()),
		zap.Duration("elapsed", time.Since(loadStart)),
	)

	id, err := repo.SaveSnapshot(ctx, *name, m)
	if err != nil {
		logger.Fatal("saving snapshot", zap.Error(err))
	}
	logger.Info("snapshot stored",
		zap.String("id", id.String()),
		zap.String("name", *name),
		zap.Duration("elapsed", time.Since(start)),
	)
}
