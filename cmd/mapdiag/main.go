// Package main provides a map diagnostics tool. It loads a YAML map
// file and reports consistency problems: rooms the comparison engine
// cannot tell apart, exits without a return path, and door records
// that contradict their exit flags.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mume/mapcore/internal/config"
	"github.com/mume/mapcore/internal/mapio"
	"github.com/mume/mapcore/internal/mapper/compare"
	"github.com/mume/mapcore/internal/mapper/world"
	"github.com/mume/mapcore/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	mapPath := flag.String("map", "", "map file to check (overrides map.file from config)")
	tolerance := flag.Int("tolerance", 0, "comparison tolerance for near-duplicate detection (0 = config value)")
	listOneWay := flag.Bool("one-way", false, "also list one-way exits (often intentional)")
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

	path := cfg.Map.File
	if *mapPath != "" {
		path = *mapPath
	}
	matchingTolerance := cfg.PathMachine.MatchingTolerance
	if *tolerance > 0 {
		matchingTolerance = *tolerance
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

	problems := 0
	problems += checkIndistinguishableRooms(logger, m, matchingTolerance)
	problems += checkDoorRecords(logger, m)
	if *listOneWay {
		problems += checkOneWayExits(logger, m)
	}

	if problems > 0 {
		logger.Warn("diagnostics complete",
			zap.Int("problems", problems),
			zap.Duration("elapsed", time.Since(start)),
		)
		os.Exit(1)
	}
	logger.Info("diagnostics complete: no problems",
		zap.Duration("elapsed", time.Since(start)),
	)
}

// checkIndistinguishableRooms reports room pairs on the same Z level
// whose name and description the comparison engine rates Equal or
// Tolerance. Such pairs can only be told apart by server id or
// surrounding moves, which makes them prime candidates for sync
// failures.
func checkIndistinguishableRooms(logger *zap.Logger, m world.Map, tolerance int) int {
	var rooms []*world.RawRoom
	m.ForEachRoom(func(r *world.RawRoom) { rooms = append(rooms, r) })

	problems := 0
	for i, a := range rooms {
		for _, b := range rooms[i+1:] {
			if a.Position.Z != b.Position.Z {
				continue
			}
			if a.Fields.Name != b.Fields.Name {
				continue
			}
			nameCmp := compare.CompareStrings(a.Fields.Name, b.Fields.Name, tolerance, true)
			descCmp := compare.CompareStrings(a.Fields.Desc, b.Fields.Desc, tolerance, true)
			if nameCmp == compare.Different || descCmp == compare.Different {
				continue
			}
			if a.ServerID.Valid() && b.ServerID.Valid() {
				// Distinguishable by identity even with identical text.
				continue
			}
			problems++
			logger.Warn("indistinguishable rooms",
				zap.Uint32("room_a", uint32(a.ExternalID)),
				zap.Uint32("room_b", uint32(b.ExternalID)),
				zap.String("name", a.Fields.Name),
				zap.String("desc_match", descCmp.String()),
			)
		}
	}
	return problems
}

// checkDoorRecords reports exits carrying door metadata without the
// door flag, and doors on slots with no exit at all.
func checkDoorRecords(logger *zap.Logger, m world.Map) int {
	problems := 0
	m.ForEachRoom(func(r *world.RawRoom) {
		for _, dir := range world.AllExits7 {
			e := r.Exit(dir)
			if (e.DoorName != "" || !e.DoorFlags.IsEmpty()) && !e.ExitFlags.IsDoor() {
				problems++
				logger.Warn("door metadata without door flag",
					zap.Uint32("room", uint32(r.ExternalID)),
					zap.String("direction", dir.String()),
					zap.String("door_name", e.DoorName),
				)
			}
			if e.ExitFlags.IsDoor() && !e.ExitFlags.IsExit() {
				problems++
				logger.Warn("door on a non-exit",
					zap.Uint32("room", uint32(r.ExternalID)),
					zap.String("direction", dir.String()),
				)
			}
		}
	})
	return problems
}

// checkOneWayExits reports exits whose target has no return path.
func checkOneWayExits(logger *zap.Logger, m world.Map) int {
	problems := 0
	m.ForEachRoom(func(r *world.RawRoom) {
		for _, dir := range world.NESWUD {
			e := r.Exit(dir)
			if !e.ExitFlags.IsExit() {
				continue
			}
			for _, to := range e.Outgoing.Sorted() {
				target := m.FindRoomHandle(to)
				if !target.IsValid() {
					continue
				}
				if !r.HasTwoWayConnection(dir, target.Raw()) {
					problems++
					logger.Info("one-way exit",
						zap.Uint32("from", uint32(r.ExternalID)),
						zap.String("direction", dir.String()),
						zap.Uint32("to", uint32(target.Raw().ExternalID)),
					)
				}
			}
		}
	})
	return problems
}
