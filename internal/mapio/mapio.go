// Package mapio reads and writes map files in a YAML schema: rooms
// keyed by external id, exits as direction records with outgoing
// target lists, and free-floating infomark annotations. Loading
// produces an immutable snapshot; saving is deterministic so files
// diff cleanly under version control.
package mapio

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mume/mapcore/internal/mapper/world"
)

// SchemaVersion is the current map file schema version.
const SchemaVersion = 1

// yamlMapFile is the top-level YAML structure for map files.
type yamlMapFile struct {
	Map yamlMap `yaml:"map"`
}

// yamlMap is the YAML representation of a map snapshot.
type yamlMap struct {
	SchemaVersion int            `yaml:"schema_version"`
	Rooms         []yamlRoom     `yaml:"rooms"`
	Infomarks     []yamlInfomark `yaml:"infomarks,omitempty"`
}

// yamlRoom is the YAML representation of a room. The id is the stable
// external id; dense internal ids are assigned on load.
type yamlRoom struct {
	ID          uint32         `yaml:"id"`
	ServerID    uint32         `yaml:"server_id,omitempty"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Contents    string         `yaml:"contents,omitempty"`
	Note        string         `yaml:"note,omitempty"`
	Area        string         `yaml:"area,omitempty"`
	Position    yamlCoordinate `yaml:"position"`
	Terrain     string         `yaml:"terrain,omitempty"`
	Align       string         `yaml:"align,omitempty"`
	Light       string         `yaml:"light,omitempty"`
	Portable    string         `yaml:"portable,omitempty"`
	Ridable     string         `yaml:"ridable,omitempty"`
	Sundeath    string         `yaml:"sundeath,omitempty"`
	MobFlags    []string       `yaml:"mob_flags,omitempty"`
	LoadFlags   []string       `yaml:"load_flags,omitempty"`
	Exits       []yamlExit     `yaml:"exits,omitempty"`
}

// yamlExit is the YAML representation of one exit record. Targets are
// external room ids; reverse adjacency is rebuilt on load.
type yamlExit struct {
	Direction string   `yaml:"direction"`
	DoorName  string   `yaml:"door_name,omitempty"`
	DoorFlags []string `yaml:"door_flags,omitempty"`
	ExitFlags []string `yaml:"exit_flags,omitempty"`
	To        []uint32 `yaml:"to,omitempty"`
}

// yamlCoordinate is a grid position.
type yamlCoordinate struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

// yamlInfomark is the YAML representation of a map annotation.
type yamlInfomark struct {
	Type          string         `yaml:"type"`
	Class         string         `yaml:"class,omitempty"`
	Text          string         `yaml:"text,omitempty"`
	Position1     yamlCoordinate `yaml:"position1"`
	Position2     yamlCoordinate `yaml:"position2,omitempty"`
	RotationAngle int            `yaml:"rotation_angle,omitempty"`
}

// LoadMapFromFile reads and validates a single map YAML file.
//
// Precondition: path must point to a valid YAML map file.
// Postcondition: Returns an indexed snapshot or a non-nil error.
func LoadMapFromFile(path string) (world.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return world.Map{}, fmt.Errorf("reading map file %s: %w", path, err)
	}
	return LoadMapFromBytes(data)
}

// LoadMapFromBytes parses and validates a map from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the map schema.
// Postcondition: Returns an indexed snapshot or a non-nil error.
func LoadMapFromBytes(data []byte) (world.Map, error) {
	var file yamlMapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return world.Map{}, fmt.Errorf("parsing map YAML: %w", err)
	}
	if file.Map.SchemaVersion != SchemaVersion {
		return world.Map{}, fmt.Errorf("unsupported map schema version %d (want %d)",
			file.Map.SchemaVersion, SchemaVersion)
	}
	return convertYAMLMap(file.Map)
}

// SaveMapToFile writes a snapshot to path as YAML.
//
// Postcondition: The file contains the full snapshot; loading it back
// yields an equivalent map.
func SaveMapToFile(path string, m world.Map) error {
	data, err := SaveMapToBytes(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing map file %s: %w", path, err)
	}
	return nil
}

// SaveMapToBytes serialises a snapshot to YAML. Output is
// deterministic: rooms sorted by external id, exits in storage order,
// targets sorted.
func SaveMapToBytes(m world.Map) ([]byte, error) {
	if !m.IsValid() {
		return nil, fmt.Errorf("invalid map")
	}

	var rooms []*world.RawRoom
	externalByID := make(map[world.RoomID]world.ExternalRoomID)
	m.ForEachRoom(func(r *world.RawRoom) {
		rooms = append(rooms, r)
		externalByID[r.ID] = r.ExternalID
	})
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].ExternalID < rooms[j].ExternalID
	})

	ym := yamlMap{SchemaVersion: SchemaVersion}
	for _, r := range rooms {
		yr, err := roomToYAML(r, externalByID)
		if err != nil {
			return nil, err
		}
		ym.Rooms = append(ym.Rooms, yr)
	}

	var marks []*world.RawInfomark
	m.ForEachInfomark(func(mark *world.RawInfomark) {
		marks = append(marks, mark)
	})
	sort.Slice(marks, func(i, j int) bool { return marks[i].ID < marks[j].ID })
	for _, mark := range marks {
		ym.Infomarks = append(ym.Infomarks, yamlInfomark{
			Type:          enumName(infomarkTypeNames, mark.Type),
			Class:         enumName(infomarkClassNames, mark.Class),
			Text:          mark.Text,
			Position1:     yamlCoordinate{X: mark.Position1.X, Y: mark.Position1.Y, Z: mark.Position1.Z},
			Position2:     yamlCoordinate{X: mark.Position2.X, Y: mark.Position2.Y, Z: mark.Position2.Z},
			RotationAngle: mark.RotationAngle,
		})
	}

	data, err := yaml.Marshal(yamlMapFile{Map: ym})
	if err != nil {
		return nil, fmt.Errorf("marshalling map YAML: %w", err)
	}
	return data, nil
}

func roomToYAML(r *world.RawRoom, externalByID map[world.RoomID]world.ExternalRoomID) (yamlRoom, error) {
	if !r.ExternalID.Valid() {
		return yamlRoom{}, fmt.Errorf("room %d has no external id", r.ID)
	}
	yr := yamlRoom{
		ID:          uint32(r.ExternalID),
		ServerID:    uint32(r.ServerID),
		Name:        r.Fields.Name,
		Description: r.Fields.Desc,
		Contents:    r.Fields.Contents,
		Note:        r.Fields.Note,
		Area:        r.Fields.Area,
		Position:    yamlCoordinate{X: r.Position.X, Y: r.Position.Y, Z: r.Position.Z},
		Terrain:     terrainName(r.Fields.Terrain),
		Align:       enumName(alignNames, r.Fields.Align),
		Light:       enumName(lightNames, r.Fields.Light),
		Portable:    enumName(portableNames, r.Fields.Portable),
		Ridable:     enumName(ridableNames, r.Fields.Ridable),
		Sundeath:    enumName(sundeathNames, r.Fields.Sundeath),
		MobFlags:    flagNames(mobFlagNames, r.Fields.MobFlags),
		LoadFlags:   flagNames(loadFlagNames, r.Fields.LoadFlags),
	}
	for _, dir := range world.AllExits7 {
		e := r.Exit(dir)
		if e.DoorName == "" && e.DoorFlags.IsEmpty() && e.ExitFlags.IsEmpty() && e.Outgoing.IsEmpty() {
			continue
		}
		ye := yamlExit{
			Direction: dir.String(),
			DoorName:  e.DoorName,
			DoorFlags: flagNames(doorFlagNames, e.DoorFlags),
			ExitFlags: flagNames(exitFlagNames, e.ExitFlags),
		}
		for _, to := range e.Outgoing.Sorted() {
			ext, ok := externalByID[to]
			if !ok || !ext.Valid() {
				return yamlRoom{}, fmt.Errorf("room %d: exit %s targets room %d with no external id",
					r.ID, dir, to)
			}
			ye.To = append(ye.To, uint32(ext))
		}
		sort.Slice(ye.To, func(i, j int) bool { return ye.To[i] < ye.To[j] })
		yr.Exits = append(yr.Exits, ye)
	}
	return yr, nil
}

// terrainName returns the YAML spelling of a terrain, "" for undefined.
func terrainName(t world.Terrain) string {
	if t == world.TerrainUndefined {
		return ""
	}
	return t.String()
}

// convertYAMLMap builds a snapshot from the parsed YAML structures.
// Internal ids are assigned densely in external-id order; reverse
// adjacency (Incoming sets) is derived from the outgoing lists.
func convertYAMLMap(ym yamlMap) (world.Map, error) {
	sorted := make([]yamlRoom, len(ym.Rooms))
	copy(sorted, ym.Rooms)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	idByExternal := make(map[world.ExternalRoomID]world.RoomID, len(sorted))
	occupied := make(map[world.Coordinate]world.ExternalRoomID, len(sorted))
	rooms := make([]*world.RawRoom, 0, len(sorted))
	for i, yr := range sorted {
		ext := world.ExternalRoomID(yr.ID)
		if !ext.Valid() {
			return world.Map{}, fmt.Errorf("room with reserved external id %d", yr.ID)
		}
		if _, dup := idByExternal[ext]; dup {
			return world.Map{}, fmt.Errorf("duplicate room id %d", yr.ID)
		}
		id := world.RoomID(i)
		idByExternal[ext] = id

		r, err := roomFromYAML(yr, id, ext)
		if err != nil {
			return world.Map{}, err
		}
		if holder, taken := occupied[r.Position]; taken {
			return world.Map{}, fmt.Errorf("room %d: position (%d,%d,%d) already occupied by room %d",
				yr.ID, r.Position.X, r.Position.Y, r.Position.Z, holder)
		}
		occupied[r.Position] = ext
		rooms = append(rooms, r)
	}

	byID := make(map[world.RoomID]*world.RawRoom, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
	}
	for i, yr := range sorted {
		r := rooms[i]
		for _, ye := range yr.Exits {
			dir, ok := world.DirectionByName(strings.ToLower(ye.Direction))
			if !ok {
				return world.Map{}, fmt.Errorf("room %d: unknown exit direction %q", yr.ID, ye.Direction)
			}
			e := r.Exit(dir)
			for _, to := range ye.To {
				target, ok := idByExternal[world.ExternalRoomID(to)]
				if !ok {
					return world.Map{}, fmt.Errorf("room %d: exit %s targets unknown room %d",
						yr.ID, dir, to)
				}
				if e.Outgoing == nil {
					e.Outgoing = world.NewRoomIDSet()
				}
				e.Outgoing[target] = struct{}{}
				back := byID[target].Exit(dir.Opposite())
				if back.Incoming == nil {
					back.Incoming = world.NewRoomIDSet()
				}
				back.Incoming[r.ID] = struct{}{}
			}
		}
	}

	var marks []*world.RawInfomark
	for i, yi := range ym.Infomarks {
		mark, err := infomarkFromYAML(yi, world.InfomarkID(i))
		if err != nil {
			return world.Map{}, err
		}
		marks = append(marks, mark)
	}

	w, err := world.WorldFromRooms(rooms, marks)
	if err != nil {
		return world.Map{}, fmt.Errorf("validating map: %w", err)
	}
	return world.MapFromWorld(w), nil
}

func roomFromYAML(yr yamlRoom, id world.RoomID, ext world.ExternalRoomID) (*world.RawRoom, error) {
	r := &world.RawRoom{
		ID:         id,
		ExternalID: ext,
		ServerID:   world.ServerID(yr.ServerID),
		Position:   world.Coordinate{X: yr.Position.X, Y: yr.Position.Y, Z: yr.Position.Z},
		Status:     world.StatusPermanent,
	}
	r.Fields.Name = yr.Name
	r.Fields.Desc = yr.Description
	r.Fields.Contents = yr.Contents
	r.Fields.Note = yr.Note
	r.Fields.Area = yr.Area

	if yr.Terrain != "" {
		t, ok := world.TerrainByName(strings.ToLower(yr.Terrain))
		if !ok {
			return nil, fmt.Errorf("room %d: unknown terrain %q", yr.ID, yr.Terrain)
		}
		r.Fields.Terrain = t
	}
	var err error
	if r.Fields.Align, err = parseEnum(alignNames, yr.Align, "align"); err != nil {
		return nil, fmt.Errorf("room %d: %w", yr.ID, err)
	}
	if r.Fields.Light, err = parseEnum(lightNames, yr.Light, "light"); err != nil {
		return nil, fmt.Errorf("room %d: %w", yr.ID, err)
	}
	if r.Fields.Portable, err = parseEnum(portableNames, yr.Portable, "portable"); err != nil {
		return nil, fmt.Errorf("room %d: %w", yr.ID, err)
	}
	if r.Fields.Ridable, err = parseEnum(ridableNames, yr.Ridable, "ridable"); err != nil {
		return nil, fmt.Errorf("room %d: %w", yr.ID, err)
	}
	if r.Fields.Sundeath, err = parseEnum(sundeathNames, yr.Sundeath, "sundeath"); err != nil {
		return nil, fmt.Errorf("room %d: %w", yr.ID, err)
	}
	if r.Fields.MobFlags, err = parseFlags(mobFlagNames, yr.MobFlags, "mob"); err != nil {
		return nil, fmt.Errorf("room %d: %w", yr.ID, err)
	}
	if r.Fields.LoadFlags, err = parseFlags(loadFlagNames, yr.LoadFlags, "load"); err != nil {
		return nil, fmt.Errorf("room %d: %w", yr.ID, err)
	}

	seen := make(map[world.Direction]bool, len(yr.Exits))
	for _, ye := range yr.Exits {
		dir, ok := world.DirectionByName(strings.ToLower(ye.Direction))
		if !ok {
			return nil, fmt.Errorf("room %d: unknown exit direction %q", yr.ID, ye.Direction)
		}
		if seen[dir] {
			return nil, fmt.Errorf("room %d: duplicate exit direction %q", yr.ID, ye.Direction)
		}
		seen[dir] = true

		e := r.Exit(dir)
		e.DoorName = ye.DoorName
		if e.DoorFlags, err = parseFlags(doorFlagNames, ye.DoorFlags, "door"); err != nil {
			return nil, fmt.Errorf("room %d: exit %s: %w", yr.ID, dir, err)
		}
		if e.ExitFlags, err = parseFlags(exitFlagNames, ye.ExitFlags, "exit"); err != nil {
			return nil, fmt.Errorf("room %d: exit %s: %w", yr.ID, dir, err)
		}
		if len(ye.To) > 0 && !e.ExitFlags.IsExit() {
			e.ExitFlags |= world.ExitFlagExit
		}
	}
	return r, nil
}

func infomarkFromYAML(yi yamlInfomark, id world.InfomarkID) (*world.RawInfomark, error) {
	typ, ok := infomarkTypeNames[strings.ToLower(yi.Type)]
	if !ok {
		return nil, fmt.Errorf("infomark %d: unknown type %q", id, yi.Type)
	}
	class, err := parseEnum(infomarkClassNames, yi.Class, "infomark class")
	if err != nil {
		return nil, fmt.Errorf("infomark %d: %w", id, err)
	}
	if typ == world.InfomarkText && yi.Text == "" {
		return nil, fmt.Errorf("infomark %d: text annotation with empty text", id)
	}
	return &world.RawInfomark{
		ID:            id,
		Type:          typ,
		Class:         class,
		Text:          yi.Text,
		Position1:     world.Coordinate{X: yi.Position1.X, Y: yi.Position1.Y, Z: yi.Position1.Z},
		Position2:     world.Coordinate{X: yi.Position2.X, Y: yi.Position2.Y, Z: yi.Position2.Z},
		RotationAngle: yi.RotationAngle,
	}, nil
}
