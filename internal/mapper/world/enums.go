package world

// Terrain is the room terrain as reported in the prompt.
type Terrain uint8

// Terrain values. TerrainUndefined means the prompt never told us.
const (
	TerrainUndefined Terrain = iota
	TerrainIndoors
	TerrainCity
	TerrainField
	TerrainForest
	TerrainHills
	TerrainMountains
	TerrainShallow
	TerrainWater
	TerrainRapids
	TerrainUnderwater
	TerrainRoad
	TerrainBrush
	TerrainTunnel
	TerrainCavern
	NumTerrainTypes
)

var terrainNames = [NumTerrainTypes]string{
	"undefined", "indoors", "city", "field", "forest", "hills", "mountains",
	"shallow", "water", "rapids", "underwater", "road", "brush", "tunnel", "cavern",
}

func (t Terrain) String() string {
	if t < NumTerrainTypes {
		return terrainNames[t]
	}
	return "invalid"
}

// TerrainByName resolves a lowercase terrain name.
func TerrainByName(name string) (Terrain, bool) {
	for i, n := range terrainNames {
		if n == name {
			return Terrain(i), true
		}
	}
	return TerrainUndefined, false
}

// Align is the room alignment field.
type Align uint8

const (
	AlignUndefined Align = iota
	AlignGood
	AlignNeutral
	AlignEvil
)

// Light is the stored lighting of a room.
type Light uint8

const (
	LightUndefined Light = iota
	LightDark
	LightLit
)

// Portable marks whether portals can target the room.
type Portable uint8

const (
	PortableUndefined Portable = iota
	PortablePortable
	PortableNotPortable
)

// Ridable marks whether mounts work in the room.
type Ridable uint8

const (
	RidableUndefined Ridable = iota
	RidableRidable
	RidableNotRidable
)

// Sundeath marks whether direct sunlight in the room kills trolls.
type Sundeath uint8

const (
	SundeathUndefined Sundeath = iota
	SundeathSundeath
	SundeathNoSundeath
)

// RoomStatus is the lifecycle state of a room record.
type RoomStatus uint8

const (
	// StatusTemporary rooms were speculatively created during path
	// experimentation and may be discarded.
	StatusTemporary RoomStatus = iota
	// StatusPermanent rooms are part of the authoritative map.
	StatusPermanent
	// StatusZombie rooms have been removed but are still referenced by
	// a live snapshot.
	StatusZombie
)

// MobFlags is the bitset of mob-related room markers.
type MobFlags uint32

// MobFlags bits.
const (
	MobRent MobFlags = 1 << iota
	MobShop
	MobWeaponShop
	MobArmourShop
	MobFoodShop
	MobPetShop
	MobGuild
	MobScoutGuild
	MobMageGuild
	MobClericGuild
	MobWarriorGuild
	MobRangerGuild
	MobAggressive
	MobQuest
	MobPassive
	MobElite
	MobSuper
	MobMilkable
	MobRattlesnake
)

// LoadFlags is the bitset of item-load room markers.
type LoadFlags uint32

// LoadFlags bits.
const (
	LoadTreasure LoadFlags = 1 << iota
	LoadArmour
	LoadWeapon
	LoadWater
	LoadFood
	LoadHerb
	LoadKey
	LoadMule
	LoadHorse
	LoadPackHorse
	LoadTrainedHorse
	LoadRohirrim
	LoadWarg
	LoadBoat
	LoadAttention
	LoadTower
	LoadClock
	LoadMail
	LoadStable
	LoadWhiteWord
	LoadDarkWord
	LoadEquipment
	LoadCoach
	LoadFerry
)
