package mapio

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mume/mapcore/internal/mapper/world"
)

// Flag and enum spellings used by the YAML map schema. Bit flags are
// written as lists of names so files stay diffable and hand-editable.

var exitFlagNames = map[string]world.ExitFlags{
	"exit":     world.ExitFlagExit,
	"door":     world.ExitFlagDoor,
	"road":     world.ExitFlagRoad,
	"climb":    world.ExitFlagClimb,
	"random":   world.ExitFlagRandom,
	"special":  world.ExitFlagSpecial,
	"no_match": world.ExitFlagNoMatch,
	"flow":     world.ExitFlagFlow,
	"no_flee":  world.ExitFlagNoFlee,
	"damage":   world.ExitFlagDamage,
	"fall":     world.ExitFlagFall,
	"guarded":  world.ExitFlagGuarded,
}

var doorFlagNames = map[string]world.DoorFlags{
	"hidden":    world.DoorFlagHidden,
	"need_key":  world.DoorFlagNeedKey,
	"no_block":  world.DoorFlagNoBlock,
	"no_break":  world.DoorFlagNoBreak,
	"no_pick":   world.DoorFlagNoPick,
	"delayed":   world.DoorFlagDelayed,
	"callable":  world.DoorFlagCallable,
	"knockable": world.DoorFlagKnockable,
	"magic":     world.DoorFlagMagic,
	"action":    world.DoorFlagAction,
}

var mobFlagNames = map[string]world.MobFlags{
	"rent":          world.MobRent,
	"shop":          world.MobShop,
	"weapon_shop":   world.MobWeaponShop,
	"armour_shop":   world.MobArmourShop,
	"food_shop":     world.MobFoodShop,
	"pet_shop":      world.MobPetShop,
	"guild":         world.MobGuild,
	"scout_guild":   world.MobScoutGuild,
	"mage_guild":    world.MobMageGuild,
	"cleric_guild":  world.MobClericGuild,
	"warrior_guild": world.MobWarriorGuild,
	"ranger_guild":  world.MobRangerGuild,
	"aggressive":    world.MobAggressive,
	"quest":         world.MobQuest,
	"passive":       world.MobPassive,
	"elite":         world.MobElite,
	"super":         world.MobSuper,
	"milkable":      world.MobMilkable,
	"rattlesnake":   world.MobRattlesnake,
}

var loadFlagNames = map[string]world.LoadFlags{
	"treasure":      world.LoadTreasure,
	"armour":        world.LoadArmour,
	"weapon":        world.LoadWeapon,
	"water":         world.LoadWater,
	"food":          world.LoadFood,
	"herb":          world.LoadHerb,
	"key":           world.LoadKey,
	"mule":          world.LoadMule,
	"horse":         world.LoadHorse,
	"pack_horse":    world.LoadPackHorse,
	"trained_horse": world.LoadTrainedHorse,
	"rohirrim":      world.LoadRohirrim,
	"warg":          world.LoadWarg,
	"boat":          world.LoadBoat,
	"attention":     world.LoadAttention,
	"tower":         world.LoadTower,
	"clock":         world.LoadClock,
	"mail":          world.LoadMail,
	"stable":        world.LoadStable,
	"white_word":    world.LoadWhiteWord,
	"dark_word":     world.LoadDarkWord,
	"equipment":     world.LoadEquipment,
	"coach":         world.LoadCoach,
	"ferry":         world.LoadFerry,
}

var alignNames = map[string]world.Align{
	"good":    world.AlignGood,
	"neutral": world.AlignNeutral,
	"evil":    world.AlignEvil,
}

var lightNames = map[string]world.Light{
	"dark": world.LightDark,
	"lit":  world.LightLit,
}

var portableNames = map[string]world.Portable{
	"portable":     world.PortablePortable,
	"not_portable": world.PortableNotPortable,
}

var ridableNames = map[string]world.Ridable{
	"ridable":     world.RidableRidable,
	"not_ridable": world.RidableNotRidable,
}

var sundeathNames = map[string]world.Sundeath{
	"sundeath":    world.SundeathSundeath,
	"no_sundeath": world.SundeathNoSundeath,
}

var infomarkTypeNames = map[string]world.InfomarkType{
	"text":  world.InfomarkText,
	"line":  world.InfomarkLine,
	"arrow": world.InfomarkArrow,
}

var infomarkClassNames = map[string]world.InfomarkClass{
	"generic":  world.InfomarkGeneric,
	"herb":     world.InfomarkHerb,
	"river":    world.InfomarkRiver,
	"place":    world.InfomarkPlace,
	"mob":      world.InfomarkMob,
	"comment":  world.InfomarkComment,
	"road":     world.InfomarkRoad,
	"object":   world.InfomarkObject,
	"action":   world.InfomarkAction,
	"locality": world.InfomarkLocality,
}

// parseEnum resolves a single optional enum name; "" maps to the zero
// (undefined) value.
func parseEnum[T ~uint8](names map[string]T, value, field string) (T, error) {
	if value == "" {
		var zero T
		return zero, nil
	}
	v, ok := names[strings.ToLower(value)]
	if !ok {
		return 0, fmt.Errorf("unknown %s %q", field, value)
	}
	return v, nil
}

// enumName returns the YAML spelling of an enum value, or "" for the
// zero (undefined) value.
func enumName[T ~uint8](names map[string]T, value T) string {
	for name, v := range names {
		if v == value {
			return name
		}
	}
	return ""
}

// parseFlags ORs together a list of flag names.
func parseFlags[T ~uint16 | ~uint32](names map[string]T, values []string, field string) (T, error) {
	var flags T
	for _, value := range values {
		bit, ok := names[strings.ToLower(value)]
		if !ok {
			return 0, fmt.Errorf("unknown %s flag %q", field, value)
		}
		flags |= bit
	}
	return flags, nil
}

// flagNames returns the sorted YAML spellings of all set bits.
func flagNames[T ~uint16 | ~uint32](names map[string]T, flags T) []string {
	var set []string
	for name, bit := range names {
		if flags&bit != 0 {
			set = append(set, name)
		}
	}
	sort.Strings(set)
	return set
}
