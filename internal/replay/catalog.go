package replay

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is the semantic category of a raw type code.
type Kind int

const (
	// KindUnit covers mobile player-controlled objects; they use the
	// three-state created/existing/destroyed classification only.
	KindUnit Kind = iota
	// KindBuilding covers constructible objects tracked through the full
	// started/building/completed/destroyed lifecycle.
	KindBuilding
	// KindNeutral covers map-owned objects (mineral fields, geysers, rocks)
	// that extraction skips entirely.
	KindNeutral
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindBuilding:
		return "building"
	case KindNeutral:
		return "neutral"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// TypeInfo is the catalog's answer for one raw type code.
type TypeInfo struct {
	Name string
	Kind Kind
}

// Catalog classifies raw numeric type codes into semantic categories.
type Catalog interface {
	Lookup(typeID int) (TypeInfo, bool)
}

// StaticCatalog is a fixed in-memory catalog.
type StaticCatalog map[int]TypeInfo

// Lookup implements Catalog.
func (c StaticCatalog) Lookup(typeID int) (TypeInfo, bool) {
	info, ok := c[typeID]
	return info, ok
}

// Classify resolves a type code against the catalog, synthesizing a stable
// fallback name for codes the catalog does not know. Unknown codes are
// treated as units so they still appear in the dataset.
func Classify(catalog Catalog, typeID int) TypeInfo {
	if catalog != nil {
		if info, ok := catalog.Lookup(typeID); ok {
			return info
		}
	}
	return TypeInfo{Name: fmt.Sprintf("type_%d", typeID), Kind: KindUnit}
}

// DefaultCatalog returns the built-in table of common type codes. The codes
// follow the game's stable unit type identifiers.
func DefaultCatalog() StaticCatalog {
	catalog := make(StaticCatalog, len(unitTypes)+len(buildingTypes)+len(neutralTypes))
	for id, name := range unitTypes {
		catalog[id] = TypeInfo{Name: name, Kind: KindUnit}
	}
	for id, name := range buildingTypes {
		catalog[id] = TypeInfo{Name: name, Kind: KindBuilding}
	}
	for id, name := range neutralTypes {
		catalog[id] = TypeInfo{Name: name, Kind: KindNeutral}
	}
	return catalog
}

var unitTypes = map[int]string{
	4:   "colossus",
	9:   "baneling",
	45:  "scv",
	48:  "marine",
	49:  "reaper",
	50:  "ghost",
	51:  "marauder",
	52:  "thor",
	53:  "hellion",
	54:  "medivac",
	55:  "banshee",
	56:  "raven",
	57:  "battlecruiser",
	33:  "siege_tank",
	34:  "viking",
	73:  "zealot",
	74:  "stalker",
	75:  "high_templar",
	76:  "dark_templar",
	77:  "sentry",
	78:  "phoenix",
	79:  "carrier",
	80:  "void_ray",
	81:  "warp_prism",
	82:  "observer",
	83:  "immortal",
	84:  "probe",
	104: "drone",
	105: "zergling",
	106: "overlord",
	107: "hydralisk",
	108: "mutalisk",
	109: "ultralisk",
	110: "roach",
	111: "infestor",
	112: "corruptor",
	114: "brood_lord",
	126: "queen",
	129: "overseer",
	141: "archon",
	268: "mule",
}

var buildingTypes = map[int]string{
	18:  "command_center",
	19:  "supply_depot",
	20:  "refinery",
	21:  "barracks",
	22:  "engineering_bay",
	23:  "missile_turret",
	24:  "bunker",
	25:  "sensor_tower",
	26:  "ghost_academy",
	27:  "factory",
	28:  "starport",
	29:  "armory",
	30:  "fusion_core",
	130: "planetary_fortress",
	132: "orbital_command",
	59:  "nexus",
	60:  "pylon",
	61:  "assimilator",
	62:  "gateway",
	63:  "forge",
	64:  "fleet_beacon",
	65:  "twilight_council",
	66:  "photon_cannon",
	67:  "stargate",
	68:  "templar_archive",
	69:  "dark_shrine",
	70:  "robotics_bay",
	71:  "robotics_facility",
	72:  "cybernetics_core",
	86:  "hatchery",
	87:  "creep_tumor",
	88:  "extractor",
	89:  "spawning_pool",
	90:  "evolution_chamber",
	91:  "hydralisk_den",
	92:  "spire",
	93:  "ultralisk_cavern",
	94:  "infestation_pit",
	95:  "nydus_network",
	96:  "baneling_nest",
	97:  "roach_warren",
	98:  "spine_crawler",
	99:  "spore_crawler",
	100: "lair",
	101: "hive",
	102: "greater_spire",
}

var neutralTypes = map[int]string{
	149: "xel_naga_tower",
	341: "mineral_field",
	342: "vespene_geyser",
	343: "rich_mineral_field",
	344: "rich_vespene_geyser",
	472: "destructible_rock",
	473: "destructible_debris",
}

// DisplayName renders a catalog name for documentation, e.g.
// "siege_tank" -> "Siege Tank".
func DisplayName(name string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(name, "_", " "))
}
