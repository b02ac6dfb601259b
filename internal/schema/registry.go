package schema

import (
	"fmt"

	"sc2dataset/internal/replay"
	"sc2dataset/internal/track"
)

// Strategy selects how the registry is populated relative to row emission.
type Strategy string

const (
	// StrategyPrescan discovers every column in a full first pass before any
	// row is emitted, so no back-filling is ever needed.
	StrategyPrescan Strategy = "prescan"
	// StrategyIncremental registers columns the first time an entity or
	// attribute is observed during the single emission pass. Rows emitted
	// before a column's discovery must be back-filled by the caller.
	StrategyIncremental Strategy = "incremental"
)

// ParseStrategy validates a strategy name from configuration.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case StrategyPrescan, StrategyIncremental:
		return Strategy(name), nil
	default:
		return "", fmt.Errorf("unknown schema strategy %q", name)
	}
}

// Base column names present in every dataset.
const (
	ColGameLoop         = "game_loop"
	ColTimestampSeconds = "timestamp_seconds"
	ColMessages         = "messages"
)

// Registry maintains the ordered, append-only set of output columns for one
// job. Column names are a pure function of (owner, type, sequence, attribute),
// so two runs over the same input produce byte-identical schemas regardless of
// discovery order within a frame.
//
// Registry is not safe for concurrent use; each job owns its own instance.
type Registry struct {
	columns []Column
	index   map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// add appends a column if the name is unregistered. Existing columns are
// never retyped or moved.
func (r *Registry) add(name string, typ ColumnType, sentinel Sentinel, description string) {
	if !ValidColumnName(name) {
		name = SanitizeName(name)
	}
	if _, ok := r.index[name]; ok {
		return
	}
	r.index[name] = len(r.columns)
	r.columns = append(r.columns, Column{
		Name:        name,
		Type:        typ,
		Sentinel:    sentinel,
		Description: description,
		Index:       len(r.columns),
	})
}

// RegisterBaseColumns adds the columns present in every row.
func (r *Registry) RegisterBaseColumns() {
	r.add(ColGameLoop, TypeInt64, SentinelZero, "Game loop (frame) number of the sample")
	r.add(ColTimestampSeconds, TypeFloat64, SentinelNaN,
		fmt.Sprintf("Seconds since game start (game_loop / %.1f)", replay.GameLoopsPerSecond))
}

// RegisterMessagesColumn adds the chat transcript column.
func (r *Registry) RegisterMessagesColumn() {
	r.add(ColMessages, TypeString, SentinelNull, "Chat messages observed at this frame")
}

var unitAttributes = []struct {
	suffix      string
	typ         ColumnType
	description string
}{
	{"x", TypeFloat64, "X-coordinate"},
	{"y", TypeFloat64, "Y-coordinate"},
	{"z", TypeFloat64, "Z-coordinate (height)"},
	{"health", TypeFloat64, "Current health"},
	{"health_max", TypeFloat64, "Maximum health"},
	{"shields", TypeFloat64, "Current shields"},
	{"shields_max", TypeFloat64, "Maximum shields"},
	{"energy", TypeFloat64, "Current energy"},
	{"energy_max", TypeFloat64, "Maximum energy"},
}

var buildingAttributes = []struct {
	suffix      string
	typ         ColumnType
	description string
}{
	{"x", TypeFloat64, "X-coordinate"},
	{"y", TypeFloat64, "Y-coordinate"},
	{"z", TypeFloat64, "Z-coordinate (height)"},
	{"progress", TypeFloat64, "Construction progress (0-1)"},
	{"started_loop", TypeInt64, "Game loop when construction started"},
	{"completed_loop", TypeInt64, "Game loop when construction completed"},
	{"destroyed_loop", TypeInt64, "Game loop when the building was destroyed"},
}

// RegisterEntityColumns adds the attribute family for one entity instance.
// Units get positional/vital columns plus a lifecycle state column; buildings
// get positional columns plus the construction lifecycle family. Calling it
// again for a registered entity is a no-op.
func (r *Registry) RegisterEntityColumns(id track.StableID, kind replay.Kind) {
	prefix := id.String()
	display := replay.DisplayName(id.Type)

	switch kind {
	case replay.KindBuilding:
		for _, attr := range buildingAttributes {
			r.add(prefix+"_"+attr.suffix, attr.typ, SentinelNaN,
				fmt.Sprintf("%s for player %d %s %s", attr.description, id.Owner, display, prefix))
		}
		r.add(prefix+"_status", TypeString, SentinelNull,
			fmt.Sprintf("Construction status (started/building/completed/destroyed) for player %d %s %s", id.Owner, display, prefix))
	default:
		for _, attr := range unitAttributes {
			r.add(prefix+"_"+attr.suffix, attr.typ, SentinelNaN,
				fmt.Sprintf("%s for player %d %s %s", attr.description, id.Owner, display, prefix))
		}
		r.add(prefix+"_state", TypeString, SentinelNull,
			fmt.Sprintf("Lifecycle state (created/existing/destroyed) for player %d %s %s", id.Owner, display, prefix))
	}
}

// RegisterEntityAttribute adds a column for an attribute observed outside the
// standard family. The attribute name is sanitized before registration.
func (r *Registry) RegisterEntityAttribute(id track.StableID, attribute string) string {
	name := EntityColumn(id, SanitizeName(attribute))
	r.add(name, TypeFloat64, SentinelNaN,
		fmt.Sprintf("%s for player %d %s %s", replay.DisplayName(SanitizeName(attribute)), id.Owner, replay.DisplayName(id.Type), id.String()))
	return name
}

var economyAttributes = []struct {
	suffix      string
	description string
}{
	{"minerals", "Current minerals"},
	{"vespene", "Current vespene gas"},
	{"supply_used", "Supply used"},
	{"supply_cap", "Supply capacity"},
	{"workers", "Total worker count"},
	{"idle_workers", "Idle worker count"},
	{"army_count", "Army unit count"},
}

// RegisterEconomyColumns adds the per-owner aggregate metric columns.
func (r *Registry) RegisterEconomyColumns(owner int) {
	for _, attr := range economyAttributes {
		r.add(EconomyColumn(owner, attr.suffix), TypeInt64, SentinelNaN,
			fmt.Sprintf("%s for player %d", attr.description, owner))
	}
}

var upgradeAttributes = []string{"attack_level", "armor_level", "shield_level"}

// RegisterUpgradeColumns adds the per-owner upgrade level columns. Upgrade
// levels default to zero rather than missing.
func (r *Registry) RegisterUpgradeColumns(owner int) {
	for _, upgrade := range upgradeAttributes {
		r.add(UpgradeColumn(owner, upgrade), TypeInt64, SentinelZero,
			fmt.Sprintf("%s for player %d", replay.DisplayName(upgrade), owner))
	}
}

// RegisterCountColumn adds a per-owner count column for one entity type and
// returns its name. Counts default to zero.
func (r *Registry) RegisterCountColumn(owner int, typeName string) string {
	name := CountColumn(owner, typeName)
	r.add(name, TypeInt64, SentinelZero,
		fmt.Sprintf("Count of %s entities for player %d", replay.DisplayName(typeName), owner))
	return name
}

// Columns returns the registered columns in discovery order. The returned
// slice is shared; callers must not mutate it.
func (r *Registry) Columns() []Column {
	return r.columns
}

// Len returns the number of registered columns.
func (r *Registry) Len() int {
	return len(r.columns)
}

// Lookup returns a column by name.
func (r *Registry) Lookup(name string) (Column, bool) {
	i, ok := r.index[name]
	if !ok {
		return Column{}, false
	}
	return r.columns[i], true
}

// SentinelValue returns the missing-value marker for a column, or nil for an
// unregistered name.
func (r *Registry) SentinelValue(name string) any {
	col, ok := r.Lookup(name)
	if !ok {
		return nil
	}
	return col.Sentinel.Value()
}

// EntityColumn builds the deterministic column name for one entity attribute.
func EntityColumn(id track.StableID, attribute string) string {
	return id.String() + "_" + attribute
}

// EconomyColumn builds the deterministic column name for one economy metric.
func EconomyColumn(owner int, metric string) string {
	return fmt.Sprintf("p%d_%s", owner, metric)
}

// UpgradeColumn builds the deterministic column name for one upgrade level.
func UpgradeColumn(owner int, upgrade string) string {
	return fmt.Sprintf("p%d_upgrade_%s", owner, upgrade)
}

// CountColumn builds the deterministic column name for one entity-type count.
func CountColumn(owner int, typeName string) string {
	return fmt.Sprintf("p%d_%s_count", owner, SanitizeName(typeName))
}
