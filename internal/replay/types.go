package replay

// GameLoopsPerSecond converts game loops to wall-clock seconds at the
// "faster" game speed every ladder replay is recorded at.
const GameLoopsPerSecond = 22.4

// EntitySnapshot is one frame's observation of a single game object. The Tag
// is the ephemeral identifier issued by the game engine; it can be reissued to
// an unrelated object after this one is destroyed.
type EntitySnapshot struct {
	Tag    uint64  `json:"tag"`
	Type   int     `json:"type"`
	Owner  int     `json:"owner"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Health float64 `json:"health"`
	// BuildProgress is 0..1; only meaningful for constructible types.
	BuildProgress float64 `json:"build_progress"`
	// Attributes carries additional per-type scalar observations
	// (health_max, shields, energy, ...).
	Attributes map[string]float64 `json:"attributes,omitempty"`
}

// EconomySnapshot holds per-owner aggregate metrics. Economy data arrives at a
// lower frequency than entity observations; frames without it carry none.
type EconomySnapshot struct {
	Minerals    int64 `json:"minerals"`
	Vespene     int64 `json:"vespene"`
	SupplyUsed  int64 `json:"supply_used"`
	SupplyCap   int64 `json:"supply_cap"`
	Workers     int64 `json:"workers"`
	IdleWorkers int64 `json:"idle_workers"`
	ArmyCount   int64 `json:"army_count"`
}

// UpgradeLevels holds a player's researched upgrade tiers. Levels only ever
// increase during a match.
type UpgradeLevels struct {
	Attack int64 `json:"attack"`
	Armor  int64 `json:"armor"`
	Shield int64 `json:"shield"`
}

// Message is a chat line observed during playback.
type Message struct {
	Loop  int64  `json:"loop"`
	Owner int    `json:"owner"`
	Text  string `json:"text"`
}

// Frame is one sampled simulation tick.
type Frame struct {
	Loop     int64            `json:"loop"`
	Entities []EntitySnapshot `json:"entities"`
	// Destroyed lists tags the engine explicitly flagged as destroyed this
	// frame. It disambiguates true destruction from objects that merely left
	// observable range.
	Destroyed []uint64 `json:"destroyed,omitempty"`
	// Economy maps owner to aggregate metrics when present this frame.
	Economy map[int]EconomySnapshot `json:"economy,omitempty"`
	// Upgrades maps owner to researched upgrade levels when present.
	Upgrades map[int]UpgradeLevels `json:"upgrades,omitempty"`
	Messages []Message             `json:"messages,omitempty"`
}

// PlayerInfo describes one participant of the recorded match.
type PlayerInfo struct {
	Owner int    `json:"owner"`
	Name  string `json:"name"`
	Race  string `json:"race"`
}

// Metadata describes the recording as a whole.
type Metadata struct {
	DurationLoops int64        `json:"duration_loops"`
	MapName       string       `json:"map_name"`
	Players       []PlayerInfo `json:"players"`
}
