package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"sc2dataset/internal/logging"
	"sc2dataset/internal/project"
	"sc2dataset/internal/replay"
	"sc2dataset/internal/schema"
	"sc2dataset/internal/services"
	"sc2dataset/internal/track"
)

// Options controls one extraction run.
type Options struct {
	// SampleInterval is the number of game loops between emitted rows.
	SampleInterval int64
	// Strategy selects prescan (two passes, complete schema up front) or
	// incremental (one pass, rows back-filled as columns appear).
	Strategy schema.Strategy
	// IncludeMessages adds the chat transcript column.
	IncludeMessages bool
	// MaxLoops truncates the recording when positive.
	MaxLoops int64
}

func (o *Options) normalize() {
	if o.SampleInterval <= 0 {
		o.SampleInterval = 22
	}
	if o.Strategy == "" {
		o.Strategy = schema.StrategyPrescan
	}
}

// Result is the output of one extraction job.
type Result struct {
	Source   string
	Metadata replay.Metadata
	Registry *schema.Registry
	Rows     []project.Row

	FramesRead     int
	FramesSkipped  int
	RecordsSkipped int
	Violations     []track.ProgressViolation
}

// Pipeline turns one recording into a wide-table row set. Each Run builds
// fresh tracker, lifecycle, and schema state, so a pipeline can be shared
// across jobs while the jobs stay fully isolated.
type Pipeline struct {
	decoder replay.Decoder
	catalog replay.Catalog
	logger  *slog.Logger
	opts    Options
}

// New returns a pipeline over the given decoder and type catalog.
func New(decoder replay.Decoder, catalog replay.Catalog, logger *slog.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	if catalog == nil {
		catalog = replay.DefaultCatalog()
	}
	opts.normalize()
	return &Pipeline{decoder: decoder, catalog: catalog, logger: logger, opts: opts}
}

// Run extracts one recording. With the prescan strategy the recording is
// decoded twice: the first pass only discovers entities and columns, the
// second emits rows against the finished registry. The incremental strategy
// decodes once and back-fills earlier rows with sentinels as columns appear.
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, error) {
	log := p.logger.With(logging.String(logging.FieldSource, path))

	state := newJobState(p, log)
	if p.opts.Strategy == schema.StrategyPrescan {
		log.Debug("prescan pass: discovering schema")
		if err := p.scan(ctx, path, state, false); err != nil {
			return nil, err
		}
		// The emission pass replays tracking from scratch; identity minting
		// is deterministic, so it lands on the same columns.
		state = state.freshPass(p, log)
	}

	if err := p.scan(ctx, path, state, true); err != nil {
		return nil, err
	}

	if p.opts.Strategy == schema.StrategyIncremental {
		state.backfill()
	}

	result := &Result{
		Source:         path,
		Metadata:       state.meta,
		Registry:       state.registry,
		Rows:           state.rows,
		FramesRead:     state.framesRead,
		FramesSkipped:  state.framesSkipped,
		RecordsSkipped: state.recordsSkipped,
		Violations:     state.violations,
	}
	log.Info("extraction complete",
		logging.Int("rows", len(result.Rows)),
		logging.Int("columns", result.Registry.Len()),
		logging.Int("frames", result.FramesRead))
	return result, nil
}

// scan decodes the recording once, driving tracking and, when emit is set,
// row materialization.
func (p *Pipeline) scan(ctx context.Context, path string, state *jobState, emit bool) error {
	stream, err := p.decoder.Open(ctx, path)
	if err != nil {
		return services.Wrap(services.ErrDecode, "extract", "open", "open recording", err)
	}
	defer stream.Close()

	state.meta = stream.Metadata()
	state.registerGlobals()

	lastLoop := int64(-1)
	for {
		frame, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return services.Wrap(services.ErrDecode, "extract", "decode", "decode frame", err)
		}
		if p.opts.MaxLoops > 0 && frame.Loop > p.opts.MaxLoops {
			break
		}
		if frame.Loop <= lastLoop && lastLoop >= 0 {
			state.framesSkipped++
			state.log.Warn("out-of-order frame skipped",
				logging.Int64(logging.FieldFrame, frame.Loop),
				logging.Int64("previous", lastLoop))
			continue
		}
		lastLoop = frame.Loop
		state.framesRead++
		state.processFrame(frame, emit)
	}
	return nil
}

// jobState is the per-run mutable state: identity tracking, lifecycle
// records, the column registry, and buffered rows.
type jobState struct {
	log       *slog.Logger
	opts      Options
	catalog   replay.Catalog
	tracker   *track.Tracker
	lifecycle *track.Lifecycle
	registry  *schema.Registry
	projector *project.Projector

	meta replay.Metadata
	// kinds remembers each stable identity's classification so silent
	// disappearances can be routed without a snapshot in hand.
	kinds map[track.StableID]replay.Kind
	// upgrades carries the last reported levels per owner forward, so rows
	// sampled between snapshots keep the researched tiers instead of falling
	// back to zero.
	upgrades map[int]replay.UpgradeLevels
	rows     []project.Row

	framesRead     int
	framesSkipped  int
	recordsSkipped int
	violations     []track.ProgressViolation

	globalsRegistered bool
}

func newJobState(p *Pipeline, log *slog.Logger) *jobState {
	registry := schema.NewRegistry()
	return &jobState{
		log:       log,
		opts:      p.opts,
		catalog:   p.catalog,
		tracker:   track.NewTracker(),
		lifecycle: track.NewLifecycle(),
		registry:  registry,
		projector: project.NewProjector(registry, log),
		kinds:     make(map[track.StableID]replay.Kind),
		upgrades:  make(map[int]replay.UpgradeLevels),
	}
}

// freshPass keeps the discovered registry but resets all tracking for the
// emission pass of the prescan strategy.
func (s *jobState) freshPass(p *Pipeline, log *slog.Logger) *jobState {
	next := newJobState(p, log)
	next.registry = s.registry
	next.projector = project.NewProjector(s.registry, log)
	return next
}

func (s *jobState) registerGlobals() {
	if s.globalsRegistered {
		return
	}
	s.globalsRegistered = true
	s.registry.RegisterBaseColumns()
	for _, player := range s.meta.Players {
		s.registry.RegisterEconomyColumns(player.Owner)
		s.registry.RegisterUpgradeColumns(player.Owner)
	}
	if s.opts.IncludeMessages {
		s.registry.RegisterMessagesColumn()
	}
}

func (s *jobState) sampled(loop int64) bool {
	return loop%s.opts.SampleInterval == 0
}

// processFrame applies one frame. Destructions are resolved before any
// creation so a tag the engine reuses in the same frame mints a fresh
// identity instead of inheriting the dead one.
func (s *jobState) processFrame(frame *replay.Frame, emit bool) {
	var row project.Row
	if emit && s.sampled(frame.Loop) {
		row = s.projector.NewRow()
		s.set(row, schema.ColGameLoop, frame.Loop)
		s.set(row, schema.ColTimestampSeconds, float64(frame.Loop)/replay.GameLoopsPerSecond)
	}

	seen := make(map[uint64]*replay.EntitySnapshot, len(frame.Entities))
	for i := range frame.Entities {
		seen[frame.Entities[i].Tag] = &frame.Entities[i]
	}
	flagged := make(map[uint64]bool, len(frame.Destroyed))
	for _, tag := range frame.Destroyed {
		flagged[tag] = true
	}

	// Explicitly flagged destructions.
	for _, tag := range frame.Destroyed {
		snap := seen[tag]
		s.tracker.ClassifyTransition(tag, snap != nil, true)

		id, ok := s.tracker.Lookup(tag)
		if !ok {
			if snap == nil {
				// Never observed alive; nothing to record.
				continue
			}
			info := replay.Classify(s.catalog, snap.Type)
			if info.Kind == replay.KindNeutral {
				continue
			}
			// Created and destroyed within one frame: the identity still
			// exists so the terminal state is attributable.
			id = s.tracker.AssignID(tag, info.Name, snap.Owner)
			s.kinds[id] = info.Kind
			s.registerEntity(id)
		}
		s.destroyEntity(id, frame.Loop, row)
		s.tracker.Retire(tag)
	}

	// Silent disappearances count as destruction too.
	for _, tag := range s.tracker.ActiveTags() {
		if seen[tag] != nil {
			continue
		}
		s.tracker.ClassifyTransition(tag, false, false)
		if id, ok := s.tracker.Lookup(tag); ok {
			s.destroyEntity(id, frame.Loop, row)
		}
		s.tracker.Retire(tag)
	}

	// Live observations.
	counts := make(map[string]int64)
	for i := range frame.Entities {
		snap := &frame.Entities[i]
		if flagged[snap.Tag] {
			continue
		}
		if snap.Owner < 0 {
			s.recordsSkipped++
			s.log.Warn("entity record with invalid owner skipped",
				logging.Uint64("tag", snap.Tag),
				logging.Int64(logging.FieldFrame, frame.Loop))
			continue
		}
		info := replay.Classify(s.catalog, snap.Type)
		if info.Kind == replay.KindNeutral {
			// Map-owned scenery never enters the dataset.
			continue
		}
		id := s.tracker.AssignID(snap.Tag, info.Name, snap.Owner)
		s.kinds[id] = info.Kind
		transition := s.tracker.ClassifyTransition(snap.Tag, true, false)
		s.registerEntity(id)

		if info.Kind == replay.KindBuilding {
			s.observeBuilding(id, snap, frame.Loop, row)
		} else {
			s.observeUnit(id, snap, transition, row)
		}
		if snap.Owner > 0 {
			counts[s.registry.RegisterCountColumn(snap.Owner, info.Name)]++
		}
	}

	if row != nil {
		for name, n := range counts {
			s.set(row, name, n)
		}
	}
	s.writeEconomy(frame, row)
	s.writeUpgrades(frame, row)
	s.writeMessages(frame, row)

	s.tracker.EndOfFrame()

	if row != nil {
		// Columns can be registered mid-frame without every cell in their
		// family receiving an observation; top those up with sentinels.
		s.fill(row)
		if err := s.projector.Validate(row); err != nil {
			// Registry and rows are driven by the same pass, so this is a
			// programming error; drop the frame rather than ship a ragged row.
			s.framesSkipped++
			s.log.Error("row failed schema validation, frame dropped",
				logging.Int64(logging.FieldFrame, frame.Loop),
				logging.Error(err))
			return
		}
		s.rows = append(s.rows, row)
	}
}

func (s *jobState) registerEntity(id track.StableID) {
	s.registry.RegisterEntityColumns(id, s.kinds[id])
}

// observeUnit writes a live unit's snapshot into the row and registers any
// attribute not covered by the standard family.
func (s *jobState) observeUnit(id track.StableID, snap *replay.EntitySnapshot, transition track.Transition, row project.Row) {
	known := map[string]float64{
		"x":      snap.X,
		"y":      snap.Y,
		"z":      snap.Z,
		"health": snap.Health,
	}
	extra := make([]string, 0)
	for attr, value := range snap.Attributes {
		switch attr {
		case "health_max", "shields", "shields_max", "energy", "energy_max":
			known[attr] = value
		default:
			extra = append(extra, attr)
		}
	}
	if row != nil {
		for attr, value := range known {
			s.set(row, schema.EntityColumn(id, attr), value)
		}
		s.set(row, schema.EntityColumn(id, "state"), transition.String())
	}
	// Deterministic registration order for dynamic attributes.
	sort.Strings(extra)
	for _, attr := range extra {
		name := s.registry.RegisterEntityAttribute(id, attr)
		if row != nil {
			s.set(row, name, snap.Attributes[attr])
		}
	}
}

// observeBuilding folds the snapshot into the construction lifecycle and
// writes the lifecycle columns. Reported progress is recorded raw even when
// it violates monotonicity.
func (s *jobState) observeBuilding(id track.StableID, snap *replay.EntitySnapshot, loop int64, row project.Row) {
	rec, violation := s.lifecycle.Observe(id, snap.BuildProgress, loop)
	if violation != nil {
		s.violations = append(s.violations, *violation)
		s.log.Warn("construction progress decreased",
			logging.String("entity", id.String()),
			logging.Int64(logging.FieldFrame, loop),
			logging.Float64("previous", violation.Previous),
			logging.Float64("reported", violation.Reported))
	}
	if row == nil {
		return
	}
	s.set(row, schema.EntityColumn(id, "x"), snap.X)
	s.set(row, schema.EntityColumn(id, "y"), snap.Y)
	s.set(row, schema.EntityColumn(id, "z"), snap.Z)
	s.set(row, schema.EntityColumn(id, "progress"), rec.Progress)
	s.set(row, schema.EntityColumn(id, "status"), rec.State.String())
	s.set(row, schema.EntityColumn(id, "started_loop"), rec.StartedLoop)
	if rec.Completed {
		s.set(row, schema.EntityColumn(id, "completed_loop"), rec.CompletedLoop)
	}
}

// destroyEntity records the terminal transition. Only the terminal state
// column is written; every other attribute column keeps its sentinel for
// this and all later frames.
func (s *jobState) destroyEntity(id track.StableID, loop int64, row project.Row) {
	kind := s.kinds[id]
	if kind == replay.KindBuilding {
		rec := s.lifecycle.Destroy(id, loop)
		if row != nil {
			s.set(row, schema.EntityColumn(id, "status"), track.StateDestroyed.String())
			s.set(row, schema.EntityColumn(id, "destroyed_loop"), rec.DestroyedLoop)
		}
		return
	}
	if row != nil {
		s.set(row, schema.EntityColumn(id, "state"), track.TransitionDestroyed.String())
	}
}

func (s *jobState) writeEconomy(frame *replay.Frame, row project.Row) {
	for owner, snap := range frame.Economy {
		s.registry.RegisterEconomyColumns(owner)
		if row == nil {
			continue
		}
		s.set(row, schema.EconomyColumn(owner, "minerals"), snap.Minerals)
		s.set(row, schema.EconomyColumn(owner, "vespene"), snap.Vespene)
		s.set(row, schema.EconomyColumn(owner, "supply_used"), snap.SupplyUsed)
		s.set(row, schema.EconomyColumn(owner, "supply_cap"), snap.SupplyCap)
		s.set(row, schema.EconomyColumn(owner, "workers"), snap.Workers)
		s.set(row, schema.EconomyColumn(owner, "idle_workers"), snap.IdleWorkers)
		s.set(row, schema.EconomyColumn(owner, "army_count"), snap.ArmyCount)
	}
}

// writeUpgrades folds this frame's reported levels into the carried state and
// overlays the cumulative levels on every sampled row, not just frames whose
// snapshot happened to include an upgrade report.
func (s *jobState) writeUpgrades(frame *replay.Frame, row project.Row) {
	for owner, levels := range frame.Upgrades {
		s.registry.RegisterUpgradeColumns(owner)
		s.upgrades[owner] = levels
	}
	if row == nil {
		return
	}
	for owner, levels := range s.upgrades {
		s.set(row, schema.UpgradeColumn(owner, "attack_level"), levels.Attack)
		s.set(row, schema.UpgradeColumn(owner, "armor_level"), levels.Armor)
		s.set(row, schema.UpgradeColumn(owner, "shield_level"), levels.Shield)
	}
}

func (s *jobState) writeMessages(frame *replay.Frame, row project.Row) {
	if !s.opts.IncludeMessages || len(frame.Messages) == 0 {
		return
	}
	s.registry.RegisterMessagesColumn()
	if row == nil {
		return
	}
	lines := make([]string, 0, len(frame.Messages))
	for _, msg := range frame.Messages {
		lines = append(lines, fmt.Sprintf("p%d: %s", msg.Owner, msg.Text))
	}
	s.set(row, schema.ColMessages, strings.Join(lines, "\n"))
}

// set routes through the projector so type coercion and sentinel fallback
// apply uniformly. An unregistered column here is a bug in registration
// ordering; log it and keep the frame.
func (s *jobState) set(row project.Row, column string, value any) {
	if row == nil {
		return
	}
	if err := s.projector.Set(row, column, value); err != nil {
		s.log.Error("projection rejected column", logging.String("column", column), logging.Error(err))
	}
}

// fill pads a row with sentinels for any registered column it lacks.
func (s *jobState) fill(row project.Row) {
	if len(row) == s.registry.Len() {
		return
	}
	for _, col := range s.registry.Columns() {
		if _, ok := row[col.Name]; !ok {
			row[col.Name] = col.Sentinel.Value()
		}
	}
}

// backfill pads earlier rows with sentinels for columns discovered after
// they were emitted. Prescan runs never need it.
func (s *jobState) backfill() {
	for _, row := range s.rows {
		s.fill(row)
	}
}
