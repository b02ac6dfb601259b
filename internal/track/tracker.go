package track

import (
	"fmt"
	"sort"
)

// StableID is the permanent logical identity of one physical game object
// within a single extraction job. It is derived from the object's owner, type
// name, and a per-(owner,type) sequence number, so two independent runs over
// the same recording mint identical IDs.
type StableID struct {
	Owner int
	Type  string
	Seq   int
}

func (id StableID) String() string {
	return fmt.Sprintf("p%d_%s_%03d", id.Owner, id.Type, id.Seq)
}

// IsZero reports whether the ID has never been assigned.
func (id StableID) IsZero() bool {
	return id.Type == "" && id.Owner == 0 && id.Seq == 0
}

// Transition classifies a tag's per-frame lifecycle change.
type Transition int

const (
	TransitionCreated Transition = iota
	TransitionExisting
	TransitionDestroyed
)

func (t Transition) String() string {
	switch t {
	case TransitionCreated:
		return "created"
	case TransitionExisting:
		return "existing"
	case TransitionDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("transition(%d)", int(t))
	}
}

type counterKey struct {
	owner int
	typ   string
}

// Tracker converts ephemeral engine tags into StableIDs and classifies
// per-frame lifecycle transitions. All state is scoped to one job; trackers
// are never shared across jobs because tag spaces are independent.
//
// Tracker is not safe for concurrent use. Per-job extraction is sequential by
// design: classification depends on frames arriving in chronological order.
type Tracker struct {
	registry map[uint64]StableID
	counters map[counterKey]int
	previous map[uint64]bool
	current  map[uint64]bool
	retired  map[uint64]bool
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		registry: make(map[uint64]StableID),
		counters: make(map[counterKey]int),
		previous: make(map[uint64]bool),
		current:  make(map[uint64]bool),
		retired:  make(map[uint64]bool),
	}
}

// AssignID returns the StableID for a tag, minting a fresh one on first
// sight or after the tag has been retired. Repeat calls while the tag is
// active return the same ID; sequence counters never reset within a job, so a
// reissued tag can never collide with a retired identity.
func (t *Tracker) AssignID(tag uint64, typeName string, owner int) StableID {
	if id, ok := t.registry[tag]; ok {
		return id
	}
	key := counterKey{owner: owner, typ: typeName}
	t.counters[key]++
	id := StableID{Owner: owner, Type: typeName, Seq: t.counters[key]}
	t.registry[tag] = id
	return id
}

// Lookup returns the active StableID for a tag without minting one.
func (t *Tracker) Lookup(tag uint64) (StableID, bool) {
	id, ok := t.registry[tag]
	return id, ok
}

// ClassifyTransition determines a tag's lifecycle transition for the current
// frame. An explicit destroyed flag takes precedence over presence, so objects
// the engine reports destroyed are terminal even when their snapshot still
// appears this frame; mere absence after activity also counts as destruction.
// Tags classified as present are added to the frame's active set committed by
// EndOfFrame.
func (t *Tracker) ClassifyTransition(tag uint64, present, flaggedDestroyed bool) Transition {
	wasActive := t.previous[tag] && !t.retired[tag]
	switch {
	case !wasActive:
		if present && !flaggedDestroyed {
			t.current[tag] = true
		}
		return TransitionCreated
	case flaggedDestroyed || !present:
		return TransitionDestroyed
	default:
		t.current[tag] = true
		return TransitionExisting
	}
}

// Retire forgets the tag's stable identity so a later reissue of the same tag
// value mints a fresh StableID. Call it when a Destroyed transition is
// recorded; within a frame the destruction must be processed before the
// reissued tag's creation.
func (t *Tracker) Retire(tag uint64) {
	delete(t.registry, tag)
	delete(t.current, tag)
	t.retired[tag] = true
}

// ActiveTags returns the tags in the committed baseline that have not been
// retired, in ascending order. The pipeline uses it to detect silent
// disappearances.
func (t *Tracker) ActiveTags() []uint64 {
	tags := make([]uint64, 0, len(t.previous))
	for tag := range t.previous {
		if t.retired[tag] {
			continue
		}
		if _, ok := t.registry[tag]; !ok {
			continue
		}
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// EndOfFrame commits this frame's active-tag set as the baseline for the next
// frame's classification. It must be called exactly once per frame, after
// every tag in the frame has been classified.
func (t *Tracker) EndOfFrame() {
	t.previous = t.current
	t.current = make(map[uint64]bool, len(t.previous))
	if len(t.retired) > 0 {
		t.retired = make(map[uint64]bool)
	}
}
