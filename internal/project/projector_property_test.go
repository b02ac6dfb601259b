package project

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"sc2dataset/internal/logging"
	"sc2dataset/internal/replay"
	"sc2dataset/internal/schema"
	"sc2dataset/internal/track"
)

// Property: no matter which entities a frame carries or which cells get
// written, a row's key set always equals the registry's column set and the
// row stays valid.
func TestPropertyRowKeysMatchSchema(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("row cells mirror registered columns", prop.ForAll(
		func(owners []int, healths []float64, loop int64) bool {
			reg := schema.NewRegistry()
			reg.RegisterBaseColumns()
			ids := make([]track.StableID, 0, len(owners))
			for i, owner := range owners {
				id := track.StableID{Owner: owner, Type: "marine", Seq: i + 1}
				reg.RegisterEntityColumns(id, replay.KindUnit)
				ids = append(ids, id)
			}

			p := NewProjector(reg, logging.NewNop())
			row := p.NewRow()
			if err := p.Set(row, "game_loop", loop); err != nil {
				return false
			}
			for i, id := range ids {
				if i >= len(healths) {
					break
				}
				if err := p.Set(row, schema.EntityColumn(id, "health"), healths[i]); err != nil {
					return false
				}
			}

			if len(row) != reg.Len() {
				return false
			}
			for _, col := range reg.Columns() {
				if _, ok := row[col.Name]; !ok {
					return false
				}
			}
			return p.Validate(row) == nil
		},
		gen.SliceOfN(6, gen.IntRange(1, 4)),
		gen.SliceOfN(6, gen.Float64Range(0, 200)),
		gen.Int64Range(0, 100000),
	))

	properties.TestingRun(t)
}
