package ops

import (
	"context"
	"testing"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/jettison/jtest"
	"github.com/luno/spawnpick/api"
	"github.com/luno/spawnpick/server/db"
	"github.com/luno/spawnpick/server/ops/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = config.Config{Tables: []config.Table{
	{Name: "enemies", Choices: []config.Choice{
		{Value: "goblin", Weight: 10},
		{Value: "orc", Weight: 0},
		{Value: "troll", Weight: 1},
	}},
	{Name: "loot"},
}}

func newTestTables(t *testing.T, tdb TableDB) *Tables {
	tables, err := NewTables(context.Background(), testConfig, tdb, 1)
	jtest.RequireNil(t, err)
	return tables
}

func TestNewTablesFromConfig(t *testing.T) {
	ctx := context.Background()
	mdb := NewMemDB()
	tables := newTestTables(t, mdb)

	assert.Equal(t, []api.Table{
		{Name: "enemies", TotalWeight: 11, Choices: []api.Choice{
			{Value: "goblin", Weight: 10, CumulativeWeight: 10},
			{Value: "troll", Weight: 1, CumulativeWeight: 11},
		}},
		{Name: "loot", Choices: []api.Choice{}},
	}, tables.GetTables())

	stored, err := mdb.LoadTable(ctx, "enemies")
	jtest.RequireNil(t, err)
	assert.Equal(t, []api.Choice{
		{Value: "goblin", Weight: 10},
		{Value: "troll", Weight: 1},
	}, stored)
}

func TestNewTablesPrefersStored(t *testing.T) {
	ctx := context.Background()
	mdb := NewMemDB()
	jtest.RequireNil(t, mdb.StoreTable(ctx, "enemies", []api.Choice{{Value: "dragon", Weight: 3}}))
	jtest.RequireNil(t, mdb.StoreTable(ctx, "extra", []api.Choice{{Value: "chest", Weight: 2}}))

	tables := newTestTables(t, mdb)

	enemies, err := tables.GetTable("enemies")
	jtest.RequireNil(t, err)
	assert.Equal(t, []api.Choice{{Value: "dragon", Weight: 3, CumulativeWeight: 3}}, enemies.Choices)

	_, err = tables.GetTable("extra")
	jtest.RequireNil(t, err)
	assert.Len(t, tables.GetTables(), 3)
}

func TestDraw(t *testing.T) {
	ctx := context.Background()
	mdb := NewMemDB()
	tables := newTestTables(t, mdb)

	for range 1000 {
		v, ok, err := tables.Draw(ctx, "enemies")
		jtest.RequireNil(t, err)
		require.True(t, ok)
		assert.Contains(t, []string{"goblin", "troll"}, v)
	}

	counts, err := tables.GetCounts(ctx, "enemies")
	jtest.RequireNil(t, err)
	assert.Equal(t, int64(1000), counts["goblin"]+counts["troll"])
	assert.Greater(t, counts["goblin"], counts["troll"])
}

func TestDrawEmpty(t *testing.T) {
	ctx := context.Background()
	tables := newTestTables(t, NewMemDB())

	v, ok, err := tables.Draw(ctx, "loot")
	jtest.RequireNil(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", v)

	counts, err := tables.GetCounts(ctx, "loot")
	jtest.RequireNil(t, err)
	assert.Empty(t, counts)
}

func TestUnknownTable(t *testing.T) {
	ctx := context.Background()
	tables := newTestTables(t, NewMemDB())

	_, _, err := tables.Draw(ctx, "missing")
	jtest.Assert(t, ErrTableNotFound, err)

	err = tables.SetWeight(ctx, "missing", "a", 1)
	jtest.Assert(t, ErrTableNotFound, err)

	err = tables.Clear(ctx, "missing")
	jtest.Assert(t, ErrTableNotFound, err)

	_, err = tables.GetTable("missing")
	jtest.Assert(t, ErrTableNotFound, err)

	_, err = tables.GetCounts(ctx, "missing")
	jtest.Assert(t, ErrTableNotFound, err)
}

func TestSetWeight(t *testing.T) {
	ctx := context.Background()
	mdb := NewMemDB()
	tables := newTestTables(t, mdb)

	jtest.RequireNil(t, tables.SetWeight(ctx, "enemies", "troll", 5))
	jtest.RequireNil(t, tables.SetWeight(ctx, "enemies", "dragon", 2))

	tbl, err := tables.GetTable("enemies")
	jtest.RequireNil(t, err)
	assert.Equal(t, api.Table{Name: "enemies", TotalWeight: 17, Choices: []api.Choice{
		{Value: "goblin", Weight: 10, CumulativeWeight: 10},
		{Value: "troll", Weight: 5, CumulativeWeight: 15},
		{Value: "dragon", Weight: 2, CumulativeWeight: 17},
	}}, tbl)

	stored, err := mdb.LoadTable(ctx, "enemies")
	jtest.RequireNil(t, err)
	assert.Len(t, stored, 3)

	t.Run("invalid weight", func(t *testing.T) {
		for _, w := range []int{0, -1} {
			err := tables.SetWeight(ctx, "enemies", "goblin", w)
			jtest.Assert(t, ErrInvalidWeight, err)
		}
		tbl, err := tables.GetTable("enemies")
		jtest.RequireNil(t, err)
		assert.Equal(t, 17, tbl.TotalWeight)
	})
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	mdb := NewMemDB()
	tables := newTestTables(t, mdb)

	_, _, err := tables.Draw(ctx, "enemies")
	jtest.RequireNil(t, err)

	jtest.RequireNil(t, tables.Clear(ctx, "enemies"))

	_, ok, err := tables.Draw(ctx, "enemies")
	jtest.RequireNil(t, err)
	assert.False(t, ok)

	counts, err := tables.GetCounts(ctx, "enemies")
	jtest.RequireNil(t, err)
	assert.Empty(t, counts)

	// Cleared tables stay cleared when reloaded.
	reloaded := newTestTables(t, mdb)
	tbl, err := reloaded.GetTable("enemies")
	jtest.RequireNil(t, err)
	assert.Equal(t, 0, tbl.TotalWeight)
}

type failingDB struct {
	*MemDB
}

var errFailed = errors.New("failed", j.C("ERR_0d5a9c3e7b2f8146"))

func (failingDB) IncrDraw(context.Context, string, string) error {
	return errFailed
}

func TestDrawStoreError(t *testing.T) {
	ctx := context.Background()
	tables := newTestTables(t, failingDB{MemDB: NewMemDB()})

	_, _, err := tables.Draw(ctx, "enemies")
	jtest.Assert(t, errFailed, err)
}

func TestMemDBNotStored(t *testing.T) {
	_, err := NewMemDB().LoadTable(context.Background(), "nope")
	jtest.Assert(t, db.ErrTableNotStored, err)
}
