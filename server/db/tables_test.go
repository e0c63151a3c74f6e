package db

import (
	"context"
	"testing"

	"github.com/gomodule/redigo/redis"
	"github.com/luno/jettison/jtest"
	"github.com/luno/spawnpick/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableFromKey(t *testing.T) {
	name, ok := tableFromKey(tableKey("enemies"))
	require.True(t, ok)
	assert.Equal(t, "enemies", name)

	_, ok = tableFromKey(drawsKey("enemies"))
	assert.False(t, ok)
}

func dialLocal(t *testing.T) redis.Conn {
	conn, err := redis.DialURLContext(context.Background(), "redis://127.0.0.1:6379/15")
	if err != nil {
		t.Skip("no local redis: ", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestAgainstLocal(t *testing.T) {
	ctx := context.Background()
	conn := dialLocal(t)

	name := "test-enemies"
	t.Cleanup(func() {
		_, _ = conn.Do("DEL", tableKey(name), drawsKey(name))
	})

	_, err := LoadTable(ctx, conn, name)
	jtest.Assert(t, ErrTableNotStored, err)

	err = StoreTable(ctx, conn, name, []api.Choice{
		{Value: "goblin", Weight: 10, CumulativeWeight: 10},
		{Value: "troll", Weight: 1, CumulativeWeight: 11},
	})
	jtest.RequireNil(t, err)

	cs, err := LoadTable(ctx, conn, name)
	jtest.RequireNil(t, err)
	assert.Equal(t, []api.Choice{
		{Value: "goblin", Weight: 10},
		{Value: "troll", Weight: 1},
	}, cs)

	names, err := ListTables(ctx, conn)
	jtest.RequireNil(t, err)
	assert.Contains(t, names, name)

	jtest.RequireNil(t, IncrDraw(ctx, conn, name, "goblin"))
	jtest.RequireNil(t, IncrDraw(ctx, conn, name, "goblin"))
	jtest.RequireNil(t, IncrDraw(ctx, conn, name, "troll"))

	counts, err := GetDrawCounts(ctx, conn, name)
	jtest.RequireNil(t, err)
	assert.Equal(t, map[string]int64{"goblin": 2, "troll": 1}, counts)

	jtest.RequireNil(t, ResetDrawCounts(ctx, conn, name))
	counts, err = GetDrawCounts(ctx, conn, name)
	jtest.RequireNil(t, err)
	assert.Empty(t, counts)
}
