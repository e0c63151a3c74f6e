package ops

import (
	"context"

	"github.com/gomodule/redigo/redis"
	"github.com/luno/spawnpick/api"
	"github.com/luno/spawnpick/server/db"
)

// TableDB persists table state and draw counts.
type TableDB interface {
	ListTables(ctx context.Context) ([]string, error)
	// LoadTable returns db.ErrTableNotStored when the table has no saved state.
	LoadTable(ctx context.Context, name string) ([]api.Choice, error)
	StoreTable(ctx context.Context, name string, choices []api.Choice) error

	IncrDraw(ctx context.Context, name, value string) error
	GetDrawCounts(ctx context.Context, name string) (map[string]int64, error)
	ResetDrawCounts(ctx context.Context, name string) error
}

type RedisDB struct {
	pool *redis.Pool
}

func NewRedisDB(pool *redis.Pool) *RedisDB {
	return &RedisDB{pool: pool}
}

func (r *RedisDB) withConn(ctx context.Context, f func(redis.Conn) error) error {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return f(conn)
}

func (r *RedisDB) ListTables(ctx context.Context) ([]string, error) {
	var ret []string
	err := r.withConn(ctx, func(conn redis.Conn) error {
		var err error
		ret, err = db.ListTables(ctx, conn)
		return err
	})
	return ret, err
}

func (r *RedisDB) LoadTable(ctx context.Context, name string) ([]api.Choice, error) {
	var ret []api.Choice
	err := r.withConn(ctx, func(conn redis.Conn) error {
		var err error
		ret, err = db.LoadTable(ctx, conn, name)
		return err
	})
	return ret, err
}

func (r *RedisDB) StoreTable(ctx context.Context, name string, choices []api.Choice) error {
	return r.withConn(ctx, func(conn redis.Conn) error {
		return db.StoreTable(ctx, conn, name, choices)
	})
}

func (r *RedisDB) IncrDraw(ctx context.Context, name, value string) error {
	return r.withConn(ctx, func(conn redis.Conn) error {
		return db.IncrDraw(ctx, conn, name, value)
	})
}

func (r *RedisDB) GetDrawCounts(ctx context.Context, name string) (map[string]int64, error) {
	var ret map[string]int64
	err := r.withConn(ctx, func(conn redis.Conn) error {
		var err error
		ret, err = db.GetDrawCounts(ctx, conn, name)
		return err
	})
	return ret, err
}

func (r *RedisDB) ResetDrawCounts(ctx context.Context, name string) error {
	return r.withConn(ctx, func(conn redis.Conn) error {
		return db.ResetDrawCounts(ctx, conn, name)
	})
}

var _ TableDB = (*RedisDB)(nil)
