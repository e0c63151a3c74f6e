package db

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/gomodule/redigo/redis"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/spawnpick/api"
)

var ErrTableNotStored = errors.New("table not stored", j.C("ERR_c51e8a07f2d94b36"))

type storedTable struct {
	Choices []storedChoice `json:"choices"`
}

type storedChoice struct {
	Value  string `json:"value"`
	Weight int    `json:"weight"`
}

// StoreTable replaces the stored choices of the table.
func StoreTable(ctx context.Context, conn redis.Conn, name string, choices []api.Choice) error {
	st := storedTable{Choices: make([]storedChoice, 0, len(choices))}
	for _, c := range choices {
		st.Choices = append(st.Choices, storedChoice{Value: c.Value, Weight: c.Weight})
	}
	b, err := json.Marshal(st)
	if err != nil {
		return errors.Wrap(err, "")
	}
	_, err = redis.DoContext(conn, ctx, "SET", tableKey(name), b)
	return errors.Wrap(err, "", j.KV("table", name))
}

// LoadTable returns the stored choices in insertion order, cumulative
// weights are left for the caller to compute.
func LoadTable(ctx context.Context, conn redis.Conn, name string) ([]api.Choice, error) {
	b, err := redis.Bytes(redis.DoContext(conn, ctx, "GET", tableKey(name)))
	if errors.Is(err, redis.ErrNil) {
		return nil, errors.Wrap(ErrTableNotStored, "", j.KV("table", name))
	} else if err != nil {
		return nil, errors.Wrap(err, "")
	}
	var st storedTable
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, errors.Wrap(err, "invalid stored table", j.KV("table", name))
	}
	ret := make([]api.Choice, 0, len(st.Choices))
	for _, c := range st.Choices {
		ret = append(ret, api.Choice{Value: c.Value, Weight: c.Weight})
	}
	return ret, nil
}

// ListTables returns the names of all stored tables, sorted.
func ListTables(ctx context.Context, conn redis.Conn) ([]string, error) {
	seen := make(map[string]bool)
	var cursor int64
	for {
		next, keys, err := scanSomeKeys(ctx, conn, cursor, tablePrefix+"*")
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			if name, ok := tableFromKey(k); ok {
				seen[name] = true
			}
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	ret := make([]string, 0, len(seen))
	for name := range seen {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret, nil
}

func IncrDraw(ctx context.Context, conn redis.Conn, name, value string) error {
	_, err := redis.DoContext(conn, ctx, "HINCRBY", drawsKey(name), value, 1)
	return errors.Wrap(err, "")
}

func GetDrawCounts(ctx context.Context, conn redis.Conn, name string) (map[string]int64, error) {
	m, err := redis.Int64Map(redis.DoContext(conn, ctx, "HGETALL", drawsKey(name)))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return m, nil
}

func ResetDrawCounts(ctx context.Context, conn redis.Conn, name string) error {
	_, err := redis.DoContext(conn, ctx, "DEL", drawsKey(name))
	return errors.Wrap(err, "")
}
