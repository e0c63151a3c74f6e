package db

import (
	"context"
	"strings"

	"github.com/gomodule/redigo/redis"
	"github.com/luno/jettison/errors"
)

const (
	keyPrefix   = "spawnpick."
	tablePrefix = keyPrefix + "table."
	drawsPrefix = keyPrefix + "draws."
)

func tableKey(name string) string {
	return tablePrefix + name
}

func drawsKey(name string) string {
	return drawsPrefix + name
}

func tableFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, tablePrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, tablePrefix), true
}

func scanSomeKeys(ctx context.Context, conn redis.Conn, cursor int64, match string) (int64, []string, error) {
	resp, err := redis.Values(redis.DoContext(conn, ctx, "SCAN", cursor, "MATCH", match))
	if err != nil {
		return 0, nil, errors.Wrap(err, "")
	}
	next, err := redis.Int64(resp[0], nil)
	if err != nil {
		return 0, nil, errors.Wrap(err, "")
	}
	keys, err := redis.Strings(resp[1], nil)
	return next, keys, errors.Wrap(err, "")
}
