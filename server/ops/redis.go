package ops

import (
	"context"
	"flag"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/jettison/log"
)

var (
	redisAddr      = flag.String("redis", "redis://127.0.0.1:6379", "Address of the redis server, empty to keep tables in memory")
	redisUser      = flag.String("redis_user", "", "User for authentication to the redis server, requires password")
	redisPassword  = flag.String("redis_password", "", "Password for authentication to the redis server")
	redisMaxActive = flag.Int("redis_max_active", 10, "Maximum number of open redis connections")
)

var ErrRedisNotConfigured = errors.New("redis not configured", j.C("ERR_7d0c35ab91e2f468"))

// NewRedisPool returns a pool to the configured redis server once it has
// answered a PING.
func NewRedisPool(ctx context.Context) (*redis.Pool, error) {
	if *redisAddr == "" {
		return nil, ErrRedisNotConfigured
	}

	do := []redis.DialOption{
		redis.DialConnectTimeout(5 * time.Second),
		redis.DialReadTimeout(5 * time.Second),
		redis.DialWriteTimeout(5 * time.Second),
	}
	if *redisUser != "" || *redisPassword != "" {
		if *redisUser == "" || *redisPassword == "" {
			return nil, errors.New("redis username/password misconfiguration")
		}
		do = append(do,
			redis.DialUsername(*redisUser),
			redis.DialPassword(*redisPassword),
		)
	}

	pool := &redis.Pool{
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialURLContext(ctx, *redisAddr, do...)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
		MaxIdle:     3,
		MaxActive:   *redisMaxActive,
		IdleTimeout: time.Minute,
		Wait:        true,
	}

	conn, err := pool.GetContext(ctx)
	if err != nil {
		_ = pool.Close()
		return nil, errors.Wrap(err, "dial redis", j.KV("address", *redisAddr))
	}
	defer conn.Close()
	if _, err := redis.DoContext(conn, ctx, "PING"); err != nil {
		_ = pool.Close()
		return nil, errors.Wrap(err, "ping redis", j.KV("address", *redisAddr))
	}

	log.Info(ctx, "redis table store configured", j.KV("address", *redisAddr))
	return pool, nil
}
