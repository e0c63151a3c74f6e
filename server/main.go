package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/julienschmidt/httprouter"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	jlog "github.com/luno/jettison/log"
	"github.com/luno/spawnpick/server/handlers"
	"github.com/luno/spawnpick/server/ops"
	"github.com/luno/spawnpick/server/ops/config"
)

var (
	seed      = flag.Int64("seed", 0, "seed for table draws, zero seeds from the clock")
	httpPort  = flag.Int("http_port", 80, "port for the table API")
	debugPort = flag.Int("debug_port", 8080, "port for metrics and readiness")
)

type state struct {
	tables *ops.Tables
}

func (s state) Tables() *ops.Tables {
	return s.tables
}

func main() {
	InitLogging()
	flag.Parse()
	config.MustLoadConfig()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	pool, err := ops.NewRedisPool(ctx)
	if err == nil {
		defer pool.Close()
	}
	tdb := selectTableDB(ctx, pool, err)

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	tables, err := ops.NewTables(ctx, config.GetConfig(), tdb, s)
	if err != nil {
		panic(err)
	}
	st := state{tables: tables}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		runWebServer(ctx, handlers.CreateRouter(ctx, st), *httpPort)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runWebServer(ctx, handlers.CreateDebugRouter(), *debugPort)
	}()

	wg.Wait()
}

// selectTableDB keeps tables in redis when the pool is available and in
// memory otherwise.
func selectTableDB(ctx context.Context, pool *redis.Pool, poolErr error) ops.TableDB {
	if errors.Is(poolErr, ops.ErrRedisNotConfigured) {
		jlog.Info(ctx, "redis not configured, keeping tables in memory")
		return ops.NewMemDB()
	} else if poolErr != nil {
		jlog.Error(ctx, errors.Wrap(poolErr, "failed to connect to redis, falling back to memory db"))
		return ops.NewMemDB()
	}
	return ops.NewRedisDB(pool)
}

func runWebServer(ctx context.Context, router *httprouter.Router, port int) {
	srv := &http.Server{
		BaseContext: func(listener net.Listener) context.Context { return ctx },
		Handler:     router,
		Addr:        ":" + strconv.Itoa(port),
	}
	go shutdownOnCancel(ctx, srv)
	jlog.Info(ctx, "server listening", j.KV("port", port))
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
	jlog.Info(ctx, "server terminated", j.KV("port", port))
}

func shutdownOnCancel(ctx context.Context, server *http.Server) {
	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	jlog.Info(ctx, "shutting down http server")
	_ = server.Shutdown(ctx)
}
