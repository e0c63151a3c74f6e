package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const basePath = "/spawnpick"

type Router interface {
	GET(path string, handle httprouter.Handle)
	POST(path string, handle httprouter.Handle)
}

type subRouter struct {
	r    Router
	base string
}

func SubRouter(r Router, basePath string) Router {
	return subRouter{r: r, base: basePath}
}

func (r subRouter) GET(path string, handle httprouter.Handle) {
	p := r.base + path
	r.r.GET(p, wrap(p, handle))
}

func (r subRouter) POST(path string, handle httprouter.Handle) {
	p := r.base + path
	r.r.POST(p, wrap(p, handle))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func wrap(path string, handle httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		t0 := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		handle(sw, r, p)
		httpHandle.WithLabelValues(path, strconv.Itoa(sw.status)).Observe(time.Since(t0).Seconds())
	}
}

func CreateRouter(ctx context.Context, d Deps) *httprouter.Router {
	r := httprouter.New()
	sp := SubRouter(r, basePath)

	sp.GET("/api/tables", GetTablesHandler(d))
	sp.GET("/api/tables/:table", GetTableHandler(d))
	sp.GET("/api/tables/:table/counts", GetCountsHandler(d))
	sp.POST("/api/tables/:table/draw", DrawHandler(d))
	sp.POST("/api/tables/:table/weight", SetWeightHandler(d))
	sp.POST("/api/tables/:table/clear", ClearHandler(d))

	createWebApp(ctx, sp)

	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case *webBuild == "", strings.HasPrefix(r.URL.Path, basePath+"/api/"):
			http.NotFound(w, r)
		case strings.HasPrefix(r.URL.Path, basePath+"/"):
			serveIndex(w, r, nil)
		default:
			http.Redirect(w, r, basePath+"/", http.StatusTemporaryRedirect)
		}
	})
	return r
}

func CreateDebugRouter() *httprouter.Router {
	r := httprouter.New()
	r.Handler(http.MethodGet, "/debug/metrics", promhttp.Handler())
	r.HandlerFunc(http.MethodGet, "/debug/ready", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
