package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/jettison/log"
	"github.com/luno/spawnpick/api"
	"github.com/luno/spawnpick/server/ops"
)

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	ctx := r.Context()
	b, err := json.Marshal(v)
	if err != nil {
		log.Error(ctx, errors.Wrap(err, "json marshal"))
		http.Error(w, "Internal Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(b)
	if err != nil {
		log.Error(ctx, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ops.ErrTableNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	case errors.Is(err, ops.ErrInvalidWeight):
		http.Error(w, "Bad Request", http.StatusBadRequest)
	default:
		log.Error(r.Context(), errors.Wrap(err, "", j.KV("path", r.URL.Path)))
		http.Error(w, "Internal Error", http.StatusInternalServerError)
	}
}

func GetTablesHandler(d Deps) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, r, api.GetTablesResponse{Tables: d.Tables().GetTables()})
	}
}

func GetTableHandler(d Deps) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		t, err := d.Tables().GetTable(p.ByName("table"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, api.GetTableResponse{Table: t})
	}
}

func DrawHandler(d Deps) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		name := p.ByName("table")
		v, ok, err := d.Tables().Draw(r.Context(), name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, api.DrawResponse{
			ID:    uuid.NewString(),
			Table: name,
			Value: v,
			Empty: !ok,
		})
	}
}

func SetWeightHandler(d Deps) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		if r.Header.Get("Content-Type") != "application/json" {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		b, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		var req api.SetWeightRequest
		if err := json.Unmarshal(b, &req); err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		name := p.ByName("table")
		err = d.Tables().SetWeight(r.Context(), name, req.Value, req.Weight)
		if err != nil {
			writeError(w, r, err)
			return
		}
		log.Info(r.Context(), "table weight set", j.MKV{
			"table": name, "value": req.Value, "weight": req.Weight,
		})
	}
}

func ClearHandler(d Deps) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		name := p.ByName("table")
		if err := d.Tables().Clear(r.Context(), name); err != nil {
			writeError(w, r, err)
			return
		}
		log.Info(r.Context(), "table cleared", j.KV("table", name))
	}
}

func GetCountsHandler(d Deps) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		name := p.ByName("table")
		counts, err := d.Tables().GetCounts(r.Context(), name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, api.GetCountsResponse{Table: name, Counts: counts})
	}
}
