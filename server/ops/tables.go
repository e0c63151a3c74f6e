package ops

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/jettison/log"
	"github.com/luno/spawnpick"
	"github.com/luno/spawnpick/api"
	"github.com/luno/spawnpick/server/ops/config"
)

var (
	ErrTableNotFound = errors.New("table not found", j.C("ERR_4f8a2b61d0c7e953"))
	ErrInvalidWeight = errors.New("weight must be positive", j.C("ERR_e0b39d5c82a1f647"))
)

// Tables holds the named spawn tables served by the API.
// Every selector shares one random generator, guarded by mu.
type Tables struct {
	db TableDB

	mu     sync.Mutex
	rnd    *rand.Rand
	tables map[string]*spawnpick.Selector[string]
}

// NewTables loads every table known to the database and adds the
// configured tables that have no stored state yet.
func NewTables(ctx context.Context, cfg config.Config, tdb TableDB, seed int64) (*Tables, error) {
	t := &Tables{
		db:     tdb,
		rnd:    rand.New(rand.NewSource(seed)),
		tables: make(map[string]*spawnpick.Selector[string]),
	}

	stored, err := tdb.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range stored {
		cs, err := tdb.LoadTable(ctx, name)
		if err != nil {
			return nil, err
		}
		sel := t.newSelector()
		for _, c := range cs {
			sel.AddChoice(c.Value, c.Weight)
		}
		t.tables[name] = sel
		tableWeight.WithLabelValues(name).Set(float64(sel.TotalWeight()))
	}

	for _, tbl := range cfg.Tables {
		if _, ok := t.tables[tbl.Name]; ok {
			continue
		}
		sel := t.newSelector()
		for _, c := range tbl.Choices {
			sel.AddChoice(c.Value, c.Weight)
		}
		t.tables[tbl.Name] = sel
		if err := t.store(ctx, tbl.Name, sel); err != nil {
			return nil, err
		}
	}

	log.Info(ctx, "loaded spawn tables", j.MKV{
		"stored":     len(stored),
		"configured": len(cfg.Tables),
		"total":      len(t.tables),
	})
	return t, nil
}

func (t *Tables) newSelector() *spawnpick.Selector[string] {
	return spawnpick.NewSelector[string](spawnpick.WithRand(t.rnd))
}

func (t *Tables) store(ctx context.Context, name string, sel *spawnpick.Selector[string]) error {
	tableWeight.WithLabelValues(name).Set(float64(sel.TotalWeight()))
	return t.db.StoreTable(ctx, name, toAPIChoices(sel.Choices()))
}

func (t *Tables) get(name string) (*spawnpick.Selector[string], error) {
	sel, ok := t.tables[name]
	if !ok {
		return nil, errors.Wrap(ErrTableNotFound, "", j.KV("table", name))
	}
	return sel, nil
}

// Draw picks a value from the named table. ok is false when the table
// has no choices.
func (t *Tables) Draw(ctx context.Context, name string) (string, bool, error) {
	t.mu.Lock()
	sel, err := t.get(name)
	if err != nil {
		t.mu.Unlock()
		return "", false, err
	}
	v, ok := sel.TryChoose()
	t.mu.Unlock()

	if !ok {
		emptyDrawsTotal.WithLabelValues(name).Inc()
		return "", false, nil
	}
	drawsTotal.WithLabelValues(name).Inc()
	if err := t.db.IncrDraw(ctx, name, v); err != nil {
		return "", false, err
	}
	return v, true, nil
}

// SetWeight changes the weight of value in the named table, adding it if
// the table doesn't have it.
func (t *Tables) SetWeight(ctx context.Context, name, value string, weight int) error {
	if weight <= 0 {
		return errors.Wrap(ErrInvalidWeight, "", j.MKV{"table": name, "weight": weight})
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	sel, err := t.get(name)
	if err != nil {
		return err
	}
	if sel.Has(value) {
		sel.ChangeWeight(value, weight)
	} else {
		sel.AddChoice(value, weight)
	}
	return t.store(ctx, name, sel)
}

// Clear removes every choice from the named table and resets its draw counts.
func (t *Tables) Clear(ctx context.Context, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	sel, err := t.get(name)
	if err != nil {
		return err
	}
	sel.Clear()
	if err := t.store(ctx, name, sel); err != nil {
		return err
	}
	return t.db.ResetDrawCounts(ctx, name)
}

func (t *Tables) GetTable(name string) (api.Table, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sel, err := t.get(name)
	if err != nil {
		return api.Table{}, err
	}
	return toAPITable(name, sel), nil
}

// GetTables returns every table sorted by name.
func (t *Tables) GetTables() []api.Table {
	t.mu.Lock()
	defer t.mu.Unlock()

	ret := make([]api.Table, 0, len(t.tables))
	for name, sel := range t.tables {
		ret = append(ret, toAPITable(name, sel))
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Name < ret[j].Name
	})
	return ret
}

func (t *Tables) GetCounts(ctx context.Context, name string) (map[string]int64, error) {
	t.mu.Lock()
	_, err := t.get(name)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return t.db.GetDrawCounts(ctx, name)
}

func toAPITable(name string, sel *spawnpick.Selector[string]) api.Table {
	return api.Table{
		Name:        name,
		TotalWeight: sel.TotalWeight(),
		Choices:     toAPIChoices(sel.Choices()),
	}
}

func toAPIChoices(cs []spawnpick.Choice[string]) []api.Choice {
	ret := make([]api.Choice, 0, len(cs))
	for _, c := range cs {
		ret = append(ret, api.Choice{
			Value:            c.Value,
			Weight:           c.Weight,
			CumulativeWeight: c.CumulativeWeight,
		})
	}
	return ret
}
