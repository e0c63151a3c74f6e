package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/jettison/log"
	"github.com/luno/spawnpick"
	"github.com/luno/spawnpick/api"
	"github.com/schollz/progressbar/v3"
)

var (
	baseURL = flag.String("url", "http://localhost/spawnpick", "base URL of the spawnpick server")
	table   = flag.String("table", "", "table to draw from")
	draws   = flag.Int("draws", 10_000, "number of draws to make")
	workers = flag.Int("workers", 5, "concurrent drawing clients")
)

func main() {
	flag.Parse()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if *table == "" {
		log.Error(ctx, errors.New("no table specified"))
		os.Exit(1)
	}

	c := spawnpick.NewClient(spawnpick.WithBaseURL(*baseURL))

	tbl, err := c.GetTable(ctx, *table)
	if err != nil {
		log.Error(ctx, errors.Wrap(err, "get table", j.KV("table", *table)))
		os.Exit(1)
	}

	counts, err := simulateDraws(ctx, c, *table, *draws, *workers)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error(ctx, err)
	}
	printSummary(tbl, counts)
}

func simulateDraws(ctx context.Context, c *spawnpick.Client, name string, n, workers int) (map[string]int, error) {
	bar := progressbar.Default(int64(n), "drawing "+name)
	defer func() { _ = bar.Finish() }()

	jobs := make(chan struct{})
	go func() {
		defer close(jobs)
		for range n {
			select {
			case jobs <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var (
		mu       sync.Mutex
		counts   = make(map[string]int)
		firstErr error
		wg       sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				v, ok, err := c.Draw(ctx, name)
				mu.Lock()
				if err != nil && firstErr == nil {
					firstErr = err
				} else if ok {
					counts[v]++
				}
				mu.Unlock()
				_ = bar.Add(1)
			}
		}()
	}
	wg.Wait()
	return counts, firstErr
}

// expectedShares returns the fraction of draws each value should get.
func expectedShares(tbl api.Table) map[string]float64 {
	ret := make(map[string]float64)
	if tbl.TotalWeight == 0 {
		return ret
	}
	for _, c := range tbl.Choices {
		ret[c.Value] += float64(c.Weight) / float64(tbl.TotalWeight)
	}
	return ret
}

func printSummary(tbl api.Table, counts map[string]int) {
	var total int
	for _, n := range counts {
		total += n
	}
	exp := expectedShares(tbl)

	values := make([]string, 0, len(exp))
	for v := range exp {
		values = append(values, v)
	}
	sort.Strings(values)

	fmt.Printf("\n%-20s %10s %10s %10s\n", "value", "draws", "observed", "expected")
	for _, v := range values {
		var obs float64
		if total > 0 {
			obs = float64(counts[v]) / float64(total)
		}
		fmt.Printf("%-20s %10d %9.2f%% %9.2f%%\n", v, counts[v], 100*obs, 100*exp[v])
	}
}
