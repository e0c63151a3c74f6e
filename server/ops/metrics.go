package ops

import "github.com/prometheus/client_golang/prometheus"

var (
	drawsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spawnpick",
		Subsystem: "tables",
		Name:      "draws_total",
		Help:      "Draws made from a table",
	}, []string{"table"})

	emptyDrawsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spawnpick",
		Subsystem: "tables",
		Name:      "empty_draws_total",
		Help:      "Draws from a table that had nothing to choose",
	}, []string{"table"})

	tableWeight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "spawnpick",
		Subsystem: "tables",
		Name:      "total_weight",
		Help:      "Sum of the weights in a table",
	}, []string{"table"})
)

func init() {
	prometheus.MustRegister(drawsTotal, emptyDrawsTotal, tableWeight)
}
