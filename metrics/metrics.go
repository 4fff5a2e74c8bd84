package metrics

import (
	"sync"

	"github.com/0xERR0R/argus/config"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//nolint:gochecknoglobals
var (
	reg       = prometheus.NewRegistry()
	startOnce sync.Once
)

// RegisterMetric registers prometheus collector
func RegisterMetric(c prometheus.Collector) {
	_ = reg.Register(c)
}

// Start starts the collection and exposes the metrics on the router if enabled
func Start(router chi.Router, cfg config.Metrics) {
	if !cfg.Enable {
		return
	}

	StartCollection()

	router.Handle(cfg.Path, promhttp.InstrumentMetricHandler(reg,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
}

// StartCollection registers the runtime collectors and the event listeners once
func StartCollection() {
	startOnce.Do(func() {
		_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		_ = reg.Register(collectors.NewGoCollector())

		registerEventListeners()
	})
}
