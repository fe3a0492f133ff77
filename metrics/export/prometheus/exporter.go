package prometheus

import (
	"net/http"

	"github.com/MrEthical07/sceneauth"
	"github.com/MrEthical07/sceneauth/metrics/export/internaldefs"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metricsSource interface {
	MetricsSnapshot() sceneauth.MetricsSnapshot
	AuditDropped() uint64
}

// Collector adapts Engine metrics to a [prom.Collector]. Every scrape reads
// one snapshot; nothing is cached between scrapes.
type Collector struct {
	source       metricsSource
	counters     []counterDesc
	histograms   []histogramDesc
	auditDropped *prom.Desc
}

type counterDesc struct {
	id   sceneauth.MetricID
	desc *prom.Desc
}

type histogramDesc struct {
	id   sceneauth.MetricID
	desc *prom.Desc
}

// NewCollector creates a collector that reads from the given [sceneauth.Engine].
func NewCollector(engine *sceneauth.Engine) *Collector {
	return NewCollectorFromSource(engine)
}

// NewCollectorFromSource creates a collector from any snapshot source.
func NewCollectorFromSource(source metricsSource) *Collector {
	c := &Collector{
		source:       source,
		counters:     make([]counterDesc, 0, len(internaldefs.CounterDefs)),
		histograms:   make([]histogramDesc, 0, len(internaldefs.HistogramDefs)),
		auditDropped: prom.NewDesc(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, nil, nil),
	}
	for _, def := range internaldefs.CounterDefs {
		c.counters = append(c.counters, counterDesc{id: def.ID, desc: prom.NewDesc(def.Name, def.Help, nil, nil)})
	}
	for _, def := range internaldefs.HistogramDefs {
		c.histograms = append(c.histograms, histogramDesc{id: def.ID, desc: prom.NewDesc(def.Name, def.Help, nil, nil)})
	}
	return c
}

// Describe implements [prom.Collector].
func (c *Collector) Describe(ch chan<- *prom.Desc) {
	for _, d := range c.counters {
		ch <- d.desc
	}
	for _, h := range c.histograms {
		ch <- h.desc
	}
	ch <- c.auditDropped
}

// Collect implements [prom.Collector].
func (c *Collector) Collect(ch chan<- prom.Metric) {
	if c == nil || c.source == nil {
		return
	}
	snapshot := c.source.MetricsSnapshot()

	for _, d := range c.counters {
		ch <- prom.MustNewConstMetric(d.desc, prom.CounterValue, float64(snapshot.Counters[d.id]))
	}

	for _, h := range c.histograms {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snapshot.Histograms[h.id]))
		buckets := make(map[float64]uint64, len(internaldefs.HistogramUpperBounds))
		for i, le := range internaldefs.HistogramUpperBounds {
			buckets[le] = cumulative[i]
		}
		// Sum is not tracked by the lock-free histogram.
		ch <- prom.MustNewConstHistogram(h.desc, cumulative[len(cumulative)-1], 0, buckets)
	}

	ch <- prom.MustNewConstMetric(c.auditDropped, prom.CounterValue, float64(c.source.AuditDropped()))
}

// Exporter owns a private registry holding one [Collector].
type Exporter struct {
	registry  *prom.Registry
	collector *Collector
}

// NewExporter registers a collector for engine on a fresh registry.
func NewExporter(engine *sceneauth.Engine) (*Exporter, error) {
	return NewExporterFromSource(engine)
}

// NewExporterFromSource registers a collector for source on a fresh registry.
func NewExporterFromSource(source metricsSource) (*Exporter, error) {
	registry := prom.NewRegistry()
	collector := NewCollectorFromSource(source)
	if err := registry.Register(collector); err != nil {
		return nil, err
	}
	return &Exporter{registry: registry, collector: collector}, nil
}

// Registry returns the registry so callers can add their own collectors.
func (e *Exporter) Registry() *prom.Registry {
	return e.registry
}

// Handler serves the registry in Prometheus exposition format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
