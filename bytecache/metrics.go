package bytecache

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes cache statistics as prometheus metrics.
type Collector struct {
	cache *Cache

	entries   *prometheus.Desc
	cost      *prometheus.Desc
	capacity  *prometheus.Desc
	hits      *prometheus.Desc
	misses    *prometheus.Desc
	evictions *prometheus.Desc
}

// NewCollector returns a prometheus.Collector reading from c. Metric names
// are prefixed with namespace.
func NewCollector(namespace string, c *Cache) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "bytecache", name), help, nil, nil)
	}
	return &Collector{
		cache:     c,
		entries:   desc("entries", "Number of resident blobs."),
		cost:      desc("cost_units", "Sum of resident blob costs."),
		capacity:  desc("capacity_units", "Configured cost capacity."),
		hits:      desc("hits_total", "Lookups that found a blob."),
		misses:    desc("misses_total", "Lookups that found nothing."),
		evictions: desc("evictions_total", "Blobs evicted to stay within capacity."),
	}
}

// Describe implements prometheus.Collector.
func (m *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.entries
	ch <- m.cost
	ch <- m.capacity
	ch <- m.hits
	ch <- m.misses
	ch <- m.evictions
}

// Collect implements prometheus.Collector.
func (m *Collector) Collect(ch chan<- prometheus.Metric) {
	s := m.cache.Stats()
	ch <- prometheus.MustNewConstMetric(m.entries, prometheus.GaugeValue, float64(s.Entries))
	ch <- prometheus.MustNewConstMetric(m.cost, prometheus.GaugeValue, float64(s.TotalCost))
	ch <- prometheus.MustNewConstMetric(m.capacity, prometheus.GaugeValue, float64(s.Capacity))
	ch <- prometheus.MustNewConstMetric(m.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(m.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(m.evictions, prometheus.CounterValue, float64(s.Evictions))
}
