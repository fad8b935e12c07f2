// Package idmap provides a mapping keyed by object identity.
package idmap

import "github.com/prometheus/client_golang/prometheus"

// StatsSource yields store statistics for metric collection.
type StatsSource interface {
	Stats() Stats
}

// Collector exposes store statistics as Prometheus metrics.
//
// Register one per map, typically with a distinct namespace:
//
//	reg.MustRegister(idmap.NewCollector(m, "myapp"))
type Collector struct {
	src StatsSource

	live       *prometheus.Desc
	buckets    *prometheus.Desc
	loadFactor *prometheus.Desc
	inserts    *prometheus.Desc
	updates    *prometheus.Desc
	removes    *prometheus.Desc
	reclaims   *prometheus.Desc
	purges     *prometheus.Desc
	rehashes   *prometheus.Desc
}

// NewCollector creates a collector reading from src. namespace may be
// empty.
func NewCollector(src StatsSource, namespace string) *Collector {
	fq := func(name string) string {
		return prometheus.BuildFQName(namespace, "idkeymap", name)
	}
	return &Collector{
		src:        src,
		live:       prometheus.NewDesc(fq("entries_live"), "Number of live entries.", nil, nil),
		buckets:    prometheus.NewDesc(fq("buckets"), "Current bucket count.", nil, nil),
		loadFactor: prometheus.NewDesc(fq("load_factor"), "Live entries per bucket.", nil, nil),
		inserts:    prometheus.NewDesc(fq("inserts_total"), "Entries registered.", nil, nil),
		updates:    prometheus.NewDesc(fq("updates_total"), "Values replaced in place.", nil, nil),
		removes:    prometheus.NewDesc(fq("removes_total"), "Explicit removals.", nil, nil),
		reclaims:   prometheus.NewDesc(fq("reclaims_total"), "Removals driven by destruction notifications.", nil, nil),
		purges:     prometheus.NewDesc(fq("purges_total"), "Removals by lazy purge before a read.", nil, nil),
		rehashes:   prometheus.NewDesc(fq("rehashes_total"), "Table rebuilds.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.live
	ch <- c.buckets
	ch <- c.loadFactor
	ch <- c.inserts
	ch <- c.updates
	ch <- c.removes
	ch <- c.reclaims
	ch <- c.purges
	ch <- c.rehashes
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.live, prometheus.GaugeValue, float64(s.Live))
	ch <- prometheus.MustNewConstMetric(c.buckets, prometheus.GaugeValue, float64(s.Buckets))
	ch <- prometheus.MustNewConstMetric(c.loadFactor, prometheus.GaugeValue, s.LoadFactor)
	ch <- prometheus.MustNewConstMetric(c.inserts, prometheus.CounterValue, float64(s.Inserts))
	ch <- prometheus.MustNewConstMetric(c.updates, prometheus.CounterValue, float64(s.Updates))
	ch <- prometheus.MustNewConstMetric(c.removes, prometheus.CounterValue, float64(s.Removes))
	ch <- prometheus.MustNewConstMetric(c.reclaims, prometheus.CounterValue, float64(s.Reclaims))
	ch <- prometheus.MustNewConstMetric(c.purges, prometheus.CounterValue, float64(s.Purges))
	ch <- prometheus.MustNewConstMetric(c.rehashes, prometheus.CounterValue, float64(s.Rehashes))
}
