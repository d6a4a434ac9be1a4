package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// poolStats is the subset of *pgxpool.Stat the collector reads.
type poolStats interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
	MaxConns() int32
	AcquireCount() int64
}

// PoolCollector exposes pgxpool statistics as Prometheus gauges.
type PoolCollector struct {
	stat func() poolStats

	acquired *prometheus.Desc
	idle     *prometheus.Desc
	total    *prometheus.Desc
	max      *prometheus.Desc
	acquires *prometheus.Desc
}

func NewPoolCollector(pool *pgxpool.Pool) *PoolCollector {
	return newPoolCollector(func() poolStats { return pool.Stat() })
}

func newPoolCollector(stat func() poolStats) *PoolCollector {
	return &PoolCollector{
		stat:     stat,
		acquired: prometheus.NewDesc("pgxpool_acquired_conns", "Connections currently checked out.", nil, nil),
		idle:     prometheus.NewDesc("pgxpool_idle_conns", "Idle connections in the pool.", nil, nil),
		total:    prometheus.NewDesc("pgxpool_total_conns", "Open connections in the pool.", nil, nil),
		max:      prometheus.NewDesc("pgxpool_max_conns", "Configured maximum pool size.", nil, nil),
		acquires: prometheus.NewDesc("pgxpool_acquires_total", "Successful connection acquisitions.", nil, nil),
	}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquired
	ch <- c.idle
	ch <- c.total
	ch <- c.max
	ch <- c.acquires
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stat()
	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(s.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(s.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.max, prometheus.GaugeValue, float64(s.MaxConns()))
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(s.AcquireCount()))
}
