package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"studiodesk/pkg/clickhouse"
	"studiodesk/pkg/logger"
)

// StudioSnapshot holds business gauges read at scrape time
type StudioSnapshot struct {
	ActiveClients       int64
	InactiveClients     int64
	OutstandingPayments float64
}

// SnapshotFunc reads a StudioSnapshot from the studio database
type SnapshotFunc func(ctx context.Context) (StudioSnapshot, error)

// StudioCollector collects studio gauges from the database on every scrape
type StudioCollector struct {
	log        *logger.Logger
	snapshot   SnapshotFunc
	batchStats func() clickhouse.BatchWriterStats
	timeout    time.Duration

	clients      *prometheus.Desc
	outstanding  *prometheus.Desc
	usageBuffer  *prometheus.Desc
	usageFailure *prometheus.Desc
}

// NewStudioCollector creates a collector. batchStats may be nil when ClickHouse is disabled.
func NewStudioCollector(log *logger.Logger, snapshot SnapshotFunc, batchStats func() clickhouse.BatchWriterStats) *StudioCollector {
	return &StudioCollector{
		log:        log.With("component", "studio_collector"),
		snapshot:   snapshot,
		batchStats: batchStats,
		timeout:    5 * time.Second,

		clients: prometheus.NewDesc(
			"studiodesk_clients",
			"Number of clients by status",
			[]string{"status"}, nil,
		),
		outstanding: prometheus.NewDesc(
			"studiodesk_outstanding_payments",
			"Sum of pending order amounts",
			nil, nil,
		),
		usageBuffer: prometheus.NewDesc(
			"studiodesk_ai_usage_buffer_size",
			"AI usage rows waiting for the next ClickHouse flush",
			nil, nil,
		),
		usageFailure: prometheus.NewDesc(
			"studiodesk_ai_usage_flush_failures",
			"Failed ClickHouse flushes of AI usage rows",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *StudioCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.clients
	ch <- c.outstanding
	ch <- c.usageBuffer
	ch <- c.usageFailure
}

// Collect implements prometheus.Collector
func (c *StudioCollector) Collect(ch chan<- prometheus.Metric) {
	if c.snapshot != nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		snap, err := c.snapshot(ctx)
		if err != nil {
			c.log.Warnf("Failed to collect studio snapshot: %v", err)
		} else {
			ch <- prometheus.MustNewConstMetric(c.clients, prometheus.GaugeValue, float64(snap.ActiveClients), "active")
			ch <- prometheus.MustNewConstMetric(c.clients, prometheus.GaugeValue, float64(snap.InactiveClients), "inactive")
			ch <- prometheus.MustNewConstMetric(c.outstanding, prometheus.GaugeValue, snap.OutstandingPayments)
		}
	}

	if c.batchStats != nil {
		stats := c.batchStats()
		ch <- prometheus.MustNewConstMetric(c.usageBuffer, prometheus.GaugeValue, float64(stats.BufferSize))
		ch <- prometheus.MustNewConstMetric(c.usageFailure, prometheus.CounterValue, float64(stats.FlushFailures))
	}
}

// RegisterStudioCollector registers the collector with the default registry
func RegisterStudioCollector(collector *StudioCollector) error {
	return prometheus.Register(collector)
}
