// Package metrics defines collectors of hubsync client and store metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Keys for hubsync metrics.
const (
	Fail = "fail"
	Ok   = "ok"
)

// Collectors of hub client metrics.
var (
	HubRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hubsync_hub_request_total",
		Help: "Cumulative number of hub requests, by reply tag and outcome.",
	}, []string{"tag", "outcome"})
	HubReadBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hubsync_hub_read_bytes_total",
		Help: "Cumulative number of reply body bytes read from the hub.",
	})
	HubPagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hubsync_hub_pages_total",
		Help: "Cumulative number of feature pages fetched.",
	})
	HubFeaturesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hubsync_hub_features_total",
		Help: "Cumulative number of features fetched.",
	})
)

// Collectors of store metrics.
var (
	StorePartitionsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hubsync_store_partitions_created_total",
		Help: "Cumulative number of store partitions created.",
	})
	StoreRowsUpsertedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hubsync_store_rows_upserted_total",
		Help: "Cumulative number of feature rows upserted into partitions.",
	})
	StoreMigrationFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hubsync_store_migration_failures_total",
		Help: "Cumulative number of failed partition schema migrations.",
	})
)

// HubsyncCollectors lists collectors registered by hubsync binaries.
func HubsyncCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		HubRequestTotal,
		HubReadBytesTotal,
		HubPagesTotal,
		HubFeaturesTotal,
		StorePartitionsCreatedTotal,
		StoreRowsUpsertedTotal,
		StoreMigrationFailuresTotal,
	}
}
