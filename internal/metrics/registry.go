// Package metrics registers the fixed, namespaced set of Prometheus metrics
// named in spec §6: gauges and counters labeled by {stream, format},
// {type, stream, format, date}, {stream}, {mount} or {type} as applicable.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "logcove"

// Registry holds every metric the ingestion path, the query path, and the
// telemetry sampler publish into. One Registry is constructed per process
// and threaded through the handlers/sampler that need it — never accessed
// through a package-level var (spec §9 design note on global singletons).
type Registry struct {
	EventsIngested     *prometheus.CounterVec
	EventsIngestedSize *prometheus.CounterVec
	StorageSize        *prometheus.GaugeVec
	EventsDeleted      *prometheus.CounterVec

	LifetimeEventsIngested *prometheus.CounterVec
	LifetimeEventsDeleted  *prometheus.CounterVec

	EventsIngestedDate *prometheus.CounterVec
	EventsDeletedDate  *prometheus.CounterVec

	StagingFiles *prometheus.GaugeVec

	QueryExecuteTime *prometheus.HistogramVec
	QueryCacheHit    *prometheus.CounterVec

	AlertsStates *prometheus.GaugeVec

	TotalDisk     *prometheus.GaugeVec
	UsedDisk      *prometheus.GaugeVec
	AvailableDisk *prometheus.GaugeVec
	Memory        *prometheus.GaugeVec
}

// New registers every metric against reg and returns the handles used to
// record observations. Pass prometheus.DefaultRegisterer in production and
// a fresh prometheus.NewRegistry() in tests to avoid duplicate-registration
// panics across test cases.
func New(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	streamFormat := []string{"stream", "format"}
	typeStreamFormatDate := []string{"type", "stream", "format", "date"}

	return &Registry{
		EventsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_ingested",
			Help:      "Total number of events ingested.",
		}, streamFormat),
		EventsIngestedSize: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_ingested_size",
			Help:      "Total size in bytes of events ingested.",
		}, streamFormat),
		StorageSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "storage_size",
			Help:      "Current size in bytes of a stream's persisted data.",
		}, streamFormat),
		EventsDeleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_deleted",
			Help:      "Total number of events deleted.",
		}, streamFormat),

		LifetimeEventsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifetime_events_ingested",
			Help:      "Lifetime count of events ingested, never reset by retention.",
		}, streamFormat),
		LifetimeEventsDeleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifetime_events_deleted",
			Help:      "Lifetime count of events deleted, never reset by retention.",
		}, streamFormat),

		EventsIngestedDate: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_ingested_date",
			Help:      "Events ingested, labeled by calendar date.",
		}, typeStreamFormatDate),
		EventsDeletedDate: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_deleted_date",
			Help:      "Events deleted, labeled by calendar date.",
		}, typeStreamFormatDate),

		StagingFiles: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "staging_files",
			Help:      "Number of files currently staged awaiting upload.",
		}, streamFormat),

		QueryExecuteTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_execute_time",
			Help:      "Query execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stream"}),
		QueryCacheHit: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_hit",
			Help:      "Total number of query plan cache hits.",
		}, []string{"stream"}),

		AlertsStates: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alerts_states",
			Help:      "Current state of configured alert rules.",
		}, []string{"stream"}),

		TotalDisk: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_disk",
			Help:      "Total disk capacity in bytes for the mount backing the staging directory.",
		}, []string{"mount"}),
		UsedDisk: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "used_disk",
			Help:      "Used disk bytes for the mount backing the staging directory.",
		}, []string{"mount"}),
		AvailableDisk: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "available_disk",
			Help:      "Available disk bytes for the mount backing the staging directory.",
		}, []string{"mount"}),
		Memory: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory",
			Help:      "Host memory usage in bytes, labeled by type (used, available, swap_used, swap_total).",
		}, []string{"type"}),
	}
}
