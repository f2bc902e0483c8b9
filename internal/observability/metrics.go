package observability

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOperations counts record store operations by operation and key family.
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memeverse_store_operations_total",
		Help: "Total number of record store operations",
	}, []string{"operation", "family"})

	// StoreLatency records record store latency by operation.
	StoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "memeverse_store_latency_seconds",
		Help:    "Record store operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// StoreCorruptRecords counts stored values reset to their empty default.
	StoreCorruptRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memeverse_store_corrupt_records_total",
		Help: "Total number of stored values that failed to decode and were reset",
	}, []string{"family"})

	// StoreWriteConflicts counts versioned writes that lost to another writer.
	StoreWriteConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memeverse_store_write_conflicts_total",
		Help: "Total number of versioned writes rejected because of a concurrent update",
	}, []string{"family"})

	// RemoteStoreChanges counts change events received from other processes.
	RemoteStoreChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memeverse_remote_store_changes_total",
		Help: "Total number of store changes announced by other processes",
	}, []string{"family"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memeverse_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// CollaboratorFailures counts catalog and asset store failures.
	CollaboratorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memeverse_collaborator_failures_total",
		Help: "Total number of external collaborator failures",
	}, []string{"collaborator"})
)

// KeyFamily collapses per-meme keys such as comments-123 into one label value.
func KeyFamily(key string) string {
	if i := strings.IndexByte(key, '-'); i > 0 {
		return key[:i]
	}
	return key
}

// TrackStore returns a function that records the operation when called (e.g. defer).
func TrackStore(operation, key string) func() {
	start := time.Now()
	return func() {
		StoreOperations.WithLabelValues(operation, KeyFamily(key)).Inc()
		StoreLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
