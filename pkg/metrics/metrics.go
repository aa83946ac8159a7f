// Package metrics keeps operational counters and gauges in an embedded
// time-series store under the application workdir.
package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

const (
	APIRequestTotal        = "api_request_total"
	SaleCreatedTotal       = "sale_created_total"
	SaleAmountCentsTotal   = "sale_amount_cents_total"
	SaleStockRejectedTotal = "sale_stock_rejected_total"
	SystemCPUUse           = "system_cpuuse"
	SystemMemUse           = "system_memuse"
)

var (
	mu       sync.Mutex
	store    tstorage.Storage
	counters = map[string]int64{}
)

// InitMetrics opens the metrics store under workdir. Must be called before
// any counter or gauge is written.
func InitMetrics(workdir string) error {
	mu.Lock()
	defer mu.Unlock()
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithPartitionDuration(24*time.Hour),
	)
	if err != nil {
		return err
	}
	store = s
	return nil
}

func insert(name string, value float64) {
	if store == nil {
		return
	}
	_ = store.InsertRows([]tstorage.Row{
		{
			Metric:    name,
			DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: value},
		},
	})
}

// IncrCounter adds delta to a monotonically increasing counter.
func IncrCounter(name string, delta int64) {
	mu.Lock()
	counters[name] += delta
	val := counters[name]
	mu.Unlock()
	insert(name, float64(val))
}

// SetGauge records the current value of a gauge.
func SetGauge(name string, value int64) {
	insert(name, float64(value))
}

// CounterValue returns the in-process value of a counter.
func CounterValue(name string) int64 {
	mu.Lock()
	defer mu.Unlock()
	return counters[name]
}

// Select returns data points for a metric within [start, end].
func Select(name string, start, end int64) ([]*tstorage.DataPoint, error) {
	mu.Lock()
	defer mu.Unlock()
	if store == nil {
		return nil, nil
	}
	return store.Select(name, nil, start, end)
}

// Close flushes and closes the metrics store.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if store == nil {
		return nil
	}
	err := store.Close()
	store = nil
	return err
}
