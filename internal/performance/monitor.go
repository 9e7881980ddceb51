/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package performance samples request, cache and websocket counters into time series
// snapshots and raises threshold alerts.
package performance

import (
	"fmt"
	"runtime"
	"runtime/metrics"
	"sync"
	"time"

	"github.com/procurehub/procurement-server/internal/system/log"
	"github.com/procurehub/procurement-server/internal/system/observer"
)

const loggerComponentName = "PerformanceMonitor"

const cpuSecondsMetric = "/cpu/classes/total:cpu-seconds"

// Monitor accumulates counters between ticks and keeps the snapshot and alert history.
type Monitor struct {
	cfg Config

	// mu guards the current interval's accumulation state.
	mu            sync.Mutex
	responseTimes []time.Duration
	wsConnections int
	wsMessages    int64
	wsErrors      int64
	cache         CacheSnapshot
	custom        map[string]float64
	cacheSource    func() CacheSnapshot

	historyMu sync.RWMutex
	history   []Metrics
	alerts    []Alert

	// tickMu serializes ticks so CPU deltas and throughput are computed between consecutive samples.
	tickMu      sync.Mutex
	lastTick    time.Time
	lastCPU     float64
	lastSample  time.Time
	sampleStats func() SystemMetrics

	metricsObservers observer.Observers[Metrics]
	alertObservers   observer.Observers[Alert]
	errorObservers   observer.Observers[error]

	startTime time.Time
	now       func() time.Time
	stopCh    chan struct{}
	stopOnce  sync.Once
	logger    *log.Logger
}

// NewMonitor creates a monitor and starts its sampling ticker.
func NewMonitor(cfg Config) *Monitor {
	m := newMonitor(cfg, time.Now)
	go m.startSampling()
	return m
}

func newMonitor(cfg Config, now func() time.Time) *Monitor {
	cfg.applyDefaults()
	m := &Monitor{
		cfg:       cfg,
		custom:    make(map[string]float64),
		startTime: now(),
		now:       now,
		stopCh:    make(chan struct{}),
		logger:    log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)),
	}
	m.lastSample = m.startTime
	m.lastTick = m.startTime
	m.sampleStats = m.sampleRuntime
	return m
}

// RecordRequest adds a request duration to the current interval.
func (m *Monitor) RecordRequest(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responseTimes = append(m.responseTimes, d)
}

// RecordWebSocketConnection sets the current number of open websocket connections.
func (m *Monitor) RecordWebSocketConnection(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wsConnections = count
}

// RecordWebSocketMessage counts one websocket message in the current interval.
func (m *Monitor) RecordWebSocketMessage() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wsMessages++
}

// RecordWebSocketError counts one websocket error in the current interval.
func (m *Monitor) RecordWebSocketError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wsErrors++
}

// RecordCacheMetrics replaces the cache state reported with the next snapshot.
func (m *Monitor) RecordCacheMetrics(hitRate, missRate float64, size, compressionSavings int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = CacheSnapshot{
		HitRate:            hitRate,
		MissRate:           missRate,
		Size:               size,
		CompressionSavings: compressionSavings,
	}
}

// RecordCustomMetric sets a named value carried in every following snapshot.
func (m *Monitor) RecordCustomMetric(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.custom[name] = value
}

// RegisterCacheSource installs a function polled at the start of every tick.
func (m *Monitor) RegisterCacheSource(source func() CacheSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheSource = source
}

// OnMetrics registers a callback for every recorded snapshot.
func (m *Monitor) OnMetrics(callback func(Metrics)) func() {
	return m.metricsObservers.Register(callback)
}

// OnAlert registers a callback for every raised alert.
func (m *Monitor) OnAlert(callback func(Alert)) func() {
	return m.alertObservers.Register(callback)
}

// OnError registers a callback for snapshot collection failures.
func (m *Monitor) OnError(callback func(error)) func() {
	return m.errorObservers.Register(callback)
}

// CollectNow runs a sampling tick immediately and returns the recorded snapshot.
func (m *Monitor) CollectNow() (Metrics, error) {
	return m.tick()
}

func (m *Monitor) startSampling() {
	ticker := time.NewTicker(m.cfg.SamplingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = m.tick()
		case <-m.stopCh:
			return
		}
	}
}

// tick builds a snapshot, stores it, prunes old history and evaluates the alert rules.
func (m *Monitor) tick() (Metrics, error) {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()

	snapshot, err := m.collect()
	if err != nil {
		m.logger.Error("Failed to collect performance metrics", log.Error(err))
		m.errorObservers.Emit(err)
		return Metrics{}, err
	}

	alerts := m.evaluateAlerts(snapshot)

	m.historyMu.Lock()
	m.history = append(m.history, snapshot)
	m.alerts = append(m.alerts, alerts...)
	m.pruneLocked(snapshot.Timestamp)
	m.historyMu.Unlock()

	m.metricsObservers.Emit(snapshot)
	for _, alert := range alerts {
		m.logger.Warn("Performance alert raised", log.String("metric", alert.Metric),
			log.String("type", string(alert.Type)), log.Float64("value", alert.Value),
			log.Float64("threshold", alert.Threshold))
		m.alertObservers.Emit(alert)
	}
	return snapshot, nil
}

// collect swaps out the interval state under one lock and derives the snapshot from it.
func (m *Monitor) collect() (snapshot Metrics, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("metrics collection panicked: %v", r)
		}
	}()

	m.mu.Lock()
	source := m.cacheSource
	m.mu.Unlock()
	var sampled *CacheSnapshot
	if source != nil {
		s := source()
		sampled = &s
	}

	now := m.now()
	interval := now.Sub(m.lastTick)
	m.lastTick = now

	m.mu.Lock()
	times := m.responseTimes
	m.responseTimes = nil
	ws := WebSocketMetrics{Connections: m.wsConnections, Messages: m.wsMessages, Errors: m.wsErrors}
	m.wsMessages = 0
	m.wsErrors = 0
	if sampled != nil {
		m.cache = *sampled
	}
	cache := m.cache
	var custom map[string]float64
	if len(m.custom) > 0 {
		custom = make(map[string]float64, len(m.custom))
		for name, value := range m.custom {
			custom[name] = value
		}
	}
	m.mu.Unlock()

	return Metrics{
		Timestamp: now,
		Requests:  m.summarizeRequests(times, interval),
		WebSocket: ws,
		Cache:     cache,
		System:    m.sampleStats(),
		Custom:    custom,
	}, nil
}

// summarizeRequests derives the interval figures. Throughput divides by the time elapsed
// since the previous tick, or by the sampling interval when none has elapsed.
func (m *Monitor) summarizeRequests(times []time.Duration, interval time.Duration) RequestMetrics {
	if interval <= 0 {
		interval = m.cfg.SamplingInterval
	}
	summary := RequestMetrics{
		Count:      len(times),
		Throughput: float64(len(times)) / interval.Seconds(),
	}
	if len(times) == 0 {
		return summary
	}

	var total, longest time.Duration
	for _, d := range times {
		total += d
		if d > longest {
			longest = d
		}
		if d > m.cfg.SlowRequestThreshold {
			summary.SlowRequests++
		}
	}
	summary.AverageResponseTime = durationMillis(total / time.Duration(len(times)))
	summary.MaxResponseTime = durationMillis(longest)
	return summary
}

// sampleRuntime reads memory, CPU and goroutine figures from the Go runtime.
func (m *Monitor) sampleRuntime() SystemMetrics {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	samples := []metrics.Sample{{Name: cpuSecondsMetric}}
	metrics.Read(samples)
	var cpuSeconds float64
	if samples[0].Value.Kind() == metrics.KindFloat64 {
		cpuSeconds = samples[0].Value.Float64()
	}

	now := m.now()
	var cpuPercent float64
	if wall := now.Sub(m.lastSample).Seconds(); wall > 0 && m.lastCPU > 0 {
		cpuPercent = (cpuSeconds - m.lastCPU) / (wall * float64(runtime.GOMAXPROCS(0))) * 100
	}
	m.lastCPU = cpuSeconds
	m.lastSample = now

	return SystemMetrics{
		HeapUsed:   mem.HeapAlloc,
		HeapTotal:  mem.HeapSys,
		Sys:        mem.Sys,
		CPUSeconds: cpuSeconds,
		CPUPercent: cpuPercent,
		Goroutines: runtime.NumGoroutine(),
		Uptime:     now.Sub(m.startTime).Seconds(),
	}
}

// pruneLocked drops snapshots and alerts older than the retention window. Callers hold historyMu.
func (m *Monitor) pruneLocked(now time.Time) {
	cutoff := now.Add(-m.cfg.Retention)

	i := 0
	for i < len(m.history) && m.history[i].Timestamp.Before(cutoff) {
		i++
	}
	if i > 0 {
		m.history = append([]Metrics(nil), m.history[i:]...)
	}

	j := 0
	for j < len(m.alerts) && m.alerts[j].Timestamp.Before(cutoff) {
		j++
	}
	if j > 0 {
		m.alerts = append([]Alert(nil), m.alerts[j:]...)
	}
}

// Destroy stops sampling and clears all state. It is safe to call more than once.
func (m *Monitor) Destroy() {
	m.stopOnce.Do(func() {
		close(m.stopCh)

		m.mu.Lock()
		m.responseTimes = nil
		m.custom = make(map[string]float64)
		m.cache = CacheSnapshot{}
		m.cacheSource = nil
		m.wsConnections, m.wsMessages, m.wsErrors = 0, 0, 0
		m.mu.Unlock()

		m.historyMu.Lock()
		m.history = nil
		m.alerts = nil
		m.historyMu.Unlock()

		m.metricsObservers.Clear()
		m.alertObservers.Clear()
		m.errorObservers.Clear()
		m.logger.Debug("Performance monitor destroyed")
	})
}

func durationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
