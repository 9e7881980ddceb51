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

package performance

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "procurehub"

// Exporter mirrors monitor snapshots into Prometheus collectors.
type Exporter struct {
	registry *prometheus.Registry

	requestThroughput   prometheus.Gauge
	averageResponseTime prometheus.Gauge
	slowRequests        prometheus.Gauge
	requestsTotal       prometheus.Counter
	wsConnections       prometheus.Gauge
	wsMessages          prometheus.Counter
	wsErrors            prometheus.Counter
	cacheHitRate        prometheus.Gauge
	cacheSize           prometheus.Gauge
	compressionSavings  prometheus.Gauge
	heapUsed            prometheus.Gauge
	cpuPercent          prometheus.Gauge
	custom              *prometheus.GaugeVec
	alerts              *prometheus.CounterVec

	unregister []func()
}

// NewExporter creates an exporter fed by the monitor's metrics and alert signals.
func NewExporter(monitor *Monitor) *Exporter {
	gauge := func(subsystem, name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace, Subsystem: subsystem, Name: name, Help: help,
		})
	}
	counter := func(subsystem, name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: subsystem, Name: name, Help: help,
		})
	}

	e := &Exporter{
		registry:            prometheus.NewRegistry(),
		requestThroughput:   gauge("http", "throughput_rps", "Requests per second over the last sampling interval."),
		averageResponseTime: gauge("http", "average_response_time_ms", "Mean response time over the last interval."),
		slowRequests:        gauge("http", "slow_requests", "Requests slower than the slow threshold in the last interval."),
		requestsTotal:       counter("http", "requests_total", "Requests recorded by the monitor."),
		wsConnections:       gauge("websocket", "connections", "Open websocket connections."),
		wsMessages:          counter("websocket", "messages_total", "Websocket messages sent."),
		wsErrors:            counter("websocket", "errors_total", "Websocket errors."),
		cacheHitRate:        gauge("cache", "hit_rate", "Response cache hit rate."),
		cacheSize:           gauge("cache", "size_bytes", "Bytes held by the response cache."),
		compressionSavings:  gauge("cache", "compression_savings_bytes", "Bytes saved by compressing cache entries."),
		heapUsed:            gauge("process", "heap_used_bytes", "Heap bytes in use at the last sample."),
		cpuPercent:          gauge("process", "cpu_percent", "CPU utilisation over the last interval."),
		custom: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace, Name: "custom_metric", Help: "Custom metrics recorded by the application.",
		}, []string{"name"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Name: "alerts_total", Help: "Performance alerts raised.",
		}, []string{"type", "metric"}),
	}

	e.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		e.requestThroughput, e.averageResponseTime, e.slowRequests, e.requestsTotal,
		e.wsConnections, e.wsMessages, e.wsErrors,
		e.cacheHitRate, e.cacheSize, e.compressionSavings,
		e.heapUsed, e.cpuPercent, e.custom, e.alerts,
	)

	e.unregister = append(e.unregister, monitor.OnMetrics(e.observe), monitor.OnAlert(e.observeAlert))
	return e
}

func (e *Exporter) observe(snapshot Metrics) {
	e.requestThroughput.Set(snapshot.Requests.Throughput)
	e.averageResponseTime.Set(snapshot.Requests.AverageResponseTime)
	e.slowRequests.Set(float64(snapshot.Requests.SlowRequests))
	e.requestsTotal.Add(float64(snapshot.Requests.Count))
	e.wsConnections.Set(float64(snapshot.WebSocket.Connections))
	e.wsMessages.Add(float64(snapshot.WebSocket.Messages))
	e.wsErrors.Add(float64(snapshot.WebSocket.Errors))
	e.cacheHitRate.Set(snapshot.Cache.HitRate)
	e.cacheSize.Set(float64(snapshot.Cache.Size))
	e.compressionSavings.Set(float64(snapshot.Cache.CompressionSavings))
	e.heapUsed.Set(float64(snapshot.System.HeapUsed))
	e.cpuPercent.Set(snapshot.System.CPUPercent)
	for name, value := range snapshot.Custom {
		e.custom.WithLabelValues(name).Set(value)
	}
}

func (e *Exporter) observeAlert(alert Alert) {
	e.alerts.WithLabelValues(string(alert.Type), alert.Metric).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Close detaches the exporter from the monitor.
func (e *Exporter) Close() {
	for _, unregister := range e.unregister {
		unregister()
	}
	e.unregister = nil
}
