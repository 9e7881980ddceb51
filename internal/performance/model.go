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

import "time"

// RequestMetrics summarizes the requests recorded during one sampling interval.
type RequestMetrics struct {
	Count               int     `json:"count"`
	Throughput          float64 `json:"throughput"`
	AverageResponseTime float64 `json:"averageResponseTime"`
	MaxResponseTime     float64 `json:"maxResponseTime"`
	SlowRequests        int     `json:"slowRequests"`
}

// WebSocketMetrics holds the websocket gauge and the per interval counters.
type WebSocketMetrics struct {
	Connections int   `json:"connections"`
	Messages    int64 `json:"messages"`
	Errors      int64 `json:"errors"`
}

// CacheSnapshot is the cache state reported to the monitor.
type CacheSnapshot struct {
	HitRate            float64 `json:"hitRate"`
	MissRate           float64 `json:"missRate"`
	Size               int64   `json:"size"`
	CompressionSavings int64   `json:"compressionSavings"`
}

// SystemMetrics holds process level samples taken at tick time.
type SystemMetrics struct {
	HeapUsed   uint64  `json:"heapUsed"`
	HeapTotal  uint64  `json:"heapTotal"`
	Sys        uint64  `json:"sys"`
	CPUSeconds float64 `json:"cpuSeconds"`
	CPUPercent float64 `json:"cpuPercent"`
	Goroutines int     `json:"goroutines"`
	Uptime     float64 `json:"uptime"`
}

// Metrics is one immutable snapshot produced per sampling tick.
type Metrics struct {
	Timestamp time.Time          `json:"timestamp"`
	Requests  RequestMetrics     `json:"requests"`
	WebSocket WebSocketMetrics   `json:"websocket"`
	Cache     CacheSnapshot      `json:"cache"`
	System    SystemMetrics      `json:"system"`
	Custom    map[string]float64 `json:"custom,omitempty"`
}

// AlertType is the severity of an alert.
type AlertType string

const (
	// AlertTypeWarning marks a degraded but functional condition.
	AlertTypeWarning AlertType = "warning"
	// AlertTypeError marks a failing subsystem.
	AlertTypeError AlertType = "error"
	// AlertTypeCritical marks a condition needing immediate action.
	AlertTypeCritical AlertType = "critical"
)

// Alert is raised when a snapshot metric crosses its threshold.
type Alert struct {
	Type      AlertType `json:"type"`
	Metric    string    `json:"metric"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthState is the overall health derived from recent alerts.
type HealthState string

const (
	HealthStateHealthy  HealthState = "healthy"
	HealthStateWarning  HealthState = "warning"
	HealthStateCritical HealthState = "critical"
)

// HealthDigest is the compact view of the latest snapshot.
type HealthDigest struct {
	AverageResponseTime  float64 `json:"averageResponseTime"`
	Throughput           float64 `json:"throughput"`
	HeapUsedMB           float64 `json:"heapUsedMB"`
	CacheHitRate         float64 `json:"cacheHitRate"`
	WebSocketConnections int     `json:"websocketConnections"`
	Uptime               float64 `json:"uptime"`
}

// HealthStatus is returned by GetHealthStatus.
type HealthStatus struct {
	Status       HealthState   `json:"status"`
	Timestamp    time.Time     `json:"timestamp"`
	Metrics      *HealthDigest `json:"metrics,omitempty"`
	RecentAlerts int           `json:"recentAlerts"`
}

// Aggregate holds min, max and mean of a series.
type Aggregate struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// SummaryReport aggregates the snapshots of a time window.
type SummaryReport struct {
	PeriodHours   int               `json:"periodHours"`
	From          time.Time         `json:"from"`
	To            time.Time         `json:"to"`
	Samples       int               `json:"samples"`
	TotalRequests int               `json:"totalRequests"`
	ResponseTime  Aggregate         `json:"responseTime"`
	Throughput    Aggregate         `json:"throughput"`
	HeapUsedMB    Aggregate         `json:"heapUsedMB"`
	CacheHitRate  Aggregate         `json:"cacheHitRate"`
	TotalAlerts   int               `json:"totalAlerts"`
	AlertsByType  map[AlertType]int `json:"alertsByType"`
}
