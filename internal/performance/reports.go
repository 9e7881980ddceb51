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
	"math"
	"time"
)

// GetLatestMetrics returns the most recent snapshot.
func (m *Monitor) GetLatestMetrics() (Metrics, bool) {
	m.historyMu.RLock()
	defer m.historyMu.RUnlock()

	if len(m.history) == 0 {
		return Metrics{}, false
	}
	return m.history[len(m.history)-1], true
}

// GetMetricsHistory returns the snapshots of the last minutes, oldest first.
func (m *Monitor) GetMetricsHistory(minutes int) []Metrics {
	cutoff := m.now().Add(-time.Duration(minutes) * time.Minute)

	m.historyMu.RLock()
	defer m.historyMu.RUnlock()

	result := make([]Metrics, 0, len(m.history))
	for _, snapshot := range m.history {
		if !snapshot.Timestamp.Before(cutoff) {
			result = append(result, snapshot)
		}
	}
	return result
}

// GetAlerts returns the alerts raised in the last minutes, oldest first.
func (m *Monitor) GetAlerts(minutes int) []Alert {
	return m.alertsSince(m.now().Add(-time.Duration(minutes) * time.Minute))
}

func (m *Monitor) alertsSince(cutoff time.Time) []Alert {
	m.historyMu.RLock()
	defer m.historyMu.RUnlock()

	result := make([]Alert, 0)
	for _, alert := range m.alerts {
		if !alert.Timestamp.Before(cutoff) {
			result = append(result, alert)
		}
	}
	return result
}

// GetHealthStatus derives the overall status from the alerts of the last five minutes.
func (m *Monitor) GetHealthStatus() HealthStatus {
	now := m.now()
	recent := m.alertsSince(now.Add(-healthWindow))

	status := HealthStatus{
		Status:       HealthStateHealthy,
		Timestamp:    now,
		RecentAlerts: len(recent),
	}
	for _, alert := range recent {
		if alert.Type == AlertTypeCritical {
			status.Status = HealthStateCritical
			break
		}
		status.Status = HealthStateWarning
	}

	if latest, ok := m.GetLatestMetrics(); ok {
		status.Metrics = &HealthDigest{
			AverageResponseTime:  latest.Requests.AverageResponseTime,
			Throughput:           latest.Requests.Throughput,
			HeapUsedMB:           float64(latest.System.HeapUsed) / bytesPerMB,
			CacheHitRate:         latest.Cache.HitRate,
			WebSocketConnections: latest.WebSocket.Connections,
			Uptime:               latest.System.Uptime,
		}
	}
	return status
}

// GetSummaryReport aggregates the snapshots and alerts of the last hours.
func (m *Monitor) GetSummaryReport(hours int) SummaryReport {
	now := m.now()
	from := now.Add(-time.Duration(hours) * time.Hour)
	snapshots := m.GetMetricsHistory(hours * 60)
	alerts := m.alertsSince(from)

	report := SummaryReport{
		PeriodHours:  hours,
		From:         from,
		To:           now,
		Samples:      len(snapshots),
		TotalAlerts:  len(alerts),
		AlertsByType: make(map[AlertType]int),
	}
	for _, alert := range alerts {
		report.AlertsByType[alert.Type]++
	}
	if len(snapshots) == 0 {
		return report
	}

	responseTimes := make([]float64, len(snapshots))
	throughputs := make([]float64, len(snapshots))
	heap := make([]float64, len(snapshots))
	hitRates := make([]float64, len(snapshots))
	for i, snapshot := range snapshots {
		report.TotalRequests += snapshot.Requests.Count
		responseTimes[i] = snapshot.Requests.AverageResponseTime
		throughputs[i] = snapshot.Requests.Throughput
		heap[i] = float64(snapshot.System.HeapUsed) / bytesPerMB
		hitRates[i] = snapshot.Cache.HitRate
	}

	report.ResponseTime = aggregate(responseTimes)
	report.Throughput = aggregate(throughputs)
	report.HeapUsedMB = aggregate(heap)
	report.CacheHitRate = aggregate(hitRates)
	return report
}

func aggregate(values []float64) Aggregate {
	if len(values) == 0 {
		return Aggregate{}
	}

	result := Aggregate{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, v := range values {
		result.Min = math.Min(result.Min, v)
		result.Max = math.Max(result.Max, v)
		sum += v
	}
	result.Average = sum / float64(len(values))
	return result
}
