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

import "fmt"

// evaluateAlerts applies every threshold rule to the snapshot independently.
func (m *Monitor) evaluateAlerts(snapshot Metrics) []Alert {
	var alerts []Alert
	raise := func(alertType AlertType, metric string, value, threshold float64, message string) {
		alerts = append(alerts, Alert{
			Type:      alertType,
			Metric:    metric,
			Value:     value,
			Threshold: threshold,
			Message:   message,
			Timestamp: snapshot.Timestamp,
		})
	}

	responseThreshold := durationMillis(m.cfg.ResponseTimeThreshold)
	if avg := snapshot.Requests.AverageResponseTime; avg > responseThreshold {
		raise(AlertTypeWarning, metricAverageResponseTime, avg, responseThreshold,
			fmt.Sprintf("Average response time %.0fms exceeds %.0fms", avg, responseThreshold))
	}

	if heap := snapshot.System.HeapUsed; heap > m.cfg.MemoryThreshold {
		used := float64(heap) / bytesPerMB
		limit := float64(m.cfg.MemoryThreshold) / bytesPerMB
		raise(AlertTypeWarning, metricMemoryUsage, used, limit,
			fmt.Sprintf("Heap usage %.1fMB exceeds %.1fMB", used, limit))
	}

	// A cache without lookups has no meaningful hit rate.
	cache := snapshot.Cache
	if cache.HitRate+cache.MissRate > 0 && cache.HitRate < m.cfg.CacheHitRateThreshold {
		raise(AlertTypeWarning, metricCacheHitRate, cache.HitRate, m.cfg.CacheHitRateThreshold,
			fmt.Sprintf("Cache hit rate %.2f is below %.2f", cache.HitRate, m.cfg.CacheHitRateThreshold))
	}

	if errs := snapshot.WebSocket.Errors; errs > m.cfg.WebSocketErrorThreshold {
		raise(AlertTypeError, metricWebSocketErrors, float64(errs), float64(m.cfg.WebSocketErrorThreshold),
			fmt.Sprintf("%d websocket errors in the last interval exceed %d", errs, m.cfg.WebSocketErrorThreshold))
	}

	return alerts
}
