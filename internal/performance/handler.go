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

	"github.com/procurehub/procurement-server/internal/system/log"
	"github.com/procurehub/procurement-server/internal/system/utils"
)

const (
	defaultWindowMinutes = 60
	maxWindowMinutes     = 24 * 60
	defaultWindowHours   = 24
	maxWindowHours       = 24 * 7
)

// metricsResponse is the body of GET /performance/metrics.
type metricsResponse struct {
	Latest  *Metrics  `json:"latest"`
	History []Metrics `json:"history"`
}

// Handler serves the performance endpoints.
type Handler struct {
	monitor *Monitor
}

// NewHandler creates a new performance handler.
func NewHandler(monitor *Monitor) *Handler {
	return &Handler{monitor: monitor}
}

// HandleMetricsRequest returns the latest snapshot and the recent history.
func (h *Handler) HandleMetricsRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "PerformanceHandler"))

	minutes, ok := utils.ParseLimit(r, "minutes", defaultWindowMinutes, maxWindowMinutes)
	if !ok {
		utils.WriteServiceError(w, &ErrorInvalidWindow)
		return
	}

	if r.URL.Query().Get("refresh") == "true" {
		if _, err := h.monitor.CollectNow(); err != nil {
			logger.Error("Forced metrics collection failed", log.Error(err))
			utils.WriteServiceError(w, &ErrorCollectionFailed)
			return
		}
	}

	resp := metricsResponse{History: h.monitor.GetMetricsHistory(minutes)}
	if latest, found := h.monitor.GetLatestMetrics(); found {
		resp.Latest = &latest
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// HandleAlertsRequest returns the alerts raised within the requested window.
func (h *Handler) HandleAlertsRequest(w http.ResponseWriter, r *http.Request) {
	minutes, ok := utils.ParseLimit(r, "minutes", defaultWindowMinutes, maxWindowMinutes)
	if !ok {
		utils.WriteServiceError(w, &ErrorInvalidWindow)
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.monitor.GetAlerts(minutes))
}

// HandleSummaryRequest returns the aggregated report for the requested window.
func (h *Handler) HandleSummaryRequest(w http.ResponseWriter, r *http.Request) {
	hours, ok := utils.ParseLimit(r, "hours", defaultWindowHours, maxWindowHours)
	if !ok {
		utils.WriteServiceError(w, &ErrorInvalidWindow)
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.monitor.GetSummaryReport(hours))
}
