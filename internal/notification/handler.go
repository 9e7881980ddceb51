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

package notification

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	serverconst "github.com/procurehub/procurement-server/internal/system/constants"
	"github.com/procurehub/procurement-server/internal/system/log"
	"github.com/procurehub/procurement-server/internal/system/utils"
)

const maxEventBodyBytes = 1 << 20

// noStore keeps live queue state out of the response cache.
const noStore = "no-store"

// acceptedResponse is the body returned when events are queued.
type acceptedResponse struct {
	Accepted int `json:"accepted"`
}

// Handler serves the notification endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleEventsRequest queues one event or an array of events.
func (h *Handler) HandleEventsRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "NotificationHandler"))

	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBodyBytes))
	if err != nil {
		logger.Error("Failed to read notification request body", log.Error(err))
		utils.WriteServiceError(w, &ErrorInvalidEventPayload)
		return
	}

	events, err := decodeEvents(body)
	if err != nil {
		utils.WriteServiceError(w, ErrorInvalidEventPayload.WithDescription(err.Error()))
		return
	}
	for _, event := range events {
		if event.Resource == "" || event.Action == "" {
			utils.WriteServiceError(w, &ErrorMissingEventFields)
			return
		}
	}

	h.service.NotifyMultiple(events)
	logger.Debug("Queued notification events", log.Int("count", len(events)))
	utils.WriteJSON(w, http.StatusAccepted, acceptedResponse{Accepted: len(events)})
}

// HandleHistoryRequest returns the most recent dispatched events.
func (h *Handler) HandleHistoryRequest(w http.ResponseWriter, r *http.Request) {
	limit, ok := utils.ParseLimit(r, "limit", serverconst.DefaultHistoryLimit, serverconst.MaxHistoryLimit)
	if !ok {
		utils.WriteServiceError(w, &ErrorInvalidLimit)
		return
	}
	w.Header().Set(serverconst.CacheControlHeaderName, noStore)
	utils.WriteJSON(w, http.StatusOK, h.service.GetEventHistory(limit))
}

// HandleClearHistoryRequest drops the dispatched event history.
func (h *Handler) HandleClearHistoryRequest(w http.ResponseWriter, _ *http.Request) {
	h.service.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

// HandleStatsRequest returns the queue statistics.
func (h *Handler) HandleStatsRequest(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(serverconst.CacheControlHeaderName, noStore)
	utils.WriteJSON(w, http.StatusOK, h.service.GetStats())
}

// decodeEvents accepts either a single JSON object or an array of objects.
func decodeEvents(body []byte) ([]NotificationEvent, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, io.ErrUnexpectedEOF
	}

	if trimmed[0] == '[' {
		var events []NotificationEvent
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return nil, err
		}
		return events, nil
	}

	var event NotificationEvent
	if err := json.Unmarshal(trimmed, &event); err != nil {
		return nil, err
	}
	return []NotificationEvent{event}, nil
}
