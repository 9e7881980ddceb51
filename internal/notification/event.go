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
	"encoding/json"
	"fmt"
)

// NewEvent builds a notification event from a typed entity. The entity is converted to
// its JSON object form so the per resource rules can filter it.
func NewEvent[T any](resource, action, entityID, userID string, entity T) (NotificationEvent, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return NotificationEvent{}, fmt.Errorf("failed to encode %s payload: %w", resource, err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return NotificationEvent{}, fmt.Errorf("%s payload is not a JSON object: %w", resource, err)
	}

	return NotificationEvent{
		Resource: resource,
		Action:   action,
		EntityID: entityID,
		UserID:   userID,
		Data:     data,
	}, nil
}
