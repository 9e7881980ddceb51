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

package broadcast

import "errors"

// Target is anything able to deliver notifications.
type Target interface {
	BroadcastToResource(resource, action string, payload any) error
	SendToUser(userID string, payload any) error
}

// MultiBroadcaster fans every delivery out to several targets.
type MultiBroadcaster struct {
	targets []Target
}

// NewMultiBroadcaster creates a broadcaster delivering to every non nil target in order.
func NewMultiBroadcaster(targets ...Target) *MultiBroadcaster {
	m := &MultiBroadcaster{}
	for _, t := range targets {
		if t != nil {
			m.targets = append(m.targets, t)
		}
	}
	return m
}

// BroadcastToResource delivers to every target and joins their errors.
func (m *MultiBroadcaster) BroadcastToResource(resource, action string, payload any) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.BroadcastToResource(resource, action, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendToUser delivers to every target and joins their errors.
func (m *MultiBroadcaster) SendToUser(userID string, payload any) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.SendToUser(userID, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
