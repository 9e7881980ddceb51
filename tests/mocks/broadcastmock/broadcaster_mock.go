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

// Package broadcastmock provides a mock of the realtime broadcaster.
package broadcastmock

import (
	"github.com/stretchr/testify/mock"
)

// BroadcasterMock is a mock implementation of notification.Broadcaster.
type BroadcasterMock struct {
	mock.Mock
}

// BroadcastToResource provides a mock function with given fields: resource, action, payload
func (m *BroadcasterMock) BroadcastToResource(resource, action string, payload any) error {
	ret := m.Called(resource, action, payload)
	return ret.Error(0)
}

// SendToUser provides a mock function with given fields: userID, payload
func (m *BroadcasterMock) SendToUser(userID string, payload any) error {
	ret := m.Called(userID, payload)
	return ret.Error(0)
}
