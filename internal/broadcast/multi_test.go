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

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/procurehub/procurement-server/tests/mocks/broadcastmock"
)

func TestMultiBroadcaster(t *testing.T) {
	first := &broadcastmock.BroadcasterMock{}
	second := &broadcastmock.BroadcasterMock{}
	first.On("BroadcastToResource", "supplier", "created", "payload").Return(nil)
	second.On("BroadcastToResource", "supplier", "created", "payload").Return(errors.New("redis down"))
	first.On("SendToUser", "u-1", "payload").Return(errors.New("hub closed"))
	second.On("SendToUser", "u-1", "payload").Return(errors.New("redis down"))

	multi := NewMultiBroadcaster(first, nil, second)

	err := multi.BroadcastToResource("supplier", "created", "payload")
	assert.EqualError(t, err, "redis down")

	err = multi.SendToUser("u-1", "payload")
	assert.ErrorContains(t, err, "hub closed")
	assert.ErrorContains(t, err, "redis down")

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestMultiBroadcasterWithoutErrors(t *testing.T) {
	target := &broadcastmock.BroadcasterMock{}
	target.On("SendToUser", "u-1", 42).Return(nil)

	assert.NoError(t, NewMultiBroadcaster(target).SendToUser("u-1", 42))
	assert.NoError(t, NewMultiBroadcaster().BroadcastToResource("user", "updated", nil))
}
