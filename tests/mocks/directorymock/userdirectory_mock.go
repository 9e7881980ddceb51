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

// Package directorymock provides a mock of the user directory used for recipient resolution.
package directorymock

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// UserDirectoryInterfaceMock is a mock implementation of notification.UserDirectoryInterface.
type UserDirectoryInterfaceMock struct {
	mock.Mock
}

// GetUserIDsByRole provides a mock function with given fields: ctx, role
func (m *UserDirectoryInterfaceMock) GetUserIDsByRole(ctx context.Context, role string) ([]string, error) {
	ret := m.Called(ctx, role)

	var ids []string
	if rf, ok := ret.Get(0).(func(context.Context, string) []string); ok {
		ids = rf(ctx, role)
	} else if ret.Get(0) != nil {
		ids = ret.Get(0).([]string)
	}
	return ids, ret.Error(1)
}

// GetUserIDsByDepartment provides a mock function with given fields: ctx, departmentID
func (m *UserDirectoryInterfaceMock) GetUserIDsByDepartment(ctx context.Context,
	departmentID string) ([]string, error) {
	ret := m.Called(ctx, departmentID)

	var ids []string
	if ret.Get(0) != nil {
		ids = ret.Get(0).([]string)
	}
	return ids, ret.Error(1)
}

// GetRequestOwner provides a mock function with given fields: ctx, requestID
func (m *UserDirectoryInterfaceMock) GetRequestOwner(ctx context.Context, requestID string) (string, error) {
	ret := m.Called(ctx, requestID)
	return ret.String(0), ret.Error(1)
}

// Ping provides a mock function with given fields: ctx
func (m *UserDirectoryInterfaceMock) Ping(ctx context.Context) error {
	ret := m.Called(ctx)
	return ret.Error(0)
}
