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

// Package servicemock provides a mock of the health check service.
package servicemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/procurehub/procurement-server/internal/performance"
	"github.com/procurehub/procurement-server/internal/system/healthcheck/model"
)

// HealthCheckServiceInterfaceMock is a mock implementation of service.HealthCheckServiceInterface.
type HealthCheckServiceInterfaceMock struct {
	mock.Mock
}

// CheckReadiness provides a mock function with given fields: ctx
func (m *HealthCheckServiceInterfaceMock) CheckReadiness(ctx context.Context) model.ServerStatus {
	ret := m.Called(ctx)
	return ret.Get(0).(model.ServerStatus)
}

// GetHealthStatus provides a mock function with given fields:
func (m *HealthCheckServiceInterfaceMock) GetHealthStatus() performance.HealthStatus {
	ret := m.Called()
	return ret.Get(0).(performance.HealthStatus)
}
