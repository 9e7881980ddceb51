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

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/procurehub/procurement-server/internal/performance"
	"github.com/procurehub/procurement-server/internal/system/healthcheck/model"
	"github.com/procurehub/procurement-server/tests/mocks/directorymock"
)

type monitorStub struct {
	status performance.HealthState
}

func (m monitorStub) GetHealthStatus() performance.HealthStatus {
	return performance.HealthStatus{Status: m.status}
}

type HealthCheckServiceTestSuite struct {
	suite.Suite
}

func TestHealthCheckServiceSuite(t *testing.T) {
	suite.Run(t, new(HealthCheckServiceTestSuite))
}

func (suite *HealthCheckServiceTestSuite) TestCheckReadiness() {
	testCases := []struct {
		name            string
		pingErr         error
		monitorState    performance.HealthState
		expectedStatus  model.Status
		directoryStatus model.Status
		monitorStatus   model.Status
	}{
		{"AllUp", nil, performance.HealthStateHealthy, model.StatusUp, model.StatusUp, model.StatusUp},
		{"WarningsStillReady", nil, performance.HealthStateWarning, model.StatusUp, model.StatusUp, model.StatusUp},
		{"DirectoryDown", errors.New("database error"), performance.HealthStateHealthy, model.StatusDown,
			model.StatusDown, model.StatusUp},
		{"MonitorCritical", nil, performance.HealthStateCritical, model.StatusDown, model.StatusUp, model.StatusDown},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			directory := &directorymock.UserDirectoryInterfaceMock{}
			directory.On("Ping", mock.Anything).Return(tc.pingErr)
			hcs := NewHealthCheckService(directory, monitorStub{status: tc.monitorState})

			serverStatus := hcs.CheckReadiness(context.Background())

			assert.Equal(t, tc.expectedStatus, serverStatus.Status)
			assert.Equal(t, []model.ServiceStatus{
				{ServiceName: "UserDirectoryDB", Status: tc.directoryStatus},
				{ServiceName: "PerformanceMonitor", Status: tc.monitorStatus},
			}, serverStatus.ServiceStatus)
			directory.AssertExpectations(t)
		})
	}
}

func (suite *HealthCheckServiceTestSuite) TestGetHealthStatus() {
	hcs := NewHealthCheckService(&directorymock.UserDirectoryInterfaceMock{},
		monitorStub{status: performance.HealthStateWarning})

	assert.Equal(suite.T(), performance.HealthStateWarning, hcs.GetHealthStatus().Status)
}
