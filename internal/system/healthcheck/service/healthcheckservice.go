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

// Package service provides the readiness checks of the server dependencies.
package service

import (
	"context"
	"time"

	"github.com/procurehub/procurement-server/internal/performance"
	"github.com/procurehub/procurement-server/internal/system/healthcheck/model"
	"github.com/procurehub/procurement-server/internal/system/log"
)

const (
	serviceUserDirectory      = "UserDirectoryDB"
	servicePerformanceMonitor = "PerformanceMonitor"
	checkTimeout              = 3 * time.Second
)

// Pinger is a dependency answering a reachability check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MonitorHealthProvider exposes the health derived from performance alerts.
type MonitorHealthProvider interface {
	GetHealthStatus() performance.HealthStatus
}

// HealthCheckServiceInterface defines the interface for the health check service.
type HealthCheckServiceInterface interface {
	CheckReadiness(ctx context.Context) model.ServerStatus
	GetHealthStatus() performance.HealthStatus
}

// HealthCheckService is the default implementation of the HealthCheckServiceInterface.
type HealthCheckService struct {
	directory Pinger
	monitor   MonitorHealthProvider
}

// NewHealthCheckService creates a new instance of HealthCheckService.
func NewHealthCheckService(directory Pinger, monitor MonitorHealthProvider) *HealthCheckService {
	return &HealthCheckService{
		directory: directory,
		monitor:   monitor,
	}
}

// CheckReadiness checks the readiness of the server and its dependencies.
func (hcs *HealthCheckService) CheckReadiness(ctx context.Context) model.ServerStatus {
	directoryStatus := model.ServiceStatus{
		ServiceName: serviceUserDirectory,
		Status:      hcs.checkDirectoryStatus(ctx),
	}

	monitorStatus := model.ServiceStatus{
		ServiceName: servicePerformanceMonitor,
		Status:      model.StatusUp,
	}
	if hcs.GetHealthStatus().Status == performance.HealthStateCritical {
		monitorStatus.Status = model.StatusDown
	}

	status := model.StatusUp
	if directoryStatus.Status == model.StatusDown || monitorStatus.Status == model.StatusDown {
		status = model.StatusDown
	}
	return model.ServerStatus{
		Status:        status,
		ServiceStatus: []model.ServiceStatus{directoryStatus, monitorStatus},
	}
}

// GetHealthStatus returns the health derived from recent performance alerts.
func (hcs *HealthCheckService) GetHealthStatus() performance.HealthStatus {
	return hcs.monitor.GetHealthStatus()
}

func (hcs *HealthCheckService) checkDirectoryStatus(ctx context.Context) model.Status {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "HealthCheckService"))

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := hcs.directory.Ping(ctx); err != nil {
		logger.Error("User directory is not reachable", log.Error(err))
		return model.StatusDown
	}
	return model.StatusUp
}
