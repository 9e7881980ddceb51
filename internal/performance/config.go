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
	"time"

	"github.com/procurehub/procurement-server/internal/system/config"
)

const (
	metricAverageResponseTime = "averageResponseTime"
	metricMemoryUsage         = "memoryUsage"
	metricCacheHitRate        = "cacheHitRate"
	metricWebSocketErrors     = "websocketErrors"
)

const healthWindow = 5 * time.Minute

const bytesPerMB = 1024 * 1024

// Config configures a Monitor.
type Config struct {
	SamplingInterval        time.Duration
	Retention               time.Duration
	SlowRequestThreshold    time.Duration
	ResponseTimeThreshold   time.Duration
	MemoryThreshold         uint64
	CacheHitRateThreshold   float64
	WebSocketErrorThreshold int64
}

// DefaultConfig returns the default monitor configuration.
func DefaultConfig() Config {
	return Config{
		SamplingInterval:        60 * time.Second,
		Retention:               24 * time.Hour,
		SlowRequestThreshold:    time.Second,
		ResponseTimeThreshold:   time.Second,
		MemoryThreshold:         512 * bytesPerMB,
		CacheHitRateThreshold:   0.5,
		WebSocketErrorThreshold: 10,
	}
}

// ConfigFromDeployment builds the monitor configuration from the deployment file.
func ConfigFromDeployment(cfg config.PerformanceConfig) Config {
	c := DefaultConfig()
	if cfg.SamplingInterval > 0 {
		c.SamplingInterval = time.Duration(cfg.SamplingInterval) * time.Second
	}
	if cfg.Retention > 0 {
		c.Retention = time.Duration(cfg.Retention) * time.Hour
	}
	if cfg.SlowRequestThreshold > 0 {
		c.SlowRequestThreshold = time.Duration(cfg.SlowRequestThreshold) * time.Millisecond
	}
	if cfg.Thresholds.ResponseTime > 0 {
		c.ResponseTimeThreshold = time.Duration(cfg.Thresholds.ResponseTime) * time.Millisecond
	}
	if cfg.Thresholds.MemoryUsageMB > 0 {
		c.MemoryThreshold = uint64(cfg.Thresholds.MemoryUsageMB) * bytesPerMB
	}
	if cfg.Thresholds.CacheHitRate > 0 {
		c.CacheHitRateThreshold = cfg.Thresholds.CacheHitRate
	}
	if cfg.Thresholds.WebSocketErrors > 0 {
		c.WebSocketErrorThreshold = int64(cfg.Thresholds.WebSocketErrors)
	}
	return c
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.SamplingInterval <= 0 {
		c.SamplingInterval = d.SamplingInterval
	}
	if c.Retention <= 0 {
		c.Retention = d.Retention
	}
	if c.SlowRequestThreshold <= 0 {
		c.SlowRequestThreshold = d.SlowRequestThreshold
	}
	if c.ResponseTimeThreshold <= 0 {
		c.ResponseTimeThreshold = d.ResponseTimeThreshold
	}
	if c.MemoryThreshold == 0 {
		c.MemoryThreshold = d.MemoryThreshold
	}
	if c.CacheHitRateThreshold <= 0 {
		c.CacheHitRateThreshold = d.CacheHitRateThreshold
	}
	if c.WebSocketErrorThreshold <= 0 {
		c.WebSocketErrorThreshold = d.WebSocketErrorThreshold
	}
}
