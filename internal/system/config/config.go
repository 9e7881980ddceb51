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

// Package config provides structures and functions for loading and managing server configurations.
package config

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	yaml "gopkg.in/yaml.v3"

	"github.com/procurehub/procurement-server/internal/system/log"
)

// ServerConfig holds the server configuration details.
type ServerConfig struct {
	Hostname        string `yaml:"hostname" env:"PROCURE_SERVER_HOSTNAME"`
	Port            int    `yaml:"port" env:"PROCURE_SERVER_PORT"`
	HTTPOnly        bool   `yaml:"http_only" env:"PROCURE_SERVER_HTTP_ONLY"`
	ShutdownTimeout int    `yaml:"shutdown_timeout" env:"PROCURE_SERVER_SHUTDOWN_TIMEOUT"`
}

// SecurityConfig holds the TLS configuration details.
type SecurityConfig struct {
	CertFile string `yaml:"cert_file" env:"PROCURE_SECURITY_CERT_FILE"`
	KeyFile  string `yaml:"key_file" env:"PROCURE_SECURITY_KEY_FILE"`
}

// CORSConfig holds the cross origin configuration.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"PROCURE_CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// CacheConfig holds the response cache configuration. Durations are in milliseconds unless noted.
type CacheConfig struct {
	Disabled             bool     `yaml:"disabled" env:"PROCURE_CACHE_DISABLED"`
	DefaultTTL           int64    `yaml:"default_ttl" env:"PROCURE_CACHE_DEFAULT_TTL"`
	MaxAge               int      `yaml:"max_age" env:"PROCURE_CACHE_MAX_AGE"` // seconds
	EnableCompression    *bool    `yaml:"enable_compression" env:"PROCURE_CACHE_ENABLE_COMPRESSION"`
	CompressionThreshold int      `yaml:"compression_threshold" env:"PROCURE_CACHE_COMPRESSION_THRESHOLD"`
	EnableETag           *bool    `yaml:"enable_etag" env:"PROCURE_CACHE_ENABLE_ETAG"`
	EnableLastModified   *bool    `yaml:"enable_last_modified" env:"PROCURE_CACHE_ENABLE_LAST_MODIFIED"`
	VaryHeaders          []string `yaml:"vary_headers" env:"PROCURE_CACHE_VARY_HEADERS" envSeparator:","`
	SkipPaths            []string `yaml:"skip_paths" env:"PROCURE_CACHE_SKIP_PATHS" envSeparator:","`
	SkipMethods          []string `yaml:"skip_methods" env:"PROCURE_CACHE_SKIP_METHODS" envSeparator:","`
	Debug                bool     `yaml:"debug" env:"PROCURE_CACHE_DEBUG"`
	CleanupInterval      int      `yaml:"cleanup_interval" env:"PROCURE_CACHE_CLEANUP_INTERVAL"` // seconds
	MaxEntries           int      `yaml:"max_entries" env:"PROCURE_CACHE_MAX_ENTRIES"`
}

// NotificationConfig holds the notification queue configuration. Durations are in milliseconds.
type NotificationConfig struct {
	BatchSize     int `yaml:"batch_size" env:"PROCURE_NOTIFICATION_BATCH_SIZE"`
	BatchDelay    int `yaml:"batch_delay" env:"PROCURE_NOTIFICATION_BATCH_DELAY"`
	DrainInterval int `yaml:"drain_interval" env:"PROCURE_NOTIFICATION_DRAIN_INTERVAL"`
	HistoryLimit  int `yaml:"history_limit" env:"PROCURE_NOTIFICATION_HISTORY_LIMIT"`
	LookupTimeout int `yaml:"lookup_timeout" env:"PROCURE_NOTIFICATION_LOOKUP_TIMEOUT"`
}

// AlertThresholds holds the limits that raise performance alerts.
type AlertThresholds struct {
	ResponseTime    int     `yaml:"response_time" env:"PROCURE_ALERT_RESPONSE_TIME"` // milliseconds
	MemoryUsageMB   int     `yaml:"memory_usage_mb" env:"PROCURE_ALERT_MEMORY_USAGE_MB"`
	CacheHitRate    float64 `yaml:"cache_hit_rate" env:"PROCURE_ALERT_CACHE_HIT_RATE"`
	WebSocketErrors int     `yaml:"websocket_errors" env:"PROCURE_ALERT_WEBSOCKET_ERRORS"`
}

// PerformanceConfig holds the performance monitor configuration.
type PerformanceConfig struct {
	SamplingInterval     int             `yaml:"sampling_interval" env:"PROCURE_PERFORMANCE_SAMPLING_INTERVAL"` // seconds
	Retention            int             `yaml:"retention" env:"PROCURE_PERFORMANCE_RETENTION"`                 // hours
	SlowRequestThreshold int             `yaml:"slow_request_threshold" env:"PROCURE_PERFORMANCE_SLOW_REQUEST_THRESHOLD"`
	Thresholds           AlertThresholds `yaml:"thresholds"`
}

// DataSource holds the individual database connection details.
type DataSource struct {
	Type            string `yaml:"type" env:"PROCURE_DB_TYPE"`
	Hostname        string `yaml:"hostname" env:"PROCURE_DB_HOSTNAME"`
	Port            int    `yaml:"port" env:"PROCURE_DB_PORT"`
	Name            string `yaml:"name" env:"PROCURE_DB_NAME"`
	Username        string `yaml:"username" env:"PROCURE_DB_USERNAME"`
	Password        string `yaml:"password" env:"PROCURE_DB_PASSWORD"`
	SSLMode         string `yaml:"sslmode" env:"PROCURE_DB_SSLMODE"`
	Path            string `yaml:"path" env:"PROCURE_DB_PATH"`
	Options         string `yaml:"options" env:"PROCURE_DB_OPTIONS"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"PROCURE_DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"PROCURE_DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime" env:"PROCURE_DB_CONN_MAX_LIFETIME"` // seconds
}

// DatabaseConfig holds the database configuration details.
type DatabaseConfig struct {
	Directory DataSource `yaml:"directory"`
	// SeedFile holds the users and purchase requests loaded into the directory at startup.
	SeedFile string `yaml:"seed_file" env:"PROCURE_DIRECTORY_SEED_FILE"`
}

// RedisConfig holds the Redis pub/sub broadcaster configuration.
type RedisConfig struct {
	Enabled       bool   `yaml:"enabled" env:"PROCURE_REDIS_ENABLED"`
	Address       string `yaml:"address" env:"PROCURE_REDIS_ADDRESS"`
	Password      string `yaml:"password" env:"PROCURE_REDIS_PASSWORD"`
	DB            int    `yaml:"db" env:"PROCURE_REDIS_DB"`
	ChannelPrefix string `yaml:"channel_prefix" env:"PROCURE_REDIS_CHANNEL_PREFIX"`
}

// WebSocketConfig holds the websocket hub configuration.
type WebSocketConfig struct {
	Path           string `yaml:"path" env:"PROCURE_WS_PATH"`
	WriteTimeout   int    `yaml:"write_timeout" env:"PROCURE_WS_WRITE_TIMEOUT"` // seconds
	SendBufferSize int    `yaml:"send_buffer_size" env:"PROCURE_WS_SEND_BUFFER_SIZE"`
}

// BroadcastConfig holds the realtime delivery configuration.
type BroadcastConfig struct {
	WebSocket WebSocketConfig `yaml:"websocket"`
	Redis     RedisConfig     `yaml:"redis"`
}

// Config holds the complete configuration details of the server.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Security     SecurityConfig     `yaml:"security"`
	CORS         CORSConfig         `yaml:"cors"`
	Cache        CacheConfig        `yaml:"cache"`
	Notification NotificationConfig `yaml:"notification"`
	Performance  PerformanceConfig  `yaml:"performance"`
	Database     DatabaseConfig     `yaml:"database"`
	Broadcast    BroadcastConfig    `yaml:"broadcast"`
}

// LoadConfig loads the configurations from the specified YAML file, then applies
// environment overrides and defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	path = filepath.Clean(path)

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if ferr := file.Close(); ferr != nil {
			log.GetLogger().Error("Failed to close config file", log.Error(ferr))
		}
	}()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills every unset value with its default.
func (c *Config) ApplyDefaults() {
	if c.Server.Hostname == "" {
		c.Server.Hostname = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8090
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10
	}

	cache := &c.Cache
	if cache.DefaultTTL <= 0 {
		cache.DefaultTTL = 300000
	}
	if cache.MaxAge <= 0 {
		cache.MaxAge = 3600
	}
	cache.EnableCompression = boolOrDefault(cache.EnableCompression, true)
	cache.EnableETag = boolOrDefault(cache.EnableETag, true)
	cache.EnableLastModified = boolOrDefault(cache.EnableLastModified, true)
	if cache.CompressionThreshold <= 0 {
		cache.CompressionThreshold = 1024
	}
	if cache.VaryHeaders == nil {
		cache.VaryHeaders = []string{"Accept-Encoding", "Authorization"}
	}
	if cache.SkipPaths == nil {
		cache.SkipPaths = []string{"/ws", "/socket.io", "/health", "/metrics", "/performance"}
	}
	if cache.SkipMethods == nil {
		cache.SkipMethods = []string{"POST", "PUT", "DELETE", "PATCH"}
	}
	if cache.CleanupInterval <= 0 {
		cache.CleanupInterval = 60
	}

	notification := &c.Notification
	if notification.BatchSize <= 0 {
		notification.BatchSize = 10
	}
	if notification.BatchDelay <= 0 {
		notification.BatchDelay = 100
	}
	if notification.DrainInterval <= 0 {
		notification.DrainInterval = 1000
	}
	if notification.HistoryLimit <= 0 {
		notification.HistoryLimit = 1000
	}
	if notification.LookupTimeout <= 0 {
		notification.LookupTimeout = 5000
	}

	perf := &c.Performance
	if perf.SamplingInterval <= 0 {
		perf.SamplingInterval = 60
	}
	if perf.Retention <= 0 {
		perf.Retention = 24
	}
	if perf.SlowRequestThreshold <= 0 {
		perf.SlowRequestThreshold = 1000
	}
	if perf.Thresholds.ResponseTime <= 0 {
		perf.Thresholds.ResponseTime = 1000
	}
	if perf.Thresholds.MemoryUsageMB <= 0 {
		perf.Thresholds.MemoryUsageMB = 512
	}
	if perf.Thresholds.CacheHitRate <= 0 {
		perf.Thresholds.CacheHitRate = 0.5
	}
	if perf.Thresholds.WebSocketErrors <= 0 {
		perf.Thresholds.WebSocketErrors = 10
	}

	if c.Database.SeedFile == "" {
		c.Database.SeedFile = "repository/resources/directory/seed.yaml"
	}

	ws := &c.Broadcast.WebSocket
	if ws.Path == "" {
		ws.Path = "/ws"
	}
	if ws.WriteTimeout <= 0 {
		ws.WriteTimeout = 10
	}
	if ws.SendBufferSize <= 0 {
		ws.SendBufferSize = 64
	}
	if c.Broadcast.Redis.ChannelPrefix == "" {
		c.Broadcast.Redis.ChannelPrefix = "procurehub"
	}
}

// BoolValue dereferences an optional flag, treating nil as false.
func BoolValue(b *bool) bool {
	return b != nil && *b
}

func boolOrDefault(b *bool, def bool) *bool {
	if b != nil {
		return b
	}
	return &def
}
