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

package cache

import (
	"net/http"
	"time"

	"github.com/procurehub/procurement-server/internal/system/config"
)

// Options configures a Manager.
type Options struct {
	Disabled             bool
	DefaultTTL           time.Duration
	MaxAge               time.Duration
	EnableCompression    bool
	CompressionThreshold int
	EnableETag           bool
	EnableLastModified   bool
	VaryHeaders          []string
	SkipPaths            []string
	SkipMethods          []string
	Debug                bool
	CleanupInterval      time.Duration
	// MaxEntries bounds the entry count with LRU eviction. Zero means unbounded.
	MaxEntries int
}

// DefaultOptions returns the default cache options.
func DefaultOptions() Options {
	return Options{
		DefaultTTL:           defaultTTL,
		MaxAge:               defaultMaxAge,
		EnableCompression:    true,
		CompressionThreshold: defaultCompressionThreshold,
		EnableETag:           true,
		EnableLastModified:   true,
		VaryHeaders:          []string{"Accept-Encoding", "Authorization"},
		SkipPaths:            []string{"/ws", "/socket.io", "/health", "/metrics", "/performance"},
		SkipMethods: []string{
			http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch,
		},
		CleanupInterval: defaultCleanupInterval,
	}
}

// OptionsFromConfig builds options from the deployment configuration.
func OptionsFromConfig(cfg config.CacheConfig) Options {
	opts := DefaultOptions()
	opts.Disabled = cfg.Disabled
	opts.Debug = cfg.Debug
	opts.MaxEntries = cfg.MaxEntries

	if cfg.DefaultTTL > 0 {
		opts.DefaultTTL = time.Duration(cfg.DefaultTTL) * time.Millisecond
	}
	if cfg.MaxAge > 0 {
		opts.MaxAge = time.Duration(cfg.MaxAge) * time.Second
	}
	if cfg.EnableCompression != nil {
		opts.EnableCompression = *cfg.EnableCompression
	}
	if cfg.CompressionThreshold > 0 {
		opts.CompressionThreshold = cfg.CompressionThreshold
	}
	if cfg.EnableETag != nil {
		opts.EnableETag = *cfg.EnableETag
	}
	if cfg.EnableLastModified != nil {
		opts.EnableLastModified = *cfg.EnableLastModified
	}
	if cfg.VaryHeaders != nil {
		opts.VaryHeaders = cfg.VaryHeaders
	}
	if cfg.SkipPaths != nil {
		opts.SkipPaths = cfg.SkipPaths
	}
	if cfg.SkipMethods != nil {
		opts.SkipMethods = cfg.SkipMethods
	}
	if cfg.CleanupInterval > 0 {
		opts.CleanupInterval = time.Duration(cfg.CleanupInterval) * time.Second
	}
	return opts
}

func (o *Options) applyDefaults() {
	defaults := DefaultOptions()
	if o.DefaultTTL <= 0 {
		o.DefaultTTL = defaults.DefaultTTL
	}
	if o.MaxAge <= 0 {
		o.MaxAge = defaults.MaxAge
	}
	if o.CompressionThreshold <= 0 {
		o.CompressionThreshold = defaults.CompressionThreshold
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = defaults.CleanupInterval
	}
}
