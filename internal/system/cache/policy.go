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
	"strings"

	serverconst "github.com/procurehub/procurement-server/internal/system/constants"
)

// ShouldSkipRequest reports whether the request bypasses the cache entirely.
func (m *Manager) ShouldSkipRequest(r *http.Request) bool {
	if m.isSkippedMethod(r.Method) || m.isSkippedPath(r.URL.Path) {
		return true
	}
	// Upgrade handshakes are never cacheable.
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return true
	}
	return hasNoCacheDirective(r.Header.Get(serverconst.CacheControlHeaderName))
}

// ShouldCache reports whether a finished response may be stored.
func (m *Manager) ShouldCache(method, requestPath string, statusCode int, header http.Header) bool {
	if m.isSkippedMethod(method) || m.isSkippedPath(requestPath) {
		return false
	}
	if statusCode >= http.StatusBadRequest || statusCode < http.StatusOK || isBodiless(statusCode) {
		return false
	}
	if hasNoCacheDirective(header.Get(serverconst.CacheControlHeaderName)) {
		return false
	}
	// Bodies already encoded by the handler are stored by the handler's own rules.
	return header.Get(serverconst.ContentEncodingHeaderName) == ""
}

func (m *Manager) isSkippedMethod(method string) bool {
	for _, skipped := range m.opts.SkipMethods {
		if strings.EqualFold(skipped, method) {
			return true
		}
	}
	return false
}

func (m *Manager) isSkippedPath(requestPath string) bool {
	for _, prefix := range m.opts.SkipPaths {
		if prefix != "" && strings.HasPrefix(requestPath, prefix) {
			return true
		}
	}
	return false
}

// isBodiless reports statuses whose stored empty body would be replayed to unconditional requests.
func isBodiless(statusCode int) bool {
	switch statusCode {
	case http.StatusNoContent, http.StatusResetContent, http.StatusNotModified:
		return true
	}
	return false
}

func hasNoCacheDirective(cacheControl string) bool {
	for _, directive := range strings.Split(cacheControl, ",") {
		switch strings.ToLower(strings.TrimSpace(directive)) {
		case "no-cache", "no-store", "private":
			return true
		}
	}
	return false
}
