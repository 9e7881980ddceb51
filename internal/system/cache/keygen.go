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
	"crypto/md5" //nolint:gosec // Content fingerprint for ETags, not a security boundary.
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"path"
	"strings"

	serverconst "github.com/procurehub/procurement-server/internal/system/constants"
)

const anonymousUser = "anonymous"

// resolveUserID returns the forwarded user header, or the anonymous identity.
func resolveUserID(r *http.Request) string {
	if userID := r.Header.Get(serverconst.UserIDHeaderName); userID != "" {
		return userID
	}
	return anonymousUser
}

// normalizeURL cleans the path and sorts query parameters so equivalent URLs share a key.
func normalizeURL(r *http.Request) string {
	p := r.URL.Path
	if p == "" {
		p = "/"
	}
	cleaned := path.Clean(p)
	if strings.HasSuffix(p, "/") && cleaned != "/" {
		cleaned += "/"
	}

	query := r.URL.Query().Encode()
	if query == "" {
		return cleaned
	}
	return cleaned + "?" + query
}

// GenerateCacheKey derives a deterministic key from the method, normalized URL,
// user identity and the values of the given vary headers.
func GenerateCacheKey(r *http.Request, varyHeaders []string) CacheKey {
	var builder strings.Builder
	builder.WriteString(r.Method)
	builder.WriteByte('\n')
	builder.WriteString(normalizeURL(r))
	builder.WriteByte('\n')
	builder.WriteString(resolveUserID(r))

	for _, header := range varyHeaders {
		builder.WriteByte('\n')
		builder.WriteString(strings.ToLower(header))
		builder.WriteByte('=')
		builder.WriteString(strings.Join(r.Header.Values(header), ","))
	}

	sum := sha256.Sum256([]byte(builder.String()))
	return CacheKey{Key: hex.EncodeToString(sum[:])}
}

// generateETag returns the quoted MD5 hex digest of the payload.
func generateETag(data []byte) string {
	sum := md5.Sum(data) //nolint:gosec
	return `"` + hex.EncodeToString(sum[:]) + `"`
}
