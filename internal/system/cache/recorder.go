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
	"bufio"
	"bytes"
	"errors"
	"net"
	"net/http"

	serverconst "github.com/procurehub/procurement-server/internal/system/constants"
)

// responseRecorder forwards writes to the client while keeping a copy of the body.
type responseRecorder struct {
	http.ResponseWriter
	body        bytes.Buffer
	statusCode  int
	wroteHeader bool
	cacheStatus string
}

func newResponseRecorder(w http.ResponseWriter, cacheStatus string) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK, cacheStatus: cacheStatus}
}

// WriteHeader stamps the cache marker while headers are still mutable.
func (r *responseRecorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.setHeader(serverconst.XCacheHeaderName, r.cacheStatus)
	r.wroteHeader = true
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// setHeader mutates headers only until they are sent.
func (r *responseRecorder) setHeader(name, value string) bool {
	if value == "" || r.HeadersSent() {
		return false
	}
	r.Header().Set(name, value)
	return true
}

// HeadersSent reports whether the status line has been written to the client.
func (r *responseRecorder) HeadersSent() bool {
	return r.wroteHeader
}

func (r *responseRecorder) Flush() {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// StatusCode returns the status written by the handler.
func (r *responseRecorder) StatusCode() int {
	return r.statusCode
}

// Body returns the captured response body.
func (r *responseRecorder) Body() []byte {
	return r.body.Bytes()
}
