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
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"
)

// RequestRecorder receives the duration of every served request.
type RequestRecorder interface {
	RecordRequest(d time.Duration)
}

// RequestTimingHandler records the response time of every request that is not upgraded.
func RequestTimingHandler(recorder RequestRecorder, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		tw := &timingResponseWriter{ResponseWriter: w}
		next.ServeHTTP(tw, r)

		if !tw.hijacked {
			recorder.RecordRequest(time.Since(start))
		}
	})
}

type timingResponseWriter struct {
	http.ResponseWriter
	hijacked bool
}

func (tw *timingResponseWriter) Flush() {
	if flusher, ok := tw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (tw *timingResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := tw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support hijacking")
	}
	conn, rw, err := hijacker.Hijack()
	if err == nil {
		tw.hijacked = true
	}
	return conn, rw, err
}

func (tw *timingResponseWriter) Unwrap() http.ResponseWriter {
	return tw.ResponseWriter
}
