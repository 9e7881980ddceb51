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
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MiddlewareTestSuite struct {
	suite.Suite
	manager *Manager
	calls   int
	status  int
	body    []byte
	header  map[string]string
}

func TestMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}

func (suite *MiddlewareTestSuite) SetupTest() {
	suite.manager = newManager(DefaultOptions(), newFakeClock().Now)
	suite.calls = 0
	suite.status = http.StatusOK
	suite.body = []byte(`{"id":"pr-1","status":"draft"}`)
	suite.header = map[string]string{"Content-Type": "application/json"}
}

func (suite *MiddlewareTestSuite) TearDownTest() {
	suite.manager.Destroy()
}

func (suite *MiddlewareTestSuite) handler() http.Handler {
	return suite.manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.calls++
		for name, value := range suite.header {
			w.Header().Set(name, value)
		}
		w.WriteHeader(suite.status)
		_, _ = w.Write(suite.body)
	}))
}

func (suite *MiddlewareTestSuite) serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func newGet(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func (suite *MiddlewareTestSuite) TestMissThenHit() {
	h := suite.handler()

	first := suite.serve(h, newGet("/api/purchase-requests"))
	assert.Equal(suite.T(), http.StatusOK, first.Code)
	assert.Equal(suite.T(), "MISS", first.Header().Get("X-Cache"))
	assert.Equal(suite.T(), string(suite.body), first.Body.String())

	second := suite.serve(h, newGet("/api/purchase-requests"))
	assert.Equal(suite.T(), http.StatusOK, second.Code)
	assert.Equal(suite.T(), "HIT", second.Header().Get("X-Cache"))
	assert.Equal(suite.T(), string(suite.body), second.Body.String())
	assert.Equal(suite.T(), "application/json", second.Header().Get("Content-Type"))
	assert.Equal(suite.T(), generateETag(suite.body), second.Header().Get("ETag"))
	assert.NotEmpty(suite.T(), second.Header().Get("Last-Modified"))
	assert.Equal(suite.T(), "public, max-age=3600", second.Header().Get("Cache-Control"))

	assert.Equal(suite.T(), 1, suite.calls)
	stats := suite.manager.GetStats()
	assert.Equal(suite.T(), int64(1), stats.Hits)
	assert.Equal(suite.T(), int64(1), stats.Misses)
}

func (suite *MiddlewareTestSuite) TestVaryHeadersIsolateUsers() {
	h := suite.handler()

	reqA := newGet("/api/purchase-requests")
	reqA.Header.Set("Authorization", "Bearer token-a")
	suite.serve(h, reqA)

	reqB := newGet("/api/purchase-requests")
	reqB.Header.Set("Authorization", "Bearer token-b")
	rrB := suite.serve(h, reqB)

	assert.Equal(suite.T(), "MISS", rrB.Header().Get("X-Cache"))
	assert.Equal(suite.T(), 2, suite.calls)
}

func (suite *MiddlewareTestSuite) TestIfNoneMatchReturnsNotModified() {
	h := suite.handler()
	suite.serve(h, newGet("/api/suppliers"))

	req := newGet("/api/suppliers")
	req.Header.Set("If-None-Match", generateETag(suite.body))
	rr := suite.serve(h, req)

	assert.Equal(suite.T(), http.StatusNotModified, rr.Code)
	assert.Empty(suite.T(), rr.Body.Bytes())
	assert.Empty(suite.T(), rr.Header().Get("X-Cache"))
	assert.Equal(suite.T(), generateETag(suite.body), rr.Header().Get("ETag"))
	assert.Equal(suite.T(), 1, suite.calls)
}

func (suite *MiddlewareTestSuite) TestIfNoneMatchVariants() {
	etag := generateETag(suite.body)
	testCases := []struct {
		name        string
		ifNoneMatch string
		expected    int
	}{
		{"Wildcard", "*", http.StatusNotModified},
		{"List", `"other", ` + etag, http.StatusNotModified},
		{"Weak", "W/" + etag, http.StatusNotModified},
		{"Mismatch", `"other"`, http.StatusOK},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			suite.SetupTest()
			h := suite.handler()
			suite.serve(h, newGet("/api/quotations"))

			req := newGet("/api/quotations")
			req.Header.Set("If-None-Match", tc.ifNoneMatch)
			rr := suite.serve(h, req)
			assert.Equal(t, tc.expected, rr.Code)
		})
	}
}

func (suite *MiddlewareTestSuite) TestIfModifiedSince() {
	h := suite.handler()
	first := suite.serve(h, newGet("/api/purchase-orders"))
	require.Equal(suite.T(), http.StatusOK, first.Code)

	entryTime := newFakeClock().Now()

	req := newGet("/api/purchase-orders")
	req.Header.Set("If-Modified-Since", entryTime.Format(http.TimeFormat))
	assert.Equal(suite.T(), http.StatusNotModified, suite.serve(h, req).Code)

	req = newGet("/api/purchase-orders")
	req.Header.Set("If-Modified-Since", entryTime.Add(-time.Minute).Format(http.TimeFormat))
	assert.Equal(suite.T(), http.StatusOK, suite.serve(h, req).Code)

	req = newGet("/api/purchase-orders")
	req.Header.Set("If-Modified-Since", "not a date")
	assert.Equal(suite.T(), http.StatusOK, suite.serve(h, req).Code)
}

func (suite *MiddlewareTestSuite) TestNoCacheResponseNotStored() {
	suite.header["Cache-Control"] = "no-cache"
	h := suite.handler()

	suite.serve(h, newGet("/api/users"))
	rr := suite.serve(h, newGet("/api/users"))

	assert.Equal(suite.T(), "MISS", rr.Header().Get("X-Cache"))
	assert.Equal(suite.T(), 2, suite.calls)
	assert.Equal(suite.T(), int64(0), suite.manager.GetStats().Sets)
}

func (suite *MiddlewareTestSuite) TestErrorResponsesNotStored() {
	for _, status := range []int{400, 401, 404, 409, 500, 503} {
		suite.T().Run(http.StatusText(status), func(t *testing.T) {
			suite.SetupTest()
			suite.status = status
			h := suite.handler()

			suite.serve(h, newGet("/api/purchase-requests/9"))
			rr := suite.serve(h, newGet("/api/purchase-requests/9"))

			assert.Equal(t, status, rr.Code)
			assert.Equal(t, 2, suite.calls)
			assert.Equal(t, int64(0), suite.manager.GetStats().Sets)
		})
	}
}

func (suite *MiddlewareTestSuite) TestHandlerNotModifiedNotStored() {
	suite.status = http.StatusNotModified
	suite.body = nil
	h := suite.handler()

	conditional := newGet("/api/purchase-requests/5")
	conditional.Header.Set("If-None-Match", `"client-copy"`)
	rr := suite.serve(h, conditional)
	assert.Equal(suite.T(), http.StatusNotModified, rr.Code)
	assert.Equal(suite.T(), int64(0), suite.manager.GetStats().Sets)

	suite.status = http.StatusOK
	suite.body = []byte(`{"id":"pr-5"}`)
	rr = suite.serve(h, newGet("/api/purchase-requests/5"))

	assert.Equal(suite.T(), http.StatusOK, rr.Code)
	assert.Equal(suite.T(), 2, suite.calls)
	assert.Equal(suite.T(), "MISS", rr.Header().Get("X-Cache"))
	assert.Equal(suite.T(), `{"id":"pr-5"}`, rr.Body.String())
}

func (suite *MiddlewareTestSuite) TestNoContentNotStored() {
	suite.status = http.StatusNoContent
	suite.body = nil
	h := suite.handler()

	suite.serve(h, newGet("/api/purchase-requests/6"))
	rr := suite.serve(h, newGet("/api/purchase-requests/6"))

	assert.Equal(suite.T(), http.StatusNoContent, rr.Code)
	assert.Equal(suite.T(), 2, suite.calls)
	assert.Equal(suite.T(), int64(0), suite.manager.GetStats().Sets)
}

func (suite *MiddlewareTestSuite) TestSkippedMethodsAndPaths() {
	h := suite.handler()

	for i := 0; i < 2; i++ {
		suite.serve(h, httptest.NewRequest(http.MethodPost, "/api/purchase-requests", nil))
		suite.serve(h, newGet("/health/readiness"))
		suite.serve(h, newGet("/metrics"))
	}

	assert.Equal(suite.T(), 6, suite.calls)
	assert.Equal(suite.T(), int64(0), suite.manager.GetStats().Sets)
}

func (suite *MiddlewareTestSuite) TestGzipPassthrough() {
	suite.body = bytes.Repeat([]byte(`{"id":"q-1","supplier":"ACME"},`), 100)
	h := suite.handler()

	req := newGet("/api/quotations")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	suite.serve(h, req)

	req = newGet("/api/quotations")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rr := suite.serve(h, req)

	assert.Equal(suite.T(), "HIT", rr.Header().Get("X-Cache"))
	assert.Equal(suite.T(), "gzip", rr.Header().Get("Content-Encoding"))
	raw, err := decompress(rr.Body.Bytes())
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.body, raw)
}

func (suite *MiddlewareTestSuite) TestCompressedEntryServedRawWithoutGzip() {
	suite.body = bytes.Repeat([]byte(`{"id":"q-1","supplier":"ACME"},`), 100)
	h := suite.handler()

	suite.serve(h, newGet("/api/quotations"))
	rr := suite.serve(h, newGet("/api/quotations"))

	assert.Equal(suite.T(), "HIT", rr.Header().Get("X-Cache"))
	assert.Empty(suite.T(), rr.Header().Get("Content-Encoding"))
	assert.Equal(suite.T(), suite.body, rr.Body.Bytes())
}

func (suite *MiddlewareTestSuite) TestCorruptEntryFallsThrough() {
	h := suite.handler()
	req := newGet("/api/suppliers")
	suite.serve(h, req)

	key := GenerateCacheKey(req, suite.manager.opts.VaryHeaders)
	suite.manager.mu.Lock()
	stored := suite.manager.entries[key]
	stored.CacheEntry = &CacheEntry{Data: []byte("not gzip"), Compressed: true, TTL: defaultTTL,
		Timestamp: stored.Timestamp, Size: 8}
	suite.manager.mu.Unlock()

	rr := suite.serve(h, newGet("/api/suppliers"))
	assert.Equal(suite.T(), http.StatusOK, rr.Code)
	assert.Equal(suite.T(), string(suite.body), rr.Body.String())
	assert.Equal(suite.T(), 2, suite.calls)
}

func (suite *MiddlewareTestSuite) TestHeadersNotMutatedAfterSend() {
	rr := httptest.NewRecorder()
	rec := newResponseRecorder(rr, cacheStatusMiss)

	_, err := rec.Write([]byte("streamed"))
	require.NoError(suite.T(), err)

	assert.True(suite.T(), rec.HeadersSent())
	assert.False(suite.T(), rec.setHeader("X-Late", "value"))
	assert.Equal(suite.T(), "MISS", rr.Header().Get("X-Cache"))
	assert.Equal(suite.T(), http.StatusOK, rec.StatusCode())
	assert.Equal(suite.T(), "streamed", string(rec.Body()))
}

func (suite *MiddlewareTestSuite) TestDisabledCachePassesThrough() {
	opts := DefaultOptions()
	opts.Disabled = true
	suite.manager = newManager(opts, newFakeClock().Now)
	h := suite.handler()

	suite.serve(h, newGet("/api/users"))
	rr := suite.serve(h, newGet("/api/users"))
	assert.Empty(suite.T(), rr.Header().Get("X-Cache"))
	assert.Equal(suite.T(), 2, suite.calls)
}

func (suite *MiddlewareTestSuite) TestAcceptsGzip() {
	testCases := []struct {
		header   string
		expected bool
	}{
		{"gzip", true},
		{"deflate, gzip;q=0.8", true},
		{"*", true},
		{"gzip;q=0", false},
		{"br", false},
		{"", false},
	}

	for _, tc := range testCases {
		req := newGet("/")
		req.Header.Set("Accept-Encoding", tc.header)
		assert.Equal(suite.T(), tc.expected, acceptsGzip(req), strings.TrimSpace(tc.header))
	}
}
