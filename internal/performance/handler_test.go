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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type HandlerTestSuite struct {
	suite.Suite
	clock   *fakeClock
	monitor *Monitor
	handler *Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (suite *HandlerTestSuite) SetupTest() {
	suite.clock = &fakeClock{current: time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)}
	suite.monitor = newMonitor(DefaultConfig(), suite.clock.Now)
	suite.monitor.sampleStats = func() SystemMetrics { return SystemMetrics{HeapUsed: bytesPerMB} }
	suite.handler = NewHandler(suite.monitor)
}

func (suite *HandlerTestSuite) TearDownTest() {
	suite.monitor.Destroy()
}

func (suite *HandlerTestSuite) TestMetricsWithRefresh() {
	suite.monitor.RecordRequest(50 * time.Millisecond)

	rr := httptest.NewRecorder()
	suite.handler.HandleMetricsRequest(rr, httptest.NewRequest(http.MethodGet, "/performance/metrics?refresh=true", nil))

	require.Equal(suite.T(), http.StatusOK, rr.Code)
	var resp metricsResponse
	require.NoError(suite.T(), json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(suite.T(), resp.Latest)
	assert.Equal(suite.T(), 1, resp.Latest.Requests.Count)
	assert.Len(suite.T(), resp.History, 1)
}

func (suite *HandlerTestSuite) TestMetricsWithoutSnapshots() {
	rr := httptest.NewRecorder()
	suite.handler.HandleMetricsRequest(rr, httptest.NewRequest(http.MethodGet, "/performance/metrics", nil))

	require.Equal(suite.T(), http.StatusOK, rr.Code)
	assert.JSONEq(suite.T(), `{"latest":null,"history":[]}`, rr.Body.String())
}

func (suite *HandlerTestSuite) TestInvalidWindow() {
	testCases := []struct {
		name   string
		target string
		serve  func(w http.ResponseWriter, r *http.Request)
	}{
		{"Metrics", "/performance/metrics?minutes=abc", suite.handler.HandleMetricsRequest},
		{"Alerts", "/performance/alerts?minutes=-1", suite.handler.HandleAlertsRequest},
		{"Summary", "/performance/summary?hours=0", suite.handler.HandleSummaryRequest},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tc.serve(rr, httptest.NewRequest(http.MethodGet, tc.target, nil))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), "PRF-60001")
		})
	}
}

func (suite *HandlerTestSuite) TestAlertsAndSummary() {
	suite.monitor.RecordRequest(5 * time.Second)
	_, err := suite.monitor.CollectNow()
	require.NoError(suite.T(), err)

	rr := httptest.NewRecorder()
	suite.handler.HandleAlertsRequest(rr, httptest.NewRequest(http.MethodGet, "/performance/alerts?minutes=10", nil))
	require.Equal(suite.T(), http.StatusOK, rr.Code)
	var alerts []Alert
	require.NoError(suite.T(), json.Unmarshal(rr.Body.Bytes(), &alerts))
	require.Len(suite.T(), alerts, 1)
	assert.Equal(suite.T(), "averageResponseTime", alerts[0].Metric)

	rr = httptest.NewRecorder()
	suite.handler.HandleSummaryRequest(rr, httptest.NewRequest(http.MethodGet, "/performance/summary", nil))
	require.Equal(suite.T(), http.StatusOK, rr.Code)
	var report SummaryReport
	require.NoError(suite.T(), json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(suite.T(), 24, report.PeriodHours)
	assert.Equal(suite.T(), 1, report.TotalAlerts)
}

func (suite *HandlerTestSuite) TestExporter() {
	exporter := NewExporter(suite.monitor)
	defer exporter.Close()

	suite.monitor.RecordRequest(20 * time.Millisecond)
	suite.monitor.RecordCustomMetric("pending_approvals", 12)
	suite.monitor.RecordCacheMetrics(0.1, 0.9, 100, 10)
	_, err := suite.monitor.CollectNow()
	require.NoError(suite.T(), err)

	rr := httptest.NewRecorder()
	exporter.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(suite.T(), http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(suite.T(), body, "procurehub_http_requests_total 1")
	assert.Contains(suite.T(), body, `procurehub_custom_metric{name="pending_approvals"} 12`)
	assert.Contains(suite.T(), body, `procurehub_alerts_total{metric="cacheHitRate",type="warning"} 1`)
	assert.True(suite.T(), strings.Contains(body, "go_goroutines"))
}

func (suite *HandlerTestSuite) TestRequestTimingHandler() {
	h := RequestTimingHandler(suite.monitor, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/suppliers", nil))
		assert.Equal(suite.T(), http.StatusNoContent, rr.Code)
	}

	snapshot, err := suite.monitor.CollectNow()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, snapshot.Requests.Count)
}
