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

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/procurehub/procurement-server/internal/directory"
	"github.com/procurehub/procurement-server/internal/notification"
	"github.com/procurehub/procurement-server/internal/system/config"
)

const testSeed = `users:
  - id: "usr-admin"
    role: "admin"
    department_id: "dep-it"
    active: true
  - id: "usr-buyer"
    role: "buyer"
    department_id: "dep-purchasing"
    active: true
purchase_requests: []
`

type ServiceManagerTestSuite struct {
	suite.Suite
	home string
	cfg  *config.Config
}

func TestServiceManagerTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceManagerTestSuite))
}

func (suite *ServiceManagerTestSuite) SetupTest() {
	suite.home = suite.T().TempDir()
	require.NoError(suite.T(), os.WriteFile(filepath.Join(suite.home, "seed.yaml"), []byte(testSeed), 0o600))

	suite.cfg = &config.Config{}
	suite.cfg.Server.HTTPOnly = true
	suite.cfg.CORS.AllowedOrigins = []string{"https://app.procurehub.io"}
	suite.cfg.Database.SeedFile = "seed.yaml"
	suite.cfg.Notification.BatchDelay = 1
	suite.cfg.Notification.DrainInterval = 20
	suite.cfg.ApplyDefaults()
}

func (suite *ServiceManagerTestSuite) startServer() (*serviceManager, *httptest.Server) {
	sm, err := newServiceManager(context.Background(), suite.cfg, suite.home)
	require.NoError(suite.T(), err)

	mux := http.NewServeMux()
	sm.registerServices(mux)
	server := httptest.NewServer(sm.handler(mux))

	suite.T().Cleanup(func() {
		server.Close()
		sm.destroy()
	})
	return sm, server
}

func (suite *ServiceManagerTestSuite) TestStaticDirectoryWhenNoDatabase() {
	sm, server := suite.startServer()

	_, ok := sm.directory.(*directory.StaticDirectory)
	assert.True(suite.T(), ok)
	assert.Nil(suite.T(), sm.dbProvider)

	resp, err := http.Get(server.URL + "/health/liveness")
	require.NoError(suite.T(), err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
}

func (suite *ServiceManagerTestSuite) TestSQLiteDirectoryIsBootstrapped() {
	suite.cfg.Database.Directory = config.DataSource{Type: "sqlite", Path: "directory.db"}

	sm, server := suite.startServer()

	_, ok := sm.directory.(*directory.DirectoryStore)
	assert.True(suite.T(), ok)

	buyers, err := sm.directory.GetUserIDsByRole(context.Background(), notification.RoleBuyer)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"usr-buyer"}, buyers)

	resp, err := http.Get(server.URL + "/health/readiness")
	require.NoError(suite.T(), err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
}

func (suite *ServiceManagerTestSuite) TestMissingSeedFileYieldsEmptyDirectory() {
	suite.cfg.Database.SeedFile = "missing.yaml"

	sm, _ := suite.startServer()

	admins, err := sm.directory.GetUserIDsByRole(context.Background(), notification.RoleAdmin)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), admins)
}

func (suite *ServiceManagerTestSuite) TestInvalidDatabaseTypeFails() {
	suite.cfg.Database.Directory = config.DataSource{Type: "oracle"}

	sm, err := newServiceManager(context.Background(), suite.cfg, suite.home)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), sm)
}

func (suite *ServiceManagerTestSuite) TestNotificationRoundTrip() {
	_, server := suite.startServer()

	body := `{"resource":"supplier","action":"created","entityId":"sup-1","userId":"usr-buyer",` +
		`"data":{"name":"Acme","status":"active","taxId":"secret"}}`
	req, err := http.NewRequest(http.MethodPost, server.URL+"/notifications/events", strings.NewReader(body))
	require.NoError(suite.T(), err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://app.procurehub.io")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(suite.T(), err)
	_ = resp.Body.Close()
	assert.Equal(suite.T(), http.StatusAccepted, resp.StatusCode)
	assert.Equal(suite.T(), "https://app.procurehub.io", resp.Header.Get("Access-Control-Allow-Origin"))

	var history []notification.ProcessedEvent
	assert.Eventually(suite.T(), func() bool {
		resp, err := http.Get(server.URL + "/notifications/history")
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		history = nil
		if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
			return false
		}
		return len(history) == 1
	}, 2*time.Second, 20*time.Millisecond)

	require.Len(suite.T(), history, 1)
	assert.Equal(suite.T(), "sup-1", history[0].EntityID)
	assert.ElementsMatch(suite.T(), []string{"usr-buyer", "usr-admin"}, history[0].Recipients)
	assert.NotContains(suite.T(), history[0].Data, "taxId")
}

func (suite *ServiceManagerTestSuite) TestPreflightAndMetricsRoutes() {
	_, server := suite.startServer()

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/notifications/events", nil)
	require.NoError(suite.T(), err)
	req.Header.Set("Origin", "https://app.procurehub.io")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(suite.T(), err)
	_ = resp.Body.Close()
	assert.Equal(suite.T(), http.StatusNoContent, resp.StatusCode)
	assert.Contains(suite.T(), resp.Header.Get("Access-Control-Allow-Headers"), "X-User-ID")

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(suite.T(), err)
	_ = resp.Body.Close()
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/performance/summary")
	require.NoError(suite.T(), err)
	_ = resp.Body.Close()
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
}

func (suite *ServiceManagerTestSuite) TestDestroyIsSafeToRepeat() {
	sm, err := newServiceManager(context.Background(), suite.cfg, suite.home)
	require.NoError(suite.T(), err)

	assert.NotPanics(suite.T(), func() {
		sm.destroy()
		sm.destroy()
	})
}
