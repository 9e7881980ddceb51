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

package directory

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/procurehub/procurement-server/internal/system/database/client"
	"github.com/procurehub/procurement-server/internal/system/database/model"
	"github.com/procurehub/procurement-server/tests/mocks/databasemock"
)

type DirectoryStoreTestSuite struct {
	suite.Suite
	mock  sqlmock.Sqlmock
	store *DirectoryStore
	ctx   context.Context
}

func TestDirectoryStoreSuite(t *testing.T) {
	suite.Run(t, new(DirectoryStoreTestSuite))
}

func (suite *DirectoryStoreTestSuite) SetupTest() {
	db, mock, err := sqlmock.New()
	require.NoError(suite.T(), err)

	suite.mock = mock
	suite.store = NewDirectoryStore(client.NewDBClient(model.NewDB(db), "postgres"))
	suite.ctx = context.Background()
}

func (suite *DirectoryStoreTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *DirectoryStoreTestSuite) TestGetUserIDsByRole() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(queryUserIDsByRole.PostgresQuery)).
		WithArgs("buyer").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-buyer-1").AddRow("u-buyer-2"))

	ids, err := suite.store.GetUserIDsByRole(suite.ctx, "buyer")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"u-buyer-1", "u-buyer-2"}, ids)
}

func (suite *DirectoryStoreTestSuite) TestGetUserIDsByDepartmentEmpty() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(queryUserIDsByDepartment.PostgresQuery)).
		WithArgs("dept-ops").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ids, err := suite.store.GetUserIDsByDepartment(suite.ctx, "dept-ops")

	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), ids)
}

func (suite *DirectoryStoreTestSuite) TestGetRequestOwner() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(queryRequestOwner.PostgresQuery)).
		WithArgs("pr-1").
		WillReturnRows(sqlmock.NewRows([]string{"REQUESTER_ID"}).AddRow([]byte("u-7")))

	owner, err := suite.store.GetRequestOwner(suite.ctx, "pr-1")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "u-7", owner)
}

func (suite *DirectoryStoreTestSuite) TestGetRequestOwnerUnknown() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(queryRequestOwner.PostgresQuery)).
		WithArgs("pr-missing").
		WillReturnRows(sqlmock.NewRows([]string{"requester_id"}))

	owner, err := suite.store.GetRequestOwner(suite.ctx, "pr-missing")

	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), owner)
}

func (suite *DirectoryStoreTestSuite) TestLookupFailureIsWrapped() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(queryUserIDsByRole.PostgresQuery)).
		WillReturnError(errors.New("connection refused"))

	ids, err := suite.store.GetUserIDsByRole(suite.ctx, "admin")

	assert.Nil(suite.T(), ids)
	assert.ErrorIs(suite.T(), err, ErrDirectoryUnavailable)
	assert.ErrorContains(suite.T(), err, "connection refused")
}

func (suite *DirectoryStoreTestSuite) TestPing() {
	suite.mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	assert.NoError(suite.T(), suite.store.Ping(suite.ctx))

	suite.mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("down"))
	assert.ErrorIs(suite.T(), suite.store.Ping(suite.ctx), ErrDirectoryUnavailable)
}

func TestDirectoryStoreSkipsNullIDs(t *testing.T) {
	dbClient := &databasemock.MockDBClient{
		MockQuery: func(query model.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
			return []map[string]interface{}{{"id": nil}, {"id": "u-1"}, {"id": int64(42)}}, nil
		},
	}
	store := NewDirectoryStore(dbClient)

	ids, err := store.GetUserIDsByDepartment(context.Background(), "dept-1")

	assert.NoError(t, err)
	assert.Equal(t, []string{"u-1", "42"}, ids)
	require.Len(t, dbClient.QueryCalls, 1)
	assert.Equal(t, queryUserIDsByDepartment.GetID(), dbClient.QueryCalls[0].Query.GetID())
	assert.Equal(t, []interface{}{"dept-1"}, dbClient.QueryCalls[0].Args)
}
