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

// Package directory resolves users by role, department and request ownership for
// notification recipient resolution.
package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/procurehub/procurement-server/internal/system/database/client"
	"github.com/procurehub/procurement-server/internal/system/database/model"
	"github.com/procurehub/procurement-server/internal/system/log"
)

// ErrDirectoryUnavailable is returned when the backing store cannot answer a lookup.
var ErrDirectoryUnavailable = errors.New("user directory unavailable")

// DirectoryStore answers user lookups from the relational store.
type DirectoryStore struct {
	dbClient client.DBClientInterface
}

// NewDirectoryStore creates a directory backed by the given database client.
func NewDirectoryStore(dbClient client.DBClientInterface) *DirectoryStore {
	return &DirectoryStore{dbClient: dbClient}
}

// GetUserIDsByRole returns the ids of the active users holding the role.
func (s *DirectoryStore) GetUserIDsByRole(ctx context.Context, role string) ([]string, error) {
	return s.queryIDs(ctx, queryUserIDsByRole, "id", role)
}

// GetUserIDsByDepartment returns the ids of the active members of the department.
func (s *DirectoryStore) GetUserIDsByDepartment(ctx context.Context, departmentID string) ([]string, error) {
	return s.queryIDs(ctx, queryUserIDsByDepartment, "id", departmentID)
}

// GetRequestOwner returns the requester of a purchase request, or an empty string when
// the request is unknown.
func (s *DirectoryStore) GetRequestOwner(ctx context.Context, requestID string) (string, error) {
	ids, err := s.queryIDs(ctx, queryRequestOwner, "requester_id", requestID)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

// Ping verifies the store answers queries.
func (s *DirectoryStore) Ping(ctx context.Context) error {
	if _, err := s.dbClient.Query(ctx, queryPing); err != nil {
		return fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	return nil
}

func (s *DirectoryStore) queryIDs(ctx context.Context, query model.DBQuery, column string,
	args ...interface{}) ([]string, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DirectoryStore"))

	results, err := s.dbClient.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Directory lookup failed", log.String("queryID", query.GetID()), log.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}

	ids := make([]string, 0, len(results))
	for _, row := range results {
		id := columnString(row[column])
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// columnString converts a scanned column value into a string. Drivers return text
// either as string or as []byte.
func columnString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
