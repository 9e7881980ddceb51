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
	"sort"
	"sync"
)

// StaticDirectory is an in-memory directory used when no database is configured.
type StaticDirectory struct {
	mu       sync.RWMutex
	users    map[string]User
	requests map[string]PurchaseRequest
}

// NewStaticDirectory creates an in-memory directory holding the given records.
func NewStaticDirectory(seed SeedData) *StaticDirectory {
	d := &StaticDirectory{
		users:    make(map[string]User, len(seed.Users)),
		requests: make(map[string]PurchaseRequest, len(seed.PurchaseRequests)),
	}
	for _, u := range seed.Users {
		d.users[u.ID] = u
	}
	for _, pr := range seed.PurchaseRequests {
		d.requests[pr.ID] = pr
	}
	return d
}

// PutUser adds or replaces a user.
func (d *StaticDirectory) PutUser(u User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

// PutPurchaseRequest adds or replaces a purchase request.
func (d *StaticDirectory) PutPurchaseRequest(pr PurchaseRequest) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests[pr.ID] = pr
}

// GetUserIDsByRole returns the ids of the active users holding the role.
func (d *StaticDirectory) GetUserIDsByRole(_ context.Context, role string) ([]string, error) {
	return d.filter(func(u User) bool { return u.Role == role }), nil
}

// GetUserIDsByDepartment returns the ids of the active members of the department.
func (d *StaticDirectory) GetUserIDsByDepartment(_ context.Context, departmentID string) ([]string, error) {
	return d.filter(func(u User) bool { return u.DepartmentID == departmentID }), nil
}

// GetRequestOwner returns the requester of a purchase request, or an empty string.
func (d *StaticDirectory) GetRequestOwner(_ context.Context, requestID string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.requests[requestID].RequesterID, nil
}

// Ping always succeeds.
func (d *StaticDirectory) Ping(context.Context) error {
	return nil
}

func (d *StaticDirectory) filter(match func(User) bool) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]string, 0)
	for _, u := range d.users {
		if u.Active && match(u) {
			ids = append(ids, u.ID)
		}
	}
	sort.Strings(ids)
	return ids
}
