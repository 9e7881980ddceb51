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

// User is a directory entry used for recipient resolution.
type User struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Email        string `yaml:"email"`
	Role         string `yaml:"role"`
	DepartmentID string `yaml:"department_id"`
	Active       bool   `yaml:"active"`
}

// PurchaseRequest is the minimal purchase request record needed to find its requester.
type PurchaseRequest struct {
	ID           string `yaml:"id"`
	Number       string `yaml:"number"`
	RequesterID  string `yaml:"requester_id"`
	DepartmentID string `yaml:"department_id"`
	Phase        string `yaml:"phase"`
}

// SeedData holds the records loaded into an empty directory database.
type SeedData struct {
	Users            []User            `yaml:"users"`
	PurchaseRequests []PurchaseRequest `yaml:"purchase_requests"`
}
