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

import "github.com/procurehub/procurement-server/internal/system/database/model"

var (
	// queryUserIDsByRole selects the active users holding a role.
	queryUserIDsByRole = model.DBQuery{
		ID:            "DRQ-DIR-01",
		PostgresQuery: "SELECT id FROM users WHERE role = $1 AND active = TRUE ORDER BY id",
		SQLiteQuery:   "SELECT id FROM users WHERE role = ? AND active = 1 ORDER BY id",
	}
	// queryUserIDsByDepartment selects the active members of a department.
	queryUserIDsByDepartment = model.DBQuery{
		ID:            "DRQ-DIR-02",
		PostgresQuery: "SELECT id FROM users WHERE department_id = $1 AND active = TRUE ORDER BY id",
		SQLiteQuery:   "SELECT id FROM users WHERE department_id = ? AND active = 1 ORDER BY id",
	}
	// queryRequestOwner selects the requester of a purchase request.
	queryRequestOwner = model.DBQuery{
		ID:            "DRQ-DIR-03",
		PostgresQuery: "SELECT requester_id FROM purchase_requests WHERE id = $1",
		SQLiteQuery:   "SELECT requester_id FROM purchase_requests WHERE id = ?",
	}
	// queryPing is a cheap round trip used by readiness checks.
	queryPing = model.DBQuery{
		ID:    "DRQ-DIR-04",
		Query: "SELECT 1",
	}
)

var (
	createUsersTable = model.DBQuery{
		ID: "DRQ-DIR-10",
		PostgresQuery: `CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255),
			role VARCHAR(64) NOT NULL,
			department_id VARCHAR(64),
			active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		SQLiteQuery: `CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT,
			role TEXT NOT NULL,
			department_id TEXT,
			active INTEGER NOT NULL DEFAULT 1
		)`,
	}
	createPurchaseRequestsTable = model.DBQuery{
		ID: "DRQ-DIR-11",
		PostgresQuery: `CREATE TABLE IF NOT EXISTS purchase_requests (
			id VARCHAR(64) PRIMARY KEY,
			number VARCHAR(64),
			requester_id VARCHAR(64) NOT NULL REFERENCES users (id),
			department_id VARCHAR(64),
			phase VARCHAR(64)
		)`,
		SQLiteQuery: `CREATE TABLE IF NOT EXISTS purchase_requests (
			id TEXT PRIMARY KEY,
			number TEXT,
			requester_id TEXT NOT NULL REFERENCES users (id),
			department_id TEXT,
			phase TEXT
		)`,
	}
	insertUser = model.DBQuery{
		ID: "DRQ-DIR-12",
		PostgresQuery: "INSERT INTO users (id, name, email, role, department_id, active) " +
			"VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING",
		SQLiteQuery: "INSERT OR IGNORE INTO users (id, name, email, role, department_id, active) " +
			"VALUES (?, ?, ?, ?, ?, ?)",
	}
	insertPurchaseRequest = model.DBQuery{
		ID: "DRQ-DIR-13",
		PostgresQuery: "INSERT INTO purchase_requests (id, number, requester_id, department_id, phase) " +
			"VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING",
		SQLiteQuery: "INSERT OR IGNORE INTO purchase_requests (id, number, requester_id, department_id, phase) " +
			"VALUES (?, ?, ?, ?, ?)",
	}
)
