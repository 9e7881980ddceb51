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

package notification

import (
	"github.com/procurehub/procurement-server/internal/directory"
	"github.com/procurehub/procurement-server/internal/system/config"
)

func testDirectoryAdminsOnly() *directory.StaticDirectory {
	return directory.NewStaticDirectory(directory.SeedData{
		Users: []directory.User{{ID: "u-adm", Role: RoleAdmin, Active: true}},
	})
}

func configNotification(batchSize, batchDelay, drainInterval, historyLimit int) config.NotificationConfig {
	return config.NotificationConfig{
		BatchSize:     batchSize,
		BatchDelay:    batchDelay,
		DrainInterval: drainInterval,
		HistoryLimit:  historyLimit,
	}
}
