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
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"

	"github.com/procurehub/procurement-server/internal/system/database/client"
	"github.com/procurehub/procurement-server/internal/system/database/model"
	"github.com/procurehub/procurement-server/internal/system/log"
)

// LoadSeedData reads directory seed records from a YAML file.
func LoadSeedData(path string) (SeedData, error) {
	var seed SeedData

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return seed, err
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return seed, fmt.Errorf("failed to parse directory seed file %s: %w", path, err)
	}
	return seed, nil
}

// Bootstrapper creates the directory schema and loads seed records.
type Bootstrapper struct {
	dbClient client.DBClientInterface
}

// NewBootstrapper creates a new instance of Bootstrapper.
func NewBootstrapper(dbClient client.DBClientInterface) *Bootstrapper {
	return &Bootstrapper{dbClient: dbClient}
}

// Bootstrap creates the tables when missing and inserts the seed records that are not
// present yet. Everything runs in one transaction.
func (b *Bootstrapper) Bootstrap(ctx context.Context, seed SeedData) (err error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "DirectoryBootstrapper"))
	logger.Info("Bootstrapping user directory", log.Int("users", len(seed.Users)),
		log.Int("purchaseRequests", len(seed.PurchaseRequests)))

	tx, err := b.dbClient.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Failed to rollback directory bootstrap", log.Error(rbErr))
		}
	}()

	for _, stmt := range []model.DBQuery{createUsersTable, createPurchaseRequestsTable} {
		if _, err = tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create directory schema (%s): %w", stmt.GetID(), err)
		}
	}

	for _, u := range seed.Users {
		if _, err = tx.Exec(ctx, insertUser, u.ID, u.Name, u.Email, u.Role, u.DepartmentID, u.Active); err != nil {
			return fmt.Errorf("failed to insert user %s: %w", u.ID, err)
		}
		logger.Debug("Seeded user", log.String("userID", log.MaskString(u.ID)), log.String("role", u.Role))
	}

	for _, pr := range seed.PurchaseRequests {
		if _, err = tx.Exec(ctx, insertPurchaseRequest, pr.ID, pr.Number, pr.RequesterID, pr.DepartmentID,
			pr.Phase); err != nil {
			return fmt.Errorf("failed to insert purchase request %s: %w", pr.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit directory bootstrap: %w", err)
	}

	logger.Info("User directory bootstrap completed")
	return nil
}
