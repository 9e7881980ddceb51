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
	"time"

	"github.com/procurehub/procurement-server/internal/system/config"
)

const loggerComponentName = "NotificationService"

// Resources that emit notifications.
const (
	ResourcePurchaseRequest = "purchase_request"
	ResourceQuotation       = "quotation"
	ResourcePurchaseOrder   = "purchase_order"
	ResourceSupplier        = "supplier"
	ResourceUser            = "user"
)

// Actions carried by notification events.
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionDeleted       = "deleted"
	ActionStatusChanged = "status_changed"
)

// Roles looked up in the user directory.
const (
	RoleApproverA1 = "approver_a1"
	RoleApproverA2 = "approver_a2"
	RoleBuyer      = "buyer"
	RoleReceiver   = "receiver"
	RoleFiscal     = "fiscal"
	RoleAdmin      = "admin"
)

// Purchase request phases.
const (
	PhaseDraft            = "draft"
	PhaseApprovalA1       = "approval_a1"
	PhaseApprovalA2       = "approval_a2"
	PhaseQuotation        = "quotation"
	PhasePurchaseOrder    = "purchase_order"
	PhaseReceipt          = "receipt"
	PhaseFiscalConference = "fiscal_conference"
	PhaseArchived         = "archived"
)

const userNotificationType = "notification"

// Config configures a Service.
type Config struct {
	BatchSize     int
	BatchDelay    time.Duration
	DrainInterval time.Duration
	HistoryLimit  int
	LookupTimeout time.Duration
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:     10,
		BatchDelay:    100 * time.Millisecond,
		DrainInterval: time.Second,
		HistoryLimit:  1000,
		LookupTimeout: 5 * time.Second,
	}
}

// ConfigFromDeployment builds the service configuration from the deployment file.
func ConfigFromDeployment(cfg config.NotificationConfig) Config {
	c := Config{
		BatchSize:     cfg.BatchSize,
		BatchDelay:    time.Duration(cfg.BatchDelay) * time.Millisecond,
		DrainInterval: time.Duration(cfg.DrainInterval) * time.Millisecond,
		HistoryLimit:  cfg.HistoryLimit,
		LookupTimeout: time.Duration(cfg.LookupTimeout) * time.Millisecond,
	}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.BatchDelay < 0 {
		c.BatchDelay = d.BatchDelay
	}
	if c.DrainInterval <= 0 {
		c.DrainInterval = d.DrainInterval
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = d.HistoryLimit
	}
	if c.LookupTimeout <= 0 {
		c.LookupTimeout = d.LookupTimeout
	}
}
