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
	"context"
	"fmt"
)

// recipientResolver returns the users interested in an event, before actor exclusion.
type recipientResolver func(ctx context.Context, dir UserDirectoryInterface, event NotificationEvent) ([]string, error)

// resourceRule describes how events of one resource are filtered and routed.
type resourceRule struct {
	apiPath    string
	sensitive  []string
	projection []string
	recipients recipientResolver
}

var resourceRules = map[string]resourceRule{
	ResourcePurchaseRequest: {
		apiPath:    "purchase-requests",
		sensitive:  []string{"internal_notes", "cost_breakdown", "approval_comments_internal"},
		projection: []string{"id", "number", "title", "status", "priority", "department_id", "requester_id", "total_value", "phase"},
		recipients: purchaseRequestRecipients,
	},
	ResourceQuotation: {
		apiPath:    "quotations",
		sensitive:  []string{"supplier_cost_breakdown", "negotiation_notes", "internal_margin"},
		projection: []string{"id", "request_id", "supplier_id", "status", "total_value", "delivery_days"},
		recipients: quotationRecipients,
	},
	ResourcePurchaseOrder: {
		apiPath:    "purchase-orders",
		sensitive:  []string{"payment_terms_internal", "bank_details"},
		projection: []string{"id", "number", "request_id", "supplier_id", "status", "total_value", "expected_delivery"},
		recipients: purchaseOrderRecipients,
	},
	ResourceSupplier: {
		apiPath:    "suppliers",
		sensitive:  []string{"bank_details", "tax_documents", "credentials"},
		projection: []string{"id", "name", "status", "category"},
		recipients: roleRecipients(RoleBuyer, RoleAdmin),
	},
	ResourceUser: {
		apiPath:    "users",
		sensitive:  []string{"password", "password_hash", "reset_token", "credentials"},
		projection: []string{"id", "name", "email", "role", "department_id", "active"},
		recipients: userRecipients,
	},
}

// phaseRoles maps a purchase request phase to the role that acts on it.
var phaseRoles = map[string]string{
	PhaseApprovalA1:       RoleApproverA1,
	PhaseApprovalA2:       RoleApproverA2,
	PhaseQuotation:        RoleBuyer,
	PhasePurchaseOrder:    RoleBuyer,
	PhaseReceipt:          RoleReceiver,
	PhaseFiscalConference: RoleFiscal,
}

// filterEventData strips the sensitive fields of an event and projects the rest onto
// the fields clients may see. It returns nil for unknown resources.
func filterEventData(event NotificationEvent) map[string]any {
	rule, ok := resourceRules[event.Resource]
	if !ok {
		return nil
	}

	sensitive := make(map[string]struct{}, len(rule.sensitive))
	for _, field := range rule.sensitive {
		sensitive[field] = struct{}{}
	}

	filtered := make(map[string]any, len(rule.projection)+2)
	for _, field := range rule.projection {
		if _, hidden := sensitive[field]; hidden {
			continue
		}
		if value, present := event.Data[field]; present {
			filtered[field] = value
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if _, present := filtered["id"]; !present && event.EntityID != "" {
		filtered["id"] = event.EntityID
	}

	if event.Action == ActionStatusChanged && event.Metadata != nil {
		if event.Metadata.PreviousStatus != "" {
			filtered["previous_status"] = event.Metadata.PreviousStatus
		}
		if event.Metadata.NewStatus != "" {
			filtered["new_status"] = event.Metadata.NewStatus
		}
	}
	return filtered
}

// resolveRecipients applies the resource rule and removes the actor unless the event
// is a creation.
func resolveRecipients(ctx context.Context, dir UserDirectoryInterface, event NotificationEvent) ([]string, error) {
	rule, ok := resourceRules[event.Resource]
	if !ok {
		return nil, nil
	}

	candidates, err := rule.recipients(ctx, dir, event)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(candidates))
	recipients := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if id == "" {
			continue
		}
		if id == event.UserID && event.Action != ActionCreated {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}
	return recipients, nil
}

func purchaseRequestRecipients(ctx context.Context, dir UserDirectoryInterface,
	event NotificationEvent) ([]string, error) {
	var recipients []string

	requester := stringField(event.Data, "requester_id")
	if requester == "" && event.EntityID != "" {
		owner, err := dir.GetRequestOwner(ctx, event.EntityID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve requester of %s: %w", event.EntityID, err)
		}
		requester = owner
	}
	recipients = append(recipients, requester)

	if department := stringField(event.Data, "department_id"); department != "" {
		members, err := dir.GetUserIDsByDepartment(ctx, department)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve department %s: %w", department, err)
		}
		recipients = append(recipients, members...)
	}

	phase := stringField(event.Data, "phase")
	if phase == "" && event.Metadata != nil {
		phase = event.Metadata.Phase
	}
	if role, ok := phaseRoles[phase]; ok {
		users, err := dir.GetUserIDsByRole(ctx, role)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve role %s: %w", role, err)
		}
		recipients = append(recipients, users...)
	}
	return recipients, nil
}

func quotationRecipients(ctx context.Context, dir UserDirectoryInterface, event NotificationEvent) ([]string, error) {
	recipients, err := roleRecipients(RoleBuyer)(ctx, dir, event)
	if err != nil {
		return nil, err
	}
	return appendRequestOwner(ctx, dir, event, recipients)
}

func purchaseOrderRecipients(ctx context.Context, dir UserDirectoryInterface,
	event NotificationEvent) ([]string, error) {
	recipients, err := roleRecipients(RoleBuyer, RoleReceiver)(ctx, dir, event)
	if err != nil {
		return nil, err
	}
	return appendRequestOwner(ctx, dir, event, recipients)
}

func userRecipients(ctx context.Context, dir UserDirectoryInterface, event NotificationEvent) ([]string, error) {
	admins, err := roleRecipients(RoleAdmin)(ctx, dir, event)
	if err != nil {
		return nil, err
	}
	return append([]string{event.EntityID}, admins...), nil
}

// roleRecipients returns a resolver collecting the holders of every listed role.
func roleRecipients(roles ...string) recipientResolver {
	return func(ctx context.Context, dir UserDirectoryInterface, _ NotificationEvent) ([]string, error) {
		var recipients []string
		for _, role := range roles {
			users, err := dir.GetUserIDsByRole(ctx, role)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve role %s: %w", role, err)
			}
			recipients = append(recipients, users...)
		}
		return recipients, nil
	}
}

func appendRequestOwner(ctx context.Context, dir UserDirectoryInterface, event NotificationEvent,
	recipients []string) ([]string, error) {
	requestID := stringField(event.Data, "request_id")
	if requestID == "" {
		return recipients, nil
	}
	owner, err := dir.GetRequestOwner(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve requester of %s: %w", requestID, err)
	}
	return append(recipients, owner), nil
}

func stringField(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
