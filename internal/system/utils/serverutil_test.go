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

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAllowedOrigin(t *testing.T) {
	testCases := []struct {
		name     string
		allowed  []string
		origin   string
		expected string
	}{
		{"NoConfiguredOrigins", nil, "https://app.procurehub.io", ""},
		{"EmptyOrigin", []string{"https://app.procurehub.io"}, "", ""},
		{"ExactMatch", []string{"https://app.procurehub.io"}, "https://app.procurehub.io", "https://app.procurehub.io"},
		{"TrailingSlashInConfig", []string{"https://app.procurehub.io/"}, "https://app.procurehub.io",
			"https://app.procurehub.io"},
		{"SubstringIsNotAMatch", []string{"https://app.procurehub.io"}, "https://app.procurehub.io.evil.com", ""},
		{"Wildcard", []string{"*"}, "http://localhost:5173", "http://localhost:5173"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetAllowedOrigin(tc.allowed, tc.origin))
		})
	}
}
