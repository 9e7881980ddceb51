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

package performance

import "github.com/procurehub/procurement-server/internal/system/error/serviceerror"

// ErrorInvalidWindow is returned when a minutes or hours parameter is not a positive integer.
var ErrorInvalidWindow = serviceerror.ServiceError{
	Code:             "PRF-60001",
	Type:             serviceerror.ClientErrorType,
	Error:            "Invalid request",
	ErrorDescription: "The time window must be a positive integer",
}

// ErrorCollectionFailed is returned when a forced sampling tick fails.
var ErrorCollectionFailed = serviceerror.ServiceError{
	Code:             "PRF-65001",
	Type:             serviceerror.ServerErrorType,
	Error:            "Something went wrong",
	ErrorDescription: "Failed to collect performance metrics",
}
