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

import "github.com/procurehub/procurement-server/internal/system/error/serviceerror"

// ErrorInvalidEventPayload is returned when the request body is not an event or a list of events.
var ErrorInvalidEventPayload = serviceerror.ServiceError{
	Code:             "NTF-60001",
	Type:             serviceerror.ClientErrorType,
	Error:            "Invalid request",
	ErrorDescription: "The request body must be a notification event or an array of events",
}

// ErrorMissingEventFields is returned when an event lacks its resource or action.
var ErrorMissingEventFields = serviceerror.ServiceError{
	Code:             "NTF-60002",
	Type:             serviceerror.ClientErrorType,
	Error:            "Invalid request",
	ErrorDescription: "Every event must carry a resource and an action",
}

// ErrorInvalidLimit is returned when the history limit is not a positive integer.
var ErrorInvalidLimit = serviceerror.ServiceError{
	Code:             "NTF-60003",
	Type:             serviceerror.ClientErrorType,
	Error:            "Invalid request",
	ErrorDescription: "The limit must be a positive integer",
}
