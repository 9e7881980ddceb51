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

// Package constants defines global constants used across the system module.
package constants

// AuthorizationHeaderName is the name of the authorization header used in HTTP requests.
const AuthorizationHeaderName = "Authorization"

// ContentTypeHeaderName is the name of the content type header used in HTTP requests.
const ContentTypeHeaderName = "Content-Type"

// ContentTypeJSON is the content type for JSON data.
const ContentTypeJSON = "application/json"

// UserIDHeaderName carries the authenticated user id forwarded by the edge proxy.
const UserIDHeaderName = "X-User-ID"

// Conditional request and caching headers.
const (
	AcceptEncodingHeaderName  = "Accept-Encoding"
	ContentEncodingHeaderName = "Content-Encoding"
	ContentLengthHeaderName   = "Content-Length"
	CacheControlHeaderName    = "Cache-Control"
	ETagHeaderName            = "ETag"
	LastModifiedHeaderName    = "Last-Modified"
	IfNoneMatchHeaderName     = "If-None-Match"
	IfModifiedSinceHeaderName = "If-Modified-Since"
	VaryHeaderName            = "Vary"
	XCacheHeaderName          = "X-Cache"
)

// DefaultHistoryLimit is the number of records returned by history endpoints when no limit is given.
const DefaultHistoryLimit = 50

// MaxHistoryLimit caps the limit accepted by history endpoints.
const MaxHistoryLimit = 1000
