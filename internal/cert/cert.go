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

// Package cert loads the server's TLS material.
package cert

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/procurehub/procurement-server/internal/system/config"
)

// ErrCertificateNotFound is returned when the configured certificate or key file is missing.
var ErrCertificateNotFound = errors.New("tls material not found")

// GetTLSConfig loads the TLS configuration from the certificate and key files. Relative
// paths are resolved against the server home directory.
func GetTLSConfig(security config.SecurityConfig, serverHome string) (*tls.Config, error) {
	if security.CertFile == "" || security.KeyFile == "" {
		return nil, fmt.Errorf("%w: certificate and key files must be configured", ErrCertificateNotFound)
	}

	certFilePath := resolvePath(serverHome, security.CertFile)
	keyFilePath := resolvePath(serverHome, security.KeyFile)

	if _, err := os.Stat(certFilePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: certificate file at %s", ErrCertificateNotFound, certFilePath)
	}
	if _, err := os.Stat(keyFilePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: key file at %s", ErrCertificateNotFound, keyFilePath)
	}

	cert, err := tls.LoadX509KeyPair(certFilePath, keyFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load key pair: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func resolvePath(serverHome, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(serverHome, p)
}
