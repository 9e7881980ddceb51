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

// Package main is the entry point for starting the procurement server.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/procurehub/procurement-server/internal/cert"
	"github.com/procurehub/procurement-server/internal/system/config"
	"github.com/procurehub/procurement-server/internal/system/log"
)

const defaultConfigPath = "repository/conf/deployment.yaml"

// serverFlags holds the parsed command line arguments.
type serverFlags struct {
	home        string
	configPath  string
	httpOnly    bool
	httpOnlySet bool
}

func main() {
	logger := log.GetLogger()

	flags := parseFlags(logger)

	cfg := initServerConfigurations(logger, flags)
	if cfg == nil {
		logger.Fatal("Failed to initialize configurations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sm, err := newServiceManager(ctx, cfg, flags.home)
	if err != nil {
		logger.Fatal("Failed to initialize the services", log.Error(err))
	}
	defer sm.destroy()

	mux := http.NewServeMux()
	sm.registerServices(mux)

	server, serverAddr := createHTTPServer(cfg, sm.handler(mux))

	serveErr := make(chan error, 1)
	go func() {
		if cfg.Server.HTTPOnly {
			logger.Info("TLS is not enabled, starting server without TLS")
			serveErr <- startHTTPServer(logger, server, serverAddr)
		} else {
			serveErr <- startTLSServer(logger, cfg, server, serverAddr)
		}
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped unexpectedly", log.Error(err))
		}
	case <-ctx.Done():
		logger.Info("Shutting down the procurement server")
		shutdownServer(logger, server, time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	}
}

// parseFlags reads the command line arguments. The server home defaults to the current
// working directory.
func parseFlags(logger *log.Logger) serverFlags {
	home := flag.String("home", "", "Path to the procurement server home directory")
	configPath := flag.String("config", defaultConfigPath, "Path to the deployment configuration file")
	httpOnly := flag.Bool("http-only", false, "Serve plain HTTP without TLS")
	flag.Parse()

	flags := serverFlags{
		home:        *home,
		configPath:  *configPath,
		httpOnly:    *httpOnly,
		httpOnlySet: flag.CommandLine.Changed("http-only"),
	}

	if flags.home != "" {
		logger.Info("Using server home from command line argument", log.String("home", flags.home))
	} else {
		dir, dirErr := os.Getwd()
		if dirErr != nil {
			logger.Fatal("Failed to get current working directory", log.Error(dirErr))
		}
		flags.home = dir
	}

	if !filepath.IsAbs(flags.configPath) {
		flags.configPath = filepath.Join(flags.home, flags.configPath)
	}
	return flags
}

// initServerConfigurations loads the deployment configuration and records the runtime.
func initServerConfigurations(logger *log.Logger, flags serverFlags) *config.Config {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		logger.Fatal("Failed to load configurations", log.String("path", flags.configPath), log.Error(err))
	}
	if flags.httpOnlySet {
		cfg.Server.HTTPOnly = flags.httpOnly
	}

	config.InitializeServerRuntime(flags.home, cfg)
	return cfg
}

// startTLSServer starts the HTTPS server with TLS configuration.
func startTLSServer(logger *log.Logger, cfg *config.Config, server *http.Server, serverAddr string) error {
	tlsConfig, err := cert.GetTLSConfig(cfg.Security, config.GetServerRuntime().ServerHome)
	if err != nil {
		return fmt.Errorf("failed to load TLS configuration: %w", err)
	}

	ln, err := tls.Listen("tcp", serverAddr, tlsConfig)
	if err != nil {
		return fmt.Errorf("failed to start TLS listener: %w", err)
	}

	logger.Info("Procurement server started (HTTPS)...", log.String("address", serverAddr))
	return server.Serve(ln)
}

// startHTTPServer starts the HTTP server without TLS.
func startHTTPServer(logger *log.Logger, server *http.Server, serverAddr string) error {
	logger.Info("Procurement server started (HTTP)...", log.String("address", serverAddr))
	return server.ListenAndServe()
}

// createHTTPServer creates and configures an HTTP server with common settings.
func createHTTPServer(cfg *config.Config, handler http.Handler) (*http.Server, string) {
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Server.Port)

	server := &http.Server{
		Addr:              serverAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Mitigate Slowloris attacks
		IdleTimeout:       120 * time.Second,
	}

	return server, serverAddr
}

// shutdownServer stops accepting connections and waits for in flight requests.
func shutdownServer(logger *log.Logger, server *http.Server, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", log.Error(err))
	}
}
