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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/procurehub/procurement-server/internal/broadcast"
	"github.com/procurehub/procurement-server/internal/directory"
	"github.com/procurehub/procurement-server/internal/notification"
	"github.com/procurehub/procurement-server/internal/performance"
	"github.com/procurehub/procurement-server/internal/system/cache"
	"github.com/procurehub/procurement-server/internal/system/config"
	"github.com/procurehub/procurement-server/internal/system/database/provider"
	healthhandler "github.com/procurehub/procurement-server/internal/system/healthcheck/handler"
	healthservice "github.com/procurehub/procurement-server/internal/system/healthcheck/service"
	"github.com/procurehub/procurement-server/internal/system/log"
	"github.com/procurehub/procurement-server/internal/system/middleware"
)

const directoryBootstrapTimeout = 30 * time.Second

// userDirectory is the directory view needed by the notification and health services.
type userDirectory interface {
	notification.UserDirectoryInterface
	healthservice.Pinger
}

// serviceManager builds the server components and owns their lifecycle.
type serviceManager struct {
	cfg        *config.Config
	serverHome string

	cacheManager        *cache.Manager
	monitor             *performance.Monitor
	exporter            *performance.Exporter
	dbProvider          provider.DBProviderInterface
	directory           userDirectory
	hub                 *broadcast.Hub
	redisClient         *redis.Client
	notificationService *notification.Service
	healthService       healthservice.HealthCheckServiceInterface

	stopRelay   context.CancelFunc
	unsubscribe []func()
	logger      *log.Logger
}

// newServiceManager creates every component and connects them to each other.
func newServiceManager(ctx context.Context, cfg *config.Config, serverHome string) (*serviceManager, error) {
	sm := &serviceManager{
		cfg:        cfg,
		serverHome: serverHome,
		logger:     log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ServiceManager")),
	}

	sm.cacheManager = cache.NewManager(cache.OptionsFromConfig(cfg.Cache))
	sm.monitor = performance.NewMonitor(performance.ConfigFromDeployment(cfg.Performance))
	sm.exporter = performance.NewExporter(sm.monitor)
	sm.monitor.RegisterCacheSource(func() performance.CacheSnapshot {
		stats := sm.cacheManager.GetStats()
		return performance.CacheSnapshot{
			HitRate:            stats.HitRate,
			MissRate:           stats.MissRate,
			Size:               stats.TotalSize,
			CompressionSavings: stats.CompressionSavings,
		}
	})

	if err := sm.initDirectory(ctx); err != nil {
		sm.destroy()
		return nil, err
	}

	broadcaster, err := sm.initBroadcaster(ctx)
	if err != nil {
		sm.destroy()
		return nil, err
	}

	sm.notificationService = notification.NewService(
		notification.ConfigFromDeployment(cfg.Notification), sm.directory, broadcaster)
	sm.notificationService.SetCacheInvalidator(sm.cacheManager)
	sm.unsubscribe = append(sm.unsubscribe, sm.notificationService.OnNotificationSent(
		func(event notification.ProcessedEvent) {
			sm.monitor.RecordCustomMetric("notificationRecipients", float64(len(event.Recipients)))
		}))

	sm.healthService = healthservice.NewHealthCheckService(sm.directory, sm.monitor)

	return sm, nil
}

// initDirectory opens the user directory database and loads the seed records. Without a
// configured database the seed file backs an in memory directory.
func (sm *serviceManager) initDirectory(ctx context.Context) error {
	seed, err := sm.loadSeed()
	if err != nil {
		return err
	}

	dataSource := sm.cfg.Database.Directory
	if dataSource.Type == "" {
		sm.logger.Info("No directory database configured, using the in memory directory",
			log.Int("users", len(seed.Users)))
		sm.directory = directory.NewStaticDirectory(seed)
		return nil
	}

	dbProvider := provider.NewDBProvider(dataSource, sm.serverHome)
	sm.dbProvider = dbProvider
	dbClient, err := dbProvider.GetDBClient()
	if err != nil {
		return fmt.Errorf("failed to connect to the directory database: %w", err)
	}

	bootstrapCtx, cancel := context.WithTimeout(ctx, directoryBootstrapTimeout)
	defer cancel()
	if err := directory.NewBootstrapper(dbClient).Bootstrap(bootstrapCtx, seed); err != nil {
		return fmt.Errorf("failed to bootstrap the directory database: %w", err)
	}

	sm.directory = directory.NewDirectoryStore(dbClient)
	return nil
}

// loadSeed reads the directory seed file. A missing file yields an empty seed.
func (sm *serviceManager) loadSeed() (directory.SeedData, error) {
	seedPath := sm.cfg.Database.SeedFile
	if seedPath == "" {
		return directory.SeedData{}, nil
	}
	if !filepath.IsAbs(seedPath) {
		seedPath = filepath.Join(sm.serverHome, seedPath)
	}

	seed, err := directory.LoadSeedData(seedPath)
	if errors.Is(err, os.ErrNotExist) {
		sm.logger.Warn("Directory seed file not found", log.String("path", seedPath))
		return directory.SeedData{}, nil
	}
	if err != nil {
		return directory.SeedData{}, fmt.Errorf("failed to load directory seed: %w", err)
	}
	return seed, nil
}

// initBroadcaster creates the websocket hub and, when enabled, the Redis fan out to the
// other server instances.
func (sm *serviceManager) initBroadcaster(ctx context.Context) (notification.Broadcaster, error) {
	wsCfg := sm.cfg.Broadcast.WebSocket
	sm.hub = broadcast.NewHub(broadcast.HubConfig{
		WriteTimeout:   time.Duration(wsCfg.WriteTimeout) * time.Second,
		SendBufferSize: wsCfg.SendBufferSize,
		AllowedOrigins: sm.cfg.CORS.AllowedOrigins,
	}, sm.monitor)

	redisCfg := sm.cfg.Broadcast.Redis
	if !redisCfg.Enabled {
		return sm.hub, nil
	}

	client, err := broadcast.Connect(ctx, redisCfg)
	if err != nil {
		return nil, err
	}
	sm.redisClient = client

	redisBroadcaster := broadcast.NewRedisBroadcaster(client, redisCfg.ChannelPrefix)
	relayCtx, cancel := context.WithCancel(context.Background())
	sm.stopRelay = cancel
	go func() {
		if err := redisBroadcaster.Relay(relayCtx, sm.hub); err != nil {
			sm.logger.Error("Redis relay stopped", log.Error(err))
		}
	}()

	sm.logger.Info("Redis broadcasting enabled", log.String("instance", redisBroadcaster.InstanceID()))
	return broadcast.NewMultiBroadcaster(sm.hub, redisBroadcaster), nil
}

// registerServices registers all the HTTP routes with the provided multiplexer.
func (sm *serviceManager) registerServices(mux *http.ServeMux) {
	opts := middleware.CORSOptions{
		AllowedOrigins:   sm.cfg.CORS.AllowedOrigins,
		AllowedMethods:   "GET, POST, DELETE, OPTIONS",
		AllowedHeaders:   "Content-Type, Authorization, X-User-ID",
		AllowCredentials: true,
	}

	notificationHandler := notification.NewHandler(sm.notificationService)
	mux.HandleFunc(middleware.WithCORS("POST /notifications/events",
		notificationHandler.HandleEventsRequest, opts))
	mux.HandleFunc(middleware.WithCORS("OPTIONS /notifications/events", middleware.PreflightHandler, opts))
	mux.HandleFunc(middleware.WithCORS("GET /notifications/history",
		notificationHandler.HandleHistoryRequest, opts))
	mux.HandleFunc(middleware.WithCORS("DELETE /notifications/history",
		notificationHandler.HandleClearHistoryRequest, opts))
	mux.HandleFunc(middleware.WithCORS("OPTIONS /notifications/history", middleware.PreflightHandler, opts))
	mux.HandleFunc(middleware.WithCORS("GET /notifications/stats",
		notificationHandler.HandleStatsRequest, opts))

	performanceHandler := performance.NewHandler(sm.monitor)
	mux.HandleFunc(middleware.WithCORS("GET /performance/metrics",
		performanceHandler.HandleMetricsRequest, opts))
	mux.HandleFunc(middleware.WithCORS("GET /performance/alerts",
		performanceHandler.HandleAlertsRequest, opts))
	mux.HandleFunc(middleware.WithCORS("GET /performance/summary",
		performanceHandler.HandleSummaryRequest, opts))
	mux.Handle("GET /metrics", sm.exporter.Handler())

	healthHandler := healthhandler.NewHealthCheckHandler(sm.healthService)
	mux.HandleFunc(middleware.WithCORS("GET /health/liveness", healthHandler.HandleLivenessRequest, opts))
	mux.HandleFunc(middleware.WithCORS("GET /health/readiness", healthHandler.HandleReadinessRequest, opts))
	mux.HandleFunc(middleware.WithCORS("GET /health", healthHandler.HandleHealthRequest, opts))

	mux.Handle("GET "+sm.cfg.Broadcast.WebSocket.Path, sm.hub)
}

// handler wraps the multiplexer with the access log, request timing and response cache.
func (sm *serviceManager) handler(mux *http.ServeMux) http.Handler {
	return log.AccessLogHandler(log.GetLogger(),
		performance.RequestTimingHandler(sm.monitor, sm.cacheManager.Middleware(mux)))
}

// destroy stops the background routines and releases the connections.
func (sm *serviceManager) destroy() {
	for _, unsubscribe := range sm.unsubscribe {
		unsubscribe()
	}
	sm.unsubscribe = nil

	if sm.notificationService != nil {
		sm.notificationService.Destroy()
	}
	if sm.stopRelay != nil {
		sm.stopRelay()
	}
	if sm.hub != nil {
		if err := sm.hub.Close(); err != nil {
			sm.logger.Error("Failed to close websocket hub", log.Error(err))
		}
	}
	if sm.redisClient != nil {
		if err := sm.redisClient.Close(); err != nil {
			sm.logger.Error("Failed to close Redis client", log.Error(err))
		}
	}
	if sm.dbProvider != nil {
		if err := sm.dbProvider.Close(); err != nil {
			sm.logger.Error("Failed to close directory database", log.Error(err))
		}
	}
	if sm.exporter != nil {
		sm.exporter.Close()
	}
	if sm.monitor != nil {
		sm.monitor.Destroy()
	}
	if sm.cacheManager != nil {
		sm.cacheManager.Destroy()
	}
}
