package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogrepo "probrowse/internal/catalog/repository"
	"probrowse/internal/catalog/upstream"
	"probrowse/internal/common/cache"
	"probrowse/internal/common/db"
	commonmw "probrowse/internal/common/http/middleware"
	"probrowse/internal/common/mq"
	"probrowse/internal/common/storage"
	synccontroller "probrowse/internal/sync/controller"
	syncservice "probrowse/internal/sync/service"
	"probrowse/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/sync_service.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	mysqlDB, err := db.NewMySQLWithConfig(&appCfg.Database)
	if err != nil {
		logger.Error(context.Background(), "init database failed", zap.Error(err))
		return
	}
	defer func() {
		_ = mysqlDB.Close()
	}()
	dbProvider := db.NewManager(mysqlDB)

	redisCache, err := cache.NewRedisCacheWithConfig(&appCfg.Redis)
	if err != nil {
		logger.Error(context.Background(), "init redis failed", zap.Error(err))
		return
	}
	defer func() {
		_ = redisCache.Close()
	}()

	upstreamClient, err := upstream.NewClient(appCfg.Upstream)
	if err != nil {
		logger.Error(context.Background(), "init upstream client failed", zap.Error(err))
		return
	}

	var archiver *syncservice.SnapshotArchiver
	if appCfg.Sync.ArchiveEnabled {
		objStorage, err := storage.NewMinIOStorage(appCfg.MinIO)
		if err != nil {
			logger.Error(context.Background(), "init minio failed", zap.Error(err))
			return
		}
		archiver = syncservice.NewSnapshotArchiver(objStorage, appCfg.MinIO.Bucket, appCfg.Sync.ArchivePrefix)
	}

	var mqClient mq.MessageQueue
	var publisher *syncservice.CatalogRefreshPublisher
	if appCfg.Sync.PublishEnabled {
		mqClient, err = mq.NewKafkaQueue(appCfg.Kafka)
		if err != nil {
			logger.Error(context.Background(), "init kafka failed", zap.Error(err))
			return
		}
		defer func() {
			_ = mqClient.Close()
		}()
		publisher = syncservice.NewCatalogRefreshPublisher(mqClient, appCfg.Sync.RefreshTopic)
	}

	syncService := syncservice.NewSyncService(
		upstreamClient,
		catalogrepo.NewProblemRepository(dbProvider, redisCache),
		catalogrepo.NewContestRepository(dbProvider, redisCache),
		catalogrepo.NewDifficultyModelRepository(dbProvider, redisCache),
		catalogrepo.NewSubmissionRepository(dbProvider, redisCache),
		catalogrepo.NewRatingRepository(dbProvider, redisCache),
		redisCache,
		archiver,
		publisher,
	)

	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelScheduler()
	go syncservice.NewScheduler(syncService, appCfg.Sync.Interval).Run(schedulerCtx)

	httpServer := buildHTTPServer(appCfg, syncService)

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "sync http server started", zap.String("addr", appCfg.Server.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	cancelScheduler()
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
}

func buildHTTPServer(cfg *AppConfig, syncService *syncservice.SyncService) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(commonmw.TraceContextMiddleware())
	router.Use(requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	syncController := synccontroller.NewSyncController(syncService)
	syncController.RegisterRoutes(api)

	return &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		logger.Info(
			c.Request.Context(),
			"request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
