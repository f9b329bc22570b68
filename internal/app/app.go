package app

import (
	"context"
	"fmt"

	"github.com/diillson/gateway-admin-go/internal/adapter/bus"
	"github.com/diillson/gateway-admin-go/internal/adapter/database"
	adapterhttp "github.com/diillson/gateway-admin-go/internal/adapter/http"
	"github.com/diillson/gateway-admin-go/internal/app/gatewayconfig"
	"github.com/diillson/gateway-admin-go/internal/app/route"
	"github.com/diillson/gateway-admin-go/internal/app/version"
	domainbus "github.com/diillson/gateway-admin-go/internal/domain/bus"
	"github.com/diillson/gateway-admin-go/internal/infra/metrics"
	"github.com/diillson/gateway-admin-go/internal/infra/middleware"
	"github.com/diillson/gateway-admin-go/pkg/cache"
	"github.com/diillson/gateway-admin-go/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// App agrega as dependências do plano de controle administrativo
type App struct {
	Config         *config.Config
	Logger         *zap.Logger
	DB             *database.Database
	Cache          cache.Cache
	ConfigCache    *gatewayconfig.ConfigurationCache
	Bus            domainbus.ChangeBus
	Metrics        *metrics.ControlPlaneMetrics
	Middleware     *middleware.Middleware
	RouteService   *route.Service
	VersionService *version.Service

	routeHandler   *adapterhttp.RouteHandler
	versionHandler *adapterhttp.VersionHandler
	healthChecker  *adapterhttp.HealthChecker
}

// NewApp cria uma nova instância da aplicação com todas as dependências
// injetadas
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.NewDatabase(ctx, database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        gormLogLevel(cfg.Database.LogLevel),
		SlowThreshold:   cfg.Database.SlowThreshold,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("erro ao inicializar banco de dados: %w", err)
	}

	cpMetrics := metrics.NewControlPlaneMetrics()

	storeCache, err := newCache(cfg, cpMetrics, logger)
	if err != nil {
		return nil, err
	}

	changeBus, err := newChangeBus(cfg, logger)
	if err != nil {
		return nil, err
	}

	routeRepo := database.NewRouteRepository(db.DB(), logger)
	versionRepo := database.NewVersionRepository(db.DB(), logger)

	configCache := gatewayconfig.NewConfigurationCache(versionRepo, storeCache, cfg.Cache.TTL, cpMetrics, logger)

	routeService := route.NewService(routeRepo, configCache, changeBus, cpMetrics, logger)
	versionService := version.NewService(versionRepo, routeRepo, configCache, changeBus, cpMetrics, logger)

	return &App{
		Config:         cfg,
		Logger:         logger,
		DB:             db,
		Cache:          storeCache,
		ConfigCache:    configCache,
		Bus:            changeBus,
		Metrics:        cpMetrics,
		Middleware:     middleware.NewMiddleware(logger, cpMetrics),
		RouteService:   routeService,
		VersionService: versionService,
		routeHandler:   adapterhttp.NewRouteHandler(routeService, logger),
		versionHandler: adapterhttp.NewVersionHandler(versionService, logger),
		healthChecker:  adapterhttp.NewHealthChecker(db, storeCache, logger),
	}, nil
}

// RegisterRoutes registra todas as rotas da API administrativa no router
func (a *App) RegisterRoutes(router *gin.Engine) {
	router.Use(a.Middleware.Recovery())
	router.Use(a.Middleware.Logger())
	router.Use(a.Middleware.Metrics())
	if a.Config.Tracing.Enabled {
		router.Use(a.Middleware.Tracing())
	}

	if a.Config.Metrics.Enabled {
		path := a.Config.Metrics.PrometheusPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.Handler()))
		a.Logger.Info("Endpoint de métricas Prometheus registrado", zap.String("path", path))
	}

	router.GET("/health", a.healthChecker.LivenessCheck)
	router.GET("/health/liveness", a.healthChecker.LivenessCheck)
	router.GET("/health/readiness", a.healthChecker.ReadinessCheck)
	router.GET("/health/detailed", a.healthChecker.DetailedHealth)

	admin := router.Group("/admin")
	{
		routes := admin.Group("/routes")
		{
			routes.POST("", a.routeHandler.CreateRoute)
			routes.GET("", a.routeHandler.ListRoutes)
			routes.GET("/:id", a.routeHandler.GetRoute)
			routes.PUT("/:id", a.routeHandler.UpdateRoute)
			routes.PATCH("/:id/status", a.routeHandler.SetRouteStatus)
			routes.DELETE("/:id", a.routeHandler.DeleteRoute)
		}

		versions := admin.Group("/versions")
		{
			versions.POST("", a.versionHandler.CreateVersion)
			versions.GET("", a.versionHandler.ListVersions)
			versions.GET("/active", a.versionHandler.GetActiveVersion)
			versions.GET("/compiled", a.versionHandler.GetCompiledConfiguration)
			versions.GET("/:id", a.versionHandler.GetVersion)
			versions.GET("/:id/compiled", a.versionHandler.GetCompiledVersion)
			versions.GET("/:id/validate", a.versionHandler.ValidateVersion)
			versions.PUT("/:id/description", a.versionHandler.UpdateDescription)
			versions.POST("/:id/routes/:routeId", a.versionHandler.AddRoute)
			versions.DELETE("/:id/routes/:routeId", a.versionHandler.RemoveRoute)
			versions.POST("/:id/publish", a.versionHandler.PublishVersion)
			versions.POST("/:id/unpublish", a.versionHandler.UnpublishVersion)
			versions.DELETE("/:id", a.versionHandler.DeleteVersion)
		}
	}
}

// Close libera as conexões mantidas pela aplicação
func (a *App) Close() error {
	return a.DB.Close()
}

// newCache monta a implementação de cache conforme a configuração
func newCache(cfg *config.Config, m *metrics.ControlPlaneMetrics, logger *zap.Logger) (cache.Cache, error) {
	if !cfg.Cache.Enabled {
		logger.Info("Cache desabilitado, usando implementação no-op")
		return &cache.NoOpCache{}, nil
	}

	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(
			cfg.Cache.Redis.Address,
			cfg.Cache.Redis.Password,
			cfg.Cache.Redis.DB,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao conectar ao Redis para cache: %w", err)
		}
		return redisCache, nil
	default:
		return cache.NewMemoryCache(cfg.Cache.TTL, 2*cfg.Cache.TTL, m, logger), nil
	}
}

// newChangeBus monta o bus de notificação conforme a configuração
func newChangeBus(cfg *config.Config, logger *zap.Logger) (domainbus.ChangeBus, error) {
	switch cfg.Bus.Type {
	case "redis":
		client, err := cache.NewRedisClientWithConfig(&redis.Options{
			Addr:         cfg.Bus.Redis.Address,
			Password:     cfg.Bus.Redis.Password,
			DB:           cfg.Bus.Redis.DB,
			PoolSize:     cfg.Bus.Redis.PoolSize,
			MinIdleConns: cfg.Bus.Redis.MinIdleConns,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("erro ao conectar ao Redis para o bus: %w", err)
		}
		return bus.NewRedisBus(client, cfg.Bus.Channel, logger), nil
	default:
		logger.Info("Bus em memória: notificações restritas a este processo")
		return bus.NewMemoryBus(logger), nil
	}
}

// gormLogLevel traduz o nível de log configurado para o nível do GORM
func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
