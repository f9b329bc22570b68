package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/diillson/gateway-admin-go/internal/adapter/bus"
	"github.com/diillson/gateway-admin-go/internal/adapter/database"
	"github.com/diillson/gateway-admin-go/internal/app/gatewayconfig"
	"github.com/diillson/gateway-admin-go/internal/domain/model"
	"github.com/diillson/gateway-admin-go/internal/infra/metrics"
	"github.com/diillson/gateway-admin-go/internal/provider"
	"github.com/diillson/gateway-admin-go/pkg/cache"
	"github.com/diillson/gateway-admin-go/pkg/config"
	"github.com/diillson/gateway-admin-go/pkg/logging"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// logEngine é um RoutingEngine que apenas registra cada snapshot aplicado.
// O adaptador real do motor de roteamento substitui este tipo na integração.
type logEngine struct {
	logger *zap.Logger
}

func (e *logEngine) ApplyConfiguration(environment string, cfg *model.CompiledConfiguration) {
	e.logger.Info("configuração aplicada ao motor de roteamento",
		zap.String("environment", environment),
		zap.String("versionId", cfg.VersionID),
		zap.String("version", cfg.Version),
		zap.Int("rules", len(cfg.Rules)))
}

func main() {
	logger, err := logging.NewLogger()
	if err != nil {
		fmt.Printf("Erro ao inicializar logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		logger.Fatal("Falha ao carregar configuração", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDatabase(ctx, database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        gormlogger.Warn,
		SlowThreshold:   cfg.Database.SlowThreshold,
	}, logger)
	if err != nil {
		logger.Fatal("Falha ao conectar ao banco de dados", zap.Error(err))
	}
	defer db.Close()

	cpMetrics := metrics.NewControlPlaneMetrics()

	// Cada processo gateway mantém seu próprio cache local
	localCache := cache.NewMemoryCache(cfg.Cache.TTL, 2*cfg.Cache.TTL, cpMetrics, logger)

	versionRepo := database.NewVersionRepository(db.DB(), logger)
	configCache := gatewayconfig.NewConfigurationCache(versionRepo, localCache, cfg.Cache.TTL, cpMetrics, logger)

	client, err := cache.NewRedisClientWithConfig(&redis.Options{
		Addr:         cfg.Bus.Redis.Address,
		Password:     cfg.Bus.Redis.Password,
		DB:           cfg.Bus.Redis.DB,
		PoolSize:     cfg.Bus.Redis.PoolSize,
		MinIdleConns: cfg.Bus.Redis.MinIdleConns,
	}, logger)
	if err != nil {
		logger.Fatal("Falha ao conectar ao Redis", zap.Error(err))
	}
	changeBus := bus.NewRedisBus(client, cfg.Bus.Channel, logger)

	environments := cfg.Gateway.Environments
	if len(environments) == 0 {
		environments = []string{"Development"}
	}

	p := provider.NewProvider(
		environments,
		configCache,
		changeBus,
		&logEngine{logger: logger},
		cfg.Gateway.ReconnectMaxBackoff,
		cpMetrics,
		logger,
	)

	logger.Info("Iniciando provider de configuração",
		zap.Strings("environments", environments))

	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Provider encerrou com erro", zap.Error(err))
	}

	logger.Info("Provider encerrado")
}
