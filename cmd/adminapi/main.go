package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diillson/gateway-admin-go/internal/app"
	"github.com/diillson/gateway-admin-go/pkg/config"
	"github.com/diillson/gateway-admin-go/pkg/logging"
	"github.com/diillson/gateway-admin-go/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

func main() {
	// Inicializar logger
	logger, err := logging.NewLogger()
	if err != nil {
		fmt.Printf("Erro ao inicializar logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, span := otel.Tracer("gateway-admin.main").Start(context.Background(), "Server Initialization")
	defer span.End()

	// Carregar configuração
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logger.Fatal("Falha ao carregar configuração", zap.Error(err))
	}

	// Inicializar o tracer se estiver habilitado
	if cfg.Tracing.Enabled {
		tp, err := telemetry.NewTracerProvider(
			context.Background(),
			cfg.Tracing.ServiceName,
			cfg.Tracing.Endpoint,
			cfg.Tracing.SamplingRatio,
			logger,
		)
		if err != nil {
			logger.Error("Falha ao inicializar tracer", zap.Error(err))
		} else {
			logger.Info("Tracer inicializado com sucesso",
				zap.String("endpoint", cfg.Tracing.Endpoint))
			defer tp.Shutdown(context.Background())
		}
	}

	// Inicializar aplicação
	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logger.Fatal("Falha ao inicializar aplicação", zap.Error(err))
	}
	defer application.Close()

	// Configurar o router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	application.RegisterRoutes(router)

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// Iniciar o servidor em uma goroutine
	go func() {
		logger.Info("Iniciando API administrativa", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Erro no servidor HTTP", zap.Error(err))
		}
	}()

	// Aguardar sinal de encerramento
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Encerrando API administrativa...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Erro ao encerrar servidor", zap.Error(err))
	}

	logger.Info("API administrativa encerrada")
}
