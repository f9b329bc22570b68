package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/diillson/gateway-admin-go/pkg/config"
	"gopkg.in/yaml.v3"
)

func main() {
	var (
		outputPath string
		force      bool
	)

	flag.StringVar(&outputPath, "output", "config.yaml", "Caminho para o arquivo de configuração de saída")
	flag.BoolVar(&force, "force", false, "Sobrescrever arquivo se existir")
	flag.Parse()

	// Verificar se o arquivo já existe
	if _, err := os.Stat(outputPath); err == nil && !force {
		fmt.Printf("Erro: arquivo %s já existe. Use --force para sobrescrever.\n", outputPath)
		os.Exit(1)
	}

	// Criar configuração com valores padrão
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           8080,
			Host:           "0.0.0.0",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    30 * time.Second,
			MaxHeaderBytes: 1 << 20, // 1 MB
			BaseURL:        "https://admin.example.com",
		},
		Database: config.DatabaseConfig{
			Driver:          "postgres",
			DSN:             "host=localhost user=gateway password=gateway dbname=gateway port=5432",
			MaxIdleConns:    10,
			MaxOpenConns:    50,
			ConnMaxLifetime: 1 * time.Hour,
			LogLevel:        "warn",
			SlowThreshold:   200 * time.Millisecond,
		},
		Cache: config.CacheConfig{
			Enabled: true,
			Type:    "memory",
			TTL:     5 * time.Minute,
			Redis: config.RedisOptions{
				Address:  "localhost:6379",
				Password: "",
				DB:       0,
			},
		},
		Bus: config.BusConfig{
			Type:    "redis",
			Channel: "gwadmin:changes",
			Redis: config.RedisOptions{
				Address:  "localhost:6379",
				Password: "",
				DB:       0,
			},
		},
		Gateway: config.GatewayConfig{
			Environments:        []string{"Development"},
			ReconnectMaxBackoff: 30 * time.Second,
		},
		Metrics: config.MetricsConfig{
			Enabled:        true,
			PrometheusPath: "/metrics",
		},
		Logging: config.LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
			Production: true,
		},
		Tracing: config.TracingConfig{
			Enabled:       false,
			Endpoint:      "localhost:4317",
			ServiceName:   "gateway-admin",
			SamplingRatio: 0.1,
		},
	}

	// Converter para YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Printf("Erro ao serializar configuração: %v\n", err)
		os.Exit(1)
	}

	// Escrever arquivo
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		fmt.Printf("Erro ao escrever arquivo: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Arquivo de configuração gerado em: %s\n", outputPath)
}
