package database

import (
	"context"
	"fmt"
	"time"

	"github.com/diillson/gateway-admin-go/internal/domain/model"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config contém configurações para o banco de dados
type Config struct {
	Driver          string
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
	SlowThreshold   time.Duration
}

// Database gerencia a conexão com o banco de dados
type Database struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewDatabase cria uma nova instância do banco de dados
func NewDatabase(ctx context.Context, config Config, zapLogger *zap.Logger) (*Database, error) {
	// Configurar GORM Logger
	gormLogger := logger.New(
		GormLogAdapter{zapLogger},
		logger.Config{
			SlowThreshold:             config.SlowThreshold,
			LogLevel:                  config.LogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	// Configurações do GORM
	gormConfig := &gorm.Config{
		Logger:                                   gormLogger,
		DisableForeignKeyConstraintWhenMigrating: true,
		SkipDefaultTransaction:                   true,
		PrepareStmt:                              true,
	}

	// Conectar ao banco de dados
	var db *gorm.DB
	var err error

	switch config.Driver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(config.DSN), gormConfig)
	case "mysql":
		db, err = gorm.Open(mysql.Open(config.DSN), gormConfig)
	case "postgres":
		db, err = gorm.Open(postgres.Open(config.DSN), gormConfig)
	default:
		return nil, fmt.Errorf("driver de banco de dados não suportado: %s", config.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao banco de dados: %w", err)
	}

	// Configurar pool de conexões
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("falha ao obter instância do banco de dados: %w", err)
	}

	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	// Testar conexão
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("falha ao testar conexão com banco de dados: %w", err)
	}

	database := &Database{
		db:     db,
		logger: zapLogger,
	}

	if err := database.migrate(ctx); err != nil {
		return nil, err
	}

	return database, nil
}

// migrate cria/atualiza o esquema das entidades do plano de controle
func (d *Database) migrate(ctx context.Context) error {
	err := d.db.WithContext(ctx).AutoMigrate(
		&model.RouteEntity{},
		&model.ConfigurationVersionEntity{},
		&model.VersionRouteEntity{},
	)
	if err != nil {
		return fmt.Errorf("falha ao migrar esquema: %w", err)
	}
	return nil
}

// DB retorna a conexão GORM subjacente
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Ping verifica a conectividade com o banco de dados
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close encerra a conexão com o banco de dados
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GormLogAdapter adapta o zap.Logger para a interface de log do GORM
type GormLogAdapter struct {
	Logger *zap.Logger
}

// Printf implementa a interface Writer do logger do GORM
func (a GormLogAdapter) Printf(format string, args ...interface{}) {
	a.Logger.Sugar().Infof(format, args...)
}
