package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diillson/gateway-admin-go/internal/domain/model"
	"github.com/diillson/gateway-admin-go/internal/domain/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VersionRepository implementa repository.VersionRepository
type VersionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
	tracer trace.Tracer
}

// NewVersionRepository cria um novo repositório de versões de configuração
func NewVersionRepository(db *gorm.DB, logger *zap.Logger) repository.VersionRepository {
	tracer := otel.GetTracerProvider().Tracer("gateway-admin.repository.version")

	return &VersionRepository{
		db:     db,
		logger: logger,
		tracer: tracer,
	}
}

// supportsRowLock indica se o dialeto aceita SELECT ... FOR UPDATE.
// O SQLite serializa escritas por conta própria e rejeita a sintaxe.
func (r *VersionRepository) supportsRowLock() bool {
	return r.db.Dialector.Name() != "sqlite"
}

// GetVersion obtém uma versão pelo ID com o snapshot de rotas
func (r *VersionRepository) GetVersion(ctx context.Context, id string) (*model.ConfigurationVersion, error) {
	ctx, span := r.tracer.Start(
		ctx,
		"VersionRepository.GetVersion",
		trace.WithAttributes(
			attribute.String("db.operation", "select"),
			attribute.String("db.table", "configuration_versions"),
			attribute.String("version.id", id),
		),
	)
	defer span.End()

	version, err := r.loadVersion(ctx, r.db, id)
	if err != nil {
		if errors.Is(err, repository.ErrVersionNotFound) {
			span.SetStatus(codes.Error, "version not found")
			return nil, err
		}
		r.logger.Error("falha ao buscar versão",
			zap.String("id", id),
			zap.Error(err))
		span.SetStatus(codes.Error, "database error")
		return nil, err
	}

	span.SetAttributes(attribute.Int("version.routes", len(version.Routes)))
	span.SetStatus(codes.Ok, "")
	return version, nil
}

// GetByVersion obtém uma versão pelo rótulo e ambiente
func (r *VersionRepository) GetByVersion(ctx context.Context, versionLabel, environment string) (*model.ConfigurationVersion, error) {
	ctx, span := r.tracer.Start(
		ctx,
		"VersionRepository.GetByVersion",
		trace.WithAttributes(
			attribute.String("db.operation", "select"),
			attribute.String("db.table", "configuration_versions"),
			attribute.String("version.label", versionLabel),
			attribute.String("version.environment", environment),
		),
	)
	defer span.End()

	var entity model.ConfigurationVersionEntity
	err := r.db.WithContext(ctx).
		Where("version = ? AND environment = ?", versionLabel, environment).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "version not found")
			return nil, repository.ErrVersionNotFound
		}
		span.SetStatus(codes.Error, "database error")
		return nil, fmt.Errorf("falha ao buscar versão por rótulo: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return r.loadVersion(ctx, r.db, entity.ID)
}

// GetActiveVersion obtém a versão ativa de um ambiente
func (r *VersionRepository) GetActiveVersion(ctx context.Context, environment string) (*model.ConfigurationVersion, error) {
	ctx, span := r.tracer.Start(
		ctx,
		"VersionRepository.GetActiveVersion",
		trace.WithAttributes(
			attribute.String("db.operation", "select"),
			attribute.String("db.table", "configuration_versions"),
			attribute.String("version.environment", environment),
		),
	)
	defer span.End()

	var entity model.ConfigurationVersionEntity
	err := r.db.WithContext(ctx).
		Where("environment = ? AND is_active = ?", environment, true).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Ambiente sem versão ativa é estado legítimo
			span.SetStatus(codes.Ok, "no active version")
			return nil, repository.ErrVersionNotFound
		}
		r.logger.Error("falha ao buscar versão ativa",
			zap.String("environment", environment),
			zap.Error(err))
		span.SetStatus(codes.Error, "database error")
		return nil, fmt.Errorf("falha ao buscar versão ativa: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return r.loadVersion(ctx, r.db, entity.ID)
}

// ListVersions retorna as versões, opcionalmente filtradas por ambiente
func (r *VersionRepository) ListVersions(ctx context.Context, environment string) ([]*model.ConfigurationVersion, error) {
	ctx, span := r.tracer.Start(
		ctx,
		"VersionRepository.ListVersions",
		trace.WithAttributes(
			attribute.String("db.operation", "select"),
			attribute.String("db.table", "configuration_versions"),
			attribute.String("version.environment", environment),
		),
	)
	defer span.End()

	query := r.db.WithContext(ctx)
	if environment != "" {
		query = query.Where("environment = ?", environment)
	}

	var entities []model.ConfigurationVersionEntity
	if err := query.Find(&entities).Error; err != nil {
		r.logger.Error("falha ao listar versões", zap.Error(err))
		span.SetStatus(codes.Error, "database error")
		return nil, fmt.Errorf("falha ao listar versões: %w", err)
	}

	versions := make([]*model.ConfigurationVersion, 0, len(entities))
	for i := range entities {
		version, err := r.loadVersion(ctx, r.db, entities[i].ID)
		if err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}

	span.SetAttributes(attribute.Int("versions.count", len(versions)))
	span.SetStatus(codes.Ok, "")
	return versions, nil
}

// AddVersion persiste uma nova versão e o snapshot inicial de rotas
func (r *VersionRepository) AddVersion(ctx context.Context, version *model.ConfigurationVersion) error {
	ctx, span := r.tracer.Start(
		ctx,
		"VersionRepository.AddVersion",
		trace.WithAttributes(
			attribute.String("db.operation", "insert"),
			attribute.String("db.table", "configuration_versions"),
			attribute.String("version.id", version.ID),
		),
	)
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(versionToEntity(version)).Error; err != nil {
			return err
		}

		for i, route := range version.Routes {
			association := model.VersionRouteEntity{
				VersionID: version.ID,
				RouteID:   route.ID,
				Position:  i,
			}
			if err := tx.Create(&association).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("falha ao adicionar versão",
			zap.String("id", version.ID),
			zap.Error(err))
		span.SetStatus(codes.Error, "database error")
		return fmt.Errorf("falha ao adicionar versão: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// UpdateDescription atualiza a descrição de uma versão
func (r *VersionRepository) UpdateDescription(ctx context.Context, id, description string) error {
	result := r.db.WithContext(ctx).Model(&model.ConfigurationVersionEntity{}).
		Where("id = ?", id).
		Update("description", description)
	if result.Error != nil {
		return fmt.Errorf("falha ao atualizar descrição: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrVersionNotFound
	}
	return nil
}

// AddRouteToVersion acrescenta uma rota ao snapshot da versão
func (r *VersionRepository) AddRouteToVersion(ctx context.Context, versionID, routeID string) error {
	ctx, span := r.tracer.Start(
		ctx,
		"VersionRepository.AddRouteToVersion",
		trace.WithAttributes(
			attribute.String("db.operation", "insert"),
			attribute.String("db.table", "version_routes"),
			attribute.String("version.id", versionID),
			attribute.String("route.id", routeID),
		),
	)
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.ConfigurationVersionEntity{}).Where("id = ?", versionID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return repository.ErrVersionNotFound
		}

		if err := tx.Model(&model.RouteEntity{}).Where("id = ?", routeID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return repository.ErrRouteNotFound
		}

		// Associação já existente é um no-op
		if err := tx.Model(&model.VersionRouteEntity{}).
			Where("version_id = ? AND route_id = ?", versionID, routeID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		var maxPosition int
		row := tx.Model(&model.VersionRouteEntity{}).
			Where("version_id = ?", versionID).
			Select("COALESCE(MAX(position), -1)").
			Row()
		if err := row.Scan(&maxPosition); err != nil {
			return err
		}

		association := model.VersionRouteEntity{
			VersionID: versionID,
			RouteID:   routeID,
			Position:  maxPosition + 1,
		}
		return tx.Create(&association).Error
	})
	if err != nil {
		if errors.Is(err, repository.ErrVersionNotFound) || errors.Is(err, repository.ErrRouteNotFound) {
			span.SetStatus(codes.Error, "not found")
			return err
		}
		r.logger.Error("falha ao associar rota à versão",
			zap.String("versionId", versionID),
			zap.String("routeId", routeID),
			zap.Error(err))
		span.SetStatus(codes.Error, "database error")
		return fmt.Errorf("falha ao associar rota à versão: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// RemoveRouteFromVersion remove uma rota do snapshot da versão
func (r *VersionRepository) RemoveRouteFromVersion(ctx context.Context, versionID, routeID string) error {
	result := r.db.WithContext(ctx).
		Where("version_id = ? AND route_id = ?", versionID, routeID).
		Delete(&model.VersionRouteEntity{})
	if result.Error != nil {
		return fmt.Errorf("falha ao remover rota da versão: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrRouteNotFound
	}
	return nil
}

// PublishVersion ativa a versão alvo em uma única transação serializável
// por ambiente. As linhas de versão do ambiente são travadas (FOR UPDATE nos
// dialetos que suportam), de modo que publicações concorrentes serializam e
// jamais deixam duas versões ativas.
func (r *VersionRepository) PublishVersion(ctx context.Context, id, publishedBy string) (*model.ConfigurationVersion, error) {
	ctx, span := r.tracer.Start(
		ctx,
		"VersionRepository.PublishVersion",
		trace.WithAttributes(
			attribute.String("db.operation", "transaction"),
			attribute.String("db.table", "configuration_versions"),
			attribute.String("version.id", id),
		),
	)
	defer span.End()

	if publishedBy == "" {
		publishedBy = "System"
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		targetQuery := tx
		if r.supportsRowLock() {
			targetQuery = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var target model.ConfigurationVersionEntity
		if err := targetQuery.Where("id = ?", id).First(&target).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrVersionNotFound
			}
			return err
		}

		// Travar todas as versões do ambiente: é a seção crítica que
		// serializa publicações concorrentes
		lockQuery := tx.Model(&model.ConfigurationVersionEntity{}).Where("environment = ?", target.Environment)
		if r.supportsRowLock() {
			lockQuery = lockQuery.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var lockedIDs []string
		if err := lockQuery.Pluck("id", &lockedIDs).Error; err != nil {
			return err
		}

		// Desativar a versão ativa atual, se houver e for outra
		err := tx.Model(&model.ConfigurationVersionEntity{}).
			Where("environment = ? AND is_active = ? AND id <> ?", target.Environment, true, id).
			Update("is_active", false).Error
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		return tx.Model(&model.ConfigurationVersionEntity{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"is_active":    true,
				"published_at": now,
				"published_by": publishedBy,
			}).Error
	})
	if err != nil {
		if errors.Is(err, repository.ErrVersionNotFound) {
			span.SetStatus(codes.Error, "version not found")
			return nil, err
		}
		r.logger.Error("falha ao publicar versão",
			zap.String("id", id),
			zap.Error(err))
		span.SetStatus(codes.Error, "database error")
		return nil, fmt.Errorf("falha ao publicar versão: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return r.loadVersion(ctx, r.db, id)
}

// UnpublishVersion desativa a versão. Idempotente: despublicar uma versão já
// inativa não é erro e não altera estado.
func (r *VersionRepository) UnpublishVersion(ctx context.Context, id string) (*model.ConfigurationVersion, error) {
	ctx, span := r.tracer.Start(
		ctx,
		"VersionRepository.UnpublishVersion",
		trace.WithAttributes(
			attribute.String("db.operation", "update"),
			attribute.String("db.table", "configuration_versions"),
			attribute.String("version.id", id),
		),
	)
	defer span.End()

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ConfigurationVersionEntity{}).Where("id = ?", id).Count(&count).Error; err != nil {
		span.SetStatus(codes.Error, "database error")
		return nil, fmt.Errorf("falha ao despublicar versão: %w", err)
	}
	if count == 0 {
		span.SetStatus(codes.Error, "version not found")
		return nil, repository.ErrVersionNotFound
	}

	err := r.db.WithContext(ctx).Model(&model.ConfigurationVersionEntity{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false).Error
	if err != nil {
		r.logger.Error("falha ao despublicar versão",
			zap.String("id", id),
			zap.Error(err))
		span.SetStatus(codes.Error, "database error")
		return nil, fmt.Errorf("falha ao despublicar versão: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return r.loadVersion(ctx, r.db, id)
}

// DeleteVersion remove uma versão inativa e seu snapshot de associações
func (r *VersionRepository) DeleteVersion(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(
		ctx,
		"VersionRepository.DeleteVersion",
		trace.WithAttributes(
			attribute.String("db.operation", "delete"),
			attribute.String("db.table", "configuration_versions"),
			attribute.String("version.id", id),
		),
	)
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entity model.ConfigurationVersionEntity
		if err := tx.Where("id = ?", id).First(&entity).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrVersionNotFound
			}
			return err
		}

		if entity.IsActive {
			return repository.ErrVersionActive
		}

		if err := tx.Where("version_id = ?", id).Delete(&model.VersionRouteEntity{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.ConfigurationVersionEntity{}).Error
	})
	if err != nil {
		if errors.Is(err, repository.ErrVersionNotFound) || errors.Is(err, repository.ErrVersionActive) {
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		r.logger.Error("falha ao remover versão",
			zap.String("id", id),
			zap.Error(err))
		span.SetStatus(codes.Error, "database error")
		return fmt.Errorf("falha ao remover versão: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// loadVersion carrega a versão e seu snapshot de rotas em ordem de inserção
func (r *VersionRepository) loadVersion(ctx context.Context, db *gorm.DB, id string) (*model.ConfigurationVersion, error) {
	var entity model.ConfigurationVersionEntity
	if err := db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrVersionNotFound
		}
		return nil, fmt.Errorf("falha ao carregar versão: %w", err)
	}

	version := entityToVersion(&entity)

	var routeEntities []model.RouteEntity
	err := db.WithContext(ctx).Model(&model.RouteEntity{}).
		Joins("JOIN version_routes ON version_routes.route_id = routes.id").
		Where("version_routes.version_id = ?", id).
		Order("version_routes.position").
		Find(&routeEntities).Error
	if err != nil {
		return nil, fmt.Errorf("falha ao carregar snapshot de rotas: %w", err)
	}

	for i := range routeEntities {
		route, err := entityToRoute(&routeEntities[i])
		if err != nil {
			r.logger.Error("falha ao converter rota do snapshot", zap.Error(err))
			continue
		}
		version.Routes = append(version.Routes, route)
	}

	return version, nil
}
