package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/diillson/gateway-admin-go/internal/domain/model"
	"github.com/diillson/gateway-admin-go/internal/domain/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RouteRepository implementa repository.RouteRepository
type RouteRepository struct {
	db     *gorm.DB
	logger *zap.Logger
	tracer trace.Tracer
}

// NewRouteRepository cria um novo repositório de rotas
func NewRouteRepository(db *gorm.DB, logger *zap.Logger) repository.RouteRepository {
	tracer := otel.GetTracerProvider().Tracer("gateway-admin.repository.route")

	return &RouteRepository{
		db:     db,
		logger: logger,
		tracer: tracer,
	}
}

// GetRoute obtém uma rota pelo ID
func (r *RouteRepository) GetRoute(ctx context.Context, id string) (*model.Route, error) {
	ctx, span := r.tracer.Start(
		ctx,
		"RouteRepository.GetRoute",
		trace.WithAttributes(
			attribute.String("db.operation", "select"),
			attribute.String("db.table", "routes"),
			attribute.String("route.id", id),
		),
	)
	defer span.End()

	var entity model.RouteEntity

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "route not found")
			return nil, repository.ErrRouteNotFound
		}
		r.logger.Error("falha ao buscar rota",
			zap.String("id", id),
			zap.Error(err))
		span.SetStatus(codes.Error, "database error")
		return nil, fmt.Errorf("falha ao buscar rota: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return entityToRoute(&entity)
}

// ListRoutes retorna as rotas, opcionalmente filtradas por ambiente
func (r *RouteRepository) ListRoutes(ctx context.Context, environment string) ([]*model.Route, error) {
	ctx, span := r.tracer.Start(
		ctx,
		"RouteRepository.ListRoutes",
		trace.WithAttributes(
			attribute.String("db.operation", "select"),
			attribute.String("db.table", "routes"),
			attribute.String("route.environment", environment),
		),
	)
	defer span.End()

	query := r.db.WithContext(ctx)
	if environment != "" {
		query = query.Where("environment = ?", environment)
	}

	var entities []model.RouteEntity
	if err := query.Find(&entities).Error; err != nil {
		r.logger.Error("falha ao listar rotas", zap.Error(err))
		span.SetStatus(codes.Error, "database error")
		return nil, fmt.Errorf("falha ao listar rotas: %w", err)
	}

	routes, err := r.entitiesToRoutes(entities, span)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("routes.count", len(routes)))
	span.SetStatus(codes.Ok, "")
	return routes, nil
}

// ListActiveRoutes retorna as rotas ativas de um ambiente
func (r *RouteRepository) ListActiveRoutes(ctx context.Context, environment string) ([]*model.Route, error) {
	ctx, span := r.tracer.Start(
		ctx,
		"RouteRepository.ListActiveRoutes",
		trace.WithAttributes(
			attribute.String("db.operation", "select"),
			attribute.String("db.table", "routes"),
			attribute.String("route.environment", environment),
		),
	)
	defer span.End()

	var entities []model.RouteEntity
	err := r.db.WithContext(ctx).
		Where("environment = ? AND is_active = ?", environment, true).
		Find(&entities).Error
	if err != nil {
		r.logger.Error("falha ao listar rotas ativas",
			zap.String("environment", environment),
			zap.Error(err))
		span.SetStatus(codes.Error, "database error")
		return nil, fmt.Errorf("falha ao listar rotas ativas: %w", err)
	}

	routes, err := r.entitiesToRoutes(entities, span)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("routes.count", len(routes)))
	span.SetStatus(codes.Ok, "")
	return routes, nil
}

// AddRoute adiciona uma nova rota
func (r *RouteRepository) AddRoute(ctx context.Context, route *model.Route) error {
	ctx, span := r.tracer.Start(
		ctx,
		"RouteRepository.AddRoute",
		trace.WithAttributes(
			attribute.String("db.operation", "insert"),
			attribute.String("db.table", "routes"),
			attribute.String("route.id", route.ID),
		),
	)
	defer span.End()

	entity, err := routeToEntity(route)
	if err != nil {
		span.SetStatus(codes.Error, "conversion error")
		return err
	}

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		r.logger.Error("falha ao adicionar rota",
			zap.String("id", route.ID),
			zap.Error(err))
		span.SetStatus(codes.Error, "database error")
		return fmt.Errorf("falha ao adicionar rota: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// UpdateRoute atualiza uma rota existente
func (r *RouteRepository) UpdateRoute(ctx context.Context, route *model.Route) error {
	ctx, span := r.tracer.Start(
		ctx,
		"RouteRepository.UpdateRoute",
		trace.WithAttributes(
			attribute.String("db.operation", "update"),
			attribute.String("db.table", "routes"),
			attribute.String("route.id", route.ID),
		),
	)
	defer span.End()

	entity, err := routeToEntity(route)
	if err != nil {
		span.SetStatus(codes.Error, "conversion error")
		return err
	}

	result := r.db.WithContext(ctx).Model(&model.RouteEntity{}).
		Where("id = ?", route.ID).
		Updates(map[string]interface{}{
			"name":                     entity.Name,
			"downstream_path_template": entity.DownstreamPathTemplate,
			"upstream_path_template":   entity.UpstreamPathTemplate,
			"methods":                  entity.MethodsJSON,
			"downstream_scheme":        entity.DownstreamScheme,
			"downstream_hosts":         entity.HostsJSON,
			"case_sensitive":           entity.CaseSensitive,
			"service_name":             entity.ServiceName,
			"load_balancer_options":    entity.LoadBalancerOptions,
			"authentication_options":   entity.AuthenticationOptions,
			"rate_limit_options":       entity.RateLimitOptions,
			"qos_options":              entity.QoSOptions,
			"is_active":                entity.IsActive,
			"updated_by":               entity.UpdatedBy,
		})
	if result.Error != nil {
		r.logger.Error("falha ao atualizar rota",
			zap.String("id", route.ID),
			zap.Error(result.Error))
		span.SetStatus(codes.Error, "database error")
		return fmt.Errorf("falha ao atualizar rota: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		span.SetStatus(codes.Error, "route not found")
		return repository.ErrRouteNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// SetRouteActive ativa ou desativa uma rota
func (r *RouteRepository) SetRouteActive(ctx context.Context, id string, active bool) error {
	ctx, span := r.tracer.Start(
		ctx,
		"RouteRepository.SetRouteActive",
		trace.WithAttributes(
			attribute.String("db.operation", "update"),
			attribute.String("db.table", "routes"),
			attribute.String("route.id", id),
			attribute.Bool("route.active", active),
		),
	)
	defer span.End()

	result := r.db.WithContext(ctx).Model(&model.RouteEntity{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		r.logger.Error("falha ao alterar estado da rota",
			zap.String("id", id),
			zap.Error(result.Error))
		span.SetStatus(codes.Error, "database error")
		return fmt.Errorf("falha ao alterar estado da rota: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		span.SetStatus(codes.Error, "route not found")
		return repository.ErrRouteNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// DeleteRoute remove uma rota e, em cascata, suas associações com versões
func (r *RouteRepository) DeleteRoute(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(
		ctx,
		"RouteRepository.DeleteRoute",
		trace.WithAttributes(
			attribute.String("db.operation", "delete"),
			attribute.String("db.table", "routes"),
			attribute.String("route.id", id),
		),
	)
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&model.RouteEntity{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrRouteNotFound
		}

		// Cascata da associação: as versões permanecem, o snapshot encolhe
		return tx.Where("route_id = ?", id).Delete(&model.VersionRouteEntity{}).Error
	})
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			span.SetStatus(codes.Error, "route not found")
			return err
		}
		r.logger.Error("falha ao remover rota",
			zap.String("id", id),
			zap.Error(err))
		span.SetStatus(codes.Error, "database error")
		return fmt.Errorf("falha ao remover rota: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// entitiesToRoutes converte entidades em modelos, pulando registros corrompidos
func (r *RouteRepository) entitiesToRoutes(entities []model.RouteEntity, span trace.Span) ([]*model.Route, error) {
	routes := make([]*model.Route, 0, len(entities))
	for i := range entities {
		route, err := entityToRoute(&entities[i])
		if err != nil {
			r.logger.Error("falha ao converter entidade para modelo", zap.Error(err))
			span.AddEvent("error.conversion",
				trace.WithAttributes(
					attribute.String("entity.id", entities[i].ID),
					attribute.String("error.message", err.Error()),
				),
			)
			continue
		}
		routes = append(routes, route)
	}
	return routes, nil
}
