package version

import (
	"context"
	"errors"
	"fmt"

	"github.com/diillson/gateway-admin-go/internal/app/gatewayconfig"
	"github.com/diillson/gateway-admin-go/internal/compiler"
	"github.com/diillson/gateway-admin-go/internal/domain/bus"
	"github.com/diillson/gateway-admin-go/internal/domain/model"
	"github.com/diillson/gateway-admin-go/internal/domain/repository"
	"github.com/diillson/gateway-admin-go/internal/infra/metrics"
	pkgerrors "github.com/diillson/gateway-admin-go/pkg/errors"
	"github.com/diillson/gateway-admin-go/pkg/logging"
	"go.uber.org/zap"
)

// Service implementa o ciclo de vida das versões de configuração: criação de
// snapshots, montagem, publicação e descarte. Cada mutação bem-sucedida
// invalida o cache do ambiente e publica exatamente um evento de mudança;
// falha na publicação nunca desfaz a escrita.
type Service struct {
	versions repository.VersionRepository
	routes   repository.RouteRepository
	config   *gatewayconfig.ConfigurationCache
	bus      bus.ChangeBus
	metrics  *metrics.ControlPlaneMetrics
	logger   *logging.ContextLogger
}

func NewService(versions repository.VersionRepository, routes repository.RouteRepository, config *gatewayconfig.ConfigurationCache, changeBus bus.ChangeBus, m *metrics.ControlPlaneMetrics, logger *zap.Logger) *Service {
	return &Service{
		versions: versions,
		routes:   routes,
		config:   config,
		bus:      changeBus,
		metrics:  m,
		logger:   logging.NewContextLogger(logger),
	}
}

// CreateVersionInput agrupa os campos aceitos na criação de uma versão.
// RouteIDs vazio captura todas as rotas ativas do ambiente no snapshot.
type CreateVersionInput struct {
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Environment string   `json:"environment"`
	CreatedBy   string   `json:"createdBy"`
	RouteIDs    []string `json:"routeIds"`
}

// CreateVersion cria uma versão inativa com o snapshot de rotas resolvido no
// momento da criação
func (s *Service) CreateVersion(ctx context.Context, input CreateVersionInput) (*model.ConfigurationVersion, error) {
	version := model.NewConfigurationVersion(input.Version, input.Description, input.Environment, input.CreatedBy)
	if err := version.Validate(); err != nil {
		return nil, pkgerrors.BadRequest("versão inválida", err)
	}

	if len(input.RouteIDs) > 0 {
		for _, routeID := range input.RouteIDs {
			route, err := s.routes.GetRoute(ctx, routeID)
			if err != nil {
				if errors.Is(err, repository.ErrRouteNotFound) {
					return nil, pkgerrors.BadRequest(fmt.Sprintf("rota %s não existe", routeID), err)
				}
				return nil, err
			}
			if route.Environment != version.Environment {
				return nil, pkgerrors.BadRequest(
					fmt.Sprintf("rota %s pertence ao ambiente %s", routeID, route.Environment), nil)
			}
			version.AddRoute(route)
		}
	} else {
		// Snapshot padrão: todas as rotas ativas do ambiente
		active, err := s.routes.ListActiveRoutes(ctx, version.Environment)
		if err != nil {
			return nil, err
		}
		for _, route := range active {
			version.AddRoute(route)
		}
	}

	if err := s.versions.AddVersion(ctx, version); err != nil {
		s.logger.ErrorCtx(ctx, "falha ao persistir versão",
			zap.String("version", version.Version),
			zap.String("environment", version.Environment),
			zap.Error(err))
		return nil, err
	}

	s.logger.InfoCtx(ctx, "versão criada",
		zap.String("versionId", version.ID),
		zap.String("version", version.Version),
		zap.String("environment", version.Environment),
		zap.Int("routes", len(version.Routes)))

	s.notifyChange(ctx, version.Environment, model.VersionCreated, version.ID)
	return version, nil
}

// GetVersion retorna uma versão pelo identificador, com o snapshot carregado
func (s *Service) GetVersion(ctx context.Context, id string) (*model.ConfigurationVersion, error) {
	version, err := s.versions.GetVersion(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVersionNotFound) {
			return nil, pkgerrors.NotFound("versão", err)
		}
		return nil, err
	}
	return version, nil
}

// GetActiveVersion retorna a versão ativa do ambiente
func (s *Service) GetActiveVersion(ctx context.Context, environment string) (*model.ConfigurationVersion, error) {
	version, err := s.versions.GetActiveVersion(ctx, environment)
	if err != nil {
		if errors.Is(err, repository.ErrVersionNotFound) {
			return nil, pkgerrors.NotFound("versão ativa", err)
		}
		return nil, err
	}
	return version, nil
}

// GetCompiledConfiguration retorna a configuração compilada do ambiente,
// servida pelo cache de leitura
func (s *Service) GetCompiledConfiguration(ctx context.Context, environment string) (*model.CompiledConfiguration, error) {
	if s.config != nil {
		return s.config.Get(ctx, environment)
	}

	version, err := s.versions.GetActiveVersion(ctx, environment)
	if errors.Is(err, repository.ErrVersionNotFound) {
		return compiler.Empty(environment), nil
	}
	if err != nil {
		return nil, err
	}
	return compiler.Compile(version), nil
}

// GetCompiledVersion compila o snapshot de uma versão específica, ativa ou
// não, sem passar pelo cache. Serve para inspecionar o que um provider
// receberia se essa versão fosse publicada.
func (s *Service) GetCompiledVersion(ctx context.Context, id string) (*model.CompiledConfiguration, error) {
	version, err := s.versions.GetVersion(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVersionNotFound) {
			return nil, pkgerrors.NotFound("versão", err)
		}
		return nil, err
	}
	return compiler.Compile(version), nil
}

// ValidateVersion verifica se todas as rotas do snapshot da versão passam na
// validação. Rotas inválidas são relatadas em conjunto nos detalhes do erro.
func (s *Service) ValidateVersion(ctx context.Context, id string) error {
	version, err := s.versions.GetVersion(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVersionNotFound) {
			return pkgerrors.NotFound("versão", err)
		}
		return err
	}

	var invalid []string
	for _, route := range version.Routes {
		if err := route.Validate(); err != nil {
			invalid = append(invalid, fmt.Sprintf("%s: %v", route.Name, err))
		}
	}
	if len(invalid) > 0 {
		return pkgerrors.BadRequest("versão com rotas inválidas", nil).WithDetails(invalid)
	}
	return nil
}

// ListVersions retorna as versões; environment vazio lista todas
func (s *Service) ListVersions(ctx context.Context, environment string) ([]*model.ConfigurationVersion, error) {
	return s.versions.ListVersions(ctx, environment)
}

// UpdateDescription altera a descrição de uma versão
func (s *Service) UpdateDescription(ctx context.Context, id, description string) error {
	if err := s.versions.UpdateDescription(ctx, id, description); err != nil {
		if errors.Is(err, repository.ErrVersionNotFound) {
			return pkgerrors.NotFound("versão", err)
		}
		return err
	}
	return nil
}

// AddRoute acrescenta uma rota ao snapshot de uma versão inativa. O snapshot
// de uma versão ativa é imutável; publique uma nova versão.
func (s *Service) AddRoute(ctx context.Context, versionID, routeID string) error {
	version, err := s.versions.GetVersion(ctx, versionID)
	if err != nil {
		if errors.Is(err, repository.ErrVersionNotFound) {
			return pkgerrors.NotFound("versão", err)
		}
		return err
	}
	if version.IsActive {
		return pkgerrors.Conflict("versão ativa não pode ser alterada", repository.ErrVersionActive)
	}

	route, err := s.routes.GetRoute(ctx, routeID)
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return pkgerrors.NotFound("rota", err)
		}
		return err
	}
	if route.Environment != version.Environment {
		return pkgerrors.BadRequest(
			fmt.Sprintf("rota %s pertence ao ambiente %s", routeID, route.Environment), nil)
	}

	return s.versions.AddRouteToVersion(ctx, versionID, routeID)
}

// RemoveRoute remove uma rota do snapshot de uma versão inativa
func (s *Service) RemoveRoute(ctx context.Context, versionID, routeID string) error {
	version, err := s.versions.GetVersion(ctx, versionID)
	if err != nil {
		if errors.Is(err, repository.ErrVersionNotFound) {
			return pkgerrors.NotFound("versão", err)
		}
		return err
	}
	if version.IsActive {
		return pkgerrors.Conflict("versão ativa não pode ser alterada", repository.ErrVersionActive)
	}

	return s.versions.RemoveRouteFromVersion(ctx, versionID, routeID)
}

// Publish ativa a versão, desativando a versão ativa anterior do ambiente na
// mesma transação, e anuncia a mudança
func (s *Service) Publish(ctx context.Context, id, publishedBy string) (*model.ConfigurationVersion, error) {
	version, err := s.versions.PublishVersion(ctx, id, publishedBy)
	if err != nil {
		if errors.Is(err, repository.ErrVersionNotFound) {
			return nil, pkgerrors.NotFound("versão", err)
		}
		if s.metrics != nil {
			s.metrics.PublishConflict()
		}
		s.logger.ErrorCtx(ctx, "falha ao publicar versão", zap.String("versionId", id), zap.Error(err))
		return nil, err
	}

	s.logger.InfoCtx(ctx, "versão publicada",
		zap.String("versionId", version.ID),
		zap.String("version", version.Version),
		zap.String("environment", version.Environment),
		zap.String("publishedBy", version.PublishedBy))

	s.notifyChange(ctx, version.Environment, model.VersionPublished, version.ID)
	return version, nil
}

// Unpublish desativa a versão, deixando o ambiente sem versão ativa.
// Despublicar uma versão já inativa é um no-op sem evento.
func (s *Service) Unpublish(ctx context.Context, id string) (*model.ConfigurationVersion, error) {
	version, err := s.versions.GetVersion(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVersionNotFound) {
			return nil, pkgerrors.NotFound("versão", err)
		}
		return nil, err
	}
	if !version.IsActive {
		return version, nil
	}

	version, err = s.versions.UnpublishVersion(ctx, id)
	if err != nil {
		s.logger.ErrorCtx(ctx, "falha ao despublicar versão", zap.String("versionId", id), zap.Error(err))
		return nil, err
	}

	s.logger.InfoCtx(ctx, "versão despublicada",
		zap.String("versionId", version.ID),
		zap.String("environment", version.Environment))

	s.notifyChange(ctx, version.Environment, model.VersionUnpublished, version.ID)
	return version, nil
}

// Delete remove uma versão inativa e suas associações
func (s *Service) Delete(ctx context.Context, id string) error {
	version, err := s.versions.GetVersion(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVersionNotFound) {
			return pkgerrors.NotFound("versão", err)
		}
		return err
	}

	if err := s.versions.DeleteVersion(ctx, id); err != nil {
		if errors.Is(err, repository.ErrVersionActive) {
			return pkgerrors.Conflict("versão ativa não pode ser excluída", err)
		}
		if errors.Is(err, repository.ErrVersionNotFound) {
			return pkgerrors.NotFound("versão", err)
		}
		return err
	}

	s.logger.InfoCtx(ctx, "versão excluída",
		zap.String("versionId", id),
		zap.String("environment", version.Environment))

	s.notifyChange(ctx, version.Environment, model.VersionDeleted, id)
	return nil
}

// notifyChange invalida o cache e publica o evento; falha aqui nunca desfaz a
// mutação já persistida
func (s *Service) notifyChange(ctx context.Context, environment string, kind model.ChangeKind, subjectID string) {
	if s.config != nil {
		if err := s.config.Invalidate(ctx, environment); err != nil {
			s.logger.WarnCtx(ctx, "falha ao invalidar cache após mutação",
				zap.String("environment", environment),
				zap.Error(err))
		}
	}

	if s.bus == nil {
		return
	}

	event := model.NewChangeEvent(environment, kind, subjectID)
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.ErrorCtx(ctx, "falha ao publicar evento de mudança",
			zap.String("environment", environment),
			zap.String("changeKind", string(kind)),
			zap.Error(err))
		return
	}

	if s.metrics != nil {
		s.metrics.EventPublished(environment, string(kind))
	}
}
