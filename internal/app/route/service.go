package route

import (
	"context"
	"errors"
	"time"

	"github.com/diillson/gateway-admin-go/internal/app/gatewayconfig"
	"github.com/diillson/gateway-admin-go/internal/domain/bus"
	"github.com/diillson/gateway-admin-go/internal/domain/model"
	"github.com/diillson/gateway-admin-go/internal/domain/repository"
	"github.com/diillson/gateway-admin-go/internal/infra/metrics"
	pkgerrors "github.com/diillson/gateway-admin-go/pkg/errors"
	"github.com/diillson/gateway-admin-go/pkg/logging"
	"go.uber.org/zap"
)

// Service implementa as operações administrativas sobre rotas. Toda mutação
// bem-sucedida invalida o cache do ambiente e publica exatamente um evento de
// mudança; falha na publicação nunca desfaz a escrita, apenas é registrada.
type Service struct {
	repo    repository.RouteRepository
	config  *gatewayconfig.ConfigurationCache
	bus     bus.ChangeBus
	metrics *metrics.ControlPlaneMetrics
	logger  *logging.ContextLogger
}

func NewService(repo repository.RouteRepository, config *gatewayconfig.ConfigurationCache, changeBus bus.ChangeBus, m *metrics.ControlPlaneMetrics, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		config:  config,
		bus:     changeBus,
		metrics: m,
		logger:  logging.NewContextLogger(logger),
	}
}

// CreateRouteInput agrupa os campos aceitos na criação de uma rota
type CreateRouteInput struct {
	Name                   string              `json:"name"`
	DownstreamPathTemplate string              `json:"downstreamPathTemplate"`
	UpstreamPathTemplate   string              `json:"upstreamPathTemplate"`
	Methods                []string            `json:"methods"`
	DownstreamScheme       string              `json:"downstreamScheme"`
	DownstreamHostAndPorts []model.HostAndPort `json:"downstreamHostAndPorts"`
	CaseSensitive          bool                `json:"caseSensitive"`
	ServiceName            string              `json:"serviceName"`
	LoadBalancerOptions    string              `json:"loadBalancerOptions"`
	AuthenticationOptions  string              `json:"authenticationOptions"`
	RateLimitOptions       string              `json:"rateLimitOptions"`
	QoSOptions             string              `json:"qosOptions"`
	Environment            string              `json:"environment"`
	CreatedBy              string              `json:"createdBy"`
}

// UpdateRouteInput agrupa os campos aceitos na atualização de uma rota.
// Identidade, ambiente e campos de auditoria de criação são imutáveis.
type UpdateRouteInput struct {
	Name                   string              `json:"name"`
	DownstreamPathTemplate string              `json:"downstreamPathTemplate"`
	UpstreamPathTemplate   string              `json:"upstreamPathTemplate"`
	Methods                []string            `json:"methods"`
	DownstreamScheme       string              `json:"downstreamScheme"`
	DownstreamHostAndPorts []model.HostAndPort `json:"downstreamHostAndPorts"`
	CaseSensitive          bool                `json:"caseSensitive"`
	ServiceName            string              `json:"serviceName"`
	LoadBalancerOptions    string              `json:"loadBalancerOptions"`
	AuthenticationOptions  string              `json:"authenticationOptions"`
	RateLimitOptions       string              `json:"rateLimitOptions"`
	QoSOptions             string              `json:"qosOptions"`
	UpdatedBy              string              `json:"updatedBy"`
}

// CreateRoute valida e persiste uma nova rota
func (s *Service) CreateRoute(ctx context.Context, input CreateRouteInput) (*model.Route, error) {
	route := model.NewRoute(
		input.Name,
		input.DownstreamPathTemplate,
		input.UpstreamPathTemplate,
		input.Methods,
		input.DownstreamScheme,
		input.DownstreamHostAndPorts,
		input.Environment,
		input.CreatedBy,
	)
	route.CaseSensitive = input.CaseSensitive
	route.ServiceName = input.ServiceName
	route.LoadBalancerOptions = input.LoadBalancerOptions
	route.AuthenticationOptions = input.AuthenticationOptions
	route.RateLimitOptions = input.RateLimitOptions
	route.QoSOptions = input.QoSOptions

	if err := route.Validate(); err != nil {
		return nil, pkgerrors.BadRequest("rota inválida", err)
	}

	if err := s.repo.AddRoute(ctx, route); err != nil {
		s.logger.ErrorCtx(ctx, "falha ao persistir rota", zap.String("name", route.Name), zap.Error(err))
		return nil, err
	}

	s.logger.InfoCtx(ctx, "rota criada",
		zap.String("routeId", route.ID),
		zap.String("name", route.Name),
		zap.String("environment", route.Environment))

	s.notifyChange(ctx, route.Environment, model.RouteCreated, route.ID)
	return route, nil
}

// GetRoute retorna uma rota pelo identificador
func (s *Service) GetRoute(ctx context.Context, id string) (*model.Route, error) {
	route, err := s.repo.GetRoute(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return nil, pkgerrors.NotFound("rota", err)
		}
		return nil, err
	}
	return route, nil
}

// ListRoutes retorna as rotas cadastradas; environment vazio lista todas
func (s *Service) ListRoutes(ctx context.Context, environment string) ([]*model.Route, error) {
	return s.repo.ListRoutes(ctx, environment)
}

// UpdateRoute substitui os campos mutáveis de uma rota existente
func (s *Service) UpdateRoute(ctx context.Context, id string, input UpdateRouteInput) (*model.Route, error) {
	route, err := s.repo.GetRoute(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return nil, pkgerrors.NotFound("rota", err)
		}
		return nil, err
	}

	route.Name = input.Name
	route.DownstreamPathTemplate = input.DownstreamPathTemplate
	route.UpstreamPathTemplate = input.UpstreamPathTemplate
	route.Methods = model.NormalizeMethods(input.Methods)
	route.DownstreamScheme = input.DownstreamScheme
	route.DownstreamHostAndPorts = input.DownstreamHostAndPorts
	route.CaseSensitive = input.CaseSensitive
	route.ServiceName = input.ServiceName
	route.LoadBalancerOptions = input.LoadBalancerOptions
	route.AuthenticationOptions = input.AuthenticationOptions
	route.RateLimitOptions = input.RateLimitOptions
	route.QoSOptions = input.QoSOptions
	route.UpdatedAt = time.Now().UTC()
	route.UpdatedBy = input.UpdatedBy

	if err := route.Validate(); err != nil {
		return nil, pkgerrors.BadRequest("rota inválida", err)
	}

	if err := s.repo.UpdateRoute(ctx, route); err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return nil, pkgerrors.NotFound("rota", err)
		}
		s.logger.ErrorCtx(ctx, "falha ao atualizar rota", zap.String("routeId", id), zap.Error(err))
		return nil, err
	}

	s.logger.InfoCtx(ctx, "rota atualizada",
		zap.String("routeId", route.ID),
		zap.String("environment", route.Environment))

	s.notifyChange(ctx, route.Environment, model.RouteUpdated, route.ID)
	return route, nil
}

// SetRouteActive ativa ou desativa uma rota sem tocar nos demais campos
func (s *Service) SetRouteActive(ctx context.Context, id string, active bool, updatedBy string) (*model.Route, error) {
	route, err := s.repo.GetRoute(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return nil, pkgerrors.NotFound("rota", err)
		}
		return nil, err
	}

	if route.IsActive == active {
		// Sem transição de estado, sem evento
		return route, nil
	}

	if err := s.repo.SetRouteActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return nil, pkgerrors.NotFound("rota", err)
		}
		s.logger.ErrorCtx(ctx, "falha ao alterar status da rota", zap.String("routeId", id), zap.Error(err))
		return nil, err
	}

	route.IsActive = active
	route.UpdatedAt = time.Now().UTC()
	route.UpdatedBy = updatedBy

	s.logger.InfoCtx(ctx, "status da rota alterado",
		zap.String("routeId", id),
		zap.Bool("isActive", active),
		zap.String("environment", route.Environment))

	s.notifyChange(ctx, route.Environment, model.RouteStatusChanged, id)
	return route, nil
}

// DeleteRoute remove a rota e as associações com versões de configuração
func (s *Service) DeleteRoute(ctx context.Context, id string) error {
	route, err := s.repo.GetRoute(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return pkgerrors.NotFound("rota", err)
		}
		return err
	}

	if err := s.repo.DeleteRoute(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			return pkgerrors.NotFound("rota", err)
		}
		s.logger.ErrorCtx(ctx, "falha ao excluir rota", zap.String("routeId", id), zap.Error(err))
		return err
	}

	s.logger.InfoCtx(ctx, "rota excluída",
		zap.String("routeId", id),
		zap.String("environment", route.Environment))

	s.notifyChange(ctx, route.Environment, model.RouteDeleted, id)
	return nil
}

// notifyChange invalida o cache do ambiente e publica o evento de mudança.
// Falha aqui nunca falha a mutação que a originou; a rede de segurança é o
// TTL do cache e o resync dos providers.
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
