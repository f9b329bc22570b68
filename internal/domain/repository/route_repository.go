package repository

import (
	"context"
	"errors"

	"github.com/diillson/gateway-admin-go/internal/domain/model"
)

var (
	ErrRouteNotFound   = errors.New("route not found")
	ErrVersionNotFound = errors.New("configuration version not found")
	ErrVersionActive   = errors.New("configuration version is active")
)

// RouteRepository define a interface para armazenamento de rotas
type RouteRepository interface {
	// GetRoute obtém uma rota pelo ID
	GetRoute(ctx context.Context, id string) (*model.Route, error)

	// ListRoutes retorna as rotas, opcionalmente filtradas por ambiente
	// (environment vazio retorna todas)
	ListRoutes(ctx context.Context, environment string) ([]*model.Route, error)

	// ListActiveRoutes retorna as rotas ativas de um ambiente
	ListActiveRoutes(ctx context.Context, environment string) ([]*model.Route, error)

	// AddRoute adiciona uma nova rota
	AddRoute(ctx context.Context, route *model.Route) error

	// UpdateRoute atualiza uma rota existente
	UpdateRoute(ctx context.Context, route *model.Route) error

	// SetRouteActive ativa ou desativa uma rota
	SetRouteActive(ctx context.Context, id string, active bool) error

	// DeleteRoute remove uma rota pelo ID. As associações com versões são
	// removidas em cascata; as versões em si nunca são removidas.
	DeleteRoute(ctx context.Context, id string) error
}
