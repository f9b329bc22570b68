package mocks

import (
	"context"

	"github.com/diillson/gateway-admin-go/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

// MockRouteRepository é um mock para o repository.RouteRepository
type MockRouteRepository struct {
	mock.Mock
}

func (m *MockRouteRepository) GetRoute(ctx context.Context, id string) (*model.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Route), args.Error(1)
}

func (m *MockRouteRepository) ListRoutes(ctx context.Context, environment string) ([]*model.Route, error) {
	args := m.Called(ctx, environment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Route), args.Error(1)
}

func (m *MockRouteRepository) ListActiveRoutes(ctx context.Context, environment string) ([]*model.Route, error) {
	args := m.Called(ctx, environment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Route), args.Error(1)
}

func (m *MockRouteRepository) AddRoute(ctx context.Context, route *model.Route) error {
	args := m.Called(ctx, route)
	return args.Error(0)
}

func (m *MockRouteRepository) UpdateRoute(ctx context.Context, route *model.Route) error {
	args := m.Called(ctx, route)
	return args.Error(0)
}

func (m *MockRouteRepository) SetRouteActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockRouteRepository) DeleteRoute(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
