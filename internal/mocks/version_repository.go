package mocks

import (
	"context"

	"github.com/diillson/gateway-admin-go/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

// MockVersionRepository é um mock para o repository.VersionRepository
type MockVersionRepository struct {
	mock.Mock
}

func (m *MockVersionRepository) GetVersion(ctx context.Context, id string) (*model.ConfigurationVersion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConfigurationVersion), args.Error(1)
}

func (m *MockVersionRepository) GetByVersion(ctx context.Context, version, environment string) (*model.ConfigurationVersion, error) {
	args := m.Called(ctx, version, environment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConfigurationVersion), args.Error(1)
}

func (m *MockVersionRepository) GetActiveVersion(ctx context.Context, environment string) (*model.ConfigurationVersion, error) {
	args := m.Called(ctx, environment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConfigurationVersion), args.Error(1)
}

func (m *MockVersionRepository) ListVersions(ctx context.Context, environment string) ([]*model.ConfigurationVersion, error) {
	args := m.Called(ctx, environment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ConfigurationVersion), args.Error(1)
}

func (m *MockVersionRepository) AddVersion(ctx context.Context, version *model.ConfigurationVersion) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *MockVersionRepository) UpdateDescription(ctx context.Context, id, description string) error {
	args := m.Called(ctx, id, description)
	return args.Error(0)
}

func (m *MockVersionRepository) AddRouteToVersion(ctx context.Context, versionID, routeID string) error {
	args := m.Called(ctx, versionID, routeID)
	return args.Error(0)
}

func (m *MockVersionRepository) RemoveRouteFromVersion(ctx context.Context, versionID, routeID string) error {
	args := m.Called(ctx, versionID, routeID)
	return args.Error(0)
}

func (m *MockVersionRepository) PublishVersion(ctx context.Context, id, publishedBy string) (*model.ConfigurationVersion, error) {
	args := m.Called(ctx, id, publishedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConfigurationVersion), args.Error(1)
}

func (m *MockVersionRepository) UnpublishVersion(ctx context.Context, id string) (*model.ConfigurationVersion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConfigurationVersion), args.Error(1)
}

func (m *MockVersionRepository) DeleteVersion(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
