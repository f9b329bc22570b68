package mocks

import (
	"context"

	"github.com/diillson/gateway-admin-go/internal/domain/bus"
	"github.com/diillson/gateway-admin-go/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

// MockChangeBus é um mock para a interface bus.ChangeBus
type MockChangeBus struct {
	mock.Mock
}

func (m *MockChangeBus) Publish(ctx context.Context, event model.ChangeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockChangeBus) Subscribe(ctx context.Context) (bus.Subscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(bus.Subscription), args.Error(1)
}
