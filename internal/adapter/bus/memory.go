package bus

import (
	"context"
	"sync"

	"github.com/diillson/gateway-admin-go/internal/domain/bus"
	"github.com/diillson/gateway-admin-go/internal/domain/model"
	pkgerrors "github.com/diillson/gateway-admin-go/pkg/errors"
	"go.uber.org/zap"
)

// MemoryBus implementa bus.ChangeBus em memória, para implantações de
// processo único e para testes. Mantém o mesmo contrato fraco do bus real:
// melhor esforço, sem persistência, assinante lento perde eventos.
type MemoryBus struct {
	logger *zap.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]*memorySubscription
}

// NewMemoryBus cria um bus em memória
func NewMemoryBus(logger *zap.Logger) *MemoryBus {
	return &MemoryBus{
		logger: logger,
		subs:   make(map[int]*memorySubscription),
	}
}

// Publish entrega o evento a todos os assinantes registrados
func (b *MemoryBus) Publish(ctx context.Context, event model.ChangeEvent) error {
	b.mu.Lock()
	subs := make([]*memorySubscription, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		if !sub.deliver(event) {
			// Assinante com buffer cheio perde o evento; a consistência
			// vem da ressincronização e do TTL do cache
			b.logger.Warn("evento descartado para assinante lento",
				zap.String("environment", event.Environment),
				zap.String("kind", string(event.Kind)))
		}
	}
	return nil
}

// Subscribe registra um novo assinante
func (b *MemoryBus) Subscribe(ctx context.Context) (bus.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	sub := &memorySubscription{
		bus:    b,
		id:     id,
		events: make(chan model.ChangeEvent, 64),
	}
	b.subs[id] = sub
	return sub, nil
}

// DisconnectAll derruba todas as assinaturas como se o transporte tivesse
// falhado. Os assinantes observam o canal fechado com ErrBusDisconnected.
func (b *MemoryBus) DisconnectAll() {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[int]*memorySubscription)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.terminate(pkgerrors.ErrBusDisconnected)
	}
}

func (b *MemoryBus) unregister(id int) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

type memorySubscription struct {
	bus    *MemoryBus
	id     int
	events chan model.ChangeEvent

	mu     sync.Mutex
	closed bool
	err    error
}

// Events entrega os eventos recebidos
func (s *memorySubscription) Events() <-chan model.ChangeEvent {
	return s.events
}

// Err retorna o erro de transporte que encerrou a assinatura
func (s *memorySubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close encerra a assinatura
func (s *memorySubscription) Close() error {
	s.bus.unregister(s.id)
	s.terminate(nil)
	return nil
}

// deliver envia o evento sem bloquear; retorna false se o buffer está cheio
// ou a assinatura já foi encerrada
func (s *memorySubscription) deliver(event model.ChangeEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return true
	}
	select {
	case s.events <- event:
		return true
	default:
		return false
	}
}

func (s *memorySubscription) terminate(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.err = err
	s.mu.Unlock()
	close(s.events)
}
