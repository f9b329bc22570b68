package bus

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/diillson/gateway-admin-go/internal/domain/bus"
	"github.com/diillson/gateway-admin-go/internal/domain/model"
	pkgerrors "github.com/diillson/gateway-admin-go/pkg/errors"
	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RedisBus implementa bus.ChangeBus sobre Redis Pub/Sub. Cada mudança é uma
// única mensagem nomeada no canal configurado; sem persistência e sem replay.
type RedisBus struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
	tracer  trace.Tracer
}

// NewRedisBus cria um bus de notificações sobre um cliente Redis existente
func NewRedisBus(client *redis.Client, channel string, logger *zap.Logger) *RedisBus {
	return &RedisBus{
		client:  client,
		channel: channel,
		logger:  logger,
		tracer:  otel.GetTracerProvider().Tracer("gateway-admin.bus.redis"),
	}
}

// Publish anuncia um evento de mudança a todos os assinantes conectados
func (b *RedisBus) Publish(ctx context.Context, event model.ChangeEvent) error {
	ctx, span := b.tracer.Start(
		ctx,
		"RedisBus.Publish",
		trace.WithAttributes(
			attribute.String("bus.channel", b.channel),
			attribute.String("event.environment", event.Environment),
			attribute.String("event.kind", string(event.Kind)),
		),
	)
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		span.SetStatus(codes.Error, "serialization failure")
		return err
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.Error("falha ao publicar evento de mudança",
			zap.String("environment", event.Environment),
			zap.String("kind", string(event.Kind)),
			zap.Error(err))
		span.SetStatus(codes.Error, "redis error")
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Subscribe abre uma assinatura no canal de mudanças. O handshake com o
// Redis acontece aqui; retorno sem erro significa conexão estabelecida.
func (b *RedisBus) Subscribe(ctx context.Context) (bus.Subscription, error) {
	ps := b.client.Subscribe(ctx, b.channel)

	// Confirmar a assinatura antes de entregar o canal de eventos
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	sub := &redisSubscription{
		ps:     ps,
		events: make(chan model.ChangeEvent, 64),
		done:   make(chan struct{}),
		logger: b.logger,
	}
	go sub.loop(ps.Channel())

	return sub, nil
}

type redisSubscription struct {
	ps     *redis.PubSub
	events chan model.ChangeEvent
	done   chan struct{}
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
	err    error
}

// loop repassa as mensagens do Pub/Sub para o canal de eventos. O envio
// disputa com done: um consumidor que parou de drenar antes do Close não
// prende a goroutine em um buffer cheio.
func (s *redisSubscription) loop(messages <-chan *redis.Message) {
	defer close(s.events)

	for msg := range messages {
		var event model.ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			// Mensagem malformada não derruba a assinatura
			s.logger.Warn("evento de mudança malformado descartado",
				zap.String("payload", msg.Payload),
				zap.Error(err))
			continue
		}
		select {
		case s.events <- event:
		case <-s.done:
			return
		}
	}

	s.mu.Lock()
	if !s.closed {
		s.err = pkgerrors.ErrBusDisconnected
	}
	s.mu.Unlock()
}

// Events entrega os eventos recebidos
func (s *redisSubscription) Events() <-chan model.ChangeEvent {
	return s.events
}

// Err retorna o erro de transporte que encerrou a assinatura
func (s *redisSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close encerra a assinatura
func (s *redisSubscription) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	s.mu.Unlock()
	return s.ps.Close()
}
