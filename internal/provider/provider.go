package provider

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/diillson/gateway-admin-go/internal/app/gatewayconfig"
	"github.com/diillson/gateway-admin-go/internal/domain/bus"
	"github.com/diillson/gateway-admin-go/internal/domain/model"
	"github.com/diillson/gateway-admin-go/internal/infra/metrics"
	"go.uber.org/zap"
)

// RoutingEngine recebe snapshots de configuração compilada. A implementação
// troca a configuração inteira de uma vez; o provider nunca entrega uma
// configuração parcial.
type RoutingEngine interface {
	ApplyConfiguration(environment string, config *model.CompiledConfiguration)
}

// DefaultMaxBackoff é o teto do intervalo entre tentativas de reconexão
const DefaultMaxBackoff = 30 * time.Second

// Provider mantém a configuração compilada dos ambientes servidos em memória,
// assinando o ChangeBus para recarregar sob demanda. Toda (re)conexão é
// seguida de um resync completo, cobrindo eventos perdidos enquanto
// desconectado.
type Provider struct {
	environments []string
	cache        *gatewayconfig.ConfigurationCache
	bus          bus.ChangeBus
	engine       RoutingEngine
	maxBackoff   time.Duration
	logger       *zap.Logger
	metrics      *metrics.ControlPlaneMetrics

	mu        sync.RWMutex
	snapshots map[string]*atomic.Value
}

// NewProvider cria um provider para os ambientes informados
func NewProvider(environments []string, cache *gatewayconfig.ConfigurationCache, changeBus bus.ChangeBus, engine RoutingEngine, maxBackoff time.Duration, m *metrics.ControlPlaneMetrics, logger *zap.Logger) *Provider {
	if maxBackoff <= 0 {
		maxBackoff = DefaultMaxBackoff
	}
	snapshots := make(map[string]*atomic.Value, len(environments))
	for _, env := range environments {
		snapshots[env] = &atomic.Value{}
	}
	return &Provider{
		environments: environments,
		cache:        cache,
		bus:          changeBus,
		engine:       engine,
		maxBackoff:   maxBackoff,
		logger:       logger,
		metrics:      m,
		snapshots:    snapshots,
	}
}

// GetCompiledConfiguration retorna o último snapshot conhecido do ambiente.
// Nunca bloqueia: o segundo retorno é false enquanto o primeiro resync não
// completou.
func (p *Provider) GetCompiledConfiguration(environment string) (*model.CompiledConfiguration, bool) {
	p.mu.RLock()
	slot, ok := p.snapshots[environment]
	p.mu.RUnlock()
	if !ok {
		return nil, false
	}
	value := slot.Load()
	if value == nil {
		return nil, false
	}
	return value.(*model.CompiledConfiguration), true
}

// Run conecta ao ChangeBus e processa eventos até o contexto ser cancelado.
// Conexões perdidas são refeitas com backoff exponencial e jitter; cada
// conexão bem-sucedida dispara um resync completo antes de consumir eventos.
func (p *Provider) Run(ctx context.Context) error {
	backoff := time.Duration(0)
	connectedBefore := false

	for {
		if backoff > 0 {
			// Jitter de até 20% evita rajadas sincronizadas de reconexão
			jitter := time.Duration(rand.Int63n(int64(backoff)/5 + 1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff + jitter):
			}
		}

		sub, err := p.bus.Subscribe(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Warn("falha ao conectar no barramento de mudanças",
				zap.Error(err),
				zap.Duration("backoff", backoff))
			backoff = p.nextBackoff(backoff)
			continue
		}

		p.logger.Info("conectado ao barramento de mudanças")
		if p.metrics != nil && connectedBefore {
			p.metrics.BusReconnect()
		}
		connectedBefore = true
		backoff = 0

		// Resync completo: eventos perdidos durante a desconexão são
		// compensados relendo o Store
		p.resyncAll(ctx)

		if err := p.consume(ctx, sub); err != nil {
			_ = sub.Close()
			return err
		}
		_ = sub.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Primeira tentativa de reconexão é imediata; o backoff só cresce
		// em falhas consecutivas de Subscribe
		p.logger.Warn("conexão com o barramento perdida, reconectando",
			zap.Error(sub.Err()))
	}
}

// consume processa eventos até o fechamento da assinatura ou o cancelamento
// do contexto. Retorna erro apenas em cancelamento.
func (p *Provider) consume(ctx context.Context, sub bus.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			p.handleEvent(ctx, event)
		}
	}
}

// handleEvent recarrega o ambiente afetado; eventos de ambientes não servidos
// são ignorados
func (p *Provider) handleEvent(ctx context.Context, event model.ChangeEvent) {
	p.mu.RLock()
	_, served := p.snapshots[event.Environment]
	p.mu.RUnlock()
	if !served {
		return
	}

	if p.metrics != nil {
		p.metrics.EventReceived(event.Environment, string(event.Kind))
	}
	p.logger.Info("evento de mudança recebido",
		zap.String("environment", event.Environment),
		zap.String("changeKind", string(event.Kind)),
		zap.String("subjectId", event.SubjectID))

	p.refresh(ctx, event.Environment)
}

// resyncAll recarrega todos os ambientes servidos
func (p *Provider) resyncAll(ctx context.Context) {
	for _, env := range p.environments {
		p.refresh(ctx, env)
	}
}

// refresh invalida o cache do ambiente e troca o snapshot em memória. Em
// falha do Store mantém o último snapshot bom e serve com ele.
func (p *Provider) refresh(ctx context.Context, environment string) {
	if err := p.cache.Invalidate(ctx, environment); err != nil {
		p.logger.Warn("falha ao invalidar cache durante refresh",
			zap.String("environment", environment),
			zap.Error(err))
	}

	compiled, err := p.cache.Get(ctx, environment)
	if err != nil {
		// Último snapshot bom permanece em vigor
		p.logger.Error("falha ao recarregar configuração, mantendo snapshot anterior",
			zap.String("environment", environment),
			zap.Error(err))
		return
	}

	p.mu.RLock()
	slot, ok := p.snapshots[environment]
	p.mu.RUnlock()
	if !ok {
		return
	}
	slot.Store(compiled)

	if p.engine != nil {
		p.engine.ApplyConfiguration(environment, compiled)
	}
}

func (p *Provider) nextBackoff(current time.Duration) time.Duration {
	if current <= 0 {
		return time.Second
	}
	next := current * 2
	if next > p.maxBackoff {
		return p.maxBackoff
	}
	return next
}
