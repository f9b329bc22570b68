package gatewayconfig

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/diillson/gateway-admin-go/internal/compiler"
	"github.com/diillson/gateway-admin-go/internal/domain/model"
	"github.com/diillson/gateway-admin-go/internal/domain/repository"
	"github.com/diillson/gateway-admin-go/internal/infra/metrics"
	"github.com/diillson/gateway-admin-go/pkg/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL limita a janela de staleness quando nenhum evento chega
const DefaultTTL = 5 * time.Minute

const cacheKeyPrefix = "gwadmin:config:"

// ConfigurationCache serve a configuração compilada por ambiente, lendo do
// Store apenas em cache miss ou após invalidação explícita. Recargas
// concorrentes do mesmo ambiente colapsam em uma única leitura (singleflight);
// ambientes diferentes não disputam o mesmo voo.
type ConfigurationCache struct {
	versions repository.VersionRepository
	cache    cache.Cache
	ttl      time.Duration
	group    singleflight.Group
	logger   *zap.Logger
	metrics  *metrics.ControlPlaneMetrics

	// gens numera as invalidações por ambiente. Uma recarga que começou
	// antes da invalidação carrega uma geração antiga e não escreve seu
	// resultado de volta no cache.
	mu   sync.Mutex
	gens map[string]uint64
}

// NewConfigurationCache cria um cache de configuração compilada
func NewConfigurationCache(versions repository.VersionRepository, c cache.Cache, ttl time.Duration, m *metrics.ControlPlaneMetrics, logger *zap.Logger) *ConfigurationCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ConfigurationCache{
		versions: versions,
		cache:    c,
		ttl:      ttl,
		logger:   logger,
		metrics:  m,
		gens:     make(map[string]uint64),
	}
}

func cacheKey(environment string) string {
	return cacheKeyPrefix + environment
}

// Get retorna a configuração compilada do ambiente. Em cache miss, carrega a
// versão ativa do Store e compila; ambiente sem versão ativa produz a
// configuração vazia, nunca um erro.
func (c *ConfigurationCache) Get(ctx context.Context, environment string) (*model.CompiledConfiguration, error) {
	var cached model.CompiledConfiguration
	found, err := c.cache.Get(ctx, cacheKey(environment), &cached)
	if err != nil {
		// Falha do cache não é fatal: seguir para o Store
		c.logger.Warn("falha ao consultar cache de configuração",
			zap.String("environment", environment),
			zap.Error(err))
	} else if found {
		return &cached, nil
	}

	// Uma única recarga em voo por ambiente; chamadores concorrentes
	// aguardam o mesmo resultado
	value, err, _ := c.group.Do(environment, func() (interface{}, error) {
		return c.reload(ctx, environment)
	})
	if err != nil {
		return nil, err
	}

	return value.(*model.CompiledConfiguration), nil
}

// Invalidate garante que o próximo Get do ambiente releia do Store. Uma
// recarga já em voo é abandonada: chamadores posteriores iniciam um voo novo
// em vez de receber um resultado lido antes da invalidação.
func (c *ConfigurationCache) Invalidate(ctx context.Context, environment string) error {
	c.dropFlight(environment)

	if err := c.cache.Delete(ctx, cacheKey(environment)); err != nil {
		c.logger.Error("falha ao invalidar cache de configuração",
			zap.String("environment", environment),
			zap.Error(err))
		return err
	}

	c.logger.Info("cache de configuração invalidado",
		zap.String("environment", environment))
	return nil
}

// InvalidateAll descarta todas as configurações em cache e abandona as
// recargas em voo de todos os ambientes já vistos
func (c *ConfigurationCache) InvalidateAll(ctx context.Context) error {
	c.mu.Lock()
	environments := make([]string, 0, len(c.gens))
	for env := range c.gens {
		c.gens[env]++
		environments = append(environments, env)
	}
	c.mu.Unlock()

	for _, env := range environments {
		c.group.Forget(env)
	}
	return c.cache.Clear(ctx)
}

// beginFlight registra o ambiente e devolve a geração corrente do voo
func (c *ConfigurationCache) beginFlight(environment string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.gens[environment]; !ok {
		c.gens[environment] = 0
	}
	return c.gens[environment]
}

// dropFlight avança a geração do ambiente e esquece o voo corrente
func (c *ConfigurationCache) dropFlight(environment string) {
	c.mu.Lock()
	c.gens[environment]++
	c.mu.Unlock()
	c.group.Forget(environment)
}

func (c *ConfigurationCache) flightGeneration(environment string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[environment]
}

// reload lê a versão ativa do Store, compila e armazena no cache. Se o
// ambiente foi invalidado depois do início da leitura, o resultado é
// devolvido ao chamador mas não entra no cache.
func (c *ConfigurationCache) reload(ctx context.Context, environment string) (*model.CompiledConfiguration, error) {
	var compiled *model.CompiledConfiguration
	generation := c.beginFlight(environment)

	version, err := c.versions.GetActiveVersion(ctx, environment)
	switch {
	case errors.Is(err, repository.ErrVersionNotFound):
		// Ambiente sem versão ativa roteia com a configuração vazia
		compiled = compiler.Empty(environment)
	case err != nil:
		if c.metrics != nil {
			c.metrics.ConfigReloadFailed(environment)
		}
		c.logger.Error("falha ao recarregar configuração do Store",
			zap.String("environment", environment),
			zap.Error(err))
		return nil, err
	default:
		compiled = compiler.Compile(version)
	}

	if c.flightGeneration(environment) != generation {
		c.logger.Info("recarga obsoleta não armazenada no cache",
			zap.String("environment", environment),
			zap.String("versionId", compiled.VersionID))
		return compiled, nil
	}

	if err := c.cache.Set(ctx, cacheKey(environment), compiled, c.ttl); err != nil {
		c.logger.Warn("falha ao armazenar configuração no cache",
			zap.String("environment", environment),
			zap.Error(err))
	}

	if c.metrics != nil {
		c.metrics.ConfigReloaded(environment, len(compiled.Rules))
	}

	c.logger.Info("configuração recompilada",
		zap.String("environment", environment),
		zap.Int("rules", len(compiled.Rules)),
		zap.String("versionId", compiled.VersionID))

	return compiled, nil
}
