package cache

import (
	"context"
	"time"
)

// NoOpCache é o backend usado quando o cache está desabilitado na
// configuração: todo Get é miss, então cada leitura de configuração
// compilada volta ao Store. Útil em desenvolvimento e em diagnóstico de
// staleness.
type NoOpCache struct{}

// Set descarta o valor
func (c *NoOpCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

// Get sempre reporta miss, forçando a recarga da configuração
func (c *NoOpCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

// Delete não tem o que remover
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear não tem o que limpar
func (c *NoOpCache) Clear(ctx context.Context) error {
	return nil
}

// Ping sempre responde saudável
func (c *NoOpCache) Ping(ctx context.Context) error {
	return nil
}
