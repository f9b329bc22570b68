package cache

import (
	"context"
	"time"
)

// Cache é o contrato dos backends de cache do plano de controle. Os valores
// atravessam a fronteira como JSON: Set serializa, Get desserializa em dest.
// O uso principal é a configuração compilada por ambiente, que fica entre o
// Store e os providers com TTL limitando a janela de staleness.
type Cache interface {
	// Set armazena um valor com tempo de expiração
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Get recupera um valor; o primeiro retorno indica se a chave existia
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Delete remove uma chave; usado na invalidação por ambiente
	Delete(ctx context.Context, key string) error

	// Clear remove todas as chaves; usado na invalidação global
	Clear(ctx context.Context) error

	// Ping verifica se o backend está acessível; alimenta o health check
	Ping(ctx context.Context) error
}
