package repository

import (
	"context"

	"github.com/diillson/gateway-admin-go/internal/domain/model"
)

// VersionRepository define a interface para armazenamento de versões de
// configuração
type VersionRepository interface {
	// GetVersion obtém uma versão pelo ID, com o snapshot de rotas carregado
	// em ordem de inserção
	GetVersion(ctx context.Context, id string) (*model.ConfigurationVersion, error)

	// GetByVersion obtém uma versão pelo rótulo e ambiente
	GetByVersion(ctx context.Context, version, environment string) (*model.ConfigurationVersion, error)

	// GetActiveVersion obtém a versão ativa de um ambiente, ou
	// ErrVersionNotFound se o ambiente não tem versão ativa
	GetActiveVersion(ctx context.Context, environment string) (*model.ConfigurationVersion, error)

	// ListVersions retorna as versões, opcionalmente filtradas por ambiente
	ListVersions(ctx context.Context, environment string) ([]*model.ConfigurationVersion, error)

	// AddVersion persiste uma nova versão e seu snapshot inicial de rotas
	AddVersion(ctx context.Context, version *model.ConfigurationVersion) error

	// UpdateDescription atualiza a descrição de uma versão
	UpdateDescription(ctx context.Context, id, description string) error

	// AddRouteToVersion acrescenta uma rota ao snapshot da versão
	AddRouteToVersion(ctx context.Context, versionID, routeID string) error

	// RemoveRouteFromVersion remove uma rota do snapshot da versão
	RemoveRouteFromVersion(ctx context.Context, versionID, routeID string) error

	// PublishVersion ativa a versão em uma única transação serializável:
	// desativa a versão ativa atual do ambiente (se houver e for diferente)
	// e ativa a alvo. Duas publicações concorrentes para o mesmo ambiente
	// serializam; jamais duas versões ficam ativas ao mesmo tempo.
	PublishVersion(ctx context.Context, id, publishedBy string) (*model.ConfigurationVersion, error)

	// UnpublishVersion desativa a versão. Chamada sobre uma versão já
	// inativa é um no-op sem erro (idempotente).
	UnpublishVersion(ctx context.Context, id string) (*model.ConfigurationVersion, error)

	// DeleteVersion remove uma versão inativa. Retorna erro de conflito se a
	// versão estiver ativa.
	DeleteVersion(ctx context.Context, id string) error
}
