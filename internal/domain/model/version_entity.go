package model

import (
	"time"
)

// ConfigurationVersionEntity é a representação de banco de dados de uma
// versão de configuração
type ConfigurationVersionEntity struct {
	ID          string     `gorm:"primaryKey;size:36"`
	Version     string     `gorm:"not null;index"`
	Description string     `gorm:"type:text"`
	Environment string     `gorm:"index;not null"`
	IsActive    bool       `gorm:"default:false;index:idx_versions_env_active"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	CreatedBy   string     ``
	PublishedAt *time.Time ``
	PublishedBy string     ``
}

// TableName define o nome da tabela
func (ConfigurationVersionEntity) TableName() string {
	return "configuration_versions"
}

// VersionRouteEntity materializa o snapshot de associação versão→rota.
// Position preserva a ordem de inserção, mantendo a compilação determinística.
type VersionRouteEntity struct {
	VersionID string `gorm:"primaryKey;size:36;column:version_id"`
	RouteID   string `gorm:"primaryKey;size:36;column:route_id"`
	Position  int    `gorm:"not null"`
}

// TableName define o nome da tabela
func (VersionRouteEntity) TableName() string {
	return "version_routes"
}
