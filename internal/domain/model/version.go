package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ConfigurationVersion agrupa um snapshot de rotas sob um rótulo de versão,
// com escopo por ambiente. No máximo uma versão por ambiente está ativa.
type ConfigurationVersion struct {
	ID          string `json:"id"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	Environment string `json:"environment"`
	IsActive    bool   `json:"isActive"`

	// Routes é o snapshot de associação, em ordem de inserção. A associação é
	// explícita: alterar rotas do ambiente não altera versões existentes.
	Routes []*Route `json:"routes"`

	CreatedAt   time.Time  `json:"createdAt"`
	CreatedBy   string     `json:"createdBy"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	PublishedBy string     `json:"publishedBy,omitempty"`
}

// NewConfigurationVersion cria uma versão inativa e vazia
func NewConfigurationVersion(version, description, environment, createdBy string) *ConfigurationVersion {
	if environment == "" {
		environment = "Development"
	}
	if createdBy == "" {
		createdBy = "System"
	}

	return &ConfigurationVersion{
		ID:          uuid.NewString(),
		Version:     version,
		Description: description,
		Environment: environment,
		IsActive:    false,
		Routes:      []*Route{},
		CreatedAt:   time.Now().UTC(),
		CreatedBy:   createdBy,
	}
}

// Validate verifica se a versão é válida
func (v *ConfigurationVersion) Validate() error {
	if v.Version == "" {
		return errors.New("version é obrigatório")
	}
	if v.Environment == "" {
		return errors.New("environment é obrigatório")
	}
	return nil
}

// AddRoute acrescenta uma rota ao snapshot da versão
func (v *ConfigurationVersion) AddRoute(route *Route) {
	if route == nil {
		return
	}
	v.Routes = append(v.Routes, route)
}

// Publish ativa a versão. A exclusividade por ambiente é garantida pelo
// repositório, dentro de uma única transação.
func (v *ConfigurationVersion) Publish(publishedBy string) {
	if publishedBy == "" {
		publishedBy = "System"
	}
	now := time.Now().UTC()
	v.IsActive = true
	v.PublishedAt = &now
	v.PublishedBy = publishedBy
}

// Unpublish desativa a versão, deixando o ambiente sem versão ativa
func (v *ConfigurationVersion) Unpublish() {
	v.IsActive = false
}
