package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HostAndPort representa um destino downstream (host + porta)
type HostAndPort struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Validate verifica se o destino é válido
func (h HostAndPort) Validate() error {
	if strings.TrimSpace(h.Host) == "" {
		return errors.New("host é obrigatório")
	}
	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("porta inválida: %d (deve estar entre 1 e 65535)", h.Port)
	}
	return nil
}

func (h HostAndPort) String() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// Route é a representação de domínio de uma rota upstream→downstream do gateway
type Route struct {
	ID                     string        `json:"id"`
	Name                   string        `json:"name"`
	DownstreamPathTemplate string        `json:"downstreamPathTemplate"`
	UpstreamPathTemplate   string        `json:"upstreamPathTemplate"`
	Methods                []string      `json:"methods"`
	DownstreamScheme       string        `json:"downstreamScheme"`
	DownstreamHostAndPorts []HostAndPort `json:"downstreamHostAndPorts"`
	CaseSensitive          bool          `json:"caseSensitive"`
	ServiceName            string        `json:"serviceName,omitempty"`

	// Blobs de política opacos; interpretados apenas pelo adaptador do motor
	// de roteamento, nunca pelo núcleo
	LoadBalancerOptions   string `json:"loadBalancerOptions,omitempty"`
	AuthenticationOptions string `json:"authenticationOptions,omitempty"`
	RateLimitOptions      string `json:"rateLimitOptions,omitempty"`
	QoSOptions            string `json:"qosOptions,omitempty"`

	IsActive    bool   `json:"isActive"`
	Environment string `json:"environment"`

	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
}

// NewRoute cria uma rota com identidade e padrões atribuídos
func NewRoute(name, downstreamPath, upstreamPath string, methods []string, scheme string, targets []HostAndPort, environment, createdBy string) *Route {
	if scheme == "" {
		scheme = "http"
	}
	if environment == "" {
		environment = "Development"
	}
	if createdBy == "" {
		createdBy = "System"
	}

	now := time.Now().UTC()
	return &Route{
		ID:                     uuid.NewString(),
		Name:                   name,
		DownstreamPathTemplate: downstreamPath,
		UpstreamPathTemplate:   upstreamPath,
		Methods:                NormalizeMethods(methods),
		DownstreamScheme:       scheme,
		DownstreamHostAndPorts: targets,
		IsActive:               true,
		Environment:            environment,
		CreatedAt:              now,
		CreatedBy:              createdBy,
		UpdatedAt:              now,
		UpdatedBy:              createdBy,
	}
}

// Validate verifica se a rota é válida
func (r *Route) Validate() error {
	if r.Name == "" {
		return errors.New("name é obrigatório")
	}
	if r.DownstreamPathTemplate == "" {
		return errors.New("downstreamPathTemplate é obrigatório")
	}
	if r.UpstreamPathTemplate == "" {
		return errors.New("upstreamPathTemplate é obrigatório")
	}
	if len(r.Methods) == 0 {
		return errors.New("ao menos um método HTTP é obrigatório")
	}
	if r.DownstreamScheme != "http" && r.DownstreamScheme != "https" {
		return fmt.Errorf("downstreamScheme inválido: %s (deve ser http ou https)", r.DownstreamScheme)
	}
	if len(r.DownstreamHostAndPorts) == 0 {
		return errors.New("ao menos um destino downstream é obrigatório")
	}
	for _, target := range r.DownstreamHostAndPorts {
		if err := target.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Activate marca a rota como ativa
func (r *Route) Activate() {
	r.IsActive = true
	r.UpdatedAt = time.Now().UTC()
}

// Deactivate marca a rota como inativa
func (r *Route) Deactivate() {
	r.IsActive = false
	r.UpdatedAt = time.Now().UTC()
}

// NormalizeMethods normaliza um conjunto de métodos HTTP: maiúsculas,
// sem duplicatas e com GET como padrão quando vazio
func NormalizeMethods(methods []string) []string {
	seen := make(map[string]bool, len(methods))
	normalized := make([]string, 0, len(methods))

	for _, m := range methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		normalized = append(normalized, m)
	}

	if len(normalized) == 0 {
		return []string{"GET"}
	}
	return normalized
}
