package database

import (
	"encoding/json"
	"fmt"

	"github.com/diillson/gateway-admin-go/internal/domain/model"
)

// routeToEntity converte o modelo de domínio para a entidade de banco
func routeToEntity(route *model.Route) (*model.RouteEntity, error) {
	methodsJSON, err := json.Marshal(route.Methods)
	if err != nil {
		return nil, fmt.Errorf("falha ao serializar métodos: %w", err)
	}

	hostsJSON, err := json.Marshal(route.DownstreamHostAndPorts)
	if err != nil {
		return nil, fmt.Errorf("falha ao serializar destinos downstream: %w", err)
	}

	return &model.RouteEntity{
		ID:                     route.ID,
		Name:                   route.Name,
		DownstreamPathTemplate: route.DownstreamPathTemplate,
		UpstreamPathTemplate:   route.UpstreamPathTemplate,
		MethodsJSON:            string(methodsJSON),
		DownstreamScheme:       route.DownstreamScheme,
		HostsJSON:              string(hostsJSON),
		CaseSensitive:          route.CaseSensitive,
		ServiceName:            route.ServiceName,
		LoadBalancerOptions:    route.LoadBalancerOptions,
		AuthenticationOptions:  route.AuthenticationOptions,
		RateLimitOptions:       route.RateLimitOptions,
		QoSOptions:             route.QoSOptions,
		IsActive:               route.IsActive,
		Environment:            route.Environment,
		CreatedAt:              route.CreatedAt,
		CreatedBy:              route.CreatedBy,
		UpdatedAt:              route.UpdatedAt,
		UpdatedBy:              route.UpdatedBy,
	}, nil
}

// entityToRoute converte a entidade de banco para o modelo de domínio
func entityToRoute(entity *model.RouteEntity) (*model.Route, error) {
	var methods []string
	if entity.MethodsJSON != "" {
		if err := json.Unmarshal([]byte(entity.MethodsJSON), &methods); err != nil {
			return nil, fmt.Errorf("falha ao deserializar métodos: %w", err)
		}
	}

	var hosts []model.HostAndPort
	if entity.HostsJSON != "" {
		if err := json.Unmarshal([]byte(entity.HostsJSON), &hosts); err != nil {
			return nil, fmt.Errorf("falha ao deserializar destinos downstream: %w", err)
		}
	}

	return &model.Route{
		ID:                     entity.ID,
		Name:                   entity.Name,
		DownstreamPathTemplate: entity.DownstreamPathTemplate,
		UpstreamPathTemplate:   entity.UpstreamPathTemplate,
		Methods:                methods,
		DownstreamScheme:       entity.DownstreamScheme,
		DownstreamHostAndPorts: hosts,
		CaseSensitive:          entity.CaseSensitive,
		ServiceName:            entity.ServiceName,
		LoadBalancerOptions:    entity.LoadBalancerOptions,
		AuthenticationOptions:  entity.AuthenticationOptions,
		RateLimitOptions:       entity.RateLimitOptions,
		QoSOptions:             entity.QoSOptions,
		IsActive:               entity.IsActive,
		Environment:            entity.Environment,
		CreatedAt:              entity.CreatedAt,
		CreatedBy:              entity.CreatedBy,
		UpdatedAt:              entity.UpdatedAt,
		UpdatedBy:              entity.UpdatedBy,
	}, nil
}

// versionToEntity converte o modelo de versão para a entidade de banco
func versionToEntity(version *model.ConfigurationVersion) *model.ConfigurationVersionEntity {
	return &model.ConfigurationVersionEntity{
		ID:          version.ID,
		Version:     version.Version,
		Description: version.Description,
		Environment: version.Environment,
		IsActive:    version.IsActive,
		CreatedAt:   version.CreatedAt,
		CreatedBy:   version.CreatedBy,
		PublishedAt: version.PublishedAt,
		PublishedBy: version.PublishedBy,
	}
}

// entityToVersion converte a entidade de banco para o modelo de versão,
// sem o snapshot de rotas (carregado separadamente)
func entityToVersion(entity *model.ConfigurationVersionEntity) *model.ConfigurationVersion {
	return &model.ConfigurationVersion{
		ID:          entity.ID,
		Version:     entity.Version,
		Description: entity.Description,
		Environment: entity.Environment,
		IsActive:    entity.IsActive,
		Routes:      []*model.Route{},
		CreatedAt:   entity.CreatedAt,
		CreatedBy:   entity.CreatedBy,
		PublishedAt: entity.PublishedAt,
		PublishedBy: entity.PublishedBy,
	}
}
