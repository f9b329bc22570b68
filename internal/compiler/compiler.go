package compiler

import (
	"github.com/diillson/gateway-admin-go/internal/domain/model"
)

// Chaves dos blobs de política na regra compilada
const (
	PolicyLoadBalancer   = "loadBalancer"
	PolicyAuthentication = "authentication"
	PolicyRateLimit      = "rateLimit"
	PolicyQoS            = "qos"
)

const (
	defaultRequestIDKey = "GwRequestId"
	defaultScheme       = "http"
	defaultTimeoutMs    = 30000
	defaultPriority     = 1
)

// Defaults retorna os padrões globais aplicados a toda configuração compilada
func Defaults() model.GlobalConfiguration {
	return model.GlobalConfiguration{
		RequestIDKey:       defaultRequestIDKey,
		DownstreamScheme:   defaultScheme,
		TimeoutMs:          defaultTimeoutMs,
		AllowAutoRedirect:  false,
		UseCookieContainer: false,
	}
}

// Empty produz a configuração vazia de um ambiente: padrões globais e zero
// regras. Ambiente sem versão ativa não é falha, é esta configuração.
func Empty(environment string) *model.CompiledConfiguration {
	return &model.CompiledConfiguration{
		Environment: environment,
		Global:      Defaults(),
		Rules:       []model.CompiledRule{},
	}
}

// Compile é uma função pura: traduz o snapshot de rotas de uma versão no
// documento de roteamento do gateway. Mesma entrada produz sempre saída
// idêntica — as regras saem na ordem do snapshot e rotas inativas são
// filtradas mesmo que ainda associadas à versão.
func Compile(version *model.ConfigurationVersion) *model.CompiledConfiguration {
	if version == nil {
		return Empty("")
	}

	cfg := &model.CompiledConfiguration{
		Environment: version.Environment,
		VersionID:   version.ID,
		Version:     version.Version,
		Global:      Defaults(),
		Rules:       []model.CompiledRule{},
	}

	for _, route := range version.Routes {
		if route == nil || !route.IsActive {
			continue
		}
		cfg.Rules = append(cfg.Rules, compileRoute(route))
	}

	return cfg
}

func compileRoute(route *model.Route) model.CompiledRule {
	scheme := route.DownstreamScheme
	if scheme == "" {
		scheme = defaultScheme
	}

	targets := make([]model.HostAndPort, len(route.DownstreamHostAndPorts))
	copy(targets, route.DownstreamHostAndPorts)

	rule := model.CompiledRule{
		Key:                    route.Name,
		DownstreamPathTemplate: route.DownstreamPathTemplate,
		UpstreamPathTemplate:   route.UpstreamPathTemplate,
		Methods:                model.NormalizeMethods(route.Methods),
		DownstreamScheme:       scheme,
		DownstreamHostAndPorts: targets,
		CaseSensitive:          route.CaseSensitive,
		Priority:               defaultPriority,
	}

	policies := make(map[string]string)
	if route.LoadBalancerOptions != "" {
		policies[PolicyLoadBalancer] = route.LoadBalancerOptions
	}
	if route.AuthenticationOptions != "" {
		policies[PolicyAuthentication] = route.AuthenticationOptions
	}
	if route.RateLimitOptions != "" {
		policies[PolicyRateLimit] = route.RateLimitOptions
	}
	if route.QoSOptions != "" {
		policies[PolicyQoS] = route.QoSOptions
	}
	if len(policies) > 0 {
		rule.Policies = policies
	}

	return rule
}
