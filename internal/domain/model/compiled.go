package model

// GlobalConfiguration contém os padrões globais da configuração compilada
type GlobalConfiguration struct {
	RequestIDKey       string `json:"requestIdKey"`
	DownstreamScheme   string `json:"downstreamScheme"`
	TimeoutMs          int    `json:"timeoutMs"`
	AllowAutoRedirect  bool   `json:"allowAutoRedirect"`
	UseCookieContainer bool   `json:"useCookieContainer"`
}

// CompiledRule é uma regra de roteamento pronta para o motor do gateway,
// derivada de uma rota ativa
type CompiledRule struct {
	Key                    string        `json:"key"`
	DownstreamPathTemplate string        `json:"downstreamPathTemplate"`
	UpstreamPathTemplate   string        `json:"upstreamPathTemplate"`
	Methods                []string      `json:"methods"`
	DownstreamScheme       string        `json:"downstreamScheme"`
	DownstreamHostAndPorts []HostAndPort `json:"downstreamHostAndPorts"`
	CaseSensitive          bool          `json:"caseSensitive"`
	Priority               int           `json:"priority"`

	// Policies carrega os blobs de política por tipo ("loadBalancer",
	// "authentication", "rateLimit", "qos"), sem interpretação
	Policies map[string]string `json:"policies,omitempty"`
}

// CompiledConfiguration é o documento de roteamento derivado da versão ativa
// de um ambiente. Nunca é mutado após construído: o provider troca o valor
// inteiro atomicamente para que leitores concorrentes jamais vejam um estado
// parcial.
type CompiledConfiguration struct {
	Environment string              `json:"environment"`
	VersionID   string              `json:"versionId,omitempty"`
	Version     string              `json:"version,omitempty"`
	Global      GlobalConfiguration `json:"global"`
	Rules       []CompiledRule      `json:"rules"`
}
