package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ControlPlaneMetrics gerencia métricas do plano de controle de configuração
type ControlPlaneMetrics struct {
	eventsPublished  *prometheus.CounterVec
	eventsReceived   *prometheus.CounterVec
	busReconnects    prometheus.Counter
	publishConflicts prometheus.Counter
	configReloads    *prometheus.CounterVec
	reloadFailures   *prometheus.CounterVec
	cacheHitRatio    *prometheus.GaugeVec
	activeRoutes     *prometheus.GaugeVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// NewControlPlaneMetrics cria e registra métricas do prometheus
func NewControlPlaneMetrics() *ControlPlaneMetrics {
	return &ControlPlaneMetrics{
		eventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_admin_change_events_published_total",
				Help: "Total number of configuration change events published, by environment and kind",
			},
			[]string{"environment", "kind"},
		),

		eventsReceived: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_admin_change_events_received_total",
				Help: "Total number of configuration change events received by this process",
			},
			[]string{"environment", "kind"},
		),

		busReconnects: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "gateway_admin_bus_reconnects_total",
				Help: "Total number of notification bus reconnection attempts",
			},
		),

		publishConflicts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "gateway_admin_publish_conflicts_total",
				Help: "Total number of version publish operations rejected by a concurrent publish",
			},
		),

		configReloads: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_admin_config_reloads_total",
				Help: "Total number of compiled configuration reloads from the store",
			},
			[]string{"environment"},
		),

		reloadFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_admin_config_reload_failures_total",
				Help: "Total number of compiled configuration reloads that failed",
			},
			[]string{"environment"},
		),

		cacheHitRatio: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gateway_admin_cache_hit_ratio",
				Help: "Cache hit ratio (0.0 to 1.0)",
			},
			[]string{"cache_type"},
		),

		activeRoutes: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gateway_admin_compiled_routes",
				Help: "Number of routing rules in the last compiled configuration, by environment",
			},
			[]string{"environment"},
		),

		httpRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_admin_http_requests_total",
				Help: "Total number of admin API requests, by path, method and status",
			},
			[]string{"path", "method", "status"},
		),

		httpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_admin_http_request_duration_seconds",
				Help:    "Admin API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
	}
}

// EventPublished registra a publicação de um evento de mudança
func (m *ControlPlaneMetrics) EventPublished(environment, kind string) {
	m.eventsPublished.WithLabelValues(environment, kind).Inc()
}

// EventReceived registra o recebimento de um evento de mudança
func (m *ControlPlaneMetrics) EventReceived(environment, kind string) {
	m.eventsReceived.WithLabelValues(environment, kind).Inc()
}

// BusReconnect registra uma tentativa de reconexão ao bus
func (m *ControlPlaneMetrics) BusReconnect() {
	m.busReconnects.Inc()
}

// PublishConflict registra uma publicação rejeitada por corrida
func (m *ControlPlaneMetrics) PublishConflict() {
	m.publishConflicts.Inc()
}

// ConfigReloaded registra uma recarga de configuração compilada
func (m *ControlPlaneMetrics) ConfigReloaded(environment string, routes int) {
	m.configReloads.WithLabelValues(environment).Inc()
	m.activeRoutes.WithLabelValues(environment).Set(float64(routes))
}

// ConfigReloadFailed registra uma recarga que falhou
func (m *ControlPlaneMetrics) ConfigReloadFailed(environment string) {
	m.reloadFailures.WithLabelValues(environment).Inc()
}

// HTTPRequest registra uma requisição da API administrativa
func (m *ControlPlaneMetrics) HTTPRequest(path, method, status string, durationSeconds float64) {
	m.httpRequests.WithLabelValues(path, method, status).Inc()
	m.httpDuration.WithLabelValues(path, method).Observe(durationSeconds)
}

// UpdateCacheHitRatio atualiza a taxa de acerto do cache
func (m *ControlPlaneMetrics) UpdateCacheHitRatio(cacheType string, ratio float64) {
	m.cacheHitRatio.WithLabelValues(cacheType).Set(ratio)
}
