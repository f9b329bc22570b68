package model

import (
	"time"
)

// RouteEntity é a representação de banco de dados de uma rota
type RouteEntity struct {
	ID                     string    `gorm:"primaryKey;size:36"`
	Name                   string    `gorm:"not null"`
	DownstreamPathTemplate string    `gorm:"not null"`
	UpstreamPathTemplate   string    `gorm:"not null"`
	MethodsJSON            string    `gorm:"column:methods;type:json;not null"`
	DownstreamScheme       string    `gorm:"not null;default:http"`
	HostsJSON              string    `gorm:"column:downstream_hosts;type:json;not null"`
	CaseSensitive          bool      `gorm:"default:false"`
	ServiceName            string    ``
	LoadBalancerOptions    string    `gorm:"type:text"`
	AuthenticationOptions  string    `gorm:"type:text"`
	RateLimitOptions       string    `gorm:"type:text"`
	QoSOptions             string    `gorm:"column:qos_options;type:text"`
	IsActive               bool      `gorm:"default:true;index"`
	Environment            string    `gorm:"index;not null"`
	CreatedAt              time.Time `gorm:"autoCreateTime"`
	CreatedBy              string    ``
	UpdatedAt              time.Time `gorm:"autoUpdateTime"`
	UpdatedBy              string    ``
}

// TableName define o nome da tabela
func (RouteEntity) TableName() string {
	return "routes"
}
