package model

import "time"

// ChangeKind identifica o tipo de mutação administrativa que gerou o evento
type ChangeKind string

const (
	RouteCreated       ChangeKind = "RouteCreated"
	RouteUpdated       ChangeKind = "RouteUpdated"
	RouteDeleted       ChangeKind = "RouteDeleted"
	RouteStatusChanged ChangeKind = "RouteStatusChanged"
	VersionCreated     ChangeKind = "VersionCreated"
	VersionPublished   ChangeKind = "VersionPublished"
	VersionUnpublished ChangeKind = "VersionUnpublished"
	VersionDeleted     ChangeKind = "VersionDeleted"
)

// ChangeEvent anuncia "a configuração do ambiente E mudou". Transitório,
// entrega at-least-once sem replay: consumidores tratam o evento como dica
// para invalidar o cache e reler do banco, nunca como fonte de verdade.
type ChangeEvent struct {
	Environment string     `json:"environment"`
	Kind        ChangeKind `json:"changeKind"`
	SubjectID   string     `json:"subjectId"`
	Timestamp   time.Time  `json:"timestamp"`
}

// NewChangeEvent cria um evento de mudança com timestamp atual
func NewChangeEvent(environment string, kind ChangeKind, subjectID string) ChangeEvent {
	return ChangeEvent{
		Environment: environment,
		Kind:        kind,
		SubjectID:   subjectID,
		Timestamp:   time.Now().UTC(),
	}
}
