package bus

import (
	"context"

	"github.com/diillson/gateway-admin-go/internal/domain/model"
)

// Subscription é uma assinatura ativa no bus de notificações. O canal de
// eventos fecha quando a conexão subjacente é perdida ou a assinatura é
// encerrada; Err distingue os dois casos.
type Subscription interface {
	// Events entrega os eventos recebidos. Fecha em desconexão ou Close.
	Events() <-chan model.ChangeEvent

	// Err retorna o erro de transporte que encerrou a assinatura, ou nil
	// se ela foi encerrada por Close
	Err() error

	// Close encerra a assinatura e libera a conexão
	Close() error
}

// ChangeBus é o canal de publicação/assinatura de eventos de mudança de
// configuração entre o processo administrativo e os gateways.
//
// Contrato de entrega: melhor esforço, at-least-once, sem persistência e sem
// replay. Um assinante offline perde eventos e converge pela expiração do
// cache mais a ressincronização completa feita a cada (re)conexão.
type ChangeBus interface {
	// Publish anuncia um evento de mudança para todos os assinantes
	Publish(ctx context.Context, event model.ChangeEvent) error

	// Subscribe abre uma assinatura. O handshake acontece aqui: um retorno
	// sem erro significa conexão estabelecida.
	Subscribe(ctx context.Context) (Subscription, error)
}
