package domain

import "time"

// Виды доменных событий (дискриминатор для сериализации во внешнем слое).
const (
	EventKindOrderCreated   = "order.created"
	EventKindOrderPaid      = "order.paid"
	EventKindOrderCancelled = "order.cancelled"
)

// Event — доменное событие: неизменяемая запись о значимой смене состояния.
// Сериализация и доставка — ответственность внешнего издателя.
type Event interface {
	Kind() string
	OccurredAt() time.Time
}

// OrderCreatedEvent — заказ прошёл валидацию и инициализирован (PENDING).
type OrderCreatedEvent struct {
	Order     *Order
	CreatedAt time.Time
}

func (e OrderCreatedEvent) Kind() string          { return EventKindOrderCreated }
func (e OrderCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// OrderPaidEvent — заказ оплачен (PAID).
type OrderPaidEvent struct {
	Order     *Order
	CreatedAt time.Time
}

func (e OrderPaidEvent) Kind() string          { return EventKindOrderPaid }
func (e OrderPaidEvent) OccurredAt() time.Time { return e.CreatedAt }

// OrderCancelledEvent — начата отмена оплаченного заказа (CANCELLING).
type OrderCancelledEvent struct {
	Order     *Order
	CreatedAt time.Time
}

func (e OrderCancelledEvent) Kind() string          { return EventKindOrderCancelled }
func (e OrderCancelledEvent) OccurredAt() time.Time { return e.CreatedAt }
