package ports

import (
	"context"

	"github.com/Gunvolt24/orderflow/internal/domain"
)

// OrderValidator — структурная валидация заказа-документа до доменных
// проверок (обязательные идентификаторы, непустые позиции, арифметика сумм).
type OrderValidator interface {
	Validate(ctx context.Context, order *domain.Order) error
}
