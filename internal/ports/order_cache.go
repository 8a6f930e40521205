package ports

import (
	"context"

	"github.com/Gunvolt24/orderflow/internal/domain"
)

// OrderCache — кэш заказов.
// Требования к реализации: потокобезопасность; доступ по ключу не хуже O(1);
// возврат копий сущности.
type OrderCache interface {
	// Get — вернуть заказ; (order, true) при попадании, (nil, false) при промахе/истечении.
	Get(ctx context.Context, id domain.OrderID) (*domain.Order, bool)

	// Set — сохранить/обновить заказ в кэше.
	Set(ctx context.Context, order *domain.Order) error

	// WarmUp — массовая загрузка кэша (например, при старте).
	WarmUp(ctx context.Context, orders []*domain.Order) error
}
