package ports

import (
	"context"

	"github.com/Gunvolt24/orderflow/internal/domain"
)

// ShopRepository — снимок магазина с каталогом для валидации заказа.
// Если магазина нет, возвращает (nil, nil).
type ShopRepository interface {
	GetByID(ctx context.Context, id domain.ShopID) (*domain.Shop, error)
}
