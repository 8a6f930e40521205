package ports

import (
	"context"

	"github.com/Gunvolt24/orderflow/internal/domain"
)

// OrderRepository — хранилище заказов. Save — идемпотентный upsert агрегата
// целиком (заказ + позиции) в одной транзакции.
type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id domain.OrderID) (*domain.Order, error)
	GetByTrackingID(ctx context.Context, trackingID domain.TrackingID) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID domain.CustomerID, limit, offset int) ([]*domain.Order, error)
	LastN(ctx context.Context, n int) ([]*domain.Order, error)
}
