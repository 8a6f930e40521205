package ports

import (
	"context"

	"github.com/Gunvolt24/orderflow/internal/domain"
)

// OrderService — прикладные операции над заказом для транспортного слоя.
// CreateOrder мутирует переданный агрегат (присваивает id, tracking id, статус).
type OrderService interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error)
	TrackOrder(ctx context.Context, trackingID domain.TrackingID) (*domain.Order, error)
	OrdersByCustomer(ctx context.Context, customerID domain.CustomerID, limit, offset int) ([]*domain.Order, error)
	ApproveOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error)
	CancelOrder(ctx context.Context, id domain.OrderID, failureMessages []string) (*domain.Order, error)
}
