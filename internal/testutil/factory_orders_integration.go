//go:build integration

package testutil

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Gunvolt24/orderflow/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Мини-генератор валидного инициализированного заказа (статус PENDING,
// id и tracking id присвоены, позиции пронумерованы).
func MakeOrder(opts ...func(*domain.Order)) domain.Order {
	product := domain.Product{
		ID:    domain.ProductID{UUID: uuid.New()},
		Name:  "Widget",
		Price: domain.MustMoney("100.00"),
	}

	order := domain.NewOrder(domain.OrderConfig{
		CustomerID: domain.CustomerID{UUID: uuid.New()},
		ShopID:     domain.ShopID{UUID: uuid.New()},
		DeliveryAddress: domain.DeliveryAddress{
			Street:     "Main st 1",
			PostalCode: "000000",
			City:       "Metropolis",
		},
		Price: domain.MustMoney("100.00"),
		Items: []domain.OrderItem{
			{
				Product:  product,
				Quantity: 1,
				Price:    product.Price,
				SubTotal: product.Price,
			},
		},
	})

	// Опции правят черновик; инициализация в конце нумерует позиции.
	for _, fn := range opts {
		fn(order)
	}
	order.Initialize()
	return *order
}

func WithCustomer(customerID domain.CustomerID) func(*domain.Order) {
	return func(o *domain.Order) { o.CustomerID = customerID }
}

func WithShop(shopID domain.ShopID) func(*domain.Order) {
	return func(o *domain.Order) { o.ShopID = shopID }
}

// WithItems — n позиций с ценами 10, 20, ... и согласованной общей ценой.
func WithItems(n int) func(*domain.Order) {
	return func(o *domain.Order) {
		o.Items = make([]domain.OrderItem, 0, n)
		total := domain.ZeroMoney
		for i := 0; i < n; i++ {
			price := domain.MustMoney(strconv.Itoa(10 * (i + 1)))
			o.Items = append(o.Items, domain.OrderItem{
				Product: domain.Product{
					ID:    domain.ProductID{UUID: uuid.New()},
					Name:  fmt.Sprintf("Item %d", i+1),
					Price: price,
				},
				Quantity: 1,
				Price:    price,
				SubTotal: price,
			})
			total = total.Add(price)
		}
		o.Price = total
	}
}

// SeedShop — вставляет магазин с каталогом под позиции заказа.
func SeedShop(ctx context.Context, pool *pgxpool.Pool, shopID domain.ShopID, active bool, items []domain.OrderItem) error {
	if _, err := pool.Exec(ctx, `
		INSERT INTO shops (id, active) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET active = EXCLUDED.active
	`, shopID, active); err != nil {
		return fmt.Errorf("seed shop: %w", err)
	}
	for _, item := range items {
		if _, err := pool.Exec(ctx, `
			INSERT INTO products (id, shop_id, name, price) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING
		`, item.Product.ID, shopID, item.Product.Name, item.Product.Price); err != nil {
			return fmt.Errorf("seed product: %w", err)
		}
	}
	return nil
}
