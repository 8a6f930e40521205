package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gunvolt24/orderflow/internal/domain"
	"github.com/Gunvolt24/orderflow/internal/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Проверка, что ShopRepository удовлетворяет интерфейсу ShopRepository.
var _ ports.ShopRepository = (*ShopRepository)(nil)

// ShopRepository — снимок магазина с каталогом из Postgres.
type ShopRepository struct {
	pool *pgxpool.Pool
}

// NewShopRepository - конструктор ShopRepository.
func NewShopRepository(pool *pgxpool.Pool) *ShopRepository { return &ShopRepository{pool: pool} }

// GetByID — магазин вместе с каталогом товаров. Если магазина нет,
// возвращает (nil, nil).
func (r *ShopRepository) GetByID(ctx context.Context, id domain.ShopID) (*domain.Shop, error) {
	var shop domain.Shop

	err := r.pool.QueryRow(ctx, `
		SELECT id, active FROM shops WHERE id = $1
	`, id).Scan(&shop.ID, &shop.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select shop: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, price
		FROM products
		WHERE shop_id = $1
		ORDER BY name, id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Price); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		shop.Products = append(shop.Products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("products rows: %w", err)
	}

	return &shop, nil
}
