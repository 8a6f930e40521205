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

// Проверка, что OrderRepository удовлетворяет интерфейсу OrderRepository.
var _ ports.OrderRepository = (*OrderRepository)(nil)

// OrderRepository — реализация репозитория заказов на Postgres (pgxpool).
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository - конструктор OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository { return &OrderRepository{pool: pool} }

const orderColumns = `
	id, customer_id, shop_id, street, postal_code, city,
	price, tracking_id, status, failure_messages`

// Save — транзакционно сохраняет агрегат (идемпотентный upsert заказа
// и полная замена позиций).
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	if order == nil || order.ID.IsZero() {
		return errors.New("order is empty or id is required")
	}
	if order.CustomerID.IsZero() {
		return errors.New("customer_id is required")
	}

	transaction, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		// При уже завершённой транзакции Rollback вернёт ErrTxClosed — игнорируем.
		if rbErr := transaction.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			_ = rbErr
		}
	}()

	// 1) customers — upsert (оставляем, чтобы не падать на FK).
	if _, err = transaction.Exec(ctx, `
		INSERT INTO customers (id) VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`, order.CustomerID); err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}

	// 2) orders — upsert по id (PRIMARY KEY). Статус и список причин
	// отказа меняются на каждом переходе жизненного цикла.
	if _, err = transaction.Exec(ctx, `
		INSERT INTO orders (
			id, customer_id, shop_id, street, postal_code, city,
			price, tracking_id, status, failure_messages
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			customer_id = EXCLUDED.customer_id,
			shop_id = EXCLUDED.shop_id,
			street = EXCLUDED.street,
			postal_code = EXCLUDED.postal_code,
			city = EXCLUDED.city,
			price = EXCLUDED.price,
			tracking_id = EXCLUDED.tracking_id,
			status = EXCLUDED.status,
			failure_messages = EXCLUDED.failure_messages
	`,
		order.ID, order.CustomerID, order.ShopID,
		order.DeliveryAddress.Street, order.DeliveryAddress.PostalCode, order.DeliveryAddress.City,
		order.Price, order.TrackingID, string(order.Status), order.FailureMessages,
	); err != nil {
		return fmt.Errorf("upsert order: %w", err)
	}

	// 3) order_items — replace: удаляем и вставляем список заново.
	if _, err = transaction.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if len(order.Items) > 0 {
		if err = copyItems(ctx, transaction, order.Items); err != nil {
			return err
		}
	}

	// Завершаем транзакцию
	if err := transaction.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetByID — получить заказ по внутреннему id. Если не нашли, возвращает (nil, nil).
func (r *OrderRepository) GetByID(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetByTrackingID — клиентский поиск по tracking id. Если не нашли, возвращает (nil, nil).
func (r *OrderRepository) GetByTrackingID(ctx context.Context, trackingID domain.TrackingID) (*domain.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE tracking_id = $1`, trackingID)
}

func (r *OrderRepository) getOne(ctx context.Context, query string, arg any) (*domain.Order, error) {
	var order domain.Order

	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&order.ID, &order.CustomerID, &order.ShopID,
		&order.DeliveryAddress.Street, &order.DeliveryAddress.PostalCode, &order.DeliveryAddress.City,
		&order.Price, &order.TrackingID, &order.Status, &order.FailureMessages,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}

	items, err := r.loadItems(ctx, []domain.OrderID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]

	return &order, nil
}

// ListByCustomer — постраничный список заказов клиента.
// Два запроса на страницу: базовые заказы + позиции, склейка в памяти
// с сохранением порядка.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID domain.CustomerID, limit, offset int) ([]*domain.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	// 1) База заказов для страницы (DESC).
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select customer orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0, limit)
	ids := make([]domain.OrderID, 0, limit)

	for rows.Next() {
		order := &domain.Order{}
		if err := rows.Scan(
			&order.ID, &order.CustomerID, &order.ShopID,
			&order.DeliveryAddress.Street, &order.DeliveryAddress.PostalCode, &order.DeliveryAddress.City,
			&order.Price, &order.TrackingID, &order.Status, &order.FailureMessages,
		); err != nil {
			return nil, fmt.Errorf("scan order base: %w", err)
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders rows: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil // пустая страница
	}

	// 2) Позиции для всех заказов страницы.
	itemsByID, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		order.Items = itemsByID[order.ID]
	}
	return orders, nil
}

// LastN — последние N заказов (для прогрева кэша).
// Используем подход N+1: берём только id, затем дочитываем полные заказы.
func (r *OrderRepository) LastN(ctx context.Context, n int) ([]*domain.Order, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("select last ids: %w", err)
	}
	defer rows.Close()

	var result []*domain.Order
	for rows.Next() {
		var id domain.OrderID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		order, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if order != nil {
			result = append(result, order)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("last rows: %w", err)
	}

	return result, nil
}

// loadItems — позиции для набора заказов одним запросом, сгруппированные
// по заказу в порядке нумерации.
func (r *OrderRepository) loadItems(ctx context.Context, ids []domain.OrderID) (map[domain.OrderID][]domain.OrderItem, error) {
	uuids := make([]string, 0, len(ids))
	for _, id := range ids {
		uuids = append(uuids, id.String())
	}

	rows, err := r.pool.Query(ctx, `
		SELECT
			order_id, item_id, product_id, product_name, product_price,
			quantity, price, sub_total
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, item_id
	`, uuids)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	itemsByID := make(map[domain.OrderID][]domain.OrderItem, len(ids))
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.OrderID, &item.ID, &item.Product.ID, &item.Product.Name, &item.Product.Price,
			&item.Quantity, &item.Price, &item.SubTotal,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		itemsByID[item.OrderID] = append(itemsByID[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order items rows: %w", err)
	}
	return itemsByID, nil
}

// copyItems — вставка позиций через COPY (CopyFromRows); быстрее, чем INSERT в цикле.
func copyItems(ctx context.Context, tx pgx.Tx, items []domain.OrderItem) error {
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, []any{
			item.OrderID, int64(item.ID), item.Product.ID, item.Product.Name, item.Product.Price,
			item.Quantity, item.Price, item.SubTotal,
		})
	}

	_, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"order_items"},
		[]string{
			"order_id", "item_id", "product_id", "product_name", "product_price",
			"quantity", "price", "sub_total",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy order items: %w", err)
	}
	return nil
}
