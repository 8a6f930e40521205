package validate

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Gunvolt24/orderflow/internal/domain"
	"github.com/Gunvolt24/orderflow/internal/ports"
)

// Проверка, что OrderValidator удовлетворяет интерфейсу OrderValidator.
var _ ports.OrderValidator = (*OrderValidator)(nil)

// ErrInvalidOrder — базовая (sentinel error) ошибка структурной валидации.
var ErrInvalidOrder = errors.New("order validation failed")

// OrderValidator — структурная валидация документа заказа.
// Проверяет форму документа (обязательные поля, неотрицательные величины);
// бизнес-правила (арифметика цены, статусные переходы) остаются в домене.
type OrderValidator struct{}

// NewOrderValidator — конструктор OrderValidator.
// Validate возвращает ErrInvalidOrder (с обёрнутой причиной) при любой проблеме.
func NewOrderValidator() *OrderValidator { return &OrderValidator{} }

// Validate — проверяет корректность полей заказа.
func (v *OrderValidator) Validate(_ context.Context, order *domain.Order) error {
	if err := v.validateCore(order); err != nil {
		return err
	}
	if err := v.validateAddress(&order.DeliveryAddress); err != nil {
		return err
	}
	return v.validateItems(order.Items)
}

// validateCore — валидация основных полей заказа.
func (v *OrderValidator) validateCore(order *domain.Order) error {
	if order == nil {
		return fmt.Errorf("%w: заказ не может быть nil", ErrInvalidOrder)
	}
	if order.CustomerID.IsZero() {
		return fmt.Errorf("%w: customer_id обязателен", ErrInvalidOrder)
	}
	if order.ShopID.IsZero() {
		return fmt.Errorf("%w: shop_id обязателен", ErrInvalidOrder)
	}
	if !order.Price.GreaterThanZero() {
		return fmt.Errorf("%w: price должен быть больше нуля", ErrInvalidOrder)
	}
	return nil
}

// Валидация адреса доставки
func (v *OrderValidator) validateAddress(a *domain.DeliveryAddress) error {
	if a.Street == "" {
		return fmt.Errorf("%w: delivery_address.street обязателен", ErrInvalidOrder)
	}
	if a.PostalCode == "" {
		return fmt.Errorf("%w: delivery_address.postal_code обязателен", ErrInvalidOrder)
	}
	if a.City == "" {
		return fmt.Errorf("%w: delivery_address.city обязателен", ErrInvalidOrder)
	}
	return nil
}

// Валидация позиций
func (v *OrderValidator) validateItems(items []domain.OrderItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: items не должен быть пустым", ErrInvalidOrder)
	}

	for i := range items {
		item := &items[i]
		idx := strconv.Itoa(i)

		if item.Product.ID.IsZero() {
			return fmt.Errorf("%w: items[%s].product.product_id обязателен", ErrInvalidOrder, idx)
		}
		if item.Product.Name == "" {
			return fmt.Errorf("%w: items[%s].product.name обязателен", ErrInvalidOrder, idx)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: items[%s].quantity должен быть больше нуля", ErrInvalidOrder, idx)
		}
		if !item.Price.GreaterThanZero() {
			return fmt.Errorf("%w: items[%s].price должен быть больше нуля", ErrInvalidOrder, idx)
		}
		if !item.SubTotal.GreaterThanZero() {
			return fmt.Errorf("%w: items[%s].sub_total должен быть больше нуля", ErrInvalidOrder, idx)
		}
	}
	return nil
}
