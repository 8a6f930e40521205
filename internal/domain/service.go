package domain

import (
	"fmt"
	"time"
)

// OrderDomainService — многошаговые бизнес-операции над агрегатом:
// сверка заказа с магазином, вызов операций агрегата в нужном порядке
// и формирование доменных событий. Чистая логика без I/O; персистентность
// и доставка событий — ответственность вызывающего слоя.
type OrderDomainService struct{}

// NewOrderDomainService — конструктор.
func NewOrderDomainService() *OrderDomainService { return &OrderDomainService{} }

// ValidateAndInitiateOrder — проверяет активность магазина, сверяет каждую
// позицию с каталогом (товар существует и заявленная цена совпадает),
// валидирует и инициализирует заказ. Возвращает событие создания.
func (s *OrderDomainService) ValidateAndInitiateOrder(order *Order, shop *Shop) (OrderCreatedEvent, error) {
	if err := s.validateShop(shop); err != nil {
		return OrderCreatedEvent{}, err
	}
	if err := s.validateItemsAgainstCatalog(order, shop); err != nil {
		return OrderCreatedEvent{}, err
	}
	if err := order.Validate(); err != nil {
		return OrderCreatedEvent{}, err
	}
	order.Initialize()
	return OrderCreatedEvent{Order: order, CreatedAt: time.Now().UTC()}, nil
}

// PayOrder — оплата заказа; возвращает событие оплаты.
func (s *OrderDomainService) PayOrder(order *Order) (OrderPaidEvent, error) {
	if err := order.Pay(); err != nil {
		return OrderPaidEvent{}, err
	}
	return OrderPaidEvent{Order: order, CreatedAt: time.Now().UTC()}, nil
}

// ApproveOrder — подтверждение заказа. Событие не формируется:
// APPROVED — терминальный статус, коллабораторы наблюдают его по чтению.
func (s *OrderDomainService) ApproveOrder(order *Order) error {
	return order.Approve()
}

// CancelOrderPayment — начало отмены оплаченного заказа;
// возвращает событие отмены для компенсации оплаты.
func (s *OrderDomainService) CancelOrderPayment(order *Order, failureMessages []string) (OrderCancelledEvent, error) {
	if err := order.InitCancel(failureMessages); err != nil {
		return OrderCancelledEvent{}, err
	}
	return OrderCancelledEvent{Order: order, CreatedAt: time.Now().UTC()}, nil
}

// CancelOrder — окончательная отмена заказа (из PENDING или CANCELLING).
func (s *OrderDomainService) CancelOrder(order *Order, failureMessages []string) error {
	return order.Cancel(failureMessages)
}

func (s *OrderDomainService) validateShop(shop *Shop) error {
	if shop == nil || !shop.Active {
		return fmt.Errorf("%w: shop is currently not active", ErrBusinessRule)
	}
	return nil
}

// validateItemsAgainstCatalog — каждый товар заказа должен существовать
// в каталоге магазина, а заявленная цена позиции — совпадать с каталожной.
func (s *OrderDomainService) validateItemsAgainstCatalog(order *Order, shop *Shop) error {
	for idx := range order.Items {
		item := &order.Items[idx]
		product, ok := shop.ProductByID(item.Product.ID)
		if !ok {
			return fmt.Errorf("%w: product %s is not in shop catalog", ErrBusinessRule, item.Product.ID)
		}
		if !item.Price.Equal(product.Price) {
			return fmt.Errorf("%w: product %s price %s does not match catalog price %s",
				ErrBusinessRule, item.Product.ID, item.Price, product.Price)
		}
	}
	return nil
}
