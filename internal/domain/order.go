package domain

import "fmt"

// Order — корневой агрегат заказа. Владеет позициями, статусом и всеми
// инвариантами; переходы статуса выполняются только через методы агрегата
// и либо успешны, либо возвращают обёрнутую ErrBusinessRule без изменения
// состояния.
type Order struct {
	ID              OrderID         `json:"id"`
	CustomerID      CustomerID      `json:"customer_id"`
	ShopID          ShopID          `json:"shop_id"`
	DeliveryAddress DeliveryAddress `json:"delivery_address"`
	Price           Money           `json:"price"`
	Items           []OrderItem     `json:"items"`
	TrackingID      TrackingID      `json:"tracking_id"`
	Status          OrderStatus     `json:"status"`
	FailureMessages []string        `json:"failure_messages"`
}

// OrderConfig — полный набор полей для конструктора заказа.
// TrackingID/Status/FailureMessages заполняются только при восстановлении
// из хранилища; у нового заказа они пустые до Initialize.
type OrderConfig struct {
	ID              OrderID
	CustomerID      CustomerID
	ShopID          ShopID
	DeliveryAddress DeliveryAddress
	Price           Money
	Items           []OrderItem
	TrackingID      TrackingID
	Status          OrderStatus
	FailureMessages []string
}

// NewOrder — конструктор агрегата (вместо builder-а).
// Список сообщений об ошибках нормализуется: всегда непустой slice-значение,
// пустые строки отбрасываются.
func NewOrder(cfg OrderConfig) *Order {
	return &Order{
		ID:              cfg.ID,
		CustomerID:      cfg.CustomerID,
		ShopID:          cfg.ShopID,
		DeliveryAddress: cfg.DeliveryAddress,
		Price:           cfg.Price,
		Items:           cfg.Items,
		TrackingID:      cfg.TrackingID,
		Status:          cfg.Status,
		FailureMessages: dropEmpty(cfg.FailureMessages),
	}
}

// Initialize — присваивает заказу свежие OrderID и TrackingID, статус PENDING
// и нумерует позиции с единицы, проставляя им ссылку на заказ.
// Предусловия (id и статус ещё не заданы) проверяет Validate.
func (o *Order) Initialize() {
	o.ID = NewOrderID()
	o.TrackingID = NewTrackingID()
	o.Status = StatusPending
	o.initializeItems()
}

func (o *Order) initializeItems() {
	itemID := OrderItemID(1)
	for idx := range o.Items {
		o.Items[idx].initialize(o.ID, itemID)
		itemID++
	}
}

// Validate — проверки перед инициализацией, строго по порядку:
// исходное состояние, общая цена, цены позиций. Порядок существенен —
// последующие сообщения ссылаются на заявленную цену заказа.
func (o *Order) Validate() error {
	if err := o.validateInitialState(); err != nil {
		return err
	}
	if err := o.validateTotalPrice(); err != nil {
		return err
	}
	return o.validateItemsPrice()
}

// validateInitialState — защита от повторной инициализации существующего заказа.
func (o *Order) validateInitialState() error {
	if !o.Status.IsZero() || !o.ID.IsZero() {
		return fmt.Errorf("%w: order is not in a correct state for initialization", ErrBusinessRule)
	}
	return nil
}

func (o *Order) validateTotalPrice() error {
	if !o.Price.GreaterThanZero() {
		return fmt.Errorf("%w: total price must be greater than zero", ErrBusinessRule)
	}
	return nil
}

// validateItemsPrice — пересчитывает сумму подытогов с нуля и сверяет
// с заявленной ценой заказа; попутно проверяет арифметику каждой позиции.
func (o *Order) validateItemsPrice() error {
	itemsTotal := ZeroMoney
	for idx := range o.Items {
		item := &o.Items[idx]
		if !item.priceIsValid() {
			return fmt.Errorf("%w: order item price %s is not valid for product %s",
				ErrBusinessRule, item.Price, item.Product.ID)
		}
		itemsTotal = itemsTotal.Add(item.SubTotal)
	}
	if !o.Price.Equal(itemsTotal) {
		return fmt.Errorf("%w: total price %s is not equal to order items total %s",
			ErrBusinessRule, o.Price, itemsTotal)
	}
	return nil
}

// Pay — переход PENDING → PAID.
func (o *Order) Pay() error {
	return o.transitionTo(StatusPaid, "pay")
}

// Approve — переход PAID → APPROVED (терминальный).
func (o *Order) Approve() error {
	return o.transitionTo(StatusApproved, "approve")
}

// InitCancel — переход PAID → CANCELLING с накоплением причин отказа.
func (o *Order) InitCancel(failureMessages []string) error {
	if err := o.transitionTo(StatusCancelling, "init cancel"); err != nil {
		return err
	}
	o.appendFailureMessages(failureMessages)
	return nil
}

// Cancel — переход PENDING|CANCELLING → CANCELLED (терминальный)
// с накоплением причин отказа.
func (o *Order) Cancel(failureMessages []string) error {
	if err := o.transitionTo(StatusCancelled, "cancel"); err != nil {
		return err
	}
	o.appendFailureMessages(failureMessages)
	return nil
}

// transitionTo — единая точка смены статуса: недопустимый переход —
// ошибка состояния, статус не меняется.
func (o *Order) transitionTo(target OrderStatus, op string) error {
	if !o.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: order in status %s is not in correct state for %s operation",
			ErrBusinessRule, o.Status, op)
	}
	o.Status = target
	return nil
}

// appendFailureMessages — добавляет непустые сообщения в конец списка.
// Список всегда представлен slice-значением, никогда nil против пустого.
func (o *Order) appendFailureMessages(messages []string) {
	o.FailureMessages = append(o.FailureMessages, dropEmpty(messages)...)
}

func dropEmpty(messages []string) []string {
	out := make([]string, 0, len(messages))
	for _, m := range messages {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}
