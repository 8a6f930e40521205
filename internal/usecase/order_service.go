package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Gunvolt24/orderflow/internal/domain"
	"github.com/Gunvolt24/orderflow/internal/ports"
	"github.com/Gunvolt24/orderflow/pkg/metrics"
)

// Проверка, что OrderService реализует транспортный порт.
var _ ports.OrderService = (*OrderService)(nil)

// ErrOrderNotFound — заказ не найден в хранилище. Для консьюмера платёжных
// сообщений это временная ситуация (сообщение могло обогнать создание заказа).
var ErrOrderNotFound = errors.New("order not found")

// ErrBadMessage — сообщение невалидно и не станет валидным при повторе.
var ErrBadMessage = errors.New("invalid payment message")

// OrderService — прикладная логика работы с заказами (без знаний о транспорте).
// Доменные операции выполняет domain.OrderDomainService; сервис добавляет
// к ним загрузку/сохранение, кэш и публикацию событий.
type OrderService struct {
	orders    ports.OrderRepository
	shops     ports.ShopRepository
	cache     ports.OrderCache
	publisher ports.EventPublisher
	validator ports.OrderValidator
	log       ports.Logger
	domainSvc *domain.OrderDomainService
}

// NewOrderService — DI-конструктор.
func NewOrderService(
	orders ports.OrderRepository,
	shops ports.ShopRepository,
	cache ports.OrderCache,
	publisher ports.EventPublisher,
	validator ports.OrderValidator,
	log ports.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		shops:     shops,
		cache:     cache,
		publisher: publisher,
		validator: validator,
		log:       log,
		domainSvc: domain.NewOrderDomainService(),
	}
}

// CreateOrder — создать заказ. Шаги:
//  1. структурная валидация документа;
//  2. загрузка снимка магазина;
//  3. доменная валидация и инициализация (агрегат мутируется: id, tracking id, PENDING);
//  4. транзакционное сохранение;
//  5. публикация OrderCreatedEvent и запись в кэш (ошибки — только warn).
func (s *OrderService) CreateOrder(ctx context.Context, order *domain.Order) error {
	if err := s.validator.Validate(ctx, order); err != nil {
		s.log.Warnf(ctx, "order validation failed: %v", err)
		return fmt.Errorf("validation failed: %w", err)
	}

	shop, err := s.shops.GetByID(ctx, order.ShopID)
	if err != nil {
		s.log.Errorf(ctx, "shops.GetByID failed shop_id=%s err=%v", order.ShopID, err)
		return fmt.Errorf("load shop: %w", err)
	}
	if shop == nil {
		return fmt.Errorf("%w: shop %s not found", domain.ErrBusinessRule, order.ShopID)
	}

	event, err := s.domainSvc.ValidateAndInitiateOrder(order, shop)
	if err != nil {
		s.log.Warnf(ctx, "order rejected shop_id=%s err=%v", order.ShopID, err)
		return err
	}

	if err := s.orders.Save(ctx, order); err != nil {
		s.log.Errorf(ctx, "orders.Save failed order_id=%s err=%v", order.ID, err)
		return fmt.Errorf("failed to save order: %w", err)
	}
	metrics.OrderTransitions.WithLabelValues(string(order.Status)).Inc()

	s.publishEvent(ctx, event)
	s.cacheOrder(ctx, order)

	s.log.Infof(ctx, "order created id=%s tracking_id=%s items=%d", order.ID, order.TrackingID, len(order.Items))
	return nil
}

// GetOrder — получить заказ по id: сначала из кэша, при промахе — из БД
// с записью в кэш. Возвращает (nil, nil), если записи нет.
func (s *OrderService) GetOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	if order, found := s.cache.Get(ctx, id); found {
		s.log.Infof(ctx, "cache hit for order=%s", id)
		return order, nil
	}
	s.log.Infof(ctx, "cache miss for order=%s", id)

	start := time.Now()
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		s.log.Errorf(ctx, "orders.GetByID failed order_id=%s err=%v", id, err)
		return nil, err
	}

	if order != nil {
		s.cacheOrder(ctx, order)
	}

	s.log.Infof(ctx, "db fetch order_id=%s took=%s", id, time.Since(start))
	return order, nil
}

// TrackOrder — клиентский поиск заказа по tracking id (мимо кэша:
// кэш индексирован внутренним id). Возвращает (nil, nil), если записи нет.
func (s *OrderService) TrackOrder(ctx context.Context, trackingID domain.TrackingID) (*domain.Order, error) {
	return s.orders.GetByTrackingID(ctx, trackingID)
}

// OrdersByCustomer — проксирование в репозиторий (пагинация валидирована выше).
func (s *OrderService) OrdersByCustomer(
	ctx context.Context,
	customerID domain.CustomerID,
	limit, offset int,
) ([]*domain.Order, error) {
	return s.orders.ListByCustomer(ctx, customerID, limit, offset)
}

// ApproveOrder — подтвердить оплаченный заказ (PAID → APPROVED).
// Событие не публикуется: статус терминальный, коллабораторы читают его.
func (s *OrderService) ApproveOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.domainSvc.ApproveOrder(order); err != nil {
		return nil, err
	}
	if err := s.saveTransition(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder — окончательная отмена (PENDING|CANCELLING → CANCELLED).
func (s *OrderService) CancelOrder(ctx context.Context, id domain.OrderID, failureMessages []string) (*domain.Order, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.domainSvc.CancelOrder(order, failureMessages); err != nil {
		return nil, err
	}
	if err := s.saveTransition(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// PaymentMessage — исход оплаты от платёжного сервиса (raw JSON из Kafka).
type PaymentMessage struct {
	OrderID         string   `json:"order_id"`
	PaymentStatus   string   `json:"payment_status"`
	FailureMessages []string `json:"failure_messages"`
}

// Статусы платёжного сообщения.
const (
	PaymentCompleted = "COMPLETED"
	PaymentCancelled = "CANCELLED"
	PaymentFailed    = "FAILED"
)

// ProcessPaymentMessage — обработать исход оплаты. Шаги:
//  1. строгий парсинг JSON (DisallowUnknownFields) —> отлавливаем незадокументированные поля;
//  2. загрузка заказа (нет заказа —> ErrOrderNotFound, сообщение повторится);
//  3. COMPLETED —> оплата (PENDING → PAID), иначе —> начало отмены (PAID → CANCELLING);
//  4. сохранение и публикация события.
//
// Ошибки парсинга и доменных правил постоянны — консьюмер пропускает такие
// сообщения; ошибки хранилища временны — сообщение обрабатывается повторно.
func (s *OrderService) ProcessPaymentMessage(ctx context.Context, raw []byte) error {
	msg, err := decodePaymentMessage(raw)
	if err != nil {
		s.log.Warnf(ctx, "invalid payment message err=%v", err)
		return err
	}

	orderID, err := domain.ParseOrderID(msg.OrderID)
	if err != nil {
		s.log.Warnf(ctx, "invalid order id in payment message: %v", err)
		return fmt.Errorf("%w: bad order_id: %v", ErrBadMessage, err)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		s.log.Errorf(ctx, "orders.GetByID failed order_id=%s err=%v", orderID, err)
		return err
	}
	if order == nil {
		return fmt.Errorf("%w: id=%s", ErrOrderNotFound, orderID)
	}

	var event domain.Event
	switch msg.PaymentStatus {
	case PaymentCompleted:
		paid, payErr := s.domainSvc.PayOrder(order)
		if payErr != nil {
			return payErr
		}
		event = paid
	case PaymentCancelled, PaymentFailed:
		cancelled, cancelErr := s.domainSvc.CancelOrderPayment(order, msg.FailureMessages)
		if cancelErr != nil {
			return cancelErr
		}
		event = cancelled
	default:
		return fmt.Errorf("%w: unknown payment_status %q", ErrBadMessage, msg.PaymentStatus)
	}

	if err := s.saveTransition(ctx, order); err != nil {
		return err
	}
	s.publishEvent(ctx, event)

	s.log.Infof(ctx, "payment processed order_id=%s payment_status=%s order_status=%s",
		order.ID, msg.PaymentStatus, order.Status)
	return nil
}

// WarmUpCache — прогрев кэша последними N заказами из БД.
// Если n <= 0, прогрев не выполняется (но это не ошибка).
func (s *OrderService) WarmUpCache(ctx context.Context, n int) error {
	if n <= 0 {
		s.log.Warnf(ctx, "cache warm-up skipped: n <= 0 (n=%d)", n)
		return nil
	}

	start := time.Now()
	list, err := s.orders.LastN(ctx, n)
	if err != nil {
		s.log.Errorf(ctx, "orders.LastN failed n=%d err=%v", n, err)
		return err
	}
	if warmUpErr := s.cache.WarmUp(ctx, list); warmUpErr != nil {
		s.log.Warnf(ctx, "cache.WarmUp failed err=%v", warmUpErr)
	}
	s.log.Infof(ctx, "cache warmed with %d orders in %s", len(list), time.Since(start))
	return nil
}

// ------вспомогательные функции------

func (s *OrderService) loadOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		s.log.Errorf(ctx, "orders.GetByID failed order_id=%s err=%v", id, err)
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: id=%s", ErrOrderNotFound, id)
	}
	return order, nil
}

// saveTransition — сохранить заказ после смены статуса и обновить кэш.
func (s *OrderService) saveTransition(ctx context.Context, order *domain.Order) error {
	if err := s.orders.Save(ctx, order); err != nil {
		s.log.Errorf(ctx, "orders.Save failed order_id=%s err=%v", order.ID, err)
		return fmt.Errorf("failed to save order: %w", err)
	}
	metrics.OrderTransitions.WithLabelValues(string(order.Status)).Inc()
	s.cacheOrder(ctx, order)
	return nil
}

// publishEvent — публикация события; отказ издателя не откатывает заказ.
// TODO: убрать потерю события при отказе брокера, переведя публикацию на outbox-таблицу.
func (s *OrderService) publishEvent(ctx context.Context, event domain.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warnf(ctx, "publish %s failed: %v", event.Kind(), err)
		return
	}
	metrics.EventsPublished.WithLabelValues(event.Kind()).Inc()
}

func (s *OrderService) cacheOrder(ctx context.Context, order *domain.Order) {
	if err := s.cache.Set(ctx, order); err != nil {
		s.log.Warnf(ctx, "cache.Set failed order_id=%s err=%v", order.ID, err)
	}
}

// decodePaymentMessage — строгое декодирование: запрещаем неизвестные поля
// и лишние данные после объекта.
func decodePaymentMessage(raw []byte) (*PaymentMessage, error) {
	var msg PaymentMessage
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrBadMessage)
	}
	return &msg, nil
}
