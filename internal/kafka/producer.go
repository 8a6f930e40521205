package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Gunvolt24/orderflow/internal/domain"
	"github.com/Gunvolt24/orderflow/internal/ports"
	"github.com/segmentio/kafka-go"
)

// Проверка, что Producer удовлетворяет интерфейсу EventPublisher.
var _ ports.EventPublisher = (*Producer)(nil)

// writer — минимальный контракт над kafka.Writer для подмены в тестах.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProducerConfig — настройки издателя доменных событий.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// Producer — издатель доменных событий заказа в Kafka.
// Все виды событий идут в один топик; вид кладём в заголовок, ключ —
// id заказа, чтобы события одного заказа попадали в одну партицию.
type Producer struct {
	writer    writer
	topic     string
	closeOnce sync.Once
}

// NewProducer — конструктор поверх kafka.Writer (acks от всех реплик).
func NewProducer(cfg *ProducerConfig) *Producer {
	wt := cfg.WriteTimeout
	if wt <= 0 {
		wt = 10 * time.Second
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: wt,
	}
	return &Producer{writer: w, topic: cfg.Topic}
}

// eventEnvelope — сериализованное событие: дискриминатор, момент, снимок заказа.
type eventEnvelope struct {
	Kind       string        `json:"kind"`
	OccurredAt time.Time     `json:"occurred_at"`
	Order      *domain.Order `json:"order"`
}

// Publish — сериализует и отправляет событие.
func (p *Producer) Publish(ctx context.Context, event domain.Event) error {
	order := orderOf(event)
	if order == nil {
		return fmt.Errorf("unsupported event kind %q", event.Kind())
	}

	payload, err := json.Marshal(eventEnvelope{
		Kind:       event.Kind(),
		OccurredAt: event.OccurredAt(),
		Order:      order,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-kind", Value: []byte(event.Kind())},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event %s: %w", event.Kind(), err)
	}
	return nil
}

// Close — закрывает writer. Вызывается при остановке приложения.
func (p *Producer) Close() (retErr error) {
	p.closeOnce.Do(func() {
		retErr = p.writer.Close()
	})
	return retErr
}

// orderOf — снимок заказа из известных видов событий.
func orderOf(event domain.Event) *domain.Order {
	switch e := event.(type) {
	case domain.OrderCreatedEvent:
		return e.Order
	case domain.OrderPaidEvent:
		return e.Order
	case domain.OrderCancelledEvent:
		return e.Order
	default:
		return nil
	}
}
