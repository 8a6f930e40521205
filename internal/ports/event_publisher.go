package ports

import (
	"context"

	"github.com/Gunvolt24/orderflow/internal/domain"
)

// EventPublisher — издатель доменных событий для внешних коллабораторов.
// Сериализация и транспорт — забота реализации; домен событий не знает о них.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
	Close() error
}
