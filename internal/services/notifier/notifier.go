// Package notifier публикует события жизненного цикла подписок в
// RabbitMQ. Дальнейшая доставка уведомлений — забота внешнего сервиса,
// читающего очереди notification.*.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/marketplace-backend/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// Service публикует события в обменник подписок.
type Service struct {
	ch  *amqp.Channel
	log *slog.Logger
}

// New создает новый Service поверх открытого канала RabbitMQ.
func New(ch *amqp.Channel, log *slog.Logger) *Service {
	return &Service{
		ch:  ch,
		log: log,
	}
}

// Publish отправляет событие в обменник; ключ маршрутизации — вид события.
func (s *Service) Publish(_ context.Context, event models.Event) error {
	const op = "services.notifier.Publish"
	if err := rabbitmq.PublishMessage(s.ch, rabbitmq.Exchange, event.Kind, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("lifecycle event published", slog.String("kind", event.Kind))
	return nil
}
