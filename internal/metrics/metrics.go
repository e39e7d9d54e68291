// Package metrics регистрирует счётчики Prometheus для переходов
// жизненного цикла подписок. Экспозиция — на /metrics через promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LifecycleEvents считает успешные переходы состояния подписок по видам
// событий: subscribed, cancelled, entitlement_updated, entitlement_reset.
var LifecycleEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "marketplace_subscription_lifecycle_events_total",
	Help: "Number of successful subscription lifecycle transitions by event kind.",
}, []string{"kind"})

// OrderIDRetries считает повторы резервирования номера заказа.
var OrderIDRetries = promauto.NewCounter(prometheus.CounterOpts{
	Name: "marketplace_order_id_reservation_retries_total",
	Help: "Number of order id reservation retries caused by unique violations.",
})
