package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	wsActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Количество активных WebSocket соединений",
		},
	)

	wsEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_events_total",
			Help: "Количество входящих WebSocket событий по типам",
		},
		[]string{"type"},
	)

	messagesRelayedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_relayed_total",
			Help: "Количество сообщений, разосланных по комнатам",
		},
		[]string{"kind"},
	)

	persistFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_message_persist_failures_total",
			Help: "Количество сообщений, которые не удалось сохранить",
		},
	)
)

func IncrementWSActiveConnections() {
	wsActiveConnections.Inc()
}

func DecrementWSActiveConnections() {
	wsActiveConnections.Dec()
}

func RecordWSEvent(eventType string) {
	wsEventsTotal.WithLabelValues(eventType).Inc()
}

func RecordMessageRelayed(kind string) {
	messagesRelayedTotal.WithLabelValues(kind).Inc()
}

func RecordPersistFailure() {
	persistFailuresTotal.Inc()
}
