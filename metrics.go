package pubsub

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusNotificationHandler republishes pub/sub lifecycle events as
// Prometheus counters, a concrete second NotificationHandler alongside
// topicNotificationBridge. Grounded on the metrics-via-Prometheus pattern
// used elsewhere in the retrieved example pack (metrics middleware
// registering counters/histograms against a prometheus.Registerer at
// construction time) rather than on anything in pypubsub, which has no
// metrics story of its own.
type PrometheusNotificationHandler struct {
	NoopNotificationHandler

	subscribes    *prometheus.CounterVec
	unsubscribes  *prometheus.CounterVec
	deadListeners *prometheus.CounterVec
	messages      *prometheus.CounterVec
	topicsCreated *prometheus.CounterVec
	topicsDeleted *prometheus.CounterVec
}

// NewPrometheusNotificationHandler builds a handler and registers its
// collectors against reg. Pass prometheus.DefaultRegisterer to use the
// global registry.
func NewPrometheusNotificationHandler(reg prometheus.Registerer) *PrometheusNotificationHandler {
	h := &PrometheusNotificationHandler{
		subscribes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pubsub_subscribe_total",
			Help: "Number of listener subscriptions, by topic.",
		}, []string{"topic"}),
		unsubscribes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pubsub_unsubscribe_total",
			Help: "Number of listener unsubscriptions, by topic.",
		}, []string{"topic"}),
		deadListeners: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pubsub_dead_listener_total",
			Help: "Number of listeners detached after their owner was garbage collected, by topic.",
		}, []string{"topic"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pubsub_messages_total",
			Help: "Number of messages delivered to a topic's listeners, by topic and stage.",
		}, []string{"topic", "stage"}),
		topicsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pubsub_topics_created_total",
			Help: "Number of topics created.",
		}, []string{"topic"}),
		topicsDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pubsub_topics_deleted_total",
			Help: "Number of topics deleted.",
		}, []string{"topic"}),
	}
	reg.MustRegister(h.subscribes, h.unsubscribes, h.deadListeners, h.messages, h.topicsCreated, h.topicsDeleted)
	return h
}

func (h *PrometheusNotificationHandler) NotifySubscribe(t *Topic, _ string) {
	h.subscribes.WithLabelValues(t.Name().String()).Inc()
}

func (h *PrometheusNotificationHandler) NotifyUnsubscribe(t *Topic, _ string) {
	h.unsubscribes.WithLabelValues(t.Name().String()).Inc()
}

func (h *PrometheusNotificationHandler) NotifyDeadListener(t *Topic, _ string) {
	h.deadListeners.WithLabelValues(t.Name().String()).Inc()
}

func (h *PrometheusNotificationHandler) NotifySendMessage(t *Topic, stage string, _ Data) {
	h.messages.WithLabelValues(t.Name().String(), stage).Inc()
}

func (h *PrometheusNotificationHandler) NotifyNewTopic(t *Topic) {
	h.topicsCreated.WithLabelValues(t.Name().String()).Inc()
}

func (h *PrometheusNotificationHandler) NotifyDelTopic(name Name) {
	h.topicsDeleted.WithLabelValues(name.String()).Inc()
}
