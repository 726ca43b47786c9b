package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "Notifications created, by type.",
	}, []string{"type"})

	channelAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_channel_attempts_total",
		Help: "Delivery attempts per channel and outcome.",
	}, []string{"channel", "status"})
)
