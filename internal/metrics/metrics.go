package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics - счётчики диалога записи, напоминаний и уведомлений администраторам
type BookingMetrics struct {
	events        *prometheus.CounterVec
	conflicts     *prometheus.CounterVec
	commits       *prometheus.CounterVec
	reminders     *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "photostudio",
			Subsystem: "booking",
			Name:      "dialogue_events_total",
			Help:      "Booking dialogue events by action and resulting stage",
		}, []string{"action", "outcome"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "photostudio",
			Subsystem: "booking",
			Name:      "slot_conflicts_total",
			Help:      "Slot conflicts detected by the conflict checker",
		}, []string{"step"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "photostudio",
			Subsystem: "booking",
			Name:      "commits_total",
			Help:      "Committed bookings by kind (new, reschedule, fallback)",
		}, []string{"kind"}),
		reminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "photostudio",
			Subsystem: "booking",
			Name:      "reminders_total",
			Help:      "24h reminders by delivery status",
		}, []string{"status"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "photostudio",
			Subsystem: "admin",
			Name:      "notifications_total",
			Help:      "Admin notifications by kind and delivery status",
		}, []string{"kind", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.events, m.conflicts, m.commits, m.reminders, m.notifications)
	return m
}

func (m *BookingMetrics) ObserveEvent(action, outcome string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(action, outcome).Inc()
}

func (m *BookingMetrics) ObserveConflict(step string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(step).Inc()
}

func (m *BookingMetrics) ObserveCommit(kind string) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(kind).Inc()
}

func (m *BookingMetrics) ObserveReminder(status string) {
	if m == nil {
		return
	}
	m.reminders.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveNotification(kind, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, status).Inc()
}
