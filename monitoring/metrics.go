package monitoring

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	bookingOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_operations_total",
			Help: "Total booking lifecycle operations",
		},
		[]string{"operation", "status"},
	)

	remindersSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Total reminders accepted by the delivery gateway",
		},
		[]string{"lead"},
	)

	reminderFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_delivery_failures_total",
			Help: "Total reminder sends rejected or timed out",
		},
		[]string{"lead"},
	)

	mirrorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mirror_sync_failures_total",
			Help: "Total failed mirror sink dispatches",
		},
		[]string{"sink", "event"},
	)

	sweepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reminder_sweep_duration_seconds",
			Help:    "Duration of reminder sweep passes",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"lead"},
	)

	upcomingTrainings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "upcoming_trainings_total",
			Help: "Trainings currently listed on the upcoming schedule",
		},
	)
)

func TrackBooking(operation, status string) {
	bookingOperations.WithLabelValues(operation, status).Inc()
}

func TrackReminderSent(lead string) {
	remindersSent.WithLabelValues(lead).Inc()
}

func TrackReminderFailure(lead string) {
	reminderFailures.WithLabelValues(lead).Inc()
}

func TrackMirrorFailure(sink, event string) {
	mirrorFailures.WithLabelValues(sink, event).Inc()
}

func ObserveSweepDuration(lead string, seconds float64) {
	sweepDuration.WithLabelValues(lead).Observe(seconds)
}

func SetUpcomingTrainings(n int) {
	upcomingTrainings.Set(float64(n))
}

// StartMetricsServer exposes /metrics on its own listener, detached from
// the application server.
func StartMetricsServer(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("metrics server listening on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server stopped: %v", err)
		}
	}()
}
