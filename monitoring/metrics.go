package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ticket-marketplace/store"
)

var (
	bookingOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_operations_total",
			Help: "Total booking lifecycle operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	inventoryConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_inventory_conflicts_total",
			Help: "Conditional inventory decrements lost to a concurrent update",
		},
	)

	fraudCascades = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vendor_fraud_cascades_total",
			Help: "Vendors marked fraudulent (each hides all of the vendor's tickets)",
		},
	)

	advertisedSlots = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "advertised_tickets_total",
			Help: "Current number of tickets occupying an advertisement slot",
		},
	)

	bookingCreateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "booking_create_duration_seconds",
			Help:    "Duration of booking creation including inventory reservation",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)
)

type Monitor struct {
	store store.Store
}

func NewMonitor(ctx context.Context, st store.Store) *Monitor {
	monitor := &Monitor{store: st}

	go monitor.collectMetrics(ctx)

	return monitor
}

func (m *Monitor) collectMetrics(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if count, err := m.store.CountAdvertisedTickets(ctx); err == nil {
				advertisedSlots.Set(float64(count))
			}
		}
	}
}

// Track a booking lifecycle operation (create, accept, reject, pay).
func (m *Monitor) TrackBookingOperation(operation, outcome string) {
	bookingOperations.WithLabelValues(operation, outcome).Inc()
}

func (m *Monitor) TrackInventoryConflict() {
	inventoryConflicts.Inc()
}

func (m *Monitor) TrackFraudCascade() {
	fraudCascades.Inc()
}

func (m *Monitor) SetAdvertisedSlots(count int) {
	advertisedSlots.Set(float64(count))
}

func (m *Monitor) TrackBookingCreateDuration(d time.Duration) {
	bookingCreateDuration.Observe(d.Seconds())
}
