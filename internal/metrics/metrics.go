package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the geofence pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	PresenceEvents      *prometheus.CounterVec
	NotificationsSent   *prometheus.CounterVec
	GoalsCompleted      *prometheus.CounterVec
	RegionRegistrations prometheus.Counter
	RegionsMonitored    prometheus.Gauge
	RegionsTruncated    prometheus.Gauge
	SyncRefreshes       prometheus.Counter
	PresenceSamples     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PresenceEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "goalfence_presence_events_total",
			Help: "Geofence callbacks handled, by outcome",
		}, []string{"outcome"}),
		NotificationsSent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "goalfence_notifications_total",
			Help: "Notifications attempted, by kind and result",
		}, []string{"kind", "result"}),
		GoalsCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "goalfence_goals_completed_total",
			Help: "Goals migrated to the completed set, by path",
		}, []string{"path"}),
		RegionRegistrations: f.NewCounter(prometheus.CounterOpts{
			Name: "goalfence_region_registrations_total",
			Help: "Times the monitored region set was replaced",
		}),
		RegionsMonitored: f.NewGauge(prometheus.GaugeOpts{
			Name: "goalfence_regions_monitored",
			Help: "Regions in the currently registered set",
		}),
		RegionsTruncated: f.NewGauge(prometheus.GaugeOpts{
			Name: "goalfence_regions_truncated",
			Help: "Goal regions left out of the last recomputation by the cap",
		}),
		SyncRefreshes: f.NewCounter(prometheus.CounterOpts{
			Name: "goalfence_sync_refreshes_total",
			Help: "Foreground cache replacements after a storage change",
		}),
		PresenceSamples: f.NewCounterVec(prometheus.CounterOpts{
			Name: "goalfence_presence_samples_total",
			Help: "Foreground position samples, by resulting state",
		}, []string{"state"}),
	}
}

func (m *Metrics) IncPresenceEvent(outcome string) {
	if m == nil {
		return
	}
	m.PresenceEvents.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncNotification(kind string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.NotificationsSent.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) IncGoalCompleted(path string) {
	if m == nil {
		return
	}
	m.GoalsCompleted.WithLabelValues(path).Inc()
}

func (m *Metrics) ObserveRegistration(regions, truncated int) {
	if m == nil {
		return
	}
	m.RegionRegistrations.Inc()
	m.RegionsMonitored.Set(float64(regions))
	m.RegionsTruncated.Set(float64(truncated))
}

func (m *Metrics) ObserveStopped() {
	if m == nil {
		return
	}
	m.RegionsMonitored.Set(0)
}

func (m *Metrics) IncSyncRefresh() {
	if m == nil {
		return
	}
	m.SyncRefreshes.Inc()
}

func (m *Metrics) IncPresenceSample(state string) {
	if m == nil {
		return
	}
	m.PresenceSamples.WithLabelValues(state).Inc()
}
