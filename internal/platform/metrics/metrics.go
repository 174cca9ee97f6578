package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GoalSample is the slice of goal state exported as gauges.
type GoalSample struct {
	Streak      int
	LearnedDays int
	UsedFreezes int
	FreezeQuota int
	Finished    bool
}

type GoalMetrics struct {
	registry *prometheus.Registry

	streak      prometheus.Gauge
	learnedDays prometheus.Gauge
	usedFreezes prometheus.Gauge
	freezeQuota prometheus.Gauge
	finished    prometheus.Gauge
	rollovers   prometheus.Counter
	operations  *prometheus.CounterVec
}

// NewGoalMetrics registers on a private registry so several instances can
// coexist in one process.
func NewGoalMetrics() *GoalMetrics {
	m := &GoalMetrics{
		registry: prometheus.NewRegistry(),
		streak: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "learnjourney_current_streak",
			Help: "Consecutive learned days in the current goal",
		}),
		learnedDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "learnjourney_learned_days",
			Help: "Days logged as learned in the current goal",
		}),
		usedFreezes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "learnjourney_used_freezes",
			Help: "Freeze days spent in the current goal",
		}),
		freezeQuota: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "learnjourney_freeze_quota",
			Help: "Freeze days allowed for the current goal",
		}),
		finished: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "learnjourney_period_finished",
			Help: "1 once the current goal period has been completed",
		}),
		rollovers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "learnjourney_rollovers_total",
			Help: "Midnight rollovers processed",
		}),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnjourney_operations_total",
				Help: "Goal operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
	}
	m.registry.MustRegister(m.streak, m.learnedDays, m.usedFreezes, m.freezeQuota, m.finished, m.rollovers, m.operations)
	return m
}

func (m *GoalMetrics) Observe(s GoalSample) {
	m.streak.Set(float64(s.Streak))
	m.learnedDays.Set(float64(s.LearnedDays))
	m.usedFreezes.Set(float64(s.UsedFreezes))
	m.freezeQuota.Set(float64(s.FreezeQuota))
	if s.Finished {
		m.finished.Set(1)
	} else {
		m.finished.Set(0)
	}
}

func (m *GoalMetrics) Rollover() {
	m.rollovers.Inc()
}

func (m *GoalMetrics) Operation(name, outcome string) {
	m.operations.WithLabelValues(name, outcome).Inc()
}

func (m *GoalMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
