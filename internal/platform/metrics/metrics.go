// Package metrics records batch-job metrics for the rating commands and pushes
// them to a Prometheus Pushgateway when one is configured.
package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "league_rating"

// Manager owns a private registry so pushed payloads only carry job metrics.
type Manager struct {
	registry *prometheus.Registry

	matchesLoaded    prometheus.Counter
	playersCreated   prometheus.Counter
	playersRated     prometheus.Counter
	periodDuration   prometheus.Histogram
	solverIterations prometheus.Histogram
	lastSuccessUnix  *prometheus.GaugeVec
}

func NewManager() *Manager {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	return &Manager{
		registry: registry,
		matchesLoaded: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_loaded_total",
			Help:      "Matches appended to the match log.",
		}),
		playersCreated: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "players_created_total",
			Help:      "Players registered during ingestion.",
		}),
		playersRated: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "players_rated_total",
			Help:      "Posterior ratings written by period updates.",
		}),
		periodDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "period_update_duration_seconds",
			Help:      "Wall time of a rating period update including persistence.",
			Buckets:   prometheus.DefBuckets,
		}),
		solverIterations: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "volatility_solver_iterations",
			Help:      "Iterations spent by the volatility solver per rated player.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34, 55, 100},
		}),
		lastSuccessUnix: auto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful command.",
		}, []string{"command"}),
	}
}

func (m *Manager) MatchesLoaded(n int) {
	m.matchesLoaded.Add(float64(n))
}

func (m *Manager) PlayersCreated(n int) {
	m.playersCreated.Add(float64(n))
}

func (m *Manager) PeriodRated(players int, elapsed time.Duration) {
	m.playersRated.Add(float64(players))
	m.periodDuration.Observe(elapsed.Seconds())
}

func (m *Manager) SolverIterations(n int) {
	m.solverIterations.Observe(float64(n))
}

func (m *Manager) CommandSucceeded(command string) {
	m.lastSuccessUnix.WithLabelValues(command).SetToCurrentTime()
}

func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Push sends every collected metric to the gateway. An empty url is a no-op.
func (m *Manager) Push(ctx context.Context, url, job string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	if strings.TrimSpace(job) == "" {
		job = namespace
	}

	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
