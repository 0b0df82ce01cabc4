package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/boardwalk/pkg/domain"
)

// Metrics holds the Prometheus collectors fed by board lifecycle hooks.
type Metrics struct {
	TokensCreated      *prometheus.CounterVec
	TokensDiscarded    *prometheus.CounterVec
	TokensLive         *prometheus.GaugeVec
	MovementsQueued    *prometheus.CounterVec
	MovementsCompleted *prometheus.CounterVec
	RotationPhases     *prometheus.CounterVec
	AssetLoadFailures  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// Use prometheus.DefaultRegisterer to expose them through promhttp.Handler.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		TokensCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boardwalk_tokens_created_total",
				Help: "Total number of tokens placed on a board",
			},
			[]string{"board_id"},
		),
		TokensDiscarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boardwalk_tokens_discarded_total",
				Help: "Total number of tokens removed from a board",
			},
			[]string{"board_id"},
		),
		TokensLive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "boardwalk_tokens_live",
				Help: "Number of tokens currently on a board",
			},
			[]string{"board_id"},
		),
		MovementsQueued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boardwalk_movements_queued_total",
				Help: "Total number of movements queued (including redirections)",
			},
			[]string{"board_id"},
		),
		MovementsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boardwalk_movements_completed_total",
				Help: "Total number of movements that converged",
			},
			[]string{"board_id"},
		),
		RotationPhases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boardwalk_rotation_phases_total",
				Help: "Total number of rotation phases entered",
			},
			[]string{"board_id", "phase"},
		),
		AssetLoadFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boardwalk_asset_load_failures_total",
				Help: "Total number of token creations dropped because the asset failed to load",
			},
			[]string{"board_id"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.TokensCreated, m.TokensDiscarded, m.TokensLive,
		m.MovementsQueued, m.MovementsCompleted,
		m.RotationPhases, m.AssetLoadFailures,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTokenCreated: func(_ context.Context, e *domain.TokenEvent) {
			m.TokensCreated.WithLabelValues(e.BoardID).Inc()
			m.TokensLive.WithLabelValues(e.BoardID).Inc()
		},
		OnTokenDiscarded: func(_ context.Context, e *domain.TokenEvent) {
			m.TokensDiscarded.WithLabelValues(e.BoardID).Inc()
			m.TokensLive.WithLabelValues(e.BoardID).Dec()
		},
		OnMovementQueued: func(_ context.Context, e *domain.TokenEvent) {
			m.MovementsQueued.WithLabelValues(e.BoardID).Inc()
		},
		OnMovementCompleted: func(_ context.Context, e *domain.TokenEvent) {
			m.MovementsCompleted.WithLabelValues(e.BoardID).Inc()
		},
		OnRotationPhase: func(_ context.Context, e *domain.RotationEvent) {
			m.RotationPhases.WithLabelValues(e.BoardID, string(e.To)).Inc()
		},
		OnAssetLoadFailed: func(_ context.Context, e *domain.AssetEvent) {
			m.AssetLoadFailures.WithLabelValues(e.BoardID).Inc()
		},
	}
}

// Forget drops every series of a board, e.g. after it is deleted from a session manager.
func (m *Metrics) Forget(boardID string) {
	labels := prometheus.Labels{"board_id": boardID}
	m.TokensCreated.DeletePartialMatch(labels)
	m.TokensDiscarded.DeletePartialMatch(labels)
	m.TokensLive.DeletePartialMatch(labels)
	m.MovementsQueued.DeletePartialMatch(labels)
	m.MovementsCompleted.DeletePartialMatch(labels)
	m.RotationPhases.DeletePartialMatch(labels)
	m.AssetLoadFailures.DeletePartialMatch(labels)
}
