package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ScoresSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "wodmatch_scores_submitted_total",
	Help: "Result submissions by outcome",
}, []string{"outcome"})

var ScoreRecordsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "wodmatch_score_records_written_total",
	Help: "Number of score records upserted",
})

var DroppedAthletesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "wodmatch_dropped_athletes_total",
	Help: "Submitted results dropped because the athlete has no approved registration",
})

var LeaderboardPublishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "wodmatch_leaderboard_publish_total",
	Help: "Leaderboard publish attempts by outcome",
}, []string{"outcome"})

var ReconcileRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "wodmatch_reconcile_runs_total",
	Help: "Leaderboard reconciliation runs by outcome",
}, []string{"outcome"})

var PartnerRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "wodmatch_partner_request_duration_seconds",
	Help: "Duration of requests to the partner matching service",
})
