package scoring

import (
	"cmp"
	"slices"

	"wodmatch/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var aggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "wodmatch_aggregation_duration_seconds",
	Help: "Duration of a leaderboard aggregation run",
	Buckets: []float64{
		0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1,
	},
})

var aggregationSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "wodmatch_aggregation_skipped_total",
	Help: "Score records left out of an aggregation run",
}, []string{"reason"})

type SkipReason string

const (
	SkipUnknownWorkout SkipReason = "unknown_workout"
	SkipWrongCategory  SkipReason = "wrong_category"
	SkipInvalidResult  SkipReason = "invalid_result"
	SkipNotOnRoster    SkipReason = "not_on_roster"
)

type SkippedScore struct {
	Score  *repository.ScoreRecord
	Reason SkipReason
}

type AggregationInput struct {
	CompetitionId string
	CategoryId    string
	Scores        []*repository.ScoreRecord
	Roster        []*repository.Registration
	Workouts      []*repository.Workout
}

type Aggregation struct {
	Entries []*repository.LeaderboardEntry
	Skipped []SkippedScore
}

type WorkoutScore struct {
	AthleteId string
	RawResult float64
	Rank      int
	Points    int
}

// Aggregator turns the score records of a category into a full leaderboard.
// It does no I/O; callers fetch scores, roster and workouts beforehand.
type Aggregator struct {
	ranking RankingPolicy
	points  *PointsTable
	log     logrus.FieldLogger
}

func NewAggregator(ranking RankingPolicy, points *PointsTable, log logrus.FieldLogger) *Aggregator {
	return &Aggregator{ranking: ranking, points: points, log: log}
}

func (a *Aggregator) Points() *PointsTable {
	return a.points
}

// ScoreWorkout ranks every given record of one workout and looks up its points.
func (a *Aggregator) ScoreWorkout(workout *repository.Workout, scores []*repository.ScoreRecord) ([]WorkoutScore, error) {
	results := make([]RawResult, 0, len(scores))
	for _, score := range scores {
		results = append(results, RawResult{
			AthleteId:   score.AthleteId,
			Value:       score.RawResult,
			SubmittedAt: score.SubmittedAt,
		})
	}
	placements, err := a.ranking.Rank(results, DirectionFor(workout.ScoringType))
	if err != nil {
		return nil, err
	}
	workoutScores := make([]WorkoutScore, len(placements))
	for i, placement := range placements {
		workoutScores[i] = WorkoutScore{
			AthleteId: placement.AthleteId,
			RawResult: placement.Value,
			Rank:      placement.Rank,
			Points:    a.points.PointsForRank(placement.Rank),
		}
	}
	return workoutScores, nil
}

func (a *Aggregator) Aggregate(input AggregationInput) *Aggregation {
	timer := prometheus.NewTimer(aggregationDuration)
	defer timer.ObserveDuration()

	workouts := make(map[string]*repository.Workout)
	for _, workout := range input.Workouts {
		workouts[workout.Id] = workout
	}
	entries := make(map[string]*repository.LeaderboardEntry)
	for _, registration := range input.Roster {
		if _, ok := entries[registration.AthleteId]; ok {
			continue
		}
		entries[registration.AthleteId] = &repository.LeaderboardEntry{
			CategoryId:    input.CategoryId,
			CompetitionId: input.CompetitionId,
			AthleteId:     registration.AthleteId,
			AthleteName:   registration.AthleteName(),
			PerWorkout:    make(repository.WorkoutResults),
		}
	}

	aggregation := &Aggregation{}
	skip := func(score *repository.ScoreRecord, reason SkipReason) {
		aggregation.Skipped = append(aggregation.Skipped, SkippedScore{Score: score, Reason: reason})
		aggregationSkipped.WithLabelValues(string(reason)).Inc()
		a.log.WithFields(logrus.Fields{
			"category_id": input.CategoryId,
			"score_id":    score.Id,
			"workout_id":  score.WorkoutId,
			"athlete_id":  score.AthleteId,
			"reason":      reason,
		}).Warn("score record excluded from aggregation")
	}

	partitions := make(map[string]map[string]*repository.ScoreRecord)
	for _, score := range input.Scores {
		switch {
		case score.CategoryId != input.CategoryId:
			skip(score, SkipWrongCategory)
			continue
		case workouts[score.WorkoutId] == nil:
			skip(score, SkipUnknownWorkout)
			continue
		case entries[score.AthleteId] == nil:
			skip(score, SkipNotOnRoster)
			continue
		case ValidateRawResult(score.AthleteId, score.RawResult) != nil:
			skip(score, SkipInvalidResult)
			continue
		}
		partition, ok := partitions[score.WorkoutId]
		if !ok {
			partition = make(map[string]*repository.ScoreRecord)
			partitions[score.WorkoutId] = partition
		}
		// ids are workout+athlete, so a second record for the pair can only be a stale copy
		if existing, ok := partition[score.AthleteId]; ok && existing.SubmittedAt.After(score.SubmittedAt) {
			continue
		}
		partition[score.AthleteId] = score
	}

	for workoutId, partition := range partitions {
		scores := make([]*repository.ScoreRecord, 0, len(partition))
		for _, score := range partition {
			scores = append(scores, score)
		}
		workoutScores, err := a.ScoreWorkout(workouts[workoutId], scores)
		if err != nil {
			// unreachable after ValidateRawResult
			a.log.WithError(err).WithField("workout_id", workoutId).Error("failed to rank workout")
			continue
		}
		for _, workoutScore := range workoutScores {
			entry := entries[workoutScore.AthleteId]
			entry.TotalPoints += workoutScore.Points
			entry.PerWorkout[workoutId] = repository.WorkoutResult{
				RawResult:   workoutScore.RawResult,
				Points:      workoutScore.Points,
				WorkoutRank: workoutScore.Rank,
			}
		}
	}

	ranked := make([]*repository.LeaderboardEntry, 0, len(entries))
	for _, entry := range entries {
		ranked = append(ranked, entry)
	}
	slices.SortFunc(ranked, compareEntries)
	for i, entry := range ranked {
		entry.Rank = i + 1
	}
	aggregation.Entries = ranked
	return aggregation
}

// compareEntries orders by total points, puts athletes without any score
// after those with scores, and falls back to the athlete id.
func compareEntries(a, b *repository.LeaderboardEntry) int {
	if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
		return c
	}
	if c := cmp.Compare(min(len(b.PerWorkout), 1), min(len(a.PerWorkout), 1)); c != 0 {
		return c
	}
	return cmp.Compare(a.AthleteId, b.AthleteId)
}
