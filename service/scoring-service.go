package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"wodmatch/app_error"
	"wodmatch/metrics"
	"wodmatch/repository"
	"wodmatch/scoring"

	"github.com/sirupsen/logrus"
)

const maxPublishAttempts = 3

type ResultSubmission struct {
	CompetitionId string
	CategoryId    string
	WorkoutId     string
	// Results maps athlete id to the normalized raw result: seconds for
	// FOR_TIME workouts, reps or weight otherwise.
	Results map[string]float64
}

type SubmissionOutcome struct {
	Saved       []*repository.ScoreRecord
	Dropped     []string
	Leaderboard *Leaderboard
}

// ScoringService accepts organizer results for one workout and category,
// persists them and republishes the category leaderboard.
//
// Submissions for one category are serialized inside this process. Across
// processes the leaderboard snapshot version rejects a publish that is based
// on an outdated snapshot, and the aggregation is retried.
type ScoringService struct {
	competitions CompetitionStore
	roster       RosterSource
	scores       ScoreStore
	leaderboards LeaderboardStore
	aggregator   *scoring.Aggregator
	publisher    *LeaderboardPublisher
	locks        *keyedMutex
	batchSize    int
	log          logrus.FieldLogger
	now          func() time.Time
}

func NewScoringService(
	competitions CompetitionStore,
	roster RosterSource,
	scores ScoreStore,
	leaderboards LeaderboardStore,
	aggregator *scoring.Aggregator,
	publisher *LeaderboardPublisher,
	batchSize int,
	log logrus.FieldLogger,
) *ScoringService {
	return &ScoringService{
		competitions: competitions,
		roster:       roster,
		scores:       scores,
		leaderboards: leaderboards,
		aggregator:   aggregator,
		publisher:    publisher,
		locks:        newKeyedMutex(),
		batchSize:    batchSize,
		log:          log,
		now:          time.Now,
	}
}

func (s *ScoringService) SubmitResults(ctx context.Context, submission *ResultSubmission) (*SubmissionOutcome, error) {
	outcome, err := s.submitResults(ctx, submission)
	metrics.ScoresSubmittedTotal.WithLabelValues(outcomeLabel(err)).Inc()
	return outcome, err
}

func (s *ScoringService) submitResults(ctx context.Context, submission *ResultSubmission) (*SubmissionOutcome, error) {
	log := s.log.WithFields(logrus.Fields{
		"competition_id": submission.CompetitionId,
		"category_id":    submission.CategoryId,
		"workout_id":     submission.WorkoutId,
	})
	if len(submission.Results) == 0 {
		return nil, app_error.Validation("no results submitted")
	}
	competition, err := getCompetition(ctx, s.competitions, submission.CompetitionId, "Categories", "Workouts")
	if err != nil {
		return nil, err
	}
	workout := competition.GetWorkout(submission.WorkoutId)
	if workout == nil {
		return nil, app_error.Validation("workout %s does not belong to competition %s", submission.WorkoutId, competition.Id)
	}
	if competition.GetCategory(submission.CategoryId) == nil {
		return nil, app_error.Validation("category %s does not belong to competition %s", submission.CategoryId, competition.Id)
	}

	unlock := s.locks.Lock(submission.CategoryId)
	defer unlock()

	roster, err := s.roster.GetApprovedRoster(ctx, competition.Id, submission.CategoryId)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	eligible := make(map[string]bool, len(roster))
	for _, registration := range roster {
		eligible[registration.AthleteId] = true
	}
	results := make(map[string]float64)
	dropped := make([]string, 0)
	for athleteId, rawResult := range submission.Results {
		if !eligible[athleteId] {
			dropped = append(dropped, athleteId)
			continue
		}
		if err := scoring.ValidateRawResult(athleteId, rawResult); err != nil {
			return nil, app_error.Validation("%s", err.Error())
		}
		results[athleteId] = rawResult
	}
	slices.Sort(dropped)
	if len(dropped) > 0 {
		metrics.DroppedAthletesTotal.Add(float64(len(dropped)))
		log.WithField("athletes", dropped).Warn("dropped results of athletes without an approved registration")
	}
	if len(results) == 0 {
		return nil, app_error.Validation("none of the submitted athletes has an approved registration in this category")
	}

	writes, err := s.rankWorkout(ctx, competition.Id, submission.CategoryId, workout, results, eligible)
	if err != nil {
		return nil, err
	}
	written, err := s.scores.UpsertScores(ctx, writes, s.batchSize)
	metrics.ScoreRecordsWrittenTotal.Add(float64(written))
	if err != nil {
		if written > 0 {
			log.WithError(err).WithField("written", written).Error("score write failed partway")
			return nil, &app_error.PartialWriteError{Written: written, Total: len(writes), Err: err}
		}
		return nil, fmt.Errorf("failed to save scores, nothing was saved: %w", err)
	}
	log.WithFields(logrus.Fields{"saved": len(results), "written": written}).Info("scores saved")

	outcome := &SubmissionOutcome{Dropped: dropped}
	for _, record := range writes {
		if _, ok := results[record.AthleteId]; ok {
			outcome.Saved = append(outcome.Saved, record)
		}
	}
	leaderboard, _, err := s.recompute(ctx, competition, submission.CategoryId, false)
	if err != nil {
		log.WithError(err).Error("scores saved but leaderboard refresh failed")
		return outcome, &app_error.PublishError{Err: err}
	}
	outcome.Leaderboard = leaderboard
	return outcome, nil
}

// rankWorkout re-ranks the workout over every stored record of the category
// merged with the new results. It returns the submitted records followed by
// stored records whose cached points changed.
func (s *ScoringService) rankWorkout(
	ctx context.Context,
	competitionId string,
	categoryId string,
	workout *repository.Workout,
	results map[string]float64,
	eligible map[string]bool,
) ([]*repository.ScoreRecord, error) {
	existing, err := s.scores.GetScoresForWorkout(ctx, competitionId, categoryId, workout.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to load workout scores: %w", err)
	}
	merged := make(map[string]*repository.ScoreRecord, len(existing)+len(results))
	for _, score := range existing {
		if eligible[score.AthleteId] && scoring.ValidateRawResult(score.AthleteId, score.RawResult) == nil {
			merged[score.AthleteId] = score
		}
	}
	now := s.now()
	for athleteId, rawResult := range results {
		record := &repository.ScoreRecord{
			Id:            repository.ScoreRecordId(workout.Id, athleteId),
			CompetitionId: competitionId,
			WorkoutId:     workout.Id,
			CategoryId:    categoryId,
			AthleteId:     athleteId,
			RawResult:     rawResult,
			SubmittedAt:   now,
		}
		// an unchanged result keeps its timestamp so resubmitting is a no-op
		if previous, ok := merged[athleteId]; ok && previous.RawResult == rawResult {
			record.SubmittedAt = previous.SubmittedAt
		}
		merged[athleteId] = record
	}
	records := make([]*repository.ScoreRecord, 0, len(merged))
	for _, record := range merged {
		records = append(records, record)
	}
	workoutScores, err := s.aggregator.ScoreWorkout(workout, records)
	if err != nil {
		return nil, app_error.Validation("%s", err.Error())
	}
	writes := make([]*repository.ScoreRecord, 0, len(results))
	refreshed := make([]*repository.ScoreRecord, 0)
	for _, workoutScore := range workoutScores {
		record := merged[workoutScore.AthleteId]
		if _, ok := results[workoutScore.AthleteId]; ok {
			record.Points = workoutScore.Points
			writes = append(writes, record)
			continue
		}
		if record.Points != workoutScore.Points {
			updated := *record
			updated.Points = workoutScore.Points
			refreshed = append(refreshed, &updated)
		}
	}
	return append(writes, refreshed...), nil
}

// RecomputeLeaderboard aggregates and publishes a category without new scores.
func (s *ScoringService) RecomputeLeaderboard(ctx context.Context, competitionId string, categoryId string) (*Leaderboard, error) {
	competition, err := getCompetition(ctx, s.competitions, competitionId, "Categories", "Workouts")
	if err != nil {
		return nil, err
	}
	if competition.GetCategory(categoryId) == nil {
		return nil, app_error.NotFound("category", categoryId)
	}
	unlock := s.locks.Lock(categoryId)
	defer unlock()
	leaderboard, _, err := s.recompute(ctx, competition, categoryId, false)
	return leaderboard, err
}

// Reconcile publishes the category only when the aggregation differs from
// the published leaderboard. It reports whether a publish happened.
func (s *ScoringService) Reconcile(ctx context.Context, key repository.CategoryKey) (bool, error) {
	competition, err := getCompetition(ctx, s.competitions, key.CompetitionId, "Categories", "Workouts")
	if err != nil {
		return false, err
	}
	unlock := s.locks.Lock(key.CategoryId)
	defer unlock()
	_, published, err := s.recompute(ctx, competition, key.CategoryId, true)
	return published, err
}

func (s *ScoringService) recompute(ctx context.Context, competition *repository.Competition, categoryId string, onlyIfChanged bool) (*Leaderboard, bool, error) {
	log := s.log.WithFields(logrus.Fields{
		"competition_id": competition.Id,
		"category_id":    categoryId,
	})
	for attempt := 1; ; attempt++ {
		snapshot, err := s.leaderboards.GetSnapshot(ctx, categoryId)
		if err != nil {
			return nil, false, err
		}
		basedOnVersion := 0
		if snapshot != nil {
			basedOnVersion = snapshot.Version
		}
		scores, err := s.scores.GetScoresForCategory(ctx, competition.Id, categoryId)
		if err != nil {
			return nil, false, err
		}
		roster, err := s.roster.GetApprovedRoster(ctx, competition.Id, categoryId)
		if err != nil {
			return nil, false, err
		}
		aggregation := s.aggregator.Aggregate(scoring.AggregationInput{
			CompetitionId: competition.Id,
			CategoryId:    categoryId,
			Scores:        scores,
			Roster:        roster,
			Workouts:      competition.Workouts,
		})
		if onlyIfChanged {
			current, err := s.leaderboards.GetEntries(ctx, categoryId)
			if err != nil {
				return nil, false, err
			}
			if len(scoring.Diff(current, aggregation.Entries)) == 0 {
				return &Leaderboard{Snapshot: snapshot, Entries: current}, false, nil
			}
		}
		published, err := s.publisher.Publish(ctx, competition.Id, categoryId, aggregation.Entries, basedOnVersion)
		if errors.Is(err, app_error.ErrConcurrentPublish) && attempt < maxPublishAttempts {
			log.WithField("attempt", attempt).Warn("leaderboard changed while aggregating, retrying")
			continue
		}
		if err != nil {
			return nil, false, err
		}
		return &Leaderboard{Snapshot: published, Entries: aggregation.Entries}, true, nil
	}
}

func (s *ScoringService) GetWorkoutScores(ctx context.Context, competitionId string, categoryId string, workoutId string) ([]*repository.ScoreRecord, error) {
	competition, err := getCompetition(ctx, s.competitions, competitionId, "Categories", "Workouts")
	if err != nil {
		return nil, err
	}
	if competition.GetCategory(categoryId) == nil {
		return nil, app_error.NotFound("category", categoryId)
	}
	if competition.GetWorkout(workoutId) == nil {
		return nil, app_error.NotFound("workout", workoutId)
	}
	return s.scores.GetScoresForWorkout(ctx, competitionId, categoryId, workoutId)
}

func (s *ScoringService) GetCategoriesWithScores(ctx context.Context) ([]repository.CategoryKey, error) {
	return s.scores.GetCategoriesWithScores(ctx)
}

func outcomeLabel(err error) string {
	var validation *app_error.ValidationError
	var partial *app_error.PartialWriteError
	var publish *app_error.PublishError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &validation):
		return "invalid"
	case errors.As(err, &partial):
		return "partial_write"
	case errors.As(err, &publish):
		return "publish_failed"
	default:
		return "error"
	}
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}
