package repository

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScoreRecord is the source of truth for one athlete's result in one workout.
// Points is a denormalized cache written with the record; the leaderboard
// aggregation always recomputes points from the workout ranking instead.
type ScoreRecord struct {
	Id            string    `gorm:"primaryKey"`
	CompetitionId string    `gorm:"not null;index"`
	WorkoutId     string    `gorm:"not null;index"`
	CategoryId    string    `gorm:"not null;index"`
	AthleteId     string    `gorm:"not null;index"`
	RawResult     float64   `gorm:"not null"`
	Points        int       `gorm:"not null"`
	SubmittedAt   time.Time `gorm:"not null"`
}

func ScoreRecordId(workoutId string, athleteId string) string {
	return workoutId + "-" + athleteId
}

type CategoryKey struct {
	CompetitionId string
	CategoryId    string
}

type ScoreRepository struct {
	DB *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{DB: db}
}

func (r *ScoreRepository) GetScoresForCategory(ctx context.Context, competitionId string, categoryId string) ([]*ScoreRecord, error) {
	timer := prometheus.NewTimer(queryDuration.WithLabelValues("GetScoresForCategory"))
	defer timer.ObserveDuration()
	scores := make([]*ScoreRecord, 0)
	result := r.DB.WithContext(ctx).Order("id ASC").
		Find(&scores, &ScoreRecord{CompetitionId: competitionId, CategoryId: categoryId})
	if result.Error != nil {
		return nil, result.Error
	}
	return scores, nil
}

func (r *ScoreRepository) GetScoresForWorkout(ctx context.Context, competitionId string, categoryId string, workoutId string) ([]*ScoreRecord, error) {
	timer := prometheus.NewTimer(queryDuration.WithLabelValues("GetScoresForWorkout"))
	defer timer.ObserveDuration()
	scores := make([]*ScoreRecord, 0)
	result := r.DB.WithContext(ctx).Order("id ASC").
		Find(&scores, &ScoreRecord{CompetitionId: competitionId, CategoryId: categoryId, WorkoutId: workoutId})
	if result.Error != nil {
		return nil, result.Error
	}
	return scores, nil
}

func (r *ScoreRepository) CountScoresForWorkout(ctx context.Context, workoutId string) (int64, error) {
	var count int64
	result := r.DB.WithContext(ctx).Model(&ScoreRecord{}).Where("workout_id = ?", workoutId).Count(&count)
	return count, result.Error
}

// UpsertScores writes records in batches of batchSize, each batch its own
// statement. On failure it returns how many records were written before it.
func (r *ScoreRepository) UpsertScores(ctx context.Context, scores []*ScoreRecord, batchSize int) (int, error) {
	timer := prometheus.NewTimer(queryDuration.WithLabelValues("UpsertScores"))
	defer timer.ObserveDuration()
	if batchSize <= 0 {
		batchSize = len(scores)
	}
	written := 0
	for start := 0; start < len(scores); start += batchSize {
		end := min(start+batchSize, len(scores))
		batch := scores[start:end]
		err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"competition_id", "workout_id", "category_id", "athlete_id", "raw_result", "points", "submitted_at"}),
		}).Create(&batch).Error
		if err != nil {
			return written, err
		}
		written += len(batch)
	}
	return written, nil
}

func (r *ScoreRepository) GetCategoriesWithScores(ctx context.Context) ([]CategoryKey, error) {
	keys := make([]CategoryKey, 0)
	result := r.DB.WithContext(ctx).Model(&ScoreRecord{}).
		Distinct("competition_id", "category_id").
		Order("competition_id, category_id").
		Scan(&keys)
	if result.Error != nil {
		return nil, result.Error
	}
	return keys, nil
}
