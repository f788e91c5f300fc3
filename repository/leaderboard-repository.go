package repository

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

var ErrStaleSnapshot = errors.New("leaderboard snapshot version changed")

type WorkoutResult struct {
	RawResult   float64 `json:"raw_result"`
	Points      int     `json:"points"`
	WorkoutRank int     `json:"workout_rank"`
}

type WorkoutResults map[string]WorkoutResult

func (w *WorkoutResults) Scan(value interface{}) error {
	if value == nil {
		*w = WorkoutResults{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return errors.New("unsupported data type for WorkoutResults")
	}
	results := make(WorkoutResults)
	if err := json.Unmarshal(data, &results); err != nil {
		return err
	}
	*w = results
	return nil
}

func (w WorkoutResults) Value() (driver.Value, error) {
	if w == nil {
		return "{}", nil
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// LeaderboardEntry is a materialized row of the category leaderboard. The
// whole set for a category is replaced on every publish.
type LeaderboardEntry struct {
	CategoryId    string         `gorm:"primaryKey"`
	AthleteId     string         `gorm:"primaryKey"`
	CompetitionId string         `gorm:"not null;index"`
	AthleteName   string         `gorm:"not null"`
	TotalPoints   int            `gorm:"not null"`
	Rank          int            `gorm:"not null"`
	PerWorkout    WorkoutResults `gorm:"type:jsonb;not null"`
	Version       int            `gorm:"not null"`
}

type LeaderboardSnapshot struct {
	CategoryId    string    `gorm:"primaryKey"`
	CompetitionId string    `gorm:"not null;index"`
	Version       int       `gorm:"not null"`
	EntryCount    int       `gorm:"not null"`
	PublishedAt   time.Time `gorm:"not null"`
}

type LeaderboardRepository struct {
	DB *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) *LeaderboardRepository {
	return &LeaderboardRepository{DB: db}
}

func (r *LeaderboardRepository) GetSnapshot(ctx context.Context, categoryId string) (*LeaderboardSnapshot, error) {
	snapshots := make([]*LeaderboardSnapshot, 0, 1)
	result := r.DB.WithContext(ctx).Limit(1).Find(&snapshots, &LeaderboardSnapshot{CategoryId: categoryId})
	if result.Error != nil {
		return nil, result.Error
	}
	if len(snapshots) == 0 {
		return nil, nil
	}
	return snapshots[0], nil
}

func (r *LeaderboardRepository) GetEntries(ctx context.Context, categoryId string) ([]*LeaderboardEntry, error) {
	timer := prometheus.NewTimer(queryDuration.WithLabelValues("GetLeaderboardEntries"))
	defer timer.ObserveDuration()
	entries := make([]*LeaderboardEntry, 0)
	result := r.DB.WithContext(ctx).Order("rank ASC").Find(&entries, &LeaderboardEntry{CategoryId: categoryId})
	if result.Error != nil {
		return nil, result.Error
	}
	return entries, nil
}

// ReplaceEntries swaps the full entry set of a category in one transaction.
// The category is serialized with an advisory lock and the write is rejected
// with ErrStaleSnapshot when the stored version is not basedOnVersion.
func (r *LeaderboardRepository) ReplaceEntries(ctx context.Context, snapshot *LeaderboardSnapshot, entries []*LeaderboardEntry, basedOnVersion int) error {
	timer := prometheus.NewTimer(queryDuration.WithLabelValues("ReplaceLeaderboardEntries"))
	defer timer.ObserveDuration()
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "leaderboard:"+snapshot.CategoryId).Error; err != nil {
			return fmt.Errorf("acquire leaderboard lock: %w", err)
		}
		current := make([]*LeaderboardSnapshot, 0, 1)
		if err := tx.Limit(1).Find(&current, &LeaderboardSnapshot{CategoryId: snapshot.CategoryId}).Error; err != nil {
			return err
		}
		currentVersion := 0
		if len(current) > 0 {
			currentVersion = current[0].Version
		}
		if currentVersion != basedOnVersion {
			return ErrStaleSnapshot
		}
		if err := tx.Where("category_id = ?", snapshot.CategoryId).Delete(&LeaderboardEntry{}).Error; err != nil {
			return err
		}
		if len(entries) > 0 {
			if err := tx.CreateInBatches(entries, 500).Error; err != nil {
				return err
			}
		}
		return tx.Save(snapshot).Error
	})
}
