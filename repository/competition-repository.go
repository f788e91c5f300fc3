package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type ScoringType string

const (
	ForTime   ScoringType = "FOR_TIME"
	AMRAP     ScoringType = "AMRAP"
	EMOM      ScoringType = "EMOM"
	MaxWeight ScoringType = "MAX_WEIGHT"
)

func (s ScoringType) Valid() bool {
	switch s {
	case ForTime, AMRAP, EMOM, MaxWeight:
		return true
	}
	return false
}

type Competition struct {
	Id                    string    `gorm:"primaryKey"`
	Name                  string    `gorm:"not null"`
	OrganizerId           string    `gorm:"not null;index"`
	Location              string    `gorm:"not null"`
	Description           string    `gorm:"not null"`
	StartDate             time.Time `gorm:"not null"`
	EndDate               time.Time `gorm:"not null"`
	RegistrationStartDate time.Time `gorm:"null"`
	RegistrationEndDate   time.Time `gorm:"null"`

	Categories []*Category `gorm:"foreignKey:CompetitionId;constraint:OnDelete:CASCADE"`
	Workouts   []*Workout  `gorm:"foreignKey:CompetitionId;constraint:OnDelete:CASCADE"`
}

func (c *Competition) GetCategory(categoryId string) *Category {
	for _, category := range c.Categories {
		if category.Id == categoryId {
			return category
		}
	}
	return nil
}

func (c *Competition) GetWorkout(workoutId string) *Workout {
	for _, workout := range c.Workouts {
		if workout.Id == workoutId {
			return workout
		}
	}
	return nil
}

type CategoryType string

const (
	Individual CategoryType = "INDIVIDUAL"
	Pairs      CategoryType = "PAIRS"
	Team       CategoryType = "TEAM"
)

type Category struct {
	Id              string       `gorm:"primaryKey"`
	CompetitionId   string       `gorm:"not null;index"`
	Name            string       `gorm:"not null"`
	Type            CategoryType `gorm:"not null"`
	Gender          string       `gorm:"not null"`
	Price           int          `gorm:"not null"`
	Spots           int          `gorm:"not null"`
	RequiresPartner bool         `gorm:"not null"`
}

type Workout struct {
	Id            string         `gorm:"primaryKey"`
	CompetitionId string         `gorm:"not null;index"`
	Name          string         `gorm:"not null"`
	Description   string         `gorm:"not null"`
	Movements     pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	ScoringType   ScoringType    `gorm:"not null"`
	Order         int            `gorm:"column:workout_order;not null"`
}

type CompetitionRepository struct {
	DB *gorm.DB
}

func NewCompetitionRepository(db *gorm.DB) *CompetitionRepository {
	return &CompetitionRepository{DB: db}
}

func (r *CompetitionRepository) GetCompetitionById(ctx context.Context, competitionId string, preloads ...string) (*Competition, error) {
	timer := prometheus.NewTimer(queryDuration.WithLabelValues("GetCompetitionById"))
	defer timer.ObserveDuration()
	query := r.DB.WithContext(ctx)
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	var competition Competition
	result := query.First(&competition, "id = ?", competitionId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &competition, nil
}

func (r *CompetitionRepository) GetAllCompetitions(ctx context.Context) ([]*Competition, error) {
	competitions := make([]*Competition, 0)
	result := r.DB.WithContext(ctx).Preload("Categories").Order("start_date ASC").Find(&competitions)
	if result.Error != nil {
		return nil, result.Error
	}
	return competitions, nil
}

func (r *CompetitionRepository) SaveCompetition(ctx context.Context, competition *Competition) (*Competition, error) {
	result := r.DB.WithContext(ctx).Save(competition)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to save competition: %w", result.Error)
	}
	return competition, nil
}

func (r *CompetitionRepository) SaveCategory(ctx context.Context, category *Category) (*Category, error) {
	result := r.DB.WithContext(ctx).Save(category)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to save category: %w", result.Error)
	}
	return category, nil
}

func (r *CompetitionRepository) SaveWorkout(ctx context.Context, workout *Workout) (*Workout, error) {
	result := r.DB.WithContext(ctx).Save(workout)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to save workout: %w", result.Error)
	}
	return workout, nil
}
