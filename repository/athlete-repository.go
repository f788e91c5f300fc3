package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Permission string

const (
	PermissionAdmin     Permission = "admin"
	PermissionOrganizer Permission = "organizer"
)

type CompetitionPlacing struct {
	CompetitionName string `json:"competitionName"`
	Placing         int    `json:"placing"`
}

type Athlete struct {
	Id                 string               `gorm:"primaryKey"`
	FirstName          string               `gorm:"not null"`
	LastName           string               `gorm:"not null"`
	Email              string               `gorm:"not null;index"`
	Gender             string               `gorm:"null"`
	City               string               `gorm:"null"`
	State              string               `gorm:"null"`
	Country            string               `gorm:"null"`
	BoxAffiliation     string               `gorm:"null"`
	SkillLevel         string               `gorm:"null"`
	PersonalRecords    map[string]float64   `gorm:"serializer:json;type:jsonb;not null;default:'{}'"`
	CompetitionHistory []CompetitionPlacing `gorm:"serializer:json;type:jsonb;not null;default:'[]'"`
	Permissions        pq.StringArray       `gorm:"type:text[];not null;default:'{}'"`
}

func (a *Athlete) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

func (a *Athlete) Location() string {
	return strings.Trim(a.City+", "+a.State, ", ")
}

type AthleteRepository struct {
	DB *gorm.DB
}

func NewAthleteRepository(db *gorm.DB) *AthleteRepository {
	return &AthleteRepository{DB: db}
}

func (r *AthleteRepository) GetAthleteById(ctx context.Context, athleteId string) (*Athlete, error) {
	var athlete Athlete
	result := r.DB.WithContext(ctx).First(&athlete, "id = ?", athleteId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &athlete, nil
}

func (r *AthleteRepository) GetAthletesByIds(ctx context.Context, athleteIds []string) ([]*Athlete, error) {
	athletes := make([]*Athlete, 0)
	if len(athleteIds) == 0 {
		return athletes, nil
	}
	result := r.DB.WithContext(ctx).Find(&athletes, "id IN ?", athleteIds)
	if result.Error != nil {
		return nil, result.Error
	}
	return athletes, nil
}

func (r *AthleteRepository) SaveAthlete(ctx context.Context, athlete *Athlete) (*Athlete, error) {
	result := r.DB.WithContext(ctx).Save(athlete)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to save athlete: %w", result.Error)
	}
	return athlete, nil
}
