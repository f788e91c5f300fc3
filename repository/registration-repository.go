package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PendingPayment  PaymentStatus = "pending_payment"
	PendingApproval PaymentStatus = "pending_approval"
	Approved        PaymentStatus = "approved"
	Rejected        PaymentStatus = "rejected"
)

type Registration struct {
	Id              string        `gorm:"primaryKey"`
	AthleteId       string        `gorm:"not null;index"`
	CompetitionId   string        `gorm:"not null;index"`
	CategoryId      string        `gorm:"not null;index"`
	TeamName        *string       `gorm:"null"`
	TshirtSize      string        `gorm:"not null"`
	PaymentStatus   PaymentStatus `gorm:"not null;index"`
	PaymentProofUrl *string       `gorm:"null"`
	RejectionReason *string       `gorm:"null"`
	CreatedAt       time.Time     `gorm:"not null"`

	Athlete *Athlete `gorm:"foreignKey:AthleteId;references:Id;constraint:OnDelete:CASCADE"`
}

// AthleteName falls back to the athlete id when the profile was not preloaded.
func (r *Registration) AthleteName() string {
	if r.Athlete == nil || r.Athlete.FullName() == "" {
		return r.AthleteId
	}
	return r.Athlete.FullName()
}

type RegistrationRepository struct {
	DB *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{DB: db}
}

func (r *RegistrationRepository) SaveRegistration(ctx context.Context, registration *Registration) (*Registration, error) {
	result := r.DB.WithContext(ctx).Save(registration)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to save registration: %w", result.Error)
	}
	return registration, nil
}

func (r *RegistrationRepository) GetRegistrationById(ctx context.Context, registrationId string) (*Registration, error) {
	var registration Registration
	result := r.DB.WithContext(ctx).Preload("Athlete").First(&registration, "id = ?", registrationId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &registration, nil
}

func (r *RegistrationRepository) GetRegistrationForAthlete(ctx context.Context, competitionId string, athleteId string) (*Registration, error) {
	var registration Registration
	result := r.DB.WithContext(ctx).First(&registration, &Registration{CompetitionId: competitionId, AthleteId: athleteId})
	if result.Error != nil {
		return nil, result.Error
	}
	return &registration, nil
}

func (r *RegistrationRepository) GetRegistrationsForCompetition(ctx context.Context, competitionId string) ([]*Registration, error) {
	registrations := make([]*Registration, 0)
	result := r.DB.WithContext(ctx).Preload("Athlete").Order("created_at ASC").Find(&registrations, &Registration{CompetitionId: competitionId})
	if result.Error != nil {
		return nil, result.Error
	}
	return registrations, nil
}

func (r *RegistrationRepository) GetRegistrationsForCategory(ctx context.Context, competitionId string, categoryId string) ([]*Registration, error) {
	registrations := make([]*Registration, 0)
	result := r.DB.WithContext(ctx).Preload("Athlete").Order("created_at ASC").
		Find(&registrations, &Registration{CompetitionId: competitionId, CategoryId: categoryId})
	if result.Error != nil {
		return nil, result.Error
	}
	return registrations, nil
}

// GetApprovedRoster is the authoritative roster of a category: only approved registrations.
func (r *RegistrationRepository) GetApprovedRoster(ctx context.Context, competitionId string, categoryId string) ([]*Registration, error) {
	timer := prometheus.NewTimer(queryDuration.WithLabelValues("GetApprovedRoster"))
	defer timer.ObserveDuration()
	registrations := make([]*Registration, 0)
	result := r.DB.WithContext(ctx).Preload("Athlete").Order("athlete_id ASC").
		Where("competition_id = ? AND category_id = ? AND payment_status = ?", competitionId, categoryId, Approved).
		Find(&registrations)
	if result.Error != nil {
		return nil, result.Error
	}
	return registrations, nil
}
