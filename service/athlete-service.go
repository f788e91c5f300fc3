package service

import (
	"context"
	"errors"

	"wodmatch/app_error"
	"wodmatch/repository"

	"gorm.io/gorm"
)

type AthleteService struct {
	athletes AthleteStore
}

func NewAthleteService(athletes AthleteStore) *AthleteService {
	return &AthleteService{athletes: athletes}
}

func (s *AthleteService) GetAthlete(ctx context.Context, athleteId string) (*repository.Athlete, error) {
	athlete, err := s.athletes.GetAthleteById(ctx, athleteId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, app_error.NotFound("athlete", athleteId)
	}
	return athlete, err
}

// SaveProfile creates or replaces the profile of the athlete. Permissions are
// kept from the stored profile and never taken from the caller.
func (s *AthleteService) SaveProfile(ctx context.Context, athlete *repository.Athlete) (*repository.Athlete, error) {
	if athlete.FirstName == "" || athlete.LastName == "" {
		return nil, app_error.Validation("first and last name are required")
	}
	for movement, record := range athlete.PersonalRecords {
		if record < 0 {
			return nil, app_error.Validation("personal record for %s must not be negative", movement)
		}
	}
	existing, err := s.athletes.GetAthleteById(ctx, athlete.Id)
	switch {
	case err == nil:
		athlete.Permissions = existing.Permissions
	case errors.Is(err, gorm.ErrRecordNotFound):
		athlete.Permissions = nil
	default:
		return nil, err
	}
	if athlete.PersonalRecords == nil {
		athlete.PersonalRecords = map[string]float64{}
	}
	if athlete.CompetitionHistory == nil {
		athlete.CompetitionHistory = []repository.CompetitionPlacing{}
	}
	return s.athletes.SaveAthlete(ctx, athlete)
}
