package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"wodmatch/app_error"
	"wodmatch/client"
	"wodmatch/repository"
	"wodmatch/utils"

	"gorm.io/gorm"
)

type PartnerSuggestion struct {
	Athlete            *repository.Athlete
	CompatibilityScore float64
	Reasoning          string
}

type PartnerService struct {
	competitions  CompetitionStore
	athletes      AthleteStore
	registrations RegistrationStore
	matcher       PartnerMatcher
}

// NewPartnerService accepts a nil matcher when no matching service is configured.
func NewPartnerService(competitions CompetitionStore, athletes AthleteStore, registrations RegistrationStore, matcher PartnerMatcher) *PartnerService {
	return &PartnerService{
		competitions:  competitions,
		athletes:      athletes,
		registrations: registrations,
		matcher:       matcher,
	}
}

func toAthleteProfile(athlete *repository.Athlete) client.AthleteProfile {
	return client.AthleteProfile{
		AthleteId:       athlete.Id,
		SkillLevel:      athlete.SkillLevel,
		PersonalRecords: athlete.PersonalRecords,
		CompetitionHistory: utils.Map(athlete.CompetitionHistory, func(placing repository.CompetitionPlacing) client.PlacingProfile {
			return client.PlacingProfile{CompetitionName: placing.CompetitionName, Placing: placing.Placing}
		}),
		Location:       athlete.Location(),
		BoxAffiliation: athlete.BoxAffiliation,
	}
}

// SuggestPartners asks the matching service to rank the other athletes
// registered in a category as partners for the athlete.
func (s *PartnerService) SuggestPartners(ctx context.Context, competitionId string, categoryId string, athleteId string) ([]*PartnerSuggestion, error) {
	if s.matcher == nil {
		return nil, app_error.WithStatus(errors.New("partner matching is not configured"), http.StatusServiceUnavailable)
	}
	competition, err := getCompetition(ctx, s.competitions, competitionId, "Categories")
	if err != nil {
		return nil, err
	}
	category := competition.GetCategory(categoryId)
	if category == nil {
		return nil, app_error.NotFound("category", categoryId)
	}
	athlete, err := s.athletes.GetAthleteById(ctx, athleteId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, app_error.Validation("create an athlete profile before looking for partners")
	}
	if err != nil {
		return nil, err
	}
	registrations, err := s.registrations.GetRegistrationsForCategory(ctx, competitionId, categoryId)
	if err != nil {
		return nil, err
	}
	candidateIds := utils.Uniques(utils.Map(
		utils.Filter(registrations, func(registration *repository.Registration) bool {
			return registration.AthleteId != athleteId && registration.PaymentStatus != repository.Rejected
		}),
		func(registration *repository.Registration) string { return registration.AthleteId },
	))
	if len(candidateIds) == 0 {
		return nil, app_error.Validation("no other athletes are registered in this category")
	}
	candidates, err := s.athletes.GetAthletesByIds(ctx, candidateIds)
	if err != nil {
		return nil, err
	}
	candidatesById := utils.ToMap(candidates, func(candidate *repository.Athlete) string { return candidate.Id })

	response, err := s.matcher.SuggestPartners(ctx, &client.SuggestPartnersRequest{
		AthleteProfile:    toAthleteProfile(athlete),
		AvailablePartners: utils.Map(candidates, toAthleteProfile),
		CompetitionDetails: client.CompetitionDetails{
			CompetitionName: competition.Name,
			Category:        category.Name,
		},
	})
	if err != nil {
		return nil, app_error.WithStatus(fmt.Errorf("partner matching failed: %w", err), http.StatusBadGateway)
	}

	suggestions := make([]*PartnerSuggestion, 0, len(response.SuggestedPartners))
	for _, suggested := range response.SuggestedPartners {
		candidate, ok := candidatesById[suggested.AthleteId]
		if !ok {
			continue
		}
		suggestions = append(suggestions, &PartnerSuggestion{
			Athlete:            candidate,
			CompatibilityScore: min(max(suggested.CompatibilityScore, 0), 100),
			Reasoning:          suggested.Reasoning,
		})
	}
	slices.SortStableFunc(suggestions, func(a, b *PartnerSuggestion) int {
		switch {
		case a.CompatibilityScore > b.CompatibilityScore:
			return -1
		case a.CompatibilityScore < b.CompatibilityScore:
			return 1
		}
		return 0
	})
	return suggestions, nil
}
