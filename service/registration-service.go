package service

import (
	"context"
	"errors"
	"time"

	"wodmatch/app_error"
	"wodmatch/client"
	"wodmatch/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type RegistrationReviewedPayload struct {
	RegistrationId  string                   `json:"registration_id"`
	AthleteId       string                   `json:"athlete_id"`
	CategoryId      string                   `json:"category_id"`
	PaymentStatus   repository.PaymentStatus `json:"payment_status"`
	RejectionReason *string                  `json:"rejection_reason,omitempty"`
}

type RegistrationService struct {
	competitions  CompetitionStore
	registrations RegistrationStore
	notifier      Notifier
	log           logrus.FieldLogger
	now           func() time.Time
}

func NewRegistrationService(competitions CompetitionStore, registrations RegistrationStore, notifier Notifier, log logrus.FieldLogger) *RegistrationService {
	return &RegistrationService{
		competitions:  competitions,
		registrations: registrations,
		notifier:      notifier,
		log:           log,
		now:           time.Now,
	}
}

type RegistrationDraft struct {
	CategoryId string
	TeamName   *string
	TshirtSize string
}

func (s *RegistrationService) Register(ctx context.Context, competitionId string, athleteId string, draft *RegistrationDraft) (*repository.Registration, error) {
	competition, err := getCompetition(ctx, s.competitions, competitionId, "Categories")
	if err != nil {
		return nil, err
	}
	category := competition.GetCategory(draft.CategoryId)
	if category == nil {
		return nil, app_error.Validation("category %s does not belong to competition %s", draft.CategoryId, competitionId)
	}
	now := s.now()
	if !competition.RegistrationStartDate.IsZero() && now.Before(competition.RegistrationStartDate) {
		return nil, app_error.Validation("registration has not opened yet")
	}
	if !competition.RegistrationEndDate.IsZero() && now.After(competition.RegistrationEndDate) {
		return nil, app_error.Validation("registration is closed")
	}
	if category.RequiresPartner && (draft.TeamName == nil || *draft.TeamName == "") {
		return nil, app_error.Validation("category %s requires a team name", category.Name)
	}
	existing, err := s.registrations.GetRegistrationForAthlete(ctx, competitionId, athleteId)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, app_error.Validation("athlete is already registered for this competition")
	}
	if category.Spots > 0 {
		registrations, err := s.registrations.GetRegistrationsForCategory(ctx, competitionId, category.Id)
		if err != nil {
			return nil, err
		}
		taken := 0
		for _, registration := range registrations {
			if registration.PaymentStatus != repository.Rejected {
				taken++
			}
		}
		if taken >= category.Spots {
			return nil, app_error.Validation("category %s is full", category.Name)
		}
	}
	return s.registrations.SaveRegistration(ctx, &repository.Registration{
		Id:            uuid.NewString(),
		AthleteId:     athleteId,
		CompetitionId: competitionId,
		CategoryId:    category.Id,
		TeamName:      draft.TeamName,
		TshirtSize:    draft.TshirtSize,
		PaymentStatus: repository.PendingPayment,
		CreatedAt:     now,
	})
}

func (s *RegistrationService) getRegistration(ctx context.Context, competitionId string, registrationId string) (*repository.Registration, error) {
	registration, err := s.registrations.GetRegistrationById(ctx, registrationId)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && registration.CompetitionId != competitionId) {
		return nil, app_error.NotFound("registration", registrationId)
	}
	if err != nil {
		return nil, err
	}
	return registration, nil
}

func (s *RegistrationService) SubmitPaymentProof(ctx context.Context, competitionId string, registrationId string, athleteId string, proofUrl string) (*repository.Registration, error) {
	registration, err := s.getRegistration(ctx, competitionId, registrationId)
	if err != nil {
		return nil, err
	}
	if registration.AthleteId != athleteId {
		return nil, app_error.Forbidden("registration belongs to another athlete")
	}
	if registration.PaymentStatus != repository.PendingPayment && registration.PaymentStatus != repository.Rejected {
		return nil, app_error.Validation("payment proof cannot be submitted while registration is %s", registration.PaymentStatus)
	}
	registration.PaymentProofUrl = &proofUrl
	registration.PaymentStatus = repository.PendingApproval
	registration.RejectionReason = nil
	return s.registrations.SaveRegistration(ctx, registration)
}

// Review approves or rejects a registration waiting for approval. Approved
// registrations form the roster that results are accepted for.
func (s *RegistrationService) Review(ctx context.Context, competitionId string, registrationId string, approve bool, reason string) (*repository.Registration, error) {
	registration, err := s.getRegistration(ctx, competitionId, registrationId)
	if err != nil {
		return nil, err
	}
	if registration.PaymentStatus != repository.PendingApproval {
		return nil, app_error.Validation("only registrations pending approval can be reviewed, this one is %s", registration.PaymentStatus)
	}
	if approve {
		registration.PaymentStatus = repository.Approved
		registration.RejectionReason = nil
	} else {
		if reason == "" {
			return nil, app_error.Validation("a rejection needs a reason")
		}
		registration.PaymentStatus = repository.Rejected
		registration.RejectionReason = &reason
	}
	registration, err = s.registrations.SaveRegistration(ctx, registration)
	if err != nil {
		return nil, err
	}
	err = s.notifier.Notify(ctx, &client.NotificationEvent{
		Type:          client.RegistrationReviewed,
		CompetitionId: competitionId,
		Key:           registration.AthleteId,
		Timestamp:     s.now(),
		Payload: &RegistrationReviewedPayload{
			RegistrationId:  registration.Id,
			AthleteId:       registration.AthleteId,
			CategoryId:      registration.CategoryId,
			PaymentStatus:   registration.PaymentStatus,
			RejectionReason: registration.RejectionReason,
		},
	})
	if err != nil {
		s.log.WithError(err).WithField("registration_id", registration.Id).Warn("failed to send review notification")
	}
	return registration, nil
}

func (s *RegistrationService) GetRegistrations(ctx context.Context, competitionId string) ([]*repository.Registration, error) {
	if _, err := getCompetition(ctx, s.competitions, competitionId); err != nil {
		return nil, err
	}
	return s.registrations.GetRegistrationsForCompetition(ctx, competitionId)
}

func (s *RegistrationService) GetRoster(ctx context.Context, competitionId string, categoryId string) ([]*repository.Registration, error) {
	competition, err := getCompetition(ctx, s.competitions, competitionId, "Categories")
	if err != nil {
		return nil, err
	}
	if competition.GetCategory(categoryId) == nil {
		return nil, app_error.NotFound("category", categoryId)
	}
	return s.registrations.GetApprovedRoster(ctx, competitionId, categoryId)
}
