package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"wodmatch/app_error"
	"wodmatch/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type CompetitionService struct {
	competitions CompetitionStore
	scores       ScoreStore
}

func NewCompetitionService(competitions CompetitionStore, scores ScoreStore) *CompetitionService {
	return &CompetitionService{competitions: competitions, scores: scores}
}

func getCompetition(ctx context.Context, store CompetitionStore, competitionId string, preloads ...string) (*repository.Competition, error) {
	competition, err := store.GetCompetitionById(ctx, competitionId, preloads...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, app_error.NotFound("competition", competitionId)
	}
	if err != nil {
		return nil, err
	}
	return competition, nil
}

func (s *CompetitionService) GetCompetition(ctx context.Context, competitionId string) (*repository.Competition, error) {
	competition, err := getCompetition(ctx, s.competitions, competitionId, "Categories", "Workouts")
	if err != nil {
		return nil, err
	}
	slices.SortFunc(competition.Workouts, func(a, b *repository.Workout) int {
		return a.Order - b.Order
	})
	return competition, nil
}

func (s *CompetitionService) GetAllCompetitions(ctx context.Context) ([]*repository.Competition, error) {
	return s.competitions.GetAllCompetitions(ctx)
}

// RequireOwner allows the organizer of the competition and admins.
func (s *CompetitionService) RequireOwner(competition *repository.Competition, userId string, permissions []string) error {
	if competition.OrganizerId == userId || slices.Contains(permissions, string(repository.PermissionAdmin)) {
		return nil
	}
	return app_error.Forbidden("only the organizer can manage this competition")
}

type CompetitionDraft struct {
	Name                  string
	Location              string
	Description           string
	StartDate             time.Time
	EndDate               time.Time
	RegistrationStartDate time.Time
	RegistrationEndDate   time.Time
}

func (s *CompetitionService) CreateCompetition(ctx context.Context, organizerId string, draft *CompetitionDraft) (*repository.Competition, error) {
	if draft.EndDate.Before(draft.StartDate) {
		return nil, app_error.Validation("competition ends before it starts")
	}
	if !draft.RegistrationEndDate.IsZero() && draft.RegistrationEndDate.Before(draft.RegistrationStartDate) {
		return nil, app_error.Validation("registration closes before it opens")
	}
	return s.competitions.SaveCompetition(ctx, &repository.Competition{
		Id:                    uuid.NewString(),
		Name:                  draft.Name,
		OrganizerId:           organizerId,
		Location:              draft.Location,
		Description:           draft.Description,
		StartDate:             draft.StartDate,
		EndDate:               draft.EndDate,
		RegistrationStartDate: draft.RegistrationStartDate,
		RegistrationEndDate:   draft.RegistrationEndDate,
	})
}

func (s *CompetitionService) AddCategory(ctx context.Context, competition *repository.Competition, category *repository.Category) (*repository.Category, error) {
	if category.Spots < 0 || category.Price < 0 {
		return nil, app_error.Validation("spots and price must not be negative")
	}
	switch category.Type {
	case repository.Individual:
		category.RequiresPartner = false
	case repository.Pairs, repository.Team:
		category.RequiresPartner = true
	default:
		return nil, app_error.Validation("unknown category type %q", category.Type)
	}
	category.Id = uuid.NewString()
	category.CompetitionId = competition.Id
	return s.competitions.SaveCategory(ctx, category)
}

type WorkoutDraft struct {
	Name        string
	Description string
	Movements   []string
	ScoringType repository.ScoringType
	Order       int
}

func (s *CompetitionService) AddWorkout(ctx context.Context, competition *repository.Competition, draft *WorkoutDraft) (*repository.Workout, error) {
	if !draft.ScoringType.Valid() {
		return nil, app_error.Validation("unknown scoring type %q", draft.ScoringType)
	}
	order := draft.Order
	if order == 0 {
		order = len(competition.Workouts) + 1
	}
	return s.competitions.SaveWorkout(ctx, &repository.Workout{
		Id:            uuid.NewString(),
		CompetitionId: competition.Id,
		Name:          draft.Name,
		Description:   draft.Description,
		Movements:     pq.StringArray(draft.Movements),
		ScoringType:   draft.ScoringType,
		Order:         order,
	})
}

// UpdateWorkout edits a workout. The scoring type is frozen once the workout
// has scores since stored raw results would change meaning.
func (s *CompetitionService) UpdateWorkout(ctx context.Context, competition *repository.Competition, workoutId string, draft *WorkoutDraft) (*repository.Workout, error) {
	workout := competition.GetWorkout(workoutId)
	if workout == nil {
		return nil, app_error.NotFound("workout", workoutId)
	}
	if !draft.ScoringType.Valid() {
		return nil, app_error.Validation("unknown scoring type %q", draft.ScoringType)
	}
	if draft.ScoringType != workout.ScoringType {
		count, err := s.scores.CountScoresForWorkout(ctx, workoutId)
		if err != nil {
			return nil, fmt.Errorf("failed to count workout scores: %w", err)
		}
		if count > 0 {
			return nil, app_error.Validation("scoring type of workout %s cannot change after %d scores were recorded", workoutId, count)
		}
	}
	workout.Name = draft.Name
	workout.Description = draft.Description
	workout.Movements = pq.StringArray(draft.Movements)
	workout.ScoringType = draft.ScoringType
	if draft.Order != 0 {
		workout.Order = draft.Order
	}
	return s.competitions.SaveWorkout(ctx, workout)
}
