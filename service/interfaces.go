package service

import (
	"context"

	"wodmatch/client"
	"wodmatch/repository"
)

type CompetitionStore interface {
	GetCompetitionById(ctx context.Context, competitionId string, preloads ...string) (*repository.Competition, error)
	GetAllCompetitions(ctx context.Context) ([]*repository.Competition, error)
	SaveCompetition(ctx context.Context, competition *repository.Competition) (*repository.Competition, error)
	SaveCategory(ctx context.Context, category *repository.Category) (*repository.Category, error)
	SaveWorkout(ctx context.Context, workout *repository.Workout) (*repository.Workout, error)
}

type AthleteStore interface {
	GetAthleteById(ctx context.Context, athleteId string) (*repository.Athlete, error)
	GetAthletesByIds(ctx context.Context, athleteIds []string) ([]*repository.Athlete, error)
	SaveAthlete(ctx context.Context, athlete *repository.Athlete) (*repository.Athlete, error)
}

type RegistrationStore interface {
	RosterSource
	SaveRegistration(ctx context.Context, registration *repository.Registration) (*repository.Registration, error)
	GetRegistrationById(ctx context.Context, registrationId string) (*repository.Registration, error)
	GetRegistrationForAthlete(ctx context.Context, competitionId string, athleteId string) (*repository.Registration, error)
	GetRegistrationsForCompetition(ctx context.Context, competitionId string) ([]*repository.Registration, error)
	GetRegistrationsForCategory(ctx context.Context, competitionId string, categoryId string) ([]*repository.Registration, error)
}

// RosterSource is the read-only view of approved registrations of a category.
type RosterSource interface {
	GetApprovedRoster(ctx context.Context, competitionId string, categoryId string) ([]*repository.Registration, error)
}

type ScoreStore interface {
	GetScoresForCategory(ctx context.Context, competitionId string, categoryId string) ([]*repository.ScoreRecord, error)
	GetScoresForWorkout(ctx context.Context, competitionId string, categoryId string, workoutId string) ([]*repository.ScoreRecord, error)
	CountScoresForWorkout(ctx context.Context, workoutId string) (int64, error)
	UpsertScores(ctx context.Context, scores []*repository.ScoreRecord, batchSize int) (int, error)
	GetCategoriesWithScores(ctx context.Context) ([]repository.CategoryKey, error)
}

type LeaderboardStore interface {
	GetSnapshot(ctx context.Context, categoryId string) (*repository.LeaderboardSnapshot, error)
	GetEntries(ctx context.Context, categoryId string) ([]*repository.LeaderboardEntry, error)
	ReplaceEntries(ctx context.Context, snapshot *repository.LeaderboardSnapshot, entries []*repository.LeaderboardEntry, basedOnVersion int) error
}

type Notifier interface {
	Notify(ctx context.Context, event *client.NotificationEvent) error
}

type PartnerMatcher interface {
	SuggestPartners(ctx context.Context, request *client.SuggestPartnersRequest) (*client.SuggestPartnersResponse, error)
}
