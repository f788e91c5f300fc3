package service

import (
	"wodmatch/repository"
	"wodmatch/scoring"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Registry holds the services the controllers and jobs are built from.
type Registry struct {
	Competitions  *CompetitionService
	Registrations *RegistrationService
	Athletes      *AthleteService
	Scoring       *ScoringService
	Leaderboards  *LeaderboardService
	Partners      *PartnerService
}

type RegistryOptions struct {
	Aggregator     *scoring.Aggregator
	Notifier       Notifier
	PartnerMatcher PartnerMatcher
	BatchSize      int
	Log            logrus.FieldLogger
}

func NewRegistry(db *gorm.DB, options RegistryOptions) *Registry {
	competitions := repository.NewCompetitionRepository(db)
	athletes := repository.NewAthleteRepository(db)
	registrations := repository.NewRegistrationRepository(db)
	scores := repository.NewScoreRepository(db)
	leaderboards := repository.NewLeaderboardRepository(db)

	publisher := NewLeaderboardPublisher(leaderboards, options.Notifier, options.Log.WithField("component", "publisher"))
	return &Registry{
		Competitions:  NewCompetitionService(competitions, scores),
		Registrations: NewRegistrationService(competitions, registrations, options.Notifier, options.Log.WithField("component", "registrations")),
		Athletes:      NewAthleteService(athletes),
		Scoring: NewScoringService(
			competitions,
			registrations,
			scores,
			leaderboards,
			options.Aggregator,
			publisher,
			options.BatchSize,
			options.Log.WithField("component", "scoring"),
		),
		Leaderboards: NewLeaderboardService(competitions, leaderboards),
		Partners:     NewPartnerService(competitions, athletes, registrations, options.PartnerMatcher),
	}
}
