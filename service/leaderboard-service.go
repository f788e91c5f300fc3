package service

import (
	"context"
	"errors"
	"time"

	"wodmatch/app_error"
	"wodmatch/client"
	"wodmatch/metrics"
	"wodmatch/repository"
	"wodmatch/scoring"

	"github.com/sirupsen/logrus"
)

type LeaderboardChange struct {
	AthleteId   string           `json:"athlete_id"`
	DiffType    scoring.DiffType `json:"diff_type"`
	FieldDiff   []string         `json:"field_diff"`
	Rank        int              `json:"rank"`
	TotalPoints int              `json:"total_points"`
}

type LeaderboardPublishedPayload struct {
	CategoryId string               `json:"category_id"`
	Version    int                  `json:"version"`
	Changes    []*LeaderboardChange `json:"changes"`
}

// LeaderboardPublisher replaces the materialized leaderboard of a category.
type LeaderboardPublisher struct {
	store    LeaderboardStore
	notifier Notifier
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewLeaderboardPublisher(store LeaderboardStore, notifier Notifier, log logrus.FieldLogger) *LeaderboardPublisher {
	return &LeaderboardPublisher{store: store, notifier: notifier, log: log, now: time.Now}
}

// Publish writes entries as version basedOnVersion+1. Readers see either the
// previous set or the new one, never a mixture.
func (p *LeaderboardPublisher) Publish(ctx context.Context, competitionId string, categoryId string, entries []*repository.LeaderboardEntry, basedOnVersion int) (*repository.LeaderboardSnapshot, error) {
	previous, err := p.store.GetEntries(ctx, categoryId)
	if err != nil {
		metrics.LeaderboardPublishTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	snapshot := &repository.LeaderboardSnapshot{
		CategoryId:    categoryId,
		CompetitionId: competitionId,
		Version:       basedOnVersion + 1,
		EntryCount:    len(entries),
		PublishedAt:   p.now(),
	}
	for _, entry := range entries {
		entry.Version = snapshot.Version
	}
	err = p.store.ReplaceEntries(ctx, snapshot, entries, basedOnVersion)
	if errors.Is(err, repository.ErrStaleSnapshot) {
		metrics.LeaderboardPublishTotal.WithLabelValues("conflict").Inc()
		return nil, app_error.ErrConcurrentPublish
	}
	if err != nil {
		metrics.LeaderboardPublishTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.LeaderboardPublishTotal.WithLabelValues("published").Inc()

	diff := scoring.Diff(previous, entries)
	p.log.WithFields(logrus.Fields{
		"competition_id": competitionId,
		"category_id":    categoryId,
		"version":        snapshot.Version,
		"entries":        len(entries),
		"changes":        len(diff),
	}).Info("leaderboard published")
	p.notify(ctx, snapshot, diff)
	return snapshot, nil
}

func (p *LeaderboardPublisher) notify(ctx context.Context, snapshot *repository.LeaderboardSnapshot, diff scoring.EntryDiff) {
	changes := make([]*LeaderboardChange, 0, len(diff))
	for athleteId, difference := range diff {
		changes = append(changes, &LeaderboardChange{
			AthleteId:   athleteId,
			DiffType:    difference.DiffType,
			FieldDiff:   difference.FieldDiff,
			Rank:        difference.Entry.Rank,
			TotalPoints: difference.Entry.TotalPoints,
		})
	}
	err := p.notifier.Notify(ctx, &client.NotificationEvent{
		Type:          client.LeaderboardPublished,
		CompetitionId: snapshot.CompetitionId,
		Key:           snapshot.CategoryId,
		Timestamp:     snapshot.PublishedAt,
		Payload: &LeaderboardPublishedPayload{
			CategoryId: snapshot.CategoryId,
			Version:    snapshot.Version,
			Changes:    changes,
		},
	})
	if err != nil {
		p.log.WithError(err).WithField("category_id", snapshot.CategoryId).Warn("failed to send leaderboard notification")
	}
}

type Leaderboard struct {
	Snapshot *repository.LeaderboardSnapshot
	Entries  []*repository.LeaderboardEntry
}

type LeaderboardService struct {
	competitions CompetitionStore
	store        LeaderboardStore
}

func NewLeaderboardService(competitions CompetitionStore, store LeaderboardStore) *LeaderboardService {
	return &LeaderboardService{competitions: competitions, store: store}
}

func (s *LeaderboardService) GetLeaderboard(ctx context.Context, competitionId string, categoryId string) (*Leaderboard, error) {
	competition, err := getCompetition(ctx, s.competitions, competitionId, "Categories")
	if err != nil {
		return nil, err
	}
	if competition.GetCategory(categoryId) == nil {
		return nil, app_error.NotFound("category", categoryId)
	}
	snapshot, err := s.store.GetSnapshot(ctx, categoryId)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.GetEntries(ctx, categoryId)
	if err != nil {
		return nil, err
	}
	return &Leaderboard{Snapshot: snapshot, Entries: entries}, nil
}
