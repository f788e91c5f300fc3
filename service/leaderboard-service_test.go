package service

import (
	"context"
	"testing"

	"wodmatch/app_error"
	"wodmatch/client"
	"wodmatch/repository"
	"wodmatch/scoring"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReplacesWholeLeaderboard(t *testing.T) {
	log, _ := test.NewNullLogger()
	store := newFakeLeaderboardStore()
	notifier := &fakeNotifier{}
	publisher := NewLeaderboardPublisher(store, notifier, log)
	ctx := context.Background()

	_, err := publisher.Publish(ctx, "comp", "rx", []*repository.LeaderboardEntry{
		{CategoryId: "rx", AthleteId: "X", Rank: 1, TotalPoints: 100},
		{CategoryId: "rx", AthleteId: "Y", Rank: 2, TotalPoints: 95},
	}, 0)
	require.NoError(t, err)

	snapshot, err := publisher.Publish(ctx, "comp", "rx", []*repository.LeaderboardEntry{
		{CategoryId: "rx", AthleteId: "X", Rank: 1, TotalPoints: 100},
		{CategoryId: "rx", AthleteId: "Z", Rank: 2, TotalPoints: 90},
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.Version)
	assert.Equal(t, 2, snapshot.EntryCount)

	entries, err := store.GetEntries(ctx, "rx")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.NotEqual(t, "Y", entry.AthleteId)
		assert.Equal(t, 2, entry.Version)
	}

	events := notifier.eventsOfType(client.LeaderboardPublished)
	require.Len(t, events, 2)
	changes := make(map[string]scoring.DiffType)
	for _, change := range events[1].Payload.(*LeaderboardPublishedPayload).Changes {
		changes[change.AthleteId] = change.DiffType
	}
	assert.Equal(t, map[string]scoring.DiffType{"Y": scoring.Removed, "Z": scoring.Added}, changes)
}

func TestPublishRejectsStaleVersion(t *testing.T) {
	log, _ := test.NewNullLogger()
	store := newFakeLeaderboardStore()
	publisher := NewLeaderboardPublisher(store, client.NoopNotifier{}, log)
	_, err := publisher.Publish(context.Background(), "comp", "rx", nil, 0)
	require.NoError(t, err)

	_, err = publisher.Publish(context.Background(), "comp", "rx", nil, 0)
	assert.ErrorIs(t, err, app_error.ErrConcurrentPublish)
	assert.Equal(t, 409, app_error.HTTPStatus(err))
}

func TestGetLeaderboard(t *testing.T) {
	store := newFakeLeaderboardStore()
	service := NewLeaderboardService(newFakeCompetitionStore(testCompetition()), store)

	leaderboard, err := service.GetLeaderboard(context.Background(), "comp", "rx")
	require.NoError(t, err)
	assert.Nil(t, leaderboard.Snapshot)
	assert.Empty(t, leaderboard.Entries)

	_, err = service.GetLeaderboard(context.Background(), "comp", "masters")
	assert.Equal(t, 404, app_error.HTTPStatus(err))
	_, err = service.GetLeaderboard(context.Background(), "missing", "rx")
	assert.Equal(t, 404, app_error.HTTPStatus(err))
}
