package scoring

import (
	"math"
	"testing"
	"time"

	"wodmatch/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ranksByAthlete(placements []Placement) map[string]int {
	ranks := make(map[string]int, len(placements))
	for _, placement := range placements {
		ranks[placement.AthleteId] = placement.Rank
	}
	return ranks
}

func TestRankForTimeLowerIsBetter(t *testing.T) {
	placements, err := NewRankingPolicy().Rank([]RawResult{
		{AthleteId: "X", Value: 600},
		{AthleteId: "Y", Value: 500},
		{AthleteId: "Z", Value: 700},
	}, DirectionFor(repository.ForTime))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Y": 1, "X": 2, "Z": 3}, ranksByAthlete(placements))
}

func TestRankAmrapHigherIsBetter(t *testing.T) {
	for _, scoringType := range []repository.ScoringType{repository.AMRAP, repository.EMOM, repository.MaxWeight} {
		placements, err := NewRankingPolicy().Rank([]RawResult{
			{AthleteId: "X", Value: 150},
			{AthleteId: "Y", Value: 140},
		}, DirectionFor(scoringType))
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"X": 1, "Y": 2}, ranksByAthlete(placements), scoringType)
	}
}

func TestRankTieBreaksBySubmissionThenAthleteId(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	placements, err := NewRankingPolicy().Rank([]RawResult{
		{AthleteId: "c", Value: 100, SubmittedAt: now},
		{AthleteId: "b", Value: 100, SubmittedAt: now},
		{AthleteId: "a", Value: 100, SubmittedAt: now.Add(time.Minute)},
	}, Descending)
	require.NoError(t, err)
	assert.Equal(t, []Placement{
		{AthleteId: "b", Value: 100, Rank: 1},
		{AthleteId: "c", Value: 100, Rank: 2},
		{AthleteId: "a", Value: 100, Rank: 3},
	}, placements)
}

func TestRankDoesNotReorderInput(t *testing.T) {
	input := []RawResult{
		{AthleteId: "X", Value: 3},
		{AthleteId: "Y", Value: 1},
		{AthleteId: "Z", Value: 2},
	}
	_, err := NewRankingPolicy().Rank(input, Ascending)
	require.NoError(t, err)
	assert.Equal(t, "X", input[0].AthleteId)
	assert.Equal(t, "Y", input[1].AthleteId)
	assert.Equal(t, "Z", input[2].AthleteId)
}

func TestRankIsMonotonic(t *testing.T) {
	results := []RawResult{
		{AthleteId: "a", Value: 42.5},
		{AthleteId: "b", Value: 0},
		{AthleteId: "c", Value: 17},
		{AthleteId: "d", Value: 99},
		{AthleteId: "e", Value: 17.25},
	}
	for _, direction := range []Direction{Ascending, Descending} {
		placements, err := NewRankingPolicy().Rank(results, direction)
		require.NoError(t, err)
		for _, p := range placements {
			for _, q := range placements {
				better := p.Value < q.Value
				if direction == Descending {
					better = p.Value > q.Value
				}
				if better {
					assert.Less(t, p.Rank, q.Rank, "%s should rank before %s", p.AthleteId, q.AthleteId)
				}
			}
		}
	}
}

func TestRankAcceptsZeroAndRejectsInvalidValues(t *testing.T) {
	_, err := NewRankingPolicy().Rank([]RawResult{{AthleteId: "X", Value: 0}}, Ascending)
	assert.NoError(t, err)

	for _, value := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := NewRankingPolicy().Rank([]RawResult{
			{AthleteId: "X", Value: 10},
			{AthleteId: "Y", Value: value},
		}, Ascending)
		var invalid *InvalidInputError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "Y", invalid.AthleteId)
	}
}

func TestRankEmptyInput(t *testing.T) {
	placements, err := NewRankingPolicy().Rank(nil, Ascending)
	assert.NoError(t, err)
	assert.Empty(t, placements)
}
