package scoring

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"wodmatch/repository"
)

type Direction int

const (
	// Ascending ranks lower raw values first.
	Ascending Direction = iota
	// Descending ranks higher raw values first.
	Descending
)

func DirectionFor(scoringType repository.ScoringType) Direction {
	if scoringType == repository.ForTime {
		return Ascending
	}
	return Descending
}

type RawResult struct {
	AthleteId   string
	Value       float64
	SubmittedAt time.Time
}

type Placement struct {
	AthleteId string
	Value     float64
	Rank      int
}

type InvalidInputError struct {
	AthleteId string
	Value     float64
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid raw result %v for athlete %s", e.Value, e.AthleteId)
}

// ValidateRawResult rejects non-finite and negative values. Zero is accepted
// for every scoring type.
func ValidateRawResult(athleteId string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return &InvalidInputError{AthleteId: athleteId, Value: value}
	}
	return nil
}

// RankingPolicy orders the results of one workout. Every athlete gets a
// distinct 1-based rank. Equal raw values are ordered by earlier submission,
// then by athlete id.
type RankingPolicy struct{}

func NewRankingPolicy() RankingPolicy {
	return RankingPolicy{}
}

func (p RankingPolicy) Rank(results []RawResult, direction Direction) ([]Placement, error) {
	for _, result := range results {
		if err := ValidateRawResult(result.AthleteId, result.Value); err != nil {
			return nil, err
		}
	}
	sorted := slices.Clone(results)
	slices.SortFunc(sorted, func(a, b RawResult) int {
		return p.compare(a, b, direction)
	})
	placements := make([]Placement, len(sorted))
	for i, result := range sorted {
		placements[i] = Placement{
			AthleteId: result.AthleteId,
			Value:     result.Value,
			Rank:      i + 1,
		}
	}
	return placements, nil
}

func (p RankingPolicy) compare(a, b RawResult, direction Direction) int {
	c := cmp.Compare(a.Value, b.Value)
	if direction == Descending {
		c = -c
	}
	if c != 0 {
		return c
	}
	if c := a.SubmittedAt.Compare(b.SubmittedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.AthleteId, b.AthleteId)
}
