package scoring

import (
	"maps"

	"wodmatch/repository"
)

type DiffType string

const (
	Added     DiffType = "Added"
	Removed   DiffType = "Removed"
	Changed   DiffType = "Changed"
	Unchanged DiffType = "Unchanged"
)

type EntryDifference struct {
	Entry     *repository.LeaderboardEntry
	FieldDiff []string
	DiffType  DiffType
}

type EntryDiff map[string]*EntryDifference

func GetEntryDifference(previous *repository.LeaderboardEntry, next *repository.LeaderboardEntry) *EntryDifference {
	if previous == nil {
		return &EntryDifference{Entry: next, DiffType: Added}
	}
	fieldDiff := make([]string, 0)
	if previous.Rank != next.Rank {
		fieldDiff = append(fieldDiff, "Rank")
	}
	if previous.TotalPoints != next.TotalPoints {
		fieldDiff = append(fieldDiff, "TotalPoints")
	}
	if previous.AthleteName != next.AthleteName {
		fieldDiff = append(fieldDiff, "AthleteName")
	}
	if !maps.Equal(previous.PerWorkout, next.PerWorkout) {
		fieldDiff = append(fieldDiff, "PerWorkout")
	}
	if len(fieldDiff) == 0 {
		return &EntryDifference{Entry: next, DiffType: Unchanged}
	}
	return &EntryDifference{Entry: next, FieldDiff: fieldDiff, DiffType: Changed}
}

// Diff keys entries by athlete and returns only the athletes whose row was
// added, removed or changed between two leaderboards of one category.
func Diff(previous []*repository.LeaderboardEntry, next []*repository.LeaderboardEntry) EntryDiff {
	previousMap := make(map[string]*repository.LeaderboardEntry, len(previous))
	for _, entry := range previous {
		previousMap[entry.AthleteId] = entry
	}
	diff := make(EntryDiff)
	seen := make(map[string]bool, len(next))
	for _, entry := range next {
		seen[entry.AthleteId] = true
		difference := GetEntryDifference(previousMap[entry.AthleteId], entry)
		if difference.DiffType != Unchanged {
			diff[entry.AthleteId] = difference
		}
	}
	for athleteId, entry := range previousMap {
		if !seen[athleteId] {
			diff[athleteId] = &EntryDifference{Entry: entry, DiffType: Removed}
		}
	}
	return diff
}
