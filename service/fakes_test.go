package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"wodmatch/client"
	"wodmatch/repository"

	"gorm.io/gorm"
)

type fakeCompetitionStore struct {
	mu           sync.Mutex
	competitions map[string]*repository.Competition
}

func newFakeCompetitionStore(competitions ...*repository.Competition) *fakeCompetitionStore {
	store := &fakeCompetitionStore{competitions: make(map[string]*repository.Competition)}
	for _, competition := range competitions {
		store.competitions[competition.Id] = competition
	}
	return store
}

func (s *fakeCompetitionStore) GetCompetitionById(ctx context.Context, competitionId string, preloads ...string) (*repository.Competition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	competition, ok := s.competitions[competitionId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *competition
	clone.Categories = slices.Clone(competition.Categories)
	clone.Workouts = slices.Clone(competition.Workouts)
	return &clone, nil
}

func (s *fakeCompetitionStore) GetAllCompetitions(ctx context.Context) ([]*repository.Competition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	competitions := make([]*repository.Competition, 0, len(s.competitions))
	for _, competition := range s.competitions {
		competitions = append(competitions, competition)
	}
	return competitions, nil
}

func (s *fakeCompetitionStore) SaveCompetition(ctx context.Context, competition *repository.Competition) (*repository.Competition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.competitions[competition.Id] = competition
	return competition, nil
}

func (s *fakeCompetitionStore) SaveCategory(ctx context.Context, category *repository.Category) (*repository.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	competition := s.competitions[category.CompetitionId]
	competition.Categories = append(competition.Categories, category)
	return category, nil
}

func (s *fakeCompetitionStore) SaveWorkout(ctx context.Context, workout *repository.Workout) (*repository.Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	competition := s.competitions[workout.CompetitionId]
	for i, existing := range competition.Workouts {
		if existing.Id == workout.Id {
			competition.Workouts[i] = workout
			return workout, nil
		}
	}
	competition.Workouts = append(competition.Workouts, workout)
	return workout, nil
}

type fakeRegistrationStore struct {
	mu            sync.Mutex
	registrations []*repository.Registration
}

func (s *fakeRegistrationStore) add(registrations ...*repository.Registration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registrations = append(s.registrations, registrations...)
}

func (s *fakeRegistrationStore) filter(keep func(*repository.Registration) bool) []*repository.Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*repository.Registration, 0)
	for _, registration := range s.registrations {
		if keep(registration) {
			clone := *registration
			result = append(result, &clone)
		}
	}
	return result
}

func (s *fakeRegistrationStore) GetApprovedRoster(ctx context.Context, competitionId string, categoryId string) ([]*repository.Registration, error) {
	roster := s.filter(func(r *repository.Registration) bool {
		return r.CompetitionId == competitionId && r.CategoryId == categoryId && r.PaymentStatus == repository.Approved
	})
	slices.SortFunc(roster, func(a, b *repository.Registration) int { return strings.Compare(a.AthleteId, b.AthleteId) })
	return roster, nil
}

func (s *fakeRegistrationStore) SaveRegistration(ctx context.Context, registration *repository.Registration) (*repository.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *registration
	for i, existing := range s.registrations {
		if existing.Id == registration.Id {
			s.registrations[i] = &clone
			return registration, nil
		}
	}
	s.registrations = append(s.registrations, &clone)
	return registration, nil
}

func (s *fakeRegistrationStore) GetRegistrationById(ctx context.Context, registrationId string) (*repository.Registration, error) {
	found := s.filter(func(r *repository.Registration) bool { return r.Id == registrationId })
	if len(found) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return found[0], nil
}

func (s *fakeRegistrationStore) GetRegistrationForAthlete(ctx context.Context, competitionId string, athleteId string) (*repository.Registration, error) {
	found := s.filter(func(r *repository.Registration) bool {
		return r.CompetitionId == competitionId && r.AthleteId == athleteId
	})
	if len(found) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return found[0], nil
}

func (s *fakeRegistrationStore) GetRegistrationsForCompetition(ctx context.Context, competitionId string) ([]*repository.Registration, error) {
	return s.filter(func(r *repository.Registration) bool { return r.CompetitionId == competitionId }), nil
}

func (s *fakeRegistrationStore) GetRegistrationsForCategory(ctx context.Context, competitionId string, categoryId string) ([]*repository.Registration, error) {
	return s.filter(func(r *repository.Registration) bool {
		return r.CompetitionId == competitionId && r.CategoryId == categoryId
	}), nil
}

type fakeScoreStore struct {
	mu     sync.Mutex
	scores map[string]repository.ScoreRecord
	// failAfter makes UpsertScores fail once this many records were written; negative disables
	failAfter int
	upserts   int
}

var errStoreUnavailable = errors.New("store unavailable")

func newFakeScoreStore() *fakeScoreStore {
	return &fakeScoreStore{scores: make(map[string]repository.ScoreRecord), failAfter: -1}
}

func (s *fakeScoreStore) query(keep func(repository.ScoreRecord) bool) []*repository.ScoreRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*repository.ScoreRecord, 0)
	for _, score := range s.scores {
		if keep(score) {
			clone := score
			result = append(result, &clone)
		}
	}
	slices.SortFunc(result, func(a, b *repository.ScoreRecord) int { return strings.Compare(a.Id, b.Id) })
	return result
}

func (s *fakeScoreStore) GetScoresForCategory(ctx context.Context, competitionId string, categoryId string) ([]*repository.ScoreRecord, error) {
	return s.query(func(score repository.ScoreRecord) bool {
		return score.CompetitionId == competitionId && score.CategoryId == categoryId
	}), nil
}

func (s *fakeScoreStore) GetScoresForWorkout(ctx context.Context, competitionId string, categoryId string, workoutId string) ([]*repository.ScoreRecord, error) {
	return s.query(func(score repository.ScoreRecord) bool {
		return score.CompetitionId == competitionId && score.CategoryId == categoryId && score.WorkoutId == workoutId
	}), nil
}

func (s *fakeScoreStore) CountScoresForWorkout(ctx context.Context, workoutId string) (int64, error) {
	return int64(len(s.query(func(score repository.ScoreRecord) bool { return score.WorkoutId == workoutId }))), nil
}

func (s *fakeScoreStore) UpsertScores(ctx context.Context, scores []*repository.ScoreRecord, batchSize int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	for i, score := range scores {
		if s.failAfter >= 0 && i >= s.failAfter {
			return i, errStoreUnavailable
		}
		s.scores[score.Id] = *score
	}
	return len(scores), nil
}

func (s *fakeScoreStore) GetCategoriesWithScores(ctx context.Context) ([]repository.CategoryKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[repository.CategoryKey]bool)
	keys := make([]repository.CategoryKey, 0)
	for _, score := range s.scores {
		key := repository.CategoryKey{CompetitionId: score.CompetitionId, CategoryId: score.CategoryId}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *fakeScoreStore) all() []*repository.ScoreRecord {
	return s.query(func(repository.ScoreRecord) bool { return true })
}

type fakeLeaderboardStore struct {
	mu        sync.Mutex
	snapshots map[string]repository.LeaderboardSnapshot
	entries   map[string][]repository.LeaderboardEntry
	failWith  error
	// beforeReplace runs inside ReplaceEntries before the version check
	beforeReplace func(s *fakeLeaderboardStore, categoryId string)
	replaces      int
}

func newFakeLeaderboardStore() *fakeLeaderboardStore {
	return &fakeLeaderboardStore{
		snapshots: make(map[string]repository.LeaderboardSnapshot),
		entries:   make(map[string][]repository.LeaderboardEntry),
	}
}

func (s *fakeLeaderboardStore) GetSnapshot(ctx context.Context, categoryId string) (*repository.LeaderboardSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.snapshots[categoryId]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

func (s *fakeLeaderboardStore) GetEntries(ctx context.Context, categoryId string) ([]*repository.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]*repository.LeaderboardEntry, 0, len(s.entries[categoryId]))
	for _, entry := range s.entries[categoryId] {
		clone := entry
		entries = append(entries, &clone)
	}
	return entries, nil
}

func (s *fakeLeaderboardStore) ReplaceEntries(ctx context.Context, snapshot *repository.LeaderboardSnapshot, entries []*repository.LeaderboardEntry, basedOnVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaces++
	if s.failWith != nil {
		return s.failWith
	}
	if s.beforeReplace != nil {
		s.beforeReplace(s, snapshot.CategoryId)
	}
	if s.snapshots[snapshot.CategoryId].Version != basedOnVersion {
		return repository.ErrStaleSnapshot
	}
	stored := make([]repository.LeaderboardEntry, 0, len(entries))
	for _, entry := range entries {
		stored = append(stored, *entry)
	}
	s.entries[snapshot.CategoryId] = stored
	s.snapshots[snapshot.CategoryId] = *snapshot
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []*client.NotificationEvent
	err    error
}

func (n *fakeNotifier) Notify(ctx context.Context, event *client.NotificationEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func (n *fakeNotifier) eventsOfType(eventType client.EventType) []*client.NotificationEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	events := make([]*client.NotificationEvent, 0)
	for _, event := range n.events {
		if event.Type == eventType {
			events = append(events, event)
		}
	}
	return events
}

type fakeAthleteStore struct {
	mu       sync.Mutex
	athletes map[string]*repository.Athlete
}

func newFakeAthleteStore(athletes ...*repository.Athlete) *fakeAthleteStore {
	store := &fakeAthleteStore{athletes: make(map[string]*repository.Athlete)}
	for _, athlete := range athletes {
		store.athletes[athlete.Id] = athlete
	}
	return store
}

func (s *fakeAthleteStore) GetAthleteById(ctx context.Context, athleteId string) (*repository.Athlete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	athlete, ok := s.athletes[athleteId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return athlete, nil
}

func (s *fakeAthleteStore) GetAthletesByIds(ctx context.Context, athleteIds []string) ([]*repository.Athlete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	athletes := make([]*repository.Athlete, 0)
	for _, athleteId := range athleteIds {
		if athlete, ok := s.athletes[athleteId]; ok {
			athletes = append(athletes, athlete)
		}
	}
	return athletes, nil
}

func (s *fakeAthleteStore) SaveAthlete(ctx context.Context, athlete *repository.Athlete) (*repository.Athlete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.athletes[athlete.Id] = athlete
	return athlete, nil
}
