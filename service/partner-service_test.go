package service

import (
	"context"
	"errors"
	"testing"

	"wodmatch/app_error"
	"wodmatch/client"
	"wodmatch/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMatcher struct {
	request  *client.SuggestPartnersRequest
	response *client.SuggestPartnersResponse
	err      error
}

func (m *fakeMatcher) SuggestPartners(ctx context.Context, request *client.SuggestPartnersRequest) (*client.SuggestPartnersResponse, error) {
	m.request = request
	return m.response, m.err
}

func newPartnerFixture(matcher PartnerMatcher) (*PartnerService, *fakeRegistrationStore) {
	athletes := newFakeAthleteStore(
		&repository.Athlete{Id: "X", FirstName: "Xena", City: "Austin", State: "TX", SkillLevel: "rx", PersonalRecords: map[string]float64{"snatch": 80}},
		&repository.Athlete{Id: "Y", FirstName: "Yuri"},
		&repository.Athlete{Id: "Z", FirstName: "Zoe"},
		&repository.Athlete{Id: "R", FirstName: "Rita"},
	)
	registrations := &fakeRegistrationStore{}
	registrations.add(
		registration("X", "rx", repository.PendingPayment),
		registration("Y", "rx", repository.Approved),
		registration("Z", "rx", repository.PendingApproval),
		registration("R", "rx", repository.Rejected),
	)
	return NewPartnerService(newFakeCompetitionStore(testCompetition()), athletes, registrations, matcher), registrations
}

func TestSuggestPartnersFiltersClampsAndSorts(t *testing.T) {
	matcher := &fakeMatcher{response: &client.SuggestPartnersResponse{SuggestedPartners: []client.SuggestedPartner{
		{AthleteId: "Y", CompatibilityScore: 71, Reasoning: "similar level"},
		{AthleteId: "ghost", CompatibilityScore: 99},
		{AthleteId: "Z", CompatibilityScore: 140, Reasoning: "same box"},
		{AthleteId: "X", CompatibilityScore: 100},
	}}}
	service, _ := newPartnerFixture(matcher)

	suggestions, err := service.SuggestPartners(context.Background(), "comp", "rx", "X")
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "Z", suggestions[0].Athlete.Id)
	assert.Equal(t, 100.0, suggestions[0].CompatibilityScore)
	assert.Equal(t, "Y", suggestions[1].Athlete.Id)

	assert.Equal(t, "X", matcher.request.AthleteProfile.AthleteId)
	assert.Equal(t, "Austin, TX", matcher.request.AthleteProfile.Location)
	assert.Equal(t, "RX", matcher.request.CompetitionDetails.Category)
	candidateIds := make([]string, 0)
	for _, profile := range matcher.request.AvailablePartners {
		candidateIds = append(candidateIds, profile.AthleteId)
	}
	assert.ElementsMatch(t, []string{"Y", "Z"}, candidateIds)
}

func TestSuggestPartnersErrors(t *testing.T) {
	service, _ := newPartnerFixture(nil)
	_, err := service.SuggestPartners(context.Background(), "comp", "rx", "X")
	assert.Equal(t, 503, app_error.HTTPStatus(err))

	service, _ = newPartnerFixture(&fakeMatcher{err: errors.New("timeout")})
	_, err = service.SuggestPartners(context.Background(), "comp", "rx", "X")
	assert.Equal(t, 502, app_error.HTTPStatus(err))

	_, err = service.SuggestPartners(context.Background(), "comp", "scaled", "X")
	assert.Equal(t, 400, app_error.HTTPStatus(err), "no candidates")

	_, err = service.SuggestPartners(context.Background(), "comp", "rx", "unknown")
	assert.Equal(t, 400, app_error.HTTPStatus(err), "no profile")
}

func TestSaveProfileKeepsPermissions(t *testing.T) {
	athletes := newFakeAthleteStore(&repository.Athlete{Id: "X", FirstName: "X", LastName: "Y", Permissions: []string{"admin"}})
	service := NewAthleteService(athletes)

	saved, err := service.SaveProfile(context.Background(), &repository.Athlete{Id: "X", FirstName: "Xena", LastName: "Warrior", Permissions: []string{"organizer"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, []string(saved.Permissions))
	assert.NotNil(t, saved.PersonalRecords)

	created, err := service.SaveProfile(context.Background(), &repository.Athlete{Id: "N", FirstName: "New", LastName: "Athlete", Permissions: []string{"admin"}})
	require.NoError(t, err)
	assert.Empty(t, created.Permissions)

	_, err = service.SaveProfile(context.Background(), &repository.Athlete{Id: "N"})
	assert.Equal(t, 400, app_error.HTTPStatus(err))

	_, err = service.GetAthlete(context.Background(), "missing")
	assert.Equal(t, 404, app_error.HTTPStatus(err))
}
