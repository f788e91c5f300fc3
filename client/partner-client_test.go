package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestPartners(t *testing.T) {
	var received SuggestPartnersRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"suggestedPartners":[{"athleteId":"b","compatibilityScore":87.5,"reasoning":"similar engine"}]}`))
	}))
	defer server.Close()
	log, _ := test.NewNullLogger()

	response, err := NewPartnerClient(server.URL, log).SuggestPartners(context.Background(), &SuggestPartnersRequest{
		AthleteProfile:     AthleteProfile{AthleteId: "a", SkillLevel: "rx", PersonalRecords: map[string]float64{"snatch": 80}},
		AvailablePartners:  []AthleteProfile{{AthleteId: "b"}},
		CompetitionDetails: CompetitionDetails{CompetitionName: "Throwdown", Category: "Pairs RX"},
	})
	require.NoError(t, err)
	require.Len(t, response.SuggestedPartners, 1)
	assert.Equal(t, SuggestedPartner{AthleteId: "b", CompatibilityScore: 87.5, Reasoning: "similar engine"}, response.SuggestedPartners[0])
	assert.Equal(t, "a", received.AthleteProfile.AthleteId)
	assert.Equal(t, 80.0, received.AthleteProfile.PersonalRecords["snatch"])
	assert.Equal(t, "Pairs RX", received.CompetitionDetails.Category)
}

func TestSuggestPartnersErrors(t *testing.T) {
	log, _ := test.NewNullLogger()
	responses := map[string]func(w http.ResponseWriter){
		"client error": func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("missing profile"))
		},
		"invalid body": func(w http.ResponseWriter) {
			_, _ = w.Write([]byte("not json"))
		},
	}
	for name, respond := range responses {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				respond(w)
			}))
			defer server.Close()
			_, err := NewPartnerClient(server.URL, log).SuggestPartners(context.Background(), &SuggestPartnersRequest{})
			assert.Error(t, err)
		})
	}
}
