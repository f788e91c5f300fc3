package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wodmatch/metrics"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type AthleteProfile struct {
	AthleteId          string             `json:"athleteId"`
	SkillLevel         string             `json:"skillLevel"`
	PersonalRecords    map[string]float64 `json:"personalRecords"`
	CompetitionHistory []PlacingProfile   `json:"competitionHistory"`
	Location           string             `json:"location"`
	BoxAffiliation     string             `json:"boxAffiliation"`
}

type PlacingProfile struct {
	CompetitionName string `json:"competitionName"`
	Placing         int    `json:"placing"`
}

type CompetitionDetails struct {
	CompetitionName string `json:"competitionName"`
	Category        string `json:"category"`
}

type SuggestPartnersRequest struct {
	AthleteProfile     AthleteProfile     `json:"athleteProfile"`
	AvailablePartners  []AthleteProfile   `json:"availablePartners"`
	CompetitionDetails CompetitionDetails `json:"competitionDetails"`
}

type SuggestedPartner struct {
	AthleteId          string  `json:"athleteId"`
	CompatibilityScore float64 `json:"compatibilityScore"`
	Reasoning          string  `json:"reasoning"`
}

type SuggestPartnersResponse struct {
	SuggestedPartners []SuggestedPartner `json:"suggestedPartners"`
}

// PartnerClient calls the external partner matching service.
type PartnerClient struct {
	client  *retryablehttp.Client
	baseURL string
}

func NewPartnerClient(baseURL string, log logrus.FieldLogger) *PartnerClient {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = 60 * time.Second
	client.Logger = log
	return &PartnerClient{client: client, baseURL: baseURL}
}

func (c *PartnerClient) SuggestPartners(ctx context.Context, request *SuggestPartnersRequest) (*SuggestPartnersResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	timer := prometheus.NewTimer(metrics.PartnerRequestDuration)
	resp, err := c.client.Do(req)
	timer.ObserveDuration()
	if err != nil {
		return nil, fmt.Errorf("partner matching request failed: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("partner matching returned status %d: %s", resp.StatusCode, string(respBody))
	}
	response := &SuggestPartnersResponse{}
	if err := json.Unmarshal(respBody, response); err != nil {
		return nil, fmt.Errorf("invalid partner matching response: %w", err)
	}
	return response, nil
}
