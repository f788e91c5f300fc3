package controller

import (
	"net/http"

	"wodmatch/app_error"
	"wodmatch/service"
	"wodmatch/utils"

	"github.com/gin-gonic/gin"
)

type PartnerController struct {
	partnerService *service.PartnerService
}

func NewPartnerController(registry *service.Registry) *PartnerController {
	return &PartnerController{partnerService: registry.Partners}
}

func setupPartnerController(registry *service.Registry) []RouteInfo {
	c := NewPartnerController(registry)
	return []RouteInfo{
		{Method: "GET", Path: "/competitions/:competition_id/categories/:category_id/partners", HandlerFunc: c.suggestPartnersHandler(), Authenticated: true},
	}
}

// @id SuggestPartners
// @Description Suggest partners among the athletes registered in a category, best match first
// @Tags partner
// @Produce json
// @Security BearerAuth
// @Param competition_id path string true "Competition ID"
// @Param category_id path string true "Category ID"
// @Success 200 {array} PartnerSuggestionResponse
// @Router /competitions/{competition_id}/categories/{category_id}/partners [get]
func (c *PartnerController) suggestPartnersHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		suggestions, err := c.partnerService.SuggestPartners(ctx.Request.Context(), ctx.Param("competition_id"), ctx.Param("category_id"), getUserId(ctx))
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, utils.Map(suggestions, toPartnerSuggestionResponse))
	}
}

type PartnerSuggestionResponse struct {
	Athlete            *AthleteResponse `json:"athlete" binding:"required"`
	CompatibilityScore float64          `json:"compatibility_score" binding:"required"`
	Reasoning          string           `json:"reasoning" binding:"required"`
}

func toPartnerSuggestionResponse(suggestion *service.PartnerSuggestion) *PartnerSuggestionResponse {
	return &PartnerSuggestionResponse{
		Athlete:            toAthleteResponse(suggestion.Athlete),
		CompatibilityScore: suggestion.CompatibilityScore,
		Reasoning:          suggestion.Reasoning,
	}
}
