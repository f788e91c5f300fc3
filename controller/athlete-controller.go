package controller

import (
	"net/http"

	"wodmatch/app_error"
	"wodmatch/repository"
	"wodmatch/service"

	"github.com/gin-gonic/gin"
)

type AthleteController struct {
	athleteService *service.AthleteService
}

func NewAthleteController(registry *service.Registry) *AthleteController {
	return &AthleteController{athleteService: registry.Athletes}
}

func setupAthleteController(registry *service.Registry) []RouteInfo {
	c := NewAthleteController(registry)
	baseUrl := "/athletes"
	routes := []RouteInfo{
		{Method: "GET", Path: "/me", HandlerFunc: c.getOwnProfileHandler(), Authenticated: true},
		{Method: "PUT", Path: "/me", HandlerFunc: c.saveOwnProfileHandler(), Authenticated: true},
		{Method: "GET", Path: "/:athlete_id", HandlerFunc: c.getAthleteHandler()},
	}
	for i, route := range routes {
		routes[i].Path = baseUrl + route.Path
	}
	return routes
}

// @id GetOwnProfile
// @Description Get the athlete profile of the caller
// @Tags athlete
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AthleteResponse
// @Router /athletes/me [get]
func (c *AthleteController) getOwnProfileHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		athlete, err := c.athleteService.GetAthlete(ctx.Request.Context(), getUserId(ctx))
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, toAthleteResponse(athlete))
	}
}

// @id SaveOwnProfile
// @Description Create or update the athlete profile of the caller
// @Tags athlete
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AthleteUpdate true "Profile"
// @Success 200 {object} AthleteResponse
// @Router /athletes/me [put]
func (c *AthleteController) saveOwnProfileHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var body AthleteUpdate
		if err := ctx.BindJSON(&body); err != nil {
			return
		}
		athlete, err := c.athleteService.SaveProfile(ctx.Request.Context(), body.toModel(getUserId(ctx)))
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, toAthleteResponse(athlete))
	}
}

// @id GetAthlete
// @Description Get an athlete profile
// @Tags athlete
// @Produce json
// @Param athlete_id path string true "Athlete ID"
// @Success 200 {object} AthleteResponse
// @Router /athletes/{athlete_id} [get]
func (c *AthleteController) getAthleteHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		athlete, err := c.athleteService.GetAthlete(ctx.Request.Context(), ctx.Param("athlete_id"))
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, toAthleteResponse(athlete))
	}
}

type AthleteUpdate struct {
	FirstName          string                          `json:"first_name" binding:"required"`
	LastName           string                          `json:"last_name" binding:"required"`
	Email              string                          `json:"email" binding:"required,email"`
	Gender             string                          `json:"gender"`
	City               string                          `json:"city"`
	State              string                          `json:"state"`
	Country            string                          `json:"country"`
	BoxAffiliation     string                          `json:"box_affiliation"`
	SkillLevel         string                          `json:"skill_level"`
	PersonalRecords    map[string]float64              `json:"personal_records"`
	CompetitionHistory []repository.CompetitionPlacing `json:"competition_history"`
}

func (e *AthleteUpdate) toModel(athleteId string) *repository.Athlete {
	return &repository.Athlete{
		Id:                 athleteId,
		FirstName:          e.FirstName,
		LastName:           e.LastName,
		Email:              e.Email,
		Gender:             e.Gender,
		City:               e.City,
		State:              e.State,
		Country:            e.Country,
		BoxAffiliation:     e.BoxAffiliation,
		SkillLevel:         e.SkillLevel,
		PersonalRecords:    e.PersonalRecords,
		CompetitionHistory: e.CompetitionHistory,
	}
}

type AthleteResponse struct {
	Id                 string                          `json:"id" binding:"required"`
	FirstName          string                          `json:"first_name" binding:"required"`
	LastName           string                          `json:"last_name" binding:"required"`
	Gender             string                          `json:"gender" binding:"required"`
	Location           string                          `json:"location" binding:"required"`
	Country            string                          `json:"country" binding:"required"`
	BoxAffiliation     string                          `json:"box_affiliation" binding:"required"`
	SkillLevel         string                          `json:"skill_level" binding:"required"`
	PersonalRecords    map[string]float64              `json:"personal_records" binding:"required"`
	CompetitionHistory []repository.CompetitionPlacing `json:"competition_history" binding:"required"`
}

func toAthleteResponse(athlete *repository.Athlete) *AthleteResponse {
	return &AthleteResponse{
		Id:                 athlete.Id,
		FirstName:          athlete.FirstName,
		LastName:           athlete.LastName,
		Gender:             athlete.Gender,
		Location:           athlete.Location(),
		Country:            athlete.Country,
		BoxAffiliation:     athlete.BoxAffiliation,
		SkillLevel:         athlete.SkillLevel,
		PersonalRecords:    athlete.PersonalRecords,
		CompetitionHistory: athlete.CompetitionHistory,
	}
}
