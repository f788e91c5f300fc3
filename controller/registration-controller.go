package controller

import (
	"net/http"
	"time"

	"wodmatch/app_error"
	"wodmatch/repository"
	"wodmatch/service"
	"wodmatch/utils"

	"github.com/gin-gonic/gin"
)

type RegistrationController struct {
	registrationService *service.RegistrationService
	competitionService  *service.CompetitionService
}

func NewRegistrationController(registry *service.Registry) *RegistrationController {
	return &RegistrationController{
		registrationService: registry.Registrations,
		competitionService:  registry.Competitions,
	}
}

func setupRegistrationController(registry *service.Registry) []RouteInfo {
	c := NewRegistrationController(registry)
	baseUrl := "/competitions/:competition_id"
	routes := []RouteInfo{
		{Method: "POST", Path: "/registrations", HandlerFunc: c.registerHandler(), Authenticated: true},
		{Method: "GET", Path: "/registrations", HandlerFunc: c.getRegistrationsHandler(), Authenticated: true},
		{Method: "PUT", Path: "/registrations/:registration_id/payment", HandlerFunc: c.submitPaymentHandler(), Authenticated: true},
		{Method: "PUT", Path: "/registrations/:registration_id/review", HandlerFunc: c.reviewHandler(), Authenticated: true},
		{Method: "GET", Path: "/categories/:category_id/roster", HandlerFunc: c.getRosterHandler()},
	}
	for i, route := range routes {
		routes[i].Path = baseUrl + route.Path
	}
	return routes
}

// @id Register
// @Description Register the caller for a category of a competition
// @Tags registration
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param competition_id path string true "Competition ID"
// @Param body body RegistrationCreate true "Registration"
// @Success 201 {object} RegistrationResponse
// @Router /competitions/{competition_id}/registrations [post]
func (c *RegistrationController) registerHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var body RegistrationCreate
		if err := ctx.BindJSON(&body); err != nil {
			return
		}
		registration, err := c.registrationService.Register(ctx.Request.Context(), ctx.Param("competition_id"), getUserId(ctx), &service.RegistrationDraft{
			CategoryId: body.CategoryId,
			TeamName:   body.TeamName,
			TshirtSize: body.TshirtSize,
		})
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		ctx.JSON(http.StatusCreated, toRegistrationResponse(registration))
	}
}

// @id GetRegistrations
// @Description Get all registrations of a competition
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param competition_id path string true "Competition ID"
// @Success 200 {array} RegistrationResponse
// @Router /competitions/{competition_id}/registrations [get]
func (c *RegistrationController) getRegistrationsHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		competition := getOwnedCompetition(ctx, c.competitionService)
		if competition == nil {
			return
		}
		registrations, err := c.registrationService.GetRegistrations(ctx.Request.Context(), competition.Id)
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, utils.Map(registrations, toRegistrationResponse))
	}
}

// @id SubmitPaymentProof
// @Description Submit the payment proof of the caller's registration
// @Tags registration
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param competition_id path string true "Competition ID"
// @Param registration_id path string true "Registration ID"
// @Param body body PaymentProof true "Payment proof"
// @Success 200 {object} RegistrationResponse
// @Router /competitions/{competition_id}/registrations/{registration_id}/payment [put]
func (c *RegistrationController) submitPaymentHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var body PaymentProof
		if err := ctx.BindJSON(&body); err != nil {
			return
		}
		registration, err := c.registrationService.SubmitPaymentProof(
			ctx.Request.Context(),
			ctx.Param("competition_id"),
			ctx.Param("registration_id"),
			getUserId(ctx),
			body.ProofUrl,
		)
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, toRegistrationResponse(registration))
	}
}

// @id ReviewRegistration
// @Description Approve or reject a registration waiting for approval
// @Tags registration
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param competition_id path string true "Competition ID"
// @Param registration_id path string true "Registration ID"
// @Param body body RegistrationReview true "Review"
// @Success 200 {object} RegistrationResponse
// @Router /competitions/{competition_id}/registrations/{registration_id}/review [put]
func (c *RegistrationController) reviewHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		competition := getOwnedCompetition(ctx, c.competitionService)
		if competition == nil {
			return
		}
		var body RegistrationReview
		if err := ctx.BindJSON(&body); err != nil {
			return
		}
		registration, err := c.registrationService.Review(ctx.Request.Context(), competition.Id, ctx.Param("registration_id"), *body.Approve, body.Reason)
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, toRegistrationResponse(registration))
	}
}

// @id GetRoster
// @Description Get the approved athletes of a category
// @Tags registration
// @Produce json
// @Param competition_id path string true "Competition ID"
// @Param category_id path string true "Category ID"
// @Success 200 {array} RosterEntry
// @Router /competitions/{competition_id}/categories/{category_id}/roster [get]
func (c *RegistrationController) getRosterHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		roster, err := c.registrationService.GetRoster(ctx.Request.Context(), ctx.Param("competition_id"), ctx.Param("category_id"))
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, utils.Map(roster, toRosterEntry))
	}
}

type RegistrationCreate struct {
	CategoryId string  `json:"category_id" binding:"required"`
	TeamName   *string `json:"team_name"`
	TshirtSize string  `json:"tshirt_size" binding:"required"`
}

type PaymentProof struct {
	ProofUrl string `json:"proof_url" binding:"required,url"`
}

type RegistrationReview struct {
	Approve *bool  `json:"approve" binding:"required"`
	Reason  string `json:"reason"`
}

type RegistrationResponse struct {
	Id              string                   `json:"id" binding:"required"`
	AthleteId       string                   `json:"athlete_id" binding:"required"`
	CategoryId      string                   `json:"category_id" binding:"required"`
	TeamName        *string                  `json:"team_name"`
	TshirtSize      string                   `json:"tshirt_size" binding:"required"`
	PaymentStatus   repository.PaymentStatus `json:"payment_status" binding:"required"`
	PaymentProofUrl *string                  `json:"payment_proof_url"`
	RejectionReason *string                  `json:"rejection_reason"`
	CreatedAt       time.Time                `json:"created_at" binding:"required"`
}

type RosterEntry struct {
	AthleteId   string  `json:"athlete_id" binding:"required"`
	AthleteName string  `json:"athlete_name" binding:"required"`
	TeamName    *string `json:"team_name"`
}

func toRegistrationResponse(registration *repository.Registration) *RegistrationResponse {
	return &RegistrationResponse{
		Id:              registration.Id,
		AthleteId:       registration.AthleteId,
		CategoryId:      registration.CategoryId,
		TeamName:        registration.TeamName,
		TshirtSize:      registration.TshirtSize,
		PaymentStatus:   registration.PaymentStatus,
		PaymentProofUrl: registration.PaymentProofUrl,
		RejectionReason: registration.RejectionReason,
		CreatedAt:       registration.CreatedAt,
	}
}

func toRosterEntry(registration *repository.Registration) *RosterEntry {
	return &RosterEntry{
		AthleteId:   registration.AthleteId,
		AthleteName: registration.AthleteName(),
		TeamName:    registration.TeamName,
	}
}
