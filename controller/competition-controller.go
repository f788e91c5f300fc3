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

type CompetitionController struct {
	competitionService *service.CompetitionService
}

func NewCompetitionController(registry *service.Registry) *CompetitionController {
	return &CompetitionController{competitionService: registry.Competitions}
}

func setupCompetitionController(registry *service.Registry) []RouteInfo {
	c := NewCompetitionController(registry)
	baseUrl := "/competitions"
	routes := []RouteInfo{
		{Method: "GET", Path: "", HandlerFunc: c.getCompetitionsHandler()},
		{Method: "POST", Path: "", HandlerFunc: c.createCompetitionHandler(), Authenticated: true},
		{Method: "GET", Path: "/:competition_id", HandlerFunc: c.getCompetitionHandler()},
		{Method: "POST", Path: "/:competition_id/categories", HandlerFunc: c.addCategoryHandler(), Authenticated: true},
		{Method: "POST", Path: "/:competition_id/workouts", HandlerFunc: c.addWorkoutHandler(), Authenticated: true},
		{Method: "PUT", Path: "/:competition_id/workouts/:workout_id", HandlerFunc: c.updateWorkoutHandler(), Authenticated: true},
	}
	for i, route := range routes {
		routes[i].Path = baseUrl + route.Path
	}
	return routes
}

// @id GetCompetitions
// @Description Get all competitions ordered by start date
// @Tags competition
// @Produce json
// @Success 200 {array} CompetitionSummary
// @Router /competitions [get]
func (c *CompetitionController) getCompetitionsHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		competitions, err := c.competitionService.GetAllCompetitions(ctx.Request.Context())
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, utils.Map(competitions, toCompetitionSummary))
	}
}

// @id GetCompetition
// @Description Get a competition with its categories and workouts
// @Tags competition
// @Produce json
// @Param competition_id path string true "Competition ID"
// @Success 200 {object} CompetitionResponse
// @Router /competitions/{competition_id} [get]
func (c *CompetitionController) getCompetitionHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		competition, err := c.competitionService.GetCompetition(ctx.Request.Context(), ctx.Param("competition_id"))
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, toCompetitionResponse(competition))
	}
}

// @id CreateCompetition
// @Description Create a competition owned by the caller
// @Tags competition
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CompetitionCreate true "Competition to create"
// @Success 201 {object} CompetitionResponse
// @Router /competitions [post]
func (c *CompetitionController) createCompetitionHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var body CompetitionCreate
		if err := ctx.BindJSON(&body); err != nil {
			return
		}
		competition, err := c.competitionService.CreateCompetition(ctx.Request.Context(), getUserId(ctx), body.toDraft())
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		for _, category := range body.Categories {
			saved, err := c.competitionService.AddCategory(ctx.Request.Context(), competition, category.toModel())
			if err != nil {
				app_error.WithHTTPStatus(ctx, err)
				return
			}
			competition.Categories = append(competition.Categories, saved)
		}
		for _, workout := range body.Workouts {
			saved, err := c.competitionService.AddWorkout(ctx.Request.Context(), competition, workout.toDraft())
			if err != nil {
				app_error.WithHTTPStatus(ctx, err)
				return
			}
			competition.Workouts = append(competition.Workouts, saved)
		}
		ctx.JSON(http.StatusCreated, toCompetitionResponse(competition))
	}
}

// @id AddCategory
// @Description Add a category to a competition
// @Tags competition
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param competition_id path string true "Competition ID"
// @Param body body CategoryCreate true "Category to add"
// @Success 201 {object} CategoryResponse
// @Router /competitions/{competition_id}/categories [post]
func (c *CompetitionController) addCategoryHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		competition := getOwnedCompetition(ctx, c.competitionService)
		if competition == nil {
			return
		}
		var body CategoryCreate
		if err := ctx.BindJSON(&body); err != nil {
			return
		}
		category, err := c.competitionService.AddCategory(ctx.Request.Context(), competition, body.toModel())
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		ctx.JSON(http.StatusCreated, toCategoryResponse(category))
	}
}

// @id AddWorkout
// @Description Add a workout to a competition
// @Tags competition
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param competition_id path string true "Competition ID"
// @Param body body WorkoutCreate true "Workout to add"
// @Success 201 {object} WorkoutResponse
// @Router /competitions/{competition_id}/workouts [post]
func (c *CompetitionController) addWorkoutHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		competition := getOwnedCompetition(ctx, c.competitionService)
		if competition == nil {
			return
		}
		var body WorkoutCreate
		if err := ctx.BindJSON(&body); err != nil {
			return
		}
		workout, err := c.competitionService.AddWorkout(ctx.Request.Context(), competition, body.toDraft())
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		ctx.JSON(http.StatusCreated, toWorkoutResponse(workout))
	}
}

// @id UpdateWorkout
// @Description Update a workout. The scoring type cannot change once scores exist.
// @Tags competition
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param competition_id path string true "Competition ID"
// @Param workout_id path string true "Workout ID"
// @Param body body WorkoutCreate true "Workout"
// @Success 200 {object} WorkoutResponse
// @Router /competitions/{competition_id}/workouts/{workout_id} [put]
func (c *CompetitionController) updateWorkoutHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		competition := getOwnedCompetition(ctx, c.competitionService)
		if competition == nil {
			return
		}
		var body WorkoutCreate
		if err := ctx.BindJSON(&body); err != nil {
			return
		}
		workout, err := c.competitionService.UpdateWorkout(ctx.Request.Context(), competition, ctx.Param("workout_id"), body.toDraft())
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, toWorkoutResponse(workout))
	}
}

type CompetitionCreate struct {
	Name                  string            `json:"name" binding:"required"`
	Location              string            `json:"location" binding:"required"`
	Description           string            `json:"description"`
	StartDate             time.Time         `json:"start_date" binding:"required"`
	EndDate               time.Time         `json:"end_date" binding:"required"`
	RegistrationStartDate time.Time         `json:"registration_start_date"`
	RegistrationEndDate   time.Time         `json:"registration_end_date"`
	Categories            []*CategoryCreate `json:"categories" binding:"dive"`
	Workouts              []*WorkoutCreate  `json:"workouts" binding:"dive"`
}

func (e *CompetitionCreate) toDraft() *service.CompetitionDraft {
	return &service.CompetitionDraft{
		Name:                  e.Name,
		Location:              e.Location,
		Description:           e.Description,
		StartDate:             e.StartDate,
		EndDate:               e.EndDate,
		RegistrationStartDate: e.RegistrationStartDate,
		RegistrationEndDate:   e.RegistrationEndDate,
	}
}

type CategoryCreate struct {
	Name   string                  `json:"name" binding:"required"`
	Type   repository.CategoryType `json:"type" binding:"required"`
	Gender string                  `json:"gender" binding:"required"`
	Price  int                     `json:"price"`
	Spots  int                     `json:"spots"`
}

func (e *CategoryCreate) toModel() *repository.Category {
	return &repository.Category{
		Name:   e.Name,
		Type:   e.Type,
		Gender: e.Gender,
		Price:  e.Price,
		Spots:  e.Spots,
	}
}

type WorkoutCreate struct {
	Name        string                 `json:"name" binding:"required"`
	Description string                 `json:"description"`
	Movements   []string               `json:"movements"`
	ScoringType repository.ScoringType `json:"scoring_type" binding:"required"`
	Order       int                    `json:"order"`
}

func (e *WorkoutCreate) toDraft() *service.WorkoutDraft {
	return &service.WorkoutDraft{
		Name:        e.Name,
		Description: e.Description,
		Movements:   e.Movements,
		ScoringType: e.ScoringType,
		Order:       e.Order,
	}
}

type CompetitionSummary struct {
	Id          string              `json:"id" binding:"required"`
	Name        string              `json:"name" binding:"required"`
	OrganizerId string              `json:"organizer_id" binding:"required"`
	Location    string              `json:"location" binding:"required"`
	StartDate   time.Time           `json:"start_date" binding:"required"`
	EndDate     time.Time           `json:"end_date" binding:"required"`
	Categories  []*CategoryResponse `json:"categories" binding:"required"`
}

type CompetitionResponse struct {
	CompetitionSummary
	Description           string             `json:"description" binding:"required"`
	RegistrationStartDate time.Time          `json:"registration_start_date"`
	RegistrationEndDate   time.Time          `json:"registration_end_date"`
	Workouts              []*WorkoutResponse `json:"workouts" binding:"required"`
}

type CategoryResponse struct {
	Id              string                  `json:"id" binding:"required"`
	Name            string                  `json:"name" binding:"required"`
	Type            repository.CategoryType `json:"type" binding:"required"`
	Gender          string                  `json:"gender" binding:"required"`
	Price           int                     `json:"price" binding:"required"`
	Spots           int                     `json:"spots" binding:"required"`
	RequiresPartner bool                    `json:"requires_partner" binding:"required"`
}

type WorkoutResponse struct {
	Id          string                 `json:"id" binding:"required"`
	Name        string                 `json:"name" binding:"required"`
	Description string                 `json:"description" binding:"required"`
	Movements   []string               `json:"movements" binding:"required"`
	ScoringType repository.ScoringType `json:"scoring_type" binding:"required"`
	Order       int                    `json:"order" binding:"required"`
}

func toCategoryResponse(category *repository.Category) *CategoryResponse {
	return &CategoryResponse{
		Id:              category.Id,
		Name:            category.Name,
		Type:            category.Type,
		Gender:          category.Gender,
		Price:           category.Price,
		Spots:           category.Spots,
		RequiresPartner: category.RequiresPartner,
	}
}

func toWorkoutResponse(workout *repository.Workout) *WorkoutResponse {
	movements := []string(workout.Movements)
	if movements == nil {
		movements = []string{}
	}
	return &WorkoutResponse{
		Id:          workout.Id,
		Name:        workout.Name,
		Description: workout.Description,
		Movements:   movements,
		ScoringType: workout.ScoringType,
		Order:       workout.Order,
	}
}

func toCompetitionSummary(competition *repository.Competition) *CompetitionSummary {
	return &CompetitionSummary{
		Id:          competition.Id,
		Name:        competition.Name,
		OrganizerId: competition.OrganizerId,
		Location:    competition.Location,
		StartDate:   competition.StartDate,
		EndDate:     competition.EndDate,
		Categories:  utils.Map(competition.Categories, toCategoryResponse),
	}
}

func toCompetitionResponse(competition *repository.Competition) *CompetitionResponse {
	return &CompetitionResponse{
		CompetitionSummary:    *toCompetitionSummary(competition),
		Description:           competition.Description,
		RegistrationStartDate: competition.RegistrationStartDate,
		RegistrationEndDate:   competition.RegistrationEndDate,
		Workouts:              utils.Map(competition.Workouts, toWorkoutResponse),
	}
}
