package controller

import (
	"errors"
	"net/http"
	"time"

	"wodmatch/app_error"
	"wodmatch/repository"
	"wodmatch/service"
	"wodmatch/utils"

	"github.com/gin-contrib/cache"
	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"
)

const leaderboardCacheDuration = 10 * time.Second

type ResultsController struct {
	scoringService     *service.ScoringService
	leaderboardService *service.LeaderboardService
	competitionService *service.CompetitionService
}

func NewResultsController(registry *service.Registry) *ResultsController {
	return &ResultsController{
		scoringService:     registry.Scoring,
		leaderboardService: registry.Leaderboards,
		competitionService: registry.Competitions,
	}
}

func setupResultsController(registry *service.Registry, cacheStore persistence.CacheStore) []RouteInfo {
	c := NewResultsController(registry)
	baseUrl := "/competitions/:competition_id/categories/:category_id"
	routes := []RouteInfo{
		{Method: "PUT", Path: "/workouts/:workout_id/results", HandlerFunc: c.submitResultsHandler(), Authenticated: true},
		{Method: "GET", Path: "/workouts/:workout_id/scores", HandlerFunc: c.getWorkoutScoresHandler()},
		{Method: "GET", Path: "/leaderboard", HandlerFunc: cache.CachePage(cacheStore, leaderboardCacheDuration, c.getLeaderboardHandler())},
		{Method: "POST", Path: "/leaderboard/recompute", HandlerFunc: c.recomputeLeaderboardHandler(), Authenticated: true},
	}
	for i, route := range routes {
		routes[i].Path = baseUrl + route.Path
	}
	return routes
}

// @id SubmitResults
// @Description Submit raw results of a workout for a category and republish the leaderboard.
// @Description Results of athletes without an approved registration are dropped.
// @Description Responds 202 when the scores were saved but the leaderboard could not be refreshed.
// @Tags results
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param competition_id path string true "Competition ID"
// @Param category_id path string true "Category ID"
// @Param workout_id path string true "Workout ID"
// @Param body body ResultsSubmission true "Raw results by athlete id"
// @Success 200 {object} SubmissionResponse
// @Success 202 {object} SubmissionResponse
// @Router /competitions/{competition_id}/categories/{category_id}/workouts/{workout_id}/results [put]
func (c *ResultsController) submitResultsHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		competition := getOwnedCompetition(ctx, c.competitionService)
		if competition == nil {
			return
		}
		var body ResultsSubmission
		if err := ctx.BindJSON(&body); err != nil {
			return
		}
		outcome, err := c.scoringService.SubmitResults(ctx.Request.Context(), &service.ResultSubmission{
			CompetitionId: competition.Id,
			CategoryId:    ctx.Param("category_id"),
			WorkoutId:     ctx.Param("workout_id"),
			Results:       body.Results,
		})
		var publishErr *app_error.PublishError
		if errors.As(err, &publishErr) {
			response := toSubmissionResponse(outcome)
			response.Error = publishErr.Error()
			ctx.JSON(http.StatusAccepted, response)
			return
		}
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, toSubmissionResponse(outcome))
	}
}

// @id GetWorkoutScores
// @Description Get the stored scores of a workout in a category
// @Tags results
// @Produce json
// @Param competition_id path string true "Competition ID"
// @Param category_id path string true "Category ID"
// @Param workout_id path string true "Workout ID"
// @Success 200 {array} ScoreResponse
// @Router /competitions/{competition_id}/categories/{category_id}/workouts/{workout_id}/scores [get]
func (c *ResultsController) getWorkoutScoresHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		scores, err := c.scoringService.GetWorkoutScores(ctx.Request.Context(), ctx.Param("competition_id"), ctx.Param("category_id"), ctx.Param("workout_id"))
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, utils.Map(scores, toScoreResponse))
	}
}

// @id GetLeaderboard
// @Description Get the published leaderboard of a category ordered by rank
// @Tags leaderboard
// @Produce json
// @Param competition_id path string true "Competition ID"
// @Param category_id path string true "Category ID"
// @Success 200 {object} LeaderboardResponse
// @Router /competitions/{competition_id}/categories/{category_id}/leaderboard [get]
func (c *ResultsController) getLeaderboardHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		leaderboard, err := c.leaderboardService.GetLeaderboard(ctx.Request.Context(), ctx.Param("competition_id"), ctx.Param("category_id"))
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, toLeaderboardResponse(leaderboard))
	}
}

// @id RecomputeLeaderboard
// @Description Aggregate all stored scores of a category and publish the leaderboard
// @Tags leaderboard
// @Produce json
// @Security BearerAuth
// @Param competition_id path string true "Competition ID"
// @Param category_id path string true "Category ID"
// @Success 200 {object} LeaderboardResponse
// @Router /competitions/{competition_id}/categories/{category_id}/leaderboard/recompute [post]
func (c *ResultsController) recomputeLeaderboardHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		competition := getOwnedCompetition(ctx, c.competitionService)
		if competition == nil {
			return
		}
		leaderboard, err := c.scoringService.RecomputeLeaderboard(ctx.Request.Context(), competition.Id, ctx.Param("category_id"))
		if err != nil {
			app_error.WithHTTPStatus(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, toLeaderboardResponse(leaderboard))
	}
}

type ResultsSubmission struct {
	Results map[string]float64 `json:"results" binding:"required"`
}

type SubmissionResponse struct {
	Saved              []*ScoreResponse `json:"saved" binding:"required"`
	Dropped            []string         `json:"dropped" binding:"required"`
	ScoresSaved        bool             `json:"scores_saved" binding:"required"`
	LeaderboardVersion *int             `json:"leaderboard_version"`
	Error              string           `json:"error,omitempty"`
}

type ScoreResponse struct {
	AthleteId   string    `json:"athlete_id" binding:"required"`
	WorkoutId   string    `json:"workout_id" binding:"required"`
	RawResult   float64   `json:"raw_result" binding:"required"`
	Points      int       `json:"points" binding:"required"`
	SubmittedAt time.Time `json:"submitted_at" binding:"required"`
}

type LeaderboardResponse struct {
	Version     int                         `json:"version" binding:"required"`
	PublishedAt *time.Time                  `json:"published_at"`
	Entries     []*LeaderboardEntryResponse `json:"entries" binding:"required"`
}

type LeaderboardEntryResponse struct {
	AthleteId   string                              `json:"athlete_id" binding:"required"`
	AthleteName string                              `json:"athlete_name" binding:"required"`
	Rank        int                                 `json:"rank" binding:"required"`
	TotalPoints int                                 `json:"total_points" binding:"required"`
	PerWorkout  map[string]repository.WorkoutResult `json:"per_workout" binding:"required"`
}

func toScoreResponse(score *repository.ScoreRecord) *ScoreResponse {
	return &ScoreResponse{
		AthleteId:   score.AthleteId,
		WorkoutId:   score.WorkoutId,
		RawResult:   score.RawResult,
		Points:      score.Points,
		SubmittedAt: score.SubmittedAt,
	}
}

func toSubmissionResponse(outcome *service.SubmissionOutcome) *SubmissionResponse {
	response := &SubmissionResponse{
		Saved:       utils.Map(outcome.Saved, toScoreResponse),
		Dropped:     outcome.Dropped,
		ScoresSaved: true,
	}
	if outcome.Leaderboard != nil && outcome.Leaderboard.Snapshot != nil {
		response.LeaderboardVersion = &outcome.Leaderboard.Snapshot.Version
	}
	return response
}

func toLeaderboardEntryResponse(entry *repository.LeaderboardEntry) *LeaderboardEntryResponse {
	perWorkout := map[string]repository.WorkoutResult(entry.PerWorkout)
	if perWorkout == nil {
		perWorkout = map[string]repository.WorkoutResult{}
	}
	return &LeaderboardEntryResponse{
		AthleteId:   entry.AthleteId,
		AthleteName: entry.AthleteName,
		Rank:        entry.Rank,
		TotalPoints: entry.TotalPoints,
		PerWorkout:  perWorkout,
	}
}

func toLeaderboardResponse(leaderboard *service.Leaderboard) *LeaderboardResponse {
	response := &LeaderboardResponse{Entries: utils.Map(leaderboard.Entries, toLeaderboardEntryResponse)}
	if leaderboard.Snapshot != nil {
		response.Version = leaderboard.Snapshot.Version
		response.PublishedAt = &leaderboard.Snapshot.PublishedAt
	}
	return response
}
