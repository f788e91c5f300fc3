package controller

import (
	"net/http"
	"slices"
	"strings"

	"wodmatch/app_error"
	"wodmatch/auth"
	"wodmatch/repository"
	"wodmatch/service"

	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"
)

type RouteInfo struct {
	Method        string
	Path          string
	HandlerFunc   gin.HandlerFunc
	Authenticated bool
	RoleRequired  []string
}

const (
	userIdKey      = "user_id"
	permissionsKey = "permissions"
)

func SetRoutes(r *gin.Engine, registry *service.Registry, cacheStore persistence.CacheStore) {
	routes := make([]RouteInfo, 0)
	routes = append(routes, setupCompetitionController(registry)...)
	routes = append(routes, setupRegistrationController(registry)...)
	routes = append(routes, setupResultsController(registry, cacheStore)...)
	routes = append(routes, setupAthleteController(registry)...)
	routes = append(routes, setupPartnerController(registry)...)
	group := r.Group("/api")
	for _, route := range routes {
		handlerfuncs := make([]gin.HandlerFunc, 0)
		if route.Authenticated {
			handlerfuncs = append(handlerfuncs, AuthMiddleware(route.RoleRequired))
		}
		handlerfuncs = append(handlerfuncs, route.HandlerFunc)
		group.Handle(route.Method, route.Path, handlerfuncs...)
	}
}

func tokenFromRequest(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	cookie, err := c.Cookie("auth")
	if err != nil {
		return ""
	}
	return cookie
}

func AuthMiddleware(roles []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
			return
		}
		claims, err := auth.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
			return
		}
		c.Set(userIdKey, claims.UserId)
		c.Set(permissionsKey, claims.Permissions)
		if len(roles) == 0 {
			c.Next()
			return
		}
		for _, requiredRole := range roles {
			if slices.Contains(claims.Permissions, requiredRole) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	}
}

func getUserId(c *gin.Context) string {
	return c.GetString(userIdKey)
}

func getPermissions(c *gin.Context) []string {
	return c.GetStringSlice(permissionsKey)
}

// getOwnedCompetition loads the competition of the route and checks the caller
// may manage it. It writes the error response and returns nil otherwise.
func getOwnedCompetition(c *gin.Context, competitions *service.CompetitionService) *repository.Competition {
	competition, err := competitions.GetCompetition(c.Request.Context(), c.Param("competition_id"))
	if err != nil {
		app_error.WithHTTPStatus(c, err)
		return nil
	}
	if err := competitions.RequireOwner(competition, getUserId(c), getPermissions(c)); err != nil {
		app_error.WithHTTPStatus(c, err)
		return nil
	}
	return competition
}
