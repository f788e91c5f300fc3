package main

import (
	"regexp"
	"strings"
	"time"

	"wodmatch/client"
	"wodmatch/config"
	"wodmatch/controller"
	"wodmatch/cron"
	"wodmatch/docs"
	"wodmatch/logger"
	"wodmatch/repository"
	"wodmatch/scoring"
	"wodmatch/service"

	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	ginprometheus "github.com/zsais/go-gin-prometheus"
)

// @title           wodmatch API
// @version         1.0
// @description     Competition management, scoring and leaderboards for functional fitness competitions.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	t := time.Now()

	cfg := config.Env()
	log := logger.New(cfg.LogLevel, config.IsProduction())

	db, err := config.InitDB(
		config.DSN(cfg.DatabaseHost, cfg.DatabasePort, cfg.PostgresUser, cfg.PostgresPassword, cfg.DatabaseName),
		repository.Models()...,
	)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}

	points := scoring.ReferencePointsTable()
	if cfg.PointsTable != "" {
		points, err = scoring.ParsePointsTable(cfg.PointsTable)
		if err != nil {
			log.WithError(err).Fatal("Invalid POINTS_TABLE")
		}
	}
	aggregator := scoring.NewAggregator(scoring.NewRankingPolicy(), points, log.WithField("component", "aggregator"))

	notifier := newNotifier(cfg, log)
	var partnerMatcher service.PartnerMatcher
	if cfg.PartnerMatchURL != "" {
		partnerMatcher = client.NewPartnerClient(cfg.PartnerMatchURL, log.WithField("component", "partner-client"))
	}

	registry := service.NewRegistry(db, service.RegistryOptions{
		Aggregator:     aggregator,
		Notifier:       notifier,
		PartnerMatcher: partnerMatcher,
		BatchSize:      cfg.ScoreWriteBatchSize,
		Log:            log,
	})

	reconcileJob := cron.NewReconcileJob(registry.Scoring, log.WithField("component", "reconcile"))
	if err := reconcileJob.Start(cfg.ReconcileSchedule); err != nil {
		log.WithError(err).Fatal("Failed to schedule leaderboard reconciliation")
	}
	defer reconcileJob.Stop()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		log.WithError(err).Fatal("Failed to set trusted proxies")
	}
	addLogger(r)
	addMetrics(r)
	addDocs(r)
	setCors(r)
	cacheStore := persistence.NewInMemoryStore(60 * time.Second)
	controller.SetRoutes(r, registry, cacheStore)
	log.WithField("startup", time.Since(t).String()).Info("Server started")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Error("Failed to start server")
	}
}

// newNotifier falls back to a no-op notifier when no broker is configured.
func newNotifier(cfg *config.Config, log *logrus.Logger) service.Notifier {
	if cfg.KafkaBroker == "" {
		log.Info("KAFKA_BROKER not set, notifications disabled")
		return client.NoopNotifier{}
	}
	if err := config.CreateTopic(cfg.KafkaBroker, cfg.KafkaTopic); err != nil {
		log.WithError(err).Warn("Failed to create kafka topic")
	}
	writer, err := config.GetWriter(cfg.KafkaBroker, cfg.KafkaTopic)
	if err != nil {
		log.WithError(err).Warn("Failed to create kafka writer, notifications disabled")
		return client.NoopNotifier{}
	}
	return client.NewKafkaNotifier(writer)
}

func addLogger(r *gin.Engine) {
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/metrics"},
	}))
}

func addMetrics(r *gin.Engine) {
	p := ginprometheus.NewPrometheus("gin")
	idRe := regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		url := strings.Split(c.Request.URL.String(), "?")[0]
		url = strings.ReplaceAll(url, "/me", "/?")
		url = idRe.ReplaceAllString(url, "?")
		return strings.TrimPrefix(url, "/api")
	}
	p.MetricsPath = "/api/metrics"
	p.Use(r)
}

func addDocs(r *gin.Engine) {
	docs.SwaggerInfo.BasePath = "/api"
	r.GET("/api/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

func setCors(r *gin.Engine) {
	corsConfigGetOptions := cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	corsConfigOtherMethods := cors.Config{
		AllowOrigins: []string{
			"http://localhost",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	r.Use(func(c *gin.Context) {
		if c.Request.Method == "OPTIONS" {
			requestedMethod := c.GetHeader("Access-Control-Request-Method")
			if requestedMethod == "GET" || requestedMethod == "OPTIONS" {
				cors.New(corsConfigGetOptions)(c)
			} else {
				cors.New(corsConfigOtherMethods)(c)
			}
			c.AbortWithStatus(204)
			return
		}

		if c.Request.Method == "GET" {
			cors.New(corsConfigGetOptions)(c)
		} else {
			cors.New(corsConfigOtherMethods)(c)
		}
	})
}
