package cron

import (
	"context"
	"fmt"
	"time"

	"wodmatch/metrics"
	"wodmatch/repository"

	robfigcron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const reconcileTimeout = 5 * time.Minute

type Reconciler interface {
	GetCategoriesWithScores(ctx context.Context) ([]repository.CategoryKey, error)
	Reconcile(ctx context.Context, key repository.CategoryKey) (bool, error)
}

// ReconcileJob republishes leaderboards that drifted from their scores, for
// example after a publish failed once the scores were already saved.
type ReconcileJob struct {
	reconciler Reconciler
	cron       *robfigcron.Cron
	log        logrus.FieldLogger
}

func NewReconcileJob(reconciler Reconciler, log logrus.FieldLogger) *ReconcileJob {
	return &ReconcileJob{
		reconciler: reconciler,
		cron: robfigcron.New(
			robfigcron.WithLocation(time.UTC),
			robfigcron.WithChain(robfigcron.SkipIfStillRunning(robfigcron.PrintfLogger(log))),
		),
		log: log,
	}
}

// Start schedules the job and starts the scheduler. An empty schedule disables it.
func (j *ReconcileJob) Start(schedule string) error {
	if schedule == "" {
		j.log.Info("leaderboard reconciliation disabled")
		return nil
	}
	_, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()
		if _, err := j.Run(ctx); err != nil {
			j.log.WithError(err).Error("leaderboard reconciliation failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}
	j.cron.Start()
	j.log.WithField("schedule", schedule).Info("leaderboard reconciliation scheduled")
	return nil
}

func (j *ReconcileJob) Stop() context.Context {
	return j.cron.Stop()
}

// Run reconciles every category with scores and returns how many were republished.
// A failing category does not stop the others.
func (j *ReconcileJob) Run(ctx context.Context) (int, error) {
	keys, err := j.reconciler.GetCategoriesWithScores(ctx)
	if err != nil {
		metrics.ReconcileRunsTotal.WithLabelValues("error").Inc()
		return 0, err
	}
	published := 0
	failed := 0
	for _, key := range keys {
		changed, err := j.reconciler.Reconcile(ctx, key)
		if err != nil {
			failed++
			j.log.WithError(err).WithFields(logrus.Fields{
				"competition_id": key.CompetitionId,
				"category_id":    key.CategoryId,
			}).Warn("failed to reconcile leaderboard")
			continue
		}
		if changed {
			published++
		}
	}
	j.log.WithFields(logrus.Fields{
		"categories": len(keys),
		"published":  published,
		"failed":     failed,
	}).Info("leaderboard reconciliation finished")
	if failed > 0 {
		metrics.ReconcileRunsTotal.WithLabelValues("partial").Inc()
		return published, fmt.Errorf("%d of %d categories failed to reconcile", failed, len(keys))
	}
	metrics.ReconcileRunsTotal.WithLabelValues("success").Inc()
	return published, nil
}
