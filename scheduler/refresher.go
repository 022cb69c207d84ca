package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"crypto-predictor/database"
	"crypto-predictor/predictor"
)

// Refresher periodically pre-warms predictions for every watched coin so
// dashboards hit fresh rows instead of paying the generation cost inline.
type Refresher struct {
	generator *predictor.Generator
	logger    *logrus.Logger
	cron      *cron.Cron
}

func NewRefresher(generator *predictor.Generator, logger *logrus.Logger) *Refresher {
	return &Refresher{
		generator: generator,
		logger:    logger,
		cron:      cron.New(),
	}
}

// Start schedules the refresh job. The schedule uses cron syntax, e.g.
// "@every 1h".
func (r *Refresher) Start(schedule string) error {
	if _, err := r.cron.AddFunc(schedule, r.refreshAll); err != nil {
		return err
	}
	r.cron.Start()
	r.logger.WithField("schedule", schedule).Info("Prediction refresher started")
	return nil
}

func (r *Refresher) Stop() {
	r.cron.Stop()
}

func (r *Refresher) refreshAll() {
	coins, err := database.WatchedCoinNames()
	if err != nil {
		r.logger.WithError(err).Error("Failed to list watched coins")
		return
	}

	refreshed := 0
	for _, coin := range coins {
		if _, err := r.generator.GetOrGenerate(coin, false); err != nil {
			r.logger.WithError(err).WithField("coin", coin).Warn("Failed to refresh prediction")
			continue
		}
		refreshed++
	}

	r.logger.WithFields(logrus.Fields{
		"watched":   len(coins),
		"refreshed": refreshed,
	}).Info("Prediction refresh pass complete")
}
