package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"assistant-agent/internal/briefing"
	"assistant-agent/internal/config"
	"assistant-agent/internal/logger"
)

// jobTimeout bounds one scheduled briefing run across all users.
const jobTimeout = 2 * time.Minute

// briefingGenerator assembles a prioritized briefing for a user.
type briefingGenerator interface {
	Generate(ctx context.Context, userID string, req briefing.Request) (*briefing.Briefing, error)
}

// summaryDeliverer sends a briefing summary as a Slack DM.
type summaryDeliverer interface {
	SendDirectMessage(ctx context.Context, slackUserID, text string) error
}

// Scheduler runs the morning-briefing job on a cron spec.
type Scheduler struct {
	cron      *cron.Cron
	generator briefingGenerator
	deliverer summaryDeliverer
	cfg       config.BriefingConfig
}

func NewScheduler(generator briefingGenerator, deliverer summaryDeliverer, cfg config.BriefingConfig) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		generator: generator,
		deliverer: deliverer,
		cfg:       cfg,
	}
}

// Start registers the morning-briefing job and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.CronSpec, s.runMorningBriefings)
	if err != nil {
		return fmt.Errorf("schedule morning briefing: %w", err)
	}

	s.cron.Start()
	logger.Info().
		Str("cron_spec", s.cfg.CronSpec).
		Int("users", len(s.cfg.UserIDs)).
		Msg("scheduler started")
	return nil
}

// Stop halts the cron loop. Running jobs complete.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	logger.Info().Msg("scheduler stopped")
}

// RunMorningBriefingsNow triggers the briefing job immediately. Useful for
// manual runs.
func (s *Scheduler) RunMorningBriefingsNow() {
	s.runMorningBriefings()
}

func (s *Scheduler) runMorningBriefings() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	for _, entry := range s.cfg.UserIDs {
		userID, slackUserID := splitUserEntry(entry)

		result, err := s.generator.Generate(ctx, userID, briefing.Request{})
		if err != nil {
			logger.Error().Err(err).Str("user_id", userID).Msg("scheduled briefing failed")
			continue
		}
		if result.OverallSummary == "" {
			continue
		}

		if err := s.deliverer.SendDirectMessage(ctx, slackUserID, result.OverallSummary); err != nil {
			logger.Error().Err(err).
				Str("user_id", userID).
				Str("slack_user_id", slackUserID).
				Msg("failed to deliver briefing summary")
			continue
		}

		logger.Info().
			Str("user_id", userID).
			Int("items", len(result.PriorityItems)).
			Msg("delivered morning briefing")
	}
}

// splitUserEntry parses a configured briefing recipient. An entry is either
// a bare user ID, or "userID:slackUserID" when the Slack member ID differs.
func splitUserEntry(entry string) (userID, slackUserID string) {
	if id, slackID, ok := strings.Cut(entry, ":"); ok && slackID != "" {
		return id, slackID
	}
	return entry, entry
}
