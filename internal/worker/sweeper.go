package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/iho/banky/internal/domain"
)

// DefaultSweepLimit caps how many parked documents one sweep reports.
const DefaultSweepLimit = 500

// ParkedLister finds documents stuck in a non-terminal status.
type ParkedLister interface {
	ListParked(ctx context.Context, before time.Time, limit int) ([]*domain.Document, error)
}

// ParkedMetrics receives the size of the last sweep.
type ParkedMetrics interface {
	SetParked(n int)
}

// SweeperConfig configures the parked-document sweep.
type SweeperConfig struct {
	// Schedule is a cron spec; descriptors such as "@every 5m" are accepted.
	Schedule    string
	ParkedAfter time.Duration
	Limit       int
}

// Sweeper periodically reports documents that have not moved for longer than ParkedAfter.
// It only reports them; resuming a run is left to an operator.
type Sweeper struct {
	cron    *cron.Cron
	docs    ParkedLister
	metrics ParkedMetrics
	cfg     SweeperConfig
	logger  zerolog.Logger
	now     func() time.Time
}

// NewSweeper creates a new Sweeper. It does nothing until Start.
func NewSweeper(docs ParkedLister, metrics ParkedMetrics, cfg SweeperConfig, logger zerolog.Logger) *Sweeper {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 5m"
	}
	if cfg.ParkedAfter <= 0 {
		cfg.ParkedAfter = 30 * time.Minute
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultSweepLimit
	}
	logger = logger.With().Str("component", "sweeper").Logger()

	return &Sweeper{
		cron:    cron.New(cron.WithLogger(cronLogger{logger: logger})),
		docs:    docs,
		metrics: metrics,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Start schedules the sweep.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.run); err != nil {
		return fmt.Errorf("schedule sweep %q: %w", s.cfg.Schedule, err)
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", s.cfg.Schedule).Dur("parked_after", s.cfg.ParkedAfter).Msg("sweeper started")
	return nil
}

// Stop stops scheduling; the returned context is done once a running sweep finishes.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.SweepOnce(ctx); err != nil {
		s.logger.Error().Err(err).Msg("sweep failed")
	}
}

// SweepOnce lists parked documents, logs each one and updates the gauge.
func (s *Sweeper) SweepOnce(ctx context.Context) ([]*domain.Document, error) {
	cutoff := s.now().Add(-s.cfg.ParkedAfter)

	parked, err := s.docs.ListParked(ctx, cutoff, s.cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("list parked documents: %w", err)
	}

	for _, doc := range parked {
		s.logger.Warn().
			Str("document_id", doc.ID).
			Str("status", string(doc.Status)).
			Time("updated_at", doc.UpdatedAt).
			Dur("idle", s.now().Sub(doc.UpdatedAt)).
			Msg("document parked")
	}
	if s.metrics != nil {
		s.metrics.SetParked(len(parked))
	}
	if len(parked) > 0 {
		s.logger.Info().Int("parked", len(parked)).Msg("sweep finished")
	}

	return parked, nil
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
