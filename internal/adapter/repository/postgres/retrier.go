package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLSTATE codes worth another attempt. Class 08 (connection exception) is matched by prefix.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrAdminShutdown        = "57P01"
	pgErrCannotConnectNow     = "57P03"
	pgClassConnection         = "08"
)

// RetrierConfig bounds how long status checkpoints and batch writes keep trying.
type RetrierConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetrierConfig keeps a stalled write well inside one pipeline run lock.
func DefaultRetrierConfig() RetrierConfig {
	return RetrierConfig{
		MaxRetries:      3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
		MaxElapsedTime:  10 * time.Second,
	}
}

// Retrier implements usecase.Retrier with exponential backoff on transient PostgreSQL errors.
type Retrier struct {
	cfg    RetrierConfig
	logger zerolog.Logger
}

// NewRetrier creates a new Retrier with DefaultRetrierConfig.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return NewRetrierWithConfig(DefaultRetrierConfig(), logger)
}

// NewRetrierWithConfig creates a new Retrier. Zero durations take the defaults.
func NewRetrierWithConfig(cfg RetrierConfig, logger zerolog.Logger) *Retrier {
	def := DefaultRetrierConfig()
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	if cfg.MaxElapsedTime <= 0 {
		cfg.MaxElapsedTime = def.MaxElapsedTime
	}
	return &Retrier{cfg: cfg, logger: logger.With().Str("component", "pg_retrier").Logger()}
}

// Retry runs op until it succeeds, fails permanently, or the retry budget is spent. The last
// error is returned unwrapped.
func (r *Retrier) Retry(ctx context.Context, op func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.cfg.InitialInterval
	exp.MaxInterval = r.cfg.MaxInterval
	exp.MaxElapsedTime = r.cfg.MaxElapsedTime

	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.cfg.MaxRetries)), ctx)

	attempt := 0
	notify := func(err error, wait time.Duration) {
		r.logger.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("transient database error")
	}

	return backoff.RetryNotify(func() error {
		attempt++
		err := op()
		if err != nil && !isRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, notify)
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure, pgErrAdminShutdown, pgErrCannotConnectNow:
			return true
		}
		return strings.HasPrefix(pgErr.Code, pgClassConnection)
	}
	return pgconn.SafeToRetry(err)
}
