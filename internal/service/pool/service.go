// Package pool implements the guessing-pool flow: validate a submission,
// append it to the shared record store, and serve the aggregated table.
package pool

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sync"
	"time"

	prommetrics "github.com/kirkpatrick8/eventpool/internal/metrics"
	"github.com/kirkpatrick8/eventpool/internal/models"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

// RecordStore interface for prediction persistence.
type RecordStore interface {
	Append(ctx context.Context, p *models.Prediction) error
	LoadAll(ctx context.Context) ([]models.Prediction, error)
	Identity() string
}

// Cache interface for the read-through prediction cache.
type Cache interface {
	Get(ctx context.Context) ([]models.Prediction, bool)
	Set(ctx context.Context, predictions []models.Prediction)
	Clear(ctx context.Context) error
}

// Notifier interface for submission announcements.
type Notifier interface {
	PredictionReceived(name string)
}

// Service handles prediction submission and retrieval.
type Service struct {
	store    RecordStore
	cache    Cache
	notifier Notifier
	now      func() time.Time
	log      *logger.Logger

	mu     sync.Mutex
	lastTS time.Time
}

// NewService creates a new pool service.
func NewService(store RecordStore, cache Cache, notifier Notifier, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		cache:    cache,
		notifier: notifier,
		now:      time.Now,
		log:      log,
	}
}

// Submit validates and persists one prediction. The submission timestamp is
// assigned server-side and is monotonically non-decreasing across appends.
// A compare-and-swap conflict against the store is retried once before being
// surfaced to the caller.
func (s *Service) Submit(ctx context.Context, p *models.Prediction) error {
	if err := p.Validate(); err != nil {
		prommetrics.PredictionsRejectedTotal.WithLabelValues("validation").Inc()
		return err
	}

	p.SubmittedAt = s.timestamp()

	err := s.append(ctx, p)
	if errors.Is(err, models.ErrConflict) {
		prommetrics.StoreConflictsTotal.WithLabelValues(s.store.Identity()).Inc()
		s.log.Warn().Str("name", p.Name).Msg("Append conflict, retrying once")
		err = s.append(ctx, p)
	}
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			prommetrics.StoreConflictsTotal.WithLabelValues(s.store.Identity()).Inc()
		}
		prommetrics.PredictionsRejectedTotal.WithLabelValues("persistence").Inc()
		return err
	}

	prommetrics.PredictionsSubmittedTotal.Inc()

	// The submitter must see their own record on the next read even inside
	// the TTL window.
	if err := s.cache.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Failed to clear prediction cache")
	}

	if s.notifier != nil {
		s.notifier.PredictionReceived(p.Name)
	}

	s.log.Info().Str("name", p.Name).Time("submitted_at", p.SubmittedAt).Msg("Prediction saved")
	return nil
}

// List returns all predictions, oldest first, serving from the cache within
// its TTL window. Never fails: an unreadable store yields an empty list.
func (s *Service) List(ctx context.Context) []models.Prediction {
	if cached, ok := s.cache.Get(ctx); ok {
		prommetrics.CacheHitsTotal.Inc()
		return cached
	}
	prommetrics.CacheMissesTotal.Inc()

	start := time.Now()
	predictions, err := s.store.LoadAll(ctx)
	prommetrics.StoreRequestDuration.WithLabelValues(s.store.Identity(), "load_all").Observe(time.Since(start).Seconds())
	if err != nil {
		// Defensive: current stores report read failures as empty results.
		s.log.Error().Err(err).Msg("Failed to load predictions")
		return []models.Prediction{}
	}

	s.cache.Set(ctx, predictions)
	return predictions
}

// ExportCSV renders the current predictions in the shared file's exact
// column order, header row included.
func (s *Service) ExportCSV(ctx context.Context) ([]byte, error) {
	predictions := s.List(ctx)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(models.CSVHeader); err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}
	for i := range predictions {
		if err := w.Write(predictions[i].CSVRecord()); err != nil {
			return nil, fmt.Errorf("encode record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *Service) append(ctx context.Context, p *models.Prediction) error {
	start := time.Now()
	err := s.store.Append(ctx, p)
	prommetrics.StoreRequestDuration.WithLabelValues(s.store.Identity(), "append").Observe(time.Since(start).Seconds())
	return err
}

// timestamp returns the current time, clamped so submission times never go
// backwards across appends within this process.
func (s *Service) timestamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now()
	if ts.Before(s.lastTS) {
		ts = s.lastTS
	}
	s.lastTS = ts
	return ts
}
