package dbstore

import (
	"context"
	"fmt"

	"github.com/kirkpatrick8/eventpool/internal/models"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

// PredictionRepository is the relational record store: one row per
// submission, insert-only. Row inserts cannot lose concurrent writes the way
// a whole-file rewrite can, so no version marker is involved here.
type PredictionRepository struct {
	db       *DB
	identity string
	log      *logger.Logger
}

// NewPredictionRepository creates a new prediction repository.
func NewPredictionRepository(db *DB, database string, log *logger.Logger) *PredictionRepository {
	return &PredictionRepository{
		db:       db,
		identity: fmt.Sprintf("postgres://%s/%s", database, models.PredictionsTable),
		log:      log,
	}
}

// Identity names the backing table for cache keying.
func (r *PredictionRepository) Identity() string {
	return r.identity
}

// Append inserts one prediction row inside a transaction.
func (r *PredictionRepository) Append(ctx context.Context, p *models.Prediction) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("%w: insert prediction: %v", models.ErrPersistence, err)
	}
	return nil
}

// LoadAll returns every stored prediction in insertion order. Read failures
// are logged and produce an empty result, matching the record store contract.
func (r *PredictionRepository) LoadAll(ctx context.Context) ([]models.Prediction, error) {
	var predictions []models.Prediction
	err := r.db.WithContext(ctx).
		Order("submitted_at ASC, id ASC").
		Find(&predictions).Error
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to load predictions")
		return []models.Prediction{}, nil
	}

	r.log.Info().Int("count", len(predictions)).Msg("Loaded predictions")
	return predictions, nil
}
