package githubstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kirkpatrick8/eventpool/internal/models"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

// RecordStore appends prediction rows to a shared CSV file. The first row is
// the fixed header; every append rewrites the whole file under the blob SHA
// read moments before, so a concurrent append fails with ErrConflict rather
// than dropping a row.
type RecordStore struct {
	files *FileStore
	path  string
	log   *logger.Logger
}

// NewRecordStore creates a record store over the given file path.
func NewRecordStore(files *FileStore, path string, log *logger.Logger) *RecordStore {
	return &RecordStore{files: files, path: path, log: log}
}

// Identity names the backing file for cache keying.
func (s *RecordStore) Identity() string {
	return s.files.Identity(s.path)
}

// Append durably adds one prediction row. When the file does not exist yet it
// is created with the header row; any other failure is surfaced unchanged.
func (s *RecordStore) Append(ctx context.Context, p *models.Prediction) error {
	content, sha, err := s.files.Get(ctx, s.path)
	switch {
	case errors.Is(err, models.ErrNotFound):
		content, sha = nil, ""
	case err != nil:
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if len(content) == 0 {
		if err := w.Write(models.CSVHeader); err != nil {
			return fmt.Errorf("%w: encode header: %v", models.ErrPersistence, err)
		}
	} else {
		buf.Write(content)
		if !bytes.HasSuffix(content, []byte("\n")) {
			buf.WriteByte('\n')
		}
	}

	if err := w.Write(p.CSVRecord()); err != nil {
		return fmt.Errorf("%w: encode record: %v", models.ErrPersistence, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: encode record: %v", models.ErrPersistence, err)
	}

	message := fmt.Sprintf("Append prediction - %s", time.Now().UTC().Format(time.RFC3339))
	if sha == "" {
		message = fmt.Sprintf("Create predictions file - %s", time.Now().UTC().Format(time.RFC3339))
	}

	return s.files.Put(ctx, s.path, buf.Bytes(), sha, message)
}

// LoadAll returns every stored prediction, oldest first. Read failures are
// logged and produce an empty result; callers never see an error from a
// missing or unreadable file.
func (s *RecordStore) LoadAll(ctx context.Context) ([]models.Prediction, error) {
	content, _, err := s.files.Get(ctx, s.path)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.log.Error().Err(err).Str("path", s.path).Msg("Failed to load predictions")
		}
		return []models.Prediction{}, nil
	}

	predictions, err := decodeCSV(content)
	if err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("Failed to parse predictions file")
		return []models.Prediction{}, nil
	}

	s.log.Info().Int("count", len(predictions)).Msg("Loaded predictions")
	return predictions, nil
}

func decodeCSV(content []byte) ([]models.Prediction, error) {
	r := csv.NewReader(strings.NewReader(string(content)))
	r.FieldsPerRecord = -1 // rows predate the donation column

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	predictions := make([]models.Prediction, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		p, err := models.PredictionFromCSVRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		predictions = append(predictions, *p)
	}

	return predictions, nil
}
