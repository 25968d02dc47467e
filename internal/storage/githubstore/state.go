package githubstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirkpatrick8/eventpool/internal/models"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

// StateStore persists the single crawl document as a JSON file. Load returns
// the version marker that Save must present, making every mutation a
// read-modify-write with compare-and-swap semantics.
type StateStore struct {
	files *FileStore
	path  string
	log   *logger.Logger
}

// NewStateStore creates a state store over the given file path.
func NewStateStore(files *FileStore, path string, log *logger.Logger) *StateStore {
	return &StateStore{files: files, path: path, log: log}
}

// Identity names the backing file.
func (s *StateStore) Identity() string {
	return s.files.Identity(s.path)
}

// Load fetches the crawl document and its version marker. A missing file
// yields an empty document and an empty marker, which Save turns into a
// create.
func (s *StateStore) Load(ctx context.Context) (*models.CrawlDocument, string, error) {
	content, sha, err := s.files.Get(ctx, s.path)
	if errors.Is(err, models.ErrNotFound) {
		return models.NewCrawlDocument(), "", nil
	}
	if err != nil {
		return nil, "", err
	}

	var doc models.CrawlDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, "", fmt.Errorf("%w: parse %s: %v", models.ErrPersistence, s.path, err)
	}
	if doc.Participants == nil {
		doc.Participants = make(map[string]*models.Participant)
	}
	if doc.Punishments == nil {
		doc.Punishments = []models.PunishmentEvent{}
	}
	if doc.Achievements == nil {
		doc.Achievements = make(map[string]any)
	}

	return &doc, sha, nil
}

// Save writes the whole document under the version marker from Load.
// A stale marker fails with models.ErrConflict and nothing is written.
func (s *StateStore) Save(ctx context.Context, doc *models.CrawlDocument, sha string) error {
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode crawl document: %v", models.ErrPersistence, err)
	}

	message := fmt.Sprintf("Update crawl state - %s", time.Now().UTC().Format(time.RFC3339))
	if sha == "" {
		message = fmt.Sprintf("Create crawl state - %s", time.Now().UTC().Format(time.RFC3339))
	}

	return s.files.Put(ctx, s.path, content, sha, message)
}
