// Package githubstore persists the shared event files in a GitHub repository
// using the contents API. Every write is a compare-and-swap on the blob SHA
// captured at read time, so concurrent writers lose visibly instead of
// silently clobbering each other.
package githubstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/kirkpatrick8/eventpool/internal/config"
	"github.com/kirkpatrick8/eventpool/internal/models"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

// FileStore reads and writes whole files on a branch of one repository.
type FileStore struct {
	client  *github.Client
	owner   string
	repo    string
	branch  string
	timeout time.Duration
	log     *logger.Logger
}

// NewFileStore creates a file store authenticated with the configured token.
func NewFileStore(cfg *config.GitHubConfig, log *logger.Logger) *FileStore {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	tc := oauth2.NewClient(context.Background(), ts)

	return NewFileStoreWithClient(github.NewClient(tc), cfg, log)
}

// NewFileStoreWithClient creates a file store with an injected GitHub client
// (useful for testing against an httptest server).
func NewFileStoreWithClient(client *github.Client, cfg *config.GitHubConfig, log *logger.Logger) *FileStore {
	return &FileStore{
		client:  client,
		owner:   cfg.Owner,
		repo:    cfg.Repo,
		branch:  cfg.Branch,
		timeout: cfg.Timeout(),
		log:     log,
	}
}

// Identity names the backing location, used to key caches.
func (s *FileStore) Identity(path string) string {
	return fmt.Sprintf("%s/%s@%s:%s", s.owner, s.repo, s.branch, path)
}

// Get fetches a file's decoded content and its blob SHA. The SHA is the
// version marker a subsequent Put must present. A missing file maps to
// models.ErrNotFound.
func (s *FileStore) Get(ctx context.Context, path string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	file, _, _, err := s.client.Repositories.GetContents(ctx, s.owner, s.repo, path,
		&github.RepositoryContentGetOptions{Ref: s.branch})
	if err != nil {
		return nil, "", s.mapError("get", path, err)
	}
	if file == nil {
		return nil, "", fmt.Errorf("%w: %s is a directory", models.ErrPersistence, path)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, "", fmt.Errorf("%w: decode %s: %v", models.ErrPersistence, path, err)
	}

	return []byte(content), file.GetSHA(), nil
}

// Put writes a file's full content. An empty sha creates the file and fails
// if it already exists; a non-empty sha updates the file and fails with
// models.ErrConflict if the blob changed since it was read.
func (s *FileStore) Put(ctx context.Context, path string, content []byte, sha, message string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		Branch:  github.String(s.branch),
	}

	var err error
	if sha == "" {
		_, _, err = s.client.Repositories.CreateFile(ctx, s.owner, s.repo, path, opts)
	} else {
		opts.SHA = github.String(sha)
		_, _, err = s.client.Repositories.UpdateFile(ctx, s.owner, s.repo, path, opts)
	}
	if err != nil {
		return s.mapError("put", path, err)
	}

	s.log.Debug().
		Str("path", path).
		Int("bytes", len(content)).
		Msg("Wrote file to GitHub")

	return nil
}

// mapError translates contents API failures into the store taxonomy.
// 404 means the file is absent; 409 and 422 are how the API reports a stale
// or wrong SHA on write.
func (s *FileStore) mapError(op, path string, err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", models.ErrNotFound, path)
		case http.StatusConflict, http.StatusUnprocessableEntity:
			return fmt.Errorf("%w: %s %s", models.ErrConflict, op, path)
		}
	}
	return fmt.Errorf("%w: %s %s: %v", models.ErrPersistence, op, path, err)
}
