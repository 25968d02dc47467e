package githubstore

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/v66/github"

	"github.com/kirkpatrick8/eventpool/internal/config"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

// fakeContents is an in-memory stand-in for the GitHub contents API. It
// enforces the same SHA discipline as the real thing: updates must present
// the current blob SHA, creates must target a missing path.
type fakeContents struct {
	mu    sync.Mutex
	files map[string][]byte
	shas  map[string]string
	rev   int
	gets  int
}

func newFakeContents() *fakeContents {
	return &fakeContents{
		files: make(map[string][]byte),
		shas:  make(map[string]string),
	}
}

func (f *fakeContents) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "/repos/kirkpatrick8/babypool/contents/"
		if !strings.HasPrefix(r.URL.Path, prefix) {
			http.NotFound(w, r)
			return
		}
		path := strings.TrimPrefix(r.URL.Path, prefix)

		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			f.gets++
			content, ok := f.files[path]
			if !ok {
				writeError(w, http.StatusNotFound, "Not Found")
				return
			}
			resp := map[string]any{
				"type":     "file",
				"name":     path,
				"path":     path,
				"sha":      f.shas[path],
				"encoding": "base64",
				"content":  base64.StdEncoding.EncodeToString(content),
			}
			_ = json.NewEncoder(w).Encode(resp)

		case http.MethodPut:
			var body struct {
				Message string  `json:"message"`
				Content string  `json:"content"`
				SHA     *string `json:"sha"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "bad request")
				return
			}
			decoded, err := base64.StdEncoding.DecodeString(body.Content)
			if err != nil {
				writeError(w, http.StatusBadRequest, "bad content")
				return
			}

			current, exists := f.shas[path]
			switch {
			case body.SHA == nil && exists:
				writeError(w, http.StatusUnprocessableEntity, "sha required for existing file")
				return
			case body.SHA != nil && !exists:
				writeError(w, http.StatusNotFound, "Not Found")
				return
			case body.SHA != nil && *body.SHA != current:
				writeError(w, http.StatusConflict, "is at a different sha")
				return
			}

			f.rev++
			f.files[path] = decoded
			f.shas[path] = fmt.Sprintf("sha-%d", f.rev)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"content": map[string]any{"sha": f.shas[path], "path": path},
			})

		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

// getCount returns the number of GET requests served so far.
func (f *fakeContents) getCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets
}

// newTestFileStore starts a fake contents API and points a FileStore at it.
func newTestFileStore(t *testing.T) (*FileStore, *fakeContents) {
	t.Helper()

	fake := newFakeContents()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	baseURL, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	client.BaseURL = baseURL

	cfg := &config.GitHubConfig{
		Owner:          "kirkpatrick8",
		Repo:           "babypool",
		Branch:         "main",
		TimeoutSeconds: 5,
	}

	return NewFileStoreWithClient(client, cfg, logger.NewNop()), fake
}
