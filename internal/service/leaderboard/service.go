// Package leaderboard provides the derived, recomputed-on-read ranking over
// all crawl participants.
package leaderboard

import (
	"context"
	"sort"

	"github.com/kirkpatrick8/eventpool/internal/models"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

// StateStore interface for crawl document reads.
type StateStore interface {
	Load(ctx context.Context) (*models.CrawlDocument, string, error)
}

// Entry represents a single row on the leaderboard.
type Entry struct {
	Rank         int    `json:"rank"`
	Name         string `json:"name"`
	Points       int    `json:"points"`
	Completed    int    `json:"completed"`
	RuleBreaks   int    `json:"rule_breaks"`
	Achievements int    `json:"achievements"`
	Finished     bool   `json:"finished"`
}

// Service recomputes the leaderboard from stored participant state on every
// request; nothing is maintained incrementally.
type Service struct {
	store       StateStore
	totalStages int
	log         *logger.Logger
}

// NewService creates a new leaderboard service.
func NewService(store StateStore, totalStages int, log *logger.Logger) *Service {
	return &Service{store: store, totalStages: totalStages, log: log}
}

// Get loads all participant state and projects the current standings.
func (s *Service) Get(ctx context.Context) ([]Entry, error) {
	doc, _, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	entries := Project(doc.Participants, s.totalStages)
	s.log.Debug().Int("entries", len(entries)).Msg("Computed leaderboard")
	return entries, nil
}

// Project sorts participants by points descending, then completed count
// descending, ties broken by registration order. Pure and deterministic.
func Project(participants map[string]*models.Participant, totalStages int) []Entry {
	ordered := make([]*models.Participant, 0, len(participants))
	for _, p := range participants {
		ordered = append(ordered, p)
	}

	// Registration order first so the stable sort preserves it for ties.
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Seq < ordered[j].Seq
	})
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Points != ordered[j].Points {
			return ordered[i].Points > ordered[j].Points
		}
		return len(ordered[i].Completed) > len(ordered[j].Completed)
	})

	entries := make([]Entry, 0, len(ordered))
	for i, p := range ordered {
		entries = append(entries, Entry{
			Rank:         i + 1,
			Name:         p.Name,
			Points:       p.Points,
			Completed:    len(p.Completed),
			RuleBreaks:   p.RuleBreaks,
			Achievements: len(p.Achievements),
			Finished:     p.CurrentStage >= totalStages,
		})
	}

	return entries
}
