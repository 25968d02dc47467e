package models

import (
	"time"
)

// Participant is one pub crawler's progress document. All participants live
// inside a single CrawlDocument keyed by name; a participant is created on
// first registration and never deleted for the lifetime of the event.
type Participant struct {
	Name         string    `json:"name"`
	Seq          int       `json:"seq"` // registration order, breaks leaderboard ties
	StartedAt    time.Time `json:"started_at"`
	CurrentStage int       `json:"current_stage"`
	Completed    []string  `json:"completed"`
	Points       int       `json:"points"`
	RuleBreaks   int       `json:"rule_breaks"`
	Achievements []string  `json:"achievements"`
}

// HasAchievement reports whether the participant already unlocked id.
func (p *Participant) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// PunishmentEvent is one entry in the append-only punishment log. It
// references a participant by name and the stage they were at when the wheel
// was spun; it never alters participant identity.
type PunishmentEvent struct {
	Participant string    `json:"participant"`
	StageID     string    `json:"stage_id"`
	Punishment  string    `json:"punishment"`
	At          time.Time `json:"at"`
}

// CrawlDocument is the single structured document holding all crawl state in
// the backing store. The achievements key is reserved and unused; it is kept
// so older documents round-trip unchanged.
type CrawlDocument struct {
	Participants map[string]*Participant `json:"participants"`
	Punishments  []PunishmentEvent       `json:"punishments"`
	Achievements map[string]any          `json:"achievements"`
}

// NewCrawlDocument returns an empty, well-formed crawl document.
func NewCrawlDocument() *CrawlDocument {
	return &CrawlDocument{
		Participants: make(map[string]*Participant),
		Punishments:  []PunishmentEvent{},
		Achievements: make(map[string]any),
	}
}
