// Package achievements provides the fixed achievement catalog and the pure
// evaluator applied after every state-mutating crawl event.
package achievements

import (
	"github.com/kirkpatrick8/eventpool/internal/models"
)

// Achievement identifiers.
const (
	FirstPub    = "first_pub"
	Halfway     = "halfway"
	Finisher    = "finisher"
	RuleBreaker = "rule_breaker"
)

// catalogEntry pairs an achievement with its qualifying predicate. The
// predicate sees the participant state after the triggering mutation.
type catalogEntry struct {
	achievement models.Achievement
	qualifies   func(p *models.Participant, totalStages int) bool
}

var catalog = []catalogEntry{
	{
		achievement: models.Achievement{
			ID:          FirstPub,
			Name:        "First Pub",
			Description: "Completed the first pub of the crawl",
			Points:      50,
		},
		qualifies: func(p *models.Participant, _ int) bool {
			return len(p.Completed) >= 1
		},
	},
	{
		achievement: models.Achievement{
			ID:          Halfway,
			Name:        "Halfway There",
			Description: "Completed half of the crawl",
			Points:      100,
		},
		qualifies: func(p *models.Participant, totalStages int) bool {
			return len(p.Completed) >= (totalStages+1)/2
		},
	},
	{
		achievement: models.Achievement{
			ID:          Finisher,
			Name:        "Finisher",
			Description: "Completed every pub on the crawl",
			Points:      250,
		},
		qualifies: func(p *models.Participant, totalStages int) bool {
			return len(p.Completed) >= totalStages
		},
	},
	{
		achievement: models.Achievement{
			ID:          RuleBreaker,
			Name:        "Rule Breaker",
			Description: "Broke the rules three times",
			Points:      50,
		},
		qualifies: func(p *models.Participant, _ int) bool {
			return p.RuleBreaks >= 3
		},
	},
}

// Catalog returns the full achievement catalog in definition order.
func Catalog() []models.Achievement {
	out := make([]models.Achievement, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, e.achievement)
	}
	return out
}

// Lookup returns the catalog entry for an identifier.
func Lookup(id string) (models.Achievement, bool) {
	for _, e := range catalog {
		if e.achievement.ID == id {
			return e.achievement, true
		}
	}
	return models.Achievement{}, false
}

// Evaluate returns the achievements the participant now qualifies for but has
// not yet unlocked. Idempotent: a fully-awarded participant yields nothing.
// The caller applies the awards and persists them together with the
// triggering mutation.
func Evaluate(p *models.Participant, totalStages int) []models.Achievement {
	var newly []models.Achievement
	for _, e := range catalog {
		if p.HasAchievement(e.achievement.ID) {
			continue
		}
		if e.qualifies(p, totalStages) {
			newly = append(newly, e.achievement)
		}
	}
	return newly
}
