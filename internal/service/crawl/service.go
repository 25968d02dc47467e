// Package crawl implements the pub crawl progress engine: a per-participant
// state machine over a fixed stage sequence, persisted as one shared document
// with compare-and-swap writes.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	prommetrics "github.com/kirkpatrick8/eventpool/internal/metrics"
	"github.com/kirkpatrick8/eventpool/internal/models"
	"github.com/kirkpatrick8/eventpool/internal/service/achievements"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

// ErrAlreadyComplete signals an advance attempt on a participant who has
// finished every stage. State is left unchanged.
var ErrAlreadyComplete = errors.New("crawl already complete")

// StateStore interface for crawl document persistence.
type StateStore interface {
	Load(ctx context.Context) (*models.CrawlDocument, string, error)
	Save(ctx context.Context, doc *models.CrawlDocument, version string) error
}

// Notifier interface for crawl event announcements.
type Notifier interface {
	AchievementUnlocked(participant string, achievement models.Achievement)
	CrawlFinished(participant string)
}

// ParticipantView is the read model returned to the presentation layer.
type ParticipantView struct {
	Name         string               `json:"name"`
	CurrentStage int                  `json:"current_stage"`
	TotalStages  int                  `json:"total_stages"`
	NextStage    *Stage               `json:"next_stage,omitempty"`
	Completed    []string             `json:"completed"`
	Points       int                  `json:"points"`
	RuleBreaks   int                  `json:"rule_breaks"`
	Achievements []models.Achievement `json:"achievements"`
	Finished     bool                 `json:"finished"`
}

// Service handles participant registration, stage advancement, and the
// punishment wheel.
type Service struct {
	store    StateStore
	catalog  *Catalog
	notifier Notifier
	intn     func(n int) int
	now      func() time.Time
	log      *logger.Logger
}

// NewService creates a new crawl service.
func NewService(store StateStore, catalog *Catalog, notifier Notifier, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		catalog:  catalog,
		notifier: notifier,
		intn:     rand.IntN,
		now:      time.Now,
		log:      log,
	}
}

// Register creates a participant on first entry or resumes the existing one.
// Idempotent by name.
func (s *Service) Register(ctx context.Context, name string) (*ParticipantView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrValidation)
	}

	doc, version, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	if p, ok := doc.Participants[name]; ok {
		s.log.Info().Str("participant", name).Msg("Participant resumed")
		return s.view(p), nil
	}

	p := &models.Participant{
		Name:         name,
		Seq:          nextSeq(doc),
		StartedAt:    s.now(),
		Completed:    []string{},
		Achievements: []string{},
	}
	doc.Participants[name] = p

	if err := s.store.Save(ctx, doc, version); err != nil {
		return nil, err
	}

	prommetrics.CrawlParticipants.Set(float64(len(doc.Participants)))
	s.log.Info().Str("participant", name).Int("seq", p.Seq).Msg("Participant registered")

	return s.view(p), nil
}

// Advance completes the participant's current stage, awards stage points,
// evaluates achievements, and persists the whole mutation as one write.
func (s *Service) Advance(ctx context.Context, name string) (*ParticipantView, error) {
	doc, version, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	p, ok := doc.Participants[name]
	if !ok {
		return nil, fmt.Errorf("%w: participant %q", models.ErrNotFound, name)
	}
	if p.CurrentStage >= s.catalog.TotalStages() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyComplete, name)
	}

	stage := s.catalog.Stages[p.CurrentStage]
	p.Completed = append(p.Completed, stage.ID)
	p.CurrentStage++
	p.Points += s.catalog.StagePoints
	newly := s.applyAchievements(p)

	if err := s.store.Save(ctx, doc, version); err != nil {
		return nil, err
	}

	prommetrics.StagesCompletedTotal.Inc()
	s.announce(p, newly)
	s.log.Info().
		Str("participant", name).
		Str("stage", stage.ID).
		Int("current_stage", p.CurrentStage).
		Int("points", p.Points).
		Msg("Stage completed")

	return s.view(p), nil
}

// SpinPunishment records a rule break, draws one punishment uniformly at
// random, appends it to the punishment log tagged with the participant's
// current stage, and returns the punishment text for display.
func (s *Service) SpinPunishment(ctx context.Context, name string) (string, error) {
	doc, version, err := s.store.Load(ctx)
	if err != nil {
		return "", err
	}

	p, ok := doc.Participants[name]
	if !ok {
		return "", fmt.Errorf("%w: participant %q", models.ErrNotFound, name)
	}

	punishment := s.catalog.Punishments[s.intn(len(s.catalog.Punishments))]
	stageID := ""
	if p.CurrentStage < s.catalog.TotalStages() {
		stageID = s.catalog.Stages[p.CurrentStage].ID
	}

	p.RuleBreaks++
	doc.Punishments = append(doc.Punishments, models.PunishmentEvent{
		Participant: name,
		StageID:     stageID,
		Punishment:  punishment,
		At:          s.now(),
	})
	newly := s.applyAchievements(p)

	if err := s.store.Save(ctx, doc, version); err != nil {
		return "", err
	}

	prommetrics.PunishmentSpinsTotal.Inc()
	s.announce(p, newly)
	s.log.Info().
		Str("participant", name).
		Str("punishment", punishment).
		Int("rule_breaks", p.RuleBreaks).
		Msg("Punishment drawn")

	return punishment, nil
}

// Participant returns the view and punishment history for one participant.
func (s *Service) Participant(ctx context.Context, name string) (*ParticipantView, []models.PunishmentEvent, error) {
	doc, _, err := s.store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	p, ok := doc.Participants[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: participant %q", models.ErrNotFound, name)
	}

	history := make([]models.PunishmentEvent, 0)
	for _, e := range doc.Punishments {
		if e.Participant == name {
			history = append(history, e)
		}
	}

	return s.view(p), history, nil
}

// applyAchievements unlocks newly qualifying achievements and adds their
// point values. Mutations stay in memory until the caller persists the
// document, so a failed save grants nothing.
func (s *Service) applyAchievements(p *models.Participant) []models.Achievement {
	newly := achievements.Evaluate(p, s.catalog.TotalStages())
	for _, a := range newly {
		p.Achievements = append(p.Achievements, a.ID)
		p.Points += a.Points
	}
	return newly
}

// announce reports awards and completion after a successful save.
func (s *Service) announce(p *models.Participant, newly []models.Achievement) {
	for _, a := range newly {
		prommetrics.AchievementsAwardedTotal.WithLabelValues(a.ID).Inc()
		if s.notifier != nil {
			s.notifier.AchievementUnlocked(p.Name, a)
		}
	}
	if p.CurrentStage == s.catalog.TotalStages() && s.notifier != nil {
		s.notifier.CrawlFinished(p.Name)
	}
}

func (s *Service) view(p *models.Participant) *ParticipantView {
	v := &ParticipantView{
		Name:         p.Name,
		CurrentStage: p.CurrentStage,
		TotalStages:  s.catalog.TotalStages(),
		Completed:    append([]string{}, p.Completed...),
		Points:       p.Points,
		RuleBreaks:   p.RuleBreaks,
		Achievements: make([]models.Achievement, 0, len(p.Achievements)),
		Finished:     p.CurrentStage >= s.catalog.TotalStages(),
	}
	if !v.Finished {
		stage := s.catalog.Stages[p.CurrentStage]
		v.NextStage = &stage
	}
	for _, id := range p.Achievements {
		if a, ok := achievements.Lookup(id); ok {
			v.Achievements = append(v.Achievements, a)
		}
	}
	return v
}

func nextSeq(doc *models.CrawlDocument) int {
	max := 0
	for _, p := range doc.Participants {
		if p.Seq > max {
			max = p.Seq
		}
	}
	return max + 1
}
