package githubstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirkpatrick8/eventpool/internal/models"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

func TestStateStoreLoad_AbsentFileReturnsEmptyDocument(t *testing.T) {
	files, _ := newTestFileStore(t)
	store := NewStateStore(files, "crawl.json", logger.NewNop())

	doc, version, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if version != "" {
		t.Errorf("expected empty version marker, got %q", version)
	}
	if doc.Participants == nil || doc.Punishments == nil || doc.Achievements == nil {
		t.Error("empty document is not fully initialized")
	}
	if len(doc.Participants) != 0 {
		t.Errorf("expected no participants, got %d", len(doc.Participants))
	}
}

func TestStateStoreSaveAndLoadRoundTrip(t *testing.T) {
	files, _ := newTestFileStore(t)
	store := NewStateStore(files, "crawl.json", logger.NewNop())
	ctx := context.Background()

	doc, version, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("initial load failed: %v", err)
	}

	doc.Participants["Conor"] = &models.Participant{
		Name:         "Conor",
		Seq:          1,
		StartedAt:    time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC),
		CurrentStage: 2,
		Completed:    []string{"crown", "duke_of_york"},
		Points:       100,
		Achievements: []string{"first_pub"},
	}
	doc.Punishments = append(doc.Punishments, models.PunishmentEvent{
		Participant: "Conor",
		StageID:     "duke_of_york",
		Punishment:  "Finish your drink",
		At:          time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC),
	})

	if err := store.Save(ctx, doc, version); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	reloaded, version, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if version == "" {
		t.Error("expected version marker after save")
	}

	p := reloaded.Participants["Conor"]
	if p == nil {
		t.Fatal("participant missing after round trip")
	}
	if p.CurrentStage != 2 || p.Points != 100 || len(p.Completed) != 2 {
		t.Errorf("participant state mismatch: %+v", p)
	}
	if len(reloaded.Punishments) != 1 || reloaded.Punishments[0].Punishment != "Finish your drink" {
		t.Errorf("punishment log mismatch: %+v", reloaded.Punishments)
	}
}

func TestStateStoreSave_StaleVersionConflicts(t *testing.T) {
	files, _ := newTestFileStore(t)
	store := NewStateStore(files, "crawl.json", logger.NewNop())
	ctx := context.Background()

	doc, version, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := store.Save(ctx, doc, version); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Both writers loaded the same version.
	docA, versionA, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	docB, versionB, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	docA.Participants["A"] = &models.Participant{Name: "A", Seq: 1}
	if err := store.Save(ctx, docA, versionA); err != nil {
		t.Fatalf("first save should win: %v", err)
	}

	docB.Participants["B"] = &models.Participant{Name: "B", Seq: 1}
	err = store.Save(ctx, docB, versionB)
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("second save should conflict, got %v", err)
	}

	// The loser's write left no trace.
	final, _, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("final load failed: %v", err)
	}
	if _, ok := final.Participants["B"]; ok {
		t.Error("conflicting write must not be applied")
	}
	if _, ok := final.Participants["A"]; !ok {
		t.Error("winning write lost")
	}
}
