package dbstore

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kirkpatrick8/eventpool/internal/models"
	"github.com/kirkpatrick8/eventpool/pkg/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	if err := db.AutoMigrate(&models.Prediction{}); err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}

	return &DB{db}
}

func testPrediction(name string, submittedAt time.Time) *models.Prediction {
	return &models.Prediction{
		Name:           name,
		StephGender:    models.GenderBoy,
		StephWeight:    7.5,
		StephHair:      "Brown",
		StephDate:      "2024-10-31",
		AoifeGender:    models.GenderGirl,
		AoifeWeight:    8.0,
		AoifeHair:      "Red",
		AoifeDate:      "2024-11-01",
		BornFirst:      models.BornFirstAoife,
		CombinedWeight: 15.5,
		TotalLength:    39.0,
		SubmittedAt:    submittedAt,
	}
}

func TestPredictionRepositoryAppendAndLoadAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPredictionRepository(db, "eventpool", logger.NewNop())
	ctx := context.Background()

	base := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"First", "Second", "Third"} {
		p := testPrediction(name, base.Add(time.Duration(i)*time.Minute))
		if err := repo.Append(ctx, p); err != nil {
			t.Fatalf("append %s failed: %v", name, err)
		}
	}

	loaded, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("expected 3 records, got %d", len(loaded))
	}
	for i, name := range []string{"First", "Second", "Third"} {
		if loaded[i].Name != name {
			t.Errorf("record %d = %q, want %q", i, loaded[i].Name, name)
		}
	}
}

func TestPredictionRepositoryLoadAll_EmptyTable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPredictionRepository(db, "eventpool", logger.NewNop())

	loaded, err := repo.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(loaded) != 0 {
		t.Errorf("expected 0 records, got %d", len(loaded))
	}
}

func TestPredictionRepositoryIdentity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPredictionRepository(db, "eventpool", logger.NewNop())

	want := "postgres://eventpool/predictions"
	if repo.Identity() != want {
		t.Errorf("identity = %q, want %q", repo.Identity(), want)
	}
}
