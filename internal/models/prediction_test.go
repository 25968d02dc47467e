package models

import (
	"errors"
	"testing"
	"time"
)

// validPrediction returns a prediction that passes validation.
func validPrediction() *Prediction {
	return &Prediction{
		Name:           "Mark",
		StephGender:    GenderBoy,
		StephWeight:    7.5,
		StephHair:      "Brown",
		StephDate:      "2024-10-31",
		AoifeGender:    GenderGirl,
		AoifeWeight:    8.0,
		AoifeHair:      "Blonde",
		AoifeDate:      "2024-11-02",
		BornFirst:      BornFirstSteph,
		CombinedWeight: 15.5,
		TotalLength:    39.0,
		Donation:       10.0,
		SubmittedAt:    time.Date(2024, 10, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestPredictionValidate(t *testing.T) {
	if err := validPrediction().Validate(); err != nil {
		t.Fatalf("valid prediction rejected: %v", err)
	}
}

func TestPredictionValidate_EmptyName(t *testing.T) {
	p := validPrediction()
	p.Name = "   "

	err := p.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestPredictionValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Prediction)
	}{
		{"bad gender", func(p *Prediction) { p.StephGender = "Unknown" }},
		{"bad hair", func(p *Prediction) { p.AoifeHair = "Green" }},
		{"bad born first", func(p *Prediction) { p.BornFirst = "Neither" }},
		{"weight too low", func(p *Prediction) { p.StephWeight = 2.0 }},
		{"weight too high", func(p *Prediction) { p.AoifeWeight = 14.0 }},
		{"combined weight out of range", func(p *Prediction) { p.CombinedWeight = 30.0 }},
		{"total length out of range", func(p *Prediction) { p.TotalLength = 10.0 }},
		{"negative donation", func(p *Prediction) { p.Donation = -5 }},
		{"bad date", func(p *Prediction) { p.StephDate = "31/10/2024" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPrediction()
			tt.mutate(p)
			if err := p.Validate(); !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestPredictionCSVRoundTrip(t *testing.T) {
	want := validPrediction()

	record := want.CSVRecord()
	if len(record) != len(CSVHeader) {
		t.Fatalf("record has %d fields, header has %d", len(record), len(CSVHeader))
	}

	got, err := PredictionFromCSVRecord(record)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if got.Name != want.Name ||
		got.StephGender != want.StephGender ||
		got.StephWeight != want.StephWeight ||
		got.StephHair != want.StephHair ||
		got.StephDate != want.StephDate ||
		got.AoifeGender != want.AoifeGender ||
		got.AoifeWeight != want.AoifeWeight ||
		got.AoifeHair != want.AoifeHair ||
		got.AoifeDate != want.AoifeDate ||
		got.BornFirst != want.BornFirst ||
		got.CombinedWeight != want.CombinedWeight ||
		got.TotalLength != want.TotalLength ||
		got.Donation != want.Donation {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
	if !got.SubmittedAt.Equal(want.SubmittedAt) {
		t.Errorf("submitted at mismatch: got %v want %v", got.SubmittedAt, want.SubmittedAt)
	}
}

func TestPredictionFromCSVRecord_LegacyRowWithoutDonation(t *testing.T) {
	record := validPrediction().CSVRecord()
	record = record[:13] // rows written before the donation column existed

	got, err := PredictionFromCSVRecord(record)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Donation != 0 {
		t.Errorf("expected zero donation, got %v", got.Donation)
	}
}

func TestPredictionFromCSVRecord_ShortRow(t *testing.T) {
	if _, err := PredictionFromCSVRecord([]string{"just", "three", "fields"}); err == nil {
		t.Fatal("expected error for short record")
	}
}
