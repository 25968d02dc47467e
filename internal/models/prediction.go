// Package models defines domain models for the event pool system.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Gender values accepted for a baby prediction.
const (
	GenderBoy  = "Boy"
	GenderGirl = "Girl"
)

// BornFirst values for the cross-baby ordering guess.
const (
	BornFirstSteph   = "Steph's baby"
	BornFirstAoife   = "Aoife's baby"
	BornFirstSameDay = "Same day"
)

// HairColors lists the accepted hair color guesses.
var HairColors = []string{"Blonde", "Brown", "Black", "Red", "No hair"}

// Weight bounds enforced at the boundary, matching the collecting widgets.
const (
	MinBabyWeight     = 4.5
	MaxBabyWeight     = 11.0
	MinCombinedWeight = 9.0
	MaxCombinedWeight = 22.0
	MinTotalLength    = 31.5
	MaxTotalLength    = 47.0
)

// Timestamp layouts used in the CSV store.
const (
	DateLayout       = "2006-01-02"
	SubmittedLayout  = "2006-01-02 15:04:05"
	PredictionsTable = "predictions"
)

// Prediction is one immutable guessing-pool submission. Rows are append-only:
// a prediction is never updated or deleted after it is accepted.
type Prediction struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	StephGender    string    `gorm:"size:10" json:"steph_gender"`
	StephWeight    float64   `gorm:"type:decimal(4,1)" json:"steph_weight"`
	StephHair      string    `gorm:"size:20" json:"steph_hair"`
	StephDate      string    `gorm:"size:10" json:"steph_date"`
	AoifeGender    string    `gorm:"size:10" json:"aoife_gender"`
	AoifeWeight    float64   `gorm:"type:decimal(4,1)" json:"aoife_weight"`
	AoifeHair      string    `gorm:"size:20" json:"aoife_hair"`
	AoifeDate      string    `gorm:"size:10" json:"aoife_date"`
	BornFirst      string    `gorm:"size:20" json:"born_first"`
	CombinedWeight float64   `gorm:"type:decimal(4,1)" json:"combined_weight"`
	TotalLength    float64   `gorm:"type:decimal(4,1)" json:"total_length"`
	Donation       float64   `gorm:"type:decimal(8,2)" json:"donation,omitempty"`
	SubmittedAt    time.Time `gorm:"not null;index" json:"submitted_at"`
}

// TableName specifies the table name for Prediction model.
func (Prediction) TableName() string {
	return PredictionsTable
}

// CSVHeader is the fixed column order of the shared predictions file.
var CSVHeader = []string{
	"Name",
	"Steph Gender", "Steph Weight", "Steph Hair", "Steph Date",
	"Aoife Gender", "Aoife Weight", "Aoife Hair", "Aoife Date",
	"Born First", "Combined Weight", "Total Length",
	"Submission Time", "Donation",
}

// Validate checks a prediction before it is allowed anywhere near the store.
// A missing name is the hard failure; the remaining checks reject values the
// collecting widgets could never have produced.
func (p *Prediction) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if p.StephGender != GenderBoy && p.StephGender != GenderGirl {
		return fmt.Errorf("%w: invalid gender %q", ErrValidation, p.StephGender)
	}
	if p.AoifeGender != GenderBoy && p.AoifeGender != GenderGirl {
		return fmt.Errorf("%w: invalid gender %q", ErrValidation, p.AoifeGender)
	}
	if !validHair(p.StephHair) {
		return fmt.Errorf("%w: invalid hair color %q", ErrValidation, p.StephHair)
	}
	if !validHair(p.AoifeHair) {
		return fmt.Errorf("%w: invalid hair color %q", ErrValidation, p.AoifeHair)
	}
	switch p.BornFirst {
	case BornFirstSteph, BornFirstAoife, BornFirstSameDay:
	default:
		return fmt.Errorf("%w: invalid born-first guess %q", ErrValidation, p.BornFirst)
	}
	if p.StephWeight < MinBabyWeight || p.StephWeight > MaxBabyWeight {
		return fmt.Errorf("%w: weight %.1f out of range", ErrValidation, p.StephWeight)
	}
	if p.AoifeWeight < MinBabyWeight || p.AoifeWeight > MaxBabyWeight {
		return fmt.Errorf("%w: weight %.1f out of range", ErrValidation, p.AoifeWeight)
	}
	if p.CombinedWeight < MinCombinedWeight || p.CombinedWeight > MaxCombinedWeight {
		return fmt.Errorf("%w: combined weight %.1f out of range", ErrValidation, p.CombinedWeight)
	}
	if p.TotalLength < MinTotalLength || p.TotalLength > MaxTotalLength {
		return fmt.Errorf("%w: total length %.1f out of range", ErrValidation, p.TotalLength)
	}
	if p.Donation < 0 {
		return fmt.Errorf("%w: donation cannot be negative", ErrValidation)
	}
	for _, date := range []string{p.StephDate, p.AoifeDate} {
		if _, err := time.Parse(DateLayout, date); err != nil {
			return fmt.Errorf("%w: invalid date %q", ErrValidation, date)
		}
	}
	return nil
}

func validHair(hair string) bool {
	for _, h := range HairColors {
		if h == hair {
			return true
		}
	}
	return false
}

// CSVRecord encodes the prediction as one row in the shared file's column
// order. Commas cannot appear in any field given the validated vocabularies.
func (p *Prediction) CSVRecord() []string {
	return []string{
		p.Name,
		p.StephGender, formatWeight(p.StephWeight), p.StephHair, p.StephDate,
		p.AoifeGender, formatWeight(p.AoifeWeight), p.AoifeHair, p.AoifeDate,
		p.BornFirst, formatWeight(p.CombinedWeight), formatWeight(p.TotalLength),
		p.SubmittedAt.Format(SubmittedLayout),
		strconv.FormatFloat(p.Donation, 'f', 2, 64),
	}
}

// PredictionFromCSVRecord decodes one stored row. Rows written before the
// donation column was added are one field short and default to zero.
func PredictionFromCSVRecord(record []string) (*Prediction, error) {
	if len(record) < len(CSVHeader)-1 {
		return nil, fmt.Errorf("short record: got %d fields, want at least %d", len(record), len(CSVHeader)-1)
	}

	p := &Prediction{
		Name:        record[0],
		StephGender: record[1],
		StephHair:   record[3],
		StephDate:   record[4],
		AoifeGender: record[5],
		AoifeHair:   record[7],
		AoifeDate:   record[8],
		BornFirst:   record[9],
	}

	var err error
	if p.StephWeight, err = strconv.ParseFloat(record[2], 64); err != nil {
		return nil, fmt.Errorf("parse steph weight: %w", err)
	}
	if p.AoifeWeight, err = strconv.ParseFloat(record[6], 64); err != nil {
		return nil, fmt.Errorf("parse aoife weight: %w", err)
	}
	if p.CombinedWeight, err = strconv.ParseFloat(record[10], 64); err != nil {
		return nil, fmt.Errorf("parse combined weight: %w", err)
	}
	if p.TotalLength, err = strconv.ParseFloat(record[11], 64); err != nil {
		return nil, fmt.Errorf("parse total length: %w", err)
	}
	if p.SubmittedAt, err = time.Parse(SubmittedLayout, record[12]); err != nil {
		return nil, fmt.Errorf("parse submission time: %w", err)
	}
	if len(record) > 13 && record[13] != "" {
		if p.Donation, err = strconv.ParseFloat(record[13], 64); err != nil {
			return nil, fmt.Errorf("parse donation: %w", err)
		}
	}

	return p, nil
}

func formatWeight(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
