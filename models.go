package main

import (
	"time"

	"lg/nutrition-progress-api/nutrition"
	"lg/nutrition-progress-api/progress"
)

/* ─── Domain structs ─────────────────────────────────────────────────── */

// profileRow maps to the profiles table. One row per user.
// InitialWeightKG is informational; the calculator only reads the latest sample.
type profileRow struct {
	UserID          string     `json:"userId"                    db:"user_id"`
	Sex             string     `json:"sex"                       db:"sex"`
	AgeYears        int        `json:"ageYears"                  db:"age_years"`
	HeightCM        float64    `json:"heightCm"                  db:"height_cm"`
	ActivityLevel   string     `json:"activityLevel"             db:"activity_level"`
	TargetWeightKG  float64    `json:"targetWeightKg"            db:"target_weight_kg"`
	InitialWeightKG *float64   `json:"initialWeightKg,omitempty" db:"initial_weight_kg"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"       db:"created_at"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"       db:"updated_at"`
}

func (p profileRow) toProfile() nutrition.Profile {
	return nutrition.Profile{
		UserID:         p.UserID,
		Sex:            nutrition.ParseSex(p.Sex),
		AgeYears:       p.AgeYears,
		HeightCM:       p.HeightCM,
		ActivityLevel:  nutrition.ParseActivityLevel(p.ActivityLevel),
		TargetWeightKG: p.TargetWeightKG,
	}
}

// weightSampleRow maps to weight_samples.
type weightSampleRow struct {
	ID         int64     `json:"id"         db:"id"`
	UserID     string    `json:"userId"     db:"user_id"`
	WeightKG   float64   `json:"weightKg"   db:"weight_kg"`
	RecordedAt time.Time `json:"recordedAt" db:"recorded_at"`
}

func (w weightSampleRow) toSample() progress.Sample {
	return progress.Sample{UserID: w.UserID, WeightKG: w.WeightKG, RecordedAt: w.RecordedAt}
}

func toSamples(rows []weightSampleRow) []progress.Sample {
	samples := make([]progress.Sample, len(rows))
	for i, r := range rows {
		samples[i] = r.toSample()
	}
	return samples
}

/* ─── Requests / responses ───────────────────────────────────────────── */

// targetsRequest is the body of POST /nutrition/targets.
type targetsRequest struct {
	Profile         nutrition.Profile `json:"profile"`
	CurrentWeightKG float64           `json:"currentWeightKg"`
}

type macroPercentages struct {
	ProteinPct float64 `json:"proteinPct"`
	CarbPct    float64 `json:"carbPct"`
	FatPct     float64 `json:"fatPct"`
}

// targetsResponse is shared by POST /nutrition/targets and
// GET /users/:userID/nutrition. CurrentWeight is set only for the stored path.
type targetsResponse struct {
	Targets          nutrition.Targets `json:"targets"`
	MacroPercentages macroPercentages  `json:"macroPercentages"`
	MacroCalories    int               `json:"macroCalories"`
	CurrentWeight    *weightSampleRow  `json:"currentWeight,omitempty"`
}

// trendRequest is the body of POST /progress/trend. Now defaults to the
// server clock and Window to MONTH.
type trendRequest struct {
	Samples []progress.Sample `json:"samples"`
	Window  string            `json:"window"`
	Now     *time.Time        `json:"now"`
}

type trendResponse struct {
	Window          progress.Window       `json:"window"`
	FilteredSamples []progress.Sample     `json:"filteredSamples"`
	Points          []progress.ChartPoint `json:"points"`
	Trend           progress.Trend        `json:"trend"`
}

// putProfileRequest is the body of PUT /users/:userID/profile.
type putProfileRequest struct {
	Sex             string   `json:"sex"`
	AgeYears        int      `json:"ageYears"`
	HeightCM        float64  `json:"heightCm"`
	ActivityLevel   string   `json:"activityLevel"`
	TargetWeightKG  float64  `json:"targetWeightKg"`
	InitialWeightKG *float64 `json:"initialWeightKg"`
}

// addWeightRequest is the body of POST /users/:userID/weights. RecordedAt
// defaults to now.
type addWeightRequest struct {
	WeightKG   float64    `json:"weightKg"`
	RecordedAt *time.Time `json:"recordedAt"`
}
