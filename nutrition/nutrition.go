// Package nutrition derives daily energy and macronutrient targets from a
// user profile and a current body weight. Every function is pure: the same
// inputs always produce the same Targets.
package nutrition

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Sex selects the Mifflin-St Jeor constant.
type Sex string

const (
	Male   Sex = "MALE"
	Female Sex = "FEMALE"
)

// ActivityLevel selects the TDEE multiplier.
type ActivityLevel string

const (
	Sedentary  ActivityLevel = "SEDENTARY"
	Light      ActivityLevel = "LIGHT"
	Moderate   ActivityLevel = "MODERATE"
	Active     ActivityLevel = "ACTIVE"
	VeryActive ActivityLevel = "VERY_ACTIVE"
)

// Goal is derived from the gap between current and target weight.
type Goal string

const (
	WeightLoss  Goal = "WEIGHT_LOSS"
	Maintenance Goal = "MAINTENANCE"
	WeightGain  Goal = "WEIGHT_GAIN"
)

// MaintenanceBandKg is the dead-band around the target weight inside which
// the goal is MAINTENANCE.
const MaintenanceBandKg = 1.0

const (
	lossFactor = 0.85
	gainFactor = 1.15

	proteinKcalPerGram = 4
	carbKcalPerGram    = 4
	fatKcalPerGram     = 9

	minAgeYears = 1
	maxAgeYears = 130
)

// activityMultipliers maps each activity level to its TDEE multiplier.
// Levels missing from the map fall back to MODERATE.
var activityMultipliers = map[ActivityLevel]float64{
	Sedentary:  1.2,
	Light:      1.375,
	Moderate:   1.55,
	Active:     1.725,
	VeryActive: 1.9,
}

// macroRatio is a (protein, carb, fat) share of the daily calorie target.
type macroRatio struct {
	protein, carb, fat float64
}

var macroRatios = map[Goal]macroRatio{
	WeightLoss:  {protein: 0.35, carb: 0.40, fat: 0.25},
	Maintenance: {protein: 0.30, carb: 0.45, fat: 0.25},
	WeightGain:  {protein: 0.25, carb: 0.50, fat: 0.25},
}

// ErrInvalidInput is matched by every *InvalidInputError via errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError reports a violated numeric precondition.
type InvalidInputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Profile holds the body and lifestyle facts the calculation needs.
type Profile struct {
	UserID         string        `json:"userId"`
	Sex            Sex           `json:"sex"`
	AgeYears       int           `json:"ageYears"`
	HeightCM       float64       `json:"heightCm"`
	ActivityLevel  ActivityLevel `json:"activityLevel"`
	TargetWeightKG float64       `json:"targetWeightKg"`
}

// Targets is the output of ComputeTargets. All energy values are kcal/day.
type Targets struct {
	BMRKcal                int  `json:"bmrKcal"`
	TDEEKcal               int  `json:"tdeeKcal"`
	DailyCalorieTargetKcal int  `json:"dailyCalorieTargetKcal"`
	ProteinGrams           int  `json:"proteinGrams"`
	CarbGrams              int  `json:"carbGrams"`
	FatGrams               int  `json:"fatGrams"`
	Goal                   Goal `json:"goal"`
}

// MacroCalories is the energy implied by the rounded gram targets. It may
// differ from DailyCalorieTargetKcal by a small rounding residual.
func (t Targets) MacroCalories() int {
	return t.ProteinGrams*proteinKcalPerGram + t.CarbGrams*carbKcalPerGram + t.FatGrams*fatKcalPerGram
}

// ComputeTargets computes BMR (Mifflin-St Jeor), TDEE, the goal-adjusted
// daily calorie target and the macro split for the given profile at
// currentWeightKG.
func ComputeTargets(p Profile, currentWeightKG float64) (Targets, error) {
	if err := validate(p, currentWeightKG); err != nil {
		return Targets{}, err
	}

	goal := determineGoal(currentWeightKG, p.TargetWeightKG)
	bmr := basalMetabolicRate(p.Sex, currentWeightKG, p.HeightCM, p.AgeYears)
	tdee := roundHalfUp(float64(bmr) * activityMultiplier(p.ActivityLevel))
	target := dailyCalorieTarget(tdee, goal)

	protein, carb, fat := splitMacros(target, goal)
	return Targets{
		BMRKcal:                bmr,
		TDEEKcal:               tdee,
		DailyCalorieTargetKcal: target,
		ProteinGrams:           protein,
		CarbGrams:              carb,
		FatGrams:               fat,
		Goal:                   goal,
	}, nil
}

// MacroPercentages returns each macro's share of the total macro calories,
// recomputed from the rounded grams rather than the ratio table.
func MacroPercentages(t Targets) (proteinPct, carbPct, fatPct float64) {
	total := float64(t.MacroCalories())
	if total == 0 {
		return 0, 0, 0
	}
	proteinPct = float64(t.ProteinGrams*proteinKcalPerGram) / total * 100
	carbPct = float64(t.CarbGrams*carbKcalPerGram) / total * 100
	fatPct = float64(t.FatGrams*fatKcalPerGram) / total * 100
	return proteinPct, carbPct, fatPct
}

func validate(p Profile, currentWeightKG float64) error {
	if currentWeightKG <= 0 {
		return &InvalidInputError{Field: "currentWeightKg", Value: currentWeightKG, Reason: "must be > 0"}
	}
	if p.HeightCM <= 0 {
		return &InvalidInputError{Field: "heightCm", Value: p.HeightCM, Reason: "must be > 0"}
	}
	if p.AgeYears < minAgeYears || p.AgeYears > maxAgeYears {
		return &InvalidInputError{
			Field:  "ageYears",
			Value:  float64(p.AgeYears),
			Reason: fmt.Sprintf("must be within [%d, %d]", minAgeYears, maxAgeYears),
		}
	}
	return nil
}

func determineGoal(currentKG, targetKG float64) Goal {
	switch {
	case math.Abs(currentKG-targetKG) < MaintenanceBandKg:
		return Maintenance
	case currentKG > targetKG:
		return WeightLoss
	default:
		return WeightGain
	}
}

func basalMetabolicRate(sex Sex, weightKG, heightCM float64, age int) int {
	bmr := 10*weightKG + 6.25*heightCM - 5*float64(age)
	if sex == Male {
		bmr += 5
	} else {
		bmr -= 161
	}
	return roundHalfUp(bmr)
}

func activityMultiplier(level ActivityLevel) float64 {
	if mult, ok := activityMultipliers[level]; ok {
		return mult
	}
	return activityMultipliers[Moderate]
}

func dailyCalorieTarget(tdee int, goal Goal) int {
	switch goal {
	case WeightLoss:
		return roundHalfUp(float64(tdee) * lossFactor)
	case WeightGain:
		return roundHalfUp(float64(tdee) * gainFactor)
	default:
		return tdee
	}
}

// splitMacros converts the goal's ratio of targetKcal into grams. Each macro
// is rounded on its own; the residual is not redistributed.
func splitMacros(targetKcal int, goal Goal) (protein, carb, fat int) {
	ratio := macroRatios[goal]
	kcal := float64(targetKcal)
	protein = roundHalfUp(kcal * ratio.protein / proteinKcalPerGram)
	carb = roundHalfUp(kcal * ratio.carb / carbKcalPerGram)
	fat = roundHalfUp(kcal * ratio.fat / fatKcalPerGram)
	return protein, carb, fat
}

// roundHalfUp rounds .5 toward +Inf, so negative halves (possible only for
// degenerate BMR inputs) round the same way as positive ones.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// sexLabels holds the accepted spellings, including the Indonesian labels
// stored by older mobile clients.
var sexLabels = map[string]Sex{
	"MALE":   Male,
	"M":      Male,
	"PRIA":   Male,
	"FEMALE": Female,
	"F":      Female,
	"WANITA": Female,
}

// activityAliases maps Indonesian activity labels onto the canonical levels.
var activityAliases = map[string]ActivityLevel{
	"SANGAT_RENDAH":           Sedentary,
	"AKTIVITAS_RENDAH":        Light,
	"AKTIVITAS_SEDANG":        Moderate,
	"AKTIVITAS_TINGGI":        Active,
	"AKTIVITAS_SANGAT_TINGGI": VeryActive,
}

// ParseSex normalizes a free-form sex label. Anything that is not
// recognisably male is treated as FEMALE, matching the BMR formula's
// two-way split.
func ParseSex(s string) Sex {
	if sex, ok := sexLabels[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return sex
	}
	return Female
}

// KnownSex reports whether s is one of the accepted sex labels.
func KnownSex(s string) bool {
	_, ok := sexLabels[strings.ToUpper(strings.TrimSpace(s))]
	return ok
}

// ParseActivityLevel normalizes case and separators ("very active",
// "very-active", "very_active" all map to VERY_ACTIVE). Unrecognized labels
// are returned upper-cased and resolve to the MODERATE multiplier when used.
func ParseActivityLevel(s string) ActivityLevel {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	if level, ok := activityAliases[norm]; ok {
		return level
	}
	return ActivityLevel(norm)
}

func (s *Sex) UnmarshalText(b []byte) error {
	*s = ParseSex(string(b))
	return nil
}

func (l *ActivityLevel) UnmarshalText(b []byte) error {
	*l = ParseActivityLevel(string(b))
	return nil
}

// Known reports whether the level has its own multiplier.
func (l ActivityLevel) Known() bool {
	_, ok := activityMultipliers[l]
	return ok
}
