package nutrition_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lg/nutrition-progress-api/nutrition"
)

// makeProfile builds a valid profile. Tests override individual fields to
// exercise specific branches.
func makeProfile(sex nutrition.Sex, age int, heightCM float64, level nutrition.ActivityLevel, targetKG float64) nutrition.Profile {
	return nutrition.Profile{
		UserID:         "user-1",
		Sex:            sex,
		AgeYears:       age,
		HeightCM:       heightCM,
		ActivityLevel:  level,
		TargetWeightKG: targetKG,
	}
}

// randomProfile draws a plausible adult profile from f.
func randomProfile(f *gofakeit.Faker) nutrition.Profile {
	sex := nutrition.Female
	if f.Bool() {
		sex = nutrition.Male
	}
	levels := []string{"SEDENTARY", "LIGHT", "MODERATE", "ACTIVE", "VERY_ACTIVE"}
	return makeProfile(
		sex,
		f.IntRange(18, 90),
		f.Float64Range(140, 210),
		nutrition.ActivityLevel(f.RandomString(levels)),
		f.Float64Range(45, 140),
	)
}

/* ─── Concrete scenario ──────────────────────────────────────────────── */

// TestComputeTargets_MaleModerateLoss checks every field for a known profile:
// male, 30y, 175cm, moderate, target 70kg, current 80kg.
//
// BMR = 800 + 1093.75 - 150 + 5 = 1748.75 -> 1749
// TDEE = round(1749*1.55) = 2711, target = round(2711*0.85) = 2304
func TestComputeTargets_MaleModerateLoss(t *testing.T) {
	p := makeProfile(nutrition.Male, 30, 175, nutrition.Moderate, 70)

	got, err := nutrition.ComputeTargets(p, 80)
	require.NoError(t, err)

	assert.Equal(t, nutrition.Targets{
		BMRKcal:                1749,
		TDEEKcal:               2711,
		DailyCalorieTargetKcal: 2304,
		ProteinGrams:           202, // 201.6
		CarbGrams:              230, // 230.4
		FatGrams:               64,  // 576/9
		Goal:                   nutrition.WeightLoss,
	}, got)
}

// TestComputeTargets_FemaleConstant verifies the -161 constant: the same
// inputs as the male scenario give a BMR 166 kcal lower.
func TestComputeTargets_FemaleConstant(t *testing.T) {
	male, err := nutrition.ComputeTargets(makeProfile(nutrition.Male, 30, 175, nutrition.Sedentary, 80), 80)
	require.NoError(t, err)
	female, err := nutrition.ComputeTargets(makeProfile(nutrition.Female, 30, 175, nutrition.Sedentary, 80), 80)
	require.NoError(t, err)

	assert.Equal(t, 1749, male.BMRKcal)
	assert.Equal(t, 1583, female.BMRKcal) // 1582.75 rounded
}

// TestComputeTargets_WeightGain checks the 15% surplus and the gain ratio.
func TestComputeTargets_WeightGain(t *testing.T) {
	// BMR = 600 + 1125 - 125 + 5 = 1605; TDEE = round(1605*1.2) = 1926
	p := makeProfile(nutrition.Male, 25, 180, nutrition.Sedentary, 70)

	got, err := nutrition.ComputeTargets(p, 60)
	require.NoError(t, err)

	assert.Equal(t, nutrition.WeightGain, got.Goal)
	assert.Equal(t, 1605, got.BMRKcal)
	assert.Equal(t, 1926, got.TDEEKcal)
	assert.Equal(t, 2215, got.DailyCalorieTargetKcal) // 2214.9
	assert.Equal(t, 138, got.ProteinGrams)            // 2215*0.25/4 = 138.44
	assert.Equal(t, 277, got.CarbGrams)               // 2215*0.50/4 = 276.88
	assert.Equal(t, 62, got.FatGrams)                 // 2215*0.25/9 = 61.53
}

/* ─── Goal dead-band ─────────────────────────────────────────────────── */

func TestComputeTargets_GoalBoundaries(t *testing.T) {
	cases := []struct {
		name    string
		current float64
		target  float64
		want    nutrition.Goal
	}{
		{"equal weights", 70, 70, nutrition.Maintenance},
		{"just under band above target", 70.99, 70, nutrition.Maintenance},
		{"just under band below target", 69.01, 70, nutrition.Maintenance},
		{"exactly one kg above", 71, 70, nutrition.WeightLoss},
		{"exactly one kg below", 69, 70, nutrition.WeightGain},
		{"far above", 100, 70, nutrition.WeightLoss},
		{"far below", 50, 70, nutrition.WeightGain},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := makeProfile(nutrition.Female, 40, 165, nutrition.Light, tc.target)
			got, err := nutrition.ComputeTargets(p, tc.current)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Goal)
		})
	}
}

// TestComputeTargets_MaintenanceKeepsTDEE verifies the calorie target equals
// TDEE inside the dead-band.
func TestComputeTargets_MaintenanceKeepsTDEE(t *testing.T) {
	p := makeProfile(nutrition.Male, 30, 175, nutrition.Moderate, 80.5)
	got, err := nutrition.ComputeTargets(p, 80)
	require.NoError(t, err)

	assert.Equal(t, nutrition.Maintenance, got.Goal)
	assert.Equal(t, got.TDEEKcal, got.DailyCalorieTargetKcal)
}

func TestComputeTargets_DeadBandProperty(t *testing.T) {
	f := gofakeit.New(42)
	for i := 0; i < 500; i++ {
		p := randomProfile(f)
		current := p.TargetWeightKG + f.Float64Range(-0.999, 0.999)
		got, err := nutrition.ComputeTargets(p, current)
		require.NoError(t, err)
		require.Equal(t, nutrition.Maintenance, got.Goal, "current=%v target=%v", current, p.TargetWeightKG)
	}
}

/* ─── Activity levels ────────────────────────────────────────────────── */

// TestComputeTargets_TDEEMonotonic verifies TDEE strictly increases with the
// activity level for a fixed BMR.
func TestComputeTargets_TDEEMonotonic(t *testing.T) {
	levels := []nutrition.ActivityLevel{
		nutrition.Sedentary,
		nutrition.Light,
		nutrition.Moderate,
		nutrition.Active,
		nutrition.VeryActive,
	}

	f := gofakeit.New(7)
	for i := 0; i < 200; i++ {
		base := randomProfile(f)
		current := f.Float64Range(45, 150)

		prev := -1
		for _, level := range levels {
			p := base
			p.ActivityLevel = level
			got, err := nutrition.ComputeTargets(p, current)
			require.NoError(t, err)
			require.Greater(t, got.TDEEKcal, prev, "level %s", level)
			prev = got.TDEEKcal
		}
	}
}

// TestComputeTargets_UnknownActivityFallsBackToModerate verifies that an
// unrecognised level is not an error and uses the MODERATE multiplier.
func TestComputeTargets_UnknownActivityFallsBackToModerate(t *testing.T) {
	moderate, err := nutrition.ComputeTargets(makeProfile(nutrition.Male, 30, 175, nutrition.Moderate, 70), 80)
	require.NoError(t, err)

	for _, level := range []nutrition.ActivityLevel{"", "COUCH_POTATO", "aktivitas sedang"} {
		got, err := nutrition.ComputeTargets(makeProfile(nutrition.Male, 30, 175, level, 70), 80)
		require.NoError(t, err, "level %q", level)
		assert.Equal(t, moderate, got, "level %q", level)
	}
}

func TestParseActivityLevel(t *testing.T) {
	cases := map[string]nutrition.ActivityLevel{
		"sedentary":   nutrition.Sedentary,
		" Light ":     nutrition.Light,
		"MODERATE":    nutrition.Moderate,
		"active":      nutrition.Active,
		"very_active": nutrition.VeryActive,
		"Very Active": nutrition.VeryActive,
		"very-active": nutrition.VeryActive,

		"Sangat Rendah":           nutrition.Sedentary,
		"aktivitas rendah":        nutrition.Light,
		"AKTIVITAS SEDANG":        nutrition.Moderate,
		"Aktivitas Tinggi":        nutrition.Active,
		"AKTIVITAS SANGAT TINGGI": nutrition.VeryActive,

		"extreme": "EXTREME",
		"":        "",
	}
	for in, want := range cases {
		got := nutrition.ParseActivityLevel(in)
		assert.Equal(t, want, got, "input %q", in)
	}
	assert.True(t, nutrition.VeryActive.Known())
	assert.False(t, nutrition.ActivityLevel("EXTREME").Known())
}

func TestParseSex(t *testing.T) {
	assert.Equal(t, nutrition.Male, nutrition.ParseSex("male"))
	assert.Equal(t, nutrition.Male, nutrition.ParseSex(" MALE "))
	assert.Equal(t, nutrition.Male, nutrition.ParseSex("m"))
	assert.Equal(t, nutrition.Female, nutrition.ParseSex("female"))
	assert.Equal(t, nutrition.Female, nutrition.ParseSex("unknown"))

	assert.Equal(t, nutrition.Male, nutrition.ParseSex("pria"))
	assert.Equal(t, nutrition.Female, nutrition.ParseSex("WANITA"))

	assert.True(t, nutrition.KnownSex(" Pria "))
	assert.True(t, nutrition.KnownSex("f"))
	assert.False(t, nutrition.KnownSex("unknown"))
	assert.False(t, nutrition.KnownSex(""))
}

// TestProfile_UnmarshalNormalizesEnums verifies JSON decoding runs the same
// normalization as ParseSex/ParseActivityLevel.
func TestProfile_UnmarshalNormalizesEnums(t *testing.T) {
	var p nutrition.Profile
	err := json.Unmarshal([]byte(`{"userId":"u","sex":"male","ageYears":30,"heightCm":175,"activityLevel":"very active","targetWeightKg":70}`), &p)
	require.NoError(t, err)

	assert.Equal(t, nutrition.Male, p.Sex)
	assert.Equal(t, nutrition.VeryActive, p.ActivityLevel)
	assert.Equal(t, 30, p.AgeYears)
}

/* ─── Input validation ───────────────────────────────────────────────── */

func TestComputeTargets_InvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		mutFn   func(p *nutrition.Profile)
		current float64
		field   string
	}{
		{"zero weight", func(p *nutrition.Profile) {}, 0, "currentWeightKg"},
		{"negative weight", func(p *nutrition.Profile) {}, -3, "currentWeightKg"},
		{"zero height", func(p *nutrition.Profile) { p.HeightCM = 0 }, 80, "heightCm"},
		{"negative height", func(p *nutrition.Profile) { p.HeightCM = -170 }, 80, "heightCm"},
		{"age zero", func(p *nutrition.Profile) { p.AgeYears = 0 }, 80, "ageYears"},
		{"age too high", func(p *nutrition.Profile) { p.AgeYears = 131 }, 80, "ageYears"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := makeProfile(nutrition.Male, 30, 175, nutrition.Moderate, 70)
			tc.mutFn(&p)

			_, err := nutrition.ComputeTargets(p, tc.current)
			require.Error(t, err)
			assert.True(t, errors.Is(err, nutrition.ErrInvalidInput))

			var invalid *nutrition.InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tc.field, invalid.Field)
		})
	}
}

func TestComputeTargets_AgeBoundsInclusive(t *testing.T) {
	for _, age := range []int{1, 130} {
		_, err := nutrition.ComputeTargets(makeProfile(nutrition.Female, age, 160, nutrition.Light, 60), 60)
		assert.NoError(t, err, "age %d", age)
	}
}

/* ─── Determinism and conservation ───────────────────────────────────── */

func TestComputeTargets_Deterministic(t *testing.T) {
	f := gofakeit.New(1)
	for i := 0; i < 200; i++ {
		p := randomProfile(f)
		current := f.Float64Range(40, 160)

		first, err := nutrition.ComputeTargets(p, current)
		require.NoError(t, err)
		for j := 0; j < 3; j++ {
			again, err := nutrition.ComputeTargets(p, current)
			require.NoError(t, err)
			require.Equal(t, first, again)
		}
	}
}

// TestComputeTargets_MacroResidualBounded verifies the rounded grams stay
// within the worst-case per-macro rounding error of the calorie target
// (0.5g*4 + 0.5g*4 + 0.5g*9 = 8.5 kcal).
func TestComputeTargets_MacroResidualBounded(t *testing.T) {
	f := gofakeit.New(99)
	for i := 0; i < 1000; i++ {
		p := randomProfile(f)
		got, err := nutrition.ComputeTargets(p, f.Float64Range(40, 160))
		require.NoError(t, err)

		residual := math.Abs(float64(got.MacroCalories() - got.DailyCalorieTargetKcal))
		require.LessOrEqual(t, residual, 8.5, "targets %+v", got)
	}
}

/* ─── Macro percentages ──────────────────────────────────────────────── */

// TestMacroPercentages_FromGrams verifies percentages are recomputed from the
// rounded grams, not taken from the ratio table.
func TestMacroPercentages_FromGrams(t *testing.T) {
	targets := nutrition.Targets{ProteinGrams: 202, CarbGrams: 231, FatGrams: 64}
	// 808 + 924 + 576 = 2308 kcal
	require.Equal(t, 2308, targets.MacroCalories())

	protein, carb, fat := nutrition.MacroPercentages(targets)
	assert.InDelta(t, 808.0/2308*100, protein, 1e-9)
	assert.InDelta(t, 924.0/2308*100, carb, 1e-9)
	assert.InDelta(t, 576.0/2308*100, fat, 1e-9)
	assert.InDelta(t, 100, protein+carb+fat, 1e-9)

	// close to, but not exactly, the 35/40/25 table
	assert.NotEqual(t, 35.0, protein)
	assert.InDelta(t, 35, protein, 0.5)
}

func TestMacroPercentages_ZeroTargets(t *testing.T) {
	protein, carb, fat := nutrition.MacroPercentages(nutrition.Targets{})
	assert.Zero(t, protein)
	assert.Zero(t, carb)
	assert.Zero(t, fat)
}
