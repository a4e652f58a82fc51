// CLI tool to create a profile with a generated user id and an optional
// first weight sample, then print the resulting nutrition targets.
// Usage: go run ./cmd/create-profile
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"lg/nutrition-progress-api/internal/config"
	"lg/nutrition-progress-api/nutrition"
)

// profileInput is what the prompts collect.
type profileInput struct {
	Profile         nutrition.Profile
	InitialWeightKG float64 // 0 when skipped
}

func main() {
	envFile := flag.String("env-file", ".env", "file with DB_URL")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Fatalf("env: %s", err)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		log.Fatalf("unable to connect to database: %s", err)
	}
	defer conn.Close(ctx)

	in, err := readProfile(os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalln(err)
	}
	in.Profile.UserID = uuid.NewString()

	if err := insertProfile(ctx, conn, in); err != nil {
		log.Fatalln(err)
	}

	fmt.Printf("\nProfile created successfully!\n")
	fmt.Printf("  User ID:  %s\n", in.Profile.UserID)

	if in.InitialWeightKG == 0 {
		return
	}
	targets, err := nutrition.ComputeTargets(in.Profile, in.InitialWeightKG)
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Printf("  Goal:     %s\n", targets.Goal)
	fmt.Printf("  BMR:      %d kcal\n", targets.BMRKcal)
	fmt.Printf("  TDEE:     %d kcal\n", targets.TDEEKcal)
	fmt.Printf("  Target:   %d kcal (P %dg / C %dg / F %dg)\n",
		targets.DailyCalorieTargetKcal, targets.ProteinGrams, targets.CarbGrams, targets.FatGrams)
}

// readProfile prompts on out and parses answers from r. Each answer is
// validated before moving on.
func readProfile(r io.Reader, out io.Writer) (profileInput, error) {
	reader := bufio.NewReader(r)
	ask := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read %q: %w", strings.TrimSpace(prompt), err)
		}
		return strings.TrimSpace(line), nil
	}

	var in profileInput

	sex, err := ask("Sex (male/female): ")
	if err != nil {
		return in, err
	}
	if !nutrition.KnownSex(sex) {
		return in, fmt.Errorf("unknown sex %q", sex)
	}
	in.Profile.Sex = nutrition.ParseSex(sex)

	age, err := ask("Age (years): ")
	if err != nil {
		return in, err
	}
	if in.Profile.AgeYears, err = strconv.Atoi(age); err != nil {
		return in, fmt.Errorf("age: %w", err)
	}

	if in.Profile.HeightCM, err = askFloat(ask, "Height (cm): "); err != nil {
		return in, err
	}

	level, err := ask("Activity level (sedentary/light/moderate/active/very active): ")
	if err != nil {
		return in, err
	}
	in.Profile.ActivityLevel = nutrition.ParseActivityLevel(level)
	if !in.Profile.ActivityLevel.Known() {
		return in, fmt.Errorf("unknown activity level %q", level)
	}

	if in.Profile.TargetWeightKG, err = askFloat(ask, "Target weight (kg): "); err != nil {
		return in, err
	}

	initial, err := ask("Current weight in kg (blank to skip): ")
	if err != nil {
		return in, err
	}
	if initial != "" {
		if in.InitialWeightKG, err = strconv.ParseFloat(initial, 64); err != nil {
			return in, fmt.Errorf("current weight: %w", err)
		}
		if in.InitialWeightKG < 30 || in.InitialWeightKG > 300 {
			return in, fmt.Errorf("current weight must be between 30 and 300 kg")
		}
	}

	if in.Profile.AgeYears < 1 || in.Profile.AgeYears > 130 {
		return in, fmt.Errorf("age must be between 1 and 130")
	}
	if in.Profile.HeightCM <= 0 || in.Profile.TargetWeightKG <= 0 {
		return in, fmt.Errorf("height and target weight must be > 0")
	}
	return in, nil
}

func askFloat(ask func(string) (string, error), prompt string) (float64, error) {
	answer, err := ask(prompt)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %w", strings.TrimSpace(prompt), err)
	}
	return v, nil
}

// insertProfile writes the profile and, when given, the first weight sample
// in one transaction.
func insertProfile(ctx context.Context, conn *pgx.Conn, in profileInput) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var initial *float64
	if in.InitialWeightKG > 0 {
		initial = &in.InitialWeightKG
	}
	p := in.Profile
	if _, err := tx.Exec(ctx,
		`INSERT INTO profiles (user_id, sex, age_years, height_cm, activity_level, target_weight_kg, initial_weight_kg)
		 VALUES (@userID, @sex, @ageYears, @heightCM, @activityLevel, @targetWeightKG, @initialWeightKG)`,
		pgx.NamedArgs{
			"userID":          p.UserID,
			"sex":             string(p.Sex),
			"ageYears":        p.AgeYears,
			"heightCM":        p.HeightCM,
			"activityLevel":   string(p.ActivityLevel),
			"targetWeightKG":  p.TargetWeightKG,
			"initialWeightKG": initial,
		}); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	if initial != nil {
		if _, err := tx.Exec(ctx,
			"INSERT INTO weight_samples (user_id, weight_kg, recorded_at) VALUES (@userID, @weightKG, @recordedAt)",
			pgx.NamedArgs{"userID": p.UserID, "weightKG": *initial, "recordedAt": time.Now().UTC()},
		); err != nil {
			return fmt.Errorf("record initial weight: %w", err)
		}
	}

	return tx.Commit(ctx)
}
