package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// errNotFound is returned by a profileStore when the requested row is absent.
var errNotFound = errors.New("not found")

const pgForeignKeyViolation = "23503"

// profileStore persists profiles and weight samples. It is the data source
// for the engine; targets and trends are never stored.
type profileStore interface {
	UpsertProfile(ctx context.Context, p profileRow) (profileRow, error)
	GetProfile(ctx context.Context, userID string) (profileRow, error)
	AddWeight(ctx context.Context, userID string, weightKG float64, recordedAt time.Time) (weightSampleRow, error)
	ListWeights(ctx context.Context, userID string) ([]weightSampleRow, error)
	LatestWeight(ctx context.Context, userID string) (weightSampleRow, error)
	DeleteWeight(ctx context.Context, userID string, id int64) error
	Ping(ctx context.Context) error
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// pgx.ErrNoRows is translated to errNotFound.
func queryOne[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args pgx.NamedArgs) (T, error) {
	var zero T
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Errorf("[queryOne] query error: %v", err)
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, errNotFound
	}
	if err != nil {
		log.Errorf("[queryOne] scan error: %v", err)
		return zero, err
	}
	return result, nil
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Errorf("[queryMany] query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Errorf("[queryMany] scan error: %v", err)
	}
	return results, err
}

// getDBPool creates a connection pool. A pool (not a single conn) survives
// providers that close idle connections.
func getDBPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse DB URL: %w", err)
	}
	// Simple protocol avoids "cached plan must not change result type" after
	// schema changes on poolers with a server-side statement cache.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

/* ─── Postgres store ──────────────────────────────────────────────────── */

type pgStore struct {
	pool *pgxpool.Pool
}

func newPGStore(pool *pgxpool.Pool) *pgStore {
	return &pgStore{pool: pool}
}

const profileColumns = `user_id, sex, age_years, height_cm, activity_level,
	target_weight_kg, initial_weight_kg, created_at, updated_at`

const weightColumns = `id, user_id, weight_kg, recorded_at`

func (s *pgStore) UpsertProfile(ctx context.Context, p profileRow) (profileRow, error) {
	row, err := queryOne[profileRow](ctx, s.pool,
		`INSERT INTO profiles (user_id, sex, age_years, height_cm, activity_level, target_weight_kg, initial_weight_kg)
		 VALUES (@userID, @sex, @ageYears, @heightCM, @activityLevel, @targetWeightKG, @initialWeightKG)
		 ON CONFLICT (user_id) DO UPDATE SET
			sex               = EXCLUDED.sex,
			age_years         = EXCLUDED.age_years,
			height_cm         = EXCLUDED.height_cm,
			activity_level    = EXCLUDED.activity_level,
			target_weight_kg  = EXCLUDED.target_weight_kg,
			initial_weight_kg = COALESCE(EXCLUDED.initial_weight_kg, profiles.initial_weight_kg),
			updated_at        = NOW()
		 RETURNING `+profileColumns,
		pgx.NamedArgs{
			"userID":          p.UserID,
			"sex":             p.Sex,
			"ageYears":        p.AgeYears,
			"heightCM":        p.HeightCM,
			"activityLevel":   p.ActivityLevel,
			"targetWeightKG":  p.TargetWeightKG,
			"initialWeightKG": p.InitialWeightKG,
		})
	if err != nil {
		return profileRow{}, fmt.Errorf("upsert profile %s: %w", p.UserID, err)
	}
	return row, nil
}

func (s *pgStore) GetProfile(ctx context.Context, userID string) (profileRow, error) {
	row, err := queryOne[profileRow](ctx, s.pool,
		"SELECT "+profileColumns+" FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return profileRow{}, fmt.Errorf("get profile %s: %w", userID, err)
	}
	return row, nil
}

func (s *pgStore) AddWeight(ctx context.Context, userID string, weightKG float64, recordedAt time.Time) (weightSampleRow, error) {
	row, err := queryOne[weightSampleRow](ctx, s.pool,
		`INSERT INTO weight_samples (user_id, weight_kg, recorded_at)
		 VALUES (@userID, @weightKG, @recordedAt)
		 RETURNING `+weightColumns,
		pgx.NamedArgs{"userID": userID, "weightKG": weightKG, "recordedAt": recordedAt})
	// weight_samples.user_id references profiles
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return weightSampleRow{}, fmt.Errorf("add weight for %s: no profile: %w", userID, errNotFound)
	}
	if err != nil {
		return weightSampleRow{}, fmt.Errorf("add weight for %s: %w", userID, err)
	}
	return row, nil
}

// ListWeights returns the user's samples oldest first.
func (s *pgStore) ListWeights(ctx context.Context, userID string) ([]weightSampleRow, error) {
	rows, err := queryMany[weightSampleRow](ctx, s.pool,
		`SELECT `+weightColumns+` FROM weight_samples
		 WHERE user_id = @userID
		 ORDER BY recorded_at ASC, id ASC`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return nil, fmt.Errorf("list weights for %s: %w", userID, err)
	}
	return rows, nil
}

func (s *pgStore) LatestWeight(ctx context.Context, userID string) (weightSampleRow, error) {
	row, err := queryOne[weightSampleRow](ctx, s.pool,
		`SELECT `+weightColumns+` FROM weight_samples
		 WHERE user_id = @userID
		 ORDER BY recorded_at DESC, id DESC
		 LIMIT 1`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return weightSampleRow{}, fmt.Errorf("latest weight for %s: %w", userID, err)
	}
	return row, nil
}

// DeleteWeight enforces ownership by matching both id and user_id.
func (s *pgStore) DeleteWeight(ctx context.Context, userID string, id int64) error {
	result, err := s.pool.Exec(ctx,
		"DELETE FROM weight_samples WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		return fmt.Errorf("delete weight %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

func (s *pgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
