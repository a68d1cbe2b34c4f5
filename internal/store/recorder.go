// Package store holds the optional side channels of the demo server: a
// Postgres audit log of served predictions and a Redis prediction cache.
// Neither is on the correctness path of a prediction.
package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"housepredict/internal/common/config"
	"housepredict/internal/feature"
)

// Recorder persists one row per served prediction.
type Recorder interface {
	Record(ctx context.Context, rec feature.Record, prediction float64) error
}

type PostgresRecorder struct {
	db *sqlx.DB
}

func NewPostgresRecorder(db *sqlx.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// Connect opens a Postgres connection pool from config.
func Connect(cfg config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	return db, nil
}

const insertPredictionQuery = `
	INSERT INTO predictions (
		longitude, latitude, housing_median_age, total_rooms,
		total_bedrooms, population, households, median_income,
		ocean_proximity, predicted_price, recorded_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW()
	)`

func (r *PostgresRecorder) Record(ctx context.Context, rec feature.Record, prediction float64) error {
	args := make([]interface{}, 0, len(feature.Names)+1)
	for _, name := range feature.NumericNames {
		v, err := feature.Float(rec[name])
		if err != nil {
			return fmt.Errorf("record prediction: field %q: %w", name, err)
		}
		args = append(args, v)
	}
	prox, _ := rec[feature.CategoricalName].(string)
	args = append(args, prox, prediction)

	_, err := r.db.ExecContext(ctx, insertPredictionQuery, args...)
	return err
}
