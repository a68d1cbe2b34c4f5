package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housepredict/internal/feature"
)

func newMockRecorder(t *testing.T) (*PostgresRecorder, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRecorder(sqlx.NewDb(db, "sqlmock")), mock
}

func sampleRecord() feature.Record {
	return feature.Record{
		"longitude":          -122.23,
		"latitude":           37.88,
		"housing_median_age": 41.0,
		"total_rooms":        880.0,
		"total_bedrooms":     129.0,
		"population":         322.0,
		"households":         126.0,
		"median_income":      8.3252,
		"ocean_proximity":    "NEAR BAY",
	}
}

func TestPostgresRecorder_Record(t *testing.T) {
	r, mock := newMockRecorder(t)

	mock.ExpectExec("INSERT INTO predictions").
		WithArgs(-122.23, 37.88, 41.0, 880.0, 129.0, 322.0, 126.0, 8.3252, "NEAR BAY", 510787.41).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := r.Record(context.Background(), sampleRecord(), 510787.41)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecorder_NonNumericField(t *testing.T) {
	r, mock := newMockRecorder(t)

	rec := sampleRecord()
	rec["population"] = "a lot"
	err := r.Record(context.Background(), rec, 100000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "population")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecorder_ExecFailurePropagates(t *testing.T) {
	r, mock := newMockRecorder(t)

	mock.ExpectExec("INSERT INTO predictions").
		WillReturnError(assert.AnError)

	err := r.Record(context.Background(), sampleRecord(), 100000)
	require.Error(t, err)
}
