package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/getaway-genius/apiserver/types"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testInstance carries a committed flag to show Create discards it.
func testInstance(tripID int) types.TripInstance {
	return types.TripInstance{
		TripID:        tripID,
		StayExpense:   800,
		TravelExpense: 300,
		IsCommitted:   true,
	}
}

func TestInstanceCommitClearsThenSets(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE trip_instances SET is_committed = FALSE WHERE trip_id = $1 AND is_committed`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE trip_instances SET is_committed = TRUE WHERE id = $1 AND trip_id = $2`)).
		WithArgs(42, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewInstanceRepository(db)
	require.NoError(t, repo.Commit(context.Background(), 7, 42))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInstanceCommitUnknownInstance(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE trip_instances SET is_committed = FALSE WHERE trip_id = $1 AND is_committed`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE trip_instances SET is_committed = TRUE WHERE id = $1 AND trip_id = $2`)).
		WithArgs(42, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := NewInstanceRepository(db)
	assert.ErrorIs(t, repo.Commit(context.Background(), 7, 42), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInstanceCommitConcurrentCommitter(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE trip_instances SET is_committed = FALSE WHERE trip_id = $1 AND is_committed`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE trip_instances SET is_committed = TRUE WHERE id = $1 AND trip_id = $2`)).
		WithArgs(42, 7).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	repo := NewInstanceRepository(db)
	assert.ErrorIs(t, repo.Commit(context.Background(), 7, 42), ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInstanceUpdateReflectsStoredRow(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	createdAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE trip_instances`)).
		WithArgs(nil, nil, 1200.0, 0.0, 0.0, 0.0, 42).
		WillReturnRows(sqlmock.NewRows([]string{"trip_id", "is_committed", "created_at"}).
			AddRow(7, true, createdAt))

	repo := NewInstanceRepository(db)
	updated, err := repo.Update(context.Background(), types.TripInstance{
		ID:          42,
		StayExpense: 1200,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.TripID)
	assert.True(t, updated.IsCommitted)
	assert.Equal(t, createdAt, updated.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInstanceUpdateNotFound(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE trip_instances`)).
		WithArgs(nil, nil, 0.0, 0.0, 0.0, 0.0, 42).
		WillReturnRows(sqlmock.NewRows([]string{"trip_id", "is_committed", "created_at"}))

	repo := NewInstanceRepository(db)
	_, err = repo.Update(context.Background(), types.TripInstance{ID: 42})
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInstanceUncommit(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE trip_instances SET is_committed = FALSE WHERE id = $1 AND trip_id = $2`)).
		WithArgs(42, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewInstanceRepository(db)
	require.NoError(t, repo.Uncommit(context.Background(), 7, 42))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInstanceCreateForcesUncommitted(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO trip_instances`)).
		WithArgs(7, nil, nil, 800.0, 300.0, 0.0, 0.0, false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	repo := NewInstanceRepository(db)
	instance, err := repo.Create(context.Background(), testInstance(7))
	require.NoError(t, err)
	assert.Equal(t, 42, instance.ID)
	assert.False(t, instance.IsCommitted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInstanceGetNotFound(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM trip_instances`)).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewInstanceRepository(db)
	_, err = repo.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
