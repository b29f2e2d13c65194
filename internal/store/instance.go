package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/getaway-genius/apiserver/types"
)

// InstanceRepository handles persistence for trip instances.
type InstanceRepository struct {
	db *sql.DB
}

func NewInstanceRepository(db *sql.DB) *InstanceRepository {
	return &InstanceRepository{db: db}
}

const instanceColumns = `id, trip_id, start_date, end_date,
		stay_expense, travel_expense, car_expense, other_expense, is_committed, created_at`

func (r *InstanceRepository) ListByTrip(ctx context.Context, tripID int) ([]types.TripInstance, error) {
	const query = `
		SELECT ` + instanceColumns + `
		FROM trip_instances
		WHERE trip_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	instances := make([]types.TripInstance, 0)
	for rows.Next() {
		instance, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return instances, nil
}

func (r *InstanceRepository) Get(ctx context.Context, id int) (types.TripInstance, error) {
	const query = `
		SELECT ` + instanceColumns + `
		FROM trip_instances
		WHERE id = $1`
	instance, err := scanInstance(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.TripInstance{}, ErrNotFound
		}
		return types.TripInstance{}, err
	}
	return instance, nil
}

func (r *InstanceRepository) Create(ctx context.Context, instance types.TripInstance) (types.TripInstance, error) {
	instance.CreatedAt = time.Now()
	instance.IsCommitted = false

	const query = `
		INSERT INTO trip_instances (trip_id, start_date, end_date, stay_expense, travel_expense, car_expense, other_expense, is_committed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		instance.TripID,
		instance.StartDate,
		instance.EndDate,
		instance.StayExpense,
		instance.TravelExpense,
		instance.CarExpense,
		instance.OtherExpense,
		instance.IsCommitted,
		instance.CreatedAt,
	).Scan(&instance.ID); err != nil {
		return types.TripInstance{}, err
	}
	return instance, nil
}

// Update writes the instance's dates and expenses and returns the row
// as stored, so the committed flag and creation time reflect the
// database rather than the caller's input.
func (r *InstanceRepository) Update(ctx context.Context, instance types.TripInstance) (types.TripInstance, error) {
	const query = `
		UPDATE trip_instances
		SET start_date = $1,
			end_date = $2,
			stay_expense = $3,
			travel_expense = $4,
			car_expense = $5,
			other_expense = $6
		WHERE id = $7
		RETURNING trip_id, is_committed, created_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		instance.StartDate,
		instance.EndDate,
		instance.StayExpense,
		instance.TravelExpense,
		instance.CarExpense,
		instance.OtherExpense,
		instance.ID,
	).Scan(&instance.TripID, &instance.IsCommitted, &instance.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.TripInstance{}, ErrNotFound
		}
		return types.TripInstance{}, err
	}
	return instance, nil
}

func (r *InstanceRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM trip_instances WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Commit marks the target instance as the trip's chosen plan. The clear
// and set run in one transaction; the partial unique index on
// trip_instances backstops concurrent committers, which surface here as
// ErrConflict.
func (r *InstanceRepository) Commit(ctx context.Context, tripID, instanceID int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE trip_instances SET is_committed = FALSE WHERE trip_id = $1 AND is_committed`,
		tripID,
	); err != nil {
		return err
	}

	result, err := tx.ExecContext(
		ctx,
		`UPDATE trip_instances SET is_committed = TRUE WHERE id = $1 AND trip_id = $2`,
		instanceID,
		tripID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// Uncommit clears the committed flag on the target instance.
func (r *InstanceRepository) Uncommit(ctx context.Context, tripID, instanceID int) error {
	const query = `
		UPDATE trip_instances SET is_committed = FALSE WHERE id = $1 AND trip_id = $2`
	result, err := r.db.ExecContext(ctx, query, instanceID, tripID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanInstance(row rowScanner) (types.TripInstance, error) {
	var instance types.TripInstance
	if err := row.Scan(
		&instance.ID,
		&instance.TripID,
		&instance.StartDate,
		&instance.EndDate,
		&instance.StayExpense,
		&instance.TravelExpense,
		&instance.CarExpense,
		&instance.OtherExpense,
		&instance.IsCommitted,
		&instance.CreatedAt,
	); err != nil {
		return types.TripInstance{}, err
	}
	return instance, nil
}
