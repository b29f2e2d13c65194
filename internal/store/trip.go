package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/getaway-genius/apiserver/types"
)

// TripRepository handles persistence for trips.
type TripRepository struct {
	db *sql.DB
}

func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

const tripColumns = `id, user_email, location_address, image_url, travel_start_date, travel_end_date,
		stay_expense, travel_expense, car_expense, other_expense, activities, is_favorite, created_at, updated_at`

func (r *TripRepository) ListByEmail(ctx context.Context, email string) ([]types.Trip, error) {
	const query = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE user_email = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := make([]types.Trip, 0)
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *TripRepository) Get(ctx context.Context, id int) (types.Trip, error) {
	const query = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	trip, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Trip{}, ErrNotFound
		}
		return types.Trip{}, err
	}
	return trip, nil
}

func (r *TripRepository) Create(ctx context.Context, trip types.Trip) (types.Trip, error) {
	now := time.Now()
	trip.CreatedAt = now
	trip.UpdatedAt = now

	activitiesJSON, err := json.Marshal(activitiesOrEmpty(trip.Activities))
	if err != nil {
		return types.Trip{}, err
	}

	const query = `
		INSERT INTO trips (user_email, location_address, image_url, travel_start_date, travel_end_date,
			stay_expense, travel_expense, car_expense, other_expense, activities, is_favorite, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		trip.UserEmail,
		trip.LocationAddress,
		trip.ImageURL,
		trip.TravelStartDate,
		trip.TravelEndDate,
		trip.StayExpense,
		trip.TravelExpense,
		trip.CarExpense,
		trip.OtherExpense,
		activitiesJSON,
		trip.IsFavorite,
		trip.CreatedAt,
		trip.UpdatedAt,
	).Scan(&trip.ID); err != nil {
		return types.Trip{}, err
	}
	return trip, nil
}

func (r *TripRepository) Update(ctx context.Context, trip types.Trip) (types.Trip, error) {
	trip.UpdatedAt = time.Now()

	activitiesJSON, err := json.Marshal(activitiesOrEmpty(trip.Activities))
	if err != nil {
		return types.Trip{}, err
	}

	const query = `
		UPDATE trips
		SET location_address = $1,
			image_url = $2,
			travel_start_date = $3,
			travel_end_date = $4,
			stay_expense = $5,
			travel_expense = $6,
			car_expense = $7,
			other_expense = $8,
			activities = $9,
			is_favorite = $10,
			updated_at = $11
		WHERE id = $12`
	result, err := r.db.ExecContext(
		ctx,
		query,
		trip.LocationAddress,
		trip.ImageURL,
		trip.TravelStartDate,
		trip.TravelEndDate,
		trip.StayExpense,
		trip.TravelExpense,
		trip.CarExpense,
		trip.OtherExpense,
		activitiesJSON,
		trip.IsFavorite,
		trip.UpdatedAt,
		trip.ID,
	)
	if err != nil {
		return types.Trip{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Trip{}, err
	}
	if affected == 0 {
		return types.Trip{}, ErrNotFound
	}
	return trip, nil
}

// Delete removes the trip and any wishlist snapshots referencing it in a
// single transaction.
func (r *TripRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM wishlist_trips WHERE trip_id = $1`, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, id)
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

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (types.Trip, error) {
	var trip types.Trip
	var activitiesJSON []byte
	if err := row.Scan(
		&trip.ID,
		&trip.UserEmail,
		&trip.LocationAddress,
		&trip.ImageURL,
		&trip.TravelStartDate,
		&trip.TravelEndDate,
		&trip.StayExpense,
		&trip.TravelExpense,
		&trip.CarExpense,
		&trip.OtherExpense,
		&activitiesJSON,
		&trip.IsFavorite,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	); err != nil {
		return types.Trip{}, err
	}
	if err := json.Unmarshal(activitiesJSON, &trip.Activities); err != nil {
		return types.Trip{}, fmt.Errorf("decode activities for trip %d: %w", trip.ID, err)
	}
	return trip, nil
}

func activitiesOrEmpty(activities []string) []string {
	if activities == nil {
		return []string{}
	}
	return activities
}
