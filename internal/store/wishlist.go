package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/getaway-genius/apiserver/types"
)

// WishlistRepository handles persistence for wishlists and their trip
// snapshots.
type WishlistRepository struct {
	db *sql.DB
}

func NewWishlistRepository(db *sql.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

func (r *WishlistRepository) Create(ctx context.Context, wishlist types.Wishlist) (types.Wishlist, error) {
	now := time.Now()
	wishlist.CreatedAt = now
	wishlist.UpdatedAt = now

	const query = `
		INSERT INTO wishlists (name, user_email, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		wishlist.Name,
		wishlist.UserEmail,
		wishlist.CreatedAt,
		wishlist.UpdatedAt,
	).Scan(&wishlist.ID); err != nil {
		return types.Wishlist{}, err
	}
	wishlist.Trips = []types.TripSnapshot{}
	return wishlist, nil
}

func (r *WishlistRepository) Get(ctx context.Context, id int) (types.Wishlist, error) {
	const query = `
		SELECT id, name, user_email, created_at, updated_at
		FROM wishlists
		WHERE id = $1`
	var wishlist types.Wishlist
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&wishlist.ID,
		&wishlist.Name,
		&wishlist.UserEmail,
		&wishlist.CreatedAt,
		&wishlist.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Wishlist{}, ErrNotFound
		}
		return types.Wishlist{}, err
	}

	trips, err := r.listSnapshots(ctx, wishlist.ID)
	if err != nil {
		return types.Wishlist{}, err
	}
	wishlist.Trips = trips
	return wishlist, nil
}

func (r *WishlistRepository) ListByEmail(ctx context.Context, email string) ([]types.Wishlist, error) {
	const query = `
		SELECT id, name, user_email, created_at, updated_at
		FROM wishlists
		WHERE user_email = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	wishlists := make([]types.Wishlist, 0)
	for rows.Next() {
		var wishlist types.Wishlist
		if err := rows.Scan(
			&wishlist.ID,
			&wishlist.Name,
			&wishlist.UserEmail,
			&wishlist.CreatedAt,
			&wishlist.UpdatedAt,
		); err != nil {
			return nil, err
		}
		wishlists = append(wishlists, wishlist)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range wishlists {
		trips, err := r.listSnapshots(ctx, wishlists[i].ID)
		if err != nil {
			return nil, err
		}
		wishlists[i].Trips = trips
	}
	return wishlists, nil
}

// AddTrip copies the trip's current state into the wishlist as a snapshot.
func (r *WishlistRepository) AddTrip(ctx context.Context, wishlistID int, trip types.Trip) error {
	const query = `
		INSERT INTO wishlist_trips (wishlist_id, trip_id, location_address, image_url, travel_start_date, travel_end_date,
			stay_expense, travel_expense, car_expense, other_expense, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		wishlistID,
		trip.ID,
		trip.LocationAddress,
		trip.ImageURL,
		trip.TravelStartDate,
		trip.TravelEndDate,
		trip.StayExpense,
		trip.TravelExpense,
		trip.CarExpense,
		trip.OtherExpense,
		time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *WishlistRepository) RemoveTrip(ctx context.Context, wishlistID, tripID int) error {
	const query = `DELETE FROM wishlist_trips WHERE wishlist_id = $1 AND trip_id = $2`
	result, err := r.db.ExecContext(ctx, query, wishlistID, tripID)
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

func (r *WishlistRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM wishlists WHERE id = $1`
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

func (r *WishlistRepository) listSnapshots(ctx context.Context, wishlistID int) ([]types.TripSnapshot, error) {
	const query = `
		SELECT trip_id, location_address, image_url, travel_start_date, travel_end_date,
			stay_expense, travel_expense, car_expense, other_expense, added_at
		FROM wishlist_trips
		WHERE wishlist_id = $1
		ORDER BY added_at`
	rows, err := r.db.QueryContext(ctx, query, wishlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]types.TripSnapshot, 0)
	for rows.Next() {
		var snapshot types.TripSnapshot
		if err := rows.Scan(
			&snapshot.TripID,
			&snapshot.LocationAddress,
			&snapshot.ImageURL,
			&snapshot.TravelStartDate,
			&snapshot.TravelEndDate,
			&snapshot.StayExpense,
			&snapshot.TravelExpense,
			&snapshot.CarExpense,
			&snapshot.OtherExpense,
			&snapshot.AddedAt,
		); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snapshots, nil
}
