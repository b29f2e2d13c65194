package types

import "time"

// Wishlist is a named, user-owned collection of trip snapshots.
type Wishlist struct {
	ID        int            `json:"id" db:"id"`
	Name      string         `json:"name" db:"name"`
	UserEmail string         `json:"user_email" db:"user_email"`
	Trips     []TripSnapshot `json:"trips"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// TripSnapshot is a denormalized copy of a trip taken when it was added
// to a wishlist. Later edits to the original trip do not propagate here;
// deleting the trip removes the snapshot.
type TripSnapshot struct {
	TripID          int        `json:"trip_id" db:"trip_id"`
	LocationAddress string     `json:"location_address" db:"location_address"`
	ImageURL        string     `json:"image_url" db:"image_url"`
	TravelStartDate *time.Time `json:"travel_start_date" db:"travel_start_date"`
	TravelEndDate   *time.Time `json:"travel_end_date" db:"travel_end_date"`
	StayExpense     float64    `json:"stay_expense" db:"stay_expense"`
	TravelExpense   float64    `json:"travel_expense" db:"travel_expense"`
	CarExpense      float64    `json:"car_expense" db:"car_expense"`
	OtherExpense    float64    `json:"other_expense" db:"other_expense"`
	AddedAt         time.Time  `json:"added_at" db:"added_at"`
}
