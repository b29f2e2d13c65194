package types

import "time"

// Trip represents a planned getaway owned by a user.
//
// Ownership is denormalized: UserEmail is a plain string, not a foreign
// key, so trips survive independently of the users table and list
// queries filter on it directly.
type Trip struct {
	// ID is the unique identifier of the trip.
	ID int `json:"id" db:"id"`

	// UserEmail is the email address of the owning user.
	UserEmail string `json:"user_email" db:"user_email"`

	// LocationAddress is the free-form destination address.
	LocationAddress string `json:"location_address" db:"location_address"`

	// ImageURL points at the trip's cover image, typically an object
	// storage URL produced by the image upload endpoint.
	ImageURL string `json:"image_url" db:"image_url"`

	// TravelStartDate and TravelEndDate bound the planned travel window.
	// Either may be nil while the trip is still being sketched out.
	TravelStartDate *time.Time `json:"travel_start_date" db:"travel_start_date"`
	TravelEndDate   *time.Time `json:"travel_end_date" db:"travel_end_date"`

	// Expense estimates, in whole currency units. All default to zero.
	StayExpense   float64 `json:"stay_expense" db:"stay_expense"`
	TravelExpense float64 `json:"travel_expense" db:"travel_expense"`
	CarExpense    float64 `json:"car_expense" db:"car_expense"`
	OtherExpense  float64 `json:"other_expense" db:"other_expense"`

	// Activities is a free-form list of planned activities.
	Activities []string `json:"activities" db:"activities"`

	// IsFavorite marks the trip as a favorite in the UI.
	IsFavorite bool `json:"is_favorite" db:"is_favorite"`

	// CreatedAt is the timestamp at which the trip was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the trip.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TripInstance is a date/cost variant of a trip. At most one instance per
// trip may be committed; the database enforces this with a partial unique
// index on (trip_id) where is_committed.
type TripInstance struct {
	// ID is the unique identifier of the instance.
	ID int `json:"id" db:"id"`

	// TripID is the identifier of the trip this instance belongs to.
	TripID int `json:"trip_id" db:"trip_id"`

	// StartDate and EndDate bound this variant's travel window.
	StartDate *time.Time `json:"start_date" db:"start_date"`
	EndDate   *time.Time `json:"end_date" db:"end_date"`

	// Expense estimates for this variant.
	StayExpense   float64 `json:"stay_expense" db:"stay_expense"`
	TravelExpense float64 `json:"travel_expense" db:"travel_expense"`
	CarExpense    float64 `json:"car_expense" db:"car_expense"`
	OtherExpense  float64 `json:"other_expense" db:"other_expense"`

	// IsCommitted marks this variant as the chosen plan for the trip.
	IsCommitted bool `json:"is_committed" db:"is_committed"`

	// CreatedAt is the timestamp at which the instance was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
