package types

import "time"

// User represents an account in the system.
// It contains identity, profile, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// FirstName is the user's given name.
	FirstName string `json:"fname" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"lname" db:"last_name"`

	// Email is the user's unique email address. Trips and wishlists are
	// keyed by this value rather than by the numeric ID.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Role indicates the user's authorization level. 0 is a regular
	// user; higher values are reserved for administrative roles.
	Role int `json:"role" db:"role"`

	// Birthday is the user's date of birth, as entered at registration.
	Birthday string `json:"birthday" db:"birthday"`

	// City, State and Zip describe the user's home location.
	City  string `json:"city" db:"city"`
	State string `json:"state" db:"state"`
	Zip   string `json:"zip" db:"zip"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
