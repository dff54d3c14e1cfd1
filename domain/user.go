package domain

import "time"

// User represents an authenticated identity. The demo login upserts one of
// these; every buyer record points back at its creating user.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
