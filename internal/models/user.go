package models

import "time"

// User is an authenticated account. Credentials live here; the training
// profile lives on the Volunteer record keyed by UserID.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
