package models

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login. ExpiresIn is the token
// lifetime in seconds.
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	User      *User  `json:"user"`
}

// CreateVolunteerRequest registers the caller as a volunteer.
type CreateVolunteerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateProgressRequest reports a lesson completion.
type UpdateProgressRequest struct {
	LessonID  string `json:"lesson_id"`
	Score     int    `json:"score"`
	TimeSpent int    `json:"time_spent_seconds"`
}

// UpdateProgressResponse carries the badges earned by this completion.
type UpdateProgressResponse struct {
	Success   bool     `json:"success"`
	NewBadges []string `json:"new_badges"`
}

// SeedResponse reports how many lessons an initialize call inserted.
type SeedResponse struct {
	Inserted int `json:"inserted"`
}

// CompletionEvent is broadcast on the websocket event stream after every
// successful lesson completion.
type CompletionEvent struct {
	Type      string   `json:"type"`
	Volunteer string   `json:"volunteer"`
	LessonID  string   `json:"lesson_id"`
	Points    int      `json:"points"`
	NewBadges []string `json:"new_badges"`
}
