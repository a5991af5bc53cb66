package storage

import (
	"context"

	"github.com/shelter-training/maps-trainer/internal/models"
)

// Repository defines the persistence interface for the training service.
// Lookup methods return (nil, nil) when the record does not exist; callers
// translate that into their own not-found errors.
type Repository interface {
	// Lessons
	SeedLessons(ctx context.Context, lessons []*models.Lesson) (int, error)
	ListActiveLessons(ctx context.Context) ([]*models.Lesson, error)
	GetLessonByID(ctx context.Context, id string) (*models.Lesson, error)

	// Users
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Volunteers
	CreateVolunteer(ctx context.Context, v *models.Volunteer) error
	GetVolunteerByUserID(ctx context.Context, userID string) (*models.Volunteer, error)
	TopVolunteers(ctx context.Context, limit int) ([]*models.Volunteer, error)

	// Progress. SaveCompletion appends the ledger entry and updates the
	// volunteer summary in a single transaction. The volunteer row is read
	// under a write lock and apply mutates it in place, so two concurrent
	// completions for the same volunteer serialize instead of overwriting
	// each other. Returns the volunteer as written.
	SaveCompletion(ctx context.Context, entry *models.ProgressEntry, volunteerID string, apply func(v *models.Volunteer)) (*models.Volunteer, error)
	ListProgress(ctx context.Context, volunteerID string) ([]*models.ProgressEntry, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}
