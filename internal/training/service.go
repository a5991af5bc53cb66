// Package training implements the volunteer progress service: volunteer
// records, the completion ledger, badge awards and the leaderboard.
package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shelter-training/maps-trainer/internal/badges"
	"github.com/shelter-training/maps-trainer/internal/catalog"
	"github.com/shelter-training/maps-trainer/internal/models"
	"github.com/shelter-training/maps-trainer/internal/storage"
)

// ErrVolunteerNotFound is returned when the caller has no volunteer record.
var ErrVolunteerNotFound = errors.New("volunteer not found")

// DefaultLeaderboardLimit caps the leaderboard when no limit is given.
const DefaultLeaderboardLimit = 10

// Service coordinates volunteer state. All mutations are scoped to the
// authenticated caller's own record, so there is no cross-user write
// contention to manage.
type Service struct {
	repo  storage.Repository
	cache LeaderboardCache
	now   func() time.Time
	newID func() string
}

// NewService creates a training service. cache may be nil, in which case
// every leaderboard read goes to the database.
func NewService(repo storage.Repository, cache LeaderboardCache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
}

// SeedCatalog idempotently inserts the given lessons. Lessons whose id is
// already present are left untouched; returns the number actually inserted.
func (s *Service) SeedCatalog(ctx context.Context, lessons []*models.Lesson) (int, error) {
	inserted, err := s.repo.SeedLessons(ctx, lessons)
	if err != nil {
		return 0, fmt.Errorf("failed to seed catalog: %w", err)
	}
	if inserted > 0 {
		slog.Info("lesson catalog seeded", "inserted", inserted)
	}
	return inserted, nil
}

// ListLessons returns all active lessons in display order.
func (s *Service) ListLessons(ctx context.Context) ([]*models.Lesson, error) {
	return s.repo.ListActiveLessons(ctx)
}

// GetLesson returns a lesson by exact id or catalog.ErrLessonNotFound.
func (s *Service) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	lesson, err := s.repo.GetLessonByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, catalog.ErrLessonNotFound
	}
	return lesson, nil
}

// GetVolunteer returns the volunteer record for a user, or
// ErrVolunteerNotFound if the user has not registered as a volunteer yet.
func (s *Service) GetVolunteer(ctx context.Context, userID string) (*models.Volunteer, error) {
	v, err := s.repo.GetVolunteerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrVolunteerNotFound
	}
	return v, nil
}

// GetOrCreateVolunteer returns the existing volunteer for a user, or creates
// one with zero score, no completed lessons and no badges.
func (s *Service) GetOrCreateVolunteer(ctx context.Context, userID, name, email string) (*models.Volunteer, error) {
	existing, err := s.repo.GetVolunteerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	v := &models.Volunteer{
		ID:               s.newID(),
		UserID:           userID,
		Name:             name,
		Email:            email,
		JoinDate:         s.now(),
		TotalScore:       0,
		CompletedLessons: []string{},
		Badges:           []string{},
	}

	if err := s.repo.CreateVolunteer(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to create volunteer: %w", err)
	}

	slog.Info("volunteer created", "volunteer_id", v.ID, "user_id", userID)
	return v, nil
}

// RecordCompletion applies a lesson completion for the given user:
//
//  1. a progress entry is always appended, including on repeat completions;
//  2. if the lesson is new, it joins the completed set and the score is
//     added to the running total (repeats never change either);
//  3. the badge set is recomputed from the completed count and only grows.
//
// All three effects land in one transaction: the storage layer locks the
// volunteer row and invokes the update against that fresh copy, so two
// concurrent completions for the same volunteer both count. Returns the
// badges earned by this completion (possibly none) and the updated volunteer.
func (s *Service) RecordCompletion(ctx context.Context, userID, lessonID string, score, timeSpent int) ([]string, *models.Volunteer, error) {
	v, err := s.GetVolunteer(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	lesson, err := s.repo.GetLessonByID(ctx, lessonID)
	if err != nil {
		return nil, nil, err
	}
	if lesson == nil {
		return nil, nil, catalog.ErrLessonNotFound
	}

	entry := &models.ProgressEntry{
		ID:          s.newID(),
		VolunteerID: v.ID,
		LessonID:    lessonID,
		Score:       score,
		TimeSpent:   timeSpent,
		CompletedAt: s.now(),
	}

	var newBadges []string
	updated, err := s.repo.SaveCompletion(ctx, entry, v.ID, func(locked *models.Volunteer) {
		newBadges = applyCompletion(locked, lessonID, score)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to save completion: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			slog.Warn("failed to invalidate leaderboard cache", "error", err)
		}
	}

	slog.Info("lesson completed",
		"volunteer_id", v.ID,
		"lesson_id", lessonID,
		"score", score,
		"new_badges", newBadges,
	)

	return newBadges, updated, nil
}

// applyCompletion mutates a volunteer for one completion and returns the
// badges it earned. Repeats leave the score and completed set untouched but
// the badge set is still reconciled against the completed count. Runs inside
// the storage transaction, against the locked row.
func applyCompletion(v *models.Volunteer, lessonID string, score int) []string {
	if !v.HasCompleted(lessonID) {
		v.CompletedLessons = append(v.CompletedLessons, lessonID)
		v.TotalScore += score
	}

	newBadges := badges.Delta(v.Badges, len(v.CompletedLessons))
	v.Badges = append(v.Badges, newBadges...)
	return newBadges
}

// History returns the caller's completion ledger, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]*models.ProgressEntry, error) {
	v, err := s.GetVolunteer(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListProgress(ctx, v.ID)
}

// Leaderboard returns up to limit volunteers ranked by total score. Results
// are served from the cache when available; the database always wins when
// the cache misses or fails.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	if s.cache != nil && limit == DefaultLeaderboardLimit {
		if entries, ok := s.cache.Get(ctx); ok {
			return entries, nil
		}
	}

	entries, err := s.computeLeaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && limit == DefaultLeaderboardLimit {
		if err := s.cache.Set(ctx, entries); err != nil {
			slog.Warn("failed to fill leaderboard cache", "error", err)
		}
	}

	return entries, nil
}

// RefreshLeaderboard recomputes the default leaderboard and rewrites the
// cache. Used by the background refresher.
func (s *Service) RefreshLeaderboard(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	entries, err := s.computeLeaderboard(ctx, DefaultLeaderboardLimit)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, entries)
}

func (s *Service) computeLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	volunteers, err := s.repo.TopVolunteers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	entries := make([]*models.LeaderboardEntry, 0, len(volunteers))
	for i, v := range volunteers {
		entries = append(entries, &models.LeaderboardEntry{
			Rank:             i + 1,
			Name:             v.Name,
			TotalScore:       v.TotalScore,
			CompletedLessons: len(v.CompletedLessons),
			Badges:           len(v.Badges),
		})
	}
	return entries, nil
}
