// Package session drives the client-side training flow: the dashboard /
// lesson state machine, the step walker, and the locally persisted progress
// mirror used for optimistic rendering.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shelter-training/maps-trainer/internal/badges"
	"github.com/shelter-training/maps-trainer/internal/models"
)

// State is the controller's current view.
type State int

const (
	// StateDashboard shows the catalog and aggregate progress.
	StateDashboard State = iota
	// StateLesson walks a single lesson step by step.
	StateLesson
)

var (
	// ErrNotInLesson is returned for step operations outside a lesson.
	ErrNotInLesson = errors.New("no lesson in progress")
	// ErrLessonInProgress is returned when starting a lesson over another.
	ErrLessonInProgress = errors.New("a lesson is already in progress")
	// ErrNotFinalStep is returned when completing before the last step.
	ErrNotFinalStep = errors.New("lesson can only be completed from the final step")
)

// CompletionEvent carries one finished lesson from the lesson view back to
// the dashboard over a typed channel.
type CompletionEvent struct {
	LessonID  string
	Points    int
	TimeSpent int
}

// CompletionResult reports what a Complete call did.
type CompletionResult struct {
	Event CompletionEvent
	// NewBadges earned by this completion, from the shared evaluator.
	NewBadges []string
	// ServerSynced is false when the completion was applied to the local
	// mirror only, e.g. offline. The server record stays authoritative and
	// overwrites the mirror on the next successful refresh.
	ServerSynced bool
}

// ProgressReporter is the slice of the API client the controller needs.
type ProgressReporter interface {
	UpdateProgress(ctx context.Context, lessonID string, score, timeSpent int) ([]string, error)
}

// Controller owns the client-side training session.
type Controller struct {
	mu       sync.Mutex
	api      ProgressReporter
	mirror   MirrorStore
	progress *Progress

	state     State
	lesson    *models.Lesson
	step      int
	startedAt time.Time

	now    func() time.Time
	events chan CompletionEvent
}

// NewController creates a controller and loads the persisted mirror. api may
// be nil, in which case completions are recorded locally only.
func NewController(api ProgressReporter, mirror MirrorStore) (*Controller, error) {
	progress, err := mirror.Load()
	if err != nil {
		return nil, err
	}

	return &Controller{
		api:      api,
		mirror:   mirror,
		progress: progress,
		state:    StateDashboard,
		now:      time.Now,
		events:   make(chan CompletionEvent, 8),
	}, nil
}

// Events is the typed channel the dashboard listens on for completions.
func (c *Controller) Events() <-chan CompletionEvent {
	return c.events
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Progress returns a copy of the mirrored progress.
func (c *Controller) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := Progress{
		CompletedLessons: append([]string{}, c.progress.CompletedLessons...),
		TotalScore:       c.progress.TotalScore,
		Badges:           append([]string{}, c.progress.Badges...),
	}
	return cp
}

// StartLesson moves Dashboard -> Lesson: captures the lesson, resets the
// step index and starts the elapsed-time clock.
func (c *Controller) StartLesson(lesson *models.Lesson) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateLesson {
		return ErrLessonInProgress
	}

	c.state = StateLesson
	c.lesson = lesson
	c.step = 0
	c.startedAt = c.now()
	return nil
}

// CurrentStep returns the active step index.
func (c *Controller) CurrentStep() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateLesson {
		return 0, ErrNotInLesson
	}
	return c.step, nil
}

// NextStep advances the step index, clamped to the last step.
func (c *Controller) NextStep() (int, error) {
	return c.moveStep(1)
}

// PrevStep moves back one step, clamped to the first step.
func (c *Controller) PrevStep() (int, error) {
	return c.moveStep(-1)
}

func (c *Controller) moveStep(delta int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateLesson {
		return 0, ErrNotInLesson
	}

	c.step += delta
	if c.step < 0 {
		c.step = 0
	}
	if max := c.lesson.StepCount() - 1; c.step > max {
		c.step = max
	}
	return c.step, nil
}

// Abandon moves Lesson -> Dashboard, discarding in-progress state. No
// partial credit is recorded.
func (c *Controller) Abandon() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateLesson {
		return ErrNotInLesson
	}

	c.state = StateDashboard
	c.lesson = nil
	c.step = 0
	return nil
}

// Complete finishes the lesson from its final step: it measures elapsed
// time, updates the local mirror with the shared badge evaluator, reports
// the completion to the server, emits a typed event, and returns to the
// dashboard. A server failure leaves the optimistic local update in place.
func (c *Controller) Complete(ctx context.Context) (*CompletionResult, error) {
	c.mu.Lock()

	if c.state != StateLesson {
		c.mu.Unlock()
		return nil, ErrNotInLesson
	}
	if c.step != c.lesson.StepCount()-1 {
		c.mu.Unlock()
		return nil, ErrNotFinalStep
	}

	lesson := c.lesson
	elapsed := int(c.now().Sub(c.startedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}

	event := CompletionEvent{
		LessonID:  lesson.ID,
		Points:    lesson.Points,
		TimeSpent: elapsed,
	}

	newBadges := c.applyLocal(lesson.ID, lesson.Points)

	c.state = StateDashboard
	c.lesson = nil
	c.step = 0
	c.mu.Unlock()

	result := &CompletionResult{Event: event, NewBadges: newBadges}

	if c.api != nil {
		serverBadges, err := c.api.UpdateProgress(ctx, lesson.ID, lesson.Points, elapsed)
		if err != nil {
			slog.Warn("failed to report completion, keeping local mirror", "lesson_id", lesson.ID, "error", err)
		} else {
			result.ServerSynced = true
			result.NewBadges = serverBadges
		}
	}

	select {
	case c.events <- event:
	default:
		slog.Warn("completion event dropped, no listener", "lesson_id", lesson.ID)
	}

	return result, nil
}

// applyLocal updates the mirror with the same rules the server applies.
// Caller must hold c.mu.
func (c *Controller) applyLocal(lessonID string, points int) []string {
	if !c.progress.Completed(lessonID) {
		c.progress.CompletedLessons = append(c.progress.CompletedLessons, lessonID)
		c.progress.TotalScore += points
	}

	newBadges := badges.Delta(c.progress.Badges, len(c.progress.CompletedLessons))
	c.progress.Badges = append(c.progress.Badges, newBadges...)

	if err := c.mirror.Save(c.progress); err != nil {
		slog.Warn("failed to persist progress mirror", "error", err)
	}
	return newBadges
}

// SyncFromServer overwrites the mirror with the authoritative server record.
func (c *Controller) SyncFromServer(v *models.Volunteer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.progress = &Progress{
		CompletedLessons: append([]string{}, v.CompletedLessons...),
		TotalScore:       v.TotalScore,
		Badges:           append([]string{}, v.Badges...),
	}
	return c.mirror.Save(c.progress)
}
