package session

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shelter-training/maps-trainer/internal/badges"
	"github.com/shelter-training/maps-trainer/internal/catalog"
	"github.com/shelter-training/maps-trainer/internal/models"
)

// fakeReporter records UpdateProgress calls.
type fakeReporter struct {
	calls []CompletionEvent
	fail  bool
}

func (f *fakeReporter) UpdateProgress(_ context.Context, lessonID string, score, timeSpent int) ([]string, error) {
	if f.fail {
		return nil, errors.New("server unreachable")
	}
	f.calls = append(f.calls, CompletionEvent{LessonID: lessonID, Points: score, TimeSpent: timeSpent})
	return []string{}, nil
}

func lessonByID(t *testing.T, id string) *models.Lesson {
	t.Helper()
	for _, l := range catalog.DefaultLessons() {
		if l.ID == id {
			return l
		}
	}
	t.Fatalf("lesson %s not in default catalog", id)
	return nil
}

func newTestController(t *testing.T, api ProgressReporter) *Controller {
	t.Helper()
	c, err := NewController(api, NewFileStore(t.TempDir()))
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time {
		clock = clock.Add(30 * time.Second)
		return clock
	}
	return c
}

func completeLesson(t *testing.T, c *Controller, id string) *CompletionResult {
	t.Helper()
	lesson := lessonByID(t, id)
	if err := c.StartLesson(lesson); err != nil {
		t.Fatalf("StartLesson(%s) failed: %v", id, err)
	}
	for i := 0; i < lesson.StepCount()-1; i++ {
		if _, err := c.NextStep(); err != nil {
			t.Fatal(err)
		}
	}
	result, err := c.Complete(context.Background())
	if err != nil {
		t.Fatalf("Complete(%s) failed: %v", id, err)
	}
	return result
}

func TestInitialState(t *testing.T) {
	c := newTestController(t, nil)

	if c.State() != StateDashboard {
		t.Errorf("initial state = %v, want dashboard", c.State())
	}
	p := c.Progress()
	if p.TotalScore != 0 || len(p.CompletedLessons) != 0 || len(p.Badges) != 0 {
		t.Errorf("initial progress not empty: %+v", p)
	}
}

func TestStartLessonTransitions(t *testing.T) {
	c := newTestController(t, nil)
	lesson := lessonByID(t, "basics-1")

	if err := c.StartLesson(lesson); err != nil {
		t.Fatal(err)
	}
	if c.State() != StateLesson {
		t.Errorf("state after start = %v, want lesson", c.State())
	}
	if step, _ := c.CurrentStep(); step != 0 {
		t.Errorf("step after start = %d, want 0", step)
	}

	if err := c.StartLesson(lesson); !errors.Is(err, ErrLessonInProgress) {
		t.Errorf("double start: expected ErrLessonInProgress, got %v", err)
	}
}

func TestStepClamping(t *testing.T) {
	c := newTestController(t, nil)
	lesson := lessonByID(t, "basics-1") // 3 steps

	if err := c.StartLesson(lesson); err != nil {
		t.Fatal(err)
	}

	// can't go below 0
	if step, err := c.PrevStep(); err != nil || step != 0 {
		t.Errorf("PrevStep at 0 = (%d, %v), want (0, nil)", step, err)
	}

	// can't go past the last step
	for i := 0; i < 10; i++ {
		if _, err := c.NextStep(); err != nil {
			t.Fatal(err)
		}
	}
	if step, _ := c.CurrentStep(); step != lesson.StepCount()-1 {
		t.Errorf("step after overshoot = %d, want %d", step, lesson.StepCount()-1)
	}
}

func TestStepOutsideLesson(t *testing.T) {
	c := newTestController(t, nil)

	if _, err := c.NextStep(); !errors.Is(err, ErrNotInLesson) {
		t.Errorf("NextStep on dashboard: expected ErrNotInLesson, got %v", err)
	}
	if err := c.Abandon(); !errors.Is(err, ErrNotInLesson) {
		t.Errorf("Abandon on dashboard: expected ErrNotInLesson, got %v", err)
	}
}

func TestAbandonGivesNoCredit(t *testing.T) {
	c := newTestController(t, nil)
	lesson := lessonByID(t, "basics-1")

	if err := c.StartLesson(lesson); err != nil {
		t.Fatal(err)
	}
	if _, err := c.NextStep(); err != nil {
		t.Fatal(err)
	}
	if err := c.Abandon(); err != nil {
		t.Fatal(err)
	}

	if c.State() != StateDashboard {
		t.Errorf("state after abandon = %v, want dashboard", c.State())
	}
	p := c.Progress()
	if p.TotalScore != 0 || len(p.CompletedLessons) != 0 {
		t.Errorf("abandon recorded credit: %+v", p)
	}
}

func TestCompleteOnlyFromFinalStep(t *testing.T) {
	c := newTestController(t, nil)
	lesson := lessonByID(t, "basics-1")

	if err := c.StartLesson(lesson); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Complete(context.Background()); !errors.Is(err, ErrNotFinalStep) {
		t.Errorf("Complete on step 0: expected ErrNotFinalStep, got %v", err)
	}
}

func TestCompleteUpdatesMirrorAndEmitsEvent(t *testing.T) {
	api := &fakeReporter{}
	c := newTestController(t, api)

	result := completeLesson(t, c, "basics-1")

	if c.State() != StateDashboard {
		t.Errorf("state after complete = %v, want dashboard", c.State())
	}
	if !result.ServerSynced {
		t.Error("completion should have reached the server")
	}
	if result.Event.LessonID != "basics-1" || result.Event.Points != 100 {
		t.Errorf("unexpected event: %+v", result.Event)
	}
	if result.Event.TimeSpent <= 0 {
		t.Errorf("elapsed time not measured: %d", result.Event.TimeSpent)
	}

	p := c.Progress()
	if p.TotalScore != 100 {
		t.Errorf("mirror score = %d, want 100", p.TotalScore)
	}
	if !p.Completed("basics-1") {
		t.Error("mirror missing completed lesson")
	}

	select {
	case ev := <-c.Events():
		if ev != result.Event {
			t.Errorf("channel event %+v != result event %+v", ev, result.Event)
		}
	default:
		t.Error("no event on the completion channel")
	}

	if len(api.calls) != 1 {
		t.Fatalf("server calls = %d, want 1", len(api.calls))
	}
	if api.calls[0].LessonID != "basics-1" || api.calls[0].Points != 100 {
		t.Errorf("unexpected server call: %+v", api.calls[0])
	}
}

func TestCompleteOfflineKeepsLocalMirror(t *testing.T) {
	api := &fakeReporter{fail: true}
	c := newTestController(t, api)

	result := completeLesson(t, c, "basics-1")

	if result.ServerSynced {
		t.Error("completion should not be marked synced when the server fails")
	}
	p := c.Progress()
	if p.TotalScore != 100 || !p.Completed("basics-1") {
		t.Errorf("offline completion lost: %+v", p)
	}
}

func TestLocalBadgeAwards(t *testing.T) {
	c := newTestController(t, nil)

	ids := []string{"basics-1", "navigation-1", "services-1"}
	var last *CompletionResult
	for _, id := range ids {
		last = completeLesson(t, c, id)
	}

	if !reflect.DeepEqual(last.NewBadges, []string{badges.GettingStarted}) {
		t.Errorf("third completion badges = %v, want [Getting Started]", last.NewBadges)
	}
	p := c.Progress()
	if p.TotalScore != 450 {
		t.Errorf("mirror score = %d, want 450", p.TotalScore)
	}
	if !reflect.DeepEqual(p.Badges, []string{badges.GettingStarted}) {
		t.Errorf("mirror badges = %v", p.Badges)
	}
}

func TestRepeatCompletionLocallyIdempotent(t *testing.T) {
	c := newTestController(t, nil)

	completeLesson(t, c, "basics-1")
	<-c.Events()
	completeLesson(t, c, "basics-1")

	p := c.Progress()
	if p.TotalScore != 100 {
		t.Errorf("repeat changed mirror score: %d", p.TotalScore)
	}
	if len(p.CompletedLessons) != 1 {
		t.Errorf("repeat grew mirror set: %v", p.CompletedLessons)
	}
}

func TestMirrorPersistsAcrossControllers(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	c, err := NewController(nil, store)
	if err != nil {
		t.Fatal(err)
	}
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time {
		clock = clock.Add(30 * time.Second)
		return clock
	}
	completeLesson(t, c, "basics-1")

	reloaded, err := NewController(nil, store)
	if err != nil {
		t.Fatal(err)
	}
	p := reloaded.Progress()
	if p.TotalScore != 100 || !p.Completed("basics-1") {
		t.Errorf("mirror did not survive reload: %+v", p)
	}
}

func TestSyncFromServerOverwritesMirror(t *testing.T) {
	c := newTestController(t, nil)
	completeLesson(t, c, "basics-1")

	server := &models.Volunteer{
		TotalScore:       450,
		CompletedLessons: []string{"basics-1", "navigation-1", "services-1"},
		Badges:           []string{badges.GettingStarted},
	}
	if err := c.SyncFromServer(server); err != nil {
		t.Fatal(err)
	}

	p := c.Progress()
	if p.TotalScore != 450 || len(p.CompletedLessons) != 3 {
		t.Errorf("server state did not overwrite mirror: %+v", p)
	}
}
