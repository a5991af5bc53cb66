package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultLessons(t *testing.T) {
	lessons := DefaultLessons()
	if len(lessons) != 6 {
		t.Fatalf("expected 6 built-in lessons, got %d", len(lessons))
	}

	orders := make(map[int]string)
	categories := make(map[string]bool)
	difficulties := make(map[string]bool)

	for _, lesson := range lessons {
		if !lesson.IsActive {
			t.Errorf("built-in lesson %s should be active", lesson.ID)
		}
		if lesson.Points < 100 || lesson.Points > 300 {
			t.Errorf("lesson %s points %d outside 100-300", lesson.ID, lesson.Points)
		}
		if len(lesson.Content.Steps) == 0 {
			t.Errorf("lesson %s has no steps", lesson.ID)
		}
		if other, dup := orders[lesson.Order]; dup {
			t.Errorf("order %d used by both %s and %s", lesson.Order, other, lesson.ID)
		}
		orders[lesson.Order] = lesson.ID
		categories[lesson.Category] = true
		difficulties[lesson.Difficulty] = true
	}

	if len(categories) != 5 {
		t.Errorf("expected 5 categories, got %d", len(categories))
	}
	if len(difficulties) != 3 {
		t.Errorf("expected 3 difficulty tiers, got %d", len(difficulties))
	}
}

func TestDefaultLessonsFreshCopy(t *testing.T) {
	first := DefaultLessons()
	first[0].Title = "mutated"

	second := DefaultLessons()
	if second[0].Title == "mutated" {
		t.Error("DefaultLessons shares state between calls")
	}
}

func TestLoaderListOrdered(t *testing.T) {
	loader := NewLoader()

	lessons := loader.List()
	if len(lessons) != 6 {
		t.Fatalf("expected 6 lessons, got %d", len(lessons))
	}
	for i := 1; i < len(lessons); i++ {
		if lessons[i-1].Order >= lessons[i].Order {
			t.Errorf("lessons not ordered: %d before %d", lessons[i-1].Order, lessons[i].Order)
		}
	}
}

func TestLoaderGet(t *testing.T) {
	loader := NewLoader()

	lesson, err := loader.Get("basics-1")
	if err != nil {
		t.Fatalf("Get(basics-1) failed: %v", err)
	}
	if lesson.Points != 100 {
		t.Errorf("expected 100 points, got %d", lesson.Points)
	}

	if _, err := loader.Get("nonexistent"); !errors.Is(err, ErrLessonNotFound) {
		t.Errorf("expected ErrLessonNotFound, got %v", err)
	}

	// Lookups are case-sensitive.
	if _, err := loader.Get("Basics-1"); !errors.Is(err, ErrLessonNotFound) {
		t.Errorf("expected case-sensitive lookup to miss, got %v", err)
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()

	valid := `
id: local-1
title: Local Walking Tour
description: Learn the streets around the hub on foot
difficulty: beginner
category: basics
points: 120
order: 7
is_active: true
content:
  type: interactive
  steps:
    - title: Walk the block
      content: Trace the route around Swan Street.
      action: directions
      from: Swan Buildings
      to: Swan Buildings
`
	if err := os.WriteFile(filepath.Join(dir, "local-1.yaml"), []byte(valid), 0o644); err != nil {
		t.Fatal(err)
	}

	// Missing id: should be skipped, not fatal.
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("title: no id here\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader()
	if err := loader.LoadFromDir(dir); err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}

	lesson, err := loader.Get("local-1")
	if err != nil {
		t.Fatalf("local lesson not loaded: %v", err)
	}
	if lesson.StepCount() != 1 {
		t.Errorf("expected 1 step, got %d", lesson.StepCount())
	}

	if got := len(loader.List()); got != 7 {
		t.Errorf("expected 7 lessons after dir load, got %d", got)
	}
}

func TestLoadFromFileOverride(t *testing.T) {
	dir := t.TempDir()

	override := `
id: basics-1
title: Getting Started (Leeds Edition)
description: Local override of the basics lesson
difficulty: beginner
category: basics
points: 100
order: 1
is_active: true
content:
  type: interactive
  steps:
    - title: Welcome
      content: Leeds hub welcome step.
      action: introduction
`
	path := filepath.Join(dir, "basics-1.yaml")
	if err := os.WriteFile(path, []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader()
	if err := loader.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	lesson, err := loader.Get("basics-1")
	if err != nil {
		t.Fatal(err)
	}
	if lesson.Title != "Getting Started (Leeds Edition)" {
		t.Errorf("override not applied, got title %q", lesson.Title)
	}
	if got := len(loader.List()); got != 6 {
		t.Errorf("override should not grow the catalog, got %d lessons", got)
	}
}
