package models

import "time"

// Volunteer is the training profile for an authenticated user. The score,
// completed-lesson set and badge set only ever grow; badges are always the
// exact evaluator output for the completed-lesson count.
type Volunteer struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	JoinDate         time.Time `json:"join_date"`
	TotalScore       int       `json:"total_score"`
	CompletedLessons []string  `json:"completed_lessons"`
	Badges           []string  `json:"badges"`
}

// HasCompleted reports whether the volunteer has already completed a lesson.
func (v *Volunteer) HasCompleted(lessonID string) bool {
	for _, id := range v.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// ProgressEntry is one immutable completion event in the append-only ledger.
// Current state lives on the Volunteer record; entries are history only.
type ProgressEntry struct {
	ID          string    `json:"id"`
	VolunteerID string    `json:"volunteer_id"`
	LessonID    string    `json:"lesson_id"`
	Score       int       `json:"score"`
	TimeSpent   int       `json:"time_spent_seconds"`
	CompletedAt time.Time `json:"completed_at"`
}

// QuizAnswer is a single per-question answer record.
type QuizAnswer struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
	Correct    bool   `json:"correct"`
}

// QuizResult mirrors the quiz_results table. No current flow writes or reads
// it; the schema is kept for compatibility with the stored data.
type QuizResult struct {
	ID          string       `json:"id"`
	VolunteerID string       `json:"volunteer_id"`
	LessonID    string       `json:"lesson_id"`
	Answers     []QuizAnswer `json:"answers"`
	Score       int          `json:"score"`
	CompletedAt time.Time    `json:"completed_at"`
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank             int    `json:"rank"`
	Name             string `json:"name"`
	TotalScore       int    `json:"total_score"`
	CompletedLessons int    `json:"completed_lessons"`
	Badges           int    `json:"badges"`
}
