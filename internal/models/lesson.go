package models

// Difficulty tiers a lesson can be tagged with.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Lesson is a static, ordered training unit. Lessons are seeded once and
// never mutated by the running service.
type Lesson struct {
	ID          string        `json:"id" yaml:"id"`
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description" yaml:"description"`
	Difficulty  string        `json:"difficulty" yaml:"difficulty"`
	Category    string        `json:"category" yaml:"category"`
	Content     LessonContent `json:"content" yaml:"content"`
	Points      int           `json:"points" yaml:"points"`
	Order       int           `json:"order" yaml:"order"`
	IsActive    bool          `json:"is_active" yaml:"is_active"`
}

// LessonContent is the structured step payload rendered by the client.
type LessonContent struct {
	Type  string       `json:"type" yaml:"type"`
	Steps []LessonStep `json:"steps" yaml:"steps"`
}

// LessonStep is a single interactive step. The Action tag decides which of
// the optional fields the client reads.
type LessonStep struct {
	Title    string `json:"title" yaml:"title"`
	Content  string `json:"content" yaml:"content"`
	Action   string `json:"action" yaml:"action"`
	Target   string `json:"target,omitempty" yaml:"target,omitempty"`
	From     string `json:"from,omitempty" yaml:"from,omitempty"`
	To       string `json:"to,omitempty" yaml:"to,omitempty"`
	Query    string `json:"query,omitempty" yaml:"query,omitempty"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
}

// StepCount returns the number of steps in the lesson content.
func (l *Lesson) StepCount() int {
	return len(l.Content.Steps)
}
