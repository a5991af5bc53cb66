// Package badges is the single source of truth for milestone awards. Both
// the server-side progress service and the client session controller call
// into it, so the two can never disagree about thresholds.
package badges

// Badge names in threshold order.
const (
	GettingStarted   = "Getting Started"
	MapsExplorer     = "Maps Explorer"
	NavigationExpert = "Navigation Expert"
)

type threshold struct {
	count int
	name  string
}

// thresholds must stay sorted ascending by count.
var thresholds = []threshold{
	{3, GettingStarted},
	{6, MapsExplorer},
	{10, NavigationExpert},
}

// Evaluate returns every badge held at the given completed-lesson count, in
// threshold order. It is pure and monotone: a larger count always yields a
// superset of a smaller one.
func Evaluate(completedCount int) []string {
	var earned []string
	for _, t := range thresholds {
		if completedCount >= t.count {
			earned = append(earned, t.name)
		}
	}
	return earned
}

// Delta returns the badges earned at completedCount that are not already in
// held, in threshold order. Badges are never revoked: names in held that
// Evaluate would not return are left alone by callers.
func Delta(held []string, completedCount int) []string {
	has := make(map[string]bool, len(held))
	for _, b := range held {
		has[b] = true
	}

	var fresh []string
	for _, b := range Evaluate(completedCount) {
		if !has[b] {
			fresh = append(fresh, b)
		}
	}
	return fresh
}
