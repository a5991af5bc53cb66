// Package catalog holds the lesson catalog: a fixed built-in set of
// interactive map-skills lessons, optionally extended by YAML files loaded
// from a directory at startup.
package catalog

import (
	"errors"

	"github.com/shelter-training/maps-trainer/internal/models"
)

// ErrLessonNotFound is returned when a lesson id does not exist.
var ErrLessonNotFound = errors.New("lesson not found")

// DefaultLessons returns the built-in catalog: six lessons across five
// categories and three difficulty tiers, orders 1-6. The returned slice is
// freshly allocated on every call so callers can never mutate the source.
func DefaultLessons() []*models.Lesson {
	return []*models.Lesson{
		{
			ID:          "basics-1",
			Title:       "Getting Started with Google Maps",
			Description: "Learn the basics of navigating Google Maps and finding locations in Manchester",
			Difficulty:  models.DifficultyBeginner,
			Category:    "basics",
			Content: models.LessonContent{
				Type: "interactive",
				Steps: []models.LessonStep{
					{
						Title:   "Welcome to Google Maps Training",
						Content: "As a Shelter volunteer, you'll use Google Maps to help people find essential services, navigate to appointments, and locate our community hubs. Let's start with the basics!",
						Action:  "introduction",
					},
					{
						Title:   "Finding Our Community Hub",
						Content: "Let's start by finding our main hub: Shelter Community Hub, Swan Buildings, 20 Swan Street, Manchester M4 5JW",
						Action:  "search",
						Target:  "Shelter Community Hub Manchester",
					},
					{
						Title:   "Understanding the Interface",
						Content: "Notice the search bar, map controls, and different view options. The satellite view can be helpful for identifying buildings.",
						Action:  "explore_interface",
					},
				},
			},
			Points:   100,
			Order:    1,
			IsActive: true,
		},
		{
			ID:          "navigation-1",
			Title:       "Getting Directions in Manchester",
			Description: "Learn how to get walking, driving, and public transport directions around Manchester",
			Difficulty:  models.DifficultyBeginner,
			Category:    "navigation",
			Content: models.LessonContent{
				Type: "interactive",
				Steps: []models.LessonStep{
					{
						Title:   "Getting Directions",
						Content: "Help someone get from Manchester Piccadilly Station to our Community Hub using public transport.",
						Action:  "directions",
						From:    "Manchester Piccadilly Station",
						To:      "Swan Buildings, 20 Swan Street, Manchester M4 5JW",
					},
					{
						Title:   "Alternative Routes",
						Content: "Always check alternative routes - sometimes walking might be faster than waiting for a bus!",
						Action:  "compare_routes",
					},
				},
			},
			Points:   150,
			Order:    2,
			IsActive: true,
		},
		{
			ID:          "services-1",
			Title:       "Finding Essential Services",
			Description: "Locate food banks, medical centers, and other essential services around Manchester",
			Difficulty:  models.DifficultyIntermediate,
			Category:    "services",
			Content: models.LessonContent{
				Type: "interactive",
				Steps: []models.LessonStep{
					{
						Title:   "Finding Food Banks",
						Content: "A client needs to find the nearest food bank to Manchester City Centre. Let's help them locate one.",
						Action:  "search_nearby",
						Query:   "food bank Manchester city centre",
					},
					{
						Title:   "Medical Services",
						Content: "Now find the nearest NHS walk-in centre to our Community Hub.",
						Action:  "search_nearby",
						Query:   "NHS walk in centre Manchester M4",
					},
					{
						Title:   "Checking Opening Hours",
						Content: "Always check opening hours and contact details before directing someone to a service.",
						Action:  "check_details",
					},
				},
			},
			Points:   200,
			Order:    3,
			IsActive: true,
		},
		{
			ID:          "accessibility-1",
			Title:       "Accessibility Features",
			Description: "Learn how to find wheelchair accessible routes and locations",
			Difficulty:  models.DifficultyIntermediate,
			Category:    "accessibility",
			Content: models.LessonContent{
				Type: "interactive",
				Steps: []models.LessonStep{
					{
						Title:   "Wheelchair Accessible Routes",
						Content: "Help someone in a wheelchair get from our Community Hub to Manchester Central Library.",
						Action:  "accessible_directions",
						From:    "Swan Buildings, 20 Swan Street, Manchester M4 5JW",
						To:      "Manchester Central Library",
					},
					{
						Title:   "Checking Accessibility",
						Content: "Look for accessibility information in location details - ramps, lifts, accessible toilets.",
						Action:  "check_accessibility",
					},
				},
			},
			Points:   200,
			Order:    4,
			IsActive: true,
		},
		{
			ID:          "emergency-1",
			Title:       "Emergency Situations",
			Description: "Quick location finding for urgent situations",
			Difficulty:  models.DifficultyAdvanced,
			Category:    "emergency",
			Content: models.LessonContent{
				Type: "interactive",
				Steps: []models.LessonStep{
					{
						Title:   "Nearest Hospital",
						Content: "Someone needs urgent medical attention near Piccadilly Gardens. Find the nearest A&E department.",
						Action:  "emergency_search",
						Query:   "A&E hospital Piccadilly Gardens Manchester",
					},
					{
						Title:   "Police Station",
						Content: "Find the nearest police station to report an incident near the Northern Quarter.",
						Action:  "emergency_search",
						Query:   "police station Northern Quarter Manchester",
					},
				},
			},
			Points:   250,
			Order:    5,
			IsActive: true,
		},
		{
			ID:          "advanced-1",
			Title:       "Advanced Features",
			Description: "Street View, offline maps, and sharing locations",
			Difficulty:  models.DifficultyAdvanced,
			Category:    "advanced",
			Content: models.LessonContent{
				Type: "interactive",
				Steps: []models.LessonStep{
					{
						Title:    "Using Street View",
						Content:  "Use Street View to help someone identify the entrance to our Community Hub on Cable Street.",
						Action:   "street_view",
						Location: "Swan Buildings, 20 Swan Street, Manchester M4 5JW",
					},
					{
						Title:   "Sharing Locations",
						Content: "Learn how to share location links via text or WhatsApp for clients without smartphones.",
						Action:  "share_location",
					},
					{
						Title:   "Offline Maps",
						Content: "Download offline maps of Manchester for areas with poor signal.",
						Action:  "offline_maps",
					},
				},
			},
			Points:   300,
			Order:    6,
			IsActive: true,
		},
	}
}
