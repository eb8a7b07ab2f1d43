package itinerary

import (
	"fmt"
)

type ValidationMode int

const (
	// ValidationLenient returns drift issues alongside the itinerary.
	ValidationLenient ValidationMode = iota
	// ValidationStrict rejects an itinerary with any drift issue.
	ValidationStrict
)

func (m ValidationMode) String() string {
	if m == ValidationStrict {
		return "strict"
	}
	return "lenient"
}

// DriftIssue is one place where a reply departs from the requested shape.
type DriftIssue struct {
	Path    string `json:"path"`
	Problem string `json:"problem"`
}

func (d DriftIssue) String() string {
	return d.Path + ": " + d.Problem
}

var (
	activityTimes = map[string]bool{"Morning": true, "Afternoon": true, "Evening": true}
	mealTypes     = map[string]bool{"Breakfast": true, "Lunch": true, "Dinner": true}
)

// Inspect reports structural drift. expectedDays <= 0 skips the day-count check.
func Inspect(it *Itinerary, expectedDays int) []DriftIssue {
	var issues []DriftIssue
	add := func(path, format string, args ...any) {
		issues = append(issues, DriftIssue{Path: path, Problem: fmt.Sprintf(format, args...)})
	}

	if it == nil {
		add("$", "itinerary is missing")
		return issues
	}
	if it.Destination == "" {
		add("destination", "missing")
	}
	if it.StartDate == "" {
		add("startDate", "missing")
	}
	if it.EndDate == "" {
		add("endDate", "missing")
	}
	if expectedDays > 0 && len(it.Days) != expectedDays {
		add("days", "expected %d day entries, got %d", expectedDays, len(it.Days))
	}

	for i, d := range it.Days {
		dp := fmt.Sprintf("days[%d]", i)
		if d.Day != i+1 {
			add(dp+".day", "expected %d, got %d", i+1, d.Day)
		}
		if d.Date == "" {
			add(dp+".date", "missing")
		}
		if d.Activities == nil {
			add(dp+".activities", "missing")
		}
		for j, a := range d.Activities {
			ap := fmt.Sprintf("%s.activities[%d]", dp, j)
			if !activityTimes[a.Time] {
				add(ap+".time", "unexpected value %q", a.Time)
			}
			if a.Title == "" {
				add(ap+".title", "missing")
			}
			if a.EstimatedCost < 0 {
				add(ap+".estimatedCost", "negative value %v", float64(a.EstimatedCost))
			}
		}
		for j, m := range d.Meals {
			if !mealTypes[m.Type] {
				add(fmt.Sprintf("%s.meals[%d].type", dp, j), "unexpected value %q", m.Type)
			}
		}
	}
	return issues
}

// check applies the mode to a set of issues.
func (m ValidationMode) check(issues []DriftIssue) error {
	if m == ValidationStrict && len(issues) > 0 {
		return &SchemaDriftError{Issues: issues}
	}
	return nil
}
