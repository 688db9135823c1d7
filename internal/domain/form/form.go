// Package form collects field-level validation failures for the role,
// leave, feedback and salary forms.
package form

import (
	"sort"
	"strings"
	"time"
)

type Issue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Errors is an error carrying one or more field issues.
type Errors struct {
	issues []Issue
}

func New() *Errors {
	return &Errors{issues: make([]Issue, 0, 4)}
}

func (e *Errors) Error() string {
	issues := e.Issues()
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		parts = append(parts, issue.Field+": "+issue.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Errors) Add(field, reason string) {
	if e == nil {
		return
	}
	field = strings.TrimSpace(field)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	e.issues = append(e.issues, Issue{Field: field, Reason: reason})
}

func (e *Errors) Required(field, value, reason string) bool {
	if strings.TrimSpace(value) == "" {
		e.Add(field, reason)
		return false
	}
	return true
}

func (e *Errors) Enum(field, value string, allowed []string, reason string) {
	if value == "" {
		return
	}
	for _, candidate := range allowed {
		if value == candidate {
			return
		}
	}
	e.Add(field, reason)
}

// Date parses YYYY-MM-DD or RFC3339. Blank values are reported as required.
func (e *Errors) Date(field, raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		e.Add(field, "This field is required.")
		return time.Time{}, false
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		e.Add(field, "Enter a valid date.")
		return time.Time{}, false
	}
	return parsed, true
}

func (e *Errors) Has(field string) bool {
	for _, issue := range e.issues {
		if issue.Field == field {
			return true
		}
	}
	return false
}

func (e *Errors) HasIssues() bool {
	return e != nil && len(e.issues) > 0
}

// Issues returns a copy sorted by field, then reason.
func (e *Errors) Issues() []Issue {
	if e == nil || len(e.issues) == 0 {
		return nil
	}
	out := make([]Issue, len(e.issues))
	copy(out, e.issues)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Field < out[j].Field
	})
	return out
}

// Err returns nil when no issues were collected.
func (e *Errors) Err() error {
	if !e.HasIssues() {
		return nil
	}
	return e
}

func ParseDate(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", value)
}

func AllDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func Alphanumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if !isLetter(r) && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
