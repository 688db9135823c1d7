package shared

import (
	"time"

	"hrdesk/internal/domain/form"
)

// ParseDate accepts RFC3339 or YYYY-MM-DD. An empty value yields the zero time.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return form.ParseDate(value)
}
