package application

import (
	"fmt"
	"regexp"
	"time"

	"github.com/inflectionhq/inflection-mcp/internal/domain/model"
)

// Paging bounds for journey listing; requests outside these are clamped.
const (
	defaultPageSize = 30
	maxPageSize     = 100
)

var journeyIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateJourneyID checks that a journey ID is non-empty and uses only the
// characters the campaign API issues. Rejecting early keeps malformed input
// out of request URLs.
func ValidateJourneyID(id string) error {
	if id == "" {
		return fmt.Errorf("journey ID is required")
	}
	if !journeyIDPattern.MatchString(id) {
		return fmt.Errorf("journey ID %q contains invalid characters", id)
	}
	return nil
}

// clampPaging normalizes page size and number into the supported ranges.
func clampPaging(pageSize, pageNumber int) (int, int) {
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if pageNumber < 1 {
		pageNumber = 1
	}
	return pageSize, pageNumber
}

// dateLayouts are the formats accepted for report range inputs.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseDateRange parses optional start/end strings into a DateRange. Empty
// strings leave the corresponding end zero, which the client defaults to the
// last thirty days. A range with start after end is rejected.
func ParseDateRange(start, end string) (model.DateRange, error) {
	var r model.DateRange
	var err error

	if start != "" {
		if r.Start, err = parseDate(start); err != nil {
			return model.DateRange{}, fmt.Errorf("invalid start date %q: %w", start, err)
		}
	}
	if end != "" {
		if r.End, err = parseDate(end); err != nil {
			return model.DateRange{}, fmt.Errorf("invalid end date %q: %w", end, err)
		}
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.Start.After(r.End) {
		return model.DateRange{}, fmt.Errorf("start date %s is after end date %s", start, end)
	}
	return r, nil
}

func parseDate(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
