package model

import "time"

// Journey is a marketing journey (the campaign API calls these campaigns).
type Journey struct {
	ID          string
	Name        string
	Status      string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// JourneyPage is one page of journey listing results.
type JourneyPage struct {
	Journeys   []Journey
	TotalCount int
	PageNumber int
	PageSize   int
}

// JourneyQuery selects a page of journeys, optionally filtered by a name
// search keyword.
type JourneyQuery struct {
	PageSize      int
	PageNumber    int
	SearchKeyword string
}
