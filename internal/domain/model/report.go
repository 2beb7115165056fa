package model

import (
	"encoding/json"
	"time"
)

// DateRange bounds a reporting window. Both ends are inclusive as far as the
// upstream API is concerned.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ReportQuery selects campaign report data for a journey over a date range.
type ReportQuery struct {
	CampaignID string
	Range      DateRange
	PageNumber int
	PageSize   int
}

// EngagementQuery selects per-recipient engagement rows, optionally filtered
// by a search keyword over recipient email and name.
type EngagementQuery struct {
	CampaignID    string
	Range         DateRange
	PageNumber    int
	PageSize      int
	SearchKeyword string
}

// RunsQuery selects report runs for a campaign.
type RunsQuery struct {
	CampaignID       string
	Range            DateRange
	PageNumber       int
	PageSize         int
	ShowNonEmptyRuns bool
}

// EmailClientEvent selects which engagement event the top-email-client
// breakdown is computed over.
type EmailClientEvent string

const (
	EmailClientOpen  EmailClientEvent = "open"
	EmailClientClick EmailClientEvent = "click"
)

// EmailReport is the composed report document for one journey. The upstream
// report payloads are opaque to this service and passed through unmodified;
// sections that could not be fetched are left nil and recorded in
// SectionFailures keyed by section name.
type EmailReport struct {
	JourneyID             string
	Range                 DateRange
	Aggregate             json.RawMessage
	Engagement            json.RawMessage
	Runs                  json.RawMessage
	RunStats              json.RawMessage
	TopLinks              json.RawMessage
	EmailClientsOpen      json.RawMessage
	EmailClientsClick     json.RawMessage
	BounceStats           json.RawMessage
	BounceClassifications json.RawMessage
	SectionFailures       map[string]string
}
