package driven

import (
	"context"
	"encoding/json"

	"github.com/inflectionhq/inflection-mcp/internal/domain/model"
)

// MarketingClient defines the driven port for the Inflection.io marketing
// API. Implementations attach the bearer credential and recover from
// credential rejection transparently; callers never handle tokens.
//
// Report payloads are returned as raw JSON because their schemas belong to
// the upstream and this service passes them through unmodified.
type MarketingClient interface {
	// Login performs the credential exchange eagerly. Operations below do
	// this on demand; Login exists so startup can warm the credential store.
	Login(ctx context.Context) error

	// ListJourneys returns one page of journeys matching the query.
	ListJourneys(ctx context.Context, q model.JourneyQuery) (*model.JourneyPage, error)

	// AggregateStats returns the aggregate send/open/click counters for a
	// campaign over the query range.
	AggregateStats(ctx context.Context, q model.ReportQuery) (json.RawMessage, error)

	// RecipientEngagement returns per-recipient engagement rows.
	RecipientEngagement(ctx context.Context, q model.EngagementQuery) (json.RawMessage, error)

	// ReportRuns returns the report runs recorded for a campaign.
	ReportRuns(ctx context.Context, q model.RunsQuery) (json.RawMessage, error)

	// ReportRunStats returns statistics for specific report runs.
	ReportRunStats(ctx context.Context, campaignID string, runIDs []string) (json.RawMessage, error)

	// TopLinks returns the most-clicked links for a campaign.
	TopLinks(ctx context.Context, q model.ReportQuery) (json.RawMessage, error)

	// TopEmailClients returns the email-client breakdown for the given event.
	TopEmailClients(ctx context.Context, event model.EmailClientEvent, q model.ReportQuery) (json.RawMessage, error)

	// BounceStats returns bounce counts grouped by bounce classification
	// (campaign API v3).
	BounceStats(ctx context.Context, campaignID string, r model.DateRange) (json.RawMessage, error)

	// BounceClassifications returns the bounce classification reference data.
	BounceClassifications(ctx context.Context) (json.RawMessage, error)
}
