package inflection

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/inflectionhq/inflection-mcp/internal/domain/model"
)

// Campaign API v2 report endpoints.
const (
	reportRunsPath        = "/campaigns/reports/runs.list"
	reportRunStatsPath    = "/campaigns/reports/runs.list.stats"
	engagementPath        = "/campaigns/reports/stats.recipient_engagement"
	aggregatePath         = "/campaigns/reports/stats.aggregate"
	topLinkPath           = "/campaigns/reports/stats.top_link"
	topEmailClientPrefix  = "/campaigns/reports/stats.top_email_client."
	bounceClassifications = "/campaigns/stats/bounce_classifications"
)

// AggregateStats returns the aggregate counters for a campaign.
func (c *Client) AggregateStats(ctx context.Context, q model.ReportQuery) (json.RawMessage, error) {
	start, end := formatRange(q.Range)
	payload := map[string]any{
		"campaign_id": q.CampaignID,
		"start_date":  start,
		"end_date":    end,
	}
	return c.do(ctx, http.MethodPost, c.campaignURL+aggregatePath, payload)
}

// RecipientEngagement returns per-recipient engagement rows, searched over
// recipient email and name when a keyword is given.
func (c *Client) RecipientEngagement(ctx context.Context, q model.EngagementQuery) (json.RawMessage, error) {
	start, end := formatRange(q.Range)
	payload := map[string]any{
		"campaign_id": q.CampaignID,
		"start_date":  start,
		"end_date":    end,
		"query": map[string]any{
			"search": map[string]any{
				"keyword": q.SearchKeyword,
				"fields":  []string{"email", "name"},
			},
		},
		"page_number": q.PageNumber,
		"page_size":   q.PageSize,
	}
	return c.do(ctx, http.MethodPost, c.campaignURL+engagementPath, payload)
}

// ReportRuns returns the report runs recorded for a campaign.
func (c *Client) ReportRuns(ctx context.Context, q model.RunsQuery) (json.RawMessage, error) {
	start, end := formatRange(q.Range)
	payload := map[string]any{
		"campaign_id":         q.CampaignID,
		"start_date":          start,
		"end_date":            end,
		"page_number":         q.PageNumber,
		"page_size":           q.PageSize,
		"show_non_empty_runs": q.ShowNonEmptyRuns,
	}
	return c.do(ctx, http.MethodPost, c.campaignURL+reportRunsPath, payload)
}

// ReportRunStats returns statistics for specific report runs.
func (c *Client) ReportRunStats(ctx context.Context, campaignID string, runIDs []string) (json.RawMessage, error) {
	payload := map[string]any{
		"campaign_id": campaignID,
		"run_ids":     runIDs,
	}
	return c.do(ctx, http.MethodPost, c.campaignURL+reportRunStatsPath, payload)
}

// TopLinks returns the most-clicked links for a campaign.
func (c *Client) TopLinks(ctx context.Context, q model.ReportQuery) (json.RawMessage, error) {
	start, end := formatRange(q.Range)
	payload := map[string]any{
		"campaign_id": q.CampaignID,
		"start_date":  start,
		"end_date":    end,
		"page_number": q.PageNumber,
		"page_size":   q.PageSize,
	}
	return c.do(ctx, http.MethodPost, c.campaignURL+topLinkPath, payload)
}

// TopEmailClients returns the email-client breakdown for opens or clicks.
func (c *Client) TopEmailClients(ctx context.Context, event model.EmailClientEvent, q model.ReportQuery) (json.RawMessage, error) {
	switch event {
	case model.EmailClientOpen, model.EmailClientClick:
	default:
		return nil, fmt.Errorf("unsupported email client event %q", event)
	}

	start, end := formatRange(q.Range)
	payload := map[string]any{
		"campaign_id": q.CampaignID,
		"start_date":  start,
		"end_date":    end,
		"page_number": q.PageNumber,
		"page_size":   q.PageSize,
	}
	return c.do(ctx, http.MethodPost, c.campaignURL+topEmailClientPrefix+string(event), payload)
}

// BounceStats returns bounce counts grouped by bounce classification. This
// lives on the v3 campaign API and is the one GET endpoint with query-string
// parameters.
func (c *Client) BounceStats(ctx context.Context, campaignID string, r model.DateRange) (json.RawMessage, error) {
	start, end := formatRange(r)

	params := url.Values{}
	params.Set("view", "aggregate")
	params.Set("group_by", "bounce_classification")
	params.Set("event", "bounce")
	params.Set("start_date", start)
	params.Set("end_date", end)

	endpoint := fmt.Sprintf("%s/campaigns/%s/stats?%s", c.campaignV3URL, url.PathEscape(campaignID), params.Encode())
	return c.do(ctx, http.MethodGet, endpoint, nil)
}

// BounceClassifications returns the bounce classification reference data.
func (c *Client) BounceClassifications(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, c.campaignV3URL+bounceClassifications, nil)
}

// formatRange renders a date range the way the report endpoints expect.
// Zero ends default to the last thirty days.
func formatRange(r model.DateRange) (string, string) {
	end := r.End
	if end.IsZero() {
		end = time.Now()
	}
	start := r.Start
	if start.IsZero() {
		start = end.AddDate(0, 0, -30)
	}
	return start.Format(time.RFC3339), end.Format(time.RFC3339)
}
