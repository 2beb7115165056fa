package inflection

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/inflectionhq/inflection-mcp/internal/domain/model"
)

const journeysPath = "/campaigns/campaign.list"

// journeyListRequest is the wire payload for the campaign listing endpoint.
type journeyListRequest struct {
	PageSize   int          `json:"page_size"`
	PageNumber int          `json:"page_number"`
	Query      journeyQuery `json:"query"`
}

type journeyQuery struct {
	Search journeySearch `json:"search"`
}

type journeySearch struct {
	Keyword string   `json:"keyword"`
	Fields  []string `json:"fields"`
}

type journeyListResponse struct {
	Records    []journeyRecord `json:"records"`
	TotalCount int             `json:"total_count"`
	PageNumber int             `json:"page_number"`
	PageSize   int             `json:"page_size"`
}

type journeyRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Description string `json:"description"`
	TimeCreated string `json:"time_created"`
	TimeUpdated string `json:"time_updated"`
}

// ListJourneys returns one page of journeys, filtered by name when the query
// carries a search keyword.
func (c *Client) ListJourneys(ctx context.Context, q model.JourneyQuery) (*model.JourneyPage, error) {
	payload := journeyListRequest{
		PageSize:   q.PageSize,
		PageNumber: q.PageNumber,
		Query: journeyQuery{
			Search: journeySearch{
				Keyword: q.SearchKeyword,
				Fields:  []string{"name"},
			},
		},
	}

	body, err := c.do(ctx, http.MethodPost, c.campaignURL+journeysPath, payload)
	if err != nil {
		return nil, err
	}

	var resp journeyListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding journey list: %w", err)
	}

	page := &model.JourneyPage{
		Journeys:   make([]model.Journey, 0, len(resp.Records)),
		TotalCount: resp.TotalCount,
		PageNumber: resp.PageNumber,
		PageSize:   resp.PageSize,
	}
	if page.PageNumber == 0 {
		page.PageNumber = q.PageNumber
	}
	if page.PageSize == 0 {
		page.PageSize = q.PageSize
	}
	for _, rec := range resp.Records {
		page.Journeys = append(page.Journeys, mapJourney(rec))
	}

	return page, nil
}

func mapJourney(rec journeyRecord) model.Journey {
	return model.Journey{
		ID:          rec.ID,
		Name:        rec.Name,
		Status:      rec.Status,
		Description: rec.Description,
		CreatedAt:   parseUpstreamTime(rec.TimeCreated),
		UpdatedAt:   parseUpstreamTime(rec.TimeUpdated),
	}
}

// parseUpstreamTime accepts the timestamp shapes the campaign API emits.
// Unparseable values map to the zero time rather than failing the listing.
func parseUpstreamTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
