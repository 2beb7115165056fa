package application_test

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/inflectionhq/inflection-mcp/internal/domain/model"
	"github.com/inflectionhq/inflection-mcp/internal/domain/port/driven"
)

// fakeMarketingClient implements driven.MarketingClient with canned responses
// and per-endpoint error injection.
type fakeMarketingClient struct {
	mu sync.Mutex

	page       *model.JourneyPage
	listErr    error
	listCalls  int
	lastQuery  model.JourneyQuery
	sectionErr map[string]error

	runsPayload   string   // overrides the canned runs response when set
	statsRunIDs   []string // run ids requested from ReportRunStats
	runStatsCalls int
}

var _ driven.MarketingClient = (*fakeMarketingClient)(nil)

func (f *fakeMarketingClient) Login(ctx context.Context) error { return nil }

func (f *fakeMarketingClient) ListJourneys(ctx context.Context, q model.JourneyQuery) (*model.JourneyPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastQuery = q
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.page != nil {
		return f.page, nil
	}
	return &model.JourneyPage{Journeys: []model.Journey{}}, nil
}

func (f *fakeMarketingClient) section(name string, payload string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.sectionErr[name]; err != nil {
		return nil, err
	}
	return json.RawMessage(payload), nil
}

func (f *fakeMarketingClient) AggregateStats(ctx context.Context, q model.ReportQuery) (json.RawMessage, error) {
	return f.section("aggregate", `{"sent": 100}`)
}

func (f *fakeMarketingClient) RecipientEngagement(ctx context.Context, q model.EngagementQuery) (json.RawMessage, error) {
	return f.section("engagement", `{"records": []}`)
}

func (f *fakeMarketingClient) ReportRuns(ctx context.Context, q model.RunsQuery) (json.RawMessage, error) {
	f.mu.Lock()
	payload := f.runsPayload
	f.mu.Unlock()
	if payload == "" {
		payload = `{"data": {"runs": [], "total_count": 0}}`
	}
	return f.section("runs", payload)
}

func (f *fakeMarketingClient) ReportRunStats(ctx context.Context, campaignID string, runIDs []string) (json.RawMessage, error) {
	f.mu.Lock()
	f.runStatsCalls++
	f.statsRunIDs = runIDs
	f.mu.Unlock()
	return f.section("run_stats", `{"stats": []}`)
}

func (f *fakeMarketingClient) TopLinks(ctx context.Context, q model.ReportQuery) (json.RawMessage, error) {
	return f.section("top_links", `{"links": []}`)
}

func (f *fakeMarketingClient) TopEmailClients(ctx context.Context, event model.EmailClientEvent, q model.ReportQuery) (json.RawMessage, error) {
	return f.section("email_clients_"+string(event), `{"clients": ["`+string(event)+`"]}`)
}

func (f *fakeMarketingClient) BounceStats(ctx context.Context, campaignID string, r model.DateRange) (json.RawMessage, error) {
	return f.section("bounce_stats", `{"groups": []}`)
}

func (f *fakeMarketingClient) BounceClassifications(ctx context.Context) (json.RawMessage, error) {
	return f.section("bounce_classifications", `{"classifications": []}`)
}

func (f *fakeMarketingClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeMarketingClient) query() model.JourneyQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQuery
}
