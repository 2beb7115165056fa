package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/inflectionhq/inflection-mcp/internal/adapter/driving/http"
	"github.com/inflectionhq/inflection-mcp/internal/application"
	"github.com/inflectionhq/inflection-mcp/internal/domain/model"
	"github.com/inflectionhq/inflection-mcp/internal/domain/port/driven"
)

// fakeClient implements driven.MarketingClient for handler tests.
type fakeClient struct {
	page    *model.JourneyPage
	listErr error
	repErr  error
}

var _ driven.MarketingClient = (*fakeClient)(nil)

func (f *fakeClient) Login(ctx context.Context) error { return nil }

func (f *fakeClient) ListJourneys(ctx context.Context, q model.JourneyQuery) (*model.JourneyPage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.page != nil {
		return f.page, nil
	}
	return &model.JourneyPage{Journeys: []model.Journey{}}, nil
}

func (f *fakeClient) report() (json.RawMessage, error) {
	if f.repErr != nil {
		return nil, f.repErr
	}
	return json.RawMessage(`{"ok": true}`), nil
}

func (f *fakeClient) AggregateStats(ctx context.Context, q model.ReportQuery) (json.RawMessage, error) {
	return f.report()
}

func (f *fakeClient) RecipientEngagement(ctx context.Context, q model.EngagementQuery) (json.RawMessage, error) {
	return f.report()
}

func (f *fakeClient) ReportRuns(ctx context.Context, q model.RunsQuery) (json.RawMessage, error) {
	return f.report()
}

func (f *fakeClient) ReportRunStats(ctx context.Context, campaignID string, runIDs []string) (json.RawMessage, error) {
	return f.report()
}

func (f *fakeClient) TopLinks(ctx context.Context, q model.ReportQuery) (json.RawMessage, error) {
	return f.report()
}

func (f *fakeClient) TopEmailClients(ctx context.Context, event model.EmailClientEvent, q model.ReportQuery) (json.RawMessage, error) {
	return f.report()
}

func (f *fakeClient) BounceStats(ctx context.Context, campaignID string, r model.DateRange) (json.RawMessage, error) {
	return f.report()
}

func (f *fakeClient) BounceClassifications(ctx context.Context) (json.RawMessage, error) {
	return f.report()
}

// discardLogger keeps request logging out of test output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer wires the full handler stack around the fake client and
// returns the test server plus the hub for event publication.
func newTestServer(t *testing.T, client driven.MarketingClient) (*httptest.Server, *application.Hub) {
	t.Helper()

	hub := application.NewHub(nil)
	h := httphandler.NewHandler(
		application.NewJourneyService(client),
		application.NewReportService(client, nil),
		hub,
		nil,
	)

	mux := http.NewServeMux()
	httphandler.RegisterRoutes(mux, h)
	server := httptest.NewServer(httphandler.ApplyMiddleware(mux, discardLogger()))
	t.Cleanup(server.Close)

	return server, hub
}

func getJSON(t *testing.T, url string, into any) int {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if into != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t, &fakeClient{})

	var body httphandler.HealthResponse
	status := getJSON(t, server.URL+"/api/v1/health", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body.Status)
	assert.NotEmpty(t, body.Time)
}

func TestInfo(t *testing.T) {
	server, _ := newTestServer(t, &fakeClient{})

	var body httphandler.InfoResponse
	status := getJSON(t, server.URL+"/", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "inflection-mcp", body.Name)
	assert.Contains(t, body.Endpoints, "mcp")
	assert.Contains(t, body.Endpoints, "events")
}

func TestListJourneys(t *testing.T) {
	server, _ := newTestServer(t, &fakeClient{
		page: &model.JourneyPage{
			Journeys: []model.Journey{
				{
					ID:        "jrn-1",
					Name:      "Welcome Series",
					Status:    "active",
					CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				},
			},
			TotalCount: 1,
			PageNumber: 1,
			PageSize:   30,
		},
	})

	var body httphandler.JourneyListResponse
	status := getJSON(t, server.URL+"/api/v1/journeys", &body)

	assert.Equal(t, http.StatusOK, status)
	require.Len(t, body.Journeys, 1)
	assert.Equal(t, "jrn-1", body.Journeys[0].ID)
	assert.Equal(t, "2026-01-01T00:00:00Z", body.Journeys[0].CreatedAt)
	assert.Equal(t, 1, body.TotalCount)
}

func TestListJourneys_BadPageParam(t *testing.T) {
	server, _ := newTestServer(t, &fakeClient{})

	status := getJSON(t, server.URL+"/api/v1/journeys?page_size=lots", nil)

	assert.Equal(t, http.StatusBadRequest, status)
}

func TestListJourneys_AuthFailureMapsToBadGateway(t *testing.T) {
	server, _ := newTestServer(t, &fakeClient{listErr: &driven.MaxRetriesError{Attempts: 3}})

	resp, err := http.Get(server.URL + "/api/v1/journeys")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "try again later")
}

func TestListJourneys_TransportFailureMapsToGatewayTimeout(t *testing.T) {
	server, _ := newTestServer(t, &fakeClient{listErr: &url.Error{
		Op:  "Post",
		URL: "https://campaign.inflection.io/api/v2/campaigns/campaign.list",
		Err: errors.New("dial tcp: connection refused"),
	}})

	resp, err := http.Get(server.URL + "/api/v1/journeys")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "unreachable")
}

func TestGetEmailReport(t *testing.T) {
	server, _ := newTestServer(t, &fakeClient{})

	var body httphandler.EmailReportResponse
	status := getJSON(t, server.URL+"/api/v1/journeys/jrn-1/report?start_date=2026-02-01&end_date=2026-03-01", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "jrn-1", body.JourneyID)
	assert.JSONEq(t, `{"ok": true}`, string(body.Aggregate))
	assert.JSONEq(t, `{"ok": true}`, string(body.Runs))
	assert.JSONEq(t, `{"ok": true}`, string(body.EmailClientsOpen))
	assert.JSONEq(t, `{"ok": true}`, string(body.EmailClientsClick))
	assert.JSONEq(t, `{"ok": true}`, string(body.BounceClassifications))
	assert.Equal(t, "2026-02-01T00:00:00Z", body.StartDate)
}

func TestGetEmailReport_InvalidJourneyID(t *testing.T) {
	server, _ := newTestServer(t, &fakeClient{})

	status := getJSON(t, server.URL+"/api/v1/journeys/bad%20id/report", nil)

	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetEmailReport_InvalidDates(t *testing.T) {
	server, _ := newTestServer(t, &fakeClient{})

	status := getJSON(t, server.URL+"/api/v1/journeys/jrn-1/report?start_date=01-02-2026", nil)

	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCORSPreflight(t *testing.T) {
	server, _ := newTestServer(t, &fakeClient{})

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/mcp", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
