package httphandler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/inflectionhq/inflection-mcp/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// intQueryParam reads an integer query parameter, returning the fallback when
// absent.
func intQueryParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

// InfoResponse describes the service on the root endpoint.
type InfoResponse struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// JourneyResponse is the JSON representation of a journey.
type JourneyResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// JourneyListResponse is one page of journeys.
type JourneyListResponse struct {
	Journeys   []JourneyResponse `json:"journeys"`
	TotalCount int               `json:"total_count"`
	PageNumber int               `json:"page_number"`
	PageSize   int               `json:"page_size"`
}

// EmailReportResponse is the composed report document for one journey.
// Sections are raw upstream payloads; a section that failed to fetch is
// omitted and listed under section_failures.
type EmailReportResponse struct {
	JourneyID             string            `json:"journey_id"`
	StartDate             string            `json:"start_date,omitempty"`
	EndDate               string            `json:"end_date,omitempty"`
	Aggregate             json.RawMessage   `json:"aggregate,omitempty"`
	Engagement            json.RawMessage   `json:"engagement,omitempty"`
	Runs                  json.RawMessage   `json:"runs,omitempty"`
	RunStats              json.RawMessage   `json:"run_stats,omitempty"`
	TopLinks              json.RawMessage   `json:"top_links,omitempty"`
	EmailClientsOpen      json.RawMessage   `json:"email_clients_open,omitempty"`
	EmailClientsClick     json.RawMessage   `json:"email_clients_click,omitempty"`
	BounceStats           json.RawMessage   `json:"bounce_stats,omitempty"`
	BounceClassifications json.RawMessage   `json:"bounce_classifications,omitempty"`
	SectionFailures       map[string]string `json:"section_failures,omitempty"`
}

// toJourneyResponse converts a domain Journey to its JSON representation.
func toJourneyResponse(j model.Journey) JourneyResponse {
	resp := JourneyResponse{
		ID:          j.ID,
		Name:        j.Name,
		Status:      j.Status,
		Description: j.Description,
	}
	if !j.CreatedAt.IsZero() {
		resp.CreatedAt = j.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !j.UpdatedAt.IsZero() {
		resp.UpdatedAt = j.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// toJourneyListResponse converts a domain JourneyPage to its JSON representation.
func toJourneyListResponse(page *model.JourneyPage) JourneyListResponse {
	journeys := make([]JourneyResponse, 0, len(page.Journeys))
	for _, j := range page.Journeys {
		journeys = append(journeys, toJourneyResponse(j))
	}
	return JourneyListResponse{
		Journeys:   journeys,
		TotalCount: page.TotalCount,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
	}
}

// toEmailReportResponse converts a domain EmailReport to its JSON representation.
func toEmailReportResponse(report *model.EmailReport) EmailReportResponse {
	resp := EmailReportResponse{
		JourneyID:             report.JourneyID,
		Aggregate:             report.Aggregate,
		Engagement:            report.Engagement,
		Runs:                  report.Runs,
		RunStats:              report.RunStats,
		TopLinks:              report.TopLinks,
		EmailClientsOpen:      report.EmailClientsOpen,
		EmailClientsClick:     report.EmailClientsClick,
		BounceStats:           report.BounceStats,
		BounceClassifications: report.BounceClassifications,
		SectionFailures:       report.SectionFailures,
	}
	if len(resp.SectionFailures) == 0 {
		resp.SectionFailures = nil
	}
	if !report.Range.Start.IsZero() {
		resp.StartDate = report.Range.Start.UTC().Format(time.RFC3339)
	}
	if !report.Range.End.IsZero() {
		resp.EndDate = report.Range.End.UTC().Format(time.RFC3339)
	}
	return resp
}
