// Package httphandler exposes the service over HTTP: REST endpoints under
// /api/v1, the JSON-RPC tool-calling endpoint at /mcp, and the push-event
// stream at /events.
package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/inflectionhq/inflection-mcp/internal/application"
	"github.com/inflectionhq/inflection-mcp/internal/domain/port/driven"
)

// Handler holds the driving adapter's dependencies.
type Handler struct {
	journeys *application.JourneyService
	reports  *application.ReportService
	hub      *application.Hub
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler creates a Handler.
func NewHandler(
	journeys *application.JourneyService,
	reports *application.ReportService,
	hub *application.Hub,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		journeys: journeys,
		reports:  reports,
		hub:      hub,
		logger:   logger,
		validate: validator.New(),
	}
}

// RegisterRoutes attaches all endpoints to the mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /{$}", h.Info)
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/journeys", h.ListJourneys)
	mux.HandleFunc("GET /api/v1/journeys/{id}/report", h.GetEmailReport)
	mux.HandleFunc("POST /mcp", h.RPC)
	mux.HandleFunc("GET /events", h.Events)
}

// Info describes the service and its endpoints.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, InfoResponse{
		Name:        "inflection-mcp",
		Description: "Tool-calling bridge for the Inflection.io marketing automation API",
		Endpoints: map[string]string{
			"health":   "/api/v1/health",
			"journeys": "/api/v1/journeys",
			"report":   "/api/v1/journeys/{id}/report",
			"mcp":      "/mcp",
			"events":   "/events",
		},
	})
}

// Health is the liveness endpoint used by the container healthcheck.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListJourneys serves GET /api/v1/journeys with page_size, page_number, and
// search query parameters.
func (h *Handler) ListJourneys(w http.ResponseWriter, r *http.Request) {
	pageSize, err := intQueryParam(r, "page_size", 30)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pageNumber, err := intQueryParam(r, "page_number", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.journeys.List(r.Context(), pageSize, pageNumber, r.URL.Query().Get("search"))
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toJourneyListResponse(page))
}

// GetEmailReport serves GET /api/v1/journeys/{id}/report with optional
// start_date and end_date query parameters.
func (h *Handler) GetEmailReport(w http.ResponseWriter, r *http.Request) {
	journeyID := r.PathValue("id")
	if err := application.ValidateJourneyID(journeyID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")
	if _, err := application.ParseDateRange(start, end); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.reports.EmailReport(r.Context(), journeyID, start, end)
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toEmailReportResponse(report))
}

// writeUpstreamError translates the client error taxonomy into a response.
// Authentication failures and upstream errors surface as 502 and transport
// failures as 504, since the failure is between this service and the
// marketing API, not the caller.
func (h *Handler) writeUpstreamError(w http.ResponseWriter, err error) {
	h.logger.Error("upstream operation failed", "error", err)

	var (
		apiErr *driven.APIError
		urlErr *url.Error
	)
	switch {
	case driven.IsAuthFailure(err):
		writeError(w, http.StatusBadGateway, authFailureMessage(err))
	case errors.As(err, &apiErr):
		writeError(w, http.StatusBadGateway, apiErr.Error())
	case errors.As(err, &urlErr):
		writeError(w, http.StatusGatewayTimeout, "marketing API unreachable; try again later")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// authFailureMessage maps the core's typed auth errors to actionable text.
// The core itself never formats user-facing strings.
func authFailureMessage(err error) string {
	var retriesErr *driven.MaxRetriesError
	if errors.As(err, &retriesErr) {
		return "the marketing API kept rejecting the session; try again later"
	}
	if errors.Is(err, driven.ErrMissingCredentials) {
		return "marketing API credentials are not configured; set INFLECTION_EMAIL and INFLECTION_PASSWORD"
	}
	return "authentication with the marketing API failed; check the configured credentials and re-authenticate"
}
