package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/inflectionhq/inflection-mcp/internal/domain/model"
	"github.com/inflectionhq/inflection-mcp/internal/domain/port/driven"
)

// ReportService composes the campaign report endpoints into a single email
// report document per journey.
type ReportService struct {
	client driven.MarketingClient
	logger *slog.Logger
}

// NewReportService creates a ReportService.
func NewReportService(client driven.MarketingClient, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{client: client, logger: logger}
}

const (
	// engagementPageSize bounds the per-recipient rows included in a composed
	// report; callers wanting more page through RecipientEngagement directly.
	engagementPageSize = 15

	// runsPageSize bounds the report runs listed in a composed report.
	runsPageSize = 15

	// runStatsLimit caps how many recent runs get per-run statistics.
	runStatsLimit = 5
)

// EmailReport fetches every report section for a journey over the given
// range: aggregate counters, recipient engagement, report runs (with per-run
// statistics for the most recent runs), top links, the email-client breakdown
// for opens and clicks, and bounce stats with their classification reference
// data. Authentication failures abort immediately -- once the credential is
// rejected every remaining section would fail the same way. Other per-section
// failures degrade gracefully: the section stays nil and the failure is
// recorded by name.
func (s *ReportService) EmailReport(ctx context.Context, journeyID, start, end string) (*model.EmailReport, error) {
	if err := ValidateJourneyID(journeyID); err != nil {
		return nil, err
	}
	dateRange, err := ParseDateRange(start, end)
	if err != nil {
		return nil, err
	}

	report := &model.EmailReport{
		JourneyID:       journeyID,
		Range:           dateRange,
		SectionFailures: map[string]string{},
	}

	sections := []struct {
		name   string
		fetch  func(context.Context) ([]byte, error)
		assign func(json.RawMessage)
	}{
		{"aggregate", func(ctx context.Context) ([]byte, error) {
			return s.client.AggregateStats(ctx, model.ReportQuery{CampaignID: journeyID, Range: dateRange})
		}, func(data json.RawMessage) { report.Aggregate = data }},
		{"engagement", func(ctx context.Context) ([]byte, error) {
			return s.client.RecipientEngagement(ctx, model.EngagementQuery{
				CampaignID: journeyID,
				Range:      dateRange,
				PageNumber: 1,
				PageSize:   engagementPageSize,
			})
		}, func(data json.RawMessage) { report.Engagement = data }},
		{"runs", func(ctx context.Context) ([]byte, error) {
			return s.client.ReportRuns(ctx, model.RunsQuery{
				CampaignID: journeyID,
				Range:      dateRange,
				PageNumber: 1,
				PageSize:   runsPageSize,
			})
		}, func(data json.RawMessage) { report.Runs = data }},
		{"top_links", func(ctx context.Context) ([]byte, error) {
			return s.client.TopLinks(ctx, model.ReportQuery{
				CampaignID: journeyID,
				Range:      dateRange,
				PageNumber: 1,
				PageSize:   5,
			})
		}, func(data json.RawMessage) { report.TopLinks = data }},
		{"email_clients_open", func(ctx context.Context) ([]byte, error) {
			return s.client.TopEmailClients(ctx, model.EmailClientOpen, model.ReportQuery{
				CampaignID: journeyID,
				Range:      dateRange,
				PageNumber: 1,
				PageSize:   5,
			})
		}, func(data json.RawMessage) { report.EmailClientsOpen = data }},
		{"email_clients_click", func(ctx context.Context) ([]byte, error) {
			return s.client.TopEmailClients(ctx, model.EmailClientClick, model.ReportQuery{
				CampaignID: journeyID,
				Range:      dateRange,
				PageNumber: 1,
				PageSize:   5,
			})
		}, func(data json.RawMessage) { report.EmailClientsClick = data }},
		{"bounce_stats", func(ctx context.Context) ([]byte, error) {
			return s.client.BounceStats(ctx, journeyID, dateRange)
		}, func(data json.RawMessage) { report.BounceStats = data }},
		{"bounce_classifications", func(ctx context.Context) ([]byte, error) {
			return s.client.BounceClassifications(ctx)
		}, func(data json.RawMessage) { report.BounceClassifications = data }},
	}

	for _, section := range sections {
		data, err := section.fetch(ctx)
		if err != nil {
			if driven.IsAuthFailure(err) {
				return nil, fmt.Errorf("fetching %s section: %w", section.name, err)
			}
			s.logger.Warn("report section failed",
				"journey_id", journeyID,
				"section", section.name,
				"error", err,
			)
			report.SectionFailures[section.name] = err.Error()
			continue
		}
		section.assign(data)
	}

	if err := s.fetchRunStats(ctx, journeyID, report); err != nil {
		return nil, err
	}

	return report, nil
}

// runsEnvelope is the slice of the runs payload needed to find run ids for
// the per-run statistics fetch.
type runsEnvelope struct {
	Data struct {
		Runs []struct {
			ID string `json:"id"`
		} `json:"runs"`
	} `json:"data"`
}

// fetchRunStats pulls statistics for the most recent runs found in the runs
// section. Skipped when the runs section failed or listed no runs. Auth
// failures propagate; anything else degrades like the other sections.
func (s *ReportService) fetchRunStats(ctx context.Context, journeyID string, report *model.EmailReport) error {
	if report.Runs == nil {
		return nil
	}

	var envelope runsEnvelope
	if err := json.Unmarshal(report.Runs, &envelope); err != nil {
		report.SectionFailures["run_stats"] = "runs payload was not parseable"
		return nil
	}

	runIDs := make([]string, 0, runStatsLimit)
	for _, run := range envelope.Data.Runs {
		if run.ID == "" {
			continue
		}
		runIDs = append(runIDs, run.ID)
		if len(runIDs) == runStatsLimit {
			break
		}
	}
	if len(runIDs) == 0 {
		return nil
	}

	data, err := s.client.ReportRunStats(ctx, journeyID, runIDs)
	if err != nil {
		if driven.IsAuthFailure(err) {
			return fmt.Errorf("fetching run_stats section: %w", err)
		}
		s.logger.Warn("report section failed",
			"journey_id", journeyID,
			"section", "run_stats",
			"error", err,
		)
		report.SectionFailures["run_stats"] = err.Error()
		return nil
	}

	report.RunStats = data
	return nil
}
