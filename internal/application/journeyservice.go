// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"

	"github.com/inflectionhq/inflection-mcp/internal/domain/model"
	"github.com/inflectionhq/inflection-mcp/internal/domain/port/driven"
)

// JourneyService exposes journey listing with input normalization. Credential
// handling lives entirely in the client; this layer never sees a token.
type JourneyService struct {
	client driven.MarketingClient
}

// NewJourneyService creates a JourneyService.
func NewJourneyService(client driven.MarketingClient) *JourneyService {
	return &JourneyService{client: client}
}

// List returns one page of journeys. Page size is clamped to 1..100 and page
// number to >= 1, matching the upstream's accepted ranges.
func (s *JourneyService) List(ctx context.Context, pageSize, pageNumber int, searchKeyword string) (*model.JourneyPage, error) {
	pageSize, pageNumber = clampPaging(pageSize, pageNumber)

	page, err := s.client.ListJourneys(ctx, model.JourneyQuery{
		PageSize:      pageSize,
		PageNumber:    pageNumber,
		SearchKeyword: searchKeyword,
	})
	if err != nil {
		return nil, fmt.Errorf("listing journeys: %w", err)
	}
	return page, nil
}
