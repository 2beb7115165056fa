package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/inflectionhq/inflection-mcp/internal/domain/port/driven"
)

// Event types published on the hub.
const (
	EventJourneyUpdate = "journey_update"
	EventHealth        = "health"
	EventError         = "error"
)

// journeyUpdateSize is how many journeys each periodic update carries.
const journeyUpdateSize = 10

// JourneySummary is the per-journey slice of a journey_update event.
type JourneySummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// JourneyUpdateEvent is the data payload of a journey_update event.
type JourneyUpdateEvent struct {
	TotalCount int              `json:"total_count"`
	Journeys   []JourneySummary `json:"journeys"`
}

// HealthEvent is the data payload of a health event.
type HealthEvent struct {
	Status        string `json:"status"`
	Authenticated bool   `json:"authenticated"`
	Subscribers   int    `json:"subscribers"`
}

// ErrorEvent is the data payload of an error event.
type ErrorEvent struct {
	Message string `json:"message"`
}

// Heartbeat runs the periodic publishers: journey updates on the poll
// interval and health status on the health interval. Each publisher runs an
// immediate first pass, then ticks until the context is canceled. A failed
// journey fetch backs off exponentially (capped at the poll interval) instead
// of hammering a struggling upstream.
type Heartbeat struct {
	journeys       *JourneyService
	store          driven.CredentialStore
	hub            *Hub
	pollInterval   time.Duration
	healthInterval time.Duration
	logger         *slog.Logger
}

// NewHeartbeat creates a Heartbeat with all required dependencies.
func NewHeartbeat(
	journeys *JourneyService,
	store driven.CredentialStore,
	hub *Hub,
	pollInterval time.Duration,
	healthInterval time.Duration,
	logger *slog.Logger,
) *Heartbeat {
	if logger == nil {
		logger = slog.Default()
	}
	return &Heartbeat{
		journeys:       journeys,
		store:          store,
		hub:            hub,
		pollInterval:   pollInterval,
		healthInterval: healthInterval,
		logger:         logger,
	}
}

// Start runs both publisher loops and blocks until the context is canceled.
func (s *Heartbeat) Start(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.journeyLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		s.healthLoop(ctx)
	}()
	wg.Wait()
	s.logger.Info("heartbeat stopped")
}

func (s *Heartbeat) journeyLoop(ctx context.Context) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 5 * time.Second
	policy.MaxInterval = s.pollInterval
	policy.MaxElapsedTime = 0

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		next := s.pollInterval
		if err := s.publishJourneys(ctx); err != nil {
			s.logger.Error("journey update failed", "error", err)
			s.hub.Publish(EventError, ErrorEvent{Message: "journey update failed: " + err.Error()})
			next = policy.NextBackOff()
		} else {
			policy.Reset()
		}
		timer.Reset(next)
	}
}

func (s *Heartbeat) publishJourneys(ctx context.Context) error {
	page, err := s.journeys.List(ctx, journeyUpdateSize, 1, "")
	if err != nil {
		return err
	}

	update := JourneyUpdateEvent{
		TotalCount: page.TotalCount,
		Journeys:   make([]JourneySummary, 0, len(page.Journeys)),
	}
	for _, j := range page.Journeys {
		update.Journeys = append(update.Journeys, JourneySummary{
			ID:     j.ID,
			Name:   j.Name,
			Status: j.Status,
		})
	}

	s.hub.Publish(EventJourneyUpdate, update)
	return nil
}

func (s *Heartbeat) healthLoop(ctx context.Context) {
	ticker := time.NewTicker(s.healthInterval)
	defer ticker.Stop()

	s.publishHealth()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.publishHealth()
		}
	}
}

func (s *Heartbeat) publishHealth() {
	authenticated := s.store.Get().Usable(time.Now())
	status := "healthy"
	if !authenticated {
		status = "degraded"
	}

	s.hub.Publish(EventHealth, HealthEvent{
		Status:        status,
		Authenticated: authenticated,
		Subscribers:   s.hub.SubscriberCount(),
	})
}
