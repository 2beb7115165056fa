package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inflectionhq/inflection-mcp/internal/adapter/driven/memory"
	"github.com/inflectionhq/inflection-mcp/internal/application"
	"github.com/inflectionhq/inflection-mcp/internal/domain/model"
)

// collectEvents drains events of the wanted type until count are seen or the
// deadline passes.
func collectEvents(t *testing.T, ch <-chan application.Event, eventType string, count int) []application.Event {
	t.Helper()

	var got []application.Event
	deadline := time.After(3 * time.Second)
	for len(got) < count {
		select {
		case event := <-ch:
			if event.Type == eventType {
				got = append(got, event)
			}
		case <-deadline:
			t.Fatalf("saw %d %s events before deadline, wanted %d", len(got), eventType, count)
		}
	}
	return got
}

func TestHeartbeat_PublishesJourneyUpdates(t *testing.T) {
	client := &fakeMarketingClient{
		page: &model.JourneyPage{
			Journeys:   []model.Journey{{ID: "jrn-1", Name: "Welcome Series", Status: "active"}},
			TotalCount: 1,
		},
	}
	store := memory.NewCredentialStore()
	hub := application.NewHub(nil)
	heartbeat := application.NewHeartbeat(
		application.NewJourneyService(client),
		store,
		hub,
		50*time.Millisecond,
		50*time.Millisecond,
		nil,
	)

	ch, cancel := hub.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		heartbeat.Start(ctx)
		close(done)
	}()

	events := collectEvents(t, ch, application.EventJourneyUpdate, 2)
	stop()
	<-done

	update, ok := events[0].Data.(application.JourneyUpdateEvent)
	require.True(t, ok)
	assert.Equal(t, 1, update.TotalCount)
	require.Len(t, update.Journeys, 1)
	assert.Equal(t, "jrn-1", update.Journeys[0].ID)
	assert.GreaterOrEqual(t, client.calls(), 2)
}

func TestHeartbeat_HealthReflectsCredentialState(t *testing.T) {
	client := &fakeMarketingClient{}
	store := memory.NewCredentialStore()
	hub := application.NewHub(nil)
	heartbeat := application.NewHeartbeat(
		application.NewJourneyService(client),
		store,
		hub,
		time.Hour, // journey loop out of the way
		20*time.Millisecond,
		nil,
	)

	ch, cancel := hub.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		heartbeat.Start(ctx)
		close(done)
	}()

	degraded := collectEvents(t, ch, application.EventHealth, 1)
	health := degraded[0].Data.(application.HealthEvent)
	assert.Equal(t, "degraded", health.Status)
	assert.False(t, health.Authenticated)

	store.Set(model.CredentialRecord{
		Token:     "tok",
		ExpiresAt: time.Now().Add(time.Hour),
	})

	// Wait for a post-Set health event.
	deadline := time.After(3 * time.Second)
	for {
		var healthy bool
		select {
		case event := <-ch:
			if event.Type != application.EventHealth {
				continue
			}
			if h := event.Data.(application.HealthEvent); h.Authenticated {
				assert.Equal(t, "healthy", h.Status)
				healthy = true
			}
		case <-deadline:
			t.Fatal("never saw a healthy event after credential set")
		}
		if healthy {
			break
		}
	}

	stop()
	<-done
}

func TestHeartbeat_PublishesErrorEventOnFailure(t *testing.T) {
	client := &fakeMarketingClient{listErr: errors.New("upstream down")}
	hub := application.NewHub(nil)
	heartbeat := application.NewHeartbeat(
		application.NewJourneyService(client),
		memory.NewCredentialStore(),
		hub,
		50*time.Millisecond,
		time.Hour,
		nil,
	)

	ch, cancel := hub.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		heartbeat.Start(ctx)
		close(done)
	}()

	events := collectEvents(t, ch, application.EventError, 1)
	stop()
	<-done

	errEvent := events[0].Data.(application.ErrorEvent)
	assert.Contains(t, errEvent.Message, "journey update failed")
}
