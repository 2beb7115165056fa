package httphandler_test

import (
	"bufio"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inflectionhq/inflection-mcp/internal/application"
)

func TestEvents_StreamsPublishedEvents(t *testing.T) {
	server, hub := newTestServer(t, &fakeClient{})

	resp, err := http.Get(server.URL + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// The subscription is registered before the handler writes the preamble,
	// but give the hub a beat to avoid publishing into nothing.
	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish(application.EventHealth, application.HealthEvent{Status: "healthy", Authenticated: true})

	reader := bufio.NewReader(resp.Body)
	frame := readFrame(t, reader)

	assert.Contains(t, frame, "event: health")
	assert.Contains(t, frame, `"status":"healthy"`)

	var hasID bool
	for _, line := range strings.Split(frame, "\n") {
		if strings.HasPrefix(line, "id: ") && len(line) > 4 {
			hasID = true
		}
	}
	assert.True(t, hasID, "frame carries an event id")
}

// readFrame reads lines until a blank line terminates an SSE frame that
// contains an event field (skipping the retry preamble).
func readFrame(t *testing.T, reader *bufio.Reader) string {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	var lines []string
	for time.Now().Before(deadline) {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")

		if line == "" {
			if len(lines) > 0 && strings.Contains(strings.Join(lines, "\n"), "event:") {
				return strings.Join(lines, "\n")
			}
			lines = nil
			continue
		}
		lines = append(lines, line)
	}
	t.Fatal("no event frame before deadline")
	return ""
}
