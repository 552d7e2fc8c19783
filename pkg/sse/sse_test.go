package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishWithoutSubscribers(t *testing.T) {
	b := NewBroker()
	n, err := b.Publish("catalog.refreshed", map[string]int{"version": 1})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSubscribeAndLeave(t *testing.T) {
	b := NewBroker()
	ch, leave := b.Subscribe()
	assert.Equal(t, 1, b.Subscribers())

	n, err := b.Publish("catalog.refreshed", map[string]int{"version": 2})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	e := <-ch
	assert.Equal(t, "catalog.refreshed", e.Name)
	assert.JSONEq(t, `{"version":2}`, string(e.Data))

	leave()
	leave()
	assert.Equal(t, 0, b.Subscribers())
}

func TestServeHTTPStreamsEvents(t *testing.T) {
	b := NewBroker()
	srv := httptest.NewServer(b)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return b.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	_, err = b.Publish("catalog.refreshed", map[string]int{"products": 12})
	require.NoError(t, err)

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	assert.Equal(t, "event: catalog.refreshed", lines[0])
	assert.Equal(t, `data: {"products":12}`, lines[1])
}
