package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patteyb/twitter-interface/internal/config"
	"github.com/patteyb/twitter-interface/internal/model/feed"
	"github.com/patteyb/twitter-interface/internal/service/twitter"
	"github.com/patteyb/twitter-interface/internal/service/fetch"
	feedService "github.com/patteyb/twitter-interface/internal/service/feed"
	"github.com/patteyb/twitter-interface/internal/web"
)

type emptyClient struct{}

func (emptyClient) Get(_ context.Context, path string, _ url.Values) ([]byte, error) {
	if path == "friends/list" {
		return []byte(`{"users":[]}`), nil
	}
	return []byte(`[]`), nil
}

func (emptyClient) Post(context.Context, string, url.Values) error { return nil }

// countingClient serves empty payloads and counts calls per endpoint.
type countingClient struct {
	emptyClient

	mu      sync.Mutex
	calls   map[string]int
	postErr error
}

func newCountingClient() *countingClient {
	return &countingClient{calls: map[string]int{}}
}

func (c *countingClient) Get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	c.mu.Lock()
	c.calls[path]++
	c.mu.Unlock()
	return c.emptyClient.Get(ctx, path, params)
}

func (c *countingClient) Post(context.Context, string, url.Values) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[twitter.PathStatusUpdate]++
	return c.postErr
}

func (c *countingClient) count(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[path]
}

func (c *countingClient) failPosts(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.postErr = err
}

func newTestService(t *testing.T, client fetch.Client) *feedService.Service {
	t.Helper()
	cfg := config.TwitterConfig{ScreenName: "patteyb", Name: "Pattey", FetchCount: 5}
	svc := feedService.NewService(fetch.NewFetcher(client, zerolog.Nop()), cfg, zerolog.Nop())
	require.NoError(t, svc.Refresh(context.Background()))
	return svc
}

func newTestRouter(t *testing.T, svc *feedService.Service) http.Handler {
	t.Helper()
	renderer, err := web.NewRenderer()
	require.NoError(t, err)
	return NewRouter(zerolog.Nop(), svc, renderer)
}

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	return newTestRouter(t, newTestService(t, emptyClient{}))
}

func TestRouterServesPagesAndAssets(t *testing.T) {
	r := setupRouter(t)

	tests := []struct {
		path        string
		contentType string
	}{
		{path: "/", contentType: "text/html; charset=utf-8"},
		{path: "/static/css/style.css", contentType: "text/css; charset=utf-8"},
		{path: "/api/snapshot", contentType: "application/json"},
		{path: "/metrics", contentType: ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, http.StatusOK, resp.Code)
			if tt.contentType != "" {
				assert.Equal(t, tt.contentType, resp.Header().Get("Content-Type"))
			}
			assert.NotZero(t, resp.Body.Len())
		})
	}
}

func TestRouterAPIAllowsCrossOrigin(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	req.Header.Set("Origin", "https://example.com")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterMetricsExposeRequestCounters(t *testing.T) {
	r := setupRouter(t)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/error", nil))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `twitter_interface_http_requests_total{method="GET",route="/error",status="200"}`)
	assert.Contains(t, resp.Body.String(), "twitter_interface_remote_calls_total")
}

func TestSnapshotChangeNeverTriggersRemoteFetch(t *testing.T) {
	client := newCountingClient()
	svc := newTestService(t, client)
	r := newTestRouter(t, svc)

	// two open pages watching the stream
	tabs := make([]<-chan feed.Snapshot, 2)
	for i := range tabs {
		updates, cancel := svc.Subscribe()
		t.Cleanup(cancel)
		tabs[i] = updates
	}

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/update", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `window.location.assign("/")`)
	require.Equal(t, 2, client.count(twitter.PathUserTimeline))

	// each page follows the event the way the inline script does
	for _, updates := range tabs {
		select {
		case <-updates:
		case <-time.After(time.Second):
			t.Fatal("expected a snapshot event after /update")
		}
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, resp.Code)
	}

	for _, updates := range tabs {
		select {
		case <-updates:
			t.Fatal("rendering / published a new snapshot")
		case <-time.After(50 * time.Millisecond):
		}
	}
	assert.Equal(t, 2, client.count(twitter.PathUserTimeline))
	assert.Equal(t, 1, client.count(twitter.PathFriendsList))
}

func TestRetryLinkClearsFailureAfterRecovery(t *testing.T) {
	client := newCountingClient()
	svc := newTestService(t, client)
	r := newTestRouter(t, svc)

	serve := func(method, target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(url.Values{"tweet": {"hello"}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		return resp
	}

	client.failPosts(errors.New("over capacity"))
	assert.Equal(t, "/error", serve(http.MethodPost, "/").Header().Get("Location"))
	assert.Equal(t, "/error", serve(http.MethodGet, "/").Header().Get("Location"))

	client.failPosts(nil)
	assert.Equal(t, "/update", serve(http.MethodPost, "/").Header().Get("Location"))
	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/update").Code)

	resp := serve(http.MethodGet, "/refresh")
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, "/", resp.Header().Get("Location"))
	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/").Code)
}
