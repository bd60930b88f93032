package fetch

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	mu       sync.Mutex
	payloads map[string][]byte
	errs     map[string]error
	gets     []string
	posts    []url.Values
}

func (s *stubClient) Get(_ context.Context, path string, _ url.Values) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets = append(s.gets, path)
	if err := s.errs[path]; err != nil {
		return nil, err
	}
	return s.payloads[path], nil
}

func (s *stubClient) Post(_ context.Context, path string, form url.Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, form)
	return s.errs[path]
}

func TestFutureSettlesOnce(t *testing.T) {
	f := NewFuture[int]()

	assert.True(t, f.Resolve(1))
	assert.False(t, f.Resolve(2))
	assert.False(t, f.Reject(errors.New("late")))

	value, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, value)
}

func TestFutureRejected(t *testing.T) {
	boom := errors.New("boom")
	f := NewFuture[string]()
	f.Reject(boom)

	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestFutureAwaitHonoursContext(t *testing.T) {
	f := NewFuture[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestThenPropagatesRejection(t *testing.T) {
	boom := errors.New("boom")
	called := false

	chained := Then(context.Background(), Go(func() (int, error) { return 0, boom }), func(int) (string, error) {
		called = true
		return "never", nil
	})

	_, err := chained.Await(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestFetcherFetch(t *testing.T) {
	client := &stubClient{payloads: map[string][]byte{"statuses/user_timeline": []byte(`[{"id_str":"1"}]`)}}
	fetcher := NewFetcher(client, zerolog.Nop())

	payload, err := fetcher.Fetch(context.Background(), "statuses/user_timeline", url.Values{"count": {"5"}}).Await(context.Background())

	require.NoError(t, err)
	assert.JSONEq(t, `[{"id_str":"1"}]`, string(payload))
	assert.Equal(t, []string{"statuses/user_timeline"}, client.gets)
}

func TestFetcherFetchFailsFast(t *testing.T) {
	boom := errors.New("rate limited")
	client := &stubClient{errs: map[string]error{"friends/list": boom}}
	fetcher := NewFetcher(client, zerolog.Nop())

	_, err := fetcher.Fetch(context.Background(), "friends/list", nil).Await(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Len(t, client.gets, 1, "no retry expected")
}

func TestFetchInto(t *testing.T) {
	type page struct {
		Users []map[string]any `json:"users"`
	}
	client := &stubClient{payloads: map[string][]byte{
		"friends/list": []byte(`{"users":[{"screen_name":"a"},{"screen_name":"b"}]}`),
		"broken":       []byte(`{"users":`),
	}}
	fetcher := NewFetcher(client, zerolog.Nop())
	ctx := context.Background()

	got, err := FetchInto[page](ctx, fetcher, "friends/list", nil).Await(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Users, 2)

	_, err = FetchInto[page](ctx, fetcher, "broken", nil).Await(ctx)
	assert.ErrorContains(t, err, "decode broken")
}

func TestFetcherPost(t *testing.T) {
	client := &stubClient{}
	fetcher := NewFetcher(client, zerolog.Nop())

	err := fetcher.Post(context.Background(), "statuses/update", url.Values{"status": {"hi"}})

	require.NoError(t, err)
	require.Len(t, client.posts, 1)
	assert.Equal(t, "hi", client.posts[0].Get("status"))
}
