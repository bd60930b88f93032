package fetch

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"github.com/patteyb/twitter-interface/internal/metrics"
)

// Client is the remote REST collaborator. Implementations perform exactly one
// request per call.
type Client interface {
	Get(ctx context.Context, path string, params url.Values) ([]byte, error)
	Post(ctx context.Context, path string, form url.Values) error
}

// Fetcher wraps single remote reads in futures.
type Fetcher struct {
	client Client
	logger zerolog.Logger
}

// NewFetcher creates a Fetcher over client.
func NewFetcher(client Client, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		logger: logger.With().Str("component", "fetcher").Logger(),
	}
}

// Fetch issues one GET against path. The future resolves with the raw payload
// or rejects with the client's error; there is no retry.
func (f *Fetcher) Fetch(ctx context.Context, path string, params url.Values) *Future[[]byte] {
	return Go(func() ([]byte, error) {
		start := time.Now()
		payload, err := f.client.Get(ctx, path, params)
		observe(path, start, err)

		if err != nil {
			f.logger.Debug().Err(err).Str("path", path).Dur("latency", time.Since(start)).Msg("remote read failed")
			return nil, err
		}
		f.logger.Debug().Str("path", path).Int("bytes", len(payload)).Dur("latency", time.Since(start)).Msg("remote read completed")
		return payload, nil
	})
}

// Post issues one write against path and waits for it.
func (f *Fetcher) Post(ctx context.Context, path string, form url.Values) error {
	start := time.Now()
	err := f.client.Post(ctx, path, form)
	observe(path, start, err)
	if err != nil {
		f.logger.Debug().Err(err).Str("path", path).Msg("remote write failed")
	}
	return err
}

// FetchInto fetches path and decodes the JSON payload into T.
func FetchInto[T any](ctx context.Context, f *Fetcher, path string, params url.Values) *Future[T] {
	return Then(ctx, f.Fetch(ctx, path, params), func(payload []byte) (T, error) {
		var out T
		if err := sonic.Unmarshal(payload, &out); err != nil {
			return out, fmt.Errorf("decode %s: %w", path, err)
		}
		return out, nil
	})
}

func observe(path string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	metrics.RemoteCallsTotal.WithLabelValues(path, outcome).Inc()
	metrics.RemoteCallDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
}
