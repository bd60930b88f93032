package feed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/patteyb/twitter-interface/internal/analysis/messages"
	"github.com/patteyb/twitter-interface/internal/analysis/timestamp"
	"github.com/patteyb/twitter-interface/internal/config"
	"github.com/patteyb/twitter-interface/internal/metrics"
	"github.com/patteyb/twitter-interface/internal/model/feed"
	"github.com/patteyb/twitter-interface/internal/service/fetch"
	"github.com/patteyb/twitter-interface/internal/service/twitter"
)

var (
	ErrRemoteFetch = errors.New("remote fetch failed")
	ErrRemotePost  = errors.New("remote post failed")
	ErrEmptyStatus = errors.New("status text is required")
)

// Service assembles the view-model from the remote account and keeps the
// latest snapshot. Each change builds a new snapshot; concurrent refreshes
// resolve as last-write-wins.
type Service struct {
	fetcher *fetch.Fetcher
	params  url.Values
	now     func() time.Time
	logger  zerolog.Logger

	mu          sync.Mutex
	current     feed.Snapshot
	subscribers map[chan feed.Snapshot]struct{}
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now, used for relative timestamps and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates an assembler scoped to the configured account.
func NewService(fetcher *fetch.Fetcher, cfg config.TwitterConfig, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		fetcher: fetcher,
		params: url.Values{
			"screen_name": {cfg.ScreenName},
			"count":       {strconv.Itoa(cfg.FetchCount)},
		},
		now:         time.Now,
		logger:      logger.With().Str("component", "feed").Logger(),
		subscribers: make(map[chan feed.Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.current = feed.Snapshot{
		ID: uuid.NewString(),
		Account: feed.Account{
			ScreenName: cfg.ScreenName,
			Name:       cfg.Name,
			ProfileURL: cfg.ProfileURL,
		},
		UpdatedAt: s.now(),
	}
	return s
}

// Snapshot returns the current view-model.
func (s *Service) Snapshot() feed.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Refresh runs a full fetch cycle. Timeline, friends and the direct message
// pair are fetched concurrently; each part that fails keeps its previous
// value and raises the error flag. A cycle without failures clears the flag.
func (s *Service) Refresh(ctx context.Context) error {
	params := s.copyParams()

	timeline := fetch.FetchInto[[]feed.Item](ctx, s.fetcher, twitter.PathUserTimeline, params)
	friends := fetch.FetchInto[feed.FriendsPage](ctx, s.fetcher, twitter.PathFriendsList, params)
	conversation := fetch.Go(func() ([]feed.Item, error) {
		return s.fetchConversation(ctx, params)
	})

	tweets, timelineErr := timeline.Await(ctx)
	friendsPage, friendsErr := friends.Await(ctx)
	merged, conversationErr := conversation.Await(ctx)

	var errs []error
	snapshot := s.apply(func(next *feed.Snapshot) {
		if timelineErr != nil {
			errs = append(errs, fetchError(twitter.PathUserTimeline, timelineErr))
		} else {
			next.Tweets = timestamp.ToRelativeTime(tweets, s.now())
		}

		if friendsErr != nil {
			errs = append(errs, fetchError(twitter.PathFriendsList, friendsErr))
		} else {
			next.Friends = friendsPage.Users
		}

		if conversationErr != nil {
			// fetchConversation names the failing endpoint itself
			errs = append(errs, fmt.Errorf("%w: %w", ErrRemoteFetch, conversationErr))
		} else {
			next.Messages = merged
		}

		next.Failed = len(errs) > 0
		next.FailureReason = ""
		if next.Failed {
			next.FailureReason = errors.Join(errs...).Error()
		}
	})

	err := errors.Join(errs...)
	recordCycle("full", err)
	if err != nil {
		s.logger.Warn().Err(err).Str("snapshot", snapshot.ID).Msg("refresh cycle completed with failures")
		return err
	}

	s.logger.Info().
		Str("snapshot", snapshot.ID).
		Int("tweets", len(snapshot.Tweets)).
		Int("friends", len(snapshot.Friends)).
		Int("messages", len(snapshot.Messages)).
		Msg("refresh cycle completed")
	return nil
}

// RefreshTimeline re-fetches only the timeline and returns the resulting snapshot.
func (s *Service) RefreshTimeline(ctx context.Context) (feed.Snapshot, error) {
	tweets, err := fetch.FetchInto[[]feed.Item](ctx, s.fetcher, twitter.PathUserTimeline, s.copyParams()).Await(ctx)
	if err != nil {
		err = fetchError(twitter.PathUserTimeline, err)
		recordCycle("timeline", err)
		s.logger.Warn().Err(err).Msg("timeline refresh failed")
		return s.markFailed(err), err
	}

	recordCycle("timeline", nil)
	return s.apply(func(next *feed.Snapshot) {
		next.Tweets = timestamp.ToRelativeTime(tweets, s.now())
	}), nil
}

// PostStatus publishes one status update. A remote failure raises the error flag.
func (s *Service) PostStatus(ctx context.Context, text string) error {
	status := strings.TrimSpace(text)
	if status == "" {
		return ErrEmptyStatus
	}

	if err := s.fetcher.Post(ctx, twitter.PathStatusUpdate, url.Values{"status": {status}}); err != nil {
		err = fmt.Errorf("%w: %w", ErrRemotePost, err)
		metrics.StatusesPosted.WithLabelValues("failure").Inc()
		s.logger.Warn().Err(err).Msg("status update failed")
		s.markFailed(err)
		return err
	}

	metrics.StatusesPosted.WithLabelValues("success").Inc()
	s.logger.Info().Int("length", len(status)).Msg("status posted")
	return nil
}

// Run refreshes every interval until ctx ends.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// failures are already recorded on the snapshot
			_ = s.Refresh(ctx)
		}
	}
}

// Subscribe returns a channel receiving every new snapshot and a cancel func.
// Slow readers only see the most recent snapshot they had room for.
func (s *Service) Subscribe() (<-chan feed.Snapshot, func()) {
	ch := make(chan feed.Snapshot, 1)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	metrics.StreamSubscribers.Inc()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, ch)
			close(ch)
			s.mu.Unlock()
			metrics.StreamSubscribers.Dec()
		})
	}
}

func (s *Service) fetchConversation(ctx context.Context, params url.Values) ([]feed.Item, error) {
	var received, sent []feed.Item

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := fetch.FetchInto[[]feed.Item](gctx, s.fetcher, twitter.PathMessagesReceived, params).Await(gctx)
		if err != nil {
			return fmt.Errorf("%s: %w", twitter.PathMessagesReceived, err)
		}
		received = items
		return nil
	})
	g.Go(func() error {
		items, err := fetch.FetchInto[[]feed.Item](gctx, s.fetcher, twitter.PathMessagesSent, params).Await(gctx)
		if err != nil {
			return fmt.Errorf("%s: %w", twitter.PathMessagesSent, err)
		}
		sent = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := messages.Merge(messages.Chronological(received), messages.Chronological(sent))
	return timestamp.ToFriendlyTimestamp(merged), nil
}

func (s *Service) markFailed(err error) feed.Snapshot {
	return s.apply(func(next *feed.Snapshot) {
		next.Failed = true
		next.FailureReason = err.Error()
	})
}

// apply derives the next snapshot from the current one and notifies subscribers.
func (s *Service) apply(mutate func(next *feed.Snapshot)) feed.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	mutate(&next)
	next.ID = uuid.NewString()
	next.UpdatedAt = s.now()
	s.current = next

	for ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
	return next
}

func (s *Service) copyParams() url.Values {
	out := make(url.Values, len(s.params))
	for key, values := range s.params {
		out[key] = append([]string(nil), values...)
	}
	return out
}

func fetchError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRemoteFetch, path, err)
}

func recordCycle(scope string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	metrics.RefreshCycles.WithLabelValues(scope, outcome).Inc()
}
