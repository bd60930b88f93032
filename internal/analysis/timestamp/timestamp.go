package timestamp

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/patteyb/twitter-interface/internal/model/feed"
)

// Layout is the created_at format used by every REST v1.1 payload,
// e.g. "Fri Dec 09 15:30:00 +0000 2016".
const Layout = time.RubyDate

// ErrUnparseable is returned for created_at values that do not match Layout.
var ErrUnparseable = errors.New("unparseable created_at")

const (
	day   = 24 * time.Hour
	month = 30 * day
	year  = 365 * day
)

// relativeMagnitudes mirror the thresholds people expect from "fromNow"
// phrasing. Singular buckets extend to two units so a count never reads "1".
var relativeMagnitudes = []humanize.RelTimeMagnitude{
	{D: 45 * time.Second, Format: "a few seconds %s", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "a minute %s", DivBy: time.Minute},
	{D: 45 * time.Minute, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "an hour %s", DivBy: time.Hour},
	{D: 22 * time.Hour, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * day, Format: "a day %s", DivBy: day},
	{D: 26 * day, Format: "%d days %s", DivBy: day},
	{D: 2 * month, Format: "a month %s", DivBy: month},
	{D: 320 * day, Format: "%d months %s", DivBy: month},
	{D: 2 * year, Format: "a year %s", DivBy: year},
	{D: math.MaxInt64, Format: "%d years %s", DivBy: year},
}

// Parse reads a created_at value into an instant.
func Parse(createdAt string) (time.Time, error) {
	value := strings.TrimSpace(createdAt)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrUnparseable)
	}
	t, err := time.Parse(Layout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseable, createdAt)
	}
	return t, nil
}

// Relative renders then as a phrase relative to now ("5 minutes ago").
func Relative(then, now time.Time) string {
	return humanize.CustomRelTime(then, now, "ago", "from now", relativeMagnitudes)
}

// Friendly renders createdAt as "Dec 9, 2016 at 03:30 pm". The day loses any
// leading zero, the year token is copied from the tail of the source string
// and the clock stays in the source offset.
func Friendly(createdAt string) (string, error) {
	t, err := Parse(createdAt)
	if err != nil {
		return "", err
	}

	fields := strings.Fields(createdAt)
	tail := fields[len(fields)-1]

	return t.Format("Jan 2") + ", " + tail + " at " + t.Format("03:04 pm"), nil
}

// ToRelativeTime returns a copy of items with CreatedAt rewritten relative to
// now. Values that cannot be parsed are passed through unchanged.
func ToRelativeTime(items []feed.Item, now time.Time) []feed.Item {
	return rewrite(items, func(createdAt string) (string, error) {
		t, err := Parse(createdAt)
		if err != nil {
			return "", err
		}
		return Relative(t, now), nil
	})
}

// ToFriendlyTimestamp returns a copy of items with CreatedAt in the Friendly
// form. Values that cannot be parsed are passed through unchanged.
func ToFriendlyTimestamp(items []feed.Item) []feed.Item {
	return rewrite(items, Friendly)
}

func rewrite(items []feed.Item, format func(string) (string, error)) []feed.Item {
	if items == nil {
		return nil
	}
	out := make([]feed.Item, len(items))
	for i, item := range items {
		rendered, err := format(item.CreatedAt)
		if err != nil {
			out[i] = item
			continue
		}
		out[i] = item.WithCreatedAt(rendered)
	}
	return out
}
