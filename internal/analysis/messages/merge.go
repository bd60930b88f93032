package messages

import (
	"slices"
	"time"

	"github.com/patteyb/twitter-interface/internal/analysis/timestamp"
	"github.com/patteyb/twitter-interface/internal/model/feed"
)

// Merge interleaves two conversations that are each already ascending by
// created_at into one ascending list. Instants are compared to the second;
// when a received and a sent message share a second the received one comes
// first. Relative order inside each input is preserved.
func Merge(received, sent []feed.Item) []feed.Item {
	out := make([]feed.Item, 0, len(received)+len(sent))

	i, j := 0, 0
	for i < len(received) && j < len(sent) {
		if !instant(sent[j]).Before(instant(received[i])) {
			out = append(out, received[i])
			i++
		} else {
			out = append(out, sent[j])
			j++
		}
	}

	out = append(out, received[i:]...)
	out = append(out, sent[j:]...)
	return out
}

// Chronological returns a copy of items stably sorted ascending by created_at.
// Items whose timestamp cannot be parsed sort first.
func Chronological(items []feed.Item) []feed.Item {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b feed.Item) int {
		return instant(a).Compare(instant(b))
	})
	return sorted
}

// instant truncates to the second; unparseable values map to the zero time.
func instant(item feed.Item) time.Time {
	t, err := timestamp.Parse(item.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t.Truncate(time.Second)
}
