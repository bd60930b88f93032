package feed

import "time"

// Account identifies the configured profile shown in the page header.
type Account struct {
	ScreenName string `json:"screenName"`
	Name       string `json:"name"`
	ProfileURL string `json:"profileUrl"`
}

// Snapshot is the render-ready view-model. A new Snapshot is built for every
// change and handed out by value; its slices are never modified afterwards.
type Snapshot struct {
	ID            string    `json:"id"`
	Account       Account   `json:"account"`
	Tweets        []Item    `json:"tweets"`
	Friends       []Item    `json:"friends"`
	Messages      []Item    `json:"messages"`
	Failed        bool      `json:"failed"`
	FailureReason string    `json:"failureReason,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
