package models

import "time"

// Headline is a news headline received from a stream or feed.
type Headline struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Text        string    `json:"headline"`
	Symbols     []string  `json:"symbols,omitempty"`
	URL         string    `json:"url,omitempty"`
	Category    string    `json:"category,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}
