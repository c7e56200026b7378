package models

import "time"

// AccountStatus is the outcome of classifying a profile page before
// extraction. It is terminal for a single crawl attempt.
type AccountStatus string

const (
	StatusSuccess     AccountStatus = "SUCCESS"
	StatusPrivate     AccountStatus = "PRIVATE"
	StatusNotFound    AccountStatus = "NOT_FOUND"
	StatusRateLimited AccountStatus = "RATE_LIMITED"
	StatusError       AccountStatus = "ERROR"
)

// Reel is one harvested short-video post. Optional fields are pointers
// so that "unknown" survives a JSON round trip instead of collapsing to
// a zero value.
type Reel struct {
	ID           string    `json:"id"`
	SourceURL    string    `json:"reel_url"`
	VideoURL     *string   `json:"video_url,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Caption      *string   `json:"caption,omitempty"`
	PostedAt     time.Time `json:"posted_at"`
	Views        *int      `json:"views,omitempty"`
	Likes        *int      `json:"likes,omitempty"`
	Comments     *int      `json:"comments,omitempty"`
}

// CrawlResult is the outcome of one profile feed crawl. Reels are in
// discovery order, not necessarily chronological. Message is set when
// Status is anything other than StatusSuccess.
type CrawlResult struct {
	Reels   []Reel        `json:"reels"`
	Status  AccountStatus `json:"status"`
	Message string        `json:"message,omitempty"`
}
