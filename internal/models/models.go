package models

import (
	"time"
)

// Session is an authentication cookie string issued by an operator
// swagger:model Session
type Session struct {
	// Storage ID
	ID int64 `json:"id"`
	// Raw cookie header value
	Value string `json:"-"`
	// Whether the platform still accepts this session
	Alive bool `json:"alive"`
	// When the session was provisioned
	CreatedAt time.Time `json:"created_at"`
	// When a pass last handed the session out, zero if never
	LastUsedAt time.Time `json:"last_used_at"`
}

// Target is a monitored post subscribed to by a user
// swagger:model Target
type Target struct {
	// Storage ID
	ID int64 `json:"id"`
	// Subscribing user identifier (an email in practice)
	UserID string `json:"user_id"`
	// URL as provided by the user
	URL string `json:"url"`
	// Comment count observed at the end of the last completed crawl
	LastCommentCount int `json:"last_comment_count"`
	// Subscription timestamp
	CreatedAt time.Time `json:"created_at"`
}

// Locator is the canonical identity of a post derived from one of its URLs
type Locator struct {
	// Platform post ID
	NoteID string `json:"note_id"`
	// Short-lived share token required to read the post
	Token string `json:"xsec_token"`
	// Share source tag (app_share, pc_feed, ...)
	Source string `json:"xsec_source"`
	// Explore-shape URL carrying only token, source and type
	CanonicalURL string `json:"canonical_url"`
}

// CommentRecord is one top-level comment or reply
// swagger:model CommentRecord
type CommentRecord struct {
	// Platform comment ID, globally unique
	ID string `json:"comment_id"`
	// Comment author's display name
	Author string `json:"author"`
	// Comment body text
	Content string `json:"content"`
	// Like count
	LikeCount int `json:"like_count"`
	// IP-derived location string
	Location string `json:"location"`
	// Comment creation timestamp
	CreatedAt time.Time `json:"created_at"`
	// Top-level comment this reply belongs to, empty for top-level comments
	ParentID string `json:"parent_id,omitempty"`
}

// PostSnapshot is a point-in-time read of a post's metadata
// swagger:model PostSnapshot
type PostSnapshot struct {
	// Platform post ID
	NoteID string `json:"note_id"`
	// Post title
	Title string `json:"title"`
	// Author's display name
	Author string `json:"author"`
	// Like counter
	LikeCount int `json:"like_count"`
	// Collect counter
	CollectCount int `json:"collect_count"`
	// Comment counter
	CommentCount int `json:"comment_count"`
	// Post body with newlines removed
	Content string `json:"content"`
	// Post type (normal, video)
	Type string `json:"type"`
	// IP-derived location string
	Location string `json:"location"`
	// Canonical explore URL
	URL string `json:"url"`
	// Post publication time
	PublishedAt time.Time `json:"published_at"`
}

// SearchHit is one post returned by a keyword search
// swagger:model SearchHit
type SearchHit struct {
	// Platform post ID
	NoteID string `json:"note_id"`
	// Display title
	Title string `json:"title"`
	// Author's display name
	Author string `json:"author"`
	// Like counter
	LikeCount int `json:"like_count"`
	// Post type (normal, video)
	Type string `json:"type"`
	// Share token the search issued for this post
	Token string `json:"xsec_token"`
	// Explore URL usable as a monitor target
	URL string `json:"url"`
}

// FlatRecord is one stored row: post metadata joined with a single comment
// swagger:model FlatRecord
type FlatRecord struct {
	Keyword         string    `json:"keyword"`
	UserID          string    `json:"user_id"`
	NoteID          string    `json:"note_id"`
	Title           string    `json:"title"`
	NoteAuthor      string    `json:"note_author"`
	NoteLikes       int       `json:"note_likes"`
	NoteCollects    int       `json:"note_collects"`
	NoteComments    int       `json:"note_comments"`
	NoteURL         string    `json:"note_url"`
	NoteTime        time.Time `json:"note_time"`
	NoteLocation    string    `json:"note_location"`
	NoteType        string    `json:"note_type"`
	NoteContent     string    `json:"note_content"`
	CommentID       string    `json:"comment_id"`
	ParentCommentID string    `json:"parent_comment_id,omitempty"`
	CommentAuthor   string    `json:"comment_author"`
	CommentContent  string    `json:"comment_content"`
	CommentLikes    int       `json:"comment_likes"`
	CommentLocation string    `json:"comment_location"`
	CommentTime     time.Time `json:"comment_time"`
	CollectedAt     time.Time `json:"collected_at"`
}

// SaveResult reports the outcome of a dedup persistence batch
type SaveResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	// Records that were actually written, in input order
	Fresh []FlatRecord `json:"-"`
}
