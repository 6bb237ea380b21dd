package models

import "time"

// CommentThread anchors a discussion to a source. There is at most one
// thread per (vault, source) pair; it is created lazily on first use.
type CommentThread struct {
	ID        string
	VaultID   string
	SourceID  string
	CreatedAt time.Time
}

// Comment is one message in a thread, listed oldest first.
type Comment struct {
	ID        string
	ThreadID  string
	UserID    string
	Body      string
	CreatedAt time.Time
}
