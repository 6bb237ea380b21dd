package models

import "time"

// Annotation is a member's note attached to a source. Annotations are
// append-only from the UI's perspective: they are created and read, and
// disappear with their source.
type Annotation struct {
	ID        string
	SourceID  string
	UserID    string
	Note      string
	CreatedAt time.Time
}
