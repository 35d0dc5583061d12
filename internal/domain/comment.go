package domain

import "time"

// Comment is one message on a ticket's thread. Comments are never edited or
// deleted. Internal comments are hidden from callers without the
// view-internal capability.
type Comment struct {
	ID          string
	TicketID    string
	UserID      string
	Message     string
	IsInternal  bool
	System      bool
	AuthorName  string
	CreatedAt   time.Time
	Attachments []Attachment
}

// Attachment references an already-stored file. CommentID is nil when the
// file is attached directly to the ticket rather than a specific comment.
type Attachment struct {
	ID         int64
	TicketID   string
	CommentID  *string
	FileURL    string
	FileName   string
	UploadedBy string
	CreatedAt  time.Time
}
