package dto

import "time"

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Message    string             `json:"message"`
	IsInternal bool               `json:"is_internal"`
	Attachment *AttachmentPayload `json:"attachment"`
}

// AttachmentResponse is one stored file reference.
type AttachmentResponse struct {
	ID         int64     `json:"id"`
	FileURL    string    `json:"file_url"`
	FileName   string    `json:"file_name"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// CommentResponse is one thread entry.
type CommentResponse struct {
	ID          string               `json:"id"`
	TicketID    string               `json:"ticket_id"`
	UserID      string               `json:"user_id"`
	AuthorName  string               `json:"author_name,omitempty"`
	Message     string               `json:"message"`
	IsInternal  bool                 `json:"is_internal"`
	IsSystem    bool                 `json:"is_system"`
	CreatedAt   time.Time            `json:"created_at"`
	Attachments []AttachmentResponse `json:"attachments"`
}
