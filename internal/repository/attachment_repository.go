package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servicenest/helpdesk/internal/domain"
)

// AttachmentRepository persists references to already-stored files.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	// ListDirect returns attachments on the ticket itself, not those tied
	// to a specific comment.
	ListDirect(ctx context.Context, ticketID string) ([]domain.Attachment, error)
	// ListByComments returns comment attachments grouped by comment id.
	ListByComments(ctx context.Context, ticketID string) (map[string][]domain.Attachment, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO attachments (ticket_id, comment_id, file_url, file_name, uploaded_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return dbFrom(ctx, r.pool).QueryRow(ctx, query,
		attachment.TicketID,
		attachment.CommentID,
		attachment.FileURL,
		attachment.FileName,
		attachment.UploadedBy,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *attachmentRepository) ListDirect(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	const query = `
        SELECT id, ticket_id, comment_id, file_url, file_name, uploaded_by, created_at
        FROM attachments WHERE ticket_id=$1 AND comment_id IS NULL`
	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Attachment
	for rows.Next() {
		attachment, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}

func (r *attachmentRepository) ListByComments(ctx context.Context, ticketID string) (map[string][]domain.Attachment, error) {
	const query = `
        SELECT id, ticket_id, comment_id, file_url, file_name, uploaded_by, created_at
        FROM attachments WHERE ticket_id=$1 AND comment_id IS NOT NULL`
	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]domain.Attachment)
	for rows.Next() {
		attachment, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		result[*attachment.CommentID] = append(result[*attachment.CommentID], attachment)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttachment(row rowScanner) (domain.Attachment, error) {
	var attachment domain.Attachment
	err := row.Scan(
		&attachment.ID,
		&attachment.TicketID,
		&attachment.CommentID,
		&attachment.FileURL,
		&attachment.FileName,
		&attachment.UploadedBy,
		&attachment.CreatedAt,
	)
	return attachment, err
}
