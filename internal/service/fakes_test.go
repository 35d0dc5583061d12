package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/servicenest/helpdesk/internal/domain"
	"github.com/servicenest/helpdesk/internal/repository"
)

var (
	errStoreDown      = errors.New("store unavailable")
	errDuplicateEmail = &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
)

// snapshotter lets the fake transaction manager roll fakes back.
type snapshotter interface {
	snapshot() func()
}

// fakeTxManager snapshots every registered fake before running the unit of
// work and restores them when it fails, mimicking a rollback.
type fakeTxManager struct {
	stores []snapshotter
	calls  int
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	restores := make([]func(), 0, len(m.stores))
	for _, store := range m.stores {
		restores = append(restores, store.snapshot())
	}
	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
	order   []string
	names   map[string]string
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets: make(map[string]*domain.Ticket),
		names:   make(map[string]string),
	}
}

func (r *fakeTicketRepo) snapshot() func() {
	saved := make(map[string]*domain.Ticket, len(r.tickets))
	for id, ticket := range r.tickets {
		clone := *ticket
		saved[id] = &clone
	}
	savedOrder := append([]string(nil), r.order...)
	return func() {
		r.tickets = saved
		r.order = savedOrder
	}
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	r.order = append(r.order, ticket.ID)
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) GetForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeTicketRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) (int64, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return 0, nil
	}
	for field, value := range fields {
		switch field {
		case domain.FieldStatus:
			ticket.Status = domain.TicketStatus(value.(string))
		case domain.FieldPriority:
			ticket.Priority = domain.TicketPriority(value.(string))
		case domain.FieldType:
			ticket.Type = domain.TicketType(value.(string))
		case domain.FieldAssigneeID:
			ticket.AssigneeID = optionalString(value)
		case domain.FieldAssignedTeam:
			ticket.AssignedTeam = optionalString(value)
		}
	}
	ticket.UpdatedAt = time.Now()
	return 1, nil
}

func (r *fakeTicketRepo) GetListing(ctx context.Context, id string) (*repository.TicketListing, error) {
	ticket, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &repository.TicketListing{Ticket: *ticket, CreatedByName: r.names[ticket.CreatedBy]}, nil
}

func (r *fakeTicketRepo) ListByOrganization(ctx context.Context, orgID string, filter repository.TicketFilter) ([]repository.TicketListing, error) {
	var out []repository.TicketListing
	for _, id := range r.order {
		ticket := r.tickets[id]
		if ticket.OrganizationID != orgID {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && ticket.Priority != *filter.Priority {
			continue
		}
		out = append(out, repository.TicketListing{Ticket: *ticket})
	}
	return out, nil
}

func (r *fakeTicketRepo) Search(ctx context.Context, orgID, term string) ([]domain.Ticket, error) {
	term = strings.ToLower(term)
	var out []domain.Ticket
	for _, id := range r.order {
		ticket := r.tickets[id]
		if ticket.OrganizationID != orgID {
			continue
		}
		haystack := strings.ToLower(ticket.ID + " " + ticket.Title + " " + ticket.Description)
		if strings.Contains(haystack, term) {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) ListAssigned(ctx context.Context, userID string) ([]repository.TicketListing, error) {
	var out []repository.TicketListing
	for _, id := range r.order {
		ticket := r.tickets[id]
		if ticket.AssigneeID != nil && *ticket.AssigneeID == userID {
			out = append(out, repository.TicketListing{Ticket: *ticket})
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) Overview(ctx context.Context, orgID string, since time.Time, rangeDays int) (*domain.DashboardOverview, error) {
	overview := &domain.DashboardOverview{}
	statusCounts := make(map[domain.TicketStatus]int64)
	for _, ticket := range r.tickets {
		if ticket.OrganizationID != orgID {
			continue
		}
		overview.TotalTickets++
		if ticket.Status == domain.TicketStatusOpen {
			overview.OpenTickets++
		}
		if ticket.Status == domain.TicketStatusResolved {
			overview.ResolvedTickets++
		}
		statusCounts[ticket.Status]++
	}
	statuses := make([]domain.TicketStatus, 0, len(statusCounts))
	for status := range statusCounts {
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })
	for _, status := range statuses {
		overview.Status = append(overview.Status, domain.StatusCount{Status: status, Count: statusCounts[status]})
	}
	return overview, nil
}

func optionalString(value any) *string {
	if value == nil {
		return nil
	}
	str := value.(string)
	return &str
}

type fakeHistoryRepo struct {
	entries []domain.TicketHistory
	nextID  int64
	failErr error
}

func (r *fakeHistoryRepo) snapshot() func() {
	saved := append([]domain.TicketHistory(nil), r.entries...)
	savedID := r.nextID
	return func() {
		r.entries = saved
		r.nextID = savedID
	}
}

func (r *fakeHistoryRepo) CreateBatch(ctx context.Context, entries []domain.TicketHistory) error {
	if r.failErr != nil {
		return r.failErr
	}
	for _, entry := range entries {
		r.nextID++
		entry.ID = r.nextID
		entry.CreatedAt = time.Now()
		r.entries = append(r.entries, entry)
	}
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	var out []domain.TicketHistory
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].TicketID == ticketID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *fakeHistoryRepo) forTicket(ticketID string) []domain.TicketHistory {
	var out []domain.TicketHistory
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out
}

type fakeMergeRepo struct {
	links   []domain.MergeLink
	nextID  int64
	tickets *fakeTicketRepo
	failErr error
	// failAfter fails CreateLink once this many links exist. Zero disables.
	failAfter int
}

func (r *fakeMergeRepo) snapshot() func() {
	saved := append([]domain.MergeLink(nil), r.links...)
	savedID := r.nextID
	return func() {
		r.links = saved
		r.nextID = savedID
	}
}

func (r *fakeMergeRepo) CreateLink(ctx context.Context, link *domain.MergeLink) error {
	if r.failErr != nil {
		return r.failErr
	}
	if r.failAfter > 0 && len(r.links) >= r.failAfter {
		return errStoreDown
	}
	r.nextID++
	link.ID = r.nextID
	link.CreatedAt = time.Now()
	r.links = append(r.links, *link)
	return nil
}

func (r *fakeMergeRepo) MasterOf(ctx context.Context, ticketID string) (*string, error) {
	for _, link := range r.links {
		if link.MergedTicketID == ticketID {
			master := link.MasterTicketID
			return &master, nil
		}
	}
	return nil, nil
}

func (r *fakeMergeRepo) ListMerged(ctx context.Context, masterID string) ([]domain.MergedTicketSummary, error) {
	var out []domain.MergedTicketSummary
	for _, link := range r.links {
		if link.MasterTicketID != masterID {
			continue
		}
		summary := domain.MergedTicketSummary{ID: link.MergedTicketID}
		if r.tickets != nil {
			if ticket, ok := r.tickets.tickets[link.MergedTicketID]; ok {
				summary.Title = ticket.Title
				summary.Status = ticket.Status
				summary.Priority = ticket.Priority
			}
		}
		out = append(out, summary)
	}
	return out, nil
}

func (r *fakeMergeRepo) HasLinks(ctx context.Context, ticketID string) (bool, error) {
	for _, link := range r.links {
		if link.MasterTicketID == ticketID || link.MergedTicketID == ticketID {
			return true, nil
		}
	}
	return false, nil
}

type fakeCommentRepo struct {
	comments []domain.Comment
	failErr  error
}

func (r *fakeCommentRepo) snapshot() func() {
	saved := append([]domain.Comment(nil), r.comments...)
	return func() { r.comments = saved }
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	if r.failErr != nil {
		return r.failErr
	}
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	var out []domain.Comment
	for i := len(r.comments) - 1; i >= 0; i-- {
		if r.comments[i].TicketID == ticketID {
			out = append(out, r.comments[i])
		}
	}
	return out, nil
}

type fakeAttachmentRepo struct {
	attachments []domain.Attachment
	nextID      int64
	failErr     error
}

func (r *fakeAttachmentRepo) snapshot() func() {
	saved := append([]domain.Attachment(nil), r.attachments...)
	savedID := r.nextID
	return func() {
		r.attachments = saved
		r.nextID = savedID
	}
}

func (r *fakeAttachmentRepo) Create(ctx context.Context, attachment *domain.Attachment) error {
	if r.failErr != nil {
		return r.failErr
	}
	r.nextID++
	attachment.ID = r.nextID
	attachment.CreatedAt = time.Now()
	r.attachments = append(r.attachments, *attachment)
	return nil
}

func (r *fakeAttachmentRepo) ListDirect(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	var out []domain.Attachment
	for _, attachment := range r.attachments {
		if attachment.TicketID == ticketID && attachment.CommentID == nil {
			out = append(out, attachment)
		}
	}
	return out, nil
}

func (r *fakeAttachmentRepo) ListByComments(ctx context.Context, ticketID string) (map[string][]domain.Attachment, error) {
	out := make(map[string][]domain.Attachment)
	for _, attachment := range r.attachments {
		if attachment.TicketID == ticketID && attachment.CommentID != nil {
			out[*attachment.CommentID] = append(out[*attachment.CommentID], attachment)
		}
	}
	return out, nil
}

type watcherKey struct {
	ticketID string
	userID   string
}

type fakeWatcherRepo struct {
	watchers map[watcherKey]time.Time
}

func newFakeWatcherRepo() *fakeWatcherRepo {
	return &fakeWatcherRepo{watchers: make(map[watcherKey]time.Time)}
}

func (r *fakeWatcherRepo) snapshot() func() {
	saved := make(map[watcherKey]time.Time, len(r.watchers))
	for key, at := range r.watchers {
		saved[key] = at
	}
	return func() { r.watchers = saved }
}

func (r *fakeWatcherRepo) Add(ctx context.Context, ticketID, userID string) (bool, error) {
	key := watcherKey{ticketID: ticketID, userID: userID}
	if _, ok := r.watchers[key]; ok {
		return false, nil
	}
	r.watchers[key] = time.Now()
	return true, nil
}

func (r *fakeWatcherRepo) Remove(ctx context.Context, ticketID, userID string) (bool, error) {
	key := watcherKey{ticketID: ticketID, userID: userID}
	if _, ok := r.watchers[key]; !ok {
		return false, nil
	}
	delete(r.watchers, key)
	return true, nil
}

func (r *fakeWatcherRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Watcher, error) {
	var out []domain.Watcher
	for key, at := range r.watchers {
		if key.ticketID == ticketID {
			out = append(out, domain.Watcher{TicketID: key.ticketID, UserID: key.userID, CreatedAt: at})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) snapshot() func() {
	saved := make(map[string]*domain.User, len(r.users))
	for id, user := range r.users {
		clone := *user
		saved[id] = &clone
	}
	return func() { r.users = saved }
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return errDuplicateEmail
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) UpdateTeam(ctx context.Context, id string, teamID *string) error {
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.TeamID = teamID
	return nil
}

func (r *fakeUserRepo) ListByOrganization(ctx context.Context, orgID string) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.users {
		if user.OrganizationID != nil && *user.OrganizationID == orgID {
			out = append(out, *user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) ListByTeam(ctx context.Context, orgID, teamID string) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.users {
		if user.OrganizationID == nil || *user.OrganizationID != orgID {
			continue
		}
		if user.TeamID != nil && *user.TeamID == teamID {
			out = append(out, *user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
