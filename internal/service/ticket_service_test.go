package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/servicenest/helpdesk/internal/auth"
	"github.com/servicenest/helpdesk/internal/config"
	"github.com/servicenest/helpdesk/internal/domain"
	"github.com/servicenest/helpdesk/internal/events"
	apperrors "github.com/servicenest/helpdesk/pkg/util"
)

type ticketFixture struct {
	tickets     *fakeTicketRepo
	history     *fakeHistoryRepo
	merges      *fakeMergeRepo
	comments    *fakeCommentRepo
	attachments *fakeAttachmentRepo
	tx          *fakeTxManager
	events      *[]events.Event
	svc         *TicketService
}

func newTicketFixture(t *testing.T, cfg config.TicketsConfig) *ticketFixture {
	t.Helper()
	tickets := newFakeTicketRepo()
	history := &fakeHistoryRepo{}
	merges := &fakeMergeRepo{tickets: tickets}
	comments := &fakeCommentRepo{}
	attachments := &fakeAttachmentRepo{}
	tx := &fakeTxManager{stores: []snapshotter{tickets, history, merges, comments, attachments}}

	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	var received []events.Event
	record := func(ctx context.Context, event events.Event) error {
		received = append(received, event)
		return nil
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketUpdated,
		events.EventTicketsMerged,
		events.EventCommentAdded,
		events.EventWatcherAdded,
	} {
		dispatcher.Subscribe(eventType, record)
	}

	svc := NewTicketService(cfg, TicketDependencies{
		TicketRepo:     tickets,
		HistoryRepo:    history,
		MergeRepo:      merges,
		CommentRepo:    comments,
		AttachmentRepo: attachments,
		TxManager:      tx,
		Dispatcher:     dispatcher,
		Cache:          nil,
	})
	return &ticketFixture{
		tickets:     tickets,
		history:     history,
		merges:      merges,
		comments:    comments,
		attachments: attachments,
		tx:          tx,
		events:      &received,
		svc:         svc,
	}
}

func defaultTicketsConfig() config.TicketsConfig {
	return config.TicketsConfig{AnnounceAttachments: true}
}

func (f *ticketFixture) seedTicket(t *testing.T, title string) *domain.Ticket {
	t.Helper()
	ticket, err := f.svc.Create(context.Background(), TicketCreateInput{
		Title:          title,
		CreatedBy:      "USR-AAAA0001",
		OrganizationID: "ORG-AAAA0001",
	})
	require.NoError(t, err)
	*f.events = nil
	return ticket
}

func staffCaps() auth.Capabilities {
	return auth.CapabilitiesForRole(domain.RoleAgent)
}

func TestCreateTicketAppliesDefaults(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())

	ticket, err := f.svc.Create(context.Background(), TicketCreateInput{
		Title:          "Printer down",
		CreatedBy:      "USR-AAAA0001",
		OrganizationID: "ORG-AAAA0001",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ticket.ID, "TCK-"), "id %q should carry the TCK prefix", ticket.ID)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, domain.TicketTypeSupport, ticket.Type)

	require.Len(t, *f.events, 1)
	assert.Equal(t, events.EventTicketCreated, (*f.events)[0].Type)
}

func TestCreateTicketRequiresTitleAndScope(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())

	_, err := f.svc.Create(context.Background(), TicketCreateInput{
		Title:          "   ",
		CreatedBy:      "USR-AAAA0001",
		OrganizationID: "ORG-AAAA0001",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = f.svc.Create(context.Background(), TicketCreateInput{Title: "No org", CreatedBy: "USR-AAAA0001"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	assert.Empty(t, f.tickets.tickets)
}

func TestCreateTicketRejectsUnknownEnumValues(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())

	_, err := f.svc.Create(context.Background(), TicketCreateInput{
		Title:          "Bad priority",
		Priority:       "blocker",
		CreatedBy:      "USR-AAAA0001",
		OrganizationID: "ORG-AAAA0001",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestCreateTicketStoresAttachmentWithAnnouncement(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())

	ticket, err := f.svc.Create(context.Background(), TicketCreateInput{
		Title:          "Broken scanner",
		CreatedBy:      "USR-AAAA0001",
		OrganizationID: "ORG-AAAA0001",
		Attachment:     &AttachmentInput{FileURL: "https://files/scan.png", FileName: "scan.png"},
	})
	require.NoError(t, err)

	direct, err := f.attachments.ListDirect(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, direct, 1)
	assert.Equal(t, "scan.png", direct[0].FileName)

	require.Len(t, f.comments.comments, 1)
	assert.True(t, f.comments.comments[0].System)
	assert.Contains(t, f.comments.comments[0].Message, "scan.png")
}

func TestCreateTicketAttachmentAnnouncementDisabled(t *testing.T) {
	f := newTicketFixture(t, config.TicketsConfig{AnnounceAttachments: false})

	_, err := f.svc.Create(context.Background(), TicketCreateInput{
		Title:          "Broken scanner",
		CreatedBy:      "USR-AAAA0001",
		OrganizationID: "ORG-AAAA0001",
		Attachment:     &AttachmentInput{FileURL: "https://files/scan.png", FileName: "scan.png"},
	})
	require.NoError(t, err)
	assert.Empty(t, f.comments.comments)
}

func TestUpdateRecordsOneHistoryEntryPerChangedField(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())
	ticket := f.seedTicket(t, "Printer down")

	err := f.svc.Update(context.Background(), ticket.ID, "USR-AGENT001", map[string]string{
		domain.FieldStatus:   string(domain.TicketStatusInProgress),
		domain.FieldPriority: string(domain.TicketPriorityHigh),
		domain.FieldType:     string(domain.TicketTypeSupport), // unchanged
	})
	require.NoError(t, err)

	entries := f.history.forTicket(ticket.ID)
	require.Len(t, entries, 2)
	fields := map[string]bool{}
	for _, entry := range entries {
		fields[entry.FieldName] = true
		require.NotNil(t, entry.OldValue)
		require.NotNil(t, entry.NewValue)
		assert.Equal(t, "USR-AGENT001", entry.UpdatedBy)
	}
	assert.True(t, fields[domain.FieldStatus])
	assert.True(t, fields[domain.FieldPriority])

	updated, err := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	assert.Equal(t, domain.TicketPriorityHigh, updated.Priority)

	require.Len(t, *f.events, 1)
	payload, ok := (*f.events)[0].Payload.(events.TicketUpdatedPayload)
	require.True(t, ok)
	assert.Len(t, payload.Changes, 2)
}

func TestUpdateWithIdenticalValuesWritesNoHistory(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())
	ticket := f.seedTicket(t, "Printer down")

	err := f.svc.Update(context.Background(), ticket.ID, "USR-AGENT001", map[string]string{
		domain.FieldStatus:   string(domain.TicketStatusOpen),
		domain.FieldPriority: string(domain.TicketPriorityMedium),
	})
	require.NoError(t, err)

	assert.Empty(t, f.history.forTicket(ticket.ID))
	assert.Empty(t, *f.events, "a no-op update should not publish")
}

func TestUpdateIsIdempotent(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())
	ticket := f.seedTicket(t, "Printer down")
	changes := map[string]string{domain.FieldStatus: string(domain.TicketStatusResolved)}

	require.NoError(t, f.svc.Update(context.Background(), ticket.ID, "USR-AGENT001", changes))
	require.NoError(t, f.svc.Update(context.Background(), ticket.ID, "USR-AGENT001", changes))

	assert.Len(t, f.history.forTicket(ticket.ID), 1)
}

func TestUpdateIgnoresUnknownKeys(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())
	ticket := f.seedTicket(t, "Printer down")

	err := f.svc.Update(context.Background(), ticket.ID, "USR-AGENT001", map[string]string{
		domain.FieldStatus: string(domain.TicketStatusResolved),
		"title":            "hijacked",
		"organization_id":  "ORG-EVIL0001",
	})
	require.NoError(t, err)

	assert.Len(t, f.history.forTicket(ticket.ID), 1)
	updated, err := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "Printer down", updated.Title)
	assert.Equal(t, "ORG-AAAA0001", updated.OrganizationID)
}

func TestUpdateWithOnlyDisallowedKeysFails(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())
	ticket := f.seedTicket(t, "Printer down")
	f.tx.calls = 0

	err := f.svc.Update(context.Background(), ticket.ID, "USR-AGENT001", map[string]string{
		"title":      "hijacked",
		"created_by": "USR-EVIL0001",
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	assert.Zero(t, f.tx.calls, "no transaction should start for an empty change set")
}

func TestUpdateUnknownTicketIsNotFound(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())

	err := f.svc.Update(context.Background(), "TCK-MISSING1", "USR-AGENT001", map[string]string{
		domain.FieldStatus: string(domain.TicketStatusClosed),
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestUpdateMergedTicketIsRejected(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())
	master := f.seedTicket(t, "Master")
	merged := f.seedTicket(t, "Duplicate")
	require.NoError(t, f.svc.Merge(context.Background(), master.ID, []string{merged.ID}, "USR-AGENT001"))

	err := f.svc.Update(context.Background(), merged.ID, "USR-AGENT001", map[string]string{
		domain.FieldStatus: string(domain.TicketStatusClosed),
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	assert.Empty(t, f.history.forTicket(merged.ID))
}

func TestUpdateRollsBackWhenHistoryWriteFails(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())
	ticket := f.seedTicket(t, "Printer down")
	f.history.failErr = errStoreDown

	err := f.svc.Update(context.Background(), ticket.ID, "USR-AGENT001", map[string]string{
		domain.FieldStatus: string(domain.TicketStatusResolved),
	})
	require.Error(t, err)

	current, getErr := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.TicketStatusOpen, current.Status, "field write must not survive the failed unit of work")
	assert.Empty(t, f.history.forTicket(ticket.ID))
}

func TestMergeLinksEveryTicketAtomically(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())
	master := f.seedTicket(t, "Master")
	first := f.seedTicket(t, "Dup one")
	second := f.seedTicket(t, "Dup two")

	require.NoError(t, f.svc.Merge(context.Background(), master.ID, []string{first.ID, second.ID}, "USR-AGENT001"))

	assert.Len(t, f.merges.links, 2)
	require.Len(t, *f.events, 1)
	assert.Equal(t, events.EventTicketsMerged, (*f.events)[0].Type)

	composite, err := f.svc.GetComposite(context.Background(), master.ID, staffCaps())
	require.NoError(t, err)
	assert.False(t, composite.IsMerged)
	assert.True(t, composite.Editable)
	assert.Len(t, composite.MergedTickets, 2)

	mergedView, err := f.svc.GetComposite(context.Background(), first.ID, staffCaps())
	require.NoError(t, err)
	assert.True(t, mergedView.IsMerged)
	assert.False(t, mergedView.Editable)
	require.NotNil(t, mergedView.MasterTicketID)
	assert.Equal(t, master.ID, *mergedView.MasterTicketID)
}

func TestMergeRequiresTargets(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())
	master := f.seedTicket(t, "Master")

	err := f.svc.Merge(context.Background(), master.ID, nil, "USR-AGENT001")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	assert.Empty(t, f.merges.links)
}

func TestMergeRejectsSelf(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())
	master := f.seedTicket(t, "Master")

	err := f.svc.Merge(context.Background(), master.ID, []string{master.ID}, "USR-AGENT001")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	assert.Empty(t, f.merges.links)
}

func TestMergeRejectsChains(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())
	a := f.seedTicket(t, "A")
	b := f.seedTicket(t, "B")
	c := f.seedTicket(t, "C")
	require.NoError(t, f.svc.Merge(context.Background(), a.ID, []string{b.ID}, "USR-AGENT001"))

	// A merged member cannot become a master.
	err := f.svc.Merge(context.Background(), b.ID, []string{c.ID}, "USR-AGENT001")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	// A merged member cannot be absorbed again.
	err = f.svc.Merge(context.Background(), c.ID, []string{b.ID}, "USR-AGENT001")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	// An established master may keep absorbing.
	require.NoError(t, f.svc.Merge(context.Background(), a.ID, []string{c.ID}, "USR-AGENT001"))
	assert.Len(t, f.merges.links, 2)
}

func TestMergeUnknownTicketIsNotFound(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())
	master := f.seedTicket(t, "Master")

	err := f.svc.Merge(context.Background(), master.ID, []string{"TCK-MISSING1"}, "USR-AGENT001")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	assert.Empty(t, f.merges.links)
}

func TestMergeRollsBackAllLinksOnPartialFailure(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())
	master := f.seedTicket(t, "Master")
	first := f.seedTicket(t, "Dup one")
	second := f.seedTicket(t, "Dup two")
	f.merges.failAfter = 1

	err := f.svc.Merge(context.Background(), master.ID, []string{first.ID, second.ID}, "USR-AGENT001")
	require.Error(t, err)
	assert.Empty(t, f.merges.links, "partial merges must not survive")
	assert.Empty(t, *f.events)
}

func TestGetCompositeHidesInternalCommentsFromUsers(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())
	ticket := f.seedTicket(t, "Printer down")
	require.NoError(t, f.comments.Create(context.Background(), &domain.Comment{
		ID: "CMT-PUBLIC01", TicketID: ticket.ID, UserID: "USR-AAAA0001", Message: "any update?",
	}))
	require.NoError(t, f.comments.Create(context.Background(), &domain.Comment{
		ID: "CMT-SECRET01", TicketID: ticket.ID, UserID: "USR-AGENT001", Message: "vendor escalation", IsInternal: true,
	}))

	asUser, err := f.svc.GetComposite(context.Background(), ticket.ID, auth.CapabilitiesForRole(domain.RoleUser))
	require.NoError(t, err)
	require.Len(t, asUser.Comments, 1)
	assert.Equal(t, "CMT-PUBLIC01", asUser.Comments[0].ID)

	asAgent, err := f.svc.GetComposite(context.Background(), ticket.ID, staffCaps())
	require.NoError(t, err)
	assert.Len(t, asAgent.Comments, 2)
}

func TestGetCompositeUnknownTicketIsNotFound(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())

	_, err := f.svc.GetComposite(context.Background(), "TCK-MISSING1", staffCaps())
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestSearchFindsByTitle(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())
	ticket := f.seedTicket(t, "Printer down")
	f.seedTicket(t, "VPN flaky")

	found, err := f.svc.Search(context.Background(), "ORG-AAAA0001", "printer")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, ticket.ID, found[0].ID)

	_, err = f.svc.Search(context.Background(), "ORG-AAAA0001", "  ")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestListHistoryRequiresExistingTicket(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())
	ticket := f.seedTicket(t, "Printer down")
	require.NoError(t, f.svc.Update(context.Background(), ticket.ID, "USR-AGENT001", map[string]string{
		domain.FieldStatus: string(domain.TicketStatusInProgress),
	}))

	entries, err := f.svc.ListHistory(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = f.svc.ListHistory(context.Background(), "TCK-MISSING1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestDashboardOverviewCountsTickets(t *testing.T) {
	f := newTicketFixture(t, defaultTicketsConfig())
	first := f.seedTicket(t, "Printer down")
	f.seedTicket(t, "VPN flaky")
	require.NoError(t, f.svc.Update(context.Background(), first.ID, "USR-AGENT001", map[string]string{
		domain.FieldStatus: string(domain.TicketStatusResolved),
	}))

	overview, err := f.svc.DashboardOverview(context.Background(), "ORG-AAAA0001", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), overview.TotalTickets)
	assert.Equal(t, int64(1), overview.OpenTickets)
	assert.Equal(t, int64(1), overview.ResolvedTickets)
}
