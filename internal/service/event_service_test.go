package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tickethive/ticketing/internal/models"
	"github.com/tickethive/ticketing/internal/repository"
	"gorm.io/gorm"
)

// --- Mock EventRepository ---

type mockEventRepo struct {
	events map[string]*models.Event
	saved  []*models.Event
}

func newMockEventRepo(events ...*models.Event) *mockEventRepo {
	m := &mockEventRepo{events: make(map[string]*models.Event)}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	m.events[event.ID] = event
	return nil
}

func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	if e, ok := m.events[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Event, error) {
	return m.FindByID(ctx, id)
}

func (m *mockEventRepo) FindApproved(ctx context.Context) ([]models.Event, error) {
	var out []models.Event
	for _, e := range m.events {
		if e.Status == models.EventApproved {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockEventRepo) FindAll(ctx context.Context) ([]models.Event, error) {
	var out []models.Event
	for _, e := range m.events {
		out = append(out, *e)
	}
	return out, nil
}

func (m *mockEventRepo) FindByOrganizer(ctx context.Context, organizerID string) ([]models.Event, error) {
	var out []models.Event
	for _, e := range m.events {
		if e.OrganizerID == organizerID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockEventRepo) Save(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	m.events[event.ID] = event
	m.saved = append(m.saved, event)
	return nil
}

func (m *mockEventRepo) UpdateStatus(ctx context.Context, id string, status models.EventStatus) (int64, error) {
	e, ok := m.events[id]
	if !ok {
		return 0, nil
	}
	e.Status = status
	m.saved = append(m.saved, e)
	return 1, nil
}

func (m *mockEventRepo) Delete(ctx context.Context, id string) error {
	delete(m.events, id)
	return nil
}

func (m *mockEventRepo) ReserveTickets(ctx context.Context, tx *gorm.DB, id string, n int) (int64, error) {
	return 1, nil
}

func (m *mockEventRepo) ReturnTickets(ctx context.Context, tx *gorm.DB, id string, n int) error {
	return nil
}

func (m *mockEventRepo) AnalyticsByOrganizer(ctx context.Context, organizerID string) ([]repository.EventAnalytics, error) {
	return nil, nil
}

func (m *mockEventRepo) AnalyticsByEvent(ctx context.Context, eventID string) (*repository.EventAnalytics, error) {
	if e, ok := m.events[eventID]; ok {
		return &repository.EventAnalytics{EventID: e.ID, Title: e.Title, Capacity: e.Capacity}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) GetDB() *gorm.DB { return nil }

// --- Tests ---

func approvedEvent(id, organizerID string) *models.Event {
	return &models.Event{
		ID:               id,
		Title:            "Go Meetup",
		Capacity:         50,
		TicketsAvailable: 50,
		Price:            25,
		Status:           models.EventApproved,
		OrganizerID:      organizerID,
	}
}

func TestCreateEvent_StartsPendingAndStocked(t *testing.T) {
	repo := newMockEventRepo()
	svc := NewEventService(repo, nil)

	event := &models.Event{Title: "New", Capacity: 30}
	err := svc.Create(context.Background(), models.Principal{ID: "org-1", Role: models.RoleOrganizer}, event)

	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, models.EventPending, event.Status)
	assert.Equal(t, 30, event.TicketsAvailable)
	assert.Equal(t, "org-1", event.OrganizerID)
}

func TestGetApproved_HidesPending(t *testing.T) {
	pending := approvedEvent("event-1", "org-1")
	pending.Status = models.EventPending
	svc := NewEventService(newMockEventRepo(pending), nil)

	_, err := svc.GetApproved(context.Background(), "event-1")
	assert.ErrorIs(t, err, ErrEventNotApproved)
}

func TestGetApproved_NotFound(t *testing.T) {
	svc := NewEventService(newMockEventRepo(), nil)

	_, err := svc.GetApproved(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestSetStatus_RejectsUnknownValue(t *testing.T) {
	svc := NewEventService(newMockEventRepo(approvedEvent("event-1", "org-1")), nil)

	_, err := svc.SetStatus(context.Background(), "event-1", "archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSetStatus_Approves(t *testing.T) {
	event := approvedEvent("event-1", "org-1")
	event.Status = models.EventPending
	repo := newMockEventRepo(event)
	svc := NewEventService(repo, nil)

	updated, err := svc.SetStatus(context.Background(), "event-1", models.EventApproved)

	require.NoError(t, err)
	assert.Equal(t, models.EventApproved, updated.Status)
	assert.Len(t, repo.saved, 1)
}

func TestSetStatus_UnknownEvent(t *testing.T) {
	svc := NewEventService(newMockEventRepo(), nil)

	_, err := svc.SetStatus(context.Background(), "event-missing", models.EventApproved)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestDelete_OnlyOwner(t *testing.T) {
	repo := newMockEventRepo(approvedEvent("event-1", "org-1"))
	svc := NewEventService(repo, nil)

	err := svc.Delete(context.Background(), models.Principal{ID: "org-2", Role: models.RoleOrganizer}, "event-1")
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Delete(context.Background(), models.Principal{ID: "org-1", Role: models.RoleOrganizer}, "event-1")
	assert.NoError(t, err)
	_, ok := repo.events["event-1"]
	assert.False(t, ok)
}

func TestAnalyticsForEvent_OwnerOrAdmin(t *testing.T) {
	svc := NewEventService(newMockEventRepo(approvedEvent("event-1", "org-1")), nil)

	_, err := svc.AnalyticsForEvent(context.Background(), models.Principal{ID: "org-2", Role: models.RoleOrganizer}, "event-1")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.AnalyticsForEvent(context.Background(), models.Principal{ID: "org-1", Role: models.RoleOrganizer}, "event-1")
	assert.NoError(t, err)

	_, err = svc.AnalyticsForEvent(context.Background(), models.Principal{ID: "admin-1", Role: models.RoleAdmin}, "event-1")
	assert.NoError(t, err)
}
