package repository

import (
	"context"

	"github.com/tickethive/ticketing/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventAnalytics is the per-event aggregate returned to organizers. Sold
// tickets and revenue are summed from confirmed bookings, never derived from
// the availability counter.
type EventAnalytics struct {
	EventID     string  `json:"event_id"`
	Title       string  `json:"title"`
	Capacity    int     `json:"capacity"`
	TicketsSold int     `json:"tickets_sold"`
	Revenue     float64 `json:"revenue"`
}

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id string) (*models.Event, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Event, error)
	FindApproved(ctx context.Context) ([]models.Event, error)
	FindAll(ctx context.Context) ([]models.Event, error)
	FindByOrganizer(ctx context.Context, organizerID string) ([]models.Event, error)
	Save(ctx context.Context, tx *gorm.DB, event *models.Event) error
	UpdateStatus(ctx context.Context, id string, status models.EventStatus) (int64, error)
	Delete(ctx context.Context, id string) error
	ReserveTickets(ctx context.Context, tx *gorm.DB, id string, n int) (int64, error)
	ReturnTickets(ctx context.Context, tx *gorm.DB, id string, n int) error
	AnalyticsByOrganizer(ctx context.Context, organizerID string) ([]EventAnalytics, error)
	AnalyticsByEvent(ctx context.Context, eventID string) (*EventAnalytics, error)
	GetDB() *gorm.DB
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// FindByIDForUpdate acquires a row-level lock on the event within the given
// transaction, serializing concurrent inventory mutations on the same event.
func (r *eventRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.Event, error) {
	var event models.Event
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindApproved(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("status = ?", models.EventApproved).
		Order("date ASC").
		Find(&events).Error
	return events, err
}

func (r *eventRepository) FindAll(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&events).Error
	return events, err
}

func (r *eventRepository) FindByOrganizer(ctx context.Context, organizerID string) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("organizer_id = ?", organizerID).
		Order("created_at DESC").
		Find(&events).Error
	return events, err
}

func (r *eventRepository) Save(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Save(event).Error
}

// UpdateStatus flips only the status column. The availability counter belongs
// to the booking transactions; a full-row write here could overwrite a
// concurrent reserve or cancel.
func (r *eventRepository) UpdateStatus(ctx context.Context, id string, status models.EventStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		UpdateColumn("status", status)
	return res.RowsAffected, res.Error
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Event{}, "id = ?", id).Error
}

// ReserveTickets decrements tickets_available by n, guarded so the counter
// can never go negative. Returns the number of rows affected: zero means the
// remaining inventory no longer covers n.
func (r *eventRepository) ReserveTickets(ctx context.Context, tx *gorm.DB, id string, n int) (int64, error) {
	res := tx.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND tickets_available >= ?", id, n).
		UpdateColumn("tickets_available", gorm.Expr("tickets_available - ?", n))
	return res.RowsAffected, res.Error
}

// ReturnTickets credits n tickets back to the event's availability.
func (r *eventRepository) ReturnTickets(ctx context.Context, tx *gorm.DB, id string, n int) error {
	return tx.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		UpdateColumn("tickets_available", gorm.Expr("tickets_available + ?", n)).Error
}

func (r *eventRepository) AnalyticsByOrganizer(ctx context.Context, organizerID string) ([]EventAnalytics, error) {
	var rows []EventAnalytics
	err := r.db.WithContext(ctx).Raw(`
		SELECT e.id AS event_id,
		       e.title,
		       e.capacity,
		       COALESCE(SUM(b.ticket_count), 0) AS tickets_sold,
		       COALESCE(SUM(b.total_price), 0)  AS revenue
		FROM events e
		LEFT JOIN bookings b ON b.event_id = e.id AND b.status = ?
		WHERE e.organizer_id = ?
		GROUP BY e.id
		ORDER BY e.created_at DESC`,
		models.BookingConfirmed, organizerID,
	).Scan(&rows).Error
	return rows, err
}

func (r *eventRepository) AnalyticsByEvent(ctx context.Context, eventID string) (*EventAnalytics, error) {
	var row EventAnalytics
	err := r.db.WithContext(ctx).Raw(`
		SELECT e.id AS event_id,
		       e.title,
		       e.capacity,
		       COALESCE(SUM(b.ticket_count), 0) AS tickets_sold,
		       COALESCE(SUM(b.total_price), 0)  AS revenue
		FROM events e
		LEFT JOIN bookings b ON b.event_id = e.id AND b.status = ?
		WHERE e.id = ?
		GROUP BY e.id`,
		models.BookingConfirmed, eventID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.EventID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}
