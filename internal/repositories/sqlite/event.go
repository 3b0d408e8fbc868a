package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"events-api/internal/models"
	"events-api/internal/repositories"

	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// EventRepository implements repositories.EventRepository for SQLite.
// An event's public ID is its AUTOINCREMENT sequence rendered as a string.
type EventRepository struct {
	*BaseRepository
}

// NewEventRepository creates a new SQLite event repository
func NewEventRepository(db *sql.DB, logger *logrus.Logger) *EventRepository {
	return &EventRepository{
		BaseRepository: NewBaseRepository(db, "events", logger),
	}
}

// List retrieves all events in insertion order
func (r *EventRepository) List(ctx context.Context) ([]*models.Event, error) {
	query := `
		SELECT seq, title, description, datetime, location
		FROM events
		ORDER BY seq ASC`

	rows, err := r.executeQuery(ctx, r.db, "list", query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*models.Event{}
	bySeq := make(map[int64]*models.Event)
	for rows.Next() {
		event, seq, err := scanEvent(rows)
		if err != nil {
			return nil, repositories.NewRepositoryError("list", "event", "", err)
		}
		events = append(events, event)
		bySeq[seq] = event
	}
	if err = rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list", "event", "", err)
	}

	participantQuery := `
		SELECT event_seq, participant
		FROM event_participants
		ORDER BY event_seq ASC, position ASC`

	prows, err := r.executeQuery(ctx, r.db, "list_participants", participantQuery)
	if err != nil {
		return nil, err
	}
	defer prows.Close()

	for prows.Next() {
		var seq int64
		var participant string
		if err := prows.Scan(&seq, &participant); err != nil {
			return nil, repositories.NewRepositoryError("list_participants", "event", "", err)
		}
		if event, ok := bySeq[seq]; ok {
			event.Participants = append(event.Participants, participant)
		}
	}
	if err = prows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list_participants", "event", "", err)
	}

	return events, nil
}

// GetByID retrieves an event and its participants
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	return r.getByID(ctx, r.db, id)
}

// Create inserts a new event and returns it with its assigned ID
func (r *EventRepository) Create(ctx context.Context, fields *models.CreateEventRequest) (*models.Event, error) {
	if fields == nil {
		fields = &models.CreateEventRequest{}
	}

	query := `
		INSERT INTO events (title, description, datetime, location)
		VALUES (?, ?, ?, ?)`

	result, err := r.executeExec(ctx, r.db, "create", query,
		fields.Title,
		fields.Description,
		fields.Datetime,
		fields.Location,
	)
	if err != nil {
		return nil, repositories.NewRepositoryError("create", "event", "", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return nil, repositories.NewRepositoryError("create", "event", "", err)
	}

	return models.NewEvent(strconv.FormatInt(seq, 10), fields), nil
}

// AddParticipant appends participant to the event. The primary key on
// (event_seq, participant) makes the append conditional.
func (r *EventRepository) AddParticipant(ctx context.Context, id, participant string) (*models.Event, error) {
	seq, ok := parseSeq(id)
	if !ok {
		return nil, repositories.NotFoundError("event", id)
	}

	var event *models.Event
	err := r.withTx(ctx, "add_participant", func(tx *sql.Tx) error {
		var exists int
		row := r.executeQueryRow(ctx, tx, "add_participant", "SELECT 1 FROM events WHERE seq = ?", seq)
		if err := row.Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repositories.NotFoundError("event", id)
			}
			return repositories.NewRepositoryError("add_participant", "event", id, err)
		}

		insert := `
			INSERT INTO event_participants (event_seq, participant, position)
			VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM event_participants WHERE event_seq = ?))`

		if _, err := r.executeExec(ctx, tx, "add_participant", insert, seq, participant, seq); err != nil {
			if isConstraintViolation(err) {
				return repositories.AlreadySignedUpError(id, participant)
			}
			return repositories.NewRepositoryError("add_participant", "event", id, err)
		}

		var err error
		event, err = r.getByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

// Close is a no-op; the connection manager owns the handle
func (r *EventRepository) Close() error {
	return nil
}

func (r *EventRepository) getByID(ctx context.Context, q querier, id string) (*models.Event, error) {
	seq, ok := parseSeq(id)
	if !ok {
		return nil, repositories.NotFoundError("event", id)
	}

	query := `
		SELECT seq, title, description, datetime, location
		FROM events
		WHERE seq = ?`

	row := r.executeQueryRow(ctx, q, "get_by_id", query, seq)
	event, _, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError("event", id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", "event", id, err)
	}

	participantQuery := `
		SELECT participant
		FROM event_participants
		WHERE event_seq = ?
		ORDER BY position ASC`

	rows, err := r.executeQuery(ctx, q, "get_participants", participantQuery, seq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var participant string
		if err := rows.Scan(&participant); err != nil {
			return nil, repositories.NewRepositoryError("get_participants", "event", id, err)
		}
		event.Participants = append(event.Participants, participant)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("get_participants", "event", id, err)
	}

	return event, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(s scanner) (*models.Event, int64, error) {
	var seq int64
	event := &models.Event{Participants: []string{}}
	if err := s.Scan(&seq, &event.Title, &event.Description, &event.Datetime, &event.Location); err != nil {
		return nil, 0, err
	}
	event.ID = strconv.FormatInt(seq, 10)
	return event, seq, nil
}

// parseSeq maps a public ID back to its sequence; anything that is not the
// canonical rendering of a positive integer cannot name an event.
func parseSeq(id string) (int64, bool) {
	seq, err := strconv.ParseInt(id, 10, 64)
	if err != nil || seq <= 0 || strconv.FormatInt(seq, 10) != id {
		return 0, false
	}
	return seq, true
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
