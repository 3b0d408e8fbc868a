package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"events-api/internal/models"
	"events-api/internal/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// EventRepository implements repositories.EventRepository on a pgx pool.
// An event's public ID is its BIGSERIAL sequence rendered as a string.
type EventRepository struct {
	pool   *pgxpool.Pool
	logger *logrus.Logger
}

// NewEventRepository creates a new Postgres event repository
func NewEventRepository(pool *pgxpool.Pool, logger *logrus.Logger) *EventRepository {
	if logger == nil {
		logger = logrus.New()
	}
	return &EventRepository{pool: pool, logger: logger}
}

func (r *EventRepository) logQuery(operation string, start time.Time, err error) {
	fields := logrus.Fields{
		"operation": operation,
		"table":     "events",
		"duration":  time.Since(start),
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		fields["error"] = err.Error()
		r.logger.WithFields(fields).Error("Query failed")
		return
	}
	r.logger.WithFields(fields).Debug("Query executed")
}

// List retrieves all events in insertion order
func (r *EventRepository) List(ctx context.Context) (events []*models.Event, err error) {
	defer func(start time.Time) { err = classify(err); r.logQuery("list", start, err) }(time.Now())

	const query = `
SELECT e.seq, e.title, e.description, e.datetime, e.location,
       COALESCE(array_agg(p.participant ORDER BY p.position) FILTER (WHERE p.participant IS NOT NULL), '{}')
FROM events e
LEFT JOIN event_participants p ON p.event_seq = e.seq
GROUP BY e.seq
ORDER BY e.seq ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, repositories.NewRepositoryError("list", "event", "", err)
	}
	defer rows.Close()

	events = []*models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, repositories.NewRepositoryError("list", "event", "", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list", "event", "", err)
	}
	return events, nil
}

// GetByID retrieves an event and its participants
func (r *EventRepository) GetByID(ctx context.Context, id string) (event *models.Event, err error) {
	defer func(start time.Time) { err = classify(err); r.logQuery("get_by_id", start, err) }(time.Now())
	return r.getByID(ctx, r.pool, id)
}

// Create inserts a new event and returns it with its assigned ID
func (r *EventRepository) Create(ctx context.Context, fields *models.CreateEventRequest) (event *models.Event, err error) {
	defer func(start time.Time) { err = classify(err); r.logQuery("create", start, err) }(time.Now())

	if fields == nil {
		fields = &models.CreateEventRequest{}
	}

	const query = `
INSERT INTO events (title, description, datetime, location)
VALUES ($1, $2, $3, $4)
RETURNING seq`

	var seq int64
	if err := r.pool.QueryRow(ctx, query,
		fields.Title, fields.Description, fields.Datetime, fields.Location,
	).Scan(&seq); err != nil {
		return nil, repositories.NewRepositoryError("create", "event", "", err)
	}

	return models.NewEvent(strconv.FormatInt(seq, 10), fields), nil
}

// AddParticipant appends participant to the event. The event row is locked
// for the duration of the transaction so positions stay dense.
func (r *EventRepository) AddParticipant(ctx context.Context, id, participant string) (event *models.Event, err error) {
	defer func(start time.Time) { err = classify(err); r.logQuery("add_participant", start, err) }(time.Now())

	seq, ok := parseSeq(id)
	if !ok {
		return nil, repositories.NotFoundError("event", id)
	}

	err = withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var locked int64
		if err := tx.QueryRow(ctx, `SELECT seq FROM events WHERE seq = $1 FOR UPDATE`, seq).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repositories.NotFoundError("event", id)
			}
			return repositories.NewRepositoryError("add_participant", "event", id, err)
		}

		const insert = `
INSERT INTO event_participants (event_seq, participant, position)
VALUES ($1, $2, (SELECT COALESCE(MAX(position), 0) + 1 FROM event_participants WHERE event_seq = $1))
ON CONFLICT (event_seq, participant) DO NOTHING`

		tag, err := tx.Exec(ctx, insert, seq, participant)
		if err != nil {
			return repositories.NewRepositoryError("add_participant", "event", id, err)
		}
		if tag.RowsAffected() == 0 {
			return repositories.AlreadySignedUpError(id, participant)
		}

		event, err = r.getByID(ctx, tx, id)
		return err
	})
	if err != nil {
		var repoErr *repositories.RepositoryError
		if !errors.As(err, &repoErr) {
			err = repositories.NewRepositoryError("add_participant", "event", id, err)
		}
		return nil, err
	}
	return event, nil
}

// Close is a no-op; the connection manager owns the pool
func (r *EventRepository) Close() error {
	return nil
}

func (r *EventRepository) getByID(ctx context.Context, q querier, id string) (*models.Event, error) {
	seq, ok := parseSeq(id)
	if !ok {
		return nil, repositories.NotFoundError("event", id)
	}

	const query = `
SELECT e.seq, e.title, e.description, e.datetime, e.location,
       COALESCE(array_agg(p.participant ORDER BY p.position) FILTER (WHERE p.participant IS NOT NULL), '{}')
FROM events e
LEFT JOIN event_participants p ON p.event_seq = e.seq
WHERE e.seq = $1
GROUP BY e.seq`

	event, err := scanEvent(q.QueryRow(ctx, query, seq))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repositories.NotFoundError("event", id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", "event", id, err)
	}
	return event, nil
}

// classify marks failures to reach the server as connection errors so callers
// can drop the pool
func classify(err error) error {
	if err == nil || repositories.IsConnection(err) {
		return err
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return repositories.ConnectionError(err)
	}
	return err
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var seq int64
	event := &models.Event{}
	if err := row.Scan(&seq, &event.Title, &event.Description, &event.Datetime, &event.Location, &event.Participants); err != nil {
		return nil, err
	}
	if event.Participants == nil {
		event.Participants = []string{}
	}
	event.ID = strconv.FormatInt(seq, 10)
	return event, nil
}

func parseSeq(id string) (int64, bool) {
	seq, err := strconv.ParseInt(id, 10, 64)
	if err != nil || seq <= 0 || strconv.FormatInt(seq, 10) != id {
		return 0, false
	}
	return seq, true
}
