package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/kubev2v/executor-agent/internal/models"
	srvErrors "github.com/kubev2v/executor-agent/pkg/errors"
)

// EventStore handles the executor journal.
type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// Insert stores a batch of events in one statement.
func (s *EventStore) Insert(ctx context.Context, events ...models.Event) error {
	if len(events) == 0 {
		return nil
	}

	builder := sq.Insert(eventsTable).Columns(eventColumns...)
	for _, e := range events {
		builder = builder.Values(
			e.ID.String(),
			e.Executor,
			string(e.Kind),
			e.Worker,
			e.TaskID,
			e.Message,
			e.CreatedAt,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// Get retrieves one event by id.
func (s *EventStore) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx, queryGetEvent, id.String())

	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewResourceNotFoundError("event", id.String())
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// List returns events, newest first.
func (s *EventStore) List(ctx context.Context, opts ...ListOption) ([]models.Event, error) {
	builder := sq.Select(eventColumns...).
		From(eventsTable).
		OrderBy("created_at DESC", "id")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}

	return events, rows.Err()
}

func (s *EventStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From(eventsTable)

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// DeleteBefore removes events older than t and returns how many were deleted.
func (s *EventStore) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, queryDeleteEventsBefore, t)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*models.Event, error) {
	var (
		e    models.Event
		id   string
		kind string
	)
	if err := row.Scan(&id, &e.Executor, &kind, &e.Worker, &e.TaskID, &e.Message, &e.CreatedAt); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	e.ID = parsed
	e.Kind = models.EventKind(kind)
	return &e, nil
}

type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func ByExecutor(name string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if name == "" {
			return b
		}
		return b.Where(sq.Eq{"executor": name})
	}
}

func ByKinds(kinds ...models.EventKind) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(kinds) == 0 {
			return b
		}
		values := make([]string, 0, len(kinds))
		for _, k := range kinds {
			values = append(values, string(k))
		}
		return b.Where(sq.Eq{"kind": values})
	}
}

func ByWorker(worker string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if worker == "" {
			return b
		}
		return b.Where(sq.Eq{"worker": worker})
	}
}

func Since(t time.Time) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.GtOrEq{"created_at": t})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(limit)
	}
}

func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Offset(offset)
	}
}
