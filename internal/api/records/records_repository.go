package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-user-records/app/observability/metrics"
	"github.com/FACorreiaa/go-user-records/internal/types"
)

var _ RecordRepo = (*PostgresRecordRepo)(nil)

// RecordRepo defines the contract for record persistence.
type RecordRepo interface {
	// Create inserts a normalised record. Returns types.ErrDuplicateEmail when
	// the store's unique constraint on email rejects the insert.
	Create(ctx context.Context, params types.CreateRecordParams) (*types.Record, error)
	// GetByID returns types.ErrNotFound if the record doesn't exist.
	GetByID(ctx context.Context, id uuid.UUID) (*types.Record, error)
	// Update applies the non-nil fields and always refreshes updated_at.
	Update(ctx context.Context, id uuid.UUID, params types.UpdateRecordParams) (*types.Record, error)
	// Delete hard-deletes the record and returns it as it was.
	Delete(ctx context.Context, id uuid.UUID) (*types.Record, error)
	// List returns one window, newest first, plus the count of all matching records.
	// A non-empty params.Search restricts both to records matching the search text.
	List(ctx context.Context, params types.ListParams) ([]types.Record, int64, error)
	// ListAll returns every record, newest first.
	ListAll(ctx context.Context) ([]types.Record, error)
}

// DB is the subset of pgxpool.Pool used by the repository.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
	emailConstraint   = "users_email_key"

	recordColumns = `id, seq, first_name, last_name, email, mobile, gender, status,
		location, profile_image, created_at, updated_at`

	recordOrder = `ORDER BY created_at DESC, seq DESC`

	// searchFilter matches $1 as a literal, case-insensitive substring. The
	// full-name clause lets "John Smith" match across first and last name.
	searchFilter = `WHERE strpos(lower(first_name), lower($1)) > 0
		OR strpos(lower(last_name), lower($1)) > 0
		OR strpos(lower(email), lower($1)) > 0
		OR strpos(lower(mobile), lower($1)) > 0
		OR strpos(lower(location), lower($1)) > 0
		OR strpos(lower(first_name || ' ' || last_name), lower($1)) > 0`
)

type PostgresRecordRepo struct {
	logger  *slog.Logger
	db      DB
	metrics *metrics.AppMetrics
}

func NewPostgresRecordRepo(db DB, logger *slog.Logger) *PostgresRecordRepo {
	metrics.InitAppMetrics()
	return &PostgresRecordRepo{
		logger:  logger,
		db:      db,
		metrics: metrics.Get(),
	}
}

func startSpan(ctx context.Context, name, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", "users"),
	}, attrs...)
	return otel.Tracer("RecordRepo").Start(ctx, name, trace.WithAttributes(attrs...))
}

func scanRecord(row pgx.Row) (*types.Record, error) {
	var rec types.Record
	var gender, status string
	err := row.Scan(
		&rec.ID,
		&rec.Seq,
		&rec.FirstName,
		&rec.LastName,
		&rec.Email,
		&rec.Mobile,
		&gender,
		&status,
		&rec.Location,
		&rec.ProfileImage,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Gender = types.Gender(gender)
	rec.Status = types.RecordStatus(status)
	return &rec, nil
}

// mapWriteError translates constraint violations into domain errors.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation && (pgErr.ConstraintName == emailConstraint || pgErr.ConstraintName == ""):
			return fmt.Errorf("%w: %s", types.ErrDuplicateEmail, pgErr.Detail)
		case pgErr.Code == pgCheckViolation:
			return fmt.Errorf("%w: %s", types.ErrValidation, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%w: %w", types.ErrStorage, err)
}

func (r *PostgresRecordRepo) Create(ctx context.Context, params types.CreateRecordParams) (*types.Record, error) {
	ctx, span := startSpan(ctx, "Create", "INSERT")
	defer span.End()

	l := r.logger.With(slog.String("method", "Create"))
	l.DebugContext(ctx, "Inserting record")

	query := `
		INSERT INTO users (first_name, last_name, email, mobile, gender, status, location, profile_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + recordColumns

	start := time.Now()
	rec, err := scanRecord(r.db.QueryRow(ctx, query,
		params.FirstName,
		params.LastName,
		params.Email,
		params.Mobile,
		params.Gender,
		params.Status,
		params.Location,
		params.ProfileImage,
	))
	r.metrics.ObserveQuery(ctx, "create", start, err)
	if err != nil {
		err = mapWriteError(err)
		if errors.Is(err, types.ErrDuplicateEmail) {
			l.WarnContext(ctx, "Attempted to create record with duplicate email")
			span.SetStatus(codes.Error, "Duplicate email")
		} else {
			l.ErrorContext(ctx, "Failed to insert record", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "DB INSERT failed")
		}
		return nil, fmt.Errorf("error creating record: %w", err)
	}

	span.SetAttributes(attribute.String("record.id", rec.ID.String()))
	span.SetStatus(codes.Ok, "Record created")
	return rec, nil
}

func (r *PostgresRecordRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Record, error) {
	ctx, span := startSpan(ctx, "GetByID", "SELECT", attribute.String("record.id", id.String()))
	defer span.End()

	query := `SELECT ` + recordColumns + ` FROM users WHERE id = $1`

	start := time.Now()
	rec, err := scanRecord(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		r.metrics.ObserveQuery(ctx, "get", start, nil)
		span.SetStatus(codes.Error, "Record not found")
		return nil, fmt.Errorf("record %s: %w", id, types.ErrNotFound)
	}
	r.metrics.ObserveQuery(ctx, "get", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to fetch record", slog.String("id", id.String()), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("error fetching record: %w: %w", types.ErrStorage, err)
	}

	span.SetStatus(codes.Ok, "Record fetched")
	return rec, nil
}

func (r *PostgresRecordRepo) Update(ctx context.Context, id uuid.UUID, params types.UpdateRecordParams) (*types.Record, error) {
	ctx, span := startSpan(ctx, "Update", "UPDATE", attribute.String("record.id", id.String()))
	defer span.End()

	l := r.logger.With(slog.String("method", "Update"), slog.String("id", id.String()))

	var setClauses []string
	var args []interface{}
	argID := 1

	set := func(column string, value *string) {
		if value == nil {
			return
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, *value)
		argID++
		span.SetAttributes(attribute.Bool("update."+column, true))
	}
	set("first_name", params.FirstName)
	set("last_name", params.LastName)
	set("email", params.Email)
	set("mobile", params.Mobile)
	set("gender", params.Gender)
	set("status", params.Status)
	set("location", params.Location)
	set("profile_image", params.ProfileImage)

	// updated_at must move strictly forward even when two updates share a clock tick.
	setClauses = append(setClauses, "updated_at = GREATEST(now(), updated_at + interval '1 microsecond')")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "),
		argID,
		recordColumns,
	)

	l.DebugContext(ctx, "Executing dynamic update query", slog.Int("arg_count", len(args)))

	start := time.Now()
	rec, err := scanRecord(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		r.metrics.ObserveQuery(ctx, "update", start, nil)
		span.SetStatus(codes.Error, "Record not found")
		return nil, fmt.Errorf("record %s: %w", id, types.ErrNotFound)
	}
	r.metrics.ObserveQuery(ctx, "update", start, err)
	if err != nil {
		err = mapWriteError(err)
		if errors.Is(err, types.ErrDuplicateEmail) {
			l.WarnContext(ctx, "Update rejected by email uniqueness")
		} else {
			l.ErrorContext(ctx, "Failed to execute update query", slog.Any("error", err))
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return nil, fmt.Errorf("error updating record: %w", err)
	}

	span.SetStatus(codes.Ok, "Record updated")
	return rec, nil
}

func (r *PostgresRecordRepo) Delete(ctx context.Context, id uuid.UUID) (*types.Record, error) {
	ctx, span := startSpan(ctx, "Delete", "DELETE", attribute.String("record.id", id.String()))
	defer span.End()

	query := `DELETE FROM users WHERE id = $1 RETURNING ` + recordColumns

	start := time.Now()
	rec, err := scanRecord(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		r.metrics.ObserveQuery(ctx, "delete", start, nil)
		span.SetStatus(codes.Error, "Record not found")
		return nil, fmt.Errorf("record %s: %w", id, types.ErrNotFound)
	}
	r.metrics.ObserveQuery(ctx, "delete", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete record", slog.String("id", id.String()), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return nil, fmt.Errorf("error deleting record: %w: %w", types.ErrStorage, err)
	}

	span.SetStatus(codes.Ok, "Record deleted")
	return rec, nil
}

func (r *PostgresRecordRepo) List(ctx context.Context, params types.ListParams) ([]types.Record, int64, error) {
	ctx, span := startSpan(ctx, "List", "SELECT",
		attribute.Int("page", params.Page),
		attribute.Int("limit", params.Limit),
		attribute.Bool("search", params.Search != ""),
	)
	defer span.End()

	l := r.logger.With(slog.String("method", "List"))

	var countQuery, pageQuery string
	var args []interface{}
	if params.Search != "" {
		countQuery = `SELECT count(*) FROM users ` + searchFilter
		pageQuery = `SELECT ` + recordColumns + ` FROM users ` + searchFilter + ` ` + recordOrder + ` OFFSET $2 LIMIT $3`
		args = []interface{}{params.Search}
	} else {
		countQuery = `SELECT count(*) FROM users`
		pageQuery = `SELECT ` + recordColumns + ` FROM users ` + recordOrder + ` OFFSET $1 LIMIT $2`
	}

	start := time.Now()
	var total int64
	err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total)
	r.metrics.ObserveQuery(ctx, "count", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to count records", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB COUNT failed")
		return nil, 0, fmt.Errorf("error counting records: %w: %w", types.ErrStorage, err)
	}

	offset := params.Offset()
	if int64(offset) >= total {
		span.SetAttributes(attribute.Int64("total", total), attribute.Int("returned", 0))
		span.SetStatus(codes.Ok, "Page past the end")
		return []types.Record{}, total, nil
	}

	records, err := r.query(ctx, "list", pageQuery, append(args, offset, params.Limit)...)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list records", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, 0, fmt.Errorf("error listing records: %w", err)
	}

	span.SetAttributes(attribute.Int64("total", total), attribute.Int("returned", len(records)))
	span.SetStatus(codes.Ok, "Records listed")
	return records, total, nil
}

func (r *PostgresRecordRepo) ListAll(ctx context.Context) ([]types.Record, error) {
	ctx, span := startSpan(ctx, "ListAll", "SELECT")
	defer span.End()

	records, err := r.query(ctx, "list_all", `SELECT `+recordColumns+` FROM users `+recordOrder)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list all records", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("error listing all records: %w", err)
	}

	span.SetAttributes(attribute.Int("returned", len(records)))
	span.SetStatus(codes.Ok, "Records listed")
	return records, nil
}

func (r *PostgresRecordRepo) query(ctx context.Context, operation, query string, args ...interface{}) (records []types.Record, err error) {
	start := time.Now()
	defer func() { r.metrics.ObserveQuery(ctx, operation, start, err) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrStorage, err)
	}
	defer rows.Close()

	records = make([]types.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning record: %w", types.ErrStorage, err)
		}
		records = append(records, *rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading records: %w", types.ErrStorage, err)
	}
	return records, nil
}
