package records

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-user-records/app/observability/metrics"
	"github.com/FACorreiaa/go-user-records/internal/types"
)

const (
	DefaultPage  = 1
	DefaultLimit = 5
)

var _ RecordService = (*RecordServiceImpl)(nil)

// RecordService defines the business logic contract for user records.
type RecordService interface {
	// ListRecords returns one page, filtered when params.Search is non-blank.
	ListRecords(ctx context.Context, params types.ListParams) (*types.RecordPage, error)
	GetRecord(ctx context.Context, id uuid.UUID) (*types.Record, error)
	CreateRecord(ctx context.Context, params types.CreateRecordParams, image *ImageUpload) (*types.Record, error)
	UpdateRecord(ctx context.Context, id uuid.UUID, params types.UpdateRecordParams, image *ImageUpload) (*types.Record, error)
	DeleteRecord(ctx context.Context, id uuid.UUID) error
	// ExportCSV renders every record. Nothing is returned unless the whole document rendered.
	ExportCSV(ctx context.Context) ([]byte, error)
}

// RecordServiceImpl provides the implementation for RecordService.
type RecordServiceImpl struct {
	logger  *slog.Logger
	repo    RecordRepo
	images  ImageStore
	metrics *metrics.AppMetrics
}

// NewRecordService creates a new record service instance.
func NewRecordService(repo RecordRepo, images ImageStore, logger *slog.Logger) *RecordServiceImpl {
	metrics.InitAppMetrics()
	return &RecordServiceImpl{
		logger:  logger,
		repo:    repo,
		images:  images,
		metrics: metrics.Get(),
	}
}

// normalizeListParams applies the page and limit defaults.
func normalizeListParams(p types.ListParams) types.ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	p.Search = strings.TrimSpace(p.Search)
	return p
}

// TotalPages is ceil(total/limit); zero records yield zero pages.
func TotalPages(total int64, limit int) int64 {
	if total <= 0 || limit < 1 {
		return 0
	}
	l := int64(limit)
	return (total + l - 1) / l
}

func (s *RecordServiceImpl) ListRecords(ctx context.Context, params types.ListParams) (*types.RecordPage, error) {
	params = normalizeListParams(params)

	ctx, span := otel.Tracer("RecordService").Start(ctx, "ListRecords", trace.WithAttributes(
		attribute.Int("page", params.Page),
		attribute.Int("limit", params.Limit),
		attribute.String("search", params.Search),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "ListRecords"), slog.Int("page", params.Page), slog.Int("limit", params.Limit))
	l.DebugContext(ctx, "Listing records", slog.String("search", params.Search))

	records, total, err := s.repo.List(ctx, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list records", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list records")
		return nil, fmt.Errorf("error listing records: %w", err)
	}
	if records == nil {
		records = []types.Record{}
	}

	page := &types.RecordPage{
		Records: records,
		Pagination: types.Pagination{
			Total:      total,
			Page:       params.Page,
			Limit:      params.Limit,
			TotalPages: TotalPages(total, params.Limit),
		},
	}

	l.InfoContext(ctx, "Records listed", slog.Int("count", len(records)), slog.Int64("total", total))
	span.SetStatus(codes.Ok, "Records listed")
	return page, nil
}

func (s *RecordServiceImpl) GetRecord(ctx context.Context, id uuid.UUID) (*types.Record, error) {
	ctx, span := otel.Tracer("RecordService").Start(ctx, "GetRecord", trace.WithAttributes(
		attribute.String("record.id", id.String()),
	))
	defer span.End()

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			s.logger.ErrorContext(ctx, "Failed to fetch record", slog.String("id", id.String()), slog.Any("error", err))
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, "Failed to fetch record")
		return nil, fmt.Errorf("error fetching record: %w", err)
	}

	span.SetStatus(codes.Ok, "Record fetched")
	return rec, nil
}

func (s *RecordServiceImpl) CreateRecord(ctx context.Context, params types.CreateRecordParams, image *ImageUpload) (*types.Record, error) {
	ctx, span := otel.Tracer("RecordService").Start(ctx, "CreateRecord", trace.WithAttributes(
		attribute.Bool("image", image != nil),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateRecord"))

	params = normalizeCreate(params)
	if err := validateStruct(params); err != nil {
		l.WarnContext(ctx, "Rejected invalid record", slog.Any("error", err))
		span.SetStatus(codes.Error, "Validation failed")
		return nil, fmt.Errorf("error creating record: %w", err)
	}

	var stored string
	if image != nil {
		name, err := s.images.Save(ctx, *image)
		if err != nil {
			l.WarnContext(ctx, "Failed to store profile image", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Image upload failed")
			return nil, fmt.Errorf("error storing profile image: %w", err)
		}
		stored = name
		params.ProfileImage = name
	}

	rec, err := s.repo.Create(ctx, params)
	if err != nil {
		s.discardImage(ctx, stored)
		if errors.Is(err, types.ErrDuplicateEmail) {
			l.WarnContext(ctx, "Duplicate email on create")
		} else {
			l.ErrorContext(ctx, "Failed to create record", slog.Any("error", err))
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, "Failed to create record")
		return nil, fmt.Errorf("error creating record: %w", err)
	}

	s.metrics.RecordMutation(ctx, "create")
	l.InfoContext(ctx, "Record created", slog.String("id", rec.ID.String()))
	span.SetAttributes(attribute.String("record.id", rec.ID.String()))
	span.SetStatus(codes.Ok, "Record created")
	return rec, nil
}

func (s *RecordServiceImpl) UpdateRecord(ctx context.Context, id uuid.UUID, params types.UpdateRecordParams, image *ImageUpload) (*types.Record, error) {
	ctx, span := otel.Tracer("RecordService").Start(ctx, "UpdateRecord", trace.WithAttributes(
		attribute.String("record.id", id.String()),
		attribute.Bool("image", image != nil),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "UpdateRecord"), slog.String("id", id.String()))

	params = normalizeUpdate(params)
	params.ProfileImage = nil
	if err := validateStruct(params); err != nil {
		l.WarnContext(ctx, "Rejected invalid update", slog.Any("error", err))
		span.SetStatus(codes.Error, "Validation failed")
		return nil, fmt.Errorf("error updating record: %w", err)
	}

	var previousImage, stored string
	if image != nil {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			span.SetStatus(codes.Error, "Failed to load record")
			return nil, fmt.Errorf("error updating record: %w", err)
		}
		previousImage = current.ProfileImage

		name, err := s.images.Save(ctx, *image)
		if err != nil {
			l.WarnContext(ctx, "Failed to store profile image", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Image upload failed")
			return nil, fmt.Errorf("error storing profile image: %w", err)
		}
		stored = name
		params.ProfileImage = &stored
	}

	rec, err := s.repo.Update(ctx, id, params)
	if err != nil {
		s.discardImage(ctx, stored)
		if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrDuplicateEmail) {
			l.WarnContext(ctx, "Update rejected", slog.Any("error", err))
		} else {
			l.ErrorContext(ctx, "Failed to update record", slog.Any("error", err))
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, "Failed to update record")
		return nil, fmt.Errorf("error updating record: %w", err)
	}

	if stored != "" && previousImage != "" && previousImage != stored {
		s.discardImage(ctx, previousImage)
	}

	s.metrics.RecordMutation(ctx, "update")
	l.InfoContext(ctx, "Record updated")
	span.SetStatus(codes.Ok, "Record updated")
	return rec, nil
}

func (s *RecordServiceImpl) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("RecordService").Start(ctx, "DeleteRecord", trace.WithAttributes(
		attribute.String("record.id", id.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "DeleteRecord"), slog.String("id", id.String()))

	rec, err := s.repo.Delete(ctx, id)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			l.ErrorContext(ctx, "Failed to delete record", slog.Any("error", err))
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, "Failed to delete record")
		return fmt.Errorf("error deleting record: %w", err)
	}

	s.discardImage(ctx, rec.ProfileImage)

	s.metrics.RecordMutation(ctx, "delete")
	l.InfoContext(ctx, "Record deleted")
	span.SetStatus(codes.Ok, "Record deleted")
	return nil
}

func (s *RecordServiceImpl) ExportCSV(ctx context.Context) ([]byte, error) {
	ctx, span := otel.Tracer("RecordService").Start(ctx, "ExportCSV")
	defer span.End()

	l := s.logger.With(slog.String("method", "ExportCSV"))

	records, err := s.repo.ListAll(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load records for export", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load records")
		return nil, fmt.Errorf("error exporting records: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteRecordsCSV(&buf, records); err != nil {
		l.ErrorContext(ctx, "Failed to render CSV", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to render CSV")
		return nil, fmt.Errorf("error exporting records: %w: %w", types.ErrStorage, err)
	}

	s.metrics.RecordExportRows.Record(ctx, int64(len(records)))
	l.InfoContext(ctx, "Records exported", slog.Int("rows", len(records)), slog.Int("bytes", buf.Len()))
	span.SetAttributes(attribute.Int("rows", len(records)))
	span.SetStatus(codes.Ok, "Records exported")
	return buf.Bytes(), nil
}

// discardImage removes a stored upload; failures are logged only.
func (s *RecordServiceImpl) discardImage(ctx context.Context, filename string) {
	if filename == "" || s.images == nil {
		return
	}
	if err := s.images.Remove(ctx, filename); err != nil {
		s.logger.WarnContext(ctx, "Failed to remove profile image", slog.String("filename", filename), slog.Any("error", err))
	}
}
