package records

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-user-records/internal/types"
)

var _ RecordRepo = (*MemoryRecordRepo)(nil)

// MemoryRecordRepo keeps records in process memory. Email uniqueness is
// checked and claimed under the same lock as the insert.
type MemoryRecordRepo struct {
	mu      sync.RWMutex
	nextSeq int64
	records map[uuid.UUID]*types.Record
	emails  map[string]uuid.UUID
	now     func() time.Time
}

func NewMemoryRecordRepo() *MemoryRecordRepo {
	return &MemoryRecordRepo{
		nextSeq: 1,
		records: make(map[uuid.UUID]*types.Record),
		emails:  make(map[string]uuid.UUID),
		now:     time.Now,
	}
}

func (r *MemoryRecordRepo) Create(_ context.Context, params types.CreateRecordParams) (*types.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.emails[params.Email]; taken {
		return nil, fmt.Errorf("error creating record: %w", types.ErrDuplicateEmail)
	}

	now := r.now().UTC()
	rec := &types.Record{
		ID:           uuid.New(),
		Seq:          r.nextSeq,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        params.Email,
		Mobile:       params.Mobile,
		Gender:       types.Gender(params.Gender),
		Status:       types.RecordStatus(params.Status),
		Location:     params.Location,
		ProfileImage: params.ProfileImage,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.nextSeq++
	r.records[rec.ID] = rec
	r.emails[rec.Email] = rec.ID

	result := *rec
	return &result, nil
}

func (r *MemoryRecordRepo) GetByID(_ context.Context, id uuid.UUID) (*types.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, types.ErrNotFound)
	}
	result := *rec
	return &result, nil
}

func (r *MemoryRecordRepo) Update(_ context.Context, id uuid.UUID, params types.UpdateRecordParams) (*types.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, types.ErrNotFound)
	}

	if params.Email != nil && *params.Email != rec.Email {
		if owner, taken := r.emails[*params.Email]; taken && owner != id {
			return nil, fmt.Errorf("error updating record: %w", types.ErrDuplicateEmail)
		}
	}

	updated := *rec
	if params.FirstName != nil {
		updated.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		updated.LastName = *params.LastName
	}
	if params.Email != nil {
		updated.Email = *params.Email
	}
	if params.Mobile != nil {
		updated.Mobile = *params.Mobile
	}
	if params.Gender != nil {
		updated.Gender = types.Gender(*params.Gender)
	}
	if params.Status != nil {
		updated.Status = types.RecordStatus(*params.Status)
	}
	if params.Location != nil {
		updated.Location = *params.Location
	}
	if params.ProfileImage != nil {
		updated.ProfileImage = *params.ProfileImage
	}

	now := r.now().UTC()
	if !now.After(rec.UpdatedAt) {
		now = rec.UpdatedAt.Add(time.Microsecond)
	}
	updated.UpdatedAt = now

	if updated.Email != rec.Email {
		delete(r.emails, rec.Email)
		r.emails[updated.Email] = id
	}
	r.records[id] = &updated

	result := updated
	return &result, nil
}

func (r *MemoryRecordRepo) Delete(_ context.Context, id uuid.UUID) (*types.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, types.ErrNotFound)
	}
	delete(r.records, id)
	delete(r.emails, rec.Email)
	return rec, nil
}

func (r *MemoryRecordRepo) List(_ context.Context, params types.ListParams) ([]types.Record, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.sorted(params.Search)
	total := int64(len(matched))

	offset := params.Offset()
	if offset < 0 || offset >= len(matched) {
		return []types.Record{}, total, nil
	}
	end := offset + params.Limit
	if end > len(matched) || end < offset {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *MemoryRecordRepo) ListAll(_ context.Context) ([]types.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted(""), nil
}

// Len returns the number of stored records.
func (r *MemoryRecordRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// sorted copies the records matching search, newest first. Caller holds the lock.
func (r *MemoryRecordRepo) sorted(search string) []types.Record {
	out := make([]types.Record, 0, len(r.records))
	needle := strings.ToLower(search)
	for _, rec := range r.records {
		if needle == "" || matchesSearch(rec, needle) {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Seq > out[j].Seq
	})
	return out
}

// matchesSearch mirrors the SQL search filter; needle is already lowercased.
func matchesSearch(rec *types.Record, needle string) bool {
	fields := []string{
		rec.FirstName,
		rec.LastName,
		rec.Email,
		rec.Mobile,
		rec.Location,
		rec.FirstName + " " + rec.LastName,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
