package types

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

type RecordStatus string

const (
	RecordStatusActive   RecordStatus = "Active"
	RecordStatusInactive RecordStatus = "Inactive"
)

// Record is a stored user profile.
type Record struct {
	ID           uuid.UUID    `json:"id"`
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	Email        string       `json:"email"`
	Mobile       string       `json:"mobile"`
	Gender       Gender       `json:"gender"`
	Status       RecordStatus `json:"status"`
	Location     string       `json:"location"`
	ProfileImage string       `json:"profileImage"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	// Seq is the store-assigned insertion sequence, used as the secondary sort key.
	Seq int64 `json:"-"`
}

// CreateRecordParams holds the fields accepted on creation.
// Values are normalised (trimmed, email lowercased) before validation.
type CreateRecordParams struct {
	FirstName    string `json:"firstName" validate:"required,min=2"`
	LastName     string `json:"lastName" validate:"required,min=2"`
	Email        string `json:"email" validate:"required"`
	Mobile       string `json:"mobile" validate:"required"`
	Gender       string `json:"gender" validate:"required,oneof=M F"`
	Status       string `json:"status" validate:"omitempty,oneof=Active Inactive"`
	Location     string `json:"location" validate:"required"`
	ProfileImage string `json:"-"`
}

// UpdateRecordParams defines the fields allowed for record updates.
// Nil pointers are left untouched.
type UpdateRecordParams struct {
	FirstName    *string `json:"firstName,omitempty" validate:"omitnil,min=2"`
	LastName     *string `json:"lastName,omitempty" validate:"omitnil,min=2"`
	Email        *string `json:"email,omitempty" validate:"omitnil,min=1"`
	Mobile       *string `json:"mobile,omitempty" validate:"omitnil,min=1"`
	Gender       *string `json:"gender,omitempty" validate:"omitnil,oneof=M F"`
	Status       *string `json:"status,omitempty" validate:"omitnil,oneof=Active Inactive"`
	Location     *string `json:"location,omitempty" validate:"omitnil,min=1"`
	ProfileImage *string `json:"-"`
}

// Empty reports whether no field was supplied.
func (p UpdateRecordParams) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Mobile == nil &&
		p.Gender == nil && p.Status == nil && p.Location == nil && p.ProfileImage == nil
}

// ListParams is a normalised pagination request.
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

// Offset returns the number of rows skipped before the page window. It
// saturates at math.MaxInt instead of overflowing.
func (p ListParams) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

// RecordPage is one pagination window over the (optionally filtered) store.
type RecordPage struct {
	Records    []Record   `json:"records"`
	Pagination Pagination `json:"pagination"`
}
