package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-user-records/internal/types"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "validation with fields",
			err:        fmt.Errorf("error creating record: %w", types.NewValidationError("email", "is required")),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Validation failed",
		},
		{
			name:       "bare validation",
			err:        fmt.Errorf("bad upload: %w", types.ErrValidation),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate email",
			err:        fmt.Errorf("insert: %w", types.ErrDuplicateEmail),
			wantStatus: http.StatusConflict,
			wantMsg:    "Email already exists",
		},
		{
			name:       "not found",
			err:        types.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "User not found",
		},
		{
			name:       "storage",
			err:        errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Internal server error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp types.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, resp.Message)
			}
		})
	}
}

func TestWriteErrorValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodPost, "/", nil), types.NewValidationError("gender", "must be one of M F"))

	var resp types.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, map[string]string{"gender": "must be one of M F"}, resp.Errors)
}

func TestPositiveIntParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 1},
		{"page=3", 3},
		{"page=0", 1},
		{"page=-4", 1},
		{"page=abc", 1},
		{"page=%20%207", 7},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
			assert.Equal(t, tc.want, PositiveIntParam(r, "page", 1))
		})
	}
}

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("Valid", func(t *testing.T) {
		var p payload
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ada"}`))
		require.NoError(t, DecodeJSONBody(httptest.NewRecorder(), r, &p))
		assert.Equal(t, "Ada", p.Name)
	})

	t.Run("Unknown field", func(t *testing.T) {
		var p payload
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nope":1}`))
		err := DecodeJSONBody(httptest.NewRecorder(), r, &p)
		assert.EqualError(t, err, `body contains unknown key "nope"`)
	})

	t.Run("Trailing data", func(t *testing.T) {
		var p payload
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}{}`))
		assert.Error(t, DecodeJSONBody(httptest.NewRecorder(), r, &p))
	})

	t.Run("Empty", func(t *testing.T) {
		var p payload
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
		assert.EqualError(t, DecodeJSONBody(httptest.NewRecorder(), r, &p), "body must not be empty")
	})
}
