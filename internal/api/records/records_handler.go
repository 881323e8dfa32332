package records

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/go-user-records/internal/api"
	"github.com/FACorreiaa/go-user-records/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

const (
	imageField = "profileImage"
	// maxMemory is the multipart size kept in memory before spilling to temp files.
	maxMemory = 8 << 20
)

type Handler interface {
	ListRecords(w http.ResponseWriter, r *http.Request)
	SearchRecords(w http.ResponseWriter, r *http.Request)
	ExportCSV(w http.ResponseWriter, r *http.Request)
	GetRecord(w http.ResponseWriter, r *http.Request)
	CreateRecord(w http.ResponseWriter, r *http.Request)
	UpdateRecord(w http.ResponseWriter, r *http.Request)
	DeleteRecord(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service RecordService
	logger  *slog.Logger
}

// NewHandlerImpl creates a new records HandlerImpl instance.
func NewHandlerImpl(service RecordService, logger *slog.Logger) *HandlerImpl {
	if logger == nil {
		panic("PANIC: Attempting to create HandlerImpl with nil logger!")
	}
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

func listParams(r *http.Request) types.ListParams {
	return types.ListParams{
		Page:  api.PositiveIntParam(r, "page", DefaultPage),
		Limit: api.PositiveIntParam(r, "limit", DefaultLimit),
	}
}

func (h *HandlerImpl) writePage(w http.ResponseWriter, r *http.Request, params types.ListParams) {
	page, err := h.service.ListRecords(r.Context(), params)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list records", slog.Any("error", err))
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{
		Success:    true,
		Data:       page.Records,
		Pagination: &page.Pagination,
	})
}

// ListRecords godoc
// @Summary      List users
// @Description  Returns one page of users, newest first.
// @Tags         Users
// @Produce      json
// @Param        page   query int false "Page number (default 1)"
// @Param        limit  query int false "Page size (default 5)"
// @Success      200 {object} types.Response "Users page"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /users [get]
func (h *HandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, r, listParams(r))
}

// SearchRecords godoc
// @Summary      Search users
// @Description  Case-insensitive substring search over first name, last name, full name, email, mobile and location.
// @Tags         Users
// @Produce      json
// @Param        q      query string false "Search text"
// @Param        page   query int    false "Page number (default 1)"
// @Param        limit  query int    false "Page size (default 5)"
// @Success      200 {object} types.Response "Matching users page"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /users/search [get]
func (h *HandlerImpl) SearchRecords(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	params.Search = r.URL.Query().Get("q")
	h.writePage(w, r, params)
}

// ExportCSV godoc
// @Summary      Export users
// @Description  Downloads every user as CSV, ignoring pagination and search.
// @Tags         Users
// @Produce      text/csv
// @Success      200 {file} file "users.csv"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /users/export/csv [get]
func (h *HandlerImpl) ExportCSV(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.ExportCSV(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to export records", slog.Any("error", err))
		api.WriteError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", ExportContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": ExportFilename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to write CSV body", slog.Any("error", err))
	}
}

// GetRecord godoc
// @Summary      Get user
// @Tags         Users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} types.Response "User"
// @Failure      404 {object} types.Response "User Not Found"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /users/{id} [get]
func (h *HandlerImpl) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	rec, err := h.service.GetRecord(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Data: rec})
}

// CreateRecord godoc
// @Summary      Create user
// @Description  Accepts multipart/form-data (optionally with a profileImage file) or JSON.
// @Tags         Users
// @Accept       mpfd
// @Accept       json
// @Produce      json
// @Param        firstName    formData string true  "First name"
// @Param        lastName     formData string true  "Last name"
// @Param        email        formData string true  "Email"
// @Param        mobile       formData string true  "Mobile"
// @Param        gender       formData string true  "M or F"
// @Param        status       formData string false "Active or Inactive"
// @Param        location     formData string true  "Location"
// @Param        profileImage formData file   false "jpeg or png avatar"
// @Success      201 {object} types.Response "User created"
// @Failure      400 {object} types.Response "Validation failed"
// @Failure      409 {object} types.Response "Email already exists"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /users [post]
func (h *HandlerImpl) CreateRecord(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "CreateRecord"))

	var params types.CreateRecordParams
	form, image, err := readForm(w, r)
	if err != nil {
		l.WarnContext(r.Context(), "Failed to read request body", slog.Any("error", err))
		api.WriteError(w, r, err)
		return
	}
	if form != nil {
		params = types.CreateRecordParams{
			FirstName: form.Get("firstName"),
			LastName:  form.Get("lastName"),
			Email:     form.Get("email"),
			Mobile:    form.Get("mobile"),
			Gender:    form.Get("gender"),
			Status:    form.Get("status"),
			Location:  form.Get("location"),
		}
	} else if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(r.Context(), "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if image != nil {
		defer image.close()
	}

	rec, err := h.service.CreateRecord(r.Context(), params, image.upload())
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, types.Response{Success: true, Message: "User created", Data: rec})
}

// UpdateRecord godoc
// @Summary      Update user
// @Description  Updates only the supplied fields; a profileImage file replaces the stored avatar.
// @Tags         Users
// @Accept       mpfd
// @Accept       json
// @Produce      json
// @Param        id           path     string true  "User ID"
// @Param        firstName    formData string false "First name"
// @Param        lastName     formData string false "Last name"
// @Param        email        formData string false "Email"
// @Param        mobile       formData string false "Mobile"
// @Param        gender       formData string false "M or F"
// @Param        status       formData string false "Active or Inactive"
// @Param        location     formData string false "Location"
// @Param        profileImage formData file   false "jpeg or png avatar"
// @Success      200 {object} types.Response "User updated"
// @Failure      400 {object} types.Response "Validation failed"
// @Failure      404 {object} types.Response "User Not Found"
// @Failure      409 {object} types.Response "Email already exists"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /users/{id} [put]
func (h *HandlerImpl) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "UpdateRecord"))

	id, ok := recordID(w, r)
	if !ok {
		return
	}

	var params types.UpdateRecordParams
	form, image, err := readForm(w, r)
	if err != nil {
		l.WarnContext(r.Context(), "Failed to read request body", slog.Any("error", err))
		api.WriteError(w, r, err)
		return
	}
	if form != nil {
		optional := func(key string) *string {
			if vals, ok := form[key]; ok && len(vals) > 0 {
				v := vals[0]
				return &v
			}
			return nil
		}
		params = types.UpdateRecordParams{
			FirstName: optional("firstName"),
			LastName:  optional("lastName"),
			Email:     optional("email"),
			Mobile:    optional("mobile"),
			Gender:    optional("gender"),
			Status:    optional("status"),
			Location:  optional("location"),
		}
	} else if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(r.Context(), "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if image != nil {
		defer image.close()
	}

	rec, err := h.service.UpdateRecord(r.Context(), id, params, image.upload())
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "User updated", Data: rec})
}

// DeleteRecord godoc
// @Summary      Delete user
// @Tags         Users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} types.Response "User deleted"
// @Failure      404 {object} types.Response "User Not Found"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /users/{id} [delete]
func (h *HandlerImpl) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteRecord(r.Context(), id); err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "User deleted"})
}

// recordID parses the {id} URL param. A malformed id cannot name a record, so
// it is answered as not found.
func recordID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, r, fmt.Errorf("invalid id %q: %w", chi.URLParam(r, "id"), types.ErrNotFound))
		return uuid.Nil, false
	}
	return id, true
}

type formImage struct {
	file   multipart.File
	header *multipart.FileHeader
}

func (f *formImage) upload() *ImageUpload {
	if f == nil {
		return nil
	}
	return &ImageUpload{
		Filename:    f.header.Filename,
		ContentType: f.header.Header.Get("Content-Type"),
		Body:        f.file,
	}
}

func (f *formImage) close() {
	_ = f.file.Close()
}

// readForm parses multipart and urlencoded bodies. It returns a nil form for
// any other content type so the caller can fall back to JSON.
func readForm(w http.ResponseWriter, r *http.Request) (url.Values, *formImage, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, nil, formError(err)
		}
		form := url.Values(r.MultipartForm.Value)
		files := r.MultipartForm.File[imageField]
		if len(files) == 0 {
			return form, nil, nil
		}
		if len(files) > 1 {
			return nil, nil, types.NewValidationError(imageField, "only one image may be uploaded")
		}
		f, err := files[0].Open()
		if err != nil {
			return nil, nil, fmt.Errorf("opening uploaded file: %w", err)
		}
		return form, &formImage{file: f, header: files[0]}, nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, nil, formError(err)
		}
		return r.PostForm, nil, nil
	default:
		return nil, nil, nil
	}
}

func formError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return types.NewValidationError(imageField, fmt.Sprintf("request body must not be larger than %d bytes", maxErr.Limit))
	}
	return fmt.Errorf("%w: malformed form body: %w", types.ErrValidation, err)
}
