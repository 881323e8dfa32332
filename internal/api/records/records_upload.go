package records

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-user-records/internal/types"
)

var _ ImageStore = (*DiskImageStore)(nil)

// ImageUpload is a single avatar file received with a create or update request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ImageStore persists avatar files and hands back the stored filename.
type ImageStore interface {
	Save(ctx context.Context, upload ImageUpload) (string, error)
	Remove(ctx context.Context, filename string) error
}

// allowedImageTypes maps accepted content types to the extension used on disk.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
}

type DiskImageStore struct {
	dir      string
	maxBytes int64
	logger   *slog.Logger
}

// NewDiskImageStore creates dir if needed.
func NewDiskImageStore(dir string, maxBytes int64, logger *slog.Logger) (*DiskImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %q: %w", dir, err)
	}
	return &DiskImageStore{dir: dir, maxBytes: maxBytes, logger: logger}, nil
}

// Dir is the directory served under /uploads.
func (s *DiskImageStore) Dir() string {
	return s.dir
}

func (s *DiskImageStore) Save(ctx context.Context, upload ImageUpload) (string, error) {
	l := s.logger.With(slog.String("method", "Save"), slog.String("filename", upload.Filename))

	declared := strings.ToLower(strings.TrimSpace(strings.SplitN(upload.ContentType, ";", 2)[0]))
	if _, ok := allowedImageTypes[declared]; !ok {
		return "", types.NewValidationError("profileImage", "only jpeg, jpg and png images are allowed")
	}

	br := bufio.NewReaderSize(upload.Body, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if len(head) == 0 {
		return "", types.NewValidationError("profileImage", "file is empty")
	}
	sniffed := http.DetectContentType(head)
	ext, ok := allowedImageTypes[sniffed]
	if !ok {
		l.WarnContext(ctx, "Upload content does not match an allowed image type", slog.String("sniffed", sniffed))
		return "", types.NewValidationError("profileImage", "only jpeg, jpg and png images are allowed")
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(br, s.maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > s.maxBytes {
		err = types.NewValidationError("profileImage", fmt.Sprintf("file must not be larger than %d bytes", s.maxBytes))
	}
	if err != nil {
		_ = os.Remove(path)
		var vErr *types.ValidationError
		if errors.As(err, &vErr) {
			return "", err
		}
		return "", fmt.Errorf("writing upload file: %w", err)
	}

	l.DebugContext(ctx, "Stored upload", slog.String("stored_as", name), slog.Int64("bytes", n))
	return name, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *DiskImageStore) Remove(_ context.Context, filename string) error {
	if filename == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(filename)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing upload %q: %w", filename, err)
	}
	return nil
}
