package file

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/turf-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.NotFound("file not found")
	ErrNoThumbnail     = apperror.NotFound("thumbnail not available for this file")
	ErrTooLarge        = apperror.New(http.StatusRequestEntityTooLarge, "file is too large")
	ErrUnsupportedType = apperror.Validation("unsupported file type")
	ErrNotAnImage      = apperror.Validation("file is not a valid image")
)

// File is the metadata of an uploaded blob. Turfs reference files by ID.
type File struct {
	ID            string    `json:"id"`
	UploadedBy    string    `json:"uploaded_by"`
	OriginalName  string    `json:"original_name"`
	StoragePath   string    `json:"-"`
	ThumbnailPath *string   `json:"-"`
	ContentType   string    `json:"content_type"`
	Size          int64     `json:"size"`
	CreatedAt     time.Time `json:"created_at"`
}

// FileURL returns the public URL for accessing a file by its ID.
func FileURL(id string) string {
	return "/api/files/" + id
}

// ThumbnailURL returns the public URL for accessing a file's thumbnail by its ID.
func ThumbnailURL(id string) string {
	return "/api/files/" + id + "/thumbnail"
}
