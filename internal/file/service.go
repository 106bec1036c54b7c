package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/turf-booking-backend/internal/pkg/storage"
)

const (
	maxImageSide   = 1600
	thumbnailSide  = 200
	uploadRootPath = "upload"
)

// UploadInput describes one uploaded file and how it should be vetted.
type UploadInput struct {
	Filename     string
	Content      io.Reader
	UserID       string
	MaxSizeBytes int64    // 0 = no limit
	AllowedTypes []string // MIME types; empty = allow all
	ResizeImage  bool     // re-encode as JPEG no larger than maxImageSide
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*File, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*File, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *File, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error)
}

type service struct {
	repo    Repository
	storage storage.Storage
	imgProc *storage.ImageProcessor
	log     zerolog.Logger
	now     func() time.Time
}

func NewService(repo Repository, store storage.Storage, log zerolog.Logger) Service {
	return &service{
		repo:    repo,
		storage: store,
		imgProc: storage.NewImageProcessor(),
		log:     log,
		now:     time.Now,
	}
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*File, error) {
	src := in.Content
	if in.MaxSizeBytes > 0 {
		src = io.LimitReader(src, in.MaxSizeBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if in.MaxSizeBytes > 0 && int64(len(data)) > in.MaxSizeBytes {
		return nil, ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	if len(in.AllowedTypes) > 0 && !mimetype.EqualsAny(mtype.String(), in.AllowedTypes...) {
		return nil, ErrUnsupportedType
	}

	contentType := mtype.String()
	ext := strings.ToLower(filepath.Ext(in.Filename))
	if ext == "" {
		ext = mtype.Extension()
	}

	if in.ResizeImage {
		buf, err := s.imgProc.FitJPEG(bytes.NewReader(data), maxImageSide, maxImageSide)
		if err != nil {
			return nil, ErrNotAnImage
		}
		data = buf.Bytes()
		contentType = "image/jpeg"
		ext = ".jpg"
	}

	fileID := uuid.NewString()
	shard := fileID[:2]
	storagePath := fmt.Sprintf("%s/%s/%s%s", uploadRootPath, shard, fileID, ext)

	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to save file to storage: %w", err)
	}

	var thumbnailPath *string
	if strings.HasPrefix(contentType, "image/") {
		thumbnailPath = s.saveThumbnail(ctx, data, shard, fileID)
	}

	f := &File{
		ID:            fileID,
		UploadedBy:    in.UserID,
		OriginalName:  filepath.Base(in.Filename),
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          int64(len(data)),
		CreatedAt:     s.now().UTC(),
	}

	if err := s.repo.Create(ctx, f); err != nil {
		s.removeBlobs(ctx, f)
		return nil, err
	}

	return f, nil
}

// saveThumbnail is best effort; the upload stands without one.
func (s *service) saveThumbnail(ctx context.Context, data []byte, shard, fileID string) *string {
	thumb, err := s.imgProc.GenerateThumbnail(bytes.NewReader(data), thumbnailSide, thumbnailSide)
	if err != nil {
		s.log.Warn().Err(err).Str("file_id", fileID).Msg("thumbnail generation failed")
		return nil
	}
	path := fmt.Sprintf("%s/%s/%s_thumb.jpg", uploadRootPath, shard, fileID)
	if err := s.storage.Save(ctx, path, thumb); err != nil {
		s.log.Warn().Err(err).Str("file_id", fileID).Msg("thumbnail save failed")
		return nil
	}
	return &path
}

func (s *service) removeBlobs(ctx context.Context, f *File) {
	if err := s.storage.Delete(ctx, f.StoragePath); err != nil {
		s.log.Warn().Err(err).Str("file_id", f.ID).Msg("failed to delete stored file")
	}
	if f.ThumbnailPath != nil {
		if err := s.storage.Delete(ctx, *f.ThumbnailPath); err != nil {
			s.log.Warn().Err(err).Str("file_id", f.ID).Msg("failed to delete stored thumbnail")
		}
	}
}

func (s *service) Delete(ctx context.Context, id string) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeBlobs(ctx, f)
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*File, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.storage.Get(ctx, f.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to retrieve file from storage: %w", err)
	}

	return stream, f, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if f.ThumbnailPath == nil {
		return nil, nil, ErrNoThumbnail
	}

	stream, err := s.storage.Get(ctx, *f.ThumbnailPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrNoThumbnail
		}
		return nil, nil, fmt.Errorf("failed to retrieve thumbnail from storage: %w", err)
	}

	return stream, f, nil
}
