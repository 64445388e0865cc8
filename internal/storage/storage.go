package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/models"
)

var (
	ErrUnsupportedMedia = errors.New("unsupported file type")
	ErrFileTooLarge     = errors.New("file is too large")
	ErrEmptyFile        = errors.New("file is empty")
	ErrInvalidPath      = errors.New("invalid media path")
)

const MediaTypeDocument = "Document"

const (
	FolderPosts        = "posts"
	FolderVerification = "verification"
	FolderProfiles     = "profiles"
)

var (
	imageExtensions = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
	}
	videoExtensions = map[string]string{
		".mp4":  "video/mp4",
		".webm": "video/webm",
		".mov":  "video/quicktime",
	}
	documentExtensions = map[string]string{
		".pdf": "application/pdf",
	}
)

// Upload is a file received from a client.
type Upload struct {
	Folder   string
	Filename string
	Size     int64
	Body     io.Reader
}

type StoredMedia struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	MediaType   string `json:"media_type"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// MediaStore persists uploaded media and returns where it can be fetched.
type MediaStore interface {
	Save(ctx context.Context, upload Upload) (*StoredMedia, error)
	Delete(ctx context.Context, path string) error
	Driver() string
	// BaseURL is the prefix of every Path this store returns.
	BaseURL() string
}

// ClassifyMedia maps a post attachment's extension to Image or Video.
func ClassifyMedia(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := imageExtensions[ext]; ok {
		return models.MediaTypeImage, nil
	}
	if _, ok := videoExtensions[ext]; ok {
		return models.MediaTypeVideo, nil
	}
	return "", ErrUnsupportedMedia
}

// ClassifyDocument accepts images and PDFs for access request evidence.
func ClassifyDocument(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := imageExtensions[ext]; ok {
		return models.MediaTypeImage, nil
	}
	if _, ok := documentExtensions[ext]; ok {
		return MediaTypeDocument, nil
	}
	return "", ErrUnsupportedMedia
}

// ClassifyImage accepts images only, for profile pictures.
func ClassifyImage(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := imageExtensions[ext]; ok {
		return models.MediaTypeImage, nil
	}
	return "", ErrUnsupportedMedia
}

// ValidateSize rejects empty uploads and those over maxBytes.
func ValidateSize(size, maxBytes int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if maxBytes > 0 && size > maxBytes {
		return ErrFileTooLarge
	}
	return nil
}

func contentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, m := range []map[string]string{imageExtensions, videoExtensions, documentExtensions} {
		if ct, ok := m[ext]; ok {
			return ct
		}
	}
	return "application/octet-stream"
}

func cleanFolder(folder string) (string, error) {
	folder = strings.Trim(filepath.ToSlash(folder), "/")
	if folder == "" || strings.Contains(folder, "..") {
		return "", ErrInvalidPath
	}
	return folder, nil
}

// New builds the store selected by MEDIA_DRIVER.
func New(ctx context.Context, cfg *config.Config) (MediaStore, error) {
	switch cfg.MediaDriver {
	case "", "local":
		return NewLocalStore(cfg.UploadDir, cfg.MediaBaseURL), nil
	case "s3":
		return NewS3Store(ctx, S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicURL:       cfg.S3PublicURL,
		})
	}
	return nil, fmt.Errorf("unknown media driver %q", cfg.MediaDriver)
}
