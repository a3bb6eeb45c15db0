// Package storage keeps uploaded property images, on local disk or in an
// S3 compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"propertyhub/pkg/config"

	"github.com/google/uuid"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 5 << 20

var (
	ErrUnsupportedImage  = errors.New("unsupported image type")
	ErrImageTooLarge     = errors.New("image exceeds the size limit")
	ErrInvalidObjectName = errors.New("invalid object name")
)

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ImageStore defines the interface for image storage operations.
type ImageStore interface {
	Save(ctx context.Context, name string, data []byte, contentType string) error
	Delete(ctx context.Context, name string) error
	// URL returns the address browsers load the image from.
	URL(name string) string
}

// New builds the store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch cfg.StorageDriver {
	case "", "local":
		return NewLocalStore(cfg.UploadDir, "/public/uploads"), nil
	case "s3":
		return NewS3Store(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// AllowedExtension reports whether filename carries an accepted image extension.
func AllowedExtension(filename string) bool {
	_, ok := allowedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// DetectImageContentType sniffs the content and returns its MIME type when it
// is one of the accepted image formats.
func DetectImageContentType(data []byte) (string, error) {
	contentType := http.DetectContentType(data)
	for _, allowed := range allowedExtensions {
		if contentType == allowed {
			return contentType, nil
		}
	}
	return "", ErrUnsupportedImage
}

// ValidateImage checks the upload name, size and content together.
func ValidateImage(filename string, data []byte) (string, error) {
	if !AllowedExtension(filename) {
		return "", ErrUnsupportedImage
	}
	if len(data) > MaxImageSize {
		return "", ErrImageTooLarge
	}
	return DetectImageContentType(data)
}

// NewObjectName returns a random object name keeping the upload's extension.
func NewObjectName(filename string) string {
	return uuid.New().String() + strings.ToLower(filepath.Ext(filename))
}

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return ErrInvalidObjectName
	}
	return nil
}
