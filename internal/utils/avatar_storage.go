// Package utils provides shared infrastructure helpers, including the
// Cloudinary-backed avatar storage client.
package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"kudospot/internal/config"
)

// ===== ERRORS =====

var (
	ErrMissingCredentials = errors.New("cloudinary credentials not configured")
	ErrStorageInit        = errors.New("failed to initialize avatar storage")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrNotAnImage         = errors.New("file is not a supported image type")
	ErrInvalidExtension   = errors.New("file has an invalid image extension")
	ErrUnableToReadFile   = errors.New("unable to read uploaded file")
	ErrUploadFailed       = errors.New("avatar upload failed")
	ErrDeleteFailed       = errors.New("avatar deletion failed")
)

// ===== CONFIGURATION =====

// StorageConfig bounds avatar uploads.
type StorageConfig struct {
	MaxFileSize   int64
	UploadTimeout time.Duration
	DeleteTimeout time.Duration
	MaxRetries    uint64
	AllowedTypes  map[string]bool
	Folder        string
}

// DefaultStorageConfig returns limits suitable for profile avatars.
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		MaxFileSize:   5 * 1024 * 1024, // 5MB
		UploadTimeout: 60 * time.Second,
		DeleteTimeout: 15 * time.Second,
		MaxRetries:    3,
		AllowedTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/gif":  true,
			"image/webp": true,
		},
		Folder: "kudospot/avatars",
	}
}

var validImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// ===== AVATAR STORAGE =====

// UploadResult describes a stored avatar.
type UploadResult struct {
	URL      string
	PublicID string
	Format   string
	Size     int64
}

// AvatarStorage stores and removes user avatar images.
type AvatarStorage interface {
	Upload(ctx context.Context, file io.ReadSeeker, filename string, size int64) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

// CloudinaryStorage implements AvatarStorage on top of Cloudinary.
type CloudinaryStorage struct {
	client *cloudinary.Cloudinary
	config StorageConfig
	logger *zap.Logger
}

// NewCloudinaryStorage builds an avatar store from application config.
func NewCloudinaryStorage(cfg config.CloudinaryConfig, logger *zap.Logger) (*CloudinaryStorage, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, ErrMissingCredentials
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	storageCfg := DefaultStorageConfig()
	if cfg.Folder != "" {
		storageCfg.Folder = cfg.Folder
	}

	return &CloudinaryStorage{
		client: cld,
		config: storageCfg,
		logger: logger,
	}, nil
}

func ptrBool(b bool) *bool {
	return &b
}

// Upload validates the image and pushes it to Cloudinary with retries.
func (s *CloudinaryStorage) Upload(ctx context.Context, file io.ReadSeeker, filename string, size int64) (*UploadResult, error) {
	start := time.Now()

	if err := s.validate(file, filename, size); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.UploadTimeout)
	defer cancel()

	params := uploader.UploadParams{
		Folder:         s.config.Folder,
		UseFilename:    ptrBool(true),
		UniqueFilename: ptrBool(true),
		ResourceType:   "image",
	}

	var result *uploader.UploadResult
	operation := func() error {
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return backoff.Permanent(fmt.Errorf("%w: %v", ErrUnableToReadFile, err))
		}
		var opErr error
		result, opErr = s.client.Upload.Upload(ctx, file, params)
		return opErr
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = s.config.UploadTimeout / 2
	err := backoff.RetryNotify(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(b, s.config.MaxRetries), ctx),
		func(err error, d time.Duration) {
			s.logger.Warn("Avatar upload attempt failed",
				zap.String("filename", filename),
				zap.Error(err),
				zap.Duration("backoff", d))
		},
	)
	if err != nil {
		s.logger.Error("All avatar upload attempts failed",
			zap.String("filename", filename),
			zap.Uint64("attempts", s.config.MaxRetries),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	s.logger.Info("Avatar uploaded",
		zap.String("filename", filename),
		zap.Int64("size", size),
		zap.String("public_id", result.PublicID),
		zap.Duration("duration", time.Since(start)))

	return &UploadResult{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		Format:   result.Format,
		Size:     int64(result.Bytes),
	}, nil
}

// Delete removes a previously uploaded avatar by its public ID.
func (s *CloudinaryStorage) Delete(ctx context.Context, publicID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.DeleteTimeout)
	defer cancel()

	_, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		s.logger.Error("Failed to delete avatar",
			zap.String("public_id", publicID),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}

	s.logger.Info("Avatar deleted", zap.String("public_id", publicID))
	return nil
}

// validate checks size, sniffed content type, and extension.
func (s *CloudinaryStorage) validate(file io.ReadSeeker, filename string, size int64) error {
	if size > s.config.MaxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds %d bytes", ErrFileTooLarge, size, s.config.MaxFileSize)
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%w: %v", ErrUnableToReadFile, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", ErrUnableToReadFile, err)
	}

	contentType := http.DetectContentType(buffer[:n])
	if !s.config.AllowedTypes[contentType] {
		return fmt.Errorf("%w: %s", ErrNotAnImage, contentType)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(validImageExtensions, ext) {
		return fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
	}
	return nil
}
