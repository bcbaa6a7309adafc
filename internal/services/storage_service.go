// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kisanexport/storefront/internal/config"
)

var (
	ErrFileTooLarge     = errors.New("file exceeds the allowed size")
	ErrFileTypeRejected = errors.New("file type is not allowed")
)

// StorageService stores uploaded images in S3 when credentials are
// configured and under the local upload directory otherwise.
type StorageService struct {
	s3Client s3iface.S3API
	aws      config.AWSConfig
	storage  config.StorageConfig
	now      func() time.Time
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	svc := &StorageService{
		aws:     cfg.AWS,
		storage: cfg.Storage,
		now:     time.Now,
	}
	if cfg.AWS.AccessKeyID == "" {
		logrus.WithField("dir", cfg.Storage.UploadDir).Info("Using local upload storage")
		return svc, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create AWS session")
	}
	svc.s3Client = s3.New(sess)
	return svc, nil
}

func (s *StorageService) UploadFile(ctx context.Context, header *multipart.FileHeader, options UploadOptions) (*UploadResult, error) {
	if options.MaxSize > 0 && header.Size > options.MaxSize {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s is %d bytes, limit %d", header.Filename, header.Size, options.MaxSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if len(options.AllowedTypes) > 0 && !contains(options.AllowedTypes, ext) {
		return nil, errors.Wrapf(ErrFileTypeRejected, "%q", ext)
	}

	file, err := header.Open()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open upload")
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read upload")
	}

	contentType := http.DetectContentType(fileBytes)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errors.Wrapf(ErrFileTypeRejected, "content is %s", contentType)
	}

	key := s.generateKey(header.Filename, options.Folder)
	if s.s3Client != nil {
		return s.uploadToS3(ctx, fileBytes, key, contentType)
	}
	return s.uploadToLocal(fileBytes, key, contentType)
}

// UploadFiles stores every header in order. Files already written are
// removed again when a later one fails.
func (s *StorageService) UploadFiles(ctx context.Context, headers []*multipart.FileHeader, options UploadOptions) ([]string, error) {
	urls := make([]string, 0, len(headers))
	for _, header := range headers {
		result, err := s.UploadFile(ctx, header, options)
		if err != nil {
			s.DeleteFiles(ctx, urls)
			return nil, err
		}
		urls = append(urls, result.URL)
	}
	return urls, nil
}

func (s *StorageService) uploadToS3(ctx context.Context, fileBytes []byte, key, contentType string) (*UploadResult, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.aws.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to upload to S3")
	}

	return &UploadResult{
		URL:      s.getS3URL(key),
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

func (s *StorageService) uploadToLocal(fileBytes []byte, key, contentType string) (*UploadResult, error) {
	target := filepath.Join(s.storage.UploadDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create upload directory")
	}
	if err := os.WriteFile(target, fileBytes, 0o644); err != nil {
		return nil, errors.Wrap(err, "failed to write upload")
	}

	return &UploadResult{
		URL:      path.Join(s.storage.PublicPath, key),
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
	}, nil
}

// DeleteFile removes a previously uploaded file by its public URL.
// URLs that this service did not issue are ignored.
func (s *StorageService) DeleteFile(ctx context.Context, url string) error {
	key, ok := s.keyFromURL(url)
	if !ok {
		return nil
	}

	if s.s3Client == nil {
		target := filepath.Join(s.storage.UploadDir, filepath.FromSlash(key))
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "failed to delete local file")
		}
		return nil
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.aws.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete file from S3")
	}
	return nil
}

// DeleteFiles is best effort; failures are logged.
func (s *StorageService) DeleteFiles(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.DeleteFile(ctx, url); err != nil {
			logrus.WithError(err).WithField("url", url).Warn("Failed to delete stored file")
		}
	}
}

func (s *StorageService) GetDefaultUploadOptions(category string) UploadOptions {
	images := []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	switch category {
	case "products":
		return UploadOptions{Folder: "products", MaxSize: 10 * 1024 * 1024, AllowedTypes: images}
	case "categories":
		return UploadOptions{Folder: "categories", MaxSize: 5 * 1024 * 1024, AllowedTypes: images}
	case "imports":
		return UploadOptions{Folder: "imports", MaxSize: 10 * 1024 * 1024, AllowedTypes: images}
	default:
		return UploadOptions{Folder: "general", MaxSize: 5 * 1024 * 1024, AllowedTypes: images}
	}
}

func (s *StorageService) generateKey(originalName, folder string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	filename := fmt.Sprintf("%s_%s%s", s.now().Format("20060102"), uuid.New().String()[:8], ext)
	if folder != "" {
		return folder + "/" + filename
	}
	return filename
}

func (s *StorageService) keyFromURL(url string) (string, bool) {
	var prefix string
	if s.s3Client != nil {
		prefix = s.getS3URL("")
	} else {
		prefix = strings.TrimSuffix(s.storage.PublicPath, "/") + "/"
	}
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

func (s *StorageService) getS3URL(key string) string {
	if s.aws.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(s.aws.CloudFrontURL, "/"), key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.aws.S3Bucket, s.aws.Region, key)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
