package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"

	"github.com/PaulRosu01/PrivatePixel/internal/config"
	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

// sniffLen is how much of an original is buffered to detect its content type.
const sniffLen = 3072

type objectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type objectDeleter interface {
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Uploader archives originals into an S3-compatible bucket. It stands in
// for the backend's upload and delete endpoints.
type S3Uploader struct {
	uploader objectUploader
	deleter  objectDeleter
	bucket   string
	baseURL  string
}

// NewS3Uploader configures an uploader targeting the provided object store.
func NewS3Uploader(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Uploader, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return newS3Uploader(uploader, client, cfg.Bucket, cfg.PublicBaseURL), nil
}

func newS3Uploader(uploader objectUploader, deleter objectDeleter, bucket, baseURL string) *S3Uploader {
	return &S3Uploader{
		uploader: uploader,
		deleter:  deleter,
		bucket:   bucket,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

// ObjectKey places an original under originals/<year>/<month>/ keyed by its
// record id. Records without a capture time go under originals/undated/.
func ObjectKey(rec models.MediaRecord, ext string) string {
	dir := "originals/undated"
	if rec.HasTimestamp() {
		dir = "originals/" + rec.CreatedAt.UTC().Format("2006/01")
	}
	name := strings.ReplaceAll(rec.ID, "/", "_") + ext
	return path.Join(dir, name)
}

// Upload stores one original and describes it the way the backend would.
func (s *S3Uploader) Upload(ctx context.Context, rec models.MediaRecord, content io.Reader) (models.ServerAsset, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(content, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return models.ServerAsset{}, fmt.Errorf("s3 storage read %s: %w", rec.ID, err)
	}
	head = head[:n]
	mtype := mimetype.Detect(head)

	key := ObjectKey(rec, mtype.Extension())
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        io.MultiReader(bytes.NewReader(head), content),
		ContentType: aws.String(mtype.String()),
	})
	if err != nil {
		return models.ServerAsset{}, fmt.Errorf("s3 storage upload %s: %w", key, err)
	}

	location := key
	if s.baseURL != "" {
		location = fmt.Sprintf("%s/%s", s.baseURL, key)
	}

	return models.ServerAsset{
		ID:        key,
		URL:       location,
		CreatedAt: rec.CreatedAt,
		Width:     rec.Width,
		Height:    rec.Height,
		MediaType: mtype.String(),
	}, nil
}

// Delete removes an archived original by key.
func (s *S3Uploader) Delete(ctx context.Context, key string) error {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return fmt.Errorf("s3 storage: empty key")
	}
	if _, err := s.deleter.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("s3 storage delete %s: %w", key, err)
	}
	return nil
}
