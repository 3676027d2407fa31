package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

type stubUploader struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (s *stubUploader) Upload(_ context.Context, input *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.key = aws.ToString(input.Key)
	s.contentType = aws.ToString(input.ContentType)
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	s.body = data
	return &manager.UploadOutput{}, nil
}

type stubDeleter struct {
	keys []string
}

func (s *stubDeleter) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	s.keys = append(s.keys, aws.ToString(input.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestS3UploaderUpload(t *testing.T) {
	up := &stubUploader{}
	s := newS3Uploader(up, &stubDeleter{}, "originals", "https://cdn.example.com/")

	payload := pngBytes(t)
	rec := models.MediaRecord{
		ID:        "device-1",
		CreatedAt: time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC),
		Width:     4,
		Height:    3,
	}

	asset, err := s.Upload(context.Background(), rec, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if up.key != "originals/2024/03/device-1.png" {
		t.Fatalf("unexpected key %q", up.key)
	}
	if up.contentType != "image/png" {
		t.Fatalf("unexpected content type %q", up.contentType)
	}
	if !bytes.Equal(up.body, payload) {
		t.Fatal("expected the full original to be uploaded")
	}
	if asset.ID != up.key || asset.URL != "https://cdn.example.com/originals/2024/03/device-1.png" {
		t.Fatalf("unexpected asset %+v", asset)
	}
	if asset.Width != 4 || asset.Height != 3 || !asset.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("expected record metadata to carry over, got %+v", asset)
	}
}

func TestS3UploaderUploadError(t *testing.T) {
	s := newS3Uploader(&stubUploader{err: errors.New("boom")}, &stubDeleter{}, "originals", "")

	_, err := s.Upload(context.Background(), models.MediaRecord{ID: "mock-1"}, strings.NewReader("text"))
	if err == nil || !strings.Contains(err.Error(), "originals/undated/mock-1") {
		t.Fatalf("expected keyed upload error, got %v", err)
	}
}

func TestS3UploaderDelete(t *testing.T) {
	del := &stubDeleter{}
	s := newS3Uploader(&stubUploader{}, del, "originals", "")

	if err := s.Delete(context.Background(), "/originals/2024/03/device-1.png"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(del.keys) != 1 || del.keys[0] != "originals/2024/03/device-1.png" {
		t.Fatalf("unexpected deleted keys %v", del.keys)
	}
	if err := s.Delete(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestObjectKeySanitisesIDs(t *testing.T) {
	got := ObjectKey(models.MediaRecord{ID: "a/b"}, ".jpg")
	if got != "originals/undated/a_b.jpg" {
		t.Fatalf("unexpected key %q", got)
	}
}
