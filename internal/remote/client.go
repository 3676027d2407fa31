// Package remote talks to the self-hosted PrivatePixel backend.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/PaulRosu01/PrivatePixel/internal/logging"
	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

// RecordIDPrefix prefixes the ids of records observed on the server.
const RecordIDPrefix = "server-"

const maxErrorBody = 512

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".m4v": {}, ".mov": {}, ".webm": {}, ".mkv": {}, ".avi": {}, ".3gp": {},
}

// Client is an authenticated, rate limited backend client.
type Client struct {
	base    *url.URL
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit paces outgoing requests. A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient builds a client for the backend rooted at baseURL.
func NewClient(baseURL, token string, timeout time.Duration, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", baseURL)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		base:  base,
		token: token,
		http:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListMedia fetches every asset descriptor stored on the server.
func (c *Client) ListMedia(ctx context.Context) ([]models.ServerAsset, error) {
	resp, err := c.do(ctx, http.MethodGet, "media", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read media list: %w", ErrNetwork, err)
	}
	return decodeAssetList(body)
}

// decodeAssetList accepts a bare array or an object wrapping it in "items".
func decodeAssetList(body []byte) ([]models.ServerAsset, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var assets []models.ServerAsset
	if trimmed[0] == '{' {
		var envelope struct {
			Items []models.ServerAsset `json:"items"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decode media list: %w", err)
		}
		assets = envelope.Items
	} else if err := json.Unmarshal(trimmed, &assets); err != nil {
		return nil, fmt.Errorf("decode media list: %w", err)
	}
	return assets, nil
}

// Upload sends one original to the server as a multipart form carrying file,
// takenAt, width and height.
func (c *Client) Upload(ctx context.Context, rec models.MediaRecord, content io.Reader) (models.ServerAsset, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	done := make(chan struct{})
	go func() {
		defer close(done)
		pw.CloseWithError(writeUploadForm(form, rec, content))
	}()
	// The writer must stop reading content before the caller closes it.
	defer func() {
		pr.Close()
		<-done
	}()

	resp, err := c.do(ctx, http.MethodPost, "upload", pr, form.FormDataContentType())
	if err != nil {
		return models.ServerAsset{}, err
	}
	defer resp.Body.Close()

	var asset models.ServerAsset
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil && err != io.EOF {
		return models.ServerAsset{}, fmt.Errorf("decode upload response: %w", err)
	}
	return asset, nil
}

func writeUploadForm(form *multipart.Writer, rec models.MediaRecord, content io.Reader) error {
	part, err := form.CreateFormFile("file", uploadFileName(rec))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("copy upload content: %w", err)
	}
	if rec.HasTimestamp() {
		if err := form.WriteField("takenAt", rec.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	if rec.Width > 0 && rec.Height > 0 {
		if err := form.WriteField("width", strconv.Itoa(rec.Width)); err != nil {
			return err
		}
		if err := form.WriteField("height", strconv.Itoa(rec.Height)); err != nil {
			return err
		}
	}
	return form.Close()
}

func uploadFileName(rec models.MediaRecord) string {
	if u, err := url.Parse(rec.URI); err == nil {
		if name := path.Base(u.Path); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return rec.ID
}

// Delete removes an asset from the server by its server-side id.
func (c *Client) Delete(ctx context.Context, assetID string) error {
	if assetID == "" {
		return ErrNotOnServer
	}
	resp, err := c.do(ctx, http.MethodDelete, "media/"+assetID, nil, "")
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// ServerID returns the server-side id of rec, if it has one.
func ServerID(rec models.MediaRecord) (string, error) {
	if rec.RemoteID != "" {
		return rec.RemoteID, nil
	}
	if id, ok := strings.CutPrefix(rec.ID, RecordIDPrefix); ok && id != "" {
		return id, nil
	}
	return "", ErrNotOnServer
}

// ToRecord converts a server descriptor into a media record. Relative asset
// urls are resolved against the server base.
func (c *Client) ToRecord(asset models.ServerAsset) models.MediaRecord {
	uri := asset.URL
	if ref, err := url.Parse(asset.URL); err == nil && !ref.IsAbs() {
		uri = c.base.ResolveReference(ref).String()
	}
	return models.MediaRecord{
		ID:        RecordIDPrefix + asset.ID,
		URI:       uri,
		CreatedAt: asset.CreatedAt,
		Kind:      assetKind(asset),
		Origin:    models.OriginServer,
		Width:     asset.Width,
		Height:    asset.Height,
		RemoteID:  asset.ID,
	}
}

// ToRecords converts a list of descriptors, skipping ones without an id.
func (c *Client) ToRecords(assets []models.ServerAsset) []models.MediaRecord {
	out := make([]models.MediaRecord, 0, len(assets))
	for _, a := range assets {
		if a.ID == "" {
			continue
		}
		out = append(out, c.ToRecord(a))
	}
	return out
}

func assetKind(asset models.ServerAsset) models.MediaKind {
	mediaType := strings.ToLower(asset.MediaType)
	if mediaType != "" {
		if strings.HasPrefix(mediaType, "video") {
			return models.KindVideo
		}
		return models.KindPhoto
	}
	if u, err := url.Parse(asset.URL); err == nil {
		if _, ok := videoExtensions[strings.ToLower(path.Ext(u.Path))]; ok {
			return models.KindVideo
		}
	}
	return models.KindPhoto
}

func (c *Client) do(ctx context.Context, method, ref string, body io.Reader, contentType string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
		}
	}

	target := c.base.ResolveReference(&url.URL{Path: ref})
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	logger := logging.FromContext(ctx).With("request_id", requestID, "method", method, "path", target.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("remote request failed", "error", err)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, target.Path, err)
	}
	logger.Debug("remote request completed", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method: method,
			Path:   target.Path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}
	return resp, nil
}
