package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

// ErrUnsupportedURI is returned for media URIs the opener cannot read.
var ErrUnsupportedURI = errors.New("syncer: unsupported media uri")

// Opener reads the bytes behind a media URI.
type Opener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

type uriOpener struct {
	http *http.Client
}

// NewOpener returns an Opener for file:// and http(s):// URIs.
func NewOpener(hc *http.Client) Opener {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &uriOpener{http: hc}
}

func (o *uriOpener) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedURI, err)
	}

	switch u.Scheme {
	case "file":
		return os.Open(u.Path)
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, err
		}
		resp, err := o.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: status %d", uri, resp.StatusCode)
		}
		return resp.Body, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURI, uri)
	}
}
