package device

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// assetNamespace derives stable asset ids from library-relative paths.
var assetNamespace = uuid.MustParse("6f0c7f1e-3b7a-4c47-9a53-2f8e0d2b9e41")

// DirectorySource exposes a directory tree as a device media library. Files
// are classified by content, not extension; anything that is neither an
// image nor a video is ignored.
type DirectorySource struct {
	Root string
	// Prober, when set, reads dimensions of files the image decoders reject.
	Prober VideoProber

	mu    sync.RWMutex
	paths map[string]string
}

// NewDirectorySource returns a source rooted at dir.
func NewDirectorySource(dir string) *DirectorySource {
	return &DirectorySource{Root: dir, paths: make(map[string]string)}
}

// List walks the directory and returns every photo and video, sorted by path.
func (d *DirectorySource) List(ctx context.Context) ([]Asset, error) {
	if d == nil || strings.TrimSpace(d.Root) == "" {
		return nil, ErrSourceUnavailable
	}

	if _, err := os.Stat(d.Root); err != nil {
		return nil, classify(err)
	}

	var (
		assets []Asset
		paths  = make(map[string]string)
	)
	err := filepath.WalkDir(d.Root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == d.Root {
				return walkErr
			}
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || !entry.Type().IsRegular() {
			return nil
		}

		mediaType, ok := detectMediaType(path)
		if !ok {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}

		rel, err := filepath.Rel(d.Root, path)
		if err != nil {
			return nil
		}
		id := uuid.NewSHA1(assetNamespace, []byte(filepath.ToSlash(rel))).String()
		paths[id] = path
		assets = append(assets, Asset{ID: id, MediaType: mediaType, CreationTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	sort.SliceStable(assets, func(i, j int) bool { return paths[assets[i].ID] < paths[assets[j].ID] })

	d.mu.Lock()
	d.paths = paths
	d.mu.Unlock()

	return assets, nil
}

// Info resolves the file location and the pixel dimensions of a previously
// listed asset. Dimensions stay zero when neither the image decoders nor the
// prober can read them.
func (d *DirectorySource) Info(ctx context.Context, assetID string) (AssetInfo, error) {
	if d == nil {
		return AssetInfo{}, ErrSourceUnavailable
	}
	if err := ctx.Err(); err != nil {
		return AssetInfo{}, err
	}

	d.mu.RLock()
	path, ok := d.paths[assetID]
	d.mu.RUnlock()
	if !ok {
		return AssetInfo{}, ErrAssetNotFound
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return AssetInfo{}, fmt.Errorf("resolve asset path: %w", err)
	}
	info := AssetInfo{URI: "file://" + filepath.ToSlash(abs)}

	f, err := os.Open(path)
	if err != nil {
		return AssetInfo{}, classify(err)
	}
	defer f.Close()

	if cfg, _, err := image.DecodeConfig(f); err == nil {
		info.Width = cfg.Width
		info.Height = cfg.Height
		return info, nil
	}
	if d.Prober != nil {
		if w, h, err := d.Prober.Dimensions(ctx, path); err == nil {
			info.Width, info.Height = w, h
		}
	}
	return info, nil
}

func detectMediaType(path string) (string, bool) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", false
	}
	for m := mtype; m != nil; m = m.Parent() {
		switch {
		case strings.HasPrefix(m.String(), "image/"):
			return MediaTypePhoto, true
		case strings.HasPrefix(m.String(), "video/"):
			return MediaTypeVideo, true
		}
	}
	return "", false
}

func classify(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return err
}
