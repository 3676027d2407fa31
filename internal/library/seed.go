package library

import (
	"fmt"
	"time"

	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

// SeedRecords returns placeholder media spread across every time bucket so a
// fresh install has something to show before the first scan.
func SeedRecords(now time.Time) []models.MediaRecord {
	offsets := []struct {
		age  time.Duration
		kind models.MediaKind
		w, h int
	}{
		{30 * time.Minute, models.KindPhoto, 1080, 1350},
		{3 * time.Hour, models.KindVideo, 1920, 1080},
		{2 * 24 * time.Hour, models.KindPhoto, 1080, 1080},
		{5 * 24 * time.Hour, models.KindPhoto, 3024, 4032},
		{20 * 24 * time.Hour, models.KindVideo, 1280, 720},
		{90 * 24 * time.Hour, models.KindPhoto, 4032, 3024},
	}

	out := make([]models.MediaRecord, 0, len(offsets))
	for i, o := range offsets {
		n := i + 1
		out = append(out, models.MediaRecord{
			ID:        fmt.Sprintf("mock-%d", n),
			URI:       fmt.Sprintf("https://picsum.photos/seed/privatepixel-%d/%d/%d", n, o.w/4, o.h/4),
			CreatedAt: now.Add(-o.age).Truncate(time.Second),
			Kind:      o.kind,
			Origin:    models.OriginMock,
			Width:     o.w,
			Height:    o.h,
		})
	}
	return out
}
