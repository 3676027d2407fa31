package media

import (
	"time"

	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

// BucketBounds returns local midnight of now's day and the start of the
// trailing seven-day window.
func BucketBounds(now time.Time) (todayStart, weekStart time.Time) {
	y, m, d := now.Date()
	todayStart = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	weekStart = todayStart.AddDate(0, 0, -7)
	return todayStart, weekStart
}

// BucketOf places a capture time relative to now. Missing timestamps land in
// Earlier.
func BucketOf(createdAt, now time.Time) models.Bucket {
	if createdAt.IsZero() {
		return models.BucketEarlier
	}
	todayStart, weekStart := BucketBounds(now)
	switch {
	case !createdAt.Before(todayStart):
		return models.BucketToday
	case !createdAt.Before(weekStart):
		return models.BucketThisWeek
	default:
		return models.BucketEarlier
	}
}

// Group is one bucket's members in input order.
type Group[T any] struct {
	Bucket  models.Bucket
	Members []T
}

// Bucketize partitions items into Today, This week and Earlier, keeping input
// order inside each bucket and omitting empty buckets.
func Bucketize[T any](items []T, createdAt func(T) time.Time, now time.Time) []Group[T] {
	members := make(map[models.Bucket][]T, len(models.Buckets))
	for _, item := range items {
		b := BucketOf(createdAt(item), now)
		members[b] = append(members[b], item)
	}

	var out []Group[T]
	for _, b := range models.Buckets {
		if len(members[b]) == 0 {
			continue
		}
		out = append(out, Group[T]{Bucket: b, Members: members[b]})
	}
	return out
}

// BucketRecords is Bucketize specialised to media records.
func BucketRecords(records []models.MediaRecord, now time.Time) []Group[models.MediaRecord] {
	return Bucketize(records, func(r models.MediaRecord) time.Time { return r.CreatedAt }, now)
}
