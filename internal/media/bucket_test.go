package media

import (
	"testing"
	"time"

	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

func TestBucketOfScenario(t *testing.T) {
	loc := time.FixedZone("test", 3*60*60)
	now := time.Date(2024, time.March, 10, 8, 0, 0, 0, loc)

	cases := []struct {
		name string
		at   time.Time
		want models.Bucket
	}{
		{"today", time.Date(2024, time.March, 10, 1, 0, 0, 0, loc), models.BucketToday},
		{"midnight", time.Date(2024, time.March, 10, 0, 0, 0, 0, loc), models.BucketToday},
		{"thisWeek", time.Date(2024, time.March, 5, 0, 0, 0, 0, loc), models.BucketThisWeek},
		{"weekStart", time.Date(2024, time.March, 3, 0, 0, 0, 0, loc), models.BucketThisWeek},
		{"justBeforeWeek", time.Date(2024, time.March, 2, 23, 59, 59, 0, loc), models.BucketEarlier},
		{"earlier", time.Date(2024, time.February, 1, 0, 0, 0, 0, loc), models.BucketEarlier},
		{"future", time.Date(2024, time.March, 11, 0, 0, 0, 0, loc), models.BucketToday},
		{"missing", time.Time{}, models.BucketEarlier},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BucketOf(tc.at, now); got != tc.want {
				t.Fatalf("BucketOf(%v) = %q want %q", tc.at, got, tc.want)
			}
		})
	}
}

func TestBucketRecordsPartition(t *testing.T) {
	now := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	records := []models.MediaRecord{
		{ID: "e1", CreatedAt: now.AddDate(0, -1, 0)},
		{ID: "t1", CreatedAt: now.Add(-time.Hour)},
		{ID: "w1", CreatedAt: now.AddDate(0, 0, -3)},
		{ID: "t2", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "x1"},
	}

	groups := BucketRecords(records, now)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups got %d", len(groups))
	}

	want := map[models.Bucket][]string{
		models.BucketToday:    {"t1", "t2"},
		models.BucketThisWeek: {"w1"},
		models.BucketEarlier:  {"e1", "x1"},
	}
	seen := make(map[string]int)
	for i, g := range groups {
		if g.Bucket != models.Buckets[i] {
			t.Fatalf("group %d: got bucket %q want %q", i, g.Bucket, models.Buckets[i])
		}
		if !equalIDs(ids(g.Members), want[g.Bucket]) {
			t.Fatalf("bucket %q: got %v want %v", g.Bucket, ids(g.Members), want[g.Bucket])
		}
		for _, m := range g.Members {
			seen[m.ID]++
		}
	}
	for _, r := range records {
		if seen[r.ID] != 1 {
			t.Fatalf("record %s placed %d times", r.ID, seen[r.ID])
		}
	}
}

func TestBucketRecordsOmitsEmpty(t *testing.T) {
	now := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	groups := BucketRecords([]models.MediaRecord{{ID: "old", CreatedAt: now.AddDate(-1, 0, 0)}}, now)
	if len(groups) != 1 || groups[0].Bucket != models.BucketEarlier {
		t.Fatalf("unexpected groups: %+v", groups)
	}
	if got := BucketRecords(nil, now); len(got) != 0 {
		t.Fatalf("expected no groups, got %+v", got)
	}
}
