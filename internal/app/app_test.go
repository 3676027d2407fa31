package app

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var out bytes.Buffer
	prevOut, prevErr := stdout, stderr
	stdout, stderr = &out, &bytes.Buffer{}
	t.Cleanup(func() { stdout, stderr = prevOut, prevErr })
	return &out
}

func setBadgerEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PRIVATEPIXEL_STATE_BACKEND", "badger")
	t.Setenv("PRIVATEPIXEL_BADGER_DIR", t.TempDir())
	t.Setenv("PRIVATEPIXEL_SERVER_URL", "")
	t.Setenv("PRIVATEPIXEL_DEVICE_DIR", "")
	t.Setenv("PRIVATEPIXEL_MOCK_SEED", "false")
}

func TestRunRequiresCommand(t *testing.T) {
	if err := Run(context.Background(), nil); err == nil {
		t.Fatal("expected error without a command")
	}
	if err := Run(context.Background(), []string{"bogus"}); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestRunSeedThenTimeline(t *testing.T) {
	setBadgerEnv(t)
	out := captureOutput(t)
	ctx := context.Background()

	if err := Run(ctx, []string{"seed"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out.String(), "seeded 6 placeholder records") {
		t.Fatalf("unexpected seed output %q", out.String())
	}

	out.Reset()
	if err := Run(ctx, []string{"timeline", "--type", "videos"}); err != nil {
		t.Fatalf("timeline: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "mock-2") || !strings.Contains(got, "mock-5") {
		t.Fatalf("expected seeded videos in timeline, got %q", got)
	}
	if strings.Contains(got, "mock-1 ") {
		t.Fatalf("expected photos filtered out, got %q", got)
	}

	out.Reset()
	if err := Run(ctx, []string{"albums"}); err != nil {
		t.Fatalf("albums: %v", err)
	}
	if !strings.Contains(out.String(), "smart-videos") {
		t.Fatalf("expected smart albums listed, got %q", out.String())
	}
}

func TestRunTimelineRejectsUnknownFilters(t *testing.T) {
	setBadgerEnv(t)
	captureOutput(t)

	if err := Run(context.Background(), []string{"timeline", "--album", "missing"}); err == nil {
		t.Fatal("expected error for unknown album")
	}
	if err := Run(context.Background(), []string{"timeline", "--type", "gifs"}); err == nil {
		t.Fatal("expected error for unknown media type")
	}
}

func TestRunSyncWithoutServer(t *testing.T) {
	setBadgerEnv(t)
	captureOutput(t)

	if err := Run(context.Background(), []string{"sync"}); err == nil {
		t.Fatal("expected error when no server is configured")
	}
	if err := Run(context.Background(), []string{"upload"}); err == nil {
		t.Fatal("expected error without media ids")
	}
}

func TestMigrationBackoff(t *testing.T) {
	if got := migrationBackoff(1); got != migrationBaseBackoff {
		t.Fatalf("expected base backoff, got %s", got)
	}
	if got := migrationBackoff(10); got != migrationMaxBackoff {
		t.Fatalf("expected capped backoff, got %s", got)
	}
	if got := migrationBackoff(3); got != 4*migrationBaseBackoff {
		t.Fatalf("expected exponential backoff, got %s", got)
	}
}
