package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/PaulRosu01/PrivatePixel/internal/library"
	"github.com/PaulRosu01/PrivatePixel/internal/logging"
	"github.com/PaulRosu01/PrivatePixel/internal/models"
	"github.com/PaulRosu01/PrivatePixel/internal/syncer"
)

const displayTimeLayout = "Jan 2, 2006 3:04 PM"

func runScan(ctx context.Context, c *components) error {
	added, err := c.Sync.ScanDevice(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "device scan added %d records\n", added)
	return nil
}

func runSync(ctx context.Context, c *components) error {
	added, err := c.Sync.SyncServer(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "server sync added %d records\n", added)
	return nil
}

func runUpload(ctx context.Context, c *components, ids []string) error {
	if len(ids) == 0 {
		return errors.New("expected at least one media id to upload")
	}

	report, err := c.Sync.Upload(ctx, ids, func(p syncer.Progress) {
		status := "uploaded"
		if p.Err != nil {
			status = "failed: " + p.Err.Error()
		}
		fmt.Fprintf(stdout, "[%d/%d] %s %s\n", p.Done, p.Total, p.MediaID, status)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "uploaded %d, failed %d\n", report.Succeeded, report.Failed)
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", report.Failed, len(ids))
	}
	return nil
}

func runDelete(ctx context.Context, c *components, ids []string) error {
	if len(ids) != 1 {
		return errors.New("expected exactly one media id to delete")
	}
	if err := c.Sync.DeleteFromServer(ctx, ids[0]); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "deleted %s from the server\n", ids[0])
	return nil
}

func runTimeline(ctx context.Context, c *components, args []string) error {
	fs := flag.NewFlagSet("timeline", flag.ContinueOnError)
	fs.SetOutput(stderr)
	album := fs.String("album", "", "album id to show (smart or manual)")
	kind := fs.String("type", string(models.FilterAll), "media type: all, photos or videos")
	if err := fs.Parse(args); err != nil {
		return err
	}

	view := library.View{Query: strings.Join(fs.Args(), " ")}

	sel, ok := c.Library.SelectionFor(*album)
	if !ok {
		return fmt.Errorf("unknown album %q", *album)
	}
	view.Selection = sel

	switch filter := models.TypeFilter(strings.ToLower(*kind)); filter {
	case models.FilterAll, models.FilterPhotos, models.FilterVideos:
		view.Filter = filter
	default:
		return fmt.Errorf("unknown media type %q", *kind)
	}

	groups := c.Library.TimelineFor(view)
	logging.FromContext(ctx).Debug("timeline built", "groups", len(groups))
	if len(groups) == 0 {
		fmt.Fprintln(stdout, "no media")
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, group := range groups {
		fmt.Fprintf(tw, "%s (%d)\n", group.Bucket, len(group.Items))
		for _, item := range group.Items {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", item.ID, item.Kind, item.Origin, displayTime(item.MediaRecord), flags(item))
		}
	}
	return tw.Flush()
}

func runAlbums(ctx context.Context, c *components) error {
	_ = ctx
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, album := range c.Library.SmartAlbums() {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", album.ID, album.Title, album.Count)
	}
	for _, album := range c.Library.ManualAlbums() {
		cover := "-"
		if album.Cover != nil {
			cover = album.Cover.ID
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\tcover=%s\n", album.ID, album.Title, album.Count, cover)
	}
	return tw.Flush()
}

func runSeed(ctx context.Context, c *components) error {
	added := c.Library.MergeMock(library.SeedRecords(time.Now()))
	if err := c.Persister.Persist(ctx); err != nil {
		return fmt.Errorf("save library: %w", err)
	}
	fmt.Fprintf(stdout, "seeded %d placeholder records\n", added)
	return nil
}

func displayTime(rec models.MediaRecord) string {
	if !rec.HasTimestamp() {
		return "undated"
	}
	return rec.CreatedAt.Local().Format(displayTimeLayout)
}

func flags(item models.TimelineItem) string {
	var out []string
	if item.Favorite {
		out = append(out, "favorite")
	}
	if n := len(item.DuplicateIDs); n > 0 {
		out = append(out, fmt.Sprintf("+%d duplicates", n))
	}
	return strings.Join(out, ",")
}
