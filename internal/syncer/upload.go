package syncer

import (
	"context"
	"fmt"

	"github.com/PaulRosu01/PrivatePixel/internal/logging"
	"github.com/PaulRosu01/PrivatePixel/internal/models"
)

// Progress is reported after every item of an upload batch.
type Progress struct {
	MediaID   string
	Done      int
	Total     int
	Succeeded int
	Failed    int
	Err       error
}

// ProgressFunc receives upload progress. Done never decreases.
type ProgressFunc func(Progress)

// UploadSelection uploads the records picked in select mode and leaves select
// mode once the batch is finished.
func (o *Orchestrator) UploadSelection(ctx context.Context, progress ProgressFunc) (models.UploadReport, error) {
	ids := o.lib.State().Selected
	report, err := o.Upload(ctx, ids, progress)
	if err != nil {
		return report, err
	}
	o.lib.ExitSelectMode()
	return report, nil
}

// Upload sends records one at a time in the given order. A failing item is
// recorded in the report and the batch moves on. Records already stored on
// the server count as successes without being sent again.
func (o *Orchestrator) Upload(ctx context.Context, ids []string, progress ProgressFunc) (report models.UploadReport, err error) {
	ctx, span := logging.StartSpan(ctx, "upload.batch")
	defer func() {
		span.Fail(err)
		span.End()
	}()

	if o.deps.Uploader == nil {
		return report, ErrServerUnavailable
	}

	logger := logging.FromContext(ctx)
	total := len(ids)
	changed := false

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		itemErr := o.uploadOne(ctx, id)
		if itemErr == nil {
			report.Succeeded++
			changed = true
		} else {
			report.Failed++
			if report.Errors == nil {
				report.Errors = make(map[string]string)
			}
			report.Errors[id] = itemErr.Error()
			logger.Warn("upload failed", "mediaId", id, "error", itemErr)
		}

		if progress != nil {
			progress(Progress{
				MediaID:   id,
				Done:      i + 1,
				Total:     total,
				Succeeded: report.Succeeded,
				Failed:    report.Failed,
				Err:       itemErr,
			})
		}
	}

	logger.Info("upload batch finished", "succeeded", report.Succeeded, "failed", report.Failed)
	o.persist(ctx, changed)
	return report, nil
}

func (o *Orchestrator) uploadOne(ctx context.Context, id string) error {
	rec, ok := o.lib.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMedia, id)
	}
	if rec.Origin == models.OriginServer {
		return nil
	}

	content, err := o.deps.Opener.Open(ctx, rec.URI)
	if err != nil {
		return fmt.Errorf("open %s: %w", id, err)
	}
	defer content.Close()

	asset, err := o.deps.Uploader.Upload(ctx, rec, content)
	if err != nil {
		return err
	}

	o.lib.RecordUploadSuccess(id, asset.ID)
	return nil
}
