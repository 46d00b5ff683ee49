package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"share-ingest-service/internal/entity"
	"share-ingest-service/internal/metrics"
)

// Payload is one inbound share: a content-type tag plus either a text
// snippet or an ordered list of images.
type Payload struct {
	ContentType string // MIME tag supplied by the sharing client
	Text        string
	Images      []Asset
}

// StatusFunc receives user-visible status line updates. Branches report
// concurrently, so implementations must be safe for concurrent use.
type StatusFunc func(line string)

// ItemResult is the outcome of one branch.
type ItemResult struct {
	Index int
	ID    uuid.UUID
	Err   error
}

// Result summarizes one dispatch invocation. Done reports whether the
// terminal event fired: every item of the batch was enqueued.
type Result struct {
	Mode      entity.Mode
	Total     int
	Published int
	Done      bool
	Items     []ItemResult
}

// Dispatcher classifies a share payload and fans it out into independent
// upload-then-publish branches. All batch state lives inside a single
// Dispatch call; the Dispatcher itself is stateless and safe to share.
type Dispatcher struct {
	selector  ModeSelector
	uploader  *AssetUploader
	publisher *QueuePublisher
}

func NewDispatcher(uploader *AssetUploader, publisher *QueuePublisher) *Dispatcher {
	return &Dispatcher{uploader: uploader, publisher: publisher}
}

// Dispatch runs one share through the pipeline. Mode selection comes first:
// a cancelled or unknown selection aborts before classification, an
// unrecognized payload shape aborts before any upload. Branch failures are
// reported per item in the Result, never as a top-level error.
func (d *Dispatcher) Dispatch(ctx context.Context, p Payload, modeKey string, status StatusFunc) (*Result, error) {
	if status == nil {
		status = func(string) {}
	}

	mode, err := d.selector.Select(modeKey)
	if err != nil {
		return nil, err
	}

	switch {
	case p.ContentType == "text/plain" && len(p.Images) == 0 && p.Text != "":
		return d.dispatchText(ctx, p.Text, mode, status), nil
	case strings.HasPrefix(p.ContentType, "image/") && len(p.Images) > 0 && p.Text == "":
		return d.dispatchImages(ctx, p.Images, mode, status), nil
	default:
		return nil, ErrUnsupportedPayload
	}
}

// dispatchText skips the asset path entirely: one direct publish, terminal
// on its success.
func (d *Dispatcher) dispatchText(ctx context.Context, text string, mode entity.Mode, status StatusFunc) *Result {
	status("uploading text...")

	res := &Result{Mode: mode, Total: 1, Items: make([]ItemResult, 1)}

	id, err := d.publisher.Publish(ctx, Draft{
		Type:    entity.TypeText,
		Content: text,
		Mode:    mode,
	}, nil)
	if err != nil {
		res.Items[0] = ItemResult{Err: err}
		log.Printf("[ingest] type=text publish error=%v", err)
		status("queue write failed: " + err.Error())
		return res
	}

	res.Items[0] = ItemResult{ID: id}
	res.Published = 1
	res.Done = true
	status("sent; a notification arrives when analysis finishes")
	return res
}

// dispatchImages launches one branch per image without waiting for
// siblings. Branches feed the batch tracker only on their own success, so
// a partial failure leaves the batch visibly short of total.
func (d *Dispatcher) dispatchImages(ctx context.Context, images []Asset, mode entity.Mode, status StatusFunc) *Result {
	total := len(images)
	res := &Result{Mode: mode, Total: total, Items: make([]ItemResult, total)}

	batch := NewBatch(total, func() {
		res.Done = true
		metrics.BatchesCompleted.Inc()
		status("all items sent")
	})

	status(fmt.Sprintf("uploading %d image(s)...", total))

	var wg sync.WaitGroup
	for i, asset := range images {
		wg.Add(1)
		go func(i int, asset Asset) {
			defer wg.Done()
			res.Items[i] = d.runBranch(ctx, i, asset, mode, batch, status)
		}(i, asset)
	}
	wg.Wait()

	for _, it := range res.Items {
		if it.Err == nil {
			res.Published++
		}
	}
	return res
}

// runBranch is one asset's independent upload-then-publish sequence. Its
// failure never cancels siblings; its success advances the batch exactly
// once, after the queue write is durable.
func (d *Dispatcher) runBranch(ctx context.Context, index int, asset Asset, mode entity.Mode, batch *Batch, status StatusFunc) ItemResult {
	up, err := d.uploader.Upload(ctx, asset)
	if err != nil {
		log.Printf("[ingest] branch=%d asset=%q upload error=%v", index, asset.Name, err)
		status("image upload failed: " + err.Error())
		return ItemResult{Index: index, Err: err}
	}

	id, err := d.publisher.Publish(ctx, Draft{
		Type:        entity.TypeImage,
		Content:     up.ObjectName,
		URL:         &up.URL,
		Mode:        mode,
		StoragePath: &up.StoragePath,
	}, func() {
		batch.RecordOne()
		if k, n := batch.Progress(); k < n {
			status(fmt.Sprintf("uploading... (%d/%d)", k, n))
		}
	})
	if err != nil {
		// The blob stays behind: accepted loss, no compensating delete.
		log.Printf("[ingest] branch=%d orphaned storage object path=%s error=%v", index, up.StoragePath, err)
		status("queue write failed: " + err.Error())
		return ItemResult{Index: index, Err: err}
	}

	return ItemResult{Index: index, ID: id}
}
