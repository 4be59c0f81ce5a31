package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KomaiX512/insightdeck/internal/decoder"
	"github.com/KomaiX512/insightdeck/internal/delivery"
	"github.com/KomaiX512/insightdeck/internal/jsondoc"
)

// Worker processes a single batch decode job.
type Worker struct {
	dec         *decoder.Decoder
	hook        *delivery.Client
	stats       *decoder.DecodeStats
	log         *slog.Logger
	classPrefix string

	maxConcurrentDecode  int
	maxConcurrentDeliver int
}

func NewWorker(dec *decoder.Decoder, hook *delivery.Client, stats *decoder.DecodeStats, log *slog.Logger, maxDecode, maxDeliver int, classPrefix string) *Worker {
	return &Worker{
		dec:                  dec,
		hook:                 hook,
		stats:                stats,
		log:                  log,
		classPrefix:          classPrefix,
		maxConcurrentDecode:  maxDecode,
		maxConcurrentDeliver: maxDeliver,
	}
}

// Process decodes every payload in the job with bounded concurrency, then
// delivers results to the webhook when one is configured. Decoding itself
// cannot fail; only payloads that are not valid JSON at all are decoded as
// literal text and noted, never dropped.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "user_id", job.UserID)

	items := job.Items()
	if len(items) == 0 {
		job.AddError("no payloads to decode")
		job.SetStatus(StatusFailed, "decoding")
		return
	}

	// Phase 1: decode with bounded concurrency.
	job.SetStatus(StatusDecoding, "decoding")
	results := make(chan ItemResult, len(items))
	sem := make(chan struct{}, w.maxConcurrentDecode)

	for _, item := range items {
		sem <- struct{}{}
		go func(item PayloadItem) {
			defer func() { <-sem }()
			results <- w.decodeItem(item)
		}(item)
	}

	for range items {
		r := <-results
		job.AddResult(r)
		if r.Error != "" {
			job.AddError(fmt.Sprintf("%s: %s", r.Name, r.Error))
		}
	}
	log.Info("batch decoded", "items", len(items))

	// Phase 2: deliver to the webhook, when configured.
	hadErrors := false
	if w.hook != nil {
		job.SetStatus(StatusDelivering, "delivering")
		hadErrors = !w.deliverAll(ctx, job, log)
	}

	if hadErrors {
		if job.Snapshot().Progress.Delivered > 0 {
			job.SetStatus(StatusPartial, "done")
		} else {
			job.SetStatus(StatusFailed, "delivering")
		}
		return
	}
	job.SetStatus(StatusCompleted, "done")
}

func (w *Worker) decodeItem(item PayloadItem) ItemResult {
	value, err := jsondoc.Parse(item.Raw)
	result := ItemResult{
		Name:        item.Name,
		PayloadHash: PayloadHashHex(item.Raw),
	}
	if err != nil {
		// Not JSON at all: decode the raw bytes as literal text.
		value = string(item.Raw)
		result.Error = fmt.Sprintf("payload is not valid JSON, decoded as text: %s", err)
	}

	start := time.Now()
	result.Sections = w.dec.Decode(value)
	w.stats.Record(time.Since(start).Milliseconds(), len(result.Sections))
	return result
}

// deliverAll pushes every decoded result with bounded concurrency and
// per-report retries. Returns true when everything delivered.
func (w *Worker) deliverAll(ctx context.Context, job *Job, log *slog.Logger) bool {
	results := job.Results()
	sem := make(chan struct{}, w.maxConcurrentDeliver)
	errs := make(chan error, len(results))

	for _, r := range results {
		sem <- struct{}{}
		go func(r ItemResult) {
			defer func() { <-sem }()
			report := delivery.Report{
				JobID:       job.ID,
				Name:        r.Name,
				PayloadHash: r.PayloadHash,
				Sections:    r.Sections,
				ClassPrefix: w.classPrefix,
				DecodedAt:   time.Now().UTC(),
			}
			var lastErr error
			for attempt := range MaxRetries {
				lastErr = w.hook.PushReport(ctx, report)
				if lastErr == nil || !IsRetryable(lastErr) {
					break
				}
				log.Warn("retryable delivery error", "name", r.Name, "attempt", attempt, "error", lastErr)
				select {
				case <-time.After(Backoff(attempt)):
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
			if lastErr == nil {
				job.MarkDelivered(r.Name)
			}
			errs <- lastErr
		}(r)
	}

	ok := true
	for range results {
		if err := <-errs; err != nil {
			ok = false
			job.AddError(fmt.Sprintf("deliver: %s", err))
			log.Error("delivery failed", "error", err)
		}
	}
	return ok
}
