package metadata

import (
	"log/slog"
	"time"
)

/*
Recorder captures structured run events.
It must not:
- perform I/O decisions
- affect control flow
Ordering guarantees:
- Events are recorded synchronously in the order they are received by a single worker.
- No global ordering across workers is guaranteed.
- Consumers MUST NOT assume total ordering across the run.
- Ordering is provided for debuggability, not causality.
*/
type Recorder struct {
	workerId string
	logger   *slog.Logger
}

func NewRecorder(workerId string, logger *slog.Logger) Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return Recorder{
		workerId: workerId,
		logger:   logger.With(slog.String("worker", workerId)),
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	logAttrs := []any{
		slog.Time("observed_at", observedAt),
		slog.String("package", packageName),
		slog.String("action", action),
		slog.String("cause", cause.String()),
		slog.String("error", errorString),
	}
	for _, attr := range attrs {
		logAttrs = append(logAttrs, slog.String(string(attr.Key), attr.Value))
	}
	r.logger.Warn("pipeline error", logAttrs...)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
) {
	r.logger.Info("fetched page",
		slog.String("url", fetchUrl),
		slog.Int("status", httpStatus),
		slog.Duration("duration", duration),
		slog.String("content_type", contentType),
		slog.Int("retries", retryCount),
	)
}

func (r *Recorder) RecordAssetFetch(
	assetUrl string,
	httpStatus int,
	duration time.Duration,
	retryCount int,
) {
	r.logger.Info("fetched asset",
		slog.String("url", assetUrl),
		slog.Int("status", httpStatus),
		slog.Duration("duration", duration),
		slog.Int("retries", retryCount),
	)
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	logAttrs := []any{
		slog.String("kind", string(kind)),
		slog.String("path", path),
	}
	for _, attr := range attrs {
		logAttrs = append(logAttrs, slog.String(string(attr.Key), attr.Value))
	}
	r.logger.Info("artifact written", logAttrs...)
}

/*
RecordFinalRunStats records a terminal, derived summary of a completed run.

Contract:
  - MUST be called exactly once per run execution.
  - MUST be called only after run termination
    (all episode sub-flows finished or scheduler abort).
  - The provided RunSummary MUST be derived from scheduler state,
    not accumulated incrementally via the recorder.
  - Recorded stats MUST NOT influence control flow or scheduling.
*/
func (r *Recorder) RecordFinalRunStats(summary RunSummary, duration time.Duration) {
	r.logger.Info("run finished",
		slog.Int("requests_sent", summary.RequestsSent),
		slog.Int("episodes_scheduled", summary.EpisodesScheduled),
		slog.Int("episodes_fetched", summary.EpisodesFetched),
		slog.Int("pdf_downloaded", summary.PdfDownloaded),
		slog.Int("pdf_skipped", summary.PdfSkipped),
		slog.Int("audio_downloaded", summary.AudioDownloaded),
		slog.Int("audio_skipped", summary.AudioSkipped),
		slog.Int("items_recorded", summary.ItemsRecorded),
		slog.Duration("duration", duration),
	)
}

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		retryCount int,
	)

	RecordAssetFetch(
		assetUrl string,
		httpStatus int,
		duration time.Duration,
		retryCount int,
	)

	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

type RunFinalizer interface {
	RecordFinalRunStats(summary RunSummary, duration time.Duration)
}

// NoopSink implements MetadataSink but does nothing.
// The scheduler (or a test) decides whether to inject Recorder or NoopSink;
// the purpose is to keep metadata orthogonal.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
) {
}

func (n *NoopSink) RecordAssetFetch(
	assetUrl string,
	httpStatus int,
	duration time.Duration,
	retryCount int,
) {
}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}
