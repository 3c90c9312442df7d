package scheduler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/assets"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/config"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/extractor"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/fetcher"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/filter"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/frontier"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/ledger"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/metadata"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/retry"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/timeutil"
)

/*
 Scheduler is the sole control-plane authority of the run.

 Determinism and admission guarantees:
 - Scheduler is the ONLY component allowed to decide whether a listing
   entry enters the frontier.
 - The year filter is applied BEFORE admission, so rejected entries never
   cost a detail fetch.
 - No other component may enqueue, reject, or reorder refs.
 - Pipeline stages may detect and classify failure, but must never decide
   retry, continuation, or abortion.

 Propagation policy:
 - A listing fetch failure is fatal to the run (nothing to process).
 - A detail fetch failure aborts only that episode's sub-flow: logged,
   counted, episode excluded from the ledger.
 - An asset failure is scoped to that asset: the episode is still recorded
   with the corresponding path field empty.

 Metadata emission is observational only and MUST NOT influence
 scheduling, retries, or run termination.

 Scheduler Responsibilities:
 - Coordinate the run lifecycle
 - Own RunStats and the run-level dedup set for the run's full duration
 - Fan episode sub-flows out across a bounded worker pool
 - Guarantee the ledger is closed and final stats are emitted exactly once,
   even after partial failure or cancellation
*/

type Scheduler struct {
	metadataSink     metadata.MetadataSink
	runFinalizer     metadata.RunFinalizer
	htmlFetcher      fetcher.Fetcher
	listingExtractor extractor.ListingExtractor
	detailExtractor  extractor.DetailExtractor
	assetResolver    assets.Resolver
	downloader       downloaderFunc
	frontier         *frontier.Frontier
	stats            RunStats
}

// downloaderFunc is the downloader capability the per-episode sub-flow
// invokes; indirection exists so tests can observe skip behavior.
type downloaderFunc func(ctx context.Context, assetRef assets.AssetRef, retryParam retry.RetryParam) (assets.DownloadResult, error)

func NewScheduler(cfg config.Config, logSink metadata.MetadataSink, runFinalizer metadata.RunFinalizer) Scheduler {
	httpClient := &http.Client{Timeout: cfg.Timeout()}
	htmlFetcher := fetcher.NewHtmlFetcher(logSink, httpClient)
	listingExtractor := extractor.NewListingExtractor(logSink)
	detailExtractor := extractor.NewDetailExtractor(logSink)
	resolver := assets.NewResolver()
	downloader := assets.NewDownloader(logSink, httpClient, cfg.UserAgent())
	runFrontier := frontier.NewFrontier()

	return Scheduler{
		metadataSink:     logSink,
		runFinalizer:     runFinalizer,
		htmlFetcher:      &htmlFetcher,
		listingExtractor: listingExtractor,
		detailExtractor:  detailExtractor,
		assetResolver:    resolver,
		downloader: func(ctx context.Context, assetRef assets.AssetRef, retryParam retry.RetryParam) (assets.DownloadResult, error) {
			result, err := downloader.Fetch(ctx, assetRef, retryParam)
			if err != nil {
				return assets.DownloadResult{}, err
			}
			return result, nil
		},
		frontier: &runFrontier,
	}
}

// NewSchedulerWithDeps creates a Scheduler with injected dependencies for
// testing. It allows substituting the fetch and download capabilities
// without relying on real infrastructure.
func NewSchedulerWithDeps(
	logSink metadata.MetadataSink,
	runFinalizer metadata.RunFinalizer,
	htmlFetcher fetcher.Fetcher,
	downloader downloaderFunc,
) Scheduler {
	runFrontier := frontier.NewFrontier()
	return Scheduler{
		metadataSink:     logSink,
		runFinalizer:     runFinalizer,
		htmlFetcher:      htmlFetcher,
		listingExtractor: extractor.NewListingExtractor(logSink),
		detailExtractor:  extractor.NewDetailExtractor(logSink),
		assetResolver:    assets.NewResolver(),
		downloader:       downloader,
		frontier:         &runFrontier,
	}
}

// Stats exposes the run counters; intended for tests and the CLI summary.
func (s *Scheduler) Stats() *RunStats {
	return &s.stats
}

// ExecuteRun drives one full run:
// INIT -> LISTING -> (FETCH_DETAIL -> RESOLVE_ASSETS -> DOWNLOAD)* ->
// SUMMARIZE -> DONE.
func (s *Scheduler) ExecuteRun(ctx context.Context, cfg config.Config) (RunExecution, error) {
	runStartTime := time.Now()

	// Final stats are recorded even if the run aborts early.
	defer func() {
		s.runFinalizer.RecordFinalRunStats(s.stats.Snapshot(), time.Since(runStartTime))
	}()

	retryParam := retryParamFromConfig(cfg)
	yearFilter := filter.NewYearFilter(cfg.AcceptedYears())

	// INIT: open the ledger before any network work.
	ledgerPath := ledger.LedgerPath(cfg.ArchiveRoot(), cfg.CollectionName())
	runLedger, err := ledger.Open(ledgerPath, s.metadataSink)
	if err != nil {
		return RunExecution{}, err
	}

	// LISTING: fetch and walk the listing page. A failure here is fatal to
	// the run; the ledger still closes.
	listingUrl := cfg.ListingURL()
	s.stats.IncRequestsSent()
	listingResult, fetchErr := s.htmlFetcher.Fetch(
		ctx,
		fetcher.NewFetchParam(listingUrl, cfg.UserAgent()),
		retryParam,
	)
	if fetchErr != nil {
		runLedger.Close()
		return RunExecution{}, fetchErr
	}

	// Relative links resolve against the URL the listing was actually served
	// from, which can differ from the requested one after redirects.
	refs, extractErr := s.listingExtractor.Extract(listingResult.FinalURL(), listingResult.Body())
	if extractErr != nil {
		runLedger.Close()
		return RunExecution{}, extractErr
	}

	// Year filtering happens before admission so rejected entries never
	// reach the detail fetch.
	for _, ref := range refs {
		if !yearFilter.Accepts(ref) {
			continue
		}
		if s.frontier.Submit(ref) {
			s.stats.IncEpisodesScheduled()
		}
	}

	// Fan episode sub-flows out across a bounded worker pool. Workers stop
	// admitting new sub-flows once the context is cancelled; in-flight ones
	// drain on their own.
	concurrency := cfg.Concurrency()
	if concurrency < 1 {
		concurrency = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				ref, ok := s.frontier.Dequeue()
				if !ok {
					return
				}
				s.processEpisode(ctx, cfg, ref, retryParam, runLedger)
			}
		}()
	}
	wg.Wait()

	// SUMMARIZE: close the ledger exactly once, after the last append.
	if closeErr := runLedger.Close(); closeErr != nil {
		return RunExecution{}, closeErr
	}

	return RunExecution{
		Summary:    s.stats.Snapshot(),
		LedgerPath: runLedger.Path(),
	}, nil
}

// processEpisode runs one ref's sub-flow:
// FETCH_DETAIL -> RESOLVE_ASSETS -> DOWNLOAD -> ledger append.
// Every failure inside is scoped: it drops at most this episode.
func (s *Scheduler) processEpisode(
	ctx context.Context,
	cfg config.Config,
	ref extractor.EpisodeRef,
	retryParam retry.RetryParam,
	runLedger *ledger.Ledger,
) {
	detailUrl := ref.DetailURL()
	s.stats.IncRequestsSent()
	fetchResult, fetchErr := s.htmlFetcher.Fetch(
		ctx,
		fetcher.NewFetchParam(detailUrl, cfg.UserAgent()),
		retryParam,
	)
	if fetchErr != nil {
		// Episode dropped: not fetched, not recorded. Error already logged
		// by the fetcher.
		s.stats.IncErrorsScoped()
		return
	}
	s.stats.IncEpisodesFetched()

	episode, extractErr := s.detailExtractor.Extract(ref, fetchResult.FinalURL(), fetchResult.Body())
	if extractErr != nil {
		s.stats.IncErrorsScoped()
		return
	}

	for _, assetRef := range s.assetResolver.Resolve(episode, cfg.ArchiveRoot(), cfg.CollectionName()) {
		s.processAsset(ctx, assetRef, retryParam, &episode)
	}

	if appendErr := runLedger.AppendRow(episode); appendErr != nil {
		s.stats.IncErrorsScoped()
		return
	}
	s.stats.IncItemsRecorded()
}

// processAsset applies the skip contract: already-present assets are never
// fetched again; failed downloads leave the path empty and never abort the
// episode.
func (s *Scheduler) processAsset(
	ctx context.Context,
	assetRef assets.AssetRef,
	retryParam retry.RetryParam,
	episode *extractor.Episode,
) {
	if assetRef.State() == assets.StateAlreadyPresent {
		s.setAssetPath(episode, assetRef.Kind(), assetRef.LocalPath())
		switch assetRef.Kind() {
		case assets.KindPDF:
			s.stats.IncPdfSkipped()
		case assets.KindAudio:
			s.stats.IncAudioSkipped()
		}
		return
	}

	s.stats.IncRequestsSent()
	result, err := s.downloader(ctx, assetRef, retryParam)
	if err != nil {
		// Path field stays absent; the episode is still recorded.
		s.stats.IncErrorsScoped()
		return
	}

	s.setAssetPath(episode, assetRef.Kind(), result.LocalPath())
	switch assetRef.Kind() {
	case assets.KindPDF:
		s.stats.IncPdfDownloaded()
	case assets.KindAudio:
		s.stats.IncAudioDownloaded()
	}
}

func (s *Scheduler) setAssetPath(episode *extractor.Episode, kind assets.AssetKind, path string) {
	switch kind {
	case assets.KindPDF:
		episode.SetPdfPath(path)
	case assets.KindAudio:
		episode.SetAudioPath(path)
	}
}

func retryParamFromConfig(cfg config.Config) retry.RetryParam {
	return retry.NewRetryParam(
		cfg.BackoffInitialDuration(),
		cfg.Jitter(),
		cfg.RandomSeed(),
		cfg.MaxAttempt(),
		timeutil.NewBackoffParam(
			cfg.BackoffInitialDuration(),
			cfg.BackoffMultiplier(),
			cfg.BackoffMaxDuration(),
		),
	)
}
