package scheduler_test

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/config"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/fetcher"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/metadata"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/failure"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/retry"
)

const testBaseURL = "https://www.bbc.co.uk/learningenglish/english/features/6-minute-english"

// metadataSinkMock records events and implements both the sink and the
// run finalizer.
type metadataSinkMock struct {
	mu sync.Mutex

	errorCount     int
	finalRunStats  []metadata.RunSummary
	artifactPaths  []string
	fetchCount     int
	assetFetchHits int
}

func (m *metadataSinkMock) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount++
}

func (m *metadataSinkMock) RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, retryCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCount++
}

func (m *metadataSinkMock) RecordAssetFetch(assetUrl string, httpStatus int, duration time.Duration, retryCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assetFetchHits++
}

func (m *metadataSinkMock) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifactPaths = append(m.artifactPaths, path)
}

func (m *metadataSinkMock) RecordFinalRunStats(summary metadata.RunSummary, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finalRunStats = append(m.finalRunStats, summary)
}

// stubFetcher serves canned pages by canonical URL string. Unknown URLs
// yield a non-retryable not-found error.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]stubPage
	calls []string
}

type stubPage struct {
	body     []byte
	finalUrl string
	err      failure.ClassifiedError
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{pages: make(map[string]stubPage)}
}

func (s *stubFetcher) servePage(rawUrl string, body []byte) {
	s.pages[rawUrl] = stubPage{body: body, finalUrl: rawUrl}
}

// serveRedirectedPage serves body for rawUrl but reports finalUrl as the URL
// the document was ultimately served from.
func (s *stubFetcher) serveRedirectedPage(rawUrl string, finalUrl string, body []byte) {
	s.pages[rawUrl] = stubPage{body: body, finalUrl: finalUrl}
}

func (s *stubFetcher) serveError(rawUrl string, err failure.ClassifiedError) {
	s.pages[rawUrl] = stubPage{err: err}
}

func (s *stubFetcher) Fetch(
	ctx context.Context,
	fetchParam fetcher.FetchParam,
	retryParam retry.RetryParam,
) (fetcher.FetchResult, failure.ClassifiedError) {
	fetchUrl := fetchParam.URL()
	key := fetchUrl.String()

	s.mu.Lock()
	s.calls = append(s.calls, key)
	page, ok := s.pages[key]
	s.mu.Unlock()

	if !ok {
		return fetcher.FetchResult{}, &fetcher.FetchError{
			Message:   "not found (404)",
			Retryable: false,
			Cause:     fetcher.ErrCauseRequestNotFound,
		}
	}
	if page.err != nil {
		return fetcher.FetchResult{}, page.err
	}

	finalUrl := fetchUrl
	if page.finalUrl != "" {
		parsed, parseErr := url.Parse(page.finalUrl)
		if parseErr == nil {
			finalUrl = *parsed
		}
	}

	return fetcher.NewFetchResultForTest(
		fetchUrl,
		finalUrl,
		page.body,
		200,
		map[string]string{"Content-Type": "text/html; charset=utf-8"},
	), nil
}

func (s *stubFetcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func testConfig(t *testing.T, archiveRoot string, years []string) config.Config {
	t.Helper()
	listingUrl, err := url.Parse(testBaseURL)
	require.NoError(t, err)

	cfg, err := config.WithDefault().
		WithListingURL(*listingUrl).
		WithAcceptedYears(years).
		WithArchiveRoot(archiveRoot).
		WithCollectionName("SixMinuteEnglish").
		WithConcurrency(2).
		WithMaxAttempt(1).
		Build()
	require.NoError(t, err)
	return cfg
}

// listingFixture renders a listing page from (href, title, number, date) rows.
func listingFixture(entries ...[4]string) []byte {
	html := `<html><body><div class="widget-bbcle-coursecontentlist">`
	for _, entry := range entries {
		html += `<div class="text">
			<h2><a href="` + entry[0] + `">` + entry[1] + `</a></h2>
			<div class="details"><h3><b>` + entry[2] + `</b> / ` + entry[3] + `</h3></div>
		</div>`
	}
	html += `</div></body></html>`
	return []byte(html)
}

func detailFixture(title string, pdfHref string, audioHref string) []byte {
	html := `<html><body><h1>` + title + `</h1>`
	if pdfHref != "" {
		html += `<a class="download bbcle-download-extension-pdf" href="` + pdfHref + `">Transcript</a>`
	}
	if audioHref != "" {
		html += `<a class="download bbcle-download-extension-mp3" href="` + audioHref + `">Audio</a>`
	}
	html += `</body></html>`
	return []byte(html)
}
