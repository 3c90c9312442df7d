package fetcher_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/fetcher"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/metadata"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/failure"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/retry"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/timeutil"
)

// mockMetadataSink is a test double for metadata.MetadataSink
type mockMetadataSink struct {
	fetchEvents []fetchEvent
	errorEvents []errorEvent
}

type fetchEvent struct {
	fetchUrl    string
	httpStatus  int
	duration    time.Duration
	contentType string
	retryCount  int
}

type errorEvent struct {
	packageName string
	action      string
	cause       metadata.ErrorCause
	details     string
}

func (m *mockMetadataSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
) {
	m.fetchEvents = append(m.fetchEvents, fetchEvent{
		fetchUrl:    fetchUrl,
		httpStatus:  httpStatus,
		duration:    duration,
		contentType: contentType,
		retryCount:  retryCount,
	})
}

func (m *mockMetadataSink) RecordAssetFetch(
	assetUrl string,
	httpStatus int,
	duration time.Duration,
	retryCount int,
) {
}

func (m *mockMetadataSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.errorEvents = append(m.errorEvents, errorEvent{
		packageName: packageName,
		action:      action,
		cause:       cause,
		details:     details,
	})
}

func (m *mockMetadataSink) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
}

// createTestRetryParam creates retry parameters for testing
func createTestRetryParam(maxAttempts int) retry.RetryParam {
	return retry.NewRetryParam(
		time.Millisecond,
		time.Millisecond,
		42,
		maxAttempts,
		timeutil.NewBackoffParam(
			time.Millisecond,
			2.0,
			10*time.Millisecond,
		),
	)
}

func fetchFrom(t *testing.T, f *fetcher.HtmlFetcher, rawUrl string, maxAttempts int) (fetcher.FetchResult, failure.ClassifiedError) {
	t.Helper()
	fetchUrl, parseErr := url.Parse(rawUrl)
	if parseErr != nil {
		t.Fatalf("failed to parse url %q: %v", rawUrl, parseErr)
	}
	return f.Fetch(
		context.Background(),
		fetcher.NewFetchParam(*fetchUrl, "test-user-agent"),
		createTestRetryParam(maxAttempts),
	)
}

func TestHtmlFetcher_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-user-agent" {
			t.Errorf("expected configured user agent, got %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Hello World</body></html>"))
	}))
	defer server.Close()

	sink := &mockMetadataSink{}
	f := fetcher.NewHtmlFetcher(sink, &http.Client{})

	result, err := fetchFrom(t, &f, server.URL, 3)

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.Code() != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, result.Code())
	}

	if string(result.Body()) != "<html><body>Hello World</body></html>" {
		t.Errorf("unexpected body: %s", string(result.Body()))
	}

	if len(sink.fetchEvents) != 1 {
		t.Fatalf("expected 1 fetch event, got %d", len(sink.fetchEvents))
	}

	fetchEvt := sink.fetchEvents[0]
	if fetchEvt.fetchUrl != server.URL {
		t.Errorf("expected URL %s, got %s", server.URL, fetchEvt.fetchUrl)
	}
	if fetchEvt.httpStatus != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, fetchEvt.httpStatus)
	}

	if len(sink.errorEvents) != 0 {
		t.Errorf("expected 0 error events, got %d", len(sink.errorEvents))
	}
}

func TestHtmlFetcher_Fetch_FinalURLAfterRedirect(t *testing.T) {
	var landingURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/landing", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/landing", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>landed</html>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	landingURL = server.URL + "/landing"

	sink := &mockMetadataSink{}
	f := fetcher.NewHtmlFetcher(sink, &http.Client{})

	result, err := fetchFrom(t, &f, server.URL+"/moved", 3)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	requested := result.URL()
	final := result.FinalURL()
	if requested.String() != server.URL+"/moved" {
		t.Errorf("expected requested URL preserved, got %s", requested.String())
	}
	if final.String() != landingURL {
		t.Errorf("expected final URL %s, got %s", landingURL, final.String())
	}
}

func TestHtmlFetcher_Fetch_NonHTMLContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message": "not html"}`))
	}))
	defer server.Close()

	sink := &mockMetadataSink{}
	f := fetcher.NewHtmlFetcher(sink, &http.Client{})

	_, err := fetchFrom(t, &f, server.URL, 3)

	if err == nil {
		t.Fatal("expected error for non-HTML content, got nil")
	}

	var fetchErr *fetcher.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %T", err)
	}

	if fetchErr.IsRetryable() {
		t.Error("expected non-retryable error for invalid content type")
	}

	if len(sink.errorEvents) != 1 {
		t.Fatalf("expected 1 error event, got %d", len(sink.errorEvents))
	}
	if sink.errorEvents[0].packageName != "fetcher" {
		t.Errorf("expected package name 'fetcher', got %s", sink.errorEvents[0].packageName)
	}
}

func TestHtmlFetcher_Fetch_ClientErrors_NotRetryable(t *testing.T) {
	for _, statusCode := range []int{http.StatusForbidden, http.StatusNotFound, http.StatusBadRequest} {
		requestCount := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestCount++
			w.WriteHeader(statusCode)
		}))

		sink := &mockMetadataSink{}
		f := fetcher.NewHtmlFetcher(sink, &http.Client{})

		_, err := fetchFrom(t, &f, server.URL, 3)
		server.Close()

		if err == nil {
			t.Fatalf("expected error for %d, got nil", statusCode)
		}

		var fetchErr *fetcher.FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected FetchError for %d, got %T", statusCode, err)
		}
		if fetchErr.IsRetryable() {
			t.Errorf("expected non-retryable error for %d", statusCode)
		}
		if requestCount != 1 {
			t.Errorf("expected single request for %d, got %d", statusCode, requestCount)
		}
	}
}

func TestHtmlFetcher_Fetch_HTTP500_Retryable(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sink := &mockMetadataSink{}
	f := fetcher.NewHtmlFetcher(sink, &http.Client{})

	_, err := fetchFrom(t, &f, server.URL, 2)

	if err == nil {
		t.Fatal("expected error after retries exhausted, got nil")
	}

	if requestCount != 2 {
		t.Errorf("expected 2 requests due to retry, got %d", requestCount)
	}

	var retryErr *retry.RetryError
	if !errors.As(err, &retryErr) {
		t.Fatalf("expected RetryError after exhausted retries, got %T", err)
	}

	if len(sink.errorEvents) != 1 {
		t.Fatalf("expected 1 error event, got %d", len(sink.errorEvents))
	}
	if sink.errorEvents[0].cause != metadata.CauseRetryFailure {
		t.Errorf("expected cause CauseRetryFailure, got %v", sink.errorEvents[0].cause)
	}

	// The fetch event carries the exhausted retry budget.
	if len(sink.fetchEvents) != 1 {
		t.Fatalf("expected 1 fetch event, got %d", len(sink.fetchEvents))
	}
	if sink.fetchEvents[0].retryCount != 2 {
		t.Errorf("expected retry count 2, got %d", sink.fetchEvents[0].retryCount)
	}
}

func TestHtmlFetcher_Fetch_SuccessAfterRetry(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if requestCount == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>Success</html>"))
	}))
	defer server.Close()

	sink := &mockMetadataSink{}
	f := fetcher.NewHtmlFetcher(sink, &http.Client{})

	result, err := fetchFrom(t, &f, server.URL, 3)

	if err != nil {
		t.Fatalf("expected success after retry, got error: %v", err)
	}

	if requestCount != 2 {
		t.Errorf("expected 2 requests (1 fail + 1 success), got %d", requestCount)
	}

	if result.Code() != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, result.Code())
	}

	if len(sink.errorEvents) != 0 {
		t.Errorf("expected 0 error events, got %d", len(sink.errorEvents))
	}
}

func TestHtmlFetcher_FetchError_Classification(t *testing.T) {
	retryable := &fetcher.FetchError{
		Message:   "test error",
		Retryable: true,
		Cause:     fetcher.ErrCauseNetworkFailure,
	}

	var classifiedErr failure.ClassifiedError = retryable
	if !classifiedErr.IsRetryable() {
		t.Error("expected network failure to classify as retryable")
	}

	nonRetryable := &fetcher.FetchError{
		Message:   "test error",
		Retryable: false,
		Cause:     fetcher.ErrCauseContentTypeInvalid,
	}

	classifiedErr = nonRetryable
	if classifiedErr.IsRetryable() {
		t.Error("expected invalid content to classify as non-retryable")
	}
}
