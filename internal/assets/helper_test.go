package assets_test

import (
	"sync"
	"time"

	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/metadata"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/retry"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/timeutil"
)

// metadataSinkMock records calls for assertions.
type metadataSinkMock struct {
	mu sync.Mutex

	assetFetchRecords []assetFetchRecord
	artifactRecords   []artifactRecord
	errorRecords      []errorRecord
}

type assetFetchRecord struct {
	AssetUrl   string
	HTTPStatus int
	Duration   time.Duration
	RetryCount int
}

type artifactRecord struct {
	Kind  metadata.ArtifactKind
	Path  string
	Attrs []metadata.Attribute
}

type errorRecord struct {
	PackageName string
	Action      string
	Cause       metadata.ErrorCause
	Details     string
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
	m.errorRecords = append(m.errorRecords, errorRecord{
		PackageName: packageName,
		Action:      action,
		Cause:       cause,
		Details:     details,
	})
}

func (m *metadataSinkMock) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
) {
}

func (m *metadataSinkMock) RecordAssetFetch(
	assetUrl string,
	httpStatus int,
	duration time.Duration,
	retryCount int,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assetFetchRecords = append(m.assetFetchRecords, assetFetchRecord{
		AssetUrl:   assetUrl,
		HTTPStatus: httpStatus,
		Duration:   duration,
		RetryCount: retryCount,
	})
}

func (m *metadataSinkMock) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifactRecords = append(m.artifactRecords, artifactRecord{
		Kind:  kind,
		Path:  path,
		Attrs: attrs,
	})
}

func testRetryParam() retry.RetryParam {
	return retry.NewRetryParam(
		time.Millisecond,
		time.Millisecond,
		42,
		2,
		timeutil.NewBackoffParam(time.Millisecond, 2.0, 5*time.Millisecond),
	)
}
