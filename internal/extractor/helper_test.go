package extractor_test

import (
	"time"

	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/metadata"
)

// metadataSinkMock is a test double for metadata.MetadataSink
type metadataSinkMock struct {
	errorEvents    []errorEvent
	fetchEvents    int
	artifactEvents int
}

type errorEvent struct {
	packageName string
	action      string
	cause       metadata.ErrorCause
	details     string
	attrs       []metadata.Attribute
}

func (m *metadataSinkMock) RecordError(
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
		attrs:       attrs,
	})
}

func (m *metadataSinkMock) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
) {
	m.fetchEvents++
}

func (m *metadataSinkMock) RecordAssetFetch(
	assetUrl string,
	httpStatus int,
	duration time.Duration,
	retryCount int,
) {
	m.fetchEvents++
}

func (m *metadataSinkMock) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	m.artifactEvents++
}

// listingBlock renders one episode entry with the course-content widget markup.
func listingBlock(href string, title string, number string, dateText string) string {
	return `<div class="text">
		<h2><a href="` + href + `">` + title + `</a></h2>
		<div class="details">
			<h3><b>` + number + `</b> ` + dateText + `</h3>
		</div>
	</div>`
}

func listingPage(blocks ...string) []byte {
	html := `<html><body><div class="widget-bbcle-coursecontentlist">`
	for _, block := range blocks {
		html += block
	}
	html += `</div></body></html>`
	return []byte(html)
}
