package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/metadata"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/failure"
)

/*
Responsibilities
- Parse one detail document into a fully populated Episode
- Prefer listing-supplied hints; fall back to the detail page's own
  heading and metadata nodes when a hint is empty
- Extract the PDF and MP3 asset URLs

Absence of metadata is not fatal: a field that cannot be found anywhere
stays an empty string. Only an unparsable document is an error.
*/

type DetailExtractor struct {
	metadataSink metadata.MetadataSink
}

func NewDetailExtractor(
	metadataSink metadata.MetadataSink,
) DetailExtractor {
	return DetailExtractor{
		metadataSink: metadataSink,
	}
}

func (d *DetailExtractor) Extract(
	ref EpisodeRef,
	finalUrl url.URL,
	htmlByte []byte,
) (Episode, failure.ClassifiedError) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlByte))
	if err != nil {
		extractionError := &ExtractionError{
			Message:   fmt.Sprintf("failed to parse detail HTML: %v", err),
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
		d.metadataSink.RecordError(
			time.Now(),
			"extractor",
			"DetailExtractor.Extract",
			mapExtractionErrorToMetadataCause(extractionError),
			extractionError.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, finalUrl.String()),
			},
		)
		return Episode{}, extractionError
	}

	title := ref.TitleHint()
	if title == "" {
		title = strings.TrimSpace(doc.Find(selectorDetailTitleFallback).First().Text())
	}

	number := ref.NumberHint()
	if number == "" {
		number = strings.TrimSpace(doc.Find(selectorDetailNumberFallback).First().Text())
	}

	pdfUrl, _ := doc.Find(selectorPdfDownload).First().Attr("href")
	audioUrl, _ := doc.Find(selectorAudioDownload).First().Attr("href")

	return NewEpisode(
		number,
		title,
		finalUrl.String(),
		ref.ReleaseDate(),
		ref.ReleaseYear(),
		pdfUrl,
		audioUrl,
	), nil
}
