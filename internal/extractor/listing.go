package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/metadata"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/failure"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/urlutil"
)

/*
Responsibilities
- Parse one listing document into EpisodeRef candidates
- Resolve links to absolute URLs against the listing base
- Parse the release date and year out of the block's metadata text
- Deduplicate by canonical absolute URL within one call

Extraction Strategy
- Every structural episode block is visited
- Blocks without a primary link are silently skipped (malformed entries
  are dropped, not errored)
- An unmatched date leaves the date and year absent, never errors

Each call re-parses from scratch; there is no resumable cursor.
*/

// dateRegex matches "<day> <month-name> <year>" inside the listing's details
// text, e.g. "Episode 250828  /  28 Aug 2025". Group 1 is the full date,
// group 2 the year.
var dateRegex = regexp.MustCompile(`(\d{1,2}\s+\w+\s+(\d{4}))`)

type ListingExtractor struct {
	metadataSink metadata.MetadataSink
}

func NewListingExtractor(
	metadataSink metadata.MetadataSink,
) ListingExtractor {
	return ListingExtractor{
		metadataSink: metadataSink,
	}
}

func (l *ListingExtractor) Extract(
	baseUrl url.URL,
	htmlByte []byte,
) ([]EpisodeRef, failure.ClassifiedError) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlByte))
	if err != nil {
		extractionError := &ExtractionError{
			Message:   fmt.Sprintf("failed to parse listing HTML: %v", err),
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
		l.metadataSink.RecordError(
			time.Now(),
			"extractor",
			"ListingExtractor.Extract",
			mapExtractionErrorToMetadataCause(extractionError),
			extractionError.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, baseUrl.String()),
			},
		)
		return nil, extractionError
	}

	var refs []EpisodeRef
	seen := make(map[string]struct{})

	doc.Find(selectorListingBlock).Each(func(_ int, block *goquery.Selection) {
		link, exists := block.Find(selectorEpisodeLink).First().Attr("href")
		if !exists || link == "" {
			// Malformed block: no primary link. Dropped, not errored.
			return
		}

		linkUrl, parseErr := url.Parse(link)
		if parseErr != nil {
			return
		}
		absolute := urlutil.Resolve(*linkUrl, baseUrl)

		// Dedup within this call by canonical URL; the first occurrence wins.
		canonical := urlutil.Canonicalize(absolute)
		canonicalKey := canonical.String()
		if _, dup := seen[canonicalKey]; dup {
			return
		}
		seen[canonicalKey] = struct{}{}

		titleHint := strings.TrimSpace(block.Find(selectorEpisodeLink).First().Text())
		numberHint := strings.TrimSpace(block.Find(selectorEpisodeNumber).First().Text())

		detailsText := block.Find(selectorEpisodeDetails).Text()
		releaseDate, releaseYear := extractDateAndYear(detailsText)

		refs = append(refs, NewEpisodeRef(
			absolute,
			titleHint,
			numberHint,
			releaseDate,
			releaseYear,
		))
	})

	return refs, nil
}

// extractDateAndYear pulls "28 Aug 2025" and "2025" out of the raw details
// text. The text is whitespace-normalized first because the widget splits it
// across several inline nodes. No match yields two empty strings.
func extractDateAndYear(rawText string) (string, string) {
	raw := strings.Join(strings.Fields(rawText), " ")
	match := dateRegex.FindStringSubmatch(raw)
	if match == nil {
		return "", ""
	}
	return strings.TrimSpace(match[1]), match[2]
}
