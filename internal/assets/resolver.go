package assets

import (
	"net/url"
	"path/filepath"

	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/extractor"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/fileutil"
)

/*
Responsibilities
- Map an episode's media URLs to canonical local paths
- Decide DOWNLOAD vs SKIP from local archive state alone

The decision is a pure filesystem probe: existence plus nonzero size at the
computed path. No network is touched here, which is what makes re-runs over
a large backlog cheap.
*/

// UnknownSegment stands in for a year or title that could not be derived.
const UnknownSegment = "Unknown"

type Resolver struct{}

func NewResolver() Resolver {
	return Resolver{}
}

// Resolve yields 0, 1, or 2 AssetRefs for the episode's non-empty media
// URLs. Resolve is deterministic: identical inputs always produce identical
// local paths.
func (r *Resolver) Resolve(
	episode extractor.Episode,
	archiveRoot string,
	collectionName string,
) []AssetRef {
	var refs []AssetRef

	if episode.PdfURL() != "" {
		refs = append(refs, r.resolveOne(KindPDF, episode.PdfURL(), episode, archiveRoot, collectionName))
	}
	if episode.AudioURL() != "" {
		refs = append(refs, r.resolveOne(KindAudio, episode.AudioURL(), episode, archiveRoot, collectionName))
	}

	return refs
}

func (r *Resolver) resolveOne(
	kind AssetKind,
	sourceUrl string,
	episode extractor.Episode,
	archiveRoot string,
	collectionName string,
) AssetRef {
	localPath := buildLocalPath(sourceUrl, episode, archiveRoot, collectionName)

	state := StateNeedsDownload
	if fileutil.IsNonEmptyFile(localPath) {
		state = StateAlreadyPresent
	}

	return NewAssetRef(kind, sourceUrl, localPath, state)
}

// buildLocalPath composes
// archiveRoot/collectionName/<releaseYear or "Unknown">/<safeTitle><ext>.
func buildLocalPath(
	sourceUrl string,
	episode extractor.Episode,
	archiveRoot string,
	collectionName string,
) string {
	yearSegment := episode.ReleaseYear()
	if yearSegment == "" {
		yearSegment = UnknownSegment
	}

	safeTitle := fileutil.SanitizeSegment(episode.Title(), UnknownSegment)

	filename := safeTitle
	if ext := sourceExtension(sourceUrl); ext != "" {
		filename += "." + ext
	}

	return filepath.Join(archiveRoot, collectionName, yearSegment, filename)
}

// sourceExtension takes the extension from the URL's path component only, so
// query strings and fragments never reach the filename.
func sourceExtension(sourceUrl string) string {
	parsed, err := url.Parse(sourceUrl)
	if err != nil {
		return ""
	}
	return fileutil.GetFileExtension(parsed.Path)
}
