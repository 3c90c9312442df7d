package assets

import "time"

// AssetKind distinguishes the two media classes an episode may carry.
type AssetKind string

const (
	KindPDF   AssetKind = "pdf"
	KindAudio AssetKind = "audio"
)

// AssetState is the resolver's verdict from the local filesystem probe.
type AssetState int

const (
	StateNeedsDownload AssetState = iota
	StateAlreadyPresent
)

// AssetRef is one downloadable media reference on an episode, bound to its
// canonical local path.
//
// localPath is a pure function of (archive root, collection, release year or
// "Unknown", sanitized title, extension): re-running the pipeline for the
// same episode always yields the same path, which is what makes the
// already-present skip check idempotent.
type AssetRef struct {
	kind      AssetKind
	sourceUrl string
	localPath string
	state     AssetState
}

func NewAssetRef(
	kind AssetKind,
	sourceUrl string,
	localPath string,
	state AssetState,
) AssetRef {
	return AssetRef{
		kind:      kind,
		sourceUrl: sourceUrl,
		localPath: localPath,
		state:     state,
	}
}

func (a *AssetRef) Kind() AssetKind {
	return a.kind
}

func (a *AssetRef) SourceURL() string {
	return a.sourceUrl
}

func (a *AssetRef) LocalPath() string {
	return a.localPath
}

func (a *AssetRef) State() AssetState {
	return a.state
}

// DownloadResult reports a completed save: where the bytes landed and the
// content hash recorded for auditability.
type DownloadResult struct {
	localPath   string
	contentHash string
	sizeByte    uint64
}

func NewDownloadResult(localPath string, contentHash string, sizeByte uint64) DownloadResult {
	return DownloadResult{
		localPath:   localPath,
		contentHash: contentHash,
		sizeByte:    sizeByte,
	}
}

func (d *DownloadResult) LocalPath() string {
	return d.localPath
}

func (d *DownloadResult) ContentHash() string {
	return d.contentHash
}

func (d *DownloadResult) SizeByte() uint64 {
	return d.sizeByte
}

// assetFetchResult is the downloader's internal fetch outcome before the
// bytes hit the filesystem.
type assetFetchResult struct {
	status   int
	duration time.Duration
	data     []byte
}
