package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/metadata"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/failure"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/fileutil"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/hashutil"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/retry"
)

/*
Responsibilities
- Fetch the binary body of an asset that the resolver marked NEEDS_DOWNLOAD
- Create parent directories as needed (idempotent)
- Write through a temporary file and rename on success

A failed write can therefore never leave a zero-byte file at the final path
that a later run would misread as already-present. A single asset failure is
scoped to that asset; it never fails the episode or the run.
*/

type Downloader struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	userAgent    string
}

func NewDownloader(
	metadataSink metadata.MetadataSink,
	httpClient *http.Client,
	userAgent string,
) Downloader {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return Downloader{
		metadataSink: metadataSink,
		httpClient:   httpClient,
		userAgent:    userAgent,
	}
}

// Fetch downloads assetRef's source URL to its local path.
// Only called for refs in StateNeedsDownload.
func (d *Downloader) Fetch(
	ctx context.Context,
	assetRef AssetRef,
	retryParam retry.RetryParam,
) (DownloadResult, failure.ClassifiedError) {
	fetchTask := func() (assetFetchResult, failure.ClassifiedError) {
		return d.performFetch(ctx, assetRef.SourceURL())
	}

	result, fetchErr := retry.Retry(retryParam, fetchTask)

	retryCount := 0
	var retryErr *retry.RetryError
	if errors.As(fetchErr, &retryErr) {
		retryCount = retryParam.MaxAttempts
	}
	d.metadataSink.RecordAssetFetch(
		assetRef.SourceURL(),
		result.status,
		result.duration,
		retryCount,
	)

	if fetchErr != nil {
		d.recordError(assetRef, fetchErr)
		return DownloadResult{}, fetchErr
	}

	saved, writeErr := d.writeAsset(assetRef.LocalPath(), result.data)
	if writeErr != nil {
		d.recordError(assetRef, writeErr)
		return DownloadResult{}, writeErr
	}

	d.metadataSink.RecordArtifact(
		metadata.ArtifactAsset,
		saved.LocalPath(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrAssetURL, assetRef.SourceURL()),
			metadata.NewAttr(metadata.AttrAssetKind, string(assetRef.Kind())),
			metadata.NewAttr(metadata.AttrHash, saved.ContentHash()),
		},
	)

	return saved, nil
}

func (d *Downloader) recordError(assetRef AssetRef, err failure.ClassifiedError) {
	cause := metadata.CauseUnknown
	var assetsErr *AssetsError
	var retryErr *retry.RetryError
	switch {
	case errors.As(err, &assetsErr):
		cause = mapAssetsErrorToMetadataCause(assetsErr)
	case errors.As(err, &retryErr):
		cause = metadata.CauseRetryFailure
	}

	d.metadataSink.RecordError(
		time.Now(),
		"assets",
		"Downloader.Fetch",
		cause,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrAssetURL, assetRef.SourceURL()),
			metadata.NewAttr(metadata.AttrWritePath, assetRef.LocalPath()),
		},
	)
}

func (d *Downloader) performFetch(ctx context.Context, sourceUrl string) (assetFetchResult, failure.ClassifiedError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceUrl, nil)
	if err != nil {
		return assetFetchResult{}, &AssetsError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	req.Header.Set("User-Agent", d.userAgent)

	startTime := time.Now()
	resp, err := d.httpClient.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		return assetFetchResult{}, &AssetsError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return assetFetchResult{status: resp.StatusCode, duration: duration}, &AssetsError{
			Message:   fmt.Sprintf("server error: %d", resp.StatusCode),
			Retryable: true,
			Cause:     ErrCauseRequest5xx,
		}

	case resp.StatusCode == 429:
		return assetFetchResult{status: resp.StatusCode, duration: duration}, &AssetsError{
			Message:   "rate limited (429)",
			Retryable: true,
			Cause:     ErrCauseRequestTooMany,
		}

	case resp.StatusCode >= 400:
		return assetFetchResult{status: resp.StatusCode, duration: duration}, &AssetsError{
			Message:   fmt.Sprintf("client error: %d", resp.StatusCode),
			Retryable: false,
			Cause:     ErrCauseRequestForbidden,
		}

	case resp.StatusCode >= 300:
		return assetFetchResult{status: resp.StatusCode, duration: duration}, &AssetsError{
			Message:   fmt.Sprintf("redirect error: %d", resp.StatusCode),
			Retryable: false,
			Cause:     ErrCauseNetworkFailure,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return assetFetchResult{status: resp.StatusCode, duration: duration}, &AssetsError{
			Message:   fmt.Sprintf("failed to read response body: %v", err),
			Retryable: true,
			Cause:     ErrCauseReadResponseBodyError,
		}
	}

	return assetFetchResult{
		status:   resp.StatusCode,
		duration: duration,
		data:     body,
	}, nil
}

// writeAsset writes data to localPath via a temporary sibling file and an
// atomic rename. The temporary file is removed on any failure.
func (d *Downloader) writeAsset(localPath string, data []byte) (DownloadResult, failure.ClassifiedError) {
	if dirErr := fileutil.EnsureDir(filepath.Dir(localPath)); dirErr != nil {
		return DownloadResult{}, &AssetsError{
			Message:   dirErr.Error(),
			Retryable: false,
			Cause:     ErrCausePathError,
		}
	}

	tempPath := localPath + ".part"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		os.Remove(tempPath)
		if errors.Is(err, syscall.ENOSPC) {
			return DownloadResult{}, &AssetsError{
				Message:   fmt.Sprintf("disk full: %v", err),
				Retryable: true,
				Cause:     ErrCauseDiskFull,
			}
		}
		return DownloadResult{}, &AssetsError{
			Message:   fmt.Sprintf("write failed: %v", err),
			Retryable: false,
			Cause:     ErrCauseWriteFailure,
		}
	}

	if err := os.Rename(tempPath, localPath); err != nil {
		os.Remove(tempPath)
		return DownloadResult{}, &AssetsError{
			Message:   fmt.Sprintf("rename failed: %v", err),
			Retryable: false,
			Cause:     ErrCauseRenameFailure,
		}
	}

	contentHash, hashErr := hashutil.HashBytes(data, hashutil.HashAlgoBLAKE3)
	if hashErr != nil {
		// The file is already safely in place; the hash is observational.
		contentHash = ""
	}

	return NewDownloadResult(localPath, contentHash, uint64(len(data))), nil
}
