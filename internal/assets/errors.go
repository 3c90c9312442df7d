package assets

import (
	"fmt"

	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/metadata"
)

type AssetsErrorCause string

const (
	ErrCauseNetworkFailure        = "network issues"
	ErrCauseReadResponseBodyError = "failed to read response body"
	ErrCauseRequestForbidden      = "forbidden"
	ErrCauseRequestTooMany        = "too many requests"
	ErrCauseRequest5xx            = "5xx"
	ErrCausePathError             = "path error"
	ErrCauseWriteFailure          = "write failed"
	ErrCauseRenameFailure         = "rename failed"
	ErrCauseDiskFull              = "disk is full"
	ErrCauseHashError             = "hash computation failed"
)

type AssetsError struct {
	Message   string
	Retryable bool
	Cause     AssetsErrorCause
}

func (e *AssetsError) Error() string {
	return fmt.Sprintf("assets error: %s", e.Cause)
}

func (e *AssetsError) IsRetryable() bool {
	return e.Retryable
}

// mapAssetsErrorToMetadataCause maps assets-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapAssetsErrorToMetadataCause(err *AssetsError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNetworkFailure, ErrCauseReadResponseBodyError, ErrCauseRequest5xx:
		return metadata.CauseNetworkFailure
	case ErrCauseRequestForbidden, ErrCauseRequestTooMany:
		return metadata.CausePolicyDisallow
	case ErrCausePathError, ErrCauseWriteFailure, ErrCauseRenameFailure, ErrCauseDiskFull:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
