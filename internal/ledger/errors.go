package ledger

import (
	"fmt"

	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/metadata"
)

type LedgerErrorCause string

const (
	ErrCauseOpenFailure   = "open failed"
	ErrCauseAppendFailure = "append failed"
	ErrCauseSaveFailure   = "save failed"
	ErrCausePathError     = "path error"
	ErrCauseClosed        = "ledger already closed"
)

type LedgerError struct {
	Message   string
	Retryable bool
	Cause     LedgerErrorCause
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger error: %s", e.Cause)
}

func (e *LedgerError) IsRetryable() bool {
	return e.Retryable
}

// mapLedgerErrorToMetadataCause maps ledger-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapLedgerErrorToMetadataCause(err *LedgerError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseOpenFailure, ErrCauseAppendFailure, ErrCauseSaveFailure, ErrCausePathError:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
