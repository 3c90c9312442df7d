package fileutil

import (
	"fmt"
)

type FileErrorCause string

const (
	ErrCausePathError FileErrorCause = "path error"
)

type FileError struct {
	Message   string
	Retryable bool
	Cause     FileErrorCause
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file error: %s", e.Cause)
}

func (e *FileError) IsRetryable() bool {
	return e.Retryable
}
