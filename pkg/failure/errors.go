package failure

// ClassifiedError is the error contract shared by every pipeline stage.
// Stages classify whether a failure is worth retrying; the scheduler alone
// turns a failure into a continue/abort decision, and it does so by pipeline
// position (listing, episode, asset), never by error introspection.
type ClassifiedError interface {
	error
	IsRetryable() bool
}
