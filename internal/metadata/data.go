package metadata

/*
Metadata Collected
- Fetch timestamps and HTTP status codes
- Asset fetch outcomes and content hashes
- Ledger and media artifact paths
- Run-level counters

Logging Goals
- Debuggable run behavior
- Post-run auditability
- Failure diagnostics

Structured logging is preferred.

Determinism guarantees:
 - Metadata does not affect control flow
 - Errors do not reorder episode processing
 - Output is stable given identical inputs

Metadata is write-only.
No component may read metadata to influence run decisions.
*/

// RunSummary is a terminal, derived summary of a completed run.
//   - Computed by the scheduler after run termination
//   - Recorded exactly once
//   - Must not influence scheduling, retries, or run termination
type RunSummary struct {
	RequestsSent      int
	EpisodesScheduled int
	EpisodesFetched   int
	PdfDownloaded     int
	PdfSkipped        int
	AudioDownloaded   int
	AudioSkipped      int
	ItemsRecorded     int
}

type ArtifactKind string

const (
	ArtifactAsset  ArtifactKind = "asset"
	ArtifactLedger ArtifactKind = "ledger"
)

/*
ErrorCause is a closed, canonical classification used exclusively for
observability (logging, metrics, reporting).

Rules:
  - ErrorCause is for observability only.
  - It must never be used to derive retry, continuation, or abort decisions.
  - ErrorCause values MUST have stable, package-agnostic semantics.
  - Pipeline packages MAY map their local errors to ErrorCause,
    but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

const (
	// CauseUnknown: the failure does not map cleanly to any known category.
	CauseUnknown ErrorCause = iota
	// CauseNetworkFailure: transport-level failure (timeouts, DNS, resets).
	CauseNetworkFailure
	// CausePolicyDisallow: access denied by an explicit rule (403, 429).
	CausePolicyDisallow
	// CauseContentInvalid: content fetched but not meaningfully processable.
	CauseContentInvalid
	// CauseStorageFailure: failure while persisting run artifacts.
	CauseStorageFailure
	// CauseRetryFailure: retry budget exhausted without success.
	CauseRetryFailure
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseRetryFailure:
		return "retry_failure"
	default:
		return "unknown"
	}
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrPath       AttributeKey = "path"
	AttrField      AttributeKey = "field"
	AttrMessage    AttributeKey = "message"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrAssetURL   AttributeKey = "asset_url"
	AttrAssetKind  AttributeKey = "asset_kind"
	AttrWritePath  AttributeKey = "write_path"
	AttrHash       AttributeKey = "hash"
)
