package fetcher

import (
	"context"

	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/failure"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/retry"
)

// Fetcher is the page-fetch capability: given a URL, it returns status plus
// body bytes, or a classified failure. The scheduler depends on this
// interface, never on the concrete HTTP implementation.
type Fetcher interface {
	Fetch(
		ctx context.Context,
		fetchParam FetchParam,
		retryParam retry.RetryParam,
	) (FetchResult, failure.ClassifiedError)
}
