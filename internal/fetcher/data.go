package fetcher

import (
	"net/url"
)

// HTTP boundary

type FetchParam struct {
	fetchUrl  url.URL
	userAgent string
}

func NewFetchParam(fetchUrl url.URL, userAgent string) FetchParam {
	return FetchParam{
		fetchUrl:  fetchUrl,
		userAgent: userAgent,
	}
}

func (f *FetchParam) URL() url.URL {
	return f.fetchUrl
}

func (f *FetchParam) UserAgent() string {
	return f.userAgent
}

type FetchResult struct {
	url      url.URL
	finalUrl url.URL
	body     []byte
	meta     ResponseMeta
}

func (f *FetchResult) URL() url.URL {
	return f.url
}

// FinalURL is the URL the response actually came from, after any redirects.
// It is the URL recorded on the Episode, not necessarily the requested one.
func (f *FetchResult) FinalURL() url.URL {
	return f.finalUrl
}

func (f *FetchResult) Body() []byte {
	return f.body
}

func (f *FetchResult) Code() int {
	return f.meta.statusCode
}

func (f *FetchResult) SizeByte() uint64 {
	return f.meta.transferredSizeByte
}

func (f *FetchResult) Headers() map[string]string {
	return f.meta.responseHeaders
}

type ResponseMeta struct {
	statusCode          int
	transferredSizeByte uint64
	responseHeaders     map[string]string
}

// NewFetchResultForTest creates a FetchResult for testing purposes.
// This allows test packages to construct FetchResult values without
// accessing unexported fields directly.
func NewFetchResultForTest(
	fetchUrl url.URL,
	finalUrl url.URL,
	body []byte,
	statusCode int,
	responseHeaders map[string]string,
) FetchResult {
	return FetchResult{
		url:      fetchUrl,
		finalUrl: finalUrl,
		body:     body,
		meta: ResponseMeta{
			statusCode:          statusCode,
			transferredSizeByte: uint64(len(body)),
			responseHeaders:     responseHeaders,
		},
	}
}
