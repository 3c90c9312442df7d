package extractor

import "net/url"

// EpisodeRef is one listing entry: the link to a detail page plus the
// lightweight metadata the listing happened to carry. Hints may be empty;
// the detail stage corrects them.
type EpisodeRef struct {
	detailUrl   url.URL
	titleHint   string
	numberHint  string
	releaseDate string
	releaseYear string
}

func NewEpisodeRef(
	detailUrl url.URL,
	titleHint string,
	numberHint string,
	releaseDate string,
	releaseYear string,
) EpisodeRef {
	return EpisodeRef{
		detailUrl:   detailUrl,
		titleHint:   titleHint,
		numberHint:  numberHint,
		releaseDate: releaseDate,
		releaseYear: releaseYear,
	}
}

// DetailURL is absolute (resolved against the listing page's base URL)
// before it is ever used as a dedup key.
func (e *EpisodeRef) DetailURL() url.URL {
	return e.detailUrl
}

func (e *EpisodeRef) TitleHint() string {
	return e.titleHint
}

func (e *EpisodeRef) NumberHint() string {
	return e.numberHint
}

func (e *EpisodeRef) ReleaseDate() string {
	return e.releaseDate
}

func (e *EpisodeRef) ReleaseYear() string {
	return e.releaseYear
}

// HasReleaseYear distinguishes "no parsable date on the listing" from an
// empty string that survived parsing. The year filter fails closed on absence.
func (e *EpisodeRef) HasReleaseYear() bool {
	return e.releaseYear != ""
}

// Episode is the fully resolved record. Asset paths are filled in only
// after the resolver and downloader have run.
type Episode struct {
	number      string
	title       string
	url         string
	releaseDate string
	releaseYear string
	pdfUrl      string
	audioUrl    string
	pdfPath     string
	audioPath   string
}

func NewEpisode(
	number string,
	title string,
	pageUrl string,
	releaseDate string,
	releaseYear string,
	pdfUrl string,
	audioUrl string,
) Episode {
	return Episode{
		number:      number,
		title:       title,
		url:         pageUrl,
		releaseDate: releaseDate,
		releaseYear: releaseYear,
		pdfUrl:      pdfUrl,
		audioUrl:    audioUrl,
	}
}

func (e *Episode) Number() string {
	return e.number
}

func (e *Episode) Title() string {
	return e.title
}

// URL is the fetched detail page's final URL, not necessarily the listing's
// detailUrl if the fetch was redirected.
func (e *Episode) URL() string {
	return e.url
}

func (e *Episode) ReleaseDate() string {
	return e.releaseDate
}

func (e *Episode) ReleaseYear() string {
	return e.releaseYear
}

func (e *Episode) PdfURL() string {
	return e.pdfUrl
}

func (e *Episode) AudioURL() string {
	return e.audioUrl
}

func (e *Episode) PdfPath() string {
	return e.pdfPath
}

func (e *Episode) AudioPath() string {
	return e.audioPath
}

func (e *Episode) SetPdfPath(path string) {
	e.pdfPath = path
}

func (e *Episode) SetAudioPath(path string) {
	e.audioPath = path
}
