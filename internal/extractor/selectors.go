package extractor

// Selectors for the BBC Learning English course-content pages.
// Listing and detail pages share the widget markup, so the listing's
// number selector doubles as the detail-page fallback.
const (
	// One structural block per episode on the listing page.
	selectorListingBlock = ".widget-bbcle-coursecontentlist .text"
	// Primary link inside a block. Blocks without it are skipped.
	selectorEpisodeLink = "h2 a"
	// Episode number, e.g. "Episode 250828".
	selectorEpisodeNumber = ".details h3 b"
	// Metadata area whose concatenated text carries the release date.
	selectorEpisodeDetails = ".details h3"

	// Detail-page fallbacks, used only when listing hints are empty.
	selectorDetailTitleFallback  = "h1"
	selectorDetailNumberFallback = ".text .details h3 > b"

	// Asset-class markers on the detail page.
	selectorPdfDownload   = ".download.bbcle-download-extension-pdf"
	selectorAudioDownload = ".download.bbcle-download-extension-mp3"
)
