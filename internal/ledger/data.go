package ledger

// Canonical header of the ledger sheet. Column order is part of the on-disk
// contract and never changes between runs.
var Header = []string{
	"Title",
	"PDF URL",
	"PDF Path",
	"MP3 URL",
	"MP3 Path",
	"Page URL",
	"Release Date",
	"Release Year",
	"Status",
}

// StatusDownloaded is written on every appended row, whether or not the
// assets were freshly fetched. Historically the status has meant "row
// recorded" rather than "binary freshly fetched"; preserved as-is.
const StatusDownloaded = "Downloaded"
