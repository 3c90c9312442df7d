package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/extractor"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/metadata"
	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/failure"
)

/*
Responsibilities
- Load or create the collection's xlsx row store
- Append exactly one row per fully processed episode
- Persist all buffered rows once, at close

The ledger is strictly additive: no row is ever removed or rewritten, and
reopening across runs preserves prior rows and the header. Append and Close
are serialized behind a mutex (single-writer discipline); row order reflects
processing completion order, not any canonical episode ordering.
*/

// LedgerPath composes the canonical on-disk location of a collection's
// ledger: archiveRoot/collectionName/<collectionName>.xlsx.
func LedgerPath(archiveRoot string, collectionName string) string {
	return filepath.Join(archiveRoot, collectionName, collectionName+".xlsx")
}

type Ledger struct {
	mu           sync.Mutex
	metadataSink metadata.MetadataSink
	file         *excelize.File
	sheet        string
	path         string
	nextRow      int
	appended     int
	closed       bool
}

// Open loads an existing row store if present, otherwise creates one with
// the canonical header.
func Open(path string, metadataSink metadata.MetadataSink) (*Ledger, failure.ClassifiedError) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, recordOpenError(metadataSink, path, &LedgerError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
		})
	}

	if _, err := os.Stat(path); err == nil {
		return openExisting(path, metadataSink)
	}
	return createNew(path, metadataSink)
}

func openExisting(path string, metadataSink metadata.MetadataSink) (*Ledger, failure.ClassifiedError) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, recordOpenError(metadataSink, path, &LedgerError{
			Message:   fmt.Sprintf("failed to open ledger: %v", err),
			Retryable: false,
			Cause:     ErrCauseOpenFailure,
		})
	}

	sheet := file.GetSheetName(0)
	rows, err := file.GetRows(sheet)
	if err != nil {
		file.Close()
		return nil, recordOpenError(metadataSink, path, &LedgerError{
			Message:   fmt.Sprintf("failed to read ledger rows: %v", err),
			Retryable: false,
			Cause:     ErrCauseOpenFailure,
		})
	}

	return &Ledger{
		metadataSink: metadataSink,
		file:         file,
		sheet:        sheet,
		path:         path,
		nextRow:      len(rows) + 1,
	}, nil
}

func createNew(path string, metadataSink metadata.MetadataSink) (*Ledger, failure.ClassifiedError) {
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)

	header := make([]interface{}, len(Header))
	for i, column := range Header {
		header[i] = column
	}
	if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
		file.Close()
		return nil, recordOpenError(metadataSink, path, &LedgerError{
			Message:   fmt.Sprintf("failed to write header: %v", err),
			Retryable: false,
			Cause:     ErrCauseOpenFailure,
		})
	}

	// Persist immediately so a crashed run still leaves a valid ledger file.
	if err := file.SaveAs(path); err != nil {
		file.Close()
		return nil, recordOpenError(metadataSink, path, &LedgerError{
			Message:   fmt.Sprintf("failed to create ledger: %v", err),
			Retryable: false,
			Cause:     ErrCauseSaveFailure,
		})
	}

	return &Ledger{
		metadataSink: metadataSink,
		file:         file,
		sheet:        sheet,
		path:         path,
		nextRow:      2,
	}, nil
}

func recordOpenError(metadataSink metadata.MetadataSink, path string, ledgerError *LedgerError) failure.ClassifiedError {
	metadataSink.RecordError(
		time.Now(),
		"ledger",
		"ledger.Open",
		mapLedgerErrorToMetadataCause(ledgerError),
		ledgerError.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, path),
		},
	)
	return ledgerError
}

// Path returns the ledger's on-disk location.
func (l *Ledger) Path() string {
	return l.path
}

// AppendedCount returns the number of rows appended during this run.
func (l *Ledger) AppendedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appended
}

// AppendRow appends exactly one row for the episode.
// Status is StatusDownloaded unconditionally.
func (l *Ledger) AppendRow(episode extractor.Episode) failure.ClassifiedError {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return &LedgerError{
			Message:   "append after close",
			Retryable: false,
			Cause:     ErrCauseClosed,
		}
	}

	row := []interface{}{
		episode.Title(),
		episode.PdfURL(),
		episode.PdfPath(),
		episode.AudioURL(),
		episode.AudioPath(),
		episode.URL(),
		episode.ReleaseDate(),
		episode.ReleaseYear(),
		StatusDownloaded,
	}

	cell, err := excelize.CoordinatesToCellName(1, l.nextRow)
	if err != nil {
		return l.recordAppendError(episode, err)
	}
	if err := l.file.SetSheetRow(l.sheet, cell, &row); err != nil {
		return l.recordAppendError(episode, err)
	}

	l.nextRow++
	l.appended++
	return nil
}

func (l *Ledger) recordAppendError(episode extractor.Episode, err error) failure.ClassifiedError {
	ledgerError := &LedgerError{
		Message:   fmt.Sprintf("failed to append row: %v", err),
		Retryable: false,
		Cause:     ErrCauseAppendFailure,
	}
	l.metadataSink.RecordError(
		time.Now(),
		"ledger",
		"Ledger.AppendRow",
		mapLedgerErrorToMetadataCause(ledgerError),
		ledgerError.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, l.path),
			metadata.NewAttr(metadata.AttrURL, episode.URL()),
		},
	)
	return ledgerError
}

// Close persists all buffered rows to disk. Must be called exactly once per
// run, after the last AppendRow.
func (l *Ledger) Close() failure.ClassifiedError {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return &LedgerError{
			Message:   "close called twice",
			Retryable: false,
			Cause:     ErrCauseClosed,
		}
	}
	l.closed = true

	if err := l.file.SaveAs(l.path); err != nil {
		ledgerError := &LedgerError{
			Message:   fmt.Sprintf("failed to save ledger: %v", err),
			Retryable: false,
			Cause:     ErrCauseSaveFailure,
		}
		l.metadataSink.RecordError(
			time.Now(),
			"ledger",
			"Ledger.Close",
			mapLedgerErrorToMetadataCause(ledgerError),
			ledgerError.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrWritePath, l.path),
			},
		)
		l.file.Close()
		return ledgerError
	}
	l.file.Close()

	l.metadataSink.RecordArtifact(
		metadata.ArtifactLedger,
		l.path,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrField, fmt.Sprintf("rows_appended: %d", l.appended)),
		},
	)
	return nil
}
