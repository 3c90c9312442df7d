package scheduler

import (
	"sync/atomic"

	"github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/metadata"
)

// RunStats holds the process-lifetime counters for one invocation.
// Counters are atomic because episode sub-flows run concurrently; the
// scheduler owns the stats for the full run and resets them per run.
type RunStats struct {
	requestsSent      atomic.Int64
	episodesScheduled atomic.Int64
	episodesFetched   atomic.Int64
	pdfDownloaded     atomic.Int64
	pdfSkipped        atomic.Int64
	audioDownloaded   atomic.Int64
	audioSkipped      atomic.Int64
	itemsRecorded     atomic.Int64
	errorsScoped      atomic.Int64
}

func (s *RunStats) IncRequestsSent()      { s.requestsSent.Add(1) }
func (s *RunStats) IncEpisodesScheduled() { s.episodesScheduled.Add(1) }
func (s *RunStats) IncEpisodesFetched()   { s.episodesFetched.Add(1) }
func (s *RunStats) IncPdfDownloaded()     { s.pdfDownloaded.Add(1) }
func (s *RunStats) IncPdfSkipped()        { s.pdfSkipped.Add(1) }
func (s *RunStats) IncAudioDownloaded()   { s.audioDownloaded.Add(1) }
func (s *RunStats) IncAudioSkipped()      { s.audioSkipped.Add(1) }
func (s *RunStats) IncItemsRecorded()     { s.itemsRecorded.Add(1) }
func (s *RunStats) IncErrorsScoped()      { s.errorsScoped.Add(1) }

// Snapshot derives the terminal summary from the counters.
func (s *RunStats) Snapshot() metadata.RunSummary {
	return metadata.RunSummary{
		RequestsSent:      int(s.requestsSent.Load()),
		EpisodesScheduled: int(s.episodesScheduled.Load()),
		EpisodesFetched:   int(s.episodesFetched.Load()),
		PdfDownloaded:     int(s.pdfDownloaded.Load()),
		PdfSkipped:        int(s.pdfSkipped.Load()),
		AudioDownloaded:   int(s.audioDownloaded.Load()),
		AudioSkipped:      int(s.audioSkipped.Load()),
		ItemsRecorded:     int(s.itemsRecorded.Load()),
	}
}

// ErrorsScoped counts failures that were recovered below the run level
// (dropped episodes, failed assets). Kept out of RunSummary because the
// summary mirrors the ledger's published counters.
func (s *RunStats) ErrorsScoped() int {
	return int(s.errorsScoped.Load())
}

// RunExecution is the terminal result handed back to the CLI.
type RunExecution struct {
	Summary    metadata.RunSummary
	LedgerPath string
}
