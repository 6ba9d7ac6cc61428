package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/radsafe/doserisk/internal/dose"
)

// EntryKind categorizes run-log entries.
type EntryKind string

const (
	EntryRunStart      EntryKind = "RUN_START"
	EntryRunEnd        EntryKind = "RUN_END"
	EntryDocumentDone  EntryKind = "DOCUMENT_DONE"
	EntryDocumentFail  EntryKind = "DOCUMENT_FAILED"
	EntryModelSelected EntryKind = "MODEL_SELECTED"
	EntryOrganFailed   EntryKind = "ORGAN_FAILED"
	EntryDiagnostic    EntryKind = "DIAGNOSTIC"
)

// LogEntry is one structured diagnostic record for the processing log.
// Zero-valued fields are not applicable to the entry.
type LogEntry struct {
	Kind     EntryKind  `json:"kind"`
	RunID    string     `json:"run_id,omitempty"`
	Document string     `json:"document,omitempty"`
	Organ    dose.Organ `json:"organ,omitempty"`
	Sex      dose.Sex   `json:"sex,omitempty"`
	Model    dose.Model `json:"model,omitempty"`
	Message  string     `json:"message,omitempty"`
}

// Recorder accepts structured log entries. Implementations must be safe for
// concurrent use; documents in a batch are processed in parallel.
type Recorder interface {
	Record(e LogEntry)
}

// MemoryRecorder collects entries in order of arrival.
type MemoryRecorder struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (r *MemoryRecorder) Record(e LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// Entries returns a copy of the recorded entries.
func (r *MemoryRecorder) Entries() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// SlogRecorder forwards entries to a slog.Logger.
type SlogRecorder struct {
	Logger *slog.Logger
}

func (r *SlogRecorder) Record(e LogEntry) {
	attrs := []any{slog.String("kind", string(e.Kind))}
	if e.RunID != "" {
		attrs = append(attrs, slog.String("run_id", e.RunID))
	}
	if e.Document != "" {
		attrs = append(attrs, slog.String("document", e.Document))
	}
	if e.Organ != "" {
		attrs = append(attrs, slog.String("organ", string(e.Organ)))
	}
	if e.Sex != "" {
		attrs = append(attrs, slog.String("sex", string(e.Sex)))
	}
	if e.Model != "" {
		attrs = append(attrs, slog.String("model", string(e.Model)))
	}
	level := slog.LevelInfo
	if e.Kind == EntryDocumentFail || e.Kind == EntryOrganFailed {
		level = slog.LevelWarn
	}
	r.Logger.Log(context.Background(), level, e.Message, attrs...)
}
