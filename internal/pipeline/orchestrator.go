package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/radsafe/doserisk/internal/dose"
	"github.com/radsafe/doserisk/internal/extract"
	"github.com/radsafe/doserisk/internal/params"
	"github.com/radsafe/doserisk/internal/risk"
	"github.com/radsafe/doserisk/internal/transpose"
)

// Document is one in-memory simulation output document. Content must already
// be loaded; file I/O and encoding belong to the caller. An empty ID is
// assigned a fresh UUID during processing.
type Document struct {
	ID      string
	Name    string // display name for logs and reports (usually the file name)
	Content string
}

// Params are the shared computation parameters for a batch. Per-document age
// overrides are carried on the document via AgeOverride.
type Params struct {
	AgeAtExposure   float64
	AgeAtAssessment float64
	Sexes           []dose.Sex // empty means both
	ForcedModel     dose.Model // ModelNone means automatic selection
}

// AgeOverride replaces the batch ages for a single document.
type AgeOverride struct {
	AgeAtExposure   float64
	AgeAtAssessment float64
}

// Outcome is one document's result: exactly one of Report or Err is set.
type Outcome struct {
	Document     Document
	Report       *risk.Report
	Err          error // fatal document error (extraction, reshape, input)
	LinesSkipped int
}

// Failed reports whether the document produced no report.
func (o Outcome) Failed() bool { return o.Err != nil }

// BatchResult is the consolidated output of one Process call. Outcomes keep
// the input document order regardless of completion order.
type BatchResult struct {
	RunID    string
	Outcomes []Outcome
	Log      []LogEntry
}

// DefaultWorkers bounds the per-batch worker pool. Documents are independent
// and computationally light; a small pool is enough.
const DefaultWorkers = 4

// Orchestrator sequences the pipeline stages over document batches and owns
// the session-scoped dose-table cache.
type Orchestrator struct {
	set     *params.Set
	sinks   []Recorder
	workers int

	mu        sync.Mutex
	overrides map[string]AgeOverride
	cache     map[string]*dose.Table // document ID -> transposed table
	names     map[string]string      // document ID -> display name
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder adds an external log sink (e.g. an SlogRecorder). The
// orchestrator always keeps its own in-memory log for the batch result.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.sinks = append(o.sinks, r) }
}

// WithWorkers sets the document worker-pool size.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithAgeOverride replaces the batch ages for the document with the given ID.
func WithAgeOverride(docID string, ov AgeOverride) Option {
	return func(o *Orchestrator) { o.overrides[docID] = ov }
}

// New creates an Orchestrator over a validated parameter set.
func New(set *params.Set, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		set:       set,
		workers:   DefaultWorkers,
		overrides: make(map[string]AgeOverride),
		cache:     make(map[string]*dose.Table),
		names:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Process runs the pipeline over every document and collects one Outcome per
// document, in input order. Documents are processed concurrently; the only
// ordering contract is extract -> transpose -> compute within one document.
//
// ctx cancellation stops dispatching new documents; documents already in
// flight complete. Cancelled documents report ctx.Err().
func (o *Orchestrator) Process(ctx context.Context, docs []Document, p Params) *BatchResult {
	runID := uuid.NewString()
	mem := &MemoryRecorder{}
	rec := o.recorder(mem)

	rec.Record(LogEntry{
		Kind:    EntryRunStart,
		RunID:   runID,
		Message: fmt.Sprintf("processing %d document(s), exposure age %g, assessment age %g", len(docs), p.AgeAtExposure, p.AgeAtAssessment),
	})

	// Assign IDs up front so outcomes and cache keys are stable.
	for i := range docs {
		if docs[i].ID == "" {
			docs[i].ID = uuid.NewString()
		}
	}

	outcomes := make([]Outcome, len(docs))
	sem := make(chan struct{}, o.workers)
	var wg sync.WaitGroup

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			outcomes[i] = Outcome{Document: doc, Err: err}
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, doc Document) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = o.processOne(doc, p, runID, rec)
		}(i, doc)
	}
	wg.Wait()

	var failed int
	for _, out := range outcomes {
		if out.Failed() {
			failed++
		}
	}
	rec.Record(LogEntry{
		Kind:    EntryRunEnd,
		RunID:   runID,
		Message: fmt.Sprintf("%d succeeded, %d failed", len(outcomes)-failed, failed),
	})

	return &BatchResult{RunID: runID, Outcomes: outcomes, Log: mem.Entries()}
}

// Reprocess recomputes a report from the cached dose table of a previously
// processed document, without re-parsing its text. The cache is scoped to
// this orchestrator; an unknown ID is an error.
func (o *Orchestrator) Reprocess(docID string, p Params) (*risk.Report, []LogEntry, error) {
	o.mu.Lock()
	table, ok := o.cache[docID]
	name := o.names[docID]
	o.mu.Unlock()
	if !ok {
		return nil, nil, fmt.Errorf("no cached dose table for document %q", docID)
	}

	mem := &MemoryRecorder{}
	rec := o.recorder(mem)
	report, err := o.compute(table, Document{ID: docID, Name: name}, p, "", rec)
	if err != nil {
		return nil, nil, err
	}
	return report, mem.Entries(), nil
}

// CachedTable returns the cached dose table for a document, if present.
func (o *Orchestrator) CachedTable(docID string) (*dose.Table, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	t, ok := o.cache[docID]
	return t, ok
}

func (o *Orchestrator) processOne(doc Document, p Params, runID string, rec Recorder) Outcome {
	out := Outcome{Document: doc}

	ext, err := extract.Extract(doc.Content)
	if err != nil {
		rec.Record(LogEntry{
			Kind:     EntryDocumentFail,
			RunID:    runID,
			Document: doc.Name,
			Message:  err.Error(),
		})
		out.Err = err
		return out
	}
	out.LinesSkipped = ext.LinesSkipped
	o.recordDiagnostics(rec, runID, doc.Name, ext.Diagnostics)

	declared := declaredOrgans(ext)
	tr, err := transpose.Build(ext.Observations, declared)
	if err != nil {
		rec.Record(LogEntry{
			Kind:     EntryDocumentFail,
			RunID:    runID,
			Document: doc.Name,
			Message:  err.Error(),
		})
		out.Err = err
		return out
	}
	o.recordDiagnostics(rec, runID, doc.Name, tr.Diagnostics)

	o.mu.Lock()
	o.cache[doc.ID] = tr.Table
	o.names[doc.ID] = doc.Name
	o.mu.Unlock()

	docParams := p
	o.mu.Lock()
	if ov, ok := o.overrides[doc.ID]; ok {
		docParams.AgeAtExposure = ov.AgeAtExposure
		docParams.AgeAtAssessment = ov.AgeAtAssessment
	}
	o.mu.Unlock()

	report, err := o.compute(tr.Table, doc, docParams, runID, rec)
	if err != nil {
		rec.Record(LogEntry{
			Kind:     EntryDocumentFail,
			RunID:    runID,
			Document: doc.Name,
			Message:  err.Error(),
		})
		out.Err = err
		return out
	}

	rec.Record(LogEntry{
		Kind:     EntryDocumentDone,
		RunID:    runID,
		Document: doc.Name,
		Message:  fmt.Sprintf("%d organ(s), %d line(s) skipped, total LAR %.4e", tr.Table.Len(), ext.LinesSkipped, report.Total()),
	})
	out.Report = report
	return out
}

func (o *Orchestrator) compute(table *dose.Table, doc Document, p Params, runID string, rec Recorder) (*risk.Report, error) {
	var opts []risk.Option
	if p.ForcedModel != "" && p.ForcedModel != dose.ModelNone {
		opts = append(opts, risk.WithForcedModel(p.ForcedModel))
	}
	calc := risk.New(o.set, opts...)

	report, diags, err := calc.Evaluate(table, p.AgeAtExposure, p.AgeAtAssessment, p.Sexes)
	if err != nil {
		return nil, err
	}
	o.recordDiagnostics(rec, runID, doc.Name, diags)

	for _, res := range report.Results {
		if res.Skipped {
			continue
		}
		rec.Record(LogEntry{
			Kind:     EntryModelSelected,
			RunID:    runID,
			Document: doc.Name,
			Organ:    res.Organ,
			Sex:      res.Sex,
			Model:    res.Model,
			Message:  fmt.Sprintf("dose %.4e Sv, ERR %.4e, LAR %.4e [%s]", res.DoseSv, res.ERR, res.LAR, res.Equation),
		})
	}
	for _, ferr := range report.Failures {
		rec.Record(LogEntry{
			Kind:     EntryOrganFailed,
			RunID:    runID,
			Document: doc.Name,
			Message:  ferr.Error(),
		})
	}
	return report, nil
}

func (o *Orchestrator) recordDiagnostics(rec Recorder, runID, docName string, diags []dose.Diagnostic) {
	for _, d := range diags {
		rec.Record(LogEntry{
			Kind:     EntryDiagnostic,
			RunID:    runID,
			Document: docName,
			Organ:    d.Organ,
			Sex:      d.Sex,
			Message:  d.String(),
		})
	}
}

// recorder fans entries out to the batch-local memory log plus any external
// sinks.
func (o *Orchestrator) recorder(mem *MemoryRecorder) Recorder {
	if len(o.sinks) == 0 {
		return mem
	}
	return multiRecorder(append([]Recorder{mem}, o.sinks...))
}

type multiRecorder []Recorder

func (m multiRecorder) Record(e LogEntry) {
	for _, r := range m {
		r.Record(e)
	}
}

// declaredOrgans lists every organ the document mentioned, including those
// whose cells were all invalid, so the transposer can report omissions.
func declaredOrgans(res *extract.Result) []dose.Organ {
	seen := make(map[dose.Organ]bool)
	var organs []dose.Organ
	add := func(organ dose.Organ) {
		if organ != "" && !seen[organ] {
			seen[organ] = true
			organs = append(organs, organ)
		}
	}
	for _, obs := range res.Observations {
		add(obs.Organ)
	}
	for _, d := range res.Diagnostics {
		if d.Kind == dose.DiagCellInvalid {
			add(d.Organ)
		}
	}
	return organs
}
