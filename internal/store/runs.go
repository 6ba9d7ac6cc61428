package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/radsafe/doserisk/internal/dose"
	"github.com/radsafe/doserisk/internal/pipeline"
)

// RunSummary is one persisted run, as listed by ListRuns.
type RunSummary struct {
	ID              string
	CreatedAt       time.Time
	AgeAtExposure   float64
	AgeAtAssessment float64
	Documents       int
	Failed          int
}

// SaveBatch persists a batch result: the run row, every document outcome,
// per-cell results, and the cached dose tables of the documents that parsed.
// One transaction; a batch is stored completely or not at all.
func (s *Store) SaveBatch(ctx context.Context, batch *pipeline.BatchResult, p pipeline.Params, tables map[string]*dose.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	forced := ""
	if p.ForcedModel != "" && p.ForcedModel != dose.ModelNone {
		forced = string(p.ForcedModel)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, age_at_exposure, age_at_assessment, forced_model)
		 VALUES (?, ?, ?, ?, ?)`,
		batch.RunID, time.Now().UTC().Format(time.RFC3339), p.AgeAtExposure, p.AgeAtAssessment, forced)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, out := range batch.Outcomes {
		failReason := ""
		failed := 0
		if out.Failed() {
			failed = 1
			failReason = out.Err.Error()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO documents (id, run_id, name, failed, fail_reason) VALUES (?, ?, ?, ?, ?)`,
			out.Document.ID, batch.RunID, out.Document.Name, failed, failReason)
		if err != nil {
			return fmt.Errorf("insert document %s: %w", out.Document.Name, err)
		}

		if out.Report != nil {
			for _, res := range out.Report.Results {
				clamped, skipped := 0, 0
				if res.Clamped {
					clamped = 1
				}
				if res.Skipped {
					skipped = 1
				}
				_, err = tx.ExecContext(ctx,
					`INSERT INTO results (document_id, organ, sex, model, dose_sv, err, lar, clamped, skipped, skip_reason)
					 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
					out.Document.ID, string(res.Organ), string(res.Sex), string(res.Model),
					res.DoseSv, res.ERR, res.LAR, clamped, skipped, res.SkipReason)
				if err != nil {
					return fmt.Errorf("insert result %s/%s: %w", res.Organ, res.Sex, err)
				}
			}
		}

		if table, ok := tables[out.Document.ID]; ok && table != nil {
			if err := insertTable(ctx, tx, out.Document.ID, table); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func insertTable(ctx context.Context, tx *sql.Tx, docID string, table *dose.Table) error {
	for _, organ := range table.Organs() {
		entries, _ := table.Series(organ)
		for _, e := range entries {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO dose_entries (document_id, organ, time_hours, dose_sv) VALUES (?, ?, ?, ?)`,
				docID, string(organ), e.TimeHours, e.DoseSv)
			if err != nil {
				return fmt.Errorf("insert dose entry %s/%s: %w", docID, organ, err)
			}
		}
	}
	return nil
}

// LoadTable rebuilds the cached dose table for a document. ok is false when
// the document has no cached entries.
func (s *Store) LoadTable(ctx context.Context, docID string) (*dose.Table, bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT organ, time_hours, dose_sv FROM dose_entries
		 WHERE document_id = ? ORDER BY organ, time_hours`, docID)
	if err != nil {
		return nil, false, fmt.Errorf("query dose entries: %w", err)
	}
	defer rows.Close()

	series := make(map[dose.Organ][]dose.Entry)
	for rows.Next() {
		var organ string
		var e dose.Entry
		if err := rows.Scan(&organ, &e.TimeHours, &e.DoseSv); err != nil {
			return nil, false, fmt.Errorf("scan dose entry: %w", err)
		}
		series[dose.Organ(organ)] = append(series[dose.Organ(organ)], e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(series) == 0 {
		return nil, false, nil
	}
	return dose.NewTable(series), true, nil
}

// FindDocument resolves a document ID by name within the most recent run
// that mentions it. Returns ok = false when no run processed that name.
func (s *Store) FindDocument(ctx context.Context, name string) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT d.id FROM documents d
		 JOIN runs r ON r.id = d.run_id
		 WHERE d.name = ? ORDER BY r.created_at DESC LIMIT 1`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find document: %w", err)
	}
	return id, true, nil
}

// ListRuns returns persisted runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.created_at, r.age_at_exposure, r.age_at_assessment,
		        COUNT(d.id), COALESCE(SUM(d.failed), 0)
		 FROM runs r LEFT JOIN documents d ON d.run_id = r.id
		 GROUP BY r.id ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var created string
		if err := rows.Scan(&rs.ID, &created, &rs.AgeAtExposure, &rs.AgeAtAssessment, &rs.Documents, &rs.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, perr := time.Parse(time.RFC3339, created); perr == nil {
			rs.CreatedAt = t
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}
