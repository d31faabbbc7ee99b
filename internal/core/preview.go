package core

import (
	"context"
	"errors"
	"strings"
	"time"
)

// PreviewSummary counts what an import would do to the ledger.
type PreviewSummary struct {
	TotalRows     int `json:"total_rows"`
	NewRows       int `json:"new_rows"`
	UpdateRows    int `json:"update_rows"`
	UnchangedRows int `json:"unchanged_rows"`
	RemovedRows   int `json:"removed_rows"`
	SkippedRows   int `json:"skipped_rows"`
}

// UpdateDiff is an invoice present on both sides whose fields differ.
type UpdateDiff struct {
	ID       string        `json:"id"`
	Current  InvoiceRecord `json:"current"`
	Incoming InvoiceRecord `json:"incoming"`
	Changed  []string      `json:"changed"`
}

// PreviewResponse describes an import without performing it.
type PreviewResponse struct {
	Summary          PreviewSummary  `json:"summary"`
	Columns          ColumnMap       `json:"columns"`
	NewSamples       []InvoiceRecord `json:"new_samples"`
	UpdateDiffs      []UpdateDiff    `json:"update_diffs"`
	RemovedSamples   []InvoiceRecord `json:"removed_samples"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
}

// Sample limits
const (
	maxNewSamples     = 10
	maxUpdateDiffs    = 10
	maxRemovedSamples = 10
)

// PreviewImport compares rows with the current ledger. It fails exactly
// where ImportRows would and never writes. A missing ledger table counts as
// empty since the import would create it.
func (s *Service) PreviewImport(ctx context.Context, source string, rows [][]string) (*PreviewResponse, error) {
	start := time.Now()

	if len(rows) == 0 {
		return nil, &EmptyInputError{Source: source}
	}

	incoming, cols, skipped, err := s.reconciler.BuildRecords(rows)
	if err != nil {
		return nil, err
	}

	current, err := s.ledger.Records(ctx)
	if err != nil && !errors.Is(err, ErrRelationNotFound) {
		return nil, err
	}

	resp := &PreviewResponse{
		Summary: PreviewSummary{
			TotalRows:   len(incoming),
			SkippedRows: skipped,
		},
		Columns:        cols,
		NewSamples:     []InvoiceRecord{},
		UpdateDiffs:    []UpdateDiff{},
		RemovedSamples: []InvoiceRecord{},
	}

	byID := make(map[string]InvoiceRecord, len(current))
	for _, rec := range current {
		byID[rec.ID] = rec
	}

	for _, rec := range incoming {
		cur, exists := byID[rec.ID]
		if !exists {
			resp.Summary.NewRows++
			if len(resp.NewSamples) < maxNewSamples {
				resp.NewSamples = append(resp.NewSamples, rec)
			}
			continue
		}
		delete(byID, rec.ID)

		changed := changedFields(cur, rec)
		if len(changed) == 0 {
			resp.Summary.UnchangedRows++
			continue
		}
		resp.Summary.UpdateRows++
		if len(resp.UpdateDiffs) < maxUpdateDiffs {
			resp.UpdateDiffs = append(resp.UpdateDiffs, UpdateDiff{
				ID:       rec.ID,
				Current:  cur,
				Incoming: rec,
				Changed:  changed,
			})
		}
	}

	// What is left in byID disappears with the replace. Walk current to keep
	// the samples in ledger order.
	for _, rec := range current {
		if _, gone := byID[rec.ID]; !gone {
			continue
		}
		resp.Summary.RemovedRows++
		if len(resp.RemovedSamples) < maxRemovedSamples {
			resp.RemovedSamples = append(resp.RemovedSamples, rec)
		}
	}

	resp.ProcessingTimeMs = time.Since(start).Milliseconds()
	return resp, nil
}

// changedFields names the export columns whose values differ.
func changedFields(cur, next InvoiceRecord) []string {
	var changed []string
	if cur.CustomerName != next.CustomerName {
		changed = append(changed, "name")
	}
	if strings.Join(cur.Descriptions, DescriptionSeparator) != strings.Join(next.Descriptions, DescriptionSeparator) {
		changed = append(changed, "description")
	}
	if cur.Amount != next.Amount {
		changed = append(changed, "amount")
	}
	if cur.Date != next.Date {
		changed = append(changed, "date")
	}
	return changed
}
