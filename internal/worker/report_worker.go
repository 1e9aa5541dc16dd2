package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/export"
	"ledger/internal/ledger"
	applog "ledger/internal/log"
	"ledger/internal/sheets"
	"ledger/internal/storage"
)

// ReportWorker turns period.settled events into a CSV report on disk and,
// when a sink is configured, a summary row in a spreadsheet.
type ReportWorker struct {
	kv         storage.KV
	sink       sheets.SettlementWriter
	reportsDir string
	loc        *time.Location
	logger     *applog.Logger
}

func NewReportWorker(kv storage.KV, sink sheets.SettlementWriter, reportsDir string, loc *time.Location, logger *applog.Logger) *ReportWorker {
	if logger == nil {
		logger = applog.Default(applog.ComponentWorker)
	}
	if loc == nil {
		loc = time.Local
	}
	return &ReportWorker{kv: kv, sink: sink, reportsDir: reportsDir, loc: loc, logger: logger}
}

// HandleEvent processes one ledger event. Only period.settled does any work;
// an error makes the consumer requeue the message.
func (w *ReportWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	if ev.Type != amqp.PeriodSettled {
		w.logger.DebugContext(ctx, "Ignoring ledger event", "type", ev.Type, "id", ev.ID)
		return nil
	}

	// The archive is re-read for every event; the server owns the writes.
	archive := ledger.NewSettlementArchive(w.kv, w.logger)
	if err := archive.Load(ctx); err != nil {
		return fmt.Errorf("load settlements: %w", err)
	}
	settlement, err := archive.Get(ev.ID)
	if errors.Is(err, ledger.ErrSettlementNotFound) {
		w.logger.WarnContext(ctx, "Settlement from event not found, dropping",
			applog.FieldSettlementID, ev.ID)
		return nil
	}
	if err != nil {
		return err
	}

	path, err := w.writeReport(settlement)
	switch {
	case errors.Is(err, export.ErrNothingToExport):
		w.logger.InfoContext(ctx, "Settlement has no transactions, no report written",
			applog.FieldSettlementID, settlement.ID)
	case err != nil:
		return fmt.Errorf("write report: %w", err)
	default:
		w.logger.InfoContext(ctx, "Settlement report written",
			applog.FieldSettlementID, settlement.ID,
			"path", path)
	}

	if w.sink != nil {
		ref, err := w.sink.AppendSettlement(ctx, settlement)
		if err != nil {
			return fmt.Errorf("append settlement summary: %w", err)
		}
		w.logger.InfoContext(ctx, "Settlement summary recorded",
			applog.FieldSettlementID, settlement.ID,
			"ref", ref)
	}
	return nil
}

// Reconcile records every archived settlement the sink does not know yet.
// It covers events published while the worker was down. Without a sink that
// can list its rows it does nothing.
func (w *ReportWorker) Reconcile(ctx context.Context) (int, error) {
	lister, ok := w.sink.(sheets.SettlementLister)
	if !ok {
		return 0, nil
	}

	archive := ledger.NewSettlementArchive(w.kv, w.logger)
	if err := archive.Load(ctx); err != nil {
		return 0, fmt.Errorf("load settlements: %w", err)
	}
	ids, err := lister.ListSettlementIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recorded settlements: %w", err)
	}
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}

	all := archive.All()
	added := 0
	// Oldest first so rows keep settlement order.
	for i := len(all) - 1; i >= 0; i-- {
		s := all[i]
		if _, ok := known[s.ID]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return added, err
		}
		if _, err := w.sink.AppendSettlement(ctx, s); err != nil {
			return added, fmt.Errorf("append settlement %s: %w", s.ID, err)
		}
		added++
	}
	if added > 0 {
		w.logger.InfoContext(ctx, "Reconciled missing settlement summaries", "count", added)
	}
	return added, nil
}

// writeReport stores the CSV under reportsDir, replacing an earlier copy of
// the same settlement.
func (w *ReportWorker) writeReport(s core.Settlement) (string, error) {
	data, err := export.CSV(s.Transactions, w.loc)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.reportsDir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	path := filepath.Join(w.reportsDir, export.Filename(s.Label(), s.SettledDate.In(w.loc)))
	tmp, err := os.CreateTemp(w.reportsDir, ".report-*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}
