package http

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"ledger/internal/export"
	applog "ledger/internal/log"
	"ledger/internal/services"
)

// handleSettle archives the active period. With nothing to settle it answers
// with a notice and leaves the ledger untouched.
func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	settlement, ok, err := s.ledger.SettleActive(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Settlement failed",
			applog.FieldOperation, applog.OpSettle,
			applog.FieldError, err)
		InternalServerError("結算失敗").TriggerErrorNotification("結算失敗").Write(w)
		return
	}
	if !ok {
		s.writeLedgerPanel(w, r, NewHTMXResponse().
			TriggerWarningNotification("目前沒有可結算的資料"))
		return
	}

	s.writeLedgerPanel(w, r, NewHTMXResponse().
		TriggerPeriodSettled(settlement.ID).
		TriggerSuccessNotification("已結算，結餘 "+formatCurrency(settlement.Remaining)))
}

// handleExport downloads the transactions of the selected range.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !s.applyRange(w, r) {
		return
	}
	exp, err := s.ledger.ExportActive()
	s.writeExport(w, r, exp, err)
}

// handleSettlementExport downloads one archived settlement.
func (s *Server) handleSettlementExport(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	exp, err := s.ledger.ExportSettlement(id)
	if services.IsNotFound(err) {
		NotFoundError("找不到結算紀錄").TriggerWarningNotification("找不到結算紀錄").Write(w)
		return
	}
	s.writeExport(w, r, exp, err)
}

func (s *Server) writeExport(w http.ResponseWriter, r *http.Request, exp services.Export, err error) {
	switch {
	case errors.Is(err, export.ErrNothingToExport):
		// No file; the page stays where it is.
		NewHTMXResponse().
			Status(http.StatusNoContent).
			TriggerWarningNotification("沒有可匯出的資料").
			Write(w)
		return
	case err != nil:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Export failed",
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err)
		InternalServerError("匯出失敗").Write(w)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Export served",
		applog.FieldOperation, applog.OpExport,
		"filename", exp.Filename,
		"bytes", len(exp.Data))
	NewHTMXResponse().
		Header("Content-Type", "text/csv; charset=utf-8").
		Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": exp.Filename})).
		Header("Cache-Control", "no-store").
		Body(exp.Data).
		Write(w)
}
