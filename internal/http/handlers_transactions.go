package http

import (
	"bytes"
	"net/http"
	"strings"

	applog "ledger/internal/log"
)

// handleCreateTransaction records an entry from the form and answers with the
// refreshed ledger panel.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context())

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		logger.WarnContext(r.Context(), "Parse form error", applog.FieldError, err)
		BadRequestError("請求格式無效").Write(w)
		return
	}

	in, err := ParseTransactionInput(p, s.now(), s.ledger.Location())
	if err != nil {
		s.writeValidationError(w, r, err)
		return
	}

	tx, err := s.ledger.AddTransaction(r.Context(), in)
	if err != nil {
		if _, ok := validationMessage(err); ok {
			s.writeValidationError(w, r, err)
			return
		}
		logger.ErrorContext(r.Context(), "Transaction add failed",
			applog.FieldOperation, applog.OpCreate,
			applog.FieldError, err)
		InternalServerError("儲存失敗").TriggerErrorNotification("儲存失敗").Write(w)
		return
	}

	s.writeLedgerPanel(w, r, NewHTMXResponse().
		TriggerTransactionCreated(tx.ID).
		TriggerFormReset().
		TriggerSuccessNotification("已記錄 "+formatCurrency(tx.Amount)))
}

func (s *Server) writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	msg, ok := validationMessage(err)
	if !ok {
		msg = "資料無效"
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction rejected",
		applog.FieldOperation, applog.OpValidate,
		applog.FieldError, err)
	UnprocessableEntityError(msg).TriggerErrorNotification(msg).Write(w)
}

// handleDeleteTransaction removes one active entry. Unknown IDs answer 404
// and change nothing.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	removed, err := s.ledger.DeleteTransaction(r.Context(), id)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Transaction delete failed",
			applog.FieldOperation, applog.OpDelete,
			applog.FieldTransactionID, id,
			applog.FieldError, err)
		InternalServerError("刪除失敗").TriggerErrorNotification("刪除失敗").Write(w)
		return
	}
	if !removed {
		NotFoundError("找不到這筆紀錄").TriggerWarningNotification("找不到這筆紀錄").Write(w)
		return
	}

	s.writeLedgerPanel(w, r, NewHTMXResponse().
		TriggerTransactionDeleted(id).
		TriggerSuccessNotification("已刪除"))
}

// handleKeypad applies one key to the amount buffer and re-renders the
// keypad display.
func (s *Server) handleKeypad(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("請求格式無效").Write(w)
		return
	}

	pad := ApplyKeypad(p.Get("amount"), p.Get("key"))
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "keypad_display", pad.Display()); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			"template", "keypad_display",
			applog.FieldError, err)
		InternalServerError("畫面產生失敗").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(body.String()).Write(w)
}
