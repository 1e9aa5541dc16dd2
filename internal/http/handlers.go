package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"ledger/internal/core"
	applog "ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/stats"
)

type typeOption struct {
	Value core.TransactionType
	Label string
}

// formDefaults seeds the entry form: today for the occurrence date and a
// seven day window for a deposit.
type formDefaults struct {
	Today            string
	PeriodStart      string
	PeriodEnd        string
	Types            []typeOption
	Categories       []core.CategoryInfo
	IncomeCategories []core.CategoryInfo
}

// pageData is shared by every full page; each page fills its own section.
type pageData struct {
	Page       string
	Range      core.DateRange
	Stats      stats.Stats
	Dashboard  services.Dashboard
	Charts     services.Charts
	Settlement []core.Settlement
	Trend      []trendBar
	Form       formDefaults
	Keypad     string
}

// trendBar is one day of the expense trend, scaled to the busiest day.
type trendBar struct {
	Day     core.Date
	Expense core.Money
	Width   int
}

func trendBars(days []stats.DayTotal) []trendBar {
	var max int64
	for _, d := range days {
		if d.Expense.Cents > max {
			max = d.Expense.Cents
		}
	}
	out := make([]trendBar, len(days))
	for i, d := range days {
		out[i] = trendBar{Day: d.Day, Expense: d.Expense}
		if max > 0 {
			out[i].Width = barWidth(float64(d.Expense.Cents) * 100 / float64(max))
		}
	}
	return out
}

func (s *Server) formDefaults() formDefaults {
	today := core.DateOf(s.now().In(s.ledger.Location()))
	types := make([]typeOption, 0, 4)
	for _, t := range core.Types() {
		types = append(types, typeOption{Value: t, Label: core.TypeLabel(t)})
	}
	return formDefaults{
		Today:            today.String(),
		PeriodStart:      today.String(),
		PeriodEnd:        core.Date{Time: today.AddDate(0, 0, 6)}.String(),
		Types:            types,
		Categories:       core.EntryCategories(core.Expense),
		IncomeCategories: core.EntryCategories(core.Income),
	}
}

// applyRange updates the selected range from the query string.
// It returns false after writing an error response.
func (s *Server) applyRange(w http.ResponseWriter, r *http.Request) bool {
	params, err := ParseRangeParams(r.URL.Query())
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Invalid range",
			applog.FieldQuery, r.URL.RawQuery,
			applog.FieldError, err)
		BadRequestError("日期範圍無效").TriggerErrorNotification("日期範圍無效").Write(w)
		return false
	}
	switch {
	case params.Reset:
		s.ledger.ResetRange()
	case params.Set:
		if _, err := s.ledger.SetRange(params.Start, params.End, params.Label); err != nil {
			BadRequestError("日期範圍無效").Write(w)
			return false
		}
	}
	return true
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldOperation, applog.OpRender,
			"template", name,
			applog.FieldError, err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = body.WriteTo(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleDashboard renders the main page: stats, entry form and day groups.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !s.applyRange(w, r) {
		return
	}
	d := s.ledger.Dashboard()
	s.render(w, r, http.StatusOK, "dashboard_page", pageData{
		Page:      "home",
		Range:     d.Range,
		Stats:     d.Stats,
		Dashboard: d,
		Form:      s.formDefaults(),
		Keypad:    "0",
	})
}

// handleLedgerPanel re-renders the stats and list after a change.
func (s *Server) handleLedgerPanel(w http.ResponseWriter, r *http.Request) {
	s.writeLedgerPanel(w, r, NewHTMXResponse())
}

// writeLedgerPanel renders the ledger panel as the body of b.
func (s *Server) writeLedgerPanel(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder) {
	d := s.ledger.Dashboard()
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "ledger_panel", pageData{Range: d.Range, Stats: d.Stats, Dashboard: d}); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldOperation, applog.OpRender,
			"template", "ledger_panel",
			applog.FieldError, err)
		InternalServerError("畫面產生失敗").Write(w)
		return
	}
	b.BodyHTML(body.String()).Write(w)
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	if !s.applyRange(w, r) {
		return
	}
	c := s.ledger.Charts()
	s.render(w, r, http.StatusOK, "charts_page", pageData{
		Page:   "charts",
		Range:  c.Range,
		Stats:  c.Stats,
		Charts: c,
		Trend:  trendBars(c.Trend),
	})
}

func (s *Server) handleSettlements(w http.ResponseWriter, r *http.Request) {
	if !s.applyRange(w, r) {
		return
	}
	d := s.ledger.Dashboard()
	s.render(w, r, http.StatusOK, "settlements_page", pageData{
		Page:       "settlements",
		Range:      d.Range,
		Stats:      d.Stats,
		Dashboard:  d,
		Settlement: s.ledger.Settlements(),
	})
}

// validationMessage maps entry errors to the notice shown to the user.
func validationMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "請輸入大於 0 的金額", true
	case errors.Is(err, core.ErrInvalidType):
		return "類型無效", true
	case errors.Is(err, core.ErrInvalidCategory):
		return "類別無效", true
	case errors.Is(err, core.ErrInvalidPeriod):
		return "開始日期不可晚於結束日期", true
	case errors.Is(err, core.ErrInvalidDate):
		return "日期無效", true
	default:
		return "", false
	}
}
