// This file implements utilities for parsing and validating HTTP request data:
// the entry form, the keypad buffer and the range query.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ledger/internal/calc"
	"ledger/internal/core"
)

// maxBodyBytes bounds form and JSON bodies.
const maxBodyBytes = 64 << 10

var errMissingRangeBound = errors.New("start and end must be given together")

// RangeParams is a custom date range requested through the query string.
type RangeParams struct {
	Start core.Date
	End   core.Date
	Label string
	// Set is false when neither start nor end was given.
	Set bool
	// Reset asks for the default week.
	Reset bool
}

// ParseRangeParams reads start, end (YYYY-MM-DD), label and reset.
func ParseRangeParams(query url.Values) (RangeParams, error) {
	params := RangeParams{
		Label: sanitizeInput(query.Get("label")),
		Reset: query.Get("reset") != "",
	}
	startStr := strings.TrimSpace(query.Get("start"))
	endStr := strings.TrimSpace(query.Get("end"))
	if startStr == "" && endStr == "" {
		return params, nil
	}
	if startStr == "" || endStr == "" {
		return params, errMissingRangeBound
	}

	var err error
	if params.Start, err = core.ParseDate(startStr); err != nil {
		return params, err
	}
	if params.End, err = core.ParseDate(endStr); err != nil {
		return params, err
	}
	if params.Start.After(params.End.Time) {
		return params, core.ErrInvalidPeriod
	}
	params.Set = true
	return params, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once, up to maxBodyBytes.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseTransactionInput maps the entry form onto core.TransactionInput.
// The amount field holds the keypad expression and is evaluated here; the
// occurrence date keeps the wall clock of now so same-day entries stay in
// entry order.
func ParseTransactionInput(p *RequestBodyParser, now time.Time, loc *time.Location) (core.TransactionInput, error) {
	in := core.TransactionInput{
		Type:     core.TransactionType(p.Get("type")),
		Category: core.Category(p.Get("category")),
		Note:     p.Get("note"),
		Amount:   core.MoneyFromDecimal(calc.Evaluate(p.Get("amount"))),
	}
	if in.Type == "" {
		in.Type = core.Expense
	}

	if v := p.Get("date"); v != "" {
		day, err := core.ParseDate(v)
		if err != nil {
			return core.TransactionInput{}, err
		}
		in.Date = timeOnDay(day, now, loc)
	}

	if in.Type == core.Income {
		var err error
		if v := p.Get("periodStart"); v != "" {
			if in.PeriodStart, err = core.ParseDate(v); err != nil {
				return core.TransactionInput{}, err
			}
		}
		if v := p.Get("periodEnd"); v != "" {
			if in.PeriodEnd, err = core.ParseDate(v); err != nil {
				return core.TransactionInput{}, err
			}
		}
	}
	return in, nil
}

// ApplyKeypad replays one key press onto the buffer and returns the pad.
// Besides the keypad alphabet it understands "del", "clear" and "=".
func ApplyKeypad(buffer, key string) *calc.Keypad {
	pad := calc.NewKeypad(buffer)
	switch key {
	case "del":
		pad.Delete()
	case "clear":
		pad.Clear()
	case "=":
		pad.Equal()
	default:
		pad.Press(key)
	}
	return pad
}
