package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income     TransactionType = "income"
	Expense    TransactionType = "expense"
	Memo       TransactionType = "memo"
	CreditCard TransactionType = "credit_card"
)

type (
	TransactionType string

	// Date is a calendar day without a time component, stored as YYYY-MM-DD.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID          string          `json:"id"`
		Amount      Money           `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    Category        `json:"category"`
		Date        time.Time       `json:"date"`
		Note        string          `json:"note"`
		PeriodStart *Date           `json:"periodStart,omitempty"`
		PeriodEnd   *Date           `json:"periodEnd,omitempty"`
	}

	// TransactionInput carries the raw values of the entry form.
	TransactionInput struct {
		Amount      Money
		Type        TransactionType
		Category    Category
		Note        string
		Date        time.Time // occurrence date, ignored for income
		PeriodStart Date
		PeriodEnd   Date
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidPeriod   = errors.New("period start must not be after period end")
	ErrInvalidDate     = errors.New("invalid date")
)

const dateLayout = "2006-01-02"

// Types returns every transaction type in entry-form order.
func Types() []TransactionType {
	return []TransactionType{Expense, Income, CreditCard, Memo}
}

func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense, Memo, CreditCard:
		return true
	default:
		return false
	}
}

// AffectsBalance reports whether amounts of this type enter income/expense sums.
// Memo and credit card entries are informational only.
func (t TransactionType) AffectsBalance() bool {
	return t == Income || t == Expense
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Midnight returns the start of the day in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// Older entries may carry a full timestamp.
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NormalizeCategory applies the entry-form coupling between type and category:
// income always books to Deposit, and Deposit is reset to Food for anything else.
func NormalizeCategory(t TransactionType, c Category) Category {
	if t == Income {
		return Deposit
	}
	if c == Deposit || c == "" {
		return Food
	}
	return c
}

// NewTransaction builds a validated transaction from form input.
// The ID is left empty; the store assigns it on add.
func NewTransaction(in TransactionInput, now time.Time) (Transaction, error) {
	if !in.Type.IsValid() {
		return Transaction{}, ErrInvalidType
	}
	category := NormalizeCategory(in.Type, in.Category)
	if !category.IsValid() {
		return Transaction{}, ErrInvalidCategory
	}

	tx := Transaction{
		Amount:   in.Amount,
		Type:     in.Type,
		Category: category,
		Note:     strings.TrimSpace(in.Note),
		Date:     in.Date,
	}

	if in.Type == Income {
		tx.Date = now
		if !in.PeriodStart.IsZero() && !in.PeriodEnd.IsZero() {
			start, end := in.PeriodStart, in.PeriodEnd
			tx.PeriodStart, tx.PeriodEnd = &start, &end
		}
	} else if tx.Date.IsZero() {
		tx.Date = now
	}

	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if !t.Category.IsValid() {
		return ErrInvalidCategory
	}
	if (t.Type == Income) != (t.Category == Deposit) {
		return ErrInvalidCategory
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if t.PeriodStart != nil && t.PeriodEnd != nil && t.PeriodStart.After(t.PeriodEnd.Time) {
		return ErrInvalidPeriod
	}
	return nil
}

// Clone returns a copy that shares no pointers with t.
func (t Transaction) Clone() Transaction {
	c := t
	if t.PeriodStart != nil {
		v := *t.PeriodStart
		c.PeriodStart = &v
	}
	if t.PeriodEnd != nil {
		v := *t.PeriodEnd
		c.PeriodEnd = &v
	}
	return c
}

// CloneAll deep-copies a transaction slice. A nil input yields an empty slice.
func CloneAll(txs []Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	for i, t := range txs {
		out[i] = t.Clone()
	}
	return out
}
