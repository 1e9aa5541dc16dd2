package core

import (
	"time"

	"github.com/google/uuid"
)

// Settlement is the archived snapshot of one accounting period.
// It is never modified after creation.
type Settlement struct {
	ID           string        `json:"id"`
	SettledDate  time.Time     `json:"settledDate"`
	TotalIncome  Money         `json:"totalIncome"`
	TotalExpense Money         `json:"totalExpense"`
	Remaining    Money         `json:"remaining"`
	Transactions []Transaction `json:"transactions"`
}

// Clone returns a deep copy of s.
func (s Settlement) Clone() Settlement {
	c := s
	c.Transactions = CloneAll(s.Transactions)
	return c
}

// Label is the export name of the settlement.
func (s Settlement) Label() string {
	return "Settlement_" + s.SettledDate.Format("20060102_150405")
}

// NewID returns a time-ordered, collision resistant identifier.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
