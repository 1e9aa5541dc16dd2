package export

import (
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"ledger/internal/core"
)

var now = time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC)

func TestCSV(t *testing.T) {
	start, end := core.NewDate(2026, 10, 15), core.NewDate(2026, 10, 21)
	txs := []core.Transaction{
		{ID: "1", Type: core.Expense, Category: core.Food, Amount: core.Money{Cents: 12050}, Date: now, Note: `say "hi", ok`},
		{ID: "2", Type: core.Income, Category: core.Deposit, Amount: core.Money{Cents: 200000}, Date: now, PeriodStart: &start, PeriodEnd: &end},
		{ID: "3", Type: core.Memo, Category: "Unknown", Amount: core.Money{Cents: 5}, Date: now},
	}

	out, err := CSV(txs, time.UTC)
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	text := string(out)
	if !strings.HasPrefix(text, "\uFEFF") {
		t.Fatalf("missing byte order mark")
	}

	lines := strings.Split(strings.TrimPrefix(text, "\uFEFF"), "\n")
	want := []string{
		"日期,類型,類別,金額,備註,起,迄",
		`2026/10/15,支出,飲食,120.5,"say ""hi"", ok",,`,
		`2026/10/15,存入,存款,2000,"",2026-10-15,2026-10-21`,
		`2026/10/15,隨手記,其他,0.05,"",,`,
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), text)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d:\n got %s\nwant %s", i, lines[i], want[i])
		}
	}

	// The output stays parseable by a standard CSV reader.
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(text, "\uFEFF"))).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if records[1][4] != `say "hi", ok` {
		t.Fatalf("note = %q", records[1][4])
	}
}

func TestCSVUsesLocation(t *testing.T) {
	taipei := time.FixedZone("CST", 8*3600)
	txs := []core.Transaction{{Type: core.Expense, Category: core.Food, Amount: core.Money{Cents: 100}, Date: time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC)}}
	out, err := CSV(txs, taipei)
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	if !strings.Contains(string(out), "\n2026/10/15,") {
		t.Fatalf("expected local date, got %q", out)
	}
}

func TestCSVEmpty(t *testing.T) {
	out, err := CSV(nil, time.UTC)
	if !errors.Is(err, ErrNothingToExport) || out != nil {
		t.Fatalf("expected ErrNothingToExport, got %q %v", out, err)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Ledger", "Ledger_2026-10-15.csv"},
		{"Settlement_20261012_090000", "Settlement_20261012_090000_2026-10-15.csv"},
		{"", "Ledger_2026-10-15.csv"},
	}
	for _, tt := range tests {
		if got := Filename(tt.label, now); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}
