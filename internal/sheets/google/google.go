package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"ledger/internal/core"
	ports "ledger/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	loc           *time.Location
}

// Ensure interface conformance
var (
	_ ports.SettlementWriter = (*Client)(nil)
	_ ports.SettlementLister = (*Client)(nil)
)

// Config selects the spreadsheet. The sheet name gets the settlement year
// prefixed, e.g. "2026 Settlements".
type Config struct {
	SpreadsheetID string
	SheetName     string
	Location      *time.Location
}

// New creates a Sheets client authenticated with service account credentials
// taken from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Settlements"
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName, loc: loc}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// AppendSettlement appends one summary row unless the settlement ID is
// already present in column A.
func (c *Client) AppendSettlement(ctx context.Context, s core.Settlement) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	sheet := yearPrefixedName(c.sheetName, s.SettledDate.In(c.loc).Year())

	ids, err := c.readIDs(ctx, sheet)
	if err != nil {
		return "", err
	}
	if row := indexOf(ids, s.ID); row >= 0 {
		slog.InfoContext(ctx, "Settlement already in sheet",
			"settlement_id", s.ID,
			"sheet", sheet,
			"row", row+1)
		return fmt.Sprintf("%s!A%d", sheet, row+1), nil
	}

	vr := &gsheet.ValueRange{Values: [][]interface{}{settlementRow(s, c.loc)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, fmt.Sprintf("%s!A:G", sheet), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append settlement row: %w", err)
	}

	ref := sheet
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Settlement appended to sheet",
		"settlement_id", s.ID,
		"range", ref)
	return ref, nil
}

// ListSettlementIDs returns the IDs recorded in this year's sheet.
func (c *Client) ListSettlementIDs(ctx context.Context) ([]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	return c.readIDs(ctx, yearPrefixedName(c.sheetName, time.Now().In(c.loc).Year()))
}

func (c *Client) readIDs(ctx context.Context, sheet string) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, fmt.Sprintf("%s!A:A", sheet)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read settlement ids: %w", err)
	}
	return firstColumn(resp.Values), nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a
// four digit year.
func yearPrefixedName(base string, year int) string {
	b := strings.TrimSpace(base)
	if len(b) >= 5 && b[4] == ' ' {
		if _, err := fmt.Sscanf(b[:4], "%d", new(int)); err == nil {
			return b
		}
	}
	return fmt.Sprintf("%d %s", year, b)
}
