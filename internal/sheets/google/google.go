// Package google mirrors the ledger into a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expenses/internal/core"
	"expenses/internal/log"
	ports "expenses/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

var _ ports.Mirror = (*Client)(nil)

// Options selects the spreadsheet and the service account used to reach it.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
	Logger          *log.Logger
}

// New creates a Sheets client authenticated with a service account.
// Inline JSON credentials win over the file.
func New(ctx context.Context, opts Options) (*Client, error) {
	creds, err := credentials(opts)
	if err != nil {
		return nil, err
	}
	return NewWithClientOptions(ctx, opts,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

// NewWithClientOptions creates a client from explicit API client options.
func NewWithClientOptions(ctx context.Context, opts Options, clientOpts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(opts.SheetName) == "" {
		return nil, errors.New("missing sheet name")
	}
	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     opts.SheetName,
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

func credentials(opts Options) ([]byte, error) {
	if j := strings.TrimSpace(opts.CredentialsJSON); j != "" {
		return []byte(j), nil
	}
	if opts.CredentialsFile == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
	b, err := os.ReadFile(opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

func (c *Client) columns() string {
	return fmt.Sprintf("%s!A:D", c.sheetName)
}

func (c *Client) Append(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	vr := &gsheet.ValueRange{Values: [][]any{formatRow(e)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.columns(), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.InfoContext(ctx, "Row appended",
		log.FieldDate, e.Date.String(),
		log.FieldAmountCents, e.Amount.Cents,
		log.FieldCategory, string(e.Category),
		"range", ref)
	return nil
}

func (c *Client) DeleteMatching(ctx context.Context, e core.Expense) (int, error) {
	return c.deleteWhere(ctx, e.Matches)
}

func (c *Client) DeleteDate(ctx context.Context, d core.Date) (int, error) {
	return c.deleteWhere(ctx, func(e core.Expense) bool { return e.Date.Equal(d.Time) })
}

func (c *Client) deleteWhere(ctx context.Context, match func(core.Expense) bool) (int, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.columns()).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", c.columns(), err)
	}
	rows := matchingRows(resp.Values, match)
	if len(rows) == 0 {
		return 0, nil
	}

	sheetID, err := c.sheetID(ctx)
	if err != nil {
		return 0, err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: deleteRequests(sheetID, rows)}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("delete rows from %s: %w", c.sheetName, err)
	}

	c.logger.InfoContext(ctx, "Rows deleted", "sheet", c.sheetName, "count", len(rows))
	return len(rows), nil
}

func (c *Client) sheetID(ctx context.Context) (int64, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == c.sheetName {
			return s.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", c.sheetName)
}

// EnsureHeader writes ports.Header into the first row when the sheet is
// empty. It reports whether the header was written.
func (c *Client) EnsureHeader(ctx context.Context) (bool, error) {
	first := fmt.Sprintf("%s!A1:D1", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, first).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("read %s: %w", first, err)
	}
	if len(resp.Values) > 0 {
		return false, nil
	}

	header := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		header[i] = h
	}
	vr := &gsheet.ValueRange{Values: [][]any{header}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, first, vr).
		ValueInputOption("RAW").
		Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("write header to %s: %w", c.sheetName, err)
	}
	c.logger.InfoContext(ctx, "Header written", "sheet", c.sheetName)
	return true, nil
}
