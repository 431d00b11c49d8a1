package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/easy-csp/csp/internal/budget"
	"github.com/easy-csp/csp/internal/common"
	"github.com/easy-csp/csp/internal/model"
	"github.com/easy-csp/csp/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer exports aggregation results to a Google spreadsheet, one tab per
// month.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets exporter.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: srv,
		logger:  logger,
	}, nil
}

// Export writes a month's aggregation result to a tab named for the month
// (e.g. "2026-08"), replacing any previous contents of that tab.
func (w *Writer) Export(ctx context.Context, result budget.Result, month time.Time) error {
	tab := month.Format("2006-01")

	w.logger.Info("exporting plan report", "month", tab)

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	if err := w.ensureTab(ctx, spreadsheetID, tab); err != nil {
		return err
	}

	values := prepareReportData(result)

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	err = common.WithRetry(ctx, func() error {
		clearReq := w.service.Spreadsheets.Values.Clear(spreadsheetID, tab, &sheets.ClearValuesRequest{})
		if _, err := clearReq.Context(ctx).Do(); err != nil {
			return fmt.Errorf("failed to clear tab %s: %w", tab, err)
		}

		vr := &sheets.ValueRange{Values: values}
		updateReq := w.service.Spreadsheets.Values.Update(spreadsheetID, tab+"!A1", vr).
			ValueInputOption("USER_ENTERED")
		if _, err := updateReq.Context(ctx).Do(); err != nil {
			return fmt.Errorf("failed to write tab %s: %w", tab, err)
		}
		return nil
	}, retryOpts)
	if err != nil {
		return err
	}

	w.logger.Info("plan report exported",
		"spreadsheet_id", spreadsheetID,
		"tab", tab,
		"rows_written", len(values))

	return nil
}

// prepareReportData flattens an aggregation result into sheet rows.
func prepareReportData(result budget.Result) [][]any {
	values := [][]any{
		{"Bucket", "Category", "Budgeted", "Spent", "Remaining", "Used"},
	}

	for _, b := range model.Buckets {
		totals := result.Bucket(b)
		if totals.Budgeted.IsZero() && totals.Spent.IsZero() {
			continue
		}

		values = append(values, []any{
			b.DisplayName(), "",
			totals.Budgeted.StringFixed(2),
			totals.Spent.StringFixed(2),
			totals.Remaining.StringFixed(2),
			fmt.Sprintf("%.1f%%", totals.Percentage),
		})
		for _, c := range totals.Categories {
			values = append(values, []any{
				"", string(c.Category),
				c.Budgeted.StringFixed(2),
				c.Spent.StringFixed(2),
				c.Remaining().StringFixed(2),
				"",
			})
		}
	}

	values = append(values, []any{
		"Total", "",
		result.TotalBudgeted.StringFixed(2),
		result.TotalSpent.StringFixed(2),
		result.TotalBudgeted.Sub(result.TotalSpent).StringFixed(2),
		"",
	})

	return values
}

func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		if _, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title: w.config.SpreadsheetName,
		},
	}
	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created spreadsheet", "spreadsheet_id", created.SpreadsheetId)
	return created.SpreadsheetId, nil
}

// ensureTab adds the month tab if the spreadsheet doesn't have it yet.
func (w *Writer) ensureTab(ctx context.Context, spreadsheetID, tab string) error {
	spreadsheet, err := w.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to inspect spreadsheet: %w", err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == tab {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: tab},
				},
			},
		},
	}
	if _, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to add tab %s: %w", tab, err)
	}

	return nil
}

func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}
