// Command afftrack-import backfills conversions from a CSV file or from the
// configured Google spreadsheet. Rows that cannot be matched to an affiliate
// link are printed for manual review rather than imported.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"afftrack/internal/cli"
	"afftrack/internal/config"
	"afftrack/internal/importer"
	"afftrack/internal/log"
	"afftrack/internal/metrics"
	"afftrack/internal/services"
	"afftrack/internal/sheets/google"
)

func main() {
	cli.LoadEnvFile()

	csvPath := flag.String("csv", "", "path to a CSV file to import (default: read from Google Sheets)")
	flag.Parse()

	logger := cli.SetupLogger(log.ComponentImporter)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	rows, err := loadRows(ctx, cfg, *csvPath)
	if err != nil {
		logger.Error("Failed to load rows", log.FieldError, err)
		os.Exit(1)
	}
	if len(rows) == 0 {
		fmt.Println("nothing to import")
		return
	}

	reconciler := services.NewReconcileService(repo, cfg.MatchThreshold)
	// No publisher: imported conversions reach the sheet via the worker's
	// periodic pending check.
	recorder := services.NewConversionService(repo, nil)

	res, err := importer.New(reconciler, recorder, metrics.New()).ImportRows(ctx, rows)
	if err != nil {
		logger.Error("Import failed", log.FieldError, err)
		os.Exit(1)
	}

	fmt.Printf("imported %d conversions, %d rows need manual review\n",
		res.Imported, len(res.ManualReview))
	for _, issue := range res.ManualReview {
		fmt.Printf("  row %d: %s (%s)\n",
			issue.RowNumber, issue.Reason, strings.Join(issue.Row, ", "))
	}
	if len(res.ManualReview) > 0 {
		os.Exit(2)
	}
}

func loadRows(ctx context.Context, cfg *config.Config, csvPath string) ([][]string, error) {
	if csvPath != "" {
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", csvPath, err)
		}
		defer f.Close()

		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		rows, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", csvPath, err)
		}
		return rows, nil
	}

	if cfg.GoogleSpreadsheetID == "" {
		return nil, fmt.Errorf("no input: pass -csv or set GOOGLE_SPREADSHEET_ID")
	}
	client, err := google.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("google sheets client: %w", err)
	}
	return client.ReadRows(ctx)
}
