package sheets

import (
	"context"

	"afftrack/internal/core"
)

// Ports for outbound adapters.
type (
	// ConversionWriter exports a recorded conversion to the shared
	// spreadsheet and returns a reference to the written row.
	ConversionWriter interface {
		Append(ctx context.Context, c core.Conversion) (rowRef string, err error)
	}

	// RowReader returns the raw rows of the conversions sheet. Used by the
	// importer to pull historical data recorded outside this system.
	RowReader interface {
		ReadRows(ctx context.Context) ([][]string, error)
	}
)
