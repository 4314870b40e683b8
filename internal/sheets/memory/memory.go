// Package memory provides an in-process sheets adapter for tests and local
// runs without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"afftrack/internal/core"
	ports "afftrack/internal/sheets"
)

type Adapter struct {
	mu          sync.Mutex
	conversions []core.Conversion
	rows        [][]string
}

var (
	_ ports.ConversionWriter = (*Adapter)(nil)
	_ ports.RowReader        = (*Adapter)(nil)
)

func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Append(_ context.Context, c core.Conversion) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.conversions = append(a.conversions, c)
	return fmt.Sprintf("memory!A%d", len(a.conversions)), nil
}

func (a *Adapter) ReadRows(_ context.Context) ([][]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([][]string, len(a.rows))
	copy(out, a.rows)
	return out, nil
}

// SetRows seeds the rows returned by ReadRows.
func (a *Adapter) SetRows(rows [][]string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rows = rows
}

// Appended returns a copy of every conversion written so far.
func (a *Adapter) Appended() []core.Conversion {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]core.Conversion, len(a.conversions))
	copy(out, a.conversions)
	return out
}
