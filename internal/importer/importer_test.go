package importer

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"afftrack/internal/core"
	"afftrack/internal/metrics"
	"afftrack/internal/services"
)

type fakeMatcher struct {
	links []core.AffiliateLink
}

func (f *fakeMatcher) MatchClient(_ context.Context, name string) (core.AffiliateLink, bool, error) {
	link, ok := core.ClosestMatch(name, f.links, func(l core.AffiliateLink) string {
		return l.ClientName
	}, core.DefaultMatchThreshold)
	return link, ok, nil
}

type fakeRecorder struct {
	recorded []services.RecordConversionInput
}

func (f *fakeRecorder) RecordConversion(_ context.Context, in services.RecordConversionInput) (core.Conversion, error) {
	f.recorded = append(f.recorded, in)
	return core.Conversion{ID: "recorded"}, nil
}

func TestDetectHeader(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		want bool
	}{
		{"canonical header", []string{"Date", "Client", "Type", "Amount"}, true},
		{"lowercase header", []string{"date", "client", "amount"}, true},
		{"data row with date", []string{"2024-06-01", "Acme Sports", "sportsbook", "250"}, false},
		{"data row with number", []string{"unknown", "Acme Sports", "250"}, false},
		{"unrelated words", []string{"foo", "bar", "baz"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectHeader(tt.row); got != tt.want {
				t.Errorf("DetectHeader(%v) = %v, want %v", tt.row, got, tt.want)
			}
		})
	}
}

func TestMapColumns(t *testing.T) {
	t.Run("full header in any order", func(t *testing.T) {
		m, err := MapColumns([]string{"Client", "Date", "Amount", "Status", "Customer", "Type"})
		if err != nil {
			t.Fatalf("MapColumns() error = %v", err)
		}
		want := ColumnMap{Date: 1, Client: 0, Amount: 2, Type: 5, Status: 3, Customer: 4}
		if m != want {
			t.Errorf("MapColumns() = %+v, want %+v", m, want)
		}
	})

	t.Run("optional columns default to -1", func(t *testing.T) {
		m, err := MapColumns([]string{"Date", "Client", "Amount"})
		if err != nil {
			t.Fatalf("MapColumns() error = %v", err)
		}
		if m.Type != -1 || m.Status != -1 || m.Customer != -1 {
			t.Errorf("optional columns = %+v, want -1", m)
		}
	})

	t.Run("missing required column fails", func(t *testing.T) {
		if _, err := MapColumns([]string{"Date", "Amount"}); err == nil {
			t.Error("MapColumns() should fail without a client column")
		}
	})
}

func TestImporter_ImportRows(t *testing.T) {
	matcher := &fakeMatcher{links: []core.AffiliateLink{
		{ID: "link-1", ClientID: "client-acme", ClientName: "Acme Sports", Type: core.ReferralSportsbook, Commission: 100, Enabled: true},
	}}
	recorder := &fakeRecorder{}
	im := New(matcher, recorder, nil)

	rows := [][]string{
		{"Date", "Client", "Amount", "Status", "Customer"},
		{"2024-06-01", "Acme Sports", "$250.00", "approved", "Jordan Lee"},
		{"2024-06-02", "acme sports", "1,000", "", ""},
		{"2024-06-03", "Totally Unknown Inc", "100", "approved", "Sam"},
		{"not-a-date", "Acme Sports", "100", "approved", "Sam"},
	}

	res, err := im.ImportRows(context.Background(), rows)
	if err != nil {
		t.Fatalf("ImportRows() error = %v", err)
	}

	if res.Imported != 2 {
		t.Errorf("Imported = %d, want 2", res.Imported)
	}
	if len(res.ManualReview) != 2 {
		t.Fatalf("ManualReview has %d rows, want 2", len(res.ManualReview))
	}
	if res.ManualReview[0].RowNumber != 4 {
		t.Errorf("first issue row = %d, want 4", res.ManualReview[0].RowNumber)
	}

	first := recorder.recorded[0]
	if first.LinkID != "link-1" || first.Amount != 250 || first.CustomerName != "Jordan Lee" {
		t.Errorf("first recorded = %+v", first)
	}
	wantDate := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if !first.DateOccurred.Equal(wantDate) {
		t.Errorf("first date = %v, want %v", first.DateOccurred, wantDate)
	}

	// Row without customer falls back to the client name and status defaults
	// to approved.
	second := recorder.recorded[1]
	if second.CustomerName != "acme sports" || second.Status != core.StatusApproved {
		t.Errorf("second recorded = %+v", second)
	}
	if second.Amount != 1000 {
		t.Errorf("second amount = %v, want 1000", second.Amount)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"123.45", 123.45, true},
		{"123,45", 123.45, true},
		{"$1,234.50", 1234.50, true},
		{"1,000", 1000, true},
		{"$12,345", 12345, true},
		{" 99 ", 99, true},
		{"", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseAmount(tt.in)
			if ok != tt.ok {
				t.Fatalf("parseAmount(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("parseAmount(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestImporter_ImportRowsCountsOutcomes(t *testing.T) {
	matcher := &fakeMatcher{links: []core.AffiliateLink{
		{ID: "link-1", ClientID: "client-acme", ClientName: "Acme Sports", Type: core.ReferralSportsbook, Commission: 100, Enabled: true},
	}}
	m := metrics.New()
	im := New(matcher, &fakeRecorder{}, m)

	rows := [][]string{
		{"2024-06-01", "Acme Sports", "sportsbook", "250", "", "approved", "Jordan Lee"},
		{"2024-06-02", "Totally Unknown Inc", "sportsbook", "100", "", "approved", "Sam"},
	}

	if _, err := im.ImportRows(context.Background(), rows); err != nil {
		t.Fatalf("ImportRows() error = %v", err)
	}

	if got := testutil.ToFloat64(m.ImportRowsTotal.WithLabelValues("imported")); got != 1 {
		t.Errorf("imported counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ImportRowsTotal.WithLabelValues("manual_review")); got != 1 {
		t.Errorf("manual_review counter = %v, want 1", got)
	}
}

func TestImporter_ImportRowsHeaderless(t *testing.T) {
	matcher := &fakeMatcher{links: []core.AffiliateLink{
		{ID: "link-1", ClientID: "client-acme", ClientName: "Acme Sports", Type: core.ReferralSportsbook, Commission: 100, Enabled: true},
	}}
	recorder := &fakeRecorder{}
	im := New(matcher, recorder, nil)

	rows := [][]string{
		{"2024-06-01", "Acme Sports", "sportsbook", "250", "", "approved", "Jordan Lee"},
	}

	res, err := im.ImportRows(context.Background(), rows)
	if err != nil {
		t.Fatalf("ImportRows() error = %v", err)
	}
	if res.Imported != 1 {
		t.Fatalf("Imported = %d, want 1", res.Imported)
	}
	if recorder.recorded[0].CustomerName != "Jordan Lee" {
		t.Errorf("recorded = %+v", recorder.recorded[0])
	}
}
