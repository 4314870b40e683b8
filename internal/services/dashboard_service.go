package services

import (
	"context"
	"fmt"
	"time"

	"afftrack/internal/core"
)

// DashboardSummary is the aggregate view for one timeframe, optionally
// narrowed to a single client.
type DashboardSummary struct {
	Timeframe         core.Timeframe
	TimeframeLabel    string
	ClientID          string
	ClientIDs         []string
	ConversionCount   int
	TotalCommission   float64
	GrossProfit       float64
	UnpaidCommission  float64
	AverageCommission float64
	AverageBetSize    float64
	Segments          []core.ConversionSegment
}

// DashboardService computes read-side aggregates from stored conversions
// and payouts.
type DashboardService struct {
	store ConversionStore
	nowFn func() time.Time
}

func NewDashboardService(store ConversionStore) *DashboardService {
	return &DashboardService{
		store: store,
		nowFn: time.Now,
	}
}

// Summary aggregates the conversions inside the timeframe. ClientID filters
// to one client when non-empty; ClientIDs always lists every client seen in
// the timeframe so the caller can render the filter choices.
//
// Unpaid commission is the owed total (pending plus approved) minus payouts
// already made to the selected clients. It can go negative when a client was
// overpaid.
func (s *DashboardService) Summary(ctx context.Context, timeframe core.Timeframe, clientID string) (DashboardSummary, error) {
	now := s.nowFn()
	since := timeframe.IntervalStart(now)

	conversions, err := s.store.ListConversionsSince(ctx, since)
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("list conversions: %w", err)
	}
	conversions = core.FilterByTimeframe(conversions, timeframe, now)

	allClients := core.ClientIDs(conversions)
	if clientID != "" {
		conversions = filterByClient(conversions, clientID)
	}

	payouts, err := s.store.ListPayouts(ctx, clientID)
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("list payouts: %w", err)
	}

	unpaid := core.UnpaidCommission(conversions) - core.TotalPayout(payouts)

	return DashboardSummary{
		Timeframe:         timeframe,
		TimeframeLabel:    timeframe.Label(),
		ClientID:          clientID,
		ClientIDs:         allClients,
		ConversionCount:   len(conversions),
		TotalCommission:   core.TotalCommission(conversions),
		GrossProfit:       core.TotalGrossProfit(conversions),
		UnpaidCommission:  unpaid,
		AverageCommission: core.AverageCommission(conversions),
		AverageBetSize:    core.AverageBetSize(conversions),
		Segments:          core.SegmentByTimeframe(conversions, timeframe, now),
	}, nil
}

func filterByClient(conversions []core.Conversion, clientID string) []core.Conversion {
	out := make([]core.Conversion, 0, len(conversions))
	for _, c := range conversions {
		if c.AffiliateLink.ClientID == clientID {
			out = append(out, c)
		}
	}
	return out
}
