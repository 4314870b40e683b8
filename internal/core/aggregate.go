package core

import "time"

// ConversionSegment is one chart bucket holding the conversions whose
// DateOccurred falls inside it. Segments are derived per query and never
// persisted.
type ConversionSegment struct {
	Label       string
	Start       time.Time
	End         time.Time
	Conversions []Conversion
}

// FilterByTimeframe keeps conversions dated at or after the timeframe's
// start. Input order is preserved and the input slice is never modified.
func FilterByTimeframe(conversions []Conversion, t Timeframe, now time.Time) []Conversion {
	start := t.IntervalStart(now)
	out := make([]Conversion, 0, len(conversions))
	for _, c := range conversions {
		if !c.DateOccurred.Before(start) {
			out = append(out, c)
		}
	}
	return out
}

// FilterByDateRange keeps conversions within the given bounds. The lower
// bound is inclusive at its instant; the upper bound is inclusive of the
// whole named day. A nil bound leaves that side open.
func FilterByDateRange(conversions []Conversion, from, to *time.Time) []Conversion {
	var limit time.Time
	if to != nil {
		limit = time.Date(to.Year(), to.Month(), to.Day()+1, 0, 0, 0, 0, to.Location())
	}
	out := make([]Conversion, 0, len(conversions))
	for _, c := range conversions {
		if from != nil && c.DateOccurred.Before(*from) {
			continue
		}
		if to != nil && !c.DateOccurred.Before(limit) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// WithType keeps conversions whose affiliate link has the given referral type.
func WithType(conversions []Conversion, t ReferralType) []Conversion {
	out := make([]Conversion, 0, len(conversions))
	for _, c := range conversions {
		if c.AffiliateLink.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// TotalCommission sums the fixed commission over the set. Empty input is 0.
func TotalCommission(conversions []Conversion) float64 {
	var total float64
	for _, c := range conversions {
		total += c.AffiliateLink.Commission
	}
	return total
}

// TotalGrossProfit sums the per-conversion gross profit over the set.
func TotalGrossProfit(conversions []Conversion) float64 {
	var total float64
	for _, c := range conversions {
		total += c.GrossProfit()
	}
	return total
}

// UnpaidCommission sums commission over conversions that are not rejected:
// pending and approved both count as owed. Payouts already made are
// subtracted by the caller (see DashboardService), not here.
func UnpaidCommission(conversions []Conversion) float64 {
	var total float64
	for _, c := range conversions {
		if c.Status != StatusRejected {
			total += c.AffiliateLink.Commission
		}
	}
	return total
}

// TotalPayout sums paid-out amounts. Empty input is 0.
func TotalPayout(payouts []Payout) float64 {
	var total float64
	for _, p := range payouts {
		total += p.Amount
	}
	return total
}

// AverageCommission is the arithmetic mean of commission. Empty input is 0,
// never NaN.
func AverageCommission(conversions []Conversion) float64 {
	if len(conversions) == 0 {
		return 0
	}
	return TotalCommission(conversions) / float64(len(conversions))
}

// AverageBetSize is the arithmetic mean of the wagered amount. Empty input
// is 0, never NaN.
func AverageBetSize(conversions []Conversion) float64 {
	if len(conversions) == 0 {
		return 0
	}
	var total float64
	for _, c := range conversions {
		total += c.Amount
	}
	return total / float64(len(conversions))
}

// ClientIDs returns the distinct client ids appearing in the set, in
// first-occurrence order.
func ClientIDs(conversions []Conversion) []string {
	seen := make(map[string]struct{}, len(conversions))
	out := make([]string, 0, len(conversions))
	for _, c := range conversions {
		id := c.AffiliateLink.ClientID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// SegmentByTimeframe buckets the conversions into the timeframe's chart
// segments by DateOccurred. The segment slice always has the timeframe's
// fixed length; buckets with no conversions keep an empty slice so chart
// axes stay stable. A conversion dated exactly on a boundary belongs to the
// later bucket. The final bucket absorbs anything dated at or past now, so
// the segments concatenated always equal the timeframe filter's output.
func SegmentByTimeframe(conversions []Conversion, t Timeframe, now time.Time) []ConversionSegment {
	intervals := t.Segments(now)
	out := make([]ConversionSegment, len(intervals))
	for i, iv := range intervals {
		out[i] = ConversionSegment{
			Label:       iv.Label,
			Start:       iv.Start,
			End:         iv.End,
			Conversions: []Conversion{},
		}
	}
	last := len(out) - 1
	for _, c := range conversions {
		for i := range out {
			d := c.DateOccurred
			if d.Before(out[i].Start) {
				break
			}
			if d.Before(out[i].End) || i == last {
				out[i].Conversions = append(out[i].Conversions, c)
				break
			}
		}
	}
	return out
}
