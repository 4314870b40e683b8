package services

import (
	"context"
	"fmt"

	"afftrack/internal/core"
)

// ReconcileService matches free-form client names, as they appear in
// imported spreadsheets and payout statements, against the affiliate links
// on file.
type ReconcileService struct {
	store     ConversionStore
	threshold float64
}

func NewReconcileService(store ConversionStore, threshold float64) *ReconcileService {
	if threshold <= 0 {
		threshold = core.DefaultMatchThreshold
	}
	return &ReconcileService{store: store, threshold: threshold}
}

// MatchClient finds the enabled affiliate link whose client name is closest
// to the given name. The second return is false when nothing on file is
// close enough.
func (s *ReconcileService) MatchClient(ctx context.Context, name string) (core.AffiliateLink, bool, error) {
	links, err := s.store.ListAffiliateLinks(ctx, true)
	if err != nil {
		return core.AffiliateLink{}, false, fmt.Errorf("list affiliate links: %w", err)
	}

	link, ok := core.ClosestMatch(name, links, func(l core.AffiliateLink) string {
		return l.ClientName
	}, s.threshold)
	return link, ok, nil
}

// MatchCustomer finds, among the conversions on file, the customer whose
// full name is closest to the given name.
func (s *ReconcileService) MatchCustomer(ctx context.Context, name string) (core.Customer, bool, error) {
	conversions, err := s.store.ListConversions(ctx)
	if err != nil {
		return core.Customer{}, false, fmt.Errorf("list conversions: %w", err)
	}

	seen := make(map[string]struct{}, len(conversions))
	customers := make([]core.Customer, 0, len(conversions))
	for _, c := range conversions {
		if _, ok := seen[c.Customer.FullName]; ok {
			continue
		}
		seen[c.Customer.FullName] = struct{}{}
		customers = append(customers, c.Customer)
	}

	customer, ok := core.ClosestMatch(name, customers, func(c core.Customer) string {
		return c.FullName
	}, s.threshold)
	return customer, ok, nil
}
