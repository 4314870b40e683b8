package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPending  ConversionStatus = "pending"
	StatusApproved ConversionStatus = "approved"
	StatusRejected ConversionStatus = "rejected"
)

const (
	ReferralSportsbook ReferralType = "sportsbook"
	ReferralCasino     ReferralType = "casino"
	ReferralPoker      ReferralType = "poker"
)

type (
	ConversionStatus string

	ReferralType string

	// AffiliateLink describes a commission deal with a client for one
	// referral category.
	AffiliateLink struct {
		ID              string
		ClientID        string
		ClientName      string
		Type            ReferralType
		Commission      float64
		CPA             float64
		MinBetSize      float64
		MonthlyLimit    int // 0 means no limit
		Enabled         bool
		BetMatchEnabled bool
	}

	Customer struct {
		ID       string
		FullName string
	}

	// Conversion is an immutable record of one commissionable event.
	// The embedded AffiliateLink is a snapshot of the deal at the time
	// the conversion was recorded.
	Conversion struct {
		ID                  string
		DateOccurred        time.Time
		Amount              float64
		Status              ConversionStatus
		AffiliateLink       AffiliateLink
		Customer            Customer
		CompensationGroupID string
	}

	Payout struct {
		ID           string
		ClientID     string
		Amount       float64
		DateOccurred time.Time
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidStatus     = errors.New("invalid conversion status")
	ErrInvalidType       = errors.New("invalid referral type")
	ErrZeroDate          = errors.New("date cannot be zero")
	ErrEmptyClientID     = errors.New("empty client id")
	ErrEmptyClientName   = errors.New("empty client name")
	ErrNegativeMoney     = errors.New("money amount cannot be negative")
	ErrEmptyCustomerName = errors.New("empty customer name")
)

func (s ConversionStatus) Validate() error {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return nil
	}
	return ErrInvalidStatus
}

func (t ReferralType) Validate() error {
	switch t {
	case ReferralSportsbook, ReferralCasino, ReferralPoker:
		return nil
	}
	return ErrInvalidType
}

func (l AffiliateLink) Validate() error {
	if strings.TrimSpace(l.ClientID) == "" {
		return ErrEmptyClientID
	}
	if strings.TrimSpace(l.ClientName) == "" {
		return ErrEmptyClientName
	}
	if err := l.Type.Validate(); err != nil {
		return err
	}
	if l.Commission < 0 || l.CPA < 0 || l.MinBetSize < 0 {
		return ErrNegativeMoney
	}
	return nil
}

func (c Conversion) Validate() error {
	if c.DateOccurred.IsZero() {
		return ErrZeroDate
	}
	if c.Amount < 0 {
		return ErrInvalidAmount
	}
	if err := c.Status.Validate(); err != nil {
		return err
	}
	if err := c.AffiliateLink.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Customer.FullName) == "" {
		return ErrEmptyCustomerName
	}
	return nil
}

func (p Payout) Validate() error {
	if strings.TrimSpace(p.ClientID) == "" {
		return ErrEmptyClientID
	}
	if p.Amount < 0 {
		return ErrNegativeMoney
	}
	if p.DateOccurred.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// GrossProfit is the business take on a single conversion: the wagered
// amount less the commission owed to the affiliate.
func (c Conversion) GrossProfit() float64 {
	return c.Amount - c.AffiliateLink.Commission
}
