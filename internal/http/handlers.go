package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"afftrack/internal/core"
	"afftrack/internal/services"
	"afftrack/internal/storage"
)

type segmentDTO struct {
	Label      string    `json:"label"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Count      int       `json:"count"`
	Commission float64   `json:"commission"`
}

type dashboardResponse struct {
	Timeframe               string       `json:"timeframe"`
	Label                   string       `json:"label"`
	ClientID                string       `json:"clientId,omitempty"`
	ClientIDs               []string     `json:"clientIds"`
	ConversionCount         int          `json:"conversionCount"`
	TotalCommission         float64      `json:"totalCommission"`
	TotalCommissionDisplay  string       `json:"totalCommissionDisplay"`
	GrossProfit             float64      `json:"grossProfit"`
	GrossProfitDisplay      string       `json:"grossProfitDisplay"`
	UnpaidCommission        float64      `json:"unpaidCommission"`
	UnpaidCommissionDisplay string       `json:"unpaidCommissionDisplay"`
	AverageCommission       float64      `json:"averageCommission"`
	AverageBetSize          float64      `json:"averageBetSize"`
	AverageBetSizeDisplay   string       `json:"averageBetSizeDisplay"`
	Segments                []segmentDTO `json:"segments"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("timeframe"))
	if raw == "" {
		raw = string(core.LastMonth)
	}
	timeframe, err := core.ParseTimeframe(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	clientID := strings.TrimSpace(r.URL.Query().Get("clientId"))

	key := string(timeframe) + "|" + clientID
	summary, found := s.summaryCache.Get(key)
	if !found {
		summary, err = s.dashboards.Summary(r.Context(), timeframe, clientID)
		if err != nil {
			slog.ErrorContext(r.Context(), "Dashboard summary failed",
				"timeframe", timeframe, "client_id", clientID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to compute dashboard")
			return
		}
		s.summaryCache.Set(key, summary)
	}

	segments := make([]segmentDTO, len(summary.Segments))
	for i, seg := range summary.Segments {
		segments[i] = segmentDTO{
			Label:      seg.Label,
			Start:      seg.Start,
			End:        seg.End,
			Count:      len(seg.Conversions),
			Commission: core.TotalCommission(seg.Conversions),
		}
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		Timeframe:               string(summary.Timeframe),
		Label:                   summary.TimeframeLabel,
		ClientID:                summary.ClientID,
		ClientIDs:               summary.ClientIDs,
		ConversionCount:         summary.ConversionCount,
		TotalCommission:         summary.TotalCommission,
		TotalCommissionDisplay:  core.FormatMoney(summary.TotalCommission),
		GrossProfit:             summary.GrossProfit,
		GrossProfitDisplay:      core.FormatMoney(summary.GrossProfit),
		UnpaidCommission:        summary.UnpaidCommission,
		UnpaidCommissionDisplay: core.FormatMoney(summary.UnpaidCommission),
		AverageCommission:       summary.AverageCommission,
		AverageBetSize:          summary.AverageBetSize,
		AverageBetSizeDisplay:   core.FormatMoney(summary.AverageBetSize),
		Segments:                segments,
	})
}

type conversionDTO struct {
	ID                  string    `json:"id"`
	DateOccurred        time.Time `json:"dateOccurred"`
	Amount              float64   `json:"amount"`
	Status              string    `json:"status"`
	LinkID              string    `json:"linkId"`
	ClientID            string    `json:"clientId"`
	ClientName          string    `json:"clientName"`
	Type                string    `json:"type"`
	Commission          float64   `json:"commission"`
	CustomerID          string    `json:"customerId,omitempty"`
	CustomerName        string    `json:"customerName"`
	CompensationGroupID string    `json:"compensationGroupId,omitempty"`
}

func toConversionDTO(c core.Conversion) conversionDTO {
	return conversionDTO{
		ID:                  c.ID,
		DateOccurred:        c.DateOccurred,
		Amount:              c.Amount,
		Status:              string(c.Status),
		LinkID:              c.AffiliateLink.ID,
		ClientID:            c.AffiliateLink.ClientID,
		ClientName:          c.AffiliateLink.ClientName,
		Type:                string(c.AffiliateLink.Type),
		Commission:          c.AffiliateLink.Commission,
		CustomerID:          c.Customer.ID,
		CustomerName:        c.Customer.FullName,
		CompensationGroupID: c.CompensationGroupID,
	}
}

// handleListConversions lists conversions, optionally narrowed by
// from/to dates (YYYY-MM-DD, to-date inclusive) and referral type.
func (s *Server) handleListConversions(w http.ResponseWriter, r *http.Request) {
	conversions, err := s.conversions.ListConversions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List conversions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list conversions")
		return
	}

	var from, to *time.Time
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad from date, want YYYY-MM-DD")
			return
		}
		from = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad to date, want YYYY-MM-DD")
			return
		}
		to = &t
	}
	if from != nil || to != nil {
		conversions = core.FilterByDateRange(conversions, from, to)
	}

	if v := strings.TrimSpace(r.URL.Query().Get("type")); v != "" {
		refType := core.ReferralType(v)
		if err := refType.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		conversions = core.WithType(conversions, refType)
	}

	out := make([]conversionDTO, len(conversions))
	for i, c := range conversions {
		out[i] = toConversionDTO(c)
	}
	writeJSON(w, http.StatusOK, out)
}

type createConversionRequest struct {
	LinkID              string  `json:"linkId"`
	Amount              float64 `json:"amount"`
	Status              string  `json:"status"`
	DateOccurred        string  `json:"dateOccurred"`
	CustomerID          string  `json:"customerId"`
	CustomerName        string  `json:"customerName"`
	CompensationGroupID string  `json:"compensationGroupId"`
}

func (s *Server) handleCreateConversion(w http.ResponseWriter, r *http.Request) {
	var req createConversionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var date time.Time
	if req.DateOccurred != "" {
		parsed, err := parseFlexibleDate(req.DateOccurred)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad dateOccurred, want RFC 3339 or YYYY-MM-DD")
			return
		}
		date = parsed
	}

	conv, err := s.conversions.RecordConversion(r.Context(), services.RecordConversionInput{
		LinkID:              req.LinkID,
		Amount:              req.Amount,
		Status:              core.ConversionStatus(req.Status),
		DateOccurred:        date,
		CustomerID:          req.CustomerID,
		CustomerName:        req.CustomerName,
		CompensationGroupID: req.CompensationGroupID,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "affiliate link not found")
			return
		}
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Record conversion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record conversion")
		return
	}

	if s.metrics != nil {
		s.metrics.RecordConversion(conv.AffiliateLink.ClientID, string(conv.AffiliateLink.Type),
			conv.Amount, conv.AffiliateLink.Commission)
	}
	s.summaryCache.Purge()

	writeJSON(w, http.StatusCreated, toConversionDTO(conv))
}

func (s *Server) handleDeleteConversion(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.conversions.DeleteConversion(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "conversion not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete conversion failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete conversion")
		return
	}

	if s.metrics != nil {
		s.metrics.RecordDeletion()
	}
	s.summaryCache.Purge()

	w.WriteHeader(http.StatusNoContent)
}

type linkDTO struct {
	ID              string  `json:"id"`
	ClientID        string  `json:"clientId"`
	ClientName      string  `json:"clientName"`
	Type            string  `json:"type"`
	Commission      float64 `json:"commission"`
	CPA             float64 `json:"cpa"`
	MinBetSize      float64 `json:"minBetSize"`
	MonthlyLimit    int     `json:"monthlyLimit"`
	Enabled         bool    `json:"enabled"`
	BetMatchEnabled bool    `json:"betMatchEnabled"`
}

func (s *Server) handleListLinks(w http.ResponseWriter, r *http.Request) {
	enabledOnly := r.URL.Query().Get("enabled") == "true"
	links, err := s.conversions.ListAffiliateLinks(r.Context(), enabledOnly)
	if err != nil {
		slog.ErrorContext(r.Context(), "List links failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list affiliate links")
		return
	}

	out := make([]linkDTO, len(links))
	for i, l := range links {
		out[i] = linkDTO{
			ID:              l.ID,
			ClientID:        l.ClientID,
			ClientName:      l.ClientName,
			Type:            string(l.Type),
			Commission:      l.Commission,
			CPA:             l.CPA,
			MinBetSize:      l.MinBetSize,
			MonthlyLimit:    l.MonthlyLimit,
			Enabled:         l.Enabled,
			BetMatchEnabled: l.BetMatchEnabled,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	var req linkDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	link, err := s.conversions.CreateAffiliateLink(r.Context(), core.AffiliateLink{
		ID:              req.ID,
		ClientID:        req.ClientID,
		ClientName:      req.ClientName,
		Type:            core.ReferralType(req.Type),
		Commission:      req.Commission,
		CPA:             req.CPA,
		MinBetSize:      req.MinBetSize,
		MonthlyLimit:    req.MonthlyLimit,
		Enabled:         req.Enabled,
		BetMatchEnabled: req.BetMatchEnabled,
	})
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Create link failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create affiliate link")
		return
	}

	req.ID = link.ID
	writeJSON(w, http.StatusCreated, req)
}

type payoutDTO struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"clientId"`
	Amount       float64   `json:"amount"`
	DateOccurred time.Time `json:"dateOccurred"`
}

func (s *Server) handleListPayouts(w http.ResponseWriter, r *http.Request) {
	clientID := strings.TrimSpace(r.URL.Query().Get("clientId"))
	payouts, err := s.conversions.ListPayouts(r.Context(), clientID)
	if err != nil {
		slog.ErrorContext(r.Context(), "List payouts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list payouts")
		return
	}

	out := make([]payoutDTO, len(payouts))
	for i, p := range payouts {
		out[i] = payoutDTO{ID: p.ID, ClientID: p.ClientID, Amount: p.Amount, DateOccurred: p.DateOccurred}
	}
	writeJSON(w, http.StatusOK, out)
}

type createPayoutRequest struct {
	ClientID     string  `json:"clientId"`
	Amount       float64 `json:"amount"`
	DateOccurred string  `json:"dateOccurred"`
}

func (s *Server) handleCreatePayout(w http.ResponseWriter, r *http.Request) {
	var req createPayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var date time.Time
	if req.DateOccurred != "" {
		parsed, err := parseFlexibleDate(req.DateOccurred)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad dateOccurred, want RFC 3339 or YYYY-MM-DD")
			return
		}
		date = parsed
	}

	payout, err := s.conversions.CreatePayout(r.Context(), core.Payout{
		ClientID:     req.ClientID,
		Amount:       req.Amount,
		DateOccurred: date,
	})
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Create payout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create payout")
		return
	}

	s.summaryCache.Purge()

	writeJSON(w, http.StatusCreated, payoutDTO{
		ID:           payout.ID,
		ClientID:     payout.ClientID,
		Amount:       payout.Amount,
		DateOccurred: payout.DateOccurred,
	})
}

func parseFlexibleDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidStatus,
		core.ErrInvalidType,
		core.ErrZeroDate,
		core.ErrEmptyClientID,
		core.ErrEmptyClientName,
		core.ErrNegativeMoney,
		core.ErrEmptyCustomerName,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
