package dto

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidRequest marks validation failures of an analysis request.
var ErrInvalidRequest = errors.New("invalid analysis request")

var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// StockAnalysisRequest is the input of a pipeline run.
type StockAnalysisRequest struct {
	Ticker      string      `json:"ticker"`
	CompanyName string      `json:"company_name"`
	UserProfile UserProfile `json:"user_profile"`
}

// Normalize upper-cases the ticker and trims names.
func (r *StockAnalysisRequest) Normalize() {
	r.Ticker = strings.ToUpper(strings.TrimSpace(r.Ticker))
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.UserProfile.RiskTolerance = RiskTolerance(strings.ToLower(string(r.UserProfile.RiskTolerance)))
	r.UserProfile.TimeHorizon = TimeHorizon(strings.ToLower(string(r.UserProfile.TimeHorizon)))
}

// Validate checks the request. Errors wrap ErrInvalidRequest.
func (r StockAnalysisRequest) Validate() error {
	if !tickerPattern.MatchString(r.Ticker) {
		return fmt.Errorf("%w: ticker %q is not a valid symbol", ErrInvalidRequest, r.Ticker)
	}
	if r.CompanyName == "" {
		return fmt.Errorf("%w: company_name is required", ErrInvalidRequest)
	}
	p := r.UserProfile
	for name, v := range map[string]float64{
		"monthly_income":   p.MonthlyIncome,
		"monthly_expenses": p.MonthlyExpenses,
		"savings":          p.Savings,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidRequest, name)
		}
	}
	if !p.RiskTolerance.Valid() {
		return fmt.Errorf("%w: risk_tolerance must be one of low, medium, high", ErrInvalidRequest)
	}
	if !p.TimeHorizon.Valid() {
		return fmt.Errorf("%w: time_horizon must be one of weeks, months, years", ErrInvalidRequest)
	}
	for ticker, qty := range p.CurrentPortfolio {
		if qty < 0 {
			return fmt.Errorf("%w: negative holding for %s", ErrInvalidRequest, ticker)
		}
	}
	return nil
}

// HistoryItem is a compact row of the analysis history.
type HistoryItem struct {
	ID                uint      `json:"id"`
	Ticker            string    `json:"ticker"`
	CompanyName       string    `json:"company_name"`
	Decision          Decision  `json:"decision"`
	Confidence        float64   `json:"confidence"`
	SuggestedQuantity int64     `json:"suggested_quantity"`
	Source            string    `json:"source"`
	CreatedAt         time.Time `json:"created_at"`
}

type HistoryPage struct {
	Items []HistoryItem `json:"items"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int64         `json:"total"`
}

// AsyncAnalysisResponse is returned when a run is queued instead of executed inline.
type AsyncAnalysisResponse struct {
	RequestID string `json:"request_id"`
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StreamDataRecommendation is the payload of a queued analysis.
type StreamDataRecommendation struct {
	RequestID  string               `json:"request_id"`
	UserID     string               `json:"user_id"`
	Request    StockAnalysisRequest `json:"request"`
	NotifyUser bool                 `json:"notify_user"`
	TelegramID int64                `json:"telegram_id,omitempty"`
}
