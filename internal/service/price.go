package service

import (
	"errors"    // Sentinel errors
	"math/rand" // Random fluctuation source
	"sync"      // rand.Rand is not safe for concurrent use
	"time"      // Timestamps and history dates

	"metals_trading/internal/domain" // Domain models
	"metals_trading/internal/utils"  // Monetary rounding
)

// ErrInvalidMetalType is returned for metals without a configured base price
var ErrInvalidMetalType = errors.New("invalid metal type")

// PriceQuote is an ephemeral per-request quote, never persisted by the oracle
type PriceQuote struct {
	MetalType     string    `json:"metalType"`
	Purity        string    `json:"purity"`
	PricePerGram  float64   `json:"pricePerGram"`
	ChangePercent float64   `json:"changePercent"`
	Timestamp     time.Time `json:"timestamp"`
}

// PricePoint is one day of synthesized price history
type PricePoint struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	Price     float64 `json:"price"`
	MetalType string  `json:"metalType"`
}

// PriceService simulates a metals price feed as a random walk around
// configured base prices. It holds no persisted state.
type PriceService struct {
	basePrices map[string]float64
	mu         sync.Mutex
	rng        *rand.Rand
}

// NewPriceService creates a price oracle over the given base-price table.
// A nil rng falls back to a time-seeded source; tests inject a seeded one.
func NewPriceService(basePrices map[string]float64, rng *rand.Rand) *PriceService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &PriceService{basePrices: basePrices, rng: rng}
}

// CurrentPrice returns a fresh quote for the given metal.
// The fluctuation is uniform in [-1, 1) percent of the base price.
func (s *PriceService) CurrentPrice(metalType string) (*PriceQuote, error) {
	base, ok := s.basePrices[metalType]
	if !ok {
		return nil, ErrInvalidMetalType
	}
	s.mu.Lock()
	fluctuation := (s.rng.Float64() - 0.5) * 2
	s.mu.Unlock()
	return &PriceQuote{
		MetalType:     metalType,
		Purity:        domain.PurityFor(metalType),
		PricePerGram:  utils.Round2(base * (1 + fluctuation/100)),
		ChangePercent: utils.Round2(fluctuation),
		Timestamp:     time.Now(),
	}, nil
}

// AllCurrentPrices returns quotes for every configured metal, keyed by metal type
func (s *PriceService) AllCurrentPrices() (map[string]*PriceQuote, error) {
	prices := make(map[string]*PriceQuote, len(s.basePrices))
	for metal := range s.basePrices {
		quote, err := s.CurrentPrice(metal)
		if err != nil {
			return nil, err
		}
		prices[metal] = quote
	}
	return prices, nil
}

// MockHistory synthesizes a daily price series for the last N days, oldest
// first, used when no persisted history covers the requested window.
// Daily variation is uniform in [-2.5, 2.5) percent of the base price.
func (s *PriceService) MockHistory(metalType string, days int) ([]PricePoint, error) {
	base, ok := s.basePrices[metalType]
	if !ok {
		return nil, ErrInvalidMetalType
	}
	now := time.Now()
	history := make([]PricePoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		s.mu.Lock()
		variation := (s.rng.Float64() - 0.5) * 5
		s.mu.Unlock()
		history = append(history, PricePoint{
			Date:      now.AddDate(0, 0, -i).Format("2006-01-02"),
			Price:     utils.Round2(base * (1 + variation/100)),
			MetalType: metalType,
		})
	}
	return history, nil
}
