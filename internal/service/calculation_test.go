package service

import (
	"testing"
	"time"

	"metals_trading/internal/domain"

	"github.com/stretchr/testify/assert"
)

func quoteFor(metal string, price float64) *PriceQuote {
	return &PriceQuote{
		MetalType:    metal,
		Purity:       domain.PurityFor(metal),
		PricePerGram: price,
		Timestamp:    time.Now(),
	}
}

func TestCalculateHoldingDetails(t *testing.T) {
	holding := domain.Holding{
		MetalType:            domain.MetalGold,
		Purity:               "24k",
		WeightInGrams:        2,
		AveragePurchasePrice: 6000,
		TotalInvestedAmount:  12000,
	}

	detail := CalculateHoldingDetails(holding, quoteFor(domain.MetalGold, 6300))

	assert.Equal(t, 12600.0, detail.CurrentValue)
	assert.Equal(t, 600.0, detail.GainLoss)
	assert.Equal(t, 5.0, detail.GainLossPercent)
	assert.Equal(t, 6300.0, detail.CurrentPricePerGram)
	assert.Equal(t, "24k", detail.Purity)
}

func TestCalculateHoldingDetailsZeroInvested(t *testing.T) {
	holding := domain.Holding{MetalType: domain.MetalSilver, WeightInGrams: 10}

	detail := CalculateHoldingDetails(holding, quoteFor(domain.MetalSilver, 85))

	// No invested amount means percent is defined as zero, not an error
	assert.Equal(t, 850.0, detail.CurrentValue)
	assert.Equal(t, 0.0, detail.GainLossPercent)
}

func TestCalculatePortfolioValue(t *testing.T) {
	holdings := []domain.Holding{
		{MetalType: domain.MetalGold, WeightInGrams: 1, TotalInvestedAmount: 6000},
		{MetalType: domain.MetalSilver, WeightInGrams: 100, TotalInvestedAmount: 8000},
	}
	prices := map[string]*PriceQuote{
		domain.MetalGold:   quoteFor(domain.MetalGold, 6600),
		domain.MetalSilver: quoteFor(domain.MetalSilver, 90),
	}

	summary := CalculatePortfolioValue(holdings, prices)

	assert.Equal(t, 15600.0, summary.TotalCurrentValue) // 6600 + 9000
	assert.Equal(t, 14000.0, summary.TotalInvested)
	assert.Equal(t, 1600.0, summary.TotalGainLoss)
	assert.InDelta(t, 11.43, summary.TotalGainLossPercent, 0.001)
}

func TestCalculatePortfolioValueEmpty(t *testing.T) {
	summary := CalculatePortfolioValue(nil, map[string]*PriceQuote{})

	assert.Equal(t, 0.0, summary.TotalCurrentValue)
	assert.Equal(t, 0.0, summary.TotalInvested)
	assert.Equal(t, 0.0, summary.TotalGainLossPercent)
}

func TestCalculateTransactionStats(t *testing.T) {
	transactions := []domain.Transaction{
		{Type: domain.TxBuyGold, TotalAmount: 500},
		{Type: domain.TxBuySilver, TotalAmount: 250.555},
		{Type: domain.TxSellGold, TotalAmount: 325},
		{Type: domain.TxDeposit, TotalAmount: 1000},    // Ignored
		{Type: domain.TxWithdrawal, TotalAmount: 2000}, // Ignored
	}

	stats := CalculateTransactionStats(transactions)

	assert.Equal(t, 750.56, stats.TotalPurchases)
	assert.Equal(t, 325.0, stats.TotalSales)
	assert.Equal(t, 2, stats.PurchaseCount)
	assert.Equal(t, 1, stats.SalesCount)
	assert.InDelta(t, -425.56, stats.NetAmount, 0.01)
}

func TestCalculateTransactionStatsEmpty(t *testing.T) {
	stats := CalculateTransactionStats(nil)

	assert.Equal(t, 0, stats.PurchaseCount)
	assert.Equal(t, 0, stats.SalesCount)
	assert.Equal(t, 0.0, stats.NetAmount)
}
