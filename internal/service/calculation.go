package service

import (
	"strings" // Transaction type prefix checks

	"metals_trading/internal/domain" // Domain models
	"metals_trading/internal/utils"  // Monetary rounding
)

// HoldingDetail is a holding valued at the current quote
type HoldingDetail struct {
	MetalType            string  `json:"metalType"`
	Purity               string  `json:"purity"`
	WeightInGrams        float64 `json:"weightInGrams"`
	AveragePurchasePrice float64 `json:"averagePurchasePrice"`
	CurrentPricePerGram  float64 `json:"currentPricePerGram"`
	CurrentValue         float64 `json:"currentValue"`
	InvestedAmount       float64 `json:"investedAmount"`
	GainLoss             float64 `json:"gainLoss"`
	GainLossPercent      float64 `json:"gainLossPercent"`
}

// PortfolioSummary aggregates value and gain/loss across all holdings
type PortfolioSummary struct {
	TotalCurrentValue    float64 `json:"totalCurrentValue"`
	TotalInvested        float64 `json:"totalInvested"`
	TotalGainLoss        float64 `json:"totalGainLoss"`
	TotalGainLossPercent float64 `json:"totalGainLossPercent"`
}

// TransactionStats partitions settled transactions into purchases and sales
type TransactionStats struct {
	TotalPurchases float64 `json:"totalPurchases"`
	TotalSales     float64 `json:"totalSales"`
	PurchaseCount  int     `json:"purchaseCount"`
	SalesCount     int     `json:"salesCount"`
	NetAmount      float64 `json:"netAmount"` // totalSales - totalPurchases
}

// CalculateHoldingDetails values a single holding at the current quote.
// All monetary outputs are rounded to 2 decimal places.
func CalculateHoldingDetails(holding domain.Holding, quote *PriceQuote) HoldingDetail {
	currentValue := holding.WeightInGrams * quote.PricePerGram
	gainLoss := currentValue - holding.TotalInvestedAmount
	gainLossPercent := 0.0
	if holding.TotalInvestedAmount > 0 {
		gainLossPercent = utils.Round2(gainLoss / holding.TotalInvestedAmount * 100)
	}
	return HoldingDetail{
		MetalType:            holding.MetalType,
		Purity:               holding.Purity,
		WeightInGrams:        holding.WeightInGrams,
		AveragePurchasePrice: holding.AveragePurchasePrice,
		CurrentPricePerGram:  quote.PricePerGram,
		CurrentValue:         utils.Round2(currentValue),
		InvestedAmount:       holding.TotalInvestedAmount,
		GainLoss:             utils.Round2(gainLoss),
		GainLossPercent:      gainLossPercent,
	}
}

// CalculatePortfolioValue sums current value and invested amount across
// holdings. The percent is 0 when nothing is invested.
func CalculatePortfolioValue(holdings []domain.Holding, prices map[string]*PriceQuote) PortfolioSummary {
	var totalCurrentValue, totalInvested float64
	for _, holding := range holdings {
		quote, ok := prices[holding.MetalType]
		if !ok {
			continue
		}
		totalCurrentValue += holding.WeightInGrams * quote.PricePerGram
		totalInvested += holding.TotalInvestedAmount
	}
	totalGainLoss := totalCurrentValue - totalInvested
	totalGainLossPercent := 0.0
	if totalInvested > 0 {
		totalGainLossPercent = utils.Round2(totalGainLoss / totalInvested * 100)
	}
	return PortfolioSummary{
		TotalCurrentValue:    utils.Round2(totalCurrentValue),
		TotalInvested:        utils.Round2(totalInvested),
		TotalGainLoss:        utils.Round2(totalGainLoss),
		TotalGainLossPercent: totalGainLossPercent,
	}
}

// CalculateTransactionStats partitions transactions by the buy_/sell_ type prefix
func CalculateTransactionStats(transactions []domain.Transaction) TransactionStats {
	var stats TransactionStats
	for _, tx := range transactions {
		switch {
		case strings.HasPrefix(tx.Type, "buy_"):
			stats.TotalPurchases += tx.TotalAmount
			stats.PurchaseCount++
		case strings.HasPrefix(tx.Type, "sell_"):
			stats.TotalSales += tx.TotalAmount
			stats.SalesCount++
		}
	}
	stats.NetAmount = utils.Round2(stats.TotalSales - stats.TotalPurchases)
	stats.TotalPurchases = utils.Round2(stats.TotalPurchases)
	stats.TotalSales = utils.Round2(stats.TotalSales)
	return stats
}
