package service

import (
	"context" // Request-scoped DB operations
	"errors"  // Sentinel errors
	"fmt"     // Transaction type formatting
	"time"    // Log timestamps

	"metals_trading/internal/domain" // Domain models

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// Settlement errors, mapped to HTTP statuses at the API boundary
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrHoldingNotFound      = errors.New("holding not found")
	ErrInsufficientBalance  = errors.New("insufficient wallet balance")
	ErrInsufficientQuantity = errors.New("insufficient metal quantity")
)

// Notifier delivers best-effort transaction notifications. Failures are the
// notifier's problem: they must never surface to the settlement caller.
type Notifier interface {
	NotifyTransaction(ctx context.Context, user *domain.User, tx *domain.Transaction)
}

// TradeResult is the outcome of a settled buy or sell
type TradeResult struct {
	Transaction   domain.Transaction `json:"transaction"`
	Holding       *domain.Holding    `json:"holding"` // Nil when a sell closed the position
	WalletBalance float64            `json:"walletBalance"`
}

// WalletResult is the outcome of a settled deposit or withdrawal
type WalletResult struct {
	Balance     float64            `json:"balance"`
	Transaction domain.Transaction `json:"transaction"`
}

// PortfolioResult is the valued portfolio for one user
type PortfolioResult struct {
	PortfolioValue       float64                `json:"portfolioValue"`
	TotalInvested        float64                `json:"totalInvested"`
	TotalGainLoss        float64                `json:"totalGainLoss"`
	TotalGainLossPercent float64                `json:"totalGainLossPercent"`
	WalletBalance        float64                `json:"walletBalance"`
	Holdings             []HoldingDetail        `json:"holdings"`
	CurrentPrices        map[string]*PriceQuote `json:"currentPrices"`
}

// TradeService settles buys, sells, deposits and withdrawals. Every
// operation runs its reads and writes inside a single database transaction,
// so a failure at any step leaves nothing partially persisted.
type TradeService struct {
	db       *gorm.DB
	prices   *PriceService
	notifier Notifier
}

// NewTradeService creates a settlement engine over the given collaborators.
// The notifier may be nil, in which case no notifications are sent.
func NewTradeService(db *gorm.DB, prices *PriceService, notifier Notifier) *TradeService {
	return &TradeService{db: db, prices: prices, notifier: notifier}
}

// Buy purchases metal for a user. Exactly one of amountInRupees or
// weightInGrams is expected; when both are supplied the amount wins and the
// weight is derived from it at the current price.
func (s *TradeService) Buy(ctx context.Context, userID uint, metalType string, amountInRupees, weightInGrams float64) (*TradeResult, error) {
	if amountInRupees <= 0 && weightInGrams <= 0 {
		return nil, ErrInvalidInput
	}

	quote, err := s.prices.CurrentPrice(metalType)
	if err != nil {
		return nil, err
	}

	var weight, totalAmount float64
	if amountInRupees > 0 {
		totalAmount = amountInRupees
		weight = amountInRupees / quote.PricePerGram
	} else {
		weight = weightInGrams
		totalAmount = weightInGrams * quote.PricePerGram
	}

	var result TradeResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wallet domain.Wallet
		if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWalletNotFound
			}
			return err
		}
		if wallet.Balance < totalAmount {
			return ErrInsufficientBalance
		}

		// Debit the wallet
		if err := tx.Model(&wallet).Update("balance", gorm.Expr("balance - ?", totalAmount)).Error; err != nil {
			return err
		}
		wallet.Balance -= totalAmount

		// Merge into the existing position or open a new one
		var holding domain.Holding
		err := tx.Where("user_id = ? AND metal_type = ?", userID, metalType).First(&holding).Error
		switch {
		case err == nil:
			newWeight := holding.WeightInGrams + weight
			newInvested := holding.TotalInvestedAmount + totalAmount
			holding.WeightInGrams = newWeight
			holding.TotalInvestedAmount = newInvested
			holding.AveragePurchasePrice = newInvested / newWeight
			if err := tx.Model(&holding).Updates(map[string]any{
				"weight_in_grams":        holding.WeightInGrams,
				"total_invested_amount":  holding.TotalInvestedAmount,
				"average_purchase_price": holding.AveragePurchasePrice,
			}).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			holding = domain.Holding{
				UserID:               userID,
				MetalType:            metalType,
				Purity:               domain.PurityFor(metalType),
				WeightInGrams:        weight,
				AveragePurchasePrice: quote.PricePerGram,
				TotalInvestedAmount:  totalAmount,
			}
			if err := tx.Create(&holding).Error; err != nil {
				return err
			}
		default:
			return err
		}

		metal := metalType
		transaction := domain.Transaction{
			UserID:        userID,
			Type:          fmt.Sprintf("buy_%s", metalType),
			MetalType:     &metal,
			WeightInGrams: weight,
			PricePerGram:  quote.PricePerGram,
			TotalAmount:   totalAmount,
			Status:        domain.StatusCompleted,
		}
		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}

		result = TradeResult{Transaction: transaction, Holding: &holding, WalletBalance: wallet.Balance}
		return nil
	})
	if err != nil {
		s.logFailure("Purchase failed", userID, metalType, totalAmount, err)
		return nil, err
	}

	s.logSettled("Purchase settled", &result.Transaction)
	s.notify(ctx, userID, &result.Transaction)
	return &result, nil
}

// Sell liquidates part or all of a user's position at the current price.
// The invested amount shrinks by the sold proportion; a position whose
// weight reaches zero is deleted rather than kept as an empty row.
func (s *TradeService) Sell(ctx context.Context, userID uint, metalType string, weightInGrams float64) (*TradeResult, error) {
	if weightInGrams <= 0 {
		return nil, ErrInvalidInput
	}

	quote, err := s.prices.CurrentPrice(metalType)
	if err != nil {
		return nil, err
	}
	totalAmount := weightInGrams * quote.PricePerGram

	var result TradeResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var holding domain.Holding
		if err := tx.Where("user_id = ? AND metal_type = ?", userID, metalType).First(&holding).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrHoldingNotFound
			}
			return err
		}
		if holding.WeightInGrams < weightInGrams {
			return ErrInsufficientQuantity
		}

		var wallet domain.Wallet
		if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWalletNotFound
			}
			return err
		}

		// Credit the wallet with the proceeds
		if err := tx.Model(&wallet).Update("balance", gorm.Expr("balance + ?", totalAmount)).Error; err != nil {
			return err
		}
		wallet.Balance += totalAmount

		// Reduce the position. The proportion uses the already-decremented
		// weight in the denominator, which equals soldWeight/oldWeight.
		holding.WeightInGrams -= weightInGrams
		proportionSold := weightInGrams / (holding.WeightInGrams + weightInGrams)
		holding.TotalInvestedAmount -= holding.TotalInvestedAmount * proportionSold

		remaining := &holding
		if holding.WeightInGrams <= 0 {
			if err := tx.Delete(&domain.Holding{}, holding.ID).Error; err != nil {
				return err
			}
			remaining = nil
		} else {
			if err := tx.Model(&holding).Updates(map[string]any{
				"weight_in_grams":       holding.WeightInGrams,
				"total_invested_amount": holding.TotalInvestedAmount,
			}).Error; err != nil {
				return err
			}
		}

		metal := metalType
		transaction := domain.Transaction{
			UserID:        userID,
			Type:          fmt.Sprintf("sell_%s", metalType),
			MetalType:     &metal,
			WeightInGrams: weightInGrams,
			PricePerGram:  quote.PricePerGram,
			TotalAmount:   totalAmount,
			Status:        domain.StatusCompleted,
		}
		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}

		result = TradeResult{Transaction: transaction, Holding: remaining, WalletBalance: wallet.Balance}
		return nil
	})
	if err != nil {
		s.logFailure("Sale failed", userID, metalType, totalAmount, err)
		return nil, err
	}

	s.logSettled("Sale settled", &result.Transaction)
	s.notify(ctx, userID, &result.Transaction)
	return &result, nil
}

// Deposit credits a user's wallet
func (s *TradeService) Deposit(ctx context.Context, userID uint, amount float64) (*WalletResult, error) {
	return s.adjustWallet(ctx, userID, amount, domain.TxDeposit, "Wallet deposit")
}

// Withdraw debits a user's wallet, requiring sufficient balance
func (s *TradeService) Withdraw(ctx context.Context, userID uint, amount float64) (*WalletResult, error) {
	return s.adjustWallet(ctx, userID, amount, domain.TxWithdrawal, "Wallet withdrawal")
}

// adjustWallet settles a deposit or withdrawal inside one DB transaction
func (s *TradeService) adjustWallet(ctx context.Context, userID uint, amount float64, txType, description string) (*WalletResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var result WalletResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wallet domain.Wallet
		if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWalletNotFound
			}
			return err
		}

		delta := amount
		if txType == domain.TxWithdrawal {
			if wallet.Balance < amount {
				return ErrInsufficientBalance
			}
			delta = -amount
		}
		if err := tx.Model(&wallet).Update("balance", gorm.Expr("balance + ?", delta)).Error; err != nil {
			return err
		}
		wallet.Balance += delta

		transaction := domain.Transaction{
			UserID:      userID,
			Type:        txType,
			TotalAmount: amount,
			Status:      domain.StatusCompleted,
			Description: description,
		}
		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}

		result = WalletResult{Balance: wallet.Balance, Transaction: transaction}
		return nil
	})
	if err != nil {
		s.logFailure(txType+" failed", userID, "", amount, err)
		return nil, err
	}

	s.logSettled(txType+" settled", &result.Transaction)
	s.notify(ctx, userID, &result.Transaction)
	return &result, nil
}

// HoldingDetails values every holding of a user at current prices
func (s *TradeService) HoldingDetails(ctx context.Context, userID uint) ([]HoldingDetail, error) {
	var holdings []domain.Holding
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&holdings).Error; err != nil {
		return nil, err
	}
	if len(holdings) == 0 {
		return []HoldingDetail{}, nil
	}
	prices, err := s.prices.AllCurrentPrices()
	if err != nil {
		return nil, err
	}
	details := make([]HoldingDetail, 0, len(holdings))
	for _, holding := range holdings {
		quote, ok := prices[holding.MetalType]
		if !ok {
			continue
		}
		details = append(details, CalculateHoldingDetails(holding, quote))
	}
	return details, nil
}

// Portfolio values a user's full position: holdings, aggregates and wallet
func (s *TradeService) Portfolio(ctx context.Context, userID uint) (*PortfolioResult, error) {
	var holdings []domain.Holding
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&holdings).Error; err != nil {
		return nil, err
	}

	var wallet domain.Wallet
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}

	prices, err := s.prices.AllCurrentPrices()
	if err != nil {
		return nil, err
	}

	summary := CalculatePortfolioValue(holdings, prices)
	details := make([]HoldingDetail, 0, len(holdings))
	for _, holding := range holdings {
		if quote, ok := prices[holding.MetalType]; ok {
			details = append(details, CalculateHoldingDetails(holding, quote))
		}
	}

	return &PortfolioResult{
		PortfolioValue:       summary.TotalCurrentValue,
		TotalInvested:        summary.TotalInvested,
		TotalGainLoss:        summary.TotalGainLoss,
		TotalGainLossPercent: summary.TotalGainLossPercent,
		WalletBalance:        wallet.Balance,
		Holdings:             details,
		CurrentPrices:        prices,
	}, nil
}

// notify sends a fire-and-forget transaction notification after commit
func (s *TradeService) notify(ctx context.Context, userID uint, tx *domain.Transaction) {
	if s.notifier == nil {
		return
	}
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Skipping notification, user lookup failed")
		return
	}
	s.notifier.NotifyTransaction(ctx, &user, tx)
}

func (s *TradeService) logSettled(msg string, tx *domain.Transaction) {
	logrus.WithFields(logrus.Fields{
		"user_id":      tx.UserID,
		"type":         tx.Type,
		"total_amount": tx.TotalAmount,
		"timestamp":    time.Now().Format(time.RFC3339),
	}).Info(msg)
}

func (s *TradeService) logFailure(msg string, userID uint, metalType string, amount float64, err error) {
	fields := logrus.Fields{
		"user_id": userID,
		"amount":  amount,
		"error":   err.Error(),
	}
	if metalType != "" {
		fields["metal_type"] = metalType
	}
	logrus.WithFields(fields).Error(msg)
}
