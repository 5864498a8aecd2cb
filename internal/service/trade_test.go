package service

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"metals_trading/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fixedSource pins rand.Float64 to 0.5 so every quote lands exactly on the
// base price, making settlement amounts exact
type fixedSource struct{}

func (fixedSource) Int63() int64 { return 1 << 62 }
func (fixedSource) Seed(int64)   {}

// recordingNotifier captures notifications for assertions
type recordingNotifier struct {
	transactions []domain.Transaction
}

func (n *recordingNotifier) NotifyTransaction(_ context.Context, _ *domain.User, tx *domain.Transaction) {
	n.transactions = append(n.transactions, *tx)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.KYCDocument{},
		&domain.Wallet{},
		&domain.Holding{},
		&domain.Transaction{},
		&domain.PriceHistory{},
	))
	return db
}

// fixedPriceService returns an oracle that always quotes exactly the given
// base prices
func fixedPriceService(gold, silver float64) *PriceService {
	return NewPriceService(map[string]float64{
		domain.MetalGold:   gold,
		domain.MetalSilver: silver,
	}, rand.New(fixedSource{}))
}

func seedUserWithWallet(t *testing.T, db *gorm.DB, balance float64) uint {
	t.Helper()
	user := domain.User{FullName: "Asha Rao", Email: "asha@example.com", Password: "hashed"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&domain.Wallet{UserID: user.ID, Balance: balance}).Error)
	return user.ID
}

func walletBalance(t *testing.T, db *gorm.DB, userID uint) float64 {
	t.Helper()
	var wallet domain.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&wallet).Error)
	return wallet.Balance
}

func TestBuyByAmount(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 1000)
	notifier := &recordingNotifier{}
	svc := NewTradeService(db, fixedPriceService(6400, 85), notifier)

	result, err := svc.Buy(context.Background(), userID, domain.MetalGold, 500, 0)
	require.NoError(t, err)

	assert.InDelta(t, 500.0, result.WalletBalance, 1e-9)
	assert.InDelta(t, 0.078125, result.Holding.WeightInGrams, 1e-9) // 500 / 6400
	assert.InDelta(t, 500.0, result.Holding.TotalInvestedAmount, 1e-9)
	assert.InDelta(t, 6400.0, result.Holding.AveragePurchasePrice, 1e-9)
	assert.Equal(t, domain.TxBuyGold, result.Transaction.Type)
	assert.Equal(t, domain.StatusCompleted, result.Transaction.Status)

	assert.InDelta(t, 500.0, walletBalance(t, db, userID), 1e-9)
	require.Len(t, notifier.transactions, 1)
	assert.Equal(t, domain.TxBuyGold, notifier.transactions[0].Type)
}

func TestBuyByWeight(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 1000)
	svc := NewTradeService(db, fixedPriceService(6400, 85), nil)

	result, err := svc.Buy(context.Background(), userID, domain.MetalSilver, 0, 5)
	require.NoError(t, err)

	assert.InDelta(t, 425.0, result.Transaction.TotalAmount, 1e-9) // 5 * 85
	assert.InDelta(t, 575.0, result.WalletBalance, 1e-9)
	assert.InDelta(t, 5.0, result.Holding.WeightInGrams, 1e-9)
	assert.Equal(t, "999", result.Holding.Purity)
}

func TestBuyAmountWinsWhenBothSupplied(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 1000)
	svc := NewTradeService(db, fixedPriceService(6400, 85), nil)

	// Weight is derived from the amount, the supplied weight is ignored
	result, err := svc.Buy(context.Background(), userID, domain.MetalGold, 640, 99)
	require.NoError(t, err)

	assert.InDelta(t, 640.0, result.Transaction.TotalAmount, 1e-9)
	assert.InDelta(t, 0.1, result.Holding.WeightInGrams, 1e-9)
}

func TestBuyWeightedAverageCostBasis(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 10000)

	// First buy at 6000/g, second at 6600/g
	first := NewTradeService(db, fixedPriceService(6000, 85), nil)
	_, err := first.Buy(context.Background(), userID, domain.MetalGold, 0, 1)
	require.NoError(t, err)

	second := NewTradeService(db, fixedPriceService(6600, 85), nil)
	result, err := second.Buy(context.Background(), userID, domain.MetalGold, 0, 2)
	require.NoError(t, err)

	// (1*6000 + 2*6600) / 3
	assert.InDelta(t, 6400.0, result.Holding.AveragePurchasePrice, 1e-9)
	assert.InDelta(t, 3.0, result.Holding.WeightInGrams, 1e-9)
	assert.InDelta(t, 19200.0, result.Holding.TotalInvestedAmount, 1e-9)

	// Only one holding row exists for the pair
	var count int64
	require.NoError(t, db.Model(&domain.Holding{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestBuyInsufficientBalance(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 100)
	svc := NewTradeService(db, fixedPriceService(6400, 85), nil)

	_, err := svc.Buy(context.Background(), userID, domain.MetalGold, 500, 0)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Nothing partially persisted
	assert.InDelta(t, 100.0, walletBalance(t, db, userID), 1e-9)
	var count int64
	require.NoError(t, db.Model(&domain.Transaction{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestBuyWalletNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTradeService(db, fixedPriceService(6400, 85), nil)

	_, err := svc.Buy(context.Background(), 42, domain.MetalGold, 500, 0)
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestBuyInvalidMetal(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 1000)
	svc := NewTradeService(db, fixedPriceService(6400, 85), nil)

	_, err := svc.Buy(context.Background(), userID, "platinum", 500, 0)
	assert.ErrorIs(t, err, ErrInvalidMetalType)
}

func TestBuyMissingInput(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 1000)
	svc := NewTradeService(db, fixedPriceService(6400, 85), nil)

	_, err := svc.Buy(context.Background(), userID, domain.MetalGold, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSellPartial(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 1000)

	// Acquire 0.078125g at 6400/g for 500 rupees
	buySvc := NewTradeService(db, fixedPriceService(6400, 85), nil)
	_, err := buySvc.Buy(context.Background(), userID, domain.MetalGold, 500, 0)
	require.NoError(t, err)

	// Sell 0.05g at 6500/g
	sellSvc := NewTradeService(db, fixedPriceService(6500, 85), nil)
	result, err := sellSvc.Sell(context.Background(), userID, domain.MetalGold, 0.05)
	require.NoError(t, err)

	assert.InDelta(t, 325.0, result.Transaction.TotalAmount, 1e-9) // 0.05 * 6500
	assert.InDelta(t, 825.0, result.WalletBalance, 1e-9)           // 500 + 325

	require.NotNil(t, result.Holding)
	assert.InDelta(t, 0.028125, result.Holding.WeightInGrams, 1e-9)
	// Invested amount shrinks by the sold proportion: 500 * (0.05/0.078125) = 320
	assert.InDelta(t, 180.0, result.Holding.TotalInvestedAmount, 1e-9)
}

func TestSellAllDeletesHolding(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 1000)
	svc := NewTradeService(db, fixedPriceService(6400, 85), nil)

	_, err := svc.Buy(context.Background(), userID, domain.MetalGold, 500, 0)
	require.NoError(t, err)

	result, err := svc.Sell(context.Background(), userID, domain.MetalGold, 0.078125)
	require.NoError(t, err)

	assert.Nil(t, result.Holding)
	var count int64
	require.NoError(t, db.Model(&domain.Holding{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestBuySellRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 1000)
	svc := NewTradeService(db, fixedPriceService(6400, 85), nil)

	buy, err := svc.Buy(context.Background(), userID, domain.MetalGold, 500, 0)
	require.NoError(t, err)

	// Same fixed price on both legs, so the balance returns exactly
	_, err = svc.Sell(context.Background(), userID, domain.MetalGold, buy.Holding.WeightInGrams)
	require.NoError(t, err)

	assert.InDelta(t, 1000.0, walletBalance(t, db, userID), 1e-9)
}

func TestSellInsufficientQuantity(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 1000)
	svc := NewTradeService(db, fixedPriceService(6400, 85), nil)

	_, err := svc.Buy(context.Background(), userID, domain.MetalGold, 500, 0)
	require.NoError(t, err)

	_, err = svc.Sell(context.Background(), userID, domain.MetalGold, 1)
	assert.ErrorIs(t, err, ErrInsufficientQuantity)

	// Wallet and holding untouched
	assert.InDelta(t, 500.0, walletBalance(t, db, userID), 1e-9)
	var holding domain.Holding
	require.NoError(t, db.Where("user_id = ?", userID).First(&holding).Error)
	assert.InDelta(t, 0.078125, holding.WeightInGrams, 1e-9)
}

func TestSellNoHolding(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 1000)
	svc := NewTradeService(db, fixedPriceService(6400, 85), nil)

	_, err := svc.Sell(context.Background(), userID, domain.MetalSilver, 1)
	assert.ErrorIs(t, err, ErrHoldingNotFound)
}

func TestSellInvalidWeight(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 1000)
	svc := NewTradeService(db, fixedPriceService(6400, 85), nil)

	_, err := svc.Sell(context.Background(), userID, domain.MetalGold, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Sell(context.Background(), userID, domain.MetalGold, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDepositAndWithdraw(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 0)
	svc := NewTradeService(db, fixedPriceService(6400, 85), nil)

	deposited, err := svc.Deposit(context.Background(), userID, 1000)
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, deposited.Balance, 1e-9)
	assert.Equal(t, domain.TxDeposit, deposited.Transaction.Type)

	withdrawn, err := svc.Withdraw(context.Background(), userID, 400)
	require.NoError(t, err)
	assert.InDelta(t, 600.0, withdrawn.Balance, 1e-9)
	assert.Equal(t, domain.TxWithdrawal, withdrawn.Transaction.Type)
}

func TestWithdrawMoreThanBalance(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 100)
	svc := NewTradeService(db, fixedPriceService(6400, 85), nil)

	_, err := svc.Withdraw(context.Background(), userID, 500)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Wallet unchanged, no transaction appended
	assert.InDelta(t, 100.0, walletBalance(t, db, userID), 1e-9)
	var count int64
	require.NoError(t, db.Model(&domain.Transaction{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestDepositInvalidAmount(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 100)
	svc := NewTradeService(db, fixedPriceService(6400, 85), nil)

	_, err := svc.Deposit(context.Background(), userID, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.Withdraw(context.Background(), userID, -5)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestPortfolio(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 2000)
	svc := NewTradeService(db, fixedPriceService(6400, 80), nil)

	_, err := svc.Buy(context.Background(), userID, domain.MetalGold, 640, 0) // 0.1g
	require.NoError(t, err)
	_, err = svc.Buy(context.Background(), userID, domain.MetalSilver, 0, 10) // 800
	require.NoError(t, err)

	portfolio, err := svc.Portfolio(context.Background(), userID)
	require.NoError(t, err)

	// Price is pinned, so current value equals invested value
	assert.InDelta(t, 1440.0, portfolio.PortfolioValue, 1e-9)
	assert.InDelta(t, 1440.0, portfolio.TotalInvested, 1e-9)
	assert.InDelta(t, 0.0, portfolio.TotalGainLoss, 1e-9)
	assert.InDelta(t, 560.0, portfolio.WalletBalance, 1e-9)
	assert.Len(t, portfolio.Holdings, 2)
	assert.Len(t, portfolio.CurrentPrices, 2)
}

func TestPortfolioEmptyHoldings(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 50)
	svc := NewTradeService(db, fixedPriceService(6400, 85), nil)

	portfolio, err := svc.Portfolio(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 0.0, portfolio.TotalGainLossPercent)
	assert.InDelta(t, 50.0, portfolio.WalletBalance, 1e-9)
	assert.Empty(t, portfolio.Holdings)
}

func TestTransactionsAreAppendOnly(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUserWithWallet(t, db, 1000)
	svc := NewTradeService(db, fixedPriceService(6400, 85), nil)

	_, err := svc.Buy(context.Background(), userID, domain.MetalGold, 500, 0)
	require.NoError(t, err)
	_, err = svc.Sell(context.Background(), userID, domain.MetalGold, 0.05)
	require.NoError(t, err)
	_, err = svc.Deposit(context.Background(), userID, 10)
	require.NoError(t, err)

	var transactions []domain.Transaction
	require.NoError(t, db.Where("user_id = ?", userID).Order("id asc").Find(&transactions).Error)
	require.Len(t, transactions, 3)
	assert.Equal(t, domain.TxBuyGold, transactions[0].Type)
	assert.Equal(t, domain.TxSellGold, transactions[1].Type)
	assert.Equal(t, domain.TxDeposit, transactions[2].Type)
}
