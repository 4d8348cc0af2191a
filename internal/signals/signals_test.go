package signals

import (
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = civil.Date{Year: 2025, Month: time.June, Day: 30}

func daysAgo(n int) civil.Date {
	return anchor.AddDays(-n)
}

func expense(id, account, merchant string, amount float64, ago int) domain.Transaction {
	return domain.Transaction{
		TransactionID:   id,
		AccountID:       account,
		Date:            daysAgo(ago),
		Amount:          amount,
		MerchantName:    merchant,
		CategoryPrimary: "GENERAL_MERCHANDISE",
	}
}

func paycheck(id, account string, amount float64, ago int) domain.Transaction {
	return domain.Transaction{
		TransactionID:   id,
		AccountID:       account,
		Date:            daysAgo(ago),
		Amount:          -amount,
		MerchantName:    "Employer Payroll",
		CategoryPrimary: domain.CategoryIncome,
	}
}

func TestDetectSubscriptions_IdenticalAmountsAreRecurring(t *testing.T) {
	txns := []domain.Transaction{
		expense("t1", "acc_001", "Netflix", 15.99, 0),
		expense("t2", "acc_001", "Netflix", 15.99, 30),
		expense("t3", "acc_001", "Netflix", 15.99, 60),
	}

	got := DetectSubscriptions(txns, 90)

	require.Equal(t, 1, got.NumRecurringMerchants)
	assert.Equal(t, []string{"Netflix"}, got.MerchantNames())
	assert.InDelta(t, 15.99, got.MonthlyRecurringSpend, 1e-9)
	assert.InDelta(t, 100.0, got.SubscriptionShare, 1e-9)
	assert.Equal(t, 3, got.RecurringMerchants[0].Count)
	assert.InDelta(t, 15.99, got.RecurringMerchants[0].AverageAmount, 1e-9)
}

func TestDetectSubscriptions_Classification(t *testing.T) {
	tests := []struct {
		name    string
		amounts []float64
		want    bool
	}{
		{"three identical", []float64{9.99, 9.99, 9.99}, true},
		{"small variation", []float64{50, 52, 48, 51}, true},
		{"two charges only", []float64{9.99, 9.99}, false},
		{"high variation", []float64{10, 80, 35}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var txns []domain.Transaction
			for i, a := range tt.amounts {
				txns = append(txns, expense(fmt.Sprintf("t%d", i), "acc_001", "Merchant", a, i*20))
			}
			got := DetectSubscriptions(txns, 90)
			assert.Equal(t, tt.want, got.NumRecurringMerchants == 1)
		})
	}
}

func TestDetectSubscriptions_IgnoresOutOfWindowAndInflows(t *testing.T) {
	txns := []domain.Transaction{
		expense("t1", "acc_001", "Gym", 45, 0),
		expense("t2", "acc_001", "Gym", 45, 30),
		expense("t3", "acc_001", "Gym", 45, 120), // outside 90 days
		{TransactionID: "t4", AccountID: "acc_001", Date: daysAgo(60), Amount: -45, MerchantName: "Gym"},
		expense("t5", "acc_001", "Grocer", 110, 10),
	}

	got := DetectSubscriptions(txns, 90)

	assert.Equal(t, 0, got.NumRecurringMerchants)
	assert.Equal(t, 0.0, got.MonthlyRecurringSpend)
	assert.Equal(t, 0.0, got.SubscriptionShare)
	assert.NotNil(t, got.RecurringMerchants)
}

func TestDetectSubscriptions_ShareOfSpend(t *testing.T) {
	txns := []domain.Transaction{
		expense("t1", "acc_001", "Spotify", 10, 0),
		expense("t2", "acc_001", "Spotify", 10, 30),
		expense("t3", "acc_001", "Spotify", 10, 60),
		expense("t4", "acc_001", "Rent", 270, 5),
	}

	got := DetectSubscriptions(txns, 90)

	assert.InDelta(t, 10.0, got.MonthlyRecurringSpend, 1e-9)
	assert.InDelta(t, 10.0, got.SubscriptionShare, 1e-9)
}

func TestDetectSubscriptions_Empty(t *testing.T) {
	got := DetectSubscriptions(nil, 90)
	assert.Equal(t, SubscriptionSignals{RecurringMerchants: []RecurringMerchant{}}, got)
}

func TestDetectSavingsBehavior(t *testing.T) {
	accounts := []domain.Account{
		{AccountID: "chk", UserID: "u1", Type: domain.AccountTypeChecking, BalanceCurrent: 2000},
		{AccountID: "sav", UserID: "u1", Type: domain.AccountTypeSavings, BalanceCurrent: 6000},
	}
	txns := []domain.Transaction{
		{TransactionID: "d1", AccountID: "sav", Date: daysAgo(0), Amount: -500},
		{TransactionID: "d2", AccountID: "sav", Date: daysAgo(60), Amount: -500},
		{TransactionID: "e1", AccountID: "chk", Date: daysAgo(10), Amount: 1500},
		{TransactionID: "e2", AccountID: "chk", Date: daysAgo(40), Amount: 1500},
		{TransactionID: "e3", AccountID: "chk", Date: daysAgo(200), Amount: 9000}, // outside both windows
	}

	got := DetectSavingsBehavior(txns, accounts, 180)

	assert.InDelta(t, 1000.0, got.NetSavingsInflow, 1e-9)
	assert.InDelta(t, 1000.0/6, got.MonthlySavingsInflow, 1e-9)
	assert.InDelta(t, 6000.0, got.CurrentSavingsBalance, 1e-9)
	assert.InDelta(t, 20.0, got.SavingsGrowthRate, 1e-9) // 6000 / 5000 - 1
	assert.InDelta(t, 1000.0, got.AverageMonthlyExpenses, 1e-9)
	assert.InDelta(t, 6.0, got.EmergencyFundCoverage, 1e-9)
}

func TestDetectSavingsBehavior_NoSavingsAccounts(t *testing.T) {
	accounts := []domain.Account{{AccountID: "chk", Type: domain.AccountTypeChecking, BalanceCurrent: 100}}
	txns := []domain.Transaction{expense("e1", "chk", "Store", 50, 0)}

	assert.Equal(t, SavingsSignals{}, DetectSavingsBehavior(txns, accounts, 180))
}

func TestDetectSavingsBehavior_GuardsNonPositiveStartingBalance(t *testing.T) {
	accounts := []domain.Account{{AccountID: "sav", Type: domain.AccountTypeHSA, BalanceCurrent: 300}}
	txns := []domain.Transaction{{TransactionID: "d1", AccountID: "sav", Date: anchor, Amount: -300}}

	got := DetectSavingsBehavior(txns, accounts, 180)

	assert.Equal(t, 0.0, got.SavingsGrowthRate)
	assert.Equal(t, 0.0, got.EmergencyFundCoverage)
	assert.InDelta(t, 300.0, got.NetSavingsInflow, 1e-9)
}

func TestDetectCreditBehavior(t *testing.T) {
	accounts := []domain.Account{
		{AccountID: "chk", Type: domain.AccountTypeChecking, BalanceCurrent: 5000},
		{AccountID: "card1", Type: domain.AccountTypeCreditCard, BalanceCurrent: 1500, BalanceLimit: domain.Float(5000)},
		{AccountID: "card2", Type: domain.AccountTypeCreditCard, BalanceCurrent: 3500, BalanceLimit: domain.Float(5000)},
	}
	liabilities := []domain.Liability{
		{AccountID: "card1", APRPercentage: 24.99, MinimumPaymentAmount: domain.Float(50), LastPaymentAmount: domain.Float(54)},
		{AccountID: "card2", APRPercentage: 19.99, MinimumPaymentAmount: domain.Float(70), LastPaymentAmount: domain.Float(500), IsOverdue: true},
	}

	got := DetectCreditBehavior(accounts, liabilities)

	assert.True(t, got.HasCreditCard)
	assert.Equal(t, 2, got.NumCreditCards)
	assert.InDelta(t, 70.0, got.MaxUtilization, 1e-9)
	assert.InDelta(t, 50.0, got.AvgUtilization, 1e-9)
	assert.True(t, got.HighUtilizationFlag)
	assert.True(t, got.MediumUtilizationFlag)
	assert.True(t, got.MinimumPaymentOnly)
	assert.True(t, got.HasInterestCharges)
	assert.True(t, got.IsOverdue)
	assert.InDelta(t, 5000.0, got.TotalCreditBalance, 1e-9)
	assert.InDelta(t, 10000.0, got.TotalCreditLimit, 1e-9)
}

func TestDetectCreditBehavior_Thresholds(t *testing.T) {
	tests := []struct {
		name       string
		balance    float64
		wantHigh   bool
		wantMedium bool
	}{
		{"below medium", 1000, false, false},
		{"exactly medium", 1500, false, true},
		{"exactly high", 2500, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := []domain.Account{{AccountID: "card", Type: domain.AccountTypeCreditCard, BalanceCurrent: tt.balance, BalanceLimit: domain.Float(5000)}}
			got := DetectCreditBehavior(accounts, nil)
			assert.Equal(t, tt.wantHigh, got.HighUtilizationFlag)
			assert.Equal(t, tt.wantMedium, got.MediumUtilizationFlag)
			assert.False(t, got.HasInterestCharges)
		})
	}
}

func TestDetectCreditBehavior_NoCardsOrLimits(t *testing.T) {
	assert.Equal(t, CreditSignals{}, DetectCreditBehavior([]domain.Account{{AccountID: "chk", Type: domain.AccountTypeChecking}}, nil))

	accounts := []domain.Account{{AccountID: "card", Type: domain.AccountTypeCreditCard, BalanceCurrent: 300}}
	got := DetectCreditBehavior(accounts, []domain.Liability{{AccountID: "card"}})
	assert.True(t, got.HasCreditCard)
	assert.Equal(t, 0.0, got.MaxUtilization)
	assert.Equal(t, 0.0, got.AvgUtilization)
	assert.False(t, got.MinimumPaymentOnly)
	assert.True(t, got.HasInterestCharges)
}

func TestDetectIncomeStability(t *testing.T) {
	accounts := []domain.Account{{AccountID: "chk", Type: domain.AccountTypeChecking, BalanceCurrent: 1500}}
	txns := []domain.Transaction{
		paycheck("p4", "chk", 2600, 0),
		paycheck("p1", "chk", 2400, 42),
		paycheck("p3", "chk", 2500, 14),
		paycheck("p2", "chk", 2500, 28),
		expense("e1", "chk", "Landlord", 4500, 5),
	}

	got := DetectIncomeStability(txns, accounts, 180)

	require.True(t, got.HasPayroll)
	assert.InDelta(t, 14.0, got.MedianPayGap, 1e-9)
	assert.InDelta(t, 0.0, got.PayVariability, 1e-9)
	assert.InDelta(t, 1.0, got.CashFlowBuffer, 1e-9) // 1500 / (4500 / 3)
	assert.InDelta(t, 2500.0, got.AvgIncomeAmount, 1e-9)
}

func TestDetectIncomeStability_IrregularGaps(t *testing.T) {
	accounts := []domain.Account{{AccountID: "chk", Type: domain.AccountTypeChecking}}
	txns := []domain.Transaction{
		paycheck("p1", "chk", 3000, 150),
		paycheck("p2", "chk", 3000, 90),
		paycheck("p3", "chk", 3000, 0),
	}

	got := DetectIncomeStability(txns, accounts, 180)

	require.True(t, got.HasPayroll)
	assert.InDelta(t, 75.0, got.MedianPayGap, 1e-9) // gaps 60 and 90
	assert.InDelta(t, 15.0, got.PayVariability, 1e-9)
	assert.Equal(t, 0.0, got.CashFlowBuffer)
}

func TestDetectIncomeStability_NoPayroll(t *testing.T) {
	accounts := []domain.Account{
		{AccountID: "chk", Type: domain.AccountTypeChecking},
		{AccountID: "sav", Type: domain.AccountTypeSavings},
	}
	tests := []struct {
		name string
		txns []domain.Transaction
	}{
		{"no transactions", nil},
		{"single paycheck", []domain.Transaction{paycheck("p1", "chk", 3000, 0)}},
		{"income into savings", []domain.Transaction{paycheck("p1", "sav", 3000, 0), paycheck("p2", "sav", 3000, 14)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, IncomeSignals{}, DetectIncomeStability(tt.txns, accounts, 180))
		})
	}
}

func TestDetectBehavioralSignals_ScopesToUser(t *testing.T) {
	accounts := []domain.Account{
		{AccountID: "acc_001", UserID: "user_001", Type: domain.AccountTypeChecking, BalanceCurrent: 5000},
		{AccountID: "acc_002", UserID: "user_001", Type: domain.AccountTypeCreditCard, BalanceCurrent: 1500, BalanceLimit: domain.Float(5000)},
		{AccountID: "acc_999", UserID: "user_002", Type: domain.AccountTypeCreditCard, BalanceCurrent: 4900, BalanceLimit: domain.Float(5000)},
	}
	txns := []domain.Transaction{
		expense("t1", "acc_001", "Netflix", 15.99, 0),
		expense("t2", "acc_001", "Netflix", 15.99, 1),
		expense("t3", "acc_001", "Netflix", 15.99, 2),
		expense("t4", "acc_999", "Hulu", 7.99, 0),
		expense("t5", "acc_999", "Hulu", 7.99, 1),
		expense("t6", "acc_999", "Hulu", 7.99, 2),
	}
	liabilities := []domain.Liability{
		{AccountID: "acc_999", IsOverdue: true},
	}
	at := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	got := DetectBehavioralSignalsAt("user_001", txns, accounts, liabilities, 0, at)

	assert.Equal(t, "user_001", got.UserID)
	assert.Equal(t, DefaultWindowDays, got.WindowDays)
	assert.Equal(t, at, got.DetectedAt)
	assert.Equal(t, []string{"Netflix"}, got.Subscriptions.MerchantNames())
	assert.True(t, got.Credit.HasCreditCard)
	assert.InDelta(t, 30.0, got.Credit.MaxUtilization, 1e-9)
	assert.False(t, got.Credit.IsOverdue)
	assert.False(t, got.Income.HasPayroll)
	assert.Equal(t, SavingsSignals{}, got.Savings)
}

func TestDetectBehavioralSignals_Deterministic(t *testing.T) {
	accounts := []domain.Account{{AccountID: "chk", UserID: "u1", Type: domain.AccountTypeChecking, BalanceCurrent: 900}}
	txns := []domain.Transaction{
		paycheck("p1", "chk", 2000, 0),
		paycheck("p2", "chk", 2000, 15),
		expense("e1", "chk", "Store", 75, 3),
	}
	at := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	first := DetectBehavioralSignalsAt("u1", txns, accounts, nil, 180, at)
	second := DetectBehavioralSignalsAt("u1", txns, accounts, nil, 180, at)

	assert.Equal(t, first, second)
}

func TestMedianAndStdDev(t *testing.T) {
	assert.Equal(t, 0.0, median(nil))
	assert.Equal(t, 3.0, median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 0.0, stdDev(nil))
	assert.InDelta(t, 2.0, stdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
}
