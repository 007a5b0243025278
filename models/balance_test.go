package models

import (
	"testing"

	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotWithEnd(end string) *Balance {
	return &Balance{ID: 1, UserId: 7, End: MoneyFromString(end)}
}

func TestNextSnapshotFirstIncome(t *testing.T) {
	next, err := NextSnapshot(nil, LedgerEntry{
		Kind:   LedgerEntryKindIncome,
		UserId: 7,
		Id:     11,
		Amount: MoneyFromString("1000.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, 7, next.UserId)
	assert.Equal(t, "0.00", next.Start.String())
	assert.Equal(t, "1000.00", next.In.String())
	assert.Equal(t, "0.00", next.Out.String())
	assert.Equal(t, "1000.00", next.End.String())
	require.NotNil(t, next.IncomeId)
	assert.Equal(t, 11, *next.IncomeId)
	assert.Nil(t, next.ExpenseId)
}

func TestNextSnapshotRejectsUnknownKind(t *testing.T) {
	next, err := NextSnapshot(snapshotWithEnd("100.00"), LedgerEntry{
		Kind:   LedgerEntryKind("refund"),
		UserId: 7,
		Id:     3,
		Amount: MoneyFromString("5.00"),
	})
	assert.Nil(t, next)
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)
	assert.Contains(t, err.Error(), "unknown ledger entry kind")
}

func TestNextSnapshotIncomeChainsFromPrior(t *testing.T) {
	next, err := NextSnapshot(snapshotWithEnd("250.25"), LedgerEntry{
		Kind:   LedgerEntryKindIncome,
		UserId: 7,
		Id:     12,
		Amount: MoneyFromString("0.75"),
	})
	require.NoError(t, err)
	assert.Equal(t, "250.25", next.Start.String())
	assert.Equal(t, "251.00", next.End.String())
}

func TestNextSnapshotExpense(t *testing.T) {
	t.Setenv("ALLOW_FULL_BALANCE_SPEND", "")

	next, err := NextSnapshot(snapshotWithEnd("1000.00"), LedgerEntry{
		Kind:   LedgerEntryKindExpense,
		UserId: 7,
		Id:     21,
		Amount: MoneyFromString("999.99"),
	})
	require.NoError(t, err)
	assert.Equal(t, "1000.00", next.Start.String())
	assert.Equal(t, "0.00", next.In.String())
	assert.Equal(t, "999.99", next.Out.String())
	assert.Equal(t, "0.01", next.End.String())
	require.NotNil(t, next.ExpenseId)
	assert.Equal(t, 21, *next.ExpenseId)
	assert.Nil(t, next.IncomeId)
}

func TestNextSnapshotExpenseRejections(t *testing.T) {
	t.Setenv("ALLOW_FULL_BALANCE_SPEND", "")

	tests := []struct {
		name   string
		prior  *Balance
		amount string
	}{
		{name: "no prior snapshot", prior: nil, amount: "1.00"},
		{name: "equal to balance", prior: snapshotWithEnd("1000.00"), amount: "1000.00"},
		{name: "above balance", prior: snapshotWithEnd("10.00"), amount: "10.01"},
		{name: "empty balance", prior: snapshotWithEnd("0.00"), amount: "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := NextSnapshot(tt.prior, LedgerEntry{
				Kind:   LedgerEntryKindExpense,
				UserId: 7,
				Id:     1,
				Amount: MoneyFromString(tt.amount),
			})
			assert.Nil(t, next)
			assert.ErrorIs(t, err, utils.ErrInsufficientFunds)
		})
	}
}

func TestNextSnapshotFullSpendFlag(t *testing.T) {
	t.Setenv("ALLOW_FULL_BALANCE_SPEND", "true")

	next, err := NextSnapshot(snapshotWithEnd("1000.00"), LedgerEntry{
		Kind:   LedgerEntryKindExpense,
		UserId: 7,
		Id:     3,
		Amount: MoneyFromString("1000.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.00", next.End.String())

	_, err = NextSnapshot(snapshotWithEnd("1000.00"), LedgerEntry{
		Kind:   LedgerEntryKindExpense,
		UserId: 7,
		Id:     4,
		Amount: MoneyFromString("1000.01"),
	})
	assert.ErrorIs(t, err, utils.ErrInsufficientFunds)
}

func TestNextSnapshotOpening(t *testing.T) {
	next, err := NextSnapshot(nil, LedgerEntry{Kind: LedgerEntryKindOpening, UserId: 7, Amount: MoneyFromString("50")})
	require.NoError(t, err)
	assert.Nil(t, next.IncomeId)
	assert.Nil(t, next.ExpenseId)
	assert.Equal(t, "50.00", next.End.String())

	_, err = NextSnapshot(snapshotWithEnd("1.00"), LedgerEntry{Kind: LedgerEntryKindOpening, UserId: 7, Amount: MoneyFromString("50")})
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)
}

func TestNextSnapshotUnknownKind(t *testing.T) {
	_, err := NextSnapshot(nil, LedgerEntry{Kind: "Transfer", UserId: 7, Amount: MoneyFromString("1")})
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)
}

func TestBalanceResponseResolvesReferences(t *testing.T) {
	incomeId := 5
	b := &Balance{ID: 1, IncomeId: &incomeId, Income: &Income{ID: 5, Source: "Salary"}}
	resp := b.Response()
	require.NotNil(t, resp.Income)
	assert.Equal(t, "Salary", *resp.Income)
	assert.Nil(t, resp.Expense)

	opening := (&Balance{ID: 2}).Response()
	assert.Nil(t, opening.Income)
	assert.Nil(t, opening.Expense)
}

func TestNewIncomeValidate(t *testing.T) {
	input := NewIncome{Source: "  Salary ", Amount: MoneyFromString("10.005")}
	require.NoError(t, input.validate())
	assert.Equal(t, "Salary", input.Source)
	assert.Equal(t, "10.01", input.Amount.Decimal().String())

	assert.ErrorIs(t, (&NewIncome{Source: " ", Amount: NewMoney(1)}).validate(), utils.ErrInvalidRequest)
	assert.ErrorIs(t, (&NewIncome{Source: "Gift", Amount: NewMoney(0)}).validate(), utils.ErrInvalidRequest)
	assert.ErrorIs(t, (&NewIncome{Source: "Gift", Amount: NewMoney(-5)}).validate(), utils.ErrInvalidRequest)
}

func TestNewExpenseValidate(t *testing.T) {
	input := NewExpense{Tag: " Food ", Description: " lunch ", Amount: MoneyFromString("12")}
	require.NoError(t, input.validate())
	assert.Equal(t, "Food", input.Tag)
	assert.Equal(t, "lunch", input.Description)

	assert.ErrorIs(t, (&NewExpense{Tag: "", Description: "lunch", Amount: NewMoney(1)}).validate(), utils.ErrInvalidRequest)
	assert.ErrorIs(t, (&NewExpense{Tag: "Food", Description: "lunch", Amount: NewMoney("x")}).validate(), utils.ErrInvalidRequest)

	err := (&NewExpense{Tag: "Food", Description: "   ", Amount: NewMoney(5)}).validate()
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)
	assert.Contains(t, err.Error(), "description is required")
}

func TestNewIncomeValidateRejectsExtremeExponent(t *testing.T) {
	input := NewIncome{Source: "Salary", Amount: MoneyFromString("1e-50000000")}
	err := input.validate()
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)
	assert.Contains(t, err.Error(), "amount must be greater than zero")
}
