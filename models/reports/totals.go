package reports

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
)

type TotalBalance struct {
	TotalBalance models.Money `json:"totalBalance"`
}

type TotalIncome struct {
	TotalIncome models.Money `json:"totalIncome"`
}

type TotalExpense struct {
	TotalExpense models.Money `json:"totalExpense"`
}

// GetTotalBalance is the end of the caller's latest snapshot, zero when none.
func GetTotalBalance(ctx context.Context) (*TotalBalance, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}
	return cachedReport(ctx, userId, "total_balance", func() (*TotalBalance, error) {
		balance, err := models.GetLatestBalance(ctx)
		if errors.Is(err, utils.ErrNotFound) {
			return &TotalBalance{TotalBalance: models.ZeroMoney}, nil
		}
		if err != nil {
			return nil, err
		}
		return &TotalBalance{TotalBalance: balance.End}, nil
	})
}

func sumAmount(ctx context.Context, table string, userId int) (models.Money, error) {
	var total models.Money
	db := config.GetDB()
	query := "SELECT COALESCE(SUM(amount), 0) FROM " + table + " WHERE user_id = ?"
	if err := db.WithContext(ctx).Raw(query, userId).Row().Scan(&total); err != nil {
		return models.ZeroMoney, err
	}
	return total, nil
}

// GetTotalIncome sums every income of the caller.
func GetTotalIncome(ctx context.Context) (*TotalIncome, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}
	return cachedReport(ctx, userId, "total_income", func() (*TotalIncome, error) {
		total, err := sumAmount(ctx, "incomes", userId)
		if err != nil {
			return nil, err
		}
		return &TotalIncome{TotalIncome: total}, nil
	})
}

// GetTotalExpense sums every expense of the caller.
func GetTotalExpense(ctx context.Context) (*TotalExpense, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}
	return cachedReport(ctx, userId, "total_expense", func() (*TotalExpense, error) {
		total, err := sumAmount(ctx, "expenses", userId)
		if err != nil {
			return nil, err
		}
		return &TotalExpense{TotalExpense: total}, nil
	})
}
