package reports

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
)

type monthlySum struct {
	Year    int
	Month   int
	Total   models.Money
	Income  models.Money
	Expense models.Money
}

func (s monthlySum) yearMonth() models.YearMonth {
	return models.YearMonth{Year: s.Year, Month: time.Month(s.Month)}
}

func dateRangeParts(start time.Time, end time.Time) []string {
	return []string{start.Format(time.RFC3339), end.Format(time.RFC3339)}
}

func monthlyAmountSums(ctx context.Context, table string, userId int, start time.Time, end time.Time) (map[models.YearMonth]models.Money, error) {
	query := `
		SELECT
			YEAR(created_at) AS year,
			MONTH(created_at) AS month,
			SUM(amount) AS total
		FROM ` + table + `
		WHERE
			user_id = ?
			AND created_at >= ?
			AND created_at <= ?
		GROUP BY
			YEAR(created_at),
			MONTH(created_at)
	`
	var rows []monthlySum
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(query, userId, start, end).Scan(&rows).Error; err != nil {
		return nil, err
	}
	sums := make(map[models.YearMonth]models.Money, len(rows))
	for _, r := range rows {
		sums[r.yearMonth()] = r.Total
	}
	return sums, nil
}

func getMonthlyTotals(ctx context.Context, name string, table string, input models.DateRange) ([]*models.MonthlyTotal, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}
	start, end, err := input.Bounds()
	if err != nil {
		return nil, err
	}
	return cachedReport(ctx, userId, name, func() ([]*models.MonthlyTotal, error) {
		sums, err := monthlyAmountSums(ctx, table, userId, start, end)
		if err != nil {
			return nil, err
		}
		return models.FillMonthlyTotals(models.MonthRange(start, end), sums), nil
	}, dateRangeParts(start, end)...)
}

// GetMonthlyIncome totals incomes per calendar month in the range, zero-filled.
func GetMonthlyIncome(ctx context.Context, input models.DateRange) ([]*models.MonthlyTotal, error) {
	return getMonthlyTotals(ctx, "monthly_income", "incomes", input)
}

// GetMonthlyExpense totals expenses per calendar month in the range, zero-filled.
func GetMonthlyExpense(ctx context.Context, input models.DateRange) ([]*models.MonthlyTotal, error) {
	return getMonthlyTotals(ctx, "monthly_expense", "expenses", input)
}

// GetMonthlyBalance sums snapshot in/out per calendar month; total = income - expense.
func GetMonthlyBalance(ctx context.Context, input models.DateRange) ([]*models.MonthlyBalance, error) {
	userId, err := utils.RequireUserId(ctx)
	if err != nil {
		return nil, err
	}
	start, end, err := input.Bounds()
	if err != nil {
		return nil, err
	}
	return cachedReport(ctx, userId, "monthly_balance", func() ([]*models.MonthlyBalance, error) {
		return monthlyBalance(ctx, userId, start, end)
	}, dateRangeParts(start, end)...)
}

func monthlyBalance(ctx context.Context, userId int, start time.Time, end time.Time) ([]*models.MonthlyBalance, error) {
	query := `
		SELECT
			YEAR(created_at) AS year,
			MONTH(created_at) AS month,
			SUM(amount_in) AS income,
			SUM(amount_out) AS expense
		FROM balances
		WHERE
			user_id = ?
			AND created_at >= ?
			AND created_at <= ?
		GROUP BY
			YEAR(created_at),
			MONTH(created_at)
	`
	var rows []monthlySum
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(query, userId, start, end).Scan(&rows).Error; err != nil {
		return nil, err
	}
	incomes := make(map[models.YearMonth]models.Money, len(rows))
	expenses := make(map[models.YearMonth]models.Money, len(rows))
	for _, r := range rows {
		incomes[r.yearMonth()] = r.Income
		expenses[r.yearMonth()] = r.Expense
	}
	return models.FillMonthlyBalances(models.MonthRange(start, end), incomes, expenses), nil
}
