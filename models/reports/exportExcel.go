package reports

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"github.com/xuri/excelize/v2"
)

const monthlyBalanceSheet = "Monthly Balance"

// ExportMonthlyBalance renders the monthly balance report as an xlsx workbook.
func ExportMonthlyBalance(ctx context.Context, input models.DateRange) (*excelize.File, error) {
	data, err := GetMonthlyBalance(ctx, input)
	if err != nil {
		return nil, err
	}
	return monthlyBalanceWorkbook(data)
}

func monthlyBalanceWorkbook(data []*models.MonthlyBalance) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", monthlyBalanceSheet); err != nil {
		return nil, err
	}

	headers := []interface{}{"Month", "Income", "Expense", "Total"}
	if err := f.SetSheetRow(monthlyBalanceSheet, "A1", &headers); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(monthlyBalanceSheet, "A1", "D1", bold); err != nil {
		return nil, err
	}

	for i, d := range data {
		row := []interface{}{
			d.Month,
			d.Income.Decimal().InexactFloat64(),
			d.Expense.Decimal().InexactFloat64(),
			d.Total.Decimal().InexactFloat64(),
		}
		if err := f.SetSheetRow(monthlyBalanceSheet, "A"+fmt.Sprint(i+2), &row); err != nil {
			return nil, err
		}
	}

	numFmt := "#,##0.00"
	amount, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := f.SetCellStyle(monthlyBalanceSheet, "B2", "D"+fmt.Sprint(len(data)+1), amount); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(monthlyBalanceSheet, "A", "D", 16); err != nil {
		return nil, err
	}
	return f, nil
}
