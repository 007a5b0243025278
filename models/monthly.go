package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/utils"
)

var monthAbbreviations = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type YearMonth struct {
	Year  int
	Month time.Month
}

func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func (ym YearMonth) Next() YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

func (ym YearMonth) Before(o YearMonth) bool {
	return ym.Year < o.Year || (ym.Year == o.Year && ym.Month < o.Month)
}

// MonthLabel formats "Jan 2024" with fixed English abbreviations.
func MonthLabel(ym YearMonth) string {
	return monthAbbreviations[ym.Month-1] + " " + strconv.Itoa(ym.Year)
}

// MonthRange lists every calendar month from start's month through end's
// month. End before start yields an empty list.
func MonthRange(start time.Time, end time.Time) []YearMonth {
	months := make([]YearMonth, 0)
	from := YearMonthOf(start)
	to := YearMonthOf(end)
	for ym := from; !to.Before(ym); ym = ym.Next() {
		months = append(months, ym)
	}
	return months
}

// DateRange is the body of the monthly report endpoints.
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Bounds requires both dates. A date-only end covers the whole day.
func (r DateRange) Bounds() (time.Time, time.Time, error) {
	if strings.TrimSpace(r.StartDate) == "" || strings.TrimSpace(r.EndDate) == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date and end date are required", utils.ErrInvalidRequest)
	}
	start, _, err := utils.ParseDate(r.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s", utils.ErrInvalidRequest, err.Error())
	}
	end, dateOnly, err := utils.ParseDate(r.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s", utils.ErrInvalidRequest, err.Error())
	}
	if dateOnly {
		end = utils.EndOfDay(end)
	}
	return start, end, nil
}

type MonthlyTotal struct {
	Month string `json:"month"`
	Total Money  `json:"total"`
}

type MonthlyBalance struct {
	Month   string `json:"month"`
	Income  Money  `json:"income"`
	Expense Money  `json:"expense"`
	Total   Money  `json:"total"`
}

// FillMonthlyTotals emits one entry per month, zero where sums has none.
func FillMonthlyTotals(months []YearMonth, sums map[YearMonth]Money) []*MonthlyTotal {
	results := make([]*MonthlyTotal, 0, len(months))
	for _, ym := range months {
		total, ok := sums[ym]
		if !ok {
			total = ZeroMoney
		}
		results = append(results, &MonthlyTotal{Month: MonthLabel(ym), Total: total})
	}
	return results
}

// FillMonthlyBalances pairs income and expense per month; total = income - expense.
func FillMonthlyBalances(months []YearMonth, incomes map[YearMonth]Money, expenses map[YearMonth]Money) []*MonthlyBalance {
	results := make([]*MonthlyBalance, 0, len(months))
	for _, ym := range months {
		income := incomes[ym]
		expense := expenses[ym]
		results = append(results, &MonthlyBalance{
			Month:   MonthLabel(ym),
			Income:  income,
			Expense: expense,
			Total:   income.Sub(expense),
		})
	}
	return results
}
