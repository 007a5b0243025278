package workflow

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	CheckEndMismatch     = "END_MISMATCH"
	CheckChainBreak      = "CHAIN_BREAK"
	CheckReference       = "REFERENCE"
	CheckNegativeBalance = "NEGATIVE_BALANCE"
)

type LedgerMismatch struct {
	BalanceId int    `json:"balanceId"`
	CheckType string `json:"checkType"`
	Details   string `json:"details"`
}

type LedgerAuditResult struct {
	UserId        int               `json:"user"`
	Snapshots     int               `json:"snapshots"`
	Mismatches    []*LedgerMismatch `json:"mismatches"`
	CorrelationId string            `json:"correlationId"`
}

func (r *LedgerAuditResult) Healthy() bool {
	return len(r.Mismatches) == 0
}

// VerifyLedgerChain walks snapshots in ledger order and reports every row
// whose arithmetic, chaining or transaction reference is off.
func VerifyLedgerChain(balances []*models.Balance) []*LedgerMismatch {
	mismatches := make([]*LedgerMismatch, 0)
	add := func(b *models.Balance, check string, format string, args ...any) {
		mismatches = append(mismatches, &LedgerMismatch{
			BalanceId: b.ID,
			CheckType: check,
			Details:   fmt.Sprintf(format, args...),
		})
	}

	var prev *models.Balance
	for _, b := range balances {
		expected := b.Start.Add(b.In).Sub(b.Out).Round2()
		if !expected.Equal(b.End) {
			add(b, CheckEndMismatch, "end %s != start %s + in %s - out %s", b.End, b.Start, b.In, b.Out)
		}

		if prev == nil {
			if !b.Start.IsZero() {
				add(b, CheckChainBreak, "first snapshot starts at %s", b.Start)
			}
		} else if !b.Start.Equal(prev.End) {
			add(b, CheckChainBreak, "start %s != previous end %s (balance %d)", b.Start, prev.End, prev.ID)
		}

		switch {
		case b.IncomeId != nil && b.ExpenseId != nil:
			add(b, CheckReference, "references both income %d and expense %d", *b.IncomeId, *b.ExpenseId)
		case b.IncomeId != nil && !b.Out.IsZero():
			add(b, CheckReference, "income snapshot has out %s", b.Out)
		case b.ExpenseId != nil && !b.In.IsZero():
			add(b, CheckReference, "expense snapshot has in %s", b.In)
		case b.IncomeId == nil && b.ExpenseId == nil && prev != nil:
			add(b, CheckReference, "snapshot without transaction after the opening balance")
		}

		if b.End.Cmp(models.ZeroMoney) < 0 {
			add(b, CheckNegativeBalance, "end %s is negative", b.End)
		}
		prev = b
	}
	return mismatches
}

// AuditLedger verifies one user's snapshot chain. With persist set, every
// mismatch is also written to ledger_audit_reports.
func AuditLedger(ctx context.Context, db *gorm.DB, logger *logrus.Logger, userId int, persist bool) (*LedgerAuditResult, error) {
	correlationId, ok := utils.GetCorrelationIdFromContext(ctx)
	if !ok || correlationId == "" {
		correlationId = uuid.NewString()
	}

	balances, err := models.ListAllBalances(ctx, db, userId)
	if err != nil {
		config.LogError(logger, "ledgerAudit.go", "AuditLedger", "Querying balances", userId, err)
		return nil, err
	}

	result := &LedgerAuditResult{
		UserId:        userId,
		Snapshots:     len(balances),
		Mismatches:    VerifyLedgerChain(balances),
		CorrelationId: correlationId,
	}

	if persist && !result.Healthy() {
		reports := make([]*models.LedgerAuditReport, 0, len(result.Mismatches))
		for _, m := range result.Mismatches {
			reports = append(reports, &models.LedgerAuditReport{
				UserId:        userId,
				CheckType:     m.CheckType,
				BalanceId:     m.BalanceId,
				Details:       m.Details,
				CorrelationId: correlationId,
			})
		}
		if err := db.WithContext(ctx).Create(&reports).Error; err != nil {
			config.LogError(logger, "ledgerAudit.go", "AuditLedger", "Saving audit reports", userId, err)
			return nil, err
		}
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"field":          "LedgerAudit",
			"user_id":        userId,
			"snapshots":      result.Snapshots,
			"mismatches":     len(result.Mismatches),
			"correlation_id": correlationId,
		}).Info("ledger audit completed")
	}
	return result, nil
}

// AuditAllLedgers audits every user that has at least one snapshot.
func AuditAllLedgers(ctx context.Context, db *gorm.DB, logger *logrus.Logger, persist bool) ([]*LedgerAuditResult, error) {
	ctx = utils.SetSkipUserScopeInContext(ctx, true)

	var userIds []int
	if err := db.WithContext(ctx).Model(&models.Balance{}).Distinct("user_id").Order("user_id").Pluck("user_id", &userIds).Error; err != nil {
		config.LogError(logger, "ledgerAudit.go", "AuditAllLedgers", "Querying ledger owners", nil, err)
		return nil, err
	}

	results := make([]*LedgerAuditResult, 0, len(userIds))
	for _, userId := range userIds {
		result, err := AuditLedger(ctx, db, logger, userId, persist)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}
