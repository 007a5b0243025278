package models

import "time"

// LedgerAuditReport records one broken link found by the ledger audit.
type LedgerAuditReport struct {
	ID            int       `gorm:"primary_key" json:"_id"`
	UserId        int       `gorm:"index;not null" json:"user"`
	CheckType     string    `gorm:"size:50;index;not null" json:"checkType"` // see workflow check constants
	BalanceId     int       `gorm:"index;not null" json:"balanceId"`
	Details       string    `gorm:"type:text" json:"details"`
	CorrelationId string    `gorm:"size:64;index" json:"correlationId"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
