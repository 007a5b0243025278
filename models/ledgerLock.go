package models

import (
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockUserLedger serializes ledger appends per user inside tx.
// The row lock on users.id is held until tx commits or rolls back, so the
// latest snapshot read after it cannot be raced by another append.
func lockUserLedger(tx *gorm.DB, userId int) error {
	var user User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", userId).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: user %d", utils.ErrUnauthorized, userId)
	}
	return err
}

// latestBalance reads the newest snapshot for userId, nil when the ledger is empty.
func latestBalance(tx *gorm.DB, userId int) (*Balance, error) {
	var balance Balance
	err := tx.Where("user_id = ?", userId).
		Order("created_at DESC").
		Order("id DESC").
		Limit(1).
		Take(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &balance, nil
}
