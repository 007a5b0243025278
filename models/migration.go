package models

import (
	"log"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&Income{}, &Expense{},
		&Balance{},
		&LedgerAuditReport{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
