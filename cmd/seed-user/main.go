// seed-user creates a login for local development and, optionally, an
// opening balance snapshot for it.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	  go run ./cmd/seed-user -username demo -email demo@example.com -password secret -opening 1000
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/ledger_backend/config"
	"bitbucket.org/mmdatafocus/ledger_backend/models"
	"bitbucket.org/mmdatafocus/ledger_backend/utils"
)

func main() {
	username := flag.String("username", "demo", "username")
	email := flag.String("email", "demo@example.com", "email")
	password := flag.String("password", "", "password (required)")
	opening := flag.String("opening", "", "opening balance, e.g. 1000.00 (optional)")
	migrate := flag.Bool("migrate", false, "run AutoMigrate first")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "-password is required")
		os.Exit(2)
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if *migrate {
		models.MigrateTable()
	}

	user, err := models.RegisterUser(ctx, &models.NewUser{
		Username: *username,
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		if errors.Is(err, utils.ErrUserExists) {
			fmt.Fprintf(os.Stderr, "user %q or email %q already exists\n", *username, *email)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "failed to create user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created user: id=%d username=%q\n", user.ID, user.Username)

	if *opening == "" {
		return
	}
	balance, err := models.SeedOpeningBalance(ctx, user.ID, models.MoneyFromString(*opening))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed opening balance: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded opening balance: %s (balance id=%d)\n", balance.End, balance.ID)
}
