package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Applies the raw-SQL constraints that back the engine's invariants at the
// storage level, on top of what AutoMigrate creates: non-negative balances,
// positive reward costs, no self-referral rows, and the uniqueness rules the
// services rely on when they race.
var statements = []string{
	`ALTER TABLE accounts ADD CONSTRAINT chk_accounts_points_non_negative CHECK (points >= 0)`,
	`ALTER TABLE accounts ADD CONSTRAINT chk_accounts_referrals_non_negative CHECK (referrals >= 0)`,
	`ALTER TABLE referral_edges ADD CONSTRAINT chk_edges_no_self_referral CHECK (referrer_id <> referred_id)`,
	`ALTER TABLE rewards ADD CONSTRAINT chk_rewards_cost_positive CHECK (cost > 0)`,
	`ALTER TABLE rewards ADD CONSTRAINT chk_rewards_stock_floor CHECK (stock >= -1)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_link_events_account_day ON link_issuance_events (account_id, issued_on)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_referral_edges_referred ON referral_edges (referred_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_referral_code ON accounts (referral_code)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_telegram_id ON accounts (telegram_id)`,
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Build connection string
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	// Connect to database
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	log.Println("Connected to database successfully")

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			// Constraints already present on re-runs are fine
			log.Printf("Skipping statement (%v): %s", err, stmt)
			continue
		}
		log.Printf("Applied: %s", stmt)
	}

	log.Println("Constraint migration completed")
}
