package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migrations sentencias de esquema, una por string, idempotentes.
// Las columnas *_norm guardan la identidad normalizada (ver domain/matching)
// para que los emparejadores de respaldo resuelvan por índice y no por scan.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id                  TEXT PRIMARY KEY,
		owner_name          TEXT NOT NULL DEFAULT '',
		dog_name            TEXT NOT NULL DEFAULT '',
		phone               TEXT NOT NULL DEFAULT '',
		owner_name_norm     TEXT NOT NULL DEFAULT '',
		dog_name_norm       TEXT NOT NULL DEFAULT '',
		phone_norm          TEXT NOT NULL DEFAULT '',
		balance             BIGINT NOT NULL DEFAULT 0,
		ticket_remaining    INT NOT NULL DEFAULT 0,
		ticket_start        DATE,
		ticket_expiry       DATE,
		is_deposit_exempt   BOOLEAN NOT NULL DEFAULT FALSE,
		last_balance_update TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_dog_phone ON customers(dog_name_norm, phone_norm)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_dog_owner ON customers(dog_name_norm, owner_name_norm)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_ticket_expiry ON customers(ticket_expiry) WHERE ticket_remaining > 0`,

	`CREATE TABLE IF NOT EXISTS transactions (
		id                 TEXT PRIMARY KEY,
		type               TEXT NOT NULL,
		customer_id        TEXT,
		dog_name           TEXT NOT NULL DEFAULT '',
		customer_name      TEXT NOT NULL DEFAULT '',
		phone              TEXT NOT NULL DEFAULT '',
		dog_name_norm      TEXT NOT NULL DEFAULT '',
		customer_name_norm TEXT NOT NULL DEFAULT '',
		phone_norm         TEXT NOT NULL DEFAULT '',
		price              BIGINT NOT NULL DEFAULT 0,
		quantity           INT NOT NULL DEFAULT 0,
		extra_dog_count    INT NOT NULL DEFAULT 0,
		discount_value     BIGINT NOT NULL DEFAULT 0,
		discount_type      TEXT NOT NULL DEFAULT 'amount',
		paid_amount        BIGINT NOT NULL DEFAULT 0,
		category           TEXT NOT NULL DEFAULT 'other',
		hotel_nights       INT,
		hotel_room         TEXT,
		hotel_pickup_notes TEXT,
		grooming_style     TEXT,
		grooming_addons    TEXT[],
		grooming_groomer   TEXT,
		start_date         TIMESTAMPTZ NOT NULL,
		end_date           TIMESTAMPTZ NOT NULL,
		is_completed       BOOLEAN NOT NULL DEFAULT FALSE,
		is_running         BOOLEAN NOT NULL DEFAULT FALSE,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_customer ON transactions(customer_id) WHERE customer_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_dog_phone ON transactions(dog_name_norm, phone_norm)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_dog_owner ON transactions(dog_name_norm, customer_name_norm)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_start_date ON transactions(start_date)`,

	`CREATE TABLE IF NOT EXISTS attendance_logs (
		date         TEXT NOT NULL,
		dog_id       TEXT NOT NULL,
		status       TEXT NOT NULL,
		arrival_time TIMESTAMPTZ,
		pickup_time  TIMESTAMPTZ,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (date, dog_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance_logs(date)`,

	`CREATE TABLE IF NOT EXISTS ticket_logs (
		id             TEXT PRIMARY KEY,
		customer_id    TEXT NOT NULL,
		date           TEXT NOT NULL,
		type           TEXT NOT NULL,
		amount         INT NOT NULL,
		prev_remaining INT NOT NULL,
		new_remaining  INT NOT NULL,
		staff_name     TEXT NOT NULL DEFAULT '',
		reason         TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ticket_logs_customer ON ticket_logs(customer_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS planned_attendance (
		customer_id TEXT NOT NULL,
		date        TEXT NOT NULL,
		PRIMARY KEY (customer_id, date)
	)`,
}

// Migrate aplica el esquema completo. Idempotente; se ejecuta al arrancar.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("aplicar migración: %w", err)
		}
	}
	return nil
}
