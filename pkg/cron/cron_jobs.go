package cron

import (
	"context"
	"database/sql"
	"time"

	"kudipay/pkg/utils"

	"github.com/robfig/cron/v3"
)

// StartCronJob schedules the stale-transfer audit. External transfers that
// sit pending for more than a day usually mean a lost webhook or an
// ambiguous gateway outcome; the job surfaces them for an operator, it never
// advances a status on its own.
func StartCronJob(db *sql.DB) *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("0 * * * *", func() {
		if err := FlagStalePendingTransfers(db); err != nil {
			utils.Logger.Errorf("Cron job failed to audit pending transfers: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule pending transfer audit: %v", err)
	}

	c.Start()
	utils.Logger.Info("Cron jobs started (pending transfer audit hourly)")
	return c
}

// FlagStalePendingTransfers logs every external transfer pending longer than
// 24 hours so someone reconciles it against the gateway dashboard.
func FlagStalePendingTransfers(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-24 * time.Hour).Format("2006-01-02 15:04:05")

	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, reference, COALESCE(gateway_ref, ''), amount, created_at
		FROM transactions
		WHERE transaction_type = 'external-transfer' AND status = 'pending' AND created_at < ?
	`, cutoff)
	if err != nil {
		return err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			id, userID            int
			reference, gatewayRef string
			amount                string
			createdAt             sql.NullString
		)
		if err := rows.Scan(&id, &userID, &reference, &gatewayRef, &amount, &createdAt); err != nil {
			utils.Logger.Errorf("Failed to scan stale transfer row: %v", err)
			continue
		}
		count++
		utils.Logger.WithField("transaction_id", id).
			WithField("user_id", userID).
			WithField("reference", reference).
			WithField("transfer_code", gatewayRef).
			WithField("amount", amount).
			Warn("external transfer still pending after 24h, reconcile with gateway")
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if count > 0 {
		utils.Logger.Warnf("%d external transfer(s) need manual reconciliation", count)
	}
	return nil
}
