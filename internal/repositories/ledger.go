package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"kudipay/internal/models"

	"github.com/google/uuid"
)

// TransactionLedger is the append-only record of every balance-affecting
// operation. Rows are never rewritten after insert except for the status
// column, which only ever leaves "pending".
type TransactionLedger struct {
	db *sql.DB
}

func NewTransactionLedger(db *sql.DB) *TransactionLedger {
	return &TransactionLedger{db: db}
}

func validateRecord(t models.Transaction) error {
	if !t.Amount.IsPositive() {
		return models.ErrInvalidAmount
	}
	if !t.Type.Valid() || !t.Status.Valid() {
		return models.ErrInvalidTransaction
	}
	return nil
}

// Append persists a new transaction in its initial status and returns its id.
// A reference is generated when the client did not supply one.
func (l *TransactionLedger) Append(ctx context.Context, t models.Transaction) (int, error) {
	if err := validateRecord(t); err != nil {
		return 0, err
	}
	if t.Reference == "" {
		t.Reference = uuid.NewString()
	}

	res, err := l.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, transaction_type, amount, status, reference, gateway_ref, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Type, t.Amount, t.Status, t.Reference, nullable(t.GatewayRef), nullableBytes(t.Details), now())
	if err != nil {
		return 0, fmt.Errorf("failed to record transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to record transaction: %w", err)
	}
	return int(id), nil
}

// AppendPair inserts the two legs of an internal transfer in one database
// transaction, so the ledger never shows a debited sender without the
// matching recipient record.
func (l *TransactionLedger) AppendPair(ctx context.Context, a, b models.Transaction) error {
	for _, t := range []models.Transaction{a, b} {
		if err := validateRecord(t); err != nil {
			return err
		}
	}
	if a.Reference == "" {
		a.Reference = uuid.NewString()
	}
	if b.Reference == "" {
		b.Reference = a.Reference
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	for _, t := range []models.Transaction{a, b} {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (user_id, transaction_type, amount, status, reference, gateway_ref, details, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.UserID, t.Type, t.Amount, t.Status, t.Reference, nullable(t.GatewayRef), nullableBytes(t.Details), now())
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record transaction: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to record transactions: %w", err)
	}
	return nil
}

// AdvanceStatus moves the transaction matching the gateway correlation id out
// of pending. The transition and the pending check are one conditional
// UPDATE, which is what makes duplicate and out-of-order webhook deliveries
// safe: a transaction already in a terminal status is left untouched and the
// call reports AlreadyFinal.
func (l *TransactionLedger) AdvanceStatus(ctx context.Context, gatewayRef string, status models.TransactionStatus) (models.AdvanceResult, error) {
	if !status.Valid() {
		return 0, models.ErrInvalidTransaction
	}

	res, err := l.db.ExecContext(ctx,
		"UPDATE transactions SET status = ?, updated_at = ? WHERE gateway_ref = ? AND status = ?",
		status, now(), gatewayRef, models.StatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to advance transaction %s: %w", gatewayRef, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to advance transaction %s: %w", gatewayRef, err)
	}
	if rows > 0 {
		return models.Advanced, nil
	}

	var current models.TransactionStatus
	err = l.db.QueryRowContext(ctx, "SELECT status FROM transactions WHERE gateway_ref = ?", gatewayRef).Scan(&current)
	if err == sql.ErrNoRows {
		return 0, models.ErrTransactionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up transaction %s: %w", gatewayRef, err)
	}
	return models.AlreadyFinal, nil
}

// ListByUser returns the caller's transactions newest-first.
func (l *TransactionLedger) ListByUser(ctx context.Context, userID, page, limit int) ([]models.Transaction, error) {
	offset := (page - 1) * limit
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, user_id, transaction_type, amount, status, reference, COALESCE(gateway_ref, ''), COALESCE(details, ''), created_at, updated_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var details string
		err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Status, &t.Reference, &t.GatewayRef, &details, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if details != "" {
			t.Details = []byte(details)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for user %d: %w", userID, err)
	}
	return transactions, nil
}

// GetByID returns one transaction scoped to its owner.
func (l *TransactionLedger) GetByID(ctx context.Context, id, userID int) (models.Transaction, error) {
	var t models.Transaction
	var details string
	err := l.db.QueryRowContext(ctx, `
		SELECT id, user_id, transaction_type, amount, status, reference, COALESCE(gateway_ref, ''), COALESCE(details, ''), created_at, updated_at
		FROM transactions WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Status, &t.Reference, &t.GatewayRef, &details, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Transaction{}, models.ErrTransactionNotFound
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to fetch transaction %d: %w", id, err)
	}
	if details != "" {
		t.Details = []byte(details)
	}
	return t, nil
}

// GetByGatewayRef returns the transaction holding the gateway correlation id.
func (l *TransactionLedger) GetByGatewayRef(ctx context.Context, gatewayRef string) (models.Transaction, error) {
	var t models.Transaction
	var details string
	err := l.db.QueryRowContext(ctx, `
		SELECT id, user_id, transaction_type, amount, status, reference, COALESCE(gateway_ref, ''), COALESCE(details, ''), created_at, updated_at
		FROM transactions WHERE gateway_ref = ?`, gatewayRef).
		Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Status, &t.Reference, &t.GatewayRef, &details, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Transaction{}, models.ErrTransactionNotFound
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to fetch transaction %s: %w", gatewayRef, err)
	}
	if details != "" {
		t.Details = []byte(details)
	}
	return t, nil
}

// ExistsByReference backs webhook charge dedupe: the gateway redelivers
// events, the ledger must not double-record a funding.
func (l *TransactionLedger) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	var count int
	err := l.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions WHERE reference = ?", reference).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check reference %s: %w", reference, err)
	}
	return count > 0, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
