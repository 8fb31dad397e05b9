package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"kudipay/internal/models"
	"time"

	"github.com/shopspring/decimal"
)

// WalletStore owns the per-user balances. Every mutation goes through a
// conditional UPDATE or an upsert so that concurrent callers on the same
// wallet serialize on the row lock instead of racing a read-then-write.
type WalletStore struct {
	db *sql.DB
}

func NewWalletStore(db *sql.DB) *WalletStore {
	return &WalletStore{db: db}
}

// Balance returns 0 for a wallet that has never been funded.
func (s *WalletStore) Balance(ctx context.Context, userID int) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.db.QueryRowContext(ctx, "SELECT balance FROM wallets WHERE user_id = ?", userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read balance for user %d: %w", userID, err)
	}
	return balance, nil
}

// Credit increases the balance, creating the wallet on first funding, and
// returns the new balance.
func (s *WalletStore) Credit(ctx context.Context, userID int, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, models.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to start transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance, updated_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE balance = balance + VALUES(balance), updated_at = VALUES(updated_at)`,
		userID, amount, now())
	if err != nil {
		tx.Rollback()
		return decimal.Zero, fmt.Errorf("failed to credit wallet for user %d: %w", userID, err)
	}

	var balance decimal.Decimal
	if err := tx.QueryRowContext(ctx, "SELECT balance FROM wallets WHERE user_id = ?", userID).Scan(&balance); err != nil {
		tx.Rollback()
		return decimal.Zero, fmt.Errorf("failed to read balance for user %d: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit credit: %w", err)
	}
	return balance, nil
}

// Debit decreases the balance only when it covers the amount. The balance
// check and the write are one conditional statement, so two debits racing on
// the same wallet can never both pass against a stale balance.
func (s *WalletStore) Debit(ctx context.Context, userID int, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, models.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to start transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE wallets SET balance = balance - ?, updated_at = ? WHERE user_id = ? AND balance >= ?",
		amount, now(), userID, amount)
	if err != nil {
		tx.Rollback()
		return decimal.Zero, fmt.Errorf("failed to debit wallet for user %d: %w", userID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return decimal.Zero, fmt.Errorf("failed to debit wallet for user %d: %w", userID, err)
	}
	if rows == 0 {
		tx.Rollback()
		return decimal.Zero, models.ErrInsufficientFunds
	}

	var balance decimal.Decimal
	if err := tx.QueryRowContext(ctx, "SELECT balance FROM wallets WHERE user_id = ?", userID).Scan(&balance); err != nil {
		tx.Rollback()
		return decimal.Zero, fmt.Errorf("failed to read balance for user %d: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit debit: %w", err)
	}
	return balance, nil
}

// TransferBalance moves amount between two wallets in a single database
// transaction. Rows are locked in ascending user id order so two transfers
// crossing each other (A->B and B->A) cannot deadlock. The recipient wallet
// is created on the fly when missing.
func (s *WalletStore) TransferBalance(ctx context.Context, fromID, toID int, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, models.ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to start transaction: %w", err)
	}

	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}
	for _, id := range []int{first, second} {
		var locked decimal.Decimal
		err := tx.QueryRowContext(ctx, "SELECT balance FROM wallets WHERE user_id = ? FOR UPDATE", id).Scan(&locked)
		if err != nil && err != sql.ErrNoRows {
			tx.Rollback()
			return decimal.Zero, fmt.Errorf("failed to lock wallet for user %d: %w", id, err)
		}
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE wallets SET balance = balance - ?, updated_at = ? WHERE user_id = ? AND balance >= ?",
		amount, now(), fromID, amount)
	if err != nil {
		tx.Rollback()
		return decimal.Zero, fmt.Errorf("failed to debit wallet for user %d: %w", fromID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return decimal.Zero, fmt.Errorf("failed to debit wallet for user %d: %w", fromID, err)
	}
	if rows == 0 {
		tx.Rollback()
		return decimal.Zero, models.ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance, updated_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE balance = balance + VALUES(balance), updated_at = VALUES(updated_at)`,
		toID, amount, now())
	if err != nil {
		tx.Rollback()
		return decimal.Zero, fmt.Errorf("failed to credit wallet for user %d: %w", toID, err)
	}

	var senderBalance decimal.Decimal
	if err := tx.QueryRowContext(ctx, "SELECT balance FROM wallets WHERE user_id = ?", fromID).Scan(&senderBalance); err != nil {
		tx.Rollback()
		return decimal.Zero, fmt.Errorf("failed to read balance for user %d: %w", fromID, err)
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit transfer: %w", err)
	}
	return senderBalance, nil
}

func now() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}
