package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"kudipay/internal/models"
)

// UserStore resolves recipient identities. Identity management itself lives
// in a separate service; this only reads what the orchestrators need.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) FindByAccountNumber(ctx context.Context, accountNumber string) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, first_name, last_name, email, account_number FROM users WHERE account_number = ?",
		accountNumber).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.AccountNumber)
	if err == sql.ErrNoRows {
		return models.User{}, models.ErrRecipientNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to look up account %s: %w", accountNumber, err)
	}
	return u, nil
}

func (s *UserStore) FindByID(ctx context.Context, id int) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, first_name, last_name, email, account_number FROM users WHERE id = ?",
		id).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.AccountNumber)
	if err == sql.ErrNoRows {
		return models.User{}, models.ErrRecipientNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to look up user %d: %w", id, err)
	}
	return u, nil
}
