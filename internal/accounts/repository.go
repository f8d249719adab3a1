package accounts

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/tileduel/internal/models"
)

const saltLength = 4

// Repository stores and verifies player credentials in the Users table
// (name, pass, salt). Passwords are salted MD5 hex digests; the scheme is
// fixed by the existing table contents and client expectations.
type Repository struct {
	db *sql.DB
}

// NewRepository creates an accounts repository over db.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Register creates the credential row for name, or verifies it when the
// name is already taken. Re-registering with the same password succeeds;
// a different password is rejected.
func (r *Repository) Register(ctx context.Context, name, pass string) error {
	var (
		storedPass string
		salt       string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT pass, salt FROM Users WHERE name = $1", name,
	).Scan(&storedPass, &salt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		salt, err = randomSalt()
		if err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
		if _, err := r.db.ExecContext(ctx,
			"INSERT INTO Users (name, pass, salt) VALUES ($1, $2, $3)",
			name, hashPassword(pass, salt), salt,
		); err != nil {
			return fmt.Errorf("failed to create user %s: %w", name, err)
		}
		log.Info().Str("player", name).Msg("registered new user")
		return nil

	case err != nil:
		return fmt.Errorf("failed to look up user %s: %w", name, err)
	}

	if hashPassword(pass, salt) != storedPass {
		return fmt.Errorf("user %s is already registered with a different password", name)
	}
	return nil
}

// VerifyCredentials checks name/pass against the stored credential and
// returns models.ErrAuthMismatch when they do not match.
func (r *Repository) VerifyCredentials(ctx context.Context, name, pass string) error {
	var (
		storedPass string
		salt       string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT pass, salt FROM Users WHERE name = $1", name,
	).Scan(&storedPass, &salt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.ErrAuthMismatch
	case err != nil:
		return fmt.Errorf("failed to look up user %s: %w", name, err)
	}

	if hashPassword(pass, salt) != storedPass {
		return models.ErrAuthMismatch
	}
	return nil
}

func hashPassword(pass, salt string) string {
	sum := md5.Sum([]byte(salt + pass))
	return hex.EncodeToString(sum[:])
}

func randomSalt() (string, error) {
	buf := make([]byte, saltLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
