package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ericfisherdev/pulldeck/internal/domain/port/driven"
)

// ErrEncryptionKeyNotSet is returned by credential operations when no
// encryption key was configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set PULLDECK_SECRET_KEY")

// tokenName is the row key for the single stored GitHub token.
const tokenName = "github_token"

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port.
// The token is encrypted with AES-256-GCM before write and decrypted after
// read.
type CredentialRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil when encryption is disabled.
}

// NewCredentialRepo creates a new CredentialRepo. key must be 32 bytes for
// AES-256-GCM, or nil to disable credential storage (all operations will
// return ErrEncryptionKeyNotSet).
func NewCredentialRepo(db *DB, key []byte) *CredentialRepo {
	return &CredentialRepo{db: db, key: key}
}

// Read returns the stored token, or ("", nil) when none is stored.
func (r *CredentialRepo) Read(ctx context.Context) (string, error) {
	if r.key == nil {
		return "", ErrEncryptionKeyNotSet
	}

	const query = `SELECT value FROM credentials WHERE name = ?`
	var encrypted string
	err := r.db.Reader.QueryRowContext(ctx, query, tokenName).Scan(&encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}

	plaintext, err := r.decrypt(encrypted)
	if err != nil {
		return "", fmt.Errorf("decrypt token: %w", err)
	}
	return plaintext, nil
}

// Save stores or replaces the token.
func (r *CredentialRepo) Save(ctx context.Context, token string) error {
	encrypted, err := r.encrypt(token)
	if err != nil {
		return err
	}

	const query = `INSERT OR REPLACE INTO credentials (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`
	if _, err := r.db.Writer.ExecContext(ctx, query, tokenName, encrypted); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Delete removes the stored token. Deleting an absent token is not an error.
func (r *CredentialRepo) Delete(ctx context.Context) error {
	const query = `DELETE FROM credentials WHERE name = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, tokenName); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// Has reports whether a token is currently stored.
func (r *CredentialRepo) Has(ctx context.Context) (bool, error) {
	const query = `SELECT COUNT(*) FROM credentials WHERE name = ?`
	var count int
	if err := r.db.Reader.QueryRowContext(ctx, query, tokenName).Scan(&count); err != nil {
		return false, fmt.Errorf("check token: %w", err)
	}
	return count > 0, nil
}

// encrypt seals plaintext with AES-256-GCM and encodes nonce+ciphertext as
// base64.
func (r *CredentialRepo) encrypt(plaintext string) (string, error) {
	if r.key == nil {
		return "", ErrEncryptionKeyNotSet
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create gcm: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// decrypt reverses encrypt.
func (r *CredentialRepo) decrypt(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create gcm: %w", err)
	}

	if len(sealed) < gcm.NonceSize() {
		return "", errors.New("ciphertext shorter than nonce")
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}

	return string(plaintext), nil
}
