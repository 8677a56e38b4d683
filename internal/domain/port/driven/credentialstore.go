package driven

import "context"

// CredentialStore defines the driven port for persisting the GitHub token.
// The adapter owns encryption; this interface operates on plaintext at the
// domain boundary.
type CredentialStore interface {
	// Read returns the stored token, or ("", nil) when none is stored.
	Read(ctx context.Context) (string, error)

	// Save stores or replaces the token.
	Save(ctx context.Context, token string) error

	// Delete removes the stored token. Deleting an absent token is not an error.
	Delete(ctx context.Context) error

	// Has reports whether a token is currently stored.
	Has(ctx context.Context) (bool, error)
}
