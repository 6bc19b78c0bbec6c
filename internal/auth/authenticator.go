package auth

import (
	"context"

	"splitledger/internal/models"
)

// Authenticator abstracts the credential mechanism so the service layer
// does not care whether accounts use passwords, passkeys or OAuth.
type Authenticator interface {
	// Register creates a new account with the given email and credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credentials and returns the user on success.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential against the implementation's
	// requirements before it is ever hashed or stored.
	ValidateCredential(credential string) error
}
