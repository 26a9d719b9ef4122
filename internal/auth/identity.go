package auth

import (
	"context"

	"github.com/ticketdesk/ticketd/internal/config"
	"github.com/ticketdesk/ticketd/internal/domain"
	apperrors "github.com/ticketdesk/ticketd/pkg/util/errorutil"
)

// Identity is the (username, role) pair the core needs from authentication.
type Identity struct {
	Username string
	Role     domain.Role
}

// IdentityProvider resolves credentials to an identity. The decision logic
// downstream only ever sees the Identity, so the credential store can be
// swapped without touching the core.
type IdentityProvider interface {
	Authenticate(ctx context.Context, username, password string) (*Identity, error)
}

type staticCredential struct {
	passwordHash string
	role         domain.Role
}

// StaticIdentityProvider is an in-memory provider seeded from configuration.
type StaticIdentityProvider struct {
	credentials map[string]staticCredential
}

// NewStaticIdentityProvider hashes the configured passwords once at startup.
// Accounts with an empty password are not registered.
func NewStaticIdentityProvider(cfg config.AuthConfig) (*StaticIdentityProvider, error) {
	provider := &StaticIdentityProvider{credentials: make(map[string]staticCredential)}

	seed := []struct {
		username string
		password string
		role     domain.Role
	}{
		{cfg.AdminUsername, cfg.AdminPassword, domain.RoleAdmin},
		{cfg.DemoUsername, cfg.DemoUserPassword, domain.RoleUser},
	}

	for _, account := range seed {
		if account.username == "" || account.password == "" {
			continue
		}
		hash, err := HashPassword(account.password, cfg.BcryptCost)
		if err != nil {
			return nil, err
		}
		provider.credentials[account.username] = staticCredential{
			passwordHash: hash,
			role:         account.role,
		}
	}

	return provider, nil
}

// Authenticate checks credentials against the seeded accounts.
func (p *StaticIdentityProvider) Authenticate(_ context.Context, username, password string) (*Identity, error) {
	cred, ok := p.credentials[username]
	if !ok {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := ComparePassword(cred.passwordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return &Identity{Username: username, Role: cred.role}, nil
}
