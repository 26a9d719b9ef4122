package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketdesk/ticketd/internal/config"
	"github.com/ticketdesk/ticketd/internal/domain"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		BcryptCost:       4, // keep the test fast
		AdminUsername:    "admin",
		AdminPassword:    "admin123",
		DemoUsername:     "user1",
		DemoUserPassword: "user123",
	}
}

func TestStaticProviderAuthenticate(t *testing.T) {
	provider, err := NewStaticIdentityProvider(testAuthConfig())
	require.NoError(t, err)

	identity, err := provider.Authenticate(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, identity.Role)

	identity, err = provider.Authenticate(context.Background(), "user1", "user123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, identity.Role)
}

func TestStaticProviderRejectsBadCredentials(t *testing.T) {
	provider, err := NewStaticIdentityProvider(testAuthConfig())
	require.NoError(t, err)

	_, err = provider.Authenticate(context.Background(), "admin", "wrong")
	assert.Error(t, err)

	_, err = provider.Authenticate(context.Background(), "nobody", "admin123")
	assert.Error(t, err)
}

func TestStaticProviderSkipsAccountsWithoutPassword(t *testing.T) {
	cfg := testAuthConfig()
	cfg.DemoUserPassword = ""
	provider, err := NewStaticIdentityProvider(cfg)
	require.NoError(t, err)

	_, err = provider.Authenticate(context.Background(), "user1", "")
	assert.Error(t, err)
}
