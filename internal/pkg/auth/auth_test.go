// internal/pkg/auth/auth_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/seller-dashboard-backend/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "test"},
		JWT: config.JWTConfig{
			Secret:            "0123456789abcdef0123456789abcdef",
			AccessTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
}

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager(testConfig())

	token, err := manager.GenerateToken(7, 42, "ops@example.com")
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, uint(7), claims.SellerID)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ops@example.com", claims.Email)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	manager := NewJWTManager(testConfig())
	token, err := manager.GenerateToken(7, 42, "ops@example.com")
	require.NoError(t, err)

	other := testConfig()
	other.JWT.Secret = "ffffffffffffffffffffffffffffffff"
	_, err = NewJWTManager(other).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTRejectsMissingSellerClaim(t *testing.T) {
	manager := NewJWTManager(testConfig())
	token, err := manager.GenerateToken(0, 42, "ops@example.com")
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.Error(t, err)
}

func TestAPIKeyRoundTrip(t *testing.T) {
	manager := NewAPIKeyManager(testConfig())

	key, hash, err := manager.GenerateKey()
	require.NoError(t, err)
	assert.Regexp(t, `^sk_[0-9a-f]{32}$`, key)
	assert.NotEqual(t, key, hash)

	assert.NoError(t, manager.VerifyKey(key, hash))
	assert.Error(t, manager.VerifyKey("sk_"+key[3:31]+"0", hash))
	assert.Error(t, manager.VerifyKey("not-a-key", hash))
}

func TestAPIKeyAuthenticate(t *testing.T) {
	issuer := NewAPIKeyManager(testConfig())
	key, hash, err := issuer.GenerateKey()
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Security.APIKeys = []string{
		"not-an-entry",
		"0:1:" + hash,
		"7:42:" + hash,
	}
	manager := NewAPIKeyManager(cfg)

	credential, err := manager.Authenticate(key)
	require.NoError(t, err)
	assert.Equal(t, uint(7), credential.SellerID)
	assert.Equal(t, uint(42), credential.UserID)

	_, err = manager.Authenticate("sk_00000000000000000000000000000000")
	assert.Error(t, err)
	_, err = manager.Authenticate("not-a-key")
	assert.Error(t, err)
}

func TestParseAPIKeyCredentialsSkipsMalformed(t *testing.T) {
	credentials := parseAPIKeyCredentials([]string{
		"7:42:$2a$04$hash",
		"missing-fields",
		"x:1:$2a$04$hash",
		"3:y:$2a$04$hash",
		"5:0:",
	})
	require.Len(t, credentials, 1)
	assert.Equal(t, uint(7), credentials[0].SellerID)
	assert.Equal(t, uint(42), credentials[0].UserID)
}
