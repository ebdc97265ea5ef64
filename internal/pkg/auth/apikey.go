// internal/pkg/auth/apikey.go
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/your-org/seller-dashboard-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyManager issues and verifies seller API keys for machine-to-machine
// integrations (order webhooks, warehouse scanners). Keys are shown once at
// issue time; only the bcrypt hash is configured, as
// sellerID:userID:bcryptHash entries in Security.APIKeys.
type APIKeyManager struct {
	config      *config.Config
	credentials []APIKeyCredential
}

// APIKeyCredential maps a configured key hash to the tenant it authenticates
type APIKeyCredential struct {
	SellerID uint
	UserID   uint
	Hash     string
}

// NewAPIKeyManager creates a new API key manager
func NewAPIKeyManager(cfg *config.Config) *APIKeyManager {
	return &APIKeyManager{
		config:      cfg,
		credentials: parseAPIKeyCredentials(cfg.Security.APIKeys),
	}
}

// parseAPIKeyCredentials reads sellerID:userID:bcryptHash entries; bcrypt
// hashes contain no colons, so two splits are unambiguous. Malformed
// entries are dropped.
func parseAPIKeyCredentials(entries []string) []APIKeyCredential {
	credentials := make([]APIKeyCredential, 0, len(entries))
	for _, entry := range entries {
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[2] == "" {
			continue
		}
		sellerID, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil || sellerID == 0 {
			continue
		}
		userID, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			continue
		}
		credentials = append(credentials, APIKeyCredential{
			SellerID: uint(sellerID),
			UserID:   uint(userID),
			Hash:     parts[2],
		})
	}
	return credentials
}

// Authenticate matches a presented key against the configured credentials
// and returns the tenant it belongs to.
func (m *APIKeyManager) Authenticate(key string) (*APIKeyCredential, error) {
	if !strings.HasPrefix(key, "sk_") {
		return nil, fmt.Errorf("malformed api key")
	}
	for i := range m.credentials {
		if bcrypt.CompareHashAndPassword([]byte(m.credentials[i].Hash), []byte(key)) == nil {
			credential := m.credentials[i]
			return &credential, nil
		}
	}
	return nil, fmt.Errorf("unknown api key")
}

// GenerateKey creates a new API key and returns the plaintext key together
// with the hash to persist. Format: sk_<32 hex chars>.
func (m *APIKeyManager) GenerateKey() (key string, hash string, err error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate api key: %w", err)
	}
	key = "sk_" + hex.EncodeToString(raw)

	hashed, err := bcrypt.GenerateFromPassword([]byte(key), m.config.Security.BcryptCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash api key: %w", err)
	}
	return key, string(hashed), nil
}

// VerifyKey checks a presented key against a stored hash
func (m *APIKeyManager) VerifyKey(key, hash string) error {
	if !strings.HasPrefix(key, "sk_") {
		return fmt.Errorf("malformed api key")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
}
