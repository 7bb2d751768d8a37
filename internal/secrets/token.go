package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups the engine's secrets in the OS keychain.
	KeyringService = "franchise-engine"

	// EnvAdminToken overrides the keychain, e.g. on headless hosts.
	EnvAdminToken = "FRANCHISE_ADMIN_TOKEN"
)

// Source says where AdminToken found the token.
type Source string

const (
	FromKeyring Source = "keyring"
	FromEnv     Source = "env"
	Generated   Source = "generated"
)

// KeyringAccount scopes the token to one data dir so two installs do not
// share it.
func KeyringAccount(dataDir string) string {
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		abs = dataDir
	}
	return "admin-token:" + abs
}

// AdminToken returns the token guarding the admin endpoints: keychain first,
// then the environment, then a fresh random token that is stored in the
// keychain when one is available.
func AdminToken(account string) (string, Source, error) {
	if strings.TrimSpace(account) != "" {
		tok, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(tok) != "" {
			return tok, FromKeyring, nil
		}
	}
	if tok := strings.TrimSpace(os.Getenv(EnvAdminToken)); tok != "" {
		return tok, FromEnv, nil
	}

	tok, err := randomToken()
	if err != nil {
		return "", "", err
	}
	if strings.TrimSpace(account) != "" {
		// no keychain (CI, containers) just means the token lives for one run
		_ = keyring.Set(KeyringService, account, tok)
	}
	return tok, Generated, nil
}

func SetAdminToken(account, token string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(KeyringService, account, token)
}

func DeleteAdminToken(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

func randomToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
