package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups the engine's secrets in the OS keychain.
	KeyringService = "pricehunt"

	// EnvLLMKey is consulted when the keychain has no entry.
	EnvLLMKey = "PRICEHUNT_LLM_API_KEY"
)

var ErrNoLLMKey = errors.New("LLM API key not found (set it in keychain or via " + EnvLLMKey + ")")

func GetLLMKey(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		k, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(k) != "" {
			return k, nil
		}
	}
	if k := strings.TrimSpace(os.Getenv(EnvLLMKey)); k != "" {
		return k, nil
	}
	return "", ErrNoLLMKey
}

func SetLLMKey(keyringAccount, key string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, strings.TrimSpace(key))
}

func DeleteLLMKey(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}
