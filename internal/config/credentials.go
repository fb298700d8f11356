package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	apierrors "github.com/diogo/gemchat/internal/errors"
)

// APIKeyEnvVar is the environment variable holding the Gemini API key
const APIKeyEnvVar = "GEMINI_API_KEY"

// ResolveAPIKey returns the API key for the model capability. Lookup order:
// the environment, a .env file in the working directory, then ~/.gemchat/.env.
// The key is read once per client construction, at exchange start.
func ResolveAPIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnvVar)); key != "" {
		return key, nil
	}

	// godotenv.Load does not override existing environment variables
	_ = godotenv.Load()

	if configDir, err := GetConfigDir(); err == nil {
		_ = godotenv.Load(filepath.Join(configDir, ".env"))
	}

	if key := strings.TrimSpace(os.Getenv(APIKeyEnvVar)); key != "" {
		return key, nil
	}

	return "", apierrors.ErrNoAPIKey
}
