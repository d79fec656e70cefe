package crypto

import (
	"context"
	"fmt"
	"os"
)

// EnvKeyProvider sources key material from an environment variable,
// grounded on the teacher's cfg.GeminiAPIKey-from-env convention
// (internal/config.Config).
type EnvKeyProvider struct {
	EnvVar string
}

func NewEnvKeyProvider(envVar string) EnvKeyProvider {
	return EnvKeyProvider{EnvVar: envVar}
}

func (p EnvKeyProvider) GetKey(_ context.Context) ([]byte, error) {
	v := os.Getenv(p.EnvVar)
	if v == "" {
		return nil, fmt.Errorf("crypto: environment variable %s is not set", p.EnvVar)
	}
	return []byte(v), nil
}
