package config

import (
	"context"
	"os"
)

// EnvVarProvider implements SecretProvider by looking keys up as OS
// environment variables. It is the provider for local development, where
// tokens are set directly or via a .env file and SSM is bypassed.
type EnvVarProvider struct{}

// NewEnvVarProvider creates a new EnvVarProvider.
func NewEnvVarProvider() *EnvVarProvider {
	return &EnvVarProvider{}
}

// GetParametersBatch resolves each key via os.LookupEnv. Missing keys are
// silently omitted from the result. The context is unused; environment
// lookups are synchronous.
func (p *EnvVarProvider) GetParametersBatch(_ context.Context, keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	for _, key := range keys {
		if val, ok := os.LookupEnv(key); ok {
			result[key] = val
		}
	}
	return result, nil
}
