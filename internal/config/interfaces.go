package config

import "context"

// SecretProvider abstracts secret retrieval to support AWS SSM Parameter
// Store in deployed environments and plain environment variables locally.
// Injecting the provider keeps credential resolution out of global process
// state and lets tests supply fake tokens.
type SecretProvider interface {
	// GetParametersBatch resolves the given keys (SSM parameter paths or
	// equivalent identifiers) to plaintext values. Only successfully
	// resolved keys appear in the returned map.
	GetParametersBatch(ctx context.Context, keys []string) (map[string]string, error)
}
