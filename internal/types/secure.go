package types

// secretPlaceholder replaces secret values in logs and serialized output.
const secretPlaceholder = "***REDACTED***"

var secretPlaceholderJSON = []byte(`"***REDACTED***"`)

// SecretString holds a sensitive value (Slack tokens, signing secrets) and
// redacts itself through fmt and JSON so credentials never reach logs or
// response bodies. Call Unmask only at the point the raw value is handed to
// a client library.
type SecretString string

// String returns the redacted placeholder; invoked by the fmt package.
func (s SecretString) String() string { return secretPlaceholder }

// MarshalJSON returns the redacted placeholder as a JSON string.
func (s SecretString) MarshalJSON() ([]byte, error) { return secretPlaceholderJSON, nil }

// Unmask returns the raw plaintext value.
func (s SecretString) Unmask() string { return string(s) }

// IsSet reports whether a value is present without exposing it.
func (s SecretString) IsSet() bool { return s != "" }
