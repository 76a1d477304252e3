package bullet

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidNetworkURL is returned for URLs that are not absolute http(s) URLs.
	ErrInvalidNetworkURL = errors.New("invalid network url")
	ErrUnknownNetwork    = errors.New("unknown network")
	// ErrNegativeChainID means /constants reported a chain id that does not fit a u64.
	ErrNegativeChainID = errors.New("chain id is negative")
)

// SchemaError reports a /schema response lacking a required field.
type SchemaError struct {
	Field string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid schema response: missing or malformed %q", e.Field)
}

// ChainHashError reports a chain hash that is not 32 bytes of hex.
type ChainHashError struct {
	Value string
	Err   error
}

func (e *ChainHashError) Error() string {
	return fmt.Sprintf("invalid chain hash %q: %v", e.Value, e.Err)
}

func (e *ChainHashError) Unwrap() error { return e.Err }

// KeyError reports an unusable secret key. It never includes the key material.
type KeyError struct {
	Reason string
	Err    error
}

func (e *KeyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid private key: %s: %v", e.Reason, e.Err)
	}
	return "invalid private key: " + e.Reason
}

func (e *KeyError) Unwrap() error { return e.Err }
