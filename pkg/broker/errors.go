package broker

import (
	"errors"
	"fmt"
)

// ErrInvalidAuthFlow covers callbacks carrying an unknown or already-consumed
// request token, and callbacks missing the verifier. The flow cannot be
// resumed; the user has to restart from RequestAuth.
var ErrInvalidAuthFlow = errors.New("invalid auth flow")

// ProviderError wraps a failed request-token or access-token call against
// the upstream provider.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("oauth provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
