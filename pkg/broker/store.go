package broker

import "errors"

// ErrNotFound is returned by Take when no live entry exists for the key.
var ErrNotFound = errors.New("entry not found")

// HandshakeStore keeps pending handshakes keyed by provider request token.
// Take looks up and removes the entry in a single step, so a request token
// can be taken at most once regardless of interleaving.
type HandshakeStore interface {
	Save(token string, handshake *PendingHandshake) error
	Take(token string) (*PendingHandshake, error)
}

// CredentialStore keeps completed credentials keyed by correlation id, with
// the same take-once contract.
type CredentialStore interface {
	Save(authID string, credential *AccessCredential) error
	Take(authID string) (*AccessCredential, error)
}
