// Package broker implements the OAuth 1.0a delegated-authorization broker:
// it drives the three-legged handshake against the provider, keeps the
// pending-handshake secrets, and hands the finished access credential to the
// waiting client exactly once via a client-chosen correlation id.
package broker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultHandshakeTTL  = 10 * time.Minute
	DefaultCredentialTTL = time.Hour
)

// ConsumerCredentials is the application identity registered with the
// provider. It is merged into every credential the broker hands out, so the
// client can sign API calls without the server keeping per-user state.
type ConsumerCredentials struct {
	Key    string
	Secret string
}

type Broker struct {
	provider      ProviderClient
	handshakes    HandshakeStore
	credentials   CredentialStore
	consumer      ConsumerCredentials
	handshakeTTL  time.Duration
	credentialTTL time.Duration
}

type Option func(*Broker) error

func New(opts ...Option) (*Broker, error) {
	b := &Broker{
		handshakeTTL:  DefaultHandshakeTTL,
		credentialTTL: DefaultCredentialTTL,
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	if b.provider == nil {
		return nil, errors.New("broker requires a provider client")
	}
	if b.handshakes == nil {
		b.handshakes = NewMemoryHandshakeStore(b.handshakeTTL)
	}
	if b.credentials == nil {
		b.credentials = NewMemoryCredentialStore(b.credentialTTL)
	}

	return b, nil
}

// RequestAuth starts a handshake for the given correlation id and returns
// the provider authorization URL the user must be redirected to. The id is
// chosen by the caller; the broker only correlates with it.
func (b *Broker) RequestAuth(authID string) (string, error) {
	if authID == "" {
		return "", fmt.Errorf("%w: empty auth id", ErrInvalidAuthFlow)
	}

	token, secret, err := b.provider.RequestToken()
	if err != nil {
		return "", &ProviderError{Op: "request token", Err: err}
	}

	handshake := &PendingHandshake{
		AuthID:      authID,
		TokenSecret: secret,
	}
	if err := b.handshakes.Save(token, handshake); err != nil {
		return "", fmt.Errorf("save handshake: %w", err)
	}

	authURL, err := b.provider.AuthorizationURL(token)
	if err != nil {
		return "", &ProviderError{Op: "authorization url", Err: err}
	}

	slog.Info("Started auth handshake", "auth_id", authID, "oauth_token", token)

	return authURL, nil
}

// CompleteCallback finishes the handshake identified by the provider
// callback parameters. The pending handshake is consumed before the exchange
// starts, so a request token completes at most once even when the callback
// is delivered concurrently. A provider failure after that point leaves the
// handshake unrecoverable; reinserting it would reopen the replay window.
func (b *Broker) CompleteCallback(token, verifier string) error {
	if token == "" || verifier == "" {
		return fmt.Errorf("%w: missing oauth_token or oauth_verifier", ErrInvalidAuthFlow)
	}

	handshake, err := b.handshakes.Take(token)
	if err != nil {
		return fmt.Errorf("%w: unknown oauth_token", ErrInvalidAuthFlow)
	}

	grant, err := b.provider.AccessToken(token, handshake.TokenSecret, verifier)
	if err != nil {
		return &ProviderError{Op: "access token", Err: err}
	}

	credential := &AccessCredential{
		ConsumerKey:    b.consumer.Key,
		ConsumerSecret: b.consumer.Secret,
		Token:          grant.Token,
		TokenSecret:    grant.TokenSecret,
		ScreenName:     grant.ScreenName,
	}
	if err := b.credentials.Save(handshake.AuthID, credential); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}

	slog.Info("Completed auth handshake", "auth_id", handshake.AuthID, "screen_name", grant.ScreenName)

	return nil
}

// RetrieveAuth hands out the completed credential for the correlation id, at
// most once. A nil credential with a nil error means no completed handshake
// is waiting, which is the normal state mid-flow and after a claim.
func (b *Broker) RetrieveAuth(authID string) (*AccessCredential, error) {
	credential, err := b.credentials.Take(authID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("take credential: %w", err)
	}
	return credential, nil
}
