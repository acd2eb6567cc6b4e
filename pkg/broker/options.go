package broker

import "time"

func WithProviderClient(provider ProviderClient) Option {
	return func(b *Broker) error {
		b.provider = provider
		return nil
	}
}

func WithConsumerCredentials(key, secret string) Option {
	return func(b *Broker) error {
		b.consumer = ConsumerCredentials{Key: key, Secret: secret}
		return nil
	}
}

// WithHandshakeStore substitutes the pending-handshake backing, e.g. a
// distributed cache for multi-instance deployments.
func WithHandshakeStore(store HandshakeStore) Option {
	return func(b *Broker) error {
		b.handshakes = store
		return nil
	}
}

// WithCredentialStore substitutes the completed-credential backing.
func WithCredentialStore(store CredentialStore) Option {
	return func(b *Broker) error {
		b.credentials = store
		return nil
	}
}

// WithHandshakeTTL bounds how long an unanswered handshake stays completable.
// Only applies to the default in-memory store.
func WithHandshakeTTL(ttl time.Duration) Option {
	return func(b *Broker) error {
		b.handshakeTTL = ttl
		return nil
	}
}

// WithCredentialTTL bounds how long an unclaimed credential stays
// retrievable. Only applies to the default in-memory store.
func WithCredentialTTL(ttl time.Duration) Option {
	return func(b *Broker) error {
		b.credentialTTL = ttl
		return nil
	}
}
