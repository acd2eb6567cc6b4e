package broker

// PendingHandshake is the server-side half of an in-progress handshake,
// keyed in the HandshakeStore by the provider-issued request token. It exists
// between the request-token call and the provider callback.
type PendingHandshake struct {
	AuthID      string
	TokenSecret string
}

// AccessCredential is the durable authorization result: the application's
// consumer identity plus the user-specific token pair. The JSON field names
// are the wire format the web client caches and resends on every
// authenticated call.
type AccessCredential struct {
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
	Token          string `json:"token"`
	TokenSecret    string `json:"token_secret"`
	ScreenName     string `json:"screen_name,omitempty"`
}

// ProviderGrant is what a successful access-token exchange yields.
type ProviderGrant struct {
	Token       string
	TokenSecret string
	ScreenName  string
}

// ProviderClient is the OAuth 1.0a capability the broker drives. Both token
// operations block on provider I/O; the broker never retries them.
type ProviderClient interface {
	// RequestToken performs step 1 of the handshake and returns the
	// provider-issued request token and its secret.
	RequestToken() (token, secret string, err error)
	// AuthorizationURL builds the URL the user is redirected to in step 2.
	AuthorizationURL(token string) (string, error)
	// AccessToken exchanges the verifier for the long-lived token pair and
	// the provider profile of the authorizing user.
	AccessToken(token, secret, verifier string) (*ProviderGrant, error)
}
