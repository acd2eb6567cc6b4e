// Package twitter adapts the Twitter OAuth 1.0a endpoints and the small REST
// surface the web client needs to the broker's provider contract.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dghubble/oauth1"

	"github.com/monotweet/monotweet/pkg/broker"
)

const (
	userAgent          = "monotweet"
	defaultRestAPIBase = "https://api.twitter.com/1.1"
)

type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	CallbackURL    string
	Endpoints      Endpoints
}

// ProviderClient implements broker.ProviderClient against Twitter and proxies
// the authenticated REST calls. Per-call authentication is built from the
// credential supplied with each call, so the client itself holds no user
// state.
type ProviderClient struct {
	config    *oauth1.Config
	endpoints Endpoints
}

func NewProviderClient(cfg Config) *ProviderClient {
	endpoints := cfg.Endpoints.withDefaults()
	return &ProviderClient{
		config: &oauth1.Config{
			ConsumerKey:    cfg.ConsumerKey,
			ConsumerSecret: cfg.ConsumerSecret,
			CallbackURL:    cfg.CallbackURL,
			Endpoint: oauth1.Endpoint{
				RequestTokenURL: endpoints.RequestTokenURL,
				AuthorizeURL:    endpoints.AuthorizeURL,
				AccessTokenURL:  endpoints.AccessTokenURL,
			},
		},
		endpoints: endpoints,
	}
}

func (c *ProviderClient) RequestToken() (string, string, error) {
	return c.config.RequestToken()
}

func (c *ProviderClient) AuthorizationURL(token string) (string, error) {
	authURL, err := c.config.AuthorizationURL(token)
	if err != nil {
		return "", err
	}
	return authURL.String(), nil
}

// AccessToken exchanges the verifier for the long-lived token pair, then
// resolves the screen name of the authorizing user with a whoami call signed
// by the fresh token.
func (c *ProviderClient) AccessToken(token, secret, verifier string) (*broker.ProviderGrant, error) {
	accessToken, accessSecret, err := c.config.AccessToken(token, secret, verifier)
	if err != nil {
		return nil, err
	}

	credential := &broker.AccessCredential{
		ConsumerKey:    c.config.ConsumerKey,
		ConsumerSecret: c.config.ConsumerSecret,
		Token:          accessToken,
		TokenSecret:    accessSecret,
	}
	profile, err := c.VerifyCredentials(context.Background(), credential)
	if err != nil {
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	return &broker.ProviderGrant{
		Token:       accessToken,
		TokenSecret: accessSecret,
		ScreenName:  profile.ScreenName,
	}, nil
}

// Profile is the subset of the verify_credentials answer the app uses.
type Profile struct {
	Name       string `json:"name"`
	ScreenName string `json:"screen_name"`
}

// Status is the subset of a posted status the app reports back.
type Status struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// APIError is a non-200 answer from the REST API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twitter api: status %d: %s", e.StatusCode, e.Body)
}

// VerifyCredentials resolves the profile behind an access credential.
func (c *ProviderClient) VerifyCredentials(ctx context.Context, credential *broker.AccessCredential) (*Profile, error) {
	endpoint := c.endpoints.RestAPIBase + "/account/verify_credentials.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var profile Profile
	if err := c.do(ctx, credential, req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateStatus posts a status update on behalf of the credential owner.
func (c *ProviderClient) UpdateStatus(ctx context.Context, credential *broker.AccessCredential, status string) (*Status, error) {
	form := url.Values{}
	form.Set("status", status)
	form.Set("trim_user", "true")

	endpoint := c.endpoints.RestAPIBase + "/statuses/update.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var posted Status
	if err := c.do(ctx, credential, req, &posted); err != nil {
		return nil, err
	}
	return &posted, nil
}

func (c *ProviderClient) do(ctx context.Context, credential *broker.AccessCredential, req *http.Request, out any) error {
	req.Header.Set("User-Agent", userAgent)

	config := oauth1.NewConfig(credential.ConsumerKey, credential.ConsumerSecret)
	token := oauth1.NewToken(credential.Token, credential.TokenSecret)

	resp, err := config.Client(ctx, token).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ broker.ProviderClient = (*ProviderClient)(nil)
