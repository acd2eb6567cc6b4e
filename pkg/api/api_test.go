package api_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/ksuid"

	"github.com/monotweet/monotweet/pkg/api"
	"github.com/monotweet/monotweet/pkg/broker"
	"github.com/monotweet/monotweet/pkg/twitter"
)

type stubProvider struct{}

func (stubProvider) RequestToken() (string, string, error) {
	token := ksuid.New().String()
	return token, "secret-" + token, nil
}

func (stubProvider) AuthorizationURL(token string) (string, error) {
	return "https://provider.example/oauth/authenticate?oauth_token=" + token, nil
}

func (stubProvider) AccessToken(token, secret, verifier string) (*broker.ProviderGrant, error) {
	return &broker.ProviderGrant{
		Token:       "access-" + token,
		TokenSecret: "access-secret-" + token,
		ScreenName:  "tap",
	}, nil
}

type stubTwitter struct {
	updateCalls int
	lastStatus  string
	lastCred    *broker.AccessCredential
}

func (s *stubTwitter) VerifyCredentials(_ context.Context, credential *broker.AccessCredential) (*twitter.Profile, error) {
	s.lastCred = credential
	return &twitter.Profile{Name: "John Doe", ScreenName: "tap"}, nil
}

func (s *stubTwitter) UpdateStatus(_ context.Context, credential *broker.AccessCredential, status string) (*twitter.Status, error) {
	s.updateCalls++
	s.lastCred = credential
	s.lastStatus = status
	return &twitter.Status{ID: 1, Text: status}, nil
}

func newTestServer(t *testing.T) (*echo.Echo, *stubTwitter) {
	t.Helper()

	b, err := broker.New(
		broker.WithProviderClient(stubProvider{}),
		broker.WithConsumerCredentials("consumer-key", "consumer-secret"),
	)
	if err != nil {
		t.Fatal(err)
	}

	tw := &stubTwitter{}
	e := echo.New()
	api.NewServer(b, tw).MountRoutes(e.Group("/api"))
	return e, tw
}

func postJSON(e *echo.Echo, path string, body any, bearer string) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(data)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func credentialBearer(credential *broker.AccessCredential) string {
	data, _ := json.Marshal(credential)
	return base64.StdEncoding.EncodeToString(data)
}

func TestGuardForbidsWithoutCredential(t *testing.T) {
	e, tw := newTestServer(t)

	for _, path := range []string{"/api/statuses/update", "/api/users/name", "/api/no-such-thing"} {
		rec := postJSON(e, path, map[string]string{"status": "hello"}, "")
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s: status = %d, want 403", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "forbidden") {
			t.Errorf("%s: body = %s, want forbidden error", path, rec.Body.String())
		}
	}
	if tw.updateCalls != 0 {
		t.Error("handler ran despite the guard")
	}
}

func TestGuardPassesFabricatedCredential(t *testing.T) {
	e, tw := newTestServer(t)

	fabricated := credentialBearer(&broker.AccessCredential{
		ConsumerKey:    "made",
		ConsumerSecret: "up",
		Token:          "out-of",
		TokenSecret:    "thin-air",
	})
	rec := postJSON(e, "/api/statuses/update", map[string]string{"status": "hello"}, fabricated)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if tw.updateCalls != 1 {
		t.Fatal("the proxied call should have been attempted")
	}
	if tw.lastCred.Token != "out-of" {
		t.Errorf("handler saw token %q, want the fabricated one", tw.lastCred.Token)
	}
}

func TestStatusUpdateMalformedBearer(t *testing.T) {
	e, tw := newTestServer(t)

	rec := postJSON(e, "/api/statuses/update", map[string]string{"status": "hello"}, "%%not-base64%%")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if tw.updateCalls != 0 {
		t.Error("proxied call attempted with a garbage credential")
	}
}

func TestAuthFlowOverHTTP(t *testing.T) {
	e, _ := newTestServer(t)

	// step 1: the browser asks for the authorization redirect
	rec := postJSON(e, "/api/twitter-auth-request", map[string]string{"authId": "abc"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("auth request: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var authResponse struct {
		Redirect string `json:"redirect"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &authResponse); err != nil {
		t.Fatal(err)
	}
	u, err := url.Parse(authResponse.Redirect)
	if err != nil {
		t.Fatal(err)
	}
	token := u.Query().Get("oauth_token")
	if token == "" {
		t.Fatalf("redirect %q carries no oauth_token", authResponse.Redirect)
	}

	// step 2: the provider redirects back to the callback
	callback := fmt.Sprintf("/api/twitter-auth-callback?oauth_token=%s&oauth_verifier=v1", url.QueryEscape(token))
	req := httptest.NewRequest(http.MethodGet, callback, nil)
	cbRec := httptest.NewRecorder()
	e.ServeHTTP(cbRec, req)
	if cbRec.Code != http.StatusFound {
		t.Fatalf("callback: status = %d, body %s", cbRec.Code, cbRec.Body.String())
	}
	if location := cbRec.Header().Get(echo.HeaderLocation); location != "/" {
		t.Errorf("callback redirects to %q, want /", location)
	}

	// step 3: the browser claims the credential, exactly once
	rec = postJSON(e, "/api/twitter-auth-end", map[string]string{"authId": "abc"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("auth end: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var endResponse struct {
		UserAuth *broker.AccessCredential `json:"userAuth"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &endResponse); err != nil {
		t.Fatal(err)
	}
	if endResponse.UserAuth == nil {
		t.Fatal("expected a credential")
	}
	if endResponse.UserAuth.ConsumerKey != "consumer-key" {
		t.Errorf("consumer key = %q, want %q", endResponse.UserAuth.ConsumerKey, "consumer-key")
	}

	rec = postJSON(e, "/api/twitter-auth-end", map[string]string{"authId": "abc"}, "")
	endResponse.UserAuth = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &endResponse); err != nil {
		t.Fatal(err)
	}
	if endResponse.UserAuth != nil {
		t.Fatal("credential must be claimable only once")
	}
}

func TestCallbackMissingVerifier(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/twitter-auth-callback?oauth_token=t", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_auth_flow") {
		t.Errorf("body = %s, want invalid_auth_flow", rec.Body.String())
	}
}

func TestCallbackUnknownToken(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/twitter-auth-callback?oauth_token=unknown&oauth_verifier=v", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAuthRequestMissingAuthID(t *testing.T) {
	e, _ := newTestServer(t)

	rec := postJSON(e, "/api/twitter-auth-request", map[string]string{}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUserNameEndpoint(t *testing.T) {
	e, _ := newTestServer(t)

	bearer := credentialBearer(&broker.AccessCredential{
		ConsumerKey: "consumer-key",
		Token:       "access-token",
	})
	rec := postJSON(e, "/api/users/name", map[string]string{}, bearer)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var profile struct {
		DisplayName string `json:"displayName"`
		ScreenName  string `json:"screenName"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatal(err)
	}
	if profile.ScreenName != "tap" || profile.DisplayName != "John Doe" {
		t.Errorf("profile = %+v", profile)
	}
}
