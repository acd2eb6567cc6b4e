package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/monotweet/monotweet/pkg/broker"
)

// preAuthPaths are reachable without a credential marker: they are the flow
// that produces the credential in the first place.
var preAuthPaths = map[string]bool{
	"/api/twitter-auth-request":  true,
	"/api/twitter-auth-callback": true,
	"/api/twitter-auth-end":      true,
}

// requireCredential is the authenticated-router policy: everything under the
// API prefix except the auth flow itself needs a bearer credential marker.
// Only presence is checked here; whether the credential is any good is the
// provider's call when the proxied request is made.
func (s *Server) requireCredential(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if preAuthPaths[c.Path()] {
			return next(c)
		}
		if bearerToken(c) == "" {
			return echo.NewHTTPError(http.StatusForbidden, Error{
				Code:        "forbidden",
				Description: "missing access credential",
			})
		}
		return next(c)
	}
}

func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(auth, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// credentialFromRequest decodes the bearer marker into the access credential
// the client received from the auth flow. The marker is the base64 of the
// credential JSON, exactly as twitter-auth-end returned it.
func credentialFromRequest(c echo.Context) (*broker.AccessCredential, error) {
	data, err := base64.StdEncoding.DecodeString(bearerToken(c))
	if err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}

	var credential broker.AccessCredential
	if err := json.Unmarshal(data, &credential); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	return &credential, nil
}
