// Package api mounts the HTTP surface of the broker: the three always
// reachable auth-flow endpoints, the credential guard for everything else
// under the API prefix, and the authenticated proxy calls.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/monotweet/monotweet/pkg/broker"
	"github.com/monotweet/monotweet/pkg/twitter"
)

// Error is the JSON error payload.
type Error struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// TwitterAPI is the authenticated REST surface proxied for the web client.
type TwitterAPI interface {
	VerifyCredentials(ctx context.Context, credential *broker.AccessCredential) (*twitter.Profile, error)
	UpdateStatus(ctx context.Context, credential *broker.AccessCredential, status string) (*twitter.Status, error)
}

type Server struct {
	broker  *broker.Broker
	twitter TwitterAPI
}

func NewServer(b *broker.Broker, t TwitterAPI) *Server {
	return &Server{broker: b, twitter: t}
}

// ErrorLogMiddleware logs handler errors before echo renders them.
func ErrorLogMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		if err != nil {
			slog.Error("Request failed", "error", err, "path", c.Path(), "remote_addr", c.RealIP())
		}
		return err
	}
}

func (s *Server) MountRoutes(g *echo.Group) {
	g.Use(ErrorLogMiddleware, s.requireCredential)

	g.POST("/twitter-auth-request", s.AuthRequestEndpoint)
	g.GET("/twitter-auth-callback", s.AuthCallbackEndpoint)
	g.POST("/twitter-auth-end", s.AuthEndEndpoint)

	g.POST("/users/name", s.UserNameEndpoint)
	g.POST("/statuses/update", s.StatusUpdateEndpoint)

	// catch-all keeps the guard in front of unknown API paths
	g.Any("/*", s.NotFoundEndpoint)
}

type authBody struct {
	AuthID string `json:"authId"`
}

// AuthRequestEndpoint starts the handshake and answers with the provider
// authorization URL for the browser to follow.
func (s *Server) AuthRequestEndpoint(c echo.Context) error {
	var body authBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, Error{
			Code:        "invalid_request",
			Description: err.Error(),
		})
	}
	if body.AuthID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, Error{
			Code:        "invalid_request",
			Description: "missing authId",
		})
	}

	redirect, err := s.broker.RequestAuth(body.AuthID)
	if err != nil {
		return convertBrokerError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{"redirect": redirect})
}

// AuthCallbackEndpoint receives the provider redirect and completes the
// handshake; the browser lands back on the app root either way it can
// recover from.
func (s *Server) AuthCallbackEndpoint(c echo.Context) error {
	token := c.QueryParam("oauth_token")
	verifier := c.QueryParam("oauth_verifier")

	if err := s.broker.CompleteCallback(token, verifier); err != nil {
		return convertBrokerError(err)
	}

	return c.Redirect(http.StatusFound, "/")
}

// AuthEndEndpoint hands the completed credential to the browser, once.
// A null userAuth means nothing is waiting, which the client treats as
// "not logged in", not as an error.
func (s *Server) AuthEndEndpoint(c echo.Context) error {
	var body authBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, Error{
			Code:        "invalid_request",
			Description: err.Error(),
		})
	}
	if body.AuthID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, Error{
			Code:        "invalid_request",
			Description: "missing authId",
		})
	}

	credential, err := s.broker.RetrieveAuth(body.AuthID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, Error{
			Code:        "server_error",
			Description: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{"userAuth": credential})
}

// UserNameEndpoint is the whoami call behind the guard.
func (s *Server) UserNameEndpoint(c echo.Context) error {
	credential, err := credentialFromRequest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, Error{
			Code:        "invalid_request",
			Description: err.Error(),
		})
	}

	profile, err := s.twitter.VerifyCredentials(c.Request().Context(), credential)
	if err != nil {
		return providerCallError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"displayName": profile.Name,
		"screenName":  profile.ScreenName,
	})
}

// StatusUpdateEndpoint proxies a status post using the caller's credential.
func (s *Server) StatusUpdateEndpoint(c echo.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, Error{
			Code:        "invalid_request",
			Description: err.Error(),
		})
	}
	if body.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, Error{
			Code:        "invalid_request",
			Description: "missing status",
		})
	}

	credential, err := credentialFromRequest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, Error{
			Code:        "invalid_request",
			Description: err.Error(),
		})
	}

	posted, err := s.twitter.UpdateStatus(c.Request().Context(), credential, body.Status)
	if err != nil {
		return providerCallError(err)
	}

	return c.JSON(http.StatusOK, posted)
}

func (s *Server) NotFoundEndpoint(c echo.Context) error {
	return echo.NewHTTPError(http.StatusNotFound, Error{
		Code:        "not_found",
		Description: "unknown api path",
	})
}

func convertBrokerError(err error) error {
	var providerErr *broker.ProviderError
	switch {
	case errors.Is(err, broker.ErrInvalidAuthFlow):
		return echo.NewHTTPError(http.StatusBadRequest, Error{
			Code:        "invalid_auth_flow",
			Description: err.Error(),
		})
	case errors.As(err, &providerErr):
		return echo.NewHTTPError(http.StatusBadGateway, Error{
			Code:        "provider_error",
			Description: err.Error(),
		})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, Error{
			Code:        "server_error",
			Description: err.Error(),
		})
	}
}

func providerCallError(err error) error {
	return echo.NewHTTPError(http.StatusBadGateway, Error{
		Code:        "provider_error",
		Description: err.Error(),
	})
}
