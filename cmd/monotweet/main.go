package main

import (
	"log"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/monotweet/monotweet/pkg/api"
	"github.com/monotweet/monotweet/pkg/broker"
	"github.com/monotweet/monotweet/pkg/config"
	"github.com/monotweet/monotweet/pkg/prettylog"
	"github.com/monotweet/monotweet/pkg/twitter"
	"github.com/monotweet/monotweet/pkg/webapp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(prettylog.NewHandler(level)))

	var endpoints twitter.Endpoints
	if cfg.ProviderConfigPath != "" {
		endpoints, err = twitter.LoadEndpointsFile(cfg.ProviderConfigPath)
		if err != nil {
			log.Fatal(err)
		}
		slog.Info("Using provider endpoint overrides", "path", cfg.ProviderConfigPath)
	}

	provider := twitter.NewProviderClient(twitter.Config{
		ConsumerKey:    cfg.ConsumerKey,
		ConsumerSecret: cfg.ConsumerSecret,
		CallbackURL:    cfg.CallbackURL,
		Endpoints:      endpoints,
	})

	b, err := broker.New(
		broker.WithProviderClient(provider),
		broker.WithConsumerCredentials(cfg.ConsumerKey, cfg.ConsumerSecret),
		broker.WithHandshakeTTL(cfg.HandshakeTTL),
		broker.WithCredentialTTL(cfg.CredentialTTL),
	)
	if err != nil {
		log.Fatal(err)
	}

	root := echo.New()
	root.HideBanner = true
	root.Use(
		middleware.Recover(),
		middleware.Logger(),
	)

	api.NewServer(b, provider).MountRoutes(root.Group("/api"))
	webapp.MountRoutes(root)

	slog.Info("Starting server", "addr", cfg.ListenAddr, "callback_url", cfg.CallbackURL)
	log.Fatal(root.Start(cfg.ListenAddr))
}
