// Package bootstrap assembles a ready-to-use pipeline from configuration.
//
// # Quick Start
//
//	cfg, err := bootstrap.Load("orders")
//	app, err := bootstrap.Build(ctx, cfg,
//	    bootstrap.WithRefreshFunc(refreshTokens),
//	    bootstrap.WithServerOptions(server.WithAPIs(usersAPI)),
//	)
//	defer app.Close(ctx)
//
//	user, err := server.Execute[User](ctx, app.Pipeline, usersAPI, api.MethodGet)
//
// Build creates the logger, the courier (HTTP, or files when Fixtures is
// set), the response cache (Redis when enabled, otherwise in memory when
// server.cache_max_entries is positive), the keyring token store and the
// OpenTelemetry providers, and registers their shutdown with App.Close.
package bootstrap
