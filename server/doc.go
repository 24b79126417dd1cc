// Package server is the request pipeline: it turns an api.Descriptor and a
// method into a decoded result.
//
// Each call is validated against the registered APIs, built into a
// concrete request, served from the response cache when the method is
// cacheable, authenticated, passed through the request interceptors and
// dispatched through a courier. Unauthorized responses trigger one
// credential refresh that does not count as a retry; other failures are
// retried according to the retry policy. Successful bodies go through the
// response interceptors, are cached, and are decoded.
//
//	pipeline, err := server.New(cfg,
//	    server.WithCourier(httpclient.New(httpCfg)),
//	    server.WithAuthenticator(auth.Bearer(token)),
//	    server.WithCache(cache.NewMemory(cache.DefaultTTL, 100)),
//	)
//	user, err := server.Execute[User](ctx, pipeline, usersAPI, api.MethodGet,
//	    server.WithPathParams(map[string]any{"id": 42}))
//
// A Pipeline is safe for concurrent use.
package server
