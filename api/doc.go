// Package api describes logical endpoints and turns them into concrete
// wire requests.
//
// A Descriptor is an immutable description of one endpoint: its
// environment, relative path, default headers, queries and body, the HTTP
// methods it accepts and the response kinds it can be decoded into.
// Build combines a descriptor with per-call Overrides into a Request.
//
//	users := api.New("/users/{id}",
//	    api.WithEnvironment(environment.Prod("https://api.example.com")),
//	    api.WithMethods(api.MethodGet, api.MethodPatch),
//	    api.WithResponseKinds(api.KindFor[User]()),
//	)
//
//	req, err := api.Build(api.MethodGet, users, api.Overrides{
//	    PathParams: map[string]any{"id": 42},
//	})
package api
