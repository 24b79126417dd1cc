// Package httpclient is the production courier: it sends api.Request values
// over net/http and classifies the outcome into the pipeline's error
// taxonomy.
//
// Status codes map as follows: 2xx succeeds, 401 is unauthorized, any
// other 4xx is a network error, 5xx is a server error and anything else is
// unknown. Transport failures are network errors and a cancelled caller
// context is a cancellation.
//
//	adapter, err := httpclient.New(httpclient.Config{
//	    Timeout: 30 * time.Second,
//	    HTTP2:   true,
//	    Tracing: true,
//	})
//	pipeline, err := server.New(cfg, server.WithCourier(adapter))
package httpclient
