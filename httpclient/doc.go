// Package httpclient is a request/response client built on the policy
// pipeline. New assembles the chain from Config:
//
//	Headers, RequestID, UserAgent, auth, Proxy, ContentDecode,
//	[Retry], [Tracing], [Metrics], extra policies,
//	NetworkTrace, HTTPLogging, transport
//
// Bracketed policies are installed only when enabled in Config.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.example.com",
//	    Timeout: 30 * time.Second,
//	    Auth:    httpclient.BearerAuth("my-token"),
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodGet,
//	    Path:   "/users/123",
//	}, pipeline.WithRequestID("abc"))
//
// resp.Data holds the body deserialized by content type.
//
// # Typed Requests
//
//	user, err := httpclient.Get[User](client, ctx, "/users/123")
package httpclient
