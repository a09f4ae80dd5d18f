// Package policy contains the standard pipeline policies.
//
// The request-shaping policies (Headers, RequestID, UserAgent, Proxy) only
// touch the request and the call's options. NetworkTrace and HTTPLogging
// emit diagnostics and never fail a call. ContentDecode parses buffered
// response bodies by content type. Retry, Tracing and Metrics are
// operational policies built on the resilience and observability packages.
//
// A typical chain, outermost first:
//
//	pipeline.New(transport,
//	    policy.NewHeaders(nil),
//	    policy.NewRequestID(),
//	    policy.NewUserAgent(),
//	    policy.NewProxy(nil),
//	    policy.NewContentDecode(""),
//	    policy.NewRetry(resilience.DefaultRetryConfig()),
//	    policy.NewNetworkTrace(log, false),
//	    policy.NewHTTPLogging(log),
//	)
package policy
