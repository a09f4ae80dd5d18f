// Package pipeline runs outgoing HTTP requests through an ordered chain of
// policies before handing them to a transport.
//
// A Policy has a pre-hook (OnRequest) and a post-hook (OnResponse). The
// chain is fixed when the Pipeline is built: pre-hooks run in chain order
// and post-hooks in reverse, because every policy wraps the rest of the
// chain. Policies may also implement ErrorHandler to observe failures or
// Sender to drive the rest of the chain themselves, which is how retry
// re-sends a request.
//
// Every call gets a fresh Context. Its Options hold the caller's per-call
// overrides and are consumed with Pop, so each option is seen by at most
// one policy. Its annotations carry values from one hook to a later one and
// survive retries of the same call.
//
//	p := pipeline.New(pipeline.NewHTTPTransport(),
//	    policy.NewHeaders(map[string]string{"Accept": "application/json"}),
//	    policy.NewRequestID(),
//	)
//	req, _ := pipeline.NewRequest(http.MethodGet, "https://example.com/items")
//	resp, err := p.Run(ctx, req, pipeline.WithRequestID("abc"))
package pipeline
