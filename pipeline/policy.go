package pipeline

// Policy intercepts a request before it is sent and its response after.
// Returning an error from either hook fails the call.
type Policy interface {
	OnRequest(req *Request) error
	OnResponse(req *Request, resp *Response) error
}

// ErrorHandler is implemented by policies that observe failures from the
// rest of the chain.
type ErrorHandler interface {
	OnError(req *Request, err error)
}

// Sender is implemented by policies that send through the rest of the chain
// themselves, possibly more than once. OnRequest runs before Send and
// OnResponse after it returns.
type Sender interface {
	Send(req *Request, next Transport) (*Response, error)
}

// Transport delivers a request and returns its response.
type Transport interface {
	Send(req *Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(req *Request) (*Response, error)

func (f TransportFunc) Send(req *Request) (*Response, error) { return f(req) }

// BasePolicy provides no-op hooks for embedding.
type BasePolicy struct{}

func (BasePolicy) OnRequest(*Request) error { return nil }

func (BasePolicy) OnResponse(*Request, *Response) error { return nil }
