package policy

import "github.com/kbukum/httppipe/pipeline"

// Proxy hands a fixed proxy mapping to the transport unless the call set
// its own. Keys are a scheme, "scheme://host", "all://host" or "all".
type Proxy struct {
	pipeline.BasePolicy
	proxies map[string]string
}

// NewProxy creates the policy. A nil or empty mapping leaves proxy
// selection to the environment.
func NewProxy(proxies map[string]string) *Proxy {
	return &Proxy{proxies: proxies}
}

func (p *Proxy) OnRequest(req *pipeline.Request) error {
	opts := req.Context.Options
	if len(p.proxies) > 0 && !opts.Has(pipeline.OptionProxies) {
		opts.Set(pipeline.OptionProxies, p.proxies)
	}
	return nil
}
