package policy

import (
	"github.com/kbukum/httppipe/config"
	"github.com/kbukum/httppipe/pipeline"
	"github.com/kbukum/httppipe/version"
)

const (
	// UserAgentHeader is the header written by UserAgent.
	UserAgentHeader = "User-Agent"
	// DefaultProductToken starts the computed User-Agent.
	DefaultProductToken = "httppipe-go"
)

// UserAgent writes the User-Agent header.
//
// The computed value is "<product>-<moniker> Go/<version> (<os>-<arch>)",
// optionally prefixed with an application id and suffixed with the
// HTTPPIPE_HTTP_USER_AGENT environment variable, which is read on every use.
type UserAgent struct {
	pipeline.BasePolicy
	userAgent string
	overwrite bool
	useEnv    bool
	env       *config.Env
}

type userAgentConfig struct {
	base      string
	appID     string
	moniker   string
	overwrite bool
	useEnv    bool
}

// UserAgentOption configures UserAgent.
type UserAgentOption func(*userAgentConfig)

// WithBaseUserAgent replaces the computed base string.
func WithBaseUserAgent(base string) UserAgentOption {
	return func(c *userAgentConfig) { c.base = base }
}

// WithApplicationID prefixes the User-Agent with appID.
func WithApplicationID(appID string) UserAgentOption {
	return func(c *userAgentConfig) { c.appID = appID }
}

// WithSDKMoniker replaces the default "core/<version>" moniker.
func WithSDKMoniker(moniker string) UserAgentOption {
	return func(c *userAgentConfig) { c.moniker = moniker }
}

// WithUserAgentOverwrite makes the policy replace an existing header.
func WithUserAgentOverwrite(overwrite bool) UserAgentOption {
	return func(c *userAgentConfig) { c.overwrite = overwrite }
}

// WithUserAgentEnv controls whether HTTPPIPE_HTTP_USER_AGENT is appended.
func WithUserAgentEnv(enabled bool) UserAgentOption {
	return func(c *userAgentConfig) { c.useEnv = enabled }
}

// NewUserAgent creates the policy.
func NewUserAgent(opts ...UserAgentOption) *UserAgent {
	cfg := userAgentConfig{moniker: version.Moniker(), useEnv: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	ua := cfg.base
	if ua == "" {
		ua = DefaultProductToken + "-" + cfg.moniker + " " + version.Platform()
	}
	if cfg.appID != "" {
		ua = cfg.appID + " " + ua
	}

	return &UserAgent{
		userAgent: ua,
		overwrite: cfg.overwrite,
		useEnv:    cfg.useEnv,
		env:       config.NewEnv(config.EnvUserAgent),
	}
}

// UserAgent returns the current value, including the environment suffix.
func (p *UserAgent) UserAgent() string {
	if p.useEnv {
		if extra, ok := p.env.Lookup(config.EnvUserAgent); ok {
			return p.userAgent + " " + extra
		}
	}
	return p.userAgent
}

// AddUserAgent appends value with a space. Not safe to call while requests
// are in flight.
func (p *UserAgent) AddUserAgent(value string) {
	p.userAgent += " " + value
}

func (p *UserAgent) OnRequest(req *pipeline.Request) error {
	header := headerOf(req)
	opts := req.Context.Options

	if appID, ok := opts.PopString(pipeline.OptionUserAgent); ok {
		overwrite := p.overwrite
		if v, ok := opts.PopBool(pipeline.OptionUserAgentOverwrite); ok {
			overwrite = v
		}
		if overwrite {
			header.Set(UserAgentHeader, appID)
		} else {
			header.Set(UserAgentHeader, appID+" "+p.UserAgent())
		}
		return nil
	}

	if p.overwrite || !header.Has(UserAgentHeader) {
		header.Set(UserAgentHeader, p.UserAgent())
	}
	return nil
}
