package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Environment switches read by the pipeline policies.
const (
	// EnvUserAgent is appended to the computed User-Agent header when set.
	EnvUserAgent = "HTTPPIPE_HTTP_USER_AGENT"
	// EnvLoggingMultiRecord switches HTTP logging to one record per field when non-empty.
	EnvLoggingMultiRecord = "HTTPPIPE_LOGGING_MULTIRECORD"
)

// Env reads a fixed set of environment variables. Every lookup goes back to
// the process environment, so changes made after construction (including
// t.Setenv in tests) are observed immediately.
type Env struct {
	v *viper.Viper
}

// NewEnv binds the named environment variables. Bindings are fixed after
// construction; lookups are safe for concurrent use.
func NewEnv(names ...string) *Env {
	v := viper.New()
	for _, name := range names {
		_ = v.BindEnv(envKey(name), name)
	}
	return &Env{v: v}
}

// Lookup returns the current value of a bound variable. Unset and empty
// variables both report ok=false.
func (e *Env) Lookup(name string) (string, bool) {
	key := envKey(name)
	if !e.v.IsSet(key) {
		return "", false
	}
	value := e.v.GetString(key)
	return value, value != ""
}

// Get returns the current value of a bound variable, or "".
func (e *Env) Get(name string) string {
	value, _ := e.Lookup(name)
	return value
}

// Enabled reports whether a bound variable currently holds any non-empty value.
func (e *Env) Enabled(name string) bool {
	_, ok := e.Lookup(name)
	return ok
}

func envKey(name string) string {
	return strings.ToLower(name)
}
